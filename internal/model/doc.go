// Package model defines the core data types shared across imgrab:
// extracted image references, per-download outcomes, the run tally,
// and the run report consumed by report writers and the history database.
package model
