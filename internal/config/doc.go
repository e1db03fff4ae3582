// Package config provides configuration structures and utilities for imgrab.
// It defines the run options populated from CLI flags, the optional
// .imgrab YAML file with per-site overrides, and the XDG data directory
// used by the run history database.
package config
