// Package storage writes downloaded images into the per-domain output
// directory.
//
// The Writer owns the two pieces of state shared across download
// workers on the filesystem side: directory creation (idempotent,
// concurrent-safe) and filename reservation. Names are claimed inside
// one critical section before any file is written, so two workers
// saving different content under the same suggested name cannot race
// between the existence check and the write; the loser gets a numeric
// suffix.
package storage
