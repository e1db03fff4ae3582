package model

import (
	"crypto/sha256"
	"encoding/hex"
)

// Status is the terminal state of processing one image reference.
type Status string

// Outcome statuses. Every reference ends in exactly one of these.
const (
	// StatusSaved means the image was fetched and written to disk.
	StatusSaved Status = "saved"

	// StatusDuplicate means the fetched bytes matched an image already
	// saved during this run; nothing was written.
	StatusDuplicate Status = "duplicate"

	// StatusFailed means the fetch or the write failed.
	StatusFailed Status = "failed"
)

// Outcome records the result of processing a single image reference.
// It is produced exactly once per reference and never modified after
// creation.
type Outcome struct {
	// Ref is the image reference this outcome belongs to.
	Ref ImageRef `json:"ref"`

	// Status is the terminal state.
	Status Status `json:"status"`

	// Path is the saved file path. For duplicates it is the path of
	// the first file saved with the same content hash. Empty on failure.
	Path string `json:"path,omitempty"`

	// Hash is the content hash of the fetched bytes.
	// Empty when the fetch itself failed.
	Hash string `json:"hash,omitempty"`

	// Size is the fetched payload size in bytes. Zero on fetch failure.
	Size int64 `json:"size,omitempty"`

	// Reason is a human-readable failure description. Empty unless
	// Status is StatusFailed.
	Reason string `json:"reason,omitempty"`
}

// Saved creates an Outcome for a successfully written image.
func Saved(ref ImageRef, path, hash string, size int64) Outcome {
	return Outcome{Ref: ref, Status: StatusSaved, Path: path, Hash: hash, Size: size}
}

// Duplicate creates an Outcome for a byte-identical image that was
// already saved during this run. existing is the path of the first copy.
func Duplicate(ref ImageRef, existing, hash string, size int64) Outcome {
	return Outcome{Ref: ref, Status: StatusDuplicate, Path: existing, Hash: hash, Size: size}
}

// Failed creates an Outcome for a reference whose fetch or write failed.
func Failed(ref ImageRef, reason string) Outcome {
	return Outcome{Ref: ref, Status: StatusFailed, Reason: reason}
}

// ContentHash returns the hex-encoded SHA-256 digest of data.
// This is the run-wide digest used for duplicate detection: two images
// are duplicates exactly when their raw bytes hash identically,
// regardless of URL or filename.
func ContentHash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
