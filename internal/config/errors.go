package config

import "errors"

// Configuration validation errors.
// Package-level sentinel errors allow callers to use errors.Is() for
// programmatic handling while still carrying human-readable messages.
var (
	// ErrNoTarget is returned when no page URL was provided.
	ErrNoTarget = errors.New("no target specified: provide a page URL as the first argument")

	// ErrInvalidWorkers is returned when the worker count is not positive.
	// Zero workers would mean no downloads at all.
	ErrInvalidWorkers = errors.New("invalid worker count: must be positive")

	// ErrInvalidTimeout is returned when the timeout is not positive.
	// A zero or negative timeout would fail every request immediately.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidMaxSize is returned when a size limit is negative.
	// Use 0 for "no limit".
	ErrInvalidMaxSize = errors.New("invalid size limit: must be non-negative")

	// ErrConflictingReportFormats is returned when both --json and
	// --markdown are specified. Only one format can be used at a time.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")
)
