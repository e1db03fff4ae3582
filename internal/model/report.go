package model

import "time"

// Tally accumulates outcome counts for a run.
// The four counts plus the output directory are the externally
// observable contract of a run; formatting is up to report writers.
type Tally struct {
	// Saved is the number of images written to disk.
	Saved int `json:"saved"`

	// Duplicate is the number of byte-identical images skipped.
	Duplicate int `json:"duplicate"`

	// Failed is the number of references that could not be processed.
	Failed int `json:"failed"`

	// Total is the number of references processed.
	// Invariant: Total == Saved + Duplicate + Failed once the run ends.
	Total int `json:"total"`

	// OutputDir is the resolved per-domain output directory.
	OutputDir string `json:"output_dir"`
}

// Add folds one outcome into the tally.
func (t *Tally) Add(o Outcome) {
	t.Total++
	switch o.Status {
	case StatusSaved:
		t.Saved++
	case StatusDuplicate:
		t.Duplicate++
	case StatusFailed:
		t.Failed++
	}
}

// RunReport is the complete record of one imgrab run.
//
// Design decision: We keep every Outcome rather than only the tally
// because:
//  1. The detailed report file lists per-reference results
//  2. The history database stores saved files per run
//  3. Outcomes are small relative to the downloaded payloads
type RunReport struct {
	// ID uniquely identifies the run (UUID).
	ID string `json:"id"`

	// PageURL is the target page the run was started against.
	PageURL string `json:"page_url"`

	// StartedAt is when the run began.
	StartedAt time.Time `json:"started_at"`

	// Elapsed is the total run duration, set when the run completes.
	Elapsed time.Duration `json:"elapsed"`

	// Tally holds the aggregate counts.
	Tally Tally `json:"tally"`

	// Outcomes holds the per-reference results in completion order.
	Outcomes []Outcome `json:"outcomes"`
}

// NewRunReport creates an empty report for the given run ID and page.
func NewRunReport(id, pageURL string) *RunReport {
	return &RunReport{
		ID:        id,
		PageURL:   pageURL,
		StartedAt: time.Now(),
		Outcomes:  make([]Outcome, 0),
	}
}

// Record appends an outcome and updates the tally.
// Callers are responsible for synchronization; the download coordinator
// serializes calls behind its own mutex.
func (r *RunReport) Record(o Outcome) {
	r.Outcomes = append(r.Outcomes, o)
	r.Tally.Add(o)
}

// Failures returns the outcomes that ended in StatusFailed.
func (r *RunReport) Failures() []Outcome {
	failures := make([]Outcome, 0)
	for _, o := range r.Outcomes {
		if o.Status == StatusFailed {
			failures = append(failures, o)
		}
	}
	return failures
}
