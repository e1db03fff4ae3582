package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"imgrab/internal/model"
)

// SimpleWriter outputs human-readable text reports.
//
// Design decision: Plain text with ASCII formatting rather than ANSI
// colors because:
// 1. It works in all terminals without compatibility issues
// 2. The same output doubles as the report file content
type SimpleWriter struct {
	baseWriter

	// showOutcomes enables the per-reference result listing after
	// the summary. The report file uses this; the console does not.
	showOutcomes bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithOutcomes enables the detailed per-reference listing.
func WithOutcomes(show bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.showOutcomes = show
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the report in human-readable format.
func (w *SimpleWriter) Write(report *model.RunReport) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, report)
	w.writeSummary(&sb, report)
	if w.showOutcomes {
		w.writeOutcomes(&sb, report)
	}

	return w.output.Write([]byte(sb.String()))
}

// writeHeader writes the report header with run information.
func (w *SimpleWriter) writeHeader(sb *strings.Builder, report *model.RunReport) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 60))
	sb.WriteString("\n")
	sb.WriteString("                  DOWNLOAD COMPLETE\n")
	sb.WriteString(strings.Repeat("=", 60))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("Page:       %s\n", report.PageURL))
	sb.WriteString(fmt.Sprintf("Started:    %s\n", report.StartedAt.Format("2006-01-02 15:04:05 MST")))
	sb.WriteString(fmt.Sprintf("Elapsed:    %s\n", report.Elapsed.Round(time.Millisecond)))
	sb.WriteString("\n")
}

// writeSummary writes the tally section.
func (w *SimpleWriter) writeSummary(sb *strings.Builder, report *model.RunReport) {
	t := report.Tally
	sb.WriteString(fmt.Sprintf("Saved:      %d\n", t.Saved))
	sb.WriteString(fmt.Sprintf("Duplicates: %d\n", t.Duplicate))
	sb.WriteString(fmt.Sprintf("Failed:     %d\n", t.Failed))
	sb.WriteString(fmt.Sprintf("Total:      %d\n", t.Total))
	sb.WriteString(fmt.Sprintf("Output:     %s\n", t.OutputDir))
	sb.WriteString("\n")
}

// writeOutcomes writes the per-reference result listing.
func (w *SimpleWriter) writeOutcomes(sb *strings.Builder, report *model.RunReport) {
	if len(report.Outcomes) == 0 {
		return
	}

	sb.WriteString("Results:\n")
	for _, o := range report.Outcomes {
		switch o.Status {
		case model.StatusSaved:
			sb.WriteString(fmt.Sprintf("  saved      %s -> %s (%s)\n", o.Ref.URL, o.Path, formatSize(o.Size)))
		case model.StatusDuplicate:
			sb.WriteString(fmt.Sprintf("  duplicate  %s (matches %s)\n", o.Ref.URL, o.Path))
		case model.StatusFailed:
			sb.WriteString(fmt.Sprintf("  failed     %s: %s\n", o.Ref.URL, o.Reason))
		}
	}
	sb.WriteString("\n")
}

// formatSize renders a byte count as KB with one decimal place.
func formatSize(size int64) string {
	return fmt.Sprintf("%.1f KB", float64(size)/1024)
}
