package report

import (
	"io"
	"strconv"
	"time"

	"github.com/nao1215/markdown"

	"imgrab/internal/model"
)

// MarkdownWriter outputs reports in GitHub-flavored Markdown.
//
// Design decision: We use the nao1215/markdown library for fluent
// markdown generation: type-safe tables and alerts beat hand-built
// string concatenation for this kind of output.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the report in Markdown format.
func (w *MarkdownWriter) Write(report *model.RunReport) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, report)
	w.writeSummary(md, report)
	w.writeFailures(md, report)

	return len(md.String()), md.Build()
}

// writeHeader writes the report header with run information.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, report *model.RunReport) {
	md.H1("Image Download Report")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Page", "`" + report.PageURL + "`"},
			{"Started", report.StartedAt.Format("2006-01-02 15:04:05 MST")},
			{"Elapsed", report.Elapsed.Round(time.Millisecond).String()},
			{"Output", "`" + report.Tally.OutputDir + "`"},
		},
	})
	md.PlainText("")
}

// writeSummary writes the tally table and a status alert.
func (w *MarkdownWriter) writeSummary(md *markdown.Markdown, report *model.RunReport) {
	t := report.Tally

	md.H2("Summary")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Result", "Count"},
		Rows: [][]string{
			{"Saved", strconv.Itoa(t.Saved)},
			{"Duplicates skipped", strconv.Itoa(t.Duplicate)},
			{"Failed", strconv.Itoa(t.Failed)},
			{"**Total**", "**" + strconv.Itoa(t.Total) + "**"},
		},
	})
	md.PlainText("")

	switch {
	case t.Total == 0:
		md.Note("No images were found on the page.")
	case t.Failed == 0:
		md.Tip("All references processed without failures.")
	case t.Saved == 0 && t.Duplicate == 0:
		md.Warningf("Every download failed (%d of %d).", t.Failed, t.Total)
	default:
		md.Importantf("%d of %d downloads failed; see the failure table below.", t.Failed, t.Total)
	}
	md.PlainText("")
}

// writeFailures writes the failure table, if any failures occurred.
func (w *MarkdownWriter) writeFailures(md *markdown.Markdown, report *model.RunReport) {
	failures := report.Failures()
	if len(failures) == 0 {
		return
	}

	md.H2("Failures")
	md.PlainText("")

	rows := make([][]string, len(failures))
	for i, f := range failures {
		rows[i] = []string{"`" + truncateString(f.Ref.URL, 60) + "`", truncateString(f.Reason, 60)}
	}

	md.Table(markdown.TableSet{
		Header: []string{"URL", "Reason"},
		Rows:   rows,
	})
	md.PlainText("")
}

// truncateString truncates a string to maxLen characters with ellipsis.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
