package report

import (
	"bytes"
	"encoding/json"
	"io"

	"imgrab/internal/model"
)

// JSONWriter outputs the full run report as indented JSON.
// This is the machine-readable format: it carries every outcome,
// including hashes and sizes, not only the tally.
type JSONWriter struct {
	baseWriter
}

// NewJSONWriter creates a JSONWriter that outputs to the given writer.
func NewJSONWriter(output io.Writer) *JSONWriter {
	return &JSONWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the report as indented JSON.
func (w *JSONWriter) Write(report *model.RunReport) (int, error) {
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(report); err != nil {
		return 0, err
	}
	return w.output.Write(buf.Bytes())
}
