package output

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/dshills/docimpact/internal/report"
)

// JSONWriter outputs the structured report document.
type JSONWriter struct{}

func (j *JSONWriter) Ext() string { return "json" }

func (j *JSONWriter) Write(w io.Writer, r *report.Report) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	_, err = w.Write(data)
	if err != nil {
		return fmt.Errorf("writing JSON: %w", err)
	}
	_, err = fmt.Fprintln(w)
	return err
}
