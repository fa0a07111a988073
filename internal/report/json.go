package report

import (
	"encoding/json"
	"io"
)

// JSONFormatter formats the report as JSON
type JSONFormatter struct {
	Pretty bool
}

// Format encodes the full report to w.
func (f *JSONFormatter) Format(report Report, w io.Writer) error {
	encoder := json.NewEncoder(w)
	if f.Pretty {
		encoder.SetIndent("", "  ")
	}
	return encoder.Encode(report)
}
