package reporter

import (
	"encoding/json"
	"fmt"
	"io"
)

// GenerateJSON writes the report as indented JSON
func GenerateJSON(report *Report, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	return nil
}
