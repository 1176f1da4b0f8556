// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package process

import (
	"encoding/json"
	"strings"
)

// Report is the structured result the helper prints on stdout as one JSON
// object per line, e.g. {"success": false, "error": "encrypted PDF"}.
type Report struct {
	Success    bool   `json:"success"`
	OutputPath string `json:"output_path,omitempty"`
	Error      string `json:"error,omitempty"`
}

// ParseReport scans stdout from the last line backward and returns the first
// line that decodes as a JSON object. Diagnostic text printed before (or
// after) the structured result is ignored. It returns nil when no line
// qualifies.
func ParseReport(stdout string) *Report {
	lines := strings.Split(stdout, "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		line := strings.TrimSpace(lines[i])
		if !strings.HasPrefix(line, "{") || !strings.HasSuffix(line, "}") {
			continue
		}
		var r Report
		if err := json.Unmarshal([]byte(line), &r); err != nil {
			continue
		}
		return &r
	}
	return nil
}
