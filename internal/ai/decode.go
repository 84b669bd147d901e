package ai

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/spigell/interview-coach/internal/interview"
)

var errEmptyResponse = errors.New("empty response")

// DecodeJSON strips code fences from raw and decodes it into v. Any failure is
// reported as *interview.ParseError tagged with op.
func DecodeJSON(op, raw string, v any) error {
	cleaned := ExtractJSON(raw)
	if cleaned == "" {
		return &interview.ParseError{Op: op, Raw: raw, Err: errEmptyResponse}
	}

	if err := json.Unmarshal([]byte(cleaned), v); err != nil {
		return &interview.ParseError{Op: op, Raw: raw, Err: err}
	}

	return nil
}

// ExtractJSON removes markdown code fences the model sometimes wraps JSON in.
func ExtractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```JSON")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	raw = strings.Trim(raw, "`")
	return strings.TrimSpace(raw)
}
