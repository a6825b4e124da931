package llm

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ExtractJSON recovers a JSON document from a loosely-formatted model reply.
// Strategy, in order: empty input yields an empty object; the trimmed text is
// parsed whole; then the first-{ to last-} substring; then the first-[ to
// last-] substring. Anything else is an extraction failure.
func ExtractJSON(text string) (any, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return map[string]any{}, nil
	}

	var v any
	if err := json.Unmarshal([]byte(trimmed), &v); err == nil {
		return v, nil
	}

	if sub, ok := slice(trimmed, '{', '}'); ok {
		if err := json.Unmarshal([]byte(sub), &v); err == nil {
			return v, nil
		}
	}
	if sub, ok := slice(trimmed, '[', ']'); ok {
		if err := json.Unmarshal([]byte(sub), &v); err == nil {
			return v, nil
		}
	}
	return nil, fmt.Errorf("%w (reply starts %q)", ErrJSONExtraction, head(trimmed, 48))
}

// slice returns the substring from the first open delimiter to the last
// close delimiter, when both exist in order.
func slice(s string, open, close byte) (string, bool) {
	start := strings.IndexByte(s, open)
	end := strings.LastIndexByte(s, close)
	if start == -1 || end == -1 || end <= start {
		return "", false
	}
	return s[start : end+1], true
}

func head(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
