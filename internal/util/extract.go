package util

import (
	"fmt"
	"strings"
)

// ExtractJSON extracts a JSON payload from LLM output that may wrap it in a
// fenced code block. It accepts an optional language tag after the opening
// fence (```json, ```JSON or a bare ```). When no fence is present the
// trimmed raw text is returned as-is — the caller decides whether it parses.
//
// Returns an error only when an opening fence is found without a closing one;
// malformed JSON is not this function's concern.
func ExtractJSON(content string) (string, error) {
	for _, marker := range []string{"```json", "```JSON"} {
		if idx := strings.Index(content, marker); idx >= 0 {
			rest := content[idx+len(marker):]
			if end := strings.Index(rest, "```"); end >= 0 {
				return strings.TrimSpace(rest[:end]), nil
			}
			return "", fmt.Errorf("unclosed %s code block", marker)
		}
	}
	if idx := strings.Index(content, "```"); idx >= 0 {
		rest := content[idx+3:]
		// Skip a language tag on the opening fence line, if any.
		if nl := strings.Index(rest, "\n"); nl >= 0 && !strings.ContainsAny(rest[:nl], "{[") {
			rest = rest[nl+1:]
		}
		if end := strings.Index(rest, "```"); end >= 0 {
			return strings.TrimSpace(rest[:end]), nil
		}
		return "", fmt.Errorf("unclosed ``` code block")
	}
	return strings.TrimSpace(content), nil
}
