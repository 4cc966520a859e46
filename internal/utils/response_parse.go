package utils

import (
	"errors"
	"strings"
)

// ErrNoJSON is returned when a model reply holds no JSON object
var ErrNoJSON = errors.New("no JSON object in response")

// ExtractJSON returns the outermost JSON object embedded in a model reply,
// skipping any prose or markdown fences around it.
func ExtractJSON(raw string) (string, error) {
	clean := strings.TrimSpace(raw)
	start := strings.Index(clean, "{")
	end := strings.LastIndex(clean, "}")
	if start < 0 || end <= start {
		return "", ErrNoJSON
	}
	return clean[start : end+1], nil
}

// StripFences removes a surrounding markdown code fence and quotes from a plain text reply
func StripFences(raw string) string {
	clean := strings.TrimSpace(raw)
	if strings.HasPrefix(clean, "```") {
		clean = strings.TrimPrefix(clean, "```")
		if nl := strings.IndexByte(clean, '\n'); nl >= 0 {
			clean = clean[nl+1:]
		}
		clean = strings.TrimSuffix(strings.TrimSpace(clean), "```")
	}
	clean = strings.TrimSpace(clean)
	if len(clean) >= 2 && clean[0] == '"' && clean[len(clean)-1] == '"' {
		clean = clean[1 : len(clean)-1]
	}
	return strings.TrimSpace(clean)
}
