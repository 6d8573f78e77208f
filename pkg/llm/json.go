package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrNoJSON is returned when the response contains nothing that looks like json
var ErrNoJSON = errors.New("no json found in response")

// ExtractJSON pulls a json object or array out of free-form llm output.
// It handles markdown fences, leading/trailing prose and plain json.
func ExtractJSON(content string) (string, error) {
	s := stripFence(strings.TrimSpace(content))
	if s == "" {
		return "", ErrNoJSON
	}
	if json.Valid([]byte(s)) && (s[0] == '{' || s[0] == '[') {
		return s, nil
	}

	// fall back to the widest {...} or [...] span, objects first
	for _, pair := range [][2]string{{"{", "}"}, {"[", "]"}} {
		start := strings.Index(s, pair[0])
		end := strings.LastIndex(s, pair[1])
		if start == -1 || end == -1 || start >= end {
			continue
		}
		candidate := s[start : end+1]
		if json.Valid([]byte(candidate)) {
			return candidate, nil
		}
	}
	return "", ErrNoJSON
}

// DecodeJSON extracts json from content and unmarshals it into v
func DecodeJSON(content string, v any) error {
	js, err := ExtractJSON(content)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(js), v); err != nil {
		return fmt.Errorf("failed to parse json: %w", err)
	}
	return nil
}

// stripFence removes a leading ```lang line and a trailing ``` fence
func stripFence(s string) string {
	if strings.HasPrefix(s, "```") {
		if nl := strings.Index(s, "\n"); nl != -1 {
			s = s[nl+1:]
		} else {
			s = strings.TrimPrefix(s, "```")
		}
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
