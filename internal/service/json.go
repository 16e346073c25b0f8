package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
)

var errNoJSON = errors.New("no valid JSON found in response")

// thinkTagPattern matches a leading <think>...</think> block some models emit.
var thinkTagPattern = regexp.MustCompile(`(?s)^[\s]*<think>.*?</think>[\s]*`)

// ExtractJSON returns the first balanced JSON object or array in a model
// response, ignoring surrounding prose and markdown fences. Bracketed text
// that is not valid JSON is skipped.
func ExtractJSON(response string) (string, error) {
	cleaned := thinkTagPattern.ReplaceAllString(response, "")

	for i := 0; i < len(cleaned); i++ {
		var closing byte
		switch cleaned[i] {
		case '{':
			closing = '}'
		case '[':
			closing = ']'
		default:
			continue
		}
		if s, ok := balanced(cleaned[i:], cleaned[i], closing); ok && json.Valid([]byte(s)) {
			return s, nil
		}
	}
	return "", errNoJSON
}

// balanced returns the prefix of s that closes the bracket s starts with.
func balanced(s string, open, closing byte) (string, bool) {
	depth := 0
	inString := false
	escaped := false

	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case escaped:
			escaped = false
		case c == '\\' && inString:
			escaped = true
		case c == '"':
			inString = !inString
		case inString:
		case c == open:
			depth++
		case c == closing:
			depth--
			if depth == 0 {
				return s[:i+1], true
			}
		}
	}
	return "", false
}

// parseJSON extracts JSON from a response and decodes it into T.
func parseJSON[T any](response string) (T, error) {
	var result T

	raw, err := ExtractJSON(response)
	if err != nil {
		return result, err
	}
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		return result, fmt.Errorf("failed to decode model JSON: %w", err)
	}
	return result, nil
}
