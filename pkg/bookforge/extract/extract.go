// Package extract recovers structured JSON from free-text model responses.
//
// Generative models frequently wrap JSON in prose, markdown code fences,
// smart quotes, or leave trailing commas before closing brackets. This
// package attempts a strict parse first and falls back to progressively
// cleaning the text. Ambiguity is a hard failure: the extractor never
// returns a partial or guessed structure.
package extract

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrMalformedResponse indicates no JSON value could be recovered.
var ErrMalformedResponse = errors.New("malformed response")

// MalformedResponseError carries a snippet of the unparseable text.
type MalformedResponseError struct {
	// Snippet is a truncated copy of the offending input.
	Snippet string
}

// Error implements the error interface.
func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("malformed response: no recoverable JSON in %q", e.Snippet)
}

// Unwrap returns ErrMalformedResponse for errors.Is support.
func (e *MalformedResponseError) Unwrap() error {
	return ErrMalformedResponse
}

const snippetLimit = 120

func malformed(raw string) error {
	s := strings.TrimSpace(raw)
	if len(s) > snippetLimit {
		s = s[:snippetLimit] + "..."
	}
	return &MalformedResponseError{Snippet: s}
}

// Parse recovers a JSON value from raw model output.
// Returns the decoded value (map[string]any, []any, string, float64, bool, nil)
// or a *MalformedResponseError if no candidate parses after cleanup.
func Parse(raw string) (any, error) {
	for _, candidate := range candidates(raw) {
		var v any
		if err := json.Unmarshal([]byte(candidate), &v); err == nil {
			return v, nil
		}
	}
	return nil, malformed(raw)
}

// Unmarshal recovers JSON from raw model output and decodes it into v.
// The recovery strategy is identical to Parse.
func Unmarshal(raw string, v any) error {
	for _, candidate := range candidates(raw) {
		if err := json.Unmarshal([]byte(candidate), v); err == nil {
			return nil
		}
	}
	return malformed(raw)
}

// candidates builds the ordered list of parse attempts: the input as-is,
// then fence-stripped, then the outermost balanced bracket span of each,
// then artifact-scrubbed versions of all of the above.
func candidates(raw string) []string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil
	}

	ordered := []string{trimmed}
	if stripped := stripCodeFences(trimmed); stripped != "" {
		ordered = append(ordered, stripped)
	}
	for _, c := range append([]string(nil), ordered...) {
		if span := bracketSpan(c); span != "" {
			ordered = append(ordered, span)
		}
	}
	for _, c := range append([]string(nil), ordered...) {
		if cleaned := scrubArtifacts(c); cleaned != c {
			ordered = append(ordered, cleaned)
		}
	}

	seen := make(map[string]struct{}, len(ordered))
	out := ordered[:0]
	for _, c := range ordered {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}
		if _, dup := seen[c]; dup {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return out
}

// stripCodeFences removes a leading ```lang fence and its closing fence.
// Returns "" if the input is not fenced.
func stripCodeFences(content string) string {
	if !strings.HasPrefix(content, "```") {
		// Fence may follow leading prose ("Sure! Here's the JSON: ```json...").
		idx := strings.Index(content, "```")
		if idx < 0 {
			return ""
		}
		content = content[idx:]
	}

	lines := strings.Split(content, "\n")
	if len(lines) < 2 {
		return ""
	}
	lines = lines[1:]
	if n := len(lines); n > 0 && strings.TrimSpace(lines[n-1]) == "```" {
		lines = lines[:n-1]
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// bracketSpan returns the outermost balanced {...} or [...] span,
// tracking string literals and escapes so brackets inside strings
// do not confuse the match. Returns "" if no balanced span exists.
func bracketSpan(content string) string {
	start := -1
	var open, close byte
	for i := 0; i < len(content); i++ {
		if content[i] == '{' || content[i] == '[' {
			start = i
			open = content[i]
			if open == '{' {
				close = '}'
			} else {
				close = ']'
			}
			break
		}
	}
	if start < 0 {
		return ""
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(content); i++ {
		c := content[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case open:
			depth++
		case close:
			depth--
			if depth == 0 {
				return content[start : i+1]
			}
		}
	}
	return ""
}

// scrubArtifacts removes common model formatting noise: smart quotes
// and trailing commas before a closing bracket. String literals are
// preserved while scrubbing commas.
func scrubArtifacts(content string) string {
	replacer := strings.NewReplacer(
		"“", `"`, // left double quote
		"”", `"`, // right double quote
		"‘", "'",
		"’", "'",
	)
	content = replacer.Replace(content)
	return stripTrailingCommas(content)
}

func stripTrailingCommas(content string) string {
	var b strings.Builder
	b.Grow(len(content))
	inString := false
	escaped := false
	for i := 0; i < len(content); i++ {
		c := content[i]
		if inString {
			b.WriteByte(c)
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		if c == '"' {
			inString = true
			b.WriteByte(c)
			continue
		}
		if c == ',' {
			// Look ahead past whitespace for a closing bracket.
			j := i + 1
			for j < len(content) && (content[j] == ' ' || content[j] == '\t' || content[j] == '\n' || content[j] == '\r') {
				j++
			}
			if j < len(content) && (content[j] == '}' || content[j] == ']') {
				continue
			}
		}
		b.WriteByte(c)
	}
	return b.String()
}
