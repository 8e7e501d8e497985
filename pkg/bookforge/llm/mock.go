package llm

import (
	"context"
	"sync"
)

// Mock is a scripted Generator for tests and offline runs.
// Responses are matched against the prompt in order of registration;
// the first matcher that accepts the prompt wins. Unmatched prompts
// fall through to the Default response.
//
// Mock is safe for concurrent use and records every prompt it receives.
type Mock struct {
	mu      sync.Mutex
	rules   []mockRule
	prompts []string
	calls   int

	// Default is returned when no rule matches. Empty Default with no
	// matching rule yields a retryable GenerationError.
	Default string
	// Err, when non-nil, is returned for every call.
	Err error
}

type mockRule struct {
	match func(prompt string) bool
	next  func(call int) (string, error)
}

// NewMock creates an empty mock generator.
func NewMock() *Mock {
	return &Mock{}
}

// Respond registers a fixed response for prompts accepted by match.
func (m *Mock) Respond(match func(string) bool, response string) *Mock {
	return m.RespondFunc(match, func(int) (string, error) { return response, nil })
}

// RespondFunc registers a per-call response function for prompts accepted
// by match. The call argument counts matches of this rule, starting at 0,
// so a rule can fail the first attempt and succeed on retry.
func (m *Mock) RespondFunc(match func(string) bool, next func(call int) (string, error)) *Mock {
	m.mu.Lock()
	defer m.mu.Unlock()

	rule := mockRule{match: match}
	calls := 0
	rule.next = func(int) (string, error) {
		n := calls
		calls++
		return next(n)
	}
	m.rules = append(m.rules, rule)
	return m
}

// Generate implements Generator.
func (m *Mock) Generate(ctx context.Context, prompt string, _ ...Option) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", NewError("generate", err, false)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.prompts = append(m.prompts, prompt)
	m.calls++

	if m.Err != nil {
		return "", m.Err
	}

	for _, rule := range m.rules {
		if rule.match(prompt) {
			return rule.next(0)
		}
	}

	if m.Default != "" {
		return m.Default, nil
	}
	return "", NewError("generate", ErrNoScriptedResponse, true)
}

// Prompts returns a copy of all prompts received so far.
func (m *Mock) Prompts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]string, len(m.prompts))
	copy(out, m.prompts)
	return out
}

// Calls returns the number of Generate invocations.
func (m *Mock) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}
