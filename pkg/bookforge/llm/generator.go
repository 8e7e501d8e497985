// Package llm defines the text generation contract and its implementations.
//
// The core engine treats "generate text from a prompt" as an injected
// capability. Implementations wrap a concrete model backend (Gemini) or
// provide deterministic output for tests (Mock).
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrNoScriptedResponse indicates a Mock received a prompt it has no rule for.
var ErrNoScriptedResponse = errors.New("no scripted response for prompt")

// Generator produces text from a prompt.
// Implementations must be safe for concurrent use and must honor
// context cancellation on the underlying transport call.
type Generator interface {
	// Generate returns the model's raw text response for the prompt.
	// Failures are reported as *GenerationError.
	Generate(ctx context.Context, prompt string, opts ...Option) (string, error)
}

// Options configures a single generation call.
type Options struct {
	// Model overrides the generator's default model for this call.
	Model string
	// Temperature controls sampling randomness. Nil uses the backend default.
	Temperature *float32
	// MaxOutputTokens caps the response length. Zero uses the backend default.
	MaxOutputTokens int32
}

// Option mutates Options.
type Option func(*Options)

// WithModel overrides the model for a single call.
func WithModel(model string) Option {
	return func(o *Options) { o.Model = model }
}

// WithTemperature sets the sampling temperature for a single call.
func WithTemperature(t float32) Option {
	return func(o *Options) { o.Temperature = &t }
}

// WithMaxOutputTokens caps the response length for a single call.
func WithMaxOutputTokens(n int32) Option {
	return func(o *Options) { o.MaxOutputTokens = n }
}

func buildOptions(opts []Option) Options {
	var o Options
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// GenerationError wraps a model/transport failure.
type GenerationError struct {
	// Op is the operation that failed (e.g. "generate").
	Op string
	// Err is the underlying error.
	Err error
	// Retryable indicates the failure is likely transient
	// (rate limit, timeout, overload).
	Retryable bool
}

// Error implements the error interface.
func (e *GenerationError) Error() string {
	return fmt.Sprintf("llm %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *GenerationError) Unwrap() error {
	return e.Err
}

// NewError creates a GenerationError.
func NewError(op string, err error, retryable bool) *GenerationError {
	return &GenerationError{Op: op, Err: err, Retryable: retryable}
}

// IsRetryable reports whether err is a retryable generation failure.
// Non-GenerationError values are treated as retryable so that transient
// transport errors surfaced by lower layers still get the retry budget.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if gErr, ok := err.(*GenerationError); ok {
		return gErr.Retryable
	}
	return true
}

// isRetryableMessage checks if an error message indicates a transient error.
func isRetryableMessage(errMsg string) bool {
	errLower := strings.ToLower(errMsg)
	return strings.Contains(errLower, "rate limit") ||
		strings.Contains(errLower, "resource exhausted") ||
		strings.Contains(errLower, "timeout") ||
		strings.Contains(errLower, "deadline exceeded") ||
		strings.Contains(errLower, "overloaded") ||
		strings.Contains(errLower, "unavailable") ||
		strings.Contains(errLower, "429") ||
		strings.Contains(errLower, "503")
}
