package bookforge

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/randalmurphal/bookforge/pkg/bookforge/observability"
)

// Context provides execution context to stage functions.
// It extends context.Context with workflow metadata and a logger
// enriched per stage.
//
// Context is immutable after creation. The Engine creates derived
// contexts for each stage with the current Stage and enriched logger.
type Context interface {
	context.Context

	// Logger returns the configured logger, enriched with run and stage
	// context during execution. Never returns nil - defaults to
	// slog.Default() if not configured.
	Logger() *slog.Logger

	// RunID returns the unique identifier for this execution run.
	// Auto-generated if not configured.
	RunID() string

	// Stage returns the stage currently executing.
	// StageAwaitingTitle before execution starts.
	Stage() Stage

	// Attempt returns the retry attempt number (1 = first attempt).
	Attempt() int
}

// executionContext is the internal implementation of Context.
type executionContext struct {
	context.Context

	logger  *slog.Logger
	runID   string
	stage   Stage
	attempt int
}

// Logger returns the configured logger.
func (c *executionContext) Logger() *slog.Logger {
	return c.logger
}

// RunID returns the run identifier.
func (c *executionContext) RunID() string {
	return c.runID
}

// Stage returns the stage currently executing.
func (c *executionContext) Stage() Stage {
	return c.stage
}

// Attempt returns the retry attempt number.
func (c *executionContext) Attempt() int {
	return c.attempt
}

// ContextOption configures a Context.
type ContextOption func(*executionContext)

// WithLogger sets the logger for the context.
// The logger is enriched with run_id, stage, and attempt during execution.
func WithLogger(logger *slog.Logger) ContextOption {
	return func(c *executionContext) {
		c.logger = logger
	}
}

// WithContextRunID sets the run identifier for the context.
// If not set, a UUID is auto-generated. This identifier is used for
// logging and tracing; for checkpointing, pass WithRunID() to Run().
func WithContextRunID(id string) ContextOption {
	return func(c *executionContext) {
		c.runID = id
	}
}

// NewContext creates an execution context from a standard context.
//
// Example:
//
//	ctx := bookforge.NewContext(context.Background(),
//	    bookforge.WithLogger(myLogger),
//	    bookforge.WithContextRunID("run-123"))
func NewContext(ctx context.Context, opts ...ContextOption) Context {
	ec := &executionContext{
		Context: ctx,
		logger:  slog.Default(),
		runID:   uuid.New().String(),
		attempt: 1,
	}

	for _, opt := range opts {
		opt(ec)
	}

	return ec
}

// withStage returns a new context with the given stage set.
// Used internally by the Engine to enrich the context per stage.
func (c *executionContext) withStage(stage Stage) *executionContext {
	return &executionContext{
		Context: c.Context,
		logger:  observability.EnrichLogger(c.logger, c.runID, stage.String(), c.attempt),
		runID:   c.runID,
		stage:   stage,
		attempt: c.attempt,
	}
}
