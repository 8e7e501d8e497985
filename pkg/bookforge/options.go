package bookforge

import (
	"log/slog"

	"github.com/randalmurphal/bookforge/pkg/bookforge/checkpoint"
	"github.com/randalmurphal/bookforge/pkg/bookforge/observability"
)

// defaultTransitionSlack is added to the outline length when no explicit
// transition limit is configured: title + outline + review + export plus
// headroom for the retry paths.
const defaultTransitionSlack = 8

// runConfig holds per-run execution settings.
type runConfig struct {
	// maxTransitions limits the engine loop. Zero derives the limit from
	// the outline length plus defaultTransitionSlack.
	maxTransitions int

	// Checkpointing
	checkpointStore checkpoint.Store
	runID           string
	sequence        int
	// checkpointFailureFatal aborts the run on checkpoint errors instead
	// of logging and continuing.
	checkpointFailureFatal bool

	// Observability
	logger         *slog.Logger
	metrics        observability.MetricsRecorder
	spans          observability.SpanManager
	tracingEnabled bool
}

// defaultRunConfig returns the default execution settings.
func defaultRunConfig() runConfig {
	return runConfig{
		metrics: observability.NoopMetrics{},
		spans:   observability.NoopSpanManager{},
	}
}

// RunOption configures a single Run() invocation.
type RunOption func(*runConfig)

// WithMaxTransitions overrides the stage transition limit.
// The default limit is len(outline) + 8, recomputed as the outline
// becomes known.
func WithMaxTransitions(max int) RunOption {
	return func(cfg *runConfig) {
		cfg.maxTransitions = max
	}
}

// WithCheckpointing enables state snapshots after every committed stage.
// Requires WithRunID.
func WithCheckpointing(store checkpoint.Store) RunOption {
	return func(cfg *runConfig) {
		cfg.checkpointStore = store
	}
}

// WithRunID sets the run identifier used as the checkpoint key.
func WithRunID(runID string) RunOption {
	return func(cfg *runConfig) {
		cfg.runID = runID
	}
}

// WithCheckpointFailureFatal makes checkpoint failures abort the run.
// By default checkpoint failures are logged and the run continues.
func WithCheckpointFailureFatal(fatal bool) RunOption {
	return func(cfg *runConfig) {
		cfg.checkpointFailureFatal = fatal
	}
}

// WithObservabilityLogger sets the logger for run and stage lifecycle
// events. Nil disables lifecycle logging (stage functions still log
// through their Context).
func WithObservabilityLogger(logger *slog.Logger) RunOption {
	return func(cfg *runConfig) {
		cfg.logger = logger
	}
}

// WithMetrics sets the metrics recorder for stage, run, chapter, and
// checkpoint metrics.
func WithMetrics(metrics observability.MetricsRecorder) RunOption {
	return func(cfg *runConfig) {
		if metrics != nil {
			cfg.metrics = metrics
		}
	}
}

// WithTracing enables trace spans: one run span with a child span per
// stage execution.
func WithTracing(spans observability.SpanManager) RunOption {
	return func(cfg *runConfig) {
		if spans != nil {
			cfg.spans = spans
			cfg.tracingEnabled = true
		}
	}
}

// resumeConfig holds Resume() settings.
type resumeConfig struct {
	replayStage   bool
	validateState func(BookState) error
}

// ResumeOption configures a Resume() invocation.
type ResumeOption func(*resumeConfig)

// WithReplayStage re-executes the checkpointed stage instead of
// continuing from the routing decision. The stage must be safely
// re-runnable against its own committed state.
func WithReplayStage() ResumeOption {
	return func(cfg *resumeConfig) {
		cfg.replayStage = true
	}
}

// WithStateValidation runs a validation function against the restored
// state before execution continues. Pass BookState.Validate for the
// built-in invariant checks.
func WithStateValidation(validate func(BookState) error) ResumeOption {
	return func(cfg *resumeConfig) {
		cfg.validateState = validate
	}
}
