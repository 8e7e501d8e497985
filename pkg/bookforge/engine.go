package bookforge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"runtime/debug"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/randalmurphal/bookforge/pkg/bookforge/checkpoint"
	"github.com/randalmurphal/bookforge/pkg/bookforge/observability"
)

// Engine drives the workflow: it repeatedly asks the Router for the
// next stage, executes that stage function, commits the resulting
// state, and checkpoints it before the next routing decision
// (commit-then-decide). Stages execute strictly sequentially.
type Engine struct {
	pipeline *Pipeline
}

// NewEngine creates an engine over a pipeline.
func NewEngine(pipeline *Pipeline) *Engine {
	return &Engine{pipeline: pipeline}
}

// Run executes the workflow from the given state until the Router
// returns a terminal stage.
//
// On success, returns the completed state. On a stage failure, the
// returned state carries Status failed, ErrorMessage, and FailedStage
// alongside all partial progress (title, outline, written chapters),
// and the error describes the failing stage.
//
// Example:
//
//	ctx := bookforge.NewContext(context.Background())
//	final, err := engine.Run(ctx, bookforge.NewBookState(theme, genre, audience),
//	    bookforge.WithCheckpointing(store),
//	    bookforge.WithRunID("run-123"))
func (e *Engine) Run(ctx Context, state BookState, opts ...RunOption) (result BookState, runErr error) {
	if ctx == nil {
		return state, ErrNilContext
	}

	cfg := defaultRunConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	if cfg.checkpointStore != nil && cfg.runID == "" {
		return state, ErrRunIDRequired
	}

	runID := cfg.runID
	if runID == "" {
		runID = ctx.RunID()
	}

	startTime := time.Now()
	observability.LogRunStart(cfg.logger, runID)

	var tracingCtx context.Context = ctx
	var runSpan trace.Span
	if cfg.tracingEnabled {
		tracingCtx, runSpan = cfg.spans.StartRunSpan(ctx, "bookforge", runID)
		defer func() {
			cfg.spans.EndSpanWithError(runSpan, runErr)
		}()
	}

	var stageCount int
	result, stageCount, runErr = e.run(tracingCtx, ctx, state, &cfg)

	duration := time.Since(startTime)
	durationMs := float64(duration.Milliseconds())
	cfg.metrics.RecordRun(ctx, runErr == nil, duration)

	if runErr != nil {
		observability.LogRunError(cfg.logger, runID, runErr, durationMs, lastStage(runErr))
	} else {
		observability.LogRunComplete(cfg.logger, runID, durationMs, stageCount)
	}

	return result, runErr
}

// run is the engine loop shared by Run and Resume.
// tracingCtx carries span context; ctx is the workflow Context.
// Returns the final state, the number of stages executed, and any error.
func (e *Engine) run(tracingCtx context.Context, ctx Context, state BookState, cfg *runConfig) (BookState, int, error) {
	transitions := 0
	stageCount := 0
	prevStage := ""

	for {
		stage := Route(state)
		if stage.IsTerminal() {
			return state, stageCount, nil
		}

		transitions++
		limit := cfg.maxTransitions
		if limit == 0 {
			limit = len(state.Outline) + defaultTransitionSlack
		}
		if transitions > limit {
			return state, stageCount, &MaxTransitionsError{Max: limit, Stage: stage, State: state}
		}

		// Cancellation is coarse: stop before invoking the next stage.
		select {
		case <-ctx.Done():
			return state, stageCount, &CancellationError{
				Stage: stage,
				State: state,
				Cause: ctx.Err(),
			}
		default:
		}

		stageCtx := ctx
		if ec, ok := ctx.(*executionContext); ok {
			stageCtx = ec.withStage(stage)
		}

		observability.LogStageStart(cfg.logger, stage.String())

		stageTracingCtx := tracingCtx
		var stageSpan trace.Span
		if cfg.tracingEnabled {
			stageTracingCtx, stageSpan = cfg.spans.StartStageSpan(tracingCtx, stage.String())
		}

		stageStart := time.Now()
		before := state
		newState, stageErr := e.executeStage(stageCtx, stage, state)
		stageDuration := time.Since(stageStart)

		cfg.metrics.RecordStageExecution(stageTracingCtx, stage.String(), stageDuration, stageErr)
		if cfg.tracingEnabled {
			cfg.spans.EndSpanWithError(stageSpan, stageErr)
		}

		if stageErr != nil {
			observability.LogStageError(cfg.logger, stage.String(), stageErr)

			// Mark failed but keep all partial progress; the failed
			// snapshot is checkpointed so a later inspection or manual
			// resume still sees the written chapters.
			newState.Status = StatusFailed
			newState.ErrorMessage = stageErr.Error()
			newState.FailedStage = stage.String()
			state = newState

			if cfg.checkpointStore != nil {
				if err := e.saveCheckpoint(ctx, cfg, stage, prevStage, state, StageFailed); err != nil {
					observability.LogCheckpointError(cfg.logger, stage.String(), "save", err)
				}
			}
			return state, stageCount, stageErr
		}

		observability.LogStageComplete(cfg.logger, stage.String(), float64(stageDuration.Milliseconds()))

		newState.ErrorMessage = ""
		newState.FailedStage = ""
		state = newState
		stageCount++

		if stage == StageWritingChapters && before.CurrentChapter < len(before.Outline) {
			num := before.Outline[before.CurrentChapter].Number
			if text, ok := state.Chapters[num]; ok {
				cfg.metrics.RecordChapterWritten(ctx, num, int64(len(text)))
			}
		}

		// Commit-then-decide: the state is checkpointed together with the
		// routing decision it implies, so resume replays nothing.
		next := Route(state)
		if cfg.checkpointStore != nil {
			if err := e.saveCheckpoint(ctx, cfg, stage, prevStage, state, next); err != nil {
				return state, stageCount, err
			}
		}

		prevStage = stage.String()
	}
}

// executeStage executes a single stage function with panic recovery.
func (e *Engine) executeStage(ctx Context, stage Stage, state BookState) (result BookState, err error) {
	fn, ok := e.pipeline.StageFunc(stage)
	if !ok {
		// Unreachable if the Router is correct.
		return state, &StageError{
			Stage: stage,
			Op:    "lookup",
			Err:   fmt.Errorf("no stage function for %s", stage),
		}
	}

	defer func() {
		if r := recover(); r != nil {
			result = state
			err = &PanicError{
				Stage: stage,
				Value: r,
				Stack: string(debug.Stack()),
			}
		}
	}()

	result, err = fn(ctx, state)
	if err != nil {
		return result, &StageError{
			Stage: stage,
			Op:    "execute",
			Err:   err,
		}
	}

	return result, nil
}

// saveCheckpoint persists the committed state after stage execution.
// Failures are logged and swallowed unless checkpointFailureFatal is set.
func (e *Engine) saveCheckpoint(ctx Context, cfg *runConfig, stage Stage, prevStage string, state BookState, next Stage) error {
	stateBytes, err := json.Marshal(state)
	if err != nil {
		if cfg.checkpointFailureFatal {
			return &CheckpointError{Stage: stage, Op: "serialize", Err: err}
		}
		observability.LogCheckpointError(cfg.logger, stage.String(), "serialize", err)
		return nil
	}

	cfg.sequence++
	cp := checkpoint.New(cfg.runID, stage.String(), cfg.sequence, stateBytes, next.String()).
		WithPrevStage(prevStage).
		WithAttempt(ctx.Attempt())

	data, err := cp.Marshal()
	if err != nil {
		if cfg.checkpointFailureFatal {
			return &CheckpointError{Stage: stage, Op: "marshal", Err: err}
		}
		observability.LogCheckpointError(cfg.logger, stage.String(), "marshal", err)
		return nil
	}

	if err := cfg.checkpointStore.Save(cfg.runID, stage.String(), data); err != nil {
		if cfg.checkpointFailureFatal {
			return &CheckpointError{Stage: stage, Op: "save", Err: err}
		}
		observability.LogCheckpointError(cfg.logger, stage.String(), "save", err)
		return nil
	}

	observability.LogCheckpoint(cfg.logger, stage.String(), len(data))
	cfg.metrics.RecordCheckpoint(ctx, stage.String(), int64(len(data)))
	return nil
}

// lastStage extracts the stage name from an engine error for logging.
func lastStage(err error) string {
	var stageErr *StageError
	if errors.As(err, &stageErr) {
		return stageErr.Stage.String()
	}
	var panicErr *PanicError
	if errors.As(err, &panicErr) {
		return panicErr.Stage.String()
	}
	var cancelErr *CancellationError
	if errors.As(err, &cancelErr) {
		return cancelErr.Stage.String()
	}
	var maxErr *MaxTransitionsError
	if errors.As(err, &maxErr) {
		return maxErr.Stage.String()
	}
	return ""
}
