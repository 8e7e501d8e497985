package bookforge

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/randalmurphal/bookforge/pkg/bookforge/checkpoint"
)

// Resume continues a run from its latest checkpoint.
//
// Because the Router derives the next stage from state alone, resuming
// needs no replay by default: the restored snapshot routes to exactly
// the stage that had not yet run. A run that was already terminal is
// returned as-is.
//
// Example:
//
//	// Previous run crashed after writing chapter 3
//	final, err := engine.Resume(ctx, store, "run-123")
func (e *Engine) Resume(ctx Context, store checkpoint.Store, runID string, opts ...ResumeOption) (BookState, error) {
	var zero BookState

	if ctx == nil {
		return zero, ErrNilContext
	}

	infos, err := store.List(runID)
	if err != nil {
		return zero, fmt.Errorf("list checkpoints: %w", err)
	}
	if len(infos) == 0 {
		return zero, fmt.Errorf("%w: %s", ErrNoCheckpoints, runID)
	}

	// The latest checkpoint is last in sequence order.
	latest := infos[len(infos)-1]
	return e.resumeFromCheckpoint(ctx, store, runID, latest.Stage, opts)
}

// ResumeFrom continues a run from the checkpoint at a specific stage
// rather than the latest. Useful for re-running the tail of a workflow,
// e.g. re-exporting after a writer failure.
func (e *Engine) ResumeFrom(ctx Context, store checkpoint.Store, runID string, stage Stage, opts ...ResumeOption) (BookState, error) {
	var zero BookState

	if ctx == nil {
		return zero, ErrNilContext
	}

	return e.resumeFromCheckpoint(ctx, store, runID, stage.String(), opts)
}

func (e *Engine) resumeFromCheckpoint(ctx Context, store checkpoint.Store, runID, stageName string, opts []ResumeOption) (BookState, error) {
	var zero BookState

	cfg := resumeConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}

	data, err := store.Load(runID, stageName)
	if err != nil {
		if errors.Is(err, checkpoint.ErrNotFound) {
			return zero, fmt.Errorf("%w: %s at stage %s", ErrNoCheckpoints, runID, stageName)
		}
		return zero, fmt.Errorf("load checkpoint: %w", err)
	}

	cp, err := checkpoint.Unmarshal(data)
	if err != nil {
		return zero, fmt.Errorf("%w: %v", ErrDeserializeState, err)
	}

	if cp.Version != checkpoint.Version {
		return zero, fmt.Errorf("%w: got %d, expected %d",
			ErrCheckpointVersionMismatch, cp.Version, checkpoint.Version)
	}

	var state BookState
	if err := json.Unmarshal(cp.State, &state); err != nil {
		return zero, fmt.Errorf("%w: %v", ErrDeserializeState, err)
	}

	if cfg.validateState != nil {
		if err := cfg.validateState(state); err != nil {
			return state, fmt.Errorf("state validation failed: %w", err)
		}
	}

	runCfg := defaultRunConfig()
	runCfg.checkpointStore = store
	runCfg.runID = runID
	runCfg.sequence = cp.Sequence

	if cfg.replayStage {
		// Re-execute the checkpointed stage against its own committed
		// state. The stage must be safely re-runnable.
		stage, err := ParseStage(cp.Stage)
		if err != nil {
			return state, fmt.Errorf("replay: %w", err)
		}
		stageCtx := ctx
		if ec, ok := ctx.(*executionContext); ok {
			stageCtx = ec.withStage(stage)
		}
		state, err = e.executeStage(stageCtx, stage, state)
		if err != nil {
			state.Status = StatusFailed
			state.ErrorMessage = err.Error()
			state.FailedStage = stage.String()
			return state, err
		}
	}

	result, _, err := e.run(ctx, ctx, state, &runCfg)
	return result, err
}
