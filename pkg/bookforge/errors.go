package bookforge

import (
	"errors"
	"fmt"
)

// Sentinel errors for workflow preconditions and execution.
var (
	// ErrNilContext indicates Run() was called with a nil context.
	ErrNilContext = errors.New("context cannot be nil")

	// ErrMissingInputs indicates a blank theme, genre, or audience.
	ErrMissingInputs = errors.New("theme, genre, and audience are required")

	// ErrMaxTransitions indicates the engine loop exceeded the configured limit.
	ErrMaxTransitions = errors.New("exceeded maximum stage transitions")

	// ErrOutlineGeneration indicates outline retries were exhausted.
	ErrOutlineGeneration = errors.New("outline generation failed")

	// ErrChapterWrite indicates per-chapter retries were exhausted.
	ErrChapterWrite = errors.New("chapter write failed")

	// ErrExport indicates the export stage failed.
	ErrExport = errors.New("export failed")
)

// Sentinel errors for checkpointing and resume.
var (
	// ErrRunIDRequired indicates checkpointing was enabled without a run ID.
	ErrRunIDRequired = errors.New("run ID required for checkpointing")

	// ErrNoCheckpoints indicates no checkpoints exist for the run.
	ErrNoCheckpoints = errors.New("no checkpoints found for run")

	// ErrDeserializeState indicates state deserialization failed.
	ErrDeserializeState = errors.New("failed to deserialize state")

	// ErrCheckpointVersionMismatch indicates the checkpoint version is incompatible.
	ErrCheckpointVersionMismatch = errors.New("checkpoint version mismatch")
)

// OutlineGenerationError reports outline retry exhaustion.
type OutlineGenerationError struct {
	// Attempts is the number of generation attempts made.
	Attempts int
	// Err is the error from the last attempt.
	Err error
}

// Error implements the error interface.
func (e *OutlineGenerationError) Error() string {
	return fmt.Sprintf("outline generation failed after %d attempts: %v", e.Attempts, e.Err)
}

// Unwrap returns the sentinel and the last attempt's error for
// errors.Is/As support.
func (e *OutlineGenerationError) Unwrap() []error {
	return []error{ErrOutlineGeneration, e.Err}
}

// ChapterWriteError reports per-chapter retry exhaustion.
type ChapterWriteError struct {
	// Chapter is the 1-based number of the chapter that failed.
	Chapter int
	// Attempts is the number of generation attempts made.
	Attempts int
	// Err is the error from the last attempt.
	Err error
}

// Error implements the error interface.
func (e *ChapterWriteError) Error() string {
	return fmt.Sprintf("chapter %d write failed after %d attempts: %v", e.Chapter, e.Attempts, e.Err)
}

// Unwrap returns the sentinel and the last attempt's error for
// errors.Is/As support.
func (e *ChapterWriteError) Unwrap() []error {
	return []error{ErrChapterWrite, e.Err}
}

// ExportError reports an export failure: either an internal consistency
// violation (an outline chapter without text) or a writer failure.
type ExportError struct {
	// Chapter is the outline chapter missing text; zero for writer failures.
	Chapter int
	// Err is the underlying writer error, nil for consistency violations.
	Err error
}

// Error implements the error interface.
func (e *ExportError) Error() string {
	if e.Chapter > 0 {
		return fmt.Sprintf("export: chapter %d has no text", e.Chapter)
	}
	return fmt.Sprintf("export: %v", e.Err)
}

// Unwrap returns the sentinel and the underlying error for
// errors.Is/As support.
func (e *ExportError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrExport, e.Err}
	}
	return []error{ErrExport}
}

// StageError wraps an error with stage context.
type StageError struct {
	// Stage is the stage that failed.
	Stage Stage
	// Op is the operation that failed (e.g., "execute").
	Op string
	// Err is the underlying error from the stage function.
	Err error
}

// Error implements the error interface.
func (e *StageError) Error() string {
	return fmt.Sprintf("stage %s: %s: %v", e.Stage, e.Op, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *StageError) Unwrap() error {
	return e.Err
}

// PanicError captures panic information from stage execution.
type PanicError struct {
	// Stage is the stage that panicked.
	Stage Stage
	// Value is the value passed to panic().
	Value any
	// Stack is the full stack trace at the point of panic.
	Stack string
}

// Error implements the error interface.
func (e *PanicError) Error() string {
	return fmt.Sprintf("stage %s panicked: %v", e.Stage, e.Value)
}

// CancellationError captures the state when execution was cancelled.
// It preserves the state at the point of cancellation for recovery.
type CancellationError struct {
	// Stage is the stage that was about to execute.
	Stage Stage
	// State is the committed state at cancellation.
	State BookState
	// Cause is the underlying cancellation cause.
	Cause error
}

// Error implements the error interface.
func (e *CancellationError) Error() string {
	return fmt.Sprintf("cancelled before stage %s: %v", e.Stage, e.Cause)
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *CancellationError) Unwrap() error {
	return e.Cause
}

// MaxTransitionsError provides context when the loop limit is exceeded.
type MaxTransitionsError struct {
	// Max is the transition limit in effect.
	Max int
	// Stage is the stage that would have executed next.
	Stage Stage
	// State is the committed state at termination.
	State BookState
}

// Error implements the error interface.
func (e *MaxTransitionsError) Error() string {
	return fmt.Sprintf("exceeded maximum stage transitions (%d) at stage %s", e.Max, e.Stage)
}

// Unwrap returns ErrMaxTransitions for errors.Is support.
func (e *MaxTransitionsError) Unwrap() error {
	return ErrMaxTransitions
}

// CheckpointError wraps errors from checkpoint operations.
type CheckpointError struct {
	// Stage is the stage where checkpointing failed.
	Stage Stage
	// Op is the operation that failed ("serialize", "marshal", "save").
	Op string
	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *CheckpointError) Error() string {
	return fmt.Sprintf("checkpoint %s at stage %s: %v", e.Op, e.Stage, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *CheckpointError) Unwrap() error {
	return e.Err
}
