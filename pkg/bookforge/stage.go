package bookforge

import "fmt"

// Stage identifies a state of the workflow state machine.
// The set is closed: the Router maps every reachable BookState to
// exactly one Stage, and the Engine dispatches on it exhaustively.
type Stage int

const (
	// StageAwaitingTitle runs GetBookInfo.
	StageAwaitingTitle Stage = iota
	// StageAwaitingOutline runs CreateOutline.
	StageAwaitingOutline
	// StageWritingChapters runs WriteChapter for the chapter at the cursor.
	StageWritingChapters
	// StageAwaitingReview runs ReviewAndEdit.
	StageAwaitingReview
	// StageAwaitingExport runs ExportBook.
	StageAwaitingExport
	// StageCompleted is terminal: the artifact was produced.
	StageCompleted
	// StageFailed is terminal: a stage exhausted its retry budget.
	StageFailed
)

// stageNames are the stable string forms used in checkpoints and logs.
var stageNames = map[Stage]string{
	StageAwaitingTitle:   "awaiting_title",
	StageAwaitingOutline: "awaiting_outline",
	StageWritingChapters: "writing_chapters",
	StageAwaitingReview:  "awaiting_review",
	StageAwaitingExport:  "awaiting_export",
	StageCompleted:       "completed",
	StageFailed:          "failed",
}

// String returns the stable string form of the stage.
func (s Stage) String() string {
	if name, ok := stageNames[s]; ok {
		return name
	}
	return fmt.Sprintf("unknown(%d)", int(s))
}

// IsTerminal reports whether the stage ends the workflow.
func (s Stage) IsTerminal() bool {
	return s == StageCompleted || s == StageFailed
}

// ParseStage converts a stable string form back to a Stage.
// Used when restoring checkpoints.
func ParseStage(name string) (Stage, error) {
	for stage, n := range stageNames {
		if n == name {
			return stage, nil
		}
	}
	return 0, fmt.Errorf("unknown stage %q", name)
}

// StageFunc is a single workflow stage: a transformation of BookState.
// Stage functions receive the state by value and return the updated
// state; the Engine commits and checkpoints the result before asking
// the Router for the next stage.
type StageFunc func(ctx Context, state BookState) (BookState, error)
