package bookforge

import (
	"fmt"
	"maps"
	"strings"
)

// Status is the lifecycle state of a workflow run.
type Status string

const (
	// StatusInProgress is the initial status; the workflow is still advancing.
	StatusInProgress Status = "in_progress"
	// StatusCompleted means the artifact was produced. Terminal.
	StatusCompleted Status = "completed"
	// StatusFailed means a stage exhausted its retry budget. Terminal.
	StatusFailed Status = "failed"
)

// ChapterOutline describes one planned chapter.
type ChapterOutline struct {
	// Number is the 1-based chapter number, unique and contiguous.
	Number int `json:"chapter_number"`
	// Title is the chapter heading.
	Title string `json:"title"`
	// Description guides the chapter's prose generation.
	Description string `json:"description"`
}

// ReviewNotes is the structured feedback produced by the review stage.
type ReviewNotes struct {
	OverallAssessment string   `json:"overall_assessment"`
	Suggestions       []string `json:"suggestions"`
}

// BookState is the single shared record threaded through every stage.
// It is owned exclusively by the Engine during a run: stage functions
// receive it by value and return the updated copy, which the Engine
// commits and checkpoints before the next routing decision.
//
// BookState round-trips losslessly through JSON for checkpointing.
type BookState struct {
	// Immutable inputs, set once at initialization.
	Theme    string `json:"theme"`
	Genre    string `json:"genre"`
	Audience string `json:"audience"`

	// Title is absent until GetBookInfo succeeds.
	Title string `json:"title,omitempty"`

	// Outline is empty until CreateOutline succeeds.
	Outline []ChapterOutline `json:"outline,omitempty"`

	// Chapters maps chapter number to generated text, populated
	// incrementally by the writing loop.
	Chapters map[int]string `json:"chapters,omitempty"`

	// CurrentChapter is the 0-based cursor into Outline.
	CurrentChapter int `json:"current_chapter_index"`

	// Review is nil until ReviewAndEdit runs.
	Review *ReviewNotes `json:"review_notes,omitempty"`

	// ArtifactPath is set by ExportBook on success.
	ArtifactPath string `json:"artifact_path,omitempty"`

	Status Status `json:"status"`

	// ErrorMessage is set whenever a stage fails and cleared on the
	// next successful stage.
	ErrorMessage string `json:"error_message,omitempty"`
	// FailedStage names the stage that set ErrorMessage.
	FailedStage string `json:"failed_stage,omitempty"`
}

// NewBookState creates the initial state for a run.
func NewBookState(theme, genre, audience string) BookState {
	return BookState{
		Theme:    theme,
		Genre:    genre,
		Audience: audience,
		Chapters: make(map[int]string),
		Status:   StatusInProgress,
	}
}

// HasBlankInputs reports whether any required input is empty or
// whitespace-only.
func (s BookState) HasBlankInputs() bool {
	return strings.TrimSpace(s.Theme) == "" ||
		strings.TrimSpace(s.Genre) == "" ||
		strings.TrimSpace(s.Audience) == ""
}

// AllChaptersWritten reports whether the writing loop has covered the
// whole outline.
func (s BookState) AllChaptersWritten() bool {
	return len(s.Outline) > 0 && s.CurrentChapter >= len(s.Outline)
}

// cloneChapters returns a copy of the chapter map so stage functions
// never mutate the committed state through a shared map.
func (s BookState) cloneChapters() map[int]string {
	if s.Chapters == nil {
		return make(map[int]string)
	}
	return maps.Clone(s.Chapters)
}

// Validate checks the structural invariants of the state.
// It is called when restoring checkpoints; a violation means the
// snapshot was corrupted or produced by incompatible code.
func (s BookState) Validate() error {
	if s.CurrentChapter < 0 || s.CurrentChapter > len(s.Outline) {
		return fmt.Errorf("chapter cursor %d out of range [0, %d]", s.CurrentChapter, len(s.Outline))
	}

	known := make(map[int]bool, len(s.Outline))
	for i, ch := range s.Outline {
		if ch.Number != i+1 {
			return fmt.Errorf("outline numbering broken at index %d: got chapter %d, want %d", i, ch.Number, i+1)
		}
		known[ch.Number] = true
	}
	for num := range s.Chapters {
		if !known[num] {
			return fmt.Errorf("chapter %d has text but no outline entry", num)
		}
	}

	switch s.Status {
	case StatusCompleted:
		for _, ch := range s.Outline {
			if strings.TrimSpace(s.Chapters[ch.Number]) == "" {
				return fmt.Errorf("status completed but chapter %d has no text", ch.Number)
			}
		}
		if s.ArtifactPath == "" {
			return fmt.Errorf("status completed but no artifact path recorded")
		}
	case StatusFailed:
		if s.ErrorMessage == "" {
			return fmt.Errorf("status failed but no error message recorded")
		}
	case StatusInProgress:
	default:
		return fmt.Errorf("unknown status %q", s.Status)
	}

	return nil
}
