package bookforge

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func routerStates() map[string]struct {
	state BookState
	want  Stage
} {
	fresh := NewBookState("tides", "poetry", "adults")

	titled := fresh
	titled.Title = "Salt Lines"

	outlined := titled
	outlined.Outline = []ChapterOutline{
		{Number: 1, Title: "Ebb", Description: "low water"},
		{Number: 2, Title: "Flood", Description: "high water"},
	}

	midWrite := outlined
	midWrite.Chapters = map[int]string{1: "first chapter text"}
	midWrite.CurrentChapter = 1

	written := midWrite
	written.Chapters = map[int]string{1: "first chapter text", 2: "second chapter text"}
	written.CurrentChapter = 2

	reviewed := written
	reviewed.Review = &ReviewNotes{OverallAssessment: "fine"}

	exported := reviewed
	exported.ArtifactPath = "/books/Salt_Lines.docx"

	completed := exported
	completed.Status = StatusCompleted

	failed := written
	failed.Status = StatusFailed
	failed.ErrorMessage = "chapter 2 write failed"

	return map[string]struct {
		state BookState
		want  Stage
	}{
		"fresh state awaits title":          {fresh, StageAwaitingTitle},
		"title set awaits outline":          {titled, StageAwaitingOutline},
		"outline set starts writing":        {outlined, StageWritingChapters},
		"cursor mid-outline keeps writing":  {midWrite, StageWritingChapters},
		"all chapters written awaits review": {written, StageAwaitingReview},
		"review set awaits export":          {reviewed, StageAwaitingExport},
		"artifact produced completes":       {exported, StageCompleted},
		"completed status is terminal":      {completed, StageCompleted},
		"failed status short-circuits":      {failed, StageFailed},
	}
}

func TestRoute(t *testing.T) {
	for name, tt := range routerStates() {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tt.want, Route(tt.state))
		})
	}
}

// Routing twice on the same state must yield the same decision; this is
// what makes resume-from-checkpoint safe.
func TestRoute_Idempotent(t *testing.T) {
	for name, tt := range routerStates() {
		t.Run(name, func(t *testing.T) {
			first := Route(tt.state)
			second := Route(tt.state)
			assert.Equal(t, first, second)
		})
	}
}

// Failed status wins over every other signal, even a fully-populated
// state that would otherwise complete.
func TestRoute_FailedShortCircuit(t *testing.T) {
	st := writtenState()
	st.Review = &ReviewNotes{}
	st.ArtifactPath = "/books/x.docx"
	st.Status = StatusFailed
	st.ErrorMessage = "boom"

	assert.Equal(t, StageFailed, Route(st))
}
