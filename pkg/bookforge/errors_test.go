package bookforge

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/randalmurphal/bookforge/pkg/bookforge/extract"
)

func TestOutlineGenerationError(t *testing.T) {
	inner := &extract.MalformedResponseError{Snippet: "not json"}
	err := &OutlineGenerationError{Attempts: 2, Err: inner}

	assert.ErrorIs(t, err, ErrOutlineGeneration)
	assert.ErrorIs(t, err, extract.ErrMalformedResponse)
	assert.Contains(t, err.Error(), "after 2 attempts")
}

func TestChapterWriteError(t *testing.T) {
	err := &ChapterWriteError{Chapter: 3, Attempts: 3, Err: errors.New("response too short")}

	assert.ErrorIs(t, err, ErrChapterWrite)
	assert.Contains(t, err.Error(), "chapter 3")
	assert.Contains(t, err.Error(), "after 3 attempts")
}

func TestExportError(t *testing.T) {
	t.Run("missing chapter", func(t *testing.T) {
		err := &ExportError{Chapter: 2}
		assert.ErrorIs(t, err, ErrExport)
		assert.Contains(t, err.Error(), "chapter 2 has no text")
	})

	t.Run("writer failure", func(t *testing.T) {
		inner := errors.New("disk full")
		err := &ExportError{Err: inner}
		assert.ErrorIs(t, err, ErrExport)
		assert.ErrorIs(t, err, inner)
	})
}

func TestStageError_Unwrap(t *testing.T) {
	inner := &ChapterWriteError{Chapter: 1, Attempts: 3, Err: errors.New("empty")}
	err := &StageError{Stage: StageWritingChapters, Op: "execute", Err: inner}

	assert.ErrorIs(t, err, ErrChapterWrite)

	var chErr *ChapterWriteError
	assert.ErrorAs(t, err, &chErr)
	assert.Equal(t, 1, chErr.Chapter)
}

func TestCancellationError_Unwrap(t *testing.T) {
	err := &CancellationError{
		Stage: StageWritingChapters,
		Cause: context.Canceled,
	}

	assert.ErrorIs(t, err, context.Canceled)
	assert.Contains(t, err.Error(), "writing_chapters")
}

func TestMaxTransitionsError(t *testing.T) {
	err := &MaxTransitionsError{Max: 10, Stage: StageWritingChapters}

	assert.ErrorIs(t, err, ErrMaxTransitions)
	assert.Contains(t, err.Error(), "10")
}

func TestCheckpointError_Unwrap(t *testing.T) {
	inner := errors.New("disk full")
	err := &CheckpointError{Stage: StageAwaitingReview, Op: "save", Err: inner}

	assert.ErrorIs(t, err, inner)
	assert.Contains(t, err.Error(), "awaiting_review")
}
