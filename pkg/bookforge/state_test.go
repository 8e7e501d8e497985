package bookforge

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBookState(t *testing.T) {
	st := NewBookState("tides", "poetry", "adults")

	assert.Equal(t, "tides", st.Theme)
	assert.Equal(t, "poetry", st.Genre)
	assert.Equal(t, "adults", st.Audience)
	assert.Equal(t, StatusInProgress, st.Status)
	assert.NotNil(t, st.Chapters)
	assert.Empty(t, st.Outline)
	assert.Zero(t, st.CurrentChapter)
}

func TestBookState_HasBlankInputs(t *testing.T) {
	assert.False(t, NewBookState("a", "b", "c").HasBlankInputs())
	assert.True(t, NewBookState("", "b", "c").HasBlankInputs())
	assert.True(t, NewBookState("a", "   ", "c").HasBlankInputs())
	assert.True(t, NewBookState("a", "b", "\t\n").HasBlankInputs())
}

func TestBookState_AllChaptersWritten(t *testing.T) {
	st := NewBookState("a", "b", "c")
	assert.False(t, st.AllChaptersWritten(), "empty outline is not written")

	st = writtenState()
	assert.True(t, st.AllChaptersWritten())

	st.CurrentChapter = 1
	assert.False(t, st.AllChaptersWritten())
}

func TestBookState_JSONRoundTrip(t *testing.T) {
	st := writtenState()
	st.Review = &ReviewNotes{
		OverallAssessment: "solid",
		Suggestions:       []string{"tighten the ending"},
	}
	st.ArtifactPath = "/books/The_Last_Light.docx"
	st.Status = StatusCompleted

	data, err := json.Marshal(st)
	require.NoError(t, err)

	var restored BookState
	require.NoError(t, json.Unmarshal(data, &restored))

	assert.Equal(t, st, restored)
}

func TestBookState_Validate(t *testing.T) {
	t.Run("valid in progress", func(t *testing.T) {
		assert.NoError(t, writtenState().Validate())
	})

	t.Run("cursor out of range", func(t *testing.T) {
		st := writtenState()
		st.CurrentChapter = 3
		assert.Error(t, st.Validate())
	})

	t.Run("chapter without outline entry", func(t *testing.T) {
		st := writtenState()
		st.Chapters[9] = "orphan text"
		assert.Error(t, st.Validate())
	})

	t.Run("broken outline numbering", func(t *testing.T) {
		st := writtenState()
		st.Outline[1].Number = 5
		delete(st.Chapters, 2)
		assert.Error(t, st.Validate())
	})

	t.Run("completed without artifact", func(t *testing.T) {
		st := writtenState()
		st.Status = StatusCompleted
		assert.Error(t, st.Validate())
	})

	t.Run("completed with missing chapter text", func(t *testing.T) {
		st := writtenState()
		st.Status = StatusCompleted
		st.ArtifactPath = "/books/x.docx"
		st.Chapters[2] = "   "
		assert.Error(t, st.Validate())
	})

	t.Run("failed without error message", func(t *testing.T) {
		st := writtenState()
		st.Status = StatusFailed
		assert.Error(t, st.Validate())
	})

	t.Run("failed with message", func(t *testing.T) {
		st := writtenState()
		st.Status = StatusFailed
		st.ErrorMessage = "chapter 2 write failed"
		assert.NoError(t, st.Validate())
	})
}
