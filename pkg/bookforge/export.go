package bookforge

import (
	"strings"

	"github.com/randalmurphal/bookforge/pkg/bookforge/document"
)

// ExportBook assembles the final document: title page, then each
// chapter in outline order.
//
// Precondition: every outline entry has stored text. A missing chapter
// is an internal-consistency failure (the Router should never route
// here otherwise) and fails with ExportError before any artifact is
// written. On success the artifact path is recorded and the run is
// marked completed.
func (p *Pipeline) ExportBook(ctx Context, state BookState) (BookState, error) {
	chapters := make([]document.Chapter, 0, len(state.Outline))
	for _, ch := range state.Outline {
		text, ok := state.Chapters[ch.Number]
		if !ok || strings.TrimSpace(text) == "" {
			return state, &ExportError{Chapter: ch.Number}
		}
		chapters = append(chapters, document.Chapter{
			Number: ch.Number,
			Title:  ch.Title,
			Body:   text,
		})
	}

	meta := document.Meta{Genre: state.Genre, Audience: state.Audience}
	path, err := p.writer.Write(state.Title, meta, chapters)
	if err != nil {
		return state, &ExportError{Err: err}
	}

	state.ArtifactPath = path
	state.Status = StatusCompleted
	ctx.Logger().Info("book exported", "path", path, "chapters", len(chapters))
	return state, nil
}
