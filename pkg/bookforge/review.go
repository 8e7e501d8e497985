package bookforge

import (
	"strings"

	"github.com/randalmurphal/bookforge/pkg/bookforge/extract"
)

// ReviewAndEdit asks the generator for structured feedback on the
// assembled book.
//
// Review output does not gate export, so this stage never fails the
// run: a generation failure yields empty notes, and a response that
// does not parse as JSON is stored verbatim as a single suggestion.
func (p *Pipeline) ReviewAndEdit(ctx Context, state BookState) (BookState, error) {
	raw, err := p.gen.Generate(ctx, reviewPrompt(state), p.genOpts()...)
	if err != nil {
		ctx.Logger().Warn("review generation failed, continuing without notes", "error", err)
		state.Review = &ReviewNotes{}
		return state, nil
	}

	notes := parseReview(raw)
	state.Review = &notes
	return state, nil
}

// parseReview decodes structured feedback, degrading to the raw text as
// a single-element suggestion list when the response is not JSON.
func parseReview(raw string) ReviewNotes {
	var notes ReviewNotes
	if err := extract.Unmarshal(raw, &notes); err == nil {
		return notes
	}
	return ReviewNotes{Suggestions: []string{strings.TrimSpace(raw)}}
}
