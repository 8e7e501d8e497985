package bookforge

import (
	"fmt"
	"strings"

	"github.com/randalmurphal/bookforge/pkg/bookforge/extract"
	"github.com/randalmurphal/bookforge/pkg/bookforge/llm"
)

// CreateOutline asks the generator for a JSON array of chapter
// descriptors and validates it into the state's outline.
//
// The first failed attempt (generation, parse, or validation) gets one
// retry with a strict "JSON only" reminder appended to the prompt;
// a second failure returns OutlineGenerationError.
func (p *Pipeline) CreateOutline(ctx Context, state BookState) (BookState, error) {
	prompt := outlinePrompt(state.Title, state.Theme, state.Genre, state.Audience, p.cfg.ChapterCount)

	var outline []ChapterOutline
	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		if attempt > 0 {
			prompt += strictJSONReminder
		}

		raw, err := p.gen.Generate(ctx, prompt, p.genOpts(llm.WithTemperature(0.7))...)
		if err != nil {
			lastErr = err
			ctx.Logger().Warn("outline generation failed", "attempt", attempt+1, "error", err)
			continue
		}

		outline, err = parseOutline(raw)
		if err != nil {
			lastErr = err
			ctx.Logger().Warn("outline response rejected", "attempt", attempt+1, "error", err)
			continue
		}

		state.Outline = outline
		return state, nil
	}

	return state, &OutlineGenerationError{Attempts: 2, Err: lastErr}
}

// parseOutline extracts and validates the chapter descriptors.
// Chapter numbers are re-assigned 1..N trusting array order, so a model
// that returns inconsistent or missing numbers still yields a valid
// contiguous outline.
func parseOutline(raw string) ([]ChapterOutline, error) {
	var entries []ChapterOutline
	if err := extract.Unmarshal(raw, &entries); err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("outline is empty")
	}

	for i := range entries {
		if strings.TrimSpace(entries[i].Title) == "" {
			return nil, fmt.Errorf("outline entry %d has no title", i+1)
		}
		if strings.TrimSpace(entries[i].Description) == "" {
			return nil, fmt.Errorf("outline entry %d has no description", i+1)
		}
		entries[i].Number = i + 1
	}

	return entries, nil
}
