package bookforge

import (
	"strings"

	"github.com/randalmurphal/bookforge/pkg/bookforge/llm"
)

// GetBookInfo generates the book title from the theme, genre, and
// audience inputs.
//
// Title generation is low-risk to degrade gracefully: on an empty or
// failed response it retries once, and then falls back to a
// deterministic title derived from the inputs rather than failing the
// run. Blank inputs are a precondition violation and do fail the run.
func (p *Pipeline) GetBookInfo(ctx Context, state BookState) (BookState, error) {
	if state.HasBlankInputs() {
		return state, ErrMissingInputs
	}

	prompt := titlePrompt(state.Theme, state.Genre, state.Audience)

	var title string
	for attempt := 0; attempt < 2; attempt++ {
		raw, err := p.gen.Generate(ctx, prompt, p.genOpts(llm.WithTemperature(0.9))...)
		if err != nil {
			ctx.Logger().Warn("title generation failed",
				"attempt", attempt+1, "error", err)
			continue
		}
		if title = cleanTitle(raw); title != "" {
			break
		}
	}
	if title == "" {
		title = fallbackTitle(state.Theme, state.Genre)
		ctx.Logger().Warn("using fallback title", "title", title)
	}

	state.Title = title
	return state, nil
}

// cleanTitle reduces a raw model response to a single-line title:
// the first non-empty line, with surrounding whitespace and quote
// characters trimmed.
func cleanTitle(raw string) string {
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		line = strings.Trim(line, "\"'“”‘’`")
		line = strings.TrimSpace(line)
		if line != "" {
			return line
		}
	}
	return ""
}

// fallbackTitle derives a deterministic title from the inputs.
func fallbackTitle(theme, genre string) string {
	return titleCase(theme) + ": A " + titleCase(genre) + " Story"
}

func titleCase(s string) string {
	words := strings.Fields(strings.TrimSpace(s))
	for i, w := range words {
		r := []rune(w)
		if len(r) > 0 {
			words[i] = strings.ToUpper(string(r[0])) + string(r[1:])
		}
	}
	return strings.Join(words, " ")
}
