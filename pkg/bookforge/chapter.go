package bookforge

import (
	"fmt"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"

	"github.com/randalmurphal/bookforge/pkg/bookforge/llm"
	"github.com/randalmurphal/bookforge/pkg/bookforge/observability"
)

// WriteChapter generates prose for the single chapter at the cursor.
// Invoked once per pending chapter, not once per run.
//
// Unlike the title, chapter content is not optional: an empty or
// too-short response is retried up to the configured per-stage budget,
// and exhaustion fails the run with ChapterWriteError naming the
// chapter. On success the text is stored under the chapter's number and
// the cursor advances.
func (p *Pipeline) WriteChapter(ctx Context, state BookState) (BookState, error) {
	idx := state.CurrentChapter
	if idx < 0 || idx >= len(state.Outline) {
		return state, fmt.Errorf("no pending chapter at cursor %d (outline has %d)", idx, len(state.Outline))
	}
	ch := state.Outline[idx]

	prompt := chapterPrompt(state, ch, prevChapterContext(state))
	attempts := uint(p.cfg.MaxRetriesPerStage) + 1

	var text string
	err := retry.Do(
		func() error {
			raw, err := p.gen.Generate(ctx, prompt, p.genOpts(llm.WithTemperature(0.8))...)
			if err != nil {
				return err
			}
			raw = strings.TrimSpace(raw)
			if len(raw) < p.cfg.MinChapterChars {
				return fmt.Errorf("chapter %d response too short: %d chars, want at least %d",
					ch.Number, len(raw), p.cfg.MinChapterChars)
			}
			text = raw
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(attempts),
		retry.Delay(200*time.Millisecond),
		retry.MaxDelay(2*time.Second),
		retry.LastErrorOnly(true),
		retry.RetryIf(llm.IsRetryable),
		retry.OnRetry(func(n uint, err error) {
			ctx.Logger().Warn("retrying chapter write",
				"chapter", ch.Number, "attempt", n+1, "error", err)
		}),
	)
	if err != nil {
		return state, &ChapterWriteError{Chapter: ch.Number, Attempts: int(attempts), Err: err}
	}

	state.Chapters = state.cloneChapters()
	state.Chapters[ch.Number] = text
	state.CurrentChapter = idx + 1

	observability.LogChapterWritten(ctx.Logger(), ch.Number, len(text))
	return state, nil
}
