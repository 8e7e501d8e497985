package bookforge

import (
	"fmt"
	"strings"
)

// prevContextChars is how much of the previous chapter is carried into
// the next chapter's prompt for coherence.
const prevContextChars = 500

// chapterWordTarget is the word count requested from the model per chapter.
const chapterWordTarget = 1500

// strictJSONReminder is appended to a structured prompt when the first
// response failed to parse.
const strictJSONReminder = "\n\nIMPORTANT: Return ONLY the JSON, with no surrounding text, no markdown, and no code fences."

func titlePrompt(theme, genre, audience string) string {
	return fmt.Sprintf(
		"You are a book editor. Propose a compelling title for a %s book aimed at %s.\n"+
			"Theme: %s\n"+
			"Respond with the title only, on a single line, with no quotes and no explanation.",
		genre, audience, theme)
}

func outlinePrompt(title, theme, genre, audience string, chapterCount int) string {
	return fmt.Sprintf(
		"Create a chapter outline for the book %q, a %s book for %s.\n"+
			"Theme: %s\n"+
			"Produce exactly %d chapters.\n"+
			"Respond with a JSON array where each element is an object with the fields "+
			`"chapter_number" (integer, starting at 1), "title" (string), and "description" (string).`,
		title, genre, audience, theme, chapterCount)
}

func chapterPrompt(state BookState, ch ChapterOutline, prevContext string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are writing the book %q, a %s book for %s.\n", state.Title, state.Genre, state.Audience)
	fmt.Fprintf(&b, "Theme: %s\n\n", state.Theme)
	fmt.Fprintf(&b, "Write the full text of chapter %d, titled %q.\n", ch.Number, ch.Title)
	fmt.Fprintf(&b, "Chapter description: %s\n", ch.Description)
	if prevContext != "" {
		fmt.Fprintf(&b, "\nThe previous chapter began:\n%s\n", prevContext)
	}
	fmt.Fprintf(&b, "\nWrite at least %d words of polished prose. Respond with the chapter text only, "+
		"without repeating the chapter title or number.", chapterWordTarget)
	return b.String()
}

func reviewPrompt(state BookState) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Review the following %s book for %s and respond with a JSON object containing "+
		`"overall_assessment" (string) and "suggestions" (array of strings).`+"\n\n", state.Genre, state.Audience)
	fmt.Fprintf(&b, "Title: %s\n\nOutline:\n", state.Title)
	for _, ch := range state.Outline {
		fmt.Fprintf(&b, "%d. %s: %s\n", ch.Number, ch.Title, ch.Description)
	}
	b.WriteString("\n")
	for _, ch := range state.Outline {
		fmt.Fprintf(&b, "Chapter %d: %s\n%s\n\n", ch.Number, ch.Title, state.Chapters[ch.Number])
	}
	return b.String()
}

// prevChapterContext returns the opening of the chapter before the
// cursor, truncated to prevContextChars, or "" for the first chapter.
func prevChapterContext(state BookState) string {
	idx := state.CurrentChapter
	if idx <= 0 || idx > len(state.Outline) {
		return ""
	}
	prev := state.Chapters[state.Outline[idx-1].Number]
	prev = strings.TrimSpace(prev)
	if len(prev) > prevContextChars {
		prev = prev[:prevContextChars]
	}
	return prev
}
