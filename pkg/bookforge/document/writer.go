// Package document assembles the final book artifact.
//
// The engine only depends on the Writer interface; the DOCX
// implementation lives alongside it. Styling fidelity is out of scope:
// the artifact is a title page followed by each chapter's heading and
// body, in outline order.
package document

import "strings"

// Chapter is one ordered unit of the exported book.
type Chapter struct {
	// Number is the 1-based chapter number from the outline.
	Number int
	// Title is the chapter heading.
	Title string
	// Body is the generated prose.
	Body string
}

// Meta carries the title-page fields beyond the title itself.
type Meta struct {
	Genre    string
	Audience string
}

// Writer produces a single document artifact from the assembled book.
// Implementations return the path of the written artifact.
type Writer interface {
	Write(title string, meta Meta, chapters []Chapter) (string, error)
}

// SanitizeFilename derives a filesystem-safe base name from a book title.
// Spaces become underscores; path separators and other hostile characters
// are dropped.
func SanitizeFilename(title string) string {
	title = strings.TrimSpace(title)
	if title == "" {
		return "untitled"
	}

	var b strings.Builder
	b.Grow(len(title))
	for _, r := range title {
		switch {
		case r == ' ' || r == '\t':
			b.WriteByte('_')
		case r == '/' || r == '\\' || r == ':' || r == '*' || r == '?' ||
			r == '"' || r == '<' || r == '>' || r == '|' || r == 0:
			// dropped
		default:
			b.WriteRune(r)
		}
	}

	out := strings.Trim(b.String(), "._")
	if out == "" {
		return "untitled"
	}
	return out
}
