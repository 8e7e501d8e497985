package document

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DocxWriter writes the book as a minimal OOXML (.docx) package.
// The package contains only the parts Word requires: content types,
// the package relationships, and the main document part.
type DocxWriter struct {
	// Dir is the output directory. Empty means the current directory.
	Dir string
}

// NewDocxWriter creates a DOCX writer targeting dir.
func NewDocxWriter(dir string) *DocxWriter {
	return &DocxWriter{Dir: dir}
}

// Write implements Writer.
func (w *DocxWriter) Write(title string, meta Meta, chapters []Chapter) (string, error) {
	if strings.TrimSpace(title) == "" {
		return "", fmt.Errorf("docx: title is required")
	}

	dir := w.Dir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("docx: create output dir: %w", err)
	}

	path := filepath.Join(dir, SanitizeFilename(title)+".docx")

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	parts := []struct {
		name string
		data string
	}{
		{"[Content_Types].xml", contentTypesXML},
		{"_rels/.rels", relsXML},
		{"word/document.xml", documentXML(title, meta, chapters)},
	}
	for _, part := range parts {
		f, err := zw.Create(part.name)
		if err != nil {
			return "", fmt.Errorf("docx: create part %s: %w", part.name, err)
		}
		if _, err := f.Write([]byte(part.data)); err != nil {
			return "", fmt.Errorf("docx: write part %s: %w", part.name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return "", fmt.Errorf("docx: finalize package: %w", err)
	}

	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return "", fmt.Errorf("docx: write %s: %w", path, err)
	}
	return path, nil
}

const contentTypesXML = xml.Header +
	`<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">` +
	`<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>` +
	`<Default Extension="xml" ContentType="application/xml"/>` +
	`<Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>` +
	`</Types>`

const relsXML = xml.Header +
	`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` +
	`<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>` +
	`</Relationships>`

// documentXML renders the main document part: title page, then each
// chapter as a heading paragraph followed by its body paragraphs.
func documentXML(title string, meta Meta, chapters []Chapter) string {
	var b strings.Builder
	b.WriteString(xml.Header)
	b.WriteString(`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>`)

	writeHeading(&b, "Title", title)
	if meta.Genre != "" {
		writeParagraph(&b, "Genre: "+meta.Genre)
	}
	if meta.Audience != "" {
		writeParagraph(&b, "Audience: "+meta.Audience)
	}

	for _, ch := range chapters {
		heading := fmt.Sprintf("Chapter %d: %s", ch.Number, ch.Title)
		writeHeading(&b, "Heading1", heading)
		for _, para := range splitParagraphs(ch.Body) {
			writeParagraph(&b, para)
		}
	}

	b.WriteString(`</w:body></w:document>`)
	return b.String()
}

func writeHeading(b *strings.Builder, style, text string) {
	b.WriteString(`<w:p><w:pPr><w:pStyle w:val="` + style + `"/></w:pPr><w:r><w:t xml:space="preserve">`)
	xmlEscape(b, text)
	b.WriteString(`</w:t></w:r></w:p>`)
}

func writeParagraph(b *strings.Builder, text string) {
	b.WriteString(`<w:p><w:r><w:t xml:space="preserve">`)
	xmlEscape(b, text)
	b.WriteString(`</w:t></w:r></w:p>`)
}

func xmlEscape(b *strings.Builder, text string) {
	// EscapeText only fails on a failing writer; strings.Builder never fails.
	_ = xml.EscapeText(b, []byte(text))
}

// splitParagraphs breaks prose on blank lines; single newlines within a
// paragraph are collapsed to spaces.
func splitParagraphs(body string) []string {
	body = strings.ReplaceAll(body, "\r\n", "\n")
	blocks := strings.Split(body, "\n\n")

	out := make([]string, 0, len(blocks))
	for _, block := range blocks {
		block = strings.TrimSpace(strings.ReplaceAll(block, "\n", " "))
		if block != "" {
			out = append(out, block)
		}
	}
	return out
}
