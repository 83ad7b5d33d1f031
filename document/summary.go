package document

import (
	"strings"
)

// Summary counts the content of a document
type Summary struct {
	Paragraphs         int
	NonEmptyParagraphs int
	Tables             int
	// Sections is NonEmptyParagraphs plus the tables with any text
	Sections int
}

// Summarize counts paragraphs, tables and sections of doc
func Summarize(doc Document) Summary {
	s := Summary{Tables: len(doc.Tables())}
	for _, p := range doc.Paragraphs() {
		s.Paragraphs++
		if strings.TrimSpace(p.Text()) != "" {
			s.NonEmptyParagraphs++
		}
	}
	s.Sections = len(Sections(doc))
	return s
}

// IsEmpty reports whether doc has neither tables nor paragraphs
func (s Summary) IsEmpty() bool {
	return s.Tables == 0 && s.Paragraphs == 0
}

// Sections returns every table rendered with TableText followed by every
// non-empty paragraph, skipping tables without text.
func Sections(doc Document) []string {
	var sections []string
	for _, t := range doc.Tables() {
		if text := TableText(t); text != "" {
			sections = append(sections, text)
		}
	}
	for _, p := range doc.Paragraphs() {
		if strings.TrimSpace(p.Text()) != "" {
			sections = append(sections, p.Text())
		}
	}
	return sections
}

// TableText renders one line per row, joining the trimmed non-empty cells with " | "
func TableText(t Table) string {
	var lines []string
	for _, row := range t.Rows() {
		var cells []string
		for _, c := range row {
			if text := strings.TrimSpace(c.Text()); text != "" {
				cells = append(cells, text)
			}
		}
		if len(cells) > 0 {
			lines = append(lines, strings.Join(cells, " | "))
		}
	}
	return strings.Join(lines, "\n")
}
