package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/ownlingo/docxlingo/document"
	"github.com/ownlingo/docxlingo/orchestrator"
	"github.com/ownlingo/docxlingo/translator/langdetect"
)

func writeInspection(w io.Writer, doc document.Document) {
	summary := document.Summarize(doc)

	units := len(orchestrator.SelectParagraphs(doc))
	for _, t := range doc.Tables() {
		units += len(orchestrator.SelectCells(t))
	}

	fmt.Fprintf(w, "Paragraphs: %d, tables: %d, sections with content: %d, translatable units: %d\n",
		summary.Paragraphs, summary.Tables, summary.Sections, units)

	sections := document.Sections(doc)
	fmt.Fprintf(w, "Source language: %s\n", languageLabel(langdetect.Dominant(sections)))
	if len(sections) == 0 {
		fmt.Fprintln(w, "The document has no text. It may consist of images or special content only.")
		return
	}

	if len(sections) > previewSections {
		sections = sections[:previewSections]
	}
	fmt.Fprintf(w, "\nPreview (first %d sections):\n\n%s\n", len(sections), strings.Join(sections, "\n\n"))
}

func languageLabel(code string) string {
	if code == "" {
		return "unknown"
	}
	return code
}
