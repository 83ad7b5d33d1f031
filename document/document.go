// Package document defines the parsed, mutable document the translation
// core works on. Implementations own the container format; the core only
// reads and replaces element text.
package document

// Element is one text-bearing node: a table cell or a paragraph.
type Element interface {
	Text() string
	SetText(text string)
}

// Table is an ordered sequence of rows of cells.
type Table interface {
	Rows() [][]Element
}

// Document exposes tables and standalone paragraphs in document order.
// Paragraphs never include paragraphs nested inside table cells.
type Document interface {
	Tables() []Table
	Paragraphs() []Element
}
