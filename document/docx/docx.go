// Package docx adapts Word .docx files to document.Document.
package docx

import (
	"fmt"
	"io"
	"strings"

	"github.com/unidoc/unioffice/common/license"
	"github.com/unidoc/unioffice/document"
	"github.com/unidoc/unioffice/schema/soo/wml"

	core "github.com/ownlingo/docxlingo/document"
)

// SetLicenseKey registers a UniDoc metered license key. An empty key is a no-op.
func SetLicenseKey(key string) error {
	if strings.TrimSpace(key) == "" {
		return nil
	}
	if err := license.SetMeteredKey(key); err != nil {
		return fmt.Errorf("set unidoc license: %w", err)
	}
	return nil
}

// File is an opened .docx document.
type File struct {
	doc        *document.Document
	tables     []core.Table
	paragraphs []core.Element
}

// Open reads the .docx file at path
func Open(path string) (*File, error) {
	doc, err := document.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return newFile(doc), nil
}

// Read reads a .docx document of the given size from r
func Read(r io.ReaderAt, size int64) (*File, error) {
	doc, err := document.Read(r, size)
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}
	return newFile(doc), nil
}

func newFile(doc *document.Document) *File {
	f := &File{doc: doc}

	inTable := make(map[*wml.CT_P]bool)
	for _, t := range doc.Tables() {
		f.tables = append(f.tables, table{t})
		for _, row := range t.Rows() {
			for _, c := range row.Cells() {
				for _, p := range c.Paragraphs() {
					inTable[p.X()] = true
				}
			}
		}
	}

	for _, p := range doc.Paragraphs() {
		if !inTable[p.X()] {
			f.paragraphs = append(f.paragraphs, paragraph{p})
		}
	}
	return f
}

func (f *File) Tables() []core.Table {
	return f.tables
}

func (f *File) Paragraphs() []core.Element {
	return f.paragraphs
}

// SaveToFile writes the document to path
func (f *File) SaveToFile(path string) error {
	if err := f.doc.SaveToFile(path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}

// Save writes the document to w
func (f *File) Save(w io.Writer) error {
	return f.doc.Save(w)
}

// Close releases temporary files held by the document
func (f *File) Close() error {
	return f.doc.Close()
}

type table struct {
	t document.Table
}

func (t table) Rows() [][]core.Element {
	rows := t.t.Rows()
	out := make([][]core.Element, len(rows))
	for i, row := range rows {
		cells := row.Cells()
		out[i] = make([]core.Element, len(cells))
		for j, c := range cells {
			out[i][j] = cell{c}
		}
	}
	return out
}

// paragraph text is the concatenation of its runs. Setting it keeps the
// first run, and so its formatting, and drops the others.
type paragraph struct {
	p document.Paragraph
}

func (p paragraph) Text() string {
	var sb strings.Builder
	for _, r := range p.p.Runs() {
		sb.WriteString(r.Text())
	}
	return sb.String()
}

func (p paragraph) SetText(text string) {
	runs := p.p.Runs()
	if len(runs) == 0 {
		writeText(p.p.AddRun(), text)
		return
	}
	first := runs[0]
	first.ClearContent()
	writeText(first, text)
	for _, r := range runs[1:] {
		p.p.RemoveRun(r)
	}
}

func (p paragraph) clear() {
	for _, r := range p.p.Runs() {
		p.p.RemoveRun(r)
	}
}

// cell text joins its paragraphs with newlines. Setting it writes into the
// first paragraph and empties the rest.
type cell struct {
	c document.Cell
}

func (c cell) Text() string {
	ps := c.c.Paragraphs()
	lines := make([]string, len(ps))
	for i, p := range ps {
		lines[i] = paragraph{p}.Text()
	}
	return strings.Join(lines, "\n")
}

func (c cell) SetText(text string) {
	ps := c.c.Paragraphs()
	if len(ps) == 0 {
		writeText(c.c.AddParagraph().AddRun(), text)
		return
	}
	paragraph{ps[0]}.SetText(text)
	for _, p := range ps[1:] {
		paragraph{p}.clear()
	}
}

// writeText adds text to r, turning newlines into line breaks.
func writeText(r document.Run, text string) {
	for i, line := range strings.Split(text, "\n") {
		if i > 0 {
			r.AddBreak()
		}
		r.AddText(line)
	}
}
