package document

// Text is an in-memory Element.
type Text struct {
	value string
}

// NewText returns an element holding s
func NewText(s string) *Text {
	return &Text{value: s}
}

func (t *Text) Text() string {
	return t.value
}

func (t *Text) SetText(text string) {
	t.value = text
}

// MemoryTable is an in-memory Table.
type MemoryTable struct {
	rows [][]Element
}

func (t *MemoryTable) Rows() [][]Element {
	return t.rows
}

// Memory is an in-memory Document, used by tests and by hosts that bring
// their own container format.
type Memory struct {
	tables     []*MemoryTable
	paragraphs []Element
}

// New returns an empty in-memory document
func New() *Memory {
	return &Memory{}
}

// AddTable appends a table built from rows of cell texts
func (m *Memory) AddTable(rows [][]string) *MemoryTable {
	table := &MemoryTable{rows: make([][]Element, len(rows))}
	for i, row := range rows {
		cells := make([]Element, len(row))
		for j, cell := range row {
			cells[j] = NewText(cell)
		}
		table.rows[i] = cells
	}
	m.tables = append(m.tables, table)
	return table
}

// AddParagraph appends a standalone paragraph
func (m *Memory) AddParagraph(text string) *Text {
	p := NewText(text)
	m.paragraphs = append(m.paragraphs, p)
	return p
}

func (m *Memory) Tables() []Table {
	tables := make([]Table, len(m.tables))
	for i, t := range m.tables {
		tables[i] = t
	}
	return tables
}

func (m *Memory) Paragraphs() []Element {
	return m.paragraphs
}

// CellTexts returns the current text of every cell of table i
func (m *Memory) CellTexts(i int) [][]string {
	rows := m.tables[i].rows
	out := make([][]string, len(rows))
	for r, row := range rows {
		out[r] = make([]string, len(row))
		for c, cell := range row {
			out[r][c] = cell.Text()
		}
	}
	return out
}

// ParagraphTexts returns the current text of every paragraph
func (m *Memory) ParagraphTexts() []string {
	out := make([]string, len(m.paragraphs))
	for i, p := range m.paragraphs {
		out[i] = p.Text()
	}
	return out
}
