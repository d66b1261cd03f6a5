package importbundle

import (
	"fmt"
	"strings"
)

// CellKind is decided once, when a table is built.
type CellKind int

const (
	// CellAbsent is an empty or missing cell.
	CellAbsent CellKind = iota
	// CellNullToken holds a literal such as "NaN", "NULL" or "N/A".
	CellNullToken
	// CellPresent holds a real value.
	CellPresent
)

// nullTokens are read as missing values, matching common dataframe loaders.
var nullTokens = map[string]struct{}{
	"#N/A": {}, "#N/A N/A": {}, "#NA": {}, "-1.#IND": {}, "-1.#QNAN": {},
	"-NaN": {}, "-nan": {}, "1.#IND": {}, "1.#QNAN": {}, "<NA>": {},
	"N/A": {}, "NA": {}, "NULL": {}, "NaN": {}, "None": {}, "n/a": {},
	"nan": {}, "null": {},
}

// Cell is one spreadsheet value.
type Cell struct {
	Kind CellKind
	Text string
	// Number is set when the source cell was stored as a number.
	Number *float64
}

func (c Cell) IsNull() bool {
	return c.Kind != CellPresent
}

// TextCell classifies a raw text value.
func TextCell(s string) Cell {
	if s == "" {
		return Cell{Kind: CellAbsent}
	}
	if _, ok := nullTokens[s]; ok {
		return Cell{Kind: CellNullToken, Text: s}
	}
	return Cell{Kind: CellPresent, Text: s}
}

// NumberCell wraps a numeric workbook value.
func NumberCell(text string, v float64) Cell {
	return Cell{Kind: CellPresent, Text: text, Number: &v}
}

// Table is a header plus rows; every row has one cell per column.
type Table struct {
	Columns []string
	Rows    [][]Cell
	index   map[string]int
}

// NewTable builds a table from a raw header and rows. Duplicate headers get
// ".1", ".2" suffixes and blank ones become "Unnamed: <i>". Ragged rows are
// padded with absent cells or truncated; fully empty rows are skipped.
func NewTable(header []string, rows [][]Cell) *Table {
	t := &Table{
		Columns: uniqueColumns(header),
		Rows:    make([][]Cell, 0, len(rows)),
	}
	t.index = make(map[string]int, len(t.Columns))
	for i, c := range t.Columns {
		t.index[c] = i
	}

	width := len(t.Columns)
	for _, row := range rows {
		if isBlankRow(row) {
			continue
		}
		normalized := make([]Cell, width)
		copy(normalized, row)
		t.Rows = append(t.Rows, normalized)
	}
	return t
}

func uniqueColumns(header []string) []string {
	columns := make([]string, len(header))
	counts := make(map[string]int, len(header))
	for i, h := range header {
		if h == "" {
			h = fmt.Sprintf("Unnamed: %d", i)
		}
		n := counts[h]
		for n > 0 {
			counts[h] = n + 1
			h = fmt.Sprintf("%s.%d", h, n)
			n = counts[h]
		}
		columns[i] = h
		counts[h] = n + 1
	}
	return columns
}

func isBlankRow(row []Cell) bool {
	for _, c := range row {
		if c.Kind != CellAbsent {
			return false
		}
	}
	return true
}

// HasColumn reports whether name is one of the columns.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Cell returns the cell of row i in column name. ok is false when the
// column does not exist.
func (t *Table) Cell(i int, name string) (Cell, bool) {
	col, ok := t.index[name]
	if !ok || i < 0 || i >= len(t.Rows) {
		return Cell{}, false
	}
	return t.Rows[i][col], true
}

// Head returns a table sharing the first n rows.
func (t *Table) Head(n int) *Table {
	if n > len(t.Rows) {
		n = len(t.Rows)
	}
	if n < 0 {
		n = 0
	}
	return &Table{Columns: t.Columns, Rows: t.Rows[:n], index: t.index}
}

// Sample renders the first n rows as an aligned text grid.
func (t *Table) Sample(n int) string {
	head := t.Head(n)
	widths := make([]int, len(t.Columns)+1)
	widths[0] = len(fmt.Sprint(len(head.Rows)))

	cells := make([][]string, len(head.Rows))
	for r, row := range head.Rows {
		cells[r] = make([]string, len(row))
		for c, cell := range row {
			text := cell.Text
			if cell.Kind != CellPresent {
				text = "NaN"
			}
			cells[r][c] = text
			widths[c+1] = max(widths[c+1], len(text))
		}
	}
	for c, name := range t.Columns {
		widths[c+1] = max(widths[c+1], len(name))
	}

	var b strings.Builder
	b.WriteString(strings.Repeat(" ", widths[0]))
	for c, name := range t.Columns {
		fmt.Fprintf(&b, "  %*s", widths[c+1], name)
	}
	for r := range cells {
		b.WriteString("\n")
		fmt.Fprintf(&b, "%-*d", widths[0], r)
		for c, text := range cells[r] {
			fmt.Fprintf(&b, "  %*s", widths[c+1], text)
		}
	}
	return b.String()
}
