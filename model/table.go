package model

import "strings"

// Table represents a rectangular grid of cells. The first row is the header
// row.
type Table struct {
	Rows [][]Cell
}

// Cell is one table cell.
type Cell struct {
	Runs []Run
}

func (t *Table) Type() BlockType { return BlockTypeTable }
func (t *Table) PlainText() string {
	var sb strings.Builder
	for i, row := range t.Rows {
		if i > 0 {
			sb.WriteString("\n")
		}
		for j, cell := range row {
			if j > 0 {
				sb.WriteString("\t")
			}
			sb.WriteString(RunsText(cell.Runs))
		}
	}
	return sb.String()
}

// NewTable creates a table with the given dimensions and empty cells.
func NewTable(rows, cols int) *Table {
	table := &Table{Rows: make([][]Cell, rows)}
	for i := range table.Rows {
		table.Rows[i] = make([]Cell, cols)
	}
	return table
}

// RowCount returns the number of rows
func (t *Table) RowCount() int {
	return len(t.Rows)
}

// ColCount returns the number of columns in the first row
func (t *Table) ColCount() int {
	if len(t.Rows) == 0 {
		return 0
	}
	return len(t.Rows[0])
}

// MaxCols returns the length of the longest row.
func (t *Table) MaxCols() int {
	max := 0
	for _, row := range t.Rows {
		if len(row) > max {
			max = len(row)
		}
	}
	return max
}

// IsRectangular reports whether every row has the same number of cells.
func (t *Table) IsRectangular() bool {
	cols := t.ColCount()
	for _, row := range t.Rows {
		if len(row) != cols {
			return false
		}
	}
	return true
}

// Pad extends short rows with empty cells so every row has MaxCols cells.
// It returns true if any row was changed.
func (t *Table) Pad() bool {
	cols := t.MaxCols()
	changed := false
	for i, row := range t.Rows {
		if len(row) < cols {
			t.Rows[i] = append(row, make([]Cell, cols-len(row))...)
			changed = true
		}
	}
	return changed
}

// GetCell returns the cell at the given row and column (0-indexed)
func (t *Table) GetCell(row, col int) *Cell {
	if row < 0 || row >= len(t.Rows) {
		return nil
	}
	if col < 0 || col >= len(t.Rows[row]) {
		return nil
	}
	return &t.Rows[row][col]
}

// Header returns the header row, or nil for an empty table.
func (t *Table) Header() []Cell {
	if len(t.Rows) == 0 {
		return nil
	}
	return t.Rows[0]
}

// UnforceHeader removes the bold weight that emitters apply to header cells.
// Importers call it so a header written as plain text reads back as plain.
func (t *Table) UnforceHeader() {
	if len(t.Rows) == 0 {
		return
	}
	for j := range t.Rows[0] {
		t.Rows[0][j].Runs = StripBold(t.Rows[0][j].Runs)
	}
}

// Text returns the plain text of a cell.
func (c Cell) Text() string {
	return RunsText(c.Runs)
}
