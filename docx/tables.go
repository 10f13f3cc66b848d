package docx

import (
	"strconv"

	"github.com/tsawler/docmorph/model"
)

// TableParser converts DOCX tables into model tables.
type TableParser struct {
	runs *runExtractor
}

// NewTableParser creates a new table parser.
func NewTableParser(runs *runExtractor) *TableParser {
	return &TableParser{runs: runs}
}

// ParseTable parses a table XML element. Spanned columns are filled with
// empty cells, vertical merge continuations become empty cells, and short
// rows are padded. The returned flag reports whether padding was needed.
func (tp *TableParser) ParseTable(tbl tableXML) (*model.Table, bool) {
	table := &model.Table{}
	for _, row := range tbl.Rows {
		table.Rows = append(table.Rows, tp.parseRow(row))
	}
	if len(table.Rows) == 0 {
		return table, false
	}

	table.UnforceHeader()
	if len(tbl.Grid.Cols) > table.MaxCols() {
		for i, row := range table.Rows {
			table.Rows[i] = append(row, make([]model.Cell, len(tbl.Grid.Cols)-len(row))...)
		}
	}
	padded := table.Pad()
	return table, padded
}

// parseRow parses a table row.
func (tp *TableParser) parseRow(row tableRowXML) []model.Cell {
	var cells []model.Cell
	for _, tc := range row.Cells {
		cell := model.Cell{}
		if !isMergeContinuation(tc.Properties.VMerge) {
			cell.Runs = tp.cellRuns(tc)
		}
		cells = append(cells, cell)

		for i := 1; i < gridSpan(tc.Properties.GridSpan); i++ {
			cells = append(cells, model.Cell{})
		}
	}
	return cells
}

// cellRuns joins the paragraphs of a cell with single spaces. Nested tables
// contribute their plain text.
func (tp *TableParser) cellRuns(tc tableCellXML) []model.Run {
	var runs []model.Run
	appendPart := func(part []model.Run) {
		part = model.TrimRuns(part)
		if len(part) == 0 {
			return
		}
		if len(runs) > 0 {
			runs = append(runs, model.Plain(" "))
		}
		runs = append(runs, part...)
	}

	for _, p := range tc.Paragraphs {
		appendPart(tp.runs.paragraphRuns(p))
	}
	for _, nested := range tc.Tables {
		inner, _ := tp.ParseTable(nested)
		appendPart(model.PlainRuns(inner.PlainText()))
	}
	return model.NormalizeRuns(runs)
}

func gridSpan(gs gridSpanXML) int {
	if gs.Val == "" {
		return 1
	}
	span, err := strconv.Atoi(gs.Val)
	if err != nil || span < 1 {
		return 1
	}
	return span
}

// isMergeContinuation reports whether a cell continues a vertical merge
// (vMerge present without val="restart").
func isMergeContinuation(vm vMergeXML) bool {
	return vm.XMLName.Local == "vMerge" && vm.Val != "restart"
}
