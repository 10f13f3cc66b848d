package pdf

import (
	"sort"

	"github.com/tsawler/docmorph/model"
)

// Minimum sizes for rectangles that take part in layout analysis.
const (
	minCellSize    = 5.0
	maxRuleHeight  = 3.0
	minRuleWidth   = 0.3 // fraction of the page width
	edgeTolerance  = 1.5
	alignTolerance = 1.0
)

// tableRow is a run of cell rectangles sharing top and bottom edges.
type tableRow struct {
	Cells []BBox
}

func (r tableRow) Top() float64    { return r.Cells[0].Top() }
func (r tableRow) Bottom() float64 { return r.Cells[0].Bottom() }
func (r tableRow) Left() float64   { return r.Cells[0].Left() }

// tableRegion is a grid of cell rectangles stacked edge to edge, and the
// text fragments that fall inside each cell.
type tableRegion struct {
	Rows  []tableRow
	Box   BBox
	Page  int
	frags [][][]fragment
}

// columns returns the left edges of the first row.
func (t *tableRegion) columns() []float64 {
	cols := make([]float64, len(t.Rows[0].Cells))
	for i, c := range t.Rows[0].Cells {
		cols[i] = c.Left()
	}
	return cols
}

// classifyRects separates thin horizontal bars (rules) from rectangles big
// enough to be table cells. Anything else is decoration and ignored.
func classifyRects(rects []BBox, pageWidth float64) (cells, rules []BBox) {
	seen := make(map[[4]int]bool)
	for _, r := range rects {
		key := [4]int{int(r.X), int(r.Y), int(r.Width), int(r.Height)}
		if seen[key] {
			continue
		}
		seen[key] = true

		switch {
		case r.Height < maxRuleHeight && r.Width >= minRuleWidth*pageWidth:
			rules = append(rules, r)
		case r.Width >= minCellSize && r.Height >= minCellSize:
			cells = append(cells, r)
		}
	}
	return cells, rules
}

// detectTables groups cell rectangles into rows and stacks of rows into
// tables, ordered top to bottom.
func detectTables(cells []BBox, page int) []*tableRegion {
	sorted := append([]BBox(nil), cells...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if !near(sorted[i].Top(), sorted[j].Top(), edgeTolerance) {
			return sorted[i].Top() > sorted[j].Top()
		}
		return sorted[i].Left() < sorted[j].Left()
	})

	var rows []tableRow
	for start := 0; start < len(sorted); {
		row := tableRow{Cells: []BBox{sorted[start]}}
		end := start + 1
		for end < len(sorted) && near(sorted[end].Top(), sorted[start].Top(), edgeTolerance) {
			c := sorted[end]
			last := row.Cells[len(row.Cells)-1]
			if near(c.Bottom(), sorted[start].Bottom(), edgeTolerance) && c.Left() >= last.Right()-edgeTolerance {
				row.Cells = append(row.Cells, c)
			}
			end++
		}
		rows = append(rows, row)
		start = end
	}

	var tables []*tableRegion
	var cur *tableRegion
	for _, row := range rows {
		if cur != nil {
			prev := cur.Rows[len(cur.Rows)-1]
			if near(prev.Bottom(), row.Top(), edgeTolerance) && near(prev.Left(), row.Left(), alignTolerance) {
				cur.Rows = append(cur.Rows, row)
				for _, c := range row.Cells {
					cur.Box = cur.Box.Union(c)
				}
				continue
			}
		}
		cur = &tableRegion{Rows: []tableRow{row}, Box: row.Cells[0], Page: page}
		for _, c := range row.Cells {
			cur.Box = cur.Box.Union(c)
		}
		tables = append(tables, cur)
	}
	return tables
}

// assignFragments moves fragments that fall inside a table cell into that
// table and returns the rest.
func assignFragments(frags []fragment, tables []*tableRegion) []fragment {
	for _, t := range tables {
		t.frags = make([][][]fragment, len(t.Rows))
		for i, row := range t.Rows {
			t.frags[i] = make([][]fragment, len(row.Cells))
		}
	}

	var free []fragment
outer:
	for _, f := range frags {
		p := f.anchor()
		for _, t := range tables {
			if !t.Box.Contains(p) {
				continue
			}
			for i, row := range t.Rows {
				for j, c := range row.Cells {
					if c.Contains(p) {
						t.frags[i][j] = append(t.frags[i][j], f)
						continue outer
					}
				}
			}
			// Inside the table but between cells: attach to nothing.
			continue outer
		}
		free = append(free, f)
	}
	return free
}

// toTable builds the model table. When header is true the first row had
// bold forced on it by the writer, so the weight is removed again.
func (t *tableRegion) toTable(header bool) *model.Table {
	table := &model.Table{Rows: make([][]model.Cell, len(t.Rows))}
	for i := range t.Rows {
		table.Rows[i] = make([]model.Cell, len(t.Rows[i].Cells))
		for j := range t.Rows[i].Cells {
			table.Rows[i][j] = model.Cell{Runs: cellRuns(t.frags[i][j], t.Page)}
		}
	}
	if header {
		table.UnforceHeader()
	}
	return table
}

func cellRuns(frags []fragment, page int) []model.Run {
	if len(frags) == 0 {
		return nil
	}
	var words []word
	for _, l := range buildLines(frags, page) {
		words = append(words, l.Words...)
	}
	return model.TrimRuns(wordRuns(words))
}
