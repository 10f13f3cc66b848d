package pdf

import (
	"math"
	"regexp"
	"sort"
	"strconv"

	"github.com/tsawler/docmorph/model"
)

// Layout heuristics, as fractions of the font size or in points.
const (
	continuationRatio = 1.25 // baseline gap up to this times the leading continues a block
	codeSizeRatio     = 0.9  // monospaced lines this much smaller than body are code
	codeLeadingRatio  = 4.0 / 3.0
	indentTolerance   = 3.0
)

var orderedMarker = regexp.MustCompile(`^(\d{1,9})[.)]$`)

// bulletMarkers are the glyphs accepted as unordered list markers.
var bulletMarkers = map[string]bool{bulletMarker: true, "◦": true, "▪": true, "‣": true}

// item is a line, table or rule positioned on a page.
type item struct {
	Top   float64
	Page  int
	First bool // first item on its page
	Line  *line
	Table *tableRegion
	Rule  bool
}

// analyze rebuilds the block structure of a document from its pages.
func analyze(pages []pageContent) (*model.Document, []model.Warning) {
	m := newMetrics()
	var items []item
	var lines []line

	for _, p := range pages {
		frags := buildFragments(p.Glyphs, m)
		attachLinks(frags, p.Links)
		cells, rules := classifyRects(p.Rects, p.Width)
		tables := detectTables(cells, p.Number)
		pageLines := buildLines(assignFragments(frags, tables), p.Number)
		lines = append(lines, pageLines...)

		var pageItems []item
		for i := range pageLines {
			pageItems = append(pageItems, item{Top: pageLines[i].Y, Page: p.Number, Line: &pageLines[i]})
		}
		for _, t := range tables {
			pageItems = append(pageItems, item{Top: t.Box.Top(), Page: p.Number, Table: t})
		}
		for _, r := range rules {
			pageItems = append(pageItems, item{Top: r.Top(), Page: p.Number, Rule: true})
		}
		sort.SliceStable(pageItems, func(i, j int) bool { return pageItems[i].Top > pageItems[j].Top })
		if len(pageItems) > 0 {
			pageItems[0].First = true
		}
		items = append(items, pageItems...)
	}

	a := &assembler{
		doc:      model.NewDocument(),
		headings: newHeadingDetector(lines),
		metrics:  m,
		left:     leftEdge(lines),
	}
	for _, it := range items {
		switch {
		case it.Rule:
			a.close()
			a.doc.Append(&model.Rule{})
		case it.Table != nil:
			a.table(it)
		default:
			a.line(it.Line, it.First)
		}
	}
	return a.doc, a.warnings
}

// leftEdge finds the text margin. List lines count from their text column
// so a document that opens with a list still finds the margin.
func leftEdge(lines []line) float64 {
	left := math.Inf(1)
	for _, l := range lines {
		x := l.X()
		if _, _, ok := listMarker(l); ok && len(l.Words) > 1 {
			x = l.Words[1].X() - listMarkerWidth
		}
		if near(x, marginLeft, 1) {
			return marginLeft
		}
		left = min(left, x)
	}
	if math.IsInf(left, 1) {
		return marginLeft
	}
	return left
}

// listMarker reports whether a line starts with a bullet or a number
// followed by a period or parenthesis.
func listMarker(l line) (ordered bool, index int, ok bool) {
	first := l.Words[0]
	if len(first.Frags) != 1 || first.Frags[0].Face.Mono {
		return false, 0, false
	}
	text := first.Text()
	if bulletMarkers[text] {
		return false, 0, true
	}
	if m := orderedMarker.FindStringSubmatch(text); m != nil {
		n, _ := strconv.Atoi(m[1])
		return true, n, true
	}
	return false, 0, false
}

type openBlock int

const (
	openNone openBlock = iota
	openParagraph
	openHeading
	openList
	openCode
	openQuote
	openTable
)

// assembler turns the ordered item stream into blocks. Blocks are appended
// to the document when opened and extended in place.
type assembler struct {
	doc      *model.Document
	headings *headingDetector
	metrics  *metrics
	left     float64
	warnings []model.Warning

	open    openBlock
	last    *line
	para    *model.Paragraph
	paraX   float64
	heading *model.Heading
	list    *model.List
	itemX   float64
	code    *model.CodeBlock
	codeX   float64
	quote   *model.BlockQuote
	tbl     *model.Table
	tblCols []float64
}

func (a *assembler) close() {
	a.open = openNone
}

// paraGap is the largest baseline gap that continues a paragraph of
// lines at this size.
func paraGap(l *line) float64 {
	return continuationRatio * l.Size * bodyLeading / bodySize
}

func (a *assembler) line(l *line, first bool) {
	gap := math.Inf(1)
	newPage := a.last != nil && a.last.Page != l.Page
	if a.last != nil && !newPage {
		gap = a.last.Y - l.Y
	}
	defer func() { a.last = l }()

	level := a.headings.level(l.Size)
	ordered, index, isItem := listMarker(*l)
	if isItem && ordered && a.open == openParagraph && gap <= paraGap(l) {
		isItem = false // a wrapped sentence that starts with a number
	}

	switch {
	case isItem && level == 0:
		a.listItem(l, ordered, index)
	case a.open == openList && near(l.X(), a.itemX, indentTolerance) && (gap <= paraGap(l) || (newPage && first)):
		item := &a.list.Items[len(a.list.Items)-1]
		item.Runs = model.JoinRuns(item.Runs, l.runs())
	case l.allMono() && (l.Size <= codeSizeRatio*a.headings.bodySize || l.X() >= a.left+codeIndent-indentTolerance):
		a.codeLine(l, gap, newPage)
	case level > 0:
		a.headingLine(l, level, gap)
	case near(l.X(), a.left+quoteIndent, indentTolerance):
		a.quoteLine(l, gap)
	default:
		if a.open == openParagraph && gap <= paraGap(l) && near(l.X(), a.paraX, indentTolerance) {
			a.para.Runs = model.JoinRuns(a.para.Runs, l.runs())
			return
		}
		a.close()
		a.para = &model.Paragraph{Runs: l.runs()}
		a.paraX = l.X()
		a.doc.Append(a.para)
		a.open = openParagraph
	}
}

func (a *assembler) listItem(l *line, ordered bool, index int) {
	textX := l.Words[0].End() + listMarkerGap
	var runs []model.Run
	if len(l.Words) > 1 {
		textX = l.Words[1].X()
		runs = wordRuns(l.Words[1:])
	}
	depth := max(0, int(math.Round((textX-a.left-listMarkerWidth)/listIndent)))

	if a.open != openList || (depth == 0 && a.list.Ordered != ordered) {
		a.close()
		a.list = &model.List{Ordered: ordered}
		a.doc.Append(a.list)
		a.open = openList
	}
	if !ordered {
		index = 0
	}
	a.list.Items = append(a.list.Items, model.ListItem{Runs: runs, Depth: depth, Index: index})
	a.itemX = textX
}

func (a *assembler) headingLine(l *line, level int, gap float64) {
	runs := model.StripBold(l.runs())
	if a.open == openHeading && a.heading.Level == level && gap <= continuationRatio*l.Size*headingLeadingRatio {
		a.heading.Runs = model.JoinRuns(a.heading.Runs, runs)
		return
	}
	a.close()
	a.heading = &model.Heading{Level: level, Runs: runs}
	a.doc.Append(a.heading)
	a.open = openHeading
}

func (a *assembler) quoteLine(l *line, gap float64) {
	if a.open == openQuote {
		last := a.quote.Blocks[len(a.quote.Blocks)-1].(*model.Paragraph)
		if gap <= paraGap(l) {
			last.Runs = model.JoinRuns(last.Runs, l.runs())
			return
		}
		a.quote.Blocks = append(a.quote.Blocks, &model.Paragraph{Runs: l.runs()})
		return
	}
	a.close()
	a.quote = &model.BlockQuote{Blocks: []model.Block{&model.Paragraph{Runs: l.runs()}}}
	a.doc.Append(a.quote)
	a.open = openQuote
}

// codeLine rebuilds a source line by placing each fragment at the column
// its position implies, then restores blank lines from the vertical gap.
func (a *assembler) codeLine(l *line, gap float64, newPage bool) {
	font := l.Words[0].Frags[0].Font
	advance := a.metrics.width(font, l.Size, "m")
	leading := l.Size * codeLeadingRatio

	if a.open != openCode {
		a.close()
		a.code = &model.CodeBlock{}
		a.doc.Append(a.code)
		a.open = openCode
		a.codeX = l.X()
		if l.X() >= a.left+codeIndent-indentTolerance {
			a.codeX = a.left + codeIndent
		}
	} else if !newPage && !math.IsInf(gap, 1) {
		for blank := int(math.Round(gap/leading)) - 1; blank > 0; blank-- {
			a.code.Lines = append(a.code.Lines, "")
		}
	}

	var buf []rune
	for _, w := range l.Words {
		for _, f := range w.Frags {
			col := max(int(math.Round((f.X-a.codeX)/advance)), len(buf))
			for len(buf) < col {
				buf = append(buf, ' ')
			}
			buf = append(buf, []rune(f.Text)...)
		}
	}
	a.code.Lines = append(a.code.Lines, string(buf))
}

func (a *assembler) table(it item) {
	region := it.Table
	cols := region.columns()

	if a.open == openTable && it.First && sameColumns(a.tblCols, cols) {
		a.tbl.Rows = append(a.tbl.Rows, region.toTable(false).Rows...)
		if a.tbl.Pad() {
			a.warnings = append(a.warnings, model.Warnf(model.WarnMalformedTable, 0,
				"table continued on page %d has ragged rows; padded", region.Page))
		}
		return
	}

	a.close()
	a.tbl = region.toTable(true)
	a.tblCols = cols
	if a.tbl.Pad() {
		a.warnings = append(a.warnings, model.Warnf(model.WarnMalformedTable, 0,
			"table on page %d has ragged rows; padded", region.Page))
	}
	a.doc.Append(a.tbl)
	a.open = openTable
}

func sameColumns(a, b []float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !near(a[i], b[i], alignTolerance) {
			return false
		}
	}
	return true
}
