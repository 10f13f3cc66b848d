package pdf

import (
	"testing"

	"github.com/tsawler/docmorph/model"
)

// samplePage lays out one of each block kind the way the writer does.
func samplePage(m *metrics) pageContent {
	left := marginLeft
	codeX := left + codeIndent
	adv := m.width(codeFont, codeSize, "m")
	colW := contentWidth / 2

	var g []glyph
	add := func(glyphs []glyph) { g = append(g, glyphs...) }

	add(showWords(m, "Helvetica-Bold", 24, left, 800, "Title"))
	add(showWords(m, "Helvetica", 11, left, 770, "Hello", "world"))
	add(showWords(m, "Helvetica", 11, left, 754, "again"))

	add(showText("Helvetica", 11, left+7, 732, bulletMarker))
	add(showWords(m, "Helvetica", 11, left+listMarkerWidth, 732, "one"))
	add(showText("Helvetica", 11, left+7, 714, bulletMarker))
	add(showWords(m, "Helvetica", 11, left+listMarkerWidth, 714, "two"))

	add(showText(codeFont, codeSize, codeX, 690, "x"))
	add(showText(codeFont, codeSize, codeX+2*adv, 690, ":="))
	add(showText(codeFont, codeSize, codeX+5*adv, 690, "1"))
	add(showText(codeFont, codeSize, codeX+2*adv, 678, "y"))
	add(showText(codeFont, codeSize, codeX, 654, "z"))

	add(showText("Helvetica-Bold", tableSize, left+tableCellPadding, 606, "A"))
	add(showText("Helvetica-Bold", tableSize, left+colW+tableCellPadding, 606, "B"))
	add(showText("Helvetica", tableSize, left+tableCellPadding, 586, "1"))
	add(showText("Helvetica", tableSize, left+colW+tableCellPadding, 586, "2"))

	add(showWords(m, "Helvetica", 11, left+quoteIndent, 550, "quoted"))

	seeWidth := m.width("Helvetica", 11, "see ")
	add(showWords(m, "Helvetica", 11, left, 520, "see", "docs"))

	rects := []BBox{{X: left, Y: 640, Width: contentWidth, Height: ruleThickness}}
	rects = append(rects, grid(left, 620, colW, 20, 2, 2)...)

	return pageContent{
		Number: 1,
		Width:  pageWidth,
		Height: pageHeight,
		Glyphs: g,
		Rects:  rects,
		Links: []linkArea{{
			Box: BBox{X: left + seeWidth, Y: 518, Width: m.width("Helvetica", 11, "docs"), Height: 11},
			URI: "https://example.com/docs",
		}},
	}
}

func TestAnalyze_AllBlockKinds(t *testing.T) {
	doc, warnings := analyze([]pageContent{samplePage(newMetrics())})
	if len(warnings) != 0 {
		t.Errorf("unexpected warnings: %v", warnings)
	}

	wantTypes := []model.BlockType{
		model.BlockTypeHeading,
		model.BlockTypeParagraph,
		model.BlockTypeList,
		model.BlockTypeCode,
		model.BlockTypeRule,
		model.BlockTypeTable,
		model.BlockTypeQuote,
		model.BlockTypeParagraph,
	}
	if len(doc.Blocks) != len(wantTypes) {
		for i, b := range doc.Blocks {
			t.Logf("block %d: %v %q", i, b.Type(), b.PlainText())
		}
		t.Fatalf("got %d blocks, want %d", len(doc.Blocks), len(wantTypes))
	}
	for i, want := range wantTypes {
		if got := doc.Blocks[i].Type(); got != want {
			t.Errorf("block %d type = %v, want %v", i, got, want)
		}
	}

	h := doc.Blocks[0].(*model.Heading)
	if h.Level != 1 || h.PlainText() != "Title" {
		t.Errorf("heading = %d %q, want 1 \"Title\"", h.Level, h.PlainText())
	}
	if h.Runs[0].Style != model.StylePlain {
		t.Errorf("heading style = %v, want bold stripped", h.Runs[0].Style)
	}

	if got := doc.Blocks[1].PlainText(); got != "Hello world again" {
		t.Errorf("paragraph = %q, want %q", got, "Hello world again")
	}

	list := doc.Blocks[2].(*model.List)
	if list.Ordered || len(list.Items) != 2 {
		t.Fatalf("list = %+v, want two bullet items", list)
	}
	if got := model.RunsText(list.Items[1].Runs); got != "two" || list.Items[1].Depth != 0 {
		t.Errorf("item 1 = %q depth %d", got, list.Items[1].Depth)
	}

	code := doc.Blocks[3].(*model.CodeBlock)
	wantLines := []string{"x := 1", "  y", "", "z"}
	if len(code.Lines) != len(wantLines) {
		t.Fatalf("code lines = %q, want %q", code.Lines, wantLines)
	}
	for i := range wantLines {
		if code.Lines[i] != wantLines[i] {
			t.Errorf("code line %d = %q, want %q", i, code.Lines[i], wantLines[i])
		}
	}

	table := doc.Blocks[5].(*model.Table)
	if table.RowCount() != 2 || table.ColCount() != 2 {
		t.Fatalf("table is %dx%d, want 2x2", table.RowCount(), table.ColCount())
	}
	if got := table.GetCell(1, 1).Text(); got != "2" {
		t.Errorf("cell(1,1) = %q, want \"2\"", got)
	}

	quote := doc.Blocks[6].(*model.BlockQuote)
	if got := quote.PlainText(); got != "quoted" {
		t.Errorf("quote = %q, want \"quoted\"", got)
	}

	link := doc.Blocks[7].(*model.Paragraph)
	want := []model.Run{model.Plain("see "), model.Link("docs", "https://example.com/docs")}
	if len(link.Runs) != len(want) || link.Runs[0] != want[0] || link.Runs[1] != want[1] {
		t.Errorf("link paragraph runs = %+v, want %+v", link.Runs, want)
	}
}

func TestAnalyze_OrderedListAndContinuation(t *testing.T) {
	m := newMetrics()
	left := marginLeft
	var g []glyph
	g = append(g, showText("Helvetica", 11, left+2, 700, "1.")...)
	g = append(g, showWords(m, "Helvetica", 11, left+listMarkerWidth, 700, "first")...)
	g = append(g, showWords(m, "Helvetica", 11, left+listMarkerWidth, 684, "wrapped")...)
	g = append(g, showText("Helvetica", 11, left+listIndent+2, 666, "1.")...)
	g = append(g, showWords(m, "Helvetica", 11, left+listIndent+listMarkerWidth, 666, "nested")...)
	g = append(g, showText("Helvetica", 11, left+2, 648, "2.")...)
	g = append(g, showWords(m, "Helvetica", 11, left+listMarkerWidth, 648, "second")...)

	doc, _ := analyze([]pageContent{{Number: 1, Width: pageWidth, Height: pageHeight, Glyphs: g}})
	if len(doc.Blocks) != 1 {
		t.Fatalf("got %d blocks, want 1", len(doc.Blocks))
	}
	list := doc.Blocks[0].(*model.List)
	if !list.Ordered {
		t.Error("list should be ordered")
	}

	want := []model.ListItem{
		{Runs: []model.Run{model.Plain("first wrapped")}, Depth: 0, Index: 1},
		{Runs: []model.Run{model.Plain("nested")}, Depth: 1, Index: 1},
		{Runs: []model.Run{model.Plain("second")}, Depth: 0, Index: 2},
	}
	if len(list.Items) != len(want) {
		t.Fatalf("got %d items, want %d", len(list.Items), len(want))
	}
	for i, w := range want {
		got := list.Items[i]
		if model.RunsText(got.Runs) != model.RunsText(w.Runs) || got.Depth != w.Depth || got.Index != w.Index {
			t.Errorf("item %d = %+v, want %+v", i, got, w)
		}
	}
}

func TestAnalyze_NumberInsideParagraph(t *testing.T) {
	m := newMetrics()
	var g []glyph
	g = append(g, showWords(m, "Helvetica", 11, marginLeft, 700, "released", "in")...)
	g = append(g, showWords(m, "Helvetica", 11, marginLeft, 684, "2024.", "Then")...)

	doc, _ := analyze([]pageContent{{Number: 1, Width: pageWidth, Height: pageHeight, Glyphs: g}})
	if len(doc.Blocks) != 1 || doc.Blocks[0].Type() != model.BlockTypeParagraph {
		t.Fatalf("want a single paragraph, got %d blocks", len(doc.Blocks))
	}
	if got := doc.Blocks[0].PlainText(); got != "released in 2024. Then" {
		t.Errorf("paragraph = %q", got)
	}
}

func TestAnalyze_TableContinuesAcrossPages(t *testing.T) {
	colW := contentWidth / 2
	page := func(n int, text string) pageContent {
		return pageContent{
			Number: n,
			Width:  pageWidth,
			Height: pageHeight,
			Glyphs: showText("Helvetica", tableSize, marginLeft+tableCellPadding, 756, text),
			Rects:  grid(marginLeft, 770, colW, 20, 1, 2),
		}
	}

	doc, _ := analyze([]pageContent{page(1, "head"), page(2, "body")})
	if len(doc.Blocks) != 1 {
		t.Fatalf("got %d blocks, want 1", len(doc.Blocks))
	}
	table := doc.Blocks[0].(*model.Table)
	if table.RowCount() != 2 {
		t.Fatalf("got %d rows, want 2", table.RowCount())
	}
	if got := table.GetCell(1, 0).Text(); got != "body" {
		t.Errorf("continued row = %q, want \"body\"", got)
	}
}

func TestAnalyze_ParagraphsSplitOnGap(t *testing.T) {
	m := newMetrics()
	var g []glyph
	g = append(g, showWords(m, "Helvetica", 11, marginLeft, 700, "one")...)
	g = append(g, showWords(m, "Helvetica", 11, marginLeft, 678, "two")...)

	doc, _ := analyze([]pageContent{{Number: 1, Width: pageWidth, Height: pageHeight, Glyphs: g}})
	if len(doc.Blocks) != 2 {
		t.Fatalf("got %d blocks, want 2", len(doc.Blocks))
	}
}

func TestExpandTabs(t *testing.T) {
	tests := []struct{ in, want string }{
		{"no tabs", "no tabs"},
		{"\tx", "    x"},
		{"ab\tc", "ab  c"},
	}
	for _, tt := range tests {
		if got := expandTabs(tt.in); got != tt.want {
			t.Errorf("expandTabs(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
