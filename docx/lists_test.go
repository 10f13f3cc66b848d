package docx

import (
	"reflect"
	"testing"

	"github.com/tsawler/docmorph/model"
)

// listNumberingXML defines a bullet list (numId 1), a decimal list (numId 2)
// and a decimal list restarted at 5 (numId 3).
const listNumberingXML = `
<w:abstractNum w:abstractNumId="0">
  <w:lvl w:ilvl="0"><w:start w:val="1"/><w:numFmt w:val="bullet"/><w:lvlText w:val="•"/></w:lvl>
  <w:lvl w:ilvl="1"><w:start w:val="1"/><w:numFmt w:val="bullet"/><w:lvlText w:val="o"/></w:lvl>
</w:abstractNum>
<w:abstractNum w:abstractNumId="1">
  <w:lvl w:ilvl="0"><w:start w:val="1"/><w:numFmt w:val="decimal"/><w:lvlText w:val="%1."/></w:lvl>
  <w:lvl w:ilvl="1"><w:start w:val="1"/><w:numFmt w:val="lowerLetter"/><w:lvlText w:val="%2)"/></w:lvl>
</w:abstractNum>
<w:num w:numId="1"><w:abstractNumId w:val="0"/></w:num>
<w:num w:numId="2"><w:abstractNumId w:val="1"/></w:num>
<w:num w:numId="3"><w:abstractNumId w:val="1"/><w:lvlOverride w:ilvl="0"><w:startOverride w:val="5"/></w:lvlOverride></w:num>`

func listParagraph(numID, ilvl, text string) string {
	return `<w:p><w:pPr><w:numPr><w:ilvl w:val="` + ilvl + `"/><w:numId w:val="` + numID + `"/></w:numPr></w:pPr><w:r><w:t>` + text + `</w:t></w:r></w:p>`
}

func TestListParsing_BulletList(t *testing.T) {
	content := listParagraph("1", "0", "First item") +
		listParagraph("1", "0", "Second item") +
		listParagraph("1", "0", "Third item")

	doc, _ := readTestDOCX(t, content, map[string]string{"word/numbering.xml": listNumberingXML})
	if len(doc.Blocks) != 1 {
		t.Fatalf("got %d blocks, want 1", len(doc.Blocks))
	}
	list, ok := doc.Blocks[0].(*model.List)
	if !ok {
		t.Fatalf("block = %T, want *model.List", doc.Blocks[0])
	}
	if list.Ordered {
		t.Error("expected unordered list")
	}
	if len(list.Items) != 3 {
		t.Fatalf("got %d items, want 3", len(list.Items))
	}
	if got := model.RunsText(list.Items[1].Runs); got != "Second item" {
		t.Errorf("item 1 = %q", got)
	}
}

func TestListParsing_NumberedNested(t *testing.T) {
	content := listParagraph("2", "0", "one") +
		listParagraph("2", "1", "one-a") +
		listParagraph("2", "1", "one-b") +
		listParagraph("2", "0", "two") +
		listParagraph("2", "1", "two-a")

	doc, _ := readTestDOCX(t, content, map[string]string{"word/numbering.xml": listNumberingXML})
	list := doc.Blocks[0].(*model.List)
	if !list.Ordered {
		t.Error("expected ordered list")
	}

	type item struct{ depth, index int }
	var got []item
	for _, it := range list.Items {
		got = append(got, item{it.Depth, it.Index})
	}
	want := []item{{0, 1}, {1, 1}, {1, 2}, {0, 2}, {1, 1}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("items = %v, want %v", got, want)
	}
}

func TestListParsing_StartOverrideAndSplit(t *testing.T) {
	content := listParagraph("2", "0", "a") +
		listParagraph("2", "0", "b") +
		listParagraph("3", "0", "five") +
		listParagraph("3", "0", "six") +
		listParagraph("1", "0", "bullet")

	doc, _ := readTestDOCX(t, content, map[string]string{"word/numbering.xml": listNumberingXML})
	if len(doc.Blocks) != 3 {
		t.Fatalf("got %d blocks, want 3", len(doc.Blocks))
	}
	second := doc.Blocks[1].(*model.List)
	if second.Items[0].Index != 5 || second.Items[1].Index != 6 {
		t.Errorf("indices = %d, %d, want 5, 6", second.Items[0].Index, second.Items[1].Index)
	}
	if doc.Blocks[2].(*model.List).Ordered {
		t.Error("third list should be unordered")
	}
}

func TestListParsing_MixedContent(t *testing.T) {
	content := `<w:p><w:r><w:t>Intro</w:t></w:r></w:p>` +
		listParagraph("1", "0", "item") +
		`<w:p><w:r><w:t>Outro</w:t></w:r></w:p>`

	doc, _ := readTestDOCX(t, content, map[string]string{"word/numbering.xml": listNumberingXML})
	var kinds []model.BlockType
	for _, b := range doc.Blocks {
		kinds = append(kinds, b.Type())
	}
	want := []model.BlockType{model.BlockTypeParagraph, model.BlockTypeList, model.BlockTypeParagraph}
	if !reflect.DeepEqual(kinds, want) {
		t.Errorf("block types = %v, want %v", kinds, want)
	}
}

func TestListParsing_StyleOnly(t *testing.T) {
	content := `
		<w:p><w:pPr><w:pStyle w:val="ListBullet"/></w:pPr><w:r><w:t>dot</w:t></w:r></w:p>
		<w:p><w:pPr><w:pStyle w:val="ListBullet2"/></w:pPr><w:r><w:t>nested dot</w:t></w:r></w:p>
		<w:p><w:pPr><w:pStyle w:val="ListNumber"/></w:pPr><w:r><w:t>first</w:t></w:r></w:p>
		<w:p><w:pPr><w:pStyle w:val="ListNumber"/></w:pPr><w:r><w:t>second</w:t></w:r></w:p>`

	doc, _ := readTestDOCX(t, content, nil)
	if len(doc.Blocks) != 2 {
		t.Fatalf("got %d blocks, want 2", len(doc.Blocks))
	}
	bullets := doc.Blocks[0].(*model.List)
	if bullets.Ordered || bullets.Items[1].Depth != 1 {
		t.Errorf("bullets = %+v", bullets)
	}
	numbers := doc.Blocks[1].(*model.List)
	if !numbers.Ordered || numbers.Items[1].Index != 2 {
		t.Errorf("numbers = %+v", numbers)
	}
}

func TestListParsing_NoNumbering(t *testing.T) {
	// numId 0 switches numbering off.
	content := listParagraph("0", "0", "not a list")

	doc, _ := readTestDOCX(t, content, nil)
	if _, ok := doc.Blocks[0].(*model.Paragraph); !ok {
		t.Errorf("block = %T, want *model.Paragraph", doc.Blocks[0])
	}
}

func TestNumberingResolver_ResolveLevel(t *testing.T) {
	numbering := &numberingXML{
		AbstractNums: []abstractNumXML{{
			AbstractNumID: "0",
			Levels: []lvlXML{
				{ILvl: "0", Start: startXML{Val: "3"}, NumFmt: numFmtXML{Val: "decimal"}},
				{ILvl: "1", NumFmt: numFmtXML{Val: "bullet"}},
			},
		}},
		Nums: []numXML{
			{NumID: "1", AbstractNumID: abstractRefXML{Val: "0"}},
			{NumID: "2", AbstractNumID: abstractRefXML{Val: "0"}, Overrides: []lvlOverrideXML{{ILvl: "0", StartOverride: startXML{Val: "10"}}}},
		},
	}
	nr := NewNumberingResolver(numbering)

	tests := []struct {
		numID     string
		level     int
		wantType  ListType
		wantStart int
	}{
		{"1", 0, ListTypeOrdered, 3},
		{"1", 1, ListTypeUnordered, 1},
		{"2", 0, ListTypeOrdered, 10},
		{"99", 0, ListTypeUnordered, 1},
		{"", 0, ListTypeUnordered, 1},
	}

	for _, tt := range tests {
		gotType, gotStart := nr.ResolveLevel(tt.numID, tt.level)
		if gotType != tt.wantType || gotStart != tt.wantStart {
			t.Errorf("ResolveLevel(%q, %d) = %v, %d, want %v, %d", tt.numID, tt.level, gotType, gotStart, tt.wantType, tt.wantStart)
		}
	}

	if !nr.Defines("2") || nr.Defines("99") {
		t.Error("Defines() mismatch")
	}
}

func TestListStyleKind(t *testing.T) {
	tests := []struct {
		id, name  string
		wantType  ListType
		wantDepth int
		wantOK    bool
	}{
		{"ListBullet", "", ListTypeUnordered, 0, true},
		{"ListNumber3", "", ListTypeOrdered, 2, true},
		{"a1", "List Number 2", ListTypeOrdered, 1, true},
		{"Normal", "Normal", ListTypeUnordered, 0, false},
	}

	for _, tt := range tests {
		lt, depth, ok := listStyleKind(tt.id, tt.name)
		if lt != tt.wantType || depth != tt.wantDepth || ok != tt.wantOK {
			t.Errorf("listStyleKind(%q, %q) = %v, %d, %v", tt.id, tt.name, lt, depth, ok)
		}
	}
}
