package docx

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"

	"github.com/tsawler/docmorph/model"
)

// Fixed styling applied by Write.
const (
	codeFont        = "Courier New"
	codeBlockSize   = 18 // half-points
	inlineCodeSize  = 20
	inlineCodeColor = "C7254E"
	linkColor       = "0000FF"
	tableStyle      = "LightGridAccent1"
	codeIndent      = 720 // twips
	tableWidth      = 9000
	bulletNumID     = 1
)

// part is one file of the package.
type part struct {
	name string
	data string
}

// Write renders a Document as a DOCX package.
func Write(doc *model.Document) ([]byte, error) {
	w := newWriter()
	w.body(doc)

	parts := []part{
		{"[Content_Types].xml", contentTypesPart},
		{"_rels/.rels", packageRelsPart},
		{"word/document.xml", w.documentPart()},
		{"word/styles.xml", stylesPart()},
		{"word/numbering.xml", w.numberingPart()},
		{"word/_rels/document.xml.rels", w.documentRelsPart()},
		{"docProps/core.xml", corePart(doc.Title)},
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, p := range parts {
		f, err := zw.Create(p.name)
		if err != nil {
			return nil, fmt.Errorf("creating %s: %w", p.name, err)
		}
		if _, err := f.Write([]byte(p.data)); err != nil {
			return nil, fmt.Errorf("writing %s: %w", p.name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("closing package: %w", err)
	}
	return buf.Bytes(), nil
}

// writer builds word/document.xml and collects the hyperlink relationships
// and numbering instances it references.
type writer struct {
	sb        strings.Builder
	links     []relationshipXML
	linkIDs   map[string]string
	listStart []int // start value of each ordered list, numId = index + 2
	bookmarks int
}

func newWriter() *writer {
	return &writer{linkIDs: make(map[string]string)}
}

func (w *writer) body(doc *model.Document) {
	for _, block := range doc.Blocks {
		switch b := block.(type) {
		case *model.Heading:
			w.paragraph(fmt.Sprintf("Heading%d", model.ClampLevel(b.Level)), "", b.Runs, false)
		case *model.Paragraph:
			w.paragraph("", "", b.Runs, false)
		case *model.List:
			w.list(b)
		case *model.CodeBlock:
			w.code(b)
		case *model.BlockQuote:
			for _, runs := range b.Paragraphs() {
				w.paragraph("Quote", "", runs, false)
			}
		case *model.Rule:
			w.sb.WriteString(`<w:p><w:pPr><w:pBdr><w:bottom w:val="single" w:sz="6" w:space="1" w:color="auto"/></w:pBdr></w:pPr></w:p>`)
		case *model.Table:
			w.table(b)
		}
	}
}

// paragraph writes one w:p. extraProps is inserted into w:pPr verbatim.
func (w *writer) paragraph(style, extraProps string, runs []model.Run, bold bool) {
	w.sb.WriteString("<w:p>")
	if style != "" || extraProps != "" {
		w.sb.WriteString("<w:pPr>")
		if style != "" {
			fmt.Fprintf(&w.sb, `<w:pStyle w:val="%s"/>`, style)
		}
		w.sb.WriteString(extraProps)
		w.sb.WriteString("</w:pPr>")
	}
	for _, r := range runs {
		w.run(r, bold)
	}
	w.sb.WriteString("</w:p>")
}

func (w *writer) list(l *model.List) {
	style := "ListBullet"
	numID := bulletNumID
	if l.Ordered {
		style = "ListNumber"
		start := 1
		for _, item := range l.Items {
			if item.Depth == 0 {
				if item.Index > 0 {
					start = item.Index
				}
				break
			}
		}
		w.listStart = append(w.listStart, start)
		numID = len(w.listStart) + 1
	}
	for _, item := range l.Items {
		numPr := fmt.Sprintf(`<w:numPr><w:ilvl w:val="%d"/><w:numId w:val="%d"/></w:numPr>`, clampDepth(item.Depth), numID)
		w.paragraph(style, numPr, item.Runs, false)
	}
}

func clampDepth(depth int) int {
	switch {
	case depth < 0:
		return 0
	case depth > 8:
		return 8
	default:
		return depth
	}
}

// code writes one CodeBlock paragraph per line. The first line carries a
// bookmark naming the language so consecutive blocks stay separate.
func (w *writer) code(c *model.CodeBlock) {
	lines := c.Lines
	if len(lines) == 0 {
		lines = []string{""}
	}
	for i, line := range lines {
		w.sb.WriteString(`<w:p><w:pPr><w:pStyle w:val="CodeBlock"/></w:pPr>`)
		if i == 0 {
			w.bookmarks++
			fmt.Fprintf(&w.sb, `<w:bookmarkStart w:id="%d" w:name="%s"/><w:bookmarkEnd w:id="%d"/>`,
				w.bookmarks, escapeText(codeBookmarkPrefix+c.Language), w.bookmarks)
		}
		if line != "" {
			w.sb.WriteString("<w:r>")
			w.text(line)
			w.sb.WriteString("</w:r>")
		}
		w.sb.WriteString("</w:p>")
	}
}

func (w *writer) table(t *model.Table) {
	cols := t.MaxCols()
	if cols == 0 {
		return
	}
	colWidth := tableWidth / cols

	w.sb.WriteString("<w:tbl><w:tblPr>")
	fmt.Fprintf(&w.sb, `<w:tblStyle w:val="%s"/><w:tblW w:w="0" w:type="auto"/>`, tableStyle)
	w.sb.WriteString("<w:tblBorders>")
	for _, side := range []string{"top", "left", "bottom", "right", "insideH", "insideV"} {
		fmt.Fprintf(&w.sb, `<w:%s w:val="single" w:sz="4" w:space="0" w:color="auto"/>`, side)
	}
	w.sb.WriteString(`</w:tblBorders><w:tblLook w:val="04A0" w:firstRow="1" w:lastRow="0" w:firstColumn="1" w:lastColumn="0" w:noHBand="0" w:noVBand="1"/></w:tblPr>`)

	w.sb.WriteString("<w:tblGrid>")
	for i := 0; i < cols; i++ {
		fmt.Fprintf(&w.sb, `<w:gridCol w:w="%d"/>`, colWidth)
	}
	w.sb.WriteString("</w:tblGrid>")

	for i, row := range t.Rows {
		header := i == 0
		w.sb.WriteString("<w:tr>")
		if header {
			w.sb.WriteString("<w:trPr><w:tblHeader/></w:trPr>")
		}
		for j := 0; j < cols; j++ {
			var runs []model.Run
			if j < len(row) {
				runs = row[j].Runs
			}
			fmt.Fprintf(&w.sb, `<w:tc><w:tcPr><w:tcW w:w="%d" w:type="dxa"/></w:tcPr>`, colWidth)
			w.paragraph("", "", runs, header)
			w.sb.WriteString("</w:tc>")
		}
		w.sb.WriteString("</w:tr>")
	}
	w.sb.WriteString("</w:tbl>")
}

// run writes one styled run. bold forces bold weight regardless of style.
func (w *writer) run(r model.Run, bold bool) {
	if r.Text == "" {
		return
	}
	if r.Style == model.StyleLink && r.Target != "" {
		if anchor, ok := strings.CutPrefix(r.Target, "#"); ok {
			fmt.Fprintf(&w.sb, `<w:hyperlink w:anchor="%s">`, escapeText(anchor))
		} else {
			fmt.Fprintf(&w.sb, `<w:hyperlink r:id="%s">`, w.linkID(r.Target))
		}
		w.sb.WriteString(`<w:r><w:rPr><w:rStyle w:val="Hyperlink"/>`)
		if bold {
			w.sb.WriteString("<w:b/>")
		}
		fmt.Fprintf(&w.sb, `<w:color w:val="%s"/><w:u w:val="single"/></w:rPr>`, linkColor)
		w.text(r.Text)
		w.sb.WriteString("</w:r></w:hyperlink>")
		return
	}

	var props strings.Builder
	switch r.Style {
	case model.StyleCode:
		fmt.Fprintf(&props, `<w:rStyle w:val="InlineCode"/><w:rFonts w:ascii="%s" w:hAnsi="%s"/>`, codeFont, codeFont)
		if bold {
			props.WriteString("<w:b/>")
		}
		fmt.Fprintf(&props, `<w:color w:val="%s"/><w:sz w:val="%d"/>`, inlineCodeColor, inlineCodeSize)
	default:
		if bold || r.Style.IsBold() {
			props.WriteString("<w:b/>")
		}
		if r.Style.IsItalic() {
			props.WriteString("<w:i/>")
		}
	}

	w.sb.WriteString("<w:r>")
	if props.Len() > 0 {
		w.sb.WriteString("<w:rPr>")
		w.sb.WriteString(props.String())
		w.sb.WriteString("</w:rPr>")
	}
	w.text(r.Text)
	w.sb.WriteString("</w:r>")
}

// text writes run content, turning tabs into w:tab and line breaks into
// spaces.
func (w *writer) text(s string) {
	s = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ").Replace(s)
	for i, seg := range strings.Split(s, "\t") {
		if i > 0 {
			w.sb.WriteString("<w:tab/>")
		}
		if seg == "" {
			continue
		}
		w.sb.WriteString(`<w:t xml:space="preserve">`)
		w.sb.WriteString(escapeText(seg))
		w.sb.WriteString("</w:t>")
	}
}

// linkID returns the relationship ID for an external hyperlink target.
// Relationship IDs rId1 and rId2 are reserved for styles and numbering.
func (w *writer) linkID(target string) string {
	if id, ok := w.linkIDs[target]; ok {
		return id
	}
	id := "rId" + strconv.Itoa(len(w.links)+3)
	w.linkIDs[target] = id
	w.links = append(w.links, relationshipXML{ID: id, Type: relHyperlink, Target: target, TargetMode: "External"})
	return id
}

func (w *writer) documentPart() string {
	var sb strings.Builder
	sb.WriteString(xml.Header)
	fmt.Fprintf(&sb, `<w:document xmlns:w="%s" xmlns:r="%s"><w:body>`, nsW, nsR)
	sb.WriteString(w.sb.String())
	sb.WriteString(`<w:sectPr><w:pgSz w:w="11906" w:h="16838"/><w:pgMar w:top="1440" w:right="1440" w:bottom="1440" w:left="1440" w:header="708" w:footer="708" w:gutter="0"/></w:sectPr>`)
	sb.WriteString("</w:body></w:document>")
	return sb.String()
}

func (w *writer) documentRelsPart() string {
	var sb strings.Builder
	sb.WriteString(xml.Header)
	fmt.Fprintf(&sb, `<Relationships xmlns="%s">`, nsRel)
	fmt.Fprintf(&sb, `<Relationship Id="rId1" Type="%s" Target="styles.xml"/>`, relStyles)
	fmt.Fprintf(&sb, `<Relationship Id="rId2" Type="%s" Target="numbering.xml"/>`, relNumbering)
	for _, rel := range w.links {
		fmt.Fprintf(&sb, `<Relationship Id="%s" Type="%s" Target="%s" TargetMode="%s"/>`,
			rel.ID, rel.Type, escapeText(rel.Target), rel.TargetMode)
	}
	sb.WriteString("</Relationships>")
	return sb.String()
}

// numberingPart declares one bullet definition shared by all unordered
// lists and one decimal instance per ordered list, so each ordered list
// restarts at its own first number.
func (w *writer) numberingPart() string {
	bullets := []string{"\u2022", "\u25e6", "\u25aa"}

	var sb strings.Builder
	sb.WriteString(xml.Header)
	fmt.Fprintf(&sb, `<w:numbering xmlns:w="%s">`, nsW)

	sb.WriteString(`<w:abstractNum w:abstractNumId="0"><w:multiLevelType w:val="hybridMultilevel"/>`)
	for lvl := 0; lvl < 9; lvl++ {
		fmt.Fprintf(&sb, `<w:lvl w:ilvl="%d"><w:start w:val="1"/><w:numFmt w:val="bullet"/><w:lvlText w:val="%s"/><w:lvlJc w:val="left"/><w:pPr><w:ind w:left="%d" w:hanging="360"/></w:pPr></w:lvl>`,
			lvl, bullets[lvl%len(bullets)], 720*(lvl+1))
	}
	sb.WriteString("</w:abstractNum>")

	sb.WriteString(`<w:abstractNum w:abstractNumId="1"><w:multiLevelType w:val="hybridMultilevel"/>`)
	for lvl := 0; lvl < 9; lvl++ {
		fmt.Fprintf(&sb, `<w:lvl w:ilvl="%d"><w:start w:val="1"/><w:numFmt w:val="decimal"/><w:lvlText w:val="%%%d."/><w:lvlJc w:val="left"/><w:pPr><w:ind w:left="%d" w:hanging="360"/></w:pPr></w:lvl>`,
			lvl, lvl+1, 720*(lvl+1))
	}
	sb.WriteString("</w:abstractNum>")

	fmt.Fprintf(&sb, `<w:num w:numId="%d"><w:abstractNumId w:val="0"/></w:num>`, bulletNumID)
	for i, start := range w.listStart {
		fmt.Fprintf(&sb, `<w:num w:numId="%d"><w:abstractNumId w:val="1"/><w:lvlOverride w:ilvl="0"><w:startOverride w:val="%d"/></w:lvlOverride></w:num>`,
			i+2, start)
	}
	sb.WriteString("</w:numbering>")
	return sb.String()
}

func stylesPart() string {
	var sb strings.Builder
	sb.WriteString(xml.Header)
	fmt.Fprintf(&sb, `<w:styles xmlns:w="%s">`, nsW)
	sb.WriteString(`<w:docDefaults><w:rPrDefault><w:rPr><w:rFonts w:ascii="Calibri" w:hAnsi="Calibri"/><w:sz w:val="22"/></w:rPr></w:rPrDefault>`)
	sb.WriteString(`<w:pPrDefault><w:pPr><w:spacing w:after="160" w:line="259" w:lineRule="auto"/></w:pPr></w:pPrDefault></w:docDefaults>`)
	sb.WriteString(`<w:style w:type="paragraph" w:default="1" w:styleId="Normal"><w:name w:val="Normal"/><w:qFormat/></w:style>`)

	headingSizes := []int{32, 26, 24, 22, 22, 22}
	for i, size := range headingSizes {
		level := i + 1
		fmt.Fprintf(&sb, `<w:style w:type="paragraph" w:styleId="Heading%d"><w:name w:val="heading %d"/><w:basedOn w:val="Normal"/><w:next w:val="Normal"/><w:qFormat/>`, level, level)
		fmt.Fprintf(&sb, `<w:pPr><w:keepNext/><w:spacing w:before="240" w:after="80"/><w:outlineLvl w:val="%d"/></w:pPr>`, i)
		fmt.Fprintf(&sb, `<w:rPr><w:b/><w:color w:val="2C3E50"/><w:sz w:val="%d"/></w:rPr></w:style>`, size)
	}

	sb.WriteString(`<w:style w:type="paragraph" w:styleId="ListBullet"><w:name w:val="List Bullet"/><w:basedOn w:val="Normal"/><w:pPr><w:contextualSpacing/></w:pPr></w:style>`)
	sb.WriteString(`<w:style w:type="paragraph" w:styleId="ListNumber"><w:name w:val="List Number"/><w:basedOn w:val="Normal"/><w:pPr><w:contextualSpacing/></w:pPr></w:style>`)
	sb.WriteString(`<w:style w:type="paragraph" w:styleId="Quote"><w:name w:val="Quote"/><w:basedOn w:val="Normal"/><w:qFormat/><w:pPr><w:ind w:left="720" w:right="720"/></w:pPr><w:rPr><w:i/><w:color w:val="555555"/></w:rPr></w:style>`)
	fmt.Fprintf(&sb, `<w:style w:type="paragraph" w:styleId="CodeBlock"><w:name w:val="Code Block"/><w:basedOn w:val="Normal"/><w:pPr><w:spacing w:after="0" w:line="240" w:lineRule="auto"/><w:ind w:left="%d"/></w:pPr><w:rPr><w:rFonts w:ascii="%s" w:hAnsi="%s"/><w:sz w:val="%d"/></w:rPr></w:style>`,
		codeIndent, codeFont, codeFont, codeBlockSize)
	fmt.Fprintf(&sb, `<w:style w:type="character" w:styleId="InlineCode"><w:name w:val="Inline Code"/><w:rPr><w:rFonts w:ascii="%s" w:hAnsi="%s"/><w:color w:val="%s"/><w:sz w:val="%d"/></w:rPr></w:style>`,
		codeFont, codeFont, inlineCodeColor, inlineCodeSize)
	fmt.Fprintf(&sb, `<w:style w:type="character" w:styleId="Hyperlink"><w:name w:val="Hyperlink"/><w:rPr><w:color w:val="%s"/><w:u w:val="single"/></w:rPr></w:style>`, linkColor)
	fmt.Fprintf(&sb, `<w:style w:type="table" w:styleId="%s"><w:name w:val="Light Grid Accent 1"/><w:tblPr><w:tblBorders>`, tableStyle)
	for _, side := range []string{"top", "left", "bottom", "right", "insideH", "insideV"} {
		fmt.Fprintf(&sb, `<w:%s w:val="single" w:sz="8" w:space="0" w:color="4F81BD"/>`, side)
	}
	sb.WriteString(`</w:tblBorders></w:tblPr></w:style>`)
	sb.WriteString("</w:styles>")
	return sb.String()
}

func corePart(title string) string {
	var sb strings.Builder
	sb.WriteString(xml.Header)
	fmt.Fprintf(&sb, `<cp:coreProperties xmlns:cp="%s" xmlns:dc="%s" xmlns:dcterms="http://purl.org/dc/terms/" xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance">`, nsCP, nsDC)
	if title != "" {
		fmt.Fprintf(&sb, "<dc:title>%s</dc:title>", escapeText(title))
	}
	sb.WriteString("<dc:creator>docmorph</dc:creator></cp:coreProperties>")
	return sb.String()
}

var contentTypesPart = xml.Header +
	`<Types xmlns="` + nsCT + `">` +
	`<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>` +
	`<Default Extension="xml" ContentType="application/xml"/>` +
	`<Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>` +
	`<Override PartName="/word/styles.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.styles+xml"/>` +
	`<Override PartName="/word/numbering.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.numbering+xml"/>` +
	`<Override PartName="/docProps/core.xml" ContentType="application/vnd.openxmlformats-package.core-properties+xml"/>` +
	`</Types>`

var packageRelsPart = xml.Header +
	`<Relationships xmlns="` + nsRel + `">` +
	`<Relationship Id="rId1" Type="` + relOfficeDocument + `" Target="word/document.xml"/>` +
	`<Relationship Id="rId2" Type="` + relCoreProps + `" Target="docProps/core.xml"/>` +
	`</Relationships>`

// escapeText escapes character data and double-quoted attribute values.
func escapeText(s string) string {
	var buf bytes.Buffer
	_ = xml.EscapeText(&buf, []byte(s))
	return buf.String()
}
