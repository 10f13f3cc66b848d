package docx

import (
	"encoding/xml"
	"io"
)

// XML namespaces used in DOCX files
const (
	nsW   = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"
	nsR   = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"
	nsRel = "http://schemas.openxmlformats.org/package/2006/relationships"
	nsCT  = "http://schemas.openxmlformats.org/package/2006/content-types"
	nsDC  = "http://purl.org/dc/elements/1.1/"
	nsCP  = "http://schemas.openxmlformats.org/package/2006/metadata/core-properties"
)

// Relationship types
const (
	relOfficeDocument = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument"
	relStyles         = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/styles"
	relNumbering      = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/numbering"
	relHyperlink      = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/hyperlink"
	relCoreProps      = "http://schemas.openxmlformats.org/package/2006/relationships/metadata/core-properties"
)

// documentXML represents the structure of word/document.xml
type documentXML struct {
	XMLName xml.Name `xml:"document"`
	Body    *bodyXML `xml:"body"`
}

// bodyXML represents the document body. Elements keeps paragraphs and
// tables in document order.
type bodyXML struct {
	Elements []bodyElement
}

// bodyElement represents an element in the document body (paragraph or table).
type bodyElement struct {
	Paragraph *paragraphXML
	Table     *tableXML
}

// UnmarshalXML decodes body children in order. Content controls (w:sdt) are
// unwrapped so their paragraphs and tables are not lost.
func (b *bodyXML) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	elems, err := decodeBlockContent(d)
	b.Elements = elems
	return err
}

// decodeBlockContent reads block-level children until the enclosing end
// element.
func decodeBlockContent(d *xml.Decoder) ([]bodyElement, error) {
	var elems []bodyElement
	for {
		tok, err := d.Token()
		if err == io.EOF {
			return elems, nil
		}
		if err != nil {
			return elems, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "p":
				var p paragraphXML
				if err := d.DecodeElement(&p, &t); err != nil {
					return elems, err
				}
				elems = append(elems, bodyElement{Paragraph: &p})
			case "tbl":
				var tbl tableXML
				if err := d.DecodeElement(&tbl, &t); err != nil {
					return elems, err
				}
				elems = append(elems, bodyElement{Table: &tbl})
			case "sdt", "sdtContent", "customXml":
				inner, err := decodeBlockContent(d)
				if err != nil {
					return elems, err
				}
				elems = append(elems, inner...)
			default:
				if err := d.Skip(); err != nil {
					return elems, err
				}
			}
		case xml.EndElement:
			return elems, nil
		}
	}
}

// paragraphXML represents a paragraph element (<w:p>).
type paragraphXML struct {
	Properties paragraphPropsXML
	// Content holds runs, hyperlinks and bookmarks in document order.
	Content []paragraphItem
}

// paragraphItem is one inline child of a paragraph.
type paragraphItem struct {
	Run       *runXML
	Hyperlink *hyperlinkXML
	Bookmark  *bookmarkXML
}

// UnmarshalXML decodes paragraph children in order. Revision and smart tag
// wrappers are flattened into the paragraph.
func (p *paragraphXML) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	for {
		tok, err := d.Token()
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if err := p.decodeChild(d, t); err != nil {
				return err
			}
		case xml.EndElement:
			return nil
		}
	}
}

func (p *paragraphXML) decodeChild(d *xml.Decoder, t xml.StartElement) error {
	switch t.Name.Local {
	case "pPr":
		return d.DecodeElement(&p.Properties, &t)
	case "r":
		var r runXML
		if err := d.DecodeElement(&r, &t); err != nil {
			return err
		}
		p.Content = append(p.Content, paragraphItem{Run: &r})
	case "hyperlink":
		var h hyperlinkXML
		if err := d.DecodeElement(&h, &t); err != nil {
			return err
		}
		p.Content = append(p.Content, paragraphItem{Hyperlink: &h})
	case "bookmarkStart":
		var b bookmarkXML
		if err := d.DecodeElement(&b, &t); err != nil {
			return err
		}
		p.Content = append(p.Content, paragraphItem{Bookmark: &b})
	case "ins", "smartTag", "fldSimple", "customXml", "sdt", "sdtContent":
		for {
			tok, err := d.Token()
			if err != nil {
				return err
			}
			switch inner := tok.(type) {
			case xml.StartElement:
				if err := p.decodeChild(d, inner); err != nil {
					return err
				}
			case xml.EndElement:
				return nil
			}
		}
	default:
		return d.Skip()
	}
	return nil
}

// paragraphPropsXML represents paragraph properties (<w:pPr>).
type paragraphPropsXML struct {
	Style      styleRefXML       `xml:"pStyle"`
	NumPr      numberingPropsXML `xml:"numPr"`
	Indent     indentXML         `xml:"ind"`
	OutlineLvl outlineLvlXML     `xml:"outlineLvl"`
	Borders    paragraphBdrXML   `xml:"pBdr"`
}

// styleRefXML represents a style reference.
type styleRefXML struct {
	Val string `xml:"val,attr"`
}

// numberingPropsXML represents numbering properties for lists.
type numberingPropsXML struct {
	ILvl  ilvlXML  `xml:"ilvl"`
	NumID numIDXML `xml:"numId"`
}

// ilvlXML represents indentation level.
type ilvlXML struct {
	Val string `xml:"val,attr"`
}

// numIDXML represents numbering ID.
type numIDXML struct {
	Val string `xml:"val,attr"`
}

// indentXML represents paragraph indentation.
type indentXML struct {
	Left    string `xml:"left,attr"`
	Start   string `xml:"start,attr"`
	Hanging string `xml:"hanging,attr"`
}

// outlineLvlXML represents outline level.
type outlineLvlXML struct {
	Val string `xml:"val,attr"`
}

// paragraphBdrXML represents paragraph borders (<w:pBdr>).
type paragraphBdrXML struct {
	Top    borderXML `xml:"top"`
	Bottom borderXML `xml:"bottom"`
}

// runXML represents a text run (<w:r>).
type runXML struct {
	Properties runPropsXML
	// Content holds text, tabs, breaks and symbols in order.
	Content []runContentXML
	// HasDrawing is set when the run embeds an image or shape.
	HasDrawing bool
}

// runContentXML is one child of a run.
type runContentXML struct {
	Kind string // t, tab, br, sym, cr, noBreakHyphen
	Text string
}

// UnmarshalXML decodes run children in order.
func (r *runXML) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	for {
		tok, err := d.Token()
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "rPr":
				if err := d.DecodeElement(&r.Properties, &t); err != nil {
					return err
				}
			case "t", "delText":
				var txt textXML
				if err := d.DecodeElement(&txt, &t); err != nil {
					return err
				}
				if t.Name.Local == "t" {
					r.Content = append(r.Content, runContentXML{Kind: "t", Text: txt.Value})
				}
			case "sym":
				var s symXML
				if err := d.DecodeElement(&s, &t); err != nil {
					return err
				}
				r.Content = append(r.Content, runContentXML{Kind: "sym", Text: s.Char})
			case "drawing", "pict", "object":
				r.HasDrawing = true
				if err := d.Skip(); err != nil {
					return err
				}
			default:
				r.Content = append(r.Content, runContentXML{Kind: t.Name.Local})
				if err := d.Skip(); err != nil {
					return err
				}
			}
		case xml.EndElement:
			return nil
		}
	}
}

// symXML represents a symbol character (<w:sym>).
type symXML struct {
	Font string `xml:"font,attr"` // Font name (e.g., "Segoe UI Emoji")
	Char string `xml:"char,attr"` // Hex character code
}

// runPropsXML represents run properties (<w:rPr>).
type runPropsXML struct {
	Style     styleRefXML  `xml:"rStyle"`
	Bold      boolXML      `xml:"b"`
	Italic    boolXML      `xml:"i"`
	Underline underlineXML `xml:"u"`
	Strike    boolXML      `xml:"strike"`
	FontSize  sizeXML      `xml:"sz"`
	Font      fontXML      `xml:"rFonts"`
	Color     colorXML     `xml:"color"`
	Vanish    boolXML      `xml:"vanish"`
}

// boolXML represents a boolean attribute.
type boolXML struct {
	XMLName xml.Name
	Val     string `xml:"val,attr"`
}

// On reports whether the toggle is present and not switched off.
func (b boolXML) On() bool {
	return b.XMLName.Local != "" && b.Val != "false" && b.Val != "0" && b.Val != "off"
}

// Set reports whether the toggle appears at all.
func (b boolXML) Set() bool {
	return b.XMLName.Local != ""
}

// underlineXML represents underline style.
type underlineXML struct {
	Val string `xml:"val,attr"` // single, double, etc.
}

// sizeXML represents font size (in half-points).
type sizeXML struct {
	Val string `xml:"val,attr"`
}

// fontXML represents font settings.
type fontXML struct {
	ASCII string `xml:"ascii,attr"`
	HAnsi string `xml:"hAnsi,attr"`
}

// colorXML represents text color.
type colorXML struct {
	Val string `xml:"val,attr"` // Hex color or "auto"
}

// textXML represents text content (<w:t>).
type textXML struct {
	Space string `xml:"space,attr"` // preserve
	Value string `xml:",chardata"`
}

// hyperlinkXML represents a hyperlink.
type hyperlinkXML struct {
	ID     string   `xml:"id,attr"`
	Anchor string   `xml:"anchor,attr"`
	Runs   []runXML `xml:"r"`
}

// bookmarkXML represents a bookmark.
type bookmarkXML struct {
	ID   string `xml:"id,attr"`
	Name string `xml:"name,attr"`
}

// tableXML represents a table (<w:tbl>).
type tableXML struct {
	XMLName    xml.Name      `xml:"tbl"`
	Properties tablePropsXML `xml:"tblPr"`
	Grid       tableGridXML  `xml:"tblGrid"`
	Rows       []tableRowXML `xml:"tr"`
}

// tablePropsXML represents table properties.
type tablePropsXML struct {
	Style styleRefXML `xml:"tblStyle"`
}

// borderXML represents a single border.
type borderXML struct {
	Val   string `xml:"val,attr"`   // Border style: single, double, etc.
	Sz    string `xml:"sz,attr"`    // Size in eighths of a point
	Space string `xml:"space,attr"` // Space from text
	Color string `xml:"color,attr"` // Color
}

// Visible reports whether the border is drawn.
func (b borderXML) Visible() bool {
	return b.Val != "" && b.Val != "nil" && b.Val != "none"
}

// tableGridXML represents table grid definition.
type tableGridXML struct {
	Cols []gridColXML `xml:"gridCol"`
}

// gridColXML represents a grid column.
type gridColXML struct {
	W string `xml:"w,attr"` // Width in twips
}

// tableRowXML represents a table row (<w:tr>).
type tableRowXML struct {
	XMLName    xml.Name       `xml:"tr"`
	Properties rowPropsXML    `xml:"trPr"`
	Cells      []tableCellXML `xml:"tc"`
}

// rowPropsXML represents row properties.
type rowPropsXML struct {
	Header boolXML `xml:"tblHeader"` // Is this a header row?
}

// tableCellXML represents a table cell (<w:tc>).
type tableCellXML struct {
	XMLName    xml.Name       `xml:"tc"`
	Properties cellPropsXML   `xml:"tcPr"`
	Paragraphs []paragraphXML `xml:"p"`
	Tables     []tableXML     `xml:"tbl"`
}

// cellPropsXML represents cell properties.
type cellPropsXML struct {
	GridSpan gridSpanXML `xml:"gridSpan"`
	VMerge   vMergeXML   `xml:"vMerge"`
}

// gridSpanXML represents column span.
type gridSpanXML struct {
	Val string `xml:"val,attr"` // Number of columns spanned
}

// vMergeXML represents vertical merge.
type vMergeXML struct {
	XMLName xml.Name `xml:"vMerge"`
	Val     string   `xml:"val,attr"` // "restart" or empty (continue)
}
