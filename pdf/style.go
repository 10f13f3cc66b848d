package pdf

// Page geometry in points (A4 portrait).
const (
	pageWidth    = 595.28
	pageHeight   = 841.89
	marginLeft   = 56.69 // 2cm
	marginRight  = 56.69
	marginTop    = 70.87 // 2.5cm
	marginBottom = 70.87
	contentWidth = pageWidth - marginLeft - marginRight
)

// Body text.
const (
	bodyFont    = "Helvetica"
	bodySize    = 11.0
	bodyLeading = 16.0
	paraSpacing = 6.0
)

// Headings, level 1 to 6.
var headingSizes = [6]float64{24, 20, 16, 14, 13, 12}

const (
	headingLeadingRatio = 1.3
	headingSpaceBefore  = 10.0
)

// Code.
const (
	codeFont        = "Courier"
	codeSize        = 9.0
	codeLeading     = 12.0
	codeIndent      = 20.0
	inlineCodeSize  = 10.0
	courierAdvance  = 0.6 // glyph width in ems
	tabWidth        = 4
	codeSpaceBefore = 4.0
	codeSpaceAfter  = 10.0
)

// Lists, quotes, rules and tables.
const (
	listIndent       = 20.0
	listMarkerWidth  = 15.0 // marker column, right-aligned
	listMarkerGap    = 4.0
	listItemSpacing  = 2.0
	quoteIndent      = 30.0
	ruleThickness    = 0.75
	ruleSpacing      = 8.0
	tableSize        = 10.0
	tableLeading     = 14.0
	tableCellPadding = 4.0
	tableSpaceAfter  = 10.0
)

// rgb is a colour with 0-255 components.
type rgb struct{ r, g, b int }

var (
	colorBody        = rgb{0, 0, 0}
	colorHeading     = rgb{0x2C, 0x3E, 0x50}
	colorInlineCode  = rgb{199, 37, 78}
	colorLink        = rgb{0, 0, 255}
	colorQuote       = rgb{0x55, 0x55, 0x55}
	colorRule        = rgb{0xBD, 0xC3, 0xC7}
	colorHeaderFill  = rgb{0x34, 0x98, 0xDB}
	colorHeaderText  = rgb{255, 255, 255}
	colorTableBorder = rgb{0x7F, 0x8C, 0x8D}
)

// bulletMarker is written before unordered list items. It is in the
// Windows-1252 repertoire of the core fonts.
const bulletMarker = "•"
