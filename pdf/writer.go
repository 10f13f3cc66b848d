package pdf

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-pdf/fpdf"

	"github.com/tsawler/docmorph/internal/textenc"
	"github.com/tsawler/docmorph/model"
)

// Write renders a Document as a PDF file. Characters outside the
// Windows-1252 repertoire of the core fonts are substituted and reported
// with one encoding warning.
func Write(doc *model.Document) ([]byte, []model.Warning, error) {
	w := newWriter()
	if doc.Title != "" {
		w.pdf.SetTitle(doc.Title, true)
	}
	w.pdf.SetCreator("docmorph", true)
	w.newPage()

	for _, block := range doc.Blocks {
		w.block(block)
	}

	var warnings []model.Warning
	if w.lost > 0 {
		warnings = append(warnings, model.Warnf(model.WarnEncoding, 0,
			"%d characters outside the Windows-1252 range were substituted", w.lost))
	}

	var buf bytes.Buffer
	if err := w.pdf.Output(&buf); err != nil {
		return nil, warnings, fmt.Errorf("rendering PDF: %w", err)
	}
	return buf.Bytes(), warnings, nil
}

// textStyle selects a core font and colour.
type textStyle struct {
	family string
	bold   bool
	italic bool
	size   float64
	color  rgb
}

func (ts textStyle) fontStyle() string {
	s := ""
	if ts.bold {
		s += "B"
	}
	if ts.italic {
		s += "I"
	}
	return s
}

// piece is an unbreakable fragment of one style. Pieces of one word are
// placed without space between them.
type piece struct {
	text   string // Windows-1252 encoded
	style  textStyle
	target string
	width  float64
}

// cluster is a word: pieces that must stay on one line, and the width of
// the space that precedes it.
type cluster struct {
	pieces []piece
	space  float64
	width  float64
}

type placedPiece struct {
	piece
	x float64
}

type layoutLine struct {
	pieces []placedPiece
	size   float64
}

// writer places blocks on pages top to bottom. y is the distance from the
// page top to the top of the next line.
type writer struct {
	pdf  *fpdf.Fpdf
	y    float64
	lost int
}

func newWriter() *writer {
	pdf := fpdf.New("P", "pt", "A4", "")
	pdf.SetMargins(marginLeft, marginTop, marginRight)
	pdf.SetAutoPageBreak(false, marginBottom)
	return &writer{pdf: pdf}
}

func (w *writer) newPage() {
	w.pdf.AddPage()
	w.y = marginTop
}

func (w *writer) atPageTop() bool {
	return w.y <= marginTop
}

// ensure starts a new page unless h more points fit on the current one.
func (w *writer) ensure(h float64) {
	if w.y+h > pageHeight-marginBottom && !w.atPageTop() {
		w.newPage()
	}
}

func (w *writer) encode(s string) string {
	enc, lost := textenc.EncodeWindows1252(s)
	w.lost += lost
	return enc
}

func (w *writer) setFont(ts textStyle) {
	w.pdf.SetFont(ts.family, ts.fontStyle(), ts.size)
	w.pdf.SetTextColor(ts.color.r, ts.color.g, ts.color.b)
}

func (w *writer) width(ts textStyle, encoded string) float64 {
	w.setFont(ts)
	return w.pdf.GetStringWidth(encoded)
}

func (w *writer) block(block model.Block) {
	switch b := block.(type) {
	case *model.Heading:
		w.heading(b)
	case *model.Paragraph:
		w.paragraph(b.Runs, 0, bodyStyle())
	case *model.List:
		w.list(b)
	case *model.CodeBlock:
		w.code(b)
	case *model.BlockQuote:
		quote := bodyStyle()
		quote.color = colorQuote
		for _, runs := range b.Paragraphs() {
			w.paragraph(runs, quoteIndent, quote)
		}
	case *model.Rule:
		w.rule()
	case *model.Table:
		w.table(b)
	}
}

func bodyStyle() textStyle {
	return textStyle{family: bodyFont, size: bodySize, color: colorBody}
}

func (w *writer) heading(h *model.Heading) {
	size := headingSizes[model.ClampLevel(h.Level)-1]
	base := textStyle{family: bodyFont, bold: true, size: size, color: colorHeading}
	if !w.atPageTop() {
		w.y += headingSpaceBefore
	}
	lines := w.layout(h.Runs, base, contentWidth)
	w.renderLines(lines, marginLeft, size*headingLeadingRatio)
	w.y += paraSpacing
}

func (w *writer) paragraph(runs []model.Run, indent float64, base textStyle) {
	lines := w.layout(runs, base, contentWidth-indent)
	w.renderLines(lines, marginLeft+indent, bodyLeading)
	w.y += paraSpacing
}

func (w *writer) list(l *model.List) {
	counters := make(map[int]int)
	for _, item := range l.Items {
		depth := max(item.Depth, 0)
		for d := range counters {
			if d > depth {
				delete(counters, d)
			}
		}
		counters[depth]++

		marker := bulletMarker
		if l.Ordered {
			n := item.Index
			if n <= 0 {
				n = counters[depth]
			}
			marker = strconv.Itoa(n) + "."
		}

		x0 := marginLeft + float64(depth)*listIndent
		textX := x0 + listMarkerWidth
		lines := w.layout(item.Runs, bodyStyle(), marginLeft+contentWidth-textX)
		if len(lines) == 0 {
			lines = []layoutLine{{size: bodySize}}
		}

		w.ensure(bodyLeading)
		enc := w.encode(marker)
		markerX := textX - listMarkerGap - w.width(bodyStyle(), enc)
		w.pdf.Text(max(markerX, x0-listMarkerGap), w.y+baselineOffset(bodyLeading), enc)
		w.renderLines(lines, textX, bodyLeading)
		w.y += listItemSpacing
	}
	w.y += paraSpacing - listItemSpacing
}

// code writes each source line on its own line, placing every non-blank
// token at its character column so indentation survives extraction.
func (w *writer) code(c *model.CodeBlock) {
	style := textStyle{family: codeFont, size: codeSize, color: colorBody}
	w.setFont(style)
	advance := w.pdf.GetStringWidth("m")
	x0 := marginLeft + codeIndent
	maxCols := max(int((contentWidth-codeIndent)/advance), 1)

	w.y += codeSpaceBefore
	for _, line := range c.Lines {
		expanded := []rune(expandTabs(line))
		for start := 0; start == 0 || start < len(expanded); start += maxCols {
			end := min(start+maxCols, len(expanded))
			w.ensure(codeLeading)
			baseline := w.y + baselineOffset(codeLeading)
			chunk := expanded[start:end]
			for col := 0; col < len(chunk); {
				if chunk[col] == ' ' {
					col++
					continue
				}
				end := col
				for end < len(chunk) && chunk[end] != ' ' {
					end++
				}
				w.setFont(style)
				w.pdf.Text(x0+float64(col)*advance, baseline, w.encode(string(chunk[col:end])))
				col = end
			}
			w.y += codeLeading
		}
	}
	w.y += codeSpaceAfter
}

func expandTabs(line string) string {
	if !strings.Contains(line, "\t") {
		return line
	}
	var sb strings.Builder
	col := 0
	for _, r := range line {
		if r == '\t' {
			n := tabWidth - col%tabWidth
			sb.WriteString(strings.Repeat(" ", n))
			col += n
			continue
		}
		sb.WriteRune(r)
		col++
	}
	return sb.String()
}

func (w *writer) rule() {
	w.y += ruleSpacing
	w.ensure(ruleThickness)
	w.pdf.SetFillColor(colorRule.r, colorRule.g, colorRule.b)
	w.pdf.Rect(marginLeft, w.y, contentWidth, ruleThickness, "F")
	w.y += ruleThickness + ruleSpacing
}

func (w *writer) table(t *model.Table) {
	cols := t.MaxCols()
	if cols == 0 {
		return
	}
	colWidth := contentWidth / float64(cols)
	textWidth := colWidth - 2*tableCellPadding

	w.pdf.SetDrawColor(colorTableBorder.r, colorTableBorder.g, colorTableBorder.b)
	w.pdf.SetLineWidth(0.5)

	for i, row := range t.Rows {
		header := i == 0
		base := textStyle{family: bodyFont, size: tableSize, color: colorBody}
		if header {
			base.bold = true
			base.color = colorHeaderText
		}

		cells := make([][]layoutLine, cols)
		lineCount := 1
		for j := 0; j < cols; j++ {
			if j < len(row) {
				cells[j] = w.layout(row[j].Runs, base, textWidth)
			}
			lineCount = max(lineCount, len(cells[j]))
		}
		rowHeight := float64(lineCount)*tableLeading + 2*tableCellPadding

		w.ensure(rowHeight)
		for j := 0; j < cols; j++ {
			x := marginLeft + float64(j)*colWidth
			if header {
				w.pdf.SetFillColor(colorHeaderFill.r, colorHeaderFill.g, colorHeaderFill.b)
				w.pdf.Rect(x, w.y, colWidth, rowHeight, "FD")
			} else {
				w.pdf.Rect(x, w.y, colWidth, rowHeight, "D")
			}
		}

		top := w.y
		for j := 0; j < cols; j++ {
			w.y = top + tableCellPadding
			for _, line := range cells[j] {
				w.drawLine(line, marginLeft+float64(j)*colWidth+tableCellPadding, w.y+baselineOffset(tableLeading))
				w.y += tableLeading
			}
		}
		w.y = top + rowHeight
	}
	w.y += tableSpaceAfter
}

// baselineOffset places the baseline three quarters down a line box.
func baselineOffset(leading float64) float64 {
	return leading * 0.75
}

func (w *writer) renderLines(lines []layoutLine, x, leading float64) {
	for _, line := range lines {
		w.ensure(leading)
		w.drawLine(line, x, w.y+baselineOffset(leading))
		w.y += leading
	}
}

func (w *writer) drawLine(line layoutLine, x, baseline float64) {
	for _, p := range line.pieces {
		w.setFont(p.style)
		w.pdf.Text(x+p.x, baseline, p.text)
		if p.target != "" {
			w.pdf.SetDrawColor(colorLink.r, colorLink.g, colorLink.b)
			w.pdf.SetLineWidth(0.5)
			w.pdf.Line(x+p.x, baseline+1.5, x+p.x+p.width, baseline+1.5)
			w.pdf.LinkString(x+p.x, baseline-p.style.size*0.8, p.width, p.style.size, p.target)
			w.pdf.SetDrawColor(colorTableBorder.r, colorTableBorder.g, colorTableBorder.b)
		}
	}
}

// runStyle derives the style of a run inside a block of base style.
func runStyle(base textStyle, r model.Run) textStyle {
	ts := base
	switch r.Style {
	case model.StyleCode:
		ts.family = codeFont
		ts.italic = false
		ts.size = base.size - (bodySize - inlineCodeSize)
		ts.color = colorInlineCode
	case model.StyleLink:
		ts.color = colorLink
	default:
		ts.bold = base.bold || r.Style.IsBold()
		ts.italic = base.italic || r.Style.IsItalic()
	}
	return ts
}

// layout breaks runs into lines no wider than width.
func (w *writer) layout(runs []model.Run, base textStyle, width float64) []layoutLine {
	var clusters []cluster
	pendingSpace := false
	var spaceStyle textStyle

	for _, r := range runs {
		ts := runStyle(base, r)
		target := ""
		if r.Style == model.StyleLink {
			target = r.Target
		}
		text := strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ", "\t", " ").Replace(r.Text)
		for i, part := range strings.Split(text, " ") {
			if i > 0 && !pendingSpace {
				pendingSpace = true
				spaceStyle = ts
			}
			if part == "" {
				continue
			}
			enc := w.encode(part)
			p := piece{text: enc, style: ts, target: target, width: w.width(ts, enc)}
			if pendingSpace || len(clusters) == 0 {
				c := cluster{}
				if pendingSpace && len(clusters) > 0 {
					c.space = w.width(spaceStyle, " ")
				}
				clusters = append(clusters, c)
				pendingSpace = false
			}
			last := &clusters[len(clusters)-1]
			last.pieces = append(last.pieces, p)
			last.width += p.width
		}
	}

	var lines []layoutLine
	var cur layoutLine
	x := 0.0
	for _, c := range clusters {
		if len(cur.pieces) > 0 && x+c.space+c.width > width {
			lines = append(lines, cur)
			cur = layoutLine{}
			x = 0
		}
		if len(cur.pieces) > 0 {
			x += c.space
		}
		for _, p := range c.pieces {
			cur.pieces = append(cur.pieces, placedPiece{piece: p, x: x})
			cur.size = max(cur.size, p.style.size)
			x += p.width
		}
	}
	if len(cur.pieces) > 0 {
		lines = append(lines, cur)
	}
	return lines
}
