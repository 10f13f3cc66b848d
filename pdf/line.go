package pdf

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/go-pdf/fpdf"

	"github.com/tsawler/docmorph/internal/textenc"
	"github.com/tsawler/docmorph/model"
)

// Tolerances for grouping glyphs, in points or fractions of the font size.
const (
	sameLineTolerance = 1.0  // baseline difference within one line
	wordGapRatio      = 0.15 // gap wider than this times the size is a space
)

// fontFace is the style information carried by a PDF font name.
type fontFace struct {
	Bold   bool
	Italic bool
	Mono   bool
}

func parseFontName(name string) fontFace {
	if i := strings.IndexByte(name, '+'); i >= 0 {
		name = name[i+1:]
	}
	lower := strings.ToLower(name)
	return fontFace{
		Bold:   strings.Contains(lower, "bold") || strings.Contains(lower, "black") || strings.Contains(lower, "heavy"),
		Italic: strings.Contains(lower, "italic") || strings.Contains(lower, "oblique"),
		Mono:   strings.Contains(lower, "courier") || strings.Contains(lower, "mono") || strings.Contains(lower, "consol"),
	}
}

// style maps a face to a run style. Monospace wins over weight and slant.
func (f fontFace) style() model.Style {
	if f.Mono {
		return model.StyleCode
	}
	return model.Emphasis(f.Bold, f.Italic)
}

// metrics measures text in the standard core fonts. Content streams that
// use those fonts carry no width tables, so glyph advances come from the
// font metrics fpdf ships with.
type metrics struct {
	pdf *fpdf.Fpdf
}

func newMetrics() *metrics {
	return &metrics{pdf: fpdf.New("P", "pt", "A4", "")}
}

// coreFamily maps a base font name to an fpdf core family and style.
func coreFamily(name string) (family, style string, ok bool) {
	if i := strings.IndexByte(name, '+'); i >= 0 {
		name = name[i+1:]
	}
	face := parseFontName(name)
	switch {
	case strings.HasPrefix(name, "Helvetica"), strings.HasPrefix(name, "Arial"):
		family = "Helvetica"
	case strings.HasPrefix(name, "Times"):
		family = "Times"
	case strings.HasPrefix(name, "Courier"):
		family = "Courier"
	default:
		return "", "", false
	}
	if face.Bold {
		style += "B"
	}
	if face.Italic {
		style += "I"
	}
	return family, style, true
}

// width returns the advance of text set in font at size.
func (m *metrics) width(font string, size float64, text string) float64 {
	if family, style, ok := coreFamily(font); ok && m.pdf.Ok() {
		enc, _ := textenc.EncodeWindows1252(text)
		m.pdf.SetFont(family, style, size)
		if w := m.pdf.GetStringWidth(enc); w > 0 {
			return w
		}
	}
	ratio := 0.5
	if parseFontName(font).Mono {
		ratio = courierAdvance
	}
	return float64(utf8.RuneCountInString(text)) * ratio * size
}

// fragment is a run of glyphs sharing font, size and baseline with no gap
// between them.
type fragment struct {
	Text   string
	Font   string
	Face   fontFace
	Size   float64
	X, Y   float64
	Width  float64
	Target string
}

func (f fragment) End() float64 { return f.X + f.Width }

// anchor is the point used for hit tests against cells and links.
func (f fragment) anchor() Point {
	return Point{X: f.X + 0.5, Y: f.Y + 1}
}

func (f fragment) runStyle() model.Style {
	if f.Target != "" {
		return model.StyleLink
	}
	return f.Face.style()
}

// buildFragments groups glyphs in content stream order. A glyph joins the
// current fragment when it shares font, size and baseline and either has
// the same origin (one show operator without width data) or starts where
// the previous glyph ended.
func buildFragments(glyphs []glyph, m *metrics) []fragment {
	var frags []fragment
	var cur *fragment
	var sb strings.Builder
	prevEnd := 0.0
	hasWidths := false

	flush := func() {
		if cur == nil {
			return
		}
		cur.Text = sb.String()
		if !hasWidths || cur.Width <= 0 {
			cur.Width = m.width(cur.Font, cur.Size, cur.Text)
		}
		frags = append(frags, *cur)
		cur = nil
		sb.Reset()
	}

	for _, g := range glyphs {
		if strings.TrimSpace(g.Text) == "" {
			flush()
			continue
		}
		if cur != nil {
			sameRun := cur.Font == g.Font && near(cur.Size, g.Size, 0.01) && near(cur.Y, g.Y, 0.01)
			contiguous := near(g.X, cur.X, 0.01) && g.W == 0 && !hasWidths
			if hasWidths && g.W > 0 {
				contiguous = g.X >= prevEnd-0.5 && g.X-prevEnd <= wordGapRatio*g.Size
			}
			if !sameRun || !contiguous {
				flush()
			}
		}
		if cur == nil {
			cur = &fragment{Font: g.Font, Face: parseFontName(g.Font), Size: g.Size, X: g.X, Y: g.Y}
			hasWidths = g.W > 0
		}
		sb.WriteString(g.Text)
		cur.Width += g.W
		prevEnd = g.X + g.W
	}
	flush()
	return frags
}

// attachLinks marks fragments that start inside a link annotation.
func attachLinks(frags []fragment, links []linkArea) {
	for i := range frags {
		p := frags[i].anchor()
		for _, l := range links {
			if l.Box.Expand(2).Contains(p) {
				frags[i].Target = l.URI
				break
			}
		}
	}
}

// word is a sequence of fragments with no space between them.
type word struct {
	Frags []fragment
}

func (w word) X() float64   { return w.Frags[0].X }
func (w word) End() float64 { return w.Frags[len(w.Frags)-1].End() }

func (w word) Text() string {
	var sb strings.Builder
	for _, f := range w.Frags {
		sb.WriteString(f.Text)
	}
	return sb.String()
}

// line is a row of words on one baseline.
type line struct {
	Words []word
	Y     float64
	Size  float64 // largest font size on the line
	Page  int
}

func (l line) X() float64 { return l.Words[0].X() }

func (l line) Text() string {
	parts := make([]string, len(l.Words))
	for i, w := range l.Words {
		parts[i] = w.Text()
	}
	return strings.Join(parts, " ")
}

// allMono reports whether every fragment on the line is monospaced.
func (l line) allMono() bool {
	for _, w := range l.Words {
		for _, f := range w.Frags {
			if !f.Face.Mono {
				return false
			}
		}
	}
	return true
}

// runs converts the line into styled runs with spaces between words.
func (l line) runs() []model.Run {
	return wordRuns(l.Words)
}

// wordRuns joins words with single spaces. A space takes the style of its
// neighbours when both share it and is plain otherwise.
func wordRuns(words []word) []model.Run {
	var runs []model.Run
	var prev *fragment
	for _, w := range words {
		first := w.Frags[0]
		if prev != nil {
			space := model.Plain(" ")
			if prev.runStyle() == first.runStyle() && prev.Target == first.Target {
				space = model.Run{Text: " ", Style: first.runStyle(), Target: first.Target}
			}
			runs = append(runs, space)
		}
		for _, f := range w.Frags {
			runs = append(runs, model.Run{Text: f.Text, Style: f.runStyle(), Target: f.Target})
		}
		last := w.Frags[len(w.Frags)-1]
		prev = &last
	}
	return model.NormalizeRuns(runs)
}

// buildLines groups fragments into lines ordered top to bottom and splits
// each line into words at gaps wider than a fraction of the font size.
func buildLines(frags []fragment, page int) []line {
	sorted := append([]fragment(nil), frags...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if !near(sorted[i].Y, sorted[j].Y, sameLineTolerance) {
			return sorted[i].Y > sorted[j].Y
		}
		return sorted[i].X < sorted[j].X
	})

	var lines []line
	for start := 0; start < len(sorted); {
		end := start + 1
		for end < len(sorted) && near(sorted[end].Y, sorted[start].Y, sameLineTolerance) {
			end++
		}
		row := append([]fragment(nil), sorted[start:end]...)
		sort.SliceStable(row, func(i, j int) bool { return row[i].X < row[j].X })
		lines = append(lines, makeLine(row, page))
		start = end
	}
	return lines
}

func makeLine(row []fragment, page int) line {
	l := line{Y: row[0].Y, Page: page}
	var cur word
	for i, f := range row {
		l.Size = max(l.Size, f.Size)
		if i > 0 {
			prev := row[i-1]
			if f.X-prev.End() > wordGapRatio*min(f.Size, prev.Size) {
				l.Words = append(l.Words, cur)
				cur = word{}
			}
		}
		cur.Frags = append(cur.Frags, f)
	}
	l.Words = append(l.Words, cur)
	return l
}
