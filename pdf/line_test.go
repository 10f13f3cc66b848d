package pdf

import (
	"math"
	"testing"

	"github.com/tsawler/docmorph/model"
)

// showText returns glyphs the way a show operator without width data
// produces them: one per character, all at the operator's origin.
func showText(font string, size, x, y float64, s string) []glyph {
	var out []glyph
	for _, r := range s {
		out = append(out, glyph{Text: string(r), Font: font, Size: size, X: x, Y: y})
	}
	return out
}

// showWords places each word of s the way the writer does, one show
// operator per word separated by a space advance.
func showWords(m *metrics, font string, size, x, y float64, words ...string) []glyph {
	var out []glyph
	space := m.width(font, size, " ")
	for _, w := range words {
		out = append(out, showText(font, size, x, y, w)...)
		x += m.width(font, size, w) + space
	}
	return out
}

func TestParseFontName(t *testing.T) {
	tests := []struct {
		name string
		want fontFace
	}{
		{"Helvetica", fontFace{}},
		{"Helvetica-Bold", fontFace{Bold: true}},
		{"Helvetica-BoldOblique", fontFace{Bold: true, Italic: true}},
		{"Times-Italic", fontFace{Italic: true}},
		{"Courier", fontFace{Mono: true}},
		{"ABCDEF+DejaVuSansMono-Bold", fontFace{Bold: true, Mono: true}},
	}

	for _, tt := range tests {
		if got := parseFontName(tt.name); got != tt.want {
			t.Errorf("parseFontName(%q) = %+v, want %+v", tt.name, got, tt.want)
		}
	}
}

func TestFontFaceStyle(t *testing.T) {
	if got := (fontFace{Bold: true, Mono: true}).style(); got != model.StyleCode {
		t.Errorf("mono bold style = %v, want code", got)
	}
	if got := (fontFace{Bold: true, Italic: true}).style(); got != model.StyleBoldItalic {
		t.Errorf("bold italic style = %v, want bold-italic", got)
	}
}

func TestCoreFamily(t *testing.T) {
	tests := []struct {
		name   string
		family string
		style  string
		ok     bool
	}{
		{"Helvetica", "Helvetica", "", true},
		{"Helvetica-BoldOblique", "Helvetica", "BI", true},
		{"Times-Roman", "Times", "", true},
		{"Courier-Bold", "Courier", "B", true},
		{"ArialMT", "Helvetica", "", true},
		{"Garamond", "", "", false},
	}

	for _, tt := range tests {
		family, style, ok := coreFamily(tt.name)
		if family != tt.family || style != tt.style || ok != tt.ok {
			t.Errorf("coreFamily(%q) = %q, %q, %v, want %q, %q, %v",
				tt.name, family, style, ok, tt.family, tt.style, tt.ok)
		}
	}
}

func TestMetricsWidth(t *testing.T) {
	m := newMetrics()

	// H=722 e=556 l=222 l=222 o=556 thousandths of an em.
	if got, want := m.width("Helvetica", 11, "Hello"), 2278.0*11/1000; math.Abs(got-want) > 0.01 {
		t.Errorf("width(Helvetica Hello) = %v, want %v", got, want)
	}
	if got, want := m.width("Courier", 9, "abc"), 3*0.6*9; math.Abs(got-want) > 0.01 {
		t.Errorf("width(Courier abc) = %v, want %v", got, want)
	}
	// Unknown fonts fall back to an estimate from the rune count.
	if got := m.width("Garamond", 10, "abcd"); got != 20 {
		t.Errorf("width(Garamond) = %v, want 20", got)
	}
}

func TestBuildFragments_SharedOrigin(t *testing.T) {
	m := newMetrics()
	glyphs := append(showText("Helvetica", 11, 50, 700, "Hello"), showText("Helvetica-Bold", 11, 80, 700, "World")...)

	frags := buildFragments(glyphs, m)
	if len(frags) != 2 {
		t.Fatalf("got %d fragments, want 2", len(frags))
	}
	if frags[0].Text != "Hello" || frags[1].Text != "World" {
		t.Errorf("fragments = %q, %q", frags[0].Text, frags[1].Text)
	}
	if !frags[1].Face.Bold {
		t.Error("second fragment should be bold")
	}
	if frags[0].Width <= 0 {
		t.Error("fragment width should come from font metrics")
	}
}

func TestBuildFragments_WithWidths(t *testing.T) {
	m := newMetrics()
	glyphs := []glyph{
		{Text: "a", Font: "Custom", Size: 10, X: 10, Y: 100, W: 5},
		{Text: "b", Font: "Custom", Size: 10, X: 15, Y: 100, W: 5},
		// A space advance leaves a gap wider than the word threshold.
		{Text: "c", Font: "Custom", Size: 10, X: 23, Y: 100, W: 5},
	}

	frags := buildFragments(glyphs, m)
	if len(frags) != 2 {
		t.Fatalf("got %d fragments, want 2", len(frags))
	}
	if frags[0].Text != "ab" || frags[0].Width != 10 {
		t.Errorf("first fragment = %q width %v, want \"ab\" width 10", frags[0].Text, frags[0].Width)
	}
}

func TestBuildFragments_SpaceGlyphSplits(t *testing.T) {
	m := newMetrics()
	glyphs := showText("Helvetica", 11, 50, 700, "a b")

	frags := buildFragments(glyphs, m)
	if len(frags) != 2 {
		t.Fatalf("got %d fragments, want 2", len(frags))
	}
}

func TestBuildLines_WordsAndOrder(t *testing.T) {
	m := newMetrics()
	var glyphs []glyph
	glyphs = append(glyphs, showWords(m, "Helvetica", 11, 50, 680, "second", "line")...)
	glyphs = append(glyphs, showWords(m, "Helvetica", 11, 50, 700, "first", "line")...)

	lines := buildLines(buildFragments(glyphs, m), 1)
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(lines))
	}
	if got := lines[0].Text(); got != "first line" {
		t.Errorf("lines[0] = %q, want %q", got, "first line")
	}
	if got := lines[1].Text(); got != "second line" {
		t.Errorf("lines[1] = %q, want %q", got, "second line")
	}
}

func TestBuildLines_GluedStyles(t *testing.T) {
	m := newMetrics()
	// "bo" in bold immediately followed by "ld" in regular weight.
	boldWidth := m.width("Helvetica-Bold", 11, "bo")
	glyphs := append(showText("Helvetica-Bold", 11, 50, 700, "bo"), showText("Helvetica", 11, 50+boldWidth, 700, "ld")...)

	lines := buildLines(buildFragments(glyphs, m), 1)
	if len(lines) != 1 || len(lines[0].Words) != 1 {
		t.Fatalf("want one line with one word, got %+v", lines)
	}

	runs := lines[0].runs()
	want := []model.Run{{Text: "bo", Style: model.StyleBold}, model.Plain("ld")}
	if len(runs) != len(want) {
		t.Fatalf("runs = %+v, want %+v", runs, want)
	}
	for i := range want {
		if runs[i] != want[i] {
			t.Errorf("runs[%d] = %+v, want %+v", i, runs[i], want[i])
		}
	}
}

func TestWordRuns_SpaceStyle(t *testing.T) {
	m := newMetrics()
	glyphs := showWords(m, "Helvetica-Oblique", 11, 50, 700, "both", "italic")
	glyphs = append(glyphs, showWords(m, "Helvetica", 11, 200, 700, "plain")...)

	lines := buildLines(buildFragments(glyphs, m), 1)
	runs := lines[0].runs()
	want := []model.Run{{Text: "both italic", Style: model.StyleItalic}, model.Plain(" plain")}
	if len(runs) != 2 || runs[0] != want[0] || runs[1] != want[1] {
		t.Errorf("runs = %+v, want %+v", runs, want)
	}
}

func TestAttachLinks(t *testing.T) {
	frags := []fragment{
		{Text: "click", X: 50, Y: 700, Width: 25},
		{Text: "plain", X: 120, Y: 700, Width: 25},
	}
	links := []linkArea{{Box: BBox{X: 50, Y: 698, Width: 25, Height: 11}, URI: "https://example.com"}}

	attachLinks(frags, links)
	if frags[0].Target != "https://example.com" {
		t.Errorf("frags[0].Target = %q", frags[0].Target)
	}
	if frags[1].Target != "" {
		t.Errorf("frags[1].Target = %q, want empty", frags[1].Target)
	}
	if frags[0].runStyle() != model.StyleLink {
		t.Errorf("linked fragment style = %v, want link", frags[0].runStyle())
	}
}
