package docx

import (
	"encoding/xml"
	"testing"
)

func on(name string) boolXML {
	return boolXML{XMLName: xml.Name{Local: name}}
}

func TestNewStyleResolver_Nil(t *testing.T) {
	sr := NewStyleResolver(nil)
	if sr == nil {
		t.Fatal("NewStyleResolver(nil) returned nil")
	}

	style := sr.Resolve("")
	if style.FontName != "Calibri" {
		t.Errorf("default FontName = %v, want Calibri", style.FontName)
	}
	if style.IsHeading {
		t.Error("default style should not be a heading")
	}
}

func TestStyleResolver_ResolveBuiltInHeading(t *testing.T) {
	sr := NewStyleResolver(nil)

	tests := []struct {
		styleID       string
		wantIsHeading bool
		wantLevel     int
	}{
		{"Heading1", true, 1},
		{"Heading2", true, 2},
		{"heading1", true, 1}, // case insensitive
		{"Heading9", true, 9},
		{"Title", true, 1},
		{"Normal", false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.styleID, func(t *testing.T) {
			style := sr.Resolve(tt.styleID)
			if style.IsHeading != tt.wantIsHeading {
				t.Errorf("IsHeading = %v, want %v", style.IsHeading, tt.wantIsHeading)
			}
			if style.HeadingLevel != tt.wantLevel {
				t.Errorf("HeadingLevel = %v, want %v", style.HeadingLevel, tt.wantLevel)
			}
		})
	}
}

func TestStyleResolver_WithStyles(t *testing.T) {
	styles := &stylesXML{
		Styles: []styleDefXML{
			{
				StyleID: "CustomHeading",
				Type:    "paragraph",
				Name:    styleNameXML{Val: "My Custom Heading"},
				PPr: paragraphPropsXML{
					OutlineLvl: outlineLvlXML{Val: "1"}, // Level 2 heading
				},
				RPr: runPropsXML{Bold: on("b")},
			},
			{
				StyleID: "Berschrift3",
				Type:    "paragraph",
				Name:    styleNameXML{Val: "heading 3"},
			},
			{
				StyleID: "Indented",
				Type:    "paragraph",
				Name:    styleNameXML{Val: "Indented"},
				PPr: paragraphPropsXML{
					Indent: indentXML{Left: "720"},
				},
			},
		},
	}

	sr := NewStyleResolver(styles)

	t.Run("outline level", func(t *testing.T) {
		style := sr.Resolve("CustomHeading")
		if !style.IsHeading {
			t.Error("expected IsHeading = true")
		}
		if style.HeadingLevel != 2 {
			t.Errorf("HeadingLevel = %v, want 2", style.HeadingLevel)
		}
		if !style.Bold {
			t.Error("expected Bold = true")
		}
	})

	t.Run("localized id with built-in name", func(t *testing.T) {
		style := sr.Resolve("Berschrift3")
		if !style.IsHeading || style.HeadingLevel != 3 {
			t.Errorf("Resolve() heading = %v/%d, want true/3", style.IsHeading, style.HeadingLevel)
		}
	})

	t.Run("indent", func(t *testing.T) {
		style := sr.Resolve("Indented")
		if style.IndentLeft != 36 {
			t.Errorf("IndentLeft = %v, want 36", style.IndentLeft)
		}
	})
}

func TestStyleResolver_Inheritance(t *testing.T) {
	styles := &stylesXML{
		Styles: []styleDefXML{
			{
				StyleID: "BaseStyle",
				Type:    "paragraph",
				Name:    styleNameXML{Val: "Base"},
				RPr: runPropsXML{
					Font: fontXML{ASCII: "Arial"},
				},
			},
			{
				StyleID: "DerivedStyle",
				Type:    "paragraph",
				Name:    styleNameXML{Val: "Derived"},
				BasedOn: basedOnXML{Val: "BaseStyle"},
				RPr: runPropsXML{
					Bold: on("b"),
				},
			},
			{
				StyleID: "LoopA",
				BasedOn: basedOnXML{Val: "LoopB"},
			},
			{
				StyleID: "LoopB",
				BasedOn: basedOnXML{Val: "LoopA"},
			},
		},
	}

	sr := NewStyleResolver(styles)
	style := sr.Resolve("DerivedStyle")

	if style.FontName != "Arial" {
		t.Errorf("FontName = %v, want Arial (inherited)", style.FontName)
	}
	if !style.Bold {
		t.Error("Bold should be true")
	}

	// A basedOn cycle must terminate.
	if got := sr.Resolve("LoopA"); got.ID != "LoopA" {
		t.Errorf("Resolve(LoopA).ID = %q", got.ID)
	}
}

func TestStyleResolver_ResolveRun(t *testing.T) {
	styles := &stylesXML{
		Styles: []styleDefXML{
			{
				StyleID: "Heading1",
				Type:    "paragraph",
				Name:    styleNameXML{Val: "heading 1"},
				RPr:     runPropsXML{Bold: on("b")},
			},
			{
				StyleID: "CodeBlock",
				Type:    "paragraph",
				Name:    styleNameXML{Val: "Code Block"},
				RPr:     runPropsXML{Font: fontXML{ASCII: "Courier New"}},
			},
			{
				StyleID: "Strong",
				Type:    "character",
				Name:    styleNameXML{Val: "Strong"},
			},
		},
	}

	sr := NewStyleResolver(styles)

	tests := []struct {
		name       string
		paraStyle  string
		props      runPropsXML
		wantBold   bool
		wantItalic bool
		wantCode   bool
		wantHidden bool
	}{
		{"plain", "", runPropsXML{}, false, false, false, false},
		{"direct bold", "", runPropsXML{Bold: on("b")}, true, false, false, false},
		{"bold switched off", "", runPropsXML{Bold: boolXML{XMLName: xml.Name{Local: "b"}, Val: "0"}}, false, false, false, false},
		{"heading weight not inherited", "Heading1", runPropsXML{}, false, false, false, false},
		{"strong character style", "", runPropsXML{Style: styleRefXML{Val: "Strong"}}, true, false, false, false},
		{"emphasis character style", "", runPropsXML{Style: styleRefXML{Val: "Emphasis"}}, false, true, false, false},
		{"inline code style", "", runPropsXML{Style: styleRefXML{Val: "InlineCode"}}, false, false, true, false},
		{"monospace font", "", runPropsXML{Font: fontXML{ASCII: "Consolas"}, Italic: on("i")}, false, true, true, false},
		{"paragraph code font", "CodeBlock", runPropsXML{}, false, false, true, false},
		{"hidden", "", runPropsXML{Vanish: on("vanish")}, false, false, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := sr.ResolveRun(tt.paraStyle, tt.props)
			if got.Bold != tt.wantBold {
				t.Errorf("Bold = %v, want %v", got.Bold, tt.wantBold)
			}
			if got.Italic != tt.wantItalic {
				t.Errorf("Italic = %v, want %v", got.Italic, tt.wantItalic)
			}
			if got.Code != tt.wantCode {
				t.Errorf("Code = %v, want %v", got.Code, tt.wantCode)
			}
			if got.Hidden != tt.wantHidden {
				t.Errorf("Hidden = %v, want %v", got.Hidden, tt.wantHidden)
			}
		})
	}
}

func TestStyleResolver_StyleNumbering(t *testing.T) {
	styles := &stylesXML{
		Styles: []styleDefXML{
			{
				StyleID: "MyList",
				PPr: paragraphPropsXML{
					NumPr: numberingPropsXML{NumID: numIDXML{Val: "7"}, ILvl: ilvlXML{Val: "1"}},
				},
			},
			{StyleID: "MyListChild", BasedOn: basedOnXML{Val: "MyList"}},
		},
	}
	sr := NewStyleResolver(styles)

	numID, level := sr.StyleNumbering("MyListChild")
	if numID != "7" || level != 1 {
		t.Errorf("StyleNumbering() = %q, %d, want 7, 1", numID, level)
	}
	if numID, _ := sr.StyleNumbering("Normal"); numID != "" {
		t.Errorf("StyleNumbering(Normal) = %q, want empty", numID)
	}
}

func TestParseTwips(t *testing.T) {
	tests := []struct {
		input string
		want  float64
	}{
		{"20", 1},
		{"720", 36},
		{"1440", 72},
		{"", 0},
		{"invalid", 0},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := parseTwips(tt.input); got != tt.want {
				t.Errorf("parseTwips(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseOutlineLevel(t *testing.T) {
	tests := []struct {
		input string
		want  int
	}{
		{"0", 0},
		{"8", 8},
		{"9", -1},
		{"-1", -1},
		{"x", -1},
	}

	for _, tt := range tests {
		if got := parseOutlineLevel(tt.input); got != tt.want {
			t.Errorf("parseOutlineLevel(%q) = %d, want %d", tt.input, got, tt.want)
		}
	}
}

func TestIsMonospace(t *testing.T) {
	tests := []struct {
		font string
		want bool
	}{
		{"Courier New", true},
		{"Consolas", true},
		{"JetBrains Mono", true},
		{"Calibri", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := isMonospace(tt.font); got != tt.want {
			t.Errorf("isMonospace(%q) = %v, want %v", tt.font, got, tt.want)
		}
	}
}
