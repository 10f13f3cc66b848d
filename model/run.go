package model

import "strings"

// Style is the inline style of a Run.
type Style int

const (
	StylePlain Style = iota
	StyleBold
	StyleItalic
	StyleBoldItalic
	StyleCode
	StyleLink
)

// String returns a string representation of the style.
func (s Style) String() string {
	switch s {
	case StylePlain:
		return "plain"
	case StyleBold:
		return "bold"
	case StyleItalic:
		return "italic"
	case StyleBoldItalic:
		return "bold-italic"
	case StyleCode:
		return "code"
	case StyleLink:
		return "link"
	default:
		return "unknown"
	}
}

// IsBold reports whether the style renders with bold weight.
func (s Style) IsBold() bool {
	return s == StyleBold || s == StyleBoldItalic
}

// IsItalic reports whether the style renders slanted.
func (s Style) IsItalic() bool {
	return s == StyleItalic || s == StyleBoldItalic
}

// Emphasis combines bold and italic flags into a style.
func Emphasis(bold, italic bool) Style {
	switch {
	case bold && italic:
		return StyleBoldItalic
	case bold:
		return StyleBold
	case italic:
		return StyleItalic
	default:
		return StylePlain
	}
}

// WithBold returns the style with bold weight added. Code and link runs are
// returned unchanged.
func (s Style) WithBold() Style {
	switch s {
	case StylePlain:
		return StyleBold
	case StyleItalic:
		return StyleBoldItalic
	default:
		return s
	}
}

// WithoutBold returns the style with bold weight removed.
func (s Style) WithoutBold() Style {
	switch s {
	case StyleBold:
		return StylePlain
	case StyleBoldItalic:
		return StyleItalic
	default:
		return s
	}
}

// Run is an atomic styled text fragment.
type Run struct {
	Text   string
	Style  Style
	Target string // URL, only for StyleLink
}

// Plain returns a plain run.
func Plain(text string) Run {
	return Run{Text: text, Style: StylePlain}
}

// Link returns a link run.
func Link(text, target string) Run {
	return Run{Text: text, Style: StyleLink, Target: target}
}

// PlainRuns returns a single plain run, or nil for empty text.
func PlainRuns(text string) []Run {
	if text == "" {
		return nil
	}
	return []Run{Plain(text)}
}

// RunsText concatenates the visible text of runs.
func RunsText(runs []Run) string {
	var sb strings.Builder
	for _, r := range runs {
		sb.WriteString(r.Text)
	}
	return sb.String()
}

// NormalizeRuns drops empty runs and merges neighbours that share a style
// (and, for links, a target). The input slice is not modified.
func NormalizeRuns(runs []Run) []Run {
	var out []Run
	for _, r := range runs {
		if r.Text == "" {
			continue
		}
		if r.Style != StyleLink {
			r.Target = ""
		}
		if n := len(out); n > 0 && out[n-1].Style == r.Style && out[n-1].Target == r.Target {
			out[n-1].Text += r.Text
			continue
		}
		out = append(out, r)
	}
	return out
}

// TrimRuns removes leading whitespace from the first run and trailing
// whitespace from the last one, dropping runs that become empty.
func TrimRuns(runs []Run) []Run {
	out := append([]Run(nil), runs...)
	for len(out) > 0 {
		out[0].Text = strings.TrimLeft(out[0].Text, " \t\r\n")
		if out[0].Text != "" {
			break
		}
		out = out[1:]
	}
	for len(out) > 0 {
		last := len(out) - 1
		out[last].Text = strings.TrimRight(out[last].Text, " \t\r\n")
		if out[last].Text != "" {
			break
		}
		out = out[:last]
	}
	return out
}

// StripBold removes bold weight from every run. Importers use it where an
// emitter forces bold, such as table header rows and paginated headings.
func StripBold(runs []Run) []Run {
	out := make([]Run, len(runs))
	for i, r := range runs {
		r.Style = r.Style.WithoutBold()
		out[i] = r
	}
	return NormalizeRuns(out)
}

// AllBold reports whether every non-blank run is bold.
func AllBold(runs []Run) bool {
	seen := false
	for _, r := range runs {
		if strings.TrimSpace(r.Text) == "" {
			continue
		}
		if !r.Style.IsBold() {
			return false
		}
		seen = true
	}
	return seen
}

// JoinRuns appends next to runs with one space between them, as when two
// wrapped lines are rejoined. The space is styled when the runs on both
// sides share style and target.
func JoinRuns(runs, next []Run) []Run {
	if len(runs) == 0 {
		return next
	}
	if len(next) == 0 {
		return runs
	}
	prev, first := runs[len(runs)-1], next[0]
	space := Plain(" ")
	if prev.Style == first.Style && prev.Target == first.Target {
		space = Run{Text: " ", Style: first.Style, Target: first.Target}
	}
	out := append(append([]Run(nil), runs...), space)
	return NormalizeRuns(append(out, next...))
}
