package tex

import (
	"fmt"
	"strings"

	"github.com/tsawler/docmorph/model"
)

const preamble = `\documentclass{article}
\usepackage[utf8]{inputenc}
\usepackage[T1]{fontenc}
\usepackage{hyperref}
\usepackage{graphicx}
\usepackage{listings}
\usepackage{xcolor}
\usepackage{longtable}
\usepackage{booktabs}
\usepackage[margin=1in]{geometry}

\hypersetup{
    colorlinks=true,
    linkcolor=blue,
    filecolor=magenta,
    urlcolor=cyan,
}

\lstset{
    basicstyle=\ttfamily\small,
    breaklines=true,
    frame=single,
    backgroundcolor=\color{gray!10},
}
`

// sectionCommands is indexed by heading level.
var sectionCommands = [...]string{"", "section", "subsection", "subsubsection", "paragraph", "subparagraph", "subparagraph"}

// enumCounters names the enumerate counter for each nesting depth.
var enumCounters = [...]string{"enumi", "enumii", "enumiii", "enumiv"}

// Write serialises a document as a standalone LaTeX file.
func Write(doc *model.Document) ([]byte, []model.Warning) {
	w := &writer{}
	w.sb.WriteString(preamble)
	if doc.Title != "" {
		fmt.Fprintf(&w.sb, "\n\\title{%s}\n\\date{}\n", escape(doc.Title))
	}
	w.sb.WriteString("\n\\begin{document}\n")
	if doc.Title != "" {
		w.sb.WriteString("\\maketitle\n")
	}
	for _, block := range doc.Blocks {
		w.sb.WriteString("\n")
		w.block(block)
	}
	w.sb.WriteString("\n\\end{document}\n")
	return []byte(w.sb.String()), w.warnings
}

type writer struct {
	sb       strings.Builder
	warnings []model.Warning
}

func (w *writer) warn(kind model.WarningKind, format string, args ...any) {
	w.warnings = append(w.warnings, model.Warnf(kind, 0, format, args...))
}

func (w *writer) block(block model.Block) {
	switch b := block.(type) {
	case *model.Heading:
		level := model.ClampLevel(b.Level)
		if level == model.MaxHeadingLevel {
			w.warn(model.WarnLossyStyle, "heading level %d written as level %d", level, level-1)
		}
		fmt.Fprintf(&w.sb, "\\%s{%s}\n", sectionCommands[level], FormatRuns(b.Runs))

	case *model.Paragraph:
		w.sb.WriteString(FormatRuns(b.Runs))
		w.sb.WriteString("\n")

	case *model.List:
		w.list(b)

	case *model.CodeBlock:
		if b.Language != "" {
			fmt.Fprintf(&w.sb, "\\begin{lstlisting}[language=%s]\n", b.Language)
		} else {
			w.sb.WriteString("\\begin{lstlisting}\n")
		}
		for _, line := range b.Lines {
			w.sb.WriteString(line)
			w.sb.WriteString("\n")
		}
		w.sb.WriteString("\\end{lstlisting}\n")

	case *model.BlockQuote:
		w.sb.WriteString("\\begin{quote}\n")
		for i, runs := range b.Paragraphs() {
			if i > 0 {
				w.sb.WriteString("\n")
			}
			w.sb.WriteString(FormatRuns(runs))
			w.sb.WriteString("\n")
		}
		w.sb.WriteString("\\end{quote}\n")

	case *model.Rule:
		w.sb.WriteString("\\noindent\\rule{\\textwidth}{0.4pt}\n")

	case *model.Table:
		w.table(b)
	}
}

// list writes items as nested itemize or enumerate environments. LaTeX
// allows four levels of nesting; deeper items are written at the fourth.
func (w *writer) list(list *model.List) {
	env := "itemize"
	if list.Ordered {
		env = "enumerate"
	}
	maxDepth := len(enumCounters) - 1
	depth := -1
	clamped := false

	for _, item := range list.Items {
		d := min(item.Depth, depth+1, maxDepth)
		if item.Depth > maxDepth {
			clamped = true
		}
		for depth > d {
			w.indent(depth)
			fmt.Fprintf(&w.sb, "\\end{%s}\n", env)
			depth--
		}
		for depth < d {
			depth++
			w.indent(depth)
			fmt.Fprintf(&w.sb, "\\begin{%s}\n", env)
			if list.Ordered && item.Index > 1 {
				w.indent(depth + 1)
				fmt.Fprintf(&w.sb, "\\setcounter{%s}{%d}\n", enumCounters[depth], item.Index-1)
			}
		}
		w.indent(depth + 1)
		w.sb.WriteString("\\item ")
		w.sb.WriteString(FormatRuns(item.Runs))
		w.sb.WriteString("\n")
	}
	for ; depth >= 0; depth-- {
		w.indent(depth)
		fmt.Fprintf(&w.sb, "\\end{%s}\n", env)
	}
	if clamped {
		w.warn(model.WarnLossyStyle, "list nested deeper than %d levels flattened", maxDepth+1)
	}
}

func (w *writer) indent(depth int) {
	w.sb.WriteString(strings.Repeat("  ", depth))
}

// table writes a ruled tabular with a bold header row.
func (w *writer) table(t *model.Table) {
	cols := t.MaxCols()
	if cols == 0 {
		return
	}
	spec := "|" + strings.Repeat("l|", cols)
	fmt.Fprintf(&w.sb, "\\begin{tabular}{%s}\n\\hline\n", spec)
	for i, row := range t.Rows {
		cells := make([]string, cols)
		for j := range cells {
			if j >= len(row) {
				continue
			}
			text := FormatRuns(row[j].Runs)
			if i == 0 && text != "" {
				text = "\\textbf{" + text + "}"
			}
			cells[j] = text
		}
		w.sb.WriteString(strings.Join(cells, " & "))
		w.sb.WriteString(" \\\\\n\\hline\n")
	}
	w.sb.WriteString("\\end{tabular}\n")
}

// FormatRuns renders runs as LaTeX inline markup.
func FormatRuns(runs []model.Run) string {
	var sb strings.Builder
	for _, r := range runs {
		text := escape(r.Text)
		switch r.Style {
		case model.StyleBold:
			fmt.Fprintf(&sb, "\\textbf{%s}", text)
		case model.StyleItalic:
			fmt.Fprintf(&sb, "\\textit{%s}", text)
		case model.StyleBoldItalic:
			fmt.Fprintf(&sb, "\\textbf{\\textit{%s}}", text)
		case model.StyleCode:
			fmt.Fprintf(&sb, "\\texttt{%s}", text)
		case model.StyleLink:
			fmt.Fprintf(&sb, "\\href{%s}{%s}", escapeURL(r.Target), text)
		default:
			sb.WriteString(text)
		}
	}
	return sb.String()
}

// escape makes text safe to typeset. Doubled dashes and quotes are split
// so they do not form ligatures.
func escape(s string) string {
	var sb strings.Builder
	var prev rune
	for _, r := range s {
		switch r {
		case '\\':
			sb.WriteString(`\textbackslash{}`)
		case '&', '%', '$', '#', '_', '{', '}':
			sb.WriteByte('\\')
			sb.WriteRune(r)
		case '~':
			sb.WriteString(`\textasciitilde{}`)
		case '^':
			sb.WriteString(`\textasciicircum{}`)
		case '\n':
			sb.WriteByte(' ')
		case '-', '\'', '`':
			if prev == r {
				sb.WriteString("{}")
			}
			sb.WriteRune(r)
		default:
			sb.WriteRune(r)
		}
		prev = r
	}
	return sb.String()
}

func escapeURL(s string) string {
	return strings.NewReplacer("#", `\#`, "%", `\%`, "&", `\&`, "\\", "").Replace(s)
}
