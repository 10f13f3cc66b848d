package markdown

import (
	"strconv"
	"strings"

	"github.com/tsawler/docmorph/model"
)

// Write serialises a document as markup. Blocks are separated by a blank
// line; list items and quote lines are not.
func Write(doc *model.Document) []byte {
	var sb strings.Builder
	for i, block := range doc.Blocks {
		if i > 0 {
			sb.WriteString("\n")
		}
		writeBlock(&sb, block)
	}
	return []byte(sb.String())
}

func writeBlock(sb *strings.Builder, block model.Block) {
	switch b := block.(type) {
	case *model.Heading:
		sb.WriteString(strings.Repeat("#", model.ClampLevel(b.Level)))
		sb.WriteString(" ")
		sb.WriteString(FormatRuns(b.Runs))
		sb.WriteString("\n")

	case *model.Paragraph:
		sb.WriteString(FormatRuns(b.Runs))
		sb.WriteString("\n")

	case *model.List:
		writeList(sb, b)

	case *model.CodeBlock:
		sb.WriteString("```")
		sb.WriteString(b.Language)
		sb.WriteString("\n")
		for _, line := range b.Lines {
			sb.WriteString(line)
			sb.WriteString("\n")
		}
		sb.WriteString("```\n")

	case *model.BlockQuote:
		for _, runs := range b.Paragraphs() {
			sb.WriteString("> ")
			sb.WriteString(FormatRuns(runs))
			sb.WriteString("\n")
		}

	case *model.Rule:
		sb.WriteString("---\n")

	case *model.Table:
		writeTable(sb, b)
	}
}

func writeList(sb *strings.Builder, list *model.List) {
	counters := map[int]int{}
	for _, item := range list.Items {
		sb.WriteString(strings.Repeat("  ", item.Depth))
		if list.Ordered {
			counters[item.Depth]++
			n := item.Index
			if n <= 0 {
				n = counters[item.Depth]
			}
			sb.WriteString(strconv.Itoa(n))
			sb.WriteString(". ")
		} else {
			sb.WriteString("- ")
		}
		sb.WriteString(FormatRuns(item.Runs))
		sb.WriteString("\n")
	}
}

// writeTable writes a pipe table. Rows are padded to the widest row.
func writeTable(sb *strings.Builder, t *model.Table) {
	cols := t.MaxCols()
	if cols == 0 {
		return
	}
	for rowIdx, row := range t.Rows {
		sb.WriteString("|")
		for j := 0; j < cols; j++ {
			sb.WriteString(" ")
			if j < len(row) {
				sb.WriteString(escapeCell(FormatRuns(row[j].Runs)))
			}
			sb.WriteString(" |")
		}
		sb.WriteString("\n")

		if rowIdx == 0 {
			sb.WriteString("|")
			for i := 0; i < cols; i++ {
				sb.WriteString(" --- |")
			}
			sb.WriteString("\n")
		}
	}
}

func escapeCell(text string) string {
	return strings.ReplaceAll(text, "|", `\|`)
}

// FormatRuns renders runs as inline markup. Emphasis delimiters alternate
// between '*' and '_' so adjacent spans parse back as written.
func FormatRuns(runs []model.Run) string {
	var sb strings.Builder
	var last byte
	for _, r := range runs {
		text := flattenLine(r.Text)
		if text == "" {
			continue
		}
		var out string
		switch r.Style {
		case model.StyleBold:
			d := emphasisDelimiter(text, last)
			out = strings.Repeat(d, 2) + text + strings.Repeat(d, 2)
		case model.StyleItalic:
			d := emphasisDelimiter(text, last)
			out = d + text + d
		case model.StyleBoldItalic:
			d := emphasisDelimiter(text, last)
			out = strings.Repeat(d, 3) + text + strings.Repeat(d, 3)
		case model.StyleCode:
			out = "`" + text + "`"
		case model.StyleLink:
			out = "[" + text + "](" + r.Target + ")"
		default:
			out = text
		}
		sb.WriteString(out)
		last = out[len(out)-1]
	}
	return sb.String()
}

// emphasisDelimiter picks '*' or '_', avoiding the character that ends the
// preceding output and, where possible, one that occurs in the text.
func emphasisDelimiter(text string, last byte) string {
	for _, d := range []string{"*", "_"} {
		if d[0] != last && !strings.Contains(text, d) {
			return d
		}
	}
	if last == '*' {
		return "_"
	}
	return "*"
}

func flattenLine(s string) string {
	if !strings.ContainsAny(s, "\r\n") {
		return s
	}
	s = strings.ReplaceAll(s, "\r\n", " ")
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.ReplaceAll(s, "\r", " ")
}
