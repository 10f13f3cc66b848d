package markdown

import (
	"strconv"
	"strings"
)

// State is the classifier's parsing state.
type State int

const (
	StateNormal State = iota
	StateInCodeFence
	StateInTable
)

func (s State) String() string {
	switch s {
	case StateNormal:
		return "normal"
	case StateInCodeFence:
		return "in-code-fence"
	case StateInTable:
		return "in-table"
	default:
		return "unknown"
	}
}

// LineKind is the block classification of one source line.
type LineKind int

const (
	LineBlank LineKind = iota
	LineParagraph
	LineHeading
	LineRule
	LineQuote
	LineOrdered
	LineUnordered
	LineFenceOpen
	LineFenceClose
	LineCode
	LineTableRow
)

func (k LineKind) String() string {
	switch k {
	case LineBlank:
		return "blank"
	case LineParagraph:
		return "paragraph"
	case LineHeading:
		return "heading"
	case LineRule:
		return "rule"
	case LineQuote:
		return "quote"
	case LineOrdered:
		return "ordered-item"
	case LineUnordered:
		return "unordered-item"
	case LineFenceOpen:
		return "fence-open"
	case LineFenceClose:
		return "fence-close"
	case LineCode:
		return "code"
	case LineTableRow:
		return "table-row"
	default:
		return "unknown"
	}
}

// Line is a classified source line.
type Line struct {
	Kind   LineKind
	Number int    // 1-based source line number
	Text   string // content after the block marker; verbatim for code lines

	Level    int    // heading level
	Depth    int    // list nesting depth
	Index    int    // ordered item number
	Bullet   byte   // unordered item marker: '-', '*' or '+'
	Language string // fence language tag
	Cells    []string
	// TableStart marks the first row of a table, whose separator line was
	// consumed along with it.
	TableStart bool
}

// Classifier labels lines with block kinds. The zero value is ready to use
// and starts in StateNormal.
type Classifier struct {
	state       State
	fenceIndent int
	line        int
}

// State returns the current state.
func (c *Classifier) State() State {
	return c.state
}

// Next classifies line. next is the following source line and hasNext
// reports whether one exists; it is only inspected to recognise a table
// header. When consumedNext is true the caller must skip the following line.
func (c *Classifier) Next(line, next string, hasNext bool) (out Line, consumedNext bool) {
	c.line++
	out.Number = c.line

	switch c.state {
	case StateInCodeFence:
		if isFenceClose(line) {
			c.state = StateNormal
			out.Kind = LineFenceClose
			return out, false
		}
		out.Kind = LineCode
		out.Text = stripIndent(line, c.fenceIndent)
		return out, false

	case StateInTable:
		if isTableRow(line) {
			out.Kind = LineTableRow
			out.Cells = splitCells(line)
			return out, false
		}
		c.state = StateNormal
	}

	return c.classifyNormal(line, next, hasNext)
}

func (c *Classifier) classifyNormal(line, next string, hasNext bool) (Line, bool) {
	out := Line{Number: c.line}
	trimmed := strings.TrimSpace(line)

	if trimmed == "" {
		out.Kind = LineBlank
		return out, false
	}

	if lang, ok := fenceOpen(trimmed); ok {
		c.state = StateInCodeFence
		c.fenceIndent = leadingSpaces(line)
		out.Kind = LineFenceOpen
		out.Language = lang
		return out, false
	}

	if isTableRow(line) && hasNext && isTableSeparator(next) {
		c.state = StateInTable
		out.Kind = LineTableRow
		out.TableStart = true
		out.Cells = splitCells(line)
		c.line++
		return out, true
	}

	if level, text, ok := matchHeading(trimmed); ok {
		out.Kind = LineHeading
		out.Level = level
		out.Text = text
		return out, false
	}

	if isRule(trimmed) {
		out.Kind = LineRule
		return out, false
	}

	if strings.HasPrefix(trimmed, ">") {
		out.Kind = LineQuote
		text := trimmed[1:]
		text = strings.TrimPrefix(text, " ")
		out.Text = strings.TrimRight(text, " \t")
		return out, false
	}

	depth := indentDepth(line)
	if index, text, ok := matchOrdered(trimmed); ok {
		out.Kind = LineOrdered
		out.Index = index
		out.Depth = depth
		out.Text = text
		return out, false
	}
	if text, ok := matchUnordered(trimmed); ok {
		out.Kind = LineUnordered
		out.Depth = depth
		out.Bullet = trimmed[0]
		out.Text = text
		return out, false
	}

	out.Kind = LineParagraph
	out.Text = trimmed
	return out, false
}

// Classify runs a fresh classifier over all lines. Consumed table separator
// lines do not appear in the result.
func Classify(lines []string) []Line {
	var c Classifier
	out := make([]Line, 0, len(lines))
	for i := 0; i < len(lines); i++ {
		next, hasNext := "", i+1 < len(lines)
		if hasNext {
			next = lines[i+1]
		}
		l, skip := c.Next(lines[i], next, hasNext)
		out = append(out, l)
		if skip {
			i++
		}
	}
	return out
}

func fenceOpen(trimmed string) (string, bool) {
	if !strings.HasPrefix(trimmed, "```") {
		return "", false
	}
	return strings.TrimSpace(strings.TrimLeft(trimmed, "`")), true
}

func isFenceClose(line string) bool {
	trimmed := strings.TrimSpace(line)
	return strings.HasPrefix(trimmed, "```") && strings.Trim(trimmed, "`") == ""
}

func matchHeading(trimmed string) (int, string, bool) {
	level := 0
	for level < len(trimmed) && trimmed[level] == '#' {
		level++
	}
	if level == 0 || level > 6 || level >= len(trimmed) {
		return 0, "", false
	}
	if trimmed[level] != ' ' && trimmed[level] != '\t' {
		return 0, "", false
	}
	text := strings.TrimSpace(trimmed[level:])
	if text == "" {
		return 0, "", false
	}
	return level, text, true
}

func isRule(trimmed string) bool {
	if len(trimmed) < 3 {
		return false
	}
	c := trimmed[0]
	if c != '-' && c != '*' && c != '_' {
		return false
	}
	return strings.Count(trimmed, string(c)) == len(trimmed)
}

func matchOrdered(trimmed string) (int, string, bool) {
	digits := 0
	for digits < len(trimmed) && trimmed[digits] >= '0' && trimmed[digits] <= '9' {
		digits++
	}
	if digits == 0 || digits > 9 || digits+1 >= len(trimmed) || trimmed[digits] != '.' {
		return 0, "", false
	}
	rest := trimmed[digits+1:]
	if rest[0] != ' ' && rest[0] != '\t' {
		return 0, "", false
	}
	text := strings.TrimSpace(rest)
	if text == "" {
		return 0, "", false
	}
	n, _ := strconv.Atoi(trimmed[:digits])
	return n, text, true
}

func matchUnordered(trimmed string) (string, bool) {
	if len(trimmed) < 3 {
		return "", false
	}
	switch trimmed[0] {
	case '-', '*', '+':
	default:
		return "", false
	}
	if trimmed[1] != ' ' && trimmed[1] != '\t' {
		return "", false
	}
	text := strings.TrimSpace(trimmed[2:])
	if text == "" {
		return "", false
	}
	return text, true
}

func isTableRow(line string) bool {
	return strings.HasPrefix(strings.TrimSpace(line), "|")
}

// isTableSeparator matches lines such as |---|:--:| made only of pipes,
// dashes, colons and spaces.
func isTableSeparator(line string) bool {
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, "|") || !strings.Contains(trimmed, "-") {
		return false
	}
	for _, r := range trimmed {
		switch r {
		case '|', '-', ':', ' ', '\t':
		default:
			return false
		}
	}
	return true
}

// splitCells splits a table row on unescaped pipes. Outer pipes are
// optional and cell text is trimmed.
func splitCells(line string) []string {
	trimmed := strings.TrimSpace(line)
	trimmed = strings.TrimPrefix(trimmed, "|")
	if strings.HasSuffix(trimmed, "|") && !strings.HasSuffix(trimmed, `\|`) {
		trimmed = trimmed[:len(trimmed)-1]
	}

	var cells []string
	var cell strings.Builder
	for i := 0; i < len(trimmed); i++ {
		switch {
		case trimmed[i] == '\\' && i+1 < len(trimmed) && trimmed[i+1] == '|':
			cell.WriteByte('|')
			i++
		case trimmed[i] == '|':
			cells = append(cells, strings.TrimSpace(cell.String()))
			cell.Reset()
		default:
			cell.WriteByte(trimmed[i])
		}
	}
	cells = append(cells, strings.TrimSpace(cell.String()))
	if len(cells) == 1 && cells[0] == "" {
		return nil
	}
	return cells
}

// leadingSpaces counts indentation columns, a tab being four.
func leadingSpaces(line string) int {
	n := 0
	for _, r := range line {
		switch r {
		case ' ':
			n++
		case '\t':
			n += 4
		default:
			return n
		}
	}
	return n
}

func indentDepth(line string) int {
	return leadingSpaces(line) / 2
}

// stripIndent removes up to n columns of leading whitespace. A line made
// only of whitespace becomes empty.
func stripIndent(line string, n int) string {
	col := 0
	for i, r := range line {
		if col >= n {
			return line[i:]
		}
		switch r {
		case ' ':
			col++
		case '\t':
			col += 4
		default:
			return line[i:]
		}
	}
	return ""
}
