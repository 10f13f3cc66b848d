package tex

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/tsawler/docmorph/internal/textenc"
	"github.com/tsawler/docmorph/model"
)

// headingLevels maps sectioning commands to heading levels.
var headingLevels = map[string]int{
	"chapter":       1,
	"section":       1,
	"subsection":    2,
	"subsubsection": 3,
	"paragraph":     4,
	"subparagraph":  5,
}

// wrappers are environments whose content is read as if they were absent.
var wrappers = map[string]bool{
	"document": true, "table": true, "table*": true, "figure": true, "figure*": true,
	"center": true, "flushleft": true, "flushright": true, "abstract": true,
	"minipage": true, "small": true, "footnotesize": true,
}

var (
	beginDocument = regexp.MustCompile(`\\begin\s*\{document\}`)
	endDocument   = regexp.MustCompile(`\\end\s*\{document\}`)
	languageOpt   = regexp.MustCompile(`language\s*=\s*\{?([A-Za-z0-9_+#-]+)`)
)

// warner collects warnings, reporting repeated ones once.
type warner struct {
	warnings []model.Warning
	seen     map[string]bool
}

func (w *warner) warn(kind model.WarningKind, line int, format string, args ...any) {
	w.warnings = append(w.warnings, model.Warnf(kind, line, format, args...))
}

func (w *warner) warnOnce(kind model.WarningKind, line int, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if w.seen == nil {
		w.seen = make(map[string]bool)
	}
	if w.seen[msg] {
		return
	}
	w.seen[msg] = true
	w.warn(kind, line, "%s", msg)
}

// Read parses LaTeX source into a Document. The body is taken from the
// document environment when there is one. Only source that is not valid
// text fails; unknown markup degrades to plain text with a warning.
func Read(src []byte) (*model.Document, []model.Warning, error) {
	text, err := textenc.Decode(src)
	if err != nil {
		return nil, nil, fmt.Errorf("decoding LaTeX source: %w", err)
	}

	p := &parser{warner: &warner{}}
	doc := model.NewDocument()

	body, bodyLine := text, 1
	if loc := beginDocument.FindStringIndex(text); loc != nil {
		preamble := text[:loc[0]]
		doc.Title = p.preambleTitle(preamble)
		body = text[loc[1]:]
		bodyLine = 1 + strings.Count(text[:loc[1]], "\n")
		if end := endDocument.FindStringIndex(body); end != nil {
			body = body[:end[0]]
		}
	}

	p.lex = NewLexer(body, bodyLine)
	doc.Append(p.blocks("")...)
	if doc.Title == "" {
		doc.Title = p.title
	}
	return doc, p.warner.warnings, nil
}

// Open reads and parses a LaTeX file.
func Open(filename string) (*model.Document, []model.Warning, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read file: %w", err)
	}
	return Read(data)
}

// parser walks the token stream of a document body. It is a state machine
// over environments: blocks reads paragraphs until the end of the current
// environment and hands nested environments to their own readers.
type parser struct {
	lex    *Lexer
	ahead  []Token
	warner *warner
	title  string
}

func (p *parser) next() Token {
	if len(p.ahead) > 0 {
		tok := p.ahead[0]
		p.ahead = p.ahead[1:]
		return tok
	}
	return p.lex.NextToken()
}

func (p *parser) peek() Token {
	if len(p.ahead) == 0 {
		p.ahead = append(p.ahead, p.lex.NextToken())
	}
	return p.ahead[0]
}

// skipSpace drops whitespace tokens, not paragraph breaks.
func (p *parser) skipSpace() {
	for p.peek().Type == TokenSpace {
		p.next()
	}
}

// preambleTitle finds \title in the preamble.
func (p *parser) preambleTitle(preamble string) string {
	p.lex = NewLexer(preamble, 1)
	p.ahead = nil
	defer func() { p.ahead = nil }()
	for {
		tok := p.next()
		if tok.Type == TokenEOF {
			return ""
		}
		if tok.Type == TokenCommand && tok.Value == "title" {
			return p.titleArg()
		}
	}
}

func (p *parser) titleArg() string {
	p.skipSpace()
	p.optional()
	runs := parseInline(p.group(), &warner{})
	return strings.TrimSpace(model.RunsText(runs))
}

// group reads a braced argument and returns the tokens inside it. A
// single token stands in for a missing group.
func (p *parser) group() []Token {
	p.skipSpace()
	tok := p.peek()
	if tok.Type != TokenBeginGroup {
		if tok.Type == TokenText {
			p.next()
			return []Token{tok}
		}
		return nil
	}
	p.next()
	var out []Token
	depth := 1
	for {
		tok := p.next()
		switch tok.Type {
		case TokenEOF:
			return out
		case TokenBeginGroup:
			depth++
		case TokenEndGroup:
			depth--
			if depth == 0 {
				return out
			}
		}
		out = append(out, tok)
	}
}

// groupText returns the raw text of a braced argument.
func (p *parser) groupText() string {
	var sb strings.Builder
	for _, tok := range p.group() {
		sb.WriteString(rawText(tok))
	}
	return strings.TrimSpace(sb.String())
}

// optional reads a bracketed argument if one follows.
func (p *parser) optional() (string, bool) {
	if p.peek().Type != TokenBeginOptional {
		return "", false
	}
	p.next()
	var sb strings.Builder
	depth := 1
	for {
		tok := p.next()
		switch tok.Type {
		case TokenEOF:
			return sb.String(), true
		case TokenBeginOptional:
			depth++
		case TokenEndOptional:
			depth--
			if depth == 0 {
				return sb.String(), true
			}
		}
		sb.WriteString(rawText(tok))
	}
}

// star consumes the * of a starred command.
func (p *parser) star() {
	if tok := p.peek(); tok.Type == TokenText && strings.HasPrefix(tok.Value, "*") {
		p.next()
		if rest := tok.Value[1:]; rest != "" {
			tok.Value = rest
			tok.Pos++
			p.ahead = append([]Token{tok}, p.ahead...)
		}
	}
}

// balanced returns tokens through the group opened by open.
func (p *parser) balanced(open Token) []Token {
	out := []Token{open}
	depth := 1
	for depth > 0 {
		tok := p.next()
		if tok.Type == TokenEOF {
			break
		}
		switch tok.Type {
		case TokenBeginGroup:
			depth++
		case TokenEndGroup:
			depth--
		}
		out = append(out, tok)
	}
	return out
}

func (p *parser) inline(toks []Token) []model.Run {
	return parseInline(toks, p.warner)
}

// blocks reads blocks until \end{env}, or to the end of input when env is
// empty.
func (p *parser) blocks(env string) []model.Block {
	var out []model.Block
	var para []Token

	flush := func() {
		if runs := p.inline(para); len(runs) > 0 {
			out = append(out, &model.Paragraph{Runs: runs})
		}
		para = nil
	}

	for {
		tok := p.next()
		switch tok.Type {
		case TokenEOF:
			flush()
			if env != "" {
				p.warner.warn(model.WarnUnknownMarkup, tok.Line, "environment %s is never closed", env)
			}
			return out

		case TokenParBreak:
			flush()

		case TokenBeginGroup:
			para = append(para, p.balanced(tok)...)

		case TokenCommand:
			if level, ok := headingLevels[tok.Value]; ok {
				flush()
				p.star()
				p.skipSpace()
				p.optional()
				out = append(out, &model.Heading{Level: level, Runs: p.inline(p.group())})
				continue
			}

			switch tok.Value {
			case "begin":
				name := p.groupText()
				if wrappers[name] {
					p.skipArgs(name)
					continue
				}
				flush()
				out = append(out, p.environment(name, tok.Line)...)
			case "end":
				name := p.groupText()
				if name == env {
					flush()
					return out
				}
				if !wrappers[name] {
					p.warner.warn(model.WarnUnknownMarkup, tok.Line, "unmatched \\end{%s}", name)
				}
			case "rule":
				flush()
				p.optional()
				p.group()
				p.group()
				out = append(out, &model.Rule{})
			case "hrule", "hrulefill":
				flush()
				out = append(out, &model.Rule{})
			case "par":
				flush()
			case "title":
				p.title = p.titleArg()
			case "author", "date":
				p.group()
			default:
				para = append(para, tok)
			}

		default:
			para = append(para, tok)
		}
	}
}

// skipArgs drops the arguments a wrapper environment takes.
func (p *parser) skipArgs(name string) {
	switch name {
	case "minipage":
		p.optional()
		p.group()
	case "table", "table*", "figure", "figure*":
		p.optional()
	}
}

// environment reads one environment whose \begin has been consumed.
func (p *parser) environment(name string, line int) []model.Block {
	if wrappers[name] {
		p.skipArgs(name)
		return p.blocks(name)
	}
	switch name {
	case "itemize", "enumerate":
		list := &model.List{Ordered: name == "enumerate"}
		p.list(name, 0, list)
		if len(list.Items) == 0 {
			return nil
		}
		return []model.Block{list}
	case "description":
		return p.description()
	case "verbatim", "Verbatim", "lstlisting", "minted":
		return []model.Block{p.code(name, line)}
	case "quote", "quotation", "verse":
		return p.quote(name)
	case "tabular", "tabular*", "tabularx", "longtable":
		if t := p.table(name, line); t != nil {
			return []model.Block{t}
		}
		return nil
	}
	p.warner.warnOnce(model.WarnUnknownMarkup, line, "unknown environment %s read as text", name)
	return p.blocks(name)
}

// list reads the items of an itemize or enumerate environment into l.
// Nested lists add deeper items to the same List.
func (p *parser) list(env string, depth int, l *model.List) {
	ordered := env == "enumerate"
	counter := 0
	current := -1
	var toks []Token

	flush := func() {
		if current >= 0 {
			item := &l.Items[current]
			item.Runs = model.JoinRuns(item.Runs, p.inline(toks))
		}
		toks = nil
	}

	for {
		tok := p.next()
		switch tok.Type {
		case TokenEOF:
			flush()
			p.warner.warn(model.WarnUnknownMarkup, tok.Line, "environment %s is never closed", env)
			return
		case TokenParBreak:
			toks = append(toks, Token{Type: TokenSpace, Value: " ", Line: tok.Line})
			continue
		case TokenBeginGroup:
			toks = append(toks, p.balanced(tok)...)
			continue
		case TokenCommand:
		default:
			toks = append(toks, tok)
			continue
		}

		switch tok.Value {
		case "item":
			flush()
			counter++
			index := 0
			if ordered {
				index = counter
			}
			l.Items = append(l.Items, model.ListItem{Depth: depth, Index: index})
			current = len(l.Items) - 1
			if label, ok := p.optional(); ok {
				toks = append(toks, tokenize(label)...)
				toks = append(toks, Token{Type: TokenSpace, Value: " "})
			}
		case "begin":
			name := p.groupText()
			switch name {
			case "itemize", "enumerate":
				flush()
				p.list(name, depth+1, l)
			default:
				flush()
				for _, b := range p.environment(name, tok.Line) {
					if current >= 0 {
						item := &l.Items[current]
						item.Runs = model.JoinRuns(item.Runs, blockRuns(b))
					}
				}
			}
		case "end":
			name := p.groupText()
			if name == env {
				flush()
				return
			}
		case "setcounter":
			p.group()
			if n, err := strconv.Atoi(p.groupText()); err == nil && ordered {
				counter = n
			}
		default:
			toks = append(toks, tok)
		}
	}
}

// tokenize splits a fragment of source into tokens.
func tokenize(src string) []Token {
	lex := NewLexer(src, 0)
	var out []Token
	for {
		tok := lex.NextToken()
		if tok.Type == TokenEOF {
			return out
		}
		out = append(out, tok)
	}
}

// description turns \item[term] text into paragraphs with the term in
// bold, since the model has no definition lists.
func (p *parser) description() []model.Block {
	var out []model.Block
	var term, toks []Token
	started := false

	flush := func() {
		if !started {
			return
		}
		var runs []model.Run
		if t := p.inline(term); len(t) > 0 {
			runs = append(runs, model.Run{Text: model.RunsText(t), Style: model.StyleBold})
			runs = append(runs, model.Plain(": "))
		}
		runs = model.NormalizeRuns(append(runs, p.inline(toks)...))
		if len(runs) > 0 {
			out = append(out, &model.Paragraph{Runs: runs})
		}
		term, toks = nil, nil
	}

	for {
		tok := p.next()
		switch {
		case tok.Type == TokenEOF:
			flush()
			return out
		case tok.Type == TokenCommand && tok.Value == "item":
			flush()
			started = true
			if label, ok := p.optional(); ok {
				term = tokenize(label)
			}
		case tok.Type == TokenCommand && tok.Value == "end":
			if p.groupText() == "description" {
				flush()
				return out
			}
		case tok.Type == TokenBeginGroup:
			toks = append(toks, p.balanced(tok)...)
		default:
			toks = append(toks, tok)
		}
	}
}

// code reads a verbatim environment. The rest of the \begin line and a
// trailing blank line are not part of the code.
func (p *parser) code(env string, line int) model.Block {
	block := &model.CodeBlock{}

	// Raw reading restarts the lexer, so no token may be buffered past the
	// arguments.
	switch env {
	case "lstlisting":
		if opts, ok := p.optional(); ok {
			if m := languageOpt.FindStringSubmatch(opts); m != nil {
				block.Language = strings.ToLower(m[1])
			}
		}
	case "minted":
		p.optional()
		block.Language = strings.ToLower(p.groupText())
	}
	if len(p.ahead) > 0 {
		p.lex.Reset(p.ahead[0])
		p.ahead = nil
	}

	raw, ok := p.lex.ReadRaw(env)
	if !ok {
		p.warner.warn(model.WarnUnknownMarkup, line, "environment %s is never closed", env)
	}

	if i := strings.IndexByte(raw, '\n'); i >= 0 && strings.TrimSpace(raw[:i]) == "" {
		raw = raw[i+1:]
	}
	if i := strings.LastIndexByte(raw, '\n'); i >= 0 && strings.TrimSpace(raw[i+1:]) == "" {
		raw = raw[:i]
	} else if strings.TrimSpace(raw) == "" {
		raw = ""
	}
	block.Lines = textenc.Lines(raw)
	if block.Lines == nil && raw == "" {
		block.Lines = []string{}
	}
	return block
}

// quote reads a quote environment. Its paragraphs become the quote's
// blocks; other blocks inside it are flattened to paragraphs.
func (p *parser) quote(env string) []model.Block {
	q := &model.BlockQuote{}
	for _, b := range p.blocks(env) {
		switch b := b.(type) {
		case *model.Paragraph:
			q.Blocks = append(q.Blocks, b)
		case *model.List:
			for _, item := range b.Items {
				q.Blocks = append(q.Blocks, &model.Paragraph{Runs: item.Runs})
			}
		default:
			if runs := blockRuns(b); len(runs) > 0 {
				q.Blocks = append(q.Blocks, &model.Paragraph{Runs: runs})
			}
		}
	}
	if len(q.Blocks) == 0 {
		return nil
	}
	return []model.Block{q}
}

// blockRuns flattens a block into runs for places that only hold text.
func blockRuns(b model.Block) []model.Run {
	switch b := b.(type) {
	case *model.Paragraph:
		return b.Runs
	case *model.Heading:
		return b.Runs
	case *model.CodeBlock:
		if len(b.Lines) == 0 {
			return nil
		}
		return []model.Run{{Text: strings.Join(b.Lines, " "), Style: model.StyleCode}}
	default:
		return model.PlainRuns(strings.Join(strings.Fields(b.PlainText()), " "))
	}
}

// tableRules are commands that draw lines between rows.
var tableRules = map[string]int{
	"hline": 0, "toprule": 0, "midrule": 0, "bottomrule": 0, "cline": 1, "cmidrule": 1,
	"endhead": 0, "endfirsthead": 0, "endfoot": 0, "endlastfoot": 0, "centering": 0,
	"caption": 1, "label": 1, "noalign": 1,
}

// table reads a tabular-like environment. Column specifications are
// ignored; rows end at \\ and cells at &.
func (p *parser) table(env string, line int) *model.Table {
	switch env {
	case "tabular*", "tabularx":
		p.group()
	}
	p.optional()
	p.group()

	var rows [][]Token
	var row []Token
	for {
		tok := p.next()
		if tok.Type == TokenEOF {
			p.warner.warn(model.WarnUnknownMarkup, tok.Line, "environment %s is never closed", env)
			break
		}
		if tok.Type == TokenCommand && tok.Value == "end" {
			if p.groupText() == env {
				break
			}
			continue
		}
		if tok.Type == TokenCommand && (tok.Value == "\\" || tok.Value == "tabularnewline") {
			p.optional()
			rows = append(rows, row)
			row = nil
			continue
		}
		if tok.Type == TokenCommand {
			if n, ok := tableRules[tok.Value]; ok {
				p.optional()
				for i := 0; i < n; i++ {
					p.group()
				}
				continue
			}
		}
		if tok.Type == TokenBeginGroup {
			row = append(row, p.balanced(tok)...)
			continue
		}
		row = append(row, tok)
	}
	rows = append(rows, row)

	table := &model.Table{}
	for _, toks := range rows {
		cells := p.cells(toks)
		if len(cells) == 1 && len(cells[0].Runs) == 0 {
			continue
		}
		table.Rows = append(table.Rows, cells)
	}
	if table.MaxCols() == 0 {
		p.warner.warn(model.WarnMalformedTable, line, "table has no cells; dropped")
		return nil
	}

	table.UnforceHeader()
	if table.Pad() {
		p.warner.warn(model.WarnMalformedTable, line, "table rows have different cell counts; padded")
	}
	return table
}

// cells splits a row at & outside groups. \multicolumn{n}{spec}{text}
// yields its text followed by n-1 empty cells.
func (p *parser) cells(toks []Token) []model.Cell {
	var cells []model.Cell
	var cur []Token
	depth := 0

	finish := func() {
		span := 1
		if i := firstCommand(cur); i >= 0 && cur[i].Value == "multicolumn" {
			sub := &parser{lex: NewLexer("", 0), ahead: cur[i+1:], warner: p.warner}
			if n, err := strconv.Atoi(sub.groupText()); err == nil && n > 1 {
				span = n
			}
			sub.group()
			cur = sub.group()
		}
		cells = append(cells, model.Cell{Runs: p.inline(cur)})
		for i := 1; i < span; i++ {
			cells = append(cells, model.Cell{})
		}
		cur = nil
	}

	for _, tok := range toks {
		switch tok.Type {
		case TokenBeginGroup:
			depth++
		case TokenEndGroup:
			depth--
		case TokenAlign:
			if depth == 0 {
				finish()
				continue
			}
		}
		cur = append(cur, tok)
	}
	finish()
	return cells
}

// firstCommand returns the index of the first token when it is a command,
// skipping leading whitespace.
func firstCommand(toks []Token) int {
	for i, tok := range toks {
		switch tok.Type {
		case TokenSpace, TokenParBreak:
			continue
		case TokenCommand:
			return i
		}
		return -1
	}
	return -1
}
