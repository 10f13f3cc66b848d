package tex

import (
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/tsawler/docmorph/model"
)

// symbols maps commands that print a single character or word.
var symbols = map[string]string{
	"textbackslash":     "\\",
	"textasciitilde":    "~",
	"textasciicircum":   "^",
	"textbar":           "|",
	"textless":          "<",
	"textgreater":       ">",
	"textendash":        "–",
	"textemdash":        "—",
	"textquotedblleft":  "“",
	"textquotedblright": "”",
	"textquoteleft":     "‘",
	"textquoteright":    "’",
	"ldots":             "…",
	"dots":              "…",
	"textellipsis":      "…",
	"LaTeX":             "LaTeX",
	"TeX":               "TeX",
	"S":                 "§",
	"P":                 "¶",
	"copyright":         "©",
	"textcopyright":     "©",
	"textregistered":    "®",
	"texttrademark":     "™",
	"pounds":            "£",
	"euro":              "€",
	"textdegree":        "°",
	"ss":                "ß",
	"ae":                "æ",
	"AE":                "Æ",
	"oe":                "œ",
	"OE":                "Œ",
	"o":                 "ø",
	"O":                 "Ø",
	"aa":                "å",
	"AA":                "Å",
	"i":                 "ı",
	"newline":           " ",
	"linebreak":         " ",
	"quad":              " ",
	"qquad":             " ",
	"enspace":           " ",
	"thinspace":         " ",
	"hfill":             " ",
}

// controlSymbols maps \c for non-letter c.
var controlSymbols = map[string]string{
	"&": "&", "%": "%", "$": "$", "#": "#", "_": "_", "{": "{", "}": "}",
	" ": " ", "\n": " ", "\\": " ", ",": " ", ";": " ", ":": " ",
	"!": "", "-": "", "/": "", "@": "",
}

// accents maps accent commands to combining marks.
var accents = map[string]rune{
	"'": '\u0301', "`": '\u0300', "^": '\u0302', "\"": '\u0308', "~": '\u0303',
	"=": '\u0304', ".": '\u0307', "c": '\u0327', "v": '\u030C', "u": '\u0306',
	"H": '\u030B', "k": '\u0328', "r": '\u030A',
}

// Commands that keep their argument text with the current style.
var passthrough = map[string]bool{
	"textrm": true, "textsf": true, "textnormal": true, "textup": true, "textmd": true,
	"textsc": true, "mbox": true, "text": true, "hbox": true, "fbox": true, "makebox": true,
	"underline": true, "uline": true, "sout": true, "st": true, "xout": true,
}

// Commands whose arguments are discarded.
var discarded = map[string]int{
	"label": 1, "index": 1, "caption": 1, "vspace": 1, "hspace": 1, "color": 1,
	"phantom": 1, "setcounter": 2, "addtocounter": 2, "pagestyle": 1, "thispagestyle": 1, "setlength": 2, "addtolength": 2,
	"noindent": 0, "centering": 0, "raggedright": 0, "raggedleft": 0, "par": 0,
	"maketitle": 0, "tableofcontents": 0, "newpage": 0, "clearpage": 0, "pagebreak": 0,
	"bigskip": 0, "medskip": 0, "smallskip": 0, "protect": 0, "relax": 0, "item": 0,
	"normalsize": 0, "small": 0, "footnotesize": 0, "scriptsize": 0, "tiny": 0,
	"large": 0, "Large": 0, "LARGE": 0, "huge": 0, "Huge": 0, "selectfont": 0,
	"rmfamily": 0, "sffamily": 0, "upshape": 0, "mdseries": 0, "normalfont": 0,
}

// style is the formatting in effect while parsing inline content.
type style struct {
	bold, italic, code bool
	target             string
}

func (s style) run(text string) model.Run {
	switch {
	case s.target != "":
		return model.Link(text, s.target)
	case s.code:
		return model.Run{Text: text, Style: model.StyleCode}
	default:
		return model.Run{Text: text, Style: model.Emphasis(s.bold, s.italic)}
	}
}

// inlineParser converts a token sequence into runs. Whitespace collapses
// to single spaces and unknown commands keep the text of their arguments.
type inlineParser struct {
	toks   []Token
	pos    int
	runs   []model.Run
	space  bool // last emitted character was a space
	warner *warner
}

// parseInline resolves inline commands in toks.
func parseInline(toks []Token, w *warner) []model.Run {
	p := &inlineParser{toks: toks, warner: w}
	p.parse(style{}, false)
	return model.TrimRuns(model.NormalizeRuns(p.runs))
}

func (p *inlineParser) next() (Token, bool) {
	if p.pos >= len(p.toks) {
		return Token{Type: TokenEOF}, false
	}
	tok := p.toks[p.pos]
	p.pos++
	return tok, true
}

func (p *inlineParser) peek() Token {
	if p.pos >= len(p.toks) {
		return Token{Type: TokenEOF}
	}
	return p.toks[p.pos]
}

func (p *inlineParser) emit(text string, st style) {
	if text == "" {
		return
	}
	p.runs = append(p.runs, st.run(text))
	p.space = strings.HasSuffix(text, " ")
}

func (p *inlineParser) emitSpace(st style) {
	if p.space || len(p.runs) == 0 {
		return
	}
	p.emit(" ", st)
}

// parse consumes tokens until the end of input or, inside a group, the
// closing brace. Declarations such as \bfseries change st for the rest of
// the group.
func (p *inlineParser) parse(st style, inGroup bool) {
	for {
		tok, ok := p.next()
		if !ok {
			return
		}

		switch tok.Type {
		case TokenText:
			text := tok.Value
			if !st.code {
				text = ligatures.Replace(text)
			}
			p.emit(text, st)
		case TokenSpace, TokenParBreak, TokenTie:
			p.emitSpace(st)
		case TokenBeginGroup:
			p.parse(st, true)
		case TokenEndGroup:
			if inGroup {
				return
			}
		case TokenBeginOptional:
			p.emit("[", st)
		case TokenEndOptional:
			p.emit("]", st)
		case TokenAlign:
			p.emit("&", st)
		case TokenMath:
			p.math(st)
		case TokenVerb:
			code := st
			code.code = true
			p.emit(tok.Value, code)
		case TokenCommand:
			st = p.command(tok, st)
		}
	}
}

// ligatures applies the dash and quote ligatures of plain text.
var ligatures = strings.NewReplacer("---", "—", "--", "–", "``", "\"", "''", "\"")

// math emits the raw text of an inline formula without its delimiters.
func (p *inlineParser) math(st style) {
	var sb strings.Builder
	for {
		tok, ok := p.next()
		if !ok || tok.Type == TokenMath {
			break
		}
		switch tok.Type {
		case TokenCommand:
			sb.WriteString("\\" + tok.Value)
		case TokenSpace, TokenParBreak:
			sb.WriteString(" ")
		default:
			sb.WriteString(tok.Value)
		}
	}
	p.emit(strings.TrimSpace(sb.String()), st)
}

// command handles one command token and returns the style in effect
// afterwards.
func (p *inlineParser) command(tok Token, st style) style {
	name := tok.Value

	if text, ok := controlSymbols[name]; ok {
		if text == " " {
			p.emitSpace(st)
		} else {
			p.emit(text, st)
		}
		if name == "\\" {
			p.skipOptional()
		}
		return st
	}
	if mark, ok := accents[name]; ok {
		p.accent(mark, name, st)
		return st
	}
	if text, ok := symbols[name]; ok {
		p.skipEmptyGroup()
		if text == " " {
			p.emitSpace(st)
		} else {
			p.emit(text, st)
		}
		return st
	}

	switch name {
	case "textbf":
		inner := st
		inner.bold = true
		p.group(inner)
	case "textit", "emph", "textsl":
		inner := st
		inner.italic = true
		p.group(inner)
	case "texttt":
		inner := st
		inner.code = true
		p.group(inner)
	case "bfseries", "bf":
		st.bold = true
	case "itshape", "em", "slshape", "it", "sl":
		st.italic = true
	case "ttfamily", "tt":
		st.code = true
	case "href":
		url := unescapeURL(p.rawGroup())
		inner := st
		inner.target = url
		p.group(inner)
	case "url", "nolinkurl":
		url := unescapeURL(p.rawGroup())
		inner := st
		inner.target = url
		p.emit(url, inner)
	case "textcolor", "colorbox":
		p.skipOptional()
		p.rawGroup()
		p.group(st)
	case "footnote":
		p.rawGroup()
		p.warner.warn(model.WarnDroppedContent, tok.Line, "footnote dropped")
	case "includegraphics":
		p.skipOptional()
		p.rawGroup()
		p.warner.warn(model.WarnDroppedContent, tok.Line, "image dropped")
	case "cite":
		p.skipOptional()
		p.emit("["+p.rawGroup()+"]", st)
	case "ref", "eqref", "pageref", "autoref":
		p.emit(p.rawGroup(), st)
	default:
		if passthrough[name] {
			p.group(st)
			return st
		}
		if n, ok := discarded[name]; ok {
			p.skipOptional()
			for i := 0; i < n; i++ {
				p.rawGroup()
			}
			return st
		}
		p.warner.warnOnce(model.WarnUnknownMarkup, tok.Line, "unknown command \\%s kept as text", name)
		p.skipOptional()
		for p.peek().Type == TokenBeginGroup {
			p.group(st)
		}
	}
	return st
}

// group parses a braced argument with st. A bare token is taken as a one
// token argument, as TeX does.
func (p *inlineParser) group(st style) {
	switch tok := p.peek(); tok.Type {
	case TokenBeginGroup:
		p.pos++
		p.parse(st, true)
	case TokenText:
		p.pos++
		r := []rune(tok.Value)
		p.emit(string(r[0]), st)
		if len(r) > 1 {
			p.pos--
			p.toks[p.pos].Value = string(r[1:])
		}
	}
}

// rawGroup returns the source text of a braced argument with nested
// groups included.
func (p *inlineParser) rawGroup() string {
	if p.peek().Type != TokenBeginGroup {
		return ""
	}
	p.pos++
	var sb strings.Builder
	depth := 1
	for {
		tok, ok := p.next()
		if !ok {
			break
		}
		switch tok.Type {
		case TokenBeginGroup:
			depth++
		case TokenEndGroup:
			depth--
			if depth == 0 {
				return sb.String()
			}
		}
		sb.WriteString(rawText(tok))
	}
	return sb.String()
}

// rawText reproduces the source of a token.
func rawText(tok Token) string {
	switch tok.Type {
	case TokenCommand:
		if len(tok.Value) > 0 && isLetter(tok.Value[0]) {
			return "\\" + tok.Value + " "
		}
		return "\\" + tok.Value
	case TokenVerb:
		return "\\verb|" + tok.Value + "|"
	}
	return tok.Value
}

func (p *inlineParser) skipOptional() {
	if p.peek().Type != TokenBeginOptional {
		return
	}
	depth := 0
	for {
		tok, ok := p.next()
		if !ok {
			return
		}
		switch tok.Type {
		case TokenBeginOptional:
			depth++
		case TokenEndOptional:
			depth--
			if depth == 0 {
				return
			}
		}
	}
}

func (p *inlineParser) skipEmptyGroup() {
	if p.pos+1 < len(p.toks) && p.toks[p.pos].Type == TokenBeginGroup && p.toks[p.pos+1].Type == TokenEndGroup {
		p.pos += 2
	}
}

// accent combines a mark with the first letter of its argument. With no
// argument the accent character itself is printed.
func (p *inlineParser) accent(mark rune, name string, st style) {
	var base, rest string
	switch tok := p.peek(); tok.Type {
	case TokenBeginGroup:
		base = p.rawGroup()
	case TokenText:
		p.pos++
		r := []rune(tok.Value)
		base, rest = string(r[0]), string(r[1:])
	}
	base = strings.TrimSpace(base)
	if base == "" {
		if len(name) == 1 && !isLetter(name[0]) {
			p.emit(name, st)
		}
		p.emit(rest, st)
		return
	}
	if base == "\\i " || base == "\\i" {
		base = "i"
	}
	r := []rune(base)
	p.emit(norm.NFC.String(string(r[0])+string(mark)+string(r[1:])), st)
	p.emit(rest, st)
}

// unescapeURL undoes the escaping hyperref needs inside \href and \url.
func unescapeURL(s string) string {
	return strings.NewReplacer(`\#`, "#", `\%`, "%", `\_`, "_", `\&`, "&", `\~`, "~", `\$`, "$").Replace(strings.TrimSpace(s))
}
