package tex

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// TokenType represents the type of token
type TokenType int

const (
	TokenEOF           TokenType = iota
	TokenText                    // run of ordinary characters
	TokenSpace                   // whitespace inside a paragraph
	TokenParBreak                // one or more blank lines
	TokenCommand                 // \name, or a control symbol such as \&
	TokenBeginGroup              // {
	TokenEndGroup                // }
	TokenBeginOptional           // [
	TokenEndOptional             // ]
	TokenAlign                   // &
	TokenTie                     // ~
	TokenMath                    // $
	TokenVerb                    // \verb|...|, Value holds the body
)

// Token represents a lexical token
type Token struct {
	Type  TokenType
	Value string
	Pos   int // byte offset in the source
	Line  int
}

// Lexer splits LaTeX source into tokens. Comments are removed as they are
// read, including the line break that ends them.
type Lexer struct {
	src          string
	pos          int
	line         int
	afterComment bool
}

// NewLexer creates a lexer whose first line is numbered line.
func NewLexer(src string, line int) *Lexer {
	return &Lexer{src: src, line: line}
}

// NextToken returns the next token from the input
func (l *Lexer) NextToken() Token {
	for l.pos < len(l.src) && l.src[l.pos] == '%' {
		l.skipComment()
	}
	if l.pos >= len(l.src) {
		return Token{Type: TokenEOF, Pos: l.pos, Line: l.line}
	}

	if !isSpace(l.src[l.pos]) {
		l.afterComment = false
	}

	start, line := l.pos, l.line
	tok := func(t TokenType, value string) Token {
		return Token{Type: t, Value: value, Pos: start, Line: line}
	}

	c := l.src[l.pos]
	switch {
	case isSpace(c):
		return l.readWhitespace()
	case c == '\\':
		return l.readCommand()
	case c == '{':
		l.pos++
		return tok(TokenBeginGroup, "{")
	case c == '}':
		l.pos++
		return tok(TokenEndGroup, "}")
	case c == '[':
		l.pos++
		return tok(TokenBeginOptional, "[")
	case c == ']':
		l.pos++
		return tok(TokenEndOptional, "]")
	case c == '&':
		l.pos++
		return tok(TokenAlign, "&")
	case c == '~':
		l.pos++
		return tok(TokenTie, "~")
	case c == '$':
		l.pos++
		return tok(TokenMath, "$")
	}

	for l.pos < len(l.src) && !isSpecial(l.src[l.pos]) && !isSpace(l.src[l.pos]) {
		l.pos++
	}
	return tok(TokenText, l.src[start:l.pos])
}

// skipComment consumes a comment, its line break and the indentation of
// the following line.
func (l *Lexer) skipComment() {
	end := strings.IndexByte(l.src[l.pos:], '\n')
	if end < 0 {
		l.pos = len(l.src)
		return
	}
	l.pos += end + 1
	l.line++
	for l.pos < len(l.src) && (l.src[l.pos] == ' ' || l.src[l.pos] == '\t') {
		l.pos++
	}
	l.afterComment = true
}

// readWhitespace returns a space or, when the whitespace holds a blank
// line, a paragraph break. A comment that ended the previous line counts
// as that line's break.
func (l *Lexer) readWhitespace() Token {
	start, line := l.pos, l.line
	newlines := 0
	if l.afterComment {
		newlines++
	}
	for l.pos < len(l.src) && isSpace(l.src[l.pos]) {
		if l.src[l.pos] == '\n' {
			newlines++
			l.line++
		}
		l.pos++
	}
	l.afterComment = false

	t := TokenSpace
	if newlines >= 2 {
		t = TokenParBreak
	}
	return Token{Type: t, Value: l.src[start:l.pos], Pos: start, Line: line}
}

// readCommand reads a control word and the spaces after it, a control
// symbol, or a \verb span.
func (l *Lexer) readCommand() Token {
	start, line := l.pos, l.line
	l.pos++ // backslash
	if l.pos >= len(l.src) {
		return Token{Type: TokenText, Value: "\\", Pos: start, Line: line}
	}

	if !isLetter(l.src[l.pos]) {
		r, size := utf8.DecodeRuneInString(l.src[l.pos:])
		l.pos += size
		if r == '\n' {
			l.line++
		}
		return Token{Type: TokenCommand, Value: string(r), Pos: start, Line: line}
	}

	nameStart := l.pos
	for l.pos < len(l.src) && isLetter(l.src[l.pos]) {
		l.pos++
	}
	name := l.src[nameStart:l.pos]

	if name == "verb" {
		if body, ok := l.readVerb(); ok {
			return Token{Type: TokenVerb, Value: body, Pos: start, Line: line}
		}
	}

	for l.pos < len(l.src) && (l.src[l.pos] == ' ' || l.src[l.pos] == '\t') {
		l.pos++
	}
	return Token{Type: TokenCommand, Value: name, Pos: start, Line: line}
}

// readVerb reads the delimited body of \verb or \verb*. The body may not
// span lines.
func (l *Lexer) readVerb() (string, bool) {
	pos := l.pos
	if pos < len(l.src) && l.src[pos] == '*' {
		pos++
	}
	if pos >= len(l.src) || isLetter(l.src[pos]) || isSpace(l.src[pos]) {
		return "", false
	}
	delim := l.src[pos]
	end := strings.IndexByte(l.src[pos+1:], delim)
	if end < 0 {
		return "", false
	}
	body := l.src[pos+1 : pos+1+end]
	if strings.Contains(body, "\n") {
		return "", false
	}
	l.pos = pos + 1 + end + 1
	return body, true
}

// Reset moves the lexer back to an earlier token.
func (l *Lexer) Reset(tok Token) {
	l.pos = tok.Pos
	l.line = tok.Line
	l.afterComment = false
}

// ReadRaw returns the source up to \end{env} verbatim and moves past the
// end marker. It reports false when the environment is never closed, in
// which case the rest of the input is returned.
func (l *Lexer) ReadRaw(env string) (string, bool) {
	end := regexp.MustCompile(`\\end\s*\{` + regexp.QuoteMeta(env) + `\}`)
	rest := l.src[l.pos:]
	loc := end.FindStringIndex(rest)
	if loc == nil {
		l.pos = len(l.src)
		l.line += strings.Count(rest, "\n")
		return rest, false
	}
	l.pos += loc[1]
	l.line += strings.Count(rest[:loc[1]], "\n")
	return rest[:loc[0]], true
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f'
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isSpecial(c byte) bool {
	switch c {
	case '\\', '{', '}', '[', ']', '&', '~', '$', '%':
		return true
	}
	return false
}
