package tex

import "testing"

func collect(src string) []Token {
	lex := NewLexer(src, 1)
	var toks []Token
	for {
		tok := lex.NextToken()
		if tok.Type == TokenEOF {
			return toks
		}
		toks = append(toks, tok)
	}
}

func TestLexer_NextToken(t *testing.T) {
	type want struct {
		typ   TokenType
		value string
	}
	tests := []struct {
		name string
		src  string
		want []want
	}{
		{
			name: "command and group",
			src:  `\textbf{bold} text`,
			want: []want{
				{TokenCommand, "textbf"}, {TokenBeginGroup, "{"}, {TokenText, "bold"},
				{TokenEndGroup, "}"}, {TokenSpace, " "}, {TokenText, "text"},
			},
		},
		{
			name: "control word eats trailing spaces",
			src:  `\item   First`,
			want: []want{{TokenCommand, "item"}, {TokenText, "First"}},
		},
		{
			name: "control symbols",
			src:  `a\&b\\`,
			want: []want{{TokenText, "a"}, {TokenCommand, "&"}, {TokenText, "b"}, {TokenCommand, `\`}},
		},
		{
			name: "comment joins lines",
			src:  "a%note\n   b",
			want: []want{{TokenText, "a"}, {TokenText, "b"}},
		},
		{
			name: "comment before blank line",
			src:  "a%note\n\nb",
			want: []want{{TokenText, "a"}, {TokenParBreak, "\n"}, {TokenText, "b"}},
		},
		{
			name: "paragraph break",
			src:  "a\n \nb",
			want: []want{{TokenText, "a"}, {TokenParBreak, "\n \n"}, {TokenText, "b"}},
		},
		{
			name: "specials",
			src:  `[x]&~$`,
			want: []want{
				{TokenBeginOptional, "["}, {TokenText, "x"}, {TokenEndOptional, "]"},
				{TokenAlign, "&"}, {TokenTie, "~"}, {TokenMath, "$"},
			},
		},
		{
			name: "verb",
			src:  `\verb|a_b{}| c`,
			want: []want{{TokenVerb, "a_b{}"}, {TokenSpace, " "}, {TokenText, "c"}},
		},
		{
			name: "starred command",
			src:  `\section*{A}`,
			want: []want{
				{TokenCommand, "section"}, {TokenText, "*"}, {TokenBeginGroup, "{"},
				{TokenText, "A"}, {TokenEndGroup, "}"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			toks := collect(tt.src)
			if len(toks) != len(tt.want) {
				t.Fatalf("got %d tokens %+v, want %d", len(toks), toks, len(tt.want))
			}
			for i, w := range tt.want {
				if toks[i].Type != w.typ || toks[i].Value != w.value {
					t.Errorf("token %d = (%d, %q), want (%d, %q)", i, toks[i].Type, toks[i].Value, w.typ, w.value)
				}
			}
		})
	}
}

func TestLexer_Lines(t *testing.T) {
	toks := collect("a\nb %c\nd\n\ne")
	lines := map[string]int{}
	for _, tok := range toks {
		if tok.Type == TokenText {
			lines[tok.Value] = tok.Line
		}
	}
	want := map[string]int{"a": 1, "b": 2, "d": 3, "e": 5}
	for text, line := range want {
		if lines[text] != line {
			t.Errorf("line of %q = %d, want %d", text, lines[text], line)
		}
	}
}

func TestLexer_ReadRaw(t *testing.T) {
	lex := NewLexer("x % not a comment\n\\end {verbatim}y", 1)
	raw, ok := lex.ReadRaw("verbatim")
	if !ok {
		t.Fatal("ReadRaw() ok = false, want true")
	}
	if raw != "x % not a comment\n" {
		t.Errorf("ReadRaw() = %q", raw)
	}
	if tok := lex.NextToken(); tok.Type != TokenText || tok.Value != "y" || tok.Line != 2 {
		t.Errorf("next token = %+v, want text y on line 2", tok)
	}

	lex = NewLexer("unterminated", 1)
	raw, ok = lex.ReadRaw("verbatim")
	if ok || raw != "unterminated" {
		t.Errorf("ReadRaw() = %q, %v, want rest of input and false", raw, ok)
	}
	if tok := lex.NextToken(); tok.Type != TokenEOF {
		t.Errorf("next token = %+v, want EOF", tok)
	}
}

func TestLexer_Reset(t *testing.T) {
	lex := NewLexer("one two", 1)
	first := lex.NextToken()
	lex.NextToken()
	lex.Reset(first)
	if tok := lex.NextToken(); tok.Value != "one" {
		t.Errorf("token after Reset = %q, want %q", tok.Value, "one")
	}
}
