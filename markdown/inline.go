package markdown

import (
	"strings"

	"github.com/tsawler/docmorph/model"
)

// spanDetector tries to recognise a span at the scanner's cursor. It returns
// the number of bytes consumed, or 0 if nothing matched.
type spanDetector func(s *spanScanner) int

// spanDetectors are tried in precedence order at every position.
var spanDetectors = []spanDetector{
	detectCodeSpan,
	detectLink,
	detectTripleEmphasis,
	detectDoubleEmphasis,
	detectSingleEmphasis,
}

type spanScanner struct {
	text  string
	pos   int
	plain strings.Builder
	runs  []model.Run
}

func (s *spanScanner) flush() {
	if s.plain.Len() > 0 {
		s.runs = append(s.runs, model.Plain(s.plain.String()))
		s.plain.Reset()
	}
}

func (s *spanScanner) emit(r model.Run) {
	s.flush()
	s.runs = append(s.runs, r)
}

func (s *spanScanner) rest() string {
	return s.text[s.pos:]
}

// ParseInline scans one line of markup and returns its styled runs.
//
// Precedence at each position is code span, link, triple, double and then
// single emphasis. Unmatched or empty delimiters are kept as literal text,
// so the concatenated run text always equals the input with the markers of
// matched spans removed. ParseInline never fails.
func ParseInline(line string) []model.Run {
	s := &spanScanner{text: line}
	for s.pos < len(s.text) {
		consumed := 0
		for _, detect := range spanDetectors {
			if consumed = detect(s); consumed > 0 {
				break
			}
		}
		if consumed > 0 {
			s.pos += consumed
			continue
		}
		s.plain.WriteByte(s.text[s.pos])
		s.pos++
	}
	s.flush()
	return model.NormalizeRuns(s.runs)
}

func detectCodeSpan(s *spanScanner) int {
	rest := s.rest()
	if rest[0] != '`' {
		return 0
	}
	end := strings.IndexByte(rest[1:], '`')
	if end <= 0 {
		return 0
	}
	s.emit(model.Run{Text: rest[1 : end+1], Style: model.StyleCode})
	return end + 2
}

func detectLink(s *spanScanner) int {
	rest := s.rest()
	if rest[0] != '[' {
		return 0
	}
	closeLabel := strings.Index(rest, "](")
	if closeLabel <= 1 {
		return 0
	}
	label := rest[1:closeLabel]
	if strings.ContainsAny(label, "[]") {
		return 0
	}
	closeTarget := strings.IndexByte(rest[closeLabel+2:], ')')
	if closeTarget < 0 {
		return 0
	}
	target := strings.TrimSpace(rest[closeLabel+2 : closeLabel+2+closeTarget])
	if target == "" {
		return 0
	}
	s.emit(model.Link(label, target))
	return closeLabel + 2 + closeTarget + 1
}

func detectTripleEmphasis(s *spanScanner) int {
	return detectDelimited(s, 3, model.StyleBoldItalic)
}

func detectDoubleEmphasis(s *spanScanner) int {
	return detectDelimited(s, 2, model.StyleBold)
}

// detectDelimited matches a run of n identical emphasis characters closed by
// the next occurrence of the same run.
func detectDelimited(s *spanScanner, n int, style model.Style) int {
	rest := s.rest()
	if len(rest) < 2*n+1 || !isEmphasisChar(rest[0]) {
		return 0
	}
	delim := strings.Repeat(rest[:1], n)
	if !strings.HasPrefix(rest, delim) {
		return 0
	}
	end := strings.Index(rest[n:], delim)
	if end <= 0 {
		return 0
	}
	s.emit(model.Run{Text: rest[n : n+end], Style: style})
	return n + end + n
}

// detectSingleEmphasis matches *text* or _text_. A delimiter that touches a
// doubled form of itself on either side is not an opener, and a candidate
// closer followed by the same character is skipped.
func detectSingleEmphasis(s *spanScanner) int {
	rest := s.rest()
	c := rest[0]
	if !isEmphasisChar(c) {
		return 0
	}
	if s.pos > 0 && s.text[s.pos-1] == c {
		return 0
	}
	if len(rest) > 1 && rest[1] == c {
		return 0
	}
	for i := 1; i < len(rest); i++ {
		if rest[i] != c {
			continue
		}
		if i+1 < len(rest) && rest[i+1] == c {
			i++
			continue
		}
		if i == 1 {
			return 0
		}
		s.emit(model.Run{Text: rest[1:i], Style: model.StyleItalic})
		return i + 1
	}
	return 0
}

func isEmphasisChar(c byte) bool {
	return c == '*' || c == '_'
}
