// Package textenc decodes text sources into normalised UTF-8 and encodes text
// for the single-byte core fonts used in PDF output.
package textenc

import (
	"bytes"
	"errors"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// ErrInvalidUTF8 is returned when a text source is not valid UTF-8 after
// byte-order-mark handling.
var ErrInvalidUTF8 = errors.New("source is not valid UTF-8")

// Decode converts a markup source to a Go string. A UTF-8 or UTF-16 byte
// order mark selects the encoding; without one the input must be UTF-8.
// Line endings are normalised to "\n" and the result is NFC-normalised.
func Decode(src []byte) (string, error) {
	if !hasUTF16BOM(src) && !utf8.Valid(src) {
		return "", ErrInvalidUTF8
	}
	dec := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	out, _, err := transform.Bytes(dec, src)
	if err != nil {
		return "", ErrInvalidUTF8
	}
	if !utf8.Valid(out) {
		return "", ErrInvalidUTF8
	}
	return norm.NFC.String(NormalizeNewlines(string(out))), nil
}

func hasUTF16BOM(b []byte) bool {
	return bytes.HasPrefix(b, []byte{0xff, 0xfe}) || bytes.HasPrefix(b, []byte{0xfe, 0xff})
}

// NormalizeNewlines rewrites CRLF and lone CR line endings to LF.
func NormalizeNewlines(s string) string {
	if !strings.Contains(s, "\r") {
		return s
	}
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}

// Lines splits decoded text into lines. A trailing newline does not produce
// an extra empty line.
func Lines(s string) []string {
	if s == "" {
		return nil
	}
	s = strings.TrimSuffix(s, "\n")
	return strings.Split(s, "\n")
}

// substitutes maps common runes outside Windows-1252 to close equivalents.
var substitutes = map[rune]string{
	'\u2002': " ",
	'\u2003': " ",
	'\u2009': " ",
	'\u202f': " ",
	'\u2010': "-",
	'\u2011': "-",
	'\u2212': "-",
	'\u2192': "->",
	'\u2190': "<-",
	'\u2264': "<=",
	'\u2265': ">=",
	'\u2260': "!=",
	'\u2713': "v",
	'\u25cf': "\u2022",
	'\u25e6': "o",
}

// EncodeWindows1252 encodes s for a PDF core font. Runes the code page
// cannot represent are replaced by a close substitute or '?'. It returns the
// encoded string and the number of runes that had no substitute.
func EncodeWindows1252(s string) (string, int) {
	var buf bytes.Buffer
	buf.Grow(len(s))
	lost := 0
	enc := charmap.Windows1252
	for _, r := range norm.NFC.String(s) {
		if b, ok := enc.EncodeRune(r); ok {
			buf.WriteByte(b)
			continue
		}
		if sub, ok := substitutes[r]; ok {
			for _, sr := range sub {
				if b, ok := enc.EncodeRune(sr); ok {
					buf.WriteByte(b)
				}
			}
			continue
		}
		buf.WriteByte('?')
		lost++
	}
	return buf.String(), lost
}

// DecodeWindows1252 converts Windows-1252 bytes to UTF-8.
func DecodeWindows1252(b []byte) string {
	var sb strings.Builder
	for _, c := range b {
		sb.WriteRune(charmap.Windows1252.DecodeByte(c))
	}
	return sb.String()
}
