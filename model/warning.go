package model

import "fmt"

// WarningKind classifies a non-fatal conversion diagnostic.
type WarningKind int

const (
	WarnMalformedTable WarningKind = iota
	WarnDroppedContent
	WarnLossyStyle
	WarnUnknownMarkup
	WarnEncoding
)

func (k WarningKind) String() string {
	switch k {
	case WarnMalformedTable:
		return "malformed-table"
	case WarnDroppedContent:
		return "dropped-content"
	case WarnLossyStyle:
		return "lossy-style"
	case WarnUnknownMarkup:
		return "unknown-markup"
	case WarnEncoding:
		return "encoding"
	default:
		return "unknown"
	}
}

// Warning is a non-fatal diagnostic reported alongside a conversion result.
type Warning struct {
	Kind    WarningKind
	Message string
	// Line is the 1-based source line, or 0 when not applicable.
	Line int
}

func (w Warning) String() string {
	if w.Line > 0 {
		return fmt.Sprintf("%s: line %d: %s", w.Kind, w.Line, w.Message)
	}
	return fmt.Sprintf("%s: %s", w.Kind, w.Message)
}

// Warnf creates a warning with a formatted message.
func Warnf(kind WarningKind, line int, format string, args ...any) Warning {
	return Warning{Kind: kind, Line: line, Message: fmt.Sprintf(format, args...)}
}
