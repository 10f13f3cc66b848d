package docmorph

import (
	"errors"
	"fmt"
)

// Error kinds. Every error returned by a conversion matches exactly one of
// these with errors.Is.
var (
	// ErrUnreadableSource reports a missing, unreadable or undecodable source.
	ErrUnreadableSource = errors.New("unreadable source")
	// ErrUnsupportedConversion reports a direction with no conversion path.
	ErrUnsupportedConversion = errors.New("unsupported conversion")
	// ErrMalformedTable reports an irregular table in strict mode.
	ErrMalformedTable = errors.New("malformed table")
	// ErrEmissionFailure reports that the target could not be produced.
	ErrEmissionFailure = errors.New("emission failure")
)

var kinds = []struct {
	err  error
	name string
}{
	{ErrUnreadableSource, "unreadable_source"},
	{ErrUnsupportedConversion, "unsupported_conversion"},
	{ErrMalformedTable, "malformed_table"},
	{ErrEmissionFailure, "emission_failure"},
}

// KindOf returns the stable name of the error's kind, or "internal" for
// errors that did not come from a conversion.
func KindOf(err error) string {
	if err == nil {
		return ""
	}
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.name
		}
	}
	return "internal"
}

// kindError attaches a kind to an error while keeping it inspectable.
func kindError(kind error, err error) error {
	if errors.Is(err, kind) {
		return err
	}
	return fmt.Errorf("%w: %w", kind, err)
}
