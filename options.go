package docmorph

import "github.com/tsawler/docmorph/format"

// ConvertOptions holds configuration for a conversion.
type ConvertOptions struct {
	// Target format; Unknown selects the default target of the source.
	to format.Format

	// Promote malformed-table warnings to errors.
	strict bool
}

// defaultOptions returns the default conversion options.
func defaultOptions() ConvertOptions {
	return ConvertOptions{
		to:     format.Unknown,
		strict: false,
	}
}

// clone creates a copy of ConvertOptions.
func (o ConvertOptions) clone() ConvertOptions {
	return ConvertOptions{
		to:     o.to,
		strict: o.strict,
	}
}
