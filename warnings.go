package docmorph

import (
	"fmt"
	"strings"

	"github.com/tsawler/docmorph/model"
)

// Warning is a non-fatal issue found while converting. The output is still
// produced, but may have lost content or styling.
type Warning = model.Warning

// FormatWarnings renders warnings one per line.
func FormatWarnings(warnings []Warning) string {
	if len(warnings) == 0 {
		return ""
	}
	var sb strings.Builder
	for i, w := range warnings {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(w.String())
	}
	return sb.String()
}

// strictError returns an ErrMalformedTable error for the first
// malformed-table warning, if any.
func strictError(warnings []Warning) error {
	for _, w := range warnings {
		if w.Kind == model.WarnMalformedTable {
			return fmt.Errorf("%w: %s", ErrMalformedTable, w)
		}
	}
	return nil
}
