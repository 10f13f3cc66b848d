// Package docmorph converts documents between Markdown, DOCX, PDF and LaTeX.
// Every conversion imports the source into a shared document model and
// emits the target from it.
//
// Basic usage:
//
//	out, warnings, err := docmorph.Open("notes.md").To(format.DOCX).Bytes()
//	if err != nil {
//	    // handle error
//	}
//	if len(warnings) > 0 {
//	    log.Println("Warnings:", docmorph.FormatWarnings(warnings))
//	}
//
// Writing next to the source with the default target:
//
//	warnings, err := docmorph.Open("report.docx").WriteFile("report.md")
//
// For in-memory data, Convert is the single entry point:
//
//	out, warnings, err := docmorph.Convert(src, format.Markdown, format.PDF)
package docmorph

import (
	"github.com/tsawler/docmorph/format"
)

// Open returns a Converter for a source file. The source format is taken
// from the file extension, or from the content when the extension is not
// recognised. Nothing is read until a terminal operation runs.
//
// Example:
//
//	out, warnings, err := docmorph.Open("paper.tex").To(format.PDF).Bytes()
func Open(filename string) *Converter {
	return &Converter{
		filename: filename,
		from:     format.Detect(filename),
		options:  defaultOptions(),
	}
}

// FromBytes returns a Converter for source data already in memory.
//
// Example:
//
//	doc, _, err := docmorph.FromBytes(data, format.Markdown).Document()
func FromBytes(data []byte, from format.Format) *Converter {
	return &Converter{
		data:    data,
		loaded:  true,
		from:    from,
		options: defaultOptions(),
	}
}

// Must is a helper that wraps a call to a function returning (T, error)
// and panics if the error is non-nil. It is intended for use in scripts
// or tests where error handling would be cumbersome.
func Must[T any](val T, err error) T {
	if err != nil {
		panic(err)
	}
	return val
}

// MustBytes wraps a call to Bytes or Document and panics if the error is
// non-nil. Warnings are discarded.
//
// Example:
//
//	out := docmorph.MustBytes(docmorph.Open("notes.md").To(format.TeX).Bytes())
func MustBytes[T any](val T, _ []Warning, err error) T {
	if err != nil {
		panic(err)
	}
	return val
}
