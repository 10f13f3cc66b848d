package docmorph

import (
	"fmt"

	"github.com/tsawler/docmorph/docx"
	"github.com/tsawler/docmorph/format"
	"github.com/tsawler/docmorph/markdown"
	"github.com/tsawler/docmorph/model"
	"github.com/tsawler/docmorph/pdf"
	"github.com/tsawler/docmorph/tex"
)

// Importer reads source bytes into a Document.
type Importer func(src []byte) (*model.Document, []model.Warning, error)

// Emitter writes a Document in a target format.
type Emitter func(doc *model.Document) ([]byte, []model.Warning, error)

var importers = map[format.Format]Importer{
	format.Markdown: markdown.Read,
	format.DOCX:     docx.Read,
	format.PDF:      pdf.Read,
	format.TeX:      tex.Read,
}

var emitters = map[format.Format]Emitter{
	format.Markdown: func(doc *model.Document) ([]byte, []model.Warning, error) {
		return markdown.Write(doc), nil, nil
	},
	format.DOCX: func(doc *model.Document) ([]byte, []model.Warning, error) {
		out, err := docx.Write(doc)
		return out, nil, err
	},
	format.PDF: pdf.Write,
	format.TeX: func(doc *model.Document) ([]byte, []model.Warning, error) {
		out, warnings := tex.Write(doc)
		return out, warnings, nil
	},
}

// directions lists the targets each source can be converted to. PDF to
// DOCX is deliberately absent.
var directions = map[format.Format][]format.Format{
	format.Markdown: {format.DOCX, format.PDF, format.TeX},
	format.DOCX:     {format.Markdown, format.PDF, format.TeX},
	format.PDF:      {format.Markdown, format.TeX},
	format.TeX:      {format.Markdown, format.DOCX, format.PDF},
}

// defaultTargets is used when no target is requested.
var defaultTargets = map[format.Format]format.Format{
	format.Markdown: format.DOCX,
	format.DOCX:     format.Markdown,
	format.PDF:      format.Markdown,
	format.TeX:      format.Markdown,
}

// Supported reports whether from can be converted to to.
func Supported(from, to format.Format) bool {
	for _, t := range directions[from] {
		if t == to {
			return true
		}
	}
	return false
}

// Targets returns the formats a source format can be converted to.
func Targets(from format.Format) []format.Format {
	return append([]format.Format(nil), directions[from]...)
}

// DefaultTarget returns the target used when none is requested, or
// format.Unknown for an unknown source.
func DefaultTarget(from format.Format) format.Format {
	return defaultTargets[from]
}

// Import reads source bytes of the given format into a Document.
func Import(src []byte, from format.Format) (*model.Document, []Warning, error) {
	imp, ok := importers[from]
	if !ok {
		return nil, nil, fmt.Errorf("%w: no importer for %s", ErrUnsupportedConversion, from)
	}
	doc, warnings, err := imp(src)
	if err != nil {
		return nil, warnings, kindError(ErrUnreadableSource, fmt.Errorf("reading %s: %w", from, err))
	}
	return doc, warnings, nil
}

// Emit writes a Document in the given format.
func Emit(doc *model.Document, to format.Format) ([]byte, []Warning, error) {
	emit, ok := emitters[to]
	if !ok {
		return nil, nil, fmt.Errorf("%w: no emitter for %s", ErrUnsupportedConversion, to)
	}
	out, warnings, err := emit(doc)
	if err != nil {
		return nil, warnings, kindError(ErrEmissionFailure, fmt.Errorf("writing %s: %w", to, err))
	}
	return out, warnings, nil
}

// Convert converts source bytes from one format to another. Warnings from
// the import and the emission are returned together, in that order.
func Convert(src []byte, from, to format.Format) ([]byte, []Warning, error) {
	if !Supported(from, to) {
		return nil, nil, fmt.Errorf("%w: %s to %s", ErrUnsupportedConversion, from, to)
	}
	doc, warnings, err := Import(src, from)
	if err != nil {
		return nil, warnings, err
	}
	out, emitted, err := Emit(doc, to)
	warnings = append(warnings, emitted...)
	if err != nil {
		return nil, warnings, err
	}
	return out, warnings, nil
}
