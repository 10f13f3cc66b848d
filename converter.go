package docmorph

import (
	"bytes"
	"fmt"
	"os"

	"github.com/tsawler/docmorph/format"
	"github.com/tsawler/docmorph/model"
)

// Converter provides a fluent interface for converting one source.
// Each configuration method returns a new Converter instance, making it
// safe for concurrent use and allowing method chaining.
type Converter struct {
	// Source
	filename string
	data     []byte
	loaded   bool
	from     format.Format

	// Configuration
	options ConvertOptions

	// Accumulated error (fail-fast)
	err error
}

// clone creates a copy of the Converter with a copy of its options.
func (c *Converter) clone() *Converter {
	return &Converter{
		filename: c.filename,
		data:     c.data,
		loaded:   c.loaded,
		from:     c.from,
		options:  c.options.clone(),
		err:      c.err,
	}
}

// load reads the source file and settles its format.
func (c *Converter) load() ([]byte, format.Format, error) {
	if c.err != nil {
		return nil, format.Unknown, c.err
	}
	data := c.data
	if !c.loaded {
		if c.filename == "" {
			return nil, format.Unknown, fmt.Errorf("%w: no filename specified", ErrUnreadableSource)
		}
		var err error
		data, err = os.ReadFile(c.filename)
		if err != nil {
			return nil, format.Unknown, fmt.Errorf("%w: %w", ErrUnreadableSource, err)
		}
	}

	from := c.from
	if from == format.Unknown {
		detected, err := format.DetectFromReader(bytes.NewReader(data), int64(len(data)))
		if err != nil || detected == format.Unknown {
			return nil, format.Unknown, fmt.Errorf("%w: unrecognised source format %q", ErrUnsupportedConversion, c.filename)
		}
		from = detected
	}
	return data, from, nil
}

// ============================================================================
// Configuration Methods (return new Converter instance)
// ============================================================================

// To selects the target format.
//
// Example:
//
//	out, _, err := docmorph.Open("notes.md").To(format.PDF).Bytes()
func (c *Converter) To(to format.Format) *Converter {
	newConv := c.clone()
	newConv.options.to = to
	return newConv
}

// Strict makes malformed tables fail the conversion with
// ErrMalformedTable instead of being repaired with a warning.
func (c *Converter) Strict() *Converter {
	newConv := c.clone()
	newConv.options.strict = true
	return newConv
}

// Target returns the format the conversion will produce, resolving the
// default target for the source format.
func (c *Converter) Target() (format.Format, error) {
	_, from, err := c.load()
	if err != nil {
		return format.Unknown, err
	}
	return c.target(from), nil
}

func (c *Converter) target(from format.Format) format.Format {
	if c.options.to != format.Unknown {
		return c.options.to
	}
	return DefaultTarget(from)
}

// ============================================================================
// Terminal Operations (execute the conversion and return results)
// ============================================================================

// Document imports the source and returns its document model.
//
// Example:
//
//	doc, warnings, err := docmorph.Open("report.docx").Document()
//	for _, h := range doc.Headings() {
//	    fmt.Println(h.Level, h.PlainText())
//	}
func (c *Converter) Document() (*model.Document, []Warning, error) {
	data, from, err := c.load()
	if err != nil {
		return nil, nil, err
	}
	doc, warnings, err := Import(data, from)
	if err != nil {
		return nil, warnings, err
	}
	if c.options.strict {
		if err := strictError(warnings); err != nil {
			return nil, warnings, err
		}
	}
	return doc, warnings, nil
}

// Text returns the plain text of the source, one block per paragraph.
func (c *Converter) Text() (string, []Warning, error) {
	doc, warnings, err := c.Document()
	if err != nil {
		return "", warnings, err
	}
	return doc.PlainText(), warnings, nil
}

// Bytes converts the source and returns the target file contents.
//
// Example:
//
//	out, warnings, err := docmorph.Open("paper.tex").To(format.DOCX).Bytes()
func (c *Converter) Bytes() ([]byte, []Warning, error) {
	data, from, err := c.load()
	if err != nil {
		return nil, nil, err
	}
	out, warnings, err := Convert(data, from, c.target(from))
	if err != nil {
		return nil, warnings, err
	}
	if c.options.strict {
		if err := strictError(warnings); err != nil {
			return nil, warnings, err
		}
	}
	return out, warnings, nil
}

// WriteFile converts the source and writes the result to path. Nothing is
// written when the conversion fails.
func (c *Converter) WriteFile(path string) ([]Warning, error) {
	out, warnings, err := c.Bytes()
	if err != nil {
		return warnings, err
	}
	if err := os.WriteFile(path, out, 0o644); err != nil {
		return warnings, fmt.Errorf("%w: %w", ErrEmissionFailure, err)
	}
	return warnings, nil
}
