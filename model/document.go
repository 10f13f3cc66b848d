package model

import "strings"

// Document is the intermediate representation of a converted file.
type Document struct {
	// Title is optional metadata. Emitters that support document
	// properties write it; it never appears in the body.
	Title  string
	Blocks []Block
}

// NewDocument creates a new empty document
func NewDocument() *Document {
	return &Document{
		Blocks: make([]Block, 0),
	}
}

// Append adds blocks to the end of the document. Nil blocks are ignored.
func (d *Document) Append(blocks ...Block) {
	for _, b := range blocks {
		if b != nil {
			d.Blocks = append(d.Blocks, b)
		}
	}
}

// BlockCount returns the number of top-level blocks
func (d *Document) BlockCount() int {
	return len(d.Blocks)
}

// Headings returns all top-level headings in document order
func (d *Document) Headings() []*Heading {
	var out []*Heading
	for _, b := range d.Blocks {
		if h, ok := b.(*Heading); ok {
			out = append(out, h)
		}
	}
	return out
}

// Tables returns all top-level tables in document order
func (d *Document) Tables() []*Table {
	var out []*Table
	for _, b := range d.Blocks {
		if t, ok := b.(*Table); ok {
			out = append(out, t)
		}
	}
	return out
}

// PlainText returns the visible text of every block, one block per line.
func (d *Document) PlainText() string {
	var sb strings.Builder
	for i, b := range d.Blocks {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(b.PlainText())
	}
	return sb.String()
}

// InferTitle returns Title if set, otherwise the text of the first
// level-1 heading.
func (d *Document) InferTitle() string {
	if d.Title != "" {
		return d.Title
	}
	for _, h := range d.Headings() {
		if h.Level == 1 {
			return strings.TrimSpace(h.PlainText())
		}
	}
	return ""
}
