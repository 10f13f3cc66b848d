package markdown

import (
	"fmt"

	"github.com/tsawler/docmorph/internal/textenc"
	"github.com/tsawler/docmorph/model"
)

// Read decodes a markup source and parses it into a Document. The only error
// is an undecodable source; malformed markup degrades to text and is
// reported through warnings.
func Read(src []byte) (*model.Document, []model.Warning, error) {
	text, err := textenc.Decode(src)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to decode markdown: %w", err)
	}
	doc, warnings := Parse(text)
	return doc, warnings, nil
}

// Parse builds a Document from markup text.
func Parse(text string) (*model.Document, []model.Warning) {
	b := newBuilder()
	for _, line := range Classify(textenc.Lines(text)) {
		b.add(line)
	}
	return b.finish()
}

// builder accumulates classified lines into blocks. At most one multi-line
// construct is open at a time.
type builder struct {
	doc      *model.Document
	warnings []model.Warning

	list      *model.List
	bullet    byte // marker of the open list's top-level unordered items
	quote     *model.BlockQuote
	code      *model.CodeBlock
	codeLine  int
	table     *model.Table
	tableLine int
}

func newBuilder() *builder {
	return &builder{doc: model.NewDocument()}
}

func (b *builder) add(line Line) {
	if b.code != nil {
		switch line.Kind {
		case LineCode:
			b.code.Lines = append(b.code.Lines, line.Text)
		case LineFenceClose:
			b.doc.Append(b.code)
			b.code = nil
		}
		return
	}

	if line.Kind != LineOrdered && line.Kind != LineUnordered {
		b.closeList()
	}
	if line.Kind != LineQuote {
		b.closeQuote()
	}
	if line.Kind != LineTableRow || line.TableStart {
		b.closeTable()
	}

	switch line.Kind {
	case LineFenceOpen:
		b.code = &model.CodeBlock{Language: line.Language, Lines: []string{}}
		b.codeLine = line.Number

	case LineHeading:
		b.doc.Append(&model.Heading{Level: line.Level, Runs: ParseInline(line.Text)})

	case LineRule:
		b.doc.Append(&model.Rule{})

	case LineQuote:
		if b.quote == nil {
			b.quote = &model.BlockQuote{}
		}
		if line.Text != "" {
			b.quote.Blocks = append(b.quote.Blocks, &model.Paragraph{Runs: ParseInline(line.Text)})
		}

	case LineOrdered, LineUnordered:
		ordered := line.Kind == LineOrdered
		if b.list != nil && b.list.Ordered != ordered {
			b.closeList()
		}
		if b.list != nil && line.Depth == 0 && line.Bullet != b.bullet {
			b.closeList()
		}
		if b.list == nil {
			b.list = &model.List{Ordered: ordered}
			b.bullet = line.Bullet
		}
		b.list.Items = append(b.list.Items, model.ListItem{
			Runs:  ParseInline(line.Text),
			Depth: line.Depth,
			Index: line.Index,
		})

	case LineTableRow:
		if b.table == nil {
			b.table = &model.Table{}
			b.tableLine = line.Number
		}
		row := make([]model.Cell, len(line.Cells))
		for i, text := range line.Cells {
			row[i] = model.Cell{Runs: ParseInline(text)}
		}
		b.table.Rows = append(b.table.Rows, row)

	case LineParagraph:
		b.doc.Append(&model.Paragraph{Runs: ParseInline(line.Text)})
	}
}

func (b *builder) closeList() {
	if b.list != nil {
		b.doc.Append(b.list)
		b.list = nil
	}
}

func (b *builder) closeQuote() {
	if b.quote != nil {
		if len(b.quote.Blocks) > 0 {
			b.doc.Append(b.quote)
		}
		b.quote = nil
	}
}

// closeTable seals the open table, padding short rows to the widest row.
func (b *builder) closeTable() {
	t := b.table
	if t == nil {
		return
	}
	b.table = nil

	if t.MaxCols() == 0 {
		b.warnings = append(b.warnings, model.Warnf(model.WarnMalformedTable, b.tableLine,
			"table has no columns; dropped"))
		return
	}
	if t.Pad() {
		b.warnings = append(b.warnings, model.Warnf(model.WarnMalformedTable, b.tableLine,
			"irregular table padded to %d columns", t.ColCount()))
	}
	b.doc.Append(t)
}

func (b *builder) finish() (*model.Document, []model.Warning) {
	if b.code != nil {
		b.warnings = append(b.warnings, model.Warnf(model.WarnUnknownMarkup, b.codeLine,
			"code fence is never closed"))
		b.doc.Append(b.code)
		b.code = nil
	}
	b.closeList()
	b.closeQuote()
	b.closeTable()
	return b.doc, b.warnings
}
