package model

// BlockType identifies the kind of a Block.
type BlockType int

const (
	BlockTypeUnknown BlockType = iota
	BlockTypeHeading
	BlockTypeParagraph
	BlockTypeList
	BlockTypeCode
	BlockTypeQuote
	BlockTypeRule
	BlockTypeTable
)

func (bt BlockType) String() string {
	switch bt {
	case BlockTypeHeading:
		return "Heading"
	case BlockTypeParagraph:
		return "Paragraph"
	case BlockTypeList:
		return "List"
	case BlockTypeCode:
		return "CodeBlock"
	case BlockTypeQuote:
		return "BlockQuote"
	case BlockTypeRule:
		return "Rule"
	case BlockTypeTable:
		return "Table"
	default:
		return "Unknown"
	}
}

// Block is the interface for all structural units of a Document.
type Block interface {
	Type() BlockType
	// PlainText returns the visible text with styling removed.
	PlainText() string
}

// MaxHeadingLevel is the deepest heading level the IR carries.
const MaxHeadingLevel = 6

// Heading represents a heading
type Heading struct {
	Level int // 1-6
	Runs  []Run
}

func (h *Heading) Type() BlockType   { return BlockTypeHeading }
func (h *Heading) PlainText() string { return RunsText(h.Runs) }

// ClampLevel restricts a heading level to 1..MaxHeadingLevel.
func ClampLevel(level int) int {
	if level < 1 {
		return 1
	}
	if level > MaxHeadingLevel {
		return MaxHeadingLevel
	}
	return level
}

// Paragraph represents a paragraph of styled runs
type Paragraph struct {
	Runs []Run
}

func (p *Paragraph) Type() BlockType   { return BlockTypeParagraph }
func (p *Paragraph) PlainText() string { return RunsText(p.Runs) }

// List represents consecutive list items of the same kind.
type List struct {
	Ordered bool
	Items   []ListItem
}

func (l *List) Type() BlockType { return BlockTypeList }
func (l *List) PlainText() string {
	var text string
	for i, item := range l.Items {
		if i > 0 {
			text += "\n"
		}
		text += RunsText(item.Runs)
	}
	return text
}

// ListItem is a single entry of a List.
type ListItem struct {
	Runs  []Run
	Depth int // 0 for top level
	// Index is the number written in the source for ordered items. Emitters
	// that number automatically may ignore it.
	Index int
}

// CodeBlock holds verbatim lines. No inline parsing is applied to them.
type CodeBlock struct {
	Language string
	Lines    []string
}

func (c *CodeBlock) Type() BlockType { return BlockTypeCode }
func (c *CodeBlock) PlainText() string {
	var text string
	for i, line := range c.Lines {
		if i > 0 {
			text += "\n"
		}
		text += line
	}
	return text
}

// BlockQuote contains quoted blocks, normally paragraphs.
type BlockQuote struct {
	Blocks []Block
}

func (q *BlockQuote) Type() BlockType { return BlockTypeQuote }
func (q *BlockQuote) PlainText() string {
	var text string
	for i, b := range q.Blocks {
		if i > 0 {
			text += "\n"
		}
		text += b.PlainText()
	}
	return text
}

// Paragraphs returns the run sequences of the quote's paragraphs.
func (q *BlockQuote) Paragraphs() [][]Run {
	var out [][]Run
	for _, b := range q.Blocks {
		switch v := b.(type) {
		case *Paragraph:
			out = append(out, v.Runs)
		case *Heading:
			out = append(out, v.Runs)
		default:
			out = append(out, PlainRuns(b.PlainText()))
		}
	}
	return out
}

// Rule is a horizontal rule.
type Rule struct{}

func (r *Rule) Type() BlockType   { return BlockTypeRule }
func (r *Rule) PlainText() string { return "" }
