package pdf

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	lpdf "github.com/ledongthuc/pdf"

	"github.com/tsawler/docmorph/model"
)

// glyph is one decoded character as positioned on the page, in PDF user
// space (origin bottom left). W is zero when the font carries no widths.
type glyph struct {
	Text string
	Font string
	Size float64
	X, Y float64
	W    float64
}

// linkArea is a URI link annotation.
type linkArea struct {
	Box BBox
	URI string
}

// pageContent is everything the layout analysis needs from one page.
type pageContent struct {
	Number int
	Width  float64
	Height float64
	Glyphs []glyph
	Rects  []BBox
	Links  []linkArea
}

// Read parses PDF bytes into a Document by recovering structure from
// text positions, font changes, filled rectangles and link annotations.
func Read(data []byte) (*model.Document, []model.Warning, error) {
	pages, title, warnings, err := extract(data)
	if err != nil {
		return nil, nil, err
	}
	doc, more := analyze(pages)
	doc.Title = title
	return doc, append(warnings, more...), nil
}

// Open reads and parses a PDF file.
func Open(filename string) (*model.Document, []model.Warning, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read file: %w", err)
	}
	return Read(data)
}

// extract pulls positioned text, rectangles and links out of every page.
// The underlying parser panics on some malformed input, so each step
// recovers into an error or a warning.
func extract(data []byte) (pages []pageContent, title string, warnings []model.Warning, err error) {
	if !bytes.HasPrefix(bytes.TrimLeft(data, "\x00\t\r\n "), []byte("%PDF-")) {
		return nil, "", nil, fmt.Errorf("not a PDF file: missing %%PDF header")
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("malformed PDF: %v", r)
		}
	}()

	r, err := lpdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, "", nil, fmt.Errorf("failed to open PDF: %w", err)
	}

	title = strings.TrimSpace(r.Trailer().Key("Info").Key("Title").Text())

	for i := 1; i <= r.NumPage(); i++ {
		page, perr := extractPage(r.Page(i), i)
		if perr != nil {
			warnings = append(warnings, model.Warnf(model.WarnDroppedContent, 0, "page %d: %v", i, perr))
			continue
		}
		if len(page.Glyphs) == 0 {
			warnings = append(warnings, model.Warnf(model.WarnDroppedContent, 0, "page %d has no extractable text", i))
		}
		pages = append(pages, page)
	}
	return pages, title, warnings, nil
}

func extractPage(p lpdf.Page, number int) (page pageContent, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("unreadable content stream: %v", r)
		}
	}()

	page = pageContent{Number: number, Width: pageWidth, Height: pageHeight}
	if box := p.V.Key("MediaBox"); box.Len() == 4 {
		page.Width = box.Index(2).Float64() - box.Index(0).Float64()
		page.Height = box.Index(3).Float64() - box.Index(1).Float64()
	}

	content := p.Content()
	for _, t := range content.Text {
		page.Glyphs = append(page.Glyphs, glyph{
			Text: t.S,
			Font: t.Font,
			Size: t.FontSize,
			X:    t.X,
			Y:    t.Y,
			W:    t.W,
		})
	}
	for _, rc := range content.Rect {
		page.Rects = append(page.Rects, NewBBoxFromPoints(
			Point{X: rc.Min.X, Y: rc.Min.Y},
			Point{X: rc.Max.X, Y: rc.Max.Y},
		))
	}

	annots := p.V.Key("Annots")
	for i := 0; i < annots.Len(); i++ {
		a := annots.Index(i)
		if a.Key("Subtype").Name() != "Link" {
			continue
		}
		uri := a.Key("A").Key("URI").Text()
		rect := a.Key("Rect")
		if uri == "" || rect.Len() != 4 {
			continue
		}
		page.Links = append(page.Links, linkArea{
			Box: NewBBoxFromPoints(
				Point{X: rect.Index(0).Float64(), Y: rect.Index(1).Float64()},
				Point{X: rect.Index(2).Float64(), Y: rect.Index(3).Float64()},
			),
			URI: uri,
		})
	}
	return page, nil
}
