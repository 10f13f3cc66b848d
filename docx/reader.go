// Package docx reads and writes word-processor documents in the Office Open
// XML (DOCX) format.
package docx

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/tsawler/docmorph/model"
)

// Reader provides access to DOCX document content.
type Reader struct {
	zipReader *zip.Reader
	closer    io.Closer
	document  *documentXML
	styles    *stylesXML
	numbering *numberingXML
	rels      *relationshipsXML
	coreProps *corePropertiesXML

	doc      *model.Document
	warnings []model.Warning
}

// Read parses DOCX bytes into a Document.
func Read(data []byte) (*model.Document, []model.Warning, error) {
	r, err := NewReader(data)
	if err != nil {
		return nil, nil, err
	}
	return r.Document(), r.Warnings(), nil
}

// Open opens a DOCX file for reading.
func Open(filename string) (*Reader, error) {
	zr, err := zip.OpenReader(filename)
	if err != nil {
		return nil, fmt.Errorf("opening ZIP archive: %w", err)
	}
	r, err := newReader(&zr.Reader)
	if err != nil {
		zr.Close()
		return nil, err
	}
	r.closer = zr
	return r, nil
}

// NewReader parses a DOCX package held in memory.
func NewReader(data []byte) (*Reader, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("opening ZIP archive: %w", err)
	}
	return newReader(zr)
}

func newReader(zr *zip.Reader) (*Reader, error) {
	r := &Reader{zipReader: zr}

	if err := r.validate(); err != nil {
		return nil, err
	}
	if err := r.parseRelationships(); err != nil {
		return nil, fmt.Errorf("parsing relationships: %w", err)
	}
	if err := r.parseDocument(); err != nil {
		return nil, fmt.Errorf("parsing document: %w", err)
	}

	// Styles, numbering and metadata are optional parts.
	r.parseStyles()
	r.parseNumbering()
	r.parseCoreProperties()

	r.buildDocument()
	return r, nil
}

// Close releases resources associated with the Reader.
func (r *Reader) Close() error {
	if r.closer != nil {
		err := r.closer.Close()
		r.closer = nil
		return err
	}
	return nil
}

// Document returns the parsed document.
func (r *Reader) Document() *model.Document {
	return r.doc
}

// Warnings returns the diagnostics collected while parsing.
func (r *Reader) Warnings() []model.Warning {
	return r.warnings
}

// Text returns the plain text of the document.
func (r *Reader) Text() string {
	return r.doc.PlainText()
}

// validate checks that required DOCX files exist.
func (r *Reader) validate() error {
	required := []string{
		"[Content_Types].xml",
		"word/document.xml",
	}

	fileMap := make(map[string]bool)
	for _, f := range r.zipReader.File {
		fileMap[f.Name] = true
	}

	for _, name := range required {
		if !fileMap[name] {
			return fmt.Errorf("missing required file: %s", name)
		}
	}

	return nil
}

// getFileContent reads the content of a file from the ZIP archive.
func (r *Reader) getFileContent(name string) ([]byte, error) {
	for _, f := range r.zipReader.File {
		if f.Name == name {
			rc, err := f.Open()
			if err != nil {
				return nil, err
			}
			defer rc.Close()
			return io.ReadAll(rc)
		}
	}
	return nil, fmt.Errorf("file not found: %s", name)
}

// parseRelationships parses the document relationships file.
func (r *Reader) parseRelationships() error {
	data, err := r.getFileContent("word/_rels/document.xml.rels")
	if err != nil {
		// Relationships file is optional
		return nil
	}

	r.rels = &relationshipsXML{}
	return xml.Unmarshal(data, r.rels)
}

// parseDocument parses the main document content.
func (r *Reader) parseDocument() error {
	data, err := r.getFileContent("word/document.xml")
	if err != nil {
		return err
	}

	r.document = &documentXML{}
	if err := xml.Unmarshal(data, r.document); err != nil {
		return fmt.Errorf("unmarshaling document.xml: %w", err)
	}
	return nil
}

func (r *Reader) parseStyles() {
	data, err := r.getFileContent("word/styles.xml")
	if err != nil {
		return
	}
	styles := &stylesXML{}
	if err := xml.Unmarshal(data, styles); err != nil {
		r.warn(model.WarnUnknownMarkup, "styles.xml ignored: %v", err)
		return
	}
	r.styles = styles
}

func (r *Reader) parseNumbering() {
	data, err := r.getFileContent("word/numbering.xml")
	if err != nil {
		return
	}
	numbering := &numberingXML{}
	if err := xml.Unmarshal(data, numbering); err != nil {
		r.warn(model.WarnUnknownMarkup, "numbering.xml ignored: %v", err)
		return
	}
	r.numbering = numbering
}

func (r *Reader) parseCoreProperties() {
	data, err := r.getFileContent("docProps/core.xml")
	if err != nil {
		return
	}
	core := &corePropertiesXML{}
	if xml.Unmarshal(data, core) == nil {
		r.coreProps = core
	}
}

func (r *Reader) warn(kind model.WarningKind, format string, args ...any) {
	r.warnings = append(r.warnings, model.Warnf(kind, 0, format, args...))
}

// hyperlinkTargets maps relationship IDs to external hyperlink targets.
func (r *Reader) hyperlinkTargets() map[string]string {
	targets := make(map[string]string)
	if r.rels == nil {
		return targets
	}
	for _, rel := range r.rels.Relationships {
		if rel.Type == relHyperlink {
			targets[rel.ID] = rel.Target
		}
	}
	return targets
}

// buildDocument classifies body paragraphs and tables into blocks.
func (r *Reader) buildDocument() {
	r.doc = model.NewDocument()
	if r.coreProps != nil {
		r.doc.Title = strings.TrimSpace(r.coreProps.Title)
	}
	if r.document == nil || r.document.Body == nil {
		return
	}

	sr := NewStyleResolver(r.styles)
	b := &bodyBuilder{
		doc:       r.doc,
		styles:    sr,
		numbering: NewNumberingResolver(r.numbering),
		runs: &runExtractor{
			styles:  sr,
			targets: r.hyperlinkTargets(),
			warn:    r.warn,
		},
		warn: r.warn,
	}
	b.tables = NewTableParser(b.runs)

	for _, el := range r.document.Body.Elements {
		switch {
		case el.Paragraph != nil:
			b.paragraph(*el.Paragraph)
		case el.Table != nil:
			b.table(*el.Table)
		}
	}
	b.flush()
}

// codeBookmarkPrefix marks the first paragraph of a code block. The rest of
// the bookmark name is the block's language.
const codeBookmarkPrefix = "_code_"

// minCodeIndent is the left indent, in points, from which a monospace
// paragraph is taken as code.
const minCodeIndent = 21.6

var ruleTextPattern = regexp.MustCompile(`^(-{3,}|_{3,}|\*{3,})$`)

// bodyBuilder accumulates paragraphs into multi-paragraph blocks.
type bodyBuilder struct {
	doc       *model.Document
	styles    *StyleResolver
	numbering *NumberingResolver
	runs      *runExtractor
	tables    *TableParser
	warn      func(model.WarningKind, string, ...any)

	lists listBuilder
	code  *model.CodeBlock
	quote *model.BlockQuote
}

func (b *bodyBuilder) flushList() {
	if b.lists.list != nil {
		b.doc.Append(b.lists.flush())
	}
}

func (b *bodyBuilder) flushCode() {
	if b.code != nil {
		b.doc.Append(b.code)
		b.code = nil
	}
}

func (b *bodyBuilder) flushQuote() {
	if b.quote != nil {
		b.doc.Append(b.quote)
		b.quote = nil
	}
}

func (b *bodyBuilder) flush() {
	b.flushList()
	b.flushCode()
	b.flushQuote()
}

func (b *bodyBuilder) table(tbl tableXML) {
	b.flush()
	table, padded := b.tables.ParseTable(tbl)
	if table.ColCount() == 0 {
		b.warn(model.WarnMalformedTable, "table with no columns dropped")
		return
	}
	if padded {
		b.warn(model.WarnMalformedTable, "table rows padded to %d columns", table.ColCount())
	}
	b.doc.Append(table)
}

func (b *bodyBuilder) paragraph(p paragraphXML) {
	styleID := p.Properties.Style.Val
	style := b.styles.Resolve(styleID)
	key := styleKey(styleID, style.Name)

	if lang, ok := codeLanguage(p); ok || b.isCode(p, key, style) {
		b.flushList()
		b.flushQuote()
		if b.code == nil || ok {
			b.flushCode()
			b.code = &model.CodeBlock{Language: lang, Lines: []string{}}
		}
		b.code.Lines = append(b.code.Lines, model.RunsText(b.runs.paragraphRuns(p)))
		return
	}
	b.flushCode()

	runs := model.TrimRuns(b.runs.paragraphRuns(p))

	if level, ok := headingLevel(p, style); ok {
		b.flushList()
		b.flushQuote()
		if len(runs) > 0 {
			b.doc.Append(&model.Heading{Level: model.ClampLevel(level), Runs: runs})
		}
		return
	}

	if len(runs) == 0 {
		if p.Properties.Borders.Bottom.Visible() || p.Properties.Borders.Top.Visible() {
			b.flush()
			b.doc.Append(&model.Rule{})
		}
		return
	}
	if ruleTextPattern.MatchString(model.RunsText(runs)) {
		b.flush()
		b.doc.Append(&model.Rule{})
		return
	}

	if lt, numID, startAt, depth, ok := b.listKind(p, styleID, style.Name); ok {
		b.flushQuote()
		if done := b.lists.add(lt, numID, startAt, depth, runs); done != nil {
			b.doc.Append(done)
		}
		return
	}
	b.flushList()

	if key == "quote" || key == "intensequote" {
		if b.quote == nil {
			b.quote = &model.BlockQuote{}
		}
		b.quote.Blocks = append(b.quote.Blocks, &model.Paragraph{Runs: runs})
		return
	}
	b.flushQuote()

	b.doc.Append(&model.Paragraph{Runs: runs})
}

// isCode reports whether a paragraph is a line of a code block: either it
// uses a code paragraph style, or all its text is monospace and indented.
func (b *bodyBuilder) isCode(p paragraphXML, key string, style *ResolvedStyle) bool {
	switch key {
	case "codeblock", "sourcecode", "htmlpreformatted", "code":
		return true
	}

	indent := style.IndentLeft
	if left := indentLeft(p.Properties.Indent); left != "" {
		indent = parseTwips(left)
	}
	if indent < minCodeIndent {
		return false
	}

	seen := false
	for _, item := range p.Content {
		if item.Run == nil || len(item.Run.Content) == 0 {
			continue
		}
		if !b.styles.ResolveRun(p.Properties.Style.Val, item.Run.Properties).Code {
			return false
		}
		seen = true
	}
	return seen
}

// listKind classifies a list paragraph from its numbering properties, the
// numbering its style carries, or a built-in list style name.
func (b *bodyBuilder) listKind(p paragraphXML, styleID, styleName string) (ListType, string, int, int, bool) {
	numID := p.Properties.NumPr.NumID.Val
	level, _ := strconv.Atoi(p.Properties.NumPr.ILvl.Val)
	if numID == "" {
		numID, level = b.styles.StyleNumbering(styleID)
	}
	if b.numbering.IsListParagraph(numID) {
		lt, startAt := b.numbering.ResolveLevel(numID, level)
		if slt, _, ok := listStyleKind(styleID, styleName); ok && !b.numbering.Defines(numID) {
			lt = slt
		}
		return lt, numID, startAt, level, true
	}
	if lt, depth, ok := listStyleKind(styleID, styleName); ok {
		return lt, "", 1, depth, true
	}
	return ListTypeUnordered, "", 0, 0, false
}

// headingLevel returns the heading level from the paragraph style or a
// direct outline level.
func headingLevel(p paragraphXML, style *ResolvedStyle) (int, bool) {
	if style.IsHeading {
		return style.HeadingLevel, true
	}
	if v := p.Properties.OutlineLvl.Val; v != "" {
		if level := parseOutlineLevel(v); level >= 0 {
			return level + 1, true
		}
	}
	return 0, false
}

// codeLanguage returns the language recorded in a code bookmark.
func codeLanguage(p paragraphXML) (string, bool) {
	for _, item := range p.Content {
		if item.Bookmark != nil && strings.HasPrefix(item.Bookmark.Name, codeBookmarkPrefix) {
			return strings.TrimPrefix(item.Bookmark.Name, codeBookmarkPrefix), true
		}
	}
	return "", false
}

func styleKey(styleID, styleName string) string {
	key := strings.ToLower(strings.ReplaceAll(styleID, " ", ""))
	switch key {
	case "":
		return strings.ToLower(strings.ReplaceAll(styleName, " ", ""))
	default:
		return key
	}
}

// runExtractor turns paragraph content into model runs.
type runExtractor struct {
	styles  *StyleResolver
	targets map[string]string
	warn    func(model.WarningKind, string, ...any)
}

// paragraphRuns returns the normalized runs of a paragraph.
func (re *runExtractor) paragraphRuns(p paragraphXML) []model.Run {
	styleID := p.Properties.Style.Val
	var runs []model.Run
	for _, item := range p.Content {
		switch {
		case item.Run != nil:
			if run, ok := re.run(styleID, *item.Run); ok {
				runs = append(runs, run)
			}
		case item.Hyperlink != nil:
			runs = append(runs, re.hyperlink(styleID, *item.Hyperlink)...)
		}
	}
	return model.NormalizeRuns(runs)
}

func (re *runExtractor) run(paragraphStyle string, run runXML) (model.Run, bool) {
	if run.HasDrawing {
		re.warn(model.WarnDroppedContent, "embedded image or drawing dropped")
	}
	resolved := re.styles.ResolveRun(paragraphStyle, run.Properties)
	if resolved.Hidden {
		return model.Run{}, false
	}
	text := runText(run)
	if text == "" {
		return model.Run{}, false
	}
	if resolved.Code {
		return model.Run{Text: text, Style: model.StyleCode}, true
	}
	return model.Run{Text: text, Style: model.Emphasis(resolved.Bold, resolved.Italic)}, true
}

func (re *runExtractor) hyperlink(paragraphStyle string, h hyperlinkXML) []model.Run {
	target := re.targets[h.ID]
	if target == "" && h.Anchor != "" {
		target = "#" + h.Anchor
	}

	var runs []model.Run
	for _, run := range h.Runs {
		if r, ok := re.run(paragraphStyle, run); ok {
			runs = append(runs, r)
		}
	}
	if target == "" {
		return runs
	}
	text := model.RunsText(runs)
	if text == "" {
		return nil
	}
	return []model.Run{model.Link(text, target)}
}

// runText extracts the visible text of a run.
func runText(run runXML) string {
	var sb strings.Builder
	for _, c := range run.Content {
		switch c.Kind {
		case "t":
			sb.WriteString(c.Text)
		case "tab", "ptab":
			sb.WriteString("\t")
		case "br", "cr":
			sb.WriteString(" ")
		case "noBreakHyphen":
			sb.WriteString("-")
		case "sym":
			if r, ok := symbolRune(c.Text); ok {
				sb.WriteRune(r)
			}
		}
	}
	return sb.String()
}

// symbolRune decodes a w:sym character code. Codes in the private use area
// depend on a symbol font and are dropped.
func symbolRune(code string) (rune, bool) {
	v, err := strconv.ParseUint(code, 16, 32)
	if err != nil || v == 0 {
		return 0, false
	}
	if v >= 0xE000 && v <= 0xF8FF {
		return 0, false
	}
	return rune(v), true
}
