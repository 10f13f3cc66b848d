package tex

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/tsawler/docmorph/internal/textenc"
	"github.com/tsawler/docmorph/model"
)

const sampleTeX = `\documentclass{article}
\usepackage{hyperref}
\title{My \textbf{Doc}}
\begin{document}
\maketitle

\section{Intro}
Hello \textbf{world}.

\subsection*{Details}
Line one
continues here.

\begin{itemize}
  \item First
  \item Second
  \begin{enumerate}
    \item Nested
  \end{enumerate}
\end{itemize}

\begin{lstlisting}[language=Go]
func main() {
    fmt.Println("hi")
}
\end{lstlisting}

\begin{quote}
Quoted text.

Second para.
\end{quote}

\noindent\rule{\textwidth}{0.4pt}

\begin{tabular}{|l|l|}
\hline
\textbf{Name} & \textbf{Value} \\
\hline
a & 1 \\
\hline
\end{tabular}
\end{document}
ignored after the end
`

func TestRead(t *testing.T) {
	doc, warnings, err := Read([]byte(sampleTeX))
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if len(warnings) != 0 {
		t.Errorf("warnings = %v, want none", warnings)
	}
	if doc.Title != "My Doc" {
		t.Errorf("Title = %q, want %q", doc.Title, "My Doc")
	}

	wantTypes := []model.BlockType{
		model.BlockTypeHeading, model.BlockTypeParagraph, model.BlockTypeHeading,
		model.BlockTypeParagraph, model.BlockTypeList, model.BlockTypeCode,
		model.BlockTypeQuote, model.BlockTypeRule, model.BlockTypeTable,
	}
	if len(doc.Blocks) != len(wantTypes) {
		for i, b := range doc.Blocks {
			t.Logf("block %d: %s %q", i, b.Type(), b.PlainText())
		}
		t.Fatalf("got %d blocks, want %d", len(doc.Blocks), len(wantTypes))
	}
	for i, want := range wantTypes {
		if got := doc.Blocks[i].Type(); got != want {
			t.Errorf("block %d type = %s, want %s", i, got, want)
		}
	}

	h := doc.Blocks[0].(*model.Heading)
	if h.Level != 1 || h.PlainText() != "Intro" {
		t.Errorf("heading = %d %q", h.Level, h.PlainText())
	}
	p := doc.Blocks[1].(*model.Paragraph)
	wantRuns := []model.Run{model.Plain("Hello "), {Text: "world", Style: model.StyleBold}, model.Plain(".")}
	if !runsEqual(p.Runs, wantRuns) {
		t.Errorf("paragraph runs = %+v, want %+v", p.Runs, wantRuns)
	}
	if h := doc.Blocks[2].(*model.Heading); h.Level != 2 || h.PlainText() != "Details" {
		t.Errorf("starred heading = %d %q", h.Level, h.PlainText())
	}
	if got := doc.Blocks[3].PlainText(); got != "Line one continues here." {
		t.Errorf("joined paragraph = %q", got)
	}

	list := doc.Blocks[4].(*model.List)
	if list.Ordered {
		t.Error("itemize read as ordered")
	}
	wantItems := []struct {
		text         string
		depth, index int
	}{{"First", 0, 0}, {"Second", 0, 0}, {"Nested", 1, 1}}
	if len(list.Items) != len(wantItems) {
		t.Fatalf("got %d items, want %d", len(list.Items), len(wantItems))
	}
	for i, want := range wantItems {
		item := list.Items[i]
		if model.RunsText(item.Runs) != want.text || item.Depth != want.depth || item.Index != want.index {
			t.Errorf("item %d = %q depth %d index %d, want %+v", i, model.RunsText(item.Runs), item.Depth, item.Index, want)
		}
	}

	code := doc.Blocks[5].(*model.CodeBlock)
	if code.Language != "go" {
		t.Errorf("Language = %q, want go", code.Language)
	}
	wantLines := []string{"func main() {", `    fmt.Println("hi")`, "}"}
	if len(code.Lines) != len(wantLines) {
		t.Fatalf("code lines = %q, want %q", code.Lines, wantLines)
	}
	for i := range wantLines {
		if code.Lines[i] != wantLines[i] {
			t.Errorf("code line %d = %q, want %q", i, code.Lines[i], wantLines[i])
		}
	}

	quote := doc.Blocks[6].(*model.BlockQuote)
	if paras := quote.Paragraphs(); len(paras) != 2 || model.RunsText(paras[1]) != "Second para." {
		t.Errorf("quote paragraphs = %+v", paras)
	}

	table := doc.Blocks[8].(*model.Table)
	if table.RowCount() != 2 || table.ColCount() != 2 {
		t.Fatalf("table = %dx%d, want 2x2", table.RowCount(), table.ColCount())
	}
	if cell := table.GetCell(0, 0); cell.Text() != "Name" || cell.Runs[0].Style != model.StylePlain {
		t.Errorf("header cell = %+v, want plain Name", cell.Runs)
	}
	if got := table.GetCell(1, 1).Text(); got != "1" {
		t.Errorf("cell(1,1) = %q, want 1", got)
	}
}

func TestRead_Fragment(t *testing.T) {
	doc, _, err := Read([]byte("\\title{Loose}\nJust text with \\emph{emphasis}.\n"))
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if doc.Title != "Loose" {
		t.Errorf("Title = %q, want Loose", doc.Title)
	}
	if len(doc.Blocks) != 1 || doc.Blocks[0].PlainText() != "Just text with emphasis." {
		t.Errorf("blocks = %+v", doc.Blocks)
	}
}

func TestRead_InvalidEncoding(t *testing.T) {
	_, _, err := Read([]byte{'a', 0xc3, 0x28})
	if !errors.Is(err, textenc.ErrInvalidUTF8) {
		t.Errorf("Read() error = %v, want ErrInvalidUTF8", err)
	}
}

func TestRead_Headings(t *testing.T) {
	doc, _, _ := Read([]byte("\\chapter{A}\n\\section[Short]{Long title}\n\\paragraph{B}\n\\subparagraph{C}\n"))
	want := []struct {
		level int
		text  string
	}{{1, "A"}, {1, "Long title"}, {4, "B"}, {5, "C"}}
	if len(doc.Blocks) != len(want) {
		t.Fatalf("got %d blocks, want %d", len(doc.Blocks), len(want))
	}
	for i, w := range want {
		h := doc.Blocks[i].(*model.Heading)
		if h.Level != w.level || h.PlainText() != w.text {
			t.Errorf("heading %d = %d %q, want %d %q", i, h.Level, h.PlainText(), w.level, w.text)
		}
	}
}

func TestRead_EnumerateCounter(t *testing.T) {
	doc, _, _ := Read([]byte("\\begin{enumerate}\\setcounter{enumi}{4}\\item Five\\item Six\\end{enumerate}"))
	list := doc.Blocks[0].(*model.List)
	if !list.Ordered || len(list.Items) != 2 {
		t.Fatalf("list = %+v", list)
	}
	if list.Items[0].Index != 5 || list.Items[1].Index != 6 {
		t.Errorf("indexes = %d, %d, want 5, 6", list.Items[0].Index, list.Items[1].Index)
	}
}

func TestRead_Description(t *testing.T) {
	doc, _, _ := Read([]byte("\\begin{description}\n\\item[Term] Meaning.\n\\end{description}"))
	p := doc.Blocks[0].(*model.Paragraph)
	want := []model.Run{{Text: "Term", Style: model.StyleBold}, model.Plain(": Meaning.")}
	if !runsEqual(p.Runs, want) {
		t.Errorf("runs = %+v, want %+v", p.Runs, want)
	}
}

func TestRead_Verbatim(t *testing.T) {
	tests := []struct {
		name     string
		src      string
		language string
		lines    []string
		warnings int
	}{
		{"verbatim", "\\begin{verbatim}\n  x = 1\n\n  y\n\\end{verbatim}", "", []string{"  x = 1", "", "  y"}, 0},
		{"minted", "\\begin{minted}{Python}\nprint(1)\n\\end{minted}", "python", []string{"print(1)"}, 0},
		{"specials kept", "\\begin{verbatim}\n% not a comment {\n\\end{verbatim}", "", []string{"% not a comment {"}, 0},
		{"unclosed", "\\begin{verbatim}\nabc", "", []string{"abc"}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, warnings, _ := Read([]byte(tt.src))
			if len(warnings) != tt.warnings {
				t.Errorf("warnings = %v, want %d", warnings, tt.warnings)
			}
			code := doc.Blocks[0].(*model.CodeBlock)
			if code.Language != tt.language {
				t.Errorf("Language = %q, want %q", code.Language, tt.language)
			}
			if len(code.Lines) != len(tt.lines) {
				t.Fatalf("Lines = %q, want %q", code.Lines, tt.lines)
			}
			for i := range tt.lines {
				if code.Lines[i] != tt.lines[i] {
					t.Errorf("line %d = %q, want %q", i, code.Lines[i], tt.lines[i])
				}
			}
		})
	}
}

func TestRead_RaggedTable(t *testing.T) {
	src := `\begin{tabular}{lll}
\multicolumn{2}{c}{Wide} & x \\
a & b \\
c \\
\end{tabular}`
	doc, warnings, _ := Read([]byte(src))
	table := doc.Tables()[0]
	if table.RowCount() != 3 {
		t.Fatalf("RowCount() = %d, want 3", table.RowCount())
	}
	for i, row := range table.Rows {
		if len(row) != 3 {
			t.Errorf("row %d has %d cells, want 3", i, len(row))
		}
	}
	if table.GetCell(0, 0).Text() != "Wide" || table.GetCell(0, 1).Text() != "" || table.GetCell(0, 2).Text() != "x" {
		t.Errorf("multicolumn row = %+v", table.Rows[0])
	}
	if len(warnings) != 1 || warnings[0].Kind != model.WarnMalformedTable {
		t.Errorf("warnings = %v, want one malformed-table warning", warnings)
	}
}

func TestRead_Environments(t *testing.T) {
	doc, warnings, _ := Read([]byte("\\begin{center}\n\\begin{tabular}{l}\nx \\\\\n\\end{tabular}\n\\end{center}\n\n\\begin{foo}inside\\end{foo}"))
	if len(doc.Blocks) != 2 {
		t.Fatalf("got %d blocks, want 2", len(doc.Blocks))
	}
	if doc.Blocks[0].Type() != model.BlockTypeTable {
		t.Errorf("wrapped block = %s, want table", doc.Blocks[0].Type())
	}
	if doc.Blocks[1].PlainText() != "inside" {
		t.Errorf("unknown environment text = %q", doc.Blocks[1].PlainText())
	}
	if len(warnings) != 1 || warnings[0].Kind != model.WarnUnknownMarkup {
		t.Errorf("warnings = %v, want one unknown-markup warning", warnings)
	}
}

func TestOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.tex")
	if err := os.WriteFile(path, []byte(sampleTeX), 0o644); err != nil {
		t.Fatal(err)
	}
	doc, _, err := Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if len(doc.Headings()) != 2 {
		t.Errorf("Headings() = %d, want 2", len(doc.Headings()))
	}

	if _, _, err := Open(filepath.Join(t.TempDir(), "missing.tex")); err == nil {
		t.Error("Open() on a missing file should fail")
	}
}
