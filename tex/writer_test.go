package tex

import (
	"strings"
	"testing"

	"github.com/tsawler/docmorph/model"
)

func cells(texts ...string) []model.Cell {
	row := make([]model.Cell, len(texts))
	for i, text := range texts {
		row[i] = model.Cell{Runs: model.PlainRuns(text)}
	}
	return row
}

func sampleDocument() *model.Document {
	doc := model.NewDocument()
	doc.Title = "Round Trip"
	doc.Append(
		&model.Heading{Level: 1, Runs: model.PlainRuns("Intro")},
		&model.Paragraph{Runs: []model.Run{
			model.Plain("Text with "),
			{Text: "bold", Style: model.StyleBold},
			model.Plain(", "),
			{Text: "it", Style: model.StyleItalic},
			model.Plain(", "),
			{Text: "both", Style: model.StyleBoldItalic},
			model.Plain(", "),
			{Text: "x_1", Style: model.StyleCode},
			model.Plain(" and "),
			model.Link("a link", "https://e.com/?q=1#top"),
			model.Plain(". 100% & $5 {ok} a--b ~^ \\ ''q''."),
		}},
		&model.List{Ordered: true, Items: []model.ListItem{
			{Runs: model.PlainRuns("one"), Depth: 0, Index: 1},
			{Runs: model.PlainRuns("two"), Depth: 0, Index: 2},
			{Runs: model.PlainRuns("sub"), Depth: 1, Index: 1},
			{Runs: model.PlainRuns("three"), Depth: 0, Index: 3},
		}},
		&model.List{Ordered: true, Items: []model.ListItem{
			{Runs: model.PlainRuns("c"), Index: 3},
			{Runs: model.PlainRuns("d"), Index: 4},
		}},
		&model.CodeBlock{Language: "python", Lines: []string{"def f():", "    return 1", "", "# done"}},
		&model.BlockQuote{Blocks: []model.Block{
			&model.Paragraph{Runs: model.PlainRuns("first")},
			&model.Paragraph{Runs: model.PlainRuns("second")},
		}},
		&model.Rule{},
		&model.Table{Rows: [][]model.Cell{cells("Name", "Score"), cells("Ann", "9")}},
		&model.Heading{Level: 3, Runs: model.PlainRuns("Deep")},
	)
	return doc
}

func TestWrite(t *testing.T) {
	out, warnings := Write(sampleDocument())
	if len(warnings) != 0 {
		t.Errorf("warnings = %v, want none", warnings)
	}
	src := string(out)

	for _, want := range []string{
		`\documentclass{article}`,
		`\title{Round Trip}`,
		`\maketitle`,
		`\section{Intro}`,
		`\subsubsection{Deep}`,
		`\textbf{\textit{both}}`,
		`\texttt{x\_1}`,
		`\href{https://e.com/?q=1\#top}{a link}`,
		`100\% \& \$5 \{ok\} a-{}-b \textasciitilde{}\textasciicircum{} \textbackslash{} '{}'q'{}'.`,
		`\setcounter{enumi}{2}`,
		`\begin{lstlisting}[language=python]`,
		`\begin{tabular}{|l|l|}`,
		`\textbf{Name} & \textbf{Score} \\`,
		`\noindent\rule{\textwidth}{0.4pt}`,
	} {
		if !strings.Contains(src, want) {
			t.Errorf("output missing %q", want)
		}
	}
	if !strings.HasSuffix(src, "\\end{document}\n") {
		t.Error("output does not end the document")
	}
}

func TestWrite_Untitled(t *testing.T) {
	doc := model.NewDocument()
	doc.Append(&model.Paragraph{Runs: model.PlainRuns("body")})
	out, _ := Write(doc)
	if strings.Contains(string(out), `\maketitle`) || strings.Contains(string(out), `\title`) {
		t.Error("untitled document should not make a title")
	}
}

func TestWrite_HeadingLevelSix(t *testing.T) {
	doc := model.NewDocument()
	doc.Append(&model.Heading{Level: 6, Runs: model.PlainRuns("Tiny")})
	out, warnings := Write(doc)
	if !strings.Contains(string(out), `\subparagraph{Tiny}`) {
		t.Errorf("output = %s", out)
	}
	if len(warnings) != 1 || warnings[0].Kind != model.WarnLossyStyle {
		t.Errorf("warnings = %v, want one lossy-style warning", warnings)
	}

	back, _, err := Read(out)
	if err != nil {
		t.Fatal(err)
	}
	if h := back.Blocks[0].(*model.Heading); h.Level != 5 {
		t.Errorf("level read back = %d, want 5", h.Level)
	}
}

func TestEscape(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"plain", "plain"},
		{`a\b`, `a\textbackslash{}b`},
		{"#_&", `\#\_\&`},
		{"x---y", "x-{}-{}-y"},
		{"``q''", "`{}`q'{}'"},
		{"line\nbreak", "line break"},
		{"ünïcode", "ünïcode"},
	}
	for _, tt := range tests {
		if got := escape(tt.in); got != tt.want {
			t.Errorf("escape(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestWrite_RoundTrip(t *testing.T) {
	want := sampleDocument()
	out, _ := Write(want)
	got, warnings, err := Read(out)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if len(warnings) != 0 {
		t.Errorf("warnings = %v, want none", warnings)
	}
	if got.Title != want.Title {
		t.Errorf("Title = %q, want %q", got.Title, want.Title)
	}
	if len(got.Blocks) != len(want.Blocks) {
		for i, b := range got.Blocks {
			t.Logf("block %d: %s %q", i, b.Type(), b.PlainText())
		}
		t.Fatalf("got %d blocks, want %d", len(got.Blocks), len(want.Blocks))
	}

	for i := range want.Blocks {
		w, g := want.Blocks[i], got.Blocks[i]
		if w.Type() != g.Type() {
			t.Errorf("block %d type = %s, want %s", i, g.Type(), w.Type())
			continue
		}
		if w.PlainText() != g.PlainText() {
			t.Errorf("block %d text = %q, want %q", i, g.PlainText(), w.PlainText())
		}
	}

	wantRuns := want.Blocks[1].(*model.Paragraph).Runs
	if gotRuns := got.Blocks[1].(*model.Paragraph).Runs; !runsEqual(gotRuns, wantRuns) {
		t.Errorf("paragraph runs =\n%+v\nwant\n%+v", gotRuns, wantRuns)
	}

	for _, idx := range []int{2, 3} {
		wl, gl := want.Blocks[idx].(*model.List), got.Blocks[idx].(*model.List)
		for j, item := range wl.Items {
			if gl.Items[j].Depth != item.Depth || gl.Items[j].Index != item.Index {
				t.Errorf("list %d item %d = depth %d index %d, want depth %d index %d",
					idx, j, gl.Items[j].Depth, gl.Items[j].Index, item.Depth, item.Index)
			}
		}
	}

	if lang := got.Blocks[4].(*model.CodeBlock).Language; lang != "python" {
		t.Errorf("code language = %q", lang)
	}
	if cell := got.Blocks[7].(*model.Table).GetCell(0, 1); cell.Runs[0].Style != model.StylePlain {
		t.Errorf("header cell style = %s, want plain", cell.Runs[0].Style)
	}
}
