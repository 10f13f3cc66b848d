package pdf

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/tsawler/docmorph/model"
)

func TestRead_NotPDF(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"text", []byte("hello world")},
		{"truncated", []byte("%PDF-1.4\n1 0 obj\n")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := Read(tt.data); err == nil {
				t.Error("Read() should fail")
			}
		})
	}
}

func TestOpen_Missing(t *testing.T) {
	if _, _, err := Open(filepath.Join(t.TempDir(), "missing.pdf")); err == nil {
		t.Error("Open() should fail for a missing file")
	}
}

func TestWriteThenRead(t *testing.T) {
	data, _, err := Write(sampleDocument())
	if err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	path := filepath.Join(t.TempDir(), "sample.pdf")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	doc, _, err := Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	if doc.Title != "Sample" {
		t.Errorf("Title = %q, want %q", doc.Title, "Sample")
	}

	headings := doc.Headings()
	if len(headings) != 1 || headings[0].PlainText() != "Overview" || headings[0].Level != 1 {
		t.Errorf("headings = %+v, want one level 1 \"Overview\"", headings)
	}

	tables := doc.Tables()
	if len(tables) != 1 {
		t.Fatalf("got %d tables, want 1", len(tables))
	}
	if got := tables[0].GetCell(1, 1).Text(); got != "1" {
		t.Errorf("cell(1,1) = %q, want \"1\"", got)
	}

	var code *model.CodeBlock
	for _, b := range doc.Blocks {
		if c, ok := b.(*model.CodeBlock); ok {
			code = c
		}
	}
	if code == nil {
		t.Fatal("no code block recovered")
	}
	if len(code.Lines) != 3 || code.Lines[1] != "    println(1)" {
		t.Errorf("code lines = %q", code.Lines)
	}
}
