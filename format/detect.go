// Package format provides file format detection for docmorph.
package format

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// Format represents a supported document format.
type Format int

const (
	// Unknown indicates an unrecognized format.
	Unknown Format = iota
	// Markdown indicates lightweight markup text (.md, .markdown, .txt).
	Markdown
	// DOCX indicates a Microsoft Word (.docx) document.
	DOCX
	// PDF indicates a PDF document.
	PDF
	// TeX indicates LaTeX source (.tex, .latex).
	TeX
)

// All lists every known format in a stable order.
var All = []Format{Markdown, DOCX, PDF, TeX}

// String returns the string representation of the format.
func (f Format) String() string {
	switch f {
	case Markdown:
		return "Markdown"
	case DOCX:
		return "DOCX"
	case PDF:
		return "PDF"
	case TeX:
		return "TeX"
	default:
		return "Unknown"
	}
}

// Name returns the short lowercase name used on the command line and in
// query strings.
func (f Format) Name() string {
	switch f {
	case Markdown:
		return "md"
	case DOCX:
		return "docx"
	case PDF:
		return "pdf"
	case TeX:
		return "tex"
	default:
		return ""
	}
}

// Extension returns the typical file extension for the format.
func (f Format) Extension() string {
	switch f {
	case Markdown:
		return ".md"
	case DOCX:
		return ".docx"
	case PDF:
		return ".pdf"
	case TeX:
		return ".tex"
	default:
		return ""
	}
}

// MIMEType returns the media type served for the format.
func (f Format) MIMEType() string {
	switch f {
	case Markdown:
		return "text/markdown; charset=utf-8"
	case DOCX:
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	case PDF:
		return "application/pdf"
	case TeX:
		return "application/x-tex; charset=utf-8"
	default:
		return "application/octet-stream"
	}
}

// FolderName returns the per-format output folder used by batch conversion.
func (f Format) FolderName() string {
	switch f {
	case Markdown:
		return "MD"
	case DOCX:
		return "DOCX"
	case PDF:
		return "PDF"
	case TeX:
		return "TEX"
	default:
		return ""
	}
}

// IsText reports whether the format is a plain-text markup format.
func (f Format) IsText() bool {
	return f == Markdown || f == TeX
}

// Parse converts a user-supplied format name such as "md", "docx" or ".pdf".
func Parse(name string) (Format, error) {
	switch strings.TrimPrefix(strings.ToLower(strings.TrimSpace(name)), ".") {
	case "md", "markdown", "txt":
		return Markdown, nil
	case "docx", "word":
		return DOCX, nil
	case "pdf":
		return PDF, nil
	case "tex", "latex":
		return TeX, nil
	default:
		return Unknown, fmt.Errorf("unknown format %q", name)
	}
}

// Detect determines file format from filename extension.
func Detect(filename string) Format {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".md", ".markdown", ".txt":
		return Markdown
	case ".docx":
		return DOCX
	case ".pdf":
		return PDF
	case ".tex", ".latex":
		return TeX
	default:
		return Unknown
	}
}

// Scannable reports whether a file found while scanning a folder should be
// converted. Plain .txt files are only converted when named explicitly.
func Scannable(filename string) bool {
	if strings.EqualFold(filepath.Ext(filename), ".txt") {
		return false
	}
	return Detect(filename) != Unknown
}

// DetectFromMagic checks file magic bytes to determine format.
// ZIP archives return Unknown; use DetectFromReader to look inside them.
func DetectFromMagic(data []byte) Format {
	if bytes.HasPrefix(data, []byte("%PDF")) {
		return PDF
	}
	if bytes.HasPrefix(data, []byte("PK\x03\x04")) {
		return Unknown
	}
	if detectTeXMagic(data) {
		return TeX
	}
	return Unknown
}

// detectTeXMagic looks for a LaTeX preamble near the start of the data.
func detectTeXMagic(data []byte) bool {
	head := data
	if len(head) > 1024 {
		head = head[:1024]
	}
	trimmed := bytes.TrimLeft(head, " \t\r\n\ufeff")
	for _, marker := range [][]byte{[]byte(`\documentclass`), []byte(`\begin{document}`)} {
		if bytes.HasPrefix(trimmed, marker) {
			return true
		}
	}
	return false
}

// DetectFromReader inspects the content to determine format.
// Markdown has no signature and is never returned here.
func DetectFromReader(r io.ReaderAt, size int64) (Format, error) {
	magic := make([]byte, 1024)
	n, err := r.ReadAt(magic, 0)
	if err != nil && err != io.EOF {
		return Unknown, err
	}
	magic = magic[:n]

	if bytes.HasPrefix(magic, []byte("PK\x03\x04")) {
		return detectZIPFormat(r, size)
	}
	return DetectFromMagic(magic), nil
}

// detectZIPFormat inspects a ZIP archive for a WordprocessingML main part.
func detectZIPFormat(r io.ReaderAt, size int64) (Format, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return Unknown, err
	}
	for _, f := range zr.File {
		if strings.HasPrefix(f.Name, "word/") {
			return DOCX, nil
		}
	}
	return Unknown, nil
}
