package batch

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/tsawler/docmorph/format"
)

// ErrArchiveTooLarge is returned when an archive expands beyond its limit.
var ErrArchiveTooLarge = errors.New("archive contents exceed size limit")

// WriteZip writes every file under dir to w as a ZIP archive. Entry names
// are relative to dir, so per-format folders appear at the top level.
func WriteZip(w io.Writer, dir string) error {
	zw := zip.NewWriter(w)
	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return err
		}
		f, err := zw.CreateHeader(&zip.FileHeader{Name: filepath.ToSlash(rel), Method: zip.Deflate})
		if err != nil {
			return fmt.Errorf("adding %s: %w", rel, err)
		}
		data, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		_, err = f.Write(data)
		return err
	})
	if err != nil {
		return err
	}
	return zw.Close()
}

// ExtractZip writes the convertible files of an archive into dir and
// returns their paths. Folder structure is flattened to base names; hidden
// files, duplicates and other entries are ignored. Extraction stops with ErrArchiveTooLarge
// once more than limit bytes have been written.
func ExtractZip(data []byte, dir string, limit int64) ([]string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("reading archive: %w", err)
	}

	var paths []string
	seen := map[string]bool{}
	var total int64
	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		name := path.Base(f.Name)
		if strings.HasPrefix(name, ".") || format.Detect(name) == format.Unknown || seen[name] {
			continue
		}
		seen[name] = true

		n, err := extractFile(f, filepath.Join(dir, name), limit-total)
		total += n
		if err != nil {
			return nil, err
		}
		paths = append(paths, filepath.Join(dir, name))
	}
	return paths, nil
}

func extractFile(f *zip.File, dst string, remaining int64) (int64, error) {
	rc, err := f.Open()
	if err != nil {
		return 0, fmt.Errorf("opening %s: %w", f.Name, err)
	}
	defer rc.Close()

	out, err := os.Create(dst)
	if err != nil {
		return 0, err
	}
	defer out.Close()

	n, err := io.Copy(out, io.LimitReader(rc, remaining+1))
	if err != nil {
		return n, fmt.Errorf("extracting %s: %w", f.Name, err)
	}
	if n > remaining {
		return n, ErrArchiveTooLarge
	}
	return n, nil
}
