package server

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/tsawler/docmorph/batch"
	"github.com/tsawler/docmorph/format"
)

// parseUpload parses a multipart request body of at most limit bytes.
func parseUpload(w http.ResponseWriter, r *http.Request, limit int64) error {
	if r.ContentLength > limit {
		return tooLarge(limit)
	}
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	if err := r.ParseMultipartForm(memoryLimit); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return tooLarge(limit)
		}
		return badRequest("Invalid upload: " + err.Error())
	}
	return nil
}

// collect saves the uploaded files of a batch request into dir and returns
// their paths. Several files arrive in the "files" field; a single file or
// ZIP archive arrives in "file". Unconvertible files are ignored.
func collect(r *http.Request, dir string, limit int64) ([]string, error) {
	form := r.MultipartForm
	if files := form.File["files"]; len(files) > 0 {
		var paths []string
		seen := map[string]bool{}
		for _, fh := range files {
			name := cleanName(fh.Filename)
			if name == "" || format.Detect(name) == format.Unknown || seen[name] {
				continue
			}
			seen[name] = true
			dst := filepath.Join(dir, name)
			if err := save(fh, dst); err != nil {
				return nil, err
			}
			paths = append(paths, dst)
		}
		return paths, nil
	}

	files := form.File["file"]
	if len(files) == 0 {
		return nil, badRequest("No files uploaded")
	}
	fh := files[0]
	name := cleanName(fh.Filename)
	switch {
	case name == "":
		return nil, badRequest("No file selected")
	case strings.EqualFold(filepath.Ext(name), ".zip"):
		data, err := readAll(fh)
		if err != nil {
			return nil, err
		}
		paths, err := batch.ExtractZip(data, dir, limit)
		if errors.Is(err, batch.ErrArchiveTooLarge) {
			return nil, tooLarge(limit)
		}
		if err != nil {
			return nil, badRequest(fmt.Sprintf("Invalid archive %s: %v", name, err))
		}
		return paths, nil
	case format.Detect(name) != format.Unknown:
		dst := filepath.Join(dir, name)
		if err := save(fh, dst); err != nil {
			return nil, err
		}
		return []string{dst}, nil
	default:
		return nil, badRequest("Unsupported file type: " + name)
	}
}

func readAll(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, badRequest(err.Error())
	}
	defer f.Close()
	return io.ReadAll(f)
}

func save(fh *multipart.FileHeader, dst string) error {
	data, err := readAll(fh)
	if err != nil {
		return err
	}
	return os.WriteFile(dst, data, 0o644)
}
