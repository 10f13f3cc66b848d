package batch

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/tsawler/docmorph/format"
)

// Scan returns the convertible files in dir, sorted by path. Plain .txt
// files and the per-format output folders are skipped.
func Scan(dir string, recursive bool) ([]string, error) {
	if !recursive {
		entries, err := os.ReadDir(dir)
		if err != nil {
			return nil, err
		}
		var files []string
		for _, e := range entries {
			if !e.IsDir() && format.Scannable(e.Name()) {
				files = append(files, filepath.Join(dir, e.Name()))
			}
		}
		return files, nil
	}

	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != dir && isOutputFolder(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if format.Scannable(d.Name()) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

func isOutputFolder(name string) bool {
	for _, f := range format.All {
		if name == f.FolderName() {
			return true
		}
	}
	return false
}
