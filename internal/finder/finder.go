package finder

import (
	"io/fs"
	"path/filepath"
	"sort"
)

// DefaultExtensions are the script sources checked when none are configured.
var DefaultExtensions = []string{".js", ".mjs", ".cjs", ".jsx", ".ts", ".tsx"}

type FileInfo struct {
	Path string
	Size int64
}

type Finder struct {
	rootDir    string
	extensions []string
}

func New(rootDir string, extensions ...string) *Finder {
	return &Finder{
		rootDir:    rootDir,
		extensions: extensions,
	}
}

// Find walks the root directory and returns the target files sorted by path.
func (f *Finder) Find() ([]FileInfo, error) {
	var files []FileInfo

	err := filepath.WalkDir(f.rootDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !f.IsTarget(path) {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}
		files = append(files, FileInfo{Path: path, Size: info.Size()})
		return nil
	})

	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, err
}

// IsTarget reports whether path has one of the configured extensions.
// Every file is a target when no extensions are configured.
func (f *Finder) IsTarget(path string) bool {
	if len(f.extensions) == 0 {
		return true
	}

	ext := filepath.Ext(path)
	for _, targetExt := range f.extensions {
		if ext == targetExt {
			return true
		}
	}
	return false
}
