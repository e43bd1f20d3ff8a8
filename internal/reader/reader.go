// Package reader turns source files into plain text for extraction.
package reader

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/docdex-io/docdex/internal/domain"
)

// FileReader extracts plain text from a file on disk.
type FileReader interface {
	CanRead(path string) bool
	ReadText(path string) (string, error)
}

// ForPath returns the first reader that accepts the path.
func ForPath(readers []FileReader, path string) (FileReader, error) {
	for _, r := range readers {
		if r.CanRead(path) {
			return r, nil
		}
	}
	return nil, fmt.Errorf("%w: unsupported file type %q", domain.ErrValidation, filepath.Ext(path))
}

func hasExt(path string, exts ...string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range exts {
		if ext == e {
			return true
		}
	}
	return false
}
