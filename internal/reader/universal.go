package reader

import (
	"fmt"
	"strings"

	"code.sajari.com/docconv/v2"

	"github.com/docdex-io/docdex/internal/domain"
)

// Universal reads office and PDF formats through docconv.
type Universal struct{}

var _ FileReader = Universal{}

func (Universal) CanRead(path string) bool {
	return hasExt(path, ".pdf", ".docx", ".doc", ".odt", ".rtf")
}

func (Universal) ReadText(path string) (string, error) {
	res, err := docconv.ConvertPath(path)
	if err != nil {
		return "", fmt.Errorf("%w: convert %s: %v", domain.ErrValidation, path, err)
	}
	text := strings.TrimSpace(res.Body)
	if text == "" {
		return "", fmt.Errorf("%w: no extractable text in %s", domain.ErrValidation, path)
	}
	return text, nil
}
