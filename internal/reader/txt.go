package reader

import (
	"fmt"
	"os"
	"strings"

	"github.com/docdex-io/docdex/internal/domain"
)

// Txt reads plain-text and markdown files verbatim.
type Txt struct{}

var _ FileReader = Txt{}

func (Txt) CanRead(path string) bool {
	return hasExt(path, ".txt", ".md")
}

func (Txt) ReadText(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	text := strings.TrimSpace(string(data))
	if text == "" {
		return "", fmt.Errorf("%w: %s is empty", domain.ErrValidation, path)
	}
	return text, nil
}
