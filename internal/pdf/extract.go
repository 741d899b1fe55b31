// Package pdf extracts plain text from PDF documents.
package pdf

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/ledongthuc/pdf"
)

// ErrExtraction indicates the document could not be parsed or yielded no
// readable text.
var ErrExtraction = errors.New("pdf extraction failed")

// Extract returns the plain text of every page in the document, joined
// with newlines. A page that fails to decode fails the whole document; a
// quietly truncated audiobook is worse than no audiobook.
func Extract(path string) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("%w: opening %s: %w", ErrExtraction, path, err)
	}
	defer f.Close()

	total := r.NumPage()
	log.Info("extracting text", "path", path, "pages", total)

	var pages []string
	for i := 1; i <= total; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}

		content, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("%w: page %d of %s: %w", ErrExtraction, i, path, err)
		}
		log.Debug("page extracted", "page", i, "chars", len(content))
		pages = append(pages, content)
	}

	text := strings.Join(pages, "\n")
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("%w: %s contains no extractable text", ErrExtraction, path)
	}
	return text, nil
}
