// Package pdf provides best-effort text extraction from PDF documents.
package pdf

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/fwojciec/digest"
	"github.com/ledongthuc/pdf"
)

var whitespaceRe = regexp.MustCompile(`\s+`)

// Extractor pulls plain text out of PDF bytes, page by page. Layout is not
// preserved: whitespace runs collapse to single spaces.
type Extractor struct{}

// NewExtractor creates a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// ExtractText returns the concatenated text of all pages. A document from
// which no text can be recovered is an EUNAVAILABLE error, not an empty
// success.
func (e *Extractor) ExtractText(data []byte) (string, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", digest.Errorf(digest.EUNAVAILABLE, "unreadable PDF: %v", err)
	}

	var b strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}

		text, err := extractPageText(page)
		if err != nil {
			// Pages with broken font tables are skipped, not fatal.
			continue
		}
		b.WriteString(text)
		b.WriteString("\n")
	}

	out := strings.TrimSpace(whitespaceRe.ReplaceAllString(b.String(), " "))
	if out == "" {
		return "", digest.Errorf(digest.EUNAVAILABLE, "PDF contains no extractable text")
	}
	return out, nil
}

// extractPageText isolates the library call, which panics on some malformed
// content streams.
func extractPageText(page pdf.Page) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("page extraction panic: %v", r)
		}
	}()
	return page.GetPlainText(nil)
}
