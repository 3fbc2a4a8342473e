// Package trafilatura extracts the main article content from raw HTML,
// discarding navigation, sidebars, comments widgets and other chrome.
package trafilatura

import (
	"bytes"
	"net/url"
	"strings"

	"github.com/fwojciec/digest"
	"github.com/markusmobius/go-trafilatura"
	"golang.org/x/net/html"
)

// Ensure Extractor implements digest.Extractor at compile time.
var _ digest.Extractor = (*Extractor)(nil)

// Extractor wraps go-trafilatura. Extraction is best-effort: pages where no
// main content region can be identified return EINVALID so the caller can
// fall back to whole-document conversion.
type Extractor struct {
	includeComments bool
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithComments includes comment sections found on the page itself.
// Off by default; discussion threads come from the comment aggregator.
func WithComments() Option {
	return func(e *Extractor) {
		e.includeComments = true
	}
}

// NewExtractor creates a new Extractor.
func NewExtractor(opts ...Option) *Extractor {
	e := &Extractor{}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract processes raw HTML and returns the main content.
func (e *Extractor) Extract(rawHTML string) (*digest.ExtractResult, error) {
	return e.ExtractFromURL(rawHTML, "")
}

// ExtractFromURL is like Extract but passes the origin URL through to the
// extraction heuristics, which improves metadata detection.
func (e *Extractor) ExtractFromURL(rawHTML, originalURL string) (*digest.ExtractResult, error) {
	if strings.TrimSpace(rawHTML) == "" {
		return nil, digest.Errorf(digest.EINVALID, "empty HTML input")
	}

	opts := trafilatura.Options{
		EnableFallback:  true,
		ExcludeComments: !e.includeComments,
	}
	if originalURL != "" {
		if u, err := url.Parse(originalURL); err == nil {
			opts.OriginalURL = u
		}
	}

	result, err := trafilatura.Extract(strings.NewReader(rawHTML), opts)
	if err != nil {
		return nil, digest.Errorf(digest.EINVALID, "no extractable content: %v", err)
	}

	var contentHTML string
	if result.ContentNode != nil {
		contentHTML, err = renderNode(result.ContentNode)
		if err != nil {
			return nil, err
		}
	}
	if strings.TrimSpace(contentHTML) == "" {
		return nil, digest.Errorf(digest.EINVALID, "no extractable content")
	}

	return &digest.ExtractResult{
		Title:       result.Metadata.Title,
		ContentHTML: contentHTML,
	}, nil
}

// renderNode converts an html.Node back to markup.
func renderNode(n *html.Node) (string, error) {
	var buf bytes.Buffer
	if err := html.Render(&buf, n); err != nil {
		return "", err
	}
	return buf.String(), nil
}
