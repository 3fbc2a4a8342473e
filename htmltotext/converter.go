// Package htmltotext converts HTML markup to plain text suitable for
// summarization: links, images, emphasis markers and tables are discarded
// and line width is unconstrained.
package htmltotext

import (
	"regexp"
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/digest"
)

// Ensure Converter implements digest.Converter at compile time.
var _ digest.Converter = (*Converter)(nil)

// Converter flattens HTML to plain text. It removes non-prose elements with
// goquery, converts the remaining markup with html-to-markdown, and strips
// the markdown syntax from the result.
type Converter struct {
	conv *converter.Converter
}

// NewConverter creates a new Converter.
func NewConverter() *Converter {
	conv := converter.NewConverter(
		converter.WithPlugins(
			base.NewBasePlugin(),
			commonmark.NewCommonmarkPlugin(),
		),
	)
	return &Converter{conv: conv}
}

// Convert transforms HTML content into plain text.
func (c *Converter) Convert(html string) (string, error) {
	if strings.TrimSpace(html) == "" {
		return "", digest.Errorf(digest.EINVALID, "empty HTML input")
	}

	cleaned, err := dropNonProse(html)
	if err != nil {
		return "", err
	}

	md, err := c.conv.ConvertString(cleaned)
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(stripMarkdown(md)), nil
}

// dropNonProse removes elements that carry no readable prose.
func dropNonProse(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", digest.Errorf(digest.EINVALID, "unparseable HTML: %v", err)
	}

	doc.Find("table, img, figure, picture, svg, script, style, noscript, iframe, form").Remove()

	out, err := doc.Html()
	if err != nil {
		return "", err
	}
	return out, nil
}

var (
	imageRe      = regexp.MustCompile(`!\[[^\]]*\]\([^)]*\)`)
	linkRe       = regexp.MustCompile(`\[([^\]]*)\]\([^)]*\)`)
	headingRe    = regexp.MustCompile(`(?m)^#{1,6}[ \t]+`)
	blockquoteRe = regexp.MustCompile(`(?m)^>[ \t]?`)
	hruleRe      = regexp.MustCompile(`(?m)^(\*\s*){3,}$|^(-\s*){3,}$|^(_\s*){3,}$`)
)

// stripMarkdown removes the markdown syntax html-to-markdown produces,
// leaving the text content. Escaped literal asterisks in the source are
// preserved.
func stripMarkdown(md string) string {
	md = hruleRe.ReplaceAllString(md, "")
	md = imageRe.ReplaceAllString(md, "")
	md = linkRe.ReplaceAllString(md, "$1")
	md = headingRe.ReplaceAllString(md, "")
	md = blockquoteRe.ReplaceAllString(md, "")

	// Emphasis markers come out as * or **; literal asterisks are escaped.
	md = strings.ReplaceAll(md, `\*`, "\x00")
	md = strings.ReplaceAll(md, "*", "")
	md = strings.ReplaceAll(md, "\x00", "*")

	// Drop remaining escape backslashes in front of punctuation.
	md = unescapeRe.ReplaceAllString(md, "$1")

	return md
}

var unescapeRe = regexp.MustCompile(`\\([\\` + "`" + `_{}\[\]()#+.!>~|-])`)
