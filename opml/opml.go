// Package opml imports feed subscription lists in OPML format as sources.
package opml

import (
	"os"

	"github.com/beevik/etree"
	"github.com/fwojciec/digest"
)

// Parse extracts feed outlines from an OPML document. Every outline with an
// xmlUrl attribute becomes an inactive source; activation is an explicit
// step after import.
func Parse(data []byte) ([]*digest.Source, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, digest.Errorf(digest.EINVALID, "malformed OPML: %v", err)
	}

	root := doc.SelectElement("opml")
	if root == nil {
		return nil, digest.Errorf(digest.EINVALID, "not an OPML document")
	}

	outlines := root.FindElements("//outline[@xmlUrl]")
	if len(outlines) == 0 {
		return nil, digest.Errorf(digest.EINVALID, "OPML document contains no feeds")
	}

	sources := make([]*digest.Source, 0, len(outlines))
	for _, el := range outlines {
		name := el.SelectAttrValue("title", "")
		if name == "" {
			name = el.SelectAttrValue("text", "")
		}
		feedURL := el.SelectAttrValue("xmlUrl", "")
		if name == "" || feedURL == "" {
			continue
		}

		sources = append(sources, &digest.Source{
			Name:    name,
			FeedURL: feedURL,
		})
	}

	if len(sources) == 0 {
		return nil, digest.Errorf(digest.EINVALID, "OPML document contains no usable feeds")
	}

	return sources, nil
}

// ParseFile is like Parse but reads the document from disk.
func ParseFile(path string) ([]*digest.Source, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, digest.Errorf(digest.ENOTFOUND, "read OPML file %s: %v", path, err)
	}
	return Parse(data)
}
