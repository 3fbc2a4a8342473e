// Package rss produces candidate items from RSS and Atom feeds.
package rss

import (
	"context"
	"time"

	"github.com/fwojciec/digest"
	"github.com/mmcdole/gofeed"
)

// Ensure Adapter implements digest.SourceAdapter at compile time.
var _ digest.SourceAdapter = (*Adapter)(nil)

// Adapter polls a feed URL and maps its entries to candidate items.
type Adapter struct {
	feedURL string
	parser  *gofeed.Parser
}

// NewAdapter creates an Adapter for the given feed URL.
func NewAdapter(feedURL string) *Adapter {
	return &Adapter{
		feedURL: feedURL,
		parser:  gofeed.NewParser(),
	}
}

// Produce fetches and parses the feed. An unreachable or empty feed is a
// source-fatal error.
func (a *Adapter) Produce(ctx context.Context) ([]digest.CandidateItem, error) {
	if a.feedURL == "" {
		return nil, digest.Errorf(digest.EINVALID, "feed URL required")
	}

	feed, err := a.parser.ParseURLWithContext(a.feedURL, ctx)
	if err != nil {
		return nil, digest.Errorf(digest.EUNAVAILABLE, "fetch feed %s: %v", a.feedURL, err)
	}
	if len(feed.Items) == 0 {
		return nil, digest.Errorf(digest.EINVALID, "feed %s has no items", a.feedURL)
	}

	items := make([]digest.CandidateItem, 0, len(feed.Items))
	for _, entry := range feed.Items {
		items = append(items, digest.CandidateItem{
			URL:           entry.Link,
			Title:         entry.Title,
			PublishedDate: publishedDate(entry),
		})
	}

	return items, nil
}

// publishedDate normalizes an entry's timestamp to RFC 3339, preferring the
// parsed publish time, then the update time, then the raw string.
func publishedDate(entry *gofeed.Item) string {
	if entry.PublishedParsed != nil {
		return entry.PublishedParsed.UTC().Format(time.RFC3339)
	}
	if entry.UpdatedParsed != nil {
		return entry.UpdatedParsed.UTC().Format(time.RFC3339)
	}
	return entry.Published
}
