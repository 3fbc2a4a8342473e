package digest

import (
	"context"
	"encoding/json"
	"time"
)

// CandidateItem is a single unprocessed item produced by content discovery.
// It exists only for the duration of one batch run.
type CandidateItem struct {
	URL           string `json:"url"`
	Title         string `json:"title"`
	PublishedDate string `json:"published_date"`
	CommentsURL   string `json:"comments_url,omitempty"`
}

// Validate returns an error if a required field is missing.
func (c *CandidateItem) Validate() error {
	if c.URL == "" {
		return Errorf(EINVALID, "candidate URL required")
	}
	if c.Title == "" {
		return Errorf(EINVALID, "candidate title required")
	}
	if c.PublishedDate == "" {
		return Errorf(EINVALID, "candidate published date required")
	}
	return nil
}

// PublishTime parses the published date as ISO-8601, accepting a trailing
// "Z" as UTC. Callers fall back to the current time on error; a bad date
// never invalidates an otherwise valid candidate.
func (c *CandidateItem) PublishTime() (time.Time, error) {
	t, err := time.Parse(time.RFC3339, c.PublishedDate)
	if err != nil {
		return time.Time{}, Errorf(EINVALID, "cannot parse published date %q", c.PublishedDate)
	}
	return t, nil
}

// ParseCandidates decodes a discovery payload into candidate items.
// The payload must be a non-empty JSON array; anything else is a
// source-fatal EINVALID error. Individual malformed items are kept here and
// rejected later by Validate, so that one bad item does not discard the
// whole batch.
func ParseCandidates(data []byte) ([]CandidateItem, error) {
	var items []CandidateItem
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, Errorf(EINVALID, "discovery output is not a JSON array: %v", err)
	}
	if len(items) == 0 {
		return nil, Errorf(EINVALID, "discovery output is empty")
	}
	return items, nil
}

// SourceAdapter produces the candidate items for one source. The adapter's
// discovery mechanism (feed poll, API query, subprocess) is interchangeable
// and opaque to the pipeline.
type SourceAdapter interface {
	Produce(ctx context.Context) ([]CandidateItem, error)
}
