package digest

import (
	"context"
	"time"
)

// Source is a named content origin with its own discovery mechanism and
// activation flag.
type Source struct {
	ID             int64     `json:"id"`
	Name           string    `json:"name"`
	CrawlerCommand string    `json:"crawlerCommand"`
	FeedURL        string    `json:"feedUrl"`
	Active         bool      `json:"active"`
	MediaPath      string    `json:"mediaPath"`
	CreatedAt      time.Time `json:"createdAt"`
}

// Validate returns an error if the source contains invalid fields.
func (s *Source) Validate() error {
	if s.Name == "" {
		return Errorf(EINVALID, "source name required")
	}
	return nil
}

// SourceService represents a service for managing sources.
type SourceService interface {
	// CreateSource creates a new source.
	// Returns ECONFLICT if a source with the same name exists.
	CreateSource(ctx context.Context, source *Source) error

	// FindSourceByID retrieves a source by ID.
	// Returns ENOTFOUND if the source does not exist.
	FindSourceByID(ctx context.Context, id int64) (*Source, error)

	// FindSourceByName retrieves a source by name.
	// Returns ENOTFOUND if the source does not exist.
	FindSourceByName(ctx context.Context, name string) (*Source, error)

	// FindSources retrieves sources matching the filter.
	FindSources(ctx context.Context, filter SourceFilter) ([]*Source, error)

	// UpdateSource updates an existing source.
	// Returns ENOTFOUND if the source does not exist.
	UpdateSource(ctx context.Context, id int64, upd SourceUpdate) (*Source, error)

	// DeleteSource permanently removes a source.
	// Returns ENOTFOUND if the source does not exist.
	DeleteSource(ctx context.Context, id int64) error
}

// SourceFilter represents a filter for FindSources.
type SourceFilter struct {
	ID     *int64  `json:"id"`
	Name   *string `json:"name"`
	Active *bool   `json:"active"`

	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

// SourceUpdate represents fields that can be updated on a source.
type SourceUpdate struct {
	Name           *string `json:"name"`
	CrawlerCommand *string `json:"crawlerCommand"`
	FeedURL        *string `json:"feedUrl"`
	Active         *bool   `json:"active"`
	MediaPath      *string `json:"mediaPath"`
}
