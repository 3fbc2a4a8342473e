package digest

import (
	"context"
	"time"
)

// Article is the durable record of one processed item. It is created once
// per unique URL and immutable afterwards, except for an attached audio or
// report linkage.
type Article struct {
	ID               int64     `json:"id"`
	URL              string    `json:"url"`
	Title            string    `json:"title"`
	SourceID         int64     `json:"sourceId"`
	AbstractFile     string    `json:"abstractFile"`
	AudioFile        string    `json:"audioFile,omitempty"`
	ContentHash      string    `json:"contentHash"`
	PublishTimestamp int64     `json:"publishTimestamp"`
	CreatedAt        time.Time `json:"createdAt"`
}

// Validate returns an error if the article contains invalid fields.
func (a *Article) Validate() error {
	if a.URL == "" {
		return Errorf(EINVALID, "article URL required")
	}
	if a.Title == "" {
		return Errorf(EINVALID, "article title required")
	}
	if a.AbstractFile == "" {
		return Errorf(EINVALID, "article abstract file required")
	}
	return nil
}

// ArticleService represents a service for managing persisted articles.
// URL uniqueness is enforced at this layer; the orchestrator additionally
// pre-checks with FindArticleByURL to avoid wasted fetch and summarize work.
type ArticleService interface {
	// CreateArticle creates a new article.
	// Returns ECONFLICT if an article with the same URL already exists.
	CreateArticle(ctx context.Context, article *Article) error

	// FindArticleByURL retrieves an article by URL.
	// Returns ENOTFOUND if the article does not exist.
	FindArticleByURL(ctx context.Context, url string) (*Article, error)

	// FindArticles retrieves articles matching the filter, newest first.
	FindArticles(ctx context.Context, filter ArticleFilter) ([]*Article, error)

	// UpdateArticle attaches updated metadata to an existing article.
	// Returns ENOTFOUND if the article does not exist.
	UpdateArticle(ctx context.Context, id int64, upd ArticleUpdate) (*Article, error)

	// DeleteArticle permanently removes an article.
	// Returns ENOTFOUND if the article does not exist.
	DeleteArticle(ctx context.Context, id int64) error
}

// ArticleFilter represents a filter for FindArticles. Since and Until are
// epoch-second bounds on the publish timestamp, inclusive and exclusive
// respectively.
type ArticleFilter struct {
	SourceID *int64  `json:"sourceId"`
	URL      *string `json:"url"`
	Since    *int64  `json:"since"`
	Until    *int64  `json:"until"`

	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

// ArticleUpdate represents fields that can be updated on an article.
type ArticleUpdate struct {
	Title        *string `json:"title"`
	AbstractFile *string `json:"abstractFile"`
	AudioFile    *string `json:"audioFile"`
}
