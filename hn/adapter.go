package hn

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/fwojciec/digest"
)

// Ensure FrontPageAdapter implements digest.SourceAdapter at compile time.
var _ digest.SourceAdapter = (*FrontPageAdapter)(nil)

// FrontPageAdapter produces candidate items from the Hacker News front
// page. Stories without an external URL (Ask HN, Show HN text posts) point
// at their own discussion page.
type FrontPageAdapter struct {
	client  *http.Client
	baseURL string
}

// AdapterOption configures a FrontPageAdapter.
type AdapterOption func(*FrontPageAdapter)

// WithAdapterBaseURL overrides the API endpoint. Useful for testing.
func WithAdapterBaseURL(baseURL string) AdapterOption {
	return func(a *FrontPageAdapter) {
		a.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithAdapterHTTPClient overrides the HTTP client.
func WithAdapterHTTPClient(client *http.Client) AdapterOption {
	return func(a *FrontPageAdapter) {
		a.client = client
	}
}

// NewFrontPageAdapter creates a FrontPageAdapter.
func NewFrontPageAdapter(opts ...AdapterOption) *FrontPageAdapter {
	a := &FrontPageAdapter{
		client:  &http.Client{Timeout: 30 * time.Second},
		baseURL: DefaultBaseURL,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

type searchResponse struct {
	Hits []searchHit `json:"hits"`
}

type searchHit struct {
	ObjectID  string `json:"objectID"`
	Title     string `json:"title"`
	URL       string `json:"url"`
	CreatedAt string `json:"created_at"`
}

// Produce returns the current front page as candidate items.
func (a *FrontPageAdapter) Produce(ctx context.Context) ([]digest.CandidateItem, error) {
	u := fmt.Sprintf("%s/search?tags=front_page", a.baseURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, digest.Errorf(digest.EINTERNAL, "build request: %v", err)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, digest.Errorf(digest.EUNAVAILABLE, "fetch front page: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, digest.Errorf(digest.EUNAVAILABLE, "HTTP %d from front page search", resp.StatusCode)
	}

	var sr searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return nil, digest.Errorf(digest.EUNAVAILABLE, "decode front page: %v", err)
	}

	items := make([]digest.CandidateItem, 0, len(sr.Hits))
	for _, hit := range sr.Hits {
		commentsURL := fmt.Sprintf("https://news.ycombinator.com/item?id=%s", hit.ObjectID)
		url := hit.URL
		if url == "" {
			url = commentsURL
		}
		items = append(items, digest.CandidateItem{
			URL:           url,
			Title:         hit.Title,
			PublishedDate: hit.CreatedAt,
			CommentsURL:   commentsURL,
		})
	}

	return items, nil
}
