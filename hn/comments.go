// Package hn talks to the Algolia Hacker News API. It provides the comment
// aggregation service for discussion threads and a source adapter for the
// front page.
package hn

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/fwojciec/digest"
)

// DefaultBaseURL is the Algolia Hacker News API endpoint.
const DefaultBaseURL = "https://hn.algolia.com/api/v1"

// MaxCommentDepth bounds how deep the comment tree is walked. Threads nest
// deeply but rarely usefully; replies below this depth are dropped.
const MaxCommentDepth = 64

// itemURLRe matches a Hacker News discussion URL and captures the item ID.
var itemURLRe = regexp.MustCompile(`news\.ycombinator\.com/item\?id=(\d+)`)

// Ensure CommentService implements digest.CommentService at compile time.
var _ digest.CommentService = (*CommentService)(nil)

// CommentService fetches a discussion thread and flattens it into indented
// plain text. URLs that are not Hacker News discussions are delegated to
// the fallback normalizer when one is configured.
type CommentService struct {
	client    *http.Client
	baseURL   string
	converter digest.Converter
	fallback  digest.Normalizer
}

// Option configures a CommentService.
type Option func(*CommentService)

// WithBaseURL overrides the API endpoint. Useful for testing.
func WithBaseURL(baseURL string) Option {
	return func(s *CommentService) {
		s.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithFallback sets the normalizer used for comments URLs that are not
// Hacker News discussions.
func WithFallback(n digest.Normalizer) Option {
	return func(s *CommentService) {
		s.fallback = n
	}
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(s *CommentService) {
		s.client = client
	}
}

// NewCommentService creates a CommentService. The converter turns comment
// HTML into plain text.
func NewCommentService(converter digest.Converter, opts ...Option) *CommentService {
	s := &CommentService{
		client:    &http.Client{Timeout: 30 * time.Second},
		baseURL:   DefaultBaseURL,
		converter: converter,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// item is the Algolia item tree: the story at the root, comments below.
type item struct {
	Author   string  `json:"author"`
	Text     string  `json:"text"`
	Children []*item `json:"children"`
}

// FetchComments returns the flattened discussion for a comments URL. A
// thread with no comments is an empty string, not an error.
func (s *CommentService) FetchComments(ctx context.Context, commentsURL string) (string, error) {
	m := itemURLRe.FindStringSubmatch(commentsURL)
	if m == nil {
		if s.fallback != nil {
			return s.fallback.Normalize(ctx, commentsURL)
		}
		return "", digest.Errorf(digest.EINVALID, "not a Hacker News discussion URL: %s", commentsURL)
	}

	root, err := s.fetchItem(ctx, m[1])
	if err != nil {
		return "", err
	}

	return s.flatten(root), nil
}

// fetchItem retrieves the full item tree for a story ID.
func (s *CommentService) fetchItem(ctx context.Context, id string) (*item, error) {
	u := fmt.Sprintf("%s/items/%s", s.baseURL, id)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, digest.Errorf(digest.EINTERNAL, "build request: %v", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, digest.Errorf(digest.EUNAVAILABLE, "fetch item %s: %v", id, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, digest.Errorf(digest.EUNAVAILABLE, "HTTP %d for item %s", resp.StatusCode, id)
	}

	var root item
	if err := json.NewDecoder(resp.Body).Decode(&root); err != nil {
		return nil, digest.Errorf(digest.EUNAVAILABLE, "decode item %s: %v", id, err)
	}

	return &root, nil
}

// frame is one pending node in the iterative traversal.
type frame struct {
	node  *item
	depth int
}

// flatten walks the item tree in display order and renders one indented
// line block per node. The story root is depth 0 and shows up only when it
// carries text (Ask HN posts); comments sit one level below it.
func (s *CommentService) flatten(root *item) string {
	stack := []frame{{node: root, depth: 0}}

	var blocks []string
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if block, ok := s.renderComment(f.node, f.depth); ok {
			blocks = append(blocks, block)
		}

		if f.depth >= MaxCommentDepth {
			continue
		}
		for i := len(f.node.Children) - 1; i >= 0; i-- {
			stack = append(stack, frame{node: f.node.Children[i], depth: f.depth + 1})
		}
	}

	return strings.Join(blocks, "\n\n")
}

// renderComment formats a single comment. Deleted comments (no text) are
// skipped, and a missing author renders as anonymous.
func (s *CommentService) renderComment(n *item, depth int) (string, bool) {
	if strings.TrimSpace(n.Text) == "" {
		return "", false
	}

	text, err := s.converter.Convert(n.Text)
	if err != nil {
		text = n.Text
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", false
	}

	author := n.Author
	if author == "" {
		author = "anonymous"
	}

	indent := strings.Repeat("  ", depth)
	return fmt.Sprintf("%s[%s]: %s", indent, author, text), true
}
