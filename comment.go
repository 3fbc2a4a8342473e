package digest

import "context"

// CommentNode is one node of a nested discussion tree. Missing fields are
// empty values, never errors. The tree is ephemeral; it is flattened to
// text before anything is persisted.
type CommentNode struct {
	Author   string        `json:"author"`
	Text     string        `json:"text"`
	Children []CommentNode `json:"children"`
}

// CommentService resolves a discussion URL into flattened comment text.
// Comments are an optional enrichment: callers treat any error as empty
// text and never fail an item over it.
type CommentService interface {
	FetchComments(ctx context.Context, commentsURL string) (string, error)
}
