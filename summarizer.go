package digest

import "context"

// Summarizer is the external summarization collaborator. It produces a
// reader-facing abstract of the article content, folding in a roundup of
// the discussion when comment text is non-empty. Failures carry a
// human-readable reason and are not retried by the pipeline.
type Summarizer interface {
	Summarize(ctx context.Context, content, comments string) (string, error)
}
