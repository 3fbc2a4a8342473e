package digest

import "context"

// MaxContentLength caps normalized content passed to summarization,
// in characters.
const MaxContentLength = 120000

// Normalizer fetches a URL and returns clean plain text regardless of the
// source format (HTML, PDF, plain text). The result is never empty: an
// empty-after-normalization document is an EUNAVAILABLE error, and output
// longer than MaxContentLength is truncated.
type Normalizer interface {
	Normalize(ctx context.Context, url string) (string, error)
}

// HostLimiter throttles outbound requests per host.
type HostLimiter interface {
	// Wait blocks until the rate limit allows a request to the host.
	// Returns an error if the context is canceled before the wait completes.
	Wait(ctx context.Context, host string) error
}
