// Package mock provides mock implementations of the service interfaces for
// testing.
package mock

import (
	"context"

	"github.com/fwojciec/digest"
)

var _ digest.Normalizer = (*Normalizer)(nil)

// Normalizer is a mock implementation of digest.Normalizer.
type Normalizer struct {
	NormalizeFn func(ctx context.Context, url string) (string, error)
}

func (m *Normalizer) Normalize(ctx context.Context, url string) (string, error) {
	return m.NormalizeFn(ctx, url)
}

var _ digest.CommentService = (*CommentService)(nil)

// CommentService is a mock implementation of digest.CommentService.
type CommentService struct {
	FetchCommentsFn func(ctx context.Context, commentsURL string) (string, error)
}

func (m *CommentService) FetchComments(ctx context.Context, commentsURL string) (string, error) {
	return m.FetchCommentsFn(ctx, commentsURL)
}

var _ digest.Converter = (*Converter)(nil)

// Converter is a mock implementation of digest.Converter.
type Converter struct {
	ConvertFn func(html string) (string, error)
}

func (m *Converter) Convert(html string) (string, error) {
	return m.ConvertFn(html)
}

var _ digest.Extractor = (*Extractor)(nil)

// Extractor is a mock implementation of digest.Extractor.
type Extractor struct {
	ExtractFn func(rawHTML string) (*digest.ExtractResult, error)
}

func (m *Extractor) Extract(rawHTML string) (*digest.ExtractResult, error) {
	return m.ExtractFn(rawHTML)
}

var _ digest.Summarizer = (*Summarizer)(nil)

// Summarizer is a mock implementation of digest.Summarizer.
type Summarizer struct {
	SummarizeFn func(ctx context.Context, content, comments string) (string, error)
}

func (m *Summarizer) Summarize(ctx context.Context, content, comments string) (string, error) {
	return m.SummarizeFn(ctx, content, comments)
}

var _ digest.HostLimiter = (*HostLimiter)(nil)

// HostLimiter is a mock implementation of digest.HostLimiter.
type HostLimiter struct {
	WaitFn func(ctx context.Context, host string) error
}

func (m *HostLimiter) Wait(ctx context.Context, host string) error {
	return m.WaitFn(ctx, host)
}
