// Package slog provides logging decorators for digest services.
package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/digest"
)

// Ensure decorators implement the service interfaces at compile time.
var (
	_ digest.Normalizer = (*Normalizer)(nil)
	_ digest.Summarizer = (*Summarizer)(nil)
)

// Normalizer wraps a digest.Normalizer with timing and outcome logs.
type Normalizer struct {
	normalizer digest.Normalizer
	logger     *slog.Logger
}

// NewNormalizer creates a logging decorator around a Normalizer.
func NewNormalizer(normalizer digest.Normalizer, logger *slog.Logger) *Normalizer {
	return &Normalizer{normalizer: normalizer, logger: logger}
}

// Normalize delegates to the wrapped Normalizer.
func (n *Normalizer) Normalize(ctx context.Context, url string) (string, error) {
	start := time.Now()

	text, err := n.normalizer.Normalize(ctx, url)
	if err != nil {
		n.logger.Error("normalize failed", "url", url, "duration", time.Since(start), "err", err)
		return "", err
	}

	n.logger.Info("normalized", "url", url, "chars", len(text), "duration", time.Since(start))
	return text, nil
}

// Summarizer wraps a digest.Summarizer with timing and outcome logs.
type Summarizer struct {
	summarizer digest.Summarizer
	logger     *slog.Logger
}

// NewSummarizer creates a logging decorator around a Summarizer.
func NewSummarizer(summarizer digest.Summarizer, logger *slog.Logger) *Summarizer {
	return &Summarizer{summarizer: summarizer, logger: logger}
}

// Summarize delegates to the wrapped Summarizer.
func (s *Summarizer) Summarize(ctx context.Context, content, comments string) (string, error) {
	start := time.Now()

	text, err := s.summarizer.Summarize(ctx, content, comments)
	if err != nil {
		s.logger.Error("summarize failed", "contentChars", len(content), "duration", time.Since(start), "err", err)
		return "", err
	}

	s.logger.Info("summarized", "contentChars", len(content), "summaryChars", len(text), "duration", time.Since(start))
	return text, nil
}
