// Package pipeline drives candidate items through the fetch, summarize and
// persist stages, one source at a time.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/fwojciec/digest"
	"github.com/fwojciec/digest/bloom"
	"github.com/google/uuid"
)

// Stage identifies the step at which an item left the pipeline.
type Stage string

const (
	StageValidate  Stage = "validate"
	StageDedup     Stage = "dedup"
	StageFetch     Stage = "fetch"
	StageSummarize Stage = "summarize"
	StageWrite     Stage = "write"
	StageStore     Stage = "store"
)

// SkippedItem records one candidate that did not become an article, with
// the stage where it stopped and the reason.
type SkippedItem struct {
	Item  digest.CandidateItem
	Stage Stage
	Err   error
}

// BatchReport is the structured outcome of one ProcessBatch call. Articles
// preserve candidate order; every input item appears either there or in
// Skipped.
type BatchReport struct {
	RunID    string
	Articles []*digest.Article
	Skipped  []SkippedItem
}

// SkipCount returns the number of items skipped at the given stage.
func (r *BatchReport) SkipCount(stage Stage) int {
	var n int
	for _, s := range r.Skipped {
		if s.Stage == stage {
			n++
		}
	}
	return n
}

// BatchOptions control one ProcessBatch call.
type BatchOptions struct {
	// Limit caps how many candidates are considered, in input order.
	// Zero means no limit.
	Limit int

	// Debug persists raw normalized text before summarization.
	Debug bool
}

// Orchestrator runs candidate items through fetch, comment enrichment,
// summarization and artifact write. Items are processed strictly
// sequentially and fail independently: one bad item never aborts the batch.
type Orchestrator struct {
	normalizer digest.Normalizer
	summarizer digest.Summarizer
	abstracts  digest.AbstractWriter
	comments   digest.CommentService
	raw        digest.RawWriter
	articles   digest.ArticleService
	logger     *slog.Logger
	now        func() time.Time
	newRunID   func() string
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithCommentService enables discussion thread enrichment.
func WithCommentService(c digest.CommentService) Option {
	return func(o *Orchestrator) {
		o.comments = c
	}
}

// WithRawWriter enables debug dumps of pre-summarization text.
func WithRawWriter(w digest.RawWriter) Option {
	return func(o *Orchestrator) {
		o.raw = w
	}
}

// WithArticleService enables the store dedup pre-check, which avoids
// fetching and summarizing items that are already persisted.
func WithArticleService(s digest.ArticleService) Option {
	return func(o *Orchestrator) {
		o.articles = s
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		o.logger = logger
	}
}

// WithNow overrides the clock. Useful for testing.
func WithNow(now func() time.Time) Option {
	return func(o *Orchestrator) {
		o.now = now
	}
}

// WithRunID overrides run ID generation. Useful for testing.
func WithRunID(fn func() string) Option {
	return func(o *Orchestrator) {
		o.newRunID = fn
	}
}

// NewOrchestrator creates an Orchestrator from its required collaborators.
func NewOrchestrator(normalizer digest.Normalizer, summarizer digest.Summarizer, abstracts digest.AbstractWriter, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		normalizer: normalizer,
		summarizer: summarizer,
		abstracts:  abstracts,
		logger:     slog.Default(),
		now:        time.Now,
		newRunID:   func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// ProcessBatch runs the per-item pipeline over the candidates of one
// source. The returned report accounts for every considered item.
func (o *Orchestrator) ProcessBatch(ctx context.Context, items []digest.CandidateItem, source *digest.Source, opts BatchOptions) *BatchReport {
	if opts.Limit > 0 && opts.Limit < len(items) {
		items = items[:opts.Limit]
	}

	report := &BatchReport{RunID: o.newRunID()}
	seen := bloom.NewDefaultSeenFilter()

	for _, item := range items {
		article, skip := o.processItem(ctx, item, source, seen, report.RunID, opts.Debug)
		if skip != nil {
			o.logger.Info("item skipped",
				"run", report.RunID, "source", source.Name, "url", item.URL,
				"stage", skip.Stage, "err", skip.Err)
			report.Skipped = append(report.Skipped, *skip)
			continue
		}
		report.Articles = append(report.Articles, article)
	}

	return report
}

// processItem runs one candidate through all stages. It returns either an
// assembled article or the skip that stopped it.
func (o *Orchestrator) processItem(ctx context.Context, item digest.CandidateItem, source *digest.Source, seen *bloom.SeenFilter, runID string, debug bool) (*digest.Article, *SkippedItem) {
	if err := item.Validate(); err != nil {
		return nil, &SkippedItem{Item: item, Stage: StageValidate, Err: err}
	}

	if seen.MarkSeen(item.URL) {
		return nil, &SkippedItem{Item: item, Stage: StageDedup,
			Err: digest.Errorf(digest.ECONFLICT, "duplicate URL within batch")}
	}

	if o.articles != nil {
		if _, err := o.articles.FindArticleByURL(ctx, item.URL); err == nil {
			return nil, &SkippedItem{Item: item, Stage: StageDedup,
				Err: digest.Errorf(digest.ECONFLICT, "article already persisted")}
		}
	}

	content, err := o.normalizer.Normalize(ctx, item.URL)
	if err != nil {
		return nil, &SkippedItem{Item: item, Stage: StageFetch, Err: err}
	}

	comments := o.fetchComments(ctx, item)

	if debug && o.raw != nil {
		if _, err := o.raw.WriteRaw(ctx, runID, item.Title, content); err != nil {
			o.logger.Warn("debug dump failed", "run", runID, "url", item.URL, "err", err)
		}
	}

	summary, err := o.summarizer.Summarize(ctx, content, comments)
	if err != nil {
		return nil, &SkippedItem{Item: item, Stage: StageSummarize, Err: err}
	}

	timestamp := o.publishTimestamp(item)

	path, err := o.abstracts.WriteAbstract(ctx, summary, source.Name, timestamp, item.Title)
	if err != nil {
		return nil, &SkippedItem{Item: item, Stage: StageWrite, Err: err}
	}

	return &digest.Article{
		URL:              item.URL,
		Title:            item.Title,
		SourceID:         source.ID,
		AbstractFile:     path,
		ContentHash:      hashContent(summary),
		PublishTimestamp: timestamp,
	}, nil
}

// fetchComments enriches an item with its discussion thread. Comments are
// optional: any failure degrades to empty text.
func (o *Orchestrator) fetchComments(ctx context.Context, item digest.CandidateItem) string {
	if item.CommentsURL == "" || o.comments == nil {
		return ""
	}

	text, err := o.comments.FetchComments(ctx, item.CommentsURL)
	if err != nil {
		o.logger.Warn("comment fetch failed", "url", item.CommentsURL, "err", err)
		return ""
	}
	return text
}

// publishTimestamp resolves an item's publish time, falling back to the
// current time when the date does not parse.
func (o *Orchestrator) publishTimestamp(item digest.CandidateItem) int64 {
	t, err := item.PublishTime()
	if err != nil {
		return o.now().Unix()
	}
	return t.Unix()
}

// hashContent computes xxHash of content and returns a hex string.
func hashContent(content string) string {
	return fmt.Sprintf("%016x", xxhash.Sum64String(content))
}
