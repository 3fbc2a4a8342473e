package pipeline

import (
	"context"
	"log/slog"
	"strconv"
	"sync"

	"github.com/fwojciec/digest"
)

// AdapterResolver maps a source to the discovery adapter that produces its
// candidate items. Resolution failure is a source-fatal error.
type AdapterResolver func(source *digest.Source) (digest.SourceAdapter, error)

// RunOptions control one source run.
type RunOptions struct {
	// Limit caps how many candidates are processed. Zero means no limit.
	Limit int

	// Debug persists raw normalized text for inspection.
	Debug bool
}

// Runner executes the pipeline for whole sources: discovery, batch
// processing, store insertion, then best-effort reporting and publishing.
type Runner struct {
	orchestrator *Orchestrator
	sources      digest.SourceService
	articles     digest.ArticleService
	resolve      AdapterResolver
	reports      digest.ReportGenerator
	publisher    digest.Publisher
	logger       *slog.Logger

	// Concurrent runs of the same source would race each other's dedup
	// pre-checks, so they are serialized per source ID.
	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithReportGenerator enables report generation after a run that persisted
// new articles.
func WithReportGenerator(g digest.ReportGenerator) RunnerOption {
	return func(r *Runner) {
		r.reports = g
	}
}

// WithPublisher enables publishing of generated reports.
func WithPublisher(p digest.Publisher) RunnerOption {
	return func(r *Runner) {
		r.publisher = p
	}
}

// WithRunnerLogger sets the logger.
func WithRunnerLogger(logger *slog.Logger) RunnerOption {
	return func(r *Runner) {
		r.logger = logger
	}
}

// NewRunner creates a Runner from its required collaborators.
func NewRunner(orchestrator *Orchestrator, sources digest.SourceService, articles digest.ArticleService, resolve AdapterResolver, opts ...RunnerOption) *Runner {
	r := &Runner{
		orchestrator: orchestrator,
		sources:      sources,
		articles:     articles,
		resolve:      resolve,
		logger:       slog.Default(),
		locks:        make(map[int64]*sync.Mutex),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes the pipeline for a source referenced by numeric ID or name.
func (r *Runner) Run(ctx context.Context, ref string, opts RunOptions) error {
	var source *digest.Source
	var err error

	if id, parseErr := strconv.ParseInt(ref, 10, 64); parseErr == nil {
		source, err = r.sources.FindSourceByID(ctx, id)
	} else {
		source, err = r.sources.FindSourceByName(ctx, ref)
	}
	if err != nil {
		return err
	}

	return r.RunSource(ctx, source, opts)
}

// RunAll executes the pipeline for every active source, continuing past
// per-source failures. It returns how many sources succeeded and failed.
func (r *Runner) RunAll(ctx context.Context, opts RunOptions) (ok, failed int) {
	active := true
	sources, err := r.sources.FindSources(ctx, digest.SourceFilter{Active: &active})
	if err != nil {
		r.logger.Error("listing active sources failed", "err", err)
		return 0, 0
	}

	for _, source := range sources {
		if err := r.RunSource(ctx, source, opts); err != nil {
			r.logger.Error("source run failed", "source", source.Name, "err", err)
			failed++
			continue
		}
		ok++
	}

	return ok, failed
}

// RunSource executes the pipeline for one source. Zero new articles after
// dedup is a successful run; only discovery failures are source-fatal.
func (r *Runner) RunSource(ctx context.Context, source *digest.Source, opts RunOptions) error {
	lock := r.sourceLock(source.ID)
	lock.Lock()
	defer lock.Unlock()

	adapter, err := r.resolve(source)
	if err != nil {
		return err
	}

	items, err := adapter.Produce(ctx)
	if err != nil {
		return err
	}

	report := r.orchestrator.ProcessBatch(ctx, items, source, BatchOptions{
		Limit: opts.Limit,
		Debug: opts.Debug,
	})

	persisted := r.storeArticles(ctx, report)

	r.logger.Info("source run complete",
		"source", source.Name, "run", report.RunID,
		"candidates", len(items), "persisted", len(persisted),
		"skipped", len(report.Skipped)+len(report.Articles)-len(persisted))

	if len(persisted) > 0 {
		r.publishReports(ctx, source, persisted)
	}

	return nil
}

// storeArticles inserts the batch results one at a time. A duplicate URL
// means another run won the race, which is a skip, not a failure.
func (r *Runner) storeArticles(ctx context.Context, report *BatchReport) []*digest.Article {
	var persisted []*digest.Article
	for _, article := range report.Articles {
		if err := r.articles.CreateArticle(ctx, article); err != nil {
			stage := StageStore
			if digest.ErrorCode(err) == digest.ECONFLICT {
				stage = StageDedup
			}
			r.logger.Info("article not stored", "url", article.URL, "stage", stage, "err", err)
			report.Skipped = append(report.Skipped, SkippedItem{
				Item:  digest.CandidateItem{URL: article.URL, Title: article.Title},
				Stage: stage,
				Err:   err,
			})
			continue
		}
		persisted = append(persisted, article)
	}
	return persisted
}

// publishReports generates and publishes reports for newly persisted
// articles. Both steps are best-effort and never change the run outcome.
func (r *Runner) publishReports(ctx context.Context, source *digest.Source, persisted []*digest.Article) {
	if r.reports == nil {
		return
	}

	paths, err := r.reports.GenerateReport(ctx, persisted, source.ID)
	if err != nil {
		r.logger.Error("report generation failed", "source", source.Name, "err", err)
		return
	}

	if r.publisher == nil {
		return
	}
	for sourceName, path := range paths {
		if err := r.publisher.PublishReport(ctx, path, sourceName, source.MediaPath); err != nil {
			r.logger.Error("report publish failed", "source", sourceName, "report", path, "err", err)
		}
	}
}

// sourceLock returns the mutex serializing runs of one source.
func (r *Runner) sourceLock(id int64) *sync.Mutex {
	r.mu.Lock()
	defer r.mu.Unlock()

	lock, ok := r.locks[id]
	if !ok {
		lock = &sync.Mutex{}
		r.locks[id] = lock
	}
	return lock
}
