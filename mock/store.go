package mock

import (
	"context"

	"github.com/fwojciec/digest"
)

var _ digest.SourceService = (*SourceService)(nil)

// SourceService is a mock implementation of digest.SourceService.
type SourceService struct {
	CreateSourceFn     func(ctx context.Context, source *digest.Source) error
	FindSourceByIDFn   func(ctx context.Context, id int64) (*digest.Source, error)
	FindSourceByNameFn func(ctx context.Context, name string) (*digest.Source, error)
	FindSourcesFn      func(ctx context.Context, filter digest.SourceFilter) ([]*digest.Source, error)
	UpdateSourceFn     func(ctx context.Context, id int64, upd digest.SourceUpdate) (*digest.Source, error)
	DeleteSourceFn     func(ctx context.Context, id int64) error
}

func (m *SourceService) CreateSource(ctx context.Context, source *digest.Source) error {
	return m.CreateSourceFn(ctx, source)
}

func (m *SourceService) FindSourceByID(ctx context.Context, id int64) (*digest.Source, error) {
	return m.FindSourceByIDFn(ctx, id)
}

func (m *SourceService) FindSourceByName(ctx context.Context, name string) (*digest.Source, error) {
	return m.FindSourceByNameFn(ctx, name)
}

func (m *SourceService) FindSources(ctx context.Context, filter digest.SourceFilter) ([]*digest.Source, error) {
	return m.FindSourcesFn(ctx, filter)
}

func (m *SourceService) UpdateSource(ctx context.Context, id int64, upd digest.SourceUpdate) (*digest.Source, error) {
	return m.UpdateSourceFn(ctx, id, upd)
}

func (m *SourceService) DeleteSource(ctx context.Context, id int64) error {
	return m.DeleteSourceFn(ctx, id)
}

var _ digest.ArticleService = (*ArticleService)(nil)

// ArticleService is a mock implementation of digest.ArticleService.
type ArticleService struct {
	CreateArticleFn    func(ctx context.Context, article *digest.Article) error
	FindArticleByURLFn func(ctx context.Context, url string) (*digest.Article, error)
	FindArticlesFn     func(ctx context.Context, filter digest.ArticleFilter) ([]*digest.Article, error)
	UpdateArticleFn    func(ctx context.Context, id int64, upd digest.ArticleUpdate) (*digest.Article, error)
	DeleteArticleFn    func(ctx context.Context, id int64) error
}

func (m *ArticleService) CreateArticle(ctx context.Context, article *digest.Article) error {
	return m.CreateArticleFn(ctx, article)
}

func (m *ArticleService) FindArticleByURL(ctx context.Context, url string) (*digest.Article, error) {
	return m.FindArticleByURLFn(ctx, url)
}

func (m *ArticleService) FindArticles(ctx context.Context, filter digest.ArticleFilter) ([]*digest.Article, error) {
	return m.FindArticlesFn(ctx, filter)
}

func (m *ArticleService) UpdateArticle(ctx context.Context, id int64, upd digest.ArticleUpdate) (*digest.Article, error) {
	return m.UpdateArticleFn(ctx, id, upd)
}

func (m *ArticleService) DeleteArticle(ctx context.Context, id int64) error {
	return m.DeleteArticleFn(ctx, id)
}

var _ digest.ReportService = (*ReportService)(nil)

// ReportService is a mock implementation of digest.ReportService.
type ReportService struct {
	CreateReportFn     func(ctx context.Context, report *digest.Report) error
	FindLatestReportFn func(ctx context.Context, sourceID int64) (*digest.Report, error)
}

func (m *ReportService) CreateReport(ctx context.Context, report *digest.Report) error {
	return m.CreateReportFn(ctx, report)
}

func (m *ReportService) FindLatestReport(ctx context.Context, sourceID int64) (*digest.Report, error) {
	return m.FindLatestReportFn(ctx, sourceID)
}
