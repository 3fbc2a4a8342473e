package mock

import (
	"context"

	"github.com/fwojciec/digest"
)

var _ digest.ReportGenerator = (*ReportGenerator)(nil)

// ReportGenerator is a mock implementation of digest.ReportGenerator.
type ReportGenerator struct {
	GenerateReportFn func(ctx context.Context, articles []*digest.Article, sourceID int64) (map[string]string, error)
}

func (m *ReportGenerator) GenerateReport(ctx context.Context, articles []*digest.Article, sourceID int64) (map[string]string, error) {
	return m.GenerateReportFn(ctx, articles, sourceID)
}

var _ digest.Publisher = (*Publisher)(nil)

// Publisher is a mock implementation of digest.Publisher.
type Publisher struct {
	PublishReportFn func(ctx context.Context, reportPath, sourceName, mediaPath string) error
}

func (m *Publisher) PublishReport(ctx context.Context, reportPath, sourceName, mediaPath string) error {
	return m.PublishReportFn(ctx, reportPath, sourceName, mediaPath)
}

var _ digest.SourceAdapter = (*SourceAdapter)(nil)

// SourceAdapter is a mock implementation of digest.SourceAdapter.
type SourceAdapter struct {
	ProduceFn func(ctx context.Context) ([]digest.CandidateItem, error)
}

func (m *SourceAdapter) Produce(ctx context.Context) ([]digest.CandidateItem, error) {
	return m.ProduceFn(ctx)
}
