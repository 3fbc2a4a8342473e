package digest

import (
	"context"
	"time"
)

// Report records one generated digest report for a source.
type Report struct {
	ID              int64     `json:"id"`
	SourceID        int64     `json:"sourceId"`
	ReportFile      string    `json:"reportFile"`
	AudioReportFile string    `json:"audioReportFile,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
}

// ReportService represents a service for managing report records.
type ReportService interface {
	// CreateReport records a generated report.
	CreateReport(ctx context.Context, report *Report) error

	// FindLatestReport retrieves the most recent report for a source.
	// Returns ENOTFOUND if the source has no reports.
	FindLatestReport(ctx context.Context, sourceID int64) (*Report, error)
}

// ReportGenerator renders a digest report from a batch of newly persisted
// articles. The result maps source name to the generated report path; a
// source with no articles produces no entry.
type ReportGenerator interface {
	GenerateReport(ctx context.Context, articles []*Article, sourceID int64) (map[string]string, error)
}

// Publisher pushes a generated report to an external channel. Publishing is
// best-effort from the pipeline's point of view: a publish failure is
// logged by the caller and never changes a run's outcome.
type Publisher interface {
	PublishReport(ctx context.Context, reportPath, sourceName, mediaPath string) error
}
