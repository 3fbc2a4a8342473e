package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/fwojciec/digest"
)

// Compile-time interface verification.
var _ digest.ReportService = (*ReportService)(nil)

// ReportService implements digest.ReportService using SQLite.
type ReportService struct {
	db *DB
}

// NewReportService creates a new ReportService.
func NewReportService(db *DB) *ReportService {
	return &ReportService{db: db}
}

// CreateReport records a generated report.
func (s *ReportService) CreateReport(ctx context.Context, report *digest.Report) error {
	if report.ReportFile == "" {
		return digest.Errorf(digest.EINVALID, "report file required")
	}

	report.CreatedAt = time.Now().UTC()

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO reports (source, report_file, audio_report_file, created_at)
		VALUES (?, ?, ?, ?)
	`, report.SourceID, report.ReportFile, report.AudioReportFile,
		report.CreatedAt.Format(time.RFC3339))

	if err != nil {
		return err
	}

	report.ID, err = result.LastInsertId()
	return err
}

// FindLatestReport retrieves the most recent report for a source.
func (s *ReportService) FindLatestReport(ctx context.Context, sourceID int64) (*digest.Report, error) {
	var report digest.Report
	var createdAt string

	err := s.db.QueryRowContext(ctx, `
		SELECT id, source, report_file, audio_report_file, created_at
		FROM reports
		WHERE source = ?
		ORDER BY id DESC
		LIMIT 1
	`, sourceID).Scan(&report.ID, &report.SourceID, &report.ReportFile,
		&report.AudioReportFile, &createdAt)

	if err == sql.ErrNoRows {
		return nil, digest.Errorf(digest.ENOTFOUND, "no reports for source")
	}
	if err != nil {
		return nil, err
	}

	var parseErr error
	report.CreatedAt, parseErr = time.Parse(time.RFC3339, createdAt)
	if parseErr != nil {
		return nil, fmt.Errorf("failed to parse created_at: %w", parseErr)
	}

	return &report, nil
}
