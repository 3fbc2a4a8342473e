package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/fwojciec/digest"
)

// Compile-time interface verification.
var _ digest.SourceService = (*SourceService)(nil)

// SourceService implements digest.SourceService using SQLite.
type SourceService struct {
	db *DB
}

// NewSourceService creates a new SourceService.
func NewSourceService(db *DB) *SourceService {
	return &SourceService{db: db}
}

// CreateSource creates a new source.
func (s *SourceService) CreateSource(ctx context.Context, source *digest.Source) error {
	if err := source.Validate(); err != nil {
		return err
	}

	source.CreatedAt = time.Now().UTC()

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO sources (name, crawler_command, feed_url, actived, media_path, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, source.Name, source.CrawlerCommand, source.FeedURL, source.Active, source.MediaPath,
		source.CreatedAt.Format(time.RFC3339))

	if isUniqueViolation(err) {
		return digest.Errorf(digest.ECONFLICT, "source %q already exists", source.Name)
	}
	if err != nil {
		return err
	}

	source.ID, err = result.LastInsertId()
	return err
}

// FindSourceByID retrieves a source by ID.
func (s *SourceService) FindSourceByID(ctx context.Context, id int64) (*digest.Source, error) {
	return s.findSource(ctx, "id = ?", id)
}

// FindSourceByName retrieves a source by name.
func (s *SourceService) FindSourceByName(ctx context.Context, name string) (*digest.Source, error) {
	return s.findSource(ctx, "name = ?", name)
}

func (s *SourceService) findSource(ctx context.Context, where string, arg any) (*digest.Source, error) {
	var source digest.Source
	var createdAt string

	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, crawler_command, feed_url, actived, media_path, created_at
		FROM sources
		WHERE `+where, arg).Scan(&source.ID, &source.Name, &source.CrawlerCommand,
		&source.FeedURL, &source.Active, &source.MediaPath, &createdAt)

	if err == sql.ErrNoRows {
		return nil, digest.Errorf(digest.ENOTFOUND, "source not found")
	}
	if err != nil {
		return nil, err
	}

	var parseErr error
	source.CreatedAt, parseErr = time.Parse(time.RFC3339, createdAt)
	if parseErr != nil {
		return nil, fmt.Errorf("failed to parse created_at: %w", parseErr)
	}

	return &source, nil
}

// FindSources retrieves sources matching the filter, ordered by ID.
func (s *SourceService) FindSources(ctx context.Context, filter digest.SourceFilter) ([]*digest.Source, error) {
	var query strings.Builder
	var args []any

	query.WriteString("SELECT id, name, crawler_command, feed_url, actived, media_path, created_at FROM sources WHERE 1=1")

	if filter.ID != nil {
		query.WriteString(" AND id = ?")
		args = append(args, *filter.ID)
	}
	if filter.Name != nil {
		query.WriteString(" AND name = ?")
		args = append(args, *filter.Name)
	}
	if filter.Active != nil {
		query.WriteString(" AND actived = ?")
		args = append(args, *filter.Active)
	}

	query.WriteString(" ORDER BY id ASC")

	if filter.Limit > 0 {
		query.WriteString(" LIMIT ?")
		args = append(args, filter.Limit)
	}
	if filter.Offset > 0 {
		query.WriteString(" OFFSET ?")
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sources []*digest.Source
	for rows.Next() {
		var source digest.Source
		var createdAt string

		if err := rows.Scan(&source.ID, &source.Name, &source.CrawlerCommand,
			&source.FeedURL, &source.Active, &source.MediaPath, &createdAt); err != nil {
			return nil, err
		}

		var parseErr error
		source.CreatedAt, parseErr = time.Parse(time.RFC3339, createdAt)
		if parseErr != nil {
			return nil, fmt.Errorf("failed to parse created_at: %w", parseErr)
		}

		sources = append(sources, &source)
	}

	return sources, rows.Err()
}

// UpdateSource updates an existing source.
func (s *SourceService) UpdateSource(ctx context.Context, id int64, upd digest.SourceUpdate) (*digest.Source, error) {
	source, err := s.FindSourceByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if upd.Name != nil {
		source.Name = *upd.Name
	}
	if upd.CrawlerCommand != nil {
		source.CrawlerCommand = *upd.CrawlerCommand
	}
	if upd.FeedURL != nil {
		source.FeedURL = *upd.FeedURL
	}
	if upd.Active != nil {
		source.Active = *upd.Active
	}
	if upd.MediaPath != nil {
		source.MediaPath = *upd.MediaPath
	}

	if err := source.Validate(); err != nil {
		return nil, err
	}

	_, err = s.db.ExecContext(ctx, `
		UPDATE sources
		SET name = ?, crawler_command = ?, feed_url = ?, actived = ?, media_path = ?
		WHERE id = ?
	`, source.Name, source.CrawlerCommand, source.FeedURL, source.Active, source.MediaPath, id)

	if isUniqueViolation(err) {
		return nil, digest.Errorf(digest.ECONFLICT, "source %q already exists", source.Name)
	}
	if err != nil {
		return nil, err
	}

	return source, nil
}

// DeleteSource permanently removes a source.
func (s *SourceService) DeleteSource(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM sources WHERE id = ?", id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return digest.Errorf(digest.ENOTFOUND, "source not found")
	}

	return nil
}
