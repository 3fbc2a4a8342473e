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
var _ digest.ArticleService = (*ArticleService)(nil)

// ArticleService implements digest.ArticleService using SQLite. URL
// uniqueness is enforced by the schema; a duplicate insert surfaces as
// ECONFLICT so callers can treat it as an already-processed item.
type ArticleService struct {
	db *DB
}

// NewArticleService creates a new ArticleService.
func NewArticleService(db *DB) *ArticleService {
	return &ArticleService{db: db}
}

// CreateArticle creates a new article.
func (s *ArticleService) CreateArticle(ctx context.Context, article *digest.Article) error {
	if err := article.Validate(); err != nil {
		return err
	}

	article.CreatedAt = time.Now().UTC()

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO articles (url, title, source, abstract_file, audio_file, content_hash, publish_timestamp, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, article.URL, article.Title, article.SourceID, article.AbstractFile, article.AudioFile,
		article.ContentHash, article.PublishTimestamp, article.CreatedAt.Format(time.RFC3339))

	if isUniqueViolation(err) {
		return digest.Errorf(digest.ECONFLICT, "article already exists for URL %s", article.URL)
	}
	if err != nil {
		return err
	}

	article.ID, err = result.LastInsertId()
	return err
}

// FindArticleByURL retrieves an article by URL.
func (s *ArticleService) FindArticleByURL(ctx context.Context, url string) (*digest.Article, error) {
	var article digest.Article
	var createdAt string

	err := s.db.QueryRowContext(ctx, `
		SELECT id, url, title, source, abstract_file, audio_file, content_hash, publish_timestamp, created_at
		FROM articles
		WHERE url = ?
	`, url).Scan(&article.ID, &article.URL, &article.Title, &article.SourceID,
		&article.AbstractFile, &article.AudioFile, &article.ContentHash,
		&article.PublishTimestamp, &createdAt)

	if err == sql.ErrNoRows {
		return nil, digest.Errorf(digest.ENOTFOUND, "article not found")
	}
	if err != nil {
		return nil, err
	}

	var parseErr error
	article.CreatedAt, parseErr = time.Parse(time.RFC3339, createdAt)
	if parseErr != nil {
		return nil, fmt.Errorf("failed to parse created_at: %w", parseErr)
	}

	return &article, nil
}

// FindArticles retrieves articles matching the filter, newest first by
// publish timestamp.
func (s *ArticleService) FindArticles(ctx context.Context, filter digest.ArticleFilter) ([]*digest.Article, error) {
	var query strings.Builder
	var args []any

	query.WriteString("SELECT id, url, title, source, abstract_file, audio_file, content_hash, publish_timestamp, created_at FROM articles WHERE 1=1")

	if filter.SourceID != nil {
		query.WriteString(" AND source = ?")
		args = append(args, *filter.SourceID)
	}
	if filter.URL != nil {
		query.WriteString(" AND url = ?")
		args = append(args, *filter.URL)
	}
	if filter.Since != nil {
		query.WriteString(" AND publish_timestamp >= ?")
		args = append(args, *filter.Since)
	}
	if filter.Until != nil {
		query.WriteString(" AND publish_timestamp < ?")
		args = append(args, *filter.Until)
	}

	query.WriteString(" ORDER BY publish_timestamp DESC")

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

	var articles []*digest.Article
	for rows.Next() {
		var article digest.Article
		var createdAt string

		if err := rows.Scan(&article.ID, &article.URL, &article.Title, &article.SourceID,
			&article.AbstractFile, &article.AudioFile, &article.ContentHash,
			&article.PublishTimestamp, &createdAt); err != nil {
			return nil, err
		}

		var parseErr error
		article.CreatedAt, parseErr = time.Parse(time.RFC3339, createdAt)
		if parseErr != nil {
			return nil, fmt.Errorf("failed to parse created_at: %w", parseErr)
		}

		articles = append(articles, &article)
	}

	return articles, rows.Err()
}

// UpdateArticle attaches updated metadata to an existing article.
func (s *ArticleService) UpdateArticle(ctx context.Context, id int64, upd digest.ArticleUpdate) (*digest.Article, error) {
	article, err := s.findArticleByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if upd.Title != nil {
		article.Title = *upd.Title
	}
	if upd.AbstractFile != nil {
		article.AbstractFile = *upd.AbstractFile
	}
	if upd.AudioFile != nil {
		article.AudioFile = *upd.AudioFile
	}

	if err := article.Validate(); err != nil {
		return nil, err
	}

	_, err = s.db.ExecContext(ctx, `
		UPDATE articles
		SET title = ?, abstract_file = ?, audio_file = ?
		WHERE id = ?
	`, article.Title, article.AbstractFile, article.AudioFile, id)

	if err != nil {
		return nil, err
	}

	return article, nil
}

// DeleteArticle permanently removes an article.
func (s *ArticleService) DeleteArticle(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM articles WHERE id = ?", id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return digest.Errorf(digest.ENOTFOUND, "article not found")
	}

	return nil
}

func (s *ArticleService) findArticleByID(ctx context.Context, id int64) (*digest.Article, error) {
	var article digest.Article
	var createdAt string

	err := s.db.QueryRowContext(ctx, `
		SELECT id, url, title, source, abstract_file, audio_file, content_hash, publish_timestamp, created_at
		FROM articles
		WHERE id = ?
	`, id).Scan(&article.ID, &article.URL, &article.Title, &article.SourceID,
		&article.AbstractFile, &article.AudioFile, &article.ContentHash,
		&article.PublishTimestamp, &createdAt)

	if err == sql.ErrNoRows {
		return nil, digest.Errorf(digest.ENOTFOUND, "article not found")
	}
	if err != nil {
		return nil, err
	}

	var parseErr error
	article.CreatedAt, parseErr = time.Parse(time.RFC3339, createdAt)
	if parseErr != nil {
		return nil, fmt.Errorf("failed to parse created_at: %w", parseErr)
	}

	return &article, nil
}
