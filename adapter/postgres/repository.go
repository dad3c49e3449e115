package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/lib/pq"

	"feedsweep/domain"
)

const uniqueViolation = "23505"

type Repository struct{ db *sql.DB }

func New(db *sql.DB) *Repository { return &Repository{db: db} }

func (r *Repository) Ensure(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `
CREATE EXTENSION IF NOT EXISTS pgcrypto;
CREATE TABLE IF NOT EXISTS feeds (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    created_at TIMESTAMP NOT NULL DEFAULT now(),
    updated_at TIMESTAMP NOT NULL DEFAULT now(),
    name TEXT UNIQUE NOT NULL,
    url TEXT NOT NULL,
    cron TEXT NOT NULL DEFAULT '* * * * *',
    is_active BOOLEAN NOT NULL DEFAULT TRUE,
    error_count INTEGER NOT NULL DEFAULT 0,
    last_error TEXT,
    last_fetch_at TIMESTAMP
);
CREATE TABLE IF NOT EXISTS articles (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    created_at TIMESTAMP NOT NULL DEFAULT now(),
    feed_id UUID NOT NULL REFERENCES feeds(id) ON DELETE CASCADE,
    guid TEXT UNIQUE NOT NULL,
    title TEXT NOT NULL,
    link TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    content_html TEXT NOT NULL DEFAULT '',
    content_text TEXT NOT NULL DEFAULT '',
    author TEXT NOT NULL DEFAULT '',
    published_at TIMESTAMP NOT NULL
);
`)
	return err
}

func (r *Repository) AddFeed(ctx context.Context, name, url, cron string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO feeds (name, url, cron) VALUES ($1, $2, $3) ON CONFLICT (name) DO NOTHING`,
		name, url, cron)
	return err
}

func (r *Repository) DeleteFeed(ctx context.Context, name string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM feeds WHERE name = $1`, name)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const feedColumns = `id, created_at, updated_at, name, url, cron, is_active, error_count, last_error, last_fetch_at`

func (r *Repository) ListFeeds(ctx context.Context, limit int) ([]domain.FeedSource, error) {
	q := `SELECT ` + feedColumns + ` FROM feeds ORDER BY created_at DESC`
	if limit > 0 {
		q += ` LIMIT $1`
		return scanFeeds(r.db.QueryContext(ctx, q, limit))
	}
	return scanFeeds(r.db.QueryContext(ctx, q))
}

func (r *Repository) GetFeedByName(ctx context.Context, name string) (domain.FeedSource, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+feedColumns+` FROM feeds WHERE name = $1`, name)
	return scanFeed(row)
}

func (r *Repository) ActiveFeeds(ctx context.Context) ([]domain.FeedSource, error) {
	q := `SELECT ` + feedColumns + ` FROM feeds WHERE is_active ORDER BY created_at ASC`
	return scanFeeds(r.db.QueryContext(ctx, q))
}

func (r *Repository) ArticleExists(ctx context.Context, guid string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM articles WHERE guid = $1)`, guid).Scan(&exists)
	return exists, err
}

func (r *Repository) InsertArticle(ctx context.Context, a domain.ArticleRecord) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO articles (feed_id, guid, title, link, description, content_html, content_text, author, published_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		a.FeedID, a.GUID, a.Title, a.Link, a.Description, a.ContentHTML, a.ContentText, a.Author, a.PublishedAt)
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return domain.ErrDuplicateGUID
	}
	return err
}

func (r *Repository) ListArticlesByFeed(ctx context.Context, feedID string, limit int) ([]domain.ArticleRecord, error) {
	q := `SELECT id, created_at, feed_id, guid, title, link, description, content_html, content_text, author, published_at
FROM articles WHERE feed_id = $1 ORDER BY published_at DESC, created_at DESC`
	if limit > 0 {
		q += ` LIMIT $2`
		return scanArticles(r.db.QueryContext(ctx, q, feedID, limit))
	}
	return scanArticles(r.db.QueryContext(ctx, q, feedID))
}

func (r *Repository) MarkFeedSuccess(ctx context.Context, feedID string, at time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE feeds SET last_fetch_at = $2, error_count = 0, last_error = NULL, updated_at = now() WHERE id = $1`,
		feedID, at)
	return err
}

func (r *Repository) MarkFeedFailure(ctx context.Context, feedID, message string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`UPDATE feeds SET error_count = error_count + 1, last_error = $2, updated_at = now() WHERE id = $1 RETURNING error_count`,
		feedID, message).Scan(&count)
	return count, err
}

func (r *Repository) DeactivateFeed(ctx context.Context, feedID string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE feeds SET is_active = FALSE, updated_at = now() WHERE id = $1`, feedID)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanFeed(row rowScanner) (domain.FeedSource, error) {
	var f domain.FeedSource
	var lastErr sql.NullString
	var lastFetch sql.NullTime
	if err := row.Scan(&f.ID, &f.CreatedAt, &f.UpdatedAt, &f.Name, &f.URL, &f.Cron,
		&f.IsActive, &f.ErrorCount, &lastErr, &lastFetch); err != nil {
		return domain.FeedSource{}, err
	}
	f.LastError = lastErr.String
	if lastFetch.Valid {
		t := lastFetch.Time
		f.LastFetchAt = &t
	}
	return f, nil
}

func scanFeeds(rows *sql.Rows, err error) ([]domain.FeedSource, error) {
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []domain.FeedSource
	for rows.Next() {
		f, err := scanFeed(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

func scanArticles(rows *sql.Rows, err error) ([]domain.ArticleRecord, error) {
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []domain.ArticleRecord
	for rows.Next() {
		var a domain.ArticleRecord
		if err := rows.Scan(&a.ID, &a.CreatedAt, &a.FeedID, &a.GUID, &a.Title, &a.Link,
			&a.Description, &a.ContentHTML, &a.ContentText, &a.Author, &a.PublishedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
