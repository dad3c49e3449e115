package domain

import (
	"context"
	"errors"
	"time"
)

// ErrDuplicateGUID is returned by Store.InsertArticle when the guid is already
// present. Concurrent fetches of the same feed may race the existence check;
// the store's unique constraint is the backstop and the coordinator treats
// this error as "already seen", not as a failure.
var ErrDuplicateGUID = errors.New("article guid already exists")

// Store is the persistence port for feeds and articles.
type Store interface {
	Ensure(ctx context.Context) error

	AddFeed(ctx context.Context, name, url, cron string) error
	DeleteFeed(ctx context.Context, name string) (int64, error)
	ListFeeds(ctx context.Context, limit int) ([]FeedSource, error)
	GetFeedByName(ctx context.Context, name string) (FeedSource, error)
	ActiveFeeds(ctx context.Context) ([]FeedSource, error)

	ArticleExists(ctx context.Context, guid string) (bool, error)
	InsertArticle(ctx context.Context, a ArticleRecord) error
	ListArticlesByFeed(ctx context.Context, feedID string, limit int) ([]ArticleRecord, error)

	// MarkFeedSuccess resets the health fields after a successful fetch.
	MarkFeedSuccess(ctx context.Context, feedID string, at time.Time) error
	// MarkFeedFailure records the failure and returns the new error count.
	MarkFeedFailure(ctx context.Context, feedID, message string) (int, error)
	DeactivateFeed(ctx context.Context, feedID string) error
}

// DocumentFetcher retrieves the raw feed document for a URL. A non-2xx status
// or transport problem is an error; interpretation of the body is the
// parser's job.
type DocumentFetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// Sweeper exposes application-level controls for the background sweep loop.
type Sweeper interface {
	Start(ctx context.Context) error
	Stop() error

	SweepNow(ctx context.Context) SweepResult
	SetInterval(d time.Duration)
	Resize(workers int) error
	CurrentInterval() time.Duration
	CurrentWorkers() int
}
