package domain

import "time"

// FeedSource is a configured subscription polled on its own cron schedule.
// The ingestion pipeline only ever mutates the health fields (ErrorCount,
// LastError, LastFetchAt, IsActive); creation and deletion belong to the
// management CLI.
type FeedSource struct {
	ID          string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Name        string
	URL         string
	Cron        string
	IsActive    bool
	ErrorCount  int
	LastError   string
	LastFetchAt *time.Time
}

// ArticleRecord is one ingested item. Records are written once by the fetch
// coordinator and never updated afterwards.
type ArticleRecord struct {
	ID          string
	CreatedAt   time.Time
	FeedID      string
	GUID        string
	Title       string
	Link        string
	Description string
	ContentHTML string
	ContentText string
	Author      string
	PublishedAt time.Time
}

// RawItem is a single feed entry as extracted from the document, before
// normalization and deduplication.
type RawItem struct {
	GUID        string
	Title       string
	Link        string
	Description string
	Content     string
	Author      string
	Published   string
}

// FeedOutcome is the per-feed result of one fetch attempt. A failed fetch is
// reported here, never as an error value, so one broken feed cannot abort a
// sweep over its siblings.
type FeedOutcome struct {
	FeedName string `json:"name"`
	Success  bool   `json:"success"`
	NewCount int    `json:"newCount"`
	Total    int    `json:"total"`
	Error    string `json:"error,omitempty"`
}

// SweepResult aggregates one pass over all active feeds. Ephemeral, never
// persisted.
type SweepResult struct {
	Feeds    int           `json:"feeds"`
	Fetched  int           `json:"fetched"`
	Outcomes []FeedOutcome `json:"outcomes"`
	Error    string        `json:"error,omitempty"`
}
