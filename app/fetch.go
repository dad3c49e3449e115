package app

import (
	"context"
	"errors"
	"time"

	"feedsweep/domain"
	"feedsweep/internal/feedparse"
)

const (
	maxDescriptionLen = 500
	maxContentHTMLLen = 50_000
	maxContentTextLen = 2_000
)

// Publish dates in the wild come in many shapes; the first layout that parses
// wins, and anything unparseable falls back to ingestion time.
var publishLayouts = []string{
	time.RFC1123Z,
	time.RFC1123,
	time.RFC3339,
	time.RFC822Z,
	time.RFC822,
	"2006-01-02T15:04:05Z0700",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// FetchFeed runs one full fetch attempt for a feed: retrieve the document,
// parse its items, insert the ones not seen before, and update the feed's
// health fields. It never returns an error; every failure mode is folded into
// the outcome so a sweep over many feeds cannot be aborted by one bad feed.
func (s *SweepService) FetchFeed(ctx context.Context, feed domain.FeedSource) domain.FeedOutcome {
	doc, err := s.fetcher.Fetch(ctx, feed.URL)
	if err != nil {
		return s.recordFailure(ctx, feed, err)
	}

	items := feedparse.ParseItems(doc)

	newCount := 0
	itemErrs := 0
	for _, it := range items {
		exists, err := s.store.ArticleExists(ctx, it.GUID)
		if err != nil {
			itemErrs++
			s.logger.Warn("article lookup failed", "feed", feed.Name, "guid", it.GUID, "err", err)
			continue
		}
		if exists {
			continue
		}
		rec := normalizeItem(feed.ID, it, s.now())
		if err := s.store.InsertArticle(ctx, rec); err != nil {
			if errors.Is(err, domain.ErrDuplicateGUID) {
				// Lost a race against a concurrent fetch; the article is
				// there, which is all that matters.
				continue
			}
			itemErrs++
			s.logger.Warn("article insert failed", "feed", feed.Name, "guid", it.GUID, "err", err)
			continue
		}
		newCount++
	}

	// Health bookkeeping reflects the fetch+parse outcome only; item-level
	// trouble is partial success, not feed failure.
	if err := s.store.MarkFeedSuccess(ctx, feed.ID, s.now()); err != nil {
		s.logger.Warn("feed status update failed", "feed", feed.Name, "err", err)
	}

	s.logs.Append("feed", "fetch", map[string]any{
		"feed": feed.Name, "new": newCount, "total": len(items), "item_errors": itemErrs,
	})
	s.logger.Info("feed fetched", "feed", feed.Name, "new", newCount, "total", len(items))

	return domain.FeedOutcome{FeedName: feed.Name, Success: true, NewCount: newCount, Total: len(items)}
}

// recordFailure increments the feed's failure streak and deactivates it once
// the streak reaches the configured threshold. The bookkeeping runs even
// though the fetch failed: a rising error count is the operator's primary
// signal that a feed is broken.
func (s *SweepService) recordFailure(ctx context.Context, feed domain.FeedSource, cause error) domain.FeedOutcome {
	msg := cause.Error()

	count, err := s.store.MarkFeedFailure(ctx, feed.ID, msg)
	if err != nil {
		s.logger.Warn("feed failure update failed", "feed", feed.Name, "err", err)
	} else if count >= s.threshold {
		if err := s.store.DeactivateFeed(ctx, feed.ID); err != nil {
			s.logger.Warn("feed deactivation failed", "feed", feed.Name, "err", err)
		} else {
			s.logger.Info("feed deactivated after repeated failures", "feed", feed.Name, "errors", count)
		}
	}

	s.logs.Append("error", "fetch_failed", map[string]any{"feed": feed.Name, "error": msg})
	s.logger.Warn("feed fetch failed", "feed", feed.Name, "err", msg)

	return domain.FeedOutcome{FeedName: feed.Name, Success: false, Error: msg}
}

func normalizeItem(feedID string, it domain.RawItem, now time.Time) domain.ArticleRecord {
	richest := it.Content
	if richest == "" {
		richest = it.Description
	}
	return domain.ArticleRecord{
		FeedID:      feedID,
		GUID:        it.GUID,
		Title:       it.Title,
		Link:        it.Link,
		Description: truncate(feedparse.StripMarkup(it.Description), maxDescriptionLen),
		ContentHTML: truncate(richest, maxContentHTMLLen),
		ContentText: truncate(feedparse.StripMarkup(richest), maxContentTextLen),
		Author:      it.Author,
		PublishedAt: parsePublished(it.Published, now),
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func parsePublished(raw string, fallback time.Time) time.Time {
	if raw == "" {
		return fallback
	}
	for _, layout := range publishLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC()
		}
	}
	return fallback
}
