package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"discspec/internal/domain"
	"discspec/internal/port"
)

// PageCache stores fetched source pages keyed by canonical URL. maxAge
// controls staleness: entries fetched longer ago than maxAge read as misses
// and are refetched. Zero means entries never expire.
type PageCache struct {
	db     *sql.DB
	maxAge time.Duration
}

func NewPageCache(store *Store, maxAge time.Duration) *PageCache {
	return &PageCache{db: store.db, maxAge: maxAge}
}

func (c *PageCache) Get(ctx context.Context, url string) (*domain.CachedPage, error) {
	var page domain.CachedPage
	var format string
	err := c.db.QueryRowContext(ctx, `
		SELECT url, body, checksum, video_codec, video_resolution, disc_format, runtime_minutes,
			fetched_at, last_accessed
		FROM page_cache WHERE url = ?`, url,
	).Scan(&page.URL, &page.Body, &page.Checksum, &page.VideoCodec, &page.VideoResolution,
		&format, &page.RuntimeMinutes, &page.FetchedAt, &page.LastAccessed)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	page.DiscFormat = domain.DiscFormat(format)

	if c.maxAge > 0 && time.Since(page.FetchedAt) > c.maxAge {
		return nil, nil
	}

	now := time.Now().UTC()
	if _, err := c.db.ExecContext(ctx,
		`UPDATE page_cache SET last_accessed = ? WHERE url = ?`, now, url); err != nil {
		return nil, fmt.Errorf("touch cache entry: %w", err)
	}
	page.LastAccessed = now
	return &page, nil
}

func (c *PageCache) Put(ctx context.Context, page *domain.CachedPage) error {
	_, err := c.db.ExecContext(ctx, `
		INSERT INTO page_cache (url, body, checksum, video_codec, video_resolution, disc_format,
			runtime_minutes, fetched_at, last_accessed)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (url) DO UPDATE SET
			body = excluded.body,
			checksum = excluded.checksum,
			video_codec = excluded.video_codec,
			video_resolution = excluded.video_resolution,
			disc_format = excluded.disc_format,
			runtime_minutes = excluded.runtime_minutes,
			fetched_at = excluded.fetched_at,
			last_accessed = excluded.last_accessed`,
		page.URL, page.Body, page.Checksum, page.VideoCodec, page.VideoResolution,
		string(page.DiscFormat), page.RuntimeMinutes, page.FetchedAt.UTC(), page.LastAccessed.UTC(),
	)
	if err != nil {
		return fmt.Errorf("store cache entry: %w", err)
	}
	return nil
}

var _ port.PageCache = (*PageCache)(nil)
