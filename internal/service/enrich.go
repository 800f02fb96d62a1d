package service

import (
	"context"
	"fmt"
	"time"

	"discspec/internal/domain"
	"discspec/internal/infrastructure/logger"
	"discspec/internal/port"
	"discspec/internal/ratelimit"
)

// Enricher runs the end-to-end enrichment flow for a single job: resolve the
// release page, fetch or reuse its body, extract the technical specification
// and ratings, and persist the results.
type Enricher struct {
	store     port.SpecStore
	cache     port.PageCache
	fetcher   port.Fetcher
	searcher  port.Searcher
	extractor port.Extractor
	throttle  *ratelimit.Throttle
}

func NewEnricher(
	store port.SpecStore,
	cache port.PageCache,
	fetcher port.Fetcher,
	searcher port.Searcher,
	extractor port.Extractor,
	throttle *ratelimit.Throttle,
) *Enricher {
	return &Enricher{
		store:     store,
		cache:     cache,
		fetcher:   fetcher,
		searcher:  searcher,
		extractor: extractor,
		throttle:  throttle,
	}
}

// Enrich processes one job and returns the ID of the stored spec record.
// The throttle delay is paid at most once per job, immediately before the
// first network fetch; jobs served entirely from cache pay no delay.
func (e *Enricher) Enrich(ctx context.Context, job *domain.ScrapeJob) (string, error) {
	throttled := false

	pageURL := job.SourceURL
	if pageURL == "" {
		resolved, err := e.resolveURL(ctx, job, &throttled)
		if err != nil {
			return "", err
		}
		pageURL = resolved
	}

	page, err := e.loadPage(ctx, pageURL, &throttled)
	if err != nil {
		return "", err
	}

	rec := e.extractor.ExtractSpec(page, job.Title, job.ReleaseYear, pageURL)
	rec.DataQuality = AssessQuality(rec)
	rec.LastScrapedAt = time.Now().UTC()

	if err := e.store.UpsertSpec(ctx, rec); err != nil {
		return "", fmt.Errorf("failed to store spec: %w", err)
	}

	// Persistence failures past this point still fail the job; the spec row
	// is already upserted and the next attempt overwrites it by key.
	if rating := e.extractor.ExtractRatings(page); rating != nil && rating.HasAny() {
		rating.SpecID = rec.ID
		if err := e.store.SaveRating(ctx, rating); err != nil {
			return "", fmt.Errorf("failed to store ratings: %w", err)
		}
	}

	if job.CollectionItemID != "" {
		if err := e.store.AttachSpecToItem(ctx, job.CollectionItemID, rec.ID); err != nil {
			return "", fmt.Errorf("failed to link spec to item %s: %w", job.CollectionItemID, err)
		}
	}

	return rec.ID, nil
}

// resolveURL finds the release page by searching the catalog and picking the
// best candidate for the job's title and year.
func (e *Enricher) resolveURL(ctx context.Context, job *domain.ScrapeJob, throttled *bool) (string, error) {
	if err := e.throttleOnce(ctx, throttled); err != nil {
		return "", err
	}

	candidates, err := e.searcher.Search(ctx, job.Title, job.ReleaseYear)
	if err != nil {
		return "", fmt.Errorf("search failed: %w", err)
	}

	best, err := domain.SelectBestMatch(candidates, job.Title, job.ReleaseYear)
	if err != nil {
		return "", err
	}
	logger.Debug.Printf("Resolved %s to %s", logger.SanitizeForLog(job.Title), logger.SanitizeForLog(best.URL))
	return best.URL, nil
}

// loadPage returns the page body for a URL, preferring the cache. Cache
// read and write failures degrade to a plain fetch rather than failing the
// job.
func (e *Enricher) loadPage(ctx context.Context, pageURL string, throttled *bool) (string, error) {
	if cached, err := e.cache.Get(ctx, pageURL); err != nil {
		logger.Warn.Printf("Page cache read failed for %s: %v", logger.SanitizeForLog(pageURL), err)
	} else if cached != nil {
		return cached.Body, nil
	}

	if err := e.throttleOnce(ctx, throttled); err != nil {
		return "", err
	}

	body, err := e.fetcher.Fetch(ctx, pageURL)
	if err != nil {
		return "", err
	}

	page := string(body)
	derived := e.extractor.ExtractSpec(page, "", 0, pageURL)
	now := time.Now().UTC()
	entry := &domain.CachedPage{
		URL:             pageURL,
		Body:            page,
		Checksum:        domain.BodyChecksum(body),
		VideoCodec:      derived.VideoCodec,
		VideoResolution: derived.VideoResolution,
		DiscFormat:      derived.DiscFormat,
		RuntimeMinutes:  derived.RuntimeMinutes,
		FetchedAt:       now,
		LastAccessed:    now,
	}
	if err := e.cache.Put(ctx, entry); err != nil {
		logger.Warn.Printf("Page cache write failed for %s: %v", logger.SanitizeForLog(pageURL), err)
	}

	return page, nil
}

func (e *Enricher) throttleOnce(ctx context.Context, throttled *bool) error {
	if *throttled {
		return nil
	}
	*throttled = true
	return e.throttle.Wait(ctx)
}
