package service

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"discspec/internal/domain"
	"discspec/internal/infrastructure/logger"
	"discspec/internal/port"
)

// JobSubmission is the caller-facing input for enqueueing a scrape job.
type JobSubmission struct {
	Title            string
	ReleaseYear      int
	SourceURL        string
	ExternalTitleID  string
	CollectionItemID string
	Priority         int
	MaxAttempts      int
}

// JobService validates submissions and enqueues scrape jobs.
type JobService struct {
	queue    port.JobQueue
	baseHost string
}

func NewJobService(queue port.JobQueue, baseURL string) *JobService {
	host := ""
	if u, err := url.Parse(baseURL); err == nil {
		host = u.Host
	}
	return &JobService{queue: queue, baseHost: host}
}

// Submit validates the submission and enqueues a pending job. A source URL
// pointing at a foreign host is rejected before any job is created.
func (s *JobService) Submit(ctx context.Context, sub JobSubmission) (*domain.ScrapeJob, error) {
	title := strings.TrimSpace(sub.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", domain.ErrInvalidSubmission)
	}

	if sub.SourceURL != "" {
		u, err := url.Parse(sub.SourceURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return nil, fmt.Errorf("%w: %s", domain.ErrInvalidSourceURL, logger.SanitizeForLog(sub.SourceURL))
		}
		if !strings.EqualFold(u.Host, s.baseHost) {
			return nil, fmt.Errorf("%w: host %s not allowed", domain.ErrInvalidSourceURL, logger.SanitizeForLog(u.Host))
		}
	}

	maxAttempts := sub.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = domain.DefaultMaxAttempts
	}

	job := &domain.ScrapeJob{
		Title:            title,
		ReleaseYear:      sub.ReleaseYear,
		SourceURL:        sub.SourceURL,
		ExternalTitleID:  sub.ExternalTitleID,
		CollectionItemID: sub.CollectionItemID,
		Status:           domain.JobStatusPending,
		MaxAttempts:      maxAttempts,
		Priority:         sub.Priority,
	}

	if err := s.queue.Enqueue(ctx, job); err != nil {
		return nil, fmt.Errorf("failed to enqueue job: %w", err)
	}

	logger.Info.Printf("Job enqueued: id=%d title=%s", job.ID, logger.SanitizeForLog(job.Title))
	return job, nil
}

func (s *JobService) Get(ctx context.Context, id int64) (*domain.ScrapeJob, error) {
	return s.queue.Get(ctx, id)
}

func (s *JobService) ListRecent(ctx context.Context, limit int) ([]*domain.ScrapeJob, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.queue.ListRecent(ctx, limit)
}
