package port

import (
	"context"
	"time"

	"discspec/internal/domain"
)

type JobQueue interface {
	Enqueue(ctx context.Context, job *domain.ScrapeJob) error
	// ClaimBatch atomically marks up to limit due pending jobs as processing,
	// increments their attempts, and returns them ordered by priority
	// descending then creation time ascending.
	ClaimBatch(ctx context.Context, limit int) ([]*domain.ScrapeJob, error)
	Complete(ctx context.Context, jobID int64, specID string) error
	// Retry returns a processing job to pending with a backoff deadline.
	Retry(ctx context.Context, jobID int64, errMsg string, retryAfter time.Time) error
	Fail(ctx context.Context, jobID int64, errMsg string) error
	Get(ctx context.Context, jobID int64) (*domain.ScrapeJob, error)
	ListRecent(ctx context.Context, limit int) ([]*domain.ScrapeJob, error)
	// ResetStalled returns jobs stuck in processing to pending. Run at
	// startup; nothing reconciles a crash mid-job otherwise.
	ResetStalled(ctx context.Context) error
}
