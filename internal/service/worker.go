package service

import (
	"context"
	"time"

	"discspec/internal/domain"
	"discspec/internal/infrastructure/logger"
	"discspec/internal/port"
)

// Worker drains the scrape queue. Jobs in a batch run strictly one at a
// time; the throttle inside the enricher is the only pacing between fetches,
// so concurrency would defeat it.
type Worker struct {
	queue     port.JobQueue
	enricher  *Enricher
	bus       *EventBus
	batchSize int
	interval  time.Duration
}

func NewWorker(queue port.JobQueue, enricher *Enricher, bus *EventBus, batchSize int, interval time.Duration) *Worker {
	return &Worker{
		queue:     queue,
		enricher:  enricher,
		bus:       bus,
		batchSize: batchSize,
		interval:  interval,
	}
}

// ProcessBatch claims up to one batch of due jobs and processes them
// sequentially. It returns a summary of every job touched.
func (w *Worker) ProcessBatch(ctx context.Context) (*domain.BatchSummary, error) {
	jobs, err := w.queue.ClaimBatch(ctx, w.batchSize)
	if err != nil {
		return nil, err
	}

	summary := &domain.BatchSummary{Results: make([]domain.JobResult, 0, len(jobs))}
	for _, job := range jobs {
		if ctx.Err() != nil {
			break
		}
		summary.Results = append(summary.Results, w.processJob(ctx, job))
		summary.ProcessedCount++
	}
	return summary, nil
}

func (w *Worker) processJob(ctx context.Context, job *domain.ScrapeJob) domain.JobResult {
	logger.Info.Printf("Processing job %d: %s (attempt %d/%d)",
		job.ID, logger.SanitizeForLog(job.Title), job.Attempts, job.MaxAttempts)
	w.publish(job.ID, domain.JobStatusProcessing, "", "")

	specID, err := w.enricher.Enrich(ctx, job)
	if err != nil {
		return w.handleFailure(ctx, job, err)
	}

	if err := w.queue.Complete(ctx, job.ID, specID); err != nil {
		logger.Error.Printf("Failed to mark job %d completed: %v", job.ID, err)
		return domain.JobResult{JobID: job.ID, Status: domain.JobStatusProcessing, Error: err.Error()}
	}

	logger.Info.Printf("Job %d completed: spec %s", job.ID, specID)
	w.publish(job.ID, domain.JobStatusCompleted, specID, "")
	return domain.JobResult{JobID: job.ID, Status: domain.JobStatusCompleted, SpecID: specID}
}

// handleFailure reschedules the job with backoff while attempts remain,
// otherwise marks it permanently failed. Attempts were already incremented
// at claim time, so the delay is computed from the current count.
func (w *Worker) handleFailure(ctx context.Context, job *domain.ScrapeJob, cause error) domain.JobResult {
	msg := cause.Error()

	if job.CanRetry() {
		retryAt := time.Now().UTC().Add(domain.RetryDelay(job.Attempts))
		if err := w.queue.Retry(ctx, job.ID, msg, retryAt); err != nil {
			logger.Error.Printf("Failed to reschedule job %d: %v", job.ID, err)
		}
		logger.Warn.Printf("Job %d failed, retrying after %s: %s",
			job.ID, retryAt.Format(time.RFC3339), logger.SanitizeForLog(msg))
		w.publish(job.ID, domain.JobStatusPending, "", msg)
		return domain.JobResult{JobID: job.ID, Status: domain.JobStatusPending, RetryAfter: &retryAt, Error: msg}
	}

	if err := w.queue.Fail(ctx, job.ID, msg); err != nil {
		logger.Error.Printf("Failed to mark job %d failed: %v", job.ID, err)
	}
	logger.Error.Printf("Job %d failed permanently after %d attempts: %s",
		job.ID, job.Attempts, logger.SanitizeForLog(msg))
	w.publish(job.ID, domain.JobStatusFailed, "", msg)
	return domain.JobResult{JobID: job.ID, Status: domain.JobStatusFailed, Error: msg}
}

func (w *Worker) publish(jobID int64, status domain.JobStatus, specID, msg string) {
	if w.bus == nil {
		return
	}
	w.bus.Publish(Event{JobID: jobID, Status: status, SpecID: specID, Message: msg})
}

// Run processes batches on a fixed interval until the context is cancelled.
// Jobs left in processing by a previous crash are reset to pending first.
func (w *Worker) Run(ctx context.Context) {
	if err := w.queue.ResetStalled(ctx); err != nil {
		logger.Error.Printf("Failed to reset stalled jobs: %v", err)
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		if _, err := w.ProcessBatch(ctx); err != nil && ctx.Err() == nil {
			logger.Error.Printf("Batch processing failed: %v", err)
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
