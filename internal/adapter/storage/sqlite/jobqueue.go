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

type JobQueue struct {
	db *sql.DB
}

func NewJobQueue(store *Store) *JobQueue {
	return &JobQueue{db: store.db}
}

const jobColumns = `id, title, release_year, source_url, external_title_id, collection_item_id,
	status, attempts, max_attempts, retry_after, error_message, priority, spec_id, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJob(row rowScanner) (*domain.ScrapeJob, error) {
	var job domain.ScrapeJob
	var status string
	err := row.Scan(
		&job.ID,
		&job.Title,
		&job.ReleaseYear,
		&job.SourceURL,
		&job.ExternalTitleID,
		&job.CollectionItemID,
		&status,
		&job.Attempts,
		&job.MaxAttempts,
		&job.RetryAfter,
		&job.ErrorMessage,
		&job.Priority,
		&job.SpecID,
		&job.CreatedAt,
		&job.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	job.Status = domain.JobStatus(status)
	return &job, nil
}

func (q *JobQueue) Enqueue(ctx context.Context, job *domain.ScrapeJob) error {
	now := time.Now().UTC()
	if job.Status == "" {
		job.Status = domain.JobStatusPending
	}
	if job.MaxAttempts == 0 {
		job.MaxAttempts = domain.DefaultMaxAttempts
	}
	res, err := q.db.ExecContext(ctx, `
		INSERT INTO scrape_jobs (title, release_year, source_url, external_title_id, collection_item_id,
			status, attempts, max_attempts, error_message, priority, spec_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		job.Title, job.ReleaseYear, job.SourceURL, job.ExternalTitleID, job.CollectionItemID,
		string(job.Status), job.Attempts, job.MaxAttempts, job.ErrorMessage, job.Priority, job.SpecID, now, now,
	)
	if err != nil {
		return fmt.Errorf("insert job: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("job id: %w", err)
	}
	job.ID = id
	job.CreatedAt = now
	job.UpdatedAt = now
	return nil
}

// ClaimBatch selects due pending jobs in priority order and flips them to
// processing in one transaction, so a second caller cannot claim the same
// rows. Attempts are incremented here, at claim time.
func (q *JobQueue) ClaimBatch(ctx context.Context, limit int) ([]*domain.ScrapeJob, error) {
	tx, err := q.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin claim: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UTC()
	rows, err := tx.QueryContext(ctx, `
		SELECT id FROM scrape_jobs
		WHERE status = 'pending' AND (retry_after IS NULL OR retry_after <= ?)
		ORDER BY priority DESC, created_at ASC
		LIMIT ?`, now, limit)
	if err != nil {
		return nil, fmt.Errorf("select due jobs: %w", err)
	}
	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			_ = rows.Close()
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}

	claimed := make([]*domain.ScrapeJob, 0, len(ids))
	for _, id := range ids {
		if _, err := tx.ExecContext(ctx, `
			UPDATE scrape_jobs SET status = 'processing', attempts = attempts + 1, updated_at = ?
			WHERE id = ?`, now, id); err != nil {
			return nil, fmt.Errorf("claim job %d: %w", id, err)
		}
		job, err := scanJob(tx.QueryRowContext(ctx,
			`SELECT `+jobColumns+` FROM scrape_jobs WHERE id = ?`, id))
		if err != nil {
			return nil, fmt.Errorf("read claimed job %d: %w", id, err)
		}
		claimed = append(claimed, job)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit claim: %w", err)
	}
	return claimed, nil
}

func (q *JobQueue) Complete(ctx context.Context, jobID int64, specID string) error {
	return q.update(ctx, jobID, `
		UPDATE scrape_jobs SET status = 'completed', spec_id = ?, error_message = '', retry_after = NULL, updated_at = ?
		WHERE id = ?`, specID, time.Now().UTC(), jobID)
}

func (q *JobQueue) Retry(ctx context.Context, jobID int64, errMsg string, retryAfter time.Time) error {
	return q.update(ctx, jobID, `
		UPDATE scrape_jobs SET status = 'pending', error_message = ?, retry_after = ?, updated_at = ?
		WHERE id = ?`, errMsg, retryAfter.UTC(), time.Now().UTC(), jobID)
}

func (q *JobQueue) Fail(ctx context.Context, jobID int64, errMsg string) error {
	return q.update(ctx, jobID, `
		UPDATE scrape_jobs SET status = 'failed', error_message = ?, updated_at = ?
		WHERE id = ?`, errMsg, time.Now().UTC(), jobID)
}

func (q *JobQueue) update(ctx context.Context, jobID int64, query string, args ...any) error {
	res, err := q.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("job %d: %w", jobID, domain.ErrNotFound)
	}
	return nil
}

func (q *JobQueue) Get(ctx context.Context, jobID int64) (*domain.ScrapeJob, error) {
	job, err := scanJob(q.db.QueryRowContext(ctx,
		`SELECT `+jobColumns+` FROM scrape_jobs WHERE id = ?`, jobID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return job, err
}

func (q *JobQueue) ListRecent(ctx context.Context, limit int) ([]*domain.ScrapeJob, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+jobColumns+` FROM scrape_jobs ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var jobs []*domain.ScrapeJob
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}

func (q *JobQueue) ResetStalled(ctx context.Context) error {
	_, err := q.db.ExecContext(ctx, `
		UPDATE scrape_jobs SET status = 'pending', updated_at = ?
		WHERE status = 'processing'`, time.Now().UTC())
	return err
}

var _ port.JobQueue = (*JobQueue)(nil)
