package domain

import (
	"database/sql"
	"time"
)

type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
)

const DefaultMaxAttempts = 3

// ScrapeJob is one unit of enrichment work: locate the release page for a
// title and extract its technical specification.
type ScrapeJob struct {
	ID               int64
	Title            string
	ReleaseYear      int    // 0 when unknown
	SourceURL        string // direct release page URL, skips search when set
	ExternalTitleID  string
	CollectionItemID string
	Status           JobStatus
	Attempts         int
	MaxAttempts      int
	RetryAfter       sql.NullTime
	ErrorMessage     string
	Priority         int
	SpecID           string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// CanRetry reports whether a failed attempt should be rescheduled rather
// than marked permanently failed.
func (j *ScrapeJob) CanRetry() bool {
	return j.Attempts < j.MaxAttempts
}

// RetryDelay returns the backoff before the next attempt: 2^attempts minutes.
func RetryDelay(attempts int) time.Duration {
	if attempts < 0 {
		attempts = 0
	}
	return time.Duration(1<<uint(attempts)) * time.Minute
}

// JobResult summarizes the outcome of a single job within a batch.
type JobResult struct {
	JobID      int64      `json:"job_id"`
	Status     JobStatus  `json:"status"`
	SpecID     string     `json:"spec_id,omitempty"`
	RetryAfter *time.Time `json:"retry_after,omitempty"`
	Error      string     `json:"error,omitempty"`
}

// BatchSummary is returned by the batch-processing entry point.
type BatchSummary struct {
	ProcessedCount int         `json:"processed_count"`
	Results        []JobResult `json:"results"`
}
