package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"discspec/internal/domain"
)

// In-memory fakes for the storage and catalog ports. They mirror the
// contracts the sqlite adapter implements so the service layer can be
// tested without a database or network.

type fakeQueue struct {
	mu     sync.Mutex
	nextID int64
	jobs   map[int64]*domain.ScrapeJob
}

func newFakeQueue() *fakeQueue {
	return &fakeQueue{jobs: make(map[int64]*domain.ScrapeJob)}
}

func (q *fakeQueue) Enqueue(_ context.Context, job *domain.ScrapeJob) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.nextID++
	job.ID = q.nextID
	job.CreatedAt = time.Now().UTC()
	job.UpdatedAt = job.CreatedAt
	clone := *job
	q.jobs[job.ID] = &clone
	return nil
}

func (q *fakeQueue) ClaimBatch(_ context.Context, limit int) ([]*domain.ScrapeJob, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	now := time.Now().UTC()
	var due []*domain.ScrapeJob
	for _, job := range q.jobs {
		if job.Status != domain.JobStatusPending {
			continue
		}
		if job.RetryAfter.Valid && job.RetryAfter.Time.After(now) {
			continue
		}
		due = append(due, job)
	}
	sort.Slice(due, func(i, j int) bool {
		if due[i].Priority != due[j].Priority {
			return due[i].Priority > due[j].Priority
		}
		return due[i].CreatedAt.Before(due[j].CreatedAt)
	})
	if len(due) > limit {
		due = due[:limit]
	}
	claimed := make([]*domain.ScrapeJob, 0, len(due))
	for _, job := range due {
		job.Status = domain.JobStatusProcessing
		job.Attempts++
		job.UpdatedAt = now
		clone := *job
		claimed = append(claimed, &clone)
	}
	return claimed, nil
}

func (q *fakeQueue) Complete(_ context.Context, jobID int64, specID string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	job, ok := q.jobs[jobID]
	if !ok {
		return domain.ErrNotFound
	}
	job.Status = domain.JobStatusCompleted
	job.SpecID = specID
	job.ErrorMessage = ""
	job.UpdatedAt = time.Now().UTC()
	return nil
}

func (q *fakeQueue) Retry(_ context.Context, jobID int64, errMsg string, retryAfter time.Time) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	job, ok := q.jobs[jobID]
	if !ok {
		return domain.ErrNotFound
	}
	job.Status = domain.JobStatusPending
	job.ErrorMessage = errMsg
	job.RetryAfter.Valid = true
	job.RetryAfter.Time = retryAfter
	job.UpdatedAt = time.Now().UTC()
	return nil
}

func (q *fakeQueue) Fail(_ context.Context, jobID int64, errMsg string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	job, ok := q.jobs[jobID]
	if !ok {
		return domain.ErrNotFound
	}
	job.Status = domain.JobStatusFailed
	job.ErrorMessage = errMsg
	job.UpdatedAt = time.Now().UTC()
	return nil
}

func (q *fakeQueue) Get(_ context.Context, jobID int64) (*domain.ScrapeJob, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	job, ok := q.jobs[jobID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	clone := *job
	return &clone, nil
}

func (q *fakeQueue) ListRecent(_ context.Context, limit int) ([]*domain.ScrapeJob, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	var out []*domain.ScrapeJob
	for _, job := range q.jobs {
		clone := *job
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (q *fakeQueue) ResetStalled(_ context.Context) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	for _, job := range q.jobs {
		if job.Status == domain.JobStatusProcessing {
			job.Status = domain.JobStatusPending
		}
	}
	return nil
}

// clearBackoff makes a rescheduled job due immediately.
func (q *fakeQueue) clearBackoff(jobID int64) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if job, ok := q.jobs[jobID]; ok {
		job.RetryAfter.Valid = false
	}
}

type specKey struct {
	title  string
	year   int
	format domain.DiscFormat
}

type fakeStore struct {
	mu            sync.Mutex
	byKey         map[specKey]string
	specs         map[string]*domain.TechnicalSpecRecord
	ratings       map[string]*domain.RatingRecord
	attached      map[string]string // itemID -> specID
	saveRatingErr error
	attachErr     error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		byKey:    make(map[specKey]string),
		specs:    make(map[string]*domain.TechnicalSpecRecord),
		ratings:  make(map[string]*domain.RatingRecord),
		attached: make(map[string]string),
	}
}

func (s *fakeStore) UpsertSpec(_ context.Context, spec *domain.TechnicalSpecRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := specKey{spec.Title, spec.ReleaseYear, spec.DiscFormat}
	if id, ok := s.byKey[key]; ok {
		spec.ID = id
	} else {
		spec.ID = uuid.New().String()
		s.byKey[key] = spec.ID
	}
	clone := *spec
	s.specs[spec.ID] = &clone
	return nil
}

func (s *fakeStore) GetSpec(_ context.Context, id string) (*domain.TechnicalSpecRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	spec, ok := s.specs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	clone := *spec
	return &clone, nil
}

func (s *fakeStore) FindSpecsByTitle(_ context.Context, title string) ([]*domain.TechnicalSpecRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*domain.TechnicalSpecRecord
	for _, spec := range s.specs {
		if spec.Title == title {
			clone := *spec
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (s *fakeStore) SaveRating(_ context.Context, rating *domain.RatingRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveRatingErr != nil {
		return s.saveRatingErr
	}
	clone := *rating
	s.ratings[rating.SpecID] = &clone
	return nil
}

func (s *fakeStore) GetRating(_ context.Context, specID string) (*domain.RatingRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rating, ok := s.ratings[specID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	clone := *rating
	return &clone, nil
}

func (s *fakeStore) AttachSpecToItem(_ context.Context, itemID, specID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.attachErr != nil {
		return s.attachErr
	}
	s.attached[itemID] = specID
	return nil
}

type fakeCache struct {
	mu      sync.Mutex
	pages   map[string]*domain.CachedPage
	getErr  error
	putErr  error
	puts    int
	lookups int
}

func newFakeCache() *fakeCache {
	return &fakeCache{pages: make(map[string]*domain.CachedPage)}
}

func (c *fakeCache) Get(_ context.Context, url string) (*domain.CachedPage, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lookups++
	if c.getErr != nil {
		return nil, c.getErr
	}
	page, ok := c.pages[url]
	if !ok {
		return nil, nil
	}
	page.LastAccessed = time.Now().UTC()
	clone := *page
	return &clone, nil
}

func (c *fakeCache) Put(_ context.Context, page *domain.CachedPage) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.putErr != nil {
		return c.putErr
	}
	c.puts++
	clone := *page
	c.pages[page.URL] = &clone
	return nil
}

type fakeFetcher struct {
	mu      sync.Mutex
	bodies  map[string]string
	err     error
	fetched []string
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{bodies: make(map[string]string)}
}

func (f *fakeFetcher) Fetch(_ context.Context, url string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetched = append(f.fetched, url)
	if f.err != nil {
		return nil, f.err
	}
	body, ok := f.bodies[url]
	if !ok {
		return nil, &domain.FetchError{URL: url, StatusCode: 404}
	}
	return []byte(body), nil
}

func (f *fakeFetcher) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.fetched)
}

type fakeSearcher struct {
	candidates []domain.Candidate
	err        error
	queries    int
}

func (s *fakeSearcher) Search(_ context.Context, _ string, _ int) ([]domain.Candidate, error) {
	s.queries++
	if s.err != nil {
		return nil, s.err
	}
	return s.candidates, nil
}

// fakeExtractor returns canned records so throttle and persistence behavior
// can be asserted without real page HTML.
type fakeExtractor struct {
	spec   domain.TechnicalSpecRecord
	rating *domain.RatingRecord
}

func (e *fakeExtractor) ExtractSpec(_ string, title string, year int, sourceURL string) *domain.TechnicalSpecRecord {
	rec := e.spec
	rec.Title = title
	rec.ReleaseYear = year
	rec.SourceURL = sourceURL
	if rec.DiscFormat == "" {
		rec.DiscFormat = domain.DiscFormatBluray
	}
	return &rec
}

func (e *fakeExtractor) ExtractRatings(_ string) *domain.RatingRecord {
	if e.rating == nil {
		return &domain.RatingRecord{}
	}
	clone := *e.rating
	return &clone
}

func floatPtr(v float64) *float64 { return &v }

var errBoom = fmt.Errorf("boom")
