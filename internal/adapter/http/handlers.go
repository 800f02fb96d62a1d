package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"discspec/internal/domain"
	"discspec/internal/port"
	"discspec/internal/service"
)

type Handlers struct {
	jobs   *service.JobService
	worker *service.Worker
	specs  port.SpecStore
}

func NewHandlers(jobs *service.JobService, worker *service.Worker, specs port.SpecStore) *Handlers {
	return &Handlers{jobs: jobs, worker: worker, specs: specs}
}

type createJobRequest struct {
	Title            string `json:"title"`
	ReleaseYear      int    `json:"release_year"`
	SourceURL        string `json:"source_url"`
	ExternalTitleID  string `json:"external_title_id"`
	CollectionItemID string `json:"collection_item_id"`
	Priority         int    `json:"priority"`
	MaxAttempts      int    `json:"max_attempts"`
}

type jobResponse struct {
	ID           int64            `json:"id"`
	Title        string           `json:"title"`
	ReleaseYear  int              `json:"release_year,omitempty"`
	SourceURL    string           `json:"source_url,omitempty"`
	Status       domain.JobStatus `json:"status"`
	Attempts     int              `json:"attempts"`
	MaxAttempts  int              `json:"max_attempts"`
	RetryAfter   string           `json:"retry_after,omitempty"`
	ErrorMessage string           `json:"error_message,omitempty"`
	Priority     int              `json:"priority,omitempty"`
	SpecID       string           `json:"spec_id,omitempty"`
	CreatedAt    string           `json:"created_at"`
	UpdatedAt    string           `json:"updated_at"`
}

func toJobResponse(job *domain.ScrapeJob) jobResponse {
	resp := jobResponse{
		ID:           job.ID,
		Title:        job.Title,
		ReleaseYear:  job.ReleaseYear,
		SourceURL:    job.SourceURL,
		Status:       job.Status,
		Attempts:     job.Attempts,
		MaxAttempts:  job.MaxAttempts,
		ErrorMessage: job.ErrorMessage,
		Priority:     job.Priority,
		SpecID:       job.SpecID,
		CreatedAt:    job.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:    job.UpdatedAt.UTC().Format(time.RFC3339),
	}
	if job.RetryAfter.Valid {
		resp.RetryAfter = job.RetryAfter.Time.UTC().Format(time.RFC3339)
	}
	return resp
}

func (h *Handlers) CreateJob(c echo.Context) error {
	var req createJobRequest
	// Strict decode: unknown fields are rejected instead of silently
	// dropped, so schema drift between callers and the API surfaces early.
	dec := json.NewDecoder(c.Request().Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	job, err := h.jobs.Submit(c.Request().Context(), service.JobSubmission{
		Title:            req.Title,
		ReleaseYear:      req.ReleaseYear,
		SourceURL:        req.SourceURL,
		ExternalTitleID:  req.ExternalTitleID,
		CollectionItemID: req.CollectionItemID,
		Priority:         req.Priority,
		MaxAttempts:      req.MaxAttempts,
	})
	if err != nil {
		// Validation failures are the caller's fault; anything else is a
		// persistence fault.
		if errors.Is(err, domain.ErrInvalidSubmission) || errors.Is(err, domain.ErrInvalidSourceURL) {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusCreated, toJobResponse(job))
}

func (h *Handlers) GetJob(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid job id"})
	}

	job, err := h.jobs.Get(c.Request().Context(), id)
	if errors.Is(err, domain.ErrNotFound) {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "job not found"})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusOK, toJobResponse(job))
}

func (h *Handlers) ListJobs(c echo.Context) error {
	limit := 50
	if l := c.QueryParam("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	jobs, err := h.jobs.ListRecent(c.Request().Context(), limit)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	out := make([]jobResponse, len(jobs))
	for i, job := range jobs {
		out[i] = toJobResponse(job)
	}
	return c.JSON(http.StatusOK, out)
}

// ProcessBatch claims and processes one batch synchronously and returns a
// per-job summary. Used by callers that drive the queue on their own
// schedule instead of the background worker.
func (h *Handlers) ProcessBatch(c echo.Context) error {
	summary, err := h.worker.ProcessBatch(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, summary)
}

type specResponse struct {
	*domain.TechnicalSpecRecord
	Ratings *domain.RatingRecord `json:"ratings,omitempty"`
}

func (h *Handlers) GetSpec(c echo.Context) error {
	ctx := c.Request().Context()

	spec, err := h.specs.GetSpec(ctx, c.Param("id"))
	if errors.Is(err, domain.ErrNotFound) {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "spec not found"})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	resp := specResponse{TechnicalSpecRecord: spec}
	if rating, err := h.specs.GetRating(ctx, spec.ID); err == nil {
		resp.Ratings = rating
	}

	return c.JSON(http.StatusOK, resp)
}

func (h *Handlers) FindSpecs(c echo.Context) error {
	title := c.QueryParam("title")
	if title == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "title query parameter is required"})
	}

	specs, err := h.specs.FindSpecsByTitle(c.Request().Context(), title)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, specs)
}
