package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"discspec/internal/domain"
	"discspec/internal/service"
)

type SSEHandler struct {
	bus  *service.EventBus
	jobs *service.JobService
}

func NewSSEHandler(bus *service.EventBus, jobs *service.JobService) *SSEHandler {
	return &SSEHandler{bus: bus, jobs: jobs}
}

// sseWrite writes one SSE event with a JSON payload and flushes it.
func sseWrite(w http.ResponseWriter, eventName string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	_, _ = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", eventName, data)
	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}

// Events streams status updates for one job until it reaches a terminal
// state or the client disconnects.
func (h *SSEHandler) Events(c echo.Context) error {
	jobID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid job id"})
	}

	job, err := h.jobs.Get(c.Request().Context(), jobID)
	if errors.Is(err, domain.ErrNotFound) {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "job not found"})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	w := c.Response()
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	// Current state first, so late subscribers see something immediately.
	sseWrite(w, "status", service.Event{JobID: job.ID, Status: job.Status, SpecID: job.SpecID, Message: job.ErrorMessage})
	if job.Status == domain.JobStatusCompleted || job.Status == domain.JobStatusFailed {
		return nil
	}

	ch := h.bus.Subscribe(jobID)
	defer h.bus.Unsubscribe(jobID, ch)

	ctx := c.Request().Context()
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-ch:
			if !ok {
				return nil
			}
			sseWrite(w, "status", event)
			if event.Status == domain.JobStatusCompleted || event.Status == domain.JobStatusFailed {
				return nil
			}
		}
	}
}
