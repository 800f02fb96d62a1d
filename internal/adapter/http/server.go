package http

import (
	"context"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"discspec/internal/port"
	"discspec/internal/service"
)

type Server struct {
	echo     *echo.Echo
	handlers *Handlers
	sse      *SSEHandler
}

func NewServer(jobSvc *service.JobService, worker *service.Worker, specs port.SpecStore, bus *service.EventBus) *Server {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	s := &Server{
		echo:     e,
		handlers: NewHandlers(jobSvc, worker, specs),
		sse:      NewSSEHandler(bus, jobSvc),
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	api := s.echo.Group("/api")
	api.POST("/jobs", s.handlers.CreateJob)
	api.GET("/jobs", s.handlers.ListJobs)
	api.GET("/jobs/:id", s.handlers.GetJob)
	api.POST("/process", s.handlers.ProcessBatch)
	api.GET("/specs", s.handlers.FindSpecs)
	api.GET("/specs/:id", s.handlers.GetSpec)
	api.GET("/events/:id", s.sse.Events)

	s.echo.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]string{"status": "ok"})
	})
}

func (s *Server) Start(addr string) error {
	return s.echo.Start(addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// Echo exposes the underlying router for tests.
func (s *Server) Echo() *echo.Echo {
	return s.echo
}
