// Package api exposes the intake service over HTTP.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/lmt321/lmt321/pkg/core/model"
	"github.com/lmt321/lmt321/pkg/core/services"
)

// JobService is the job store as seen by the handlers
type JobService interface {
	Intake(ctx context.Context, req model.JobRequest) (*model.JobRecord, error)
	Get(ctx context.Context, jobID string) (*model.JobRecord, error)
	List(ctx context.Context) ([]model.JobSummary, error)
}

// *services.Jobs implements JobService interface.
var _ JobService = &services.Jobs{}

// Options configures the router
type Options struct {
	ServiceName    string
	Version        string
	RequestTimeout time.Duration
}

type handler struct {
	jobs   JobService
	opts   Options
	logger *zap.Logger
	now    func() time.Time
}

// NewRouter builds the HTTP routes for the service
func NewRouter(jobs JobService, opts Options, logger *zap.Logger) http.Handler {
	h := &handler{
		jobs:   jobs,
		opts:   opts,
		logger: logger,
		now:    time.Now,
	}
	return h.routes()
}

func (h *handler) routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(h.logger))
	r.Use(recoverer(h.logger))
	if h.opts.RequestTimeout > 0 {
		r.Use(middleware.Timeout(h.opts.RequestTimeout))
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "not_found"})
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "method_not_allowed"})
	})

	r.Get("/", h.handleRoot)

	r.Route("/v1", func(r chi.Router) {
		r.Get("/health", h.handleHealth)
		r.Get("/engine/ping", h.handleEnginePing)

		r.Route("/jobs", func(r chi.Router) {
			r.Post("/intake", h.handleIntake)
			r.Get("/", h.handleListJobs)
			r.Get("/{jobID}", h.handleGetJob)
		})
	})

	r.Post("/request-tech", h.handleRequestTech)
	r.Post("/availability", h.handleAvailability)
	r.Post("/confirm", h.handleConfirm)

	return r
}
