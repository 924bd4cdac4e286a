package api

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/lmt321/lmt321/pkg/core/model"
	"github.com/lmt321/lmt321/pkg/core/services"
	"github.com/lmt321/lmt321/pkg/db"
)

type statusResponse struct {
	Status string `json:"status"`
}

type healthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Version string `json:"version"`
	TS      string `json:"ts"`
}

type engineResponse struct {
	Engine string `json:"engine"`
}

type jobResponse struct {
	OK bool `json:"ok"`
	*model.JobRecord
}

type jobNotFoundResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
	JobID string `json:"job_id"`
}

type jobListResponse struct {
	OK    bool               `json:"ok"`
	Count int                `json:"count"`
	Jobs  []model.JobSummary `json:"jobs"`
}

type techRequestResponse struct {
	Received  bool             `json:"received"`
	RequestID string           `json:"request_id"`
	Payload   model.JobRequest `json:"payload"`
}

type receivedResponse struct {
	Received bool `json:"received"`
	Payload  any  `json:"payload"`
}

// GET /
func (h *handler) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, statusResponse{Status: fmt.Sprintf("%s live", h.opts.ServiceName)})
}

// GET /v1/health
func (h *handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:  "ok",
		Service: h.opts.ServiceName,
		Version: h.opts.Version,
		TS:      h.now().UTC().Format(time.RFC3339Nano),
	})
}

// GET /v1/engine/ping
func (h *handler) handleEnginePing(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, engineResponse{Engine: "ok"})
}

// POST /v1/jobs/intake
func (h *handler) handleIntake(w http.ResponseWriter, r *http.Request) {
	var req model.JobRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeFailure(w, r, err)
		return
	}

	record, err := h.jobs.Intake(r.Context(), req)
	if err != nil {
		h.writeFailure(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, record)
}

// GET /v1/jobs/{jobID}
func (h *handler) handleGetJob(w http.ResponseWriter, r *http.Request) {
	// chi matches on the escaped path when one is present
	jobID := chi.URLParam(r, "jobID")
	if unescaped, err := url.PathUnescape(jobID); err == nil {
		jobID = unescaped
	}

	record, err := h.jobs.Get(r.Context(), jobID)
	var notFound *db.JobNotFoundError
	switch {
	case errors.As(err, &notFound):
		writeJSON(w, http.StatusOK, jobNotFoundResponse{
			OK:    false,
			Error: "job_not_found",
			JobID: notFound.JobID,
		})
	case err != nil:
		h.writeFailure(w, r, err)
	default:
		writeJSON(w, http.StatusOK, jobResponse{OK: true, JobRecord: record})
	}
}

// GET /v1/jobs
func (h *handler) handleListJobs(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.jobs.List(r.Context())
	if err != nil {
		h.writeFailure(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, jobListResponse{
		OK:    true,
		Count: len(summaries),
		Jobs:  summaries,
	})
}

// POST /request-tech
func (h *handler) handleRequestTech(w http.ResponseWriter, r *http.Request) {
	var req model.JobRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeFailure(w, r, err)
		return
	}

	result, err := services.RequestTech(h.logger, req)
	if err != nil {
		h.writeFailure(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, techRequestResponse{
		Received:  true,
		RequestID: result.RequestID,
		Payload:   result.Payload,
	})
}

// POST /availability
func (h *handler) handleAvailability(w http.ResponseWriter, r *http.Request) {
	availability := model.Availability{Available: true}
	if err := decodeJSON(w, r, &availability); err != nil {
		h.writeFailure(w, r, err)
		return
	}

	result, err := services.SubmitAvailability(h.logger, availability)
	if err != nil {
		h.writeFailure(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, receivedResponse{Received: true, Payload: result})
}

// POST /confirm
func (h *handler) handleConfirm(w http.ResponseWriter, r *http.Request) {
	var confirm model.ConfirmAssignment
	if err := decodeJSON(w, r, &confirm); err != nil {
		h.writeFailure(w, r, err)
		return
	}

	result, err := services.ConfirmAssignment(h.logger, confirm)
	if err != nil {
		h.writeFailure(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, receivedResponse{Received: true, Payload: result})
}
