package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/lmt321/lmt321/pkg/core/model"
	"github.com/lmt321/lmt321/pkg/core/validation"
	"github.com/lmt321/lmt321/pkg/db"
)

// Jobs handles job intake and lookup on top of a db.JobStore
type Jobs struct {
	store  db.JobStore
	logger *zap.Logger
	now    func() time.Time
	newID  func() string
}

// NewJobs creates a Jobs service backed by store
func NewJobs(store db.JobStore, logger *zap.Logger) *Jobs {
	return &Jobs{
		store:  store,
		logger: logger,
		now:    time.Now,
		newID:  func() string { return uuid.New().String() },
	}
}

// Intake validates the request and records it under a freshly generated ID.
// A request that fails validation returns *validation.Error and is never stored.
func (j *Jobs) Intake(ctx context.Context, req model.JobRequest) (*model.JobRecord, error) {
	req = normalizeJobRequest(req)

	if err := validation.Struct(req); err != nil {
		j.logger.Debug("Rejected job request", zap.Error(err))
		return nil, err
	}

	record := &model.JobRecord{
		JobID: j.newID(),
		// Postgres keeps microseconds; truncating here keeps both stores identical
		ReceivedAt: j.now().UTC().Truncate(time.Microsecond),
		Data:       req,
	}

	if err := j.store.InsertJob(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to store job: %w", err)
	}

	j.logger.Info("Job received",
		zap.String("job_id", record.JobID),
		zap.String("client_name", req.ClientName),
		zap.Int("roles", len(req.RolesNeeded)))

	return record, nil
}

// Get returns the job with the given ID, or *db.JobNotFoundError
func (j *Jobs) Get(ctx context.Context, jobID string) (*model.JobRecord, error) {
	record, err := j.store.GetJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	return record, nil
}

// List returns summaries of all jobs in the order they were received
func (j *Jobs) List(ctx context.Context) ([]model.JobSummary, error) {
	summaries, err := j.store.ListJobs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}
	return summaries, nil
}

func normalizeJobRequest(req model.JobRequest) model.JobRequest {
	req.ClientName = strings.TrimSpace(req.ClientName)
	if req.RolesNeeded == nil {
		req.RolesNeeded = []model.Role{}
	}
	return req
}
