package db

import (
	"context"
	"fmt"

	"github.com/lmt321/lmt321/pkg/core/model"
)

// JobStore defines the interface for job record storage.
// Both the in-memory MemoryJobStore and postgres.DB implement this interface.
type JobStore interface {
	InsertJob(ctx context.Context, record *model.JobRecord) error
	GetJob(ctx context.Context, jobID string) (*model.JobRecord, error)
	ListJobs(ctx context.Context) ([]model.JobSummary, error)
}

// JobNotFoundError is returned by GetJob when no record has the requested ID
type JobNotFoundError struct {
	JobID string
}

func (e *JobNotFoundError) Error() string {
	return fmt.Sprintf("job %s not found", e.JobID)
}
