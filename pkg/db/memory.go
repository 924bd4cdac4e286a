package db

import (
	"context"
	"fmt"
	"sync"

	"github.com/lmt321/lmt321/pkg/core/model"
)

// MemoryJobStore keeps job records for the lifetime of the process
type MemoryJobStore struct {
	mu      sync.RWMutex
	records map[string]*model.JobRecord
	order   []string
}

// MemoryJobStore implements JobStore interface.
var _ JobStore = &MemoryJobStore{}

// NewMemoryJobStore creates an empty MemoryJobStore
func NewMemoryJobStore() *MemoryJobStore {
	return &MemoryJobStore{
		records: make(map[string]*model.JobRecord),
	}
}

// InsertJob stores a copy of the record. Records are never replaced, so an ID
// that is already present is an error.
func (s *MemoryJobStore) InsertJob(ctx context.Context, record *model.JobRecord) error {
	if record == nil || record.JobID == "" {
		return fmt.Errorf("job record must have an ID")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.records[record.JobID]; exists {
		return fmt.Errorf("job %s already exists", record.JobID)
	}

	s.records[record.JobID] = record.Clone()
	s.order = append(s.order, record.JobID)

	return nil
}

// GetJob returns a copy of the record, or *JobNotFoundError
func (s *MemoryJobStore) GetJob(ctx context.Context, jobID string) (*model.JobRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.records[jobID]
	if !ok {
		return nil, &JobNotFoundError{JobID: jobID}
	}

	return record.Clone(), nil
}

// ListJobs returns summaries of all records in insertion order
func (s *MemoryJobStore) ListJobs(ctx context.Context) ([]model.JobSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	summaries := make([]model.JobSummary, 0, len(s.order))
	for _, id := range s.order {
		summaries = append(summaries, s.records[id].Summary())
	}

	return summaries, nil
}
