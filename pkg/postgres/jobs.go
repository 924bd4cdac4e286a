package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/lmt321/lmt321/pkg/core/model"
	"github.com/lmt321/lmt321/pkg/db"
)

// DB implements db.JobStore interface.
var _ db.JobStore = &DB{}

// InsertJob inserts a job record. The request payload is stored as JSONB.
func (d *DB) InsertJob(ctx context.Context, record *model.JobRecord) error {
	_, err := d.pool.Exec(ctx, `
		INSERT INTO job_record (id, received_at, client_name, request)
		VALUES ($1, $2, $3, $4)
	`, record.JobID, record.ReceivedAt.UTC(), record.Data.ClientName, record.Data)
	if err != nil {
		return fmt.Errorf("failed to insert job record: %w", err)
	}
	return nil
}

// GetJob retrieves a job record by ID, returning *db.JobNotFoundError when absent
func (d *DB) GetJob(ctx context.Context, jobID string) (*model.JobRecord, error) {
	record := &model.JobRecord{}
	var receivedAt time.Time

	err := d.pool.QueryRow(ctx, `
		SELECT id, received_at, request
		FROM job_record
		WHERE id = $1
	`, jobID).Scan(&record.JobID, &receivedAt, &record.Data)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, &db.JobNotFoundError{JobID: jobID}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query job record: %w", err)
	}

	record.ReceivedAt = receivedAt.UTC()
	if record.Data.RolesNeeded == nil {
		record.Data.RolesNeeded = []model.Role{}
	}

	return record, nil
}

// ListJobs retrieves job summaries in insertion order
func (d *DB) ListJobs(ctx context.Context) ([]model.JobSummary, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT id, received_at
		FROM job_record
		ORDER BY seq
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query job records: %w", err)
	}
	defer rows.Close()

	summaries := []model.JobSummary{}
	for rows.Next() {
		var s model.JobSummary
		if err := rows.Scan(&s.JobID, &s.ReceivedAt); err != nil {
			return nil, fmt.Errorf("failed to scan job record: %w", err)
		}
		s.ReceivedAt = s.ReceivedAt.UTC()
		summaries = append(summaries, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating job records: %w", err)
	}

	return summaries, nil
}
