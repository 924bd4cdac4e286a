package model

import (
	"slices"
	"time"
)

// JobRequest is a client's request for technicians on an event.
// Optional fields are pointers so that absent values echo back as null.
type JobRequest struct {
	ClientName    string  `json:"client_name" validate:"required"`
	ClientCompany *string `json:"client_company"`
	ClientEmail   *string `json:"client_email" validate:"omitempty,email"`
	ClientPhone   *string `json:"client_phone"`

	EventName *string `json:"event_name"`
	VenueName *string `json:"venue_name"`
	Address   *string `json:"address"`
	City      *string `json:"city"`
	State     *string `json:"state"`
	Notes     *string `json:"notes"`

	StartTime   *string `json:"start_time"`
	EndTime     *string `json:"end_time"`
	RolesNeeded []Role  `json:"roles_needed" validate:"dive,role"`
	Headcount   *int    `json:"headcount" validate:"omitempty,gt=0"`
	BudgetNotes *string `json:"budget_notes"`
}

// Clone returns a deep copy of the request
func (r JobRequest) Clone() JobRequest {
	c := r
	c.ClientCompany = cloneString(r.ClientCompany)
	c.ClientEmail = cloneString(r.ClientEmail)
	c.ClientPhone = cloneString(r.ClientPhone)
	c.EventName = cloneString(r.EventName)
	c.VenueName = cloneString(r.VenueName)
	c.Address = cloneString(r.Address)
	c.City = cloneString(r.City)
	c.State = cloneString(r.State)
	c.Notes = cloneString(r.Notes)
	c.StartTime = cloneString(r.StartTime)
	c.EndTime = cloneString(r.EndTime)
	c.BudgetNotes = cloneString(r.BudgetNotes)
	c.RolesNeeded = slices.Clone(r.RolesNeeded)
	if r.Headcount != nil {
		h := *r.Headcount
		c.Headcount = &h
	}
	return c
}

// JobRecord is an accepted job request as held by a job store
type JobRecord struct {
	JobID      string     `json:"job_id"`
	ReceivedAt time.Time  `json:"received_at"`
	Data       JobRequest `json:"data"`
}

// Clone returns a deep copy of the record
func (r *JobRecord) Clone() *JobRecord {
	return &JobRecord{
		JobID:      r.JobID,
		ReceivedAt: r.ReceivedAt,
		Data:       r.Data.Clone(),
	}
}

// Summary projects the record down to its listing fields
func (r *JobRecord) Summary() JobSummary {
	return JobSummary{JobID: r.JobID, ReceivedAt: r.ReceivedAt}
}

// JobSummary is the listing projection of a JobRecord
type JobSummary struct {
	JobID      string    `json:"job_id"`
	ReceivedAt time.Time `json:"received_at"`
}

// Availability is a technician's availability for a single date
type Availability struct {
	TechName  string  `json:"tech_name" validate:"required"`
	TechEmail *string `json:"tech_email" validate:"omitempty,email"`
	TechPhone *string `json:"tech_phone"`
	Roles     []Role  `json:"roles" validate:"dive,role"`
	Date      string  `json:"date" validate:"required,datetime=2006-01-02"`
	Available bool    `json:"available"`
	Notes     *string `json:"notes"`
}

// ConfirmAssignment confirms (or declines) a technician for a request
type ConfirmAssignment struct {
	RequestID string  `json:"request_id" validate:"required"`
	TechName  string  `json:"tech_name" validate:"required"`
	TechEmail *string `json:"tech_email" validate:"omitempty,email"`
	Confirmed *bool   `json:"confirmed" validate:"required"`
	Notes     *string `json:"notes"`
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
