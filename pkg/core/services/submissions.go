package services

import (
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/lmt321/lmt321/pkg/core/model"
	"github.com/lmt321/lmt321/pkg/core/validation"
)

// TechRequest is the acknowledgement for a legacy request-tech submission
type TechRequest struct {
	RequestID string
	Payload   model.JobRequest
}

// RequestTech validates a job request submitted through the legacy endpoint and
// assigns it a request ID. Nothing is stored.
func RequestTech(logger *zap.Logger, req model.JobRequest) (*TechRequest, error) {
	req = normalizeJobRequest(req)

	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	result := &TechRequest{
		RequestID: "req_" + uuid.New().String(),
		Payload:   req,
	}

	logger.Info("Tech request received",
		zap.String("request_id", result.RequestID),
		zap.String("client_name", req.ClientName))

	return result, nil
}

// SubmitAvailability validates a technician's availability and returns it unchanged
func SubmitAvailability(logger *zap.Logger, availability model.Availability) (*model.Availability, error) {
	if availability.Roles == nil {
		availability.Roles = []model.Role{}
	}

	// A whitespace-only name is rejected but the echoed payload keeps what was sent
	checked := availability
	checked.TechName = strings.TrimSpace(checked.TechName)
	if err := validation.Struct(checked); err != nil {
		return nil, err
	}

	logger.Info("Availability received",
		zap.String("tech_name", availability.TechName),
		zap.String("date", availability.Date),
		zap.Bool("available", availability.Available))

	return &availability, nil
}

// ConfirmAssignment validates an assignment confirmation and returns it unchanged.
// The request ID is not checked against stored jobs.
func ConfirmAssignment(logger *zap.Logger, confirm model.ConfirmAssignment) (*model.ConfirmAssignment, error) {
	checked := confirm
	checked.TechName = strings.TrimSpace(checked.TechName)
	checked.RequestID = strings.TrimSpace(checked.RequestID)
	if err := validation.Struct(checked); err != nil {
		return nil, err
	}

	logger.Info("Assignment confirmation received",
		zap.String("request_id", confirm.RequestID),
		zap.String("tech_name", confirm.TechName),
		zap.Bool("confirmed", *confirm.Confirmed))

	return &confirm, nil
}
