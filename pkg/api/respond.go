package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/lmt321/lmt321/pkg/core/validation"
)

// maxBodyBytes bounds request bodies; intake payloads are a few KB at most
const maxBodyBytes = 1 << 20

type errorResponse struct {
	Error   string                  `json:"error"`
	Message string                  `json:"message,omitempty"`
	Fields  []validation.FieldError `json:"fields,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// decodeJSON reads a single JSON object from the request body into dst.
// Keys must match a field's JSON name exactly; other keys are ignored.
// Type mismatches on known fields come back as *validation.Error so they are
// reported like any other field error.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return &bodyTooLargeError{limit: tooLarge.Limit}
		}
		return &decodeError{msg: "failed to read request body"}
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	var fields map[string]json.RawMessage
	if err := dec.Decode(&fields); err != nil {
		if errors.Is(err, io.EOF) {
			return &decodeError{msg: "request body is required"}
		}
		return &decodeError{msg: err.Error()}
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return &decodeError{msg: "request body must contain a single JSON object"}
	}

	// encoding/json folds key case; drop anything that is not an exact match
	known := jsonFieldNames(dst)
	for key := range fields {
		if !known[key] {
			delete(fields, key)
		}
	}

	exact, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("failed to re-encode request body: %w", err)
	}

	if err := json.Unmarshal(exact, dst); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			return validation.NewFieldError(typeErr.Field, fmt.Sprintf("expected %s, got %s", typeErr.Type, typeErr.Value))
		}
		return &decodeError{msg: err.Error()}
	}
	return nil
}

// jsonFieldNames lists the JSON keys of the struct dst points to
func jsonFieldNames(dst any) map[string]bool {
	t := reflect.TypeOf(dst)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	names := make(map[string]bool, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		switch name {
		case "-":
			continue
		case "":
			name = field.Name
		}
		names[name] = true
	}
	return names
}

type decodeError struct {
	msg string
}

func (e *decodeError) Error() string {
	return e.msg
}

type bodyTooLargeError struct {
	limit int64
}

func (e *bodyTooLargeError) Error() string {
	return fmt.Sprintf("request body exceeds %d bytes", e.limit)
}

// writeFailure maps an error from decoding or a service call onto a response.
// Anything unexpected is logged and reported without detail.
func (h *handler) writeFailure(w http.ResponseWriter, r *http.Request, err error) {
	var validationErr *validation.Error
	var decodeErr *decodeError
	var tooLargeErr *bodyTooLargeError

	switch {
	case errors.As(err, &validationErr):
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{
			Error:  "validation_failed",
			Fields: validationErr.Fields,
		})
	case errors.As(err, &decodeErr):
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Error:   "invalid_json",
			Message: decodeErr.msg,
		})
	case errors.As(err, &tooLargeErr):
		writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse{
			Error:   "body_too_large",
			Message: tooLargeErr.Error(),
		})
	default:
		h.logger.Error("Request failed",
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.String("path", r.URL.Path),
			zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal_error"})
	}
}
