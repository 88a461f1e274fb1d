// Package api serves citation parsing over HTTP and WebSocket.
package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/FocuswithJustin/lectio/core/errors"
	"github.com/FocuswithJustin/lectio/internal/logging"
)

// APIResponse is the standard response envelope.
type APIResponse struct {
	Success bool      `json:"success"`
	Data    any       `json:"data,omitempty"`
	Error   *APIError `json:"error,omitempty"`
	Meta    *APIMeta  `json:"meta,omitempty"`
}

// APIError describes a failed request.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// APIMeta contains response metadata.
type APIMeta struct {
	Total     int    `json:"total,omitempty"`
	RequestID string `json:"request_id,omitempty"`
	Timestamp string `json:"timestamp"`
}

// Error codes.
const (
	CodeInvalidInput       = "INVALID_INPUT"
	CodeNotFound           = "NOT_FOUND"
	CodeUnsupported        = "UNSUPPORTED"
	CodeCatalogUnavailable = "CATALOG_UNAVAILABLE"
	CodeRateLimited        = "RATE_LIMIT_EXCEEDED"
	CodeInternal           = "INTERNAL_ERROR"
)

func newMeta(r *http.Request, total int) *APIMeta {
	return &APIMeta{
		Total:     total,
		RequestID: logging.GetRequestID(r.Context()),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}

func writeJSON(w http.ResponseWriter, status int, body APIResponse) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logging.Error("failed to encode response", "error", err)
	}
}

func respond(w http.ResponseWriter, r *http.Request, status int, data any) {
	writeJSON(w, status, APIResponse{Success: true, Data: data, Meta: newMeta(r, 0)})
}

func respondList(w http.ResponseWriter, r *http.Request, data any, total int) {
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: data, Meta: newMeta(r, total)})
}

func respondError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	writeJSON(w, status, APIResponse{
		Error: &APIError{Code: code, Message: message},
		Meta:  newMeta(r, 0),
	})
}

// respondErr maps err onto an HTTP status by its sentinel.
func respondErr(w http.ResponseWriter, r *http.Request, err error) {
	status, code := errorStatus(err)
	if status >= http.StatusInternalServerError {
		logging.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "error", err)
	}
	respondError(w, r, status, code, err.Error())
}

func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, errors.ErrInvalidInput):
		return http.StatusBadRequest, CodeInvalidInput
	case errors.Is(err, errors.ErrNotFound):
		return http.StatusNotFound, CodeNotFound
	case errors.Is(err, errors.ErrUnsupported):
		return http.StatusUnprocessableEntity, CodeUnsupported
	case errors.Is(err, errors.ErrPrecondition):
		return http.StatusServiceUnavailable, CodeCatalogUnavailable
	}
	return http.StatusInternalServerError, CodeInternal
}

func apiError(err error) *APIError {
	_, code := errorStatus(err)
	return &APIError{Code: code, Message: err.Error()}
}
