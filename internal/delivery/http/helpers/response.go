package helpers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"gamecalendar/internal/domain"
)

// Error codes for API error responses. Use these with WriteJSONError.
const (
	ErrCodeBadRequest    = "bad_request"
	ErrCodeUnauthorized  = "unauthorized"
	ErrCodeForbidden     = "forbidden"
	ErrCodeNotFound      = "not_found"
	ErrCodeConflict      = "conflict"
	ErrCodeInternalError = "internal_error"
)

// APIError is the error object in the standardized API response envelope.
// Result carries the in-game calendar result code for failed calendar commands.
// swagger:model APIError
type APIError struct {
	Code    string               `json:"code"`
	Message string               `json:"message"`
	Result  domain.CommandResult `json:"result,omitempty"`
}

// APIResponse is the standardized envelope for all API responses.
// On success: Data is set, Error is nil. On error: Data is nil, Error is set.
// swagger:model APIResponse
type APIResponse struct {
	Data  any       `json:"data"`
	Error *APIError `json:"error"`
}

// WriteJSONSuccess sets Content-Type to application/json, writes statusCode, and
// encodes an APIResponse with the given data and error set to nil.
func WriteJSONSuccess(w http.ResponseWriter, statusCode int, data any) {
	writeJSON(w, statusCode, APIResponse{Data: data})
}

// WriteJSONError sets Content-Type to application/json, writes statusCode, and
// encodes an APIResponse with data nil and the given error code and message.
func WriteJSONError(w http.ResponseWriter, statusCode int, code, message string) {
	writeJSON(w, statusCode, APIResponse{Error: &APIError{Code: code, Message: message}})
}

// WriteCalendarError maps a calendar operation error to a status code and envelope.
// Unexpected errors are logged and reported as internal errors.
func WriteCalendarError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	status, code := http.StatusInternalServerError, ErrCodeInternalError
	switch {
	case errors.Is(err, domain.ErrAlreadyInvited), errors.Is(err, domain.ErrCapacityExceeded):
		status, code = http.StatusConflict, ErrCodeConflict
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrPlayerNotFound):
		status, code = http.StatusNotFound, ErrCodeNotFound
	case errors.Is(err, domain.ErrNotAuthorized):
		status, code = http.StatusForbidden, ErrCodeForbidden
	case errors.Is(err, domain.ErrInvalidArgument):
		status, code = http.StatusBadRequest, ErrCodeBadRequest
	default:
		logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
	}
	writeJSON(w, status, APIResponse{Error: &APIError{
		Code:    code,
		Message: err.Error(),
		Result:  domain.CommandResultFor(err),
	}})
}

func writeJSON(w http.ResponseWriter, statusCode int, body APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(body)
}
