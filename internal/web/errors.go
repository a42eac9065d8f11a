package web

// errors.go provides unified error response handling for the API.
//
// The error flow:
//  1. Handler encounters an error
//  2. Calls respondError(w, r, err), which picks the status with statusFor
//  3. Error is mapped via core.MapError to get a user-friendly message
//  4. Technical error is logged with the request ID for correlation
//  5. Client receives {"error","message","action","code"}

import (
	"context"
	"errors"
	"net/http"

	"github.com/JonMunkholm/orderimport/internal/core"
	"github.com/JonMunkholm/orderimport/internal/logging"
)

var (
	errNoFile       = errors.New("no file provided")
	errInvalidParam = errors.New("invalid query parameter")
	errRateLimited  = errors.New("rate limit exceeded")
)

// ErrorResponse represents the JSON structure for API error responses.
// Includes both machine-readable (Code) and human-readable (Message, Action) fields.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
}

// statusFor maps service and request errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, errNoFile),
		errors.Is(err, core.ErrEmptyFile),
		errors.Is(err, errInvalidParam),
		errors.Is(err, core.ErrInvalidDateRange):
		return http.StatusBadRequest
	case errors.Is(err, core.ErrUserNotFound):
		return http.StatusNotFound
	case errors.Is(err, core.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, core.ErrUnsupportedContentType):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, core.ErrUnreadableFile):
		return http.StatusUnprocessableEntity
	case errors.Is(err, core.ErrTooManyUploads):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, errRateLimited):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes err with the status chosen by statusFor.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	respondErrorStatus(w, r, err, statusFor(err))
}

// respondErrorStatus logs the technical error server-side and returns the
// catalogued user message to the client.
func respondErrorStatus(w http.ResponseWriter, r *http.Request, err error, statusCode int) {
	userMsg := core.MapError(err)

	logger := logging.FromContext(r.Context())
	attrs := []any{
		"path", r.URL.Path,
		"method", r.Method,
		"status", statusCode,
		"error", err.Error(),
		"code", userMsg.Code,
	}
	if statusCode >= http.StatusInternalServerError {
		logger.Error("request error", attrs...)
	} else {
		logger.Warn("request error", attrs...)
	}

	writeJSON(w, statusCode, ErrorResponse{
		Error:   userMsg.Message,
		Message: userMsg.Message,
		Action:  userMsg.Action,
		Code:    userMsg.Code,
	})
}
