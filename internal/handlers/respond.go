package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sbilibin2017/settle-sense/internal/logger"
	"github.com/sbilibin2017/settle-sense/internal/models"
)

// ErrorResponse is the body of every failed request.
// swagger:model ErrorResponse
type ErrorResponse struct {
	// Error message
	// default: Entry not found
	Error string `json:"error"`

	// Underlying cause, only set for failed migrations
	Details string `json:"details,omitempty"`
}

// MessageResponse is returned by actions that have nothing else to report.
// swagger:model MessageResponse
type MessageResponse struct {
	// default: Entry deleted successfully
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Log.Errorw("failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}

// statusFor maps a service error to its HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, models.ErrNotFound), errors.Is(err, models.ErrRestore):
		return http.StatusNotFound
	case errors.Is(err, models.ErrConstraintViolation):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// writeServiceError answers with the mapped status. Not-found errors carry their own message.
func writeServiceError(w http.ResponseWriter, err error, msg string) {
	status := statusFor(err)
	switch {
	case errors.Is(err, models.ErrNotFound):
		msg = "Entry not found"
	case errors.Is(err, models.ErrRestore):
		msg = "Invalid backup file"
	}
	writeError(w, status, msg)
}
