package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/mesh-intelligence/boardroom/internal/form"
)

// Error codes of the JSON error envelope.
const (
	codeBadRequest    = "bad_request"
	codeUnauthorized  = "unauthorized"
	codeUnknownModule = "unknown_module"
	codeUnknownChart  = "unknown_chart"
	codeNotFound      = "not_found"
	codeReadOnly      = "read_only"
	codeUnavailable   = "unavailable"
	codeInternal      = "internal"
)

// errorResponse is the envelope of every error reply.
type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, errorResponse{Error: code, Message: msg})
}

// stateStatus maps a submission state to its HTTP status. created selects
// 201 for a successful create.
func stateStatus(state form.State, created bool) int {
	switch state {
	case form.StateSucceeded:
		if created {
			return http.StatusCreated
		}
		return http.StatusOK
	case form.StateNotReady:
		return http.StatusUnauthorized
	case form.StateForbidden:
		return http.StatusForbidden
	case form.StateBusy:
		return http.StatusConflict
	case form.StateCancelled:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
