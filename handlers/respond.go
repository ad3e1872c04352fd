package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/durmussoy/TaskManagementSystem/logging"
	"github.com/durmussoy/TaskManagementSystem/services"
)

var validate = validator.New()

type messageResponse struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, messageResponse{Message: message})
}

// handleServiceError maps service errors onto the HTTP taxonomy: validation
// 400, permission 403, not-found 404, everything else a generic 500.
func handleServiceError(w http.ResponseWriter, err error) {
	var ve *services.ValidationError
	switch {
	case errors.As(err, &ve):
		writeError(w, http.StatusBadRequest, ve.Message)
	case errors.Is(err, services.ErrUsernameTaken):
		writeError(w, http.StatusBadRequest, "Username is already taken")
	case errors.Is(err, services.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "Invalid username or password")
	case errors.Is(err, services.ErrPermissionDenied):
		writeError(w, http.StatusForbidden, "You do not have permission to perform this action")
	case errors.Is(err, services.ErrTaskNotFound):
		writeError(w, http.StatusNotFound, "Task not found")
	case errors.Is(err, services.ErrUserNotFound):
		writeError(w, http.StatusNotFound, "User not found")
	case errors.Is(err, services.ErrRoleNotFound):
		writeError(w, http.StatusNotFound, "Role not found")
	default:
		logging.Logger.Errorf("Event ID: REQUEST_FAILED, Description: Unhandled service error: %v", err)
		writeError(w, http.StatusInternalServerError, "Server error")
	}
}
