package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/durmussoy/TaskManagementSystem/logging"
	"github.com/durmussoy/TaskManagementSystem/models"
	"github.com/durmussoy/TaskManagementSystem/services"
)

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	Token string             `json:"token"`
	User  models.UserProfile `json:"user"`
}

type LoginHandler struct {
	UserService *services.UserService
}

// Input length limits, matching registration.
func validateCredentials(username, password string) bool {
	if len(username) < 3 || len(username) > 20 {
		return false
	}
	if len(password) < 6 || len(password) > 72 {
		return false
	}
	return true
}

func (h *LoginHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request format")
		return
	}

	if !validateCredentials(req.Username, req.Password) {
		writeError(w, http.StatusBadRequest, "Invalid credentials format")
		return
	}

	user, token, err := h.UserService.LoginUser(r.Context(), req.Username, req.Password)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	logging.Logger.Infof("Event ID: USER_LOGIN, Description: Successful login for user %s", user.Username)
	writeJSON(w, http.StatusOK, LoginResponse{Token: token, User: *user})
}
