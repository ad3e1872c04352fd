package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/durmussoy/TaskManagementSystem/middleware"
	"github.com/durmussoy/TaskManagementSystem/models"
	"github.com/durmussoy/TaskManagementSystem/services"
)

type TaskHandler struct {
	service *services.TaskService
}

func NewTaskHandler(service *services.TaskService) *TaskHandler {
	return &TaskHandler{service: service}
}

type createTaskRequest struct {
	Title            string           `json:"title" validate:"required"`
	Description      string           `json:"description" validate:"required"`
	DueDateTime      time.Time        `json:"dueDateTime" validate:"required"`
	ReminderDateTime *time.Time       `json:"reminderDateTime"`
	Status           string           `json:"status"`
	SubTasks         []models.SubTask `json:"subTasks"`
	AssignedTo       string           `json:"assignedTo"`
}

type updateTaskRequest struct {
	Title            *string           `json:"title"`
	Description      *string           `json:"description"`
	Status           *string           `json:"status"`
	DueDateTime      *time.Time        `json:"dueDateTime"`
	SubTasks         *[]models.SubTask `json:"subTasks"`
	ReminderDateTime *time.Time        `json:"reminderDateTime"`
}

func (h *TaskHandler) GetTasks(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Authorization required")
		return
	}

	tasks, err := h.service.GetTasksForUser(r.Context(), userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, tasks)
}

func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Authorization required")
		return
	}

	var req createTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request data")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "All fields are required")
		return
	}

	input := services.CreateTaskInput{
		Title:            req.Title,
		Description:      req.Description,
		DueDateTime:      req.DueDateTime,
		ReminderDateTime: req.ReminderDateTime,
		Status:           models.TaskStatus(req.Status),
		SubTasks:         req.SubTasks,
	}
	if req.AssignedTo != "" {
		assignedTo, err := primitive.ObjectIDFromHex(req.AssignedTo)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid user ID format")
			return
		}
		input.AssignedTo = &assignedTo
	}

	task, err := h.service.CreateTask(r.Context(), userID, input)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, task)
}

func (h *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Authorization required")
		return
	}

	taskID, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid task ID format")
		return
	}

	var req updateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request data")
		return
	}

	upd := services.TaskUpdate{
		Title:            req.Title,
		Description:      req.Description,
		DueDateTime:      req.DueDateTime,
		SubTasks:         req.SubTasks,
		ReminderDateTime: req.ReminderDateTime,
	}
	if req.Status != nil {
		status := models.TaskStatus(*req.Status)
		upd.Status = &status
	}

	task, err := h.service.UpdateTask(r.Context(), userID, taskID, upd)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, task)
}

func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Authorization required")
		return
	}

	taskID, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid task ID format")
		return
	}

	if err := h.service.DeleteTask(r.Context(), userID, taskID); err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{Message: "Task deleted successfully"})
}
