package services

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/durmussoy/TaskManagementSystem/models"
)

// CreateTaskInput carries the fields accepted when creating a task.
type CreateTaskInput struct {
	Title            string
	Description      string
	DueDateTime      time.Time
	ReminderDateTime *time.Time
	Status           models.TaskStatus
	SubTasks         []models.SubTask
	AssignedTo       *primitive.ObjectID
}

// TaskUpdate is a field-level merge: nil fields keep their stored value.
type TaskUpdate struct {
	Title            *string
	Description      *string
	Status           *models.TaskStatus
	DueDateTime      *time.Time
	SubTasks         *[]models.SubTask
	ReminderDateTime *time.Time
}

func validateSubTasks(subTasks []models.SubTask) error {
	for i, st := range subTasks {
		if st.Title == "" {
			return NewValidationError("Sub-task %d is missing a title", i+1)
		}
	}
	return nil
}

// NewTaskFromInput validates the create request and builds the task to
// persist. The creator is also the assignee unless one is given explicitly,
// and gets the initial reminderSettings entry (supplied reminder time, or
// the due time when omitted).
func NewTaskFromInput(input CreateTaskInput, creator primitive.ObjectID, now time.Time) (*models.Task, error) {
	if input.Title == "" || input.Description == "" {
		return nil, NewValidationError("All fields are required")
	}
	if input.DueDateTime.Before(now) {
		return nil, NewValidationError("Due date cannot be in the past")
	}
	if input.ReminderDateTime != nil && input.ReminderDateTime.After(input.DueDateTime) {
		return nil, NewValidationError("Reminder time cannot be after due date")
	}
	if err := validateSubTasks(input.SubTasks); err != nil {
		return nil, err
	}

	status := input.Status
	if status == "" {
		status = models.StatusNew
	}
	if !status.Valid() {
		return nil, NewValidationError("Invalid task status: %s", status)
	}

	assignedTo := creator
	if input.AssignedTo != nil {
		assignedTo = *input.AssignedTo
	}

	reminder := input.DueDateTime
	if input.ReminderDateTime != nil {
		reminder = *input.ReminderDateTime
	}

	return &models.Task{
		Title:       input.Title,
		Description: input.Description,
		Status:      status,
		DueDateTime: input.DueDateTime,
		SubTasks:    input.SubTasks,
		ReminderSettings: []models.ReminderSetting{
			{UserID: creator, ReminderDateTime: reminder},
		},
		AssignedTo: assignedTo,
		CreatedBy:  creator,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

// CanModifyTask: only the creator or the assignee may update a task.
func CanModifyTask(task *models.Task, userID primitive.ObjectID) bool {
	return task.CreatedBy == userID || task.AssignedTo == userID
}

// CanDeleteTask: only the creator may delete a task.
func CanDeleteTask(task *models.Task, userID primitive.ObjectID) bool {
	return task.CreatedBy == userID
}

// UpsertReminderSetting replaces the user's reminder entry in place, or
// appends one if the user has none yet.
func UpsertReminderSetting(task *models.Task, userID primitive.ObjectID, reminder time.Time) {
	for i := range task.ReminderSettings {
		if task.ReminderSettings[i].UserID == userID {
			task.ReminderSettings[i].ReminderDateTime = reminder
			return
		}
	}
	task.ReminderSettings = append(task.ReminderSettings, models.ReminderSetting{
		UserID:           userID,
		ReminderDateTime: reminder,
	})
}

// ApplyTaskUpdate merges the update into the task and re-validates the
// date-ordering and status-transition invariants. On error the task is left
// unchanged.
func ApplyTaskUpdate(task *models.Task, upd TaskUpdate, requester primitive.ObjectID, now time.Time) error {
	prospectiveDue := task.DueDateTime
	if upd.DueDateTime != nil {
		if upd.DueDateTime.Before(now) {
			return NewValidationError("Due date cannot be in the past")
		}
		prospectiveDue = *upd.DueDateTime
	}
	if upd.ReminderDateTime != nil && upd.ReminderDateTime.After(prospectiveDue) {
		return NewValidationError("Reminder time cannot be after due date")
	}
	if upd.Title != nil && *upd.Title == "" {
		return NewValidationError("Title cannot be empty")
	}
	if upd.Description != nil && *upd.Description == "" {
		return NewValidationError("Description cannot be empty")
	}
	if upd.SubTasks != nil {
		if err := validateSubTasks(*upd.SubTasks); err != nil {
			return err
		}
	}
	if upd.Status != nil {
		if !upd.Status.Valid() {
			return NewValidationError("Invalid task status: %s", *upd.Status)
		}
		if !task.Status.CanTransitionTo(*upd.Status) {
			return NewValidationError("Cannot change task status from %s to %s", task.Status, *upd.Status)
		}
	}

	if upd.Title != nil {
		task.Title = *upd.Title
	}
	if upd.Description != nil {
		task.Description = *upd.Description
	}
	if upd.Status != nil {
		task.Status = *upd.Status
	}
	if upd.DueDateTime != nil {
		task.DueDateTime = *upd.DueDateTime
	}
	if upd.SubTasks != nil {
		task.SubTasks = *upd.SubTasks
	}
	if upd.ReminderDateTime != nil {
		UpsertReminderSetting(task, requester, *upd.ReminderDateTime)
	}
	if upd.Status != nil && *upd.Status == models.StatusRemind {
		markLastReminded(task, requester, now)
	}
	task.UpdatedAt = now

	return nil
}

// markLastReminded stamps the requester's reminder entry when their reminder
// fires, creating an implicit entry (due time) if they had none.
func markLastReminded(task *models.Task, userID primitive.ObjectID, now time.Time) {
	for i := range task.ReminderSettings {
		if task.ReminderSettings[i].UserID == userID {
			task.ReminderSettings[i].LastReminded = &now
			return
		}
	}
	task.ReminderSettings = append(task.ReminderSettings, models.ReminderSetting{
		UserID:           userID,
		ReminderDateTime: task.DueDateTime,
		LastReminded:     &now,
	})
}
