package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type TaskStatus string

const (
	StatusNew       TaskStatus = "new"
	StatusPending   TaskStatus = "pending"
	StatusRemind    TaskStatus = "remind"
	StatusCompleted TaskStatus = "completed"
	StatusCancelled TaskStatus = "cancelled"
)

func (s TaskStatus) Valid() bool {
	switch s {
	case StatusNew, StatusPending, StatusRemind, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Terminal statuses permit no further transitions.
func (s TaskStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// CanTransitionTo reports whether the status change is allowed. Writing the
// same status back is always a permitted no-op. A task may be reminded
// straight from "new" because its reminder time can elapse before anyone
// opens it.
func (s TaskStatus) CanTransitionTo(next TaskStatus) bool {
	if s == next {
		return true
	}
	if s.Terminal() {
		return false
	}
	switch next {
	case StatusCompleted, StatusCancelled:
		return true
	case StatusPending:
		return s == StatusNew || s == StatusRemind
	case StatusRemind:
		return s == StatusNew || s == StatusPending
	}
	return false
}

type SubTask struct {
	Title       string `bson:"title" json:"title"`
	IsCompleted bool   `bson:"isCompleted" json:"isCompleted"`
}

// ReminderSetting is one user's reminder time for a task. Tasks without an
// entry for a given user fall back to the due time.
type ReminderSetting struct {
	UserID           primitive.ObjectID `bson:"userId" json:"userId"`
	ReminderDateTime time.Time          `bson:"reminderDateTime" json:"reminderDateTime"`
	LastReminded     *time.Time         `bson:"lastReminded,omitempty" json:"lastReminded,omitempty"`
}

type Task struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title            string             `bson:"title" json:"title"`
	Description      string             `bson:"description" json:"description"`
	Status           TaskStatus         `bson:"status" json:"status"`
	DueDateTime      time.Time          `bson:"dueDateTime" json:"dueDateTime"`
	SubTasks         []SubTask          `bson:"subTasks" json:"subTasks"`
	ReminderSettings []ReminderSetting  `bson:"reminderSettings" json:"reminderSettings"`
	AssignedTo       primitive.ObjectID `bson:"assignedTo" json:"assignedTo"`
	CreatedBy        primitive.ObjectID `bson:"createdBy" json:"createdBy"`
	CreatedAt        time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt        time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// UserRef is the populated form of a user reference in task responses.
type UserRef struct {
	ID       primitive.ObjectID `json:"id"`
	Username string             `json:"username"`
	Name     string             `json:"name"`
}

// TaskView is a task as returned by the API: user references populated and
// the remaining-time countdown computed for the requesting user.
type TaskView struct {
	ID               primitive.ObjectID `json:"id"`
	Title            string             `json:"title"`
	Description      string             `json:"description"`
	Status           TaskStatus         `json:"status"`
	DueDateTime      time.Time          `json:"dueDateTime"`
	SubTasks         []SubTask          `json:"subTasks"`
	ReminderSettings []ReminderSetting  `json:"reminderSettings"`
	AssignedTo       UserRef            `json:"assignedTo"`
	CreatedBy        UserRef            `json:"createdBy"`
	CreatedAt        time.Time          `json:"createdAt"`
	UpdatedAt        time.Time          `json:"updatedAt"`
	RemainingTime    string             `json:"remainingTime"`
}

// ResolveReminderTime returns the reminder time applicable to the given
// user: their reminderSettings entry if present, otherwise the due time.
func ResolveReminderTime(settings []ReminderSetting, userID primitive.ObjectID, due time.Time) time.Time {
	for _, s := range settings {
		if s.UserID == userID {
			return s.ReminderDateTime
		}
	}
	return due
}
