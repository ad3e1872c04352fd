package reminder

import (
	"context"
	"fmt"
	"time"

	"github.com/durmussoy/TaskManagementSystem/client/api"
	"github.com/durmussoy/TaskManagementSystem/client/state"
	"github.com/durmussoy/TaskManagementSystem/models"
	"github.com/durmussoy/TaskManagementSystem/utils"
)

// Actions are the user-initiated task mutations. Each persists through the
// API, merges the server's canonical record back into local state, and
// appends one activity event.
type Actions struct {
	api   TaskAPI
	store *state.Store

	now func() time.Time
}

func NewActions(taskAPI TaskAPI, store *state.Store) *Actions {
	return &Actions{api: taskAPI, store: store, now: time.Now}
}

// Refresh refetches the full task list.
func (a *Actions) Refresh(ctx context.Context) error {
	tasks, err := a.api.ListTasks(ctx)
	if err != nil {
		return err
	}
	a.store.ReplaceTasks(tasks)
	return nil
}

func (a *Actions) Create(ctx context.Context, req api.CreateTaskRequest) (*models.TaskView, error) {
	task, err := a.api.CreateTask(ctx, req)
	if err != nil {
		return nil, err
	}
	a.store.MergeTask(*task)
	a.store.AddEvent(state.EventCreate, fmt.Sprintf("Task %q has been created", task.Title), task)
	return task, nil
}

// Open marks a freshly created task as seen: new tasks move to pending the
// first time the user opens them.
func (a *Actions) Open(ctx context.Context, task models.TaskView) error {
	if task.Status != models.StatusNew {
		return nil
	}
	updated, err := a.setStatus(ctx, task, models.StatusPending)
	if err != nil {
		return err
	}
	a.store.AddEvent(state.EventUpdate, fmt.Sprintf("Task %q status changed from new to pending", updated.Title), updated)
	return nil
}

func (a *Actions) Update(ctx context.Context, task models.TaskView, req api.UpdateTaskRequest) error {
	updated, err := a.api.UpdateTask(ctx, task.ID.Hex(), req)
	if err != nil {
		return err
	}
	a.store.MergeTask(*updated)
	a.store.AddEvent(state.EventUpdate, fmt.Sprintf("Task %q has been updated", updated.Title), updated)
	return nil
}

func (a *Actions) Complete(ctx context.Context, task models.TaskView) error {
	updated, err := a.setStatus(ctx, task, models.StatusCompleted)
	if err != nil {
		return err
	}
	a.store.AddEvent(state.EventComplete, fmt.Sprintf("Task %q has been completed", updated.Title), updated)
	return nil
}

func (a *Actions) Cancel(ctx context.Context, task models.TaskView) error {
	updated, err := a.setStatus(ctx, task, models.StatusCancelled)
	if err != nil {
		return err
	}
	a.store.AddEvent(state.EventCancel, fmt.Sprintf("Task %q has been cancelled", updated.Title), updated)
	return nil
}

func (a *Actions) Delete(ctx context.Context, task models.TaskView) error {
	if err := a.api.DeleteTask(ctx, task.ID.Hex()); err != nil {
		return err
	}
	a.store.RemoveTask(task.ID)
	a.store.AddEvent(state.EventDelete, fmt.Sprintf("Task %q has been deleted", task.Title), &task)
	return nil
}

// Postpone pushes the requester's reminder time forward by the given number
// of minutes (from now, rounded down to the minute), or to an explicit
// custom target, and puts the task back to pending.
func (a *Actions) Postpone(ctx context.Context, task models.TaskView, minutes int, custom *time.Time) error {
	var newReminder time.Time
	if custom != nil {
		newReminder = *custom
	} else {
		newReminder = utils.RoundToMinute(a.now()).Add(time.Duration(minutes) * time.Minute)
	}

	status := models.StatusPending
	updated, err := a.api.UpdateTask(ctx, task.ID.Hex(), api.UpdateTaskRequest{
		Status:           &status,
		ReminderDateTime: &newReminder,
	})
	if err != nil {
		return err
	}

	a.store.MergeTask(*updated)
	a.store.AddEvent(state.EventPostpone,
		fmt.Sprintf("Task %q has been postponed by %s", updated.Title, utils.PostponeText(minutes, custom)),
		updated)
	return nil
}

func (a *Actions) setStatus(ctx context.Context, task models.TaskView, status models.TaskStatus) (*models.TaskView, error) {
	updated, err := a.api.UpdateTask(ctx, task.ID.Hex(), api.UpdateTaskRequest{Status: &status})
	if err != nil {
		return nil, err
	}
	a.store.MergeTask(*updated)
	return updated, nil
}
