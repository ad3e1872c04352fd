package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/durmussoy/TaskManagementSystem/models"
)

var now = time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

func validInput() CreateTaskInput {
	return CreateTaskInput{
		Title:       "Pay rent",
		Description: "Transfer before the 5th",
		DueDateTime: now.Add(time.Hour),
	}
}

func TestNewTaskFromInput_Defaults(t *testing.T) {
	creator := primitive.NewObjectID()

	task, err := NewTaskFromInput(validInput(), creator, now)
	require.NoError(t, err)

	assert.Equal(t, models.StatusNew, task.Status)
	assert.Equal(t, creator, task.CreatedBy)
	assert.Equal(t, creator, task.AssignedTo, "creator is the assignee by default")

	// The creator's initial reminder entry falls back to the due time.
	require.Len(t, task.ReminderSettings, 1)
	assert.Equal(t, creator, task.ReminderSettings[0].UserID)
	assert.Equal(t, task.DueDateTime, task.ReminderSettings[0].ReminderDateTime)
}

func TestNewTaskFromInput_ExplicitAssigneeAndReminder(t *testing.T) {
	creator := primitive.NewObjectID()
	assignee := primitive.NewObjectID()
	reminder := now.Add(30 * time.Minute)

	input := validInput()
	input.AssignedTo = &assignee
	input.ReminderDateTime = &reminder
	input.Status = models.StatusPending

	task, err := NewTaskFromInput(input, creator, now)
	require.NoError(t, err)

	assert.Equal(t, assignee, task.AssignedTo)
	assert.Equal(t, models.StatusPending, task.Status)
	require.Len(t, task.ReminderSettings, 1)
	assert.Equal(t, reminder, task.ReminderSettings[0].ReminderDateTime)
}

func TestNewTaskFromInput_Validation(t *testing.T) {
	creator := primitive.NewObjectID()

	t.Run("due date in the past", func(t *testing.T) {
		input := validInput()
		input.DueDateTime = now.Add(-time.Minute)
		_, err := NewTaskFromInput(input, creator, now)
		assert.True(t, IsValidationError(err))
	})

	t.Run("reminder after due date", func(t *testing.T) {
		input := validInput()
		reminder := input.DueDateTime.Add(time.Minute)
		input.ReminderDateTime = &reminder
		_, err := NewTaskFromInput(input, creator, now)
		assert.True(t, IsValidationError(err))
	})

	t.Run("missing title", func(t *testing.T) {
		input := validInput()
		input.Title = ""
		_, err := NewTaskFromInput(input, creator, now)
		assert.True(t, IsValidationError(err))
	})

	t.Run("sub-task without title", func(t *testing.T) {
		input := validInput()
		input.SubTasks = []models.SubTask{{Title: "buy stamps"}, {Title: ""}}
		_, err := NewTaskFromInput(input, creator, now)
		assert.True(t, IsValidationError(err))
	})

	t.Run("unknown status", func(t *testing.T) {
		input := validInput()
		input.Status = "archived"
		_, err := NewTaskFromInput(input, creator, now)
		assert.True(t, IsValidationError(err))
	})
}

func TestTaskPermissions(t *testing.T) {
	creator := primitive.NewObjectID()
	assignee := primitive.NewObjectID()
	stranger := primitive.NewObjectID()

	task := &models.Task{CreatedBy: creator, AssignedTo: assignee}

	assert.True(t, CanModifyTask(task, creator))
	assert.True(t, CanModifyTask(task, assignee))
	assert.False(t, CanModifyTask(task, stranger))

	assert.True(t, CanDeleteTask(task, creator))
	assert.False(t, CanDeleteTask(task, assignee), "assignee may update but not delete")
	assert.False(t, CanDeleteTask(task, stranger))
}

func storedTask(creator primitive.ObjectID) *models.Task {
	return &models.Task{
		ID:          primitive.NewObjectID(),
		Title:       "Water the plants",
		Description: "Balcony and kitchen",
		Status:      models.StatusPending,
		DueDateTime: now.Add(2 * time.Hour),
		CreatedBy:   creator,
		AssignedTo:  creator,
		ReminderSettings: []models.ReminderSetting{
			{UserID: creator, ReminderDateTime: now.Add(time.Hour)},
		},
	}
}

func TestApplyTaskUpdate_FieldMerge(t *testing.T) {
	creator := primitive.NewObjectID()
	task := storedTask(creator)

	title := "Water all the plants"
	subTasks := []models.SubTask{{Title: "balcony", IsCompleted: true}, {Title: "kitchen"}}
	err := ApplyTaskUpdate(task, TaskUpdate{Title: &title, SubTasks: &subTasks}, creator, now)
	require.NoError(t, err)

	assert.Equal(t, title, task.Title)
	assert.Equal(t, subTasks, task.SubTasks)
	// Untouched fields keep their stored values.
	assert.Equal(t, "Balcony and kitchen", task.Description)
	assert.Equal(t, models.StatusPending, task.Status)
	assert.Equal(t, now, task.UpdatedAt)
}

func TestApplyTaskUpdate_ReminderUpsert(t *testing.T) {
	creator := primitive.NewObjectID()
	other := primitive.NewObjectID()
	task := storedTask(creator)

	// Existing entry is replaced in place.
	newReminder := now.Add(90 * time.Minute)
	err := ApplyTaskUpdate(task, TaskUpdate{ReminderDateTime: &newReminder}, creator, now)
	require.NoError(t, err)
	require.Len(t, task.ReminderSettings, 1)
	assert.Equal(t, newReminder, task.ReminderSettings[0].ReminderDateTime)

	// A second user gets their own appended entry.
	otherReminder := now.Add(30 * time.Minute)
	err = ApplyTaskUpdate(task, TaskUpdate{ReminderDateTime: &otherReminder}, other, now)
	require.NoError(t, err)
	require.Len(t, task.ReminderSettings, 2)
	assert.Equal(t, other, task.ReminderSettings[1].UserID)
	assert.Equal(t, otherReminder, task.ReminderSettings[1].ReminderDateTime)
}

func TestApplyTaskUpdate_DateValidation(t *testing.T) {
	creator := primitive.NewObjectID()

	t.Run("due date in the past", func(t *testing.T) {
		task := storedTask(creator)
		due := now.Add(-time.Minute)
		err := ApplyTaskUpdate(task, TaskUpdate{DueDateTime: &due}, creator, now)
		assert.True(t, IsValidationError(err))
	})

	t.Run("reminder validated against the new due date", func(t *testing.T) {
		task := storedTask(creator)
		due := now.Add(time.Hour)
		reminder := now.Add(2 * time.Hour) // fine against the stored due, not the new one
		err := ApplyTaskUpdate(task, TaskUpdate{DueDateTime: &due, ReminderDateTime: &reminder}, creator, now)
		assert.True(t, IsValidationError(err))
	})

	t.Run("reminder validated against the stored due date", func(t *testing.T) {
		task := storedTask(creator)
		reminder := task.DueDateTime.Add(time.Minute)
		err := ApplyTaskUpdate(task, TaskUpdate{ReminderDateTime: &reminder}, creator, now)
		assert.True(t, IsValidationError(err))
	})

	t.Run("failed update leaves the task unchanged", func(t *testing.T) {
		task := storedTask(creator)
		before := *task
		due := now.Add(-time.Minute)
		title := "changed"
		err := ApplyTaskUpdate(task, TaskUpdate{DueDateTime: &due, Title: &title}, creator, now)
		require.Error(t, err)
		assert.Equal(t, before.Title, task.Title)
		assert.Equal(t, before.DueDateTime, task.DueDateTime)
	})
}

func TestApplyTaskUpdate_StatusTransitions(t *testing.T) {
	creator := primitive.NewObjectID()

	t.Run("pending to remind stamps lastReminded", func(t *testing.T) {
		task := storedTask(creator)
		status := models.StatusRemind
		err := ApplyTaskUpdate(task, TaskUpdate{Status: &status}, creator, now)
		require.NoError(t, err)
		assert.Equal(t, models.StatusRemind, task.Status)
		require.NotNil(t, task.ReminderSettings[0].LastReminded)
		assert.Equal(t, now, *task.ReminderSettings[0].LastReminded)
	})

	t.Run("terminal states reject transitions", func(t *testing.T) {
		for _, terminal := range []models.TaskStatus{models.StatusCompleted, models.StatusCancelled} {
			task := storedTask(creator)
			task.Status = terminal
			status := models.StatusPending
			err := ApplyTaskUpdate(task, TaskUpdate{Status: &status}, creator, now)
			assert.True(t, IsValidationError(err), "out of %s", terminal)
			assert.Equal(t, terminal, task.Status)
		}
	})

	t.Run("postpone path remind to pending", func(t *testing.T) {
		task := storedTask(creator)
		task.Status = models.StatusRemind
		status := models.StatusPending
		reminder := now.Add(time.Hour)
		err := ApplyTaskUpdate(task, TaskUpdate{Status: &status, ReminderDateTime: &reminder}, creator, now)
		require.NoError(t, err)
		assert.Equal(t, models.StatusPending, task.Status)
		assert.Equal(t, reminder, task.ReminderSettings[0].ReminderDateTime)
	})
}
