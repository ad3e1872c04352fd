package reminder

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/durmussoy/TaskManagementSystem/client/api"
	"github.com/durmussoy/TaskManagementSystem/client/state"
	"github.com/durmussoy/TaskManagementSystem/models"
)

var testNow = time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

type updateCall struct {
	id  string
	req api.UpdateTaskRequest
}

// fakeAPI applies updates to its own task list the way the server would, so
// subsequent ListTasks calls return the canonical state.
type fakeAPI struct {
	tasks     []models.TaskView
	listErr   error
	updateErr error
	updates   []updateCall
}

func (f *fakeAPI) ListTasks(ctx context.Context) ([]models.TaskView, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]models.TaskView, len(f.tasks))
	copy(out, f.tasks)
	return out, nil
}

func (f *fakeAPI) UpdateTask(ctx context.Context, id string, req api.UpdateTaskRequest) (*models.TaskView, error) {
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	f.updates = append(f.updates, updateCall{id: id, req: req})
	for i := range f.tasks {
		if f.tasks[i].ID.Hex() == id {
			if req.Status != nil {
				f.tasks[i].Status = *req.Status
			}
			if req.ReminderDateTime != nil && len(f.tasks[i].ReminderSettings) > 0 {
				f.tasks[i].ReminderSettings[0].ReminderDateTime = *req.ReminderDateTime
			}
			task := f.tasks[i]
			return &task, nil
		}
	}
	return nil, &api.APIError{Status: 404, Message: "Task not found"}
}

func (f *fakeAPI) CreateTask(ctx context.Context, req api.CreateTaskRequest) (*models.TaskView, error) {
	task := models.TaskView{
		ID:          primitive.NewObjectID(),
		Title:       req.Title,
		Description: req.Description,
		Status:      models.StatusNew,
		DueDateTime: req.DueDateTime,
	}
	f.tasks = append(f.tasks, task)
	return &task, nil
}

func (f *fakeAPI) DeleteTask(ctx context.Context, id string) error {
	for i := range f.tasks {
		if f.tasks[i].ID.Hex() == id {
			f.tasks = append(f.tasks[:i], f.tasks[i+1:]...)
			return nil
		}
	}
	return &api.APIError{Status: 404, Message: "Task not found"}
}

type countingNotifier struct {
	fired []models.TaskView
}

func (n *countingNotifier) Notify(task models.TaskView) {
	n.fired = append(n.fired, task)
}

func pendingTask(userID primitive.ObjectID, reminder time.Time) models.TaskView {
	return models.TaskView{
		ID:          primitive.NewObjectID(),
		Title:       "Call the dentist",
		Description: "Reschedule the checkup",
		Status:      models.StatusPending,
		DueDateTime: testNow.Add(2 * time.Hour),
		ReminderSettings: []models.ReminderSetting{
			{UserID: userID, ReminderDateTime: reminder},
		},
	}
}

func newTestPoller(f *fakeAPI, userID primitive.ObjectID) (*Poller, *state.Store, *countingNotifier) {
	store := state.NewStore()
	notifier := &countingNotifier{}
	p := NewPoller(f, store, userID, notifier)
	p.now = func() time.Time { return testNow }
	return p, store, notifier
}

func TestPollerFiresReminderExactlyOnce(t *testing.T) {
	userID := primitive.NewObjectID()
	f := &fakeAPI{tasks: []models.TaskView{pendingTask(userID, testNow.Add(-time.Minute))}}
	p, store, notifier := newTestPoller(f, userID)

	p.RunCycle(testNow)

	require.Len(t, f.updates, 1)
	require.NotNil(t, f.updates[0].req.Status)
	assert.Equal(t, models.StatusRemind, *f.updates[0].req.Status)
	assert.Equal(t, models.StatusRemind, store.Tasks()[0].Status)
	assert.Len(t, notifier.fired, 1)

	events := store.Events()
	require.Len(t, events, 1)
	assert.Equal(t, state.EventReminder, events[0].Type)
	assert.Contains(t, events[0].Message, "Call the dentist")

	// Repeated cycles never re-fire: the task is now remind and the status
	// filter excludes it.
	p.RunCycle(testNow.Add(time.Minute))
	p.RunCycle(testNow.Add(2 * time.Minute))

	assert.Len(t, f.updates, 1)
	assert.Len(t, store.Events(), 1)
	assert.Len(t, notifier.fired, 1)
}

func TestPollerFallsBackToDueTime(t *testing.T) {
	userID := primitive.NewObjectID()
	task := pendingTask(primitive.NewObjectID(), testNow.Add(time.Hour)) // someone else's setting
	task.DueDateTime = testNow.Add(-time.Minute)
	f := &fakeAPI{tasks: []models.TaskView{task}}
	p, _, _ := newTestPoller(f, userID)

	p.RunCycle(testNow)

	require.Len(t, f.updates, 1, "no entry for the user means the due time is the reminder time")
}

func TestPollerSkipsTerminalFutureAndReminding(t *testing.T) {
	userID := primitive.NewObjectID()

	completed := pendingTask(userID, testNow.Add(-time.Hour))
	completed.Status = models.StatusCompleted
	cancelled := pendingTask(userID, testNow.Add(-time.Hour))
	cancelled.Status = models.StatusCancelled
	reminding := pendingTask(userID, testNow.Add(-time.Hour))
	reminding.Status = models.StatusRemind
	future := pendingTask(userID, testNow.Add(10*time.Minute))

	f := &fakeAPI{tasks: []models.TaskView{completed, cancelled, reminding, future}}
	p, store, notifier := newTestPoller(f, userID)

	p.RunCycle(testNow)

	assert.Empty(t, f.updates)
	assert.Empty(t, store.Events())
	assert.Empty(t, notifier.fired)
}

func TestPollerRetriesOnNextCycleAfterFailure(t *testing.T) {
	userID := primitive.NewObjectID()
	f := &fakeAPI{tasks: []models.TaskView{pendingTask(userID, testNow.Add(-time.Minute))}}
	p, store, _ := newTestPoller(f, userID)

	f.updateErr = errors.New("connection refused")
	p.RunCycle(testNow)

	// The task stays in its last known state and nothing is logged.
	assert.Empty(t, f.updates)
	assert.Empty(t, store.Events())
	assert.Equal(t, models.StatusPending, store.Tasks()[0].Status)

	// The fixed cadence is the only retry mechanism.
	f.updateErr = nil
	p.RunCycle(testNow.Add(time.Minute))

	require.Len(t, f.updates, 1)
	assert.Len(t, store.Events(), 1)
	assert.Equal(t, models.StatusRemind, store.Tasks()[0].Status)
}

func TestPollerForcesLogoutOnUnauthorized(t *testing.T) {
	userID := primitive.NewObjectID()
	f := &fakeAPI{listErr: api.ErrUnauthorized}
	p, _, _ := newTestPoller(f, userID)

	loggedOut := false
	p.OnUnauthorized = func() { loggedOut = true }

	p.RunCycle(testNow)

	assert.True(t, loggedOut)
	assert.Empty(t, f.updates)
}

func TestPollerScansStaleCopyWhenRefreshFails(t *testing.T) {
	userID := primitive.NewObjectID()
	task := pendingTask(userID, testNow.Add(-time.Minute))
	f := &fakeAPI{tasks: []models.TaskView{task}, listErr: errors.New("timeout")}
	p, store, _ := newTestPoller(f, userID)
	store.ReplaceTasks([]models.TaskView{task})

	p.RunCycle(testNow)

	require.Len(t, f.updates, 1, "a failed refresh still scans the held tasks")
}
