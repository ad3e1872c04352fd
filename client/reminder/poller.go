// Package reminder approximates push reminders without any server push
// mechanism: a minute-cadence poll re-evaluates every held task against
// wall-clock time and reconciles the ones whose reminder has elapsed.
package reminder

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-co-op/gocron"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/durmussoy/TaskManagementSystem/client/api"
	"github.com/durmussoy/TaskManagementSystem/client/state"
	"github.com/durmussoy/TaskManagementSystem/logging"
	"github.com/durmussoy/TaskManagementSystem/models"
)

// TaskAPI is the slice of the server client the agent needs. Satisfied by
// *api.Client; tests substitute a fake.
type TaskAPI interface {
	ListTasks(ctx context.Context) ([]models.TaskView, error)
	CreateTask(ctx context.Context, req api.CreateTaskRequest) (*models.TaskView, error)
	UpdateTask(ctx context.Context, id string, req api.UpdateTaskRequest) (*models.TaskView, error)
	DeleteTask(ctx context.Context, id string) error
}

// Notifier raises the user-facing reminder cue.
type Notifier interface {
	Notify(task models.TaskView)
}

// ConsoleNotifier rings the terminal bell and writes a log line, standing in
// for the browser's audio element.
type ConsoleNotifier struct{}

func (ConsoleNotifier) Notify(task models.TaskView) {
	fmt.Printf("\a[REMINDER] %s\n", task.Title)
	logging.Logger.Infof("Event ID: REMINDER_CUE, Description: Notification raised for task %q", task.Title)
}

type Poller struct {
	api      TaskAPI
	store    *state.Store
	userID   primitive.ObjectID
	notifier Notifier

	// now is injected so poll cycles are testable without real timers.
	now func() time.Time

	scheduler *gocron.Scheduler

	// OnUnauthorized fires when the server rejects the token; the agent
	// clears its session and forces re-login.
	OnUnauthorized func()
}

func NewPoller(taskAPI TaskAPI, store *state.Store, userID primitive.ObjectID, notifier Notifier) *Poller {
	return &Poller{
		api:      taskAPI,
		store:    store,
		userID:   userID,
		notifier: notifier,
		now:      time.Now,
	}
}

// Start runs one cycle immediately, then schedules the rest on a cron
// expression firing at the top of every minute. Singleton mode keeps cycles
// from ever overlapping.
func (p *Poller) Start() error {
	p.scheduler = gocron.NewScheduler(time.UTC)
	p.scheduler.SingletonModeAll()

	if _, err := p.scheduler.Cron("* * * * *").Do(func() {
		p.RunCycle(p.now())
	}); err != nil {
		return fmt.Errorf("failed to schedule poll cycle: %v", err)
	}

	p.RunCycle(p.now())
	p.scheduler.StartAsync()
	logging.Logger.Info("Event ID: POLLER_STARTED, Description: Reminder poller running on a one-minute cadence.")
	return nil
}

func (p *Poller) Stop() {
	if p.scheduler != nil {
		p.scheduler.Stop()
	}
	logging.Logger.Info("Event ID: POLLER_STOPPED, Description: Reminder poller stopped.")
}

// RunCycle is one poll: refetch the task list, then transition every task
// whose resolved reminder time has elapsed. Failed calls are logged and left
// for the next cycle; the fixed cadence is the only retry mechanism.
func (p *Poller) RunCycle(now time.Time) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	tasks, err := p.api.ListTasks(ctx)
	switch {
	case errors.Is(err, api.ErrUnauthorized):
		logging.Logger.Warn("Event ID: POLLER_UNAUTHORIZED, Description: Session rejected by server, forcing logout.")
		if p.OnUnauthorized != nil {
			p.OnUnauthorized()
		}
		return
	case err != nil:
		// Scan the stale local copy; the next cycle refetches.
		logging.Logger.Warnf("Event ID: POLLER_REFRESH_FAILED, Description: Failed to refresh tasks: %v", err)
	default:
		p.store.ReplaceTasks(tasks)
	}

	for _, task := range p.store.Tasks() {
		if task.Status.Terminal() || task.Status == models.StatusRemind {
			continue
		}

		reminderTime := models.ResolveReminderTime(task.ReminderSettings, p.userID, task.DueDateTime)
		if reminderTime.After(now) {
			continue
		}

		status := models.StatusRemind
		updated, err := p.api.UpdateTask(ctx, task.ID.Hex(), api.UpdateTaskRequest{Status: &status})
		if err != nil {
			logging.Logger.Warnf("Event ID: REMINDER_UPDATE_FAILED, Description: Failed to mark task %q for reminding: %v", task.Title, err)
			continue
		}

		p.store.MergeTask(*updated)
		p.store.AddEvent(state.EventReminder, fmt.Sprintf("Reminder time reached for task %q", updated.Title), updated)
		p.notifier.Notify(*updated)
	}
}
