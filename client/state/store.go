// Package state is the agent's in-memory application state: the task list
// fetched from the server and the ephemeral activity log. All access goes
// through accessors; server responses are the only values merged back.
package state

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/durmussoy/TaskManagementSystem/models"
)

type EventType string

const (
	EventCreate   EventType = "create"
	EventUpdate   EventType = "update"
	EventComplete EventType = "complete"
	EventCancel   EventType = "cancel"
	EventDelete   EventType = "delete"
	EventPostpone EventType = "postpone"
	EventReminder EventType = "reminder"
)

// ActivityEvent records one task mutation. Events live only in memory and
// are lost when the agent exits.
type ActivityEvent struct {
	ID        string
	Type      EventType
	Message   string
	Task      *models.TaskView
	Timestamp time.Time
}

type Store struct {
	mu     sync.RWMutex
	tasks  []models.TaskView
	events []ActivityEvent
}

func NewStore() *Store {
	return &Store{}
}

// ReplaceTasks swaps in a freshly fetched task list.
func (s *Store) ReplaceTasks(tasks []models.TaskView) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks = make([]models.TaskView, len(tasks))
	copy(s.tasks, tasks)
}

// Tasks returns a snapshot copy of the current list.
func (s *Store) Tasks() []models.TaskView {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.TaskView, len(s.tasks))
	copy(out, s.tasks)
	return out
}

// MergeTask overwrites the stored copy with the server's canonical record,
// appending when the task is not held yet.
func (s *Store) MergeTask(task models.TaskView) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.tasks {
		if s.tasks[i].ID == task.ID {
			s.tasks[i] = task
			return
		}
	}
	s.tasks = append(s.tasks, task)
}

func (s *Store) RemoveTask(id primitive.ObjectID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
			return
		}
	}
}

// AddEvent appends to the activity log, newest first.
func (s *Store) AddEvent(eventType EventType, message string, task *models.TaskView) ActivityEvent {
	event := ActivityEvent{
		ID:        uuid.New().String(),
		Type:      eventType,
		Message:   message,
		Task:      task,
		Timestamp: time.Now(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append([]ActivityEvent{event}, s.events...)
	return event
}

func (s *Store) Events() []ActivityEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]ActivityEvent, len(s.events))
	copy(out, s.events)
	return out
}

// StatusCounts summarizes the held tasks per status.
func (s *Store) StatusCounts() map[models.TaskStatus]int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	counts := make(map[models.TaskStatus]int)
	for _, t := range s.tasks {
		counts[t.Status]++
	}
	return counts
}
