package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/durmussoy/TaskManagementSystem/models"
	"github.com/durmussoy/TaskManagementSystem/utils"
)

type TaskService struct {
	tasksCollection *mongo.Collection
	usersCollection *mongo.Collection
}

func NewTaskService(tasksCollection, usersCollection *mongo.Collection) *TaskService {
	return &TaskService{
		tasksCollection: tasksCollection,
		usersCollection: usersCollection,
	}
}

// GetTasksForUser returns every task where the user is assignee or creator,
// newest-created first. No pagination; the whole set comes back in one
// response.
func (s *TaskService) GetTasksForUser(ctx context.Context, userID primitive.ObjectID) ([]models.TaskView, error) {
	filter := bson.M{"$or": []bson.M{
		{"assignedTo": userID},
		{"createdBy": userID},
	}}
	opts := options.Find().SetSort(bson.M{"createdAt": -1})

	cursor, err := s.tasksCollection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve tasks: %v", err)
	}
	defer cursor.Close(ctx)

	var tasks []models.Task
	if err := cursor.All(ctx, &tasks); err != nil {
		return nil, fmt.Errorf("failed to decode tasks: %v", err)
	}

	return s.populate(ctx, tasks, userID, time.Now())
}

func (s *TaskService) CreateTask(ctx context.Context, userID primitive.ObjectID, input CreateTaskInput) (*models.TaskView, error) {
	task, err := NewTaskFromInput(input, userID, time.Now())
	if err != nil {
		return nil, err
	}

	result, err := s.tasksCollection.InsertOne(ctx, task)
	if err != nil {
		return nil, fmt.Errorf("failed to create task: %v", err)
	}
	task.ID = result.InsertedID.(primitive.ObjectID)

	return s.populateOne(ctx, task, userID)
}

// UpdateTask performs a field-level merge under the date-ordering and
// status-transition invariants. Only the creator or the assignee may
// update; a supplied reminder time is upserted into the requester's
// reminderSettings entry.
func (s *TaskService) UpdateTask(ctx context.Context, userID, taskID primitive.ObjectID, upd TaskUpdate) (*models.TaskView, error) {
	task, err := s.findTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if !CanModifyTask(task, userID) {
		return nil, ErrPermissionDenied
	}

	if err := ApplyTaskUpdate(task, upd, userID, time.Now()); err != nil {
		return nil, err
	}

	// Last write wins; concurrent updates to the same task are not
	// version-checked.
	if _, err := s.tasksCollection.ReplaceOne(ctx, bson.M{"_id": taskID}, task); err != nil {
		return nil, fmt.Errorf("failed to update task: %v", err)
	}

	return s.populateOne(ctx, task, userID)
}

// DeleteTask is an unconditional hard delete, allowed for the creator only.
func (s *TaskService) DeleteTask(ctx context.Context, userID, taskID primitive.ObjectID) error {
	task, err := s.findTask(ctx, taskID)
	if err != nil {
		return err
	}
	if !CanDeleteTask(task, userID) {
		return ErrPermissionDenied
	}

	if _, err := s.tasksCollection.DeleteOne(ctx, bson.M{"_id": taskID}); err != nil {
		return fmt.Errorf("failed to delete task: %v", err)
	}
	return nil
}

func (s *TaskService) findTask(ctx context.Context, taskID primitive.ObjectID) (*models.Task, error) {
	var task models.Task
	err := s.tasksCollection.FindOne(ctx, bson.M{"_id": taskID}).Decode(&task)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrTaskNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve task: %v", err)
	}
	return &task, nil
}

func (s *TaskService) populateOne(ctx context.Context, task *models.Task, requester primitive.ObjectID) (*models.TaskView, error) {
	views, err := s.populate(ctx, []models.Task{*task}, requester, time.Now())
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// populate resolves assignedTo/createdBy into user references and computes
// each task's remaining time for the requesting user.
func (s *TaskService) populate(ctx context.Context, tasks []models.Task, requester primitive.ObjectID, now time.Time) ([]models.TaskView, error) {
	ids := make([]primitive.ObjectID, 0, len(tasks)*2)
	seen := make(map[primitive.ObjectID]bool)
	for _, t := range tasks {
		for _, id := range []primitive.ObjectID{t.AssignedTo, t.CreatedBy} {
			if !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
	}

	refs := make(map[primitive.ObjectID]models.UserRef, len(ids))
	if len(ids) > 0 {
		cursor, err := s.usersCollection.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
		if err != nil {
			return nil, fmt.Errorf("failed to retrieve task users: %v", err)
		}
		defer cursor.Close(ctx)

		var users []models.User
		if err := cursor.All(ctx, &users); err != nil {
			return nil, fmt.Errorf("failed to decode task users: %v", err)
		}
		for _, u := range users {
			refs[u.ID] = models.UserRef{ID: u.ID, Username: u.Username, Name: u.Name}
		}
	}

	views := make([]models.TaskView, 0, len(tasks))
	for _, t := range tasks {
		reminder := models.ResolveReminderTime(t.ReminderSettings, requester, t.DueDateTime)
		views = append(views, models.TaskView{
			ID:               t.ID,
			Title:            t.Title,
			Description:      t.Description,
			Status:           t.Status,
			DueDateTime:      t.DueDateTime,
			SubTasks:         t.SubTasks,
			ReminderSettings: t.ReminderSettings,
			AssignedTo:       refs[t.AssignedTo],
			CreatedBy:        refs[t.CreatedBy],
			CreatedAt:        t.CreatedAt,
			UpdatedAt:        t.UpdatedAt,
			RemainingTime:    utils.RemainingTimeText(now, reminder, t.DueDateTime),
		})
	}
	return views, nil
}
