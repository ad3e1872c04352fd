package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestTaskStatusTransitions(t *testing.T) {
	cases := []struct {
		from    TaskStatus
		to      TaskStatus
		allowed bool
	}{
		{StatusNew, StatusPending, true},
		{StatusNew, StatusRemind, true},
		{StatusPending, StatusRemind, true},
		{StatusRemind, StatusPending, true},
		{StatusNew, StatusCompleted, true},
		{StatusPending, StatusCompleted, true},
		{StatusRemind, StatusCompleted, true},
		{StatusNew, StatusCancelled, true},
		{StatusPending, StatusCancelled, true},
		{StatusRemind, StatusCancelled, true},

		// Terminal states permit nothing.
		{StatusCompleted, StatusPending, false},
		{StatusCompleted, StatusRemind, false},
		{StatusCompleted, StatusCancelled, false},
		{StatusCancelled, StatusPending, false},
		{StatusCancelled, StatusCompleted, false},
		{StatusCancelled, StatusNew, false},

		// No path back to new.
		{StatusPending, StatusNew, false},
		{StatusRemind, StatusNew, false},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.allowed, tc.from.CanTransitionTo(tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestTaskStatusTransitions_SameStatusIsNoOp(t *testing.T) {
	for _, s := range []TaskStatus{StatusNew, StatusPending, StatusRemind, StatusCompleted, StatusCancelled} {
		assert.True(t, s.CanTransitionTo(s), "%s -> %s", s, s)
	}
}

func TestTaskStatusValid(t *testing.T) {
	assert.True(t, StatusRemind.Valid())
	assert.False(t, TaskStatus("archived").Valid())
	assert.False(t, TaskStatus("").Valid())
}

func TestResolveReminderTime(t *testing.T) {
	userA := primitive.NewObjectID()
	userB := primitive.NewObjectID()
	due := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	reminderA := due.Add(-30 * time.Minute)

	settings := []ReminderSetting{
		{UserID: userA, ReminderDateTime: reminderA},
	}

	assert.Equal(t, reminderA, ResolveReminderTime(settings, userA, due))

	// No entry for the user: the due time is the implicit reminder time.
	assert.Equal(t, due, ResolveReminderTime(settings, userB, due))
	assert.Equal(t, due, ResolveReminderTime(nil, userA, due))
}
