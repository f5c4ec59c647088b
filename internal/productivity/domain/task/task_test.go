package task_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/svenhofer/timegrid/internal/productivity/domain/task"
)

func TestNewTask(t *testing.T) {
	userID := uuid.New()

	tk, err := task.NewTask(userID, "Write report")
	require.NoError(t, err)

	assert.Equal(t, userID, tk.UserID())
	assert.Equal(t, "Write report", tk.Title())
	assert.Nil(t, tk.ParentTaskID())
	assert.Nil(t, tk.DurationHours())
	assert.True(t, tk.Pending())
	assert.False(t, tk.Scheduled())

	_, err = task.NewTask(userID, "   ")
	assert.ErrorIs(t, err, task.ErrEmptyTitle)
}

func TestSubtaskTreeIsTwoLevels(t *testing.T) {
	userID := uuid.New()

	parent, err := task.NewTask(userID, "Launch prep")
	require.NoError(t, err)

	child, err := task.NewSubtask(userID, parent, "Draft announcement")
	require.NoError(t, err)
	require.NotNil(t, child.ParentTaskID())
	assert.Equal(t, parent.ID(), *child.ParentTaskID())

	_, err = task.NewSubtask(userID, child, "Too deep")
	assert.ErrorIs(t, err, task.ErrNestedSubtask)
}

func TestSetDuration(t *testing.T) {
	userID := uuid.New()
	tk, err := task.NewTask(userID, "Write report")
	require.NoError(t, err)
	tk.ClearDomainEvents()

	require.NoError(t, tk.SetDuration(1.5))
	require.NotNil(t, tk.DurationHours())
	assert.Equal(t, 1.5, *tk.DurationHours())

	events := tk.DomainEvents()
	require.Len(t, events, 1)
	assert.Equal(t, task.RoutingKeyTaskDurationChanged, events[0].RoutingKey())

	assert.ErrorIs(t, tk.SetDuration(0), task.ErrInvalidDuration)
	assert.ErrorIs(t, tk.SetDuration(-1), task.ErrInvalidDuration)
}

func TestAssignAndClearStartHour(t *testing.T) {
	userID := uuid.New()
	day := time.Date(2025, 7, 23, 16, 45, 0, 0, time.UTC)

	tk, err := task.NewTask(userID, "Write report")
	require.NoError(t, err)

	require.NoError(t, tk.AssignStartHour(day, 9.25))
	assert.True(t, tk.Scheduled())
	assert.False(t, tk.Pending())
	require.NotNil(t, tk.StartHour())
	assert.Equal(t, 9.25, *tk.StartHour())
	require.NotNil(t, tk.ScheduledOn())
	assert.Equal(t, time.Date(2025, 7, 23, 0, 0, 0, 0, time.UTC), *tk.ScheduledOn())

	assert.ErrorIs(t, tk.AssignStartHour(day, 24), task.ErrInvalidStartHour)
	assert.ErrorIs(t, tk.AssignStartHour(day, -0.5), task.ErrInvalidStartHour)

	tk.ClearStartHour()
	assert.Nil(t, tk.StartHour())
	assert.Nil(t, tk.ScheduledOn())
	assert.True(t, tk.Pending())
}

func TestComplete(t *testing.T) {
	userID := uuid.New()
	tk, err := task.NewTask(userID, "Write report")
	require.NoError(t, err)
	tk.ClearDomainEvents()

	require.NoError(t, tk.Complete())
	assert.True(t, tk.IsCompleted())
	assert.NotNil(t, tk.CompletedAt())
	assert.False(t, tk.Pending())

	events := tk.DomainEvents()
	require.Len(t, events, 1)
	assert.Equal(t, task.RoutingKeyTaskCompleted, events[0].RoutingKey())

	assert.ErrorIs(t, tk.Complete(), task.ErrTaskAlreadyComplete)
}
