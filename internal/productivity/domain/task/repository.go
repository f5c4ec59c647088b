package task

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrTaskNotFound is returned when a task does not exist.
var ErrTaskNotFound = errors.New("task not found")

// Repository defines the interface for task persistence.
type Repository interface {
	// Save persists a task (create or update).
	Save(ctx context.Context, t *Task) error

	// FindByID finds a task by its ID.
	FindByID(ctx context.Context, id uuid.UUID) (*Task, error)

	// FindPendingByUserID finds pending tasks for a user ordered by
	// position. This is the scheduler's input order.
	FindPendingByUserID(ctx context.Context, userID uuid.UUID) ([]*Task, error)

	// FindScheduledOn finds tasks with an assigned start hour for a day.
	FindScheduledOn(ctx context.Context, userID uuid.UUID, day time.Time) ([]*Task, error)

	// FindSubtasks finds the direct children of a task.
	FindSubtasks(ctx context.Context, parentTaskID uuid.UUID) ([]*Task, error)

	// Delete removes a task and its subtasks.
	Delete(ctx context.Context, id uuid.UUID) error
}
