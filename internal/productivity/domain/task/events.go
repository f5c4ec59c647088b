package task

import (
	"time"

	"github.com/google/uuid"
	sharedDomain "github.com/svenhofer/timegrid/internal/shared/domain"
)

const (
	AggregateType = "Task"

	RoutingKeyTaskCreated         = "productivity.task.created"
	RoutingKeyTaskCompleted       = "productivity.task.completed"
	RoutingKeyTaskDurationChanged = "productivity.task.duration_changed"
)

// TaskCreated is emitted when a task is created
type TaskCreated struct {
	sharedDomain.BaseEvent
	UserID       uuid.UUID  `json:"user_id"`
	ParentTaskID *uuid.UUID `json:"parent_task_id,omitempty"`
	Title        string     `json:"title"`
}

// NewTaskCreated creates a TaskCreated event
func NewTaskCreated(t *Task) TaskCreated {
	return TaskCreated{
		BaseEvent:    sharedDomain.NewBaseEvent(t.ID(), AggregateType, RoutingKeyTaskCreated),
		UserID:       t.UserID(),
		ParentTaskID: t.ParentTaskID(),
		Title:        t.Title(),
	}
}

// TaskCompleted is emitted when a task is completed
type TaskCompleted struct {
	sharedDomain.BaseEvent
	UserID      uuid.UUID `json:"user_id"`
	CompletedAt time.Time `json:"completed_at"`
}

// NewTaskCompleted creates a TaskCompleted event
func NewTaskCompleted(t *Task) TaskCompleted {
	completedAt := time.Now().UTC()
	if t.CompletedAt() != nil {
		completedAt = *t.CompletedAt()
	}
	return TaskCompleted{
		BaseEvent:   sharedDomain.NewBaseEvent(t.ID(), AggregateType, RoutingKeyTaskCompleted),
		UserID:      t.UserID(),
		CompletedAt: completedAt,
	}
}

// TaskDurationChanged is emitted when a task's estimate changes. Cached
// day plans that include the task become stale.
type TaskDurationChanged struct {
	sharedDomain.BaseEvent
	UserID        uuid.UUID  `json:"user_id"`
	DurationHours float64    `json:"duration_hours"`
	ScheduledOn   *time.Time `json:"scheduled_on,omitempty"`
}

// NewTaskDurationChanged creates a TaskDurationChanged event. ScheduledOn
// is the day the task was placed on when the estimate changed, so
// consumers know which day plan went stale.
func NewTaskDurationChanged(t *Task, hours float64) TaskDurationChanged {
	return TaskDurationChanged{
		BaseEvent:     sharedDomain.NewBaseEvent(t.ID(), AggregateType, RoutingKeyTaskDurationChanged),
		UserID:        t.UserID(),
		DurationHours: hours,
		ScheduledOn:   t.ScheduledOn(),
	}
}
