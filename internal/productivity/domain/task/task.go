package task

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	sharedDomain "github.com/svenhofer/timegrid/internal/shared/domain"
)

var (
	ErrEmptyTitle          = errors.New("task title cannot be empty")
	ErrTaskAlreadyComplete = errors.New("task is already completed")
	ErrInvalidDuration     = errors.New("task duration must be positive")
	ErrInvalidStartHour    = errors.New("start hour must be within 0-24")
	ErrNestedSubtask       = errors.New("subtasks cannot have their own subtasks")
)

// Status represents the lifecycle state of a task.
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
)

// Task is a unit of work the auto-scheduler places into free slots.
// Tasks form a two-level tree: a task either has no parent (top-level)
// or points at a top-level parent. Only leaves participate in
// scheduling; a parent with subtasks is a grouping node.
type Task struct {
	sharedDomain.BaseAggregateRoot
	userID        uuid.UUID
	parentTaskID  *uuid.UUID
	title         string
	durationHours *float64
	startHour     *float64
	scheduledOn   *time.Time
	status        Status
	position      int
	completedAt   *time.Time
}

// NewTask creates a new top-level task.
func NewTask(userID uuid.UUID, title string) (*Task, error) {
	return newTask(userID, nil, title)
}

// NewSubtask creates a task under a top-level parent.
func NewSubtask(userID uuid.UUID, parent *Task, title string) (*Task, error) {
	if parent.parentTaskID != nil {
		return nil, ErrNestedSubtask
	}
	parentID := parent.ID()
	return newTask(userID, &parentID, title)
}

func newTask(userID uuid.UUID, parentTaskID *uuid.UUID, title string) (*Task, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, ErrEmptyTitle
	}

	t := &Task{
		BaseAggregateRoot: sharedDomain.NewBaseAggregateRoot(),
		userID:            userID,
		parentTaskID:      parentTaskID,
		title:             title,
		status:            StatusPending,
	}

	t.AddDomainEvent(NewTaskCreated(t))

	return t, nil
}

// Getters
func (t *Task) UserID() uuid.UUID       { return t.userID }
func (t *Task) Title() string           { return t.title }
func (t *Task) Status() Status          { return t.status }
func (t *Task) Position() int           { return t.position }
func (t *Task) CompletedAt() *time.Time { return t.completedAt }
func (t *Task) IsCompleted() bool       { return t.status == StatusCompleted }

// ParentTaskID returns the parent reference, or nil for top-level tasks.
func (t *Task) ParentTaskID() *uuid.UUID {
	if t.parentTaskID == nil {
		return nil
	}
	v := *t.parentTaskID
	return &v
}

// DurationHours returns the estimated duration in fractional hours, or
// nil when unestimated. Unestimated tasks are skipped by the scheduler.
func (t *Task) DurationHours() *float64 {
	return copyFloatPtr(t.durationHours)
}

// StartHour returns the assigned start as a fractional hour of day
// (e.g. 9.25 = 09:15), or nil when unscheduled.
func (t *Task) StartHour() *float64 {
	return copyFloatPtr(t.startHour)
}

// ScheduledOn returns the day the start hour was assigned for.
func (t *Task) ScheduledOn() *time.Time {
	if t.scheduledOn == nil {
		return nil
	}
	v := *t.scheduledOn
	return &v
}

// Scheduled reports whether the task has an assigned start hour.
func (t *Task) Scheduled() bool {
	return t.startHour != nil
}

// Pending reports whether the task still needs scheduling.
func (t *Task) Pending() bool {
	return t.status == StatusPending && t.startHour == nil
}

// SetTitle updates the task title.
func (t *Task) SetTitle(title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return ErrEmptyTitle
	}
	t.title = title
	t.Touch()
	return nil
}

// SetDuration updates the estimated duration and emits an event so
// cached day plans covering this task are flushed.
func (t *Task) SetDuration(hours float64) error {
	if hours <= 0 {
		return ErrInvalidDuration
	}
	t.durationHours = &hours
	t.Touch()
	t.AddDomainEvent(NewTaskDurationChanged(t, hours))
	return nil
}

// SetPosition updates the ordinal used for scheduler input ordering.
func (t *Task) SetPosition(position int) {
	t.position = position
	t.Touch()
}

// AssignStartHour records the scheduler's placement for a day.
func (t *Task) AssignStartHour(day time.Time, startHour float64) error {
	if startHour < 0 || startHour >= 24 {
		return ErrInvalidStartHour
	}
	d := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	t.startHour = &startHour
	t.scheduledOn = &d
	t.Touch()
	return nil
}

// ClearStartHour removes the assigned placement, returning the task to
// the pending pool.
func (t *Task) ClearStartHour() {
	t.startHour = nil
	t.scheduledOn = nil
	t.Touch()
}

// Complete marks the task as done.
func (t *Task) Complete() error {
	if t.status == StatusCompleted {
		return ErrTaskAlreadyComplete
	}
	now := time.Now().UTC()
	t.status = StatusCompleted
	t.completedAt = &now
	t.Touch()
	t.AddDomainEvent(NewTaskCompleted(t))
	return nil
}

// RehydrateTask recreates a task from persisted state without generating
// events.
func RehydrateTask(
	id, userID uuid.UUID,
	parentTaskID *uuid.UUID,
	title string,
	durationHours, startHour *float64,
	scheduledOn *time.Time,
	status Status,
	position int,
	completedAt *time.Time,
	createdAt, updatedAt time.Time,
) *Task {
	baseEntity := sharedDomain.RehydrateBaseEntity(id, createdAt, updatedAt)
	return &Task{
		BaseAggregateRoot: sharedDomain.RehydrateBaseAggregateRoot(baseEntity),
		userID:            userID,
		parentTaskID:      parentTaskID,
		title:             title,
		durationHours:     durationHours,
		startHour:         startHour,
		scheduledOn:       scheduledOn,
		status:            status,
		position:          position,
		completedAt:       completedAt,
	}
}

func copyFloatPtr(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
