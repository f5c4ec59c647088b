package domain

import (
	"time"

	"github.com/google/uuid"
	sharedDomain "github.com/svenhofer/timegrid/internal/shared/domain"
)

const (
	AggregateType = "Habit"

	RoutingKeyHabitCreated  = "habits.habit.created"
	RoutingKeyHabitArchived = "habits.habit.archived"
	RoutingKeyOverrideSet   = "habits.override.set"
)

// HabitCreated is emitted when a new habit is created
type HabitCreated struct {
	sharedDomain.BaseEvent
	UserID          uuid.UUID `json:"user_id"`
	Name            string    `json:"name"`
	DurationMinutes int       `json:"duration_minutes"`
	Frequency       string    `json:"frequency"`
}

// NewHabitCreated creates a HabitCreated event
func NewHabitCreated(habit *Habit) HabitCreated {
	return HabitCreated{
		BaseEvent:       sharedDomain.NewBaseEvent(habit.ID(), AggregateType, RoutingKeyHabitCreated),
		UserID:          habit.UserID(),
		Name:            habit.Name(),
		DurationMinutes: habit.DurationMinutes(),
		Frequency:       string(habit.Frequency()),
	}
}

// HabitArchived is emitted when a habit is archived
type HabitArchived struct {
	sharedDomain.BaseEvent
	UserID uuid.UUID `json:"user_id"`
}

// NewHabitArchived creates a HabitArchived event
func NewHabitArchived(habit *Habit) HabitArchived {
	return HabitArchived{
		BaseEvent: sharedDomain.NewBaseEvent(habit.ID(), AggregateType, RoutingKeyHabitArchived),
		UserID:    habit.UserID(),
	}
}

// OverrideSet is emitted when a per-date override is written. Consumers
// use it to flush cached day plans for the affected date.
type OverrideSet struct {
	sharedDomain.BaseEvent
	UserID      uuid.UUID `json:"user_id"`
	Day         time.Time `json:"day"`
	StartMinute *int      `json:"start_minute,omitempty"`
	Skipped     bool      `json:"skipped"`
}

// NewOverrideSet creates an OverrideSet event
func NewOverrideSet(habit *Habit, override *Override) OverrideSet {
	return OverrideSet{
		BaseEvent:   sharedDomain.NewBaseEvent(habit.ID(), AggregateType, RoutingKeyOverrideSet),
		UserID:      habit.UserID(),
		Day:         override.Day,
		StartMinute: override.StartMinute,
		Skipped:     override.Skipped,
	}
}
