// Package edits models cross-modal edits as a closed set of variants.
// Commands from different contexts all disturb the same day grid; the
// variants here give the invalidation planner one exhaustive place to
// reason about what a given edit can touch.
package edits

import (
	"time"

	"github.com/google/uuid"
	schedulingDomain "github.com/svenhofer/timegrid/internal/scheduling/domain"
	"github.com/svenhofer/timegrid/internal/shared/infrastructure/cache"
)

// EditRequest is one user edit that may disturb cached day plans or
// weekly reports. The set of implementations is closed: the unexported
// marker keeps new variants inside this package, so PlanInvalidations
// stays exhaustive.
type EditRequest interface {
	editUser() uuid.UUID
	isEdit()
}

// MeetingEdit covers creating, moving, or deleting a meeting. For a
// create, Old* are zero; for a delete, New* are zero.
type MeetingEdit struct {
	UserID   uuid.UUID
	OldStart time.Time
	OldEnd   time.Time
	NewStart time.Time
	NewEnd   time.Time
}

func (e MeetingEdit) editUser() uuid.UUID { return e.UserID }
func (e MeetingEdit) isEdit()             {}

// HabitEdit covers habit changes scoped to one date: setting or
// clearing an override, or archiving a habit effective on Day.
type HabitEdit struct {
	UserID uuid.UUID
	Day    time.Time
}

func (e HabitEdit) editUser() uuid.UUID { return e.UserID }
func (e HabitEdit) isEdit()             {}

// TaskEdit covers task changes that can move placements: duration or
// order edits while the task is scheduled on Day. Nil Day means the task
// was unscheduled and no grid is affected.
type TaskEdit struct {
	UserID uuid.UUID
	Day    *time.Time
}

func (e TaskEdit) editUser() uuid.UUID { return e.UserID }
func (e TaskEdit) isEdit()             {}

// SessionEdit covers starting or stopping a tracked session on Day.
type SessionEdit struct {
	UserID uuid.UUID
	Day    time.Time
}

func (e SessionEdit) editUser() uuid.UUID { return e.UserID }
func (e SessionEdit) isEdit()             {}

// EditUserID returns the user an edit belongs to.
func EditUserID(edit EditRequest) uuid.UUID {
	return edit.editUser()
}

// PlanInvalidations maps an edit to the cache keys it dirties. Day
// plans are invalidated per touched day; meeting and session edits also
// dirty the weekly buffer report for their weeks.
func PlanInvalidations(edit EditRequest, weekStartDay time.Weekday) *cache.InvalidationSet {
	set := cache.NewInvalidationSet()
	userID := edit.editUser()

	switch e := edit.(type) {
	case MeetingEdit:
		for _, day := range daysCovered(e.OldStart, e.OldEnd) {
			set.AddDayPlan(userID, day)
		}
		for _, day := range daysCovered(e.NewStart, e.NewEnd) {
			set.AddDayPlan(userID, day)
		}
		if !e.OldStart.IsZero() {
			set.AddBufferUtilization(userID, schedulingDomain.StartOfWeek(e.OldStart, weekStartDay))
		}
		if !e.NewStart.IsZero() {
			set.AddBufferUtilization(userID, schedulingDomain.StartOfWeek(e.NewStart, weekStartDay))
		}
	case HabitEdit:
		set.AddDayPlan(userID, e.Day)
	case TaskEdit:
		if e.Day != nil {
			set.AddDayPlan(userID, *e.Day)
		}
	case SessionEdit:
		set.AddDayPlan(userID, e.Day)
		set.AddBufferUtilization(userID, schedulingDomain.StartOfWeek(e.Day, weekStartDay))
	}

	return set
}

// daysCovered lists the calendar days the interval [start, end] spans.
// A zero start means the interval does not exist.
func daysCovered(start, end time.Time) []time.Time {
	if start.IsZero() {
		return nil
	}
	if end.Before(start) {
		end = start
	}

	var days []time.Time
	for day := schedulingDomain.StartOfDay(start); !day.After(end); day = day.AddDate(0, 0, 1) {
		days = append(days, day)
	}
	return days
}
