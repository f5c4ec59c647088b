package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	habitsDomain "github.com/svenhofer/timegrid/internal/habits/domain"
	insightsDomain "github.com/svenhofer/timegrid/internal/insights/domain"
	meetingsDomain "github.com/svenhofer/timegrid/internal/meetings/domain"
	"github.com/svenhofer/timegrid/internal/productivity/domain/task"
	schedulingDomain "github.com/svenhofer/timegrid/internal/scheduling/domain"
)

// FixedItemKind distinguishes the sources of fixed grid items.
type FixedItemKind string

const (
	KindMeeting FixedItemKind = "meeting"
	KindHabit   FixedItemKind = "habit"
	KindSession FixedItemKind = "session"
	KindTask    FixedItemKind = "task"
)

// FixedItem is anything with a fixed time that occupies slots before
// tasks are placed: a meeting, a due habit occurrence, or a tracked
// session. InProgress items have no end yet and occupy only the slot
// containing their start.
type FixedItem struct {
	Kind       FixedItemKind
	RefID      uuid.UUID
	Title      string
	CategoryID *uuid.UUID
	Start      time.Time
	End        time.Time
	InProgress bool
}

// SlotOccupancy pairs a grid slot with the fixed items covering it.
// Multiple occupants per slot are allowed for display; the scheduler
// treats any occupant as making the slot unavailable.
type SlotOccupancy struct {
	Slot      schedulingDomain.Slot
	Occupants []FixedItem
}

// Free reports whether no fixed item covers the slot.
func (s SlotOccupancy) Free() bool {
	return len(s.Occupants) == 0
}

// PlaceFixedItems marks which grid slots each fixed item covers. A slot
// is occupied when the half-open slot interval [start, start+15m)
// intersects the item interval [item.Start, item.End). The input item
// order is preserved within each slot's occupant list.
func PlaceFixedItems(slots []schedulingDomain.Slot, items []FixedItem) []SlotOccupancy {
	occupancy := make([]SlotOccupancy, len(slots))
	for i, slot := range slots {
		occupancy[i] = SlotOccupancy{Slot: slot}
	}

	for _, item := range items {
		for i := range occupancy {
			slot := occupancy[i].Slot
			if item.InProgress {
				// Running items pin only their start slot.
				if !item.Start.Before(slot.Start) && item.Start.Before(slot.End()) {
					occupancy[i].Occupants = append(occupancy[i].Occupants, item)
				}
				continue
			}
			if slot.Start.Before(item.End) && item.Start.Before(slot.End()) {
				occupancy[i].Occupants = append(occupancy[i].Occupants, item)
			}
		}
	}

	return occupancy
}

// ScheduledTaskItems converts tasks already placed on the day into fixed
// items, so later passes and the timeline treat their slots as taken.
// Tasks missing a start hour or duration carry no placement and are
// skipped.
func ScheduledTaskItems(day time.Time, tasks []*task.Task) []FixedItem {
	var items []FixedItem
	for _, t := range tasks {
		startHour := t.StartHour()
		duration := t.DurationHours()
		if startHour == nil || duration == nil {
			continue
		}
		start := day.Add(time.Duration(*startHour * float64(time.Hour)))
		items = append(items, FixedItem{
			Kind:  KindTask,
			RefID: t.ID(),
			Title: t.Title(),
			Start: start,
			End:   start.Add(time.Duration(*duration * float64(time.Hour))),
		})
	}
	return items
}

// OccupiedSlots returns the indexes of slots with at least one occupant.
func OccupiedSlots(occupancy []SlotOccupancy) map[int]bool {
	occupied := make(map[int]bool)
	for i, slot := range occupancy {
		if !slot.Free() {
			occupied[i] = true
		}
	}
	return occupied
}

// FixedItemCollector assembles the fixed items for a user's day from the
// meetings, habits, and insights contexts.
type FixedItemCollector struct {
	meetingRepo meetingsDomain.Repository
	habitRepo   habitsDomain.Repository
	sessionRepo insightsDomain.SessionRepository
	logger      *slog.Logger
}

// NewFixedItemCollector creates a collector.
func NewFixedItemCollector(
	meetingRepo meetingsDomain.Repository,
	habitRepo habitsDomain.Repository,
	sessionRepo insightsDomain.SessionRepository,
	logger *slog.Logger,
) *FixedItemCollector {
	if logger == nil {
		logger = slog.Default()
	}
	return &FixedItemCollector{
		meetingRepo: meetingRepo,
		habitRepo:   habitRepo,
		sessionRepo: sessionRepo,
		logger:      logger,
	}
}

// CollectForDay gathers meetings, due habit occurrences, and sessions
// for the date. Habits whose override resolution yields no start time
// are skipped; a habit referenced by an override that no longer exists
// is logged and skipped rather than failing the pass.
func (c *FixedItemCollector) CollectForDay(ctx context.Context, userID uuid.UUID, day time.Time) ([]FixedItem, error) {
	dayStart := schedulingDomain.StartOfDay(day)
	dayEnd := schedulingDomain.EndOfDay(day)

	var items []FixedItem

	meetings, err := c.meetingRepo.FindByUserInRange(ctx, userID, dayStart, dayEnd)
	if err != nil {
		return nil, err
	}
	for _, meeting := range meetings {
		items = append(items, FixedItem{
			Kind:       KindMeeting,
			RefID:      meeting.ID(),
			Title:      meeting.Title(),
			CategoryID: meeting.CategoryID(),
			Start:      meeting.StartAt(),
			End:        meeting.EndAt(),
		})
	}

	habitItems, err := c.collectHabits(ctx, userID, dayStart)
	if err != nil {
		return nil, err
	}
	items = append(items, habitItems...)

	sessions, err := c.sessionRepo.FindByUserInRange(ctx, userID, dayStart, dayEnd)
	if err != nil {
		return nil, err
	}
	for _, session := range sessions {
		item := FixedItem{
			Kind:       KindSession,
			RefID:      session.ID(),
			Title:      "Session",
			CategoryID: session.CategoryID(),
			Start:      session.StartedAt(),
		}
		if end := session.EndedAt(); end != nil {
			item.End = *end
		} else {
			item.InProgress = true
		}
		items = append(items, item)
	}

	return items, nil
}

func (c *FixedItemCollector) collectHabits(ctx context.Context, userID uuid.UUID, dayStart time.Time) ([]FixedItem, error) {
	habits, err := c.habitRepo.FindActiveByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	overrides, err := c.habitRepo.FindOverridesForDay(ctx, userID, dayStart)
	if err != nil {
		return nil, err
	}

	known := make(map[uuid.UUID]bool, len(habits))
	var items []FixedItem
	for _, habit := range habits {
		known[habit.ID()] = true
		if !habit.IsDueOn(dayStart) {
			continue
		}

		minute, ok := habit.EffectiveStart(dayStart, overrides[habit.ID()])
		if !ok {
			continue
		}

		start := dayStart.Add(time.Duration(minute) * time.Minute)
		items = append(items, FixedItem{
			Kind:  KindHabit,
			RefID: habit.ID(),
			Title: habit.Name(),
			Start: start,
			End:   start.Add(time.Duration(habit.DurationMinutes()) * time.Minute),
		})
	}

	// Overrides pointing at deleted or archived habits must not abort
	// the pass.
	for habitID := range overrides {
		if !known[habitID] {
			c.logger.Warn("override references unknown habit, skipping",
				"habit_id", habitID,
				"user_id", userID,
				"day", dayStart.Format("2006-01-02"),
			)
		}
	}

	return items, nil
}
