package queries

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	schedulingDomain "github.com/svenhofer/timegrid/internal/scheduling/domain"
)

// FindFreeSlotsQuery finds the free windows of a day that can hold an
// item of at least MinimumMinutes.
type FindFreeSlotsQuery struct {
	UserID         uuid.UUID
	Day            time.Time
	MinimumMinutes int
}

// Validate validates the query.
func (q FindFreeSlotsQuery) Validate() error {
	if q.UserID == uuid.Nil {
		return errors.New("user_id is required")
	}
	if q.Day.IsZero() {
		return errors.New("day is required")
	}
	if q.MinimumMinutes < 0 {
		return errors.New("minimum_minutes cannot be negative")
	}
	return nil
}

// FreeWindow is a contiguous run of unoccupied slots.
type FreeWindow struct {
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
	Minutes   int       `json:"minutes"`
	StartSlot int       `json:"start_slot"`
	SlotCount int       `json:"slot_count"`
}

// FindFreeSlotsHandler answers "where could something of this length
// still go today". It reuses the timeline handler so free windows and
// the displayed day agree on occupancy, cache included.
type FindFreeSlotsHandler struct {
	timeline *GetDayTimelineHandler
}

// NewFindFreeSlotsHandler creates a new FindFreeSlotsHandler.
func NewFindFreeSlotsHandler(timeline *GetDayTimelineHandler) *FindFreeSlotsHandler {
	return &FindFreeSlotsHandler{timeline: timeline}
}

// Handle executes the FindFreeSlotsQuery.
func (h *FindFreeSlotsHandler) Handle(ctx context.Context, q FindFreeSlotsQuery) ([]FreeWindow, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	timeline, err := h.timeline.Handle(ctx, GetDayTimelineQuery{UserID: q.UserID, Day: q.Day})
	if err != nil {
		return nil, err
	}

	var windows []FreeWindow
	run := -1
	flush := func(end int) {
		if run < 0 {
			return
		}
		count := end - run
		minutes := count * schedulingDomain.SlotMinutes
		if minutes >= q.MinimumMinutes {
			windows = append(windows, FreeWindow{
				Start:     timeline.Slots[run].Start,
				End:       timeline.Slots[end-1].End,
				Minutes:   minutes,
				StartSlot: run,
				SlotCount: count,
			})
		}
		run = -1
	}

	for i, slot := range timeline.Slots {
		if len(slot.Occupants) == 0 {
			if run < 0 {
				run = i
			}
			continue
		}
		flush(i)
	}
	flush(len(timeline.Slots))

	return windows, nil
}
