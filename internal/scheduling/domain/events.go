package domain

import (
	"time"

	"github.com/google/uuid"
	sharedDomain "github.com/svenhofer/timegrid/internal/shared/domain"
)

const (
	AggregateType = "DayPlan"

	RoutingKeyDayScheduled = "scheduling.day.scheduled"
)

// DayScheduled is emitted after an auto-scheduling pass assigned start
// hours for a day.
type DayScheduled struct {
	sharedDomain.BaseEvent
	UserID         uuid.UUID `json:"user_id"`
	Day            time.Time `json:"day"`
	ScheduledTasks int       `json:"scheduled_tasks"`
	Unscheduled    int       `json:"unscheduled_tasks"`
}

// NewDayScheduled creates a DayScheduled event. The day itself serves as
// the aggregate identity: scheduling passes for the same user and day
// replace each other.
func NewDayScheduled(planID, userID uuid.UUID, day time.Time, scheduled, unscheduled int) DayScheduled {
	return DayScheduled{
		BaseEvent:      sharedDomain.NewBaseEvent(planID, AggregateType, RoutingKeyDayScheduled),
		UserID:         userID,
		Day:            StartOfDay(day),
		ScheduledTasks: scheduled,
		Unscheduled:    unscheduled,
	}
}
