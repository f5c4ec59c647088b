package domain

import (
	"time"

	"github.com/google/uuid"
	sharedDomain "github.com/svenhofer/timegrid/internal/shared/domain"
)

const (
	AggregateType = "Meeting"

	RoutingKeyMeetingCreated     = "meetings.meeting.created"
	RoutingKeyMeetingRescheduled = "meetings.meeting.rescheduled"
)

// MeetingCreated is emitted when a meeting is created
type MeetingCreated struct {
	sharedDomain.BaseEvent
	UserID     uuid.UUID  `json:"user_id"`
	Title      string     `json:"title"`
	CategoryID *uuid.UUID `json:"category_id,omitempty"`
	StartAt    time.Time  `json:"start_at"`
	EndAt      time.Time  `json:"end_at"`
}

// NewMeetingCreated creates a MeetingCreated event
func NewMeetingCreated(meeting *Meeting) MeetingCreated {
	return MeetingCreated{
		BaseEvent:  sharedDomain.NewBaseEvent(meeting.ID(), AggregateType, RoutingKeyMeetingCreated),
		UserID:     meeting.UserID(),
		Title:      meeting.Title(),
		CategoryID: meeting.CategoryID(),
		StartAt:    meeting.StartAt(),
		EndAt:      meeting.EndAt(),
	}
}

// MeetingRescheduled is emitted when a meeting is moved
type MeetingRescheduled struct {
	sharedDomain.BaseEvent
	UserID     uuid.UUID `json:"user_id"`
	OldStartAt time.Time `json:"old_start_at"`
	OldEndAt   time.Time `json:"old_end_at"`
	NewStartAt time.Time `json:"new_start_at"`
	NewEndAt   time.Time `json:"new_end_at"`
}

// NewMeetingRescheduled creates a MeetingRescheduled event
func NewMeetingRescheduled(meeting *Meeting, oldStart, oldEnd time.Time) MeetingRescheduled {
	return MeetingRescheduled{
		BaseEvent:  sharedDomain.NewBaseEvent(meeting.ID(), AggregateType, RoutingKeyMeetingRescheduled),
		UserID:     meeting.UserID(),
		OldStartAt: oldStart,
		OldEndAt:   oldEnd,
		NewStartAt: meeting.StartAt(),
		NewEndAt:   meeting.EndAt(),
	}
}
