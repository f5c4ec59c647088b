package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	sharedDomain "github.com/svenhofer/timegrid/internal/shared/domain"
)

var (
	ErrMeetingEmptyTitle   = errors.New("meeting title cannot be empty")
	ErrMeetingInvalidRange = errors.New("meeting end must be after start")
)

// Meeting is a fixed calendar item occupying slots on the day grid.
type Meeting struct {
	sharedDomain.BaseAggregateRoot
	userID     uuid.UUID
	title      string
	categoryID *uuid.UUID
	startAt    time.Time
	endAt      time.Time
	held       bool
}

// NewMeeting creates a new meeting. categoryID may be nil; uncategorized
// meetings still occupy slots and roll up under the Uncategorized bucket
// in reports.
func NewMeeting(userID uuid.UUID, title string, categoryID *uuid.UUID, startAt, endAt time.Time) (*Meeting, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, ErrMeetingEmptyTitle
	}
	if !endAt.After(startAt) {
		return nil, ErrMeetingInvalidRange
	}

	meeting := &Meeting{
		BaseAggregateRoot: sharedDomain.NewBaseAggregateRoot(),
		userID:            userID,
		title:             title,
		categoryID:        copyUUIDPtr(categoryID),
		startAt:           startAt,
		endAt:             endAt,
	}

	meeting.AddDomainEvent(NewMeetingCreated(meeting))

	return meeting, nil
}

// Getters
func (m *Meeting) UserID() uuid.UUID  { return m.userID }
func (m *Meeting) Title() string      { return m.title }
func (m *Meeting) StartAt() time.Time { return m.startAt }
func (m *Meeting) EndAt() time.Time   { return m.endAt }
func (m *Meeting) WasHeld() bool      { return m.held }

// CategoryID returns the category reference, or nil for uncategorized.
func (m *Meeting) CategoryID() *uuid.UUID {
	return copyUUIDPtr(m.categoryID)
}

// Duration returns the meeting length.
func (m *Meeting) Duration() time.Duration {
	return m.endAt.Sub(m.startAt)
}

// Reschedule moves the meeting to a new time window.
func (m *Meeting) Reschedule(startAt, endAt time.Time) error {
	if !endAt.After(startAt) {
		return ErrMeetingInvalidRange
	}
	oldStart, oldEnd := m.startAt, m.endAt
	m.startAt = startAt
	m.endAt = endAt
	m.Touch()
	m.AddDomainEvent(NewMeetingRescheduled(m, oldStart, oldEnd))
	return nil
}

// SetCategory updates the category reference.
func (m *Meeting) SetCategory(categoryID *uuid.UUID) {
	m.categoryID = copyUUIDPtr(categoryID)
	m.Touch()
}

// MarkHeld records that the meeting took place.
func (m *Meeting) MarkHeld() {
	if m.held {
		return
	}
	m.held = true
	m.Touch()
}

// RehydrateMeeting recreates a meeting from persisted state without
// generating events.
func RehydrateMeeting(
	id, userID uuid.UUID,
	title string,
	categoryID *uuid.UUID,
	startAt, endAt time.Time,
	held bool,
	createdAt, updatedAt time.Time,
) *Meeting {
	baseEntity := sharedDomain.RehydrateBaseEntity(id, createdAt, updatedAt)
	return &Meeting{
		BaseAggregateRoot: sharedDomain.RehydrateBaseAggregateRoot(baseEntity),
		userID:            userID,
		title:             title,
		categoryID:        copyUUIDPtr(categoryID),
		startAt:           startAt,
		endAt:             endAt,
		held:              held,
	}
}

func copyUUIDPtr(id *uuid.UUID) *uuid.UUID {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}
