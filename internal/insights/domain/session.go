package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
	sharedDomain "github.com/svenhofer/timegrid/internal/shared/domain"
)

var (
	ErrSessionAlreadyEnded    = errors.New("session already ended")
	ErrSessionEndsBeforeStart = errors.New("session end must not precede start")
)

// TimeSession is a tracked block of focused time. A nil end means the
// session is still running: it occupies its start slot on the grid but
// contributes 0 minutes to utilization until stopped.
type TimeSession struct {
	sharedDomain.BaseAggregateRoot
	userID     uuid.UUID
	categoryID *uuid.UUID
	startedAt  time.Time
	endedAt    *time.Time
}

// StartSession begins a new session at the given instant.
func StartSession(userID uuid.UUID, categoryID *uuid.UUID, startedAt time.Time) *TimeSession {
	return &TimeSession{
		BaseAggregateRoot: sharedDomain.NewBaseAggregateRoot(),
		userID:            userID,
		categoryID:        copyUUIDPtr(categoryID),
		startedAt:         startedAt,
	}
}

// Getters
func (s *TimeSession) UserID() uuid.UUID    { return s.userID }
func (s *TimeSession) StartedAt() time.Time { return s.startedAt }

// CategoryID returns the category reference, or nil for uncategorized.
func (s *TimeSession) CategoryID() *uuid.UUID {
	return copyUUIDPtr(s.categoryID)
}

// EndedAt returns the end instant, or nil while running.
func (s *TimeSession) EndedAt() *time.Time {
	if s.endedAt == nil {
		return nil
	}
	v := *s.endedAt
	return &v
}

// InProgress reports whether the session is still running.
func (s *TimeSession) InProgress() bool {
	return s.endedAt == nil
}

// Minutes returns the session's contribution to spent time. Running
// sessions contribute 0.
func (s *TimeSession) Minutes() int {
	return IntervalMinutes(s.startedAt, s.endedAt)
}

// Stop ends the session.
func (s *TimeSession) Stop(endedAt time.Time) error {
	if s.endedAt != nil {
		return ErrSessionAlreadyEnded
	}
	if endedAt.Before(s.startedAt) {
		return ErrSessionEndsBeforeStart
	}
	s.endedAt = &endedAt
	s.Touch()
	return nil
}

// RehydrateTimeSession recreates a session from persisted state.
func RehydrateTimeSession(
	id, userID uuid.UUID,
	categoryID *uuid.UUID,
	startedAt time.Time,
	endedAt *time.Time,
	createdAt time.Time,
) *TimeSession {
	baseEntity := sharedDomain.RehydrateBaseEntity(id, createdAt, createdAt)
	return &TimeSession{
		BaseAggregateRoot: sharedDomain.RehydrateBaseAggregateRoot(baseEntity),
		userID:            userID,
		categoryID:        copyUUIDPtr(categoryID),
		startedAt:         startedAt,
		endedAt:           endedAt,
	}
}

func copyUUIDPtr(id *uuid.UUID) *uuid.UUID {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}
