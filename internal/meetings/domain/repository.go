package domain

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrMeetingNotFound is returned when a meeting does not exist.
var ErrMeetingNotFound = errors.New("meeting not found")

// Repository defines the interface for meeting persistence.
type Repository interface {
	// Save persists a meeting (create or update).
	Save(ctx context.Context, meeting *Meeting) error

	// FindByID finds a meeting by its ID.
	FindByID(ctx context.Context, id uuid.UUID) (*Meeting, error)

	// FindByUserInRange finds meetings overlapping [from, to], ordered
	// by start time. A meeting that starts before the range but runs
	// into it is included.
	FindByUserInRange(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]*Meeting, error)

	// Delete removes a meeting.
	Delete(ctx context.Context, id uuid.UUID) error
}
