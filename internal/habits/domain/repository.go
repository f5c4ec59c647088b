package domain

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrHabitNotFound is returned when a habit does not exist.
var ErrHabitNotFound = errors.New("habit not found")

// Repository defines the interface for habit persistence.
type Repository interface {
	// Save persists a habit (create or update).
	Save(ctx context.Context, habit *Habit) error

	// FindByID finds a habit by its ID.
	FindByID(ctx context.Context, id uuid.UUID) (*Habit, error)

	// FindByUserID finds all habits for a user.
	FindByUserID(ctx context.Context, userID uuid.UUID) ([]*Habit, error)

	// FindActiveByUserID finds all non-archived habits for a user.
	FindActiveByUserID(ctx context.Context, userID uuid.UUID) ([]*Habit, error)

	// SaveOverride upserts a per-date override.
	SaveOverride(ctx context.Context, override *Override) error

	// FindOverridesForDay returns overrides for all of a user's habits on
	// a date, keyed by habit ID.
	FindOverridesForDay(ctx context.Context, userID uuid.UUID, day time.Time) (map[uuid.UUID]*Override, error)

	// Delete removes a habit and its overrides.
	Delete(ctx context.Context, id uuid.UUID) error
}
