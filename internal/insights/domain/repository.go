package domain

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrCategoryNotFound = errors.New("category not found")
	ErrSessionNotFound  = errors.New("session not found")
)

// CategoryRepository persists categories and their weekly buffers.
type CategoryRepository interface {
	// SaveCategory persists a category (create or update).
	SaveCategory(ctx context.Context, category *Category) error

	// FindCategoriesByUserID returns all categories for a user.
	FindCategoriesByUserID(ctx context.Context, userID uuid.UUID) ([]*Category, error)

	// SaveBuffer upserts a weekly buffer for a category.
	SaveBuffer(ctx context.Context, buffer CategoryBuffer) error

	// FindBuffersByUserID returns all buffers for a user.
	FindBuffersByUserID(ctx context.Context, userID uuid.UUID) ([]CategoryBuffer, error)

	// DeleteBuffer removes a category's buffer.
	DeleteBuffer(ctx context.Context, userID, categoryID uuid.UUID) error
}

// SessionRepository persists time sessions.
type SessionRepository interface {
	// Save persists a session (create or update).
	Save(ctx context.Context, session *TimeSession) error

	// FindByID finds a session by its ID.
	FindByID(ctx context.Context, id uuid.UUID) (*TimeSession, error)

	// FindByUserInRange returns sessions whose start falls in [from, to],
	// ordered by start time. A session is attributed to the day and week
	// it started; one that crosses midnight is not re-fetched for the
	// following day.
	FindByUserInRange(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]*TimeSession, error)

	// FindRunning returns the user's in-progress sessions.
	FindRunning(ctx context.Context, userID uuid.UUID) ([]*TimeSession, error)
}

// SnapshotRepository persists weekly utilization snapshots.
type SnapshotRepository interface {
	// Save upserts a snapshot for (user, category, week).
	Save(ctx context.Context, snapshot *UtilizationSnapshot) error

	// FindByUserWeek returns all snapshots for a user's week.
	FindByUserWeek(ctx context.Context, userID uuid.UUID, weekStart time.Time) ([]*UtilizationSnapshot, error)

	// FindTrend returns snapshots for one category over the most recent
	// weeks, newest first.
	FindTrend(ctx context.Context, userID uuid.UUID, categoryID *uuid.UUID, weeks int) ([]*UtilizationSnapshot, error)
}
