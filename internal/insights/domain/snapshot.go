package domain

import (
	"time"

	"github.com/google/uuid"
)

// UtilizationSnapshot is a persisted weekly reading of one buffer's
// spend, written by the worker's snapshot job. Snapshots make
// week-over-week trends cheap to query after the underlying sessions
// and meetings have aged out of caches.
type UtilizationSnapshot struct {
	ID                 int64
	UserID             uuid.UUID
	CategoryID         *uuid.UUID
	WeekStart          time.Time
	HoursSpent         float64
	WeeklyHours        float64
	UtilizationPercent float64
	ComputedAt         time.Time
}

// NewUtilizationSnapshot freezes a computed utilization for a week.
func NewUtilizationSnapshot(userID uuid.UUID, weekStart time.Time, u BufferUtilization) *UtilizationSnapshot {
	categoryID := u.CategoryID
	return &UtilizationSnapshot{
		UserID:             userID,
		CategoryID:         &categoryID,
		WeekStart:          weekStart,
		HoursSpent:         u.HoursSpent,
		WeeklyHours:        u.WeeklyHours,
		UtilizationPercent: u.UtilizationPercent,
		ComputedAt:         time.Now().UTC(),
	}
}
