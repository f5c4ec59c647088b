// Package cache provides read-through caching for expensive timeline and
// utilization queries, with explicit invalidation driven by domain events.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ErrCacheMiss is returned when a key is not present in the cache.
var ErrCacheMiss = errors.New("cache: key not found")

// Cache stores serialized query results keyed by user and period.
type Cache interface {
	// Get retrieves a cached value. Returns ErrCacheMiss when absent.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value with a TTL. Pass 0 for no expiration.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes the given keys. Missing keys are not an error.
	Delete(ctx context.Context, keys ...string) error

	// Close releases any underlying resources.
	Close() error
}

// DayPlanKey is the cache key for a user's assembled day timeline.
func DayPlanKey(userID uuid.UUID, day time.Time) string {
	return fmt.Sprintf("dayplan:%s:%s", userID, day.Format("2006-01-02"))
}

// BufferUtilizationKey is the cache key for a user's weekly buffer report.
// weekStart must already be normalized to the start of the week.
func BufferUtilizationKey(userID uuid.UUID, weekStart time.Time) string {
	return fmt.Sprintf("bufferutil:%s:%s", userID, weekStart.Format("2006-01-02"))
}

// CategoryHoursKey is the cache key for a user's meeting-hours-by-category
// report over a date range.
func CategoryHoursKey(userID uuid.UUID, from, to time.Time) string {
	return fmt.Sprintf("cathours:%s:%s:%s", userID, from.Format("2006-01-02"), to.Format("2006-01-02"))
}
