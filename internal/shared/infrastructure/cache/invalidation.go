package cache

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/svenhofer/timegrid/pkg/observability"
)

// InvalidationSet collects cache keys whose underlying data changed.
// Commands that alter slot occupancy return one so the caller can flush
// exactly the derived views that are now stale.
type InvalidationSet struct {
	keys map[string]struct{}
}

// NewInvalidationSet creates an empty invalidation set.
func NewInvalidationSet() *InvalidationSet {
	return &InvalidationSet{keys: make(map[string]struct{})}
}

// Add records a key for invalidation.
func (s *InvalidationSet) Add(keys ...string) *InvalidationSet {
	for _, k := range keys {
		s.keys[k] = struct{}{}
	}
	return s
}

// AddDayPlan records the day-timeline key for the given user and day.
func (s *InvalidationSet) AddDayPlan(userID uuid.UUID, day time.Time) *InvalidationSet {
	return s.Add(DayPlanKey(userID, day))
}

// AddBufferUtilization records the weekly buffer key for the given user
// and week start.
func (s *InvalidationSet) AddBufferUtilization(userID uuid.UUID, weekStart time.Time) *InvalidationSet {
	return s.Add(BufferUtilizationKey(userID, weekStart))
}

// Merge folds another set's keys into this one.
func (s *InvalidationSet) Merge(other *InvalidationSet) *InvalidationSet {
	if other == nil {
		return s
	}
	for k := range other.keys {
		s.keys[k] = struct{}{}
	}
	return s
}

// Keys returns the collected keys in sorted order.
func (s *InvalidationSet) Keys() []string {
	keys := make([]string, 0, len(s.keys))
	for k := range s.keys {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Empty returns true when no keys have been collected.
func (s *InvalidationSet) Empty() bool {
	return len(s.keys) == 0
}

// Invalidator applies invalidation sets against a cache.
type Invalidator struct {
	cache   Cache
	logger  *slog.Logger
	metrics observability.Metrics
}

// NewInvalidator creates an invalidator. A nil cache makes Apply a no-op.
func NewInvalidator(cache Cache, logger *slog.Logger, metrics observability.Metrics) *Invalidator {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = observability.NoopMetrics{}
	}
	return &Invalidator{cache: cache, logger: logger, metrics: metrics}
}

// Apply deletes every key in the set. Cache failures are logged and
// swallowed: a stale entry is recomputed on the next read-through miss,
// so invalidation must never fail the originating command.
func (inv *Invalidator) Apply(ctx context.Context, set *InvalidationSet) {
	if inv.cache == nil || set == nil || set.Empty() {
		return
	}

	keys := set.Keys()
	if err := inv.cache.Delete(ctx, keys...); err != nil {
		inv.logger.Warn("cache invalidation failed", "keys", keys, "error", err)
		return
	}

	inv.metrics.Counter(observability.MetricCacheInvalidations, int64(len(keys)))
	inv.logger.Debug("cache invalidated", "keys", keys)
}
