package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/svenhofer/timegrid/internal/shared/infrastructure/cache"
)

func TestMemoryCacheSetGetDelete(t *testing.T) {
	c := cache.NewMemoryCache()
	ctx := context.Background()

	_, err := c.Get(ctx, "missing")
	assert.ErrorIs(t, err, cache.ErrCacheMiss)

	require.NoError(t, c.Set(ctx, "k", []byte("v"), 0))
	val, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), val)

	require.NoError(t, c.Delete(ctx, "k", "missing"))
	_, err = c.Get(ctx, "k")
	assert.ErrorIs(t, err, cache.ErrCacheMiss)
}

func TestMemoryCacheTTLExpiry(t *testing.T) {
	c := cache.NewMemoryCache()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", []byte("v"), 10*time.Millisecond))

	val, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), val)

	assert.Eventually(t, func() bool {
		_, err := c.Get(ctx, "k")
		return err == cache.ErrCacheMiss
	}, time.Second, 5*time.Millisecond)
}

func TestDayPlanKeyFormat(t *testing.T) {
	userID := uuid.MustParse("00000000-0000-0000-0000-000000000001")
	day := time.Date(2025, 3, 10, 14, 30, 0, 0, time.UTC)

	assert.Equal(t, "dayplan:00000000-0000-0000-0000-000000000001:2025-03-10", cache.DayPlanKey(userID, day))
	assert.Equal(t, "bufferutil:00000000-0000-0000-0000-000000000001:2025-03-10", cache.BufferUtilizationKey(userID, day))
}

func TestInvalidationSetCollectsUniqueKeys(t *testing.T) {
	userID := uuid.New()
	day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	weekStart := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

	set := cache.NewInvalidationSet().
		AddDayPlan(userID, day).
		AddDayPlan(userID, day).
		AddBufferUtilization(userID, weekStart)

	assert.False(t, set.Empty())
	assert.Len(t, set.Keys(), 2)

	other := cache.NewInvalidationSet().AddDayPlan(userID, day.AddDate(0, 0, 1))
	set.Merge(other)
	assert.Len(t, set.Keys(), 3)
}

func TestInvalidatorAppliesSet(t *testing.T) {
	c := cache.NewMemoryCache()
	ctx := context.Background()
	userID := uuid.New()
	day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

	key := cache.DayPlanKey(userID, day)
	require.NoError(t, c.Set(ctx, key, []byte("cached"), 0))

	inv := cache.NewInvalidator(c, nil, nil)
	inv.Apply(ctx, cache.NewInvalidationSet().AddDayPlan(userID, day))

	_, err := c.Get(ctx, key)
	assert.ErrorIs(t, err, cache.ErrCacheMiss)
}
