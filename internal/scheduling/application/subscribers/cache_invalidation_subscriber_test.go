package subscribers

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	habitsDomain "github.com/svenhofer/timegrid/internal/habits/domain"
	identityDomain "github.com/svenhofer/timegrid/internal/identity/domain"
	meetingsDomain "github.com/svenhofer/timegrid/internal/meetings/domain"
	"github.com/svenhofer/timegrid/internal/shared/infrastructure/cache"
	"github.com/svenhofer/timegrid/internal/shared/infrastructure/eventbus"
	"github.com/svenhofer/timegrid/internal/shared/infrastructure/outbox"
)

type defaultSettingsRepo struct{}

func (defaultSettingsRepo) Get(ctx context.Context, userID uuid.UUID) (*identityDomain.UserSettings, error) {
	return identityDomain.DefaultSettings(userID), nil
}

func (defaultSettingsRepo) Save(ctx context.Context, settings *identityDomain.UserSettings) error {
	return nil
}

func (defaultSettingsRepo) ListUserIDs(ctx context.Context) ([]uuid.UUID, error) {
	return nil, nil
}

func TestCacheInvalidationSubscriber(t *testing.T) {
	userID := uuid.New()
	day := time.Date(2025, 7, 28, 0, 0, 0, 0, time.UTC)

	newBusAndCache := func(t *testing.T) (*eventbus.InProcessEventBus, *cache.MemoryCache) {
		t.Helper()
		memory := cache.NewMemoryCache()
		bus := eventbus.NewInProcessEventBus(nil)
		subscriber := NewCacheInvalidationSubscriber(
			cache.NewInvalidator(memory, nil, nil),
			defaultSettingsRepo{},
			nil,
		)
		bus.RegisterConsumer(subscriber)
		return bus, memory
	}

	prime := func(t *testing.T, memory *cache.MemoryCache, keys ...string) {
		t.Helper()
		for _, key := range keys {
			require.NoError(t, memory.Set(context.Background(), key, []byte("cached"), 0))
		}
	}

	t.Run("override event flushes the day plan", func(t *testing.T) {
		bus, memory := newBusAndCache(t)
		ctx := context.Background()
		key := cache.DayPlanKey(userID, day)
		prime(t, memory, key)

		habit, err := habitsDomain.NewHabit(userID, "Reading", 30, habitsDomain.FrequencyDaily)
		require.NoError(t, err)
		override, err := habit.SetOverride(day, nil, true)
		require.NoError(t, err)
		event := habitsDomain.NewOverrideSet(habit, override)

		msg, err := outbox.NewMessage(&event)
		require.NoError(t, err)
		require.NoError(t, bus.Publish(ctx, msg.RoutingKey, msg.Payload))

		_, err = memory.Get(ctx, key)
		assert.ErrorIs(t, err, cache.ErrCacheMiss)
	})

	t.Run("meeting created flushes day plans and the week report", func(t *testing.T) {
		bus, memory := newBusAndCache(t)
		ctx := context.Background()
		dayKey := cache.DayPlanKey(userID, day)
		weekKey := cache.BufferUtilizationKey(userID, day) // Monday start
		prime(t, memory, dayKey, weekKey)

		meeting, err := meetingsDomain.NewMeeting(userID, "Standup", nil,
			day.Add(9*time.Hour), day.Add(10*time.Hour))
		require.NoError(t, err)
		event := meetingsDomain.NewMeetingCreated(meeting)

		msg, err := outbox.NewMessage(&event)
		require.NoError(t, err)
		require.NoError(t, bus.Publish(ctx, msg.RoutingKey, msg.Payload))

		_, err = memory.Get(ctx, dayKey)
		assert.ErrorIs(t, err, cache.ErrCacheMiss)
		_, err = memory.Get(ctx, weekKey)
		assert.ErrorIs(t, err, cache.ErrCacheMiss)
	})

	t.Run("unrelated keys survive", func(t *testing.T) {
		bus, memory := newBusAndCache(t)
		ctx := context.Background()
		otherKey := cache.DayPlanKey(userID, day.AddDate(0, 0, 1))
		prime(t, memory, otherKey)

		habit, err := habitsDomain.NewHabit(userID, "Reading", 30, habitsDomain.FrequencyDaily)
		require.NoError(t, err)
		override, err := habit.SetOverride(day, nil, true)
		require.NoError(t, err)
		event := habitsDomain.NewOverrideSet(habit, override)

		msg, err := outbox.NewMessage(&event)
		require.NoError(t, err)
		require.NoError(t, bus.Publish(ctx, msg.RoutingKey, msg.Payload))

		value, err := memory.Get(ctx, otherKey)
		require.NoError(t, err)
		assert.Equal(t, []byte("cached"), value)
	})
}
