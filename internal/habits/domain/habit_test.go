package domain_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/svenhofer/timegrid/internal/habits/domain"
)

func intPtr(v int) *int { return &v }

func TestNewHabit(t *testing.T) {
	userID := uuid.New()

	habit, err := domain.NewHabit(userID, "Morning run", 30, domain.FrequencyDaily)
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, habit.ID())
	assert.Equal(t, userID, habit.UserID())
	assert.Equal(t, "Morning run", habit.Name())
	assert.Equal(t, 30, habit.DurationMinutes())
	assert.False(t, habit.IsArchived())
	assert.Nil(t, habit.DefaultStartMinute())

	events := habit.DomainEvents()
	require.Len(t, events, 1)
	assert.Equal(t, domain.RoutingKeyHabitCreated, events[0].RoutingKey())
}

func TestNewHabitValidation(t *testing.T) {
	userID := uuid.New()

	_, err := domain.NewHabit(userID, "  ", 30, domain.FrequencyDaily)
	assert.ErrorIs(t, err, domain.ErrHabitEmptyName)

	_, err = domain.NewHabit(userID, "Run", 0, domain.FrequencyDaily)
	assert.ErrorIs(t, err, domain.ErrHabitInvalidDuration)

	_, err = domain.NewHabit(userID, "Run", 30, domain.Frequency("fortnightly"))
	assert.ErrorIs(t, err, domain.ErrHabitInvalidFreq)
}

func TestHabitIsDueOn(t *testing.T) {
	userID := uuid.New()
	saturday := time.Date(2025, 7, 26, 0, 0, 0, 0, time.UTC)
	wednesday := time.Date(2025, 7, 23, 0, 0, 0, 0, time.UTC)

	daily, err := domain.NewHabit(userID, "Stretch", 10, domain.FrequencyDaily)
	require.NoError(t, err)
	assert.True(t, daily.IsDueOn(saturday))
	assert.True(t, daily.IsDueOn(wednesday))

	weekdays, err := domain.NewHabit(userID, "Standup prep", 15, domain.FrequencyWeekdays)
	require.NoError(t, err)
	assert.False(t, weekdays.IsDueOn(saturday))
	assert.True(t, weekdays.IsDueOn(wednesday))

	weekends, err := domain.NewHabit(userID, "Long ride", 90, domain.FrequencyWeekends)
	require.NoError(t, err)
	assert.True(t, weekends.IsDueOn(saturday))
	assert.False(t, weekends.IsDueOn(wednesday))

	daily.Archive()
	assert.False(t, daily.IsDueOn(wednesday))
}

func TestEffectiveStartPrecedence(t *testing.T) {
	userID := uuid.New()
	wednesday := time.Date(2025, 7, 23, 0, 0, 0, 0, time.UTC)

	habit, err := domain.NewHabit(userID, "Reading", 30, domain.FrequencyDaily)
	require.NoError(t, err)

	// No time configured at any level.
	_, ok := habit.EffectiveStart(wednesday, nil)
	assert.False(t, ok)

	// Default applies when nothing more specific exists.
	require.NoError(t, habit.SetDefaultStartMinute(20*60))
	minute, ok := habit.EffectiveStart(wednesday, nil)
	require.True(t, ok)
	assert.Equal(t, 20*60, minute)

	// Weekday time beats the default.
	require.NoError(t, habit.SetWeekdayStartMinute(time.Wednesday, 18*60))
	minute, ok = habit.EffectiveStart(wednesday, nil)
	require.True(t, ok)
	assert.Equal(t, 18*60, minute)

	// Other weekdays still fall through to the default.
	thursday := wednesday.AddDate(0, 0, 1)
	minute, ok = habit.EffectiveStart(thursday, nil)
	require.True(t, ok)
	assert.Equal(t, 20*60, minute)

	// Daily override beats everything.
	override := &domain.Override{HabitID: habit.ID(), Day: wednesday, StartMinute: intPtr(7 * 60)}
	minute, ok = habit.EffectiveStart(wednesday, override)
	require.True(t, ok)
	assert.Equal(t, 7*60, minute)

	// Override without a time falls through to weekday resolution.
	minute, ok = habit.EffectiveStart(wednesday, &domain.Override{HabitID: habit.ID(), Day: wednesday})
	require.True(t, ok)
	assert.Equal(t, 18*60, minute)

	// Skipped override removes the habit from the day entirely.
	_, ok = habit.EffectiveStart(wednesday, &domain.Override{HabitID: habit.ID(), Day: wednesday, Skipped: true})
	assert.False(t, ok)
}

func TestSetOverride(t *testing.T) {
	userID := uuid.New()
	day := time.Date(2025, 7, 26, 15, 30, 0, 0, time.UTC)

	habit, err := domain.NewHabit(userID, "Reading", 30, domain.FrequencyDaily)
	require.NoError(t, err)
	habit.ClearDomainEvents()

	override, err := habit.SetOverride(day, intPtr(9*60+15), false)
	require.NoError(t, err)

	// Day is normalized to midnight.
	assert.Equal(t, time.Date(2025, 7, 26, 0, 0, 0, 0, time.UTC), override.Day)
	require.NotNil(t, override.StartMinute)
	assert.Equal(t, 9*60+15, *override.StartMinute)

	events := habit.DomainEvents()
	require.Len(t, events, 1)
	assert.Equal(t, domain.RoutingKeyOverrideSet, events[0].RoutingKey())

	_, err = habit.SetOverride(day, intPtr(24*60), false)
	assert.ErrorIs(t, err, domain.ErrInvalidStartMinute)

	habit.Archive()
	_, err = habit.SetOverride(day, intPtr(60), false)
	assert.ErrorIs(t, err, domain.ErrHabitArchived)
}

func TestRehydrateHabitProducesNoEvents(t *testing.T) {
	id := uuid.New()
	userID := uuid.New()
	now := time.Now().UTC()

	habit := domain.RehydrateHabit(id, userID, "Reading", 30, intPtr(19*60),
		map[time.Weekday]int{time.Monday: 8 * 60}, domain.FrequencyDaily, false, now, now)

	assert.Equal(t, id, habit.ID())
	assert.Empty(t, habit.DomainEvents())
	minute, ok := habit.EffectiveStart(time.Date(2025, 7, 21, 0, 0, 0, 0, time.UTC), nil)
	require.True(t, ok)
	assert.Equal(t, 8*60, minute)
}
