package services_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/svenhofer/timegrid/internal/scheduling/application/services"
	"github.com/svenhofer/timegrid/pkg/observability"
)

func newScheduler() *services.AutoScheduler {
	return services.NewAutoScheduler(nil, observability.NewInMemoryMetrics())
}

func TestSlotsNeeded(t *testing.T) {
	assert.Equal(t, 1, services.SlotsNeeded(0.25))
	assert.Equal(t, 2, services.SlotsNeeded(0.5))
	assert.Equal(t, 4, services.SlotsNeeded(1))
	assert.Equal(t, 6, services.SlotsNeeded(1.5))
	// Partial slots round up: 20 minutes still consumes two slots.
	assert.Equal(t, 2, services.SlotsNeeded(1.0 / 3))
	assert.Equal(t, 5, services.SlotsNeeded(1.1))
}

func TestScheduleFirstFitInOrder(t *testing.T) {
	slots := buildGrid(t)
	scheduler := newScheduler()

	tasks := []services.TaskInput{
		{ID: uuid.New(), Title: "first", DurationHours: 1},
		{ID: uuid.New(), Title: "second", DurationHours: 0.5},
	}

	result := scheduler.Schedule(slots, nil, tasks)
	require.Len(t, result.Placements, 2)
	assert.Empty(t, result.Unscheduled)

	// First task takes 07:00-08:00, second starts right after.
	assert.Equal(t, 7.0, result.Placements[0].StartHour)
	assert.Equal(t, 4, result.Placements[0].SlotCount)
	assert.Equal(t, 8.0, result.Placements[1].StartHour)
	assert.Equal(t, 2, result.Placements[1].SlotCount)
}

func TestScheduleSkipsOccupiedRuns(t *testing.T) {
	slots := buildGrid(t)
	scheduler := newScheduler()

	// Occupy 07:00-08:00 except one free slot at 07:30, so a one-hour
	// task must jump past the fragmented space.
	occupied := map[int]bool{0: true, 1: true, 3: true}

	tasks := []services.TaskInput{{ID: uuid.New(), Title: "deep work", DurationHours: 1}}
	result := scheduler.Schedule(slots, occupied, tasks)

	require.Len(t, result.Placements, 1)
	assert.Equal(t, 8.0, result.Placements[0].StartHour)
	assert.Equal(t, 4, result.Placements[0].StartSlot)
}

func TestScheduleFillsGapsForSmallTasks(t *testing.T) {
	slots := buildGrid(t)
	scheduler := newScheduler()

	occupied := map[int]bool{0: true, 1: true, 3: true}

	tasks := []services.TaskInput{
		{ID: uuid.New(), Title: "big", DurationHours: 1},
		{ID: uuid.New(), Title: "small", DurationHours: 0.25},
	}
	result := scheduler.Schedule(slots, occupied, tasks)

	require.Len(t, result.Placements, 2)
	// The 15-minute task backfills the 07:30 gap the big task skipped.
	assert.Equal(t, 8.0, result.Placements[0].StartHour)
	assert.Equal(t, 7.5, result.Placements[1].StartHour)
}

func TestScheduleNeverReordersInput(t *testing.T) {
	slots := buildGrid(t)
	scheduler := newScheduler()

	first := uuid.New()
	second := uuid.New()
	tasks := []services.TaskInput{
		{ID: first, Title: "long", DurationHours: 2},
		{ID: second, Title: "short", DurationHours: 0.25},
	}

	result := scheduler.Schedule(slots, nil, tasks)
	require.Len(t, result.Placements, 2)
	assert.Equal(t, first, result.Placements[0].TaskID)
	assert.Equal(t, second, result.Placements[1].TaskID)
	assert.Less(t, result.Placements[0].StartHour, result.Placements[1].StartHour)
}

func TestScheduleOverflowIsSoft(t *testing.T) {
	slots := buildGrid(t)
	scheduler := newScheduler()

	// The default window holds 16 hours; ask for more.
	overflow := uuid.New()
	tasks := []services.TaskInput{
		{ID: uuid.New(), Title: "fills the day", DurationHours: 16},
		{ID: overflow, Title: "does not fit", DurationHours: 0.25},
	}

	result := scheduler.Schedule(slots, nil, tasks)
	require.Len(t, result.Placements, 1)
	require.Len(t, result.Unscheduled, 1)
	assert.Equal(t, overflow, result.Unscheduled[0].ID)
}

func TestScheduleRejectsNonPositiveDurations(t *testing.T) {
	slots := buildGrid(t)
	scheduler := newScheduler()

	tasks := []services.TaskInput{
		{ID: uuid.New(), Title: "no estimate", DurationHours: 0},
		{ID: uuid.New(), Title: "ok", DurationHours: 0.5},
	}

	result := scheduler.Schedule(slots, nil, tasks)
	require.Len(t, result.Placements, 1)
	assert.Equal(t, "ok", result.Placements[0].Title)
	require.Len(t, result.Unscheduled, 1)
	assert.Equal(t, "no estimate", result.Unscheduled[0].Title)
}

func TestScheduleIsDeterministic(t *testing.T) {
	slots := buildGrid(t)
	scheduler := newScheduler()

	tasks := []services.TaskInput{
		{ID: uuid.New(), Title: "a", DurationHours: 1.25},
		{ID: uuid.New(), Title: "b", DurationHours: 0.75},
		{ID: uuid.New(), Title: "c", DurationHours: 3},
	}

	occupiedA := map[int]bool{5: true, 6: true}
	occupiedB := map[int]bool{5: true, 6: true}

	first := scheduler.Schedule(slots, occupiedA, tasks)
	second := scheduler.Schedule(slots, occupiedB, tasks)
	assert.Equal(t, first, second)
}

func TestScheduleRecordsMetrics(t *testing.T) {
	slots := buildGrid(t)
	metrics := observability.NewInMemoryMetrics()
	scheduler := services.NewAutoScheduler(nil, metrics)

	tasks := []services.TaskInput{
		{ID: uuid.New(), Title: "fits", DurationHours: 1},
		{ID: uuid.New(), Title: "too big", DurationHours: 48},
	}

	scheduler.Schedule(slots, nil, tasks)
	assert.Equal(t, int64(1), metrics.GetCounter(observability.MetricScheduledTasks))
	assert.Equal(t, int64(1), metrics.GetCounter(observability.MetricUnscheduledTasks))
}
