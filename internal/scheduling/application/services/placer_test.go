package services_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/svenhofer/timegrid/internal/scheduling/application/services"
	schedulingDomain "github.com/svenhofer/timegrid/internal/scheduling/domain"
)

func buildGrid(t *testing.T) []schedulingDomain.Slot {
	t.Helper()
	date := time.Date(2025, 7, 23, 0, 0, 0, 0, time.UTC)
	slots, err := schedulingDomain.BuildDayGrid(date, schedulingDomain.DefaultWorkHours())
	require.NoError(t, err)
	return slots
}

func at(hour, minute int) time.Time {
	return time.Date(2025, 7, 23, hour, minute, 0, 0, time.UTC)
}

func TestPlaceFixedItemsMarksCoveredSlots(t *testing.T) {
	slots := buildGrid(t)

	meeting := services.FixedItem{
		Kind:  services.KindMeeting,
		RefID: uuid.New(),
		Title: "Sync",
		Start: at(10, 0),
		End:   at(11, 0),
	}

	occupancy := services.PlaceFixedItems(slots, []services.FixedItem{meeting})
	require.Len(t, occupancy, len(slots))

	// 10:00 is slot 12 in a 07:00 grid; one hour covers four slots.
	for i, slot := range occupancy {
		if i >= 12 && i < 16 {
			assert.False(t, slot.Free(), "slot %s should be occupied", slot.Slot.Label)
		} else {
			assert.True(t, slot.Free(), "slot %s should be free", slot.Slot.Label)
		}
	}
}

func TestPlaceFixedItemsPartialSlotCoverage(t *testing.T) {
	slots := buildGrid(t)

	// 10:05-10:20 straddles two slots; intersection, not containment.
	item := services.FixedItem{
		Kind:  services.KindMeeting,
		RefID: uuid.New(),
		Start: at(10, 5),
		End:   at(10, 20),
	}

	occupancy := services.PlaceFixedItems(slots, []services.FixedItem{item})
	assert.False(t, occupancy[12].Free()) // 10:00-10:15
	assert.False(t, occupancy[13].Free()) // 10:15-10:30
	assert.True(t, occupancy[14].Free())
}

func TestPlaceFixedItemsEndBoundaryIsExclusive(t *testing.T) {
	slots := buildGrid(t)

	// Ends exactly at 10:15: the 10:15 slot stays free.
	item := services.FixedItem{
		Kind:  services.KindMeeting,
		RefID: uuid.New(),
		Start: at(10, 0),
		End:   at(10, 15),
	}

	occupancy := services.PlaceFixedItems(slots, []services.FixedItem{item})
	assert.False(t, occupancy[12].Free())
	assert.True(t, occupancy[13].Free())
}

func TestPlaceFixedItemsMultipleOccupants(t *testing.T) {
	slots := buildGrid(t)

	a := services.FixedItem{Kind: services.KindMeeting, RefID: uuid.New(), Title: "A", Start: at(9, 0), End: at(10, 0)}
	b := services.FixedItem{Kind: services.KindHabit, RefID: uuid.New(), Title: "B", Start: at(9, 30), End: at(9, 45)}

	occupancy := services.PlaceFixedItems(slots, []services.FixedItem{a, b})

	// 09:30 slot carries both items, input order preserved.
	slot := occupancy[10]
	require.Len(t, slot.Occupants, 2)
	assert.Equal(t, "A", slot.Occupants[0].Title)
	assert.Equal(t, "B", slot.Occupants[1].Title)
}

func TestPlaceFixedItemsInProgressPinsStartSlotOnly(t *testing.T) {
	slots := buildGrid(t)

	running := services.FixedItem{
		Kind:       services.KindSession,
		RefID:      uuid.New(),
		Start:      at(14, 20),
		InProgress: true,
	}

	occupancy := services.PlaceFixedItems(slots, []services.FixedItem{running})
	for i, slot := range occupancy {
		if i == 29 { // 14:15-14:30
			assert.False(t, slot.Free())
		} else {
			assert.True(t, slot.Free(), "slot %s should be free", slot.Slot.Label)
		}
	}
}

func TestOccupiedSlots(t *testing.T) {
	slots := buildGrid(t)
	item := services.FixedItem{Kind: services.KindMeeting, RefID: uuid.New(), Start: at(7, 0), End: at(7, 30)}

	occupied := services.OccupiedSlots(services.PlaceFixedItems(slots, []services.FixedItem{item}))
	assert.Equal(t, map[int]bool{0: true, 1: true}, occupied)
}
