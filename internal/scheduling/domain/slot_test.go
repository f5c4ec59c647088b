package domain_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/svenhofer/timegrid/internal/scheduling/domain"
)

func TestDefaultWorkHours(t *testing.T) {
	hours := domain.DefaultWorkHours()

	assert.Equal(t, 7, hours.StartHour)
	assert.Equal(t, 23, hours.EndHour)
	assert.Equal(t, 64, hours.SlotCount())
	require.NoError(t, hours.Validate())
}

func TestWorkHoursValidate(t *testing.T) {
	tests := []struct {
		name    string
		hours   domain.WorkHours
		wantErr bool
	}{
		{"default window", domain.WorkHours{StartHour: 7, EndHour: 23}, false},
		{"full day", domain.WorkHours{StartHour: 0, EndHour: 24}, false},
		{"single hour", domain.WorkHours{StartHour: 9, EndHour: 10}, false},
		{"empty window", domain.WorkHours{StartHour: 9, EndHour: 9}, true},
		{"inverted window", domain.WorkHours{StartHour: 23, EndHour: 7}, true},
		{"negative start", domain.WorkHours{StartHour: -1, EndHour: 8}, true},
		{"end past midnight", domain.WorkHours{StartHour: 7, EndHour: 25}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.hours.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, domain.ErrInvalidWorkHours)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestBuildDayGrid(t *testing.T) {
	date := time.Date(2025, 7, 23, 12, 0, 0, 0, time.UTC)

	slots, err := domain.BuildDayGrid(date, domain.DefaultWorkHours())
	require.NoError(t, err)
	require.Len(t, slots, 64)

	first := slots[0]
	assert.Equal(t, 0, first.Index)
	assert.Equal(t, "07:00", first.Label)
	assert.Equal(t, time.Date(2025, 7, 23, 7, 0, 0, 0, time.UTC), first.Start)
	assert.Equal(t, time.Date(2025, 7, 23, 7, 15, 0, 0, time.UTC), first.End())
	assert.Equal(t, 7.0, first.HourOfDay())

	last := slots[63]
	assert.Equal(t, "22:45", last.Label)
	assert.Equal(t, time.Date(2025, 7, 23, 23, 0, 0, 0, time.UTC), last.End())
	assert.Equal(t, 22.75, last.HourOfDay())
}

func TestBuildDayGridRejectsInvalidWindow(t *testing.T) {
	date := time.Date(2025, 7, 23, 0, 0, 0, 0, time.UTC)

	slots, err := domain.BuildDayGrid(date, domain.WorkHours{StartHour: 23, EndHour: 7})
	assert.ErrorIs(t, err, domain.ErrInvalidWorkHours)
	assert.Nil(t, slots)
}

func TestBuildDayGridPreservesLocation(t *testing.T) {
	loc, err := time.LoadLocation("Europe/Berlin")
	require.NoError(t, err)
	date := time.Date(2025, 7, 23, 18, 0, 0, 0, loc)

	slots, err := domain.BuildDayGrid(date, domain.WorkHours{StartHour: 9, EndHour: 10})
	require.NoError(t, err)
	require.Len(t, slots, 4)
	assert.Equal(t, loc, slots[0].Start.Location())
	assert.Equal(t, 9, slots[0].Start.Hour())
}
