package domain_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/svenhofer/timegrid/internal/identity/domain"
	scheduling "github.com/svenhofer/timegrid/internal/scheduling/domain"
)

func TestDefaultSettings(t *testing.T) {
	userID := uuid.New()
	settings := domain.DefaultSettings(userID)

	assert.Equal(t, userID, settings.UserID)
	assert.Equal(t, 7, settings.WorkHours.StartHour)
	assert.Equal(t, 23, settings.WorkHours.EndHour)
	assert.Equal(t, time.Monday, settings.WeekStartDay)
	assert.Equal(t, "UTC", settings.Timezone)
}

func TestSetWorkHoursValidates(t *testing.T) {
	settings := domain.DefaultSettings(uuid.New())

	require.NoError(t, settings.SetWorkHours(9, 17))
	assert.Equal(t, scheduling.WorkHours{StartHour: 9, EndHour: 17}, settings.WorkHours)

	err := settings.SetWorkHours(17, 9)
	assert.ErrorIs(t, err, scheduling.ErrInvalidWorkHours)
	// Window unchanged after failed update.
	assert.Equal(t, scheduling.WorkHours{StartHour: 9, EndHour: 17}, settings.WorkHours)
}

func TestSetTimezone(t *testing.T) {
	settings := domain.DefaultSettings(uuid.New())

	require.NoError(t, settings.SetTimezone("Europe/Berlin"))
	assert.Equal(t, "Europe/Berlin", settings.Timezone)
	assert.Equal(t, "Europe/Berlin", settings.Location().String())

	assert.ErrorIs(t, settings.SetTimezone("Mars/Olympus"), domain.ErrUnknownTimezone)
}

func TestParseWeekday(t *testing.T) {
	day, err := domain.ParseWeekday("Monday")
	require.NoError(t, err)
	assert.Equal(t, time.Monday, day)

	day, err = domain.ParseWeekday(" sunday ")
	require.NoError(t, err)
	assert.Equal(t, time.Sunday, day)

	_, err = domain.ParseWeekday("someday")
	assert.ErrorIs(t, err, domain.ErrUnknownWeekday)
}
