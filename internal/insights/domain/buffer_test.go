package domain_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/svenhofer/timegrid/internal/insights/domain"
)

func TestNewCategoryBuffer(t *testing.T) {
	userID := uuid.New()
	categoryID := uuid.New()

	buffer, err := domain.NewCategoryBuffer(userID, categoryID, 10)
	require.NoError(t, err)
	assert.Equal(t, 10.0, buffer.WeeklyHours)

	_, err = domain.NewCategoryBuffer(userID, categoryID, 0)
	assert.ErrorIs(t, err, domain.ErrInvalidWeeklyHours)

	_, err = domain.NewCategoryBuffer(userID, categoryID, -3)
	assert.ErrorIs(t, err, domain.ErrInvalidWeeklyHours)
}

func TestComputeBufferUtilization(t *testing.T) {
	buffer := domain.CategoryBuffer{UserID: uuid.New(), CategoryID: uuid.New(), WeeklyHours: 10}

	u := domain.ComputeBufferUtilization(buffer, "Deep work", 4)
	assert.Equal(t, 4.0, u.HoursSpent)
	assert.Equal(t, 6.0, u.HoursRemaining)
	assert.Equal(t, 40.0, u.UtilizationPercent)
	assert.Equal(t, 40.0, u.DisplayPercent())
	assert.False(t, u.OverBudget())
}

func TestBufferUtilizationNoActivity(t *testing.T) {
	buffer := domain.CategoryBuffer{UserID: uuid.New(), CategoryID: uuid.New(), WeeklyHours: 8}

	u := domain.ComputeBufferUtilization(buffer, "Admin", 0)
	assert.Equal(t, 0.0, u.HoursSpent)
	assert.Equal(t, 8.0, u.HoursRemaining)
	assert.Equal(t, 0.0, u.UtilizationPercent)
}

func TestBufferUtilizationOverspend(t *testing.T) {
	buffer := domain.CategoryBuffer{UserID: uuid.New(), CategoryID: uuid.New(), WeeklyHours: 10}

	u := domain.ComputeBufferUtilization(buffer, "Meetings", 15)

	// Remaining clamps to zero; percent stays unclamped internally.
	assert.Equal(t, 0.0, u.HoursRemaining)
	assert.Equal(t, 150.0, u.UtilizationPercent)
	assert.True(t, u.OverBudget())

	// Display clamps to 100.
	assert.Equal(t, 100.0, u.DisplayPercent())
}
