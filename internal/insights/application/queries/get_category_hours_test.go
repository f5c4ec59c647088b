package queries

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/svenhofer/timegrid/internal/insights/domain"
	meetingsDomain "github.com/svenhofer/timegrid/internal/meetings/domain"
	"github.com/svenhofer/timegrid/internal/shared/infrastructure/cache"
	"github.com/svenhofer/timegrid/pkg/observability"
)

func TestGetCategoryHoursHandler_Handle(t *testing.T) {
	userID := uuid.New()
	from := time.Date(2025, 7, 21, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 7, 27, 23, 59, 59, 0, time.UTC)

	t.Run("groups and orders buckets", func(t *testing.T) {
		work, err := domain.NewCategory(userID, "Work")
		require.NoError(t, err)
		workID := work.ID()

		long, err := meetingsDomain.NewMeeting(userID, "Planning", &workID,
			from.Add(9*time.Hour), from.Add(11*time.Hour))
		require.NoError(t, err)
		short, err := meetingsDomain.NewMeeting(userID, "Coffee chat", nil,
			from.Add(12*time.Hour), from.Add(12*time.Hour+30*time.Minute))
		require.NoError(t, err)

		handler := NewGetCategoryHoursHandler(
			&stubCategoryRepo{categories: []*domain.Category{work}},
			&stubMeetingRepo{meetings: []*meetingsDomain.Meeting{long, short}},
			cache.NewMemoryCache(), nil, nil,
		)

		hours, err := handler.Handle(context.Background(), GetCategoryHoursQuery{UserID: userID, From: from, To: to})

		require.NoError(t, err)
		require.Len(t, hours, 2)
		assert.Equal(t, "Work", hours[0].CategoryName)
		assert.Equal(t, 120, hours[0].TotalMinutes)
		assert.Equal(t, domain.UncategorizedName, hours[1].CategoryName)
		assert.Equal(t, 30, hours[1].TotalMinutes)
		assert.Equal(t, "2h", hours[0].FormattedHours())
		assert.Equal(t, "30m", hours[1].FormattedHours())
	})

	t.Run("deleted category keeps its bucket under the fallback name", func(t *testing.T) {
		deletedID := uuid.New()
		meeting, err := meetingsDomain.NewMeeting(userID, "Orphaned", &deletedID,
			from.Add(9*time.Hour), from.Add(10*time.Hour))
		require.NoError(t, err)
		plain, err := meetingsDomain.NewMeeting(userID, "No category", nil,
			from.Add(11*time.Hour), from.Add(11*time.Hour+30*time.Minute))
		require.NoError(t, err)

		handler := NewGetCategoryHoursHandler(
			&stubCategoryRepo{},
			&stubMeetingRepo{meetings: []*meetingsDomain.Meeting{meeting, plain}},
			cache.NewMemoryCache(), nil, nil,
		)

		hours, err := handler.Handle(context.Background(), GetCategoryHoursQuery{UserID: userID, From: from, To: to})

		require.NoError(t, err)
		// Two distinct buckets even though both render as Uncategorized.
		require.Len(t, hours, 2)
		assert.Equal(t, domain.UncategorizedName, hours[0].CategoryName)
		assert.Equal(t, domain.UncategorizedName, hours[1].CategoryName)
		require.NotNil(t, hours[0].CategoryID)
		assert.Equal(t, deletedID, *hours[0].CategoryID)
		assert.Nil(t, hours[1].CategoryID)
	})

	t.Run("second read is served from cache", func(t *testing.T) {
		metrics := observability.NewInMemoryMetrics()
		meetingRepo := &stubMeetingRepo{}
		handler := NewGetCategoryHoursHandler(
			&stubCategoryRepo{}, meetingRepo, cache.NewMemoryCache(), nil, metrics,
		)

		ctx := context.Background()
		_, err := handler.Handle(ctx, GetCategoryHoursQuery{UserID: userID, From: from, To: to})
		require.NoError(t, err)
		_, err = handler.Handle(ctx, GetCategoryHoursQuery{UserID: userID, From: from, To: to})
		require.NoError(t, err)

		assert.Equal(t, 1, meetingRepo.calls)
		assert.Equal(t, int64(1), metrics.GetCounter(observability.MetricCacheHit))
	})

	t.Run("rejects inverted range", func(t *testing.T) {
		handler := NewGetCategoryHoursHandler(
			&stubCategoryRepo{}, &stubMeetingRepo{}, cache.NewMemoryCache(), nil, nil,
		)

		_, err := handler.Handle(context.Background(), GetCategoryHoursQuery{UserID: userID, From: to, To: from})

		assert.Error(t, err)
	})
}
