package queries

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	identityDomain "github.com/svenhofer/timegrid/internal/identity/domain"
	"github.com/svenhofer/timegrid/internal/insights/domain"
	meetingsDomain "github.com/svenhofer/timegrid/internal/meetings/domain"
	"github.com/svenhofer/timegrid/internal/shared/infrastructure/cache"
	"github.com/svenhofer/timegrid/pkg/observability"
)

type stubSettingsRepo struct {
	settings *identityDomain.UserSettings
}

func (r *stubSettingsRepo) Get(ctx context.Context, userID uuid.UUID) (*identityDomain.UserSettings, error) {
	return r.settings, nil
}

func (r *stubSettingsRepo) Save(ctx context.Context, settings *identityDomain.UserSettings) error {
	return nil
}

func (r *stubSettingsRepo) ListUserIDs(ctx context.Context) ([]uuid.UUID, error) {
	return []uuid.UUID{r.settings.UserID}, nil
}

type stubCategoryRepo struct {
	categories []*domain.Category
	buffers    []domain.CategoryBuffer
}

func (r *stubCategoryRepo) SaveCategory(ctx context.Context, category *domain.Category) error {
	return nil
}

func (r *stubCategoryRepo) FindCategoriesByUserID(ctx context.Context, userID uuid.UUID) ([]*domain.Category, error) {
	return r.categories, nil
}

func (r *stubCategoryRepo) SaveBuffer(ctx context.Context, buffer domain.CategoryBuffer) error {
	return nil
}

func (r *stubCategoryRepo) FindBuffersByUserID(ctx context.Context, userID uuid.UUID) ([]domain.CategoryBuffer, error) {
	return r.buffers, nil
}

func (r *stubCategoryRepo) DeleteBuffer(ctx context.Context, userID, categoryID uuid.UUID) error {
	return nil
}

type stubMeetingRepo struct {
	meetings []*meetingsDomain.Meeting
	calls    int
}

func (r *stubMeetingRepo) Save(ctx context.Context, meeting *meetingsDomain.Meeting) error {
	return nil
}

func (r *stubMeetingRepo) FindByID(ctx context.Context, id uuid.UUID) (*meetingsDomain.Meeting, error) {
	return nil, meetingsDomain.ErrMeetingNotFound
}

func (r *stubMeetingRepo) FindByUserInRange(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]*meetingsDomain.Meeting, error) {
	r.calls++
	return r.meetings, nil
}

func (r *stubMeetingRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return nil
}

type stubSessionRepo struct {
	sessions []*domain.TimeSession
}

func (r *stubSessionRepo) Save(ctx context.Context, session *domain.TimeSession) error {
	return nil
}

func (r *stubSessionRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.TimeSession, error) {
	return nil, domain.ErrSessionNotFound
}

func (r *stubSessionRepo) FindByUserInRange(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]*domain.TimeSession, error) {
	return r.sessions, nil
}

func (r *stubSessionRepo) FindRunning(ctx context.Context, userID uuid.UUID) ([]*domain.TimeSession, error) {
	return nil, nil
}

func TestGetBufferUtilizationHandler_Handle(t *testing.T) {
	userID := uuid.New()
	// A Monday; default settings start the week on Monday.
	monday := time.Date(2025, 7, 28, 0, 0, 0, 0, time.UTC)

	newHandler := func(categoryRepo *stubCategoryRepo, meetingRepo *stubMeetingRepo, sessionRepo *stubSessionRepo, metrics observability.Metrics) *GetBufferUtilizationHandler {
		return NewGetBufferUtilizationHandler(
			&stubSettingsRepo{settings: identityDomain.DefaultSettings(userID)},
			categoryRepo, meetingRepo, sessionRepo,
			cache.NewMemoryCache(), nil, metrics,
		)
	}

	t.Run("computes spend from meetings and sessions", func(t *testing.T) {
		deepWork, err := domain.NewCategory(userID, "Deep Work")
		require.NoError(t, err)
		deepWorkID := deepWork.ID()
		buffer, err := domain.NewCategoryBuffer(userID, deepWorkID, 10)
		require.NoError(t, err)

		meeting, err := meetingsDomain.NewMeeting(userID, "Design review", &deepWorkID,
			monday.Add(9*time.Hour), monday.Add(10*time.Hour))
		require.NoError(t, err)

		session := domain.StartSession(userID, &deepWorkID, monday.Add(14*time.Hour))
		require.NoError(t, session.Stop(monday.Add(16*time.Hour+30*time.Minute)))

		handler := newHandler(
			&stubCategoryRepo{categories: []*domain.Category{deepWork}, buffers: []domain.CategoryBuffer{buffer}},
			&stubMeetingRepo{meetings: []*meetingsDomain.Meeting{meeting}},
			&stubSessionRepo{sessions: []*domain.TimeSession{session}},
			nil,
		)

		report, err := handler.Handle(context.Background(), GetBufferUtilizationQuery{UserID: userID, Date: monday.AddDate(0, 0, 3)})

		require.NoError(t, err)
		assert.True(t, report.WeekStart.Equal(monday))
		require.Len(t, report.Buffers, 1)
		u := report.Buffers[0]
		assert.Equal(t, "Deep Work", u.CategoryName)
		assert.InDelta(t, 3.5, u.HoursSpent, 0.001)
		assert.InDelta(t, 6.5, u.HoursRemaining, 0.001)
		assert.InDelta(t, 35, u.UtilizationPercent, 0.001)
		assert.False(t, u.OverBudget())
		assert.Zero(t, report.UncategorizedHours)
	})

	t.Run("overspend exceeds 100 percent but remaining floors at zero", func(t *testing.T) {
		focus, err := domain.NewCategory(userID, "Focus")
		require.NoError(t, err)
		focusID := focus.ID()
		buffer, err := domain.NewCategoryBuffer(userID, focusID, 2)
		require.NoError(t, err)

		meeting, err := meetingsDomain.NewMeeting(userID, "Marathon", &focusID,
			monday.Add(9*time.Hour), monday.Add(12*time.Hour))
		require.NoError(t, err)

		handler := newHandler(
			&stubCategoryRepo{categories: []*domain.Category{focus}, buffers: []domain.CategoryBuffer{buffer}},
			&stubMeetingRepo{meetings: []*meetingsDomain.Meeting{meeting}},
			&stubSessionRepo{},
			nil,
		)

		report, err := handler.Handle(context.Background(), GetBufferUtilizationQuery{UserID: userID, Date: monday})

		require.NoError(t, err)
		require.Len(t, report.Buffers, 1)
		u := report.Buffers[0]
		assert.InDelta(t, 150, u.UtilizationPercent, 0.001)
		assert.Zero(t, u.HoursRemaining)
		assert.True(t, u.OverBudget())
		assert.InDelta(t, 100, u.DisplayPercent(), 0.001)
	})

	t.Run("unbuffered and uncategorized time is reported outside percentages", func(t *testing.T) {
		hobby, err := domain.NewCategory(userID, "Hobby")
		require.NoError(t, err)
		hobbyID := hobby.ID()

		categorized, err := meetingsDomain.NewMeeting(userID, "Band practice", &hobbyID,
			monday.Add(18*time.Hour), monday.Add(19*time.Hour))
		require.NoError(t, err)
		uncategorized, err := meetingsDomain.NewMeeting(userID, "Errand", nil,
			monday.Add(12*time.Hour), monday.Add(12*time.Hour+30*time.Minute))
		require.NoError(t, err)

		handler := newHandler(
			&stubCategoryRepo{categories: []*domain.Category{hobby}},
			&stubMeetingRepo{meetings: []*meetingsDomain.Meeting{categorized, uncategorized}},
			&stubSessionRepo{},
			nil,
		)

		report, err := handler.Handle(context.Background(), GetBufferUtilizationQuery{UserID: userID, Date: monday})

		require.NoError(t, err)
		assert.Empty(t, report.Buffers)
		assert.InDelta(t, 1.5, report.UncategorizedHours, 0.001)
	})

	t.Run("running sessions contribute nothing yet", func(t *testing.T) {
		focus, err := domain.NewCategory(userID, "Focus")
		require.NoError(t, err)
		focusID := focus.ID()
		buffer, err := domain.NewCategoryBuffer(userID, focusID, 5)
		require.NoError(t, err)

		running := domain.StartSession(userID, &focusID, monday.Add(9*time.Hour))

		handler := newHandler(
			&stubCategoryRepo{categories: []*domain.Category{focus}, buffers: []domain.CategoryBuffer{buffer}},
			&stubMeetingRepo{},
			&stubSessionRepo{sessions: []*domain.TimeSession{running}},
			nil,
		)

		report, err := handler.Handle(context.Background(), GetBufferUtilizationQuery{UserID: userID, Date: monday})

		require.NoError(t, err)
		require.Len(t, report.Buffers, 1)
		assert.Zero(t, report.Buffers[0].HoursSpent)
		assert.InDelta(t, 5, report.Buffers[0].HoursRemaining, 0.001)
	})

	t.Run("repeat reads hit the cache", func(t *testing.T) {
		metrics := observability.NewInMemoryMetrics()
		meetingRepo := &stubMeetingRepo{}
		handler := newHandler(&stubCategoryRepo{}, meetingRepo, &stubSessionRepo{}, metrics)

		ctx := context.Background()
		_, err := handler.Handle(ctx, GetBufferUtilizationQuery{UserID: userID, Date: monday})
		require.NoError(t, err)
		_, err = handler.Handle(ctx, GetBufferUtilizationQuery{UserID: userID, Date: monday})
		require.NoError(t, err)

		assert.Equal(t, 1, meetingRepo.calls)
		assert.Equal(t, int64(1), metrics.GetCounter(observability.MetricCacheHit))
		assert.Equal(t, int64(1), metrics.GetCounter(observability.MetricCacheMiss))
	})
}
