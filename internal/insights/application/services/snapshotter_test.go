package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	identityDomain "github.com/svenhofer/timegrid/internal/identity/domain"
	"github.com/svenhofer/timegrid/internal/insights/application/queries"
	"github.com/svenhofer/timegrid/internal/insights/domain"
	meetingsDomain "github.com/svenhofer/timegrid/internal/meetings/domain"
	"github.com/svenhofer/timegrid/internal/shared/infrastructure/cache"
	"github.com/svenhofer/timegrid/pkg/observability"
)

type fixedSettingsRepo struct {
	userIDs []uuid.UUID
}

func (r *fixedSettingsRepo) Get(ctx context.Context, userID uuid.UUID) (*identityDomain.UserSettings, error) {
	return identityDomain.DefaultSettings(userID), nil
}

func (r *fixedSettingsRepo) Save(ctx context.Context, settings *identityDomain.UserSettings) error {
	return nil
}

func (r *fixedSettingsRepo) ListUserIDs(ctx context.Context) ([]uuid.UUID, error) {
	return r.userIDs, nil
}

type fixedCategoryRepo struct {
	categories []*domain.Category
	buffers    []domain.CategoryBuffer
}

func (r *fixedCategoryRepo) SaveCategory(ctx context.Context, category *domain.Category) error {
	return nil
}

func (r *fixedCategoryRepo) FindCategoriesByUserID(ctx context.Context, userID uuid.UUID) ([]*domain.Category, error) {
	return r.categories, nil
}

func (r *fixedCategoryRepo) SaveBuffer(ctx context.Context, buffer domain.CategoryBuffer) error {
	return nil
}

func (r *fixedCategoryRepo) FindBuffersByUserID(ctx context.Context, userID uuid.UUID) ([]domain.CategoryBuffer, error) {
	return r.buffers, nil
}

func (r *fixedCategoryRepo) DeleteBuffer(ctx context.Context, userID, categoryID uuid.UUID) error {
	return nil
}

type fixedMeetingRepo struct {
	meetings []*meetingsDomain.Meeting
}

func (r *fixedMeetingRepo) Save(ctx context.Context, meeting *meetingsDomain.Meeting) error {
	return nil
}

func (r *fixedMeetingRepo) FindByID(ctx context.Context, id uuid.UUID) (*meetingsDomain.Meeting, error) {
	return nil, meetingsDomain.ErrMeetingNotFound
}

func (r *fixedMeetingRepo) FindByUserInRange(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]*meetingsDomain.Meeting, error) {
	return r.meetings, nil
}

func (r *fixedMeetingRepo) Delete(ctx context.Context, id uuid.UUID) error { return nil }

type emptySessionRepo struct{}

func (emptySessionRepo) Save(ctx context.Context, session *domain.TimeSession) error { return nil }

func (emptySessionRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.TimeSession, error) {
	return nil, domain.ErrSessionNotFound
}

func (emptySessionRepo) FindByUserInRange(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]*domain.TimeSession, error) {
	return nil, nil
}

func (emptySessionRepo) FindRunning(ctx context.Context, userID uuid.UUID) ([]*domain.TimeSession, error) {
	return nil, nil
}

type recordingSnapshotRepo struct {
	saved   []*domain.UtilizationSnapshot
	saveErr error
}

func (r *recordingSnapshotRepo) Save(ctx context.Context, snapshot *domain.UtilizationSnapshot) error {
	if r.saveErr != nil {
		return r.saveErr
	}
	r.saved = append(r.saved, snapshot)
	return nil
}

func (r *recordingSnapshotRepo) FindByUserWeek(ctx context.Context, userID uuid.UUID, weekStart time.Time) ([]*domain.UtilizationSnapshot, error) {
	return r.saved, nil
}

func (r *recordingSnapshotRepo) FindTrend(ctx context.Context, userID uuid.UUID, categoryID *uuid.UUID, weeks int) ([]*domain.UtilizationSnapshot, error) {
	return r.saved, nil
}

func TestSnapshotter_SnapshotPreviousWeek(t *testing.T) {
	userID := uuid.New()
	monday := time.Date(2025, 7, 21, 0, 0, 0, 0, time.UTC)

	newSnapshotter := func(t *testing.T, categoryRepo *fixedCategoryRepo, meetingRepo *fixedMeetingRepo, snapshotRepo *recordingSnapshotRepo) *Snapshotter {
		t.Helper()
		settingsRepo := &fixedSettingsRepo{userIDs: []uuid.UUID{userID}}
		utilization := queries.NewGetBufferUtilizationHandler(
			settingsRepo, categoryRepo, meetingRepo, emptySessionRepo{},
			cache.NewMemoryCache(), nil, observability.NoopMetrics{},
		)
		return NewSnapshotter(settingsRepo, utilization, snapshotRepo, nil, nil)
	}

	t.Run("writes one snapshot per buffer for the previous week", func(t *testing.T) {
		work, err := domain.NewCategory(userID, "Work")
		require.NoError(t, err)
		workID := work.ID()
		buffer, err := domain.NewCategoryBuffer(userID, workID, 8)
		require.NoError(t, err)

		meeting, err := meetingsDomain.NewMeeting(userID, "Review", &workID,
			monday.Add(9*time.Hour), monday.Add(11*time.Hour))
		require.NoError(t, err)

		snapshotRepo := &recordingSnapshotRepo{}
		snapshotter := newSnapshotter(t,
			&fixedCategoryRepo{categories: []*domain.Category{work}, buffers: []domain.CategoryBuffer{buffer}},
			&fixedMeetingRepo{meetings: []*meetingsDomain.Meeting{meeting}},
			snapshotRepo,
		)

		// Run as the following Monday's job.
		err = snapshotter.SnapshotPreviousWeek(context.Background(), monday.AddDate(0, 0, 7))

		require.NoError(t, err)
		require.Len(t, snapshotRepo.saved, 1)
		snapshot := snapshotRepo.saved[0]
		assert.True(t, snapshot.WeekStart.Equal(monday))
		assert.InDelta(t, 2, snapshot.HoursSpent, 0.001)
		assert.InDelta(t, 8, snapshot.WeeklyHours, 0.001)
		assert.InDelta(t, 25, snapshot.UtilizationPercent, 0.001)
	})

	t.Run("user without buffers writes nothing", func(t *testing.T) {
		snapshotRepo := &recordingSnapshotRepo{}
		snapshotter := newSnapshotter(t, &fixedCategoryRepo{}, &fixedMeetingRepo{}, snapshotRepo)

		err := snapshotter.SnapshotPreviousWeek(context.Background(), monday.AddDate(0, 0, 7))

		require.NoError(t, err)
		assert.Empty(t, snapshotRepo.saved)
	})

	t.Run("save failure surfaces after the sweep", func(t *testing.T) {
		work, err := domain.NewCategory(userID, "Work")
		require.NoError(t, err)
		buffer, err := domain.NewCategoryBuffer(userID, work.ID(), 8)
		require.NoError(t, err)

		boom := errors.New("snapshot store down")
		snapshotRepo := &recordingSnapshotRepo{saveErr: boom}
		snapshotter := newSnapshotter(t,
			&fixedCategoryRepo{categories: []*domain.Category{work}, buffers: []domain.CategoryBuffer{buffer}},
			&fixedMeetingRepo{},
			snapshotRepo,
		)

		err = snapshotter.SnapshotPreviousWeek(context.Background(), monday.AddDate(0, 0, 7))

		assert.ErrorIs(t, err, boom)
	})
}
