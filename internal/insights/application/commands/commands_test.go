package commands

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	identityDomain "github.com/svenhofer/timegrid/internal/identity/domain"
	"github.com/svenhofer/timegrid/internal/insights/domain"
	"github.com/svenhofer/timegrid/internal/shared/infrastructure/cache"
)

type passthroughUnitOfWork struct{}

func (passthroughUnitOfWork) Begin(ctx context.Context) (context.Context, error) { return ctx, nil }
func (passthroughUnitOfWork) Commit(context.Context) error                       { return nil }
func (passthroughUnitOfWork) Rollback(context.Context) error                     { return nil }

type recordingCategoryRepo struct {
	categories []*domain.Category
	buffers    []domain.CategoryBuffer
}

func (r *recordingCategoryRepo) SaveCategory(_ context.Context, category *domain.Category) error {
	r.categories = append(r.categories, category)
	return nil
}

func (r *recordingCategoryRepo) FindCategoriesByUserID(context.Context, uuid.UUID) ([]*domain.Category, error) {
	return r.categories, nil
}

func (r *recordingCategoryRepo) SaveBuffer(_ context.Context, buffer domain.CategoryBuffer) error {
	r.buffers = append(r.buffers, buffer)
	return nil
}

func (r *recordingCategoryRepo) FindBuffersByUserID(context.Context, uuid.UUID) ([]domain.CategoryBuffer, error) {
	return r.buffers, nil
}

func (r *recordingCategoryRepo) DeleteBuffer(context.Context, uuid.UUID, uuid.UUID) error {
	return nil
}

type recordingSessionRepo struct {
	sessions map[uuid.UUID]*domain.TimeSession
}

func newRecordingSessionRepo() *recordingSessionRepo {
	return &recordingSessionRepo{sessions: make(map[uuid.UUID]*domain.TimeSession)}
}

func (r *recordingSessionRepo) Save(_ context.Context, session *domain.TimeSession) error {
	r.sessions[session.ID()] = session
	return nil
}

func (r *recordingSessionRepo) FindByID(_ context.Context, id uuid.UUID) (*domain.TimeSession, error) {
	session, ok := r.sessions[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return session, nil
}

func (r *recordingSessionRepo) FindByUserInRange(context.Context, uuid.UUID, time.Time, time.Time) ([]*domain.TimeSession, error) {
	return nil, nil
}

func (r *recordingSessionRepo) FindRunning(context.Context, uuid.UUID) ([]*domain.TimeSession, error) {
	return nil, nil
}

type defaultSettingsRepo struct{}

func (defaultSettingsRepo) Get(_ context.Context, userID uuid.UUID) (*identityDomain.UserSettings, error) {
	return identityDomain.DefaultSettings(userID), nil
}

func (defaultSettingsRepo) Save(context.Context, *identityDomain.UserSettings) error { return nil }

func (defaultSettingsRepo) ListUserIDs(context.Context) ([]uuid.UUID, error) { return nil, nil }

func TestCreateCategoryHandler_RejectsEmptyName(t *testing.T) {
	handler := NewCreateCategoryHandler(&recordingCategoryRepo{}, passthroughUnitOfWork{})

	_, err := handler.Handle(context.Background(), CreateCategoryCommand{
		UserID: uuid.New(),
		Name:   "   ",
	})

	assert.Error(t, err)
}

func TestCreateCategoryHandler_PersistsCategory(t *testing.T) {
	repo := &recordingCategoryRepo{}
	handler := NewCreateCategoryHandler(repo, passthroughUnitOfWork{})

	result, err := handler.Handle(context.Background(), CreateCategoryCommand{
		UserID: uuid.New(),
		Name:   "Deep Work",
	})

	require.NoError(t, err)
	require.Len(t, repo.categories, 1)
	assert.Equal(t, "Deep Work", result.Category.Name())
}

func TestSetBufferHandler_InvalidatesWeekReport(t *testing.T) {
	repo := &recordingCategoryRepo{}
	handler := NewSetBufferHandler(repo, defaultSettingsRepo{}, passthroughUnitOfWork{})

	userID := uuid.New()
	// Wednesday; the Monday-start week begins on the 22nd.
	date := time.Date(2025, 9, 24, 15, 0, 0, 0, time.UTC)

	result, err := handler.Handle(context.Background(), SetBufferCommand{
		UserID:      userID,
		CategoryID:  uuid.New(),
		WeeklyHours: 8,
		Date:        date,
	})

	require.NoError(t, err)
	require.Len(t, repo.buffers, 1)
	assert.Equal(t, 8.0, result.Buffer.WeeklyHours)
	weekStart := time.Date(2025, 9, 22, 0, 0, 0, 0, time.UTC)
	assert.Contains(t, result.Invalidations.Keys(), cache.BufferUtilizationKey(userID, weekStart))
}

func TestSetBufferHandler_RejectsNonPositiveBudget(t *testing.T) {
	handler := NewSetBufferHandler(&recordingCategoryRepo{}, defaultSettingsRepo{}, passthroughUnitOfWork{})

	_, err := handler.Handle(context.Background(), SetBufferCommand{
		UserID:      uuid.New(),
		CategoryID:  uuid.New(),
		WeeklyHours: 0,
		Date:        time.Now(),
	})

	assert.Error(t, err)
}

func TestStartStopSession_RoundTrip(t *testing.T) {
	sessions := newRecordingSessionRepo()
	start := NewStartSessionHandler(sessions, passthroughUnitOfWork{})
	stop := NewStopSessionHandler(sessions, defaultSettingsRepo{}, passthroughUnitOfWork{})

	userID := uuid.New()
	startedAt := time.Date(2025, 9, 24, 9, 0, 0, 0, time.UTC)

	started, err := start.Handle(context.Background(), StartSessionCommand{
		UserID:    userID,
		StartedAt: startedAt,
	})
	require.NoError(t, err)
	assert.True(t, started.Session.InProgress())
	assert.Contains(t, started.Invalidations.Keys(), cache.DayPlanKey(userID, startedAt))

	stopped, err := stop.Handle(context.Background(), StopSessionCommand{
		UserID:    userID,
		SessionID: started.Session.ID(),
		EndedAt:   startedAt.Add(90 * time.Minute),
	})
	require.NoError(t, err)
	assert.False(t, stopped.Session.InProgress())
	assert.Equal(t, 90, stopped.Session.Minutes())

	keys := stopped.Invalidations.Keys()
	assert.Contains(t, keys, cache.DayPlanKey(userID, startedAt))
	weekStart := time.Date(2025, 9, 22, 0, 0, 0, 0, time.UTC)
	assert.Contains(t, keys, cache.BufferUtilizationKey(userID, weekStart))
}

func TestStopSessionHandler_UnknownSession(t *testing.T) {
	stop := NewStopSessionHandler(newRecordingSessionRepo(), defaultSettingsRepo{}, passthroughUnitOfWork{})

	_, err := stop.Handle(context.Background(), StopSessionCommand{
		UserID:    uuid.New(),
		SessionID: uuid.New(),
		EndedAt:   time.Now(),
	})

	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}
