package commands

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/svenhofer/timegrid/internal/habits/domain"
	"github.com/svenhofer/timegrid/internal/shared/infrastructure/cache"
	"github.com/svenhofer/timegrid/internal/shared/infrastructure/outbox"
)

// mockHabitRepo is a mock implementation of domain.Repository.
type mockHabitRepo struct {
	mock.Mock
}

func (m *mockHabitRepo) Save(ctx context.Context, habit *domain.Habit) error {
	args := m.Called(ctx, habit)
	return args.Error(0)
}

func (m *mockHabitRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.Habit, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Habit), args.Error(1)
}

func (m *mockHabitRepo) FindByUserID(ctx context.Context, userID uuid.UUID) ([]*domain.Habit, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Habit), args.Error(1)
}

func (m *mockHabitRepo) FindActiveByUserID(ctx context.Context, userID uuid.UUID) ([]*domain.Habit, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Habit), args.Error(1)
}

func (m *mockHabitRepo) SaveOverride(ctx context.Context, override *domain.Override) error {
	args := m.Called(ctx, override)
	return args.Error(0)
}

func (m *mockHabitRepo) FindOverridesForDay(ctx context.Context, userID uuid.UUID, day time.Time) (map[uuid.UUID]*domain.Override, error) {
	args := m.Called(ctx, userID, day)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[uuid.UUID]*domain.Override), args.Error(1)
}

func (m *mockHabitRepo) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// mockOutboxRepo is a mock implementation of outbox.Repository.
type mockOutboxRepo struct {
	mock.Mock
}

func (m *mockOutboxRepo) Save(ctx context.Context, msg *outbox.Message) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

func (m *mockOutboxRepo) SaveBatch(ctx context.Context, msgs []*outbox.Message) error {
	args := m.Called(ctx, msgs)
	return args.Error(0)
}

func (m *mockOutboxRepo) GetUnpublished(ctx context.Context, limit int) ([]*outbox.Message, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*outbox.Message), args.Error(1)
}

func (m *mockOutboxRepo) MarkPublished(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockOutboxRepo) MarkFailed(ctx context.Context, id int64, err string, nextRetryAt time.Time) error {
	args := m.Called(ctx, id, err, nextRetryAt)
	return args.Error(0)
}

func (m *mockOutboxRepo) MarkDead(ctx context.Context, id int64, reason string) error {
	args := m.Called(ctx, id, reason)
	return args.Error(0)
}

func (m *mockOutboxRepo) GetFailed(ctx context.Context, maxRetries, limit int) ([]*outbox.Message, error) {
	args := m.Called(ctx, maxRetries, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*outbox.Message), args.Error(1)
}

func (m *mockOutboxRepo) DeleteOld(ctx context.Context, olderThanDays int) (int64, error) {
	args := m.Called(ctx, olderThanDays)
	return args.Get(0).(int64), args.Error(1)
}

// mockUnitOfWork is a mock implementation of UnitOfWork.
type mockUnitOfWork struct {
	mock.Mock
}

func (m *mockUnitOfWork) Begin(ctx context.Context) (context.Context, error) {
	args := m.Called(ctx)
	return args.Get(0).(context.Context), args.Error(1)
}

func (m *mockUnitOfWork) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *mockUnitOfWork) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

type ctxKey string

func TestSetOverrideHandler_Handle(t *testing.T) {
	userID := uuid.New()
	day := time.Date(2025, 7, 26, 0, 0, 0, 0, time.UTC)

	newHabit := func(t *testing.T) *domain.Habit {
		t.Helper()
		habit, err := domain.NewHabit(userID, "Reading", 30, domain.FrequencyDaily)
		require.NoError(t, err)
		habit.ClearDomainEvents()
		return habit
	}

	t.Run("writes override and returns invalidation set", func(t *testing.T) {
		repo := new(mockHabitRepo)
		outboxRepo := new(mockOutboxRepo)
		uow := new(mockUnitOfWork)
		handler := NewSetOverrideHandler(repo, outboxRepo, uow)

		habit := newHabit(t)
		ctx := context.Background()
		txCtx := context.WithValue(ctx, ctxKey("tx"), "transaction")

		uow.On("Begin", ctx).Return(txCtx, nil)
		uow.On("Commit", txCtx).Return(nil)
		repo.On("FindByID", txCtx, habit.ID()).Return(habit, nil)
		repo.On("SaveOverride", txCtx, mock.AnythingOfType("*domain.Override")).Return(nil)
		outboxRepo.On("SaveBatch", txCtx, mock.AnythingOfType("[]*outbox.Message")).Return(nil)

		startMinute := 9 * 60
		result, err := handler.Handle(ctx, SetOverrideCommand{
			UserID:      userID,
			HabitID:     habit.ID(),
			Day:         day,
			StartMinute: &startMinute,
		})

		require.NoError(t, err)
		require.NotNil(t, result)
		require.NotNil(t, result.Override.StartMinute)
		assert.Equal(t, startMinute, *result.Override.StartMinute)
		assert.Equal(t, []string{cache.DayPlanKey(userID, day)}, result.Invalidations.Keys())

		repo.AssertExpectations(t)
		outboxRepo.AssertExpectations(t)
		uow.AssertExpectations(t)
	})

	t.Run("rolls back when habit is missing", func(t *testing.T) {
		repo := new(mockHabitRepo)
		outboxRepo := new(mockOutboxRepo)
		uow := new(mockUnitOfWork)
		handler := NewSetOverrideHandler(repo, outboxRepo, uow)

		ctx := context.Background()
		txCtx := context.WithValue(ctx, ctxKey("tx"), "transaction")
		habitID := uuid.New()

		uow.On("Begin", ctx).Return(txCtx, nil)
		uow.On("Rollback", txCtx).Return(nil)
		repo.On("FindByID", txCtx, habitID).Return(nil, domain.ErrHabitNotFound)

		result, err := handler.Handle(ctx, SetOverrideCommand{
			UserID:  userID,
			HabitID: habitID,
			Day:     day,
			Skipped: true,
		})

		assert.ErrorIs(t, err, domain.ErrHabitNotFound)
		assert.Nil(t, result)
		uow.AssertExpectations(t)
	})

	t.Run("rejects invalid start minute", func(t *testing.T) {
		repo := new(mockHabitRepo)
		outboxRepo := new(mockOutboxRepo)
		uow := new(mockUnitOfWork)
		handler := NewSetOverrideHandler(repo, outboxRepo, uow)

		habit := newHabit(t)
		ctx := context.Background()
		txCtx := context.WithValue(ctx, ctxKey("tx"), "transaction")

		uow.On("Begin", ctx).Return(txCtx, nil)
		uow.On("Rollback", txCtx).Return(nil)
		repo.On("FindByID", txCtx, habit.ID()).Return(habit, nil)

		tooLate := 24 * 60
		_, err := handler.Handle(ctx, SetOverrideCommand{
			UserID:      userID,
			HabitID:     habit.ID(),
			Day:         day,
			StartMinute: &tooLate,
		})

		assert.ErrorIs(t, err, domain.ErrInvalidStartMinute)
	})

	t.Run("propagates outbox failure", func(t *testing.T) {
		repo := new(mockHabitRepo)
		outboxRepo := new(mockOutboxRepo)
		uow := new(mockUnitOfWork)
		handler := NewSetOverrideHandler(repo, outboxRepo, uow)

		habit := newHabit(t)
		ctx := context.Background()
		txCtx := context.WithValue(ctx, ctxKey("tx"), "transaction")
		boom := errors.New("outbox unavailable")

		uow.On("Begin", ctx).Return(txCtx, nil)
		uow.On("Rollback", txCtx).Return(nil)
		repo.On("FindByID", txCtx, habit.ID()).Return(habit, nil)
		repo.On("SaveOverride", txCtx, mock.AnythingOfType("*domain.Override")).Return(nil)
		outboxRepo.On("SaveBatch", txCtx, mock.AnythingOfType("[]*outbox.Message")).Return(boom)

		_, err := handler.Handle(ctx, SetOverrideCommand{
			UserID:  userID,
			HabitID: habit.ID(),
			Day:     day,
			Skipped: true,
		})

		assert.ErrorIs(t, err, boom)
	})
}
