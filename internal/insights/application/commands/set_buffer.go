package commands

import (
	"context"
	"time"

	"github.com/google/uuid"
	identityDomain "github.com/svenhofer/timegrid/internal/identity/domain"
	"github.com/svenhofer/timegrid/internal/insights/domain"
	schedulingDomain "github.com/svenhofer/timegrid/internal/scheduling/domain"
	sharedApplication "github.com/svenhofer/timegrid/internal/shared/application"
	"github.com/svenhofer/timegrid/internal/shared/infrastructure/cache"
)

// SetBufferCommand sets or replaces the weekly hour budget for a
// category. Date anchors the week whose cached report goes stale;
// callers pass the current time.
type SetBufferCommand struct {
	UserID      uuid.UUID
	CategoryID  uuid.UUID
	WeeklyHours float64
	Date        time.Time
}

// SetBufferResult reports the written buffer and the cache keys the
// caller must flush before reading utilization again.
type SetBufferResult struct {
	Buffer        domain.CategoryBuffer
	Invalidations *cache.InvalidationSet
}

// SetBufferHandler handles the SetBufferCommand.
type SetBufferHandler struct {
	categoryRepo domain.CategoryRepository
	settingsRepo identityDomain.SettingsRepository
	uow          sharedApplication.UnitOfWork
}

// NewSetBufferHandler creates a new SetBufferHandler.
func NewSetBufferHandler(
	categoryRepo domain.CategoryRepository,
	settingsRepo identityDomain.SettingsRepository,
	uow sharedApplication.UnitOfWork,
) *SetBufferHandler {
	return &SetBufferHandler{
		categoryRepo: categoryRepo,
		settingsRepo: settingsRepo,
		uow:          uow,
	}
}

// Handle executes the SetBufferCommand.
func (h *SetBufferHandler) Handle(ctx context.Context, cmd SetBufferCommand) (*SetBufferResult, error) {
	settings, err := h.settingsRepo.Get(ctx, cmd.UserID)
	if err != nil {
		return nil, err
	}

	var result *SetBufferResult

	err = sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		buffer, err := domain.NewCategoryBuffer(cmd.UserID, cmd.CategoryID, cmd.WeeklyHours)
		if err != nil {
			return err
		}
		if err := h.categoryRepo.SaveBuffer(txCtx, buffer); err != nil {
			return err
		}

		weekStart := schedulingDomain.StartOfWeek(cmd.Date.In(settings.Location()), settings.WeekStartDay)
		result = &SetBufferResult{
			Buffer:        buffer,
			Invalidations: cache.NewInvalidationSet().AddBufferUtilization(cmd.UserID, weekStart),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}
