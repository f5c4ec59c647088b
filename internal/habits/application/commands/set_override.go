package commands

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/svenhofer/timegrid/internal/habits/domain"
	sharedApplication "github.com/svenhofer/timegrid/internal/shared/application"
	"github.com/svenhofer/timegrid/internal/shared/infrastructure/cache"
	"github.com/svenhofer/timegrid/internal/shared/infrastructure/outbox"
)

// SetOverrideCommand sets or replaces a habit's per-date override.
// A nil StartMinute with Skipped false clears the time override while
// keeping the row, so weekday/default resolution applies again.
type SetOverrideCommand struct {
	UserID      uuid.UUID
	HabitID     uuid.UUID
	Day         time.Time
	StartMinute *int
	Skipped     bool
}

// SetOverrideResult reports the written override and the cache keys the
// caller must flush before reading occupancy again.
type SetOverrideResult struct {
	Override      *domain.Override
	Invalidations *cache.InvalidationSet
}

// SetOverrideHandler handles the SetOverrideCommand.
type SetOverrideHandler struct {
	habitRepo  domain.Repository
	outboxRepo outbox.Repository
	uow        sharedApplication.UnitOfWork
}

// NewSetOverrideHandler creates a new SetOverrideHandler.
func NewSetOverrideHandler(habitRepo domain.Repository, outboxRepo outbox.Repository, uow sharedApplication.UnitOfWork) *SetOverrideHandler {
	return &SetOverrideHandler{
		habitRepo:  habitRepo,
		outboxRepo: outboxRepo,
		uow:        uow,
	}
}

// Handle executes the SetOverrideCommand.
func (h *SetOverrideHandler) Handle(ctx context.Context, cmd SetOverrideCommand) (*SetOverrideResult, error) {
	var result *SetOverrideResult

	err := sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		habit, err := h.habitRepo.FindByID(txCtx, cmd.HabitID)
		if err != nil {
			return err
		}

		override, err := habit.SetOverride(cmd.Day, cmd.StartMinute, cmd.Skipped)
		if err != nil {
			return err
		}

		if err := h.habitRepo.SaveOverride(txCtx, override); err != nil {
			return err
		}

		events := habit.DomainEvents()
		sharedApplication.ApplyEventMetadata(events, sharedApplication.NewEventMetadata(cmd.UserID))

		msgs := make([]*outbox.Message, 0, len(events))
		for _, event := range events {
			msg, err := outbox.NewMessage(event)
			if err != nil {
				return err
			}
			msgs = append(msgs, msg)
		}
		if err := h.outboxRepo.SaveBatch(txCtx, msgs); err != nil {
			return err
		}
		habit.ClearDomainEvents()

		result = &SetOverrideResult{
			Override:      override,
			Invalidations: cache.NewInvalidationSet().AddDayPlan(cmd.UserID, override.Day),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}
