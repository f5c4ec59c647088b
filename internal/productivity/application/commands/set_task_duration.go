package commands

import (
	"context"

	"github.com/google/uuid"
	"github.com/svenhofer/timegrid/internal/productivity/domain/task"
	sharedApplication "github.com/svenhofer/timegrid/internal/shared/application"
	"github.com/svenhofer/timegrid/internal/shared/infrastructure/cache"
	"github.com/svenhofer/timegrid/internal/shared/infrastructure/outbox"
)

// SetTaskDurationCommand updates a task's estimate.
type SetTaskDurationCommand struct {
	UserID        uuid.UUID
	TaskID        uuid.UUID
	DurationHours float64
}

// SetTaskDurationResult reports the cache keys invalidated by the edit.
// A scheduled task's placement is dropped: its old slot run no longer
// matches the new estimate, so the next scheduling pass re-places it.
type SetTaskDurationResult struct {
	Invalidations *cache.InvalidationSet
}

// SetTaskDurationHandler handles the SetTaskDurationCommand.
type SetTaskDurationHandler struct {
	taskRepo   task.Repository
	outboxRepo outbox.Repository
	uow        sharedApplication.UnitOfWork
}

// NewSetTaskDurationHandler creates a new SetTaskDurationHandler.
func NewSetTaskDurationHandler(taskRepo task.Repository, outboxRepo outbox.Repository, uow sharedApplication.UnitOfWork) *SetTaskDurationHandler {
	return &SetTaskDurationHandler{
		taskRepo:   taskRepo,
		outboxRepo: outboxRepo,
		uow:        uow,
	}
}

// Handle executes the SetTaskDurationCommand.
func (h *SetTaskDurationHandler) Handle(ctx context.Context, cmd SetTaskDurationCommand) (*SetTaskDurationResult, error) {
	var result *SetTaskDurationResult

	err := sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		t, err := h.taskRepo.FindByID(txCtx, cmd.TaskID)
		if err != nil {
			return err
		}

		invalidations := cache.NewInvalidationSet()
		scheduledOn := t.ScheduledOn()
		if scheduledOn != nil {
			invalidations.AddDayPlan(cmd.UserID, *scheduledOn)
		}

		// The event must carry the day the placement covered, so the
		// estimate changes first and the placement is cleared after.
		if err := t.SetDuration(cmd.DurationHours); err != nil {
			return err
		}
		if scheduledOn != nil {
			t.ClearStartHour()
		}

		if err := h.taskRepo.Save(txCtx, t); err != nil {
			return err
		}

		events := t.DomainEvents()
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
		t.ClearDomainEvents()

		result = &SetTaskDurationResult{Invalidations: invalidations}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}
