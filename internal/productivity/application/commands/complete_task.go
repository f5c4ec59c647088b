package commands

import (
	"context"

	"github.com/google/uuid"
	"github.com/svenhofer/timegrid/internal/productivity/domain/task"
	sharedApplication "github.com/svenhofer/timegrid/internal/shared/application"
	"github.com/svenhofer/timegrid/internal/shared/infrastructure/cache"
	"github.com/svenhofer/timegrid/internal/shared/infrastructure/outbox"
)

// CompleteTaskCommand marks a task as done.
type CompleteTaskCommand struct {
	UserID uuid.UUID
	TaskID uuid.UUID
}

// CompleteTaskResult reports the cache keys invalidated by completion.
type CompleteTaskResult struct {
	Invalidations *cache.InvalidationSet
}

// CompleteTaskHandler handles the CompleteTaskCommand.
type CompleteTaskHandler struct {
	taskRepo   task.Repository
	outboxRepo outbox.Repository
	uow        sharedApplication.UnitOfWork
}

// NewCompleteTaskHandler creates a new CompleteTaskHandler.
func NewCompleteTaskHandler(taskRepo task.Repository, outboxRepo outbox.Repository, uow sharedApplication.UnitOfWork) *CompleteTaskHandler {
	return &CompleteTaskHandler{
		taskRepo:   taskRepo,
		outboxRepo: outboxRepo,
		uow:        uow,
	}
}

// Handle executes the CompleteTaskCommand.
func (h *CompleteTaskHandler) Handle(ctx context.Context, cmd CompleteTaskCommand) (*CompleteTaskResult, error) {
	var result *CompleteTaskResult

	err := sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		t, err := h.taskRepo.FindByID(txCtx, cmd.TaskID)
		if err != nil {
			return err
		}

		invalidations := cache.NewInvalidationSet()
		if day := t.ScheduledOn(); day != nil {
			invalidations.AddDayPlan(cmd.UserID, *day)
		}

		if err := t.Complete(); err != nil {
			return err
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

		result = &CompleteTaskResult{Invalidations: invalidations}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}
