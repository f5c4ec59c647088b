package commands

import (
	"context"

	"github.com/google/uuid"
	"github.com/svenhofer/timegrid/internal/productivity/domain/task"
	sharedApplication "github.com/svenhofer/timegrid/internal/shared/application"
	"github.com/svenhofer/timegrid/internal/shared/infrastructure/outbox"
)

// CreateTaskCommand contains the data needed to create a task.
type CreateTaskCommand struct {
	UserID        uuid.UUID
	ParentTaskID  *uuid.UUID
	Title         string
	DurationHours *float64
	Position      int
}

// CreateTaskResult contains the result of creating a task.
type CreateTaskResult struct {
	TaskID uuid.UUID
}

// CreateTaskHandler handles the CreateTaskCommand.
type CreateTaskHandler struct {
	taskRepo   task.Repository
	outboxRepo outbox.Repository
	uow        sharedApplication.UnitOfWork
}

// NewCreateTaskHandler creates a new CreateTaskHandler.
func NewCreateTaskHandler(taskRepo task.Repository, outboxRepo outbox.Repository, uow sharedApplication.UnitOfWork) *CreateTaskHandler {
	return &CreateTaskHandler{
		taskRepo:   taskRepo,
		outboxRepo: outboxRepo,
		uow:        uow,
	}
}

// Handle executes the CreateTaskCommand.
func (h *CreateTaskHandler) Handle(ctx context.Context, cmd CreateTaskCommand) (*CreateTaskResult, error) {
	var result *CreateTaskResult

	err := sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		var t *task.Task
		var err error

		if cmd.ParentTaskID != nil {
			parent, err := h.taskRepo.FindByID(txCtx, *cmd.ParentTaskID)
			if err != nil {
				return err
			}
			t, err = task.NewSubtask(cmd.UserID, parent, cmd.Title)
			if err != nil {
				return err
			}
		} else {
			t, err = task.NewTask(cmd.UserID, cmd.Title)
			if err != nil {
				return err
			}
		}

		if cmd.DurationHours != nil {
			if err := t.SetDuration(*cmd.DurationHours); err != nil {
				return err
			}
		}
		t.SetPosition(cmd.Position)

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

		result = &CreateTaskResult{TaskID: t.ID()}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}
