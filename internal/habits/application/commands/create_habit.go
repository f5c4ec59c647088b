package commands

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/svenhofer/timegrid/internal/habits/domain"
	sharedApplication "github.com/svenhofer/timegrid/internal/shared/application"
	"github.com/svenhofer/timegrid/internal/shared/infrastructure/outbox"
)

// CreateHabitCommand contains the data needed to create a habit.
type CreateHabitCommand struct {
	UserID             uuid.UUID
	Name               string
	DurationMinutes    int
	Frequency          string
	DefaultStartMinute *int
	WeekdayStartMinute map[time.Weekday]int
}

// CreateHabitResult contains the result of creating a habit.
type CreateHabitResult struct {
	HabitID uuid.UUID
}

// CreateHabitHandler handles the CreateHabitCommand.
type CreateHabitHandler struct {
	habitRepo  domain.Repository
	outboxRepo outbox.Repository
	uow        sharedApplication.UnitOfWork
}

// NewCreateHabitHandler creates a new CreateHabitHandler.
func NewCreateHabitHandler(habitRepo domain.Repository, outboxRepo outbox.Repository, uow sharedApplication.UnitOfWork) *CreateHabitHandler {
	return &CreateHabitHandler{
		habitRepo:  habitRepo,
		outboxRepo: outboxRepo,
		uow:        uow,
	}
}

// Handle executes the CreateHabitCommand.
func (h *CreateHabitHandler) Handle(ctx context.Context, cmd CreateHabitCommand) (*CreateHabitResult, error) {
	var result *CreateHabitResult

	err := sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		freq := domain.Frequency(cmd.Frequency)
		if !freq.IsValid() {
			freq = domain.FrequencyDaily
		}

		habit, err := domain.NewHabit(cmd.UserID, cmd.Name, cmd.DurationMinutes, freq)
		if err != nil {
			return err
		}

		if cmd.DefaultStartMinute != nil {
			if err := habit.SetDefaultStartMinute(*cmd.DefaultStartMinute); err != nil {
				return err
			}
		}
		for weekday, minute := range cmd.WeekdayStartMinute {
			if err := habit.SetWeekdayStartMinute(weekday, minute); err != nil {
				return err
			}
		}

		if err := h.habitRepo.Save(txCtx, habit); err != nil {
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

		result = &CreateHabitResult{HabitID: habit.ID()}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}
