package commands

import (
	"context"
	"time"

	"github.com/google/uuid"
	identityDomain "github.com/svenhofer/timegrid/internal/identity/domain"
	"github.com/svenhofer/timegrid/internal/meetings/domain"
	schedulingDomain "github.com/svenhofer/timegrid/internal/scheduling/domain"
	sharedApplication "github.com/svenhofer/timegrid/internal/shared/application"
	"github.com/svenhofer/timegrid/internal/shared/infrastructure/cache"
	"github.com/svenhofer/timegrid/internal/shared/infrastructure/outbox"
)

// CreateMeetingCommand contains the data needed to create a meeting.
type CreateMeetingCommand struct {
	UserID     uuid.UUID
	Title      string
	CategoryID *uuid.UUID
	StartAt    time.Time
	EndAt      time.Time
}

// CreateMeetingResult reports the new meeting and the cache keys the
// caller must flush: the day plan of every day the meeting touches and
// the buffer report of the week it starts in.
type CreateMeetingResult struct {
	MeetingID     uuid.UUID
	Invalidations *cache.InvalidationSet
}

// CreateMeetingHandler handles the CreateMeetingCommand.
type CreateMeetingHandler struct {
	meetingRepo  domain.Repository
	settingsRepo identityDomain.SettingsRepository
	outboxRepo   outbox.Repository
	uow          sharedApplication.UnitOfWork
}

// NewCreateMeetingHandler creates a new CreateMeetingHandler.
func NewCreateMeetingHandler(
	meetingRepo domain.Repository,
	settingsRepo identityDomain.SettingsRepository,
	outboxRepo outbox.Repository,
	uow sharedApplication.UnitOfWork,
) *CreateMeetingHandler {
	return &CreateMeetingHandler{
		meetingRepo:  meetingRepo,
		settingsRepo: settingsRepo,
		outboxRepo:   outboxRepo,
		uow:          uow,
	}
}

// Handle executes the CreateMeetingCommand.
func (h *CreateMeetingHandler) Handle(ctx context.Context, cmd CreateMeetingCommand) (*CreateMeetingResult, error) {
	settings, err := h.settingsRepo.Get(ctx, cmd.UserID)
	if err != nil {
		return nil, err
	}

	var result *CreateMeetingResult

	err = sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		meeting, err := domain.NewMeeting(cmd.UserID, cmd.Title, cmd.CategoryID, cmd.StartAt, cmd.EndAt)
		if err != nil {
			return err
		}

		if err := h.meetingRepo.Save(txCtx, meeting); err != nil {
			return err
		}

		events := meeting.DomainEvents()
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
		meeting.ClearDomainEvents()

		invalidations := cache.NewInvalidationSet()
		for day := schedulingDomain.StartOfDay(meeting.StartAt()); !day.After(meeting.EndAt()); day = day.AddDate(0, 0, 1) {
			invalidations.AddDayPlan(cmd.UserID, day)
		}
		weekStart := schedulingDomain.StartOfWeek(meeting.StartAt(), settings.WeekStartDay)
		invalidations.AddBufferUtilization(cmd.UserID, weekStart)

		result = &CreateMeetingResult{
			MeetingID:     meeting.ID(),
			Invalidations: invalidations,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}
