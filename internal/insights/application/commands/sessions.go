package commands

import (
	"context"
	"time"

	"github.com/google/uuid"
	identityDomain "github.com/svenhofer/timegrid/internal/identity/domain"
	"github.com/svenhofer/timegrid/internal/insights/domain"
	"github.com/svenhofer/timegrid/internal/scheduling/application/edits"
	sharedApplication "github.com/svenhofer/timegrid/internal/shared/application"
	"github.com/svenhofer/timegrid/internal/shared/infrastructure/cache"
)

// StartSessionCommand begins tracking a block of time. CategoryID may be
// nil; uncategorized sessions still pin their start slot on the grid.
type StartSessionCommand struct {
	UserID     uuid.UUID
	CategoryID *uuid.UUID
	StartedAt  time.Time
}

// StartSessionResult reports the started session and the cache keys the
// caller must flush. A running session only pins its start slot, so the
// session's day plan goes stale immediately but the weekly buffer does
// not until the session stops.
type StartSessionResult struct {
	Session       *domain.TimeSession
	Invalidations *cache.InvalidationSet
}

// StartSessionHandler handles the StartSessionCommand.
type StartSessionHandler struct {
	sessionRepo domain.SessionRepository
	uow         sharedApplication.UnitOfWork
}

// NewStartSessionHandler creates a new StartSessionHandler.
func NewStartSessionHandler(sessionRepo domain.SessionRepository, uow sharedApplication.UnitOfWork) *StartSessionHandler {
	return &StartSessionHandler{
		sessionRepo: sessionRepo,
		uow:         uow,
	}
}

// Handle executes the StartSessionCommand.
func (h *StartSessionHandler) Handle(ctx context.Context, cmd StartSessionCommand) (*StartSessionResult, error) {
	var result *StartSessionResult

	err := sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		session := domain.StartSession(cmd.UserID, cmd.CategoryID, cmd.StartedAt)
		if err := h.sessionRepo.Save(txCtx, session); err != nil {
			return err
		}
		result = &StartSessionResult{
			Session:       session,
			Invalidations: cache.NewInvalidationSet().AddDayPlan(cmd.UserID, cmd.StartedAt),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// StopSessionCommand ends a running session.
type StopSessionCommand struct {
	UserID    uuid.UUID
	SessionID uuid.UUID
	EndedAt   time.Time
}

// StopSessionResult reports the stopped session and the cache keys the
// caller must flush.
type StopSessionResult struct {
	Session       *domain.TimeSession
	Invalidations *cache.InvalidationSet
}

// StopSessionHandler handles the StopSessionCommand.
type StopSessionHandler struct {
	sessionRepo  domain.SessionRepository
	settingsRepo identityDomain.SettingsRepository
	uow          sharedApplication.UnitOfWork
}

// NewStopSessionHandler creates a new StopSessionHandler.
func NewStopSessionHandler(
	sessionRepo domain.SessionRepository,
	settingsRepo identityDomain.SettingsRepository,
	uow sharedApplication.UnitOfWork,
) *StopSessionHandler {
	return &StopSessionHandler{
		sessionRepo:  sessionRepo,
		settingsRepo: settingsRepo,
		uow:          uow,
	}
}

// Handle executes the StopSessionCommand. Stopping the session makes
// its minutes count toward the week's buffers, so both the day plan and
// the weekly buffer report are flushed.
func (h *StopSessionHandler) Handle(ctx context.Context, cmd StopSessionCommand) (*StopSessionResult, error) {
	settings, err := h.settingsRepo.Get(ctx, cmd.UserID)
	if err != nil {
		return nil, err
	}

	var result *StopSessionResult

	err = sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		session, err := h.sessionRepo.FindByID(txCtx, cmd.SessionID)
		if err != nil {
			return err
		}
		if err := session.Stop(cmd.EndedAt); err != nil {
			return err
		}
		if err := h.sessionRepo.Save(txCtx, session); err != nil {
			return err
		}

		edit := edits.SessionEdit{UserID: cmd.UserID, Day: session.StartedAt()}
		result = &StopSessionResult{
			Session:       session,
			Invalidations: edits.PlanInvalidations(edit, settings.WeekStartDay),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}
