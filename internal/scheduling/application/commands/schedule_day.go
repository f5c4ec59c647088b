package commands

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	identityDomain "github.com/svenhofer/timegrid/internal/identity/domain"
	"github.com/svenhofer/timegrid/internal/productivity/domain/task"
	"github.com/svenhofer/timegrid/internal/scheduling/application/services"
	schedulingDomain "github.com/svenhofer/timegrid/internal/scheduling/domain"
	sharedApplication "github.com/svenhofer/timegrid/internal/shared/application"
	sharedDomain "github.com/svenhofer/timegrid/internal/shared/domain"
	"github.com/svenhofer/timegrid/internal/shared/infrastructure/cache"
	"github.com/svenhofer/timegrid/internal/shared/infrastructure/outbox"
	"github.com/svenhofer/timegrid/pkg/observability"
)

// ScheduleDayCommand runs an auto-scheduling pass for one day.
type ScheduleDayCommand struct {
	UserID uuid.UUID
	Day    time.Time
}

// ScheduleDayResult is the outcome of a pass. WindowUtilization is the
// share of the work window in use after placement (fixed items plus
// placed tasks), as a percentage.
type ScheduleDayResult struct {
	Placements        []services.Placement
	Unscheduled       []services.TaskInput
	WindowUtilization float64
	Invalidations     *cache.InvalidationSet
}

// ScheduleDayHandler assembles the day grid, places fixed items, runs
// the first-fit scheduler over pending tasks, and persists the assigned
// start hours inside one transaction.
type ScheduleDayHandler struct {
	settingsRepo identityDomain.SettingsRepository
	taskRepo     task.Repository
	collector    *services.FixedItemCollector
	scheduler    *services.AutoScheduler
	outboxRepo   outbox.Repository
	uow          sharedApplication.UnitOfWork
	logger       *slog.Logger
	metrics      observability.Metrics
}

// NewScheduleDayHandler creates a new ScheduleDayHandler.
func NewScheduleDayHandler(
	settingsRepo identityDomain.SettingsRepository,
	taskRepo task.Repository,
	collector *services.FixedItemCollector,
	scheduler *services.AutoScheduler,
	outboxRepo outbox.Repository,
	uow sharedApplication.UnitOfWork,
	logger *slog.Logger,
	metrics observability.Metrics,
) *ScheduleDayHandler {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = observability.NoopMetrics{}
	}
	return &ScheduleDayHandler{
		settingsRepo: settingsRepo,
		taskRepo:     taskRepo,
		collector:    collector,
		scheduler:    scheduler,
		outboxRepo:   outboxRepo,
		uow:          uow,
		logger:       logger,
		metrics:      metrics,
	}
}

// Handle executes the ScheduleDayCommand.
func (h *ScheduleDayHandler) Handle(ctx context.Context, cmd ScheduleDayCommand) (*ScheduleDayResult, error) {
	timer := observability.StartTimer(observability.MetricSchedulePass).
		WithLogger(h.logger).
		WithMetrics(h.metrics)
	defer timer.Stop()

	settings, err := h.settingsRepo.Get(ctx, cmd.UserID)
	if err != nil {
		return nil, err
	}

	day := schedulingDomain.StartOfDay(cmd.Day.In(settings.Location()))

	slots, err := schedulingDomain.BuildDayGrid(day, settings.WorkHours)
	if err != nil {
		return nil, err
	}

	items, err := h.collector.CollectForDay(ctx, cmd.UserID, day)
	if err != nil {
		return nil, err
	}

	// Tasks placed by an earlier pass keep their slots; without them a
	// rerun would book new tasks over the same times the timeline shows
	// as taken.
	alreadyScheduled, err := h.taskRepo.FindScheduledOn(ctx, cmd.UserID, day)
	if err != nil {
		return nil, err
	}
	items = append(items, services.ScheduledTaskItems(day, alreadyScheduled)...)

	occupancy := services.PlaceFixedItems(slots, items)
	occupied := services.OccupiedSlots(occupancy)
	fixedCount := len(occupied)

	pending, err := h.taskRepo.FindPendingByUserID(ctx, cmd.UserID)
	if err != nil {
		return nil, err
	}
	inputs := schedulableInputs(pending)

	scheduled := h.scheduler.Schedule(slots, occupied, inputs)

	var result *ScheduleDayResult
	err = sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		byID := make(map[uuid.UUID]*task.Task, len(pending))
		for _, t := range pending {
			byID[t.ID()] = t
		}

		for _, placement := range scheduled.Placements {
			t, ok := byID[placement.TaskID]
			if !ok {
				continue
			}
			if err := t.AssignStartHour(day, placement.StartHour); err != nil {
				return err
			}
			if err := h.taskRepo.Save(txCtx, t); err != nil {
				return err
			}
		}

		event := schedulingDomain.NewDayScheduled(uuid.New(), cmd.UserID, day,
			len(scheduled.Placements), len(scheduled.Unscheduled))
		sharedApplication.ApplyEventMetadata(
			[]sharedDomain.DomainEvent{&event},
			sharedApplication.NewEventMetadata(cmd.UserID),
		)

		msg, err := outbox.NewMessage(&event)
		if err != nil {
			return err
		}
		if err := h.outboxRepo.Save(txCtx, msg); err != nil {
			return err
		}

		placedSlots := 0
		for _, placement := range scheduled.Placements {
			placedSlots += placement.SlotCount
		}

		utilization := 0.0
		if len(slots) > 0 {
			utilization = 100 * float64(fixedCount+placedSlots) / float64(len(slots))
		}

		result = &ScheduleDayResult{
			Placements:        scheduled.Placements,
			Unscheduled:       scheduled.Unscheduled,
			WindowUtilization: utilization,
			Invalidations:     cache.NewInvalidationSet().AddDayPlan(cmd.UserID, day),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	h.metrics.Counter(observability.MetricScheduledTasks, int64(len(result.Placements)))
	h.metrics.Counter(observability.MetricUnscheduledTasks, int64(len(result.Unscheduled)))

	h.logger.Info("scheduling pass complete",
		"user_id", cmd.UserID,
		"day", day.Format("2006-01-02"),
		"scheduled", len(result.Placements),
		"unscheduled", len(result.Unscheduled),
	)

	return result, nil
}

// schedulableInputs filters pending tasks down to scheduler input:
// estimated tasks that are leaves of the two-level tree, preserving
// position order. A parent whose subtasks are all elsewhere still
// schedules itself.
func schedulableInputs(pending []*task.Task) []services.TaskInput {
	hasChildren := make(map[uuid.UUID]bool)
	for _, t := range pending {
		if parentID := t.ParentTaskID(); parentID != nil {
			hasChildren[*parentID] = true
		}
	}

	var inputs []services.TaskInput
	for _, t := range pending {
		if hasChildren[t.ID()] {
			continue
		}
		duration := t.DurationHours()
		if duration == nil {
			continue
		}
		inputs = append(inputs, services.TaskInput{
			ID:            t.ID(),
			Title:         t.Title(),
			DurationHours: *duration,
		})
	}
	return inputs
}
