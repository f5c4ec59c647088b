package queries

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	identityDomain "github.com/svenhofer/timegrid/internal/identity/domain"
	"github.com/svenhofer/timegrid/internal/productivity/domain/task"
	"github.com/svenhofer/timegrid/internal/scheduling/application/services"
	schedulingDomain "github.com/svenhofer/timegrid/internal/scheduling/domain"
	"github.com/svenhofer/timegrid/internal/shared/infrastructure/cache"
	"github.com/svenhofer/timegrid/pkg/observability"
)

// DayPlanTTL bounds cache staleness for assembled timelines. Occupancy
// changes invalidate explicitly, so the TTL is a backstop, not the
// freshness mechanism.
const DayPlanTTL = 24 * time.Hour

// GetDayTimelineQuery retrieves a user's assembled timeline for one day.
type GetDayTimelineQuery struct {
	UserID uuid.UUID
	Day    time.Time
}

// Validate validates the query.
func (q GetDayTimelineQuery) Validate() error {
	if q.UserID == uuid.Nil {
		return errors.New("user_id is required")
	}
	if q.Day.IsZero() {
		return errors.New("day is required")
	}
	return nil
}

// TimelineOccupant is one item covering a timeline slot.
type TimelineOccupant struct {
	Kind  string    `json:"kind"`
	RefID uuid.UUID `json:"ref_id"`
	Title string    `json:"title"`
}

// TimelineSlot is one 15-minute slot of the assembled day.
type TimelineSlot struct {
	Start     time.Time          `json:"start"`
	End       time.Time          `json:"end"`
	Occupants []TimelineOccupant `json:"occupants,omitempty"`
}

// DayTimeline is the assembled day: the work-window grid with meetings,
// due habits, sessions, and scheduled tasks laid onto it.
type DayTimeline struct {
	Day       time.Time      `json:"day"`
	StartHour int            `json:"start_hour"`
	EndHour   int            `json:"end_hour"`
	Slots     []TimelineSlot `json:"slots"`
}

// FreeSlotCount returns the number of unoccupied slots.
func (t DayTimeline) FreeSlotCount() int {
	free := 0
	for _, slot := range t.Slots {
		if len(slot.Occupants) == 0 {
			free++
		}
	}
	return free
}

// OccupantKindTask marks grid items that come from scheduled tasks
// rather than the fixed-item collector.
const OccupantKindTask = string(services.KindTask)

// GetDayTimelineHandler assembles day timelines, reading through the
// cache. A cached timeline is served as-is; on miss the timeline is
// rebuilt from the contexts and stored.
type GetDayTimelineHandler struct {
	settingsRepo identityDomain.SettingsRepository
	taskRepo     task.Repository
	collector    *services.FixedItemCollector
	cache        cache.Cache
	logger       *slog.Logger
	metrics      observability.Metrics
}

// NewGetDayTimelineHandler creates a new GetDayTimelineHandler.
func NewGetDayTimelineHandler(
	settingsRepo identityDomain.SettingsRepository,
	taskRepo task.Repository,
	collector *services.FixedItemCollector,
	c cache.Cache,
	logger *slog.Logger,
	metrics observability.Metrics,
) *GetDayTimelineHandler {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = observability.NoopMetrics{}
	}
	return &GetDayTimelineHandler{
		settingsRepo: settingsRepo,
		taskRepo:     taskRepo,
		collector:    collector,
		cache:        c,
		logger:       logger,
		metrics:      metrics,
	}
}

// Handle executes the GetDayTimelineQuery.
func (h *GetDayTimelineHandler) Handle(ctx context.Context, q GetDayTimelineQuery) (*DayTimeline, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	settings, err := h.settingsRepo.Get(ctx, q.UserID)
	if err != nil {
		return nil, err
	}
	day := schedulingDomain.StartOfDay(q.Day.In(settings.Location()))
	key := cache.DayPlanKey(q.UserID, day)

	if cached, err := h.cache.Get(ctx, key); err == nil {
		var timeline DayTimeline
		if err := json.Unmarshal(cached, &timeline); err == nil {
			h.metrics.Counter(observability.MetricCacheHit, 1)
			return &timeline, nil
		}
		h.logger.Warn("discarding undecodable cached timeline", "key", key)
	}
	h.metrics.Counter(observability.MetricCacheMiss, 1)

	timeline, err := h.build(ctx, q.UserID, day, settings)
	if err != nil {
		return nil, err
	}

	if payload, err := json.Marshal(timeline); err == nil {
		if err := h.cache.Set(ctx, key, payload, DayPlanTTL); err != nil {
			h.logger.Warn("failed to cache timeline", "key", key, "error", err)
		}
	}

	return timeline, nil
}

func (h *GetDayTimelineHandler) build(ctx context.Context, userID uuid.UUID, day time.Time, settings *identityDomain.UserSettings) (*DayTimeline, error) {
	slots, err := schedulingDomain.BuildDayGrid(day, settings.WorkHours)
	if err != nil {
		return nil, err
	}

	items, err := h.collector.CollectForDay(ctx, userID, day)
	if err != nil {
		return nil, err
	}

	scheduled, err := h.taskRepo.FindScheduledOn(ctx, userID, day)
	if err != nil {
		return nil, err
	}
	items = append(items, services.ScheduledTaskItems(day, scheduled)...)

	occupancy := services.PlaceFixedItems(slots, items)

	timeline := &DayTimeline{
		Day:       day,
		StartHour: settings.WorkHours.StartHour,
		EndHour:   settings.WorkHours.EndHour,
		Slots:     make([]TimelineSlot, len(occupancy)),
	}
	for i, slot := range occupancy {
		ts := TimelineSlot{Start: slot.Slot.Start, End: slot.Slot.End()}
		for _, occupant := range slot.Occupants {
			ts.Occupants = append(ts.Occupants, TimelineOccupant{
				Kind:  string(occupant.Kind),
				RefID: occupant.RefID,
				Title: occupant.Title,
			})
		}
		timeline.Slots[i] = ts
	}

	return timeline, nil
}
