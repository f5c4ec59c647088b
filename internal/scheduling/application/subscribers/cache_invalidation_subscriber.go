// Package subscribers wires domain events back into the scheduling
// context. Its one job today is keeping cached day plans and weekly
// reports honest when another process changes slot occupancy.
package subscribers

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"
	habitsDomain "github.com/svenhofer/timegrid/internal/habits/domain"
	identityDomain "github.com/svenhofer/timegrid/internal/identity/domain"
	meetingsDomain "github.com/svenhofer/timegrid/internal/meetings/domain"
	"github.com/svenhofer/timegrid/internal/productivity/domain/task"
	"github.com/svenhofer/timegrid/internal/scheduling/application/edits"
	schedulingDomain "github.com/svenhofer/timegrid/internal/scheduling/domain"
	"github.com/svenhofer/timegrid/internal/shared/infrastructure/cache"
	"github.com/svenhofer/timegrid/internal/shared/infrastructure/eventbus"
)

// CacheInvalidationSubscriber flushes cached timelines and reports when
// occupancy-changing events arrive over the bus. Commands in the same
// process already invalidate directly; the subscriber covers writes
// made by other processes sharing the cache.
type CacheInvalidationSubscriber struct {
	invalidator  *cache.Invalidator
	settingsRepo identityDomain.SettingsRepository
	logger       *slog.Logger
}

// NewCacheInvalidationSubscriber creates the subscriber.
func NewCacheInvalidationSubscriber(
	invalidator *cache.Invalidator,
	settingsRepo identityDomain.SettingsRepository,
	logger *slog.Logger,
) *CacheInvalidationSubscriber {
	if logger == nil {
		logger = slog.Default()
	}
	return &CacheInvalidationSubscriber{
		invalidator:  invalidator,
		settingsRepo: settingsRepo,
		logger:       logger,
	}
}

// EventTypes returns the routing keys this subscriber handles.
func (s *CacheInvalidationSubscriber) EventTypes() []string {
	return []string{
		habitsDomain.RoutingKeyOverrideSet,
		meetingsDomain.RoutingKeyMeetingCreated,
		meetingsDomain.RoutingKeyMeetingRescheduled,
		task.RoutingKeyTaskDurationChanged,
		task.RoutingKeyTaskCompleted,
		schedulingDomain.RoutingKeyDayScheduled,
	}
}

// Handle maps the event onto an edit variant and applies its
// invalidations. Payloads that will not decode are logged and dropped:
// a stale cache entry expires on TTL, a requeue loop does not.
func (s *CacheInvalidationSubscriber) Handle(ctx context.Context, event *eventbus.ConsumedEvent) error {
	edit, ok := s.editFor(event)
	if !ok {
		return nil
	}

	weekStartDay := time.Monday
	if settings, err := s.settingsRepo.Get(ctx, edits.EditUserID(edit)); err == nil {
		weekStartDay = settings.WeekStartDay
	}

	set := edits.PlanInvalidations(edit, weekStartDay)
	s.invalidator.Apply(ctx, set)
	return nil
}

func (s *CacheInvalidationSubscriber) editFor(event *eventbus.ConsumedEvent) (edits.EditRequest, bool) {
	switch event.RoutingKey {
	case habitsDomain.RoutingKeyOverrideSet:
		var payload struct {
			UserID uuid.UUID `json:"user_id"`
			Day    time.Time `json:"day"`
		}
		if !s.decode(event, &payload) {
			return nil, false
		}
		return edits.HabitEdit{UserID: payload.UserID, Day: payload.Day}, true

	case meetingsDomain.RoutingKeyMeetingCreated:
		var payload struct {
			UserID  uuid.UUID `json:"user_id"`
			StartAt time.Time `json:"start_at"`
			EndAt   time.Time `json:"end_at"`
		}
		if !s.decode(event, &payload) {
			return nil, false
		}
		return edits.MeetingEdit{
			UserID:   payload.UserID,
			NewStart: payload.StartAt,
			NewEnd:   payload.EndAt,
		}, true

	case meetingsDomain.RoutingKeyMeetingRescheduled:
		var payload struct {
			UserID     uuid.UUID `json:"user_id"`
			OldStartAt time.Time `json:"old_start_at"`
			OldEndAt   time.Time `json:"old_end_at"`
			NewStartAt time.Time `json:"new_start_at"`
			NewEndAt   time.Time `json:"new_end_at"`
		}
		if !s.decode(event, &payload) {
			return nil, false
		}
		return edits.MeetingEdit{
			UserID:   payload.UserID,
			OldStart: payload.OldStartAt,
			OldEnd:   payload.OldEndAt,
			NewStart: payload.NewStartAt,
			NewEnd:   payload.NewEndAt,
		}, true

	case task.RoutingKeyTaskDurationChanged:
		var payload struct {
			UserID      uuid.UUID  `json:"user_id"`
			ScheduledOn *time.Time `json:"scheduled_on"`
		}
		if !s.decode(event, &payload) {
			return nil, false
		}
		return edits.TaskEdit{UserID: payload.UserID, Day: payload.ScheduledOn}, true

	case task.RoutingKeyTaskCompleted:
		var payload struct {
			UserID      uuid.UUID `json:"user_id"`
			CompletedAt time.Time `json:"completed_at"`
		}
		if !s.decode(event, &payload) {
			return nil, false
		}
		day := payload.CompletedAt
		return edits.TaskEdit{UserID: payload.UserID, Day: &day}, true

	case schedulingDomain.RoutingKeyDayScheduled:
		var payload struct {
			UserID uuid.UUID `json:"user_id"`
			Day    time.Time `json:"day"`
		}
		if !s.decode(event, &payload) {
			return nil, false
		}
		day := payload.Day
		return edits.TaskEdit{UserID: payload.UserID, Day: &day}, true
	}

	return nil, false
}

func (s *CacheInvalidationSubscriber) decode(event *eventbus.ConsumedEvent, v any) bool {
	if len(event.Payload) == 0 {
		s.logger.Warn("event has no payload, skipping invalidation",
			"routing_key", event.RoutingKey,
			"event_id", event.EventID,
		)
		return false
	}
	if err := json.Unmarshal(event.Payload, v); err != nil {
		s.logger.Warn("failed to decode event payload, skipping invalidation",
			"routing_key", event.RoutingKey,
			"event_id", event.EventID,
			"error", err,
		)
		return false
	}
	return true
}
