package queries

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/svenhofer/timegrid/internal/insights/domain"
	meetingsDomain "github.com/svenhofer/timegrid/internal/meetings/domain"
	schedulingDomain "github.com/svenhofer/timegrid/internal/scheduling/domain"
	"github.com/svenhofer/timegrid/internal/shared/infrastructure/cache"
	"github.com/svenhofer/timegrid/pkg/observability"
)

// CategoryHoursTTL bounds staleness of cached hour reports.
const CategoryHoursTTL = 6 * time.Hour

// GetCategoryHoursQuery reports meeting hours grouped by category over
// [From, To]. Both boundaries are inclusive.
type GetCategoryHoursQuery struct {
	UserID uuid.UUID
	From   time.Time
	To     time.Time
}

// Validate validates the query.
func (q GetCategoryHoursQuery) Validate() error {
	if q.UserID == uuid.Nil {
		return errors.New("user_id is required")
	}
	if q.From.IsZero() || q.To.IsZero() {
		return errors.New("from and to are required")
	}
	if q.To.Before(q.From) {
		return errors.New("to must not precede from")
	}
	return nil
}

// GetCategoryHoursHandler groups meeting time by category, reading
// through the cache.
type GetCategoryHoursHandler struct {
	categoryRepo domain.CategoryRepository
	meetingRepo  meetingsDomain.Repository
	cache        cache.Cache
	logger       *slog.Logger
	metrics      observability.Metrics
}

// NewGetCategoryHoursHandler creates a new GetCategoryHoursHandler.
func NewGetCategoryHoursHandler(
	categoryRepo domain.CategoryRepository,
	meetingRepo meetingsDomain.Repository,
	c cache.Cache,
	logger *slog.Logger,
	metrics observability.Metrics,
) *GetCategoryHoursHandler {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = observability.NoopMetrics{}
	}
	return &GetCategoryHoursHandler{
		categoryRepo: categoryRepo,
		meetingRepo:  meetingRepo,
		cache:        c,
		logger:       logger,
		metrics:      metrics,
	}
}

// Handle executes the GetCategoryHoursQuery.
func (h *GetCategoryHoursHandler) Handle(ctx context.Context, q GetCategoryHoursQuery) ([]domain.CategoryHours, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	timeRange, err := schedulingDomain.NewTimeRange(q.From, q.To)
	if err != nil {
		return nil, err
	}
	key := cache.CategoryHoursKey(q.UserID, q.From, q.To)

	if cached, err := h.cache.Get(ctx, key); err == nil {
		var hours []domain.CategoryHours
		if err := json.Unmarshal(cached, &hours); err == nil {
			h.metrics.Counter(observability.MetricCacheHit, 1)
			return hours, nil
		}
		h.logger.Warn("discarding undecodable cached category hours", "key", key)
	}
	h.metrics.Counter(observability.MetricCacheMiss, 1)

	meetings, err := h.meetingRepo.FindByUserInRange(ctx, q.UserID, q.From, q.To)
	if err != nil {
		return nil, err
	}
	records := make([]domain.MeetingRecord, 0, len(meetings))
	for _, meeting := range meetings {
		records = append(records, domain.MeetingRecord{
			CategoryID: meeting.CategoryID(),
			StartAt:    meeting.StartAt(),
			EndAt:      meeting.EndAt(),
		})
	}

	categories, err := h.categoryRepo.FindCategoriesByUserID(ctx, q.UserID)
	if err != nil {
		return nil, err
	}
	names := make(map[uuid.UUID]string, len(categories))
	for _, category := range categories {
		names[category.ID()] = category.Name()
	}

	hours := domain.MeetingHoursByCategory(records, names, timeRange)

	if payload, err := json.Marshal(hours); err == nil {
		if err := h.cache.Set(ctx, key, payload, CategoryHoursTTL); err != nil {
			h.logger.Warn("failed to cache category hours", "key", key, "error", err)
		}
	}

	return hours, nil
}
