package queries

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"
	identityDomain "github.com/svenhofer/timegrid/internal/identity/domain"
	"github.com/svenhofer/timegrid/internal/insights/domain"
	meetingsDomain "github.com/svenhofer/timegrid/internal/meetings/domain"
	schedulingDomain "github.com/svenhofer/timegrid/internal/scheduling/domain"
	"github.com/svenhofer/timegrid/internal/shared/infrastructure/cache"
	"github.com/svenhofer/timegrid/pkg/observability"
)

// BufferReportTTL bounds staleness of cached weekly reports.
const BufferReportTTL = 6 * time.Hour

// GetBufferUtilizationQuery reports spend against each weekly category
// buffer for the week containing Date.
type GetBufferUtilizationQuery struct {
	UserID uuid.UUID
	Date   time.Time
}

// Validate validates the query.
func (q GetBufferUtilizationQuery) Validate() error {
	if q.UserID == uuid.Nil {
		return errors.New("user_id is required")
	}
	if q.Date.IsZero() {
		return errors.New("date is required")
	}
	return nil
}

// BufferReport is the weekly utilization report.
type BufferReport struct {
	WeekStart time.Time                  `json:"week_start"`
	WeekEnd   time.Time                  `json:"week_end"`
	Buffers   []domain.BufferUtilization `json:"buffers"`
	// UncategorizedHours is time spent outside any buffered category. It
	// is reported but excluded from percentage math.
	UncategorizedHours float64 `json:"uncategorized_hours"`
}

// GetBufferUtilizationHandler computes weekly buffer spend from the
// week's meetings and completed sessions, reading through the cache.
type GetBufferUtilizationHandler struct {
	settingsRepo identityDomain.SettingsRepository
	categoryRepo domain.CategoryRepository
	meetingRepo  meetingsDomain.Repository
	sessionRepo  domain.SessionRepository
	cache        cache.Cache
	logger       *slog.Logger
	metrics      observability.Metrics
}

// NewGetBufferUtilizationHandler creates a new GetBufferUtilizationHandler.
func NewGetBufferUtilizationHandler(
	settingsRepo identityDomain.SettingsRepository,
	categoryRepo domain.CategoryRepository,
	meetingRepo meetingsDomain.Repository,
	sessionRepo domain.SessionRepository,
	c cache.Cache,
	logger *slog.Logger,
	metrics observability.Metrics,
) *GetBufferUtilizationHandler {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = observability.NoopMetrics{}
	}
	return &GetBufferUtilizationHandler{
		settingsRepo: settingsRepo,
		categoryRepo: categoryRepo,
		meetingRepo:  meetingRepo,
		sessionRepo:  sessionRepo,
		cache:        c,
		logger:       logger,
		metrics:      metrics,
	}
}

// Handle executes the GetBufferUtilizationQuery.
func (h *GetBufferUtilizationHandler) Handle(ctx context.Context, q GetBufferUtilizationQuery) (*BufferReport, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	settings, err := h.settingsRepo.Get(ctx, q.UserID)
	if err != nil {
		return nil, err
	}
	week := schedulingDomain.WeekRangeFor(q.Date.In(settings.Location()), settings.WeekStartDay)
	key := cache.BufferUtilizationKey(q.UserID, week.Start)

	if cached, err := h.cache.Get(ctx, key); err == nil {
		var report BufferReport
		if err := json.Unmarshal(cached, &report); err == nil {
			h.metrics.Counter(observability.MetricCacheHit, 1)
			return &report, nil
		}
		h.logger.Warn("discarding undecodable cached buffer report", "key", key)
	}
	h.metrics.Counter(observability.MetricCacheMiss, 1)

	report, err := h.build(ctx, q.UserID, week)
	if err != nil {
		return nil, err
	}

	if payload, err := json.Marshal(report); err == nil {
		if err := h.cache.Set(ctx, key, payload, BufferReportTTL); err != nil {
			h.logger.Warn("failed to cache buffer report", "key", key, "error", err)
		}
	}

	return report, nil
}

func (h *GetBufferUtilizationHandler) build(ctx context.Context, userID uuid.UUID, week schedulingDomain.TimeRange) (*BufferReport, error) {
	buffers, err := h.categoryRepo.FindBuffersByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	categories, err := h.categoryRepo.FindCategoriesByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	names := make(map[uuid.UUID]string, len(categories))
	for _, category := range categories {
		names[category.ID()] = category.Name()
	}

	spentMinutes, uncategorized, err := h.spentByCategory(ctx, userID, week)
	if err != nil {
		return nil, err
	}

	report := &BufferReport{
		WeekStart:          week.Start,
		WeekEnd:            week.End,
		UncategorizedHours: float64(uncategorized) / 60,
	}

	buffered := make(map[uuid.UUID]bool, len(buffers))
	for _, buffer := range buffers {
		buffered[buffer.CategoryID] = true
		name, ok := names[buffer.CategoryID]
		if !ok {
			name = domain.UncategorizedName
		}
		spent := float64(spentMinutes[buffer.CategoryID]) / 60
		report.Buffers = append(report.Buffers,
			domain.ComputeBufferUtilization(buffer, name, spent))
	}

	// Categorized time outside any buffer joins the uncategorized total:
	// it is spend the user chose not to budget.
	for categoryID, minutes := range spentMinutes {
		if !buffered[categoryID] {
			report.UncategorizedHours += float64(minutes) / 60
		}
	}

	sort.Slice(report.Buffers, func(i, j int) bool {
		if report.Buffers[i].UtilizationPercent != report.Buffers[j].UtilizationPercent {
			return report.Buffers[i].UtilizationPercent > report.Buffers[j].UtilizationPercent
		}
		return report.Buffers[i].CategoryName < report.Buffers[j].CategoryName
	})

	return report, nil
}

// spentByCategory sums meeting and completed-session minutes that start
// inside the week, keyed by category. Running sessions contribute 0.
func (h *GetBufferUtilizationHandler) spentByCategory(ctx context.Context, userID uuid.UUID, week schedulingDomain.TimeRange) (map[uuid.UUID]int, int, error) {
	spent := make(map[uuid.UUID]int)
	uncategorized := 0

	meetings, err := h.meetingRepo.FindByUserInRange(ctx, userID, week.Start, week.End)
	if err != nil {
		return nil, 0, err
	}
	for _, meeting := range meetings {
		end := meeting.EndAt()
		minutes := domain.IntervalMinutes(meeting.StartAt(), &end)
		if categoryID := meeting.CategoryID(); categoryID != nil {
			spent[*categoryID] += minutes
		} else {
			uncategorized += minutes
		}
	}

	sessions, err := h.sessionRepo.FindByUserInRange(ctx, userID, week.Start, week.End)
	if err != nil {
		return nil, 0, err
	}
	for _, session := range sessions {
		minutes := session.Minutes()
		if categoryID := session.CategoryID(); categoryID != nil {
			spent[*categoryID] += minutes
		} else {
			uncategorized += minutes
		}
	}

	return spent, uncategorized, nil
}
