package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	identityDomain "github.com/svenhofer/timegrid/internal/identity/domain"
	"github.com/svenhofer/timegrid/internal/insights/application/queries"
	"github.com/svenhofer/timegrid/internal/insights/domain"
	"github.com/svenhofer/timegrid/pkg/observability"
)

// Snapshotter freezes weekly buffer utilization into persisted
// snapshots. The worker runs it just after each week rolls over, so
// trend queries never have to re-aggregate old meetings and sessions.
//
// Only users with stored settings are covered: a user who never touched
// their settings also never configured a buffer.
type Snapshotter struct {
	settingsRepo identityDomain.SettingsRepository
	utilization  *queries.GetBufferUtilizationHandler
	snapshotRepo domain.SnapshotRepository
	logger       *slog.Logger
	metrics      observability.Metrics
}

// NewSnapshotter creates a Snapshotter.
func NewSnapshotter(
	settingsRepo identityDomain.SettingsRepository,
	utilization *queries.GetBufferUtilizationHandler,
	snapshotRepo domain.SnapshotRepository,
	logger *slog.Logger,
	metrics observability.Metrics,
) *Snapshotter {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = observability.NoopMetrics{}
	}
	return &Snapshotter{
		settingsRepo: settingsRepo,
		utilization:  utilization,
		snapshotRepo: snapshotRepo,
		logger:       logger,
		metrics:      metrics,
	}
}

// SnapshotPreviousWeek snapshots the week that contained now-7d for
// every known user. Per-user failures are logged and skipped so one bad
// user cannot starve the rest; the first error is reported after the
// sweep.
func (s *Snapshotter) SnapshotPreviousWeek(ctx context.Context, now time.Time) error {
	userIDs, err := s.settingsRepo.ListUserIDs(ctx)
	if err != nil {
		return fmt.Errorf("listing users for snapshot sweep: %w", err)
	}

	reference := now.AddDate(0, 0, -7)
	var firstErr error
	total := 0
	for _, userID := range userIDs {
		count, err := s.SnapshotUserWeek(ctx, userID, reference)
		if err != nil {
			s.logger.Error("snapshot failed for user", "user_id", userID, "error", err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		total += count
	}

	s.metrics.Counter(observability.MetricSnapshotsWritten, int64(total))
	s.logger.Info("snapshot sweep complete", "users", len(userIDs), "snapshots", total)
	return firstErr
}

// SnapshotUserWeek computes and stores snapshots for the week
// containing reference, returning how many were written.
func (s *Snapshotter) SnapshotUserWeek(ctx context.Context, userID uuid.UUID, reference time.Time) (int, error) {
	report, err := s.utilization.Handle(ctx, queries.GetBufferUtilizationQuery{
		UserID: userID,
		Date:   reference,
	})
	if err != nil {
		return 0, err
	}

	for _, utilization := range report.Buffers {
		snapshot := domain.NewUtilizationSnapshot(userID, report.WeekStart, utilization)
		if err := s.snapshotRepo.Save(ctx, snapshot); err != nil {
			return 0, fmt.Errorf("saving snapshot for category %s: %w", utilization.CategoryID, err)
		}
	}

	return len(report.Buffers), nil
}
