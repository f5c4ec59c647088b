package services

import (
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"
	schedulingDomain "github.com/svenhofer/timegrid/internal/scheduling/domain"
	"github.com/svenhofer/timegrid/pkg/observability"
)

// TaskInput is one pending task in the caller's chosen order. The
// scheduler never reorders its input.
type TaskInput struct {
	ID            uuid.UUID
	Title         string
	DurationHours float64
}

// Placement records where a task landed on the grid.
type Placement struct {
	TaskID    uuid.UUID
	Title     string
	StartSlot int
	SlotCount int
	// StartHour is the run's first slot as a fractional hour of day,
	// e.g. 9.25 for 09:15.
	StartHour float64
	StartTime time.Time
}

// ScheduleResult is the outcome of one auto-scheduling pass. Overflow is
// soft: tasks that did not fit are listed, not errored.
type ScheduleResult struct {
	Placements  []Placement
	Unscheduled []TaskInput
}

// ScheduledCount returns the number of placed tasks.
func (r ScheduleResult) ScheduledCount() int {
	return len(r.Placements)
}

// AutoScheduler assigns pending tasks to free slot runs, first-fit in
// input order. Identical inputs always produce identical output.
type AutoScheduler struct {
	logger  *slog.Logger
	metrics observability.Metrics
}

// NewAutoScheduler creates an auto-scheduler.
func NewAutoScheduler(logger *slog.Logger, metrics observability.Metrics) *AutoScheduler {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = observability.NoopMetrics{}
	}
	return &AutoScheduler{logger: logger, metrics: metrics}
}

// SlotsNeeded returns how many 15-minute slots a duration consumes,
// rounding partial slots up.
func SlotsNeeded(durationHours float64) int {
	return int(math.Ceil(durationHours * 60 / schedulingDomain.SlotMinutes))
}

// Schedule walks tasks in order and places each into the earliest
// contiguous free run long enough for it, consuming those slots for
// subsequent tasks. occupied is mutated as runs are consumed. Tasks with
// non-positive durations and tasks that do not fit end up in
// Unscheduled.
func (s *AutoScheduler) Schedule(slots []schedulingDomain.Slot, occupied map[int]bool, tasks []TaskInput) ScheduleResult {
	if occupied == nil {
		occupied = make(map[int]bool)
	}

	var result ScheduleResult
	for _, task := range tasks {
		if task.DurationHours <= 0 {
			result.Unscheduled = append(result.Unscheduled, task)
			continue
		}

		needed := SlotsNeeded(task.DurationHours)
		startSlot, ok := firstFit(len(slots), occupied, needed)
		if !ok {
			result.Unscheduled = append(result.Unscheduled, task)
			continue
		}

		for i := startSlot; i < startSlot+needed; i++ {
			occupied[i] = true
		}

		slot := slots[startSlot]
		result.Placements = append(result.Placements, Placement{
			TaskID:    task.ID,
			Title:     task.Title,
			StartSlot: startSlot,
			SlotCount: needed,
			StartHour: slot.HourOfDay(),
			StartTime: slot.Start,
		})
	}

	s.metrics.Counter(observability.MetricScheduledTasks, int64(len(result.Placements)))
	s.metrics.Counter(observability.MetricUnscheduledTasks, int64(len(result.Unscheduled)))
	if len(result.Unscheduled) > 0 {
		s.logger.Debug("scheduling pass left tasks unplaced",
			"scheduled", len(result.Placements),
			"unscheduled", len(result.Unscheduled),
		)
	}

	return result
}

// firstFit finds the earliest run of needed contiguous free slots.
func firstFit(slotCount int, occupied map[int]bool, needed int) (int, bool) {
	if needed <= 0 || needed > slotCount {
		return 0, false
	}

	run := 0
	for i := 0; i < slotCount; i++ {
		if occupied[i] {
			run = 0
			continue
		}
		run++
		if run == needed {
			return i - needed + 1, true
		}
	}
	return 0, false
}
