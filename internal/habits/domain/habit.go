package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	sharedDomain "github.com/svenhofer/timegrid/internal/shared/domain"
)

var (
	ErrHabitEmptyName       = errors.New("habit name cannot be empty")
	ErrHabitInvalidFreq     = errors.New("invalid habit frequency")
	ErrHabitArchived        = errors.New("habit is archived")
	ErrHabitInvalidDuration = errors.New("duration must be positive")
	ErrInvalidStartMinute   = errors.New("start minute must be within 0-1439")
	ErrInvalidWeekday       = errors.New("weekday must be within Sunday-Saturday")
)

// Frequency represents which days a habit is due.
type Frequency string

const (
	FrequencyDaily    Frequency = "daily"
	FrequencyWeekdays Frequency = "weekdays" // Mon-Fri
	FrequencyWeekends Frequency = "weekends" // Sat-Sun
)

// IsValid checks if the frequency is valid.
func (f Frequency) IsValid() bool {
	switch f {
	case FrequencyDaily, FrequencyWeekdays, FrequencyWeekends:
		return true
	default:
		return false
	}
}

// Habit is a recurring activity placed on the day grid. Start times are
// minutes of day (e.g. 450 = 07:30) and resolve by precedence:
// per-date override, then per-weekday time, then the default.
type Habit struct {
	sharedDomain.BaseAggregateRoot
	userID             uuid.UUID
	name               string
	durationMinutes    int
	defaultStartMinute *int
	weekdayStartMinute map[time.Weekday]int
	frequency          Frequency
	archived           bool
}

// NewHabit creates a new habit.
func NewHabit(userID uuid.UUID, name string, durationMinutes int, frequency Frequency) (*Habit, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrHabitEmptyName
	}
	if durationMinutes <= 0 {
		return nil, ErrHabitInvalidDuration
	}
	if !frequency.IsValid() {
		return nil, ErrHabitInvalidFreq
	}

	habit := &Habit{
		BaseAggregateRoot:  sharedDomain.NewBaseAggregateRoot(),
		userID:             userID,
		name:               name,
		durationMinutes:    durationMinutes,
		frequency:          frequency,
		weekdayStartMinute: make(map[time.Weekday]int),
	}

	habit.AddDomainEvent(NewHabitCreated(habit))

	return habit, nil
}

// Getters
func (h *Habit) UserID() uuid.UUID    { return h.userID }
func (h *Habit) Name() string         { return h.name }
func (h *Habit) DurationMinutes() int { return h.durationMinutes }
func (h *Habit) Frequency() Frequency { return h.frequency }
func (h *Habit) IsArchived() bool     { return h.archived }

// DefaultStartMinute returns the default start minute-of-day, or nil when
// the habit has no default time.
func (h *Habit) DefaultStartMinute() *int {
	if h.defaultStartMinute == nil {
		return nil
	}
	v := *h.defaultStartMinute
	return &v
}

// WeekdayStartMinutes returns a copy of the per-weekday start times.
func (h *Habit) WeekdayStartMinutes() map[time.Weekday]int {
	out := make(map[time.Weekday]int, len(h.weekdayStartMinute))
	for day, minute := range h.weekdayStartMinute {
		out[day] = minute
	}
	return out
}

// SetDefaultStartMinute sets the default start time.
func (h *Habit) SetDefaultStartMinute(minute int) error {
	if h.archived {
		return ErrHabitArchived
	}
	if minute < 0 || minute >= 24*60 {
		return ErrInvalidStartMinute
	}
	h.defaultStartMinute = &minute
	h.Touch()
	return nil
}

// SetWeekdayStartMinute sets a per-weekday start time.
func (h *Habit) SetWeekdayStartMinute(weekday time.Weekday, minute int) error {
	if h.archived {
		return ErrHabitArchived
	}
	if weekday < time.Sunday || weekday > time.Saturday {
		return ErrInvalidWeekday
	}
	if minute < 0 || minute >= 24*60 {
		return ErrInvalidStartMinute
	}
	h.weekdayStartMinute[weekday] = minute
	h.Touch()
	return nil
}

// ClearWeekdayStartMinute removes a per-weekday start time.
func (h *Habit) ClearWeekdayStartMinute(weekday time.Weekday) {
	delete(h.weekdayStartMinute, weekday)
	h.Touch()
}

// Rename updates the habit name.
func (h *Habit) Rename(name string) error {
	if h.archived {
		return ErrHabitArchived
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrHabitEmptyName
	}
	h.name = name
	h.Touch()
	return nil
}

// SetDuration updates the session duration.
func (h *Habit) SetDuration(durationMinutes int) error {
	if h.archived {
		return ErrHabitArchived
	}
	if durationMinutes <= 0 {
		return ErrHabitInvalidDuration
	}
	h.durationMinutes = durationMinutes
	h.Touch()
	return nil
}

// Archive removes the habit from future scheduling.
func (h *Habit) Archive() {
	if h.archived {
		return
	}
	h.archived = true
	h.Touch()
	h.AddDomainEvent(NewHabitArchived(h))
}

// IsDueOn reports whether the habit is due on the given date. Archived
// habits are never due.
func (h *Habit) IsDueOn(date time.Time) bool {
	if h.archived {
		return false
	}
	switch h.frequency {
	case FrequencyWeekdays:
		wd := date.Weekday()
		return wd != time.Saturday && wd != time.Sunday
	case FrequencyWeekends:
		wd := date.Weekday()
		return wd == time.Saturday || wd == time.Sunday
	default:
		return true
	}
}

// EffectiveStart resolves the habit's start minute for a date. Precedence:
// the per-date override, then the per-weekday time, then the default.
// The second return is false when no start time applies (including a
// skipped override).
func (h *Habit) EffectiveStart(date time.Time, override *Override) (int, bool) {
	if override != nil {
		if override.Skipped {
			return 0, false
		}
		if override.StartMinute != nil {
			return *override.StartMinute, true
		}
	}
	if minute, ok := h.weekdayStartMinute[date.Weekday()]; ok {
		return minute, true
	}
	if h.defaultStartMinute != nil {
		return *h.defaultStartMinute, true
	}
	return 0, false
}

// SetOverride records a per-date override on the habit and emits the
// corresponding event. Validation only; persistence of the override row
// is the repository's concern.
func (h *Habit) SetOverride(day time.Time, startMinute *int, skipped bool) (*Override, error) {
	if h.archived {
		return nil, ErrHabitArchived
	}
	if startMinute != nil && (*startMinute < 0 || *startMinute >= 24*60) {
		return nil, ErrInvalidStartMinute
	}

	override := &Override{
		HabitID:     h.ID(),
		Day:         time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location()),
		StartMinute: startMinute,
		Skipped:     skipped,
	}
	h.Touch()
	h.AddDomainEvent(NewOverrideSet(h, override))
	return override, nil
}

// Override is a per-date exception to a habit's start time. A nil
// StartMinute with Skipped false falls through to weekday/default
// resolution.
type Override struct {
	HabitID     uuid.UUID
	Day         time.Time
	StartMinute *int
	Skipped     bool
}

// RehydrateHabit recreates a habit from persisted state without
// generating events.
func RehydrateHabit(
	id, userID uuid.UUID,
	name string,
	durationMinutes int,
	defaultStartMinute *int,
	weekdayStartMinute map[time.Weekday]int,
	frequency Frequency,
	archived bool,
	createdAt, updatedAt time.Time,
) *Habit {
	if weekdayStartMinute == nil {
		weekdayStartMinute = make(map[time.Weekday]int)
	}
	baseEntity := sharedDomain.RehydrateBaseEntity(id, createdAt, updatedAt)
	return &Habit{
		BaseAggregateRoot:  sharedDomain.RehydrateBaseAggregateRoot(baseEntity),
		userID:             userID,
		name:               name,
		durationMinutes:    durationMinutes,
		defaultStartMinute: defaultStartMinute,
		weekdayStartMinute: weekdayStartMinute,
		frequency:          frequency,
		archived:           archived,
	}
}
