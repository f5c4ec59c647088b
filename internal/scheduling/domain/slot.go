package domain

import (
	"errors"
	"fmt"
	"time"
)

// SlotMinutes is the grid granularity.
const SlotMinutes = 15

// SlotsPerHour is the number of grid slots per hour.
const SlotsPerHour = 60 / SlotMinutes

// ErrInvalidWorkHours is returned when the configured work window is
// empty or inverted. The caller must surface it rather than render a
// partial grid.
var ErrInvalidWorkHours = errors.New("work hours end must be after start")

// WorkHours is the daily scheduling window [StartHour, EndHour) in whole
// hours of local time.
type WorkHours struct {
	StartHour int
	EndHour   int
}

// DefaultWorkHours is the 07:00-23:00 window used when a user has not
// configured their own.
func DefaultWorkHours() WorkHours {
	return WorkHours{StartHour: 7, EndHour: 23}
}

// Validate checks the window is non-empty and within a single day.
func (w WorkHours) Validate() error {
	if w.StartHour < 0 || w.EndHour > 24 {
		return ErrInvalidWorkHours
	}
	if w.EndHour <= w.StartHour {
		return ErrInvalidWorkHours
	}
	return nil
}

// Hours returns the window length in hours.
func (w WorkHours) Hours() int {
	return w.EndHour - w.StartHour
}

// SlotCount returns the number of 15-minute slots in the window.
func (w WorkHours) SlotCount() int {
	return w.Hours() * SlotsPerHour
}

// Slot is one 15-minute cell of a day grid. Slots are derived values:
// regenerated per query, never persisted.
type Slot struct {
	Index int
	Start time.Time
	Label string
}

// End returns the exclusive end of the slot interval.
func (s Slot) End() time.Time {
	return s.Start.Add(SlotMinutes * time.Minute)
}

// Range returns the slot as a half-open interval [Start, End).
func (s Slot) Range() TimeRange {
	return TimeRange{Start: s.Start, End: s.End()}
}

// HourOfDay returns the slot start as a fractional hour, e.g. 7.25 for
// 07:15.
func (s Slot) HourOfDay() float64 {
	return float64(s.Start.Hour()) + float64(s.Start.Minute())/60
}

// BuildDayGrid returns the ordered 15-minute slots covering the work
// window on the given date. The date's location is preserved so the grid
// follows the user's timezone.
func BuildDayGrid(date time.Time, hours WorkHours) ([]Slot, error) {
	if err := hours.Validate(); err != nil {
		return nil, err
	}

	day := StartOfDay(date)
	slots := make([]Slot, 0, hours.SlotCount())
	for i := 0; i < hours.SlotCount(); i++ {
		start := day.Add(time.Duration(hours.StartHour)*time.Hour + time.Duration(i*SlotMinutes)*time.Minute)
		slots = append(slots, Slot{
			Index: i,
			Start: start,
			Label: fmt.Sprintf("%02d:%02d", start.Hour(), start.Minute()),
		})
	}

	return slots, nil
}
