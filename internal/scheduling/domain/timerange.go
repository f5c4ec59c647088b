package domain

import (
	"fmt"
	"time"
)

// TimeRange is a closed interval [Start, End] with millisecond precision.
type TimeRange struct {
	Start time.Time
	End   time.Time
}

// NewTimeRange creates a time range, validating Start <= End.
func NewTimeRange(start, end time.Time) (TimeRange, error) {
	if end.Before(start) {
		return TimeRange{}, fmt.Errorf("time range end %s before start %s", end, start)
	}
	return TimeRange{Start: start, End: end}, nil
}

// Contains reports whether t falls inside the range. Both boundaries are
// inclusive: an event starting exactly at End is still in range.
func (r TimeRange) Contains(t time.Time) bool {
	ms := t.UnixMilli()
	return ms >= r.Start.UnixMilli() && ms <= r.End.UnixMilli()
}

// Overlaps reports whether the two closed intervals share any instant.
func (r TimeRange) Overlaps(other TimeRange) bool {
	return r.Start.UnixMilli() <= other.End.UnixMilli() &&
		other.Start.UnixMilli() <= r.End.UnixMilli()
}

// Duration returns the length of the range.
func (r TimeRange) Duration() time.Duration {
	return r.End.Sub(r.Start)
}

// StartOfDay returns midnight of t's day in t's location.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// EndOfDay returns the last represented millisecond of t's day.
func EndOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, int(999*time.Millisecond), t.Location())
}

// StartOfWeek returns midnight of the most recent weekStart day at or
// before t.
func StartOfWeek(t time.Time, weekStart time.Weekday) time.Time {
	day := StartOfDay(t)
	offset := (int(day.Weekday()) - int(weekStart) + 7) % 7
	return day.AddDate(0, 0, -offset)
}

// ThisWeek returns the current week range anchored to wall-clock now:
// [weekStart 00:00:00.000, weekStart+6d 23:59:59.999].
func ThisWeek(weekStart time.Weekday) TimeRange {
	return weekRange(time.Now(), weekStart)
}

// LastWeek returns the previous week range anchored to wall-clock now.
func LastWeek(weekStart time.Weekday) TimeRange {
	return weekRange(time.Now().AddDate(0, 0, -7), weekStart)
}

// Last7Days returns [today-6d 00:00:00.000, today 23:59:59.999] anchored
// to wall-clock now.
func Last7Days() TimeRange {
	now := time.Now()
	return TimeRange{
		Start: StartOfDay(now.AddDate(0, 0, -6)),
		End:   EndOfDay(now),
	}
}

// WeekRangeFor returns the week range containing t.
func WeekRangeFor(t time.Time, weekStart time.Weekday) TimeRange {
	return weekRange(t, weekStart)
}

func weekRange(t time.Time, weekStart time.Weekday) TimeRange {
	start := StartOfWeek(t, weekStart)
	return TimeRange{
		Start: start,
		End:   EndOfDay(start.AddDate(0, 0, 6)),
	}
}
