package domain

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	scheduling "github.com/svenhofer/timegrid/internal/scheduling/domain"
)

var (
	ErrUnknownWeekday  = errors.New("unknown week start day")
	ErrUnknownTimezone = errors.New("unknown timezone")
)

// UserSettings holds per-user scheduling preferences. Missing settings
// fall back to DefaultSettings, so every user always has a usable
// work window.
type UserSettings struct {
	UserID       uuid.UUID
	WorkHours    scheduling.WorkHours
	WeekStartDay time.Weekday
	Timezone     string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// DefaultSettings returns the 07:00-23:00 Monday-start UTC defaults.
func DefaultSettings(userID uuid.UUID) *UserSettings {
	now := time.Now().UTC()
	return &UserSettings{
		UserID:       userID,
		WorkHours:    scheduling.DefaultWorkHours(),
		WeekStartDay: time.Monday,
		Timezone:     "UTC",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// SetWorkHours updates the daily work window.
func (s *UserSettings) SetWorkHours(startHour, endHour int) error {
	hours := scheduling.WorkHours{StartHour: startHour, EndHour: endHour}
	if err := hours.Validate(); err != nil {
		return err
	}
	s.WorkHours = hours
	s.UpdatedAt = time.Now().UTC()
	return nil
}

// SetWeekStartDay updates the first day of the week.
func (s *UserSettings) SetWeekStartDay(day time.Weekday) error {
	if day < time.Sunday || day > time.Saturday {
		return ErrUnknownWeekday
	}
	s.WeekStartDay = day
	s.UpdatedAt = time.Now().UTC()
	return nil
}

// SetTimezone updates the IANA timezone name after validating it loads.
func (s *UserSettings) SetTimezone(name string) error {
	if _, err := time.LoadLocation(name); err != nil {
		return ErrUnknownTimezone
	}
	s.Timezone = name
	s.UpdatedAt = time.Now().UTC()
	return nil
}

// Location resolves the timezone, falling back to UTC if the stored name
// no longer loads.
func (s *UserSettings) Location() *time.Location {
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// ParseWeekday maps a lowercase day name to a time.Weekday.
func ParseWeekday(name string) (time.Weekday, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "sunday":
		return time.Sunday, nil
	case "monday":
		return time.Monday, nil
	case "tuesday":
		return time.Tuesday, nil
	case "wednesday":
		return time.Wednesday, nil
	case "thursday":
		return time.Thursday, nil
	case "friday":
		return time.Friday, nil
	case "saturday":
		return time.Saturday, nil
	default:
		return time.Sunday, ErrUnknownWeekday
	}
}

// SettingsRepository persists user settings.
type SettingsRepository interface {
	// Get returns the user's settings, or defaults when none are stored.
	Get(ctx context.Context, userID uuid.UUID) (*UserSettings, error)

	// Save upserts the user's settings.
	Save(ctx context.Context, settings *UserSettings) error

	// ListUserIDs returns the IDs of all users with stored settings.
	ListUserIDs(ctx context.Context) ([]uuid.UUID, error)
}
