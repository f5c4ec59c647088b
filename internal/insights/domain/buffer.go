package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	sharedDomain "github.com/svenhofer/timegrid/internal/shared/domain"
)

var (
	ErrCategoryEmptyName  = errors.New("category name cannot be empty")
	ErrInvalidWeeklyHours = errors.New("weekly buffer hours must be positive")
)

// Category labels meetings and sessions for utilization accounting.
type Category struct {
	sharedDomain.BaseEntity
	userID uuid.UUID
	name   string
}

// NewCategory creates a category.
func NewCategory(userID uuid.UUID, name string) (*Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrCategoryEmptyName
	}
	return &Category{
		BaseEntity: sharedDomain.NewBaseEntity(),
		userID:     userID,
		name:       name,
	}, nil
}

func (c *Category) UserID() uuid.UUID { return c.userID }
func (c *Category) Name() string      { return c.name }

// RehydrateCategory recreates a category from persisted state.
func RehydrateCategory(id, userID uuid.UUID, name string, createdAt, updatedAt time.Time) *Category {
	return &Category{
		BaseEntity: sharedDomain.RehydrateBaseEntity(id, createdAt, updatedAt),
		userID:     userID,
		name:       name,
	}
}

// CategoryBuffer is a user's weekly hour budget for one category.
type CategoryBuffer struct {
	UserID      uuid.UUID
	CategoryID  uuid.UUID
	WeeklyHours float64
}

// NewCategoryBuffer creates a buffer, validating the budget.
func NewCategoryBuffer(userID, categoryID uuid.UUID, weeklyHours float64) (CategoryBuffer, error) {
	if weeklyHours <= 0 {
		return CategoryBuffer{}, ErrInvalidWeeklyHours
	}
	return CategoryBuffer{UserID: userID, CategoryID: categoryID, WeeklyHours: weeklyHours}, nil
}

// BufferUtilization is the weekly spend against one category buffer.
// UtilizationPercent is unclamped; DisplayPercent caps it for rendering.
type BufferUtilization struct {
	CategoryID         uuid.UUID
	CategoryName       string
	WeeklyHours        float64
	HoursSpent         float64
	HoursRemaining     float64
	UtilizationPercent float64
}

// ComputeBufferUtilization derives the utilization figures for a buffer
// given the hours spent in its category this week. Remaining never goes
// negative; percent does exceed 100 on overspend.
func ComputeBufferUtilization(buffer CategoryBuffer, categoryName string, hoursSpent float64) BufferUtilization {
	remaining := buffer.WeeklyHours - hoursSpent
	if remaining < 0 {
		remaining = 0
	}

	var percent float64
	if buffer.WeeklyHours > 0 {
		percent = 100 * hoursSpent / buffer.WeeklyHours
	}

	return BufferUtilization{
		CategoryID:         buffer.CategoryID,
		CategoryName:       categoryName,
		WeeklyHours:        buffer.WeeklyHours,
		HoursSpent:         hoursSpent,
		HoursRemaining:     remaining,
		UtilizationPercent: percent,
	}
}

// DisplayPercent returns the utilization clamped to [0, 100] for
// progress-bar style rendering.
func (u BufferUtilization) DisplayPercent() float64 {
	if u.UtilizationPercent < 0 {
		return 0
	}
	if u.UtilizationPercent > 100 {
		return 100
	}
	return u.UtilizationPercent
}

// OverBudget reports whether spend exceeded the weekly budget.
func (u BufferUtilization) OverBudget() bool {
	return u.UtilizationPercent > 100
}
