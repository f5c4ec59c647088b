package cli

import (
	"context"

	"github.com/google/uuid"

	habitCommands "github.com/svenhofer/timegrid/internal/habits/application/commands"
	insightCommands "github.com/svenhofer/timegrid/internal/insights/application/commands"
	insightQueries "github.com/svenhofer/timegrid/internal/insights/application/queries"
	meetingCommands "github.com/svenhofer/timegrid/internal/meetings/application/commands"
	taskCommands "github.com/svenhofer/timegrid/internal/productivity/application/commands"
	scheduleCommands "github.com/svenhofer/timegrid/internal/scheduling/application/commands"
	scheduleQueries "github.com/svenhofer/timegrid/internal/scheduling/application/queries"
	"github.com/svenhofer/timegrid/internal/shared/infrastructure/cache"
)

// App holds the CLI application dependencies.
type App struct {
	// Schedule
	ScheduleDayHandler    *scheduleCommands.ScheduleDayHandler
	GetDayTimelineHandler *scheduleQueries.GetDayTimelineHandler
	FindFreeSlotsHandler  *scheduleQueries.FindFreeSlotsHandler

	// Habits
	CreateHabitHandler *habitCommands.CreateHabitHandler
	SetOverrideHandler *habitCommands.SetOverrideHandler

	// Tasks
	CreateTaskHandler      *taskCommands.CreateTaskHandler
	SetTaskDurationHandler *taskCommands.SetTaskDurationHandler
	CompleteTaskHandler    *taskCommands.CompleteTaskHandler

	// Meetings
	CreateMeetingHandler *meetingCommands.CreateMeetingHandler

	// Insights
	CreateCategoryHandler       *insightCommands.CreateCategoryHandler
	SetBufferHandler            *insightCommands.SetBufferHandler
	StartSessionHandler         *insightCommands.StartSessionHandler
	StopSessionHandler          *insightCommands.StopSessionHandler
	GetBufferUtilizationHandler *insightQueries.GetBufferUtilizationHandler
	GetCategoryHoursHandler     *insightQueries.GetCategoryHoursHandler

	// Invalidator flushes stale cache entries after a write command.
	Invalidator *cache.Invalidator

	// Current user (configured per environment)
	CurrentUserID uuid.UUID
}

// SetCurrentUserID updates the current user ID.
func (a *App) SetCurrentUserID(id uuid.UUID) {
	a.CurrentUserID = id
}

// Flush applies a command's invalidation set so the next read
// recomputes. Nil or empty sets are a no-op.
func (a *App) Flush(ctx context.Context, set *cache.InvalidationSet) {
	if a.Invalidator == nil {
		return
	}
	a.Invalidator.Apply(ctx, set)
}

// app is the global CLI application instance
var app *App

// SetApp sets the global CLI application instance.
func SetApp(a *App) {
	app = a
}

// GetApp returns the global CLI application instance.
func GetApp() *App {
	return app
}
