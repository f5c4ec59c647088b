package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"

	"github.com/svenhofer/timegrid/adapter/cli"
	"github.com/svenhofer/timegrid/adapter/cli/buffer"
	"github.com/svenhofer/timegrid/adapter/cli/category"
	"github.com/svenhofer/timegrid/adapter/cli/habit"
	"github.com/svenhofer/timegrid/adapter/cli/meeting"
	"github.com/svenhofer/timegrid/adapter/cli/schedule"
	"github.com/svenhofer/timegrid/adapter/cli/session"
	"github.com/svenhofer/timegrid/adapter/cli/task"
	"github.com/svenhofer/timegrid/internal/app"
	"github.com/svenhofer/timegrid/pkg/config"
	"github.com/svenhofer/timegrid/pkg/observability"
)

func main() {
	logger := observability.LoggerFromEnv()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		cancel()
	}()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cli.SetLogger(logger)

	container, err := buildContainer(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize container", "error", err)
		os.Exit(1)
	}
	defer container.Close()

	// The processor drains pending outbox messages written by commands
	// run from this process. The worker handles the steady state.
	if !cfg.LocalMode && cfg.OutboxProcessorEnabled {
		go container.OutboxProcessor.Start(ctx)
	}

	userID, err := uuid.Parse(cfg.UserID)
	if err != nil {
		logger.Error("invalid TIMEGRID_USER_ID", "error", err)
		os.Exit(1)
	}

	cliApp := &cli.App{
		ScheduleDayHandler:          container.ScheduleDayHandler,
		GetDayTimelineHandler:       container.GetDayTimelineHandler,
		FindFreeSlotsHandler:        container.FindFreeSlotsHandler,
		CreateHabitHandler:          container.CreateHabitHandler,
		SetOverrideHandler:          container.SetOverrideHandler,
		CreateTaskHandler:           container.CreateTaskHandler,
		SetTaskDurationHandler:      container.SetTaskDurationHandler,
		CompleteTaskHandler:         container.CompleteTaskHandler,
		CreateMeetingHandler:        container.CreateMeetingHandler,
		CreateCategoryHandler:       container.CreateCategoryHandler,
		SetBufferHandler:            container.SetBufferHandler,
		StartSessionHandler:         container.StartSessionHandler,
		StopSessionHandler:          container.StopSessionHandler,
		GetBufferUtilizationHandler: container.GetBufferUtilizationHandler,
		GetCategoryHoursHandler:     container.GetCategoryHoursHandler,
		Invalidator:                 container.Invalidator,
	}
	cliApp.SetCurrentUserID(userID)
	cli.SetApp(cliApp)

	cli.AddCommand(schedule.Cmd)
	cli.AddCommand(task.Cmd)
	cli.AddCommand(habit.Cmd)
	cli.AddCommand(meeting.Cmd)
	cli.AddCommand(category.Cmd)
	cli.AddCommand(buffer.Cmd)
	cli.AddCommand(session.Cmd)

	cli.Execute()

	// Local mode drains the outbox before exit; the in-process bus
	// dispatches to subscribers synchronously.
	if cfg.LocalMode {
		if err := container.OutboxProcessor.ProcessOnce(ctx); err != nil {
			logger.Warn("outbox drain failed", "error", err)
		}
	}
}

func buildContainer(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*app.Container, error) {
	if cfg.LocalMode {
		return app.NewLocalContainer(ctx, cfg, logger)
	}
	return app.NewContainer(ctx, cfg, logger)
}
