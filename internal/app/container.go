// Package app wires the application's dependencies for the CLI and the
// worker. Two modes exist: server mode on PostgreSQL with Redis and
// RabbitMQ, and local mode on embedded SQLite with everything
// in-process.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	habitCommands "github.com/svenhofer/timegrid/internal/habits/application/commands"
	habitsDomain "github.com/svenhofer/timegrid/internal/habits/domain"
	habitPersistence "github.com/svenhofer/timegrid/internal/habits/infrastructure/persistence"
	identityDomain "github.com/svenhofer/timegrid/internal/identity/domain"
	identityPersistence "github.com/svenhofer/timegrid/internal/identity/infrastructure/persistence"
	insightCommands "github.com/svenhofer/timegrid/internal/insights/application/commands"
	insightQueries "github.com/svenhofer/timegrid/internal/insights/application/queries"
	insightServices "github.com/svenhofer/timegrid/internal/insights/application/services"
	insightsDomain "github.com/svenhofer/timegrid/internal/insights/domain"
	insightsPersistence "github.com/svenhofer/timegrid/internal/insights/infrastructure/persistence"
	meetingCommands "github.com/svenhofer/timegrid/internal/meetings/application/commands"
	meetingsDomain "github.com/svenhofer/timegrid/internal/meetings/domain"
	meetingPersistence "github.com/svenhofer/timegrid/internal/meetings/infrastructure/persistence"
	taskCommands "github.com/svenhofer/timegrid/internal/productivity/application/commands"
	"github.com/svenhofer/timegrid/internal/productivity/domain/task"
	taskPersistence "github.com/svenhofer/timegrid/internal/productivity/infrastructure/persistence"
	scheduleCommands "github.com/svenhofer/timegrid/internal/scheduling/application/commands"
	scheduleQueries "github.com/svenhofer/timegrid/internal/scheduling/application/queries"
	scheduleServices "github.com/svenhofer/timegrid/internal/scheduling/application/services"
	scheduleSubs "github.com/svenhofer/timegrid/internal/scheduling/application/subscribers"
	sharedApplication "github.com/svenhofer/timegrid/internal/shared/application"
	"github.com/svenhofer/timegrid/internal/shared/infrastructure/cache"
	"github.com/svenhofer/timegrid/internal/shared/infrastructure/database/postgres"
	"github.com/svenhofer/timegrid/internal/shared/infrastructure/database/sqlite"
	"github.com/svenhofer/timegrid/internal/shared/infrastructure/eventbus"
	"github.com/svenhofer/timegrid/internal/shared/infrastructure/migrations"
	"github.com/svenhofer/timegrid/internal/shared/infrastructure/outbox"
	sharedPersistence "github.com/svenhofer/timegrid/internal/shared/infrastructure/persistence"
	"github.com/svenhofer/timegrid/pkg/config"
	"github.com/svenhofer/timegrid/pkg/observability"
)

// Container holds all application dependencies.
type Container struct {
	Config  *config.Config
	Logger  *slog.Logger
	Metrics observability.Metrics

	// Connections
	DB          *pgxpool.Pool
	SQLiteDB    *sql.DB
	RedisClient *redis.Client

	// Cache
	Cache       cache.Cache
	Invalidator *cache.Invalidator

	// Repositories
	SettingsRepo identityDomain.SettingsRepository
	HabitRepo    habitsDomain.Repository
	MeetingRepo  meetingsDomain.Repository
	TaskRepo     task.Repository
	CategoryRepo insightsDomain.CategoryRepository
	SessionRepo  insightsDomain.SessionRepository
	SnapshotRepo insightsDomain.SnapshotRepository
	OutboxRepo   outbox.Repository

	// Unit of Work
	UnitOfWork sharedApplication.UnitOfWork

	// Event plumbing
	EventPublisher    eventbus.Publisher
	InProcessEventBus *eventbus.InProcessEventBus
	OutboxProcessor   *outbox.Processor

	// Scheduling services
	FixedItemCollector *scheduleServices.FixedItemCollector
	AutoScheduler      *scheduleServices.AutoScheduler

	// Command handlers
	ScheduleDayHandler     *scheduleCommands.ScheduleDayHandler
	CreateHabitHandler     *habitCommands.CreateHabitHandler
	SetOverrideHandler     *habitCommands.SetOverrideHandler
	CreateTaskHandler      *taskCommands.CreateTaskHandler
	SetTaskDurationHandler *taskCommands.SetTaskDurationHandler
	CompleteTaskHandler    *taskCommands.CompleteTaskHandler
	CreateMeetingHandler   *meetingCommands.CreateMeetingHandler
	CreateCategoryHandler  *insightCommands.CreateCategoryHandler
	SetBufferHandler       *insightCommands.SetBufferHandler
	StartSessionHandler    *insightCommands.StartSessionHandler
	StopSessionHandler     *insightCommands.StopSessionHandler

	// Query handlers
	GetDayTimelineHandler       *scheduleQueries.GetDayTimelineHandler
	FindFreeSlotsHandler        *scheduleQueries.FindFreeSlotsHandler
	GetBufferUtilizationHandler *insightQueries.GetBufferUtilizationHandler
	GetCategoryHoursHandler     *insightQueries.GetCategoryHoursHandler

	// Worker services
	Snapshotter                 *insightServices.Snapshotter
	CacheInvalidationSubscriber *scheduleSubs.CacheInvalidationSubscriber
}

// NewContainer creates and wires all dependencies for server mode:
// PostgreSQL storage, Redis cache, RabbitMQ event publishing.
func NewContainer(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Container, error) {
	c := &Container{
		Config:  cfg,
		Logger:  logger,
		Metrics: observability.NewInMemoryMetrics(),
	}

	pool, err := postgres.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("connecting to postgres: %w", err)
	}
	c.DB = pool
	logger.Info("connected to database")

	// Redis is optional; without it every read recomputes, which is
	// always correct.
	if cfg.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			pool.Close()
			return nil, fmt.Errorf("parsing redis URL: %w", err)
		}
		client := redis.NewClient(opt)
		if err := client.Ping(ctx).Err(); err != nil {
			logger.Warn("redis not available, caching disabled", "error", err)
			_ = client.Close()
		} else {
			c.RedisClient = client
			c.Cache = cache.NewRedisCache(client, cache.DefaultRedisConfig(), logger)
			logger.Info("connected to redis")
		}
	}
	if c.Cache == nil {
		c.Cache = cache.NewMemoryCache()
	}

	c.SettingsRepo = identityPersistence.NewPostgresSettingsRepository(pool)
	c.HabitRepo = habitPersistence.NewPostgresRepository(pool)
	c.MeetingRepo = meetingPersistence.NewPostgresRepository(pool)
	c.TaskRepo = taskPersistence.NewPostgresTaskRepository(pool)

	categoryRepo := insightsPersistence.NewPostgresCategoryRepository(pool)
	c.CategoryRepo = categoryRepo
	c.SessionRepo = insightsPersistence.NewPostgresSessionRepository(pool)
	c.SnapshotRepo = insightsPersistence.NewPostgresSnapshotRepository(pool)

	c.OutboxRepo = outbox.NewPostgresRepository(pool)
	c.UnitOfWork = sharedPersistence.NewPostgresUnitOfWork(pool)

	publisher, err := eventbus.NewRabbitMQPublisher(cfg.RabbitMQURL, logger)
	if err != nil {
		if cfg.IsDevelopment() {
			logger.Warn("rabbitmq not available, using noop publisher")
			c.EventPublisher = eventbus.NewNoopPublisher(logger)
		} else {
			pool.Close()
			return nil, fmt.Errorf("connecting to rabbitmq: %w", err)
		}
	} else {
		c.EventPublisher = publisher
	}

	c.OutboxProcessor = outbox.NewProcessor(c.OutboxRepo, c.EventPublisher, outbox.ProcessorConfig{
		PollInterval: cfg.OutboxPollInterval,
		BatchSize:    cfg.OutboxBatchSize,
		MaxRetries:   cfg.OutboxMaxRetries,
	}, logger)

	c.wireHandlers()

	logger.Info("container initialized", "driver", "postgres")
	return c, nil
}

// NewLocalContainer creates a container for local mode with SQLite.
// Zero-config: no PostgreSQL, Redis, or RabbitMQ required. Events flow
// through an in-process bus so cache invalidation still happens.
func NewLocalContainer(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Container, error) {
	c := &Container{
		Config:  cfg,
		Logger:  logger,
		Metrics: observability.NewInMemoryMetrics(),
	}

	db, err := sqlite.Open(ctx, cfg.SQLitePath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite: %w", err)
	}
	if err := migrations.RunSQLiteMigrations(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("running sqlite migrations: %w", err)
	}
	c.SQLiteDB = db

	c.Cache = cache.NewMemoryCache()

	c.SettingsRepo = identityPersistence.NewSQLiteSettingsRepository(db)
	c.HabitRepo = habitPersistence.NewSQLiteRepository(db)
	c.MeetingRepo = meetingPersistence.NewSQLiteRepository(db)
	c.TaskRepo = taskPersistence.NewSQLiteTaskRepository(db)

	c.CategoryRepo = insightsPersistence.NewSQLiteCategoryRepository(db)
	c.SessionRepo = insightsPersistence.NewSQLiteSessionRepository(db)
	c.SnapshotRepo = insightsPersistence.NewSQLiteSnapshotRepository(db)

	c.OutboxRepo = outbox.NewSQLiteRepository(db)
	c.UnitOfWork = sharedPersistence.NewSQLiteUnitOfWork(db)

	// Local mode has no broker: the outbox drains into an in-process
	// bus that dispatches to subscribers synchronously.
	c.InProcessEventBus = eventbus.NewInProcessEventBus(logger)
	c.EventPublisher = c.InProcessEventBus

	c.wireHandlers()

	c.InProcessEventBus.RegisterConsumer(c.CacheInvalidationSubscriber)
	c.OutboxProcessor = outbox.NewProcessor(c.OutboxRepo, c.EventPublisher, outbox.ProcessorConfig{
		PollInterval: cfg.OutboxPollInterval,
		BatchSize:    cfg.OutboxBatchSize,
		MaxRetries:   cfg.OutboxMaxRetries,
	}, logger)

	logger.Info("local mode container initialized",
		"database", cfg.SQLitePath,
		"driver", "sqlite",
	)
	return c, nil
}

// wireHandlers builds the services and handlers shared by both modes.
// Repositories, cache, outbox, and unit of work must be set first.
func (c *Container) wireHandlers() {
	logger := c.Logger
	metrics := c.Metrics

	c.Invalidator = cache.NewInvalidator(c.Cache, logger, metrics)

	c.FixedItemCollector = scheduleServices.NewFixedItemCollector(
		c.MeetingRepo, c.HabitRepo, c.SessionRepo, logger,
	)
	c.AutoScheduler = scheduleServices.NewAutoScheduler(logger, metrics)

	c.ScheduleDayHandler = scheduleCommands.NewScheduleDayHandler(
		c.SettingsRepo, c.TaskRepo, c.FixedItemCollector, c.AutoScheduler,
		c.OutboxRepo, c.UnitOfWork, logger, metrics,
	)

	c.CreateHabitHandler = habitCommands.NewCreateHabitHandler(c.HabitRepo, c.OutboxRepo, c.UnitOfWork)
	c.SetOverrideHandler = habitCommands.NewSetOverrideHandler(c.HabitRepo, c.OutboxRepo, c.UnitOfWork)

	c.CreateTaskHandler = taskCommands.NewCreateTaskHandler(c.TaskRepo, c.OutboxRepo, c.UnitOfWork)
	c.SetTaskDurationHandler = taskCommands.NewSetTaskDurationHandler(c.TaskRepo, c.OutboxRepo, c.UnitOfWork)
	c.CompleteTaskHandler = taskCommands.NewCompleteTaskHandler(c.TaskRepo, c.OutboxRepo, c.UnitOfWork)

	c.CreateMeetingHandler = meetingCommands.NewCreateMeetingHandler(
		c.MeetingRepo, c.SettingsRepo, c.OutboxRepo, c.UnitOfWork,
	)

	c.CreateCategoryHandler = insightCommands.NewCreateCategoryHandler(c.CategoryRepo, c.UnitOfWork)
	c.SetBufferHandler = insightCommands.NewSetBufferHandler(c.CategoryRepo, c.SettingsRepo, c.UnitOfWork)
	c.StartSessionHandler = insightCommands.NewStartSessionHandler(c.SessionRepo, c.UnitOfWork)
	c.StopSessionHandler = insightCommands.NewStopSessionHandler(c.SessionRepo, c.SettingsRepo, c.UnitOfWork)

	c.GetDayTimelineHandler = scheduleQueries.NewGetDayTimelineHandler(
		c.SettingsRepo, c.TaskRepo, c.FixedItemCollector, c.Cache, logger, metrics,
	)
	c.FindFreeSlotsHandler = scheduleQueries.NewFindFreeSlotsHandler(c.GetDayTimelineHandler)

	c.GetBufferUtilizationHandler = insightQueries.NewGetBufferUtilizationHandler(
		c.SettingsRepo, c.CategoryRepo, c.MeetingRepo, c.SessionRepo, c.Cache, logger, metrics,
	)
	c.GetCategoryHoursHandler = insightQueries.NewGetCategoryHoursHandler(
		c.CategoryRepo, c.MeetingRepo, c.Cache, logger, metrics,
	)

	c.Snapshotter = insightServices.NewSnapshotter(
		c.SettingsRepo, c.GetBufferUtilizationHandler, c.SnapshotRepo, logger, metrics,
	)
	c.CacheInvalidationSubscriber = scheduleSubs.NewCacheInvalidationSubscriber(
		c.Invalidator, c.SettingsRepo, logger,
	)
}

// Close cleans up all resources.
func (c *Container) Close() {
	if c.OutboxProcessor != nil {
		c.OutboxProcessor.Stop()
	}

	if c.EventPublisher != nil {
		if err := c.EventPublisher.Close(); err != nil {
			c.Logger.Warn("error closing event publisher", "error", err)
		}
	}

	if c.Cache != nil {
		if err := c.Cache.Close(); err != nil {
			c.Logger.Warn("error closing cache", "error", err)
		}
	}

	if c.RedisClient != nil {
		// Cache.Close already closed the client when Redis is the backend.
		c.RedisClient = nil
	}

	if c.DB != nil {
		c.DB.Close()
		c.Logger.Info("postgres connection closed")
	}

	if c.SQLiteDB != nil {
		if err := c.SQLiteDB.Close(); err != nil {
			c.Logger.Warn("error closing sqlite", "error", err)
		}
	}
}
