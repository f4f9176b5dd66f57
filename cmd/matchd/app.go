package main

import (
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/lexmatch/placement-api/internal/config"
	"github.com/lexmatch/placement-api/internal/domain/matching"
	"github.com/lexmatch/placement-api/internal/events"
	"github.com/lexmatch/placement-api/internal/platform/postgres"
	"github.com/lexmatch/placement-api/internal/service"
	"github.com/lexmatch/placement-api/internal/store"
	"github.com/lexmatch/placement-api/internal/task"
)

// application holds all the shared application dependencies to simplify
// management and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	// Stores (using interfaces for proper abstraction)
	studentStore store.StudentStore
	orgStore     store.OrganizationStore
	matchStore   store.MatchStore
	roundStore   store.MatchingRoundStore
	taskStore    *postgres.PostgresTaskStore

	// Services
	matchingService service.MatchingService

	// Event system
	eventEmitter events.EventEmitter

	// Task handling
	taskRunner        *task.TaskRunner
	taskRunnerStarted bool
}

// newApplication creates a new application instance with all dependencies
// initialized. It accepts core dependencies that must be established before
// application initialization.
func newApplication(cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	// Initialize stores
	app.studentStore = postgres.NewPostgresStudentStore(db, logger)
	app.orgStore = postgres.NewPostgresOrganizationStore(db, logger)
	app.matchStore = postgres.NewPostgresMatchStore(db, logger)
	app.roundStore = postgres.NewPostgresMatchingRoundStore(db, logger)
	app.taskStore = postgres.NewPostgresTaskStore(db)

	// Initialize the matching engine with the configured weights
	weights := matching.NewWeights(matching.WeightsConfig{
		Ranking:   cfg.Matching.RankingWeight,
		Grades:    cfg.Matching.GradesWeight,
		Statement: cfg.Matching.StatementWeight,
		Location:  cfg.Matching.LocationWeight,
		WorkMode:  cfg.Matching.WorkModeWeight,
	})
	engine := matching.NewEngine(weights)

	// Initialize event emitter
	app.eventEmitter = events.NewInMemoryEventEmitter(logger)

	// Initialize matching service
	var err error
	app.matchingService, err = service.NewMatchingService(
		db,
		app.studentStore,
		app.orgStore,
		app.matchStore,
		app.roundStore,
		engine,
		app.eventEmitter,
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create matching service: %w", err)
	}

	// Initialize task runner
	app.taskRunner = task.NewTaskRunner(app.taskStore, task.TaskRunnerConfig{
		WorkerCount:            cfg.Task.WorkerCount,
		QueueSize:              cfg.Task.QueueSize,
		StuckTaskAge:           time.Duration(cfg.Task.StuckTaskAgeMinutes) * time.Minute,
		StuckTaskCheckInterval: time.Duration(cfg.Task.StuckTaskCheckMinutes) * time.Minute,
	}, logger)

	// Create task factory and register it for crash recovery, so persisted
	// matching run tasks can be rebuilt into executable form.
	taskFactory := task.NewMatchingRunTaskFactory(app.matchingService, logger)
	app.taskStore.RegisterReconstructor(task.TaskTypeMatchingRun, taskFactory)

	// Create and register the task factory event handler
	taskFactoryHandler := task.NewTaskFactoryEventHandler(taskFactory, app.taskRunner, logger)
	if emitter, ok := app.eventEmitter.(*events.InMemoryEventEmitter); ok {
		emitter.RegisterHandler(taskFactoryHandler)
	} else {
		return nil, fmt.Errorf("unexpected event emitter type, cannot register task handler")
	}

	logger.Info("application initialized successfully")
	return app, nil
}

// startTaskRunner starts the background task processor, recovering any
// unfinished tasks from previous runs.
func (app *application) startTaskRunner() error {
	if err := app.taskRunner.Start(); err != nil {
		return fmt.Errorf("failed to start task runner: %w", err)
	}
	app.taskRunnerStarted = true
	return nil
}

// cleanup handles graceful shutdown of application resources. The database
// connection is closed by the caller that opened it.
func (app *application) cleanup() {
	if app.taskRunner != nil && app.taskRunnerStarted {
		app.taskRunner.Stop()
	}

	app.logger.Info("application shutdown completed")
}
