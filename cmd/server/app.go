package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/aulaops/aula-api/internal/config"
	"github.com/aulaops/aula-api/internal/events"
	"github.com/aulaops/aula-api/internal/platform/postgres"
	platformredis "github.com/aulaops/aula-api/internal/platform/redis"
	"github.com/aulaops/aula-api/internal/service"
	"github.com/aulaops/aula-api/internal/service/auth"
	"github.com/aulaops/aula-api/internal/service/grading"
	"github.com/aulaops/aula-api/internal/store"
	"github.com/aulaops/aula-api/internal/task"
)

// application holds all the shared application dependencies to simplify management
// and ensure proper cleanup on shutdown.
type application struct {
	// Configuration
	config *config.Config

	// Core services
	logger *slog.Logger
	db     *sql.DB
	redis  *goredis.Client

	// Stores (using interfaces for proper abstraction)
	courseStore   store.CourseStore
	activityStore store.ActivityStore
	progressStore store.ProgressStore
	gradeRepo     store.GradeRepository
	resultStore   store.ResultStore
	taskStore     task.TaskStore

	// Service interfaces
	jwtService        auth.JWTService
	gradeAggregator   grading.GradeAggregatorService
	enrollmentService service.EnrollmentService
	activityService   service.ActivityService
	completionService service.CompletionService
	reportService     service.ReportService
	progressService   service.ProgressService

	// Event system
	eventEmitter events.EventEmitter
	notifier     events.Notifier

	// Task handling
	taskRunner *task.TaskRunner
}

// newApplication creates a new application instance with all dependencies initialized.
// It accepts core dependencies like configuration, logger, and the database and
// redis connections that must be established before application initialization.
func newApplication(
	ctx context.Context,
	cfg *config.Config,
	logger *slog.Logger,
	db *sql.DB,
	redisClient *goredis.Client,
) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
		redis:  redisClient,
	}

	// Initialize JWT service
	var err error
	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	logger.Info("JWT token verification initialized")

	// Initialize stores
	app.courseStore = postgres.NewPostgresCourseStore(db, logger)
	app.activityStore = postgres.NewPostgresActivityStore(db, logger)
	app.progressStore = postgres.NewPostgresProgressStore(db, logger)
	app.gradeRepo = postgres.NewPostgresGradeRepository(db, logger)
	app.resultStore = platformredis.NewRedisResultStore(
		redisClient,
		time.Duration(cfg.Redis.ResultTTLMinutes)*time.Minute,
		logger,
	)

	// Initialize the grade aggregator before the task store so recovered
	// recompute tasks can be rehydrated against it.
	app.gradeAggregator = grading.NewGradeAggregatorService(
		db,
		app.gradeRepo,
		app.activityStore,
		app.courseStore,
		logger,
	)

	app.taskStore = postgres.NewPostgresTaskStore(
		db,
		gradeRecomputeRehydrator(app.gradeAggregator),
		logger,
	)

	// Initialize task runner
	app.taskRunner, err = setupTaskRunner(app)
	if err != nil {
		return nil, fmt.Errorf("failed to setup task runner: %w", err)
	}

	// Initialize event emitter and register the task factory handler so
	// emitted grade_recompute events become queued background tasks.
	app.eventEmitter = events.NewInMemoryEventEmitter(logger)
	taskFactory := task.NewGradeRecomputeTaskFactory(app.gradeAggregator, logger)
	taskFactoryHandler := task.NewTaskFactoryEventHandler(taskFactory, app.taskRunner, logger)

	if emitter, ok := app.eventEmitter.(*events.InMemoryEventEmitter); ok {
		emitter.RegisterHandler(taskFactoryHandler)
	} else {
		return nil, fmt.Errorf("unexpected event emitter type, cannot register task handler")
	}

	// Initialize notifier
	app.notifier = events.NewLoggingNotifier(logger)

	// Initialize enrollment service
	app.enrollmentService, err = service.NewEnrollmentService(
		app.courseStore,
		app.progressStore,
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create enrollment service: %w", err)
	}

	// Initialize activity authoring service
	app.activityService, err = service.NewActivityService(db, app.activityStore, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create activity service: %w", err)
	}

	// Initialize completion service
	app.completionService, err = service.NewCompletionService(
		app.activityStore,
		app.progressStore,
		app.resultStore,
		app.gradeAggregator,
		app.eventEmitter,
		app.notifier,
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create completion service: %w", err)
	}

	// Initialize report service
	app.reportService, err = service.NewReportService(
		app.courseStore,
		app.activityStore,
		app.progressStore,
		app.gradeRepo,
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create report service: %w", err)
	}

	// Initialize lesson progress service
	app.progressService, err = service.NewProgressService(
		app.courseStore,
		app.progressStore,
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create progress service: %w", err)
	}

	// Recover tasks that were queued or in flight when the previous
	// process stopped. Failure to recover is logged but not fatal.
	if err := app.taskRunner.Recover(); err != nil {
		logger.Warn("failed to recover pending tasks", "error", err)
	}

	logger.Info("Application initialized successfully")
	return app, nil
}

// gradeRecomputeRehydrator builds execution functions for grade recompute
// tasks loaded back from the tasks table after a restart.
func gradeRecomputeRehydrator(
	aggregator grading.GradeAggregatorService,
) postgres.TaskRehydrator {
	return func(taskType string, payload []byte) (func(ctx context.Context) error, error) {
		if taskType != task.TaskTypeGradeRecompute {
			return nil, fmt.Errorf("unknown task type: %s", taskType)
		}

		var p task.GradeRecomputePayload
		if err := json.Unmarshal(payload, &p); err != nil {
			return nil, fmt.Errorf("failed to unmarshal grade recompute payload: %w", err)
		}

		return func(ctx context.Context) error {
			return aggregator.RecomputeForParameter(ctx, p.UserID, p.ParameterID)
		}, nil
	}
}

// Run starts the application server, handling lifecycle and cleanup.
// It returns an error if the server fails to start or encounters problems.
func (app *application) Run(ctx context.Context) error {
	// Set up router using the application dependencies
	router := app.setupRouter()

	// Start the HTTP server
	err := app.startHTTPServer(ctx, router)
	if err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// setupTaskRunner initializes and starts the background task processor.
// It uses the application struct to access required dependencies.
func setupTaskRunner(app *application) (*task.TaskRunner, error) {
	cfg := task.DefaultTaskRunnerConfig()
	if app.config.Task.QueueSize > 0 {
		cfg.QueueSize = app.config.Task.QueueSize
	}
	if app.config.Task.WorkerCount > 0 {
		cfg.WorkerCount = app.config.Task.WorkerCount
	}

	taskRunner := task.NewTaskRunner(app.taskStore, cfg, app.logger)

	// Start the task runner
	if err := taskRunner.Start(); err != nil {
		return nil, fmt.Errorf("failed to start task runner: %w", err)
	}

	return taskRunner, nil
}

// cleanup handles graceful shutdown of application resources.
func (app *application) cleanup() {
	// Stop task runner
	if app.taskRunner != nil {
		app.taskRunner.Stop()
	}

	// Close redis connection
	if app.redis != nil {
		if err := app.redis.Close(); err != nil {
			app.logger.Error("Error closing redis client", "error", err)
		}
	}

	// Close database connection
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("Error closing database connection", "error", err)
		}
	}

	app.logger.Info("Application shutdown completed")
}
