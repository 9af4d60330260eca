package task

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// ErrQueueFull is returned by Submit when the in-memory queue has no room.
// The task is already persisted at that point and will be picked up by the
// next recovery pass.
var ErrQueueFull = errors.New("task queue is full")

// TaskRunnerConfig holds configuration for the task runner
type TaskRunnerConfig struct {
	// WorkerCount determines how many concurrent workers process tasks
	WorkerCount int

	// QueueSize determines the buffer size for the in-memory task queue
	QueueSize int

	// StuckTaskAge is how long a task may sit in processing state before
	// the sweeper resets it to pending and requeues it
	StuckTaskAge time.Duration

	// StuckTaskCheckInterval is how often the sweeper runs.
	// If zero, defaults to 5 minutes
	StuckTaskCheckInterval time.Duration
}

// DefaultTaskRunnerConfig returns a TaskRunnerConfig with reasonable defaults
func DefaultTaskRunnerConfig() TaskRunnerConfig {
	return TaskRunnerConfig{
		WorkerCount:            2,
		QueueSize:              100,
		StuckTaskAge:           30 * time.Minute,
		StuckTaskCheckInterval: 5 * time.Minute,
	}
}

// TaskRunner persists submitted tasks and processes them on a small worker
// pool. Grade recomputes are the only task type today; the runner itself is
// type-agnostic.
type TaskRunner struct {
	store  TaskStore
	queue  chan Task
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	config TaskRunnerConfig
	logger *slog.Logger
}

// NewTaskRunner creates a new TaskRunner
func NewTaskRunner(store TaskStore, config TaskRunnerConfig, logger *slog.Logger) *TaskRunner {
	if config.StuckTaskCheckInterval == 0 {
		config.StuckTaskCheckInterval = 5 * time.Minute
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &TaskRunner{
		store:  store,
		queue:  make(chan Task, config.QueueSize),
		ctx:    ctx,
		cancel: cancel,
		config: config,
		logger: logger.With(slog.String("component", "task_runner")),
	}
}

// Submit persists the task and enqueues it for processing. The persist
// happens first so a full queue or a crash never loses the task.
func (r *TaskRunner) Submit(ctx context.Context, t Task) error {
	if err := r.store.SaveTask(ctx, t); err != nil {
		return fmt.Errorf("failed to save task: %w", err)
	}

	if !r.enqueue(t) {
		return ErrQueueFull
	}
	return nil
}

// Start launches the worker pool and the stuck-task sweeper. Recovery of
// tasks persisted by a previous process is the caller's responsibility via
// Recover, so startup can decide whether a recovery failure is fatal.
func (r *TaskRunner) Start() error {
	for i := 0; i < r.config.WorkerCount; i++ {
		r.wg.Add(1)
		go r.worker(i)
	}

	r.wg.Add(1)
	go r.sweepStuckTasks()

	return nil
}

// Stop gracefully shuts down the task runner
func (r *TaskRunner) Stop() {
	r.cancel()
	r.wg.Wait()
	close(r.queue)
}

// Recover requeues tasks left pending by a previous run and resets tasks
// that were mid-processing when the process stopped.
func (r *TaskRunner) Recover() error {
	ctx := context.Background()

	pending, err := r.store.GetPendingTasks(ctx)
	if err != nil {
		return fmt.Errorf("failed to get pending tasks: %w", err)
	}

	// Zero age: every processing row counts as interrupted.
	interrupted, err := r.store.GetProcessingTasks(ctx, 0)
	if err != nil {
		return fmt.Errorf("failed to get processing tasks: %w", err)
	}

	r.logger.Info("recovering unfinished tasks",
		"pending_count", len(pending),
		"interrupted_count", len(interrupted))

	for _, t := range pending {
		if !r.enqueue(t) {
			r.logger.Error("failed to requeue pending task, queue is full",
				"task_id", t.ID(),
				"task_type", t.Type())
		}
	}

	for _, t := range interrupted {
		if err := r.store.UpdateTaskStatus(ctx, t.ID(), TaskStatusPending, "Reset after recovery"); err != nil {
			r.logger.Error("failed to reset interrupted task",
				"task_id", t.ID(),
				"task_type", t.Type(),
				"error", err)
			continue
		}
		if !r.enqueue(t) {
			r.logger.Error("failed to requeue interrupted task, queue is full",
				"task_id", t.ID(),
				"task_type", t.Type())
		}
	}

	return nil
}

// enqueue attempts a non-blocking send. A full queue is not fatal: the task
// stays pending in the store and the sweeper or the next recovery gets it.
func (r *TaskRunner) enqueue(t Task) bool {
	select {
	case r.queue <- t:
		return true
	default:
		return false
	}
}

func (r *TaskRunner) worker(id int) {
	defer r.wg.Done()

	r.logger.Debug("starting worker", "worker_id", id)

	for {
		select {
		case <-r.ctx.Done():
			r.logger.Debug("stopping worker", "worker_id", id)
			return

		case t, ok := <-r.queue:
			if !ok {
				return
			}
			r.processTask(t, id)
		}
	}
}

// processTask runs one task and records the outcome. It deliberately uses a
// fresh context so an in-flight grade recompute survives server shutdown
// signals up to Stop's wait.
func (r *TaskRunner) processTask(t Task, workerID int) {
	ctx := context.Background()
	log := r.logger.With(
		"task_id", t.ID(),
		"task_type", t.Type(),
		"worker_id", workerID,
	)

	if err := r.store.UpdateTaskStatus(ctx, t.ID(), TaskStatusProcessing, ""); err != nil {
		log.Error("failed to mark task processing", "error", err)
		return
	}

	log.Info("processing task")

	if err := t.Execute(ctx); err != nil {
		log.Error("task execution failed", "error", err)
		if updateErr := r.store.UpdateTaskStatus(ctx, t.ID(), TaskStatusFailed, err.Error()); updateErr != nil {
			log.Error("failed to mark task failed", "error", updateErr)
		}
		return
	}

	log.Info("task completed")
	if err := r.store.UpdateTaskStatus(ctx, t.ID(), TaskStatusCompleted, ""); err != nil {
		log.Error("failed to mark task completed", "error", err)
	}
}

// sweepStuckTasks periodically resets tasks that have sat in processing
// state past StuckTaskAge and requeues them.
func (r *TaskRunner) sweepStuckTasks() {
	defer r.wg.Done()

	ticker := time.NewTicker(r.config.StuckTaskCheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.ctx.Done():
			return

		case <-ticker.C:
			ctx := context.Background()

			stuck, err := r.store.GetProcessingTasks(ctx, r.config.StuckTaskAge)
			if err != nil {
				r.logger.Error("failed to check for stuck tasks", "error", err)
				continue
			}
			if len(stuck) == 0 {
				continue
			}

			r.logger.Info("found stuck tasks", "count", len(stuck))

			for _, t := range stuck {
				if err := r.store.UpdateTaskStatus(ctx, t.ID(), TaskStatusPending,
					"Reset after being stuck in processing state"); err != nil {
					r.logger.Error("failed to reset stuck task",
						"task_id", t.ID(),
						"task_type", t.Type(),
						"error", err)
					continue
				}
				if r.enqueue(t) {
					r.logger.Info("requeued stuck task",
						"task_id", t.ID(),
						"task_type", t.Type())
				} else {
					r.logger.Error("failed to requeue stuck task, queue is full",
						"task_id", t.ID(),
						"task_type", t.Type())
				}
			}
		}
	}
}
