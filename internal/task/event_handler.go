package task

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/aulaops/aula-api/internal/events"
)

// TaskFactory creates tasks from a (userID, parameterID) pair.
type TaskFactory interface {
	CreateTask(userID, parameterID uuid.UUID) (Task, error)
}

// TaskSubmitter accepts tasks for background processing.
type TaskSubmitter interface {
	Submit(ctx context.Context, task Task) error
}

// TaskFactoryEventHandler implements the events.EventHandler interface
// to turn grade recompute request events into persisted background tasks.
type TaskFactoryEventHandler struct {
	taskFactory TaskFactory
	taskRunner  TaskSubmitter
	logger      *slog.Logger
}

// NewTaskFactoryEventHandler creates a new event handler that uses the given task factory
// to create tasks, and submits them to the provided task runner.
func NewTaskFactoryEventHandler(
	taskFactory TaskFactory,
	taskRunner TaskSubmitter,
	logger *slog.Logger,
) *TaskFactoryEventHandler {
	return &TaskFactoryEventHandler{
		taskFactory: taskFactory,
		taskRunner:  taskRunner,
		logger:      logger.With("component", "task_factory_event_handler"),
	}
}

// HandleEvent processes events by creating and submitting tasks.
// Events of other types are ignored so additional handlers can share the
// same emitter.
func (h *TaskFactoryEventHandler) HandleEvent(
	ctx context.Context,
	event *events.TaskRequestEvent,
) error {
	if event.Type != TaskTypeGradeRecompute {
		h.logger.Debug("ignoring event with unsupported type",
			"event_type", event.Type,
			"event_id", event.ID)
		return nil
	}

	var payload GradeRecomputePayload
	if err := event.UnmarshalPayload(&payload); err != nil {
		h.logger.Error("failed to unmarshal payload", "error", err, "event_id", event.ID)
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	if payload.UserID == uuid.Nil || payload.ParameterID == uuid.Nil {
		h.logger.Error("event payload missing identifiers",
			"event_id", event.ID,
			"user_id", payload.UserID,
			"parameter_id", payload.ParameterID)
		return fmt.Errorf("event payload missing identifiers")
	}

	task, err := h.taskFactory.CreateTask(payload.UserID, payload.ParameterID)
	if err != nil {
		h.logger.Error("failed to create task",
			"error", err,
			"user_id", payload.UserID,
			"parameter_id", payload.ParameterID,
			"event_id", event.ID)
		return fmt.Errorf("failed to create task: %w", err)
	}

	if err := h.taskRunner.Submit(ctx, task); err != nil {
		h.logger.Error("failed to submit task",
			"error", err,
			"task_id", task.ID(),
			"event_id", event.ID)
		return fmt.Errorf("failed to submit task: %w", err)
	}

	h.logger.Info("task created and submitted successfully",
		"task_id", task.ID(),
		"user_id", payload.UserID,
		"parameter_id", payload.ParameterID,
		"event_id", event.ID)
	return nil
}

// Ensure TaskFactoryEventHandler implements events.EventHandler
var _ events.EventHandler = (*TaskFactoryEventHandler)(nil)
