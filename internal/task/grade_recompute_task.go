package task

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/aulaops/aula-api/internal/service/grading"
)

// Status constants for GradeRecomputeTask
// These match the TaskStatus values defined in task.go
const (
	statusPending    = "pending"
	statusProcessing = "processing"
	statusCompleted  = "completed"
	statusFailed     = "failed"
)

// Common errors
var (
	ErrNilAggregator    = errors.New("grade aggregator cannot be nil")
	ErrNilLogger        = errors.New("logger cannot be nil")
	ErrEmptyUserID      = errors.New("user ID cannot be empty")
	ErrEmptyParameterID = errors.New("parameter ID cannot be empty")
)

// GradeRecomputePayload is the serialized data stored in a grade recompute
// task and carried by the corresponding task request event.
type GradeRecomputePayload struct {
	UserID      uuid.UUID `json:"user_id"`
	ParameterID uuid.UUID `json:"parameter_id"`
}

// GradeRecomputeTask implements the Task interface for repeating a grade
// aggregation in the background. The aggregation is idempotent, so a task
// that runs twice, or races with a synchronous recompute, converges on the
// same persisted grades.
type GradeRecomputeTask struct {
	id          uuid.UUID
	userID      uuid.UUID
	parameterID uuid.UUID
	aggregator  grading.GradeAggregatorService
	logger      *slog.Logger
	status      string
}

// NewGradeRecomputeTask creates a new grade recompute task
func NewGradeRecomputeTask(
	userID uuid.UUID,
	parameterID uuid.UUID,
	aggregator grading.GradeAggregatorService,
	logger *slog.Logger,
) (*GradeRecomputeTask, error) {
	if aggregator == nil {
		return nil, ErrNilAggregator
	}
	if logger == nil {
		return nil, ErrNilLogger
	}
	if userID == uuid.Nil {
		return nil, ErrEmptyUserID
	}
	if parameterID == uuid.Nil {
		return nil, ErrEmptyParameterID
	}

	return &GradeRecomputeTask{
		id:          uuid.New(),
		userID:      userID,
		parameterID: parameterID,
		aggregator:  aggregator,
		logger: logger.With(
			"task_type", TaskTypeGradeRecompute,
			"user_id", userID,
			"parameter_id", parameterID),
		status: statusPending,
	}, nil
}

// ID returns the task's unique identifier
func (t *GradeRecomputeTask) ID() uuid.UUID {
	return t.id
}

// Type returns the task type identifier
func (t *GradeRecomputeTask) Type() string {
	return TaskTypeGradeRecompute
}

// Payload returns the task data as a byte slice
func (t *GradeRecomputeTask) Payload() []byte {
	payload := GradeRecomputePayload{
		UserID:      t.userID,
		ParameterID: t.parameterID,
	}

	data, err := json.Marshal(payload)
	if err != nil {
		// If marshal fails, return an empty payload with error logged
		t.logger.Error("failed to marshal task payload", "error", err)
		return []byte{}
	}

	return data
}

// Status returns the current task status
func (t *GradeRecomputeTask) Status() TaskStatus {
	return TaskStatus(t.status)
}

// Execute runs the recompute. A failure leaves the task in failed state;
// the runner's retry and recovery machinery takes it from there.
func (t *GradeRecomputeTask) Execute(ctx context.Context) error {
	t.status = statusProcessing
	t.logger.Info("starting grade recompute task")

	if err := ctx.Err(); err != nil {
		t.status = statusFailed
		t.logger.Error("task cancelled by context", "error", err)
		return fmt.Errorf("task cancelled by context: %w", err)
	}

	if err := t.aggregator.RecomputeForParameter(ctx, t.userID, t.parameterID); err != nil {
		t.status = statusFailed
		t.logger.Error("grade recompute failed", "error", err)
		return fmt.Errorf("grade recompute failed: %w", err)
	}

	t.status = statusCompleted
	t.logger.Info("grade recompute task completed successfully")
	return nil
}
