package task

import (
	"log/slog"

	"github.com/google/uuid"

	"github.com/aulaops/aula-api/internal/service/grading"
)

// GradeRecomputeTaskFactory creates GradeRecomputeTask instances
type GradeRecomputeTaskFactory struct {
	aggregator grading.GradeAggregatorService
	logger     *slog.Logger
}

// NewGradeRecomputeTaskFactory creates a new factory for GradeRecomputeTasks
func NewGradeRecomputeTaskFactory(
	aggregator grading.GradeAggregatorService,
	logger *slog.Logger,
) *GradeRecomputeTaskFactory {
	return &GradeRecomputeTaskFactory{
		aggregator: aggregator,
		logger:     logger.With("component", "grade_recompute_task_factory"),
	}
}

// CreateTask creates a new GradeRecomputeTask for the given user and parameter
func (f *GradeRecomputeTaskFactory) CreateTask(userID, parameterID uuid.UUID) (Task, error) {
	task, err := NewGradeRecomputeTask(
		userID,
		parameterID,
		f.aggregator,
		f.logger,
	)
	if err != nil {
		return nil, err
	}
	return task, nil
}
