package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/aulaops/aula-api/internal/domain"
	"github.com/aulaops/aula-api/internal/events"
	"github.com/aulaops/aula-api/internal/service/grading"
	"github.com/aulaops/aula-api/internal/store"
	"github.com/aulaops/aula-api/internal/task"
)

// CompletionService orchestrates a single activity completion: it
// validates the activity, reads the transient submission result, persists
// the progress row, triggers the grade cascade and emits a best-effort
// notification.
//
// The per-(userID, activityID) state machine is NotStarted, InProgress,
// Completed; Completed is terminal. Completing an already-completed
// activity with no new result is an idempotent no-op.
type CompletionService interface {
	// CompleteActivity marks the activity completed for the user based on
	// the submitted result.
	//
	// Returns:
	//   - ErrActivityNotFound: if the activity does not exist
	//   - ErrMissingResults: if no result was submitted and the activity
	//     was never completed before
	CompleteActivity(ctx context.Context, userID, activityID uuid.UUID) (*domain.UserActivityProgress, error)
}

// completionServiceImpl implements the CompletionService interface
type completionServiceImpl struct {
	activityStore store.ActivityStore
	progressStore store.ProgressStore
	resultStore   store.ResultStore
	aggregator    grading.GradeAggregatorService
	eventEmitter  events.EventEmitter
	notifier      events.Notifier
	logger        *slog.Logger
}

// NewCompletionService creates a new CompletionService.
// It returns an error if any of the required dependencies are nil.
func NewCompletionService(
	activityStore store.ActivityStore,
	progressStore store.ProgressStore,
	resultStore store.ResultStore,
	aggregator grading.GradeAggregatorService,
	eventEmitter events.EventEmitter,
	notifier events.Notifier,
	logger *slog.Logger,
) (CompletionService, error) {
	if activityStore == nil {
		return nil, &ServiceError{
			Operation: "create_service",
			Message:   "activityStore cannot be nil",
		}
	}
	if progressStore == nil {
		return nil, &ServiceError{
			Operation: "create_service",
			Message:   "progressStore cannot be nil",
		}
	}
	if resultStore == nil {
		return nil, &ServiceError{
			Operation: "create_service",
			Message:   "resultStore cannot be nil",
		}
	}
	if aggregator == nil {
		return nil, &ServiceError{
			Operation: "create_service",
			Message:   "aggregator cannot be nil",
		}
	}
	if eventEmitter == nil {
		return nil, &ServiceError{
			Operation: "create_service",
			Message:   "eventEmitter cannot be nil",
		}
	}
	if notifier == nil {
		return nil, &ServiceError{
			Operation: "create_service",
			Message:   "notifier cannot be nil",
		}
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &completionServiceImpl{
		activityStore: activityStore,
		progressStore: progressStore,
		resultStore:   resultStore,
		aggregator:    aggregator,
		eventEmitter:  eventEmitter,
		notifier:      notifier,
		logger:        logger.With("component", "completion_service"),
	}, nil
}

// CompleteActivity processes one completion invocation. The progress write
// commits before the grade cascade runs; an aggregation failure is logged
// and handed to the background recompute task instead of rolling back the
// already-committed completion.
func (s *completionServiceImpl) CompleteActivity(
	ctx context.Context,
	userID, activityID uuid.UUID,
) (*domain.UserActivityProgress, error) {
	// 1. The activity must exist.
	activity, err := s.activityStore.GetActivity(ctx, activityID)
	if err != nil {
		s.logger.Error("failed to load activity for completion",
			"error", err,
			"user_id", userID,
			"activity_id", activityID)
		return nil, NewServiceError("complete_activity", "failed to load activity", err)
	}

	// 2. Read the transient submission result. Absent result plus prior
	// completion is an idempotent retry; absent result without prior
	// completion means nothing was submitted.
	result, err := s.resultStore.GetResult(ctx, activityID, userID)
	if err != nil {
		if !errors.Is(err, store.ErrResultNotFound) {
			return nil, NewServiceError("complete_activity", "failed to read submission result", err)
		}

		existing, progressErr := s.progressStore.GetActivityProgress(ctx, userID, activityID)
		if progressErr == nil && existing.IsCompleted {
			s.logger.Debug("activity already completed, no new result",
				"user_id", userID,
				"activity_id", activityID)
			return existing, nil
		}
		if progressErr != nil && !errors.Is(progressErr, store.ErrProgressNotFound) {
			return nil, NewServiceError("complete_activity", "failed to read activity progress", progressErr)
		}

		return nil, fmt.Errorf("%w: activity %s user %s", ErrMissingResults, activityID, userID)
	}

	// 3. Persist the completion. The upsert is atomic, so a duplicate
	// submission retry converges on the same row.
	progress, err := s.persistCompletion(ctx, userID, activity, result)
	if err != nil {
		return nil, NewServiceError("complete_activity", "failed to persist completion", err)
	}

	// The transient result has been persisted into the progress row;
	// dropping it makes later retries hit the idempotent no-op path.
	if err := s.resultStore.DeleteResult(ctx, activityID, userID); err != nil {
		s.logger.Warn("failed to delete transient result after completion",
			"error", err,
			"user_id", userID,
			"activity_id", activityID)
	}

	// 4. Run the grade cascade. Failure never undoes the completion; the
	// recompute task retries later with the same idempotent inputs.
	if err := s.aggregator.RecomputeForParameter(ctx, userID, activity.ParameterID); err != nil {
		s.logger.Error("grade aggregation failed after completion, scheduling recompute",
			"error", err,
			"user_id", userID,
			"activity_id", activityID,
			"parameter_id", activity.ParameterID)
		s.scheduleRecompute(ctx, userID, activity.ParameterID)
	}

	// 5. Best-effort notification; failure is swallowed after logging.
	s.emitCompletionNotification(ctx, userID, activity, progress)

	s.logger.Info("activity completed",
		"user_id", userID,
		"activity_id", activityID,
		"final_grade", result.FinalGrade,
		"attempt_count", progress.AttemptCount)

	return progress, nil
}

// persistCompletion builds and upserts the completed progress row. The
// attempt count comes from the submission when present, otherwise it
// advances the existing count by one.
func (s *completionServiceImpl) persistCompletion(
	ctx context.Context,
	userID uuid.UUID,
	activity *domain.Activity,
	result *domain.ActivityResult,
) (*domain.UserActivityProgress, error) {
	attemptCount := 1
	if existing, err := s.progressStore.GetActivityProgress(ctx, userID, activity.ID); err == nil {
		attemptCount = existing.AttemptCount + 1
	} else if !errors.Is(err, store.ErrProgressNotFound) {
		return nil, err
	}
	if result.AttemptCount != nil {
		attemptCount = *result.AttemptCount
	}

	finalGrade := domain.RoundGrade(result.FinalGrade)
	progress := &domain.UserActivityProgress{
		UserID:        userID,
		ActivityID:    activity.ID,
		Progress:      100,
		IsCompleted:   true,
		FinalGrade:    &finalGrade,
		AttemptCount:  attemptCount,
		LastAttemptAt: time.Now().UTC(),
		ManualReview:  activity.ManualReview,
	}

	if err := s.progressStore.UpsertActivityProgress(ctx, progress); err != nil {
		return nil, err
	}

	return progress, nil
}

// scheduleRecompute emits a task request so the background runner repeats
// the failed aggregation. Emission failure is logged; the completion has
// already committed and must not fail because of it.
func (s *completionServiceImpl) scheduleRecompute(ctx context.Context, userID, parameterID uuid.UUID) {
	payload := task.GradeRecomputePayload{
		UserID:      userID,
		ParameterID: parameterID,
	}

	event, err := events.NewTaskRequestEvent(task.TaskTypeGradeRecompute, payload)
	if err != nil {
		s.logger.Error("failed to create grade recompute event",
			"error", err,
			"user_id", userID,
			"parameter_id", parameterID)
		return
	}

	if err := s.eventEmitter.EmitEvent(ctx, event); err != nil {
		s.logger.Error("failed to emit grade recompute event",
			"error", err,
			"user_id", userID,
			"parameter_id", parameterID,
			"event_id", event.ID)
	}
}

// emitCompletionNotification delivers the fire-and-forget ACTIVITY_COMPLETED
// notification. It runs on its own goroutine with a detached context so the
// caller never waits on delivery, and errors are only logged.
func (s *completionServiceImpl) emitCompletionNotification(
	ctx context.Context,
	userID uuid.UUID,
	activity *domain.Activity,
	progress *domain.UserActivityProgress,
) {
	parameter, err := s.activityStore.GetParameter(ctx, activity.ParameterID)
	if err != nil {
		s.logger.Warn("failed to load parameter for completion notification",
			"error", err,
			"activity_id", activity.ID)
		return
	}

	metadata := map[string]string{
		"activity_id":  activity.ID.String(),
		"parameter_id": parameter.ID.String(),
		"course_id":    parameter.CourseID.String(),
	}
	message := fmt.Sprintf("You completed %q", activity.Name)
	if progress.FinalGrade != nil {
		message = fmt.Sprintf("You completed %q with a grade of %.2f", activity.Name, *progress.FinalGrade)
	}

	event := events.NewActivityCompletedEvent(userID, "Activity completed", message, metadata)

	notifyCtx := context.WithoutCancel(ctx)
	go func() {
		if err := s.notifier.Notify(notifyCtx, event); err != nil {
			s.logger.Warn("failed to deliver completion notification",
				"error", err,
				"user_id", userID,
				"activity_id", activity.ID)
		}
	}()
}
