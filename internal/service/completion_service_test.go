package service

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aulaops/aula-api/internal/domain"
	"github.com/aulaops/aula-api/internal/mocks"
	"github.com/aulaops/aula-api/internal/task"
)

type completionFixture struct {
	activityStore *mocks.MockActivityStore
	progressStore *mocks.MockProgressStore
	resultStore   *mocks.MockResultStore
	aggregator    *mocks.MockGradeAggregator
	emitter       *mocks.MockEventEmitter
	notifier      *mocks.MockNotifier
	service       CompletionService

	userID      uuid.UUID
	activityID  uuid.UUID
	parameterID uuid.UUID
}

func newCompletionFixture(t *testing.T) *completionFixture {
	t.Helper()

	f := &completionFixture{
		activityStore: mocks.NewMockActivityStore(),
		progressStore: mocks.NewMockProgressStore(),
		resultStore:   mocks.NewMockResultStore(),
		aggregator:    &mocks.MockGradeAggregator{},
		emitter:       &mocks.MockEventEmitter{},
		notifier:      mocks.NewMockNotifier(),
		userID:        uuid.New(),
		activityID:    uuid.New(),
		parameterID:   uuid.New(),
	}

	courseID := uuid.New()
	f.activityStore.Parameters[f.parameterID] = &domain.Parameter{
		ID:       f.parameterID,
		CourseID: courseID,
		Name:     "Exámenes",
		Weight:   40,
	}
	f.activityStore.Activities[f.activityID] = &domain.Activity{
		ID:          f.activityID,
		ParameterID: f.parameterID,
		Name:        "Examen parcial",
		Weight:      50,
		Active:      true,
	}

	svc, err := NewCompletionService(
		f.activityStore,
		f.progressStore,
		f.resultStore,
		f.aggregator,
		f.emitter,
		f.notifier,
		slog.Default(),
	)
	require.NoError(t, err)
	f.service = svc
	return f
}

func (f *completionFixture) submitResult(t *testing.T, finalGrade float64) {
	t.Helper()
	err := f.resultStore.SaveResult(context.Background(), f.activityID, f.userID, &domain.ActivityResult{
		Score:       finalGrade,
		Passed:      finalGrade >= 60,
		FinalGrade:  finalGrade,
		SubmittedAt: time.Now().UTC(),
	})
	require.NoError(t, err)
}

func TestCompleteActivity_PersistsGradeAndTriggersCascade(t *testing.T) {
	f := newCompletionFixture(t)
	f.submitResult(t, 87.456)

	progress, err := f.service.CompleteActivity(context.Background(), f.userID, f.activityID)
	require.NoError(t, err)

	assert.True(t, progress.IsCompleted)
	assert.Equal(t, 100.0, progress.Progress)
	require.NotNil(t, progress.FinalGrade)
	assert.Equal(t, 87.46, *progress.FinalGrade) // rounded half-up to 2 decimals
	assert.Equal(t, 1, progress.AttemptCount)

	// The cascade ran for the activity's parameter.
	require.Equal(t, 1, f.aggregator.CallCount())
	assert.Equal(t, f.parameterID, f.aggregator.Calls[0].ParameterID)

	// The transient result was consumed.
	_, err = f.resultStore.GetResult(context.Background(), f.activityID, f.userID)
	assert.Error(t, err)
}

func TestCompleteActivity_EmitsNotification(t *testing.T) {
	f := newCompletionFixture(t)
	f.submitResult(t, 90)

	_, err := f.service.CompleteActivity(context.Background(), f.userID, f.activityID)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.True(t, f.notifier.Wait(ctx), "notification was not delivered")

	received := f.notifier.ReceivedEvents()
	require.Len(t, received, 1)
	assert.Equal(t, f.userID, received[0].UserID)
	assert.Equal(t, f.activityID.String(), received[0].Metadata["activity_id"])
	assert.Equal(t, f.parameterID.String(), received[0].Metadata["parameter_id"])
}

func TestCompleteActivity_NotificationFailureIsSwallowed(t *testing.T) {
	f := newCompletionFixture(t)
	f.notifier.Err = errors.New("notification channel down")
	f.submitResult(t, 75)

	progress, err := f.service.CompleteActivity(context.Background(), f.userID, f.activityID)
	require.NoError(t, err)
	assert.True(t, progress.IsCompleted)
}

func TestCompleteActivity_RetryAfterCompletionIsNoOp(t *testing.T) {
	f := newCompletionFixture(t)
	f.submitResult(t, 80)

	first, err := f.service.CompleteActivity(context.Background(), f.userID, f.activityID)
	require.NoError(t, err)

	// Second call with no new result: terminal state, nothing changes.
	second, err := f.service.CompleteActivity(context.Background(), f.userID, f.activityID)
	require.NoError(t, err)
	assert.Equal(t, first.FinalGrade, second.FinalGrade)
	assert.Equal(t, first.AttemptCount, second.AttemptCount)

	// No second cascade.
	assert.Equal(t, 1, f.aggregator.CallCount())
}

func TestCompleteActivity_MissingResults(t *testing.T) {
	f := newCompletionFixture(t)

	_, err := f.service.CompleteActivity(context.Background(), f.userID, f.activityID)
	assert.ErrorIs(t, err, ErrMissingResults)

	// Nothing was persisted and no cascade ran.
	assert.Equal(t, 0, f.aggregator.CallCount())
}

func TestCompleteActivity_ActivityNotFound(t *testing.T) {
	f := newCompletionFixture(t)

	_, err := f.service.CompleteActivity(context.Background(), f.userID, uuid.New())
	assert.ErrorIs(t, err, ErrActivityNotFound)
}

func TestCompleteActivity_ResubmissionAdvancesAttemptCount(t *testing.T) {
	f := newCompletionFixture(t)
	f.submitResult(t, 60)

	first, err := f.service.CompleteActivity(context.Background(), f.userID, f.activityID)
	require.NoError(t, err)
	assert.Equal(t, 1, first.AttemptCount)

	f.submitResult(t, 95)
	second, err := f.service.CompleteActivity(context.Background(), f.userID, f.activityID)
	require.NoError(t, err)
	assert.Equal(t, 2, second.AttemptCount)
	require.NotNil(t, second.FinalGrade)
	assert.Equal(t, 95.0, *second.FinalGrade)
}

func TestCompleteActivity_AttemptCountFromSubmission(t *testing.T) {
	f := newCompletionFixture(t)
	attempts := 4
	err := f.resultStore.SaveResult(context.Background(), f.activityID, f.userID, &domain.ActivityResult{
		FinalGrade:   70,
		AttemptCount: &attempts,
		SubmittedAt:  time.Now().UTC(),
	})
	require.NoError(t, err)

	progress, err := f.service.CompleteActivity(context.Background(), f.userID, f.activityID)
	require.NoError(t, err)
	assert.Equal(t, 4, progress.AttemptCount)
}

func TestCompleteActivity_ManualReviewCopiedFromActivity(t *testing.T) {
	f := newCompletionFixture(t)
	f.activityStore.Activities[f.activityID].ManualReview = true
	f.submitResult(t, 88)

	progress, err := f.service.CompleteActivity(context.Background(), f.userID, f.activityID)
	require.NoError(t, err)
	assert.True(t, progress.ManualReview)
}

func TestCompleteActivity_AggregationFailureSchedulesRecompute(t *testing.T) {
	f := newCompletionFixture(t)
	f.aggregator.Err = errors.New("serialization budget exhausted")
	f.submitResult(t, 82)

	// The completion itself still succeeds.
	progress, err := f.service.CompleteActivity(context.Background(), f.userID, f.activityID)
	require.NoError(t, err)
	assert.True(t, progress.IsCompleted)

	// A recompute task request was emitted for the background runner.
	emitted := f.emitter.EmittedEvents()
	require.Len(t, emitted, 1)
	assert.Equal(t, task.TaskTypeGradeRecompute, emitted[0].Type)

	var payload task.GradeRecomputePayload
	require.NoError(t, emitted[0].UnmarshalPayload(&payload))
	assert.Equal(t, f.userID, payload.UserID)
	assert.Equal(t, f.parameterID, payload.ParameterID)
}
