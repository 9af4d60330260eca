package task

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aulaops/aula-api/internal/events"
	"github.com/aulaops/aula-api/internal/mocks"
)

type fakeFactory struct {
	err     error
	created []GradeRecomputePayload
	task    Task
}

func (f *fakeFactory) CreateTask(userID, parameterID uuid.UUID) (Task, error) {
	f.created = append(f.created, GradeRecomputePayload{UserID: userID, ParameterID: parameterID})
	if f.err != nil {
		return nil, f.err
	}
	return f.task, nil
}

type fakeSubmitter struct {
	err       error
	submitted []Task
}

func (s *fakeSubmitter) Submit(ctx context.Context, task Task) error {
	s.submitted = append(s.submitted, task)
	return s.err
}

func newRecomputeEvent(t *testing.T, userID, parameterID uuid.UUID) *events.TaskRequestEvent {
	t.Helper()
	event, err := events.NewTaskRequestEvent(TaskTypeGradeRecompute, GradeRecomputePayload{
		UserID:      userID,
		ParameterID: parameterID,
	})
	require.NoError(t, err)
	return event
}

func TestHandleEvent_CreatesAndSubmitsTask(t *testing.T) {
	userID := uuid.New()
	parameterID := uuid.New()

	recomputeTask, err := NewGradeRecomputeTask(userID, parameterID, &mocks.MockGradeAggregator{}, slog.Default())
	require.NoError(t, err)

	factory := &fakeFactory{task: recomputeTask}
	submitter := &fakeSubmitter{}
	handler := NewTaskFactoryEventHandler(factory, submitter, slog.Default())

	err = handler.HandleEvent(context.Background(), newRecomputeEvent(t, userID, parameterID))
	require.NoError(t, err)

	require.Len(t, factory.created, 1)
	assert.Equal(t, userID, factory.created[0].UserID)
	assert.Equal(t, parameterID, factory.created[0].ParameterID)
	require.Len(t, submitter.submitted, 1)
}

func TestHandleEvent_IgnoresOtherEventTypes(t *testing.T) {
	factory := &fakeFactory{}
	submitter := &fakeSubmitter{}
	handler := NewTaskFactoryEventHandler(factory, submitter, slog.Default())

	event, err := events.NewTaskRequestEvent("unrelated_event", nil)
	require.NoError(t, err)

	require.NoError(t, handler.HandleEvent(context.Background(), event))
	assert.Empty(t, factory.created)
	assert.Empty(t, submitter.submitted)
}

func TestHandleEvent_RejectsMissingIdentifiers(t *testing.T) {
	factory := &fakeFactory{}
	submitter := &fakeSubmitter{}
	handler := NewTaskFactoryEventHandler(factory, submitter, slog.Default())

	err := handler.HandleEvent(context.Background(), newRecomputeEvent(t, uuid.Nil, uuid.New()))
	assert.Error(t, err)
	assert.Empty(t, factory.created)
}

func TestHandleEvent_PropagatesFactoryError(t *testing.T) {
	factory := &fakeFactory{err: errors.New("factory exploded")}
	submitter := &fakeSubmitter{}
	handler := NewTaskFactoryEventHandler(factory, submitter, slog.Default())

	err := handler.HandleEvent(context.Background(), newRecomputeEvent(t, uuid.New(), uuid.New()))
	assert.Error(t, err)
	assert.Empty(t, submitter.submitted)
}
