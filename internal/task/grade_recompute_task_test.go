package task

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aulaops/aula-api/internal/mocks"
)

func TestNewGradeRecomputeTask_Validation(t *testing.T) {
	aggregator := &mocks.MockGradeAggregator{}

	_, err := NewGradeRecomputeTask(uuid.Nil, uuid.New(), aggregator, slog.Default())
	assert.ErrorIs(t, err, ErrEmptyUserID)

	_, err = NewGradeRecomputeTask(uuid.New(), uuid.Nil, aggregator, slog.Default())
	assert.ErrorIs(t, err, ErrEmptyParameterID)

	_, err = NewGradeRecomputeTask(uuid.New(), uuid.New(), nil, slog.Default())
	assert.ErrorIs(t, err, ErrNilAggregator)
}

func TestGradeRecomputeTask_Execute(t *testing.T) {
	aggregator := &mocks.MockGradeAggregator{}
	userID := uuid.New()
	parameterID := uuid.New()

	recomputeTask, err := NewGradeRecomputeTask(userID, parameterID, aggregator, slog.Default())
	require.NoError(t, err)

	assert.Equal(t, TaskTypeGradeRecompute, recomputeTask.Type())
	assert.NotEqual(t, uuid.Nil, recomputeTask.ID())

	require.NoError(t, recomputeTask.Execute(context.Background()))
	require.Equal(t, 1, aggregator.CallCount())
	assert.Equal(t, userID, aggregator.Calls[0].UserID)
	assert.Equal(t, parameterID, aggregator.Calls[0].ParameterID)
}

func TestGradeRecomputeTask_ExecutePropagatesError(t *testing.T) {
	aggregator := &mocks.MockGradeAggregator{Err: errors.New("cascade failed")}

	recomputeTask, err := NewGradeRecomputeTask(uuid.New(), uuid.New(), aggregator, slog.Default())
	require.NoError(t, err)

	assert.Error(t, recomputeTask.Execute(context.Background()))
}

func TestGradeRecomputeTask_PayloadRoundTrip(t *testing.T) {
	userID := uuid.New()
	parameterID := uuid.New()

	recomputeTask, err := NewGradeRecomputeTask(userID, parameterID, &mocks.MockGradeAggregator{}, slog.Default())
	require.NoError(t, err)

	factoryTask, err := NewGradeRecomputeTaskFactory(&mocks.MockGradeAggregator{}, slog.Default()).
		CreateTask(userID, parameterID)
	require.NoError(t, err)
	assert.Equal(t, recomputeTask.Type(), factoryTask.Type())

	var payload GradeRecomputePayload
	require.NoError(t, json.Unmarshal(recomputeTask.Payload(), &payload))
	assert.Equal(t, userID, payload.UserID)
	assert.Equal(t, parameterID, payload.ParameterID)
}
