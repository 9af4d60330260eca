package service

import (
	"context"
	"database/sql"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aulaops/aula-api/internal/domain"
	"github.com/aulaops/aula-api/internal/mocks"
)

// The transactional create/update paths need a live database and are
// covered by the store integration tests; these tests cover the paths
// that never reach a transaction.

func TestNewActivityService_RequiresDependencies(t *testing.T) {
	activityStore := mocks.NewMockActivityStore()

	_, err := NewActivityService(nil, activityStore, slog.Default())
	assert.Error(t, err)

	_, err = NewActivityService(&sql.DB{}, nil, slog.Default())
	assert.Error(t, err)

	svc, err := NewActivityService(&sql.DB{}, activityStore, nil)
	require.NoError(t, err)
	assert.NotNil(t, svc)
}

func TestCreateActivity_RejectsInvalidWeight(t *testing.T) {
	svc, err := NewActivityService(&sql.DB{}, mocks.NewMockActivityStore(), slog.Default())
	require.NoError(t, err)

	_, err = svc.CreateActivity(context.Background(), uuid.New(), "Tarea 1", 120, nil, false)
	assert.ErrorIs(t, err, domain.ErrInvalidWeight)

	_, err = svc.CreateActivity(context.Background(), uuid.New(), "Tarea 1", -5, nil, false)
	assert.ErrorIs(t, err, domain.ErrInvalidWeight)
}

func TestGetActivity(t *testing.T) {
	activityStore := mocks.NewMockActivityStore()
	activityID := uuid.New()
	activityStore.Activities[activityID] = &domain.Activity{
		ID:          activityID,
		ParameterID: uuid.New(),
		Name:        "Examen parcial",
		Weight:      50,
		Active:      true,
	}

	svc, err := NewActivityService(&sql.DB{}, activityStore, slog.Default())
	require.NoError(t, err)

	activity, err := svc.GetActivity(context.Background(), activityID)
	require.NoError(t, err)
	assert.Equal(t, "Examen parcial", activity.Name)

	_, err = svc.GetActivity(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrActivityNotFound)
}
