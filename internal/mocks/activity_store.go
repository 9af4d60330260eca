package mocks

import (
	"context"
	"database/sql"
	"sync"

	"github.com/google/uuid"

	"github.com/aulaops/aula-api/internal/domain"
	"github.com/aulaops/aula-api/internal/store"
)

// MockActivityStore implements store.ActivityStore backed by in-memory maps.
// LockParameter is a no-op beyond existence checking; tests that need to
// observe locking use the Fn override.
type MockActivityStore struct {
	mu         sync.Mutex
	Activities map[uuid.UUID]*domain.Activity
	Parameters map[uuid.UUID]*domain.Parameter

	// Custom behavior functions
	GetActivityFn      func(ctx context.Context, id uuid.UUID) (*domain.Activity, error)
	GetParameterFn     func(ctx context.Context, id uuid.UUID) (*domain.Parameter, error)
	CreateActivityFn   func(ctx context.Context, activity *domain.Activity) error
	UpdateActivityFn   func(ctx context.Context, activity *domain.Activity) error
	LockParameterFn    func(ctx context.Context, parameterID uuid.UUID) error
	SumActiveWeightsFn func(ctx context.Context, parameterID, excludeActivityID uuid.UUID) (float64, error)

	LockParameterCalls int
}

// NewMockActivityStore creates an empty MockActivityStore.
func NewMockActivityStore() *MockActivityStore {
	return &MockActivityStore{
		Activities: make(map[uuid.UUID]*domain.Activity),
		Parameters: make(map[uuid.UUID]*domain.Parameter),
	}
}

func (m *MockActivityStore) GetActivity(ctx context.Context, id uuid.UUID) (*domain.Activity, error) {
	if m.GetActivityFn != nil {
		return m.GetActivityFn(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	activity, ok := m.Activities[id]
	if !ok {
		return nil, store.ErrActivityNotFound
	}
	copied := *activity
	return &copied, nil
}

func (m *MockActivityStore) GetParameter(ctx context.Context, id uuid.UUID) (*domain.Parameter, error) {
	if m.GetParameterFn != nil {
		return m.GetParameterFn(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	parameter, ok := m.Parameters[id]
	if !ok {
		return nil, store.ErrParameterNotFound
	}
	copied := *parameter
	return &copied, nil
}

func (m *MockActivityStore) ListParametersByCourse(
	ctx context.Context,
	courseID uuid.UUID,
) ([]domain.Parameter, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var parameters []domain.Parameter
	for _, parameter := range m.Parameters {
		if parameter.CourseID == courseID {
			parameters = append(parameters, *parameter)
		}
	}
	return parameters, nil
}

func (m *MockActivityStore) ListActivitiesByParameter(
	ctx context.Context,
	parameterID uuid.UUID,
) ([]domain.Activity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var activities []domain.Activity
	for _, activity := range m.Activities {
		if activity.ParameterID == parameterID && activity.Active {
			activities = append(activities, *activity)
		}
	}
	return activities, nil
}

func (m *MockActivityStore) CreateActivity(ctx context.Context, activity *domain.Activity) error {
	if m.CreateActivityFn != nil {
		return m.CreateActivityFn(ctx, activity)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.Activities[activity.ID]; exists {
		return store.ErrDuplicate
	}
	copied := *activity
	m.Activities[activity.ID] = &copied
	return nil
}

func (m *MockActivityStore) UpdateActivity(ctx context.Context, activity *domain.Activity) error {
	if m.UpdateActivityFn != nil {
		return m.UpdateActivityFn(ctx, activity)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.Activities[activity.ID]; !exists {
		return store.ErrActivityNotFound
	}
	copied := *activity
	m.Activities[activity.ID] = &copied
	return nil
}

func (m *MockActivityStore) LockParameter(ctx context.Context, parameterID uuid.UUID) error {
	m.mu.Lock()
	m.LockParameterCalls++
	m.mu.Unlock()
	if m.LockParameterFn != nil {
		return m.LockParameterFn(ctx, parameterID)
	}
	if _, err := m.GetParameter(ctx, parameterID); err != nil {
		return err
	}
	return nil
}

func (m *MockActivityStore) SumActiveWeights(
	ctx context.Context,
	parameterID, excludeActivityID uuid.UUID,
) (float64, error) {
	if m.SumActiveWeightsFn != nil {
		return m.SumActiveWeightsFn(ctx, parameterID, excludeActivityID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var sum float64
	for _, activity := range m.Activities {
		if activity.ParameterID != parameterID || !activity.Active {
			continue
		}
		if activity.ID == excludeActivityID {
			continue
		}
		sum += activity.Weight
	}
	return sum, nil
}

func (m *MockActivityStore) WithTx(tx *sql.Tx) store.ActivityStore {
	return m
}
