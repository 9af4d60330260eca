package mocks

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/aulaops/aula-api/internal/domain"
	"github.com/aulaops/aula-api/internal/store"
)

// MockResultStore implements store.ResultStore backed by an in-memory map.
type MockResultStore struct {
	mu      sync.Mutex
	Results map[progressKey]*domain.ActivityResult

	DeleteCalls int

	// Custom behavior functions
	SaveResultFn   func(ctx context.Context, activityID, userID uuid.UUID, result *domain.ActivityResult) error
	GetResultFn    func(ctx context.Context, activityID, userID uuid.UUID) (*domain.ActivityResult, error)
	DeleteResultFn func(ctx context.Context, activityID, userID uuid.UUID) error
}

// NewMockResultStore creates an empty MockResultStore.
func NewMockResultStore() *MockResultStore {
	return &MockResultStore{
		Results: make(map[progressKey]*domain.ActivityResult),
	}
}

func (m *MockResultStore) SaveResult(
	ctx context.Context,
	activityID, userID uuid.UUID,
	result *domain.ActivityResult,
) error {
	if m.SaveResultFn != nil {
		return m.SaveResultFn(ctx, activityID, userID, result)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *result
	m.Results[progressKey{userID, activityID}] = &copied
	return nil
}

func (m *MockResultStore) GetResult(
	ctx context.Context,
	activityID, userID uuid.UUID,
) (*domain.ActivityResult, error) {
	if m.GetResultFn != nil {
		return m.GetResultFn(ctx, activityID, userID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	result, ok := m.Results[progressKey{userID, activityID}]
	if !ok {
		return nil, store.ErrResultNotFound
	}
	copied := *result
	return &copied, nil
}

func (m *MockResultStore) DeleteResult(ctx context.Context, activityID, userID uuid.UUID) error {
	m.mu.Lock()
	m.DeleteCalls++
	m.mu.Unlock()
	if m.DeleteResultFn != nil {
		return m.DeleteResultFn(ctx, activityID, userID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.Results, progressKey{userID, activityID})
	return nil
}
