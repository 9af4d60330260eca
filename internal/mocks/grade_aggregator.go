package mocks

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// MockGradeAggregator implements grading.GradeAggregatorService, recording
// each recompute request.
type MockGradeAggregator struct {
	mu    sync.Mutex
	Err   error
	Calls []RecomputeCall

	// Custom behavior function
	RecomputeForParameterFn func(ctx context.Context, userID, parameterID uuid.UUID) error
}

// RecomputeCall records one RecomputeForParameter invocation.
type RecomputeCall struct {
	UserID      uuid.UUID
	ParameterID uuid.UUID
}

func (m *MockGradeAggregator) RecomputeForParameter(
	ctx context.Context,
	userID, parameterID uuid.UUID,
) error {
	m.mu.Lock()
	m.Calls = append(m.Calls, RecomputeCall{UserID: userID, ParameterID: parameterID})
	m.mu.Unlock()

	if m.RecomputeForParameterFn != nil {
		return m.RecomputeForParameterFn(ctx, userID, parameterID)
	}
	return m.Err
}

// CallCount returns how many recomputes were requested.
func (m *MockGradeAggregator) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}
