package mocks

import (
	"context"
	"database/sql"
	"sync"

	"github.com/google/uuid"

	"github.com/aulaops/aula-api/internal/domain"
	"github.com/aulaops/aula-api/internal/store"
)

// MockGradeRepository implements store.GradeRepository. The Compute methods
// return configured values; the Upsert methods record what was written.
type MockGradeRepository struct {
	mu sync.Mutex

	// Values returned by the Compute methods. Nil means "no grade".
	ParameterGradeValue *float64
	CourseGradeValue    *float64

	// Rows written through the Upsert methods, in call order.
	UpsertedParameterGrades []domain.ParameterGrade
	UpsertedSubjectGrades   []domain.SubjectGrade

	// Rows served by the read methods.
	SubjectGrades   map[uuid.UUID]domain.SubjectGrade   // keyed by subject ID
	ParameterGrades map[uuid.UUID]domain.ParameterGrade // keyed by parameter ID

	// Custom behavior functions
	ComputeParameterGradeFn func(ctx context.Context, parameterID, userID uuid.UUID) (*float64, error)
	ComputeCourseGradeFn    func(ctx context.Context, courseID, userID uuid.UUID) (*float64, error)
	UpsertParameterGradeFn  func(ctx context.Context, grade *domain.ParameterGrade) error
	UpsertSubjectGradeFn    func(ctx context.Context, grade *domain.SubjectGrade) error
}

// NewMockGradeRepository creates an empty MockGradeRepository.
func NewMockGradeRepository() *MockGradeRepository {
	return &MockGradeRepository{
		SubjectGrades:   make(map[uuid.UUID]domain.SubjectGrade),
		ParameterGrades: make(map[uuid.UUID]domain.ParameterGrade),
	}
}

func (m *MockGradeRepository) ComputeParameterGrade(
	ctx context.Context,
	parameterID, userID uuid.UUID,
) (*float64, error) {
	if m.ComputeParameterGradeFn != nil {
		return m.ComputeParameterGradeFn(ctx, parameterID, userID)
	}
	return m.ParameterGradeValue, nil
}

func (m *MockGradeRepository) ComputeCourseGrade(
	ctx context.Context,
	courseID, userID uuid.UUID,
) (*float64, error) {
	if m.ComputeCourseGradeFn != nil {
		return m.ComputeCourseGradeFn(ctx, courseID, userID)
	}
	return m.CourseGradeValue, nil
}

func (m *MockGradeRepository) UpsertParameterGrade(
	ctx context.Context,
	grade *domain.ParameterGrade,
) error {
	if m.UpsertParameterGradeFn != nil {
		return m.UpsertParameterGradeFn(ctx, grade)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.UpsertedParameterGrades = append(m.UpsertedParameterGrades, *grade)
	return nil
}

func (m *MockGradeRepository) UpsertSubjectGrade(
	ctx context.Context,
	grade *domain.SubjectGrade,
) error {
	if m.UpsertSubjectGradeFn != nil {
		return m.UpsertSubjectGradeFn(ctx, grade)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.UpsertedSubjectGrades = append(m.UpsertedSubjectGrades, *grade)
	return nil
}

func (m *MockGradeRepository) GetSubjectGrade(
	ctx context.Context,
	subjectID, userID uuid.UUID,
) (*domain.SubjectGrade, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	grade, ok := m.SubjectGrades[subjectID]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &grade, nil
}

func (m *MockGradeRepository) ListParameterGrades(
	ctx context.Context,
	courseID, userID uuid.UUID,
) (map[uuid.UUID]domain.ParameterGrade, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make(map[uuid.UUID]domain.ParameterGrade, len(m.ParameterGrades))
	for id, grade := range m.ParameterGrades {
		result[id] = grade
	}
	return result, nil
}

func (m *MockGradeRepository) WithTx(tx *sql.Tx) store.GradeRepository {
	return m
}
