package mocks

import (
	"context"
	"database/sql"
	"sync"

	"github.com/google/uuid"

	"github.com/aulaops/aula-api/internal/domain"
	"github.com/aulaops/aula-api/internal/store"
)

// InMemoryGradeRepository implements store.GradeRepository with real
// aggregation arithmetic over in-memory fixtures, unlike MockGradeRepository
// which returns pre-set values. Parameter grades are the mean of the user's
// graded active activities; course grades are the weighted sum of the user's
// persisted parameter grades.
type InMemoryGradeRepository struct {
	mu sync.Mutex

	Parameters map[uuid.UUID]*domain.Parameter
	Activities map[uuid.UUID]*domain.Activity

	// FinalGrades holds the persisted final grade per (userID, activityID).
	FinalGrades map[progressKey]float64

	ParameterGrades map[progressKey]domain.ParameterGrade
	SubjectGrades   map[progressKey]domain.SubjectGrade
}

// Ensure InMemoryGradeRepository implements the interface
var _ store.GradeRepository = (*InMemoryGradeRepository)(nil)

// NewInMemoryGradeRepository creates an empty InMemoryGradeRepository.
func NewInMemoryGradeRepository() *InMemoryGradeRepository {
	return &InMemoryGradeRepository{
		Parameters:      make(map[uuid.UUID]*domain.Parameter),
		Activities:      make(map[uuid.UUID]*domain.Activity),
		FinalGrades:     make(map[progressKey]float64),
		ParameterGrades: make(map[progressKey]domain.ParameterGrade),
		SubjectGrades:   make(map[progressKey]domain.SubjectGrade),
	}
}

// AddParameter registers a parameter fixture.
func (m *InMemoryGradeRepository) AddParameter(p *domain.Parameter) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Parameters[p.ID] = p
}

// AddActivity registers an activity fixture.
func (m *InMemoryGradeRepository) AddActivity(a *domain.Activity) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Activities[a.ID] = a
}

// SetFinalGrade records a user's final grade for an activity, as the
// progress upsert would.
func (m *InMemoryGradeRepository) SetFinalGrade(userID, activityID uuid.UUID, grade float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.FinalGrades[progressKey{userID, activityID}] = grade
}

func (m *InMemoryGradeRepository) ComputeParameterGrade(
	ctx context.Context,
	parameterID, userID uuid.UUID,
) (*float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var sum float64
	var count int
	for _, activity := range m.Activities {
		if activity.ParameterID != parameterID || !activity.Active {
			continue
		}
		grade, ok := m.FinalGrades[progressKey{userID, activity.ID}]
		if !ok {
			continue
		}
		sum += grade
		count++
	}

	if count == 0 {
		return nil, nil
	}
	mean := sum / float64(count)
	return &mean, nil
}

func (m *InMemoryGradeRepository) UpsertParameterGrade(
	ctx context.Context,
	grade *domain.ParameterGrade,
) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ParameterGrades[progressKey{grade.UserID, grade.ParameterID}] = *grade
	return nil
}

func (m *InMemoryGradeRepository) ComputeCourseGrade(
	ctx context.Context,
	courseID, userID uuid.UUID,
) (*float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var total float64
	var found bool
	for _, parameter := range m.Parameters {
		if parameter.CourseID != courseID {
			continue
		}
		grade, ok := m.ParameterGrades[progressKey{userID, parameter.ID}]
		if !ok {
			continue
		}
		total += grade.Grade * parameter.Weight / 100
		found = true
	}

	if !found {
		return nil, nil
	}
	return &total, nil
}

func (m *InMemoryGradeRepository) UpsertSubjectGrade(
	ctx context.Context,
	grade *domain.SubjectGrade,
) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SubjectGrades[progressKey{grade.UserID, grade.SubjectID}] = *grade
	return nil
}

func (m *InMemoryGradeRepository) GetSubjectGrade(
	ctx context.Context,
	subjectID, userID uuid.UUID,
) (*domain.SubjectGrade, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	grade, ok := m.SubjectGrades[progressKey{userID, subjectID}]
	if !ok {
		return nil, store.ErrNotFound
	}
	copied := grade
	return &copied, nil
}

func (m *InMemoryGradeRepository) ListParameterGrades(
	ctx context.Context,
	courseID, userID uuid.UUID,
) (map[uuid.UUID]domain.ParameterGrade, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	grades := make(map[uuid.UUID]domain.ParameterGrade)
	for _, parameter := range m.Parameters {
		if parameter.CourseID != courseID {
			continue
		}
		if grade, ok := m.ParameterGrades[progressKey{userID, parameter.ID}]; ok {
			grades[parameter.ID] = grade
		}
	}
	return grades, nil
}

// WithTx returns the repository itself; the in-memory state is shared.
func (m *InMemoryGradeRepository) WithTx(tx *sql.Tx) store.GradeRepository {
	return m
}
