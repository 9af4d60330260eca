package grading

import (
	"context"
	"database/sql"
	"log/slog"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aulaops/aula-api/internal/domain"
	"github.com/aulaops/aula-api/internal/mocks"
	"github.com/aulaops/aula-api/internal/store"
)

func TestNewGradeAggregatorService_PanicsOnNilDependencies(t *testing.T) {
	gradeRepo := mocks.NewMockGradeRepository()
	activityStore := mocks.NewMockActivityStore()
	courseStore := mocks.NewMockCourseStore()

	assert.Panics(t, func() {
		NewGradeAggregatorService(nil, gradeRepo, activityStore, courseStore, slog.Default())
	})
	assert.Panics(t, func() {
		NewGradeAggregatorService(&sql.DB{}, nil, activityStore, courseStore, slog.Default())
	})
	assert.Panics(t, func() {
		NewGradeAggregatorService(&sql.DB{}, gradeRepo, nil, courseStore, slog.Default())
	})
	assert.Panics(t, func() {
		NewGradeAggregatorService(&sql.DB{}, gradeRepo, activityStore, nil, slog.Default())
	})

	assert.NotPanics(t, func() {
		NewGradeAggregatorService(&sql.DB{}, gradeRepo, activityStore, courseStore, nil)
	})
}

func TestRecomputeForParameter_ParameterNotFound(t *testing.T) {
	svc := NewGradeAggregatorService(
		&sql.DB{},
		mocks.NewMockGradeRepository(),
		mocks.NewMockActivityStore(),
		mocks.NewMockCourseStore(),
		slog.Default(),
	)

	err := svc.RecomputeForParameter(context.Background(), uuid.New(), uuid.New())
	assert.ErrorIs(t, err, ErrParameterNotFound)
}

// cascadeFixture drives the full cascade through an InMemoryGradeRepository,
// which computes means and weighted sums the way the SQL does. Each attempt
// runs under a shared mutex so interleavings match what SERIALIZABLE
// transactions allow.
type cascadeFixture struct {
	svc           *gradeAggregatorImpl
	repo          *mocks.InMemoryGradeRepository
	activityStore *mocks.MockActivityStore
	courseStore   *mocks.MockCourseStore

	courseID  uuid.UUID
	subjectID uuid.UUID
}

func newCascadeFixture(t *testing.T) *cascadeFixture {
	t.Helper()

	f := &cascadeFixture{
		repo:          mocks.NewInMemoryGradeRepository(),
		activityStore: mocks.NewMockActivityStore(),
		courseStore:   mocks.NewMockCourseStore(),
		courseID:      uuid.New(),
		subjectID:     uuid.New(),
	}
	f.courseStore.Subjects = append(f.courseStore.Subjects, domain.Subject{
		ID:       f.subjectID,
		CourseID: f.courseID,
		Name:     "Matemáticas",
	})

	svc, ok := NewGradeAggregatorService(
		&sql.DB{}, f.repo, f.activityStore, f.courseStore, slog.Default(),
	).(*gradeAggregatorImpl)
	require.True(t, ok)

	var txMu sync.Mutex
	svc.runTx = func(ctx context.Context, fn store.TxFn) error {
		txMu.Lock()
		defer txMu.Unlock()
		return fn(ctx, nil)
	}
	f.svc = svc

	return f
}

func (f *cascadeFixture) addParameter(name string, weight float64) *domain.Parameter {
	parameter := &domain.Parameter{
		ID:       uuid.New(),
		CourseID: f.courseID,
		Name:     name,
		Weight:   weight,
	}
	f.activityStore.Parameters[parameter.ID] = parameter
	f.repo.AddParameter(parameter)
	return parameter
}

func (f *cascadeFixture) addActivity(parameterID uuid.UUID, name string) *domain.Activity {
	activity := &domain.Activity{
		ID:          uuid.New(),
		ParameterID: parameterID,
		Name:        name,
		Active:      true,
	}
	f.activityStore.Activities[activity.ID] = activity
	f.repo.AddActivity(activity)
	return activity
}

func (f *cascadeFixture) parameterGrades(t *testing.T, userID uuid.UUID) map[uuid.UUID]domain.ParameterGrade {
	t.Helper()
	grades, err := f.repo.ListParameterGrades(context.Background(), f.courseID, userID)
	require.NoError(t, err)
	return grades
}

func TestRecomputeForParameter_WeightedCascade(t *testing.T) {
	f := newCascadeFixture(t)
	userID := uuid.New()
	ctx := context.Background()

	tareas := f.addParameter("Tareas", 40)
	examenes := f.addParameter("Exámenes", 60)
	homework1 := f.addActivity(tareas.ID, "Tarea 1")
	homework2 := f.addActivity(tareas.ID, "Tarea 2")
	exam := f.addActivity(examenes.ID, "Examen final")

	f.repo.SetFinalGrade(userID, homework1.ID, 75)
	f.repo.SetFinalGrade(userID, homework2.ID, 85)
	f.repo.SetFinalGrade(userID, exam.ID, 90)

	require.NoError(t, f.svc.RecomputeForParameter(ctx, userID, tareas.ID))
	require.NoError(t, f.svc.RecomputeForParameter(ctx, userID, examenes.ID))

	grades := f.parameterGrades(t, userID)
	require.Contains(t, grades, tareas.ID)
	require.Contains(t, grades, examenes.ID)
	assert.InDelta(t, 80.00, grades[tareas.ID].Grade, 1e-9)
	assert.InDelta(t, 90.00, grades[examenes.ID].Grade, 1e-9)

	subject, err := f.repo.GetSubjectGrade(ctx, f.subjectID, userID)
	require.NoError(t, err)
	assert.InDelta(t, 86.00, subject.Grade, 1e-9)
}

func TestRecomputeForParameter_UngradedActivitiesStayOutOfMean(t *testing.T) {
	f := newCascadeFixture(t)
	userID := uuid.New()
	ctx := context.Background()

	tareas := f.addParameter("Tareas", 100)
	graded := f.addActivity(tareas.ID, "Tarea 1")
	f.addActivity(tareas.ID, "Tarea 2") // never graded

	f.repo.SetFinalGrade(userID, graded.ID, 80)

	require.NoError(t, f.svc.RecomputeForParameter(ctx, userID, tareas.ID))

	grades := f.parameterGrades(t, userID)
	require.Contains(t, grades, tareas.ID)
	assert.InDelta(t, 80.00, grades[tareas.ID].Grade, 1e-9)

	subject, err := f.repo.GetSubjectGrade(ctx, f.subjectID, userID)
	require.NoError(t, err)
	assert.InDelta(t, 80.00, subject.Grade, 1e-9)
}

func TestRecomputeForParameter_NoGradedActivitiesWritesNothing(t *testing.T) {
	f := newCascadeFixture(t)
	userID := uuid.New()
	ctx := context.Background()

	tareas := f.addParameter("Tareas", 100)
	f.addActivity(tareas.ID, "Tarea 1")

	require.NoError(t, f.svc.RecomputeForParameter(ctx, userID, tareas.ID))

	assert.Empty(t, f.parameterGrades(t, userID))

	_, err := f.repo.GetSubjectGrade(ctx, f.subjectID, userID)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

// Completing two activities in either order must land on the same final
// grades once both cascades have run.
func TestRecomputeForParameter_CompletionOrderIsIrrelevant(t *testing.T) {
	run := func(t *testing.T, firstHomework bool) (float64, float64) {
		f := newCascadeFixture(t)
		userID := uuid.New()
		ctx := context.Background()

		tareas := f.addParameter("Tareas", 40)
		examenes := f.addParameter("Exámenes", 60)
		homework := f.addActivity(tareas.ID, "Tarea 1")
		exam := f.addActivity(examenes.ID, "Examen final")

		complete := func(activityID, parameterID uuid.UUID, grade float64) {
			f.repo.SetFinalGrade(userID, activityID, grade)
			require.NoError(t, f.svc.RecomputeForParameter(ctx, userID, parameterID))
		}

		if firstHomework {
			complete(homework.ID, tareas.ID, 80)
			complete(exam.ID, examenes.ID, 90)
		} else {
			complete(exam.ID, examenes.ID, 90)
			complete(homework.ID, tareas.ID, 80)
		}

		grades := f.parameterGrades(t, userID)
		require.Contains(t, grades, tareas.ID)
		subject, err := f.repo.GetSubjectGrade(ctx, f.subjectID, userID)
		require.NoError(t, err)
		return grades[tareas.ID].Grade, subject.Grade
	}

	homeworkFirst, subjectFirst := run(t, true)
	examFirst, subjectSecond := run(t, false)

	assert.Equal(t, homeworkFirst, examFirst)
	assert.Equal(t, subjectFirst, subjectSecond)
	assert.InDelta(t, 86.00, subjectFirst, 1e-9)
}

// Two cascades racing for the same user converge on the grades a sequential
// run would produce.
func TestRecomputeForParameter_ConcurrentCompletionsConverge(t *testing.T) {
	f := newCascadeFixture(t)
	userID := uuid.New()
	ctx := context.Background()

	tareas := f.addParameter("Tareas", 40)
	examenes := f.addParameter("Exámenes", 60)
	homework1 := f.addActivity(tareas.ID, "Tarea 1")
	homework2 := f.addActivity(tareas.ID, "Tarea 2")
	exam := f.addActivity(examenes.ID, "Examen final")

	f.repo.SetFinalGrade(userID, homework1.ID, 75)
	f.repo.SetFinalGrade(userID, homework2.ID, 85)
	f.repo.SetFinalGrade(userID, exam.ID, 90)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	wg.Add(2)
	go func() {
		defer wg.Done()
		errs[0] = f.svc.RecomputeForParameter(ctx, userID, tareas.ID)
	}()
	go func() {
		defer wg.Done()
		errs[1] = f.svc.RecomputeForParameter(ctx, userID, examenes.ID)
	}()
	wg.Wait()

	require.NoError(t, errs[0])
	require.NoError(t, errs[1])

	grades := f.parameterGrades(t, userID)
	require.Contains(t, grades, tareas.ID)
	require.Contains(t, grades, examenes.ID)
	assert.InDelta(t, 80.00, grades[tareas.ID].Grade, 1e-9)
	assert.InDelta(t, 90.00, grades[examenes.ID].Grade, 1e-9)

	subject, err := f.repo.GetSubjectGrade(ctx, f.subjectID, userID)
	require.NoError(t, err)
	assert.InDelta(t, 86.00, subject.Grade, 1e-9)
}
