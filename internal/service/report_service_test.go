package service

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aulaops/aula-api/internal/domain"
	"github.com/aulaops/aula-api/internal/mocks"
)

type reportFixture struct {
	courseStore   *mocks.MockCourseStore
	activityStore *mocks.MockActivityStore
	progressStore *mocks.MockProgressStore
	gradeRepo     *mocks.MockGradeRepository
	service       ReportService

	userID    uuid.UUID
	courseID  uuid.UUID
	subjectID uuid.UUID
}

func newReportFixture(t *testing.T) *reportFixture {
	t.Helper()

	f := &reportFixture{
		courseStore:   mocks.NewMockCourseStore(),
		activityStore: mocks.NewMockActivityStore(),
		progressStore: mocks.NewMockProgressStore(),
		gradeRepo:     mocks.NewMockGradeRepository(),
		userID:        uuid.New(),
		courseID:      uuid.New(),
		subjectID:     uuid.New(),
	}

	f.courseStore.Courses[f.courseID] = &domain.Course{ID: f.courseID, Title: "Historia"}
	f.courseStore.Subjects = append(f.courseStore.Subjects, domain.Subject{
		ID:       f.subjectID,
		CourseID: f.courseID,
		Name:     "Historia Universal",
	})

	svc, err := NewReportService(
		f.courseStore,
		f.activityStore,
		f.progressStore,
		f.gradeRepo,
		slog.Default(),
	)
	require.NoError(t, err)
	f.service = svc
	return f
}

func (f *reportFixture) addParameter(name string, weight float64) uuid.UUID {
	id := uuid.New()
	f.activityStore.Parameters[id] = &domain.Parameter{
		ID:       id,
		CourseID: f.courseID,
		Name:     name,
		Weight:   weight,
	}
	return id
}

func (f *reportFixture) addActivity(parameterID uuid.UUID, name string, weight float64) uuid.UUID {
	id := uuid.New()
	f.activityStore.Activities[id] = &domain.Activity{
		ID:          id,
		ParameterID: parameterID,
		Name:        name,
		Weight:      weight,
		Active:      true,
	}
	return id
}

func TestGetSubjectReport_AssemblesBreakdown(t *testing.T) {
	f := newReportFixture(t)
	parameterID := f.addParameter("Tareas", 60)
	activityID := f.addActivity(parameterID, "Tarea 1", 100)

	f.gradeRepo.SubjectGrades[f.subjectID] = domain.SubjectGrade{
		SubjectID: f.subjectID,
		UserID:    f.userID,
		Grade:     86,
	}
	f.gradeRepo.ParameterGrades[parameterID] = domain.ParameterGrade{
		ParameterID: parameterID,
		UserID:      f.userID,
		Grade:       86,
	}

	grade := 86.0
	f.progressStore.CourseActivities[activityID] = f.courseID
	require.NoError(t, f.progressStore.UpsertActivityProgress(context.Background(), &domain.UserActivityProgress{
		UserID:        f.userID,
		ActivityID:    activityID,
		Progress:      100,
		IsCompleted:   true,
		FinalGrade:    &grade,
		AttemptCount:  1,
		LastAttemptAt: time.Now().UTC(),
	}))

	report, err := f.service.GetSubjectReport(context.Background(), f.subjectID, f.userID)
	require.NoError(t, err)

	assert.Equal(t, "Historia Universal", report.SubjectName)
	assert.Equal(t, 86.0, report.Grade)

	require.Len(t, report.Parameters, 1)
	assert.Equal(t, "Tareas", report.Parameters[0].Name)
	assert.Equal(t, 60.0, report.Parameters[0].Weight)
	require.NotNil(t, report.Parameters[0].Grade)
	assert.Equal(t, 86.0, *report.Parameters[0].Grade)

	require.Len(t, report.Activities, 1)
	assert.Equal(t, "Tarea 1", report.Activities[0].Name)
	require.NotNil(t, report.Activities[0].Grade)
	assert.Equal(t, 86.0, *report.Activities[0].Grade)
}

func TestGetSubjectReport_UngradedRowsAreNilNotZero(t *testing.T) {
	f := newReportFixture(t)
	parameterID := f.addParameter("Exámenes", 40)
	f.addActivity(parameterID, "Examen final", 100)

	report, err := f.service.GetSubjectReport(context.Background(), f.subjectID, f.userID)
	require.NoError(t, err)

	// No subject grade computed yet: overall grade reports as zero value,
	// parameter and activity grades stay nil.
	assert.Equal(t, 0.0, report.Grade)
	require.Len(t, report.Parameters, 1)
	assert.Nil(t, report.Parameters[0].Grade)
	require.Len(t, report.Activities, 1)
	assert.Nil(t, report.Activities[0].Grade)
}

func TestGetSubjectReport_SubjectNotFound(t *testing.T) {
	f := newReportFixture(t)

	_, err := f.service.GetSubjectReport(context.Background(), uuid.New(), f.userID)
	assert.ErrorIs(t, err, ErrSubjectNotFound)
}

func TestGetSubjectReport_EmptyCourse(t *testing.T) {
	f := newReportFixture(t)

	report, err := f.service.GetSubjectReport(context.Background(), f.subjectID, f.userID)
	require.NoError(t, err)
	assert.Empty(t, report.Parameters)
	assert.Empty(t, report.Activities)
}
