package service

import (
	"context"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aulaops/aula-api/internal/domain"
	"github.com/aulaops/aula-api/internal/mocks"
)

type progressFixture struct {
	courseStore   *mocks.MockCourseStore
	progressStore *mocks.MockProgressStore
	service       ProgressService

	userID   uuid.UUID
	courseID uuid.UUID
	lessons  []domain.Lesson
}

func newProgressFixture(t *testing.T, titles ...string) *progressFixture {
	t.Helper()

	f := &progressFixture{
		courseStore:   mocks.NewMockCourseStore(),
		progressStore: mocks.NewMockProgressStore(),
		userID:        uuid.New(),
	}
	f.courseID, f.lessons = newTestCourse(t, f.courseStore, titles...)

	// Seed the rows the way enrollment initialization would.
	enrollment, err := NewEnrollmentService(f.courseStore, f.progressStore, slog.Default())
	require.NoError(t, err)
	require.NoError(t, enrollment.InitializeEnrollment(context.Background(), f.userID, f.courseID))

	svc, err := NewProgressService(f.courseStore, f.progressStore, slog.Default())
	require.NoError(t, err)
	f.service = svc
	return f
}

func TestUpdateLessonProgress_AdvancesProgress(t *testing.T) {
	f := newProgressFixture(t, "Clase 1", "Clase 2")

	row, err := f.service.UpdateLessonProgress(context.Background(), f.userID, f.lessons[0].ID, 40)
	require.NoError(t, err)
	assert.Equal(t, 40.0, row.Progress)
	assert.False(t, row.IsCompleted)
	assert.False(t, row.IsNew)
}

func TestUpdateLessonProgress_NeverMovesBackwards(t *testing.T) {
	f := newProgressFixture(t, "Clase 1", "Clase 2")
	ctx := context.Background()

	_, err := f.service.UpdateLessonProgress(ctx, f.userID, f.lessons[0].ID, 70)
	require.NoError(t, err)

	// A stale replayed event with lower progress is absorbed.
	row, err := f.service.UpdateLessonProgress(ctx, f.userID, f.lessons[0].ID, 30)
	require.NoError(t, err)
	assert.Equal(t, 70.0, row.Progress)
}

func TestUpdateLessonProgress_CompletionUnlocksNextLesson(t *testing.T) {
	f := newProgressFixture(t, "Clase 1", "Clase 2", "Clase 3")
	ctx := context.Background()

	row, err := f.service.UpdateLessonProgress(ctx, f.userID, f.lessons[0].ID, 100)
	require.NoError(t, err)
	assert.True(t, row.IsCompleted)

	next, err := f.progressStore.GetLessonProgress(ctx, f.userID, f.lessons[1].ID)
	require.NoError(t, err)
	assert.False(t, next.IsLocked)
	assert.True(t, next.IsNew)

	// The lesson after next stays locked.
	third, err := f.progressStore.GetLessonProgress(ctx, f.userID, f.lessons[2].ID)
	require.NoError(t, err)
	assert.True(t, third.IsLocked)
}

func TestUpdateLessonProgress_LastLessonHasNoNext(t *testing.T) {
	f := newProgressFixture(t, "Clase 1", "Clase 2")
	ctx := context.Background()

	_, err := f.service.UpdateLessonProgress(ctx, f.userID, f.lessons[0].ID, 100)
	require.NoError(t, err)

	row, err := f.service.UpdateLessonProgress(ctx, f.userID, f.lessons[1].ID, 100)
	require.NoError(t, err)
	assert.True(t, row.IsCompleted)
}

func TestUpdateLessonProgress_RepeatedCompletionDoesNotRelockNext(t *testing.T) {
	f := newProgressFixture(t, "Clase 1", "Clase 2")
	ctx := context.Background()

	_, err := f.service.UpdateLessonProgress(ctx, f.userID, f.lessons[0].ID, 100)
	require.NoError(t, err)

	// The student opens the unlocked lesson, clearing its IsNew flag.
	_, err = f.service.UpdateLessonProgress(ctx, f.userID, f.lessons[1].ID, 10)
	require.NoError(t, err)

	// Replaying the completion of lesson 1 must not flip lesson 2 back
	// to new: the row was already completed, so no unlock pass runs.
	_, err = f.service.UpdateLessonProgress(ctx, f.userID, f.lessons[0].ID, 100)
	require.NoError(t, err)

	next, err := f.progressStore.GetLessonProgress(ctx, f.userID, f.lessons[1].ID)
	require.NoError(t, err)
	assert.False(t, next.IsNew)
	assert.Equal(t, 10.0, next.Progress)
}

func TestUpdateLessonProgress_RejectsOutOfRange(t *testing.T) {
	f := newProgressFixture(t, "Clase 1")

	_, err := f.service.UpdateLessonProgress(context.Background(), f.userID, f.lessons[0].ID, 101)
	assert.ErrorIs(t, err, domain.ErrInvalidProgress)

	_, err = f.service.UpdateLessonProgress(context.Background(), f.userID, f.lessons[0].ID, -1)
	assert.ErrorIs(t, err, domain.ErrInvalidProgress)
}

func TestUpdateLessonProgress_LessonNotFound(t *testing.T) {
	f := newProgressFixture(t, "Clase 1")

	_, err := f.service.UpdateLessonProgress(context.Background(), f.userID, uuid.New(), 50)
	assert.ErrorIs(t, err, ErrLessonNotFound)
}

func TestUpdateLessonProgress_WithoutSeededRow(t *testing.T) {
	f := newProgressFixture(t, "Clase 1")

	// Another user was never enrolled.
	_, err := f.service.UpdateLessonProgress(context.Background(), uuid.New(), f.lessons[0].ID, 50)
	assert.ErrorIs(t, err, ErrProgressNotFound)
}
