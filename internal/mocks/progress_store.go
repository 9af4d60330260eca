package mocks

import (
	"context"
	"database/sql"
	"sync"

	"github.com/google/uuid"

	"github.com/aulaops/aula-api/internal/domain"
	"github.com/aulaops/aula-api/internal/store"
)

type progressKey struct {
	userID uuid.UUID
	itemID uuid.UUID
}

// MockProgressStore implements store.ProgressStore backed by in-memory maps.
type MockProgressStore struct {
	mu           sync.Mutex
	LessonRows   map[progressKey]domain.UserLessonProgress
	ActivityRows map[progressKey]domain.UserActivityProgress

	// CourseLessons and CourseActivities let the ListByCourse methods
	// resolve which rows belong to a course.
	CourseLessons    map[uuid.UUID]uuid.UUID // lessonID -> courseID
	CourseActivities map[uuid.UUID]uuid.UUID // activityID -> courseID

	// Custom behavior functions
	InsertLessonProgressIfAbsentFn func(ctx context.Context, progress *domain.UserLessonProgress) (bool, error)
	UpsertLessonProgressFn         func(ctx context.Context, progress *domain.UserLessonProgress) error
	UpsertActivityProgressFn       func(ctx context.Context, progress *domain.UserActivityProgress) error
}

// NewMockProgressStore creates an empty MockProgressStore.
func NewMockProgressStore() *MockProgressStore {
	return &MockProgressStore{
		LessonRows:       make(map[progressKey]domain.UserLessonProgress),
		ActivityRows:     make(map[progressKey]domain.UserActivityProgress),
		CourseLessons:    make(map[uuid.UUID]uuid.UUID),
		CourseActivities: make(map[uuid.UUID]uuid.UUID),
	}
}

func (m *MockProgressStore) InsertLessonProgressIfAbsent(
	ctx context.Context,
	progress *domain.UserLessonProgress,
) (bool, error) {
	if m.InsertLessonProgressIfAbsentFn != nil {
		return m.InsertLessonProgressIfAbsentFn(ctx, progress)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	key := progressKey{progress.UserID, progress.LessonID}
	if _, exists := m.LessonRows[key]; exists {
		return false, nil
	}
	m.LessonRows[key] = *progress
	return true, nil
}

func (m *MockProgressStore) GetLessonProgress(
	ctx context.Context,
	userID, lessonID uuid.UUID,
) (*domain.UserLessonProgress, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.LessonRows[progressKey{userID, lessonID}]
	if !ok {
		return nil, store.ErrProgressNotFound
	}
	return &row, nil
}

func (m *MockProgressStore) ListLessonProgressByCourse(
	ctx context.Context,
	userID, courseID uuid.UUID,
) (map[uuid.UUID]domain.UserLessonProgress, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make(map[uuid.UUID]domain.UserLessonProgress)
	for key, row := range m.LessonRows {
		if key.userID == userID && m.CourseLessons[key.itemID] == courseID {
			result[key.itemID] = row
		}
	}
	return result, nil
}

func (m *MockProgressStore) UpsertLessonProgress(
	ctx context.Context,
	progress *domain.UserLessonProgress,
) error {
	if m.UpsertLessonProgressFn != nil {
		return m.UpsertLessonProgressFn(ctx, progress)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LessonRows[progressKey{progress.UserID, progress.LessonID}] = *progress
	return nil
}

func (m *MockProgressStore) GetActivityProgress(
	ctx context.Context,
	userID, activityID uuid.UUID,
) (*domain.UserActivityProgress, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.ActivityRows[progressKey{userID, activityID}]
	if !ok {
		return nil, store.ErrProgressNotFound
	}
	return &row, nil
}

func (m *MockProgressStore) ListActivityProgressByCourse(
	ctx context.Context,
	userID, courseID uuid.UUID,
) (map[uuid.UUID]domain.UserActivityProgress, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make(map[uuid.UUID]domain.UserActivityProgress)
	for key, row := range m.ActivityRows {
		if key.userID == userID && m.CourseActivities[key.itemID] == courseID {
			result[key.itemID] = row
		}
	}
	return result, nil
}

func (m *MockProgressStore) UpsertActivityProgress(
	ctx context.Context,
	progress *domain.UserActivityProgress,
) error {
	if m.UpsertActivityProgressFn != nil {
		return m.UpsertActivityProgressFn(ctx, progress)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ActivityRows[progressKey{progress.UserID, progress.ActivityID}] = *progress
	return nil
}

func (m *MockProgressStore) WithTx(tx *sql.Tx) store.ProgressStore {
	return m
}
