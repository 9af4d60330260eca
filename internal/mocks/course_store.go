package mocks

import (
	"context"

	"github.com/google/uuid"

	"github.com/aulaops/aula-api/internal/domain"
	"github.com/aulaops/aula-api/internal/store"
)

// MockCourseStore implements store.CourseStore backed by in-memory maps.
type MockCourseStore struct {
	Courses  map[uuid.UUID]*domain.Course
	Lessons  []domain.Lesson
	Subjects []domain.Subject

	// Custom behavior functions
	GetCourseFn            func(ctx context.Context, id uuid.UUID) (*domain.Course, error)
	GetLessonFn            func(ctx context.Context, id uuid.UUID) (*domain.Lesson, error)
	ListLessonsByCourseFn  func(ctx context.Context, courseID uuid.UUID) ([]domain.Lesson, error)
	GetSubjectFn           func(ctx context.Context, id uuid.UUID) (*domain.Subject, error)
	ListSubjectsByCourseFn func(ctx context.Context, courseID uuid.UUID) ([]domain.Subject, error)
}

// NewMockCourseStore creates an empty MockCourseStore.
func NewMockCourseStore() *MockCourseStore {
	return &MockCourseStore{
		Courses: make(map[uuid.UUID]*domain.Course),
	}
}

func (m *MockCourseStore) GetCourse(ctx context.Context, id uuid.UUID) (*domain.Course, error) {
	if m.GetCourseFn != nil {
		return m.GetCourseFn(ctx, id)
	}
	course, ok := m.Courses[id]
	if !ok {
		return nil, store.ErrCourseNotFound
	}
	return course, nil
}

func (m *MockCourseStore) GetLesson(ctx context.Context, id uuid.UUID) (*domain.Lesson, error) {
	if m.GetLessonFn != nil {
		return m.GetLessonFn(ctx, id)
	}
	for i := range m.Lessons {
		if m.Lessons[i].ID == id {
			lesson := m.Lessons[i]
			return &lesson, nil
		}
	}
	return nil, store.ErrLessonNotFound
}

func (m *MockCourseStore) ListLessonsByCourse(
	ctx context.Context,
	courseID uuid.UUID,
) ([]domain.Lesson, error) {
	if m.ListLessonsByCourseFn != nil {
		return m.ListLessonsByCourseFn(ctx, courseID)
	}
	var lessons []domain.Lesson
	for _, lesson := range m.Lessons {
		if lesson.CourseID == courseID {
			lessons = append(lessons, lesson)
		}
	}
	return lessons, nil
}

func (m *MockCourseStore) GetSubject(ctx context.Context, id uuid.UUID) (*domain.Subject, error) {
	if m.GetSubjectFn != nil {
		return m.GetSubjectFn(ctx, id)
	}
	for i := range m.Subjects {
		if m.Subjects[i].ID == id {
			subject := m.Subjects[i]
			return &subject, nil
		}
	}
	return nil, store.ErrSubjectNotFound
}

func (m *MockCourseStore) ListSubjectsByCourse(
	ctx context.Context,
	courseID uuid.UUID,
) ([]domain.Subject, error) {
	if m.ListSubjectsByCourseFn != nil {
		return m.ListSubjectsByCourseFn(ctx, courseID)
	}
	var subjects []domain.Subject
	for _, subject := range m.Subjects {
		if subject.CourseID == courseID {
			subjects = append(subjects, subject)
		}
	}
	return subjects, nil
}
