package store

import (
	"context"

	"github.com/google/uuid"

	"github.com/aulaops/aula-api/internal/domain"
)

// CourseStore defines the read operations for courses, their lessons and
// the subjects linked to them. Course/lesson/subject authoring is owned by
// the external admin CRUD surface; the engine only reads them.
type CourseStore interface {
	// GetCourse retrieves a course by its unique ID.
	// Returns ErrCourseNotFound if the course does not exist.
	GetCourse(ctx context.Context, id uuid.UUID) (*domain.Course, error)

	// GetLesson retrieves a lesson by its unique ID.
	// Returns ErrLessonNotFound if the lesson does not exist.
	GetLesson(ctx context.Context, id uuid.UUID) (*domain.Lesson, error)

	// ListLessonsByCourse retrieves all lessons of a course, in storage
	// order. Callers needing the natural order apply lessonorder.Sort.
	ListLessonsByCourse(ctx context.Context, courseID uuid.UUID) ([]domain.Lesson, error)

	// GetSubject retrieves a subject by its unique ID.
	// Returns ErrSubjectNotFound if the subject does not exist.
	GetSubject(ctx context.Context, id uuid.UUID) (*domain.Subject, error)

	// ListSubjectsByCourse retrieves all subjects linked to a course.
	// Returns an empty slice when the course has no linked subjects.
	ListSubjectsByCourse(ctx context.Context, courseID uuid.UUID) ([]domain.Subject, error)
}
