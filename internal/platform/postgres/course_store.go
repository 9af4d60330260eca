package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/aulaops/aula-api/internal/domain"
	"github.com/aulaops/aula-api/internal/platform/logger"
	"github.com/aulaops/aula-api/internal/store"
)

// PostgresCourseStore implements the store.CourseStore interface
// using a PostgreSQL database as the storage backend.
type PostgresCourseStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresCourseStore creates a new PostgreSQL implementation of the CourseStore interface.
// It accepts a database connection or transaction that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresCourseStore(db store.DBTX, logger *slog.Logger) *PostgresCourseStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresCourseStore{
		db:     db,
		logger: logger.With(slog.String("component", "course_store")),
	}
}

// Ensure PostgresCourseStore implements store.CourseStore interface
var _ store.CourseStore = (*PostgresCourseStore)(nil)

// GetCourse implements store.CourseStore.GetCourse
// Returns store.ErrCourseNotFound if the course does not exist.
func (s *PostgresCourseStore) GetCourse(ctx context.Context, id uuid.UUID) (*domain.Course, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, title, created_at, updated_at
		FROM courses
		WHERE id = $1
	`

	var course domain.Course
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&course.ID,
		&course.Title,
		&course.CreatedAt,
		&course.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("course not found", slog.String("course_id", id.String()))
			return nil, store.ErrCourseNotFound
		}
		log.Error("failed to get course by ID",
			slog.String("error", err.Error()),
			slog.String("course_id", id.String()))
		return nil, MapError(err)
	}

	return &course, nil
}

// GetLesson implements store.CourseStore.GetLesson
// Returns store.ErrLessonNotFound if the lesson does not exist.
func (s *PostgresCourseStore) GetLesson(ctx context.Context, id uuid.UUID) (*domain.Lesson, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, course_id, title, duration, created_at, updated_at
		FROM lessons
		WHERE id = $1
	`

	var lesson domain.Lesson
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&lesson.ID,
		&lesson.CourseID,
		&lesson.Title,
		&lesson.Duration,
		&lesson.CreatedAt,
		&lesson.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("lesson not found", slog.String("lesson_id", id.String()))
			return nil, store.ErrLessonNotFound
		}
		log.Error("failed to get lesson by ID",
			slog.String("error", err.Error()),
			slog.String("lesson_id", id.String()))
		return nil, MapError(err)
	}

	return &lesson, nil
}

// ListLessonsByCourse implements store.CourseStore.ListLessonsByCourse
// It retrieves all lessons of a course in storage order.
func (s *PostgresCourseStore) ListLessonsByCourse(
	ctx context.Context,
	courseID uuid.UUID,
) ([]domain.Lesson, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, course_id, title, duration, created_at, updated_at
		FROM lessons
		WHERE course_id = $1
		ORDER BY created_at ASC
	`

	rows, err := s.db.QueryContext(ctx, query, courseID)
	if err != nil {
		log.Error("failed to query lessons by course",
			slog.String("error", err.Error()),
			slog.String("course_id", courseID.String()))
		return nil, MapError(err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	lessons := []domain.Lesson{}
	for rows.Next() {
		var lesson domain.Lesson
		err := rows.Scan(
			&lesson.ID,
			&lesson.CourseID,
			&lesson.Title,
			&lesson.Duration,
			&lesson.CreatedAt,
			&lesson.UpdatedAt,
		)
		if err != nil {
			log.Error("failed to scan lesson row",
				slog.String("error", err.Error()))
			return nil, MapError(err)
		}
		lessons = append(lessons, lesson)
	}

	if err := rows.Err(); err != nil {
		log.Error("error after scanning lesson rows",
			slog.String("error", err.Error()))
		return nil, MapError(err)
	}

	return lessons, nil
}

// GetSubject implements store.CourseStore.GetSubject
// Returns store.ErrSubjectNotFound if the subject does not exist.
func (s *PostgresCourseStore) GetSubject(ctx context.Context, id uuid.UUID) (*domain.Subject, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, course_id, name, created_at, updated_at
		FROM subjects
		WHERE id = $1
	`

	var subject domain.Subject
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&subject.ID,
		&subject.CourseID,
		&subject.Name,
		&subject.CreatedAt,
		&subject.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("subject not found", slog.String("subject_id", id.String()))
			return nil, store.ErrSubjectNotFound
		}
		log.Error("failed to get subject by ID",
			slog.String("error", err.Error()),
			slog.String("subject_id", id.String()))
		return nil, MapError(err)
	}

	return &subject, nil
}

// ListSubjectsByCourse implements store.CourseStore.ListSubjectsByCourse
// Returns an empty slice when the course has no linked subjects.
func (s *PostgresCourseStore) ListSubjectsByCourse(
	ctx context.Context,
	courseID uuid.UUID,
) ([]domain.Subject, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, course_id, name, created_at, updated_at
		FROM subjects
		WHERE course_id = $1
		ORDER BY name ASC
	`

	rows, err := s.db.QueryContext(ctx, query, courseID)
	if err != nil {
		log.Error("failed to query subjects by course",
			slog.String("error", err.Error()),
			slog.String("course_id", courseID.String()))
		return nil, MapError(err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	subjects := []domain.Subject{}
	for rows.Next() {
		var subject domain.Subject
		err := rows.Scan(
			&subject.ID,
			&subject.CourseID,
			&subject.Name,
			&subject.CreatedAt,
			&subject.UpdatedAt,
		)
		if err != nil {
			log.Error("failed to scan subject row",
				slog.String("error", err.Error()))
			return nil, MapError(err)
		}
		subjects = append(subjects, subject)
	}

	if err := rows.Err(); err != nil {
		log.Error("error after scanning subject rows",
			slog.String("error", err.Error()))
		return nil, MapError(err)
	}

	return subjects, nil
}
