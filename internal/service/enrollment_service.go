package service

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/aulaops/aula-api/internal/domain"
	"github.com/aulaops/aula-api/internal/domain/lessonorder"
	"github.com/aulaops/aula-api/internal/store"
)

// EnrollmentService seeds the per-student lesson-unlock state when an
// enrollment-created event arrives. The enrollment record itself is owned
// by an external collaborator; this service only writes progress rows.
type EnrollmentService interface {
	// InitializeEnrollment creates the user's lesson progress rows for a
	// course. It is idempotent: re-invocation for an already-enrolled user
	// leaves existing rows byte-for-byte unchanged.
	InitializeEnrollment(ctx context.Context, userID, courseID uuid.UUID) error
}

// enrollmentServiceImpl implements the EnrollmentService interface
type enrollmentServiceImpl struct {
	courseStore   store.CourseStore
	progressStore store.ProgressStore
	logger        *slog.Logger
}

// NewEnrollmentService creates a new EnrollmentService.
// It returns an error if any of the required dependencies are nil.
func NewEnrollmentService(
	courseStore store.CourseStore,
	progressStore store.ProgressStore,
	logger *slog.Logger,
) (EnrollmentService, error) {
	if courseStore == nil {
		return nil, &ServiceError{
			Operation: "create_service",
			Message:   "courseStore cannot be nil",
		}
	}
	if progressStore == nil {
		return nil, &ServiceError{
			Operation: "create_service",
			Message:   "progressStore cannot be nil",
		}
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &enrollmentServiceImpl{
		courseStore:   courseStore,
		progressStore: progressStore,
		logger:        logger.With("component", "enrollment_service"),
	}, nil
}

// InitializeEnrollment seeds one UserLessonProgress row per lesson of the
// course, in natural order. The first lesson in order, and any lesson whose
// title marks it as a welcome lesson, start unlocked; everything else starts
// locked. Rows are created with an insert-if-absent primitive so two
// concurrent invocations for the same user cannot clobber each other.
func (s *enrollmentServiceImpl) InitializeEnrollment(
	ctx context.Context,
	userID, courseID uuid.UUID,
) error {
	if _, err := s.courseStore.GetCourse(ctx, courseID); err != nil {
		s.logger.Error("failed to load course for enrollment",
			"error", err,
			"user_id", userID,
			"course_id", courseID)
		return NewServiceError("initialize_enrollment", "failed to load course", err)
	}

	lessons, err := s.courseStore.ListLessonsByCourse(ctx, courseID)
	if err != nil {
		s.logger.Error("failed to list lessons for enrollment",
			"error", err,
			"user_id", userID,
			"course_id", courseID)
		return NewServiceError("initialize_enrollment", "failed to list lessons", err)
	}

	ordered := lessonorder.Sort(lessons)

	created := 0
	for i, lesson := range ordered {
		var progress *domain.UserLessonProgress
		if i == 0 || lessonorder.IsWelcome(lesson.Title) {
			progress = domain.NewUnlockedLessonProgress(userID, lesson.ID)
		} else {
			progress = domain.NewLockedLessonProgress(userID, lesson.ID)
		}

		wasCreated, err := s.progressStore.InsertLessonProgressIfAbsent(ctx, progress)
		if err != nil {
			s.logger.Error("failed to seed lesson progress",
				"error", err,
				"user_id", userID,
				"lesson_id", lesson.ID)
			return NewServiceError("initialize_enrollment", "failed to seed lesson progress", err)
		}
		if wasCreated {
			created++
		}
	}

	s.logger.Info("enrollment initialized",
		"user_id", userID,
		"course_id", courseID,
		"lesson_count", len(ordered),
		"rows_created", created)

	return nil
}
