package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/aulaops/aula-api/internal/domain"
	"github.com/aulaops/aula-api/internal/domain/lessonorder"
	"github.com/aulaops/aula-api/internal/store"
)

// ProgressService advances the per-student lesson-unlock state machine as
// lesson-consumption events arrive. Completing a lesson unlocks the next
// lesson in the course's natural order.
type ProgressService interface {
	// UpdateLessonProgress records the user's progress percentage for a
	// lesson. Reaching 100 marks the lesson completed and unlocks the next
	// lesson in order. Progress never moves backwards.
	//
	// Returns:
	//   - ErrLessonNotFound: if the lesson does not exist
	//   - ErrProgressNotFound: if the user was never enrolled (no seeded row)
	UpdateLessonProgress(ctx context.Context, userID, lessonID uuid.UUID, progress float64) (*domain.UserLessonProgress, error)
}

// progressServiceImpl implements the ProgressService interface
type progressServiceImpl struct {
	courseStore   store.CourseStore
	progressStore store.ProgressStore
	logger        *slog.Logger
}

// NewProgressService creates a new ProgressService.
// It returns an error if any of the required dependencies are nil.
func NewProgressService(
	courseStore store.CourseStore,
	progressStore store.ProgressStore,
	logger *slog.Logger,
) (ProgressService, error) {
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

	return &progressServiceImpl{
		courseStore:   courseStore,
		progressStore: progressStore,
		logger:        logger.With("component", "progress_service"),
	}, nil
}

// UpdateLessonProgress upserts the lesson progress row and, when the
// lesson just completed, unlocks the next lesson in natural order.
func (s *progressServiceImpl) UpdateLessonProgress(
	ctx context.Context,
	userID, lessonID uuid.UUID,
	progress float64,
) (*domain.UserLessonProgress, error) {
	if progress < 0 || progress > 100 {
		return nil, NewServiceError("update_lesson_progress", "invalid progress value",
			domain.ErrInvalidProgress)
	}

	lesson, err := s.courseStore.GetLesson(ctx, lessonID)
	if err != nil {
		return nil, NewServiceError("update_lesson_progress", "failed to load lesson", err)
	}

	row, err := s.progressStore.GetLessonProgress(ctx, userID, lessonID)
	if err != nil {
		s.logger.Warn("lesson progress update without seeded row",
			"error", err,
			"user_id", userID,
			"lesson_id", lessonID)
		return nil, NewServiceError("update_lesson_progress", "failed to load progress row", err)
	}

	// Progress only moves forward; a stale or replayed event cannot
	// regress a lesson.
	if progress > row.Progress {
		row.Progress = progress
	}
	wasCompleted := row.IsCompleted
	if row.Progress >= 100 {
		row.Progress = 100
		row.IsCompleted = true
	}
	row.IsNew = false
	row.IsLocked = false
	row.LastUpdated = time.Now().UTC()

	if err := s.progressStore.UpsertLessonProgress(ctx, row); err != nil {
		return nil, NewServiceError("update_lesson_progress", "failed to save progress row", err)
	}

	if row.IsCompleted && !wasCompleted {
		if err := s.unlockNextLesson(ctx, userID, lesson); err != nil {
			// The completion itself is committed; a failed unlock is
			// corrected the next time progress for this lesson is reported.
			s.logger.Error("failed to unlock next lesson",
				"error", err,
				"user_id", userID,
				"lesson_id", lessonID)
		}
	}

	s.logger.Debug("lesson progress updated",
		"user_id", userID,
		"lesson_id", lessonID,
		"progress", row.Progress,
		"is_completed", row.IsCompleted)

	return row, nil
}

// unlockNextLesson finds the lesson following the completed one in natural
// order and unlocks its seeded row if it is still locked.
func (s *progressServiceImpl) unlockNextLesson(
	ctx context.Context,
	userID uuid.UUID,
	completed *domain.Lesson,
) error {
	lessons, err := s.courseStore.ListLessonsByCourse(ctx, completed.CourseID)
	if err != nil {
		return err
	}

	ordered := lessonorder.Sort(lessons)
	next := -1
	for i, lesson := range ordered {
		if lesson.ID == completed.ID {
			next = i + 1
			break
		}
	}
	if next < 0 || next >= len(ordered) {
		return nil
	}

	row, err := s.progressStore.GetLessonProgress(ctx, userID, ordered[next].ID)
	if err != nil {
		return err
	}
	if !row.IsLocked {
		return nil
	}

	row.IsLocked = false
	row.IsNew = true
	row.LastUpdated = time.Now().UTC()

	if err := s.progressStore.UpsertLessonProgress(ctx, row); err != nil {
		return err
	}

	s.logger.Info("next lesson unlocked",
		"user_id", userID,
		"lesson_id", ordered[next].ID,
		"lesson_title", ordered[next].Title)

	return nil
}
