package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/aulaops/aula-api/internal/domain"
)

// ProgressStore owns the per-user-per-lesson and per-user-per-activity
// progress rows. All writes are idempotent upserts implemented with the
// storage layer's atomic insert-or-update primitive, never with a
// read-then-write in application code.
type ProgressStore interface {
	// InsertLessonProgressIfAbsent creates the lesson progress row only if
	// no row exists for (userID, lessonID). Existing rows are left
	// byte-for-byte unchanged. Returns true when a row was created.
	InsertLessonProgressIfAbsent(ctx context.Context, progress *domain.UserLessonProgress) (bool, error)

	// GetLessonProgress retrieves the progress row for (userID, lessonID).
	// Returns ErrProgressNotFound if the row does not exist.
	GetLessonProgress(ctx context.Context, userID, lessonID uuid.UUID) (*domain.UserLessonProgress, error)

	// ListLessonProgressByCourse retrieves all of the user's lesson
	// progress rows for a course, keyed by lesson ID.
	ListLessonProgressByCourse(ctx context.Context, userID, courseID uuid.UUID) (map[uuid.UUID]domain.UserLessonProgress, error)

	// UpsertLessonProgress inserts or replaces the lesson progress row.
	// Used by lesson-consumption events; recomputation always replaces.
	UpsertLessonProgress(ctx context.Context, progress *domain.UserLessonProgress) error

	// GetActivityProgress retrieves the progress row for (userID, activityID).
	// Returns ErrProgressNotFound if the row does not exist.
	GetActivityProgress(ctx context.Context, userID, activityID uuid.UUID) (*domain.UserActivityProgress, error)

	// ListActivityProgressByCourse retrieves all of the user's activity
	// progress rows for a course, keyed by activity ID.
	ListActivityProgressByCourse(ctx context.Context, userID, courseID uuid.UUID) (map[uuid.UUID]domain.UserActivityProgress, error)

	// UpsertActivityProgress inserts or replaces the activity progress row
	// keyed by (userID, activityID). Applying the same row twice produces
	// the same end state.
	UpsertActivityProgress(ctx context.Context, progress *domain.UserActivityProgress) error

	// WithTx returns a new ProgressStore instance that uses the provided
	// transaction.
	WithTx(tx *sql.Tx) ProgressStore
}
