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

// PostgresProgressStore implements the store.ProgressStore interface
// using a PostgreSQL database as the storage backend. All writes use the
// database's atomic insert-or-update primitives so concurrent invocations
// for the same key cannot lose updates.
type PostgresProgressStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresProgressStore creates a new PostgreSQL implementation of the ProgressStore interface.
// It accepts a database connection or transaction that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresProgressStore(db store.DBTX, logger *slog.Logger) *PostgresProgressStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresProgressStore{
		db:     db,
		logger: logger.With(slog.String("component", "progress_store")),
	}
}

// Ensure PostgresProgressStore implements store.ProgressStore interface
var _ store.ProgressStore = (*PostgresProgressStore)(nil)

// WithTx implements store.ProgressStore.WithTx
func (s *PostgresProgressStore) WithTx(tx *sql.Tx) store.ProgressStore {
	return &PostgresProgressStore{
		db:     tx,
		logger: s.logger,
	}
}

// InsertLessonProgressIfAbsent implements store.ProgressStore.InsertLessonProgressIfAbsent
// It creates the row only when no row exists for (userID, lessonID), using
// ON CONFLICT DO NOTHING so a concurrent duplicate insert is a no-op rather
// than an error. Returns true when a row was created.
func (s *PostgresProgressStore) InsertLessonProgressIfAbsent(
	ctx context.Context,
	progress *domain.UserLessonProgress,
) (bool, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := progress.Validate(); err != nil {
		log.Warn("lesson progress validation failed during insert",
			slog.String("error", err.Error()),
			slog.String("user_id", progress.UserID.String()),
			slog.String("lesson_id", progress.LessonID.String()))
		return false, err
	}

	query := `
		INSERT INTO user_lesson_progress
			(user_id, lesson_id, progress, is_completed, is_locked, is_new, last_updated)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (user_id, lesson_id) DO NOTHING
	`

	result, err := s.db.ExecContext(
		ctx,
		query,
		progress.UserID,
		progress.LessonID,
		progress.Progress,
		progress.IsCompleted,
		progress.IsLocked,
		progress.IsNew,
		progress.LastUpdated,
	)

	if err != nil {
		log.Error("failed to insert lesson progress",
			slog.String("error", err.Error()),
			slog.String("user_id", progress.UserID.String()),
			slog.String("lesson_id", progress.LessonID.String()))
		return false, MapError(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		log.Error("failed to get rows affected",
			slog.String("error", err.Error()))
		return false, MapError(err)
	}

	return rowsAffected > 0, nil
}

// GetLessonProgress implements store.ProgressStore.GetLessonProgress
// Returns store.ErrProgressNotFound if the row does not exist.
func (s *PostgresProgressStore) GetLessonProgress(
	ctx context.Context,
	userID, lessonID uuid.UUID,
) (*domain.UserLessonProgress, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT user_id, lesson_id, progress, is_completed, is_locked, is_new, last_updated
		FROM user_lesson_progress
		WHERE user_id = $1 AND lesson_id = $2
	`

	var progress domain.UserLessonProgress
	err := s.db.QueryRowContext(ctx, query, userID, lessonID).Scan(
		&progress.UserID,
		&progress.LessonID,
		&progress.Progress,
		&progress.IsCompleted,
		&progress.IsLocked,
		&progress.IsNew,
		&progress.LastUpdated,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrProgressNotFound
		}
		log.Error("failed to get lesson progress",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()),
			slog.String("lesson_id", lessonID.String()))
		return nil, MapError(err)
	}

	return &progress, nil
}

// ListLessonProgressByCourse implements store.ProgressStore.ListLessonProgressByCourse
func (s *PostgresProgressStore) ListLessonProgressByCourse(
	ctx context.Context,
	userID, courseID uuid.UUID,
) (map[uuid.UUID]domain.UserLessonProgress, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT p.user_id, p.lesson_id, p.progress, p.is_completed, p.is_locked, p.is_new, p.last_updated
		FROM user_lesson_progress p
		JOIN lessons l ON l.id = p.lesson_id
		WHERE p.user_id = $1 AND l.course_id = $2
	`

	rows, err := s.db.QueryContext(ctx, query, userID, courseID)
	if err != nil {
		log.Error("failed to query lesson progress by course",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()),
			slog.String("course_id", courseID.String()))
		return nil, MapError(err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	progressByLesson := make(map[uuid.UUID]domain.UserLessonProgress)
	for rows.Next() {
		var progress domain.UserLessonProgress
		err := rows.Scan(
			&progress.UserID,
			&progress.LessonID,
			&progress.Progress,
			&progress.IsCompleted,
			&progress.IsLocked,
			&progress.IsNew,
			&progress.LastUpdated,
		)
		if err != nil {
			log.Error("failed to scan lesson progress row",
				slog.String("error", err.Error()))
			return nil, MapError(err)
		}
		progressByLesson[progress.LessonID] = progress
	}

	if err := rows.Err(); err != nil {
		log.Error("error after scanning lesson progress rows",
			slog.String("error", err.Error()))
		return nil, MapError(err)
	}

	return progressByLesson, nil
}

// UpsertLessonProgress implements store.ProgressStore.UpsertLessonProgress
func (s *PostgresProgressStore) UpsertLessonProgress(
	ctx context.Context,
	progress *domain.UserLessonProgress,
) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := progress.Validate(); err != nil {
		log.Warn("lesson progress validation failed during upsert",
			slog.String("error", err.Error()),
			slog.String("user_id", progress.UserID.String()),
			slog.String("lesson_id", progress.LessonID.String()))
		return err
	}

	query := `
		INSERT INTO user_lesson_progress
			(user_id, lesson_id, progress, is_completed, is_locked, is_new, last_updated)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (user_id, lesson_id) DO UPDATE
		SET progress = EXCLUDED.progress,
			is_completed = EXCLUDED.is_completed,
			is_locked = EXCLUDED.is_locked,
			is_new = EXCLUDED.is_new,
			last_updated = EXCLUDED.last_updated
	`

	_, err := s.db.ExecContext(
		ctx,
		query,
		progress.UserID,
		progress.LessonID,
		progress.Progress,
		progress.IsCompleted,
		progress.IsLocked,
		progress.IsNew,
		progress.LastUpdated,
	)

	if err != nil {
		log.Error("failed to upsert lesson progress",
			slog.String("error", err.Error()),
			slog.String("user_id", progress.UserID.String()),
			slog.String("lesson_id", progress.LessonID.String()))
		return MapError(err)
	}

	return nil
}

// GetActivityProgress implements store.ProgressStore.GetActivityProgress
// Returns store.ErrProgressNotFound if the row does not exist.
func (s *PostgresProgressStore) GetActivityProgress(
	ctx context.Context,
	userID, activityID uuid.UUID,
) (*domain.UserActivityProgress, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT user_id, activity_id, progress, is_completed, final_grade, attempt_count, last_attempt_at, manual_review
		FROM user_activity_progress
		WHERE user_id = $1 AND activity_id = $2
	`

	var progress domain.UserActivityProgress
	err := s.db.QueryRowContext(ctx, query, userID, activityID).Scan(
		&progress.UserID,
		&progress.ActivityID,
		&progress.Progress,
		&progress.IsCompleted,
		&progress.FinalGrade,
		&progress.AttemptCount,
		&progress.LastAttemptAt,
		&progress.ManualReview,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrProgressNotFound
		}
		log.Error("failed to get activity progress",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()),
			slog.String("activity_id", activityID.String()))
		return nil, MapError(err)
	}

	return &progress, nil
}

// ListActivityProgressByCourse implements store.ProgressStore.ListActivityProgressByCourse
func (s *PostgresProgressStore) ListActivityProgressByCourse(
	ctx context.Context,
	userID, courseID uuid.UUID,
) (map[uuid.UUID]domain.UserActivityProgress, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT p.user_id, p.activity_id, p.progress, p.is_completed, p.final_grade, p.attempt_count, p.last_attempt_at, p.manual_review
		FROM user_activity_progress p
		JOIN activities a ON a.id = p.activity_id
		JOIN parameters pa ON pa.id = a.parameter_id
		WHERE p.user_id = $1 AND pa.course_id = $2
	`

	rows, err := s.db.QueryContext(ctx, query, userID, courseID)
	if err != nil {
		log.Error("failed to query activity progress by course",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()),
			slog.String("course_id", courseID.String()))
		return nil, MapError(err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	progressByActivity := make(map[uuid.UUID]domain.UserActivityProgress)
	for rows.Next() {
		var progress domain.UserActivityProgress
		err := rows.Scan(
			&progress.UserID,
			&progress.ActivityID,
			&progress.Progress,
			&progress.IsCompleted,
			&progress.FinalGrade,
			&progress.AttemptCount,
			&progress.LastAttemptAt,
			&progress.ManualReview,
		)
		if err != nil {
			log.Error("failed to scan activity progress row",
				slog.String("error", err.Error()))
			return nil, MapError(err)
		}
		progressByActivity[progress.ActivityID] = progress
	}

	if err := rows.Err(); err != nil {
		log.Error("error after scanning activity progress rows",
			slog.String("error", err.Error()))
		return nil, MapError(err)
	}

	return progressByActivity, nil
}

// UpsertActivityProgress implements store.ProgressStore.UpsertActivityProgress
// Applying the same row twice produces the same end state.
func (s *PostgresProgressStore) UpsertActivityProgress(
	ctx context.Context,
	progress *domain.UserActivityProgress,
) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := progress.Validate(); err != nil {
		log.Warn("activity progress validation failed during upsert",
			slog.String("error", err.Error()),
			slog.String("user_id", progress.UserID.String()),
			slog.String("activity_id", progress.ActivityID.String()))
		return err
	}

	query := `
		INSERT INTO user_activity_progress
			(user_id, activity_id, progress, is_completed, final_grade, attempt_count, last_attempt_at, manual_review)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (user_id, activity_id) DO UPDATE
		SET progress = EXCLUDED.progress,
			is_completed = EXCLUDED.is_completed,
			final_grade = EXCLUDED.final_grade,
			attempt_count = EXCLUDED.attempt_count,
			last_attempt_at = EXCLUDED.last_attempt_at,
			manual_review = EXCLUDED.manual_review
	`

	_, err := s.db.ExecContext(
		ctx,
		query,
		progress.UserID,
		progress.ActivityID,
		progress.Progress,
		progress.IsCompleted,
		progress.FinalGrade,
		progress.AttemptCount,
		progress.LastAttemptAt,
		progress.ManualReview,
	)

	if err != nil {
		log.Error("failed to upsert activity progress",
			slog.String("error", err.Error()),
			slog.String("user_id", progress.UserID.String()),
			slog.String("activity_id", progress.ActivityID.String()))
		return MapError(err)
	}

	log.Info("activity progress upserted",
		slog.String("user_id", progress.UserID.String()),
		slog.String("activity_id", progress.ActivityID.String()),
		slog.Bool("is_completed", progress.IsCompleted))
	return nil
}
