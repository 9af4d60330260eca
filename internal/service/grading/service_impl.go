package grading

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/aulaops/aula-api/internal/domain"
	"github.com/aulaops/aula-api/internal/store"
)

const (
	// maxAttempts bounds how often a serialization-aborted recompute is
	// retried before ErrConcurrencyConflict is returned.
	maxAttempts = 3

	// retryBaseDelay is the delay before the first retry; it doubles per
	// attempt.
	retryBaseDelay = 25 * time.Millisecond
)

// gradeAggregatorImpl implements the GradeAggregatorService interface
type gradeAggregatorImpl struct {
	gradeRepo     store.GradeRepository
	activityStore store.ActivityStore
	courseStore   store.CourseStore
	logger        *slog.Logger

	// runTx runs one cascade attempt. The constructor binds it to a
	// SERIALIZABLE transaction on the database.
	runTx func(ctx context.Context, fn store.TxFn) error
}

// NewGradeAggregatorService creates a new GradeAggregatorService.
// It panics if any required dependency is nil, as this represents a
// programming error in the application setup.
func NewGradeAggregatorService(
	db *sql.DB,
	gradeRepo store.GradeRepository,
	activityStore store.ActivityStore,
	courseStore store.CourseStore,
	logger *slog.Logger,
) GradeAggregatorService {
	if db == nil {
		panic("db cannot be nil")
	}
	if gradeRepo == nil {
		panic("gradeRepo cannot be nil")
	}
	if activityStore == nil {
		panic("activityStore cannot be nil")
	}
	if courseStore == nil {
		panic("courseStore cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &gradeAggregatorImpl{
		gradeRepo:     gradeRepo,
		activityStore: activityStore,
		courseStore:   courseStore,
		logger:        logger.With("component", "grade_aggregator"),
		runTx: func(ctx context.Context, fn store.TxFn) error {
			return store.RunInSerializableTransaction(ctx, db, fn)
		},
	}
}

// RecomputeForParameter runs the cascade for one (userID, parameterID)
// pair. Each attempt is a fresh SERIALIZABLE transaction; an attempt
// aborted by concurrent access is retried with backoff.
func (s *gradeAggregatorImpl) RecomputeForParameter(
	ctx context.Context,
	userID, parameterID uuid.UUID,
) error {
	parameter, err := s.activityStore.GetParameter(ctx, parameterID)
	if err != nil {
		if errors.Is(err, store.ErrParameterNotFound) {
			return ErrParameterNotFound
		}
		return fmt.Errorf("failed to load parameter: %w", err)
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err := s.runTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
			return s.recomputeInTx(ctx, tx, userID, parameter)
		})
		if err == nil {
			return nil
		}

		if !store.IsSerializationFailure(err) {
			return fmt.Errorf("grade aggregation failed: %w", err)
		}

		lastErr = err
		s.logger.Warn("grade aggregation aborted by concurrent writes, retrying",
			"user_id", userID,
			"parameter_id", parameterID,
			"attempt", attempt)

		if attempt < maxAttempts {
			select {
			case <-time.After(retryBaseDelay << (attempt - 1)):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}

	s.logger.Error("grade aggregation retries exhausted",
		"user_id", userID,
		"parameter_id", parameterID,
		"attempts", maxAttempts,
		"error", lastErr)
	return fmt.Errorf("%w: %v", ErrConcurrencyConflict, lastErr)
}

// recomputeInTx performs the full cascade inside one transaction so two
// activities completing concurrently in the same parameter both contribute
// to the final aggregate rather than one clobbering the other's write.
func (s *gradeAggregatorImpl) recomputeInTx(
	ctx context.Context,
	tx *sql.Tx,
	userID uuid.UUID,
	parameter *domain.Parameter,
) error {
	gradeRepo := s.gradeRepo.WithTx(tx)
	now := time.Now().UTC()

	// 1. Parameter grade: mean of the user's graded activities in the
	// parameter. Ungraded activities stay out of the mean; they do not
	// contribute as zero.
	parameterGrade, err := gradeRepo.ComputeParameterGrade(ctx, parameter.ID, userID)
	if err != nil {
		return fmt.Errorf("failed to compute parameter grade: %w", err)
	}

	if parameterGrade != nil {
		err = gradeRepo.UpsertParameterGrade(ctx, &domain.ParameterGrade{
			ParameterID: parameter.ID,
			UserID:      userID,
			Grade:       domain.RoundGrade(*parameterGrade),
			UpdatedAt:   now,
		})
		if err != nil {
			return fmt.Errorf("failed to upsert parameter grade: %w", err)
		}
	}

	// 2. Course grade: weighted sum of the user's persisted parameter
	// grades, then projected onto every subject linked to the course.
	courseGrade, err := gradeRepo.ComputeCourseGrade(ctx, parameter.CourseID, userID)
	if err != nil {
		return fmt.Errorf("failed to compute course grade: %w", err)
	}
	if courseGrade == nil {
		return nil
	}

	subjects, err := s.courseStore.ListSubjectsByCourse(ctx, parameter.CourseID)
	if err != nil {
		return fmt.Errorf("failed to list subjects: %w", err)
	}

	rounded := domain.RoundGrade(*courseGrade)
	for _, subject := range subjects {
		err = gradeRepo.UpsertSubjectGrade(ctx, &domain.SubjectGrade{
			SubjectID: subject.ID,
			UserID:    userID,
			Grade:     rounded,
			UpdatedAt: now,
		})
		if err != nil {
			return fmt.Errorf("failed to upsert subject grade: %w", err)
		}
	}

	s.logger.Debug("grade cascade recomputed",
		"user_id", userID,
		"parameter_id", parameter.ID,
		"course_id", parameter.CourseID,
		"course_grade", rounded,
		"subject_count", len(subjects))

	return nil
}
