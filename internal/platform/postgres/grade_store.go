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

// PostgresGradeRepository implements the store.GradeRepository interface
// using a PostgreSQL database as the storage backend. The aggregation
// queries are pushed down to SQL so the database computes means and
// weighted sums over the authoritative rows.
type PostgresGradeRepository struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresGradeRepository creates a new PostgreSQL implementation of the GradeRepository interface.
// It accepts a database connection or transaction that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresGradeRepository(db store.DBTX, logger *slog.Logger) *PostgresGradeRepository {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresGradeRepository{
		db:     db,
		logger: logger.With(slog.String("component", "grade_repository")),
	}
}

// Ensure PostgresGradeRepository implements store.GradeRepository interface
var _ store.GradeRepository = (*PostgresGradeRepository)(nil)

// WithTx implements store.GradeRepository.WithTx
func (r *PostgresGradeRepository) WithTx(tx *sql.Tx) store.GradeRepository {
	return &PostgresGradeRepository{
		db:     tx,
		logger: r.logger,
	}
}

// ComputeParameterGrade implements store.GradeRepository.ComputeParameterGrade
// AVG ignores NULL final_grade values, so ungraded activities do not pull
// the mean toward zero. Returns nil when the user has no graded activities
// in the parameter.
func (r *PostgresGradeRepository) ComputeParameterGrade(
	ctx context.Context,
	parameterID, userID uuid.UUID,
) (*float64, error) {
	log := logger.FromContextOrDefault(ctx, r.logger)

	query := `
		SELECT AVG(p.final_grade)
		FROM user_activity_progress p
		JOIN activities a ON a.id = p.activity_id
		WHERE a.parameter_id = $1 AND a.active AND p.user_id = $2
	`

	var grade sql.NullFloat64
	err := r.db.QueryRowContext(ctx, query, parameterID, userID).Scan(&grade)
	if err != nil {
		log.Error("failed to compute parameter grade",
			slog.String("error", err.Error()),
			slog.String("parameter_id", parameterID.String()),
			slog.String("user_id", userID.String()))
		return nil, MapError(err)
	}

	if !grade.Valid {
		return nil, nil
	}

	return &grade.Float64, nil
}

// ComputeCourseGrade implements store.GradeRepository.ComputeCourseGrade
// Returns nil when the user has no parameter grades in the course.
func (r *PostgresGradeRepository) ComputeCourseGrade(
	ctx context.Context,
	courseID, userID uuid.UUID,
) (*float64, error) {
	log := logger.FromContextOrDefault(ctx, r.logger)

	query := `
		SELECT SUM(g.grade * pa.weight / 100.0)
		FROM parameter_grades g
		JOIN parameters pa ON pa.id = g.parameter_id
		WHERE pa.course_id = $1 AND g.user_id = $2
	`

	var grade sql.NullFloat64
	err := r.db.QueryRowContext(ctx, query, courseID, userID).Scan(&grade)
	if err != nil {
		log.Error("failed to compute course grade",
			slog.String("error", err.Error()),
			slog.String("course_id", courseID.String()),
			slog.String("user_id", userID.String()))
		return nil, MapError(err)
	}

	if !grade.Valid {
		return nil, nil
	}

	return &grade.Float64, nil
}

// UpsertParameterGrade implements store.GradeRepository.UpsertParameterGrade
func (r *PostgresGradeRepository) UpsertParameterGrade(
	ctx context.Context,
	grade *domain.ParameterGrade,
) error {
	log := logger.FromContextOrDefault(ctx, r.logger)

	query := `
		INSERT INTO parameter_grades (parameter_id, user_id, grade, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (parameter_id, user_id) DO UPDATE
		SET grade = EXCLUDED.grade,
			updated_at = EXCLUDED.updated_at
	`

	_, err := r.db.ExecContext(ctx, query, grade.ParameterID, grade.UserID, grade.Grade, grade.UpdatedAt)
	if err != nil {
		log.Error("failed to upsert parameter grade",
			slog.String("error", err.Error()),
			slog.String("parameter_id", grade.ParameterID.String()),
			slog.String("user_id", grade.UserID.String()))
		return MapError(err)
	}

	return nil
}

// UpsertSubjectGrade implements store.GradeRepository.UpsertSubjectGrade
func (r *PostgresGradeRepository) UpsertSubjectGrade(
	ctx context.Context,
	grade *domain.SubjectGrade,
) error {
	log := logger.FromContextOrDefault(ctx, r.logger)

	query := `
		INSERT INTO subject_grades (subject_id, user_id, grade, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (subject_id, user_id) DO UPDATE
		SET grade = EXCLUDED.grade,
			updated_at = EXCLUDED.updated_at
	`

	_, err := r.db.ExecContext(ctx, query, grade.SubjectID, grade.UserID, grade.Grade, grade.UpdatedAt)
	if err != nil {
		log.Error("failed to upsert subject grade",
			slog.String("error", err.Error()),
			slog.String("subject_id", grade.SubjectID.String()),
			slog.String("user_id", grade.UserID.String()))
		return MapError(err)
	}

	log.Info("subject grade upserted",
		slog.String("subject_id", grade.SubjectID.String()),
		slog.String("user_id", grade.UserID.String()),
		slog.Float64("grade", grade.Grade))
	return nil
}

// GetSubjectGrade implements store.GradeRepository.GetSubjectGrade
// Returns store.ErrNotFound if no grade has been computed yet.
func (r *PostgresGradeRepository) GetSubjectGrade(
	ctx context.Context,
	subjectID, userID uuid.UUID,
) (*domain.SubjectGrade, error) {
	log := logger.FromContextOrDefault(ctx, r.logger)

	query := `
		SELECT subject_id, user_id, grade, updated_at
		FROM subject_grades
		WHERE subject_id = $1 AND user_id = $2
	`

	var grade domain.SubjectGrade
	err := r.db.QueryRowContext(ctx, query, subjectID, userID).Scan(
		&grade.SubjectID,
		&grade.UserID,
		&grade.Grade,
		&grade.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		log.Error("failed to get subject grade",
			slog.String("error", err.Error()),
			slog.String("subject_id", subjectID.String()),
			slog.String("user_id", userID.String()))
		return nil, MapError(err)
	}

	return &grade, nil
}

// ListParameterGrades implements store.GradeRepository.ListParameterGrades
func (r *PostgresGradeRepository) ListParameterGrades(
	ctx context.Context,
	courseID, userID uuid.UUID,
) (map[uuid.UUID]domain.ParameterGrade, error) {
	log := logger.FromContextOrDefault(ctx, r.logger)

	query := `
		SELECT g.parameter_id, g.user_id, g.grade, g.updated_at
		FROM parameter_grades g
		JOIN parameters pa ON pa.id = g.parameter_id
		WHERE pa.course_id = $1 AND g.user_id = $2
	`

	rows, err := r.db.QueryContext(ctx, query, courseID, userID)
	if err != nil {
		log.Error("failed to query parameter grades",
			slog.String("error", err.Error()),
			slog.String("course_id", courseID.String()),
			slog.String("user_id", userID.String()))
		return nil, MapError(err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	gradesByParameter := make(map[uuid.UUID]domain.ParameterGrade)
	for rows.Next() {
		var grade domain.ParameterGrade
		err := rows.Scan(
			&grade.ParameterID,
			&grade.UserID,
			&grade.Grade,
			&grade.UpdatedAt,
		)
		if err != nil {
			log.Error("failed to scan parameter grade row",
				slog.String("error", err.Error()))
			return nil, MapError(err)
		}
		gradesByParameter[grade.ParameterID] = grade
	}

	if err := rows.Err(); err != nil {
		log.Error("error after scanning parameter grade rows",
			slog.String("error", err.Error()))
		return nil, MapError(err)
	}

	return gradesByParameter, nil
}
