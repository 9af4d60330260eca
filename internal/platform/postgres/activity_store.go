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

// PostgresActivityStore implements the store.ActivityStore interface
// using a PostgreSQL database as the storage backend.
type PostgresActivityStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresActivityStore creates a new PostgreSQL implementation of the ActivityStore interface.
// It accepts a database connection or transaction that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresActivityStore(db store.DBTX, logger *slog.Logger) *PostgresActivityStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresActivityStore{
		db:     db,
		logger: logger.With(slog.String("component", "activity_store")),
	}
}

// Ensure PostgresActivityStore implements store.ActivityStore interface
var _ store.ActivityStore = (*PostgresActivityStore)(nil)

// WithTx implements store.ActivityStore.WithTx
func (s *PostgresActivityStore) WithTx(tx *sql.Tx) store.ActivityStore {
	return &PostgresActivityStore{
		db:     tx,
		logger: s.logger,
	}
}

// GetActivity implements store.ActivityStore.GetActivity
// Returns store.ErrActivityNotFound if the activity does not exist.
func (s *PostgresActivityStore) GetActivity(ctx context.Context, id uuid.UUID) (*domain.Activity, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, parameter_id, name, weight, due_at, manual_review, active, created_at, updated_at
		FROM activities
		WHERE id = $1
	`

	var activity domain.Activity
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&activity.ID,
		&activity.ParameterID,
		&activity.Name,
		&activity.Weight,
		&activity.DueAt,
		&activity.ManualReview,
		&activity.Active,
		&activity.CreatedAt,
		&activity.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("activity not found", slog.String("activity_id", id.String()))
			return nil, store.ErrActivityNotFound
		}
		log.Error("failed to get activity by ID",
			slog.String("error", err.Error()),
			slog.String("activity_id", id.String()))
		return nil, MapError(err)
	}

	return &activity, nil
}

// GetParameter implements store.ActivityStore.GetParameter
// Returns store.ErrParameterNotFound if the parameter does not exist.
func (s *PostgresActivityStore) GetParameter(ctx context.Context, id uuid.UUID) (*domain.Parameter, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, course_id, name, weight, created_at, updated_at
		FROM parameters
		WHERE id = $1
	`

	var parameter domain.Parameter
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&parameter.ID,
		&parameter.CourseID,
		&parameter.Name,
		&parameter.Weight,
		&parameter.CreatedAt,
		&parameter.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("parameter not found", slog.String("parameter_id", id.String()))
			return nil, store.ErrParameterNotFound
		}
		log.Error("failed to get parameter by ID",
			slog.String("error", err.Error()),
			slog.String("parameter_id", id.String()))
		return nil, MapError(err)
	}

	return &parameter, nil
}

// ListParametersByCourse implements store.ActivityStore.ListParametersByCourse
func (s *PostgresActivityStore) ListParametersByCourse(
	ctx context.Context,
	courseID uuid.UUID,
) ([]domain.Parameter, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, course_id, name, weight, created_at, updated_at
		FROM parameters
		WHERE course_id = $1
		ORDER BY name ASC
	`

	rows, err := s.db.QueryContext(ctx, query, courseID)
	if err != nil {
		log.Error("failed to query parameters by course",
			slog.String("error", err.Error()),
			slog.String("course_id", courseID.String()))
		return nil, MapError(err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	parameters := []domain.Parameter{}
	for rows.Next() {
		var parameter domain.Parameter
		err := rows.Scan(
			&parameter.ID,
			&parameter.CourseID,
			&parameter.Name,
			&parameter.Weight,
			&parameter.CreatedAt,
			&parameter.UpdatedAt,
		)
		if err != nil {
			log.Error("failed to scan parameter row",
				slog.String("error", err.Error()))
			return nil, MapError(err)
		}
		parameters = append(parameters, parameter)
	}

	if err := rows.Err(); err != nil {
		log.Error("error after scanning parameter rows",
			slog.String("error", err.Error()))
		return nil, MapError(err)
	}

	return parameters, nil
}

// ListActivitiesByParameter implements store.ActivityStore.ListActivitiesByParameter
// It retrieves only active activities.
func (s *PostgresActivityStore) ListActivitiesByParameter(
	ctx context.Context,
	parameterID uuid.UUID,
) ([]domain.Activity, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, parameter_id, name, weight, due_at, manual_review, active, created_at, updated_at
		FROM activities
		WHERE parameter_id = $1 AND active
		ORDER BY created_at ASC
	`

	rows, err := s.db.QueryContext(ctx, query, parameterID)
	if err != nil {
		log.Error("failed to query activities by parameter",
			slog.String("error", err.Error()),
			slog.String("parameter_id", parameterID.String()))
		return nil, MapError(err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	activities := []domain.Activity{}
	for rows.Next() {
		var activity domain.Activity
		err := rows.Scan(
			&activity.ID,
			&activity.ParameterID,
			&activity.Name,
			&activity.Weight,
			&activity.DueAt,
			&activity.ManualReview,
			&activity.Active,
			&activity.CreatedAt,
			&activity.UpdatedAt,
		)
		if err != nil {
			log.Error("failed to scan activity row",
				slog.String("error", err.Error()))
			return nil, MapError(err)
		}
		activities = append(activities, activity)
	}

	if err := rows.Err(); err != nil {
		log.Error("error after scanning activity rows",
			slog.String("error", err.Error()))
		return nil, MapError(err)
	}

	return activities, nil
}

// CreateActivity implements store.ActivityStore.CreateActivity
// Returns validation errors from the domain Activity if data is invalid.
// Returns store.ErrInvalidEntity if the parameter doesn't exist (foreign key violation).
func (s *PostgresActivityStore) CreateActivity(ctx context.Context, activity *domain.Activity) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := activity.Validate(); err != nil {
		log.Warn("activity validation failed during create",
			slog.String("error", err.Error()),
			slog.String("activity_id", activity.ID.String()))
		return err
	}

	query := `
		INSERT INTO activities (id, parameter_id, name, weight, due_at, manual_review, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		activity.ID,
		activity.ParameterID,
		activity.Name,
		activity.Weight,
		activity.DueAt,
		activity.ManualReview,
		activity.Active,
		activity.CreatedAt,
		activity.UpdatedAt,
	)

	if err != nil {
		log.Error("failed to create activity",
			slog.String("error", err.Error()),
			slog.String("activity_id", activity.ID.String()),
			slog.String("parameter_id", activity.ParameterID.String()))
		return MapError(err)
	}

	log.Info("activity created successfully",
		slog.String("activity_id", activity.ID.String()),
		slog.String("parameter_id", activity.ParameterID.String()))
	return nil
}

// UpdateActivity implements store.ActivityStore.UpdateActivity
// Returns store.ErrActivityNotFound if the activity does not exist.
func (s *PostgresActivityStore) UpdateActivity(ctx context.Context, activity *domain.Activity) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := activity.Validate(); err != nil {
		log.Warn("activity validation failed during update",
			slog.String("error", err.Error()),
			slog.String("activity_id", activity.ID.String()))
		return err
	}

	query := `
		UPDATE activities
		SET name = $1, weight = $2, due_at = $3, manual_review = $4, active = $5, updated_at = $6
		WHERE id = $7
	`

	result, err := s.db.ExecContext(
		ctx,
		query,
		activity.Name,
		activity.Weight,
		activity.DueAt,
		activity.ManualReview,
		activity.Active,
		activity.UpdatedAt,
		activity.ID,
	)

	if err != nil {
		log.Error("failed to update activity",
			slog.String("error", err.Error()),
			slog.String("activity_id", activity.ID.String()))
		return MapError(err)
	}

	if err := CheckRowsAffected(result, "activity"); err != nil {
		log.Debug("activity not found for update",
			slog.String("activity_id", activity.ID.String()))
		return store.ErrActivityNotFound
	}

	log.Info("activity updated successfully",
		slog.String("activity_id", activity.ID.String()))
	return nil
}

// LockParameter implements store.ActivityStore.LockParameter
// It takes a row lock on the parameter so concurrent weight-budget checks
// for it serialize. Returns store.ErrParameterNotFound if the parameter
// does not exist.
func (s *PostgresActivityStore) LockParameter(ctx context.Context, parameterID uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id
		FROM parameters
		WHERE id = $1
		FOR UPDATE
	`

	var id uuid.UUID
	err := s.db.QueryRowContext(ctx, query, parameterID).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("parameter not found for lock",
				slog.String("parameter_id", parameterID.String()))
			return store.ErrParameterNotFound
		}
		log.Error("failed to lock parameter",
			slog.String("error", err.Error()),
			slog.String("parameter_id", parameterID.String()))
		return MapError(err)
	}

	return nil
}

// SumActiveWeights implements store.ActivityStore.SumActiveWeights
func (s *PostgresActivityStore) SumActiveWeights(
	ctx context.Context,
	parameterID, excludeActivityID uuid.UUID,
) (float64, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT COALESCE(SUM(weight), 0)
		FROM activities
		WHERE parameter_id = $1 AND active AND id <> $2
	`

	var sum float64
	err := s.db.QueryRowContext(ctx, query, parameterID, excludeActivityID).Scan(&sum)
	if err != nil {
		log.Error("failed to sum activity weights",
			slog.String("error", err.Error()),
			slog.String("parameter_id", parameterID.String()))
		return 0, MapError(err)
	}

	return sum, nil
}
