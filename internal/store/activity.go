package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/aulaops/aula-api/internal/domain"
)

// ActivityStore defines the operations for evaluation parameters and their
// activities, including the primitives the weight-budget check relies on.
type ActivityStore interface {
	// GetActivity retrieves an activity by its unique ID.
	// Returns ErrActivityNotFound if the activity does not exist.
	GetActivity(ctx context.Context, id uuid.UUID) (*domain.Activity, error)

	// GetParameter retrieves a parameter by its unique ID.
	// Returns ErrParameterNotFound if the parameter does not exist.
	GetParameter(ctx context.Context, id uuid.UUID) (*domain.Parameter, error)

	// ListParametersByCourse retrieves all parameters of a course.
	ListParametersByCourse(ctx context.Context, courseID uuid.UUID) ([]domain.Parameter, error)

	// ListActivitiesByParameter retrieves all active activities of a parameter.
	ListActivitiesByParameter(ctx context.Context, parameterID uuid.UUID) ([]domain.Activity, error)

	// CreateActivity saves a new activity.
	// Returns validation errors from the domain Activity if data is invalid.
	CreateActivity(ctx context.Context, activity *domain.Activity) error

	// UpdateActivity saves changes to an existing activity.
	// Returns ErrActivityNotFound if the activity does not exist.
	UpdateActivity(ctx context.Context, activity *domain.Activity) error

	// LockParameter takes a row lock on the parameter, serializing
	// concurrent weight-budget checks for it. Only meaningful when the
	// store is bound to a transaction via WithTx; returns
	// ErrParameterNotFound if the parameter does not exist.
	LockParameter(ctx context.Context, parameterID uuid.UUID) error

	// SumActiveWeights returns the sum of weights of the parameter's
	// active activities, excluding excludeActivityID (uuid.Nil excludes
	// nothing). Used by the weight-budget validation.
	SumActiveWeights(ctx context.Context, parameterID, excludeActivityID uuid.UUID) (float64, error)

	// WithTx returns a new ActivityStore instance that uses the provided
	// transaction. The transaction is created and managed by the caller
	// (typically a service).
	WithTx(tx *sql.Tx) ActivityStore
}
