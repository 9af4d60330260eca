package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/aulaops/aula-api/internal/domain"
)

// GradeRepository owns the derived ParameterGrade and SubjectGrade rows and
// encapsulates the aggregation queries, so the grading algorithm stays
// unit-testable against an in-memory fake. It treats activity and parameter
// weights as read-only inputs.
type GradeRepository interface {
	// ComputeParameterGrade computes the user's grade for a parameter as
	// the arithmetic mean of the finalGrade values of the parameter's
	// active activities. Activities without a finalGrade are left out of
	// the mean entirely, they do not contribute as zero. Returns nil when
	// the user has no graded activities in the parameter.
	ComputeParameterGrade(ctx context.Context, parameterID, userID uuid.UUID) (*float64, error)

	// ComputeCourseGrade combines the user's persisted parameter grades
	// for a course, weighted by each parameter's weight percentage:
	// Σ(parameterGrade × parameterWeight/100). Returns nil when the user
	// has no parameter grades in the course.
	ComputeCourseGrade(ctx context.Context, courseID, userID uuid.UUID) (*float64, error)

	// UpsertParameterGrade inserts or replaces the grade row keyed by
	// (parameterID, userID). Recomputation always replaces, never
	// increments.
	UpsertParameterGrade(ctx context.Context, grade *domain.ParameterGrade) error

	// UpsertSubjectGrade inserts or replaces the grade row keyed by
	// (subjectID, userID).
	UpsertSubjectGrade(ctx context.Context, grade *domain.SubjectGrade) error

	// GetSubjectGrade retrieves the user's grade row for a subject.
	// Returns ErrNotFound if no grade has been computed yet.
	GetSubjectGrade(ctx context.Context, subjectID, userID uuid.UUID) (*domain.SubjectGrade, error)

	// ListParameterGrades retrieves the user's parameter grade rows for a
	// course, keyed by parameter ID.
	ListParameterGrades(ctx context.Context, courseID, userID uuid.UUID) (map[uuid.UUID]domain.ParameterGrade, error)

	// WithTx returns a new GradeRepository instance that uses the provided
	// transaction.
	WithTx(tx *sql.Tx) GradeRepository
}
