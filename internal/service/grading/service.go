// Package grading implements the grade aggregation cascade: activity
// results roll up into parameter grades, parameter grades roll up into a
// weighted course grade, and the course grade is projected onto every
// subject linked to the course.
package grading

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// GradeAggregatorService recomputes and persists derived grades. All of
// its writes are idempotent upserts; recomputation always replaces, never
// increments, so retrying with the same inputs is safe.
type GradeAggregatorService interface {
	// RecomputeForParameter recomputes the user's grade for the given
	// parameter, then the course grade, then the linked subject grades,
	// inside a single SERIALIZABLE transaction. Concurrent recomputations
	// for the same user and course are retried on serialization failure.
	//
	// Returns:
	//   - ErrParameterNotFound: if the parameter does not exist
	//   - ErrConcurrencyConflict: if the retry budget is exhausted
	RecomputeForParameter(ctx context.Context, userID, parameterID uuid.UUID) error
}

// Common error types for GradeAggregatorService
var (
	// ErrParameterNotFound indicates that the parameter does not exist.
	ErrParameterNotFound = errors.New("parameter not found")

	// ErrConcurrencyConflict indicates the aggregation transaction was
	// aborted by concurrent writes on every attempt. The recompute is safe
	// to retry with the same inputs.
	ErrConcurrencyConflict = errors.New("grade aggregation retries exhausted")
)
