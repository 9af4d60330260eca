package service

import (
	"errors"
	"fmt"

	"github.com/aulaops/aula-api/internal/store"
)

// Common service errors - sentinel errors used across service implementations.
// These errors represent common conditions that callers may want to check for with errors.Is().
//
// Error handling principles:
// 1. Service methods return sentinel errors for expected error conditions
// 2. Unexpected errors are wrapped in service-specific error types
// 3. Callers use errors.Is/errors.As to check for specific error conditions
// 4. The API layer maps service errors to appropriate HTTP status codes
var (
	// ErrCourseNotFound indicates that the course does not exist.
	// API layer should map this to HTTP 404 Not Found.
	ErrCourseNotFound = errors.New("course not found")

	// ErrSubjectNotFound indicates that the subject does not exist.
	// API layer should map this to HTTP 404 Not Found.
	ErrSubjectNotFound = errors.New("subject not found")

	// ErrParameterNotFound indicates that the evaluation parameter does not exist.
	// API layer should map this to HTTP 404 Not Found.
	ErrParameterNotFound = errors.New("parameter not found")

	// ErrActivityNotFound indicates that the activity does not exist.
	// API layer should map this to HTTP 404 Not Found.
	ErrActivityNotFound = errors.New("activity not found")

	// ErrLessonNotFound indicates that the lesson does not exist.
	// API layer should map this to HTTP 404 Not Found.
	ErrLessonNotFound = errors.New("lesson not found")

	// ErrProgressNotFound indicates that no progress row exists for the
	// requested user and lesson or activity.
	// API layer should map this to HTTP 404 Not Found.
	ErrProgressNotFound = errors.New("progress not found")

	// ErrWeightExceeded indicates that an activity create or update would
	// push the sum of active activity weights in its parameter over 100%.
	// API layer should map this to HTTP 422 Unprocessable Entity.
	ErrWeightExceeded = errors.New("activity weights exceed parameter budget")

	// ErrMissingResults indicates that completion was requested for an
	// activity with no submitted result and no prior completion.
	// API layer should map this to HTTP 422 Unprocessable Entity.
	ErrMissingResults = errors.New("no submitted results for activity")

	// ErrConcurrencyConflict indicates that the transactional grade
	// aggregation was retried and exhausted its retry budget. The
	// operation is safe to retry with the same inputs.
	// API layer should map this to HTTP 409 Conflict.
	ErrConcurrencyConflict = errors.New("aggregation retries exhausted due to concurrent writes")
)

// ServiceError wraps errors from a service with operation context.
type ServiceError struct {
	// Operation is the operation that failed (e.g., "initialize_enrollment", "complete_activity")
	Operation string
	// Message is a human-readable description of the error
	Message string
	// Err is the underlying error that caused the failure
	Err error
}

// Error implements the error interface for ServiceError.
func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("service %s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("service %s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewServiceError creates a new ServiceError.
// Known store-level sentinels are mapped to their service-level counterparts
// and returned directly without wrapping.
func NewServiceError(operation, message string, err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, ErrCourseNotFound),
		errors.Is(err, ErrSubjectNotFound),
		errors.Is(err, ErrParameterNotFound),
		errors.Is(err, ErrActivityNotFound),
		errors.Is(err, ErrLessonNotFound),
		errors.Is(err, ErrProgressNotFound),
		errors.Is(err, ErrWeightExceeded),
		errors.Is(err, ErrMissingResults),
		errors.Is(err, ErrConcurrencyConflict):
		return err
	case errors.Is(err, store.ErrCourseNotFound):
		return ErrCourseNotFound
	case errors.Is(err, store.ErrSubjectNotFound):
		return ErrSubjectNotFound
	case errors.Is(err, store.ErrParameterNotFound):
		return ErrParameterNotFound
	case errors.Is(err, store.ErrActivityNotFound):
		return ErrActivityNotFound
	case errors.Is(err, store.ErrLessonNotFound):
		return ErrLessonNotFound
	case errors.Is(err, store.ErrProgressNotFound):
		return ErrProgressNotFound
	}

	return &ServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}
