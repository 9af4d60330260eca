// Package domain defines the core business entities and errors.
package domain

import "errors"

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// This is often wrapped with a more specific error message.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidID is returned when an ID is malformed or invalid.
	ErrInvalidID = errors.New("invalid ID")

	// ErrInvalidWeight is returned when a weight is outside the 0-100 range.
	ErrInvalidWeight = errors.New("weight must be between 0 and 100")

	// ErrInvalidProgress is returned when a progress percentage is outside [0,100].
	ErrInvalidProgress = errors.New("progress must be between 0 and 100")

	// ErrInvalidGrade is returned when a grade value is outside [0,100].
	ErrInvalidGrade = errors.New("grade must be between 0 and 100")

	// ErrEmptyTitle is returned when a required title or name is empty.
	ErrEmptyTitle = errors.New("title cannot be empty")
)
