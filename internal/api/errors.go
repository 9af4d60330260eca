package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/aulaops/aula-api/internal/domain"
	"github.com/aulaops/aula-api/internal/service"
	"github.com/aulaops/aula-api/internal/service/auth"
	"github.com/aulaops/aula-api/internal/service/grading"
	"github.com/aulaops/aula-api/internal/store"
)

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error type. This prevents leaking internal error types or
// messages to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	// Authentication errors
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrMissingToken),
		errors.Is(err, auth.ErrWrongTokenType):
		return http.StatusUnauthorized

	// Not found errors
	case errors.Is(err, service.ErrCourseNotFound),
		errors.Is(err, service.ErrSubjectNotFound),
		errors.Is(err, service.ErrParameterNotFound),
		errors.Is(err, service.ErrActivityNotFound),
		errors.Is(err, service.ErrLessonNotFound),
		errors.Is(err, service.ErrProgressNotFound),
		errors.Is(err, grading.ErrParameterNotFound),
		errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound

	// Conflict errors
	case errors.Is(err, service.ErrConcurrencyConflict),
		errors.Is(err, grading.ErrConcurrencyConflict),
		errors.Is(err, store.ErrDuplicate):
		return http.StatusConflict

	// Business-rule rejections
	case errors.Is(err, service.ErrWeightExceeded),
		errors.Is(err, service.ErrMissingResults):
		return http.StatusUnprocessableEntity

	// Bad request errors
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidWeight),
		errors.Is(err, domain.ErrInvalidProgress),
		errors.Is(err, domain.ErrInvalidGrade),
		errors.Is(err, domain.ErrEmptyTitle),
		errors.Is(err, store.ErrInvalidEntity):
		return http.StatusBadRequest

	// Default: internal server error
	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error type. This prevents leaking sensitive internal details.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	switch {
	// Authentication errors
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrWrongTokenType):
		return "Invalid token"

	case errors.Is(err, auth.ErrExpiredToken):
		return "Token expired"

	// Not found errors
	case errors.Is(err, service.ErrCourseNotFound):
		return "Course not found"

	case errors.Is(err, service.ErrSubjectNotFound):
		return "Subject not found"

	case errors.Is(err, service.ErrParameterNotFound),
		errors.Is(err, grading.ErrParameterNotFound):
		return "Parameter not found"

	case errors.Is(err, service.ErrActivityNotFound):
		return "Activity not found"

	case errors.Is(err, service.ErrLessonNotFound):
		return "Lesson not found"

	case errors.Is(err, service.ErrProgressNotFound):
		return "Progress not found"

	// Business-rule rejections
	case errors.Is(err, service.ErrWeightExceeded):
		return "Activity weights would exceed the parameter's 100% budget"

	case errors.Is(err, service.ErrMissingResults):
		return "No submitted results for this activity"

	// Conflict errors
	case errors.Is(err, service.ErrConcurrencyConflict),
		errors.Is(err, grading.ErrConcurrencyConflict):
		return "The operation conflicted with concurrent updates, please retry"

	// Bad request errors
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidWeight),
		errors.Is(err, domain.ErrInvalidProgress),
		errors.Is(err, domain.ErrInvalidGrade),
		errors.Is(err, domain.ErrEmptyTitle),
		errors.Is(err, store.ErrInvalidEntity):
		return "Invalid request data"

	default:
		return "An unexpected error occurred"
	}
}

// SanitizeValidationError removes sensitive details from validation errors
// and returns a user-friendly message.
func SanitizeValidationError(err error) string {
	errMsg := err.Error()

	// Check if this is likely a validation error message
	if strings.Contains(errMsg, "Field validation") {
		// Extract the field name and validation tag
		// Example format: "Key: 'CreateActivityRequest.Weight' Error:Field validation for 'Weight' failed on the 'required' tag"
		parts := strings.Split(errMsg, "Error:")
		if len(parts) >= 2 {
			fieldParts := strings.Split(parts[1], "'")
			if len(fieldParts) >= 3 {
				field := fieldParts[1]
				var tag string
				if len(fieldParts) >= 5 {
					tag = fieldParts[3]
				}

				if tag != "" {
					return fmt.Sprintf("Invalid %s: %s", field, getValidationTagMessage(tag))
				}
				return fmt.Sprintf("Invalid %s", field)
			}
		}
	}

	return "Validation error"
}

// getValidationTagMessage maps validation tags to user-friendly error messages
func getValidationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "uuid":
		return "invalid identifier format"
	case "min", "gte":
		return "value too small"
	case "max", "lte":
		return "value too large"
	case "oneof":
		return "invalid value"
	default:
		return "validation failed"
	}
}
