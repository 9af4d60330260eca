package store

import (
	"context"

	"github.com/google/uuid"

	"github.com/aulaops/aula-api/internal/domain"
)

// ResultStore holds the transient activity results written by the external
// submission collaborator, keyed by (activityID, userID). A result is the
// source of truth only until the completion handler persists it into the
// progress row.
type ResultStore interface {
	// SaveResult stores the submission result for (activityID, userID),
	// replacing any previous one.
	SaveResult(ctx context.Context, activityID, userID uuid.UUID, result *domain.ActivityResult) error

	// GetResult retrieves the submission result for (activityID, userID).
	// Returns ErrResultNotFound if no result has been submitted.
	GetResult(ctx context.Context, activityID, userID uuid.UUID) (*domain.ActivityResult, error)

	// DeleteResult removes the submission result for (activityID, userID).
	// Deleting an absent result is a no-op.
	DeleteResult(ctx context.Context, activityID, userID uuid.UUID) error
}
