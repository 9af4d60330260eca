package service

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/aulaops/aula-api/internal/domain"
	"github.com/aulaops/aula-api/internal/store"
)

// weightBudget is the maximum sum of active activity weights within a
// single evaluation parameter.
const weightBudget = 100.0

// ActivityUpdate carries the mutable fields of an activity for an update
// request. The handler converts the loosely-typed HTTP payload into this
// struct before the service sees it.
type ActivityUpdate struct {
	Name         string
	Weight       float64
	DueAt        *time.Time
	ManualReview bool
	Active       bool
}

// ActivityService owns activity authoring. Every create and update passes
// through the weight-budget validation before persistence, inside the same
// transaction, so concurrent authoring requests for one parameter cannot
// jointly exceed the budget.
type ActivityService interface {
	// CreateActivity validates the weight budget and persists a new
	// activity under the given parameter. Returns ErrWeightExceeded when
	// the new weight would push the parameter's active weights over 100,
	// with no partial effect.
	CreateActivity(
		ctx context.Context,
		parameterID uuid.UUID,
		name string,
		weight float64,
		dueAt *time.Time,
		manualReview bool,
	) (*domain.Activity, error)

	// UpdateActivity validates the weight budget and persists changes to an
	// existing activity. The activity's own current weight is excluded from
	// the budget check. Returns ErrActivityNotFound or ErrWeightExceeded.
	UpdateActivity(ctx context.Context, activityID uuid.UUID, update ActivityUpdate) (*domain.Activity, error)

	// GetActivity retrieves an activity by ID.
	GetActivity(ctx context.Context, activityID uuid.UUID) (*domain.Activity, error)
}

// activityServiceImpl implements the ActivityService interface
type activityServiceImpl struct {
	db            *sql.DB
	activityStore store.ActivityStore
	logger        *slog.Logger
}

// NewActivityService creates a new ActivityService.
// It returns an error if any of the required dependencies are nil.
func NewActivityService(
	db *sql.DB,
	activityStore store.ActivityStore,
	logger *slog.Logger,
) (ActivityService, error) {
	if db == nil {
		return nil, &ServiceError{
			Operation: "create_service",
			Message:   "db cannot be nil",
		}
	}
	if activityStore == nil {
		return nil, &ServiceError{
			Operation: "create_service",
			Message:   "activityStore cannot be nil",
		}
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &activityServiceImpl{
		db:            db,
		activityStore: activityStore,
		logger:        logger.With("component", "activity_service"),
	}, nil
}

// CreateActivity creates a new activity after validating the parameter's
// weight budget inside a transaction that holds the parameter's row lock.
func (s *activityServiceImpl) CreateActivity(
	ctx context.Context,
	parameterID uuid.UUID,
	name string,
	weight float64,
	dueAt *time.Time,
	manualReview bool,
) (*domain.Activity, error) {
	activity, err := domain.NewActivity(parameterID, name, weight)
	if err != nil {
		s.logger.Warn("invalid activity payload",
			"error", err,
			"parameter_id", parameterID)
		return nil, NewServiceError("create_activity", "invalid activity", err)
	}
	activity.DueAt = dueAt
	activity.ManualReview = manualReview

	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txStore := s.activityStore.WithTx(tx)

		if err := s.validateWeightBudget(ctx, txStore, parameterID, uuid.Nil, weight); err != nil {
			return err
		}

		return txStore.CreateActivity(ctx, activity)
	})
	if err != nil {
		s.logger.Error("failed to create activity",
			"error", err,
			"parameter_id", parameterID)
		return nil, NewServiceError("create_activity", "failed to create activity", err)
	}

	s.logger.Info("activity created",
		"activity_id", activity.ID,
		"parameter_id", parameterID,
		"weight", weight)

	return activity, nil
}

// UpdateActivity applies the update after re-validating the weight budget
// with the activity's own weight excluded from the existing sum.
func (s *activityServiceImpl) UpdateActivity(
	ctx context.Context,
	activityID uuid.UUID,
	update ActivityUpdate,
) (*domain.Activity, error) {
	var updated *domain.Activity

	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txStore := s.activityStore.WithTx(tx)

		activity, err := txStore.GetActivity(ctx, activityID)
		if err != nil {
			return err
		}

		// A deactivated activity frees its weight, so only validate the
		// budget when the updated activity stays active.
		if update.Active {
			if err := s.validateWeightBudget(ctx, txStore, activity.ParameterID, activityID, update.Weight); err != nil {
				return err
			}
		}

		activity.Name = update.Name
		activity.Weight = update.Weight
		activity.DueAt = update.DueAt
		activity.ManualReview = update.ManualReview
		activity.Active = update.Active
		activity.UpdatedAt = time.Now().UTC()

		if err := txStore.UpdateActivity(ctx, activity); err != nil {
			return err
		}

		updated = activity
		return nil
	})
	if err != nil {
		s.logger.Error("failed to update activity",
			"error", err,
			"activity_id", activityID)
		return nil, NewServiceError("update_activity", "failed to update activity", err)
	}

	s.logger.Info("activity updated",
		"activity_id", activityID,
		"weight", updated.Weight,
		"active", updated.Active)

	return updated, nil
}

// GetActivity retrieves an activity by its ID.
func (s *activityServiceImpl) GetActivity(ctx context.Context, activityID uuid.UUID) (*domain.Activity, error) {
	activity, err := s.activityStore.GetActivity(ctx, activityID)
	if err != nil {
		return nil, NewServiceError("get_activity", "failed to retrieve activity", err)
	}
	return activity, nil
}

// validateWeightBudget locks the parameter row and checks that the sum of
// the parameter's other active weights plus the candidate stays within the
// budget. Must run inside the transaction that also performs the write;
// the row lock serializes concurrent budget checks for the parameter.
func (s *activityServiceImpl) validateWeightBudget(
	ctx context.Context,
	txStore store.ActivityStore,
	parameterID, excludeActivityID uuid.UUID,
	candidateWeight float64,
) error {
	if err := txStore.LockParameter(ctx, parameterID); err != nil {
		return err
	}

	sum, err := txStore.SumActiveWeights(ctx, parameterID, excludeActivityID)
	if err != nil {
		return err
	}

	if sum+candidateWeight > weightBudget {
		s.logger.Warn("weight budget exceeded",
			"parameter_id", parameterID,
			"existing_sum", sum,
			"candidate_weight", candidateWeight)
		return fmt.Errorf("%w: %.2f + %.2f exceeds %.0f",
			ErrWeightExceeded, sum, candidateWeight, weightBudget)
	}

	return nil
}
