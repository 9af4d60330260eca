package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/aulaops/aula-api/internal/api/shared"
	"github.com/aulaops/aula-api/internal/platform/logger"
	"github.com/aulaops/aula-api/internal/redact"
	"github.com/aulaops/aula-api/internal/service"
)

// CreateActivityRequest represents the request body for creating an activity
type CreateActivityRequest struct {
	Name         string     `json:"name"          validate:"required,max=200"`
	Weight       float64    `json:"weight"        validate:"gte=0,lte=100"`
	DueAt        *time.Time `json:"due_at,omitempty"`
	ManualReview bool       `json:"manual_review"`
}

// UpdateActivityRequest represents the request body for updating an activity
type UpdateActivityRequest struct {
	Name         string     `json:"name"          validate:"required,max=200"`
	Weight       float64    `json:"weight"        validate:"gte=0,lte=100"`
	DueAt        *time.Time `json:"due_at,omitempty"`
	ManualReview bool       `json:"manual_review"`
	Active       bool       `json:"active"`
}

// ActivityHandler handles activity authoring HTTP requests
type ActivityHandler struct {
	activityService service.ActivityService
	logger          *slog.Logger
}

// NewActivityHandler creates a new ActivityHandler
func NewActivityHandler(
	activityService service.ActivityService,
	logger *slog.Logger,
) *ActivityHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for ActivityHandler")
	}

	return &ActivityHandler{
		activityService: activityService,
		logger:          logger.With(slog.String("component", "activity_handler")),
	}
}

// CreateActivity handles POST /parameters/{id}/activities requests.
// The weight-budget validation runs inside the same transaction as the
// insert, so a rejected request has no partial effect.
func (h *ActivityHandler) CreateActivity(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	parameterID, ok := parseIDParam(w, r, "id", "Parameter")
	if !ok {
		return
	}

	var req CreateActivityRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		log.Warn("invalid request format",
			slog.String("error", redact.Error(err)),
			slog.String("parameter_id", parameterID.String()))
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return
	}

	activity, err := h.activityService.CreateActivity(
		r.Context(),
		parameterID,
		req.Name,
		req.Weight,
		req.DueAt,
		req.ManualReview,
	)
	if err != nil {
		statusCode := MapErrorToStatusCode(err)
		safeMessage := GetSafeErrorMessage(err)
		if statusCode == http.StatusInternalServerError {
			safeMessage = "Failed to create activity"
		}
		shared.RespondWithErrorAndLog(w, r, statusCode, safeMessage, err)
		return
	}

	log.Debug("activity created",
		slog.String("activity_id", activity.ID.String()),
		slog.String("parameter_id", parameterID.String()))
	shared.RespondWithJSON(w, r, http.StatusCreated, activityToResponse(activity))
}

// UpdateActivity handles PUT /activities/{id} requests.
func (h *ActivityHandler) UpdateActivity(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	activityID, ok := parseIDParam(w, r, "id", "Activity")
	if !ok {
		return
	}

	var req UpdateActivityRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		log.Warn("invalid request format",
			slog.String("error", redact.Error(err)),
			slog.String("activity_id", activityID.String()))
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return
	}

	activity, err := h.activityService.UpdateActivity(r.Context(), activityID, service.ActivityUpdate{
		Name:         req.Name,
		Weight:       req.Weight,
		DueAt:        req.DueAt,
		ManualReview: req.ManualReview,
		Active:       req.Active,
	})
	if err != nil {
		statusCode := MapErrorToStatusCode(err)
		safeMessage := GetSafeErrorMessage(err)
		if statusCode == http.StatusInternalServerError {
			safeMessage = "Failed to update activity"
		}
		shared.RespondWithErrorAndLog(w, r, statusCode, safeMessage, err)
		return
	}

	log.Debug("activity updated", slog.String("activity_id", activityID.String()))
	shared.RespondWithJSON(w, r, http.StatusOK, activityToResponse(activity))
}

// GetActivity handles GET /activities/{id} requests.
func (h *ActivityHandler) GetActivity(w http.ResponseWriter, r *http.Request) {
	activityID, ok := parseIDParam(w, r, "id", "Activity")
	if !ok {
		return
	}

	activity, err := h.activityService.GetActivity(r.Context(), activityID)
	if err != nil {
		statusCode := MapErrorToStatusCode(err)
		safeMessage := GetSafeErrorMessage(err)
		if statusCode == http.StatusInternalServerError {
			safeMessage = "Failed to retrieve activity"
		}
		shared.RespondWithErrorAndLog(w, r, statusCode, safeMessage, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, activityToResponse(activity))
}

// parseIDParam extracts and parses a UUID path parameter, writing a 400
// response and returning false when it is missing or malformed.
func parseIDParam(w http.ResponseWriter, r *http.Request, name, entity string) (uuid.UUID, bool) {
	raw := chi.URLParam(r, name)
	if raw == "" {
		shared.RespondWithError(w, r, http.StatusBadRequest, entity+" ID is required")
		return uuid.Nil, false
	}

	id, err := uuid.Parse(raw)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid "+entity+" ID format")
		return uuid.Nil, false
	}

	return id, true
}
