package api

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/aulaops/aula-api/internal/api/shared"
	"github.com/aulaops/aula-api/internal/platform/logger"
	"github.com/aulaops/aula-api/internal/redact"
	"github.com/aulaops/aula-api/internal/service"
)

// EnrollmentCreatedRequest is the payload of the enrollment-created event
// delivered by the external enrollment collaborator.
type EnrollmentCreatedRequest struct {
	UserID   string `json:"user_id"   validate:"required,uuid"`
	CourseID string `json:"course_id" validate:"required,uuid"`
}

// EnrollmentHandler handles enrollment-related HTTP requests
type EnrollmentHandler struct {
	enrollmentService service.EnrollmentService
	logger            *slog.Logger
}

// NewEnrollmentHandler creates a new EnrollmentHandler
func NewEnrollmentHandler(
	enrollmentService service.EnrollmentService,
	logger *slog.Logger,
) *EnrollmentHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for EnrollmentHandler")
	}

	return &EnrollmentHandler{
		enrollmentService: enrollmentService,
		logger:            logger.With(slog.String("component", "enrollment_handler")),
	}
}

// InitializeEnrollment handles POST /enrollments requests.
// It seeds the lesson progress rows for a newly enrolled student. The
// operation is idempotent, so redelivered events are safe.
func (h *EnrollmentHandler) InitializeEnrollment(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req EnrollmentCreatedRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		log.Warn("invalid request format", slog.String("error", redact.Error(err)))
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return
	}

	// Validated as UUIDs above
	userID := uuid.MustParse(req.UserID)
	courseID := uuid.MustParse(req.CourseID)

	if err := h.enrollmentService.InitializeEnrollment(r.Context(), userID, courseID); err != nil {
		statusCode := MapErrorToStatusCode(err)
		safeMessage := GetSafeErrorMessage(err)
		if statusCode == http.StatusInternalServerError {
			safeMessage = "Failed to initialize enrollment"
		}
		shared.RespondWithErrorAndLog(w, r, statusCode, safeMessage, err)
		return
	}

	log.Debug("enrollment initialized",
		slog.String("user_id", userID.String()),
		slog.String("course_id", courseID.String()))
	w.WriteHeader(http.StatusNoContent)
}
