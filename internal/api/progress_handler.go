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

// UpdateLessonProgressRequest represents the request body for reporting
// lesson consumption progress
type UpdateLessonProgressRequest struct {
	Progress float64 `json:"progress" validate:"gte=0,lte=100"`
}

// ProgressHandler handles lesson progress HTTP requests
type ProgressHandler struct {
	progressService service.ProgressService
	logger          *slog.Logger
}

// NewProgressHandler creates a new ProgressHandler
func NewProgressHandler(
	progressService service.ProgressService,
	logger *slog.Logger,
) *ProgressHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for ProgressHandler")
	}

	return &ProgressHandler{
		progressService: progressService,
		logger:          logger.With(slog.String("component", "progress_handler")),
	}
}

// UpdateLessonProgress handles POST /lessons/{id}/progress requests.
// Reaching 100% completes the lesson and unlocks the next one in order.
func (h *ProgressHandler) UpdateLessonProgress(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	lessonID, ok := parseIDParam(w, r, "id", "Lesson")
	if !ok {
		return
	}

	userID, ok := r.Context().Value(shared.UserIDContextKey).(uuid.UUID)
	if !ok || userID == uuid.Nil {
		log.Warn("user ID not found or invalid in request context")
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	var req UpdateLessonProgressRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		log.Warn("invalid request format",
			slog.String("error", redact.Error(err)),
			slog.String("user_id", userID.String()),
			slog.String("lesson_id", lessonID.String()))
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return
	}

	progress, err := h.progressService.UpdateLessonProgress(r.Context(), userID, lessonID, req.Progress)
	if err != nil {
		statusCode := MapErrorToStatusCode(err)
		safeMessage := GetSafeErrorMessage(err)
		if statusCode == http.StatusInternalServerError {
			safeMessage = "Failed to update lesson progress"
		}
		shared.RespondWithErrorAndLog(w, r, statusCode, safeMessage, err)
		return
	}

	log.Debug("lesson progress updated",
		slog.String("user_id", userID.String()),
		slog.String("lesson_id", lessonID.String()),
		slog.Float64("progress", progress.Progress))
	shared.RespondWithJSON(w, r, http.StatusOK, lessonProgressToResponse(progress))
}
