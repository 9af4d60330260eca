package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/aulaops/aula-api/internal/api/shared"
	"github.com/aulaops/aula-api/internal/domain"
	"github.com/aulaops/aula-api/internal/platform/logger"
	"github.com/aulaops/aula-api/internal/redact"
	"github.com/aulaops/aula-api/internal/service"
	"github.com/aulaops/aula-api/internal/store"
)

// SubmitResultRequest is the submission payload written by the external
// quiz/submission collaborator.
type SubmitResultRequest struct {
	Score        float64                    `json:"score"`
	Answers      map[string]SubmittedAnswer `json:"answers,omitempty"`
	Passed       bool                       `json:"passed"`
	FinalGrade   float64                    `json:"final_grade"             validate:"gte=0,lte=100"`
	AttemptCount *int                       `json:"attempt_count,omitempty" validate:"omitempty,gte=0"`
	SubmittedAt  time.Time                  `json:"submitted_at"            validate:"required"`
}

// SubmittedAnswer is the outcome of one question inside a submission.
type SubmittedAnswer struct {
	Answer    string  `json:"answer"`
	IsCorrect bool    `json:"is_correct"`
	Weight    float64 `json:"weight"`
}

// CompletionHandler handles submission ingestion and activity completion
// HTTP requests
type CompletionHandler struct {
	completionService service.CompletionService
	resultStore       store.ResultStore
	logger            *slog.Logger
}

// NewCompletionHandler creates a new CompletionHandler
func NewCompletionHandler(
	completionService service.CompletionService,
	resultStore store.ResultStore,
	logger *slog.Logger,
) *CompletionHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for CompletionHandler")
	}

	return &CompletionHandler{
		completionService: completionService,
		resultStore:       resultStore,
		logger:            logger.With(slog.String("component", "completion_handler")),
	}
}

// SubmitResult handles POST /activities/{id}/results requests.
// It stores the transient submission result for the authenticated user and
// immediately runs the completion flow on it.
func (h *CompletionHandler) SubmitResult(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	activityID, ok := parseIDParam(w, r, "id", "Activity")
	if !ok {
		return
	}

	userID, ok := r.Context().Value(shared.UserIDContextKey).(uuid.UUID)
	if !ok || userID == uuid.Nil {
		log.Warn("user ID not found or invalid in request context")
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	var req SubmitResultRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		log.Warn("invalid request format",
			slog.String("error", redact.Error(err)),
			slog.String("user_id", userID.String()),
			slog.String("activity_id", activityID.String()))
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return
	}

	result := resultFromRequest(&req)
	if err := h.resultStore.SaveResult(r.Context(), activityID, userID, result); err != nil {
		statusCode := MapErrorToStatusCode(err)
		safeMessage := GetSafeErrorMessage(err)
		if statusCode == http.StatusInternalServerError {
			safeMessage = "Failed to store submission result"
		}
		shared.RespondWithErrorAndLog(w, r, statusCode, safeMessage, err)
		return
	}

	progress, err := h.completionService.CompleteActivity(r.Context(), userID, activityID)
	if err != nil {
		statusCode := MapErrorToStatusCode(err)
		safeMessage := GetSafeErrorMessage(err)
		if statusCode == http.StatusInternalServerError {
			safeMessage = "Failed to complete activity"
		}
		shared.RespondWithErrorAndLog(w, r, statusCode, safeMessage, err)
		return
	}

	log.Debug("submission processed",
		slog.String("user_id", userID.String()),
		slog.String("activity_id", activityID.String()))
	shared.RespondWithJSON(w, r, http.StatusOK, activityProgressToResponse(progress))
}

// CompleteActivity handles POST /activities/{id}/complete requests.
// It runs the completion flow against a previously submitted result.
func (h *CompletionHandler) CompleteActivity(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	activityID, ok := parseIDParam(w, r, "id", "Activity")
	if !ok {
		return
	}

	userID, ok := r.Context().Value(shared.UserIDContextKey).(uuid.UUID)
	if !ok || userID == uuid.Nil {
		log.Warn("user ID not found or invalid in request context")
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	progress, err := h.completionService.CompleteActivity(r.Context(), userID, activityID)
	if err != nil {
		statusCode := MapErrorToStatusCode(err)
		safeMessage := GetSafeErrorMessage(err)
		if statusCode == http.StatusInternalServerError {
			safeMessage = "Failed to complete activity"
		}
		shared.RespondWithErrorAndLog(w, r, statusCode, safeMessage, err)
		return
	}

	log.Debug("activity completed",
		slog.String("user_id", userID.String()),
		slog.String("activity_id", activityID.String()))
	shared.RespondWithJSON(w, r, http.StatusOK, activityProgressToResponse(progress))
}

// resultFromRequest converts the boundary payload into the domain result.
func resultFromRequest(req *SubmitResultRequest) *domain.ActivityResult {
	result := &domain.ActivityResult{
		Score:        req.Score,
		Passed:       req.Passed,
		FinalGrade:   req.FinalGrade,
		AttemptCount: req.AttemptCount,
		SubmittedAt:  req.SubmittedAt,
	}

	if len(req.Answers) > 0 {
		result.Answers = make(map[string]domain.AnswerResult, len(req.Answers))
		for questionID, answer := range req.Answers {
			result.Answers[questionID] = domain.AnswerResult{
				Answer:    answer.Answer,
				IsCorrect: answer.IsCorrect,
				Weight:    answer.Weight,
			}
		}
	}

	return result
}
