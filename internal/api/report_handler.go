package api

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/aulaops/aula-api/internal/api/shared"
	"github.com/aulaops/aula-api/internal/platform/logger"
	"github.com/aulaops/aula-api/internal/service"
)

// ReportHandler handles grade report HTTP requests
type ReportHandler struct {
	reportService service.ReportService
	logger        *slog.Logger
}

// NewReportHandler creates a new ReportHandler
func NewReportHandler(
	reportService service.ReportService,
	logger *slog.Logger,
) *ReportHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for ReportHandler")
	}

	return &ReportHandler{
		reportService: reportService,
		logger:        logger.With(slog.String("component", "report_handler")),
	}
}

// GetSubjectReport handles GET /subjects/{id}/report requests.
// It returns the authenticated user's grade for the subject with the
// parameter and activity breakdown, or the report for the user named by
// the optional user_id query parameter.
func (h *ReportHandler) GetSubjectReport(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	subjectID, ok := parseIDParam(w, r, "id", "Subject")
	if !ok {
		return
	}

	userID, ok := r.Context().Value(shared.UserIDContextKey).(uuid.UUID)
	if !ok || userID == uuid.Nil {
		log.Warn("user ID not found or invalid in request context")
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	// The reporting UI fetches reports on behalf of students.
	if raw := r.URL.Query().Get("user_id"); raw != "" {
		requested, err := uuid.Parse(raw)
		if err != nil {
			shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid user ID format")
			return
		}
		userID = requested
	}

	report, err := h.reportService.GetSubjectReport(r.Context(), subjectID, userID)
	if err != nil {
		statusCode := MapErrorToStatusCode(err)
		safeMessage := GetSafeErrorMessage(err)
		if statusCode == http.StatusInternalServerError {
			safeMessage = "Failed to build grade report"
		}
		shared.RespondWithErrorAndLog(w, r, statusCode, safeMessage, err)
		return
	}

	log.Debug("grade report built",
		slog.String("subject_id", subjectID.String()),
		slog.String("user_id", userID.String()))
	shared.RespondWithJSON(w, r, http.StatusOK, report)
}
