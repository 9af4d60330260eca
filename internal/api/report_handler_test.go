package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aulaops/aula-api/internal/api/shared"
	"github.com/aulaops/aula-api/internal/domain"
	"github.com/aulaops/aula-api/internal/service"
)

type stubReportService struct {
	err        error
	lastUserID uuid.UUID
}

func (s *stubReportService) GetSubjectReport(
	ctx context.Context,
	subjectID, userID uuid.UUID,
) (*domain.GradeReport, error) {
	s.lastUserID = userID
	if s.err != nil {
		return nil, s.err
	}
	return &domain.GradeReport{
		SubjectID:   subjectID,
		SubjectName: "Matemáticas",
		Grade:       86,
	}, nil
}

func getSubjectReport(t *testing.T, svc service.ReportService, target string, userID uuid.UUID) *httptest.ResponseRecorder {
	t.Helper()

	handler := NewReportHandler(svc, slog.Default())
	router := chi.NewRouter()
	router.Get("/subjects/{id}/report", handler.GetSubjectReport)

	req := httptest.NewRequest(http.MethodGet, target, nil)
	if userID != uuid.Nil {
		req = req.WithContext(context.WithValue(req.Context(), shared.UserIDContextKey, userID))
	}

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func TestGetSubjectReportHandler_Success(t *testing.T) {
	svc := &stubReportService{}
	subjectID := uuid.New()
	userID := uuid.New()

	rr := getSubjectReport(t, svc, "/subjects/"+subjectID.String()+"/report", userID)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, userID, svc.lastUserID)

	var report domain.GradeReport
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &report))
	assert.Equal(t, subjectID, report.SubjectID)
	assert.Equal(t, 86.0, report.Grade)
}

func TestGetSubjectReportHandler_UserIDQueryOverride(t *testing.T) {
	svc := &stubReportService{}
	student := uuid.New()

	rr := getSubjectReport(t, svc,
		"/subjects/"+uuid.NewString()+"/report?user_id="+student.String(), uuid.New())

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, student, svc.lastUserID)
}

func TestGetSubjectReportHandler_InvalidUserIDQuery(t *testing.T) {
	rr := getSubjectReport(t, &stubReportService{},
		"/subjects/"+uuid.NewString()+"/report?user_id=nope", uuid.New())

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestGetSubjectReportHandler_Unauthenticated(t *testing.T) {
	rr := getSubjectReport(t, &stubReportService{},
		"/subjects/"+uuid.NewString()+"/report", uuid.Nil)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestGetSubjectReportHandler_SubjectNotFound(t *testing.T) {
	svc := &stubReportService{err: service.ErrSubjectNotFound}
	rr := getSubjectReport(t, svc, "/subjects/"+uuid.NewString()+"/report", uuid.New())

	assert.Equal(t, http.StatusNotFound, rr.Code)
}
