package api

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aulaops/aula-api/internal/service"
)

type stubEnrollmentService struct {
	err    error
	called []struct{ userID, courseID uuid.UUID }
}

func (s *stubEnrollmentService) InitializeEnrollment(ctx context.Context, userID, courseID uuid.UUID) error {
	s.called = append(s.called, struct{ userID, courseID uuid.UUID }{userID, courseID})
	return s.err
}

func postEnrollment(t *testing.T, handler *EnrollmentHandler, body any) *httptest.ResponseRecorder {
	t.Helper()

	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/enrollments", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	handler.InitializeEnrollment(rr, req)
	return rr
}

func TestInitializeEnrollmentHandler_Success(t *testing.T) {
	svc := &stubEnrollmentService{}
	handler := NewEnrollmentHandler(svc, slog.Default())

	userID := uuid.New()
	courseID := uuid.New()
	rr := postEnrollment(t, handler, EnrollmentCreatedRequest{
		UserID:   userID.String(),
		CourseID: courseID.String(),
	})

	assert.Equal(t, http.StatusNoContent, rr.Code)
	require.Len(t, svc.called, 1)
	assert.Equal(t, userID, svc.called[0].userID)
	assert.Equal(t, courseID, svc.called[0].courseID)
}

func TestInitializeEnrollmentHandler_InvalidUUID(t *testing.T) {
	svc := &stubEnrollmentService{}
	handler := NewEnrollmentHandler(svc, slog.Default())

	rr := postEnrollment(t, handler, EnrollmentCreatedRequest{
		UserID:   "not-a-uuid",
		CourseID: uuid.NewString(),
	})

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Empty(t, svc.called)
}

func TestInitializeEnrollmentHandler_MissingFields(t *testing.T) {
	svc := &stubEnrollmentService{}
	handler := NewEnrollmentHandler(svc, slog.Default())

	rr := postEnrollment(t, handler, map[string]string{"user_id": uuid.NewString()})

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Empty(t, svc.called)
}

func TestInitializeEnrollmentHandler_CourseNotFound(t *testing.T) {
	svc := &stubEnrollmentService{err: service.ErrCourseNotFound}
	handler := NewEnrollmentHandler(svc, slog.Default())

	rr := postEnrollment(t, handler, EnrollmentCreatedRequest{
		UserID:   uuid.NewString(),
		CourseID: uuid.NewString(),
	})

	assert.Equal(t, http.StatusNotFound, rr.Code)
}
