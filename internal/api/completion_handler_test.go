package api

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aulaops/aula-api/internal/api/shared"
	"github.com/aulaops/aula-api/internal/domain"
	"github.com/aulaops/aula-api/internal/mocks"
	"github.com/aulaops/aula-api/internal/service"
)

type stubCompletionService struct {
	err      error
	progress *domain.UserActivityProgress
}

func (s *stubCompletionService) CompleteActivity(
	ctx context.Context,
	userID, activityID uuid.UUID,
) (*domain.UserActivityProgress, error) {
	if s.err != nil {
		return nil, s.err
	}
	if s.progress != nil {
		return s.progress, nil
	}
	grade := 90.0
	return &domain.UserActivityProgress{
		UserID:       userID,
		ActivityID:   activityID,
		Progress:     100,
		IsCompleted:  true,
		FinalGrade:   &grade,
		AttemptCount: 1,
	}, nil
}

func newCompletionRouter(svc service.CompletionService, resultStore *mocks.MockResultStore) chi.Router {
	handler := NewCompletionHandler(svc, resultStore, slog.Default())
	router := chi.NewRouter()
	router.Post("/activities/{id}/results", handler.SubmitResult)
	router.Post("/activities/{id}/complete", handler.CompleteActivity)
	return router
}

func TestSubmitResultHandler_StoresResultAndCompletes(t *testing.T) {
	resultStore := mocks.NewMockResultStore()
	router := newCompletionRouter(&stubCompletionService{}, resultStore)

	userID := uuid.New()
	activityID := uuid.New()

	payload, err := json.Marshal(SubmitResultRequest{
		Score:       90,
		Passed:      true,
		FinalGrade:  90,
		SubmittedAt: time.Now().UTC(),
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/activities/"+activityID.String()+"/results", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req = req.WithContext(context.WithValue(req.Context(), shared.UserIDContextKey, userID))

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	// The transient result was written before completion ran.
	saved, err := resultStore.GetResult(context.Background(), activityID, userID)
	require.NoError(t, err)
	assert.Equal(t, 90.0, saved.FinalGrade)

	var resp ActivityProgressResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.True(t, resp.IsCompleted)
	require.NotNil(t, resp.FinalGrade)
	assert.Equal(t, 90.0, *resp.FinalGrade)
}

func TestSubmitResultHandler_RejectsInvalidGrade(t *testing.T) {
	router := newCompletionRouter(&stubCompletionService{}, mocks.NewMockResultStore())

	payload, err := json.Marshal(SubmitResultRequest{
		FinalGrade:  120,
		SubmittedAt: time.Now().UTC(),
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/activities/"+uuid.NewString()+"/results", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req = req.WithContext(context.WithValue(req.Context(), shared.UserIDContextKey, uuid.New()))

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestCompleteActivityHandler_MissingResults(t *testing.T) {
	svc := &stubCompletionService{err: service.ErrMissingResults}
	router := newCompletionRouter(svc, mocks.NewMockResultStore())

	req := httptest.NewRequest(http.MethodPost, "/activities/"+uuid.NewString()+"/complete", nil)
	req = req.WithContext(context.WithValue(req.Context(), shared.UserIDContextKey, uuid.New()))

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
}

func TestCompleteActivityHandler_Unauthenticated(t *testing.T) {
	router := newCompletionRouter(&stubCompletionService{}, mocks.NewMockResultStore())

	req := httptest.NewRequest(http.MethodPost, "/activities/"+uuid.NewString()+"/complete", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}
