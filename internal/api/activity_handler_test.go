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

	"github.com/aulaops/aula-api/internal/domain"
	"github.com/aulaops/aula-api/internal/service"
)

type stubActivityService struct {
	err     error
	created *domain.Activity
	updates []service.ActivityUpdate
}

func (s *stubActivityService) CreateActivity(
	ctx context.Context,
	parameterID uuid.UUID,
	name string,
	weight float64,
	dueAt *time.Time,
	manualReview bool,
) (*domain.Activity, error) {
	if s.err != nil {
		return nil, s.err
	}
	activity := &domain.Activity{
		ID:           uuid.New(),
		ParameterID:  parameterID,
		Name:         name,
		Weight:       weight,
		DueAt:        dueAt,
		ManualReview: manualReview,
		Active:       true,
	}
	s.created = activity
	return activity, nil
}

func (s *stubActivityService) UpdateActivity(
	ctx context.Context,
	activityID uuid.UUID,
	update service.ActivityUpdate,
) (*domain.Activity, error) {
	s.updates = append(s.updates, update)
	if s.err != nil {
		return nil, s.err
	}
	return &domain.Activity{
		ID:           activityID,
		ParameterID:  uuid.New(),
		Name:         update.Name,
		Weight:       update.Weight,
		DueAt:        update.DueAt,
		ManualReview: update.ManualReview,
		Active:       update.Active,
	}, nil
}

func (s *stubActivityService) GetActivity(ctx context.Context, activityID uuid.UUID) (*domain.Activity, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &domain.Activity{ID: activityID, Name: "Examen parcial", Weight: 40, Active: true}, nil
}

func newActivityRouter(svc service.ActivityService) chi.Router {
	handler := NewActivityHandler(svc, slog.Default())
	router := chi.NewRouter()
	router.Post("/parameters/{id}/activities", handler.CreateActivity)
	router.Put("/activities/{id}", handler.UpdateActivity)
	router.Get("/activities/{id}", handler.GetActivity)
	return router
}

func TestCreateActivityHandler_Success(t *testing.T) {
	svc := &stubActivityService{}
	router := newActivityRouter(svc)

	parameterID := uuid.New()
	payload, err := json.Marshal(CreateActivityRequest{Name: "Tarea 1", Weight: 25})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/parameters/"+parameterID.String()+"/activities", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusCreated, rr.Code)

	var resp ActivityResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "Tarea 1", resp.Name)
	assert.Equal(t, 25.0, resp.Weight)
	assert.Equal(t, parameterID.String(), resp.ParameterID)
	assert.True(t, resp.Active)
}

func TestCreateActivityHandler_WeightExceeded(t *testing.T) {
	svc := &stubActivityService{err: service.ErrWeightExceeded}
	router := newActivityRouter(svc)

	payload, err := json.Marshal(CreateActivityRequest{Name: "Tarea 2", Weight: 90})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/parameters/"+uuid.NewString()+"/activities", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
}

func TestCreateActivityHandler_MissingName(t *testing.T) {
	router := newActivityRouter(&stubActivityService{})

	payload, err := json.Marshal(CreateActivityRequest{Weight: 25})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/parameters/"+uuid.NewString()+"/activities", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestUpdateActivityHandler_Success(t *testing.T) {
	svc := &stubActivityService{}
	router := newActivityRouter(svc)

	activityID := uuid.New()
	payload, err := json.Marshal(UpdateActivityRequest{Name: "Tarea 1 (v2)", Weight: 30, Active: false})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPut, "/activities/"+activityID.String(), bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	require.Len(t, svc.updates, 1)
	assert.Equal(t, "Tarea 1 (v2)", svc.updates[0].Name)
	assert.False(t, svc.updates[0].Active)
}

func TestUpdateActivityHandler_NotFound(t *testing.T) {
	svc := &stubActivityService{err: service.ErrActivityNotFound}
	router := newActivityRouter(svc)

	payload, err := json.Marshal(UpdateActivityRequest{Name: "Tarea 1", Weight: 30, Active: true})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPut, "/activities/"+uuid.NewString(), bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestGetActivityHandler_Success(t *testing.T) {
	router := newActivityRouter(&stubActivityService{})

	activityID := uuid.New()
	req := httptest.NewRequest(http.MethodGet, "/activities/"+activityID.String(), nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var resp ActivityResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, activityID.String(), resp.ID)
}

func TestGetActivityHandler_InvalidID(t *testing.T) {
	router := newActivityRouter(&stubActivityService{})

	req := httptest.NewRequest(http.MethodGet, "/activities/not-a-uuid", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}
