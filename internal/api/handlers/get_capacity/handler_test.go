package get_capacity

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/internal/service/capacity"
	"github.com/m04kA/SMC-AppointmentService/internal/service/capacity/models"
)

type fakeService struct {
	scope domain.CapacityScope
	err   error
}

func (f *fakeService) GetScopeCapacity(_ context.Context, scope domain.CapacityScope) (*models.ScopeCapacityResponse, error) {
	f.scope = scope
	if f.err != nil {
		return nil, f.err
	}
	return &models.ScopeCapacityResponse{Scope: scope.String(), EffectiveMax: 3, Source: string(domain.LimitFromSystem)}, nil
}

func (f *fakeService) GetSystemCapacity(_ context.Context) (*models.SystemCapacityResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &models.SystemCapacityResponse{MaxOverlappingAppointments: 3}, nil
}

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

func get(svc CapacityService, path string) *httptest.ResponseRecorder {
	h := NewHandler(svc, nopLogger{})
	r := mux.NewRouter()
	r.HandleFunc("/services/{serviceId}/capacity", h.HandleService)
	r.HandleFunc("/teams/{teamId}/capacity", h.HandleTeam)
	r.HandleFunc("/settings/capacity", h.HandleSystem)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestHandleTeam(t *testing.T) {
	svc := &fakeService{}
	rec := get(svc, "/teams/5/capacity")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, domain.TeamScope(5), svc.scope)

	var body models.ScopeCapacityResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "team:5", body.Scope)
	assert.Equal(t, 3, body.EffectiveMax)
	assert.Nil(t, body.MaxOverlap)
}

func TestHandle_Errors(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, get(&fakeService{}, "/services/abc/capacity").Code)
	assert.Equal(t, http.StatusInternalServerError,
		get(&fakeService{err: capacity.ErrNoCapacityLimit}, "/services/1/capacity").Code)
	assert.Equal(t, http.StatusNotFound,
		get(&fakeService{err: capacity.ErrNoCapacityLimit}, "/settings/capacity").Code)
	assert.Equal(t, http.StatusOK, get(&fakeService{}, "/settings/capacity").Code)
}
