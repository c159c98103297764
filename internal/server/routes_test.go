package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/exportguard/exportguardd/internal/core/domain"
	"github.com/exportguard/exportguardd/internal/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthCheckBeforeFirstCycle(t *testing.T) {
	s := &Server{status: &events.StatusStore{}}
	handler := s.RegisterRoutes()

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthcheck", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestStatusAfterCycle(t *testing.T) {
	require := require.New(t)

	store := &events.StatusStore{}
	store.Set(events.NewCycleStatus(time.Now(), domain.CycleResult{
		Outcome:          domain.OutcomeLimitUpdated,
		ReadSource:       domain.SourcePrimary,
		WriteSource:      domain.SourceBackup,
		GridPowerWatt:    50,
		MeterReachable:   true,
		CurrentLimitWatt: 300,
		AppliedLimitWatt: 345,
	}, nil))

	s := &Server{status: store}
	handler := s.RegisterRoutes()

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthcheck", nil))
	require.Equal(http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/status", nil))
	require.Equal(http.StatusOK, rec.Code)

	var status events.CycleStatus
	require.NoError(json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, "limit_updated", status.Outcome)
	assert.Equal(t, "primary", status.ReadSource)
	assert.Equal(t, "backup", status.WriteSource)
	assert.Equal(t, 345, status.AppliedLimitWatt)
}
