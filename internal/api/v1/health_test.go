package v1

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ayushbarthwal/eatsafe/internal/errors"
)

func TestHealthCheck(t *testing.T) {
	pinger := &MockPinger{}
	pinger.On("Ping", mock.Anything).Return(nil)
	env := setupTestEnvironment(t, WithPinger(pinger))

	req := httptest.NewRequest(http.MethodGet, "/api/health", http.NoBody)
	rec := httptest.NewRecorder()
	c := env.e.NewContext(req, rec)
	c.SetPath("/api/health")

	require.NoError(t, env.ctrl.HealthCheck(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	resp := decode[HealthResponse](t, rec)
	assert.Equal(t, "healthy", resp.Status)
	assert.Equal(t, "test", resp.Version)
	assert.Equal(t, "connected", resp.Database.Status)
	assert.GreaterOrEqual(t, resp.UptimeSeconds, float64(0))
	require.NotNil(t, resp.System)
	assert.GreaterOrEqual(t, resp.System.MemoryUsedPct, float64(0))
	assert.LessOrEqual(t, resp.System.MemoryUsedPct, float64(100))
	pinger.AssertExpectations(t)
}

func TestHealthCheckDatabaseDown(t *testing.T) {
	pinger := &MockPinger{}
	pinger.On("Ping", mock.Anything).Return(errors.NewStd("connection refused"))
	env := setupTestEnvironment(t, WithPinger(pinger))

	rec := env.do(http.MethodGet, "/api/health", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	resp := decode[HealthResponse](t, rec)
	assert.Equal(t, "unhealthy", resp.Status)
	assert.Equal(t, "disconnected", resp.Database.Status)
	assert.Equal(t, "connection refused", resp.Database.Error)
}
