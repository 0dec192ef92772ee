package keepalive

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"MediaSearchBot/internal/userstate"
)

type fakeIndex struct {
	count int64
	err   error
}

func (f *fakeIndex) Count(context.Context) (int64, error) { return f.count, f.err }

type fakeStats struct{ stats userstate.Stats }

func (f *fakeStats) SnapshotStats() userstate.Stats { return f.stats }

func newTestServer(idx *fakeIndex, stats *fakeStats) *Server {
	reg := prometheus.NewRegistry()
	NewMetrics(reg)
	return NewServer(":0", idx, stats, reg, zap.NewNop())
}

func TestHealthOK(t *testing.T) {
	srv := newTestServer(&fakeIndex{count: 42}, &fakeStats{})

	rec := httptest.NewRecorder()
	srv.http.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, float64(42), body["indexed_files"])
}

func TestHealthDegradedWhenIndexUnavailable(t *testing.T) {
	srv := newTestServer(&fakeIndex{err: errors.New("connection refused")}, &fakeStats{})

	rec := httptest.NewRecorder()
	srv.http.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "degraded", body["status"])
}

func TestStatusReportsUsage(t *testing.T) {
	stats := &fakeStats{stats: userstate.Stats{
		TotalUsers:        7,
		TotalQueries:      100,
		TotalFilesIndexed: 55,
		BannedUsers:       2,
		StartTime:         time.Now().Add(-time.Hour),
	}}
	srv := newTestServer(&fakeIndex{count: 55}, stats)

	rec := httptest.NewRecorder()
	srv.http.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/status", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, float64(100), body["total_queries"])
	assert.Equal(t, float64(55), body["total_files"])
	assert.Equal(t, float64(2), body["banned_users"])
	assert.NotEmpty(t, body["uptime"])
}

func TestRootAndMetricsRoutes(t *testing.T) {
	srv := newTestServer(&fakeIndex{}, &fakeStats{})

	rec := httptest.NewRecorder()
	srv.http.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "running")

	rec = httptest.NewRecorder()
	srv.http.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
