package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

func TestServerHealthzReturnsOK(t *testing.T) {
	registry := prometheus.NewRegistry()
	New(registry)
	s := NewServer(":0", registry)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	s.httpServer.Handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "ok", rec.Body.String())
}

func TestServerMetricsServesRegisteredCollectors(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := New(registry)
	m.WorkersBusy.Set(3)
	s := NewServer(":0", registry)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	s.httpServer.Handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "ebuild_workers_busy 3")
}
