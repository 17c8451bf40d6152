package http

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/half-shot/matrix-poweredup/pkg/options"
)

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestProbes(t *testing.T) {
	var readyErr error = errors.New("hub not ready")
	srv := NewServer(options.NewHttpOptions(":0"), nil, func() error { return readyErr })

	assert.Equal(t, http.StatusOK, get(t, srv.Handler(), "/healthz").Code)

	rec := get(t, srv.Handler(), "/readyz")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "hub not ready")

	readyErr = nil
	assert.Equal(t, http.StatusOK, get(t, srv.Handler(), "/readyz").Code)

	assert.Equal(t, http.StatusNotFound, get(t, srv.Handler(), "/metrics").Code)
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	counter := prometheus.NewCounter(prometheus.CounterOpts{Name: "test_total", Help: "test"})
	require.NoError(t, reg.Register(counter))
	counter.Inc()

	srv := NewServer(options.NewHttpOptions(":0"), reg, nil)
	rec := get(t, srv.Handler(), "/metrics")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "test_total 1")
}
