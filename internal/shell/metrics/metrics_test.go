package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Counters(t *testing.T) {
	m := New()

	m.ObserveDeploy(ResultSuccess)
	m.ObserveDeploy(ResultSuccess)
	m.ObserveDeploy(ResultTimeout)
	m.ObserveRejection("untrusted_source")
	m.AddDroppedEnv(3)
	m.AddDroppedEnv(0)
	m.ObserveProbe(ProbeNotFound)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.deployments.WithLabelValues(ResultSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.deployments.WithLabelValues(ResultTimeout)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.rejections.WithLabelValues("untrusted_source")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.droppedEnv))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.probes.WithLabelValues(ProbeNotFound)))
}

func TestMetrics_ObserveExecution(t *testing.T) {
	m := New()

	m.ObserveExecution("run", "success", 150*time.Millisecond)

	assert.Equal(t, 1, testutil.CollectAndCount(m.executionDuration))
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.ObserveDeploy(ResultSuccess)
		m.ObserveRejection("x")
		m.AddDroppedEnv(1)
		m.ObserveExecution("run", "success", time.Second)
		m.ObserveProbe(ProbeRunning)
	})
	assert.Nil(t, m.Registry())

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMetrics_MiddlewareUsesRoutePattern(t *testing.T) {
	m := New()
	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/status/{name}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	for _, name := range []string{"a", "b"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/status/"+name, nil))
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("GET", "/status/{name}", "404")))
}

func TestMetrics_Handler(t *testing.T) {
	m := New()
	m.ObserveDeploy(ResultSuccess)

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `deployguard_deployments_total{result="success"} 1`)
	assert.Contains(t, string(body), "go_goroutines")
}
