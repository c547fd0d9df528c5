// Package metrics provides the Prometheus collectors for the deployment
// pipeline and the HTTP surface.
//
// All methods are safe on a nil *Metrics, so components can be built without
// metrics in tests and CLI one-shots.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "deployguard"

// Deploy results.
const (
	ResultSuccess         = "success"
	ResultRejected        = "rejected"
	ResultRuntimeFailure  = "runtime_failure"
	ResultTimeout         = "timeout"
	ResultExecutionFailed = "execution_failed"
)

// Probe results.
const (
	ProbeRunning   = "running"
	ProbeStopped   = "stopped"
	ProbeNotFound  = "not_found"
	ProbeMalformed = "malformed"
	ProbeTimeout   = "timeout"
	ProbeError     = "error"
)

// Metrics holds the collectors and the registry they are registered on.
type Metrics struct {
	registry *prometheus.Registry

	deployments       *prometheus.CounterVec
	rejections        *prometheus.CounterVec
	droppedEnv        prometheus.Counter
	executionDuration *prometheus.HistogramVec
	probes            *prometheus.CounterVec
	httpRequests      *prometheus.CounterVec
	httpDuration      *prometheus.HistogramVec
}

// New creates a Metrics with its own registry. Process and Go runtime
// collectors are registered alongside the pipeline collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		deployments: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "deployments_total",
				Help:      "Deployment requests by result",
			},
			[]string{"result"},
		),
		rejections: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "descriptor_rejections_total",
				Help:      "Descriptors rejected before execution, by reason kind",
			},
			[]string{"kind"},
		),
		droppedEnv: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "environment_entries_dropped_total",
				Help:      "Environment entries dropped by the sanitizer",
			},
		),
		executionDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "runtime_execution_seconds",
				Help:      "Wall time of container runtime invocations",
				Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
			},
			[]string{"subcommand", "outcome"},
		),
		probes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "status_probes_total",
				Help:      "Status probes by result",
			},
			[]string{"result"},
		),
		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "HTTP requests by route and status code",
			},
			[]string{"method", "route", "status"},
		),
		httpDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request latency by route",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
	}

	m.registry.MustRegister(
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewGoCollector(),
		m.deployments,
		m.rejections,
		m.droppedEnv,
		m.executionDuration,
		m.probes,
		m.httpRequests,
		m.httpDuration,
	)
	return m
}

// Registry returns the registry backing these collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveDeploy counts one deployment request.
func (m *Metrics) ObserveDeploy(result string) {
	if m == nil {
		return
	}
	m.deployments.WithLabelValues(result).Inc()
}

// ObserveRejection counts one descriptor rejected before execution.
func (m *Metrics) ObserveRejection(kind string) {
	if m == nil {
		return
	}
	m.rejections.WithLabelValues(kind).Inc()
}

// AddDroppedEnv counts sanitizer drops.
func (m *Metrics) AddDroppedEnv(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.droppedEnv.Add(float64(n))
}

// ObserveExecution records one runtime invocation.
func (m *Metrics) ObserveExecution(subcommand, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.executionDuration.WithLabelValues(subcommand, outcome).Observe(d.Seconds())
}

// ObserveProbe counts one status probe.
func (m *Metrics) ObserveProbe(result string) {
	if m == nil {
		return
	}
	m.probes.WithLabelValues(result).Inc()
}

// Middleware records request counts and latency per chi route pattern.
// Unmatched requests are reported under the route "unmatched".
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.httpRequests.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		m.httpDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}
