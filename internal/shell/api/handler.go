// Package api provides the HTTP surface for deployments and status queries.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/artpar/deployguard/internal/core/descriptor"
	"github.com/artpar/deployguard/internal/core/monitoring"
	"github.com/artpar/deployguard/internal/core/policy"
	"github.com/artpar/deployguard/internal/core/validation"
	"github.com/artpar/deployguard/internal/shell/docker"
	"github.com/artpar/deployguard/internal/shell/metrics"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// =============================================================================
// Handler
// =============================================================================

// Deployer runs deployments and status probes. *docker.Orchestrator
// implements it.
type Deployer interface {
	Deploy(ctx context.Context, doc descriptor.Document) (docker.DeployResult, error)
	Status(ctx context.Context, name string) (monitoring.StatusReport, error)
	Policy() policy.TrustPolicy
}

// readyTimeout bounds the daemon ping behind GET /ready.
const readyTimeout = 3 * time.Second

// HandlerConfig configures a Handler.
type HandlerConfig struct {
	MaxUploadBytes int64
}

// Handler provides HTTP handlers for the API.
type Handler struct {
	deployer       Deployer
	pinger         docker.Pinger // nil skips the daemon check
	metrics        *metrics.Metrics
	logger         *slog.Logger
	maxUploadBytes int64
}

// NewHandler creates a new API handler. pinger and m may be nil.
func NewHandler(d Deployer, pinger docker.Pinger, m *metrics.Metrics, l *slog.Logger, cfg HandlerConfig) *Handler {
	if l == nil {
		l = slog.Default()
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = DefaultMaxUploadBytes
	}
	return &Handler{
		deployer:       d,
		pinger:         pinger,
		metrics:        m,
		logger:         l,
		maxUploadBytes: cfg.MaxUploadBytes,
	}
}

// Routes returns the router with all routes configured.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(h.metrics.Middleware)
	r.Use(h.jsonContentType)
	r.Use(h.requestIDHeader)

	// Health endpoints
	r.Get("/health", h.handleHealth)
	r.Get("/ready", h.handleReady)
	if h.metrics != nil {
		r.Method(http.MethodGet, "/metrics", h.metrics.Handler())
	}

	r.Post("/deploy", h.handleDeploy)
	r.Get("/status/{name}", h.handleStatus)

	return r
}

// =============================================================================
// Middleware
// =============================================================================

// jsonContentType sets Content-Type header to application/json.
func (h *Handler) jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		next.ServeHTTP(w, r)
	})
}

// requestIDHeader copies the request ID to the response header.
func (h *Handler) requestIDHeader(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if reqID := middleware.GetReqID(r.Context()); reqID != "" {
			w.Header().Set("X-Request-ID", reqID)
		}
		next.ServeHTTP(w, r)
	})
}

// requestLogger returns the handler logger tagged with the request ID.
func (h *Handler) requestLogger(r *http.Request) *slog.Logger {
	return h.logger.With("request_id", middleware.GetReqID(r.Context()))
}

// =============================================================================
// Health Handlers
// =============================================================================

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, HealthResponse{Status: "healthy"})
}

func (h *Handler) handleReady(w http.ResponseWriter, r *http.Request) {
	checks := make(map[string]string)

	if h.pinger == nil {
		checks["docker"] = "skipped"
		h.writeJSON(w, http.StatusOK, ReadyResponse{Status: "ready", Checks: checks})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
	defer cancel()

	if _, err := h.pinger.Ping(ctx); err != nil {
		h.requestLogger(r).Warn("docker daemon unreachable", "error", err)
		checks["docker"] = "failed"
		h.writeJSON(w, http.StatusServiceUnavailable, ReadyResponse{
			Status: "not_ready",
			Checks: checks,
		})
		return
	}
	checks["docker"] = "ok"

	h.writeJSON(w, http.StatusOK, ReadyResponse{
		Status: "ready",
		Checks: checks,
	})
}

// =============================================================================
// Deployment Handlers
// =============================================================================

func (h *Handler) handleDeploy(w http.ResponseWriter, r *http.Request) {
	logger := h.requestLogger(r)

	doc, err := h.readDescriptor(w, r)
	if err != nil {
		var upErr *uploadError
		if errors.As(err, &upErr) {
			logger.Info("descriptor upload rejected", "code", upErr.code, "error", upErr.message)
			h.writeError(w, upErr.status, upErr.message, upErr.code)
			return
		}
		h.writeError(w, http.StatusBadRequest, err.Error(), CodeInvalidDescriptor)
		return
	}

	result, err := h.deployer.Deploy(r.Context(), doc)
	if err == nil {
		logger.Info("deployment succeeded", "container_id", result.ContainerID)
		h.writeJSON(w, http.StatusOK, DeployResponse{
			Status:      string(result.Status),
			ContainerID: result.ContainerID,
			Message:     result.Message,
			Warnings:    result.Warnings,
		})
		return
	}

	var verr *validation.Error
	switch {
	case errors.As(err, &verr):
		h.writeError(w, http.StatusBadRequest, verr.Reason, string(verr.Kind))

	case errors.Is(err, descriptor.ErrMalformedField):
		h.writeError(w, http.StatusBadRequest, err.Error(), CodeMalformedField)

	case errors.Is(err, docker.ErrExecutionTimeout):
		logger.Error("deployment timed out")
		h.writeError(w, http.StatusGatewayTimeout, "Deployment timeout", CodeExecutionTimeout)

	case errors.Is(err, docker.ErrRuntimeFailure):
		logger.Error("deployment failed", "error", err)
		h.writeJSON(w, http.StatusInternalServerError, DeployResponse{
			Status:   string(docker.DeployStatusError),
			Error:    result.ErrorMessage,
			Warnings: result.Warnings,
		})

	default:
		logger.Error("deployment could not run", "error", err)
		h.writeError(w, http.StatusInternalServerError, "Deployment failed: "+err.Error(), CodeExecutionFailed)
	}
}

// =============================================================================
// Status Handlers
// =============================================================================

func (h *Handler) handleStatus(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	report, err := h.deployer.Status(r.Context(), name)
	switch {
	case errors.Is(err, docker.ErrExecutionTimeout):
		h.writeError(w, http.StatusGatewayTimeout, "Status check timeout", CodeExecutionTimeout)
		return
	case errors.Is(err, monitoring.ErrMalformedOutput):
		h.requestLogger(r).Error("unexpected inspect output", "name", name, "error", err)
		h.writeError(w, http.StatusBadGateway, "unexpected output from container runtime", CodeMalformedOutput)
		return
	case err != nil:
		h.requestLogger(r).Error("status check failed", "name", name, "error", err)
		h.writeError(w, http.StatusInternalServerError, "Status check failed: "+err.Error(), CodeExecutionFailed)
		return
	case !report.Found:
		h.writeError(w, http.StatusNotFound, "Container not found", CodeNotFound)
		return
	}

	h.writeJSON(w, http.StatusOK, StatusResponse{
		Status:  report.Status,
		Health:  string(report.Health),
		Details: report.State,
	})
}

// =============================================================================
// Helpers
// =============================================================================

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("failed to encode JSON", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message, code string) {
	h.writeJSON(w, status, ErrorResponse{
		Error: message,
		Code:  code,
	})
}
