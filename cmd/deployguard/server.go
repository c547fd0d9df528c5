package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/artpar/deployguard/internal/shell/api"
	"github.com/artpar/deployguard/internal/shell/docker"
	"github.com/artpar/deployguard/internal/shell/metrics"
)

// =============================================================================
// Exit Codes
// =============================================================================

const (
	ExitSuccess         = 0
	ExitConfigError     = 1
	ExitRejected        = 2
	ExitDockerError     = 3
	ExitHTTPServerError = 4
	ExitRuntimeError    = 5
)

// =============================================================================
// Pipeline Wiring
// =============================================================================

// newOrchestrator builds the deployment pipeline from configuration. m may be nil.
func newOrchestrator(cfg *Config, logger *slog.Logger, m *metrics.Metrics) (*docker.Orchestrator, error) {
	trust, err := cfg.TrustPolicy()
	if err != nil {
		return nil, &ServerError{Op: "TrustPolicy", Err: err, ExitCode: ExitConfigError}
	}

	runner := docker.NewCLIRunner(docker.RunnerConfig{
		Binary:         cfg.Runtime.Binary,
		MaxOutputBytes: cfg.Runtime.MaxOutputBytes,
		KillGrace:      cfg.Runtime.KillGrace,
	}, docker.WithLogger(logger))

	return docker.NewOrchestrator(runner, docker.OrchestratorConfig{
		Policy:        trust,
		DeployTimeout: cfg.Runtime.DeployTimeout,
		StatusTimeout: cfg.Runtime.StatusTimeout,
	}, logger, m), nil
}

// =============================================================================
// Server
// =============================================================================

// Server represents the deployguard HTTP server.
type Server struct {
	config     *Config
	httpServer *http.Server
	daemon     *docker.DaemonClient
	logger     *slog.Logger
}

// NewServer creates a new server with the given config.
func NewServer(cfg *Config, logger *slog.Logger) (*Server, error) {
	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New()
	}

	orch, err := newOrchestrator(cfg, logger, m)
	if err != nil {
		return nil, err
	}

	// Connect to Docker for readiness checks
	d, err := docker.NewDaemonClient(cfg.Docker.Host)
	if err != nil {
		return nil, &ServerError{
			Op:       "NewServer",
			Err:      err,
			ExitCode: ExitDockerError,
		}
	}

	// An unreachable daemon is reported by /ready rather than failing startup.
	pingCtx, cancel := context.WithTimeout(context.Background(), cfg.Runtime.StatusTimeout)
	info, err := d.Ping(pingCtx)
	cancel()
	if err != nil {
		logger.Warn("docker daemon not reachable", "host", d.Host(), "error", err)
	} else {
		logger.Info("docker daemon reachable",
			"host", d.Host(),
			"api_version", info.APIVersion,
			"os_type", info.OSType,
		)
	}

	trust := orch.Policy()
	logger.Info("trust policy loaded",
		"registry_prefix", trust.RegistryPrefix(),
		"strict_registry", trust.StrictRegistry(),
		"args_mode", trust.ArgsMode(),
		"allowed_extensions", trust.AllowedExtensions(),
	)

	handler := api.NewHandler(orch, d, m, logger, api.HandlerConfig{
		MaxUploadBytes: cfg.Upload.MaxBytes,
	})

	httpServer := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      handler.Routes(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	return &Server{
		config:     cfg,
		httpServer: httpServer,
		daemon:     d,
		logger:     logger,
	}, nil
}

// Start starts the server and blocks until shutdown.
func (s *Server) Start(ctx context.Context) error {
	// Setup signal handling
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	// Start HTTP server in goroutine
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting HTTP server",
			"address", s.config.Server.Address())
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// Wait for shutdown signal or error
	select {
	case sig := <-sigCh:
		s.logger.Info("received shutdown signal", "signal", sig)
	case err := <-errCh:
		return &ServerError{
			Op:       "Start",
			Err:      err,
			ExitCode: ExitHTTPServerError,
		}
	case <-ctx.Done():
		s.logger.Info("context cancelled")
	}

	return s.Shutdown(context.Background())
}

// Shutdown gracefully shuts down the server. In-flight deployments finish or
// hit their own timeout; the runtime children are not orphaned.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("initiating graceful shutdown")

	shutdownCtx, cancel := context.WithTimeout(ctx, s.config.Server.ShutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		s.logger.Error("HTTP server shutdown error", "error", err)
	}

	if err := s.daemon.Close(); err != nil {
		s.logger.Error("Docker client close error", "error", err)
	}

	s.logger.Info("shutdown complete")
	return nil
}

// =============================================================================
// Server Error
// =============================================================================

// ServerError represents an error during server operation.
type ServerError struct {
	Op       string
	Err      error
	ExitCode int
}

func (e *ServerError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *ServerError) Unwrap() error {
	return e.Err
}
