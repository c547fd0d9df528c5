package docker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/artpar/deployguard/internal/core/deployment"
	"github.com/artpar/deployguard/internal/core/descriptor"
	"github.com/artpar/deployguard/internal/core/monitoring"
	"github.com/artpar/deployguard/internal/core/policy"
	"github.com/artpar/deployguard/internal/core/validation"
	"github.com/artpar/deployguard/internal/shell/metrics"
)

// =============================================================================
// Orchestrator - Runs the Deployment Pipeline
// =============================================================================

// DefaultDeployTimeout bounds a single run call.
const DefaultDeployTimeout = 30 * time.Second

// DeployStatus is the caller-facing status of a deployment attempt.
type DeployStatus string

const (
	DeployStatusSuccess DeployStatus = "success"
	DeployStatusError   DeployStatus = "error"
)

// DeployResult describes an executed deployment attempt.
type DeployResult struct {
	Status       DeployStatus
	ContainerID  string
	Message      string
	ErrorMessage string   // runtime diagnostic text, verbatim
	Warnings     []string // skipped mounts and dropped environment entries
	TimedOut     bool
	ExitCode     *int
	Duration     time.Duration
}

// Plan is the output of the pure pipeline stages for one descriptor.
type Plan struct {
	Descriptor descriptor.Descriptor
	Env        deployment.SanitizedEnv
	Command    deployment.Command
	Warnings   []string
}

// OrchestratorConfig configures an Orchestrator.
type OrchestratorConfig struct {
	Policy        policy.TrustPolicy
	DeployTimeout time.Duration
	StatusTimeout time.Duration
}

// Orchestrator validates, sanitizes, synthesizes and executes deployments, and
// answers status queries.
type Orchestrator struct {
	policy        policy.TrustPolicy
	runner        Runner
	prober        *Prober
	deployTimeout time.Duration
	logger        *slog.Logger
	metrics       *metrics.Metrics
}

// NewOrchestrator creates a new orchestrator. m may be nil.
func NewOrchestrator(runner Runner, cfg OrchestratorConfig, logger *slog.Logger, m *metrics.Metrics) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.DeployTimeout <= 0 {
		cfg.DeployTimeout = DefaultDeployTimeout
	}
	return &Orchestrator{
		policy:        cfg.Policy,
		runner:        runner,
		prober:        NewProber(runner, cfg.StatusTimeout, logger),
		deployTimeout: cfg.DeployTimeout,
		logger:        logger,
		metrics:       m,
	}
}

// Policy returns the trust policy the orchestrator enforces.
func (o *Orchestrator) Policy() policy.TrustPolicy {
	return o.policy
}

// =============================================================================
// Plan
// =============================================================================

// Plan runs validation, projection, sanitization and synthesis without
// executing anything.
//
// Errors are *validation.Error for a policy rejection or *descriptor.FieldError
// for a field of the wrong shape. Both are caller-correctable.
func (o *Orchestrator) Plan(doc descriptor.Document) (Plan, error) {
	verdict := validation.ValidateDescriptor(doc, o.policy)
	if !verdict.Valid {
		return Plan{}, verdict.Err
	}

	d, warnings, err := descriptor.FromDocument(doc)
	if err != nil {
		return Plan{}, err
	}

	env := deployment.SanitizeEnvironment(d.Environment)
	for _, key := range env.Dropped {
		warnings = append(warnings, fmt.Sprintf("environment variable %q dropped: value contains a disallowed sequence", key))
	}

	return Plan{
		Descriptor: d,
		Env:        env,
		Command:    deployment.BuildRunCommand(d, env),
		Warnings:   warnings,
	}, nil
}

// =============================================================================
// Deploy
// =============================================================================

// Deploy runs the whole pipeline for one descriptor.
//
// Rejections return a zero DeployResult and a caller-correctable error before
// any process is spawned. Once the runtime has been invoked the result is
// always populated; the error is nil on success and otherwise wraps
// ErrRuntimeFailure, ErrExecutionTimeout or ErrExecutionFailed.
func (o *Orchestrator) Deploy(ctx context.Context, doc descriptor.Document) (DeployResult, error) {
	plan, err := o.Plan(doc)
	if err != nil {
		o.metrics.ObserveRejection(rejectionKind(err))
		o.metrics.ObserveDeploy(metrics.ResultRejected)
		o.logger.Info("deployment rejected", "error", err)
		return DeployResult{}, err
	}

	o.metrics.AddDroppedEnv(len(plan.Env.Dropped))
	for _, w := range plan.Warnings {
		o.logger.Warn("descriptor warning", "name", plan.Descriptor.Name, "warning", w)
	}

	o.logger.Info("deploying workload",
		"name", plan.Descriptor.Name,
		"image", plan.Descriptor.Image,
		"env", plan.Env.Len(),
		"volumes", len(plan.Descriptor.Volumes),
		"ports", len(plan.Descriptor.Ports),
		"args", len(plan.Descriptor.Args),
	)

	out := o.runner.Execute(ctx, plan.Command, o.deployTimeout)
	o.metrics.ObserveExecution(plan.Command.Subcommand(), out.Label(), out.Duration)

	result := DeployResult{
		Status:   DeployStatusError,
		Warnings: plan.Warnings,
		TimedOut: out.TimedOut,
		ExitCode: out.ExitCode,
		Duration: out.Duration,
	}

	switch {
	case out.Succeeded:
		result.Status = DeployStatusSuccess
		result.ContainerID = out.Identifier
		result.Message = "Container deployed successfully"
		o.metrics.ObserveDeploy(metrics.ResultSuccess)
		o.logger.Info("workload deployed", "name", plan.Descriptor.Name, "container_id", out.Identifier, "duration", out.Duration)
		return result, nil

	case out.TimedOut:
		result.ErrorMessage = "Deployment timeout"
		o.metrics.ObserveDeploy(metrics.ResultTimeout)

	case out.ExitCode != nil:
		result.ErrorMessage = out.Stderr
		o.metrics.ObserveDeploy(metrics.ResultRuntimeFailure)

	default:
		result.ErrorMessage = errorText(out.Err)
		o.metrics.ObserveDeploy(metrics.ResultExecutionFailed)
	}

	err = out.Err
	if err == nil {
		err = NewDockerError("Deploy", "container", plan.Descriptor.Name, "runtime did not succeed", ErrExecutionFailed)
	}
	o.logger.Error("deployment failed", "name", plan.Descriptor.Name, "outcome", out.Label(), "error", err)
	return result, err
}

// =============================================================================
// Status
// =============================================================================

// Status probes the workload called name. See Prober.Probe.
func (o *Orchestrator) Status(ctx context.Context, name string) (monitoring.StatusReport, error) {
	report, err := o.prober.Probe(ctx, name)
	o.metrics.ObserveProbe(probeLabel(report, err))
	return report, err
}

// =============================================================================
// Helpers
// =============================================================================

func rejectionKind(err error) string {
	var verr *validation.Error
	if errors.As(err, &verr) {
		return string(verr.Kind)
	}
	return "malformed_field"
}

func probeLabel(report monitoring.StatusReport, err error) string {
	switch {
	case errors.Is(err, ErrExecutionTimeout):
		return metrics.ProbeTimeout
	case errors.Is(err, monitoring.ErrMalformedOutput):
		return metrics.ProbeMalformed
	case err != nil:
		return metrics.ProbeError
	case !report.Found:
		return metrics.ProbeNotFound
	case report.IsRunning():
		return metrics.ProbeRunning
	default:
		return metrics.ProbeStopped
	}
}

func errorText(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
