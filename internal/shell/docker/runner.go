package docker

import (
	"context"
	"errors"
	"log/slog"
	"os/exec"
	"strings"
	"time"

	"github.com/artpar/deployguard/internal/core/deployment"
)

// =============================================================================
// Runner
// =============================================================================

// Runner executes a runtime command vector under a time limit.
type Runner interface {
	Execute(ctx context.Context, cmd deployment.Command, timeout time.Duration) Outcome
}

// ExecCommandFunc is the function signature for creating exec.Cmd.
// This allows injection of mock implementations for testing. Implementations
// must return a command built with exec.CommandContext.
type ExecCommandFunc func(ctx context.Context, name string, arg ...string) *exec.Cmd

// Runner defaults.
const (
	DefaultBinary         = "docker"
	DefaultMaxOutputBytes = 1 << 20
	DefaultKillGrace      = 2 * time.Second
)

// RunnerConfig configures a CLIRunner. Zero values fall back to defaults.
type RunnerConfig struct {
	Binary         string
	MaxOutputBytes int
	KillGrace      time.Duration // bound on pipe draining after the child is killed
}

// RunnerOption configures a CLIRunner.
type RunnerOption func(*CLIRunner)

// WithExecCommand sets a custom exec command function for testing.
func WithExecCommand(fn ExecCommandFunc) RunnerOption {
	return func(r *CLIRunner) {
		r.execCommand = fn
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) RunnerOption {
	return func(r *CLIRunner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// CLIRunner runs the container runtime binary directly, never through a shell.
// It is safe for concurrent use; every Execute spawns its own child.
type CLIRunner struct {
	binary      string
	maxOutput   int
	killGrace   time.Duration
	execCommand ExecCommandFunc
	logger      *slog.Logger
}

// NewCLIRunner creates a CLIRunner.
func NewCLIRunner(cfg RunnerConfig, opts ...RunnerOption) *CLIRunner {
	r := &CLIRunner{
		binary:      cfg.Binary,
		maxOutput:   cfg.MaxOutputBytes,
		killGrace:   cfg.KillGrace,
		execCommand: exec.CommandContext,
		logger:      slog.Default(),
	}
	if r.binary == "" {
		r.binary = DefaultBinary
	}
	if r.maxOutput == 0 {
		r.maxOutput = DefaultMaxOutputBytes
	}
	if r.killGrace <= 0 {
		r.killGrace = DefaultKillGrace
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Binary returns the runtime binary name or path.
func (r *CLIRunner) Binary() string {
	return r.binary
}

// Execute runs cmd and waits for it to finish or for timeout to elapse.
// A timeout of zero or less means only ctx bounds the call.
//
// Failures never panic or return early: every path yields an Outcome, and the
// child is reaped before Execute returns.
func (r *CLIRunner) Execute(ctx context.Context, cmd deployment.Command, timeout time.Duration) Outcome {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	subcommand := cmd.Subcommand()
	logger := r.logger.With("binary", r.binary, "subcommand", subcommand)
	logger.Debug("executing runtime command", "args", len(cmd), "timeout", timeout)

	stdout := newLimitedBuffer(r.maxOutput)
	stderr := newLimitedBuffer(r.maxOutput)

	c := r.execCommand(ctx, r.binary, cmd.Args()...)
	c.Stdin = nil
	c.Stdout = stdout
	c.Stderr = stderr
	c.WaitDelay = r.killGrace
	configureProcessGroup(c)

	start := time.Now()
	err := c.Run()

	out := Outcome{
		Stdout:    stdout.String(),
		Stderr:    stderr.String(),
		Truncated: stdout.truncated || stderr.truncated,
		Duration:  time.Since(start),
	}

	switch {
	case err == nil:
		out.Succeeded = true
		out.Identifier = strings.TrimSpace(out.Stdout)

	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		out.TimedOut = true
		out.Err = NewDockerError("Execute", "runtime", subcommand,
			"timed out after "+timeout.String(), ErrExecutionTimeout)

	case ctx.Err() != nil:
		out.Err = NewDockerError("Execute", "runtime", subcommand, ctx.Err().Error(), ErrExecutionFailed)

	default:
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			code := exitErr.ExitCode()
			out.ExitCode = &code
			out.Err = NewDockerError("Execute", "runtime", subcommand,
				strings.TrimSpace(out.Stderr), ErrRuntimeFailure)
		} else {
			out.Err = NewDockerError("Execute", "runtime", subcommand, err.Error(), ErrExecutionFailed)
		}
	}

	if out.Succeeded {
		logger.Debug("runtime command finished", "duration", out.Duration)
	} else {
		attrs := []any{"outcome", out.Label(), "duration", out.Duration}
		if out.ExitCode != nil {
			attrs = append(attrs, "exit_code", *out.ExitCode)
		}
		if out.Err != nil {
			attrs = append(attrs, "error", out.Err)
		}
		logger.Warn("runtime command failed", attrs...)
	}
	if out.Truncated {
		logger.Warn("runtime output truncated", "limit_bytes", r.maxOutput)
	}

	return out
}
