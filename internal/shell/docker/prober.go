package docker

import (
	"context"
	"log/slog"
	"time"

	"github.com/artpar/deployguard/internal/core/deployment"
	"github.com/artpar/deployguard/internal/core/monitoring"
)

// =============================================================================
// Status Prober
// =============================================================================

// DefaultStatusTimeout bounds a single inspect call.
const DefaultStatusTimeout = 10 * time.Second

// Prober reports the live state of a named workload.
type Prober struct {
	runner  Runner
	timeout time.Duration
	logger  *slog.Logger
}

// NewProber creates a Prober. A zero timeout uses DefaultStatusTimeout.
func NewProber(runner Runner, timeout time.Duration, logger *slog.Logger) *Prober {
	if timeout <= 0 {
		timeout = DefaultStatusTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Prober{runner: runner, timeout: timeout, logger: logger}
}

// Probe inspects the workload called name.
//
// A nonzero exit from the runtime means the workload is unknown and yields a
// report with Found == false and a nil error. Errors are reserved for a
// timeout (ErrExecutionTimeout), a failure to run the runtime at all
// (ErrExecutionFailed) and unexpected output (monitoring.ErrMalformedOutput).
func (p *Prober) Probe(ctx context.Context, name string) (monitoring.StatusReport, error) {
	out := p.runner.Execute(ctx, deployment.BuildInspectCommand(name), p.timeout)

	switch {
	case out.TimedOut:
		return monitoring.StatusReport{}, out.Err
	case out.Succeeded:
	case out.ExitCode != nil:
		p.logger.Debug("workload not found", "name", name, "exit_code", *out.ExitCode)
		return monitoring.NotFound(), nil
	default:
		err := out.Err
		if err == nil {
			err = NewDockerError("Probe", "container", name, "runtime did not run", ErrExecutionFailed)
		}
		return monitoring.StatusReport{}, err
	}

	report, err := monitoring.ParseInspectOutput([]byte(out.Stdout))
	if err != nil {
		p.logger.Warn("unexpected inspect output", "name", name, "error", err)
		return monitoring.StatusReport{}, NewDockerError("Probe", "container", name, err.Error(), err)
	}
	return report, nil
}
