package monitoring

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/docker/docker/api/types/container"
)

// =============================================================================
// Status Report
// =============================================================================

// Workload status labels reported to callers.
const (
	StatusRunning = "running"
	StatusStopped = "stopped"
)

// ErrMalformedOutput is returned when inspect output does not have the
// expected shape. It is distinct from "not found".
var ErrMalformedOutput = errors.New("malformed inspect output")

// StatusReport is the normalized result of a status probe.
// When Found is false every other field is zero.
type StatusReport struct {
	Found   bool
	Running *bool
	State   json.RawMessage // the runtime's State object, verbatim
	Status  string          // StatusRunning or StatusStopped
	Health  HealthStatus
}

// NotFound returns the report for a workload the runtime does not know.
func NotFound() StatusReport {
	return StatusReport{Found: false}
}

// IsRunning reports whether the workload was found and running.
func (r StatusReport) IsRunning() bool {
	return r.Found && r.Running != nil && *r.Running
}

// =============================================================================
// Inspect Output Parsing
// =============================================================================

// inspectEntry is the subset of one inspect array element that is read.
type inspectEntry struct {
	State        json.RawMessage `json:"State"`
	RestartCount int             `json:"RestartCount"`
}

// ParseInspectOutput normalizes the stdout of a successful inspect call.
//
// The output must be a JSON array whose first element holds a State object
// with a boolean Running field; anything else wraps ErrMalformedOutput.
//
// Example:
//
//	r, err := ParseInspectOutput([]byte(`[{"State":{"Status":"running","Running":true}}]`))
//	// r.Found == true, r.Status == "running", r.Health == HealthStatusHealthy
func ParseInspectOutput(stdout []byte) (StatusReport, error) {
	var entries []inspectEntry
	if err := json.Unmarshal(stdout, &entries); err != nil {
		return StatusReport{}, fmt.Errorf("%w: %v", ErrMalformedOutput, err)
	}
	if len(entries) == 0 {
		return StatusReport{}, fmt.Errorf("%w: empty result", ErrMalformedOutput)
	}

	entry := entries[0]
	raw := bytes.TrimSpace(entry.State)
	if len(raw) == 0 || raw[0] != '{' {
		return StatusReport{}, fmt.Errorf("%w: State is missing or not an object", ErrMalformedOutput)
	}

	var state container.State
	if err := json.Unmarshal(raw, &state); err != nil {
		return StatusReport{}, fmt.Errorf("%w: State: %v", ErrMalformedOutput, err)
	}

	// container.State cannot tell a missing Running from false.
	var flags struct {
		Running *bool `json:"Running"`
	}
	if err := json.Unmarshal(raw, &flags); err != nil || flags.Running == nil {
		return StatusReport{}, fmt.Errorf("%w: State has no Running flag", ErrMalformedOutput)
	}

	running := state.Running
	report := StatusReport{
		Found:   true,
		Running: &running,
		State:   json.RawMessage(raw),
		Status:  StatusStopped,
	}
	if running {
		report.Status = StatusRunning
	}

	var healthCheck *string
	if state.Health != nil {
		h := string(state.Health.Status)
		healthCheck = &h
	}
	status := string(state.Status)
	if status == "" && running {
		status = StatusRunning
	}
	report.Health = DetermineContainerHealth(status, healthCheck, entry.RestartCount)

	return report, nil
}
