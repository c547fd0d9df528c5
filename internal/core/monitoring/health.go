// Package monitoring provides pure functions for workload status reporting.
// This package contains NO I/O: the shell runs the inspect call and hands the
// raw output here.
package monitoring

// =============================================================================
// Health Status
// =============================================================================

// HealthStatus represents the derived health of a single workload.
type HealthStatus string

const (
	HealthStatusHealthy   HealthStatus = "healthy"
	HealthStatusUnhealthy HealthStatus = "unhealthy"
	HealthStatusDegraded  HealthStatus = "degraded"
	HealthStatusUnknown   HealthStatus = "unknown"
)

// restartThreshold is the restart count above which a running workload is
// considered degraded.
const restartThreshold = 3

// DetermineContainerHealth determines health from container state and metrics.
// This is a pure function that maps container state to health status.
//
// Parameters:
// - status: Container status (running, paused, restarting, exited, dead)
// - healthCheck: Runtime health check result if available (healthy, unhealthy, starting)
// - restarts: Number of restarts since container creation
func DetermineContainerHealth(status string, healthCheck *string, restarts int) HealthStatus {
	// The runtime reported no status at all
	if status == "" {
		return HealthStatusUnknown
	}

	// Non-running containers are unhealthy
	if status != "running" {
		return HealthStatusUnhealthy
	}

	if healthCheck != nil && *healthCheck == "unhealthy" {
		return HealthStatusUnhealthy
	}

	// Many restarts indicate instability
	if restarts > restartThreshold {
		return HealthStatusDegraded
	}

	if healthCheck != nil && *healthCheck == "starting" {
		return HealthStatusDegraded
	}

	return HealthStatusHealthy
}
