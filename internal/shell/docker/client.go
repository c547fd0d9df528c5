package docker

import (
	"context"
	"fmt"

	"github.com/docker/docker/client"
)

// =============================================================================
// Daemon Client
// =============================================================================

// DaemonInfo is what a successful ping reports about the daemon.
type DaemonInfo struct {
	APIVersion string
	OSType     string
}

// Pinger checks whether the container daemon is reachable.
type Pinger interface {
	Ping(ctx context.Context) (DaemonInfo, error)
}

// DaemonClient talks to the daemon API through the Docker SDK. It is used for
// readiness only; deployments always go through the CLI runner.
type DaemonClient struct {
	cli *client.Client
}

// NewDaemonClient creates a new daemon client.
// If host is empty, it uses the default Docker host from environment.
// No connection is made until the first call.
func NewDaemonClient(host string) (*DaemonClient, error) {
	opts := []client.Opt{
		client.FromEnv,
		client.WithAPIVersionNegotiation(),
	}
	if host != "" {
		opts = append(opts, client.WithHost(host))
	}

	cli, err := client.NewClientWithOpts(opts...)
	if err != nil {
		return nil, NewDockerError("NewDaemonClient", "", "", fmt.Sprintf("failed to create client: %v", err), ErrConnectionFailed)
	}
	return &DaemonClient{cli: cli}, nil
}

// Ping checks if the daemon is reachable.
func (d *DaemonClient) Ping(ctx context.Context) (DaemonInfo, error) {
	ping, err := d.cli.Ping(ctx)
	if err != nil {
		return DaemonInfo{}, NewDockerError("Ping", "daemon", "", fmt.Sprintf("failed to ping docker: %v", err), ErrConnectionFailed)
	}
	return DaemonInfo{APIVersion: ping.APIVersion, OSType: ping.OSType}, nil
}

// Host returns the daemon address in use.
func (d *DaemonClient) Host() string {
	return d.cli.DaemonHost()
}

// Close closes the underlying client.
func (d *DaemonClient) Close() error {
	return d.cli.Close()
}
