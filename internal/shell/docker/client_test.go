package docker

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDaemonClient_PingUnreachable(t *testing.T) {
	c, err := NewDaemonClient("tcp://127.0.0.1:1")
	require.NoError(t, err)
	defer c.Close()

	assert.Equal(t, "tcp://127.0.0.1:1", c.Host())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err = c.Ping(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConnectionFailed)
}

func TestNewDaemonClient_InvalidHost(t *testing.T) {
	_, err := NewDaemonClient("not a host")
	assert.ErrorIs(t, err, ErrConnectionFailed)
}
