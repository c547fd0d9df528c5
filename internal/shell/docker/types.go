// Package docker runs the container runtime CLI under a bounded supervisor and
// wires the deployment pipeline around it.
package docker

import (
	"bytes"
	"time"
)

// =============================================================================
// Execution Outcome
// =============================================================================

// Outcome is the result of one runtime invocation.
//
// Exactly one of these holds:
//   - Succeeded: exit status 0; Identifier is the trimmed stdout
//   - TimedOut: the time limit elapsed and the process group was killed
//   - ExitCode != nil: the runtime exited nonzero; Stderr carries its diagnostic
//   - Err != nil with ExitCode == nil: the process could not be run at all
type Outcome struct {
	Succeeded  bool
	Identifier string
	Stdout     string
	Stderr     string
	ExitCode   *int
	TimedOut   bool
	Truncated  bool // stdout or stderr exceeded the capture limit
	Err        error
	Duration   time.Duration
}

// Label returns a short outcome name for logs and metrics.
func (o Outcome) Label() string {
	switch {
	case o.Succeeded:
		return "success"
	case o.TimedOut:
		return "timeout"
	case o.ExitCode != nil:
		return "runtime_failure"
	default:
		return "execution_failed"
	}
}

// =============================================================================
// Output Capture
// =============================================================================

// limitedBuffer keeps at most limit bytes and silently discards the rest.
// A limit of zero or less keeps everything.
type limitedBuffer struct {
	buf       bytes.Buffer
	limit     int
	truncated bool
}

func newLimitedBuffer(limit int) *limitedBuffer {
	return &limitedBuffer{limit: limit}
}

// Write always reports len(p) so the child never sees a short write.
func (b *limitedBuffer) Write(p []byte) (int, error) {
	if b.limit <= 0 {
		return b.buf.Write(p)
	}
	remaining := b.limit - b.buf.Len()
	if remaining <= 0 {
		b.truncated = true
		return len(p), nil
	}
	if len(p) > remaining {
		b.buf.Write(p[:remaining])
		b.truncated = true
		return len(p), nil
	}
	return b.buf.Write(p)
}

func (b *limitedBuffer) String() string {
	return b.buf.String()
}
