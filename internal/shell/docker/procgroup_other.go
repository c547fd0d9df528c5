//go:build !unix

package docker

import "os/exec"

// configureProcessGroup is a no-op where process groups are unavailable; the
// default context cancellation kills the direct child only.
func configureProcessGroup(cmd *exec.Cmd) {}
