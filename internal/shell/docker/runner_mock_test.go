package docker

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"sync"
	"testing"
	"time"
)

// mockCommand records invocations and replaces them with a re-exec of the
// test binary running TestHelperProcess.
type mockCommand struct {
	mu          sync.Mutex
	invocations []mockInvocation

	ExitCode int
	Stdout   string
	Stderr   string
	Sleep    time.Duration
	EchoArgs bool // print the received argv as a JSON array on stdout
}

type mockInvocation struct {
	Name string
	Args []string
}

func (m *mockCommand) commandFunc() ExecCommandFunc {
	return func(ctx context.Context, name string, args ...string) *exec.Cmd {
		m.mu.Lock()
		m.invocations = append(m.invocations, mockInvocation{Name: name, Args: append([]string(nil), args...)})
		m.mu.Unlock()

		cs := []string{"-test.run=TestHelperProcess", "--", name}
		cs = append(cs, args...)
		cmd := exec.CommandContext(ctx, os.Args[0], cs...)
		cmd.Env = []string{
			"GO_WANT_HELPER_PROCESS=1",
			fmt.Sprintf("GO_HELPER_EXIT_CODE=%d", m.ExitCode),
			fmt.Sprintf("GO_HELPER_STDOUT=%s", m.Stdout),
			fmt.Sprintf("GO_HELPER_STDERR=%s", m.Stderr),
			fmt.Sprintf("GO_HELPER_SLEEP=%s", m.Sleep),
			fmt.Sprintf("GO_HELPER_ECHO_ARGS=%t", m.EchoArgs),
		}
		return cmd
	}
}

func (m *mockCommand) lastInvocation() *mockInvocation {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.invocations) == 0 {
		return nil
	}
	return &m.invocations[len(m.invocations)-1]
}

// TestHelperProcess is not a real test. It stands in for the runtime binary
// when GO_WANT_HELPER_PROCESS is set.
func TestHelperProcess(t *testing.T) {
	if os.Getenv("GO_WANT_HELPER_PROCESS") != "1" {
		return
	}

	if d, err := time.ParseDuration(os.Getenv("GO_HELPER_SLEEP")); err == nil && d > 0 {
		time.Sleep(d)
	}

	if os.Getenv("GO_HELPER_ECHO_ARGS") == "true" {
		args := os.Args
		for i, a := range args {
			if a == "--" {
				args = args[i+2:] // skip the marker and the binary name
				break
			}
		}
		_ = json.NewEncoder(os.Stdout).Encode(args)
	}

	if stdout := os.Getenv("GO_HELPER_STDOUT"); stdout != "" {
		fmt.Fprint(os.Stdout, stdout)
	}
	if stderr := os.Getenv("GO_HELPER_STDERR"); stderr != "" {
		fmt.Fprint(os.Stderr, stderr)
	}

	exitCode, _ := strconv.Atoi(os.Getenv("GO_HELPER_EXIT_CODE"))
	os.Exit(exitCode)
}
