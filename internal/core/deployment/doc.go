// Package deployment provides pure functions that turn a validated descriptor
// into a runtime argument vector.
//
// This package contains the functional core logic between validation and
// execution. All functions are pure (no I/O, no side effects): the shell
// (internal/shell/docker) executes the vectors built here.
//
// # Functions
//
//   - Sanitization: Drop injection-bearing environment values (SanitizeEnvironment)
//   - Run vector: Build the detached run invocation (BuildRunCommand)
//   - Inspect vector: Build the status query invocation (BuildInspectCommand)
//
// # Usage
//
//	env := deployment.SanitizeEnvironment(d.Environment)
//	cmd := deployment.BuildRunCommand(d, env)
//	outcome := runner.Execute(ctx, cmd, timeout)
package deployment
