// Command deployguard accepts deployment descriptors over HTTP or the command
// line, checks them against a trust policy and runs them through the container
// runtime CLI.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
)

// Version information (set by build)
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	root := newRootCmd(stdout, stderr)
	root.SetArgs(args)

	if err := root.ExecuteContext(context.Background()); err != nil {
		var sErr *ServerError
		if errors.As(err, &sErr) {
			fmt.Fprintf(stderr, "%s: %v\n", sErr.Op, sErr.Err)
			return sErr.ExitCode
		}
		fmt.Fprintf(stderr, "error: %v\n", err)
		return ExitConfigError
	}
	return ExitSuccess
}
