package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/artpar/deployguard/internal/core/descriptor"
	"github.com/artpar/deployguard/internal/core/policy"
	"github.com/artpar/deployguard/internal/core/validation"
	"github.com/artpar/deployguard/internal/shell/api"
	"github.com/artpar/deployguard/internal/shell/docker"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var (
	errInvalidFileType   = errors.New("invalid file type")
	errContainerNotFound = errors.New("container not found")
)

// cli carries what every subcommand shares.
type cli struct {
	configPath string
	stdout     io.Writer
	stderr     io.Writer
}

// newRootCmd builds the command tree. Output goes to stdout; logs of one-shot
// commands go to stderr so stdout stays machine readable.
func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	c := &cli{stdout: stdout, stderr: stderr}

	root := &cobra.Command{
		Use:           "deployguard",
		Short:         "Policy-checked container deployments",
		Long:          `deployguard validates deployment descriptors against a trust policy and runs them through the container runtime CLI.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "Path to config file")

	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Run the HTTP API",
			Args:  cobra.NoArgs,
			RunE:  c.runServe,
		},
		&cobra.Command{
			Use:   "deploy <file>",
			Short: "Deploy a descriptor file",
			Args:  cobra.ExactArgs(1),
			RunE:  c.runDeploy,
		},
		&cobra.Command{
			Use:   "status <name>",
			Short: "Show the status of a deployed container",
			Args:  cobra.ExactArgs(1),
			RunE:  c.runStatus,
		},
		&cobra.Command{
			Use:   "validate <file>",
			Short: "Check a descriptor and print the runtime invocation without running it",
			Args:  cobra.ExactArgs(1),
			RunE:  c.runValidate,
		},
		&cobra.Command{
			Use:   "version",
			Short: "Print version and exit",
			Args:  cobra.NoArgs,
			Run: func(cmd *cobra.Command, _ []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "deployguard %s (built %s)\n", Version, BuildTime)
			},
		},
	)
	return root
}

// load reads configuration and builds the pipeline for one-shot commands.
func (c *cli) load() (*Config, *docker.Orchestrator, *slog.Logger, error) {
	cfg, err := LoadConfig(c.configPath)
	if err != nil {
		return nil, nil, nil, &ServerError{Op: "LoadConfig", Err: err, ExitCode: ExitConfigError}
	}
	logger := newLogger(cfg, c.stderr).With("run_id", uuid.NewString())

	orch, err := newOrchestrator(cfg, logger, nil)
	if err != nil {
		return nil, nil, nil, err
	}
	return cfg, orch, logger, nil
}

// =============================================================================
// serve
// =============================================================================

func (c *cli) runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := LoadConfig(c.configPath)
	if err != nil {
		return &ServerError{Op: "LoadConfig", Err: err, ExitCode: ExitConfigError}
	}

	logger := SetupLogger(cfg)
	logger.Info("starting deployguard",
		"version", Version,
		"config", c.configPath,
	)

	server, err := NewServer(cfg, logger)
	if err != nil {
		return err
	}
	return server.Start(cmd.Context())
}

// =============================================================================
// deploy
// =============================================================================

func (c *cli) runDeploy(cmd *cobra.Command, args []string) error {
	_, orch, _, err := c.load()
	if err != nil {
		return err
	}

	doc, err := readDescriptorFile(args[0], orch.Policy())
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	result, err := orch.Deploy(ctx, doc)
	if err != nil && result.Status == "" {
		return rejection("Deploy", err)
	}

	resp := api.DeployResponse{
		Status:      string(result.Status),
		ContainerID: result.ContainerID,
		Message:     result.Message,
		Error:       result.ErrorMessage,
		Warnings:    result.Warnings,
	}
	if perr := c.printJSON(resp); perr != nil {
		return perr
	}
	if err != nil {
		return &ServerError{Op: "Deploy", Err: err, ExitCode: ExitRuntimeError}
	}
	return nil
}

// =============================================================================
// status
// =============================================================================

func (c *cli) runStatus(cmd *cobra.Command, args []string) error {
	_, orch, _, err := c.load()
	if err != nil {
		return err
	}

	report, err := orch.Status(cmd.Context(), args[0])
	if err != nil {
		return &ServerError{Op: "Status", Err: err, ExitCode: ExitRuntimeError}
	}
	if !report.Found {
		return &ServerError{Op: "Status", Err: fmt.Errorf("%w: %s", errContainerNotFound, args[0]), ExitCode: ExitRuntimeError}
	}

	return c.printJSON(api.StatusResponse{
		Status:  report.Status,
		Health:  string(report.Health),
		Details: report.State,
	})
}

// =============================================================================
// validate
// =============================================================================

// validateOutput is printed by the validate command.
type validateOutput struct {
	Valid    bool     `json:"valid"`
	Reason   string   `json:"reason"`
	Code     string   `json:"code,omitempty"`
	Command  []string `json:"command,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

func (c *cli) runValidate(_ *cobra.Command, args []string) error {
	cfg, orch, _, err := c.load()
	if err != nil {
		return err
	}

	doc, err := readDescriptorFile(args[0], orch.Policy())
	if err != nil {
		return err
	}

	plan, err := orch.Plan(doc)
	if err != nil {
		out := validateOutput{Valid: false, Reason: err.Error(), Code: api.CodeMalformedField}
		var verr *validation.Error
		if errors.As(err, &verr) {
			out.Reason = verr.Reason
			out.Code = string(verr.Kind)
		}
		if perr := c.printJSON(out); perr != nil {
			return perr
		}
		return rejection("Validate", err)
	}

	argv := append([]string{cfg.Runtime.Binary}, plan.Command.Args()...)
	return c.printJSON(validateOutput{
		Valid:    true,
		Reason:   "Valid configuration",
		Command:  argv,
		Warnings: plan.Warnings,
	})
}

// =============================================================================
// Helpers
// =============================================================================

// readDescriptorFile applies the upload extension rule to a local file and
// decodes it.
func readDescriptorFile(path string, p policy.TrustPolicy) (descriptor.Document, error) {
	name := filepath.Base(path)
	if !p.AllowsFile(name) {
		return nil, &ServerError{
			Op:       "ReadDescriptor",
			Err:      fmt.Errorf("%w: %s (allowed: %v)", errInvalidFileType, name, p.AllowedExtensions()),
			ExitCode: ExitRejected,
		}
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, &ServerError{Op: "ReadDescriptor", Err: err, ExitCode: ExitConfigError}
	}

	doc, err := descriptor.Decode(name, content)
	if err != nil {
		return nil, &ServerError{Op: "ReadDescriptor", Err: err, ExitCode: ExitRejected}
	}
	return doc, nil
}

func rejection(op string, err error) error {
	return &ServerError{Op: op, Err: err, ExitCode: ExitRejected}
}

func (c *cli) printJSON(v any) error {
	enc := json.NewEncoder(c.stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
