package deployment

import (
	"github.com/artpar/deployguard/internal/core/descriptor"
)

// =============================================================================
// Command Synthesis Functions
// =============================================================================

// BuildRunCommand builds the detached run vector for a validated descriptor.
//
// Token order:
//   - run -d --name <name>
//   - -e KEY=VALUE per sanitized entry, in env order
//   - -v <spec> per volume
//   - -p <spec> per port
//   - <image>
//   - args, verbatim
//
// Every value is its own token. Nothing is quoted or joined.
//
// Example:
//
//	d := descriptor.Descriptor{Name: "web-1", Image: "internal-registry.company.com/app:v1"}
//	env := SanitizeEnvironment(map[string]any{"DEBUG": "true"})
//	BuildRunCommand(d, env)
//	// Returns: [run -d --name web-1 -e DEBUG=true internal-registry.company.com/app:v1]
func BuildRunCommand(d descriptor.Descriptor, env SanitizedEnv) Command {
	size := 4 + 2*len(env.Vars) + 2*len(d.Volumes) + 2*len(d.Ports) + 1 + len(d.Args)
	cmd := make(Command, 0, size)

	cmd = append(cmd, SubcommandRun, FlagDetach, FlagName, d.Name)

	for _, v := range env.Vars {
		cmd = append(cmd, FlagEnv, v.Pair())
	}
	for _, m := range d.Volumes {
		cmd = append(cmd, FlagVolume, m.Spec())
	}
	for _, m := range d.Ports {
		cmd = append(cmd, FlagPublish, m.Spec())
	}

	cmd = append(cmd, d.Image)
	cmd = append(cmd, d.Args...)
	return cmd
}

// BuildInspectCommand builds the inspect vector for a workload name.
// The name follows an end-of-options marker, so a leading "-" is never read as
// a flag, and --type container stops an image of the same name from matching.
//
// Example:
//
//	BuildInspectCommand("web-1")
//	// Returns: [inspect --type container -- web-1]
func BuildInspectCommand(name string) Command {
	return Command{SubcommandInspect, FlagType, TypeContainer, EndOfOptions, name}
}
