package deployment

import (
	"testing"

	"github.com/artpar/deployguard/internal/core/descriptor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testImage = "internal-registry.company.com/app:v1"

// =============================================================================
// BuildRunCommand Tests
// =============================================================================

func TestBuildRunCommand_Minimal(t *testing.T) {
	d := descriptor.Descriptor{Image: testImage, Name: "web-1"}

	cmd := BuildRunCommand(d, SanitizeEnvironment(nil))

	assert.Equal(t, Command{"run", "-d", "--name", "web-1", testImage}, cmd)
	assert.Equal(t, "run", cmd.Subcommand())
}

func TestBuildRunCommand_EndsWithEnvAndImage(t *testing.T) {
	d := descriptor.Descriptor{Image: testImage, Name: "web-1"}
	env := SanitizeEnvironment(map[string]any{"DEBUG": "true"})

	cmd := BuildRunCommand(d, env)

	require.GreaterOrEqual(t, len(cmd), 5)
	assert.Equal(t, []string{"--name", "web-1", "-e", "DEBUG=true", testImage}, []string(cmd[len(cmd)-5:]))
}

func TestBuildRunCommand_FullOrder(t *testing.T) {
	d := descriptor.Descriptor{
		Image: testImage,
		Name:  "api",
		Volumes: []descriptor.Mount{
			{Raw: "/srv/data:/data:ro"},
			{Host: "/srv/logs", Container: "/var/log", IsPair: true},
		},
		Ports: []descriptor.Mount{
			{Raw: "8080:80"},
			{Host: "9090", Container: "90", IsPair: true},
		},
		Args: []string{"serve", "--verbose"},
	}
	env := SanitizeEnvironment(map[string]any{"B": "2", "A": "1"})

	cmd := BuildRunCommand(d, env)

	assert.Equal(t, Command{
		"run", "-d", "--name", "api",
		"-e", "A=1",
		"-e", "B=2",
		"-v", "/srv/data:/data:ro",
		"-v", "/srv/logs:/var/log",
		"-p", "8080:80",
		"-p", "9090:90",
		testImage,
		"serve", "--verbose",
	}, cmd)
}

func TestBuildRunCommand_ValuesStaySingleTokens(t *testing.T) {
	d := descriptor.Descriptor{
		Image: testImage,
		Name:  "web",
		Args:  []string{"echo hello; rm -rf /"},
	}
	env := SanitizeEnvironment(map[string]any{"MSG": "hello world; ls"})

	cmd := BuildRunCommand(d, env)

	assert.Contains(t, cmd, "MSG=hello world; ls")
	assert.Equal(t, "echo hello; rm -rf /", cmd[len(cmd)-1])
}

func TestBuildRunCommand_DroppedEnvNeverAppears(t *testing.T) {
	d := descriptor.Descriptor{Image: testImage, Name: "web"}
	env := SanitizeEnvironment(map[string]any{"X": "$(rm -rf /)"})

	cmd := BuildRunCommand(d, env)

	assert.NotContains(t, cmd, "-e")
	assert.Equal(t, Command{"run", "-d", "--name", "web", testImage}, cmd)
}

func TestBuildRunCommand_Deterministic(t *testing.T) {
	d := descriptor.Descriptor{Image: testImage, Name: "web"}
	envMap := map[string]any{"C": "3", "A": "1", "B": "2", "D": "4"}

	first := BuildRunCommand(d, SanitizeEnvironment(envMap))
	for i := 0; i < 20; i++ {
		assert.Equal(t, first, BuildRunCommand(d, SanitizeEnvironment(envMap)))
	}
}

// =============================================================================
// BuildInspectCommand Tests
// =============================================================================

func TestBuildInspectCommand(t *testing.T) {
	assert.Equal(t, Command{"inspect", "--type", "container", "--", "web-1"}, BuildInspectCommand("web-1"))
}

func TestBuildInspectCommand_FlagLikeName(t *testing.T) {
	cmd := BuildInspectCommand("--format={{.Config}}")

	assert.Equal(t, "--", cmd[len(cmd)-2])
	assert.Equal(t, "--format={{.Config}}", cmd[len(cmd)-1])
}

func TestCommand_Args(t *testing.T) {
	cmd := Command{"inspect", "x"}
	args := cmd.Args()
	args[0] = "changed"

	assert.Equal(t, "inspect", cmd[0])
	assert.Equal(t, "", Command{}.Subcommand())
}
