package deployment

// =============================================================================
// Sanitized Environment Types
// =============================================================================

// EnvVar is one retained environment entry.
type EnvVar struct {
	Key   string
	Value string
}

// Pair renders the entry as a single KEY=VALUE token.
func (e EnvVar) Pair() string {
	return e.Key + "=" + e.Value
}

// SanitizedEnv is the result of SanitizeEnvironment.
// Vars is ordered by key. Dropped holds the keys that were rejected, also
// ordered by key.
type SanitizedEnv struct {
	Vars    []EnvVar
	Dropped []string
}

// Len returns the number of retained entries.
func (s SanitizedEnv) Len() int {
	return len(s.Vars)
}

// Map returns the retained entries as a map.
func (s SanitizedEnv) Map() map[string]string {
	m := make(map[string]string, len(s.Vars))
	for _, v := range s.Vars {
		m[v.Key] = v.Value
	}
	return m
}

// =============================================================================
// Command Vector Types
// =============================================================================

// Command is an ordered argument vector for the container runtime binary.
// It never includes the binary itself and is never joined into a shell string.
type Command []string

// Subcommand returns the runtime subcommand ("run", "inspect"), or "" when empty.
func (c Command) Subcommand() string {
	if len(c) == 0 {
		return ""
	}
	return c[0]
}

// Args returns a copy of the vector as a plain slice.
func (c Command) Args() []string {
	out := make([]string, len(c))
	copy(out, c)
	return out
}

// Runtime CLI tokens emitted by the synthesizer.
const (
	SubcommandRun     = "run"
	SubcommandInspect = "inspect"

	FlagDetach    = "-d"
	FlagName      = "--name"
	FlagEnv       = "-e"
	FlagVolume    = "-v"
	FlagPublish   = "-p"
	FlagType      = "--type"
	TypeContainer = "container"
	EndOfOptions  = "--"
)
