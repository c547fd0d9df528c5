package deployment

import (
	"slices"
	"strings"

	"github.com/artpar/deployguard/internal/core/descriptor"
)

// =============================================================================
// Environment Sanitization Functions
// =============================================================================

// disallowedSubstrings are the command-substitution and expansion openers that
// cause an environment entry to be dropped.
var disallowedSubstrings = []string{"$(", "`", "${"}

// ContainsDisallowed reports whether value holds any substring that causes an
// environment entry to be dropped.
func ContainsDisallowed(value string) bool {
	for _, s := range disallowedSubstrings {
		if strings.Contains(value, s) {
			return true
		}
	}
	return false
}

// SanitizeEnvironment coerces every value to text and drops entries whose text
// contains "$(", "`" or "${". Dropped entries are removed, never escaped.
//
// Keys are kept as given. Newlines, ";", "|" and other metacharacters are not
// filtered: the result only ever becomes a single argv token, so it is safe
// without a shell in between.
//
// Example:
//
//	SanitizeEnvironment(map[string]any{"DEBUG": true, "X": "$(rm -rf /)"})
//	// Returns: SanitizedEnv{Vars: []EnvVar{{"DEBUG", "true"}}, Dropped: []string{"X"}}
func SanitizeEnvironment(env map[string]any) SanitizedEnv {
	out := SanitizedEnv{Vars: []EnvVar{}}
	if len(env) == 0 {
		return out
	}

	keys := make([]string, 0, len(env))
	for k := range env {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	for _, k := range keys {
		value := descriptor.Text(env[k])
		if ContainsDisallowed(value) {
			out.Dropped = append(out.Dropped, k)
			continue
		}
		out.Vars = append(out.Vars, EnvVar{Key: k, Value: value})
	}
	return out
}
