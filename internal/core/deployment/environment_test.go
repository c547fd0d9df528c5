package deployment

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/artpar/deployguard/internal/core/descriptor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// SanitizeEnvironment Tests
// =============================================================================

func TestSanitizeEnvironment_Empty(t *testing.T) {
	for _, env := range []map[string]any{nil, {}} {
		out := SanitizeEnvironment(env)
		assert.Empty(t, out.Vars)
		assert.Empty(t, out.Dropped)
		assert.Equal(t, 0, out.Len())
	}
}

func TestSanitizeEnvironment_CommandSubstitutionDropped(t *testing.T) {
	out := SanitizeEnvironment(map[string]any{"X": "$(rm -rf /)"})

	assert.Empty(t, out.Vars)
	assert.Equal(t, []string{"X"}, out.Dropped)
}

func TestSanitizeEnvironment_Denylist(t *testing.T) {
	tests := []struct {
		name    string
		value   any
		dropped bool
	}{
		{"plain", "hello", false},
		{"dollar alone", "$HOME", false},
		{"paren alone", "(x)", false},
		{"brace alone", "{x}", false},
		{"command substitution", "a$(id)", true},
		{"backtick", "`id`", true},
		{"single backtick", "it`s", true},
		{"parameter expansion", "${PATH}", true},
		{"newline passes", "line1\nline2", false},
		{"semicolon passes", "a; rm -rf /", false},
		{"pipe passes", "a | b", false},
		{"nested value", map[string]any{"k": "${x}"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := SanitizeEnvironment(map[string]any{"K": tt.value})
			if tt.dropped {
				assert.Empty(t, out.Vars)
				assert.Equal(t, []string{"K"}, out.Dropped)
			} else {
				require.Len(t, out.Vars, 1)
				assert.Empty(t, out.Dropped)
			}
		})
	}
}

func TestSanitizeEnvironment_CoercesValues(t *testing.T) {
	out := SanitizeEnvironment(map[string]any{
		"BOOL":   true,
		"INT":    4,
		"FLOAT":  0.5,
		"NUMBER": json.Number("10"),
		"NULL":   nil,
		"LIST":   []any{"a", "b"},
	})

	assert.Equal(t, map[string]string{
		"BOOL":   "true",
		"INT":    "4",
		"FLOAT":  "0.5",
		"NUMBER": "10",
		"NULL":   "",
		"LIST":   `["a","b"]`,
	}, out.Map())
}

func TestSanitizeEnvironment_SortedByKey(t *testing.T) {
	out := SanitizeEnvironment(map[string]any{
		"ZED":   "1",
		"ALPHA": "2",
		"MID":   "${bad}",
		"BETA":  "`bad`",
	})

	keys := make([]string, 0, len(out.Vars))
	for _, v := range out.Vars {
		keys = append(keys, v.Key)
	}
	assert.Equal(t, []string{"ALPHA", "ZED"}, keys)
	assert.Equal(t, []string{"BETA", "MID"}, out.Dropped)
}

func TestSanitizeEnvironment_KeysNotValidated(t *testing.T) {
	out := SanitizeEnvironment(map[string]any{"weird key=": "v"})

	require.Len(t, out.Vars, 1)
	assert.Equal(t, "weird key==v", out.Vars[0].Pair())
}

// Every retained value is free of disallowed substrings and every dropped
// value contains one.
func TestSanitizeEnvironment_Partition(t *testing.T) {
	env := map[string]any{
		"A": "safe",
		"B": "$(x)",
		"C": "x${y}",
		"D": "`",
		"E": "$ (x)",
		"F": 12,
	}
	out := SanitizeEnvironment(env)

	for _, v := range out.Vars {
		assert.False(t, ContainsDisallowed(v.Value), v.Key)
	}
	for _, k := range out.Dropped {
		assert.True(t, ContainsDisallowed(env[k].(string)), k)
	}
	assert.Equal(t, len(env), out.Len()+len(out.Dropped))
}

func TestContainsDisallowed(t *testing.T) {
	assert.True(t, ContainsDisallowed("$("))
	assert.True(t, ContainsDisallowed("${"))
	assert.True(t, ContainsDisallowed("`"))
	assert.False(t, ContainsDisallowed(strings.Repeat("$", 10)))
	assert.False(t, ContainsDisallowed(""))
}

func TestSanitizeEnvironment_YAMLDateKeepsLiteral(t *testing.T) {
	doc, err := descriptor.Decode("web.yaml", []byte("image: x\nname: y\nenvironment:\n  D: 2020-01-01\n"))
	require.NoError(t, err)
	d, _, err := descriptor.FromDocument(doc)
	require.NoError(t, err)

	out := SanitizeEnvironment(d.Environment)

	require.Len(t, out.Vars, 1)
	assert.Equal(t, "D=2020-01-01", out.Vars[0].Pair())
}
