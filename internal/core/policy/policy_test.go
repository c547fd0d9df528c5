package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// New / Default Tests
// =============================================================================

func TestDefault_Values(t *testing.T) {
	p := Default()

	assert.Equal(t, DefaultRegistryPrefix, p.RegistryPrefix())
	assert.Equal(t, []string{"yml", "yaml", "json"}, p.AllowedExtensions())
	assert.Equal(t, ArgsModeAllowlist, p.ArgsMode())
	assert.False(t, p.StrictRegistry())
	assert.Empty(t, p.AllowedArgs())
}

func TestNew_InvalidArgsMode(t *testing.T) {
	_, err := New(Options{ArgsMode: "anything"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidArgsMode)
}

func TestNew_BlankPrefix(t *testing.T) {
	_, err := New(Options{RegistryPrefix: "   "})
	assert.ErrorIs(t, err, ErrEmptyRegistryPrefix)
}

func TestNew_EmptyExtensions(t *testing.T) {
	_, err := New(Options{AllowedExtensions: []string{" ", "."}})
	assert.ErrorIs(t, err, ErrNoExtensions)
}

func TestNew_NormalizesExtensions(t *testing.T) {
	p, err := New(Options{AllowedExtensions: []string{".JSON", "yaml", "json"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"json", "yaml"}, p.AllowedExtensions())
}

func TestNew_CopiesSlices(t *testing.T) {
	args := []string{"--verbose"}
	p, err := New(Options{AllowedArgs: args})
	require.NoError(t, err)

	args[0] = "--privileged"
	assert.Equal(t, []string{"--verbose"}, p.AllowedArgs())

	got := p.AllowedArgs()
	got[0] = "mutated"
	assert.True(t, p.AllowsArg("--verbose"))
}

// =============================================================================
// Accessor Tests
// =============================================================================

func TestRegistryHost(t *testing.T) {
	tests := []struct {
		prefix string
		want   string
	}{
		{"internal-registry.company.com", "internal-registry.company.com"},
		{"registry.example.com:5000/team", "registry.example.com:5000"},
		{"localhost/", "localhost"},
	}
	for _, tt := range tests {
		t.Run(tt.prefix, func(t *testing.T) {
			p, err := New(Options{RegistryPrefix: tt.prefix})
			require.NoError(t, err)
			assert.Equal(t, tt.want, p.RegistryHost())
		})
	}
}

func TestAllowsArg(t *testing.T) {
	allow, err := New(Options{AllowedArgs: []string{"--verbose"}})
	require.NoError(t, err)
	assert.True(t, allow.AllowsArg("--verbose"))
	assert.False(t, allow.AllowsArg("--privileged"))

	pass, err := New(Options{ArgsMode: ArgsModePassthrough})
	require.NoError(t, err)
	assert.True(t, pass.AllowsArg("--privileged"))
}

func TestAllowsFile(t *testing.T) {
	p := Default()

	tests := []struct {
		filename string
		want     bool
	}{
		{"app.yaml", true},
		{"app.yml", true},
		{"app.JSON", true},
		{"app.yaml.exe", false},
		{"app.txt", false},
		{"yaml", false},
		{"", false},
		{"dir.d/config", false},
	}
	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			assert.Equal(t, tt.want, p.AllowsFile(tt.filename))
		})
	}
}
