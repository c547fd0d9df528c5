// Package policy defines the trust policy applied to deployment descriptors.
//
// A TrustPolicy is an immutable value built once at startup and injected into
// every component that needs it. It has no I/O and no package-level state, so
// tests can run the pipeline against alternate policies side by side.
package policy

import (
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"
)

// =============================================================================
// Defaults
// =============================================================================

const (
	// DefaultRegistryPrefix is the registry prefix images must start with.
	DefaultRegistryPrefix = "internal-registry.company.com"
)

// DefaultAllowedExtensions lists the descriptor file extensions accepted for upload.
func DefaultAllowedExtensions() []string {
	return []string{"yml", "yaml", "json"}
}

// =============================================================================
// Args Mode
// =============================================================================

// ArgsMode controls how the free-form "args" field of a descriptor is treated.
type ArgsMode string

const (
	// ArgsModeAllowlist accepts only args listed in TrustPolicy.AllowedArgs.
	ArgsModeAllowlist ArgsMode = "allowlist"
	// ArgsModePassthrough appends args to the runtime invocation unchecked.
	ArgsModePassthrough ArgsMode = "passthrough"
)

// IsValid reports whether m is a known mode.
func (m ArgsMode) IsValid() bool {
	return m == ArgsModeAllowlist || m == ArgsModePassthrough
}

// =============================================================================
// Errors
// =============================================================================

var (
	ErrEmptyRegistryPrefix = errors.New("registry prefix is empty")
	ErrInvalidArgsMode     = errors.New("invalid args mode")
	ErrNoExtensions        = errors.New("no allowed file extensions")
)

// =============================================================================
// TrustPolicy
// =============================================================================

// Options configures a TrustPolicy. Zero values fall back to defaults.
type Options struct {
	RegistryPrefix    string
	AllowedExtensions []string
	StrictRegistry    bool
	ArgsMode          ArgsMode
	AllowedArgs       []string
}

// TrustPolicy decides which descriptors are safe to act on.
// Fields are unexported; use the accessors. The zero value is not usable,
// build one with New or Default.
type TrustPolicy struct {
	registryPrefix    string
	allowedExtensions []string
	strictRegistry    bool
	argsMode          ArgsMode
	allowedArgs       []string
}

// Default returns the policy used when nothing is configured.
func Default() TrustPolicy {
	p, _ := New(Options{})
	return p
}

// New validates opts and builds a TrustPolicy. Slices are copied, so later
// changes to opts do not leak into the policy.
func New(opts Options) (TrustPolicy, error) {
	prefix := opts.RegistryPrefix
	if prefix == "" {
		prefix = DefaultRegistryPrefix
	}
	if strings.TrimSpace(prefix) == "" {
		return TrustPolicy{}, ErrEmptyRegistryPrefix
	}

	mode := opts.ArgsMode
	if mode == "" {
		mode = ArgsModeAllowlist
	}
	if !mode.IsValid() {
		return TrustPolicy{}, fmt.Errorf("%w: %q", ErrInvalidArgsMode, mode)
	}

	exts := opts.AllowedExtensions
	if exts == nil {
		exts = DefaultAllowedExtensions()
	}
	normalized := make([]string, 0, len(exts))
	for _, ext := range exts {
		ext = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
		if ext != "" && !slices.Contains(normalized, ext) {
			normalized = append(normalized, ext)
		}
	}
	if len(normalized) == 0 {
		return TrustPolicy{}, ErrNoExtensions
	}

	return TrustPolicy{
		registryPrefix:    prefix,
		allowedExtensions: normalized,
		strictRegistry:    opts.StrictRegistry,
		argsMode:          mode,
		allowedArgs:       slices.Clone(opts.AllowedArgs),
	}, nil
}

// RegistryPrefix returns the literal prefix trusted images must start with.
func (p TrustPolicy) RegistryPrefix() string { return p.registryPrefix }

// RegistryHost returns the host part of the registry prefix, i.e. everything
// before the first "/".
func (p TrustPolicy) RegistryHost() string {
	host, _, _ := strings.Cut(p.registryPrefix, "/")
	return host
}

// StrictRegistry reports whether images must also parse as references whose
// registry domain equals RegistryHost.
func (p TrustPolicy) StrictRegistry() bool { return p.strictRegistry }

// ArgsMode returns how descriptor args are treated.
func (p TrustPolicy) ArgsMode() ArgsMode { return p.argsMode }

// AllowedExtensions returns a copy of the allowed upload extensions.
func (p TrustPolicy) AllowedExtensions() []string { return slices.Clone(p.allowedExtensions) }

// AllowedArgs returns a copy of the argument allowlist.
func (p TrustPolicy) AllowedArgs() []string { return slices.Clone(p.allowedArgs) }

// AllowsArg reports whether a single args token is accepted.
// In passthrough mode every token is accepted.
func (p TrustPolicy) AllowsArg(arg string) bool {
	if p.argsMode == ArgsModePassthrough {
		return true
	}
	return slices.Contains(p.allowedArgs, arg)
}

// AllowsFile reports whether filename carries an allowed extension.
// Only the final extension counts and the comparison ignores case.
//
// Example:
//
//	p.AllowsFile("app.YAML")     // true
//	p.AllowsFile("app.yaml.exe") // false
//	p.AllowsFile("yaml")         // false
func (p TrustPolicy) AllowsFile(filename string) bool {
	ext := filepath.Ext(filename)
	if ext == "" || ext == filename {
		return false
	}
	return slices.Contains(p.allowedExtensions, strings.ToLower(ext[1:]))
}
