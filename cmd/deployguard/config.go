package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/artpar/deployguard/internal/core/policy"
	"github.com/artpar/deployguard/internal/shell/api"
	"github.com/artpar/deployguard/internal/shell/docker"
	"github.com/spf13/viper"
)

// =============================================================================
// Config Types
// =============================================================================

// Config holds all application configuration.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Log     LogConfig     `mapstructure:"log"`
	Runtime RuntimeConfig `mapstructure:"runtime"`
	Docker  DockerConfig  `mapstructure:"docker"`
	Policy  PolicyConfig  `mapstructure:"policy"`
	Upload  UploadConfig  `mapstructure:"upload"`
	Metrics MetricsConfig `mapstructure:"metrics"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// Address returns the server address in host:port format.
func (c ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// RuntimeConfig controls how the container runtime CLI is invoked.
type RuntimeConfig struct {
	Binary         string        `mapstructure:"binary"`
	DeployTimeout  time.Duration `mapstructure:"deploy_timeout"`
	StatusTimeout  time.Duration `mapstructure:"status_timeout"`
	MaxOutputBytes int           `mapstructure:"max_output_bytes"` // negative disables the cap
	KillGrace      time.Duration `mapstructure:"kill_grace"`
}

// DockerConfig holds Docker SDK client configuration. It only backs /ready.
type DockerConfig struct {
	Host string `mapstructure:"host"`
}

// PolicyConfig is the raw trust policy; see Config.TrustPolicy.
type PolicyConfig struct {
	RegistryPrefix    string   `mapstructure:"registry_prefix"`
	AllowedExtensions []string `mapstructure:"allowed_extensions"`
	StrictRegistry    bool     `mapstructure:"strict_registry"`
	ArgsMode          string   `mapstructure:"args_mode"`
	AllowedArgs       []string `mapstructure:"allowed_args"`
}

// UploadConfig limits descriptor uploads.
type UploadConfig struct {
	MaxBytes int64 `mapstructure:"max_bytes"`
}

// MetricsConfig toggles the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// TrustPolicy builds the immutable policy from the configured values.
func (c *Config) TrustPolicy() (policy.TrustPolicy, error) {
	p, err := policy.New(policy.Options{
		RegistryPrefix:    c.Policy.RegistryPrefix,
		AllowedExtensions: c.Policy.AllowedExtensions,
		StrictRegistry:    c.Policy.StrictRegistry,
		ArgsMode:          policy.ArgsMode(c.Policy.ArgsMode),
		AllowedArgs:       c.Policy.AllowedArgs,
	})
	if err != nil {
		return policy.TrustPolicy{}, fmt.Errorf("invalid trust policy: %w", err)
	}
	return p, nil
}

// =============================================================================
// Config Loading
// =============================================================================

// LoadConfig loads configuration from file and environment.
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()

	// Set defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "60s") // must outlast runtime.deploy_timeout
	v.SetDefault("server.shutdown_timeout", "30s")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("runtime.binary", docker.DefaultBinary)
	v.SetDefault("runtime.deploy_timeout", docker.DefaultDeployTimeout.String())
	v.SetDefault("runtime.status_timeout", docker.DefaultStatusTimeout.String())
	v.SetDefault("runtime.max_output_bytes", docker.DefaultMaxOutputBytes)
	v.SetDefault("runtime.kill_grace", docker.DefaultKillGrace.String())
	v.SetDefault("docker.host", "")
	v.SetDefault("policy.registry_prefix", policy.DefaultRegistryPrefix)
	v.SetDefault("policy.allowed_extensions", policy.DefaultAllowedExtensions())
	v.SetDefault("policy.strict_registry", false)
	v.SetDefault("policy.args_mode", string(policy.ArgsModeAllowlist))
	v.SetDefault("policy.allowed_args", []string{})
	v.SetDefault("upload.max_bytes", api.DefaultMaxUploadBytes)
	v.SetDefault("metrics.enabled", true)

	// Load from file if provided
	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			// Only return error if file was explicitly specified and is invalid
			if _, ok := err.(viper.ConfigParseError); ok {
				return nil, fmt.Errorf("failed to parse config file: %w", err)
			}
			// A missing file falls back to defaults, but say so
			slog.Warn("config file not loaded, using defaults", "path", configPath, "error", err)
		}
	}

	// Enable environment variable overrides
	v.SetEnvPrefix("DEPLOYGUARD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Unmarshal config
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// =============================================================================
// Logger Setup
// =============================================================================

// SetupLogger creates a logger with the configured level and format.
func SetupLogger(cfg *Config) *slog.Logger {
	return newLogger(cfg, os.Stdout)
}

func newLogger(cfg *Config, w io.Writer) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(cfg.Log.Level) {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn", "warning":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	var handler slog.Handler
	if strings.ToLower(cfg.Log.Format) == "text" {
		handler = slog.NewTextHandler(w, opts)
	} else {
		handler = slog.NewJSONHandler(w, opts)
	}

	return slog.New(handler)
}
