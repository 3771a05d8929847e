package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/moolen/fitaura/internal/logging"
	"github.com/moolen/fitaura/internal/orchestrator"
	"github.com/moolen/fitaura/internal/reasoning"
	"github.com/moolen/fitaura/internal/store"
	"github.com/moolen/fitaura/internal/tracing"
)

// Config holds all configuration for the application
type Config struct {
	Server       ServerConfig       `yaml:"server"`
	Log          LogConfig          `yaml:"log"`
	Reasoning    reasoning.Config   `yaml:"reasoning"`
	Orchestrator OrchestratorConfig `yaml:"orchestrator"`
	Store        store.Config       `yaml:"store"`
	Tracing      tracing.Config     `yaml:"tracing"`
	Audit        AuditConfig        `yaml:"audit"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	// Port is the port the API server listens on
	Port int `yaml:"port"`

	// AllowedOrigins lists the origins answered with CORS headers. "*"
	// allows any origin.
	AllowedOrigins []string `yaml:"allowed_origins"`

	// MCPEnabled mounts the MCP streamable HTTP endpoint at /v1/mcp.
	MCPEnabled bool `yaml:"mcp_enabled"`

	// ShutdownTimeout bounds graceful shutdown of all components.
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// LogConfig sets the default level and per-package overrides.
type LogConfig struct {
	Level string `yaml:"level"`

	// Packages holds "package=level" entries, e.g. "orchestrator=debug" or
	// "store.*=warn".
	Packages []string `yaml:"packages"`
}

// OrchestratorConfig tunes the orchestration loop.
type OrchestratorConfig struct {
	MaxSteps int `yaml:"max_steps"`
}

// AuditConfig enables the JSONL audit log.
type AuditConfig struct {
	// Path is the audit file. Empty disables auditing.
	Path string `yaml:"path"`

	// Redact replaces message and agent texts with their lengths.
	Redact bool `yaml:"redact"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			AllowedOrigins:  []string{"http://localhost:3000"},
			ShutdownTimeout: 30 * time.Second,
		},
		Log:          LogConfig{Level: "info"},
		Reasoning:    reasoning.DefaultConfig(),
		Orchestrator: OrchestratorConfig{MaxSteps: orchestrator.DefaultMaxSteps},
		Store:        store.DefaultConfig(),
	}
}

// PackageLevels parses Packages into a package -> level map.
func (l LogConfig) PackageLevels() (map[string]string, error) {
	levels := make(map[string]string, len(l.Packages))
	for _, entry := range l.Packages {
		pkg, level, ok := strings.Cut(entry, "=")
		pkg, level = strings.TrimSpace(pkg), strings.TrimSpace(level)
		if !ok || pkg == "" {
			return nil, NewConfigError("log.packages", fmt.Sprintf("entry %q must have the form package=level", entry))
		}
		if _, err := logging.ParseLevel(level); err != nil {
			return nil, NewConfigError("log.packages", fmt.Sprintf("invalid level for package %q: %v", pkg, err))
		}
		levels[pkg] = level
	}
	return levels, nil
}

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return NewConfigError("server.port", "must be between 1 and 65535")
	}
	if c.Server.ShutdownTimeout < 0 {
		return NewConfigError("server.shutdown_timeout", "must not be negative")
	}

	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return NewConfigError("log.level", err.Error())
	}
	if _, err := c.Log.PackageLevels(); err != nil {
		return err
	}

	switch c.Reasoning.Backend {
	case reasoning.BackendAnthropic, reasoning.BackendGemini:
	default:
		return NewConfigError("reasoning.backend", fmt.Sprintf("unsupported backend %q (must be anthropic or gemini)", c.Reasoning.Backend))
	}
	if c.Reasoning.MaxTokens < 1 {
		return NewConfigError("reasoning.max_tokens", "must be at least 1")
	}
	if c.Reasoning.Temperature < 0 || c.Reasoning.Temperature > 2 {
		return NewConfigError("reasoning.temperature", "must be between 0 and 2")
	}
	if c.Reasoning.Timeout < 0 {
		return NewConfigError("reasoning.timeout", "must not be negative")
	}

	if c.Orchestrator.MaxSteps < 1 {
		return NewConfigError("orchestrator.max_steps", "must be at least 1")
	}

	switch c.Store.Backend {
	case store.BackendMemory:
	case store.BackendSQLite:
		if c.Store.Path == "" {
			return NewConfigError("store.path", "must be set for the sqlite backend")
		}
	default:
		return NewConfigError("store.backend", fmt.Sprintf("unsupported backend %q (must be memory or sqlite)", c.Store.Backend))
	}
	if c.Store.ProfileCacheSize < 0 {
		return NewConfigError("store.profile_cache_size", "must not be negative")
	}

	if c.Tracing.Enabled && c.Tracing.Endpoint == "" {
		return NewConfigError("tracing.endpoint", "must be set when tracing is enabled")
	}

	return nil
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field   string
	message string
}

// NewConfigError creates a new configuration error
func NewConfigError(field, message string) *ConfigError {
	return &ConfigError{Field: field, message: message}
}

// Error returns the error message
func (e *ConfigError) Error() string {
	if e.Field == "" {
		return e.message
	}
	return e.Field + ": " + e.message
}
