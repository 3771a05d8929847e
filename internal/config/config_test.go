package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moolen/fitaura/internal/reasoning"
	"github.com/moolen/fitaura/internal/store"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fitaura.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 8, cfg.Orchestrator.MaxSteps)
	assert.Equal(t, store.BackendMemory, cfg.Store.Backend)
	assert.Equal(t, reasoning.BackendAnthropic, cfg.Reasoning.Backend)
	assert.Equal(t, 60*time.Second, cfg.Reasoning.Timeout)
}

func TestLoad_EmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_OverridesOnlyWhatIsSet(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9090
  allowed_origins: ["https://app.example.com", "https://admin.example.com"]
log:
  level: debug
  packages:
    - orchestrator=warn
    - store.*=error
reasoning:
  backend: gemini
  model: gemini-2.0-flash
  timeout: 15s
orchestrator:
  max_steps: 4
store:
  backend: sqlite
  path: /var/lib/fitaura/fitaura.db
tracing:
  enabled: true
  endpoint: collector:4317
audit:
  path: /var/log/fitaura/audit.jsonl
  redact: true
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, []string{"https://app.example.com", "https://admin.example.com"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, 30*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "gemini", cfg.Reasoning.Backend)
	assert.Equal(t, "gemini-2.0-flash", cfg.Reasoning.Model)
	assert.Equal(t, 15*time.Second, cfg.Reasoning.Timeout)
	assert.Equal(t, 1024, cfg.Reasoning.MaxTokens)
	assert.Equal(t, 4, cfg.Orchestrator.MaxSteps)
	assert.Equal(t, store.BackendSQLite, cfg.Store.Backend)
	assert.Equal(t, "/var/lib/fitaura/fitaura.db", cfg.Store.Path)
	assert.Equal(t, 256, cfg.Store.ProfileCacheSize)
	assert.True(t, cfg.Tracing.Enabled)
	assert.Equal(t, "collector:4317", cfg.Tracing.Endpoint)
	assert.Equal(t, "/var/log/fitaura/audit.jsonl", cfg.Audit.Path)
	assert.True(t, cfg.Audit.Redact)

	levels, err := cfg.Log.PackageLevels()
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"orchestrator": "warn", "store.*": "error"}, levels)
}

func TestLoad_ShorterOriginListReplacesDefault(t *testing.T) {
	path := writeConfig(t, "server:\n  allowed_origins: []\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Empty(t, cfg.Server.AllowedOrigins)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name      string
		content   string
		wantField string
	}{
		{name: "invalid yaml", content: "server: [port"},
		{name: "bad port", content: "server:\n  port: 70000\n", wantField: "server.port"},
		{name: "bad backend", content: "reasoning:\n  backend: openai\n", wantField: "reasoning.backend"},
		{name: "bad max steps", content: "orchestrator:\n  max_steps: 0\n", wantField: "orchestrator.max_steps"},
		{name: "bad log level", content: "log:\n  level: loud\n", wantField: "log.level"},
		{name: "bad package entry", content: "log:\n  packages: [orchestrator]\n", wantField: "log.packages"},
		{name: "sqlite without path", content: "store:\n  backend: sqlite\n  path: \"\"\n", wantField: "store.path"},
		{name: "tracing without endpoint", content: "tracing:\n  enabled: true\n", wantField: "tracing.endpoint"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			require.Error(t, err)

			var cfgErr *ConfigError
			if tt.wantField == "" {
				assert.False(t, errors.As(err, &cfgErr))
				return
			}
			require.True(t, errors.As(err, &cfgErr), "got %v", err)
			assert.Equal(t, tt.wantField, cfgErr.Field)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "failed to load config")
}

func TestConfigError(t *testing.T) {
	assert.Equal(t, "server.port: must be between 1 and 65535",
		NewConfigError("server.port", "must be between 1 and 65535").Error())
	assert.Equal(t, "broken", NewConfigError("", "broken").Error())
}
