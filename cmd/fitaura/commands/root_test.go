package commands

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moolen/fitaura/internal/agent"
	"github.com/moolen/fitaura/internal/config"
	"github.com/moolen/fitaura/internal/orchestrator"
)

func TestResolveLogLevels(t *testing.T) {
	tests := []struct {
		name        string
		fileCfg     config.LogConfig
		env         map[string]string
		flags       []string
		wantDefault string
		wantPkgs    map[string]string
		wantErr     bool
	}{
		{
			name:        "nothing set",
			wantDefault: "info",
			wantPkgs:    map[string]string{},
		},
		{
			name:        "config file only",
			fileCfg:     config.LogConfig{Level: "warn", Packages: []string{"orchestrator=debug"}},
			wantDefault: "warn",
			wantPkgs:    map[string]string{"orchestrator": "debug"},
		},
		{
			name:        "env overrides file",
			fileCfg:     config.LogConfig{Level: "warn", Packages: []string{"agent.supervisor=error"}},
			env:         map[string]string{"LOG_LEVEL_AGENT_SUPERVISOR": "debug"},
			wantDefault: "warn",
			wantPkgs:    map[string]string{"agent.supervisor": "debug"},
		},
		{
			name:        "flags override env",
			env:         map[string]string{"LOG_LEVEL_STORE": "warn"},
			flags:       []string{"debug", "store=error"},
			wantDefault: "debug",
			wantPkgs:    map[string]string{"store": "error"},
		},
		{
			name:        "explicit default key",
			flags:       []string{"default=error", "agent.*=debug"},
			wantDefault: "error",
			wantPkgs:    map[string]string{"agent.*": "debug"},
		},
		{name: "invalid default", flags: []string{"loud"}, wantErr: true},
		{name: "invalid package level", flags: []string{"store=loud"}, wantErr: true},
		{name: "invalid file entry", fileCfg: config.LogConfig{Packages: []string{"store"}}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			def, pkgs, err := resolveLogLevels(tt.fileCfg, tt.flags)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantDefault, def)
			assert.Equal(t, tt.wantPkgs, pkgs)
		})
	}
}

func TestConvertEnvKeyToPackageName(t *testing.T) {
	assert.Equal(t, "agent.supervisor", convertEnvKeyToPackageName("LOG_LEVEL_AGENT_SUPERVISOR"))
	assert.Equal(t, "store", convertEnvKeyToPackageName("LOG_LEVEL_STORE"))
}

func TestPrintResult_Plain(t *testing.T) {
	res := &orchestrator.Result{
		RunID:       "run-1",
		FinalText:   "**Diet**\nEat more fibre.",
		AgentsUsed:  []agent.AgentID{agent.Symptom, agent.Diet},
		Termination: orchestrator.TerminationFinished,
	}

	var buf bytes.Buffer
	require.NoError(t, printResult(&buf, res, false))
	assert.Equal(t, "**Diet**\nEat more fibre.\n\nagents: SymptomAgent, DietAgent\ntermination: finished, run run-1\n", buf.String())

	buf.Reset()
	res.AgentsUsed = []agent.AgentID{}
	require.NoError(t, printResult(&buf, res, false))
	assert.Contains(t, buf.String(), "agents: none")
}

func TestApplyServerFlags(t *testing.T) {
	cfg := config.Default()
	require.NoError(t, serverCmd.Flags().Set("api-port", "9191"))
	t.Cleanup(func() {
		_ = serverCmd.Flags().Set("api-port", "8080")
		serverCmd.Flags().Lookup("api-port").Changed = false
	})

	applyServerFlags(serverCmd, cfg)
	assert.Equal(t, 9191, cfg.Server.Port)
	assert.False(t, cfg.Server.MCPEnabled)
}
