package commands

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/moolen/fitaura/internal/config"
	"github.com/moolen/fitaura/internal/logging"
)

// Version is overridden at build time with -ldflags "-X ...commands.Version=...".
var Version = "0.1.0"

var (
	logLevelFlags []string // Supports multiple --log-level flags
	configPath    string
)

var rootCmd = &cobra.Command{
	Use:   "fitaura",
	Short: "Fitaura - multi-agent digital wellness assistant",
	Long: `Fitaura answers free-text wellness questions. A supervisor routes each
message to symptom, diet, fitness and lifestyle specialists and merges their
advice into one reply.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	return err
}

func init() {
	// Supports per-package log levels: --log-level debug --log-level orchestrator=debug
	rootCmd.PersistentFlags().StringSliceVar(&logLevelFlags, "log-level", nil,
		"Log level for packages. Use 'level' or 'default=level' for the default, or 'package.name=level' per package.\n"+
			"Examples: --log-level debug (all), --log-level agent.supervisor=debug --log-level store.*=warn")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "",
		"Path to the YAML configuration file (optional)")

	rootCmd.AddCommand(serverCmd)
	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(chatCmd)
}

// HandleError prints error and exits
func HandleError(err error, msg string) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", msg, err)
		os.Exit(1)
	}
}

// loadConfig reads --config on top of the defaults.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// setupLog applies the effective log levels for cfg.
func setupLog(cfg *config.Config) error {
	defaultLevel, packageLevels, err := resolveLogLevels(cfg.Log, logLevelFlags)
	if err != nil {
		return err
	}
	return logging.Reconfigure(defaultLevel, packageLevels)
}

// resolveLogLevels merges the log levels from three sources.
// Priority: CLI flags > LOG_LEVEL_* environment variables > config file.
//
// CLI format: ["debug"], ["default=info", "agent.supervisor=debug"]
// Env vars: LOG_LEVEL_AGENT_SUPERVISOR=debug (package name uppercased, dots to underscores)
func resolveLogLevels(fileCfg config.LogConfig, flags []string) (string, map[string]string, error) {
	result, err := fileCfg.PackageLevels()
	if err != nil {
		return "", nil, err
	}
	defaultLevel := fileCfg.Level
	if defaultLevel == "" {
		defaultLevel = "info"
	}

	for _, envPair := range os.Environ() {
		key, level, ok := strings.Cut(envPair, "=")
		if !ok || !strings.HasPrefix(key, "LOG_LEVEL_") {
			continue
		}
		result[convertEnvKeyToPackageName(key)] = level
	}

	for _, flag := range flags {
		pkg, level, ok := strings.Cut(flag, "=")
		if !ok {
			result["default"] = flag
			continue
		}
		result[pkg] = level
	}

	if level, exists := result["default"]; exists {
		defaultLevel = level
		delete(result, "default")
	}

	if _, err := logging.ParseLevel(defaultLevel); err != nil {
		return "", nil, err
	}
	for pkg, level := range result {
		if _, err := logging.ParseLevel(level); err != nil {
			return "", nil, fmt.Errorf("invalid log level for package %q: %w", pkg, err)
		}
	}

	return defaultLevel, result, nil
}

// convertEnvKeyToPackageName converts LOG_LEVEL_AGENT_SUPERVISOR -> agent.supervisor
func convertEnvKeyToPackageName(envKey string) string {
	name := strings.TrimPrefix(envKey, "LOG_LEVEL_")
	return strings.ToLower(strings.ReplaceAll(name, "_", "."))
}
