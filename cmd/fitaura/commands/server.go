package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/mark3labs/mcp-go/server"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/moolen/fitaura/internal/apiserver"
	"github.com/moolen/fitaura/internal/audit"
	"github.com/moolen/fitaura/internal/config"
	"github.com/moolen/fitaura/internal/lifecycle"
	"github.com/moolen/fitaura/internal/logging"
	"github.com/moolen/fitaura/internal/mcp"
	"github.com/moolen/fitaura/internal/metrics"
	"github.com/moolen/fitaura/internal/orchestrator"
	"github.com/moolen/fitaura/internal/tracing"
)

var (
	apiPort      int
	mcpEnabled   bool
	auditLogPath string
	watchConfig  bool
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the Fitaura API server",
	Long: `Start the HTTP API (chat, profiles, history, WebSocket progress stream),
Prometheus metrics, tracing, the audit log and optionally the MCP endpoint.`,
	Run: runServer,
}

func init() {
	serverCmd.Flags().IntVar(&apiPort, "api-port", 8080, "Port the API server listens on (overrides server.port)")
	serverCmd.Flags().BoolVar(&mcpEnabled, "mcp", false, "Serve MCP over streamable HTTP at /v1/mcp (overrides server.mcp_enabled)")
	serverCmd.Flags().StringVar(&auditLogPath, "audit-log", "",
		"Path to write the orchestration audit log (JSONL). Overrides audit.path; empty keeps the config value.")
	serverCmd.Flags().BoolVar(&watchConfig, "watch-config", true, "Reload log levels when the config file changes")
}

// applyServerFlags copies explicitly set flags over the file config.
func applyServerFlags(cmd *cobra.Command, cfg *config.Config) {
	if cmd.Flags().Changed("api-port") {
		cfg.Server.Port = apiPort
	}
	if cmd.Flags().Changed("mcp") {
		cfg.Server.MCPEnabled = mcpEnabled
	}
	if auditLogPath != "" {
		cfg.Audit.Path = auditLogPath
	}
}

func runServer(cmd *cobra.Command, _ []string) {
	cfg, err := loadConfig()
	HandleError(err, "Configuration error")
	applyServerFlags(cmd, cfg)
	HandleError(cfg.Validate(), "Configuration error")

	HandleError(setupLog(cfg), "Failed to setup logging")
	logger := logging.GetLogger("server")
	logger.Info("Starting Fitaura v%s", Version)
	logger.Debug("Configuration loaded: port=%d backend=%s store=%s", cfg.Server.Port, cfg.Reasoning.Backend, cfg.Store.Backend)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	manager := lifecycle.NewManager()
	if cfg.Server.ShutdownTimeout > 0 {
		manager.SetShutdownTimeout(cfg.Server.ShutdownTimeout)
	}

	tracingProvider, err := tracing.NewProvider(cfg.Tracing, Version)
	HandleError(err, "Tracing configuration error")
	HandleError(manager.Register(tracingProvider), "Tracing registration error")

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	runMetrics := metrics.NewMetrics(registry)

	observers := []orchestrator.Observer{runMetrics}
	var auditComponent lifecycle.Component
	if cfg.Audit.Path != "" {
		var auditOpts []audit.Option
		if cfg.Audit.Redact {
			auditOpts = append(auditOpts, audit.WithRedaction())
		}
		auditLog, err := audit.NewLogger(cfg.Audit.Path, auditOpts...)
		HandleError(err, "Failed to open audit log")
		observers = append(observers, auditLog)
		auditComponent = lifecycle.Closer("audit-log", auditLog)
		logger.Info("Audit log enabled: %s", cfg.Audit.Path)
	}

	rt, err := newRuntime(ctx, cfg, runtimeOptions{recorder: runMetrics, observers: observers})
	HandleError(err, "Failed to initialize")
	storeComponent := lifecycle.Closer("store", rt.store)
	HandleError(manager.Register(storeComponent), "Store registration error")

	var mcpServer *server.MCPServer
	if cfg.Server.MCPEnabled {
		mcpServer = mcp.NewServer(rt.orchestrator, rt.store, Version).MCPServer()
	}

	api, err := apiserver.New(
		apiserver.Config{Port: cfg.Server.Port, AllowedOrigins: cfg.Server.AllowedOrigins},
		apiserver.Deps{
			Runner:    rt.orchestrator,
			Profiles:  rt.store,
			History:   rt.store,
			Readiness: manager,
			Gatherer:  registry,
			MCP:       mcpServer,
		},
	)
	HandleError(err, "API server error")

	apiDeps := []lifecycle.Component{storeComponent, tracingProvider}
	if auditComponent != nil {
		HandleError(manager.Register(auditComponent), "Audit log registration error")
		apiDeps = append(apiDeps, auditComponent)
	}
	HandleError(manager.Register(api, apiDeps...), "API server registration error")

	if watchConfig && configPath != "" {
		watcher, err := config.NewWatcher(configPath, 0, reloadLogLevels)
		HandleError(err, "Config watcher error")
		HandleError(manager.Register(watcher), "Config watcher registration error")
	}

	if err := manager.Start(ctx); err != nil {
		logger.Error("Failed to start components: %v", err)
		HandleError(err, "Startup error")
	}
	logger.Info("Application started successfully")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan
	logger.Info("Shutdown signal received, gracefully shutting down...")
	cancel()

	if err := manager.Stop(context.Background()); err != nil {
		logger.Error("Error during shutdown: %v", err)
	}
	logger.Info("Shutdown complete")
}

// reloadLogLevels re-applies the log section of a changed config file.
// CLI flags and environment variables keep their priority.
func reloadLogLevels(cfg *config.Config) error {
	if err := setupLog(cfg); err != nil {
		return err
	}
	logging.GetLogger("server").Info("Log levels reloaded (default %s)", logging.DefaultLevel())
	return nil
}
