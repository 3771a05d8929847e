package commands

import (
	"context"
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/moolen/fitaura/internal/logging"
	"github.com/moolen/fitaura/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the wellness tools over MCP on stdio",
	Long: `Start an MCP server on stdin/stdout exposing the wellness_ask and
wellness_profile tools. Logs are written to stderr.`,
	RunE: runMCP,
}

func runMCP(_ *cobra.Command, _ []string) error {
	// stdout carries the protocol.
	logging.SetOutput(os.Stderr, os.Stderr)

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := setupLog(cfg); err != nil {
		return err
	}

	ctx, stop := signalContext()
	defer stop()

	rt, err := newRuntime(ctx, cfg, runtimeOptions{})
	if err != nil {
		return err
	}
	defer rt.Close()

	srv := mcp.NewServer(rt.orchestrator, rt.store, Version)
	if err := srv.ServeStdio(ctx, os.Stdin, os.Stdout); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
