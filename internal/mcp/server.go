// Package mcp exposes the orchestrator as Model Context Protocol tools.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/moolen/fitaura/internal/logging"
	"github.com/moolen/fitaura/internal/orchestrator"
	"github.com/moolen/fitaura/internal/store"
)

// Tool names.
const (
	ToolAsk     = "wellness_ask"
	ToolProfile = "wellness_profile"
)

// Tool is one tool implementation behind the MCP adapter.
type Tool interface {
	Execute(ctx context.Context, input json.RawMessage) (interface{}, error)
}

// Runner executes one orchestration run.
type Runner interface {
	Run(ctx context.Context, userID, message string, opts ...orchestrator.RunOption) (*orchestrator.Result, error)
}

// Server wraps an mcp-go server with the wellness tools.
type Server struct {
	mcpServer *server.MCPServer
	tools     map[string]Tool
	logger    *logging.Logger
}

// NewServer registers the wellness tools on a new MCP server.
func NewServer(runner Runner, profiles store.ProfileStore, version string) *Server {
	s := &Server{
		mcpServer: server.NewMCPServer(
			"fitaura",
			version,
			server.WithToolCapabilities(false),
			server.WithLogging(),
		),
		tools:  make(map[string]Tool),
		logger: logging.GetLogger("mcp"),
	}

	s.registerTool(ToolAsk,
		"Ask the wellness assistant a question about symptoms, diet, fitness or lifestyle. "+
			"Specialist agents are consulted as needed and their advice is merged into one answer.",
		&askTool{runner: runner},
		map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"message": map[string]interface{}{
					"type":        "string",
					"description": "The user's message in free text",
				},
				"user_id": map[string]interface{}{
					"type":        "string",
					"description": "Optional: user whose stored profile and history are used",
				},
			},
			"required": []string{"message"},
		},
	)

	s.registerTool(ToolProfile,
		"Get the stored wellness profile (age, goals, conditions, preferences) of a user",
		&profileTool{profiles: profiles},
		map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"user_id": map[string]interface{}{
					"type":        "string",
					"description": "User identifier",
				},
			},
			"required": []string{"user_id"},
		},
	)

	return s
}

// MCPServer returns the underlying mcp-go server, e.g. for the streamable
// HTTP transport.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio serves newline-delimited JSON-RPC on in/out until ctx is done
// or in is closed. Logs must not be written to out.
func (s *Server) ServeStdio(ctx context.Context, in io.Reader, out io.Writer) error {
	s.logger.Info("Serving MCP over stdio")
	return server.NewStdioServer(s.mcpServer).Listen(ctx, in, out)
}

func (s *Server) registerTool(name, description string, tool Tool, inputSchema map[string]interface{}) {
	s.tools[name] = tool

	schemaJSON, err := json.Marshal(inputSchema)
	if err != nil {
		panic(fmt.Sprintf("Failed to marshal schema for tool %s: %v", name, err))
	}

	s.mcpServer.AddTool(mcp.NewToolWithRawSchema(name, description, schemaJSON), s.createToolHandler(name, tool))
}

func (s *Server) createToolHandler(name string, tool Tool) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args, err := json.Marshal(request.Params.Arguments)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Invalid arguments: %v", err)), nil
		}

		result, err := tool.Execute(ctx, args)
		if err != nil {
			s.logger.WithContext(ctx).Warn("Tool %s failed: %v", name, err)
			return mcp.NewToolResultError(fmt.Sprintf("Tool execution failed: %v", err)), nil
		}

		resultJSON, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to format result: %v", err)), nil
		}
		return mcp.NewToolResultText(string(resultJSON)), nil
	}
}
