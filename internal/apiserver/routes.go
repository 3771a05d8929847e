package apiserver

import (
	"net/http"

	"github.com/mark3labs/mcp-go/server"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MCPEndpointPath is where the MCP streamable HTTP transport is mounted.
const MCPEndpointPath = "/v1/mcp"

func (s *Server) registerHandlers() {
	s.router.HandleFunc("POST /v1/chat", s.handleChat)
	s.router.HandleFunc("GET /v1/profile/{userID}", s.handleGetProfile)
	s.router.HandleFunc("PUT /v1/profile/{userID}", s.handlePutProfile)
	s.router.HandleFunc("GET /v1/history/{userID}", s.handleHistory)
	s.router.HandleFunc("GET /ws/process-query", s.handleProcessQuery)

	s.router.HandleFunc("GET /health", s.handleHealth)
	s.router.HandleFunc("GET /ready", s.handleReady)

	if s.deps.Gatherer != nil {
		s.router.Handle("GET /metrics", promhttp.HandlerFor(s.deps.Gatherer, promhttp.HandlerOpts{}))
	}

	s.registerMCPHandler()
}

func (s *Server) registerMCPHandler() {
	if s.deps.MCP == nil {
		s.logger.Debug("MCP server not configured, skipping %s", MCPEndpointPath)
		return
	}

	streamable := server.NewStreamableHTTPServer(
		s.deps.MCP,
		server.WithEndpointPath(MCPEndpointPath),
		server.WithStateLess(true),
	)
	s.router.Handle(MCPEndpointPath, streamable)
	s.logger.Info("MCP endpoint registered at %s", MCPEndpointPath)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *Server) handleReady(w http.ResponseWriter, _ *http.Request) {
	ready := s.deps.Readiness == nil || s.deps.Readiness.Ready()
	status := http.StatusOK
	if !ready {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, map[string]bool{"ready": ready})
}
