package apiserver

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/moolen/fitaura/internal/logging"
	"github.com/moolen/fitaura/internal/orchestrator"
	"github.com/moolen/fitaura/internal/store"
)

// Runner executes one orchestration run.
type Runner interface {
	Run(ctx context.Context, userID, message string, opts ...orchestrator.RunOption) (*orchestrator.Result, error)
}

// ReadinessChecker is an interface for checking component readiness
type ReadinessChecker interface {
	Ready() bool
}

// Config holds the listener settings.
type Config struct {
	Port int

	// AllowedOrigins lists the origins answered with CORS headers and
	// accepted for WebSocket upgrades. "*" allows any origin.
	AllowedOrigins []string
}

// Deps are the collaborators behind the routes. Profiles and History are
// required; the rest are optional.
type Deps struct {
	Runner    Runner
	Profiles  store.ProfileStore
	History   store.HistoryStore
	Readiness ReadinessChecker

	// Gatherer backs /metrics when set.
	Gatherer prometheus.Gatherer

	// MCP is mounted at /v1/mcp when set.
	MCP *server.MCPServer
}

// Server handles HTTP API requests and the WebSocket progress stream.
//
// Server implements lifecycle.Component.
type Server struct {
	cfg      Config
	deps     Deps
	logger   *logging.Logger
	tracer   trace.Tracer
	router   *http.ServeMux
	server   *http.Server
	origins  originPolicy
	listener net.Listener
}

// New creates the server and registers all routes.
func New(cfg Config, deps Deps) (*Server, error) {
	if deps.Runner == nil {
		return nil, errors.New("apiserver: runner is required")
	}
	if deps.Profiles == nil || deps.History == nil {
		return nil, errors.New("apiserver: profile and history stores are required")
	}

	s := &Server{
		cfg:     cfg,
		deps:    deps,
		logger:  logging.GetLogger("apiserver"),
		tracer:  otel.Tracer("fitaura.apiserver"),
		router:  http.NewServeMux(),
		origins: newOriginPolicy(cfg.AllowedOrigins),
	}

	s.registerHandlers()
	s.configureHTTPServer()
	return s, nil
}

func (s *Server) configureHTTPServer() {
	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", s.cfg.Port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		// A run makes up to a dozen sequential reasoning calls.
		WriteTimeout: 10 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}
}

// Handler returns the full middleware chain around the router.
func (s *Server) Handler() http.Handler {
	return s.traceMiddleware(s.corsMiddleware(s.logMiddleware(s.router)))
}

// Start implements lifecycle.Component. The listener is bound before it
// returns so port conflicts fail startup.
func (s *Server) Start(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	ln, err := net.Listen("tcp", s.server.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.server.Addr, err)
	}
	s.listener = ln

	go func() {
		if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("HTTP server error: %v", err)
		}
	}()

	s.logger.Info("API server listening on %s", ln.Addr())
	return nil
}

// Stop implements lifecycle.Component.
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Stopping API server...")
	if err := s.server.Shutdown(ctx); err != nil {
		s.logger.Error("HTTP server shutdown error: %v", err)
		return err
	}
	s.logger.Info("API server stopped")
	return nil
}

// Name implements lifecycle.Component.
func (s *Server) Name() string {
	return "api-server"
}

// Addr returns the bound address once started.
func (s *Server) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}
