package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/bonitaforward/bonita-forward/internal/platform/branding"
	"github.com/bonitaforward/bonita-forward/internal/services/mcp/domain"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"
)

const (
	serverName    = branding.AppName + " MCP"
	serverVersion = "0.1.0"
)

// TransportKind identifies the MCP transport implementation.
type TransportKind string

const (
	// TransportStdio uses standard input/output for MCP.
	TransportStdio TransportKind = "stdio"
	// TransportHTTP serves MCP over streamable HTTP.
	TransportHTTP TransportKind = "http"
)

// Config configures the MCP server.
type Config struct {
	Transport TransportKind
	// HTTPAddr defaults to localhost:8081 for HTTP transport.
	HTTPAddr string
	// AuthToken, when set, is required as a bearer token on HTTP requests.
	AuthToken string
	// AllowedHosts extends the loopback hosts accepted in Host and Origin headers.
	AllowedHosts []string
}

// Deps are the directory services behind the MCP tools.
type Deps struct {
	Catalog domain.Catalog
	Events  domain.Events
}

// Server hosts the MCP server.
type Server struct {
	mcpServer *mcp.Server
}

// New registers every tool and resource module on a fresh MCP server.
func New(deps Deps) (*Server, error) {
	mcpServer := mcp.NewServer(&mcp.Implementation{Name: serverName, Version: serverVersion}, nil)
	for _, module := range newMCPRegistrationModules(deps) {
		if err := module.register(mcpServerRegistrationAdapter{server: mcpServer}); err != nil {
			return nil, fmt.Errorf("register MCP module %q: %w", module.name, err)
		}
	}
	return &Server{mcpServer: mcpServer}, nil
}

// Run serves MCP on the configured transport until context cancellation.
func Run(ctx context.Context, cfg Config, deps Deps, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Transport == "" {
		cfg.Transport = TransportStdio
	}
	server, err := New(deps)
	if err != nil {
		return err
	}

	switch TransportKind(strings.ToLower(string(cfg.Transport))) {
	case TransportStdio:
		return server.runWithTransport(ctx, &mcp.StdioTransport{})
	case TransportHTTP:
		return server.runHTTP(ctx, cfg, logger)
	default:
		return fmt.Errorf("transport %q is not supported", cfg.Transport)
	}
}

// runWithTransport serves one session and treats cancellation as a clean stop.
func (s *Server) runWithTransport(ctx context.Context, transport mcp.Transport) error {
	err := s.mcpServer.Run(ctx, transport)
	if err != nil && ctx.Err() != nil {
		return nil
	}
	return err
}
