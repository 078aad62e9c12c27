// Package mcp parses MCP command flags and selects stdio or HTTP transport.
package mcp

import (
	"context"
	"flag"
	"path/filepath"
	"strings"

	entrypoint "github.com/bonitaforward/bonita-forward/internal/platform/cmd"
	"github.com/bonitaforward/bonita-forward/internal/platform/logging"
	server "github.com/bonitaforward/bonita-forward/internal/services/directory/app"
	"github.com/bonitaforward/bonita-forward/internal/services/directory/catalog"
	"github.com/bonitaforward/bonita-forward/internal/services/directory/content"
	mcpservice "github.com/bonitaforward/bonita-forward/internal/services/mcp/service"
)

// Config holds MCP command configuration.
type Config struct {
	DBPath       string   `env:"BONITA_FORWARD_DB_PATH"`
	HTTPAddr     string   `env:"BONITA_FORWARD_MCP_HTTP_ADDR" envDefault:"localhost:8081"`
	Transport    string   `env:"BONITA_FORWARD_MCP_TRANSPORT" envDefault:"stdio"`
	AuthToken    string   `env:"BONITA_FORWARD_MCP_TOKEN"`
	AllowedHosts []string `env:"BONITA_FORWARD_MCP_ALLOWED_HOSTS" envSeparator:","`
	Log          logging.Config
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "Path to the directory sqlite database")
	fs.StringVar(&cfg.HTTPAddr, "http-addr", cfg.HTTPAddr, "HTTP server address (for HTTP transport)")
	fs.StringVar(&cfg.Transport, "transport", cfg.Transport, "Transport type: stdio or http")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	if strings.TrimSpace(cfg.DBPath) == "" {
		cfg.DBPath = filepath.Join("data", "directory.db")
	}
	return cfg, nil
}

// Run starts the MCP protocol adapter over the directory database.
func Run(ctx context.Context, cfg Config) error {
	logger, err := logging.New(entrypoint.ServiceMCP, cfg.Log)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	return entrypoint.RunWithTelemetryAndOptions(ctx, entrypoint.ServiceMCP, entrypoint.RunOptions{Logger: logger}, func(ctx context.Context) error {
		store, err := server.OpenStore(ctx, cfg.DBPath, logger)
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()

		return mcpservice.Run(ctx, mcpservice.Config{
			Transport:    mcpservice.TransportKind(cfg.Transport),
			HTTPAddr:     cfg.HTTPAddr,
			AuthToken:    cfg.AuthToken,
			AllowedHosts: cfg.AllowedHosts,
		}, mcpservice.Deps{
			Catalog: catalog.NewService(store),
			Events:  content.NewService(store),
		}, logger)
	})
}
