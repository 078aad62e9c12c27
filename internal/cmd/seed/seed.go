// Package seed parses seed command flags and loads a fixture manifest.
package seed

import (
	"context"
	"flag"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	entrypoint "github.com/bonitaforward/bonita-forward/internal/platform/cmd"
	"github.com/bonitaforward/bonita-forward/internal/platform/logging"
	"github.com/bonitaforward/bonita-forward/internal/services/directory/accounts"
	server "github.com/bonitaforward/bonita-forward/internal/services/directory/app"
	"github.com/bonitaforward/bonita-forward/internal/services/directory/catalog"
	"github.com/bonitaforward/bonita-forward/internal/services/directory/content"
	"github.com/bonitaforward/bonita-forward/internal/tools/seed"
	"golang.org/x/crypto/bcrypt"
)

// Config holds seed command configuration.
type Config struct {
	DBPath       string `env:"BONITA_FORWARD_DB_PATH"`
	ManifestPath string `env:"BONITA_FORWARD_SEED_MANIFEST" envDefault:"internal/tools/seed/fixtures/directory.yaml"`
	Verbose      bool
	Log          logging.Config
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "Path to the directory sqlite database")
	fs.StringVar(&cfg.ManifestPath, "manifest", cfg.ManifestPath, "Seed manifest YAML file")
	fs.BoolVar(&cfg.Verbose, "v", false, "verbose output")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	if strings.TrimSpace(cfg.DBPath) == "" {
		cfg.DBPath = filepath.Join("data", "directory.db")
	}
	return cfg, nil
}

// Run applies the manifest and prints a summary to out.
func Run(ctx context.Context, cfg Config, out io.Writer) error {
	if out == nil {
		out = io.Discard
	}
	manifest, err := seed.LoadManifest(cfg.ManifestPath)
	if err != nil {
		return err
	}
	logger := logging.NewOrNop(entrypoint.ServiceSeed, cfg.Log)
	store, err := server.OpenStore(ctx, cfg.DBPath, logger)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	tokens, err := accounts.EphemeralTokens()
	if err != nil {
		return err
	}
	runner := seed.NewRunner(seed.Deps{
		Accounts:  accounts.NewService(store, accounts.Config{Tokens: tokens, BcryptCost: bcrypt.DefaultCost}),
		Providers: catalog.NewService(store),
		Content:   content.NewService(store),
	}, cfg.Verbose, out)

	report, err := runner.Run(ctx, manifest)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "providers: %d created, %d skipped\n", report.ProvidersCreated, report.ProvidersSkipped)
	fmt.Fprintf(out, "posts: %d created, %d skipped\n", report.PostsCreated, report.PostsSkipped)
	fmt.Fprintf(out, "events: %d created, %d skipped\n", report.EventsCreated, report.EventsSkipped)
	if report.Admin != "" {
		fmt.Fprintf(out, "admin: %s\n", report.Admin)
	}
	return nil
}
