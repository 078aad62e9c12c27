// Package bfadmin builds the back-office command line that operates directly
// on the directory database.
package bfadmin

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/bonitaforward/bonita-forward/internal/platform/branding"
	entrypoint "github.com/bonitaforward/bonita-forward/internal/platform/cmd"
	"github.com/bonitaforward/bonita-forward/internal/platform/logging"
	"github.com/bonitaforward/bonita-forward/internal/services/directory/accounts"
	server "github.com/bonitaforward/bonita-forward/internal/services/directory/app"
	"github.com/bonitaforward/bonita-forward/internal/services/directory/intake"
	"github.com/bonitaforward/bonita-forward/internal/services/directory/storage/sqlite"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Config holds bfadmin configuration loaded from the environment.
type Config struct {
	DBPath string `env:"BONITA_FORWARD_DB_PATH"`
	Log    logging.Config
}

// LoadConfig reads environment defaults.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	if strings.TrimSpace(cfg.DBPath) == "" {
		cfg.DBPath = filepath.Join("data", "directory.db")
	}
	return cfg, nil
}

// session is the state shared by subcommands for one invocation.
type session struct {
	cfg      Config
	logger   *zap.Logger
	store    *sqlite.Store
	accounts *accounts.Service
	intake   *intake.Service
}

func (s *session) open(ctx context.Context) error {
	if s.store != nil {
		return nil
	}
	s.logger = logging.NewOrNop(entrypoint.ServiceAdmin, s.cfg.Log)
	store, err := server.OpenStore(ctx, s.cfg.DBPath, s.logger)
	if err != nil {
		return err
	}
	tokens, err := accounts.EphemeralTokens()
	if err != nil {
		_ = store.Close()
		return err
	}
	s.store = store
	s.accounts = accounts.NewService(store, accounts.Config{Tokens: tokens, BcryptCost: bcrypt.DefaultCost})
	s.intake = intake.NewService(store)
	return nil
}

func (s *session) close() error {
	if s.store == nil {
		return nil
	}
	err := s.store.Close()
	s.store = nil
	return err
}

// run opens the store for the duration of one subcommand.
func (s *session) run(fn func(ctx context.Context, cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) (err error) {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		if strings.TrimSpace(s.cfg.DBPath) == "" {
			return errors.New("database path is required")
		}
		if err := s.open(ctx); err != nil {
			return err
		}
		defer func() {
			if closeErr := s.close(); err == nil {
				err = closeErr
			}
		}()
		return fn(ctx, cmd, args)
	}
}

// NewRootCommand assembles the bfadmin command tree.
func NewRootCommand(cfg Config) *cobra.Command {
	s := &session{cfg: cfg}
	root := &cobra.Command{
		Use:           "bfadmin",
		Short:         branding.AppName + " back-office tool",
		Long:          "Administrative operations against the directory database: roles, users, business applications and change requests.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	root.PersistentFlags().StringVar(&s.cfg.DBPath, "db", cfg.DBPath, "Path to the directory sqlite database")

	root.AddCommand(
		newGrantAdminCommand(s),
		newRevokeAdminCommand(s),
		newUsersCommand(s),
		newDeleteUserCommand(s),
		newApplicationsCommand(s),
		newChangeRequestsCommand(s),
		newMigrationsCommand(s),
	)
	return root
}

// Execute runs the command tree with args.
func Execute(ctx context.Context, root *cobra.Command, args []string) error {
	if root == nil {
		return fmt.Errorf("root command is required")
	}
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}
