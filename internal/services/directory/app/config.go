// Package app wires the directory HTTP API, its storage and its middleware.
package app

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/bonitaforward/bonita-forward/internal/platform/config"
	"github.com/bonitaforward/bonita-forward/internal/platform/logging"
	"github.com/bonitaforward/bonita-forward/internal/platform/ratelimit"
	"github.com/bonitaforward/bonita-forward/internal/services/directory/accounts"
	"github.com/bonitaforward/bonita-forward/internal/services/directory/media"
	"golang.org/x/crypto/bcrypt"
)

// Config is the directory server configuration.
type Config struct {
	Addr        string `env:"BONITA_FORWARD_HTTP_ADDR" envDefault:":8080"`
	DBPath      string `env:"BONITA_FORWARD_DB_PATH"`
	AdminEmails string `env:"BONITA_FORWARD_ADMIN_EMAILS"`
	TrustProxy  bool   `env:"BONITA_FORWARD_TRUST_PROXY"`
	BcryptCost  int    `env:"BONITA_FORWARD_BCRYPT_COST" envDefault:"12"`

	Tokens    accounts.TokenEnv
	RateLimit ratelimit.Config
	Objects   media.Config
	Log       logging.Config
}

// LoadConfig reads Config from the environment.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := config.ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	return cfg.withDefaults(), nil
}

func (c Config) withDefaults() Config {
	if strings.TrimSpace(c.DBPath) == "" {
		c.DBPath = filepath.Join("data", "directory.db")
	}
	return c
}

// AccountConfig validates token settings and builds the account service config.
func (c Config) AccountConfig(now func() time.Time) (accounts.Config, error) {
	tokens, err := accounts.NewTokenConfig(c.Tokens, now)
	if err != nil {
		return accounts.Config{}, err
	}
	cost := c.BcryptCost
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return accounts.Config{}, fmt.Errorf("BONITA_FORWARD_BCRYPT_COST must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost)
	}
	return accounts.Config{
		Tokens:      tokens,
		AdminEmails: config.SplitList(c.AdminEmails),
		BcryptCost:  cost,
	}, nil
}
