// Package logging builds the zap loggers shared by every Bonita Forward binary.
package logging

import (
	"context"
	"fmt"
	"strings"

	"github.com/bonitaforward/bonita-forward/internal/platform/requestctx"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config selects the logger level and encoding.
type Config struct {
	Level  string `env:"BONITA_FORWARD_LOG_LEVEL" envDefault:"info"`
	Format string `env:"BONITA_FORWARD_LOG_FORMAT" envDefault:"json"`
}

// New builds a logger for the named service.
//
// Format "console" selects the development encoder; anything else logs JSON.
func New(service string, cfg Config) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(strings.TrimSpace(cfg.Level))
	if err != nil {
		return nil, fmt.Errorf("parse log level %q: %w", cfg.Level, err)
	}

	var zcfg zap.Config
	if strings.EqualFold(strings.TrimSpace(cfg.Format), "console") {
		zcfg = zap.NewDevelopmentConfig()
	} else {
		zcfg = zap.NewProductionConfig()
		zcfg.EncoderConfig.TimeKey = "ts"
		zcfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}
	zcfg.Level = zap.NewAtomicLevelAt(level)

	logger, err := zcfg.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	if service = strings.TrimSpace(service); service != "" {
		logger = logger.With(zap.String("service", service))
	}
	return logger, nil
}

// NewOrNop builds a logger and falls back to a no-op logger on bad config.
func NewOrNop(service string, cfg Config) *zap.Logger {
	logger, err := New(service, cfg)
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

// ForRequest decorates logger with request-scoped identifiers found in ctx.
func ForRequest(ctx context.Context, logger *zap.Logger) *zap.Logger {
	if logger == nil {
		logger = zap.NewNop()
	}
	if ctx == nil {
		return logger
	}
	fields := make([]zap.Field, 0, 2)
	if requestID := requestctx.RequestIDFromContext(ctx); requestID != "" {
		fields = append(fields, zap.String("request_id", requestID))
	}
	if principal, ok := requestctx.PrincipalFromContext(ctx); ok && principal.UserID != "" {
		fields = append(fields, zap.String("user_id", principal.UserID))
	}
	if len(fields) == 0 {
		return logger
	}
	return logger.With(fields...)
}
