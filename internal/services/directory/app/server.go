package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/bonitaforward/bonita-forward/internal/platform/metrics"
	"github.com/bonitaforward/bonita-forward/internal/platform/ratelimit"
	"github.com/bonitaforward/bonita-forward/internal/platform/timeouts"
	"github.com/bonitaforward/bonita-forward/internal/services/directory/media"
	"github.com/bonitaforward/bonita-forward/internal/services/directory/storage/sqlite"
	"go.uber.org/zap"
)

// Server hosts the directory HTTP API and its storage lifecycle.
type Server struct {
	listener     net.Listener
	httpServer   *http.Server
	store        *sqlite.Store
	closeLimiter func() error
	logger       *zap.Logger
}

// New opens storage, builds services and listens on cfg.Addr.
func New(ctx context.Context, cfg Config, logger *zap.Logger) (*Server, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	cfg = cfg.withDefaults()
	accountCfg, err := cfg.AccountConfig(time.Now)
	if err != nil {
		return nil, err
	}

	store, err := OpenStore(ctx, cfg.DBPath, logger)
	if err != nil {
		return nil, err
	}
	objects, err := media.NewObjectStore(ctx, cfg.Objects)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("open object store: %w", err)
	}
	limiter, closeLimiter := ratelimit.New(cfg.RateLimit)

	deps := HandlerDeps{
		Services:   NewServices(store, objects, accountCfg),
		Store:      store,
		Metrics:    metrics.New(),
		Limiter:    limiter,
		TrustProxy: cfg.TrustProxy,
		Logger:     logger,
	}
	if memory, ok := objects.(*media.MemoryStore); ok {
		deps.Media = memory
	}
	handler, degraded, err := NewHandler(deps)
	if err != nil {
		_ = closeLimiter()
		_ = store.Close()
		return nil, err
	}
	if len(degraded) > 0 {
		logger.Warn("modules degraded", zap.Strings("modules", degraded))
	}

	listener, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		_ = closeLimiter()
		_ = store.Close()
		return nil, fmt.Errorf("listen on %s: %w", cfg.Addr, err)
	}

	return &Server{
		listener: listener,
		httpServer: &http.Server{
			Handler:           handler,
			ReadHeaderTimeout: timeouts.ReadHeader,
		},
		store:        store,
		closeLimiter: closeLimiter,
		logger:       logger,
	}, nil
}

// Addr returns the listener address for the server.
func (s *Server) Addr() string {
	if s == nil || s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Run creates and serves a directory server until context cancellation.
func Run(ctx context.Context, cfg Config, logger *zap.Logger) error {
	server, err := New(ctx, cfg, logger)
	if err != nil {
		return err
	}
	return server.Serve(ctx)
}

// Serve handles HTTP requests until context cancellation.
func (s *Server) Serve(ctx context.Context) error {
	if s == nil {
		return errors.New("server is nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	defer s.Close()

	s.logger.Info("directory server listening", zap.String("addr", s.Addr()))
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- s.httpServer.Serve(s.listener)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeouts.Shutdown)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http: %w", err)
		}
		err := <-serveErr
		if err == nil || errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve http: %w", err)
	case err := <-serveErr:
		if err == nil || errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve http: %w", err)
	}
}

// Close releases server resources.
func (s *Server) Close() {
	if s == nil {
		return
	}
	if s.httpServer != nil {
		_ = s.httpServer.Close()
	}
	if s.listener != nil {
		_ = s.listener.Close()
	}
	if s.closeLimiter != nil {
		if err := s.closeLimiter(); err != nil {
			s.logger.Warn("close rate limiter", zap.Error(err))
		}
	}
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			s.logger.Warn("close directory store", zap.Error(err))
		}
	}
}

// OpenStore creates the database directory if needed and opens the store.
func OpenStore(ctx context.Context, path string, logger *zap.Logger) (*sqlite.Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create storage dir: %w", err)
		}
	}
	store, err := sqlite.Open(ctx, path, logger)
	if err != nil {
		return nil, fmt.Errorf("open directory sqlite store: %w", err)
	}
	return store, nil
}
