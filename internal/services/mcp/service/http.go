package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"

	apperrors "github.com/bonitaforward/bonita-forward/internal/platform/errors"
	"github.com/bonitaforward/bonita-forward/internal/platform/httpx"
	"github.com/bonitaforward/bonita-forward/internal/platform/timeouts"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"
)

const defaultHTTPAddr = "localhost:8081"

// Handler returns the streamable HTTP handler guarded by host and token checks.
func (s *Server) Handler(cfg Config, logger *zap.Logger) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	streamable := mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return s.mcpServer
	}, nil)
	return httpx.Chain(streamable,
		httpx.RequestID(),
		httpx.RecoverPanic(logger),
		httpx.AccessLog(logger),
		requireLocalHost(parseAllowedHosts(cfg.AllowedHosts), logger),
		requireToken(strings.TrimSpace(cfg.AuthToken), logger),
	)
}

func (s *Server) runHTTP(ctx context.Context, cfg Config, logger *zap.Logger) error {
	addr := strings.TrimSpace(cfg.HTTPAddr)
	if addr == "" {
		addr = defaultHTTPAddr
	}
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}
	httpServer := &http.Server{
		Handler:           s.Handler(cfg, logger),
		ReadHeaderTimeout: timeouts.ReadHeader,
	}
	logger.Info("mcp http listening", zap.String("addr", listener.Addr().String()))

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- httpServer.Serve(listener)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeouts.Shutdown)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown mcp http: %w", err)
		}
		<-serveErr
		return nil
	case err := <-serveErr:
		if err == nil || errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve mcp http: %w", err)
	}
}

// requireLocalHost rejects Host and Origin headers outside loopback and the
// allow list to mitigate DNS rebinding.
func requireLocalHost(allowed map[string]struct{}, logger *zap.Logger) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := validateLocalRequest(r, allowed); err != nil {
				httpx.WriteError(w, r, logger, apperrors.New(apperrors.CodeForbidden, err.Error()))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func requireToken(token string, logger *zap.Logger) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		if token == "" {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			presented := httpx.BearerToken(r)
			if subtle.ConstantTimeCompare([]byte(presented), []byte(token)) != 1 {
				httpx.WriteError(w, r, logger, apperrors.New(apperrors.CodeUnauthenticated, "valid MCP token required"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func validateLocalRequest(r *http.Request, allowed map[string]struct{}) error {
	if !isAllowedHost(r.Host, allowed) {
		return errors.New("invalid host")
	}
	origin := strings.TrimSpace(r.Header.Get("Origin"))
	if origin == "" {
		return nil
	}
	parsed, err := url.Parse(origin)
	if err != nil || parsed.Host == "" {
		return errors.New("invalid origin")
	}
	if !isAllowedHost(parsed.Host, allowed) {
		return errors.New("invalid origin")
	}
	return nil
}

func isAllowedHost(host string, allowed map[string]struct{}) bool {
	host = strings.TrimSpace(host)
	if host == "" {
		return false
	}
	if splitHost, _, err := net.SplitHostPort(host); err == nil {
		host = splitHost
	}
	host = strings.ToLower(strings.Trim(host, "[]"))
	switch host {
	case "localhost", "127.0.0.1", "::1":
		return true
	}
	_, ok := allowed[host]
	return ok
}

func parseAllowedHosts(hosts []string) map[string]struct{} {
	result := make(map[string]struct{}, len(hosts))
	for _, entry := range hosts {
		trimmed := strings.ToLower(strings.TrimSpace(entry))
		if trimmed == "" {
			continue
		}
		result[trimmed] = struct{}{}
	}
	return result
}
