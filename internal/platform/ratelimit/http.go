package ratelimit

import (
	"net/http"

	apperrors "github.com/bonitaforward/bonita-forward/internal/platform/errors"
	"github.com/bonitaforward/bonita-forward/internal/platform/httpx"
	"github.com/bonitaforward/bonita-forward/internal/platform/logging"
	"go.uber.org/zap"
)

// Middleware rejects requests over the limiter's budget with 429.
//
// Keys combine scope with the client address. Backend failures are logged and
// let the request through.
func Middleware(limiter Limiter, scope string, trustProxy bool, logger *zap.Logger) httpx.Middleware {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(next http.Handler) http.Handler {
		if next == nil {
			next = http.NotFoundHandler()
		}
		if limiter == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := scope + ":" + httpx.ClientIP(r, trustProxy)
			allowed, err := limiter.Allow(r.Context(), key)
			if err != nil {
				logging.ForRequest(r.Context(), logger).Warn("rate limiter unavailable", zap.String("scope", scope), zap.Error(err))
				next.ServeHTTP(w, r)
				return
			}
			if !allowed {
				httpx.WriteError(w, r, logger, apperrors.New(apperrors.CodeRateLimited, "rate limited"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
