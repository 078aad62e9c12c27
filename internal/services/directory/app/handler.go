package app

import (
	"context"
	"net/http"

	"github.com/bonitaforward/bonita-forward/internal/platform/httpx"
	"github.com/bonitaforward/bonita-forward/internal/platform/metrics"
	"github.com/bonitaforward/bonita-forward/internal/platform/ratelimit"
	"github.com/bonitaforward/bonita-forward/internal/platform/timeouts"
	"github.com/bonitaforward/bonita-forward/internal/services/directory/api/http/authn"
	"github.com/bonitaforward/bonita-forward/internal/services/directory/api/http/module"
	"github.com/bonitaforward/bonita-forward/internal/services/directory/api/http/modules/account"
	"github.com/bonitaforward/bonita-forward/internal/services/directory/api/http/modules/admin"
	"github.com/bonitaforward/bonita-forward/internal/services/directory/api/http/modules/business"
	"github.com/bonitaforward/bonita-forward/internal/services/directory/api/http/modules/public"
	"go.uber.org/zap"
)

// Pinger reports storage reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HandlerDeps assemble the root HTTP handler.
type HandlerDeps struct {
	Services Services
	Store    Pinger
	Metrics  *metrics.Metrics
	// Limiter throttles anonymous form posts; nil disables throttling.
	Limiter    ratelimit.Limiter
	TrustProxy bool
	// Media serves uploaded images when objects are kept in memory.
	Media  http.Handler
	Logger *zap.Logger
}

// NewHandler registers every module on one mux and wraps it in the shared
// middleware chain. It returns the IDs of modules serving degraded.
func NewHandler(deps HandlerDeps) (http.Handler, []string, error) {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if deps.Metrics == nil {
		deps.Metrics = metrics.New()
	}
	base := module.NewBase(logger)
	svc := deps.Services

	var formLimit httpx.Middleware
	if deps.Limiter != nil {
		formLimit = ratelimit.Middleware(deps.Limiter, "forms", deps.TrustProxy, logger)
	}

	mux := http.NewServeMux()
	degraded, err := module.RegisterAll(mux,
		public.New(public.Deps{
			Catalog:   svc.Catalog,
			Bookings:  svc.Bookings,
			Intake:    svc.Intake,
			Accounts:  svc.Accounts,
			Content:   svc.Content,
			FormLimit: formLimit,
			Recorder:  deps.Metrics,
		}, base),
		account.New(svc.Accounts, svc.Content, base),
		business.New(business.Deps{
			Dashboard:      svc.Dashboard,
			ChangeRequests: svc.Intake,
			Bookings:       svc.Bookings,
			Notifications:  svc.Notifications,
			Calendars:      svc.Content,
			Images:         svc.Media,
		}, base),
		admin.New(admin.Deps{
			Users:     svc.Accounts,
			Dashboard: svc.Dashboard,
			Providers: svc.Catalog,
			Intake:    svc.Intake,
			Bookings:  svc.Bookings,
			Posts:     svc.Content,
			Events:    svc.Content,
			Recorder:  deps.Metrics,
		}, base),
	)
	if err != nil {
		return nil, nil, err
	}

	mux.HandleFunc("GET /healthz", healthHandler(deps.Store, degraded))
	mux.Handle("GET /metrics", deps.Metrics.Handler())
	if deps.Media != nil {
		mux.Handle("GET /media/", deps.Media)
	}

	// The metrics middleware sits next to the mux so it can read the
	// matched route pattern off the request.
	handler := httpx.Chain(mux,
		httpx.RequestID(),
		httpx.RecoverPanic(logger),
		httpx.Tracing(),
		httpx.AccessLog(logger),
		httpx.Timeout(timeouts.Request),
		authn.Middleware(svc.Accounts, logger),
		deps.Metrics.Middleware(),
	)
	return handler, degraded, nil
}

type healthResponse struct {
	Status   string   `json:"status"`
	Degraded []string `json:"degraded,omitempty"`
}

func healthHandler(store Pinger, degraded []string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if store == nil {
			_ = httpx.WriteJSON(w, http.StatusServiceUnavailable, healthResponse{Status: "unavailable"})
			return
		}
		ctx, cancel := context.WithTimeout(r.Context(), timeouts.Dashboard)
		defer cancel()
		if err := store.Ping(ctx); err != nil {
			_ = httpx.WriteJSON(w, http.StatusServiceUnavailable, healthResponse{Status: "unavailable"})
			return
		}
		status := "ok"
		if len(degraded) > 0 {
			status = "degraded"
		}
		_ = httpx.WriteJSON(w, http.StatusOK, healthResponse{Status: status, Degraded: degraded})
	}
}
