// Package public serves the anonymous directory, funnel, forms and sign-in routes.
package public

import (
	"context"
	"errors"
	"net/http"

	"github.com/bonitaforward/bonita-forward/internal/platform/httpx"
	"github.com/bonitaforward/bonita-forward/internal/services/directory/access"
	"github.com/bonitaforward/bonita-forward/internal/services/directory/accounts"
	"github.com/bonitaforward/bonita-forward/internal/services/directory/api/http/module"
	"github.com/bonitaforward/bonita-forward/internal/services/directory/booking"
	"github.com/bonitaforward/bonita-forward/internal/services/directory/catalog"
	"github.com/bonitaforward/bonita-forward/internal/services/directory/content"
	"github.com/bonitaforward/bonita-forward/internal/services/directory/intake"
	"github.com/bonitaforward/bonita-forward/internal/services/directory/storage"
)

// Catalog serves listings and recommendations.
type Catalog interface {
	ListProviders(ctx context.Context, in catalog.ListInput) (storage.Page[storage.Provider], error)
	GetProvider(ctx context.Context, actor access.Actor, providerID string) (storage.Provider, error)
	Recommend(ctx context.Context, in catalog.RecommendInput) ([]catalog.Recommendation, error)
}

// Bookings accepts funnel submissions.
type Bookings interface {
	CreateBooking(ctx context.Context, in booking.CreateInput) (storage.Booking, error)
}

// Intake accepts applications and contact leads.
type Intake interface {
	SubmitApplication(ctx context.Context, in intake.ApplicationInput) (storage.Application, error)
	SubmitContactLead(ctx context.Context, in intake.ContactLeadInput) (storage.ContactLead, error)
}

// Accounts signs users up and in and handles unsubscribe links.
type Accounts interface {
	SignUp(ctx context.Context, in accounts.SignUpInput) (accounts.Session, error)
	SignIn(ctx context.Context, email, password string) (accounts.Session, error)
	Unsubscribe(ctx context.Context, email string) (string, error)
}

// Content serves the blog and calendar.
type Content interface {
	ListPosts(ctx context.Context, categoryKey string, pageSize int, pageToken string) (storage.Page[storage.BlogPost], error)
	GetPost(ctx context.Context, actor access.Actor, postID string) (storage.BlogPost, error)
	ListEvents(ctx context.Context, r content.EventRange) (storage.Page[storage.Event], error)
}

// Recorder counts domain events.
type Recorder interface {
	Event(name string)
}

// Deps are the services behind the public routes.
type Deps struct {
	Catalog  Catalog
	Bookings Bookings
	Intake   Intake
	Accounts Accounts
	Content  Content
	// FormLimit throttles anonymous form posts; nil disables throttling.
	FormLimit httpx.Middleware
	Recorder  Recorder
}

// Module provides the public routes.
type Module struct {
	deps Deps
	base module.Base
}

// New returns a public module.
func New(deps Deps, base module.Base) Module {
	return Module{deps: deps, base: base}
}

// ID returns a stable module identifier.
func (Module) ID() string { return "public" }

// Healthy reports whether every backing service is configured.
func (m Module) Healthy() bool {
	d := m.deps
	return d.Catalog != nil && d.Bookings != nil && d.Intake != nil && d.Accounts != nil && d.Content != nil
}

// Register wires the public routes. A module missing services answers 503 on every route.
func (m Module) Register(mux *http.ServeMux) error {
	if mux == nil {
		return errors.New("public module: mux is required")
	}
	h := newHandlers(m.deps, m.base)
	if !m.Healthy() {
		h = h.degraded()
	}
	registerRoutes(mux, h, m.deps.FormLimit)
	return nil
}
