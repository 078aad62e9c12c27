// Package admin serves the back office routes.
package admin

import (
	"context"
	"errors"
	"net/http"

	"github.com/bonitaforward/bonita-forward/internal/platform/httpx"
	"github.com/bonitaforward/bonita-forward/internal/platform/requestctx"
	"github.com/bonitaforward/bonita-forward/internal/services/directory/access"
	"github.com/bonitaforward/bonita-forward/internal/services/directory/accounts"
	"github.com/bonitaforward/bonita-forward/internal/services/directory/api/http/authn"
	"github.com/bonitaforward/bonita-forward/internal/services/directory/api/http/module"
	"github.com/bonitaforward/bonita-forward/internal/services/directory/catalog"
	"github.com/bonitaforward/bonita-forward/internal/services/directory/content"
	"github.com/bonitaforward/bonita-forward/internal/services/directory/dashboard"
	"github.com/bonitaforward/bonita-forward/internal/services/directory/intake"
	"github.com/bonitaforward/bonita-forward/internal/services/directory/storage"
)

// Users verifies admins and manages accounts.
type Users interface {
	VerifyAdmin(ctx context.Context, principal requestctx.Principal) (accounts.AdminVerification, error)
	ListUsers(ctx context.Context, role storage.Role, pageSize int, pageToken string) (storage.Page[storage.Profile], error)
	SetRole(ctx context.Context, userID string, role storage.Role) (storage.Profile, error)
	DeleteUser(ctx context.Context, actor access.Actor, userID string) error
}

// Dashboard builds back office overviews.
type Dashboard interface {
	AdminDashboard(ctx context.Context) (dashboard.Admin, error)
	GetBusinessDetails(ctx context.Context, userID string) (dashboard.BusinessDetails, error)
}

// Providers manages listings.
type Providers interface {
	AdminListProviders(ctx context.Context, in catalog.AdminListInput) (storage.Page[storage.Provider], error)
	GetProvider(ctx context.Context, actor access.Actor, providerID string) (storage.Provider, error)
	CreateProvider(ctx context.Context, in catalog.ProviderInput) (storage.Provider, error)
	UpdateProvider(ctx context.Context, providerID string, in catalog.ProviderInput) (storage.Provider, error)
	DeleteProvider(ctx context.Context, providerID string) error
	SetFeatured(ctx context.Context, providerID string, featured bool) (storage.Provider, error)
	SetPublished(ctx context.Context, providerID string, published bool) (storage.Provider, error)
}

// Intake reviews applications and change requests and lists leads.
type Intake interface {
	ListApplications(ctx context.Context, status storage.DecisionStatus, pageSize int, pageToken string) (storage.Page[storage.Application], error)
	ApproveApplication(ctx context.Context, applicationID string, confirmDuplicate bool) (intake.Approval, error)
	RejectApplication(ctx context.Context, applicationID string, note string) (storage.Application, error)
	ListChangeRequests(ctx context.Context, status storage.DecisionStatus, pageSize int, pageToken string) (storage.Page[storage.ChangeRequest], error)
	ApproveChangeRequest(ctx context.Context, requestID string) (storage.ChangeRequest, error)
	RejectChangeRequest(ctx context.Context, requestID string, reason string) error
	ListContactLeads(ctx context.Context, pageSize int, pageToken string) (storage.Page[storage.ContactLead], error)
}

// Bookings lists every booking.
type Bookings interface {
	AdminListBookings(ctx context.Context, status storage.BookingStatus, pageSize int, pageToken string) (storage.Page[storage.Booking], error)
}

// Posts manages the blog.
type Posts interface {
	AdminListPosts(ctx context.Context, pageSize int, pageToken string) (storage.Page[storage.BlogPost], error)
	CreatePost(ctx context.Context, in content.PostInput) (storage.BlogPost, error)
	UpdatePost(ctx context.Context, postID string, in content.PostInput) (storage.BlogPost, error)
	DeletePost(ctx context.Context, postID string) error
}

// Events moderates the calendar.
type Events interface {
	ListPendingEvents(ctx context.Context, pageSize int, pageToken string) (storage.Page[storage.Event], error)
	CreateEvent(ctx context.Context, actor access.Actor, in content.EventInput) (storage.Event, error)
	ApproveEvent(ctx context.Context, eventID string) (storage.Event, error)
	DeleteEvent(ctx context.Context, eventID string) error
}

// Recorder counts domain events.
type Recorder interface {
	Event(name string)
}

// Deps are the services behind the admin routes.
type Deps struct {
	Users     Users
	Dashboard Dashboard
	Providers Providers
	Intake    Intake
	Bookings  Bookings
	Posts     Posts
	Events    Events
	Recorder  Recorder
}

// Module provides the admin routes.
type Module struct {
	deps Deps
	base module.Base
}

// New returns an admin module.
func New(deps Deps, base module.Base) Module {
	return Module{deps: deps, base: base}
}

// ID returns a stable module identifier.
func (Module) ID() string { return "admin" }

// Healthy reports whether every backing service is configured.
func (m Module) Healthy() bool {
	d := m.deps
	return d.Users != nil && d.Dashboard != nil && d.Providers != nil && d.Intake != nil &&
		d.Bookings != nil && d.Posts != nil && d.Events != nil
}

// Register wires the admin routes. Verification needs only a signed-in
// caller; every other route requires a verified admin.
func (m Module) Register(mux *http.ServeMux) error {
	if mux == nil {
		return errors.New("admin module: mux is required")
	}
	if !m.Healthy() {
		return errors.New("admin module: all back office services are required")
	}
	h := handlers{Base: m.base, deps: m.deps}
	mux.Handle("GET /api/admin/verify", httpx.Chain(http.HandlerFunc(h.handleVerify), authn.RequireSignedIn(m.base.Logger)))
	registerRoutes(mux, h, authn.RequireAdmin(m.base.Logger))
	return nil
}
