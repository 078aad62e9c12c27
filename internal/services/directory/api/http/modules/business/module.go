// Package business serves the business portal routes.
package business

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/bonitaforward/bonita-forward/internal/platform/httpx"
	"github.com/bonitaforward/bonita-forward/internal/services/directory/access"
	"github.com/bonitaforward/bonita-forward/internal/services/directory/api/http/authn"
	"github.com/bonitaforward/bonita-forward/internal/services/directory/api/http/module"
	"github.com/bonitaforward/bonita-forward/internal/services/directory/content"
	"github.com/bonitaforward/bonita-forward/internal/services/directory/dashboard"
	"github.com/bonitaforward/bonita-forward/internal/services/directory/intake"
	"github.com/bonitaforward/bonita-forward/internal/services/directory/notifications"
	"github.com/bonitaforward/bonita-forward/internal/services/directory/storage"
)

// Dashboard builds the portal overview.
type Dashboard interface {
	BusinessDashboard(ctx context.Context, actor access.Actor, locale string) (dashboard.Business, error)
}

// ChangeRequests submits and lists the owner's listing edits.
type ChangeRequests interface {
	SubmitChangeRequest(ctx context.Context, actor access.Actor, in intake.ChangeRequestInput) (storage.ChangeRequest, error)
	ListOwnChangeRequests(ctx context.Context, actor access.Actor) ([]storage.ChangeRequest, error)
}

// Bookings reads and advances bookings of owned listings.
type Bookings interface {
	ListProviderBookings(ctx context.Context, actor access.Actor, providerID string, pageSize int, pageToken string) (storage.Page[storage.Booking], error)
	UpdateBookingStatus(ctx context.Context, actor access.Actor, bookingID string, status storage.BookingStatus) (storage.Booking, error)
}

// Notifications lists and dismisses owner notifications.
type Notifications interface {
	ListNotifications(ctx context.Context, userID string, locale string) ([]notifications.Notification, error)
	DismissNotifications(ctx context.Context, userID string) (time.Time, error)
}

// Calendars manages external calendar connections.
type Calendars interface {
	ConnectCalendar(ctx context.Context, actor access.Actor, in content.IntegrationInput) (storage.Integration, error)
	ListIntegrations(ctx context.Context, actor access.Actor) ([]storage.Integration, error)
	DisconnectCalendar(ctx context.Context, actor access.Actor, integrationID string) error
}

// Images uploads and removes listing images.
type Images interface {
	UploadProviderImage(ctx context.Context, actor access.Actor, providerID string, data []byte) (storage.Provider, error)
	DeleteProviderImage(ctx context.Context, actor access.Actor, providerID string, url string) (storage.Provider, error)
}

// Deps are the services behind the business routes.
type Deps struct {
	Dashboard      Dashboard
	ChangeRequests ChangeRequests
	Bookings       Bookings
	Notifications  Notifications
	Calendars      Calendars
	Images         Images
}

// Module provides the business portal routes.
type Module struct {
	deps Deps
	base module.Base
}

// New returns a business module.
func New(deps Deps, base module.Base) Module {
	return Module{deps: deps, base: base}
}

// ID returns a stable module identifier.
func (Module) ID() string { return "business" }

// Healthy reports whether every backing service is configured.
func (m Module) Healthy() bool {
	d := m.deps
	return d.Dashboard != nil && d.ChangeRequests != nil && d.Bookings != nil &&
		d.Notifications != nil && d.Calendars != nil && d.Images != nil
}

// Register wires the business routes behind the signed-in guard. Role and
// ownership checks happen in the domain services.
func (m Module) Register(mux *http.ServeMux) error {
	if mux == nil {
		return errors.New("business module: mux is required")
	}
	if !m.Healthy() {
		return errors.New("business module: all portal services are required")
	}
	h := handlers{Base: m.base, deps: m.deps}
	signedIn := authn.RequireSignedIn(m.base.Logger)
	route := func(pattern string, fn http.HandlerFunc) {
		mux.Handle(pattern, httpx.Chain(fn, signedIn))
	}
	route("GET /api/business/dashboard", h.handleDashboard)
	route("GET /api/business/change-requests", h.handleListChangeRequests)
	route("POST /api/business/change-requests", h.handleSubmitChangeRequest)
	route("GET /api/business/providers/{providerID}/bookings", h.handleListBookings)
	route("POST /api/business/bookings/{bookingID}/status", h.handleUpdateBookingStatus)
	route("GET /api/business/notifications", h.handleListNotifications)
	route("POST /api/business/notifications/dismiss", h.handleDismissNotifications)
	route("GET /api/business/calendar", h.handleListCalendars)
	route("POST /api/business/calendar", h.handleConnectCalendar)
	route("DELETE /api/business/calendar/{integrationID}", h.handleDisconnectCalendar)
	route("POST /api/providers/{providerID}/images", h.handleUploadImage)
	route("DELETE /api/providers/{providerID}/images", h.handleDeleteImage)
	return nil
}
