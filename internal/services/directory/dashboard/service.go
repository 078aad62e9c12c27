// Package dashboard assembles business and admin overviews from the domain services.
package dashboard

import (
	"context"

	apperrors "github.com/bonitaforward/bonita-forward/internal/platform/errors"
	"github.com/bonitaforward/bonita-forward/internal/platform/timeouts"
	"github.com/bonitaforward/bonita-forward/internal/services/directory/access"
	"github.com/bonitaforward/bonita-forward/internal/services/directory/notifications"
	"github.com/bonitaforward/bonita-forward/internal/services/directory/storage"
	"golang.org/x/sync/errgroup"
)

// Catalog lists owned listings.
type Catalog interface {
	OwnedProviders(ctx context.Context, userID string) ([]storage.Provider, error)
}

// Bookings reads funnel submissions.
type Bookings interface {
	BookingsForProviders(ctx context.Context, providerIDs []string) ([]storage.Booking, error)
	CountBookings(ctx context.Context) (int, error)
}

// Intake reads applications, change requests and leads.
type Intake interface {
	ListOwnChangeRequests(ctx context.Context, actor access.Actor) ([]storage.ChangeRequest, error)
	ApplicationsByEmail(ctx context.Context, email string) ([]storage.Application, error)
	CountPendingApplications(ctx context.Context) (int, error)
	CountPendingChangeRequests(ctx context.Context) (int, error)
	CountContactLeads(ctx context.Context) (int, error)
}

// Notifications renders an owner's notifications.
type Notifications interface {
	ListNotifications(ctx context.Context, userID string, locale string) ([]notifications.Notification, error)
}

// Accounts reads profiles.
type Accounts interface {
	GetProfile(ctx context.Context, userID string) (storage.Profile, error)
	CountUsers(ctx context.Context) (int, error)
}

// Events counts calendar submissions awaiting review.
type Events interface {
	CountPendingEvents(ctx context.Context) (int, error)
}

// Deps are the services a dashboard reads from.
type Deps struct {
	Catalog       Catalog
	Bookings      Bookings
	Intake        Intake
	Notifications Notifications
	Accounts      Accounts
	Events        Events
}

// Service builds dashboards.
type Service struct {
	deps Deps
}

// NewService creates a dashboard service.
func NewService(deps Deps) *Service {
	return &Service{deps: deps}
}

// Business is the business portal overview.
type Business struct {
	Providers      []storage.Provider
	Bookings       []storage.Booking
	ChangeRequests []storage.ChangeRequest
	Notifications  []notifications.Notification
}

// BusinessDashboard loads the actor's listings and, in parallel, their
// bookings, change requests and notifications.
func (s *Service) BusinessDashboard(ctx context.Context, actor access.Actor, locale string) (Business, error) {
	if s == nil || s.deps.Catalog == nil || s.deps.Bookings == nil || s.deps.Intake == nil || s.deps.Notifications == nil {
		return Business{}, apperrors.New(apperrors.CodeUnavailable, "dashboard is not configured")
	}
	if err := access.RequireBusiness(actor); err != nil {
		return Business{}, err
	}
	providers, err := s.deps.Catalog.OwnedProviders(ctx, actor.UserID)
	if err != nil {
		return Business{}, err
	}
	providerIDs := make([]string, 0, len(providers))
	for _, provider := range providers {
		providerIDs = append(providerIDs, provider.ID)
	}

	out := Business{Providers: providers}
	ctx, cancel := context.WithTimeout(ctx, timeouts.Dashboard)
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		bookings, err := s.deps.Bookings.BookingsForProviders(gctx, providerIDs)
		out.Bookings = bookings
		return err
	})
	g.Go(func() error {
		requests, err := s.deps.Intake.ListOwnChangeRequests(gctx, actor)
		out.ChangeRequests = requests
		return err
	})
	g.Go(func() error {
		items, err := s.deps.Notifications.ListNotifications(gctx, actor.UserID, locale)
		out.Notifications = items
		return err
	})
	if err := g.Wait(); err != nil {
		return Business{}, err
	}
	return out, nil
}

// Admin holds the back office counters.
type Admin struct {
	PendingApplications   int `json:"pending_applications"`
	PendingChangeRequests int `json:"pending_change_requests"`
	ContactLeads          int `json:"contact_leads"`
	Bookings              int `json:"bookings"`
	Users                 int `json:"users"`
	PendingEvents         int `json:"pending_events"`
}

// AdminDashboard fetches every counter in parallel.
func (s *Service) AdminDashboard(ctx context.Context) (Admin, error) {
	if s == nil || s.deps.Intake == nil || s.deps.Bookings == nil || s.deps.Accounts == nil || s.deps.Events == nil {
		return Admin{}, apperrors.New(apperrors.CodeUnavailable, "dashboard is not configured")
	}
	var out Admin
	ctx, cancel := context.WithTimeout(ctx, timeouts.Dashboard)
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)
	count := func(dst *int, fn func(context.Context) (int, error)) {
		g.Go(func() error {
			n, err := fn(gctx)
			*dst = n
			return err
		})
	}
	count(&out.PendingApplications, s.deps.Intake.CountPendingApplications)
	count(&out.PendingChangeRequests, s.deps.Intake.CountPendingChangeRequests)
	count(&out.ContactLeads, s.deps.Intake.CountContactLeads)
	count(&out.Bookings, s.deps.Bookings.CountBookings)
	count(&out.Users, s.deps.Accounts.CountUsers)
	count(&out.PendingEvents, s.deps.Events.CountPendingEvents)
	if err := g.Wait(); err != nil {
		return Admin{}, err
	}
	return out, nil
}

// BusinessDetails is the admin view of one account.
type BusinessDetails struct {
	Profile      storage.Profile
	Providers    []storage.Provider
	Applications []storage.Application
}

// GetBusinessDetails loads a user's profile, then their listings and
// applications in parallel.
func (s *Service) GetBusinessDetails(ctx context.Context, userID string) (BusinessDetails, error) {
	if s == nil || s.deps.Accounts == nil || s.deps.Catalog == nil || s.deps.Intake == nil {
		return BusinessDetails{}, apperrors.New(apperrors.CodeUnavailable, "dashboard is not configured")
	}
	profile, err := s.deps.Accounts.GetProfile(ctx, userID)
	if err != nil {
		return BusinessDetails{}, err
	}
	out := BusinessDetails{Profile: profile}
	ctx, cancel := context.WithTimeout(ctx, timeouts.Dashboard)
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		providers, err := s.deps.Catalog.OwnedProviders(gctx, profile.ID)
		out.Providers = providers
		return err
	})
	g.Go(func() error {
		applications, err := s.deps.Intake.ApplicationsByEmail(gctx, profile.Email)
		out.Applications = applications
		return err
	})
	if err := g.Wait(); err != nil {
		return BusinessDetails{}, err
	}
	return out, nil
}
