// Package booking records funnel submissions and lets providers work them.
package booking

import (
	"context"
	"errors"
	"strings"
	"time"

	apperrors "github.com/bonitaforward/bonita-forward/internal/platform/errors"
	"github.com/bonitaforward/bonita-forward/internal/platform/id"
	"github.com/bonitaforward/bonita-forward/internal/platform/pagination"
	"github.com/bonitaforward/bonita-forward/internal/platform/validate"
	"github.com/bonitaforward/bonita-forward/internal/services/directory/access"
	"github.com/bonitaforward/bonita-forward/internal/services/directory/category"
	"github.com/bonitaforward/bonita-forward/internal/services/directory/storage"
)

var (
	// ErrBookingNotFound is returned when a booking is missing.
	ErrBookingNotFound = apperrors.New(apperrors.CodeBookingNotFound, "booking not found")
	// ErrBookingDisabled is returned when a provider does not accept online bookings.
	ErrBookingDisabled = apperrors.New(apperrors.CodeBookingDisabled, "provider does not accept bookings")
	// ErrStatusChanged is returned when another update moved the booking first.
	ErrStatusChanged = apperrors.New(apperrors.CodeBookingStatusChanged, "booking status changed")

	errProviderNotFound = apperrors.New(apperrors.CodeProviderNotFound, "provider not found")
	errStoreUnavailable = apperrors.New(apperrors.CodeUnavailable, "booking store is not configured")
)

// Store is the persistence needed by bookings.
type Store interface {
	storage.BookingStore
	GetProvider(ctx context.Context, id string) (storage.Provider, error)
}

// Service manages bookings.
type Service struct {
	store Store
	clock func() time.Time
	newID func() (string, error)
}

// NewService creates a booking service.
func NewService(store Store) *Service {
	return &Service{store: store, clock: time.Now, newID: id.NewID}
}

// CreateInput is a funnel submission.
type CreateInput struct {
	ProviderID    string            `json:"provider_id"`
	Category      string            `json:"category"`
	CustomerName  string            `json:"customer_name" validate:"required,max=200"`
	CustomerEmail string            `json:"customer_email" validate:"required,email"`
	CustomerPhone string            `json:"customer_phone" validate:"max=40"`
	Answers       map[string]string `json:"answers" validate:"max=50"`
	BookingDate   *time.Time        `json:"booking_date"`
	Notes         string            `json:"notes" validate:"max=4000"`
}

// CreateBooking stores a pending booking. A named provider must be published
// and accept bookings; its category becomes the booking category.
func (s *Service) CreateBooking(ctx context.Context, in CreateInput) (storage.Booking, error) {
	if err := s.ready(); err != nil {
		return storage.Booking{}, err
	}
	in.CustomerName = strings.TrimSpace(in.CustomerName)
	in.CustomerEmail = strings.ToLower(strings.TrimSpace(in.CustomerEmail))
	if err := validate.Struct(in); err != nil {
		return storage.Booking{}, err
	}

	booking := storage.Booking{
		CustomerName:  in.CustomerName,
		CustomerEmail: in.CustomerEmail,
		CustomerPhone: strings.TrimSpace(in.CustomerPhone),
		Answers:       in.Answers,
		Notes:         strings.TrimSpace(in.Notes),
		Status:        storage.BookingPending,
	}
	if providerID := strings.TrimSpace(in.ProviderID); providerID != "" {
		provider, err := s.store.GetProvider(ctx, providerID)
		if errors.Is(err, storage.ErrNotFound) {
			return storage.Booking{}, errProviderNotFound
		}
		if err != nil {
			return storage.Booking{}, err
		}
		if !provider.Published {
			return storage.Booking{}, errProviderNotFound
		}
		if !provider.BookingEnabled {
			return storage.Booking{}, ErrBookingDisabled
		}
		booking.ProviderID = provider.ID
		booking.CategoryKey = provider.CategoryKey
	} else {
		key, err := category.Require(in.Category)
		if err != nil {
			return storage.Booking{}, err
		}
		booking.CategoryKey = key
	}
	if in.BookingDate != nil {
		date := in.BookingDate.UTC()
		booking.BookingDate = &date
	}

	bookingID, err := s.newID()
	if err != nil {
		return storage.Booking{}, apperrors.Wrap(apperrors.CodeUnknown, "generate booking id", err)
	}
	now := s.now()
	booking.ID = bookingID
	booking.CreatedAt = now
	booking.UpdatedAt = now
	if err := s.store.CreateBooking(ctx, booking); err != nil {
		return storage.Booking{}, err
	}
	return booking, nil
}

// ListProviderBookings returns bookings for a provider the actor manages.
func (s *Service) ListProviderBookings(ctx context.Context, actor access.Actor, providerID string, pageSize int, pageToken string) (storage.Page[storage.Booking], error) {
	if err := s.ready(); err != nil {
		return storage.Page[storage.Booking]{}, err
	}
	provider, err := s.provider(ctx, providerID)
	if err != nil {
		return storage.Page[storage.Booking]{}, err
	}
	if err := access.RequireManager(actor, provider); err != nil {
		return storage.Page[storage.Booking]{}, err
	}
	page, err := pagination.Parse(pageSize, pageToken, pagination.Standard)
	if err != nil {
		return storage.Page[storage.Booking]{}, err
	}
	return s.store.ListBookings(ctx, storage.BookingQuery{ProviderIDs: []string{provider.ID}, Page: page})
}

// BookingsForProviders returns every booking of the given providers, newest first.
func (s *Service) BookingsForProviders(ctx context.Context, providerIDs []string) ([]storage.Booking, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	if len(providerIDs) == 0 {
		return nil, nil
	}
	page, err := s.store.ListBookings(ctx, storage.BookingQuery{ProviderIDs: providerIDs})
	if err != nil {
		return nil, err
	}
	return page.Items, nil
}

// UpdateBookingStatus moves a booking along its lifecycle.
func (s *Service) UpdateBookingStatus(ctx context.Context, actor access.Actor, bookingID string, status storage.BookingStatus) (storage.Booking, error) {
	if err := s.ready(); err != nil {
		return storage.Booking{}, err
	}
	if err := access.RequireSignedIn(actor); err != nil {
		return storage.Booking{}, err
	}
	booking, err := s.store.GetBooking(ctx, strings.TrimSpace(bookingID))
	if errors.Is(err, storage.ErrNotFound) {
		return storage.Booking{}, ErrBookingNotFound
	}
	if err != nil {
		return storage.Booking{}, err
	}
	if !actor.Admin {
		if booking.ProviderID == "" {
			return storage.Booking{}, access.RequireAdmin(actor)
		}
		provider, err := s.provider(ctx, booking.ProviderID)
		if err != nil {
			return storage.Booking{}, err
		}
		if err := access.RequireManager(actor, provider); err != nil {
			return storage.Booking{}, err
		}
	}
	if err := checkTransition(booking.Status, status); err != nil {
		return storage.Booking{}, err
	}
	now := s.now()
	if err := s.store.UpdateBookingStatus(ctx, booking.ID, booking.Status, status, now); err != nil {
		switch {
		case errors.Is(err, storage.ErrNotFound):
			return storage.Booking{}, ErrBookingNotFound
		case errors.Is(err, storage.ErrStatusChanged):
			return storage.Booking{}, ErrStatusChanged
		}
		return storage.Booking{}, err
	}
	booking.Status = status
	booking.UpdatedAt = now
	return booking, nil
}

// AdminListBookings returns all bookings, optionally by status.
func (s *Service) AdminListBookings(ctx context.Context, status storage.BookingStatus, pageSize int, pageToken string) (storage.Page[storage.Booking], error) {
	if err := s.ready(); err != nil {
		return storage.Page[storage.Booking]{}, err
	}
	page, err := pagination.Parse(pageSize, pageToken, pagination.Standard)
	if err != nil {
		return storage.Page[storage.Booking]{}, err
	}
	return s.store.ListBookings(ctx, storage.BookingQuery{Status: status, Page: page})
}

// CountBookings returns the total number of bookings.
func (s *Service) CountBookings(ctx context.Context) (int, error) {
	if err := s.ready(); err != nil {
		return 0, err
	}
	return s.store.CountBookings(ctx)
}

func (s *Service) provider(ctx context.Context, providerID string) (storage.Provider, error) {
	provider, err := s.store.GetProvider(ctx, strings.TrimSpace(providerID))
	if errors.Is(err, storage.ErrNotFound) {
		return storage.Provider{}, errProviderNotFound
	}
	return provider, err
}

func (s *Service) ready() error {
	if s == nil || s.store == nil {
		return errStoreUnavailable
	}
	return nil
}

func (s *Service) now() time.Time {
	if s.clock == nil {
		return time.Now().UTC()
	}
	return s.clock().UTC()
}
