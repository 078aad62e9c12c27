// Package notifications derives business notifications from change request
// decisions and incoming bookings.
package notifications

import (
	"bytes"
	"context"
	"errors"
	"slices"
	"strings"
	"text/template"
	"time"

	apperrors "github.com/bonitaforward/bonita-forward/internal/platform/errors"
	"github.com/bonitaforward/bonita-forward/internal/platform/i18n/catalog"
	"github.com/bonitaforward/bonita-forward/internal/services/directory/storage"
)

// Notification kinds double as catalog message keys.
const (
	KindChangeRequestApproved = "notifications.change_request.approved"
	KindChangeRequestRejected = "notifications.change_request.rejected"
	KindBookingCreated        = "notifications.booking.created"
)

var (
	errProfileNotFound  = apperrors.New(apperrors.CodeProfileNotFound, "profile not found")
	errStoreUnavailable = apperrors.New(apperrors.CodeUnavailable, "notification store is not configured")
)

// Store is the persistence notifications are derived from.
type Store interface {
	GetProfile(ctx context.Context, id string) (storage.Profile, error)
	UpdateProfile(ctx context.Context, profile storage.Profile) error
	ListProviders(ctx context.Context, query storage.ProviderQuery) (storage.Page[storage.Provider], error)
	ListChangeRequests(ctx context.Context, query storage.ChangeRequestQuery) (storage.Page[storage.ChangeRequest], error)
	ListBookings(ctx context.Context, query storage.BookingQuery) (storage.Page[storage.Booking], error)
}

// Notification is one item in a business owner's feed.
type Notification struct {
	ID         string
	Kind       string
	Message    string
	ProviderID string
	At         time.Time
}

// Service builds notification feeds.
type Service struct {
	store    Store
	messages *catalog.Bundle
	clock    func() time.Time
}

// NewService creates a notification service rendering with the default catalog.
func NewService(store Store) *Service {
	return &Service{store: store, messages: catalog.Default(), clock: time.Now}
}

// ListNotifications returns the owner's notifications newer than their last
// dismissal, newest first, rendered in locale.
func (s *Service) ListNotifications(ctx context.Context, userID string, locale string) ([]Notification, error) {
	if s == nil || s.store == nil {
		return nil, errStoreUnavailable
	}
	profile, err := s.profile(ctx, userID)
	if err != nil {
		return nil, err
	}
	owned, err := s.store.ListProviders(ctx, storage.ProviderQuery{OwnerUserID: profile.ID})
	if err != nil {
		return nil, err
	}
	names := make(map[string]string, len(owned.Items))
	providerIDs := make([]string, 0, len(owned.Items))
	for _, provider := range owned.Items {
		names[provider.ID] = provider.Name
		providerIDs = append(providerIDs, provider.ID)
	}
	requests, err := s.store.ListChangeRequests(ctx, storage.ChangeRequestQuery{OwnerUserID: profile.ID})
	if err != nil {
		return nil, err
	}
	var bookings []storage.Booking
	if len(providerIDs) > 0 {
		page, err := s.store.ListBookings(ctx, storage.BookingQuery{ProviderIDs: providerIDs})
		if err != nil {
			return nil, err
		}
		bookings = page.Items
	}

	var items []Notification
	for _, request := range requests.Items {
		if request.Status == storage.StatusPending || request.DecidedAt == nil {
			continue
		}
		kind := KindChangeRequestApproved
		if request.Status == storage.StatusRejected {
			kind = KindChangeRequestRejected
		}
		items = append(items, Notification{
			ID:         "change_request:" + request.ID,
			Kind:       kind,
			ProviderID: request.ProviderID,
			At:         *request.DecidedAt,
			Message: s.render(locale, kind, map[string]string{
				"Type":     s.typeLabel(locale, request.Type),
				"Provider": providerName(names, request.ProviderID),
				"Reason":   request.DecisionReason,
			}),
		})
	}
	for _, booking := range bookings {
		items = append(items, Notification{
			ID:         "booking:" + booking.ID,
			Kind:       KindBookingCreated,
			ProviderID: booking.ProviderID,
			At:         booking.CreatedAt,
			Message: s.render(locale, KindBookingCreated, map[string]string{
				"Customer": booking.CustomerName,
				"Provider": providerName(names, booking.ProviderID),
			}),
		})
	}
	return Visible(items, profile.NotificationsDismissedAt), nil
}

// Visible keeps items strictly newer than dismissedAt, newest first.
func Visible(items []Notification, dismissedAt *time.Time) []Notification {
	out := make([]Notification, 0, len(items))
	for _, item := range items {
		if dismissedAt != nil && !item.At.After(*dismissedAt) {
			continue
		}
		out = append(out, item)
	}
	slices.SortStableFunc(out, func(a, b Notification) int {
		if c := b.At.Compare(a.At); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return out
}

// DismissNotifications hides every notification up to now.
func (s *Service) DismissNotifications(ctx context.Context, userID string) (time.Time, error) {
	if s == nil || s.store == nil {
		return time.Time{}, errStoreUnavailable
	}
	profile, err := s.profile(ctx, userID)
	if err != nil {
		return time.Time{}, err
	}
	now := time.Now().UTC()
	if s.clock != nil {
		now = s.clock().UTC()
	}
	profile.NotificationsDismissedAt = &now
	profile.UpdatedAt = now
	if err := s.store.UpdateProfile(ctx, profile); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return time.Time{}, errProfileNotFound
		}
		return time.Time{}, err
	}
	return now, nil
}

func (s *Service) profile(ctx context.Context, userID string) (storage.Profile, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return storage.Profile{}, apperrors.New(apperrors.CodeUnauthenticated, "sign in required")
	}
	profile, err := s.store.GetProfile(ctx, userID)
	if errors.Is(err, storage.ErrNotFound) {
		return storage.Profile{}, errProfileNotFound
	}
	return profile, err
}

func (s *Service) render(locale, key string, data map[string]string) string {
	text, ok := s.messages.Message(locale, key)
	if !ok {
		return key
	}
	tmpl, err := template.New(key).Option("missingkey=zero").Parse(text)
	if err != nil {
		return text
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return text
	}
	return buf.String()
}

func (s *Service) typeLabel(locale string, changeType storage.ChangeType) string {
	if label, ok := s.messages.Message(locale, "notifications.type."+string(changeType)); ok {
		return label
	}
	return string(changeType)
}

func providerName(names map[string]string, providerID string) string {
	if name, ok := names[providerID]; ok && name != "" {
		return name
	}
	return providerID
}
