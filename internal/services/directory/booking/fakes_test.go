package booking

import (
	"context"
	"errors"
	"slices"
	"time"

	"github.com/bonitaforward/bonita-forward/internal/services/directory/storage"
)

type fakeStore struct {
	providers map[string]storage.Provider
	bookings  map[string]storage.Booking
	createErr error
	lastQuery storage.BookingQuery

	beforeUpdate func(*fakeStore)
}

func newFakeStore(providers ...storage.Provider) *fakeStore {
	store := &fakeStore{
		providers: map[string]storage.Provider{},
		bookings:  map[string]storage.Booking{},
	}
	for _, provider := range providers {
		store.providers[provider.ID] = provider
	}
	return store
}

func (f *fakeStore) GetProvider(_ context.Context, id string) (storage.Provider, error) {
	provider, ok := f.providers[id]
	if !ok {
		return storage.Provider{}, storage.ErrNotFound
	}
	return provider, nil
}

func (f *fakeStore) CreateBooking(_ context.Context, booking storage.Booking) error {
	if f.createErr != nil {
		return f.createErr
	}
	if _, ok := f.bookings[booking.ID]; ok {
		return storage.ErrAlreadyExists
	}
	f.bookings[booking.ID] = booking
	return nil
}

func (f *fakeStore) GetBooking(_ context.Context, id string) (storage.Booking, error) {
	booking, ok := f.bookings[id]
	if !ok {
		return storage.Booking{}, storage.ErrNotFound
	}
	return booking, nil
}

func (f *fakeStore) UpdateBookingStatus(_ context.Context, id string, from, to storage.BookingStatus, updatedAt time.Time) error {
	if f.beforeUpdate != nil {
		f.beforeUpdate(f)
	}
	booking, ok := f.bookings[id]
	if !ok {
		return storage.ErrNotFound
	}
	if booking.Status != from {
		return storage.ErrStatusChanged
	}
	booking.Status = to
	booking.UpdatedAt = updatedAt
	f.bookings[id] = booking
	return nil
}

func (f *fakeStore) ListBookings(_ context.Context, query storage.BookingQuery) (storage.Page[storage.Booking], error) {
	f.lastQuery = query
	var items []storage.Booking
	for _, booking := range f.bookings {
		if query.ProviderIDs != nil && !slices.Contains(query.ProviderIDs, booking.ProviderID) {
			continue
		}
		if query.Status != "" && booking.Status != query.Status {
			continue
		}
		items = append(items, booking)
	}
	slices.SortFunc(items, func(a, b storage.Booking) int { return b.CreatedAt.Compare(a.CreatedAt) })
	return storage.Page[storage.Booking]{Items: items}, nil
}

func (f *fakeStore) CountBookings(context.Context) (int, error) {
	return len(f.bookings), nil
}

var errBoom = errors.New("boom")
