package accounts

import (
	"context"
	"time"

	"github.com/bonitaforward/bonita-forward/internal/platform/pagination"
	"github.com/bonitaforward/bonita-forward/internal/services/directory/storage"
)

type fakeAccountStore struct {
	users       map[string]storage.User
	profiles    map[string]storage.Profile
	profileErr  error
	optOutErr   error
	deleted     []string
	lastOptedAt time.Time
}

func newFakeAccountStore() *fakeAccountStore {
	return &fakeAccountStore{
		users:    map[string]storage.User{},
		profiles: map[string]storage.Profile{},
	}
}

func (f *fakeAccountStore) CreateAccount(_ context.Context, user storage.User, profile storage.Profile) error {
	for _, existing := range f.users {
		if existing.Email == user.Email {
			return storage.ErrAlreadyExists
		}
	}
	f.users[user.ID] = user
	f.profiles[profile.ID] = profile
	return nil
}

func (f *fakeAccountStore) GetUserByEmail(_ context.Context, email string) (storage.User, error) {
	for _, user := range f.users {
		if user.Email == email {
			return user, nil
		}
	}
	return storage.User{}, storage.ErrNotFound
}

func (f *fakeAccountStore) GetProfile(_ context.Context, id string) (storage.Profile, error) {
	if f.profileErr != nil {
		return storage.Profile{}, f.profileErr
	}
	profile, ok := f.profiles[id]
	if !ok {
		return storage.Profile{}, storage.ErrNotFound
	}
	return profile, nil
}

func (f *fakeAccountStore) UpdateProfile(_ context.Context, profile storage.Profile) error {
	if _, ok := f.profiles[profile.ID]; !ok {
		return storage.ErrNotFound
	}
	f.profiles[profile.ID] = profile
	return nil
}

func (f *fakeAccountStore) SetEmailOptOut(_ context.Context, email string, updatedAt time.Time) error {
	if f.optOutErr != nil {
		return f.optOutErr
	}
	found := false
	for id, profile := range f.profiles {
		if profile.Email == email {
			profile.EmailOptOut = true
			profile.UpdatedAt = updatedAt
			f.profiles[id] = profile
			found = true
		}
	}
	if !found {
		return storage.ErrNotFound
	}
	f.lastOptedAt = updatedAt
	return nil
}

func (f *fakeAccountStore) ListProfiles(_ context.Context, role storage.Role, _ pagination.Page) (storage.Page[storage.Profile], error) {
	var items []storage.Profile
	for _, profile := range f.profiles {
		if role == "" || profile.Role == role {
			items = append(items, profile)
		}
	}
	return storage.Page[storage.Profile]{Items: items}, nil
}

func (f *fakeAccountStore) DeleteUser(_ context.Context, id string) error {
	if _, ok := f.users[id]; !ok {
		return storage.ErrNotFound
	}
	delete(f.users, id)
	delete(f.profiles, id)
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeAccountStore) CountProfiles(context.Context) (int, error) {
	return len(f.profiles), nil
}
