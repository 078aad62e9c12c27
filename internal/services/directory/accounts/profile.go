package accounts

import (
	"context"
	"errors"
	"strings"

	"github.com/bonitaforward/bonita-forward/internal/platform/validate"
	"github.com/bonitaforward/bonita-forward/internal/services/directory/storage"
)

// Unsubscribe outcomes.
const (
	Unsubscribed        = "unsubscribed"
	UnsubscribeNotFound = "not_found"
)

// GetProfile returns the profile for userID.
func (s *Service) GetProfile(ctx context.Context, userID string) (storage.Profile, error) {
	if err := s.ready(); err != nil {
		return storage.Profile{}, err
	}
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return storage.Profile{}, ErrProfileNotFound
	}
	profile, err := s.store.GetProfile(ctx, userID)
	if errors.Is(err, storage.ErrNotFound) {
		return storage.Profile{}, ErrProfileNotFound
	}
	return profile, err
}

// ProfileInput is a partial profile update; nil fields are left unchanged.
type ProfileInput struct {
	Name         *string `json:"name" validate:"omitempty,max=200"`
	BusinessName *string `json:"business_name" validate:"omitempty,max=200"`
	EmailOptOut  *bool   `json:"email_opt_out"`
}

// UpdateProfile applies a partial update to the caller's profile.
func (s *Service) UpdateProfile(ctx context.Context, userID string, in ProfileInput) (storage.Profile, error) {
	if err := s.ready(); err != nil {
		return storage.Profile{}, err
	}
	if err := validate.Struct(in); err != nil {
		return storage.Profile{}, err
	}
	profile, err := s.GetProfile(ctx, userID)
	if err != nil {
		return storage.Profile{}, err
	}
	if in.Name != nil {
		profile.Name = strings.TrimSpace(*in.Name)
	}
	if in.BusinessName != nil {
		profile.BusinessName = strings.TrimSpace(*in.BusinessName)
	}
	if in.EmailOptOut != nil {
		profile.EmailOptOut = *in.EmailOptOut
	}
	profile.UpdatedAt = s.now()
	if err := s.store.UpdateProfile(ctx, profile); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return storage.Profile{}, ErrProfileNotFound
		}
		return storage.Profile{}, err
	}
	return profile, nil
}

// Unsubscribe opts an email out of mail. Unknown emails report not_found;
// storage failures are returned as errors.
func (s *Service) Unsubscribe(ctx context.Context, email string) (string, error) {
	if err := s.ready(); err != nil {
		return "", err
	}
	email = normalizeEmail(email)
	if err := validate.Var("email", email, "required,email"); err != nil {
		return "", err
	}
	err := s.store.SetEmailOptOut(ctx, email, s.now())
	switch {
	case err == nil:
		return Unsubscribed, nil
	case errors.Is(err, storage.ErrNotFound):
		return UnsubscribeNotFound, nil
	default:
		return "", err
	}
}
