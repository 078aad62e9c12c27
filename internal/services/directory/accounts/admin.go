package accounts

import (
	"context"
	"errors"
	"strings"

	apperrors "github.com/bonitaforward/bonita-forward/internal/platform/errors"
	"github.com/bonitaforward/bonita-forward/internal/platform/pagination"
	"github.com/bonitaforward/bonita-forward/internal/platform/requestctx"
	"github.com/bonitaforward/bonita-forward/internal/services/directory/access"
	"github.com/bonitaforward/bonita-forward/internal/services/directory/storage"
)

// Admin verification methods.
const (
	MethodProfile   = "profile"
	MethodAllowlist = "allowlist"
)

// AdminVerification reports whether a principal is an admin and how that was decided.
type AdminVerification struct {
	Admin  bool
	Method string
}

// VerifyAdmin grants admin when the profile role is admin, falling back to the
// configured email allowlist when the profile is not an admin or cannot be read.
func (s *Service) VerifyAdmin(ctx context.Context, principal requestctx.Principal) (AdminVerification, error) {
	if err := s.ready(); err != nil {
		return AdminVerification{}, err
	}
	verification, _, err := s.verify(ctx, principal)
	return verification, err
}

// ResolveActor loads the caller's role and admin status. A principal whose
// profile is gone resolves only when the admin allowlist names it.
func (s *Service) ResolveActor(ctx context.Context, principal requestctx.Principal) (access.Actor, error) {
	if err := s.ready(); err != nil {
		return access.Actor{}, err
	}
	if strings.TrimSpace(principal.UserID) == "" {
		return access.Anonymous, nil
	}
	verification, profile, err := s.verify(ctx, principal)
	if err != nil {
		return access.Actor{}, err
	}
	if profile.ID == "" && !verification.Admin {
		return access.Actor{}, ErrAccountGone
	}
	role := profile.Role
	if role == "" {
		role = storage.RoleCommunity
	}
	return access.Actor{
		UserID: principal.UserID,
		Email:  normalizeEmail(principal.Email),
		Role:   role,
		Admin:  verification.Admin,
	}, nil
}

func (s *Service) verify(ctx context.Context, principal requestctx.Principal) (AdminVerification, storage.Profile, error) {
	if strings.TrimSpace(principal.UserID) == "" {
		return AdminVerification{}, storage.Profile{}, apperrors.New(apperrors.CodeUnauthenticated, "principal is required")
	}
	profile, lookupErr := s.store.GetProfile(ctx, principal.UserID)
	if lookupErr == nil && profile.Role == storage.RoleAdmin {
		return AdminVerification{Admin: true, Method: MethodProfile}, profile, nil
	}
	email := normalizeEmail(principal.Email)
	if lookupErr == nil && profile.Email != "" {
		email = normalizeEmail(profile.Email)
	}
	if _, ok := s.adminEmails[email]; ok && email != "" {
		return AdminVerification{Admin: true, Method: MethodAllowlist}, profile, nil
	}
	if lookupErr != nil && !errors.Is(lookupErr, storage.ErrNotFound) {
		return AdminVerification{}, storage.Profile{}, lookupErr
	}
	return AdminVerification{Method: MethodProfile}, profile, nil
}

// ListUsers returns profiles, optionally filtered by role.
func (s *Service) ListUsers(ctx context.Context, role storage.Role, pageSize int, pageToken string) (storage.Page[storage.Profile], error) {
	if err := s.ready(); err != nil {
		return storage.Page[storage.Profile]{}, err
	}
	page, err := pagination.Parse(pageSize, pageToken, pagination.Standard)
	if err != nil {
		return storage.Page[storage.Profile]{}, err
	}
	return s.store.ListProfiles(ctx, role, page)
}

// CountUsers returns the number of profiles.
func (s *Service) CountUsers(ctx context.Context) (int, error) {
	if err := s.ready(); err != nil {
		return 0, err
	}
	return s.store.CountProfiles(ctx)
}

// SetRole changes a user's role.
func (s *Service) SetRole(ctx context.Context, userID string, role storage.Role) (storage.Profile, error) {
	if err := s.ready(); err != nil {
		return storage.Profile{}, err
	}
	if _, err := ParseRole(string(role)); err != nil {
		return storage.Profile{}, err
	}
	profile, err := s.GetProfile(ctx, userID)
	if err != nil {
		return storage.Profile{}, err
	}
	profile.Role = role
	profile.UpdatedAt = s.now()
	if err := s.store.UpdateProfile(ctx, profile); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return storage.Profile{}, ErrProfileNotFound
		}
		return storage.Profile{}, err
	}
	return profile, nil
}

// SetRoleByEmail changes the role of the account registered with email.
func (s *Service) SetRoleByEmail(ctx context.Context, email string, role storage.Role) (storage.Profile, error) {
	if err := s.ready(); err != nil {
		return storage.Profile{}, err
	}
	user, err := s.store.GetUserByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, storage.ErrNotFound) {
		return storage.Profile{}, ErrProfileNotFound
	}
	if err != nil {
		return storage.Profile{}, err
	}
	return s.SetRole(ctx, user.ID, role)
}

// DeleteUser removes an account and detaches everything it owned. Admins
// cannot delete themselves.
func (s *Service) DeleteUser(ctx context.Context, actor access.Actor, userID string) error {
	if err := s.ready(); err != nil {
		return err
	}
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return ErrProfileNotFound
	}
	if actor.UserID != "" && actor.UserID == userID {
		return apperrors.New(apperrors.CodeSelfDelete, "cannot delete own account")
	}
	err := s.store.DeleteUser(ctx, userID)
	if errors.Is(err, storage.ErrNotFound) {
		return ErrProfileNotFound
	}
	return err
}
