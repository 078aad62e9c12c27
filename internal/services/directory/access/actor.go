// Package access describes the caller of a directory operation and its permissions.
package access

import (
	apperrors "github.com/bonitaforward/bonita-forward/internal/platform/errors"
	"github.com/bonitaforward/bonita-forward/internal/services/directory/storage"
)

// Actor is a resolved caller: identity, profile role and admin verification.
type Actor struct {
	UserID string
	Email  string
	Role   storage.Role
	Admin  bool
}

// Anonymous is the actor for unauthenticated requests.
var Anonymous = Actor{}

// SignedIn reports whether the actor has an identity.
func (a Actor) SignedIn() bool {
	return a.UserID != ""
}

// Business reports whether the actor may use the business portal.
func (a Actor) Business() bool {
	return a.Admin || a.Role == storage.RoleBusiness
}

// Manages reports whether the actor may manage provider.
func (a Actor) Manages(provider storage.Provider) bool {
	if a.Admin {
		return true
	}
	return a.UserID != "" && provider.OwnerUserID == a.UserID
}

// RequireSignedIn fails for anonymous actors.
func RequireSignedIn(a Actor) error {
	if !a.SignedIn() {
		return apperrors.New(apperrors.CodeUnauthenticated, "sign in required")
	}
	return nil
}

// RequireBusiness fails unless the actor is a business user or admin.
func RequireBusiness(a Actor) error {
	if err := RequireSignedIn(a); err != nil {
		return err
	}
	if !a.Business() {
		return apperrors.New(apperrors.CodeBusinessRequired, "business account required")
	}
	return nil
}

// RequireAdmin fails unless the actor passed admin verification.
func RequireAdmin(a Actor) error {
	if err := RequireSignedIn(a); err != nil {
		return err
	}
	if !a.Admin {
		return apperrors.New(apperrors.CodeAdminRequired, "admin required")
	}
	return nil
}

// RequireManager fails unless the actor owns provider or is an admin.
func RequireManager(a Actor, provider storage.Provider) error {
	if err := RequireSignedIn(a); err != nil {
		return err
	}
	if !a.Manages(provider) {
		return apperrors.WithMetadata(apperrors.CodeNotOwner, "actor does not manage provider", map[string]string{"ProviderID": provider.ID})
	}
	return nil
}
