package access

import (
	"testing"

	apperrors "github.com/bonitaforward/bonita-forward/internal/platform/errors"
	"github.com/bonitaforward/bonita-forward/internal/services/directory/storage"
)

func TestRequireChecks(t *testing.T) {
	t.Parallel()

	owned := storage.Provider{ID: "p1", OwnerUserID: "owner"}
	tests := []struct {
		name  string
		check func() error
		want  apperrors.Code
	}{
		{name: "anonymous signed in", check: func() error { return RequireSignedIn(Anonymous) }, want: apperrors.CodeUnauthenticated},
		{name: "community business", check: func() error { return RequireBusiness(Actor{UserID: "u", Role: storage.RoleCommunity}) }, want: apperrors.CodeBusinessRequired},
		{name: "business business", check: func() error { return RequireBusiness(Actor{UserID: "u", Role: storage.RoleBusiness}) }},
		{name: "admin business", check: func() error { return RequireBusiness(Actor{UserID: "u", Admin: true}) }},
		{name: "business admin", check: func() error { return RequireAdmin(Actor{UserID: "u", Role: storage.RoleBusiness}) }, want: apperrors.CodeAdminRequired},
		{name: "owner manager", check: func() error { return RequireManager(Actor{UserID: "owner"}, owned) }},
		{name: "stranger manager", check: func() error { return RequireManager(Actor{UserID: "other"}, owned) }, want: apperrors.CodeNotOwner},
		{name: "admin manager", check: func() error { return RequireManager(Actor{UserID: "a", Admin: true}, owned) }},
		{name: "anonymous unowned", check: func() error { return RequireManager(Anonymous, storage.Provider{ID: "p2"}) }, want: apperrors.CodeUnauthenticated},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			err := tc.check()
			if tc.want == "" {
				if err != nil {
					t.Fatalf("error = %v, want nil", err)
				}
				return
			}
			if got := apperrors.CodeOf(err); got != tc.want {
				t.Fatalf("code = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestManagesRequiresIdentity(t *testing.T) {
	t.Parallel()

	if Anonymous.Manages(storage.Provider{ID: "p1"}) {
		t.Fatal("anonymous actor must not manage unowned providers")
	}
}
