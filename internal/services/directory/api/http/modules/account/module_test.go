package account

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/bonitaforward/bonita-forward/internal/services/directory/access"
	"github.com/bonitaforward/bonita-forward/internal/services/directory/accounts"
	"github.com/bonitaforward/bonita-forward/internal/services/directory/api/http/authn"
	"github.com/bonitaforward/bonita-forward/internal/services/directory/api/http/module"
	"github.com/bonitaforward/bonita-forward/internal/services/directory/content"
	"github.com/bonitaforward/bonita-forward/internal/services/directory/storage"
)

type fakeProfiles struct {
	profile storage.Profile
}

func (f *fakeProfiles) GetProfile(_ context.Context, userID string) (storage.Profile, error) {
	if userID != f.profile.ID {
		return storage.Profile{}, accounts.ErrProfileNotFound
	}
	return f.profile, nil
}

func (f *fakeProfiles) UpdateProfile(_ context.Context, userID string, in accounts.ProfileInput) (storage.Profile, error) {
	if userID != f.profile.ID {
		return storage.Profile{}, accounts.ErrProfileNotFound
	}
	if in.Name != nil {
		f.profile.Name = *in.Name
	}
	return f.profile, nil
}

type fakeEvents struct {
	submittedBy string
}

func (f *fakeEvents) SubmitEvent(_ context.Context, actor access.Actor, in content.EventInput) (storage.Event, error) {
	f.submittedBy = actor.UserID
	return storage.Event{ID: "e1", Title: in.Title}, nil
}

func newMux(t *testing.T, profiles *fakeProfiles, events *fakeEvents) *http.ServeMux {
	t.Helper()
	mux := http.NewServeMux()
	if err := New(profiles, events, module.NewBase(nil)).Register(mux); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	return mux
}

func withActor(req *http.Request, actor access.Actor) *http.Request {
	return req.WithContext(authn.WithActor(req.Context(), actor))
}

func TestRegisterRequiresServices(t *testing.T) {
	t.Parallel()

	if err := New(nil, nil, module.Base{}).Register(http.NewServeMux()); err == nil {
		t.Fatal("expected error when services are missing")
	}
}

func TestGetProfileRequiresSignIn(t *testing.T) {
	t.Parallel()

	mux := newMux(t, &fakeProfiles{}, &fakeEvents{})
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/me", nil))
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusUnauthorized)
	}
}

func TestGetProfileIncludesAdminFlag(t *testing.T) {
	t.Parallel()

	profiles := &fakeProfiles{profile: storage.Profile{ID: "u1", Email: "u1@example.com", Role: storage.RoleCommunity}}
	mux := newMux(t, profiles, &fakeEvents{})
	req := withActor(httptest.NewRequest(http.MethodGet, "/api/me", nil), access.Actor{UserID: "u1", Admin: true})
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d: %s", rr.Code, http.StatusOK, rr.Body.String())
	}
	var body map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["admin"] != true || body["email"] != "u1@example.com" {
		t.Fatalf("body = %v", body)
	}
}

func TestUpdateProfile(t *testing.T) {
	t.Parallel()

	profiles := &fakeProfiles{profile: storage.Profile{ID: "u1", Name: "Old"}}
	mux := newMux(t, profiles, &fakeEvents{})
	req := withActor(httptest.NewRequest(http.MethodPatch, "/api/me", strings.NewReader(`{"name":"New"}`)), access.Actor{UserID: "u1"})
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d: %s", rr.Code, http.StatusOK, rr.Body.String())
	}
	if profiles.profile.Name != "New" {
		t.Fatalf("name = %q, want %q", profiles.profile.Name, "New")
	}
}

func TestSubmitEventUsesActor(t *testing.T) {
	t.Parallel()

	events := &fakeEvents{}
	mux := newMux(t, &fakeProfiles{}, events)
	payload := `{"title":"Street fair","start_at":"2026-11-01T10:00:00Z"}`
	req := withActor(httptest.NewRequest(http.MethodPost, "/api/events", strings.NewReader(payload)), access.Actor{UserID: "u7"})
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d: %s", rr.Code, http.StatusCreated, rr.Body.String())
	}
	if events.submittedBy != "u7" {
		t.Fatalf("submitted by = %q, want %q", events.submittedBy, "u7")
	}
}
