// Package account serves routes for any signed-in user.
package account

import (
	"context"
	"errors"
	"net/http"

	"github.com/bonitaforward/bonita-forward/internal/platform/httpx"
	"github.com/bonitaforward/bonita-forward/internal/services/directory/access"
	"github.com/bonitaforward/bonita-forward/internal/services/directory/accounts"
	"github.com/bonitaforward/bonita-forward/internal/services/directory/api/http/authn"
	"github.com/bonitaforward/bonita-forward/internal/services/directory/api/http/module"
	"github.com/bonitaforward/bonita-forward/internal/services/directory/api/http/views"
	"github.com/bonitaforward/bonita-forward/internal/services/directory/content"
	"github.com/bonitaforward/bonita-forward/internal/services/directory/storage"
)

// Profiles reads and edits the caller's profile.
type Profiles interface {
	GetProfile(ctx context.Context, userID string) (storage.Profile, error)
	UpdateProfile(ctx context.Context, userID string, in accounts.ProfileInput) (storage.Profile, error)
}

// Events accepts community calendar submissions.
type Events interface {
	SubmitEvent(ctx context.Context, actor access.Actor, in content.EventInput) (storage.Event, error)
}

// Module provides the signed-in account routes.
type Module struct {
	profiles Profiles
	events   Events
	base     module.Base
}

// New returns an account module.
func New(profiles Profiles, events Events, base module.Base) Module {
	return Module{profiles: profiles, events: events, base: base}
}

// ID returns a stable module identifier.
func (Module) ID() string { return "account" }

// Healthy reports whether the backing services are configured.
func (m Module) Healthy() bool {
	return m.profiles != nil && m.events != nil
}

// Register wires the account routes behind the signed-in guard.
func (m Module) Register(mux *http.ServeMux) error {
	if mux == nil {
		return errors.New("account module: mux is required")
	}
	if !m.Healthy() {
		return errors.New("account module: profile and event services are required")
	}
	h := handlers{Base: m.base, profiles: m.profiles, events: m.events}
	signedIn := authn.RequireSignedIn(m.base.Logger)
	route := func(pattern string, fn http.HandlerFunc) {
		mux.Handle(pattern, httpx.Chain(fn, signedIn))
	}
	route("GET /api/me", h.handleGetProfile)
	route("PATCH /api/me", h.handleUpdateProfile)
	route("POST /api/events", h.handleSubmitEvent)
	return nil
}

type handlers struct {
	module.Base
	profiles Profiles
	events   Events
}

func (h handlers) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	ctx, actor := h.Actor(r)
	profile, err := h.profiles.GetProfile(ctx, actor.UserID)
	if err != nil {
		h.WriteError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, meView(profile, actor))
}

func (h handlers) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var in accounts.ProfileInput
	if !h.Decode(w, r, &in) {
		return
	}
	ctx, actor := h.Actor(r)
	profile, err := h.profiles.UpdateProfile(ctx, actor.UserID, in)
	if err != nil {
		h.WriteError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, meView(profile, actor))
}

func (h handlers) handleSubmitEvent(w http.ResponseWriter, r *http.Request) {
	var in content.EventInput
	if !h.Decode(w, r, &in) {
		return
	}
	ctx, actor := h.Actor(r)
	event, err := h.events.SubmitEvent(ctx, actor, in)
	if err != nil {
		h.WriteError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, views.NewEvent(event))
}
