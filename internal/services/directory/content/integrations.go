package content

import (
	"context"
	"errors"
	"strings"

	apperrors "github.com/bonitaforward/bonita-forward/internal/platform/errors"
	"github.com/bonitaforward/bonita-forward/internal/platform/validate"
	"github.com/bonitaforward/bonita-forward/internal/services/directory/access"
	"github.com/bonitaforward/bonita-forward/internal/services/directory/storage"
)

// ErrIntegrationNotFound is returned when a calendar connection is missing or not the caller's.
var ErrIntegrationNotFound = apperrors.New(apperrors.CodeIntegrationNotFound, "integration not found")

// IntegrationInput connects a listing to an external calendar.
type IntegrationInput struct {
	ProviderID  string `json:"provider_id" validate:"required"`
	Kind        string `json:"kind" validate:"required,oneof=google ical"`
	CalendarRef string `json:"calendar_ref" validate:"required,max=500"`
}

// ConnectCalendar links a provider the actor manages to an external calendar.
// iCal references must be URLs; Google references are calendar ids.
func (s *Service) ConnectCalendar(ctx context.Context, actor access.Actor, in IntegrationInput) (storage.Integration, error) {
	if err := s.ready(); err != nil {
		return storage.Integration{}, err
	}
	if err := access.RequireBusiness(actor); err != nil {
		return storage.Integration{}, err
	}
	in.Kind = strings.ToLower(strings.TrimSpace(in.Kind))
	in.CalendarRef = strings.TrimSpace(in.CalendarRef)
	if err := validate.Struct(in); err != nil {
		return storage.Integration{}, err
	}
	kind := storage.IntegrationKind(in.Kind)
	if kind == storage.IntegrationICal {
		if err := validate.Var("calendar_ref", in.CalendarRef, "url"); err != nil {
			return storage.Integration{}, err
		}
	}
	provider, err := s.store.GetProvider(ctx, strings.TrimSpace(in.ProviderID))
	if errors.Is(err, storage.ErrNotFound) {
		return storage.Integration{}, apperrors.New(apperrors.CodeProviderNotFound, "provider not found")
	}
	if err != nil {
		return storage.Integration{}, err
	}
	if err := access.RequireManager(actor, provider); err != nil {
		return storage.Integration{}, err
	}
	integrationID, err := s.nextID("integration")
	if err != nil {
		return storage.Integration{}, err
	}
	owner := provider.OwnerUserID
	if owner == "" {
		owner = actor.UserID
	}
	integration := storage.Integration{
		ID:          integrationID,
		ProviderID:  provider.ID,
		OwnerUserID: owner,
		Kind:        kind,
		CalendarRef: in.CalendarRef,
		ConnectedAt: s.now(),
	}
	if err := s.store.CreateIntegration(ctx, integration); err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			return storage.Integration{}, apperrors.New(apperrors.CodeIntegrationExists, "calendar already connected")
		}
		return storage.Integration{}, err
	}
	return integration, nil
}

// ListIntegrations returns the actor's calendar connections.
func (s *Service) ListIntegrations(ctx context.Context, actor access.Actor) ([]storage.Integration, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	if err := access.RequireSignedIn(actor); err != nil {
		return nil, err
	}
	return s.store.ListIntegrations(ctx, actor.UserID)
}

// DisconnectCalendar removes one of the actor's calendar connections; admins
// may remove any.
func (s *Service) DisconnectCalendar(ctx context.Context, actor access.Actor, integrationID string) error {
	if err := s.ready(); err != nil {
		return err
	}
	if err := access.RequireSignedIn(actor); err != nil {
		return err
	}
	owner := actor.UserID
	if actor.Admin {
		owner = ""
	}
	err := s.store.DeleteIntegration(ctx, strings.TrimSpace(integrationID), owner)
	if errors.Is(err, storage.ErrNotFound) {
		return ErrIntegrationNotFound
	}
	return err
}
