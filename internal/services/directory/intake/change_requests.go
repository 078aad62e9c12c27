package intake

import (
	"context"
	"errors"
	"strings"
	"time"

	apperrors "github.com/bonitaforward/bonita-forward/internal/platform/errors"
	"github.com/bonitaforward/bonita-forward/internal/services/directory/access"
	"github.com/bonitaforward/bonita-forward/internal/services/directory/catalog"
	"github.com/bonitaforward/bonita-forward/internal/services/directory/storage"
)

// ChangeRequestInput is a business owner's requested edit.
type ChangeRequestInput struct {
	ProviderID string         `json:"provider_id"`
	Type       string         `json:"type"`
	Changes    map[string]any `json:"changes"`
	Reason     string         `json:"reason"`
}

// ParseChangeType validates a change request type.
func ParseChangeType(raw string) (storage.ChangeType, error) {
	changeType := storage.ChangeType(strings.ToLower(strings.TrimSpace(raw)))
	switch changeType {
	case storage.ChangeUpdate, storage.ChangeDelete, storage.ChangeFeatureRequest, storage.ChangeClaim:
		return changeType, nil
	default:
		return "", apperrors.WithMetadata(apperrors.CodeChangeRequestType, "unknown change type", map[string]string{"Type": raw})
	}
}

// SubmitChangeRequest records a pending edit. Owners may request any type for
// their listings; claims are open to business users for unowned listings.
func (s *Service) SubmitChangeRequest(ctx context.Context, actor access.Actor, in ChangeRequestInput) (storage.ChangeRequest, error) {
	if err := s.ready(); err != nil {
		return storage.ChangeRequest{}, err
	}
	if err := access.RequireBusiness(actor); err != nil {
		return storage.ChangeRequest{}, err
	}
	changeType, err := ParseChangeType(in.Type)
	if err != nil {
		return storage.ChangeRequest{}, err
	}
	provider, err := s.provider(ctx, in.ProviderID)
	if err != nil {
		return storage.ChangeRequest{}, err
	}

	var changes map[string]any
	switch changeType {
	case storage.ChangeClaim:
		if provider.OwnerUserID != "" {
			return storage.ChangeRequest{}, apperrors.New(apperrors.CodeProviderAlreadyOwned, "provider already claimed")
		}
	case storage.ChangeUpdate:
		if err := access.RequireManager(actor, provider); err != nil {
			return storage.ChangeRequest{}, err
		}
		if _, err := catalog.ApplyChanges(provider, in.Changes); err != nil {
			return storage.ChangeRequest{}, err
		}
		changes = in.Changes
	default:
		if err := access.RequireManager(actor, provider); err != nil {
			return storage.ChangeRequest{}, err
		}
	}

	requestID, err := s.nextID("change request")
	if err != nil {
		return storage.ChangeRequest{}, err
	}
	request := storage.ChangeRequest{
		ID:          requestID,
		ProviderID:  provider.ID,
		OwnerUserID: actor.UserID,
		Type:        changeType,
		Changes:     changes,
		Reason:      strings.TrimSpace(in.Reason),
		Status:      storage.StatusPending,
		CreatedAt:   s.now(),
	}
	if err := s.store.CreateChangeRequest(ctx, request); err != nil {
		return storage.ChangeRequest{}, err
	}
	return request, nil
}

// ListChangeRequests returns change requests, optionally by status.
func (s *Service) ListChangeRequests(ctx context.Context, status storage.DecisionStatus, pageSize int, pageToken string) (storage.Page[storage.ChangeRequest], error) {
	if err := s.ready(); err != nil {
		return storage.Page[storage.ChangeRequest]{}, err
	}
	page, err := parsePage(pageSize, pageToken)
	if err != nil {
		return storage.Page[storage.ChangeRequest]{}, err
	}
	return s.store.ListChangeRequests(ctx, storage.ChangeRequestQuery{Status: status, Page: page})
}

// ListOwnChangeRequests returns every change request submitted by the actor.
func (s *Service) ListOwnChangeRequests(ctx context.Context, actor access.Actor) ([]storage.ChangeRequest, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	if err := access.RequireSignedIn(actor); err != nil {
		return nil, err
	}
	page, err := s.store.ListChangeRequests(ctx, storage.ChangeRequestQuery{OwnerUserID: actor.UserID})
	if err != nil {
		return nil, err
	}
	return page.Items, nil
}

// ApproveChangeRequest applies the requested change and marks the request
// approved in one transaction.
func (s *Service) ApproveChangeRequest(ctx context.Context, requestID string) (storage.ChangeRequest, error) {
	if err := s.ready(); err != nil {
		return storage.ChangeRequest{}, err
	}
	now := s.now()
	approved, err := s.store.ApproveChangeRequest(ctx, strings.TrimSpace(requestID), now, func(request storage.ChangeRequest, current storage.Provider) (storage.ProviderChange, error) {
		return applyChange(request, current, now)
	})
	if err != nil {
		return storage.ChangeRequest{}, s.changeRequestError(ctx, requestID, err)
	}
	return approved, nil
}

// RejectChangeRequest marks a pending change request rejected.
func (s *Service) RejectChangeRequest(ctx context.Context, requestID string, reason string) error {
	if err := s.ready(); err != nil {
		return err
	}
	err := s.store.RejectChangeRequest(ctx, strings.TrimSpace(requestID), strings.TrimSpace(reason), s.now())
	if err != nil {
		return s.changeRequestError(ctx, requestID, err)
	}
	return nil
}

// CountPendingChangeRequests returns how many change requests await review.
func (s *Service) CountPendingChangeRequests(ctx context.Context) (int, error) {
	if err := s.ready(); err != nil {
		return 0, err
	}
	return s.store.CountChangeRequests(ctx, storage.StatusPending)
}

// applyChange computes the provider state an approved request produces.
func applyChange(request storage.ChangeRequest, current storage.Provider, now time.Time) (storage.ProviderChange, error) {
	updated := current
	switch request.Type {
	case storage.ChangeUpdate:
		changed, err := catalog.ApplyChanges(current, request.Changes)
		if err != nil {
			return storage.ProviderChange{}, err
		}
		updated = changed
	case storage.ChangeDelete:
		return storage.ProviderChange{Delete: true}, nil
	case storage.ChangeFeatureRequest:
		updated.Featured = true
	case storage.ChangeClaim:
		if current.OwnerUserID != "" && current.OwnerUserID != request.OwnerUserID {
			return storage.ProviderChange{}, apperrors.New(apperrors.CodeProviderAlreadyOwned, "provider already claimed")
		}
		updated.OwnerUserID = request.OwnerUserID
	default:
		if _, err := ParseChangeType(string(request.Type)); err != nil {
			return storage.ProviderChange{}, err
		}
	}
	updated.UpdatedAt = now
	return storage.ProviderChange{Provider: updated}, nil
}

func (s *Service) changeRequestError(ctx context.Context, requestID string, err error) error {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		if _, getErr := s.store.GetChangeRequest(ctx, strings.TrimSpace(requestID)); errors.Is(getErr, storage.ErrNotFound) {
			return ErrChangeRequestNotFound
		}
		return errProviderNotFound
	case errors.Is(err, storage.ErrAlreadyDecided):
		request, getErr := s.store.GetChangeRequest(ctx, strings.TrimSpace(requestID))
		if getErr != nil {
			return decidedError(apperrors.CodeChangeRequestDecided, "")
		}
		return decidedError(apperrors.CodeChangeRequestDecided, request.Status)
	default:
		return err
	}
}
