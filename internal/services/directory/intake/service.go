// Package intake handles business applications, listing change requests and contact leads.
package intake

import (
	"context"
	"errors"
	"strings"
	"time"

	apperrors "github.com/bonitaforward/bonita-forward/internal/platform/errors"
	"github.com/bonitaforward/bonita-forward/internal/platform/id"
	"github.com/bonitaforward/bonita-forward/internal/platform/pagination"
	"github.com/bonitaforward/bonita-forward/internal/services/directory/storage"
)

var (
	// ErrApplicationNotFound is returned when an application is missing.
	ErrApplicationNotFound = apperrors.New(apperrors.CodeApplicationNotFound, "application not found")
	// ErrChangeRequestNotFound is returned when a change request is missing.
	ErrChangeRequestNotFound = apperrors.New(apperrors.CodeChangeRequestNotFound, "change request not found")

	errProviderNotFound = apperrors.New(apperrors.CodeProviderNotFound, "provider not found")
	errStoreUnavailable = apperrors.New(apperrors.CodeUnavailable, "intake store is not configured")
)

// Store is the persistence needed by intake.
type Store interface {
	storage.ApplicationStore
	storage.ChangeRequestStore
	storage.LeadStore
	GetProvider(ctx context.Context, id string) (storage.Provider, error)
	FindProvidersByName(ctx context.Context, name string) ([]storage.Provider, error)
	GetUserByEmail(ctx context.Context, email string) (storage.User, error)
}

// Service processes intake submissions and their review.
type Service struct {
	store Store
	clock func() time.Time
	newID func() (string, error)
}

// NewService creates an intake service.
func NewService(store Store) *Service {
	return &Service{store: store, clock: time.Now, newID: id.NewID}
}

func (s *Service) ready() error {
	if s == nil || s.store == nil {
		return errStoreUnavailable
	}
	return nil
}

func (s *Service) now() time.Time {
	if s.clock == nil {
		return time.Now().UTC()
	}
	return s.clock().UTC()
}

func (s *Service) nextID(kind string) (string, error) {
	value, err := s.newID()
	if err != nil {
		return "", apperrors.Wrap(apperrors.CodeUnknown, "generate "+kind+" id", err)
	}
	return value, nil
}

func (s *Service) provider(ctx context.Context, providerID string) (storage.Provider, error) {
	providerID = strings.TrimSpace(providerID)
	if providerID == "" {
		return storage.Provider{}, errProviderNotFound
	}
	provider, err := s.store.GetProvider(ctx, providerID)
	if errors.Is(err, storage.ErrNotFound) {
		return storage.Provider{}, errProviderNotFound
	}
	return provider, err
}

func parsePage(pageSize int, pageToken string) (pagination.Page, error) {
	return pagination.Parse(pageSize, pageToken, pagination.Standard)
}

// ParseDecisionStatus validates an optional review status filter.
func ParseDecisionStatus(raw string) (storage.DecisionStatus, error) {
	status := storage.DecisionStatus(strings.ToLower(strings.TrimSpace(raw)))
	switch status {
	case "", storage.StatusPending, storage.StatusApproved, storage.StatusRejected:
		return status, nil
	default:
		return "", apperrors.WithMetadata(apperrors.CodeInvalidInput, "unknown review status", map[string]string{"Fields": "status"})
	}
}

func decidedError(code apperrors.Code, status storage.DecisionStatus) error {
	return apperrors.WithMetadata(code, "already decided", map[string]string{"Status": string(status)})
}
