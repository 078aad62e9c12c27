// Package content serves the blog, the community calendar and business
// calendar integrations.
package content

import (
	"context"
	"time"

	apperrors "github.com/bonitaforward/bonita-forward/internal/platform/errors"
	"github.com/bonitaforward/bonita-forward/internal/platform/id"
	"github.com/bonitaforward/bonita-forward/internal/services/directory/storage"
)

var errStoreUnavailable = apperrors.New(apperrors.CodeUnavailable, "content store is not configured")

// Store is the persistence needed by content.
type Store interface {
	storage.PostStore
	storage.EventStore
	storage.IntegrationStore
	GetProvider(ctx context.Context, id string) (storage.Provider, error)
}

// Service manages posts, events and integrations.
type Service struct {
	store Store
	clock func() time.Time
	newID func() (string, error)
}

// NewService creates a content service.
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
