// Package media stores provider images in object storage.
package media

import (
	"context"
	"net/http"
	"slices"
	"strconv"
	"strings"

	apperrors "github.com/bonitaforward/bonita-forward/internal/platform/errors"
	"github.com/bonitaforward/bonita-forward/internal/platform/id"
	"github.com/bonitaforward/bonita-forward/internal/platform/timeouts"
	"github.com/bonitaforward/bonita-forward/internal/services/directory/access"
	"github.com/bonitaforward/bonita-forward/internal/services/directory/storage"
)

// MaxImageBytes bounds one uploaded image.
const MaxImageBytes = 5 << 20

var (
	// ErrImageNotFound is returned when a URL is not on the listing.
	ErrImageNotFound = apperrors.New(apperrors.CodeImageNotFound, "image not found")
	// ErrUnsupported is returned for content that is not an accepted image type.
	ErrUnsupported = apperrors.New(apperrors.CodeImageUnsupported, "unsupported image type")
	// ErrTooLarge is returned for images over MaxImageBytes.
	ErrTooLarge = apperrors.WithMetadata(apperrors.CodeImageTooLarge, "image too large",
		map[string]string{"MaxMB": strconv.Itoa(MaxImageBytes >> 20)})

	// ErrLimitReached is returned when a listing already holds storage.MaxProviderImages images.
	ErrLimitReached = apperrors.WithMetadata(apperrors.CodeImageLimit, "image limit reached",
		map[string]string{"Max": strconv.Itoa(storage.MaxProviderImages)})

	errUnavailable = apperrors.New(apperrors.CodeUnavailable, "media store is not configured")
)

var extensions = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/webp": "webp",
	"image/gif":  "gif",
}

// Providers is the listing surface media needs.
type Providers interface {
	GetProvider(ctx context.Context, actor access.Actor, providerID string) (storage.Provider, error)
	SaveImages(ctx context.Context, providerID string, images []string) (storage.Provider, error)
}

// Service uploads and removes listing images.
type Service struct {
	providers Providers
	objects   ObjectStore
	newID     func() (string, error)
}

// NewService creates a media service.
func NewService(providers Providers, objects ObjectStore) *Service {
	return &Service{providers: providers, objects: objects, newID: id.NewID}
}

// UploadProviderImage stores data and appends its URL to the listing's images.
func (s *Service) UploadProviderImage(ctx context.Context, actor access.Actor, providerID string, data []byte) (storage.Provider, error) {
	provider, err := s.managed(ctx, actor, providerID)
	if err != nil {
		return storage.Provider{}, err
	}
	if len(provider.Images) >= storage.MaxProviderImages {
		return storage.Provider{}, ErrLimitReached
	}
	contentType, err := Sniff(data)
	if err != nil {
		return storage.Provider{}, err
	}
	objectID, err := s.newID()
	if err != nil {
		return storage.Provider{}, apperrors.Wrap(apperrors.CodeUnknown, "generate image id", err)
	}
	key := "providers/" + provider.ID + "/" + objectID + "." + extensions[contentType]
	putCtx, cancel := context.WithTimeout(ctx, timeouts.ObjectStore)
	defer cancel()
	if err := s.objects.Put(putCtx, key, data, contentType); err != nil {
		return storage.Provider{}, apperrors.Wrap(apperrors.CodeUnavailable, "store image", err)
	}

	images := append(slices.Clone(provider.Images), s.objects.URL(key))
	updated, err := s.providers.SaveImages(ctx, provider.ID, images)
	if err != nil {
		_ = s.objects.Remove(ctx, key)
		return storage.Provider{}, err
	}
	return updated, nil
}

// DeleteProviderImage removes url from the listing and deletes the object it names.
func (s *Service) DeleteProviderImage(ctx context.Context, actor access.Actor, providerID string, url string) (storage.Provider, error) {
	provider, err := s.managed(ctx, actor, providerID)
	if err != nil {
		return storage.Provider{}, err
	}
	url = strings.TrimSpace(url)
	idx := slices.Index(provider.Images, url)
	if idx < 0 {
		return storage.Provider{}, ErrImageNotFound
	}
	images := slices.Delete(slices.Clone(provider.Images), idx, idx+1)
	updated, err := s.providers.SaveImages(ctx, provider.ID, images)
	if err != nil {
		return storage.Provider{}, err
	}
	// Externally hosted URLs are only unlinked.
	if key, ok := s.objects.Key(url); ok {
		removeCtx, cancel := context.WithTimeout(ctx, timeouts.ObjectStore)
		defer cancel()
		if err := s.objects.Remove(removeCtx, key); err != nil {
			return storage.Provider{}, apperrors.Wrap(apperrors.CodeUnavailable, "remove image", err)
		}
	}
	return updated, nil
}

func (s *Service) managed(ctx context.Context, actor access.Actor, providerID string) (storage.Provider, error) {
	if s == nil || s.providers == nil || s.objects == nil {
		return storage.Provider{}, errUnavailable
	}
	if err := access.RequireSignedIn(actor); err != nil {
		return storage.Provider{}, err
	}
	provider, err := s.providers.GetProvider(ctx, actor, providerID)
	if err != nil {
		return storage.Provider{}, err
	}
	if err := access.RequireManager(actor, provider); err != nil {
		return storage.Provider{}, err
	}
	return provider, nil
}

// Sniff returns the image content type of data.
func Sniff(data []byte) (string, error) {
	if len(data) > MaxImageBytes {
		return "", ErrTooLarge
	}
	if len(data) == 0 {
		return "", ErrUnsupported
	}
	contentType := http.DetectContentType(data)
	if _, ok := extensions[contentType]; !ok {
		return "", ErrUnsupported
	}
	return contentType, nil
}
