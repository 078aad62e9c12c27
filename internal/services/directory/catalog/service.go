// Package catalog implements the public provider directory and its admin management.
package catalog

import (
	"context"
	"errors"
	"strings"
	"time"

	apperrors "github.com/bonitaforward/bonita-forward/internal/platform/errors"
	"github.com/bonitaforward/bonita-forward/internal/platform/filter"
	"github.com/bonitaforward/bonita-forward/internal/platform/id"
	"github.com/bonitaforward/bonita-forward/internal/platform/pagination"
	"github.com/bonitaforward/bonita-forward/internal/platform/validate"
	"github.com/bonitaforward/bonita-forward/internal/services/directory/access"
	"github.com/bonitaforward/bonita-forward/internal/services/directory/category"
	"github.com/bonitaforward/bonita-forward/internal/services/directory/storage"
)

var (
	// ErrProviderNotFound is returned when a listing is missing or hidden from the caller.
	ErrProviderNotFound = apperrors.New(apperrors.CodeProviderNotFound, "provider not found")
	// ErrNameRequired is returned when a listing has no name.
	ErrNameRequired = apperrors.New(apperrors.CodeProviderNameRequired, "provider name is required")

	errStoreUnavailable = apperrors.New(apperrors.CodeUnavailable, "provider store is not configured")
)

// AdminFilterSchema declares the fields accepted by admin filter expressions.
var AdminFilterSchema = filter.Schema{
	"category":        {Column: "category_key", Type: filter.String},
	"published":       {Column: "published", Type: filter.Bool},
	"featured":        {Column: "is_member", Type: filter.Bool},
	"owner_user_id":   {Column: "owner_user_id", Type: filter.String},
	"name":            {Column: "name", Type: filter.String},
	"booking_enabled": {Column: "booking_enabled", Type: filter.Bool},
}

// Service serves provider listings.
type Service struct {
	providers storage.ProviderStore
	clock     func() time.Time
	newID     func() (string, error)
}

// NewService creates a catalog service backed by provider storage.
func NewService(providers storage.ProviderStore) *Service {
	return &Service{
		providers: providers,
		clock:     time.Now,
		newID:     id.NewID,
	}
}

// ListInput narrows the public listing.
type ListInput struct {
	Category     string
	Query        string
	FeaturedOnly bool
	PageSize     int
	PageToken    string
}

// ListProviders returns published providers, featured first.
func (s *Service) ListProviders(ctx context.Context, in ListInput) (storage.Page[storage.Provider], error) {
	if err := s.ready(); err != nil {
		return storage.Page[storage.Provider]{}, err
	}
	query := storage.ProviderQuery{
		Text:          strings.TrimSpace(in.Query),
		FeaturedOnly:  in.FeaturedOnly,
		PublishedOnly: true,
	}
	if strings.TrimSpace(in.Category) != "" {
		key, err := category.Require(in.Category)
		if err != nil {
			return storage.Page[storage.Provider]{}, err
		}
		query.CategoryKey = key
	}
	page, err := pagination.Parse(in.PageSize, in.PageToken, pagination.Standard)
	if err != nil {
		return storage.Page[storage.Provider]{}, err
	}
	query.Page = page
	return s.providers.ListProviders(ctx, query)
}

// AdminListInput is an admin listing request with an optional filter expression.
type AdminListInput struct {
	Filter    string
	PageSize  int
	PageToken string
}

// AdminListProviders returns every provider matching the filter expression.
func (s *Service) AdminListProviders(ctx context.Context, in AdminListInput) (storage.Page[storage.Provider], error) {
	if err := s.ready(); err != nil {
		return storage.Page[storage.Provider]{}, err
	}
	where, err := AdminFilterSchema.Parse(in.Filter)
	if err != nil {
		return storage.Page[storage.Provider]{}, err
	}
	page, err := pagination.Parse(in.PageSize, in.PageToken, pagination.Standard)
	if err != nil {
		return storage.Page[storage.Provider]{}, err
	}
	return s.providers.ListProviders(ctx, storage.ProviderQuery{Where: where, Page: page})
}

// OwnedProviders returns every provider owned by userID.
func (s *Service) OwnedProviders(ctx context.Context, userID string) ([]storage.Provider, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, nil
	}
	page, err := s.providers.ListProviders(ctx, storage.ProviderQuery{OwnerUserID: userID})
	if err != nil {
		return nil, err
	}
	return page.Items, nil
}

// GetProvider returns a provider visible to actor. Unpublished listings are
// visible only to their owner and admins.
func (s *Service) GetProvider(ctx context.Context, actor access.Actor, providerID string) (storage.Provider, error) {
	if err := s.ready(); err != nil {
		return storage.Provider{}, err
	}
	provider, err := s.load(ctx, providerID)
	if err != nil {
		return storage.Provider{}, err
	}
	if !provider.Published && !actor.Manages(provider) {
		return storage.Provider{}, ErrProviderNotFound
	}
	return provider, nil
}

// ProviderInput is the editable shape of a listing.
type ProviderInput struct {
	Name                string     `json:"name" validate:"max=200"`
	Category            string     `json:"category"`
	Tags                []string   `json:"tags" validate:"max=30,dive,max=60"`
	Rating              *float64   `json:"rating" validate:"omitempty,gte=0,lte=5"`
	Phone               string     `json:"phone" validate:"max=40"`
	Email               string     `json:"email" validate:"omitempty,email"`
	Website             string     `json:"website" validate:"omitempty,url"`
	Address             string     `json:"address" validate:"max=300"`
	Description         string     `json:"description" validate:"max=5000"`
	Images              []string   `json:"images" validate:"max=20,dive,image_ref"`
	Badges              []string   `json:"badges" validate:"max=10,dive,max=40"`
	Published           bool       `json:"published"`
	Featured            bool       `json:"featured"`
	BookingEnabled      bool       `json:"booking_enabled"`
	BookingType         string     `json:"booking_type" validate:"omitempty,oneof=appointment reservation consultation walk-in"`
	BookingInstructions string     `json:"booking_instructions" validate:"max=2000"`
	BookingURL          string     `json:"booking_url" validate:"omitempty,url"`
	CouponCode          string     `json:"coupon_code" validate:"max=40"`
	CouponDiscount      string     `json:"coupon_discount" validate:"max=40"`
	CouponDescription   string     `json:"coupon_description" validate:"max=500"`
	CouponExpiresAt     *time.Time `json:"coupon_expires_at"`
	OwnerUserID         string     `json:"owner_user_id"`
}

// CreateProvider inserts a new listing.
func (s *Service) CreateProvider(ctx context.Context, in ProviderInput) (storage.Provider, error) {
	if err := s.ready(); err != nil {
		return storage.Provider{}, err
	}
	provider, err := providerFromInput(in)
	if err != nil {
		return storage.Provider{}, err
	}
	providerID, err := s.newID()
	if err != nil {
		return storage.Provider{}, apperrors.Wrap(apperrors.CodeUnknown, "generate provider id", err)
	}
	now := s.now()
	provider.ID = providerID
	provider.CreatedAt = now
	provider.UpdatedAt = now
	if err := s.providers.CreateProvider(ctx, provider); err != nil {
		return storage.Provider{}, err
	}
	return provider, nil
}

// UpdateProvider replaces the editable fields of a listing.
func (s *Service) UpdateProvider(ctx context.Context, providerID string, in ProviderInput) (storage.Provider, error) {
	if err := s.ready(); err != nil {
		return storage.Provider{}, err
	}
	current, err := s.load(ctx, providerID)
	if err != nil {
		return storage.Provider{}, err
	}
	provider, err := providerFromInput(in)
	if err != nil {
		return storage.Provider{}, err
	}
	provider.ID = current.ID
	provider.CreatedAt = current.CreatedAt
	provider.UpdatedAt = s.now()
	if err := s.save(ctx, provider); err != nil {
		return storage.Provider{}, err
	}
	return provider, nil
}

// DeleteProvider removes a listing.
func (s *Service) DeleteProvider(ctx context.Context, providerID string) error {
	if err := s.ready(); err != nil {
		return err
	}
	err := s.providers.DeleteProvider(ctx, strings.TrimSpace(providerID))
	if errors.Is(err, storage.ErrNotFound) {
		return ErrProviderNotFound
	}
	return err
}

// SetFeatured toggles the featured flag.
func (s *Service) SetFeatured(ctx context.Context, providerID string, featured bool) (storage.Provider, error) {
	return s.mutate(ctx, providerID, func(p *storage.Provider) { p.Featured = featured })
}

// SetPublished toggles public visibility.
func (s *Service) SetPublished(ctx context.Context, providerID string, published bool) (storage.Provider, error) {
	return s.mutate(ctx, providerID, func(p *storage.Provider) { p.Published = published })
}

// SaveImages replaces the image list of a listing.
func (s *Service) SaveImages(ctx context.Context, providerID string, images []string) (storage.Provider, error) {
	return s.mutate(ctx, providerID, func(p *storage.Provider) { p.Images = images })
}

func (s *Service) mutate(ctx context.Context, providerID string, fn func(*storage.Provider)) (storage.Provider, error) {
	if err := s.ready(); err != nil {
		return storage.Provider{}, err
	}
	provider, err := s.load(ctx, providerID)
	if err != nil {
		return storage.Provider{}, err
	}
	fn(&provider)
	provider.UpdatedAt = s.now()
	if err := s.save(ctx, provider); err != nil {
		return storage.Provider{}, err
	}
	return provider, nil
}

func (s *Service) load(ctx context.Context, providerID string) (storage.Provider, error) {
	providerID = strings.TrimSpace(providerID)
	if providerID == "" {
		return storage.Provider{}, ErrProviderNotFound
	}
	provider, err := s.providers.GetProvider(ctx, providerID)
	if errors.Is(err, storage.ErrNotFound) {
		return storage.Provider{}, ErrProviderNotFound
	}
	return provider, err
}

func (s *Service) save(ctx context.Context, provider storage.Provider) error {
	err := s.providers.UpdateProvider(ctx, provider)
	if errors.Is(err, storage.ErrNotFound) {
		return ErrProviderNotFound
	}
	return err
}

func (s *Service) ready() error {
	if s == nil || s.providers == nil {
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

func providerFromInput(in ProviderInput) (storage.Provider, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return storage.Provider{}, ErrNameRequired
	}
	key, err := category.Require(in.Category)
	if err != nil {
		return storage.Provider{}, err
	}
	if err := validate.Struct(in); err != nil {
		return storage.Provider{}, err
	}
	var couponExpiresAt *time.Time
	if in.CouponExpiresAt != nil {
		value := in.CouponExpiresAt.UTC()
		couponExpiresAt = &value
	}
	return storage.Provider{
		Name:                name,
		CategoryKey:         key,
		Tags:                cleanList(in.Tags),
		Rating:              in.Rating,
		Phone:               strings.TrimSpace(in.Phone),
		Email:               strings.ToLower(strings.TrimSpace(in.Email)),
		Website:             strings.TrimSpace(in.Website),
		Address:             strings.TrimSpace(in.Address),
		Description:         strings.TrimSpace(in.Description),
		Images:              cleanList(in.Images),
		Badges:              cleanList(in.Badges),
		Published:           in.Published,
		Featured:            in.Featured,
		BookingEnabled:      in.BookingEnabled,
		BookingType:         strings.TrimSpace(in.BookingType),
		BookingInstructions: strings.TrimSpace(in.BookingInstructions),
		BookingURL:          strings.TrimSpace(in.BookingURL),
		CouponCode:          strings.TrimSpace(in.CouponCode),
		CouponDiscount:      strings.TrimSpace(in.CouponDiscount),
		CouponDescription:   strings.TrimSpace(in.CouponDescription),
		CouponExpiresAt:     couponExpiresAt,
		OwnerUserID:         strings.TrimSpace(in.OwnerUserID),
	}, nil
}

// InputFromProvider returns the editable shape of provider.
func InputFromProvider(p storage.Provider) ProviderInput {
	return ProviderInput{
		Name:                p.Name,
		Category:            p.CategoryKey,
		Tags:                p.Tags,
		Rating:              p.Rating,
		Phone:               p.Phone,
		Email:               p.Email,
		Website:             p.Website,
		Address:             p.Address,
		Description:         p.Description,
		Images:              p.Images,
		Badges:              p.Badges,
		Published:           p.Published,
		Featured:            p.Featured,
		BookingEnabled:      p.BookingEnabled,
		BookingType:         p.BookingType,
		BookingInstructions: p.BookingInstructions,
		BookingURL:          p.BookingURL,
		CouponCode:          p.CouponCode,
		CouponDiscount:      p.CouponDiscount,
		CouponDescription:   p.CouponDescription,
		CouponExpiresAt:     p.CouponExpiresAt,
		OwnerUserID:         p.OwnerUserID,
	}
}

func cleanList(values []string) []string {
	out := make([]string, 0, len(values))
	for _, value := range values {
		value = strings.TrimSpace(value)
		if value != "" {
			out = append(out, value)
		}
	}
	return out
}
