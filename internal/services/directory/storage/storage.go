// Package storage defines persistence contracts for directory state.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/bonitaforward/bonita-forward/internal/platform/filter"
	"github.com/bonitaforward/bonita-forward/internal/platform/pagination"
)

var (
	// ErrNotFound indicates a requested record is missing.
	ErrNotFound = errors.New("record not found")
	// ErrAlreadyExists indicates a uniqueness-constrained record already exists.
	ErrAlreadyExists = errors.New("record already exists")
	// ErrAlreadyDecided indicates an application or change request is no longer pending.
	ErrAlreadyDecided = errors.New("record already decided")
	// ErrStatusChanged indicates a record left the status a conditional update expected.
	ErrStatusChanged = errors.New("record status changed")
)

// Page is one page of records plus the token for the next one.
type Page[T any] struct {
	Items         []T
	NextPageToken string
}

// MaxProviderImages bounds Provider.Images.
const MaxProviderImages = 20

// Provider is one business listing.
type Provider struct {
	ID                  string
	Name                string
	CategoryKey         string
	Tags                []string
	Rating              *float64
	Phone               string
	Email               string
	Website             string
	Address             string
	Description         string
	Images              []string
	Badges              []string
	Published           bool
	Featured            bool
	BookingEnabled      bool
	BookingType         string
	BookingInstructions string
	BookingURL          string
	CouponCode          string
	CouponDiscount      string
	CouponDescription   string
	CouponExpiresAt     *time.Time
	OwnerUserID         string
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// ProviderQuery narrows a provider listing. Zero values do not filter.
type ProviderQuery struct {
	CategoryKey   string
	Text          string
	FeaturedOnly  bool
	PublishedOnly bool
	OwnerUserID   string
	IDs           []string
	Where         filter.SQLCondition
	Page          pagination.Page
}

// ProviderStore persists provider listings.
type ProviderStore interface {
	CreateProvider(ctx context.Context, provider Provider) error
	GetProvider(ctx context.Context, id string) (Provider, error)
	UpdateProvider(ctx context.Context, provider Provider) error
	DeleteProvider(ctx context.Context, id string) error
	ListProviders(ctx context.Context, query ProviderQuery) (Page[Provider], error)
	FindProvidersByName(ctx context.Context, name string) ([]Provider, error)
}

// BookingStatus is the lifecycle state of a booking.
type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingCancelled BookingStatus = "cancelled"
	BookingCompleted BookingStatus = "completed"
)

// Booking is one funnel submission.
type Booking struct {
	ID            string
	ProviderID    string
	CategoryKey   string
	CustomerName  string
	CustomerEmail string
	CustomerPhone string
	Answers       map[string]string
	BookingDate   *time.Time
	Notes         string
	Status        BookingStatus
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// BookingQuery narrows a booking listing.
type BookingQuery struct {
	ProviderIDs []string
	Status      BookingStatus
	Page        pagination.Page
}

// BookingStore persists bookings.
type BookingStore interface {
	CreateBooking(ctx context.Context, booking Booking) error
	GetBooking(ctx context.Context, id string) (Booking, error)
	// UpdateBookingStatus moves a booking from one status to another. It
	// returns ErrStatusChanged when the booking is no longer in from.
	UpdateBookingStatus(ctx context.Context, id string, from, to BookingStatus, updatedAt time.Time) error
	ListBookings(ctx context.Context, query BookingQuery) (Page[Booking], error)
	CountBookings(ctx context.Context) (int, error)
}

// DecisionStatus is the review state of applications and change requests.
type DecisionStatus string

const (
	StatusPending  DecisionStatus = "pending"
	StatusApproved DecisionStatus = "approved"
	StatusRejected DecisionStatus = "rejected"
)

// Tier is the listing tier requested by an application.
type Tier string

const (
	TierFree     Tier = "free"
	TierFeatured Tier = "featured"
)

// Application is a request to list a new business.
type Application struct {
	ID            string
	FullName      string
	BusinessName  string
	Email         string
	Phone         string
	Category      string
	Challenge     string
	TierRequested Tier
	Status        DecisionStatus
	DecisionNote  string
	ProviderID    string
	CreatedAt     time.Time
	DecidedAt     *time.Time
}

// ApplicationQuery narrows an application listing.
type ApplicationQuery struct {
	Status DecisionStatus
	Email  string
	Page   pagination.Page
}

// ApplicationStore persists business applications.
type ApplicationStore interface {
	CreateApplication(ctx context.Context, application Application) error
	GetApplication(ctx context.Context, id string) (Application, error)
	ListApplications(ctx context.Context, query ApplicationQuery) (Page[Application], error)
	// ApproveApplication inserts provider and marks the application approved atomically.
	ApproveApplication(ctx context.Context, id string, provider Provider, decidedAt time.Time) error
	RejectApplication(ctx context.Context, id string, note string, decidedAt time.Time) error
	CountApplications(ctx context.Context, status DecisionStatus) (int, error)
}

// ChangeType is the kind of edit a change request asks for.
type ChangeType string

const (
	ChangeUpdate         ChangeType = "update"
	ChangeDelete         ChangeType = "delete"
	ChangeFeatureRequest ChangeType = "feature_request"
	ChangeClaim          ChangeType = "claim"
)

// ChangeRequest is a pending edit to a provider.
type ChangeRequest struct {
	ID             string
	ProviderID     string
	OwnerUserID    string
	Type           ChangeType
	Changes        map[string]any
	Reason         string
	Status         DecisionStatus
	DecisionReason string
	CreatedAt      time.Time
	DecidedAt      *time.Time
}

// ChangeRequestQuery narrows a change request listing.
type ChangeRequestQuery struct {
	Status      DecisionStatus
	OwnerUserID string
	Page        pagination.Page
}

// ProviderChange is the effect of an approved change request on its provider.
type ProviderChange struct {
	Delete   bool
	Provider Provider
}

// ChangeApplier computes the provider change for a request inside the approval transaction.
type ChangeApplier func(request ChangeRequest, current Provider) (ProviderChange, error)

// ChangeRequestStore persists provider change requests.
type ChangeRequestStore interface {
	CreateChangeRequest(ctx context.Context, request ChangeRequest) error
	GetChangeRequest(ctx context.Context, id string) (ChangeRequest, error)
	ListChangeRequests(ctx context.Context, query ChangeRequestQuery) (Page[ChangeRequest], error)
	// ApproveChangeRequest applies the change and marks the request approved atomically.
	ApproveChangeRequest(ctx context.Context, id string, decidedAt time.Time, apply ChangeApplier) (ChangeRequest, error)
	RejectChangeRequest(ctx context.Context, id string, reason string, decidedAt time.Time) error
	CountChangeRequests(ctx context.Context, status DecisionStatus) (int, error)
}

// ContactLead is a "get featured" inquiry from the contact form.
type ContactLead struct {
	ID           string
	BusinessName string
	ContactEmail string
	Details      string
	CreatedAt    time.Time
}

// LeadStore persists contact leads.
type LeadStore interface {
	CreateContactLead(ctx context.Context, lead ContactLead) error
	ListContactLeads(ctx context.Context, page pagination.Page) (Page[ContactLead], error)
	CountContactLeads(ctx context.Context) (int, error)
}

// Role is an account's access level.
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleBusiness  Role = "business"
	RoleCommunity Role = "community"
)

// User holds sign-in credentials.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// Profile is the public account record keyed by user id.
type Profile struct {
	ID                       string
	Email                    string
	Name                     string
	Role                     Role
	BusinessName             string
	EmailOptOut              bool
	NotificationsDismissedAt *time.Time
	CreatedAt                time.Time
	UpdatedAt                time.Time
}

// AccountStore persists users and profiles.
type AccountStore interface {
	// CreateAccount inserts the user and its profile atomically.
	CreateAccount(ctx context.Context, user User, profile Profile) error
	GetUserByEmail(ctx context.Context, email string) (User, error)
	GetProfile(ctx context.Context, id string) (Profile, error)
	UpdateProfile(ctx context.Context, profile Profile) error
	// SetEmailOptOut opts every profile with email out of mail; ErrNotFound when none match.
	SetEmailOptOut(ctx context.Context, email string, updatedAt time.Time) error
	ListProfiles(ctx context.Context, role Role, page pagination.Page) (Page[Profile], error)
	// DeleteUser removes credentials, profile, pending change requests and
	// calendar integrations, and unlinks owned providers, atomically.
	DeleteUser(ctx context.Context, id string) error
	CountProfiles(ctx context.Context) (int, error)
}

// EventSource records how a calendar event was created.
type EventSource string

const (
	SourceAdmin       EventSource = "admin"
	SourceSubmitted   EventSource = "submitted"
	SourceIntegration EventSource = "integration"
)

// BlogPost is one article.
type BlogPost struct {
	ID          string
	CategoryKey string
	Title       string
	Content     string
	Excerpt     string
	Images      []string
	Published   bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// PostQuery narrows a blog listing.
type PostQuery struct {
	CategoryKey   string
	PublishedOnly bool
	Page          pagination.Page
}

// PostStore persists blog posts.
type PostStore interface {
	CreatePost(ctx context.Context, post BlogPost) error
	GetPost(ctx context.Context, id string) (BlogPost, error)
	UpdatePost(ctx context.Context, post BlogPost) error
	DeletePost(ctx context.Context, id string) error
	ListPosts(ctx context.Context, query PostQuery) (Page[BlogPost], error)
}

// Event is one community calendar entry.
type Event struct {
	ID          string
	Title       string
	Description string
	StartAt     time.Time
	EndAt       *time.Time
	Location    string
	Address     string
	Category    string
	URL         string
	Source      EventSource
	Approved    bool
	CreatedBy   string
	CreatedAt   time.Time
}

// EventQuery narrows an event listing. From is inclusive and To exclusive on start_at.
type EventQuery struct {
	From     *time.Time
	To       *time.Time
	Approved *bool
	Page     pagination.Page
}

// EventStore persists calendar events.
type EventStore interface {
	CreateEvent(ctx context.Context, event Event) error
	GetEvent(ctx context.Context, id string) (Event, error)
	ApproveEvent(ctx context.Context, id string) error
	DeleteEvent(ctx context.Context, id string) error
	ListEvents(ctx context.Context, query EventQuery) (Page[Event], error)
	CountEvents(ctx context.Context, approved bool) (int, error)
}

// IntegrationKind names an external calendar provider.
type IntegrationKind string

const (
	IntegrationGoogle IntegrationKind = "google"
	IntegrationICal   IntegrationKind = "ical"
)

// Integration links a provider to an external calendar.
type Integration struct {
	ID          string
	ProviderID  string
	OwnerUserID string
	Kind        IntegrationKind
	CalendarRef string
	ConnectedAt time.Time
}

// IntegrationStore persists calendar integrations.
type IntegrationStore interface {
	CreateIntegration(ctx context.Context, integration Integration) error
	ListIntegrations(ctx context.Context, ownerUserID string) ([]Integration, error)
	// DeleteIntegration removes an integration owned by ownerUserID; an empty owner matches any.
	DeleteIntegration(ctx context.Context, id string, ownerUserID string) error
}

// Store is the full directory persistence surface.
type Store interface {
	ProviderStore
	BookingStore
	ApplicationStore
	ChangeRequestStore
	LeadStore
	AccountStore
	PostStore
	EventStore
	IntegrationStore
	Ping(ctx context.Context) error
	Close() error
}
