// Package views maps directory records to their JSON response shapes.
package views

import (
	"time"

	"github.com/bonitaforward/bonita-forward/internal/services/directory/accounts"
	"github.com/bonitaforward/bonita-forward/internal/services/directory/catalog"
	"github.com/bonitaforward/bonita-forward/internal/services/directory/dashboard"
	"github.com/bonitaforward/bonita-forward/internal/services/directory/notifications"
	"github.com/bonitaforward/bonita-forward/internal/services/directory/storage"
)

// Page is a listing response.
type Page[T any] struct {
	Items         []T    `json:"items"`
	NextPageToken string `json:"next_page_token,omitempty"`
}

// NewPage maps every item of page with fn.
func NewPage[S, T any](page storage.Page[S], fn func(S) T) Page[T] {
	return Page[T]{Items: List(page.Items, fn), NextPageToken: page.NextPageToken}
}

// List maps items with fn and never returns nil.
func List[S, T any](items []S, fn func(S) T) []T {
	out := make([]T, 0, len(items))
	for _, item := range items {
		out = append(out, fn(item))
	}
	return out
}

// Provider is the public listing shape.
type Provider struct {
	ID                  string     `json:"id"`
	Name                string     `json:"name"`
	Category            string     `json:"category"`
	Tags                []string   `json:"tags"`
	Rating              *float64   `json:"rating"`
	Phone               string     `json:"phone,omitempty"`
	Email               string     `json:"email,omitempty"`
	Website             string     `json:"website,omitempty"`
	Address             string     `json:"address,omitempty"`
	Description         string     `json:"description,omitempty"`
	Images              []string   `json:"images"`
	Badges              []string   `json:"badges"`
	Published           bool       `json:"published"`
	Featured            bool       `json:"featured"`
	BookingEnabled      bool       `json:"booking_enabled"`
	BookingType         string     `json:"booking_type,omitempty"`
	BookingInstructions string     `json:"booking_instructions,omitempty"`
	BookingURL          string     `json:"booking_url,omitempty"`
	CouponCode          string     `json:"coupon_code,omitempty"`
	CouponDiscount      string     `json:"coupon_discount,omitempty"`
	CouponDescription   string     `json:"coupon_description,omitempty"`
	CouponExpiresAt     *time.Time `json:"coupon_expires_at,omitempty"`
	OwnerUserID         string     `json:"owner_user_id,omitempty"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
}

// NewProvider maps a listing.
func NewProvider(p storage.Provider) Provider {
	return Provider{
		ID:                  p.ID,
		Name:                p.Name,
		Category:            p.CategoryKey,
		Tags:                nonNil(p.Tags),
		Rating:              p.Rating,
		Phone:               p.Phone,
		Email:               p.Email,
		Website:             p.Website,
		Address:             p.Address,
		Description:         p.Description,
		Images:              nonNil(p.Images),
		Badges:              nonNil(p.Badges),
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
		CreatedAt:           p.CreatedAt,
		UpdatedAt:           p.UpdatedAt,
	}
}

// Recommendation is one ranked funnel result.
type Recommendation struct {
	Provider Provider `json:"provider"`
	Score    int      `json:"score"`
}

// NewRecommendation maps a ranked result.
func NewRecommendation(r catalog.Recommendation) Recommendation {
	return Recommendation{Provider: NewProvider(r.Provider), Score: r.Score}
}

// Booking is a funnel submission.
type Booking struct {
	ID            string            `json:"id"`
	ProviderID    string            `json:"provider_id,omitempty"`
	Category      string            `json:"category"`
	CustomerName  string            `json:"customer_name"`
	CustomerEmail string            `json:"customer_email"`
	CustomerPhone string            `json:"customer_phone,omitempty"`
	Answers       map[string]string `json:"answers,omitempty"`
	BookingDate   *time.Time        `json:"booking_date,omitempty"`
	Notes         string            `json:"notes,omitempty"`
	Status        string            `json:"status"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
}

// NewBooking maps a booking.
func NewBooking(b storage.Booking) Booking {
	return Booking{
		ID:            b.ID,
		ProviderID:    b.ProviderID,
		Category:      b.CategoryKey,
		CustomerName:  b.CustomerName,
		CustomerEmail: b.CustomerEmail,
		CustomerPhone: b.CustomerPhone,
		Answers:       b.Answers,
		BookingDate:   b.BookingDate,
		Notes:         b.Notes,
		Status:        string(b.Status),
		CreatedAt:     b.CreatedAt,
		UpdatedAt:     b.UpdatedAt,
	}
}

// Application is a business application.
type Application struct {
	ID            string     `json:"id"`
	FullName      string     `json:"full_name"`
	BusinessName  string     `json:"business_name"`
	Email         string     `json:"email"`
	Phone         string     `json:"phone,omitempty"`
	Category      string     `json:"category"`
	Challenge     string     `json:"challenge,omitempty"`
	TierRequested string     `json:"tier_requested"`
	Status        string     `json:"status"`
	DecisionNote  string     `json:"decision_note,omitempty"`
	ProviderID    string     `json:"provider_id,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	DecidedAt     *time.Time `json:"decided_at,omitempty"`
}

// NewApplication maps an application.
func NewApplication(a storage.Application) Application {
	return Application{
		ID:            a.ID,
		FullName:      a.FullName,
		BusinessName:  a.BusinessName,
		Email:         a.Email,
		Phone:         a.Phone,
		Category:      a.Category,
		Challenge:     a.Challenge,
		TierRequested: string(a.TierRequested),
		Status:        string(a.Status),
		DecisionNote:  a.DecisionNote,
		ProviderID:    a.ProviderID,
		CreatedAt:     a.CreatedAt,
		DecidedAt:     a.DecidedAt,
	}
}

// ChangeRequest is a pending or decided listing edit.
type ChangeRequest struct {
	ID             string         `json:"id"`
	ProviderID     string         `json:"provider_id"`
	OwnerUserID    string         `json:"owner_user_id"`
	Type           string         `json:"type"`
	Changes        map[string]any `json:"changes,omitempty"`
	Reason         string         `json:"reason,omitempty"`
	Status         string         `json:"status"`
	DecisionReason string         `json:"decision_reason,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
	DecidedAt      *time.Time     `json:"decided_at,omitempty"`
}

// NewChangeRequest maps a change request.
func NewChangeRequest(c storage.ChangeRequest) ChangeRequest {
	return ChangeRequest{
		ID:             c.ID,
		ProviderID:     c.ProviderID,
		OwnerUserID:    c.OwnerUserID,
		Type:           string(c.Type),
		Changes:        c.Changes,
		Reason:         c.Reason,
		Status:         string(c.Status),
		DecisionReason: c.DecisionReason,
		CreatedAt:      c.CreatedAt,
		DecidedAt:      c.DecidedAt,
	}
}

// ContactLead is a contact form inquiry.
type ContactLead struct {
	ID           string    `json:"id"`
	BusinessName string    `json:"business_name"`
	ContactEmail string    `json:"contact_email"`
	Details      string    `json:"details,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// NewContactLead maps a lead.
func NewContactLead(l storage.ContactLead) ContactLead {
	return ContactLead{ID: l.ID, BusinessName: l.BusinessName, ContactEmail: l.ContactEmail, Details: l.Details, CreatedAt: l.CreatedAt}
}

// Profile is an account profile.
type Profile struct {
	ID                       string     `json:"id"`
	Email                    string     `json:"email"`
	Name                     string     `json:"name,omitempty"`
	Role                     string     `json:"role"`
	BusinessName             string     `json:"business_name,omitempty"`
	EmailOptOut              bool       `json:"email_opt_out"`
	NotificationsDismissedAt *time.Time `json:"notifications_dismissed_at,omitempty"`
	CreatedAt                time.Time  `json:"created_at"`
	UpdatedAt                time.Time  `json:"updated_at"`
}

// NewProfile maps a profile.
func NewProfile(p storage.Profile) Profile {
	return Profile{
		ID:                       p.ID,
		Email:                    p.Email,
		Name:                     p.Name,
		Role:                     string(p.Role),
		BusinessName:             p.BusinessName,
		EmailOptOut:              p.EmailOptOut,
		NotificationsDismissedAt: p.NotificationsDismissedAt,
		CreatedAt:                p.CreatedAt,
		UpdatedAt:                p.UpdatedAt,
	}
}

// Session is a signed-in token and its profile.
type Session struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	Profile   Profile   `json:"profile"`
}

// NewSession maps a session.
func NewSession(s accounts.Session) Session {
	return Session{Token: s.Token, ExpiresAt: s.ExpiresAt, Profile: NewProfile(s.Profile)}
}

// AdminVerification reports whether the caller is an admin and how it was decided.
type AdminVerification struct {
	Admin  bool   `json:"admin"`
	Method string `json:"method"`
}

// Post is a blog article.
type Post struct {
	ID        string    `json:"id"`
	Category  string    `json:"category,omitempty"`
	Title     string    `json:"title"`
	Content   string    `json:"content,omitempty"`
	Excerpt   string    `json:"excerpt"`
	Images    []string  `json:"images"`
	Published bool      `json:"published"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewPost maps a post including its body.
func NewPost(p storage.BlogPost) Post {
	return Post{
		ID:        p.ID,
		Category:  p.CategoryKey,
		Title:     p.Title,
		Content:   p.Content,
		Excerpt:   p.Excerpt,
		Images:    nonNil(p.Images),
		Published: p.Published,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

// NewPostSummary maps a post without its body for listings.
func NewPostSummary(p storage.BlogPost) Post {
	post := NewPost(p)
	post.Content = ""
	return post
}

// Event is a calendar entry.
type Event struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	StartAt     time.Time  `json:"start_at"`
	EndAt       *time.Time `json:"end_at,omitempty"`
	Location    string     `json:"location,omitempty"`
	Address     string     `json:"address,omitempty"`
	Category    string     `json:"category,omitempty"`
	URL         string     `json:"url,omitempty"`
	Source      string     `json:"source"`
	Approved    bool       `json:"approved"`
	CreatedAt   time.Time  `json:"created_at"`
}

// NewEvent maps an event.
func NewEvent(e storage.Event) Event {
	return Event{
		ID:          e.ID,
		Title:       e.Title,
		Description: e.Description,
		StartAt:     e.StartAt,
		EndAt:       e.EndAt,
		Location:    e.Location,
		Address:     e.Address,
		Category:    e.Category,
		URL:         e.URL,
		Source:      string(e.Source),
		Approved:    e.Approved,
		CreatedAt:   e.CreatedAt,
	}
}

// Integration is a connected external calendar.
type Integration struct {
	ID          string    `json:"id"`
	ProviderID  string    `json:"provider_id"`
	Kind        string    `json:"kind"`
	CalendarRef string    `json:"calendar_ref"`
	ConnectedAt time.Time `json:"connected_at"`
}

// NewIntegration maps an integration.
func NewIntegration(i storage.Integration) Integration {
	return Integration{ID: i.ID, ProviderID: i.ProviderID, Kind: string(i.Kind), CalendarRef: i.CalendarRef, ConnectedAt: i.ConnectedAt}
}

// Notification is a rendered business notification.
type Notification struct {
	ID         string    `json:"id"`
	Kind       string    `json:"kind"`
	Message    string    `json:"message"`
	ProviderID string    `json:"provider_id,omitempty"`
	At         time.Time `json:"at"`
}

// NewNotification maps a notification.
func NewNotification(n notifications.Notification) Notification {
	return Notification{ID: n.ID, Kind: n.Kind, Message: n.Message, ProviderID: n.ProviderID, At: n.At}
}

// BusinessDashboard is the business portal overview.
type BusinessDashboard struct {
	Providers      []Provider      `json:"providers"`
	Bookings       []Booking       `json:"bookings"`
	ChangeRequests []ChangeRequest `json:"change_requests"`
	Notifications  []Notification  `json:"notifications"`
}

// NewBusinessDashboard maps a business dashboard.
func NewBusinessDashboard(d dashboard.Business) BusinessDashboard {
	return BusinessDashboard{
		Providers:      List(d.Providers, NewProvider),
		Bookings:       List(d.Bookings, NewBooking),
		ChangeRequests: List(d.ChangeRequests, NewChangeRequest),
		Notifications:  List(d.Notifications, NewNotification),
	}
}

// BusinessDetails is the admin view of one account.
type BusinessDetails struct {
	Profile      Profile       `json:"profile"`
	Providers    []Provider    `json:"providers"`
	Applications []Application `json:"applications"`
}

// NewBusinessDetails maps account details.
func NewBusinessDetails(d dashboard.BusinessDetails) BusinessDetails {
	return BusinessDetails{
		Profile:      NewProfile(d.Profile),
		Providers:    List(d.Providers, NewProvider),
		Applications: List(d.Applications, NewApplication),
	}
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
