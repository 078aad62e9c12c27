package domain

import (
	"time"

	"github.com/bonitaforward/bonita-forward/internal/services/directory/storage"
)

// ProviderSearchInput represents the MCP tool input for a directory search.
type ProviderSearchInput struct {
	Category     string `json:"category,omitempty" jsonschema:"category key such as restaurants-cafes or home-services"`
	Query        string `json:"query,omitempty" jsonschema:"free text matched against name, description and tags"`
	FeaturedOnly bool   `json:"featured_only,omitempty" jsonschema:"only return featured members"`
	PageSize     int    `json:"page_size,omitempty" jsonschema:"maximum providers to return"`
	PageToken    string `json:"page_token,omitempty" jsonschema:"token from a previous page"`
}

// ProviderSearchResult represents the MCP tool output for a directory search.
type ProviderSearchResult struct {
	Providers     []ProviderEntry `json:"providers" jsonschema:"matching published providers, featured first"`
	NextPageToken string          `json:"next_page_token,omitempty" jsonschema:"token for the next page"`
}

// ProviderGetInput represents the MCP tool input for a single provider.
type ProviderGetInput struct {
	ProviderID string `json:"provider_id" jsonschema:"provider identifier"`
}

// ProviderGetResult represents the MCP tool output for a single provider.
type ProviderGetResult struct {
	Provider ProviderEntry `json:"provider" jsonschema:"the published provider"`
}

// RecommendInput represents the MCP tool input for funnel recommendations.
type RecommendInput struct {
	Category string            `json:"category" jsonschema:"category key"`
	Answers  map[string]string `json:"answers,omitempty" jsonschema:"funnel answers keyed by question"`
	Limit    int               `json:"limit,omitempty" jsonschema:"maximum recommendations"`
}

// RecommendResult represents the MCP tool output for funnel recommendations.
type RecommendResult struct {
	Recommendations []RecommendationEntry `json:"recommendations" jsonschema:"providers ranked by answer match then rating"`
}

// RecommendationEntry is one ranked provider.
type RecommendationEntry struct {
	Provider ProviderEntry `json:"provider"`
	Score    int           `json:"score" jsonschema:"number of matched answers"`
}

// EventListInput represents the MCP tool input for the community calendar.
type EventListInput struct {
	From      string `json:"from,omitempty" jsonschema:"RFC3339 lower bound on start time, defaults to now"`
	To        string `json:"to,omitempty" jsonschema:"RFC3339 upper bound on start time"`
	PageSize  int    `json:"page_size,omitempty" jsonschema:"maximum events to return"`
	PageToken string `json:"page_token,omitempty" jsonschema:"token from a previous page"`
}

// EventListResult represents the MCP tool output for the community calendar.
type EventListResult struct {
	Events        []EventEntry `json:"events" jsonschema:"approved events ordered by start time"`
	NextPageToken string       `json:"next_page_token,omitempty"`
}

// ProviderEntry is the public view of a provider.
type ProviderEntry struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Category       string   `json:"category"`
	Tags           []string `json:"tags,omitempty"`
	Rating         *float64 `json:"rating,omitempty"`
	Phone          string   `json:"phone,omitempty"`
	Email          string   `json:"email,omitempty"`
	Website        string   `json:"website,omitempty"`
	Address        string   `json:"address,omitempty"`
	Description    string   `json:"description,omitempty"`
	Featured       bool     `json:"featured"`
	BookingEnabled bool     `json:"booking_enabled"`
	BookingURL     string   `json:"booking_url,omitempty"`
	CouponCode     string   `json:"coupon_code,omitempty"`
	CouponDiscount string   `json:"coupon_discount,omitempty"`
}

// EventEntry is the public view of a calendar event.
type EventEntry struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	StartAt     string `json:"start_at"`
	EndAt       string `json:"end_at,omitempty"`
	Location    string `json:"location,omitempty"`
	Address     string `json:"address,omitempty"`
	Category    string `json:"category,omitempty"`
	URL         string `json:"url,omitempty"`
}

// CategoryEntry is one directory section.
type CategoryEntry struct {
	Key  string `json:"key"`
	Name string `json:"name"`
}

func providerEntry(p storage.Provider) ProviderEntry {
	return ProviderEntry{
		ID:             p.ID,
		Name:           p.Name,
		Category:       p.CategoryKey,
		Tags:           p.Tags,
		Rating:         p.Rating,
		Phone:          p.Phone,
		Email:          p.Email,
		Website:        p.Website,
		Address:        p.Address,
		Description:    p.Description,
		Featured:       p.Featured,
		BookingEnabled: p.BookingEnabled,
		BookingURL:     p.BookingURL,
		CouponCode:     p.CouponCode,
		CouponDiscount: p.CouponDiscount,
	}
}

func eventEntry(e storage.Event) EventEntry {
	entry := EventEntry{
		ID:          e.ID,
		Title:       e.Title,
		Description: e.Description,
		StartAt:     formatTime(e.StartAt),
		Location:    e.Location,
		Address:     e.Address,
		Category:    e.Category,
		URL:         e.URL,
	}
	if e.EndAt != nil {
		entry.EndAt = formatTime(*e.EndAt)
	}
	return entry
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
