package domain

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/bonitaforward/bonita-forward/internal/services/directory/access"
	"github.com/bonitaforward/bonita-forward/internal/services/directory/catalog"
	"github.com/bonitaforward/bonita-forward/internal/services/directory/category"
	"github.com/bonitaforward/bonita-forward/internal/services/directory/content"
	"github.com/bonitaforward/bonita-forward/internal/services/directory/storage"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Catalog is the provider directory read surface used by MCP tools.
type Catalog interface {
	ListProviders(ctx context.Context, in catalog.ListInput) (storage.Page[storage.Provider], error)
	GetProvider(ctx context.Context, actor access.Actor, providerID string) (storage.Provider, error)
	Recommend(ctx context.Context, in catalog.RecommendInput) ([]catalog.Recommendation, error)
}

// Events is the community calendar read surface used by MCP tools.
type Events interface {
	ListEvents(ctx context.Context, r content.EventRange) (storage.Page[storage.Event], error)
}

// ProviderSearchTool defines the directory search tool.
func ProviderSearchTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "search_providers",
		Description: "Searches published local businesses by category and free text",
	}
}

// ProviderSearchHandler lists published providers.
func ProviderSearchHandler(directory Catalog) mcp.ToolHandlerFor[ProviderSearchInput, ProviderSearchResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input ProviderSearchInput) (*mcp.CallToolResult, ProviderSearchResult, error) {
		if directory == nil {
			return nil, ProviderSearchResult{}, fmt.Errorf("provider directory is not configured")
		}
		runCtx, cancel := context.WithTimeout(ctx, toolCallTimeout)
		defer cancel()

		page, err := directory.ListProviders(runCtx, catalog.ListInput{
			Category:     input.Category,
			Query:        input.Query,
			FeaturedOnly: input.FeaturedOnly,
			PageSize:     input.PageSize,
			PageToken:    input.PageToken,
		})
		if err != nil {
			return nil, ProviderSearchResult{}, fmt.Errorf("provider search failed: %w", err)
		}
		result := ProviderSearchResult{
			Providers:     make([]ProviderEntry, 0, len(page.Items)),
			NextPageToken: page.NextPageToken,
		}
		for _, provider := range page.Items {
			result.Providers = append(result.Providers, providerEntry(provider))
		}
		return nil, result, nil
	}
}

// ProviderGetTool defines the provider detail tool.
func ProviderGetTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "get_provider",
		Description: "Returns one published business listing",
	}
}

// ProviderGetHandler reads one published provider as an anonymous visitor.
func ProviderGetHandler(directory Catalog) mcp.ToolHandlerFor[ProviderGetInput, ProviderGetResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input ProviderGetInput) (*mcp.CallToolResult, ProviderGetResult, error) {
		if directory == nil {
			return nil, ProviderGetResult{}, fmt.Errorf("provider directory is not configured")
		}
		providerID := strings.TrimSpace(input.ProviderID)
		if providerID == "" {
			return nil, ProviderGetResult{}, fmt.Errorf("provider_id is required")
		}
		runCtx, cancel := context.WithTimeout(ctx, toolCallTimeout)
		defer cancel()

		provider, err := directory.GetProvider(runCtx, access.Actor{}, providerID)
		if err != nil {
			return nil, ProviderGetResult{}, fmt.Errorf("provider get failed: %w", err)
		}
		return nil, ProviderGetResult{Provider: providerEntry(provider)}, nil
	}
}

// RecommendTool defines the funnel recommendation tool.
func RecommendTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "recommend_providers",
		Description: "Ranks providers in a category against funnel answers",
	}
}

// RecommendHandler ranks providers for the supplied answers.
func RecommendHandler(directory Catalog) mcp.ToolHandlerFor[RecommendInput, RecommendResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input RecommendInput) (*mcp.CallToolResult, RecommendResult, error) {
		if directory == nil {
			return nil, RecommendResult{}, fmt.Errorf("provider directory is not configured")
		}
		runCtx, cancel := context.WithTimeout(ctx, toolCallTimeout)
		defer cancel()

		ranked, err := directory.Recommend(runCtx, catalog.RecommendInput{
			Category: input.Category,
			Answers:  input.Answers,
			Limit:    input.Limit,
		})
		if err != nil {
			return nil, RecommendResult{}, fmt.Errorf("recommend failed: %w", err)
		}
		result := RecommendResult{Recommendations: make([]RecommendationEntry, 0, len(ranked))}
		for _, rec := range ranked {
			result.Recommendations = append(result.Recommendations, RecommendationEntry{
				Provider: providerEntry(rec.Provider),
				Score:    rec.Score,
			})
		}
		return nil, result, nil
	}
}

// EventListTool defines the calendar listing tool.
func EventListTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "list_upcoming_events",
		Description: "Lists approved community calendar events",
	}
}

// EventListHandler lists approved events in a time range.
func EventListHandler(events Events) mcp.ToolHandlerFor[EventListInput, EventListResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input EventListInput) (*mcp.CallToolResult, EventListResult, error) {
		if events == nil {
			return nil, EventListResult{}, fmt.Errorf("event calendar is not configured")
		}
		from, err := parseTime("from", input.From)
		if err != nil {
			return nil, EventListResult{}, err
		}
		to, err := parseTime("to", input.To)
		if err != nil {
			return nil, EventListResult{}, err
		}
		runCtx, cancel := context.WithTimeout(ctx, toolCallTimeout)
		defer cancel()

		page, err := events.ListEvents(runCtx, content.EventRange{
			From:      from,
			To:        to,
			PageSize:  input.PageSize,
			PageToken: input.PageToken,
		})
		if err != nil {
			return nil, EventListResult{}, fmt.Errorf("event list failed: %w", err)
		}
		result := EventListResult{
			Events:        make([]EventEntry, 0, len(page.Items)),
			NextPageToken: page.NextPageToken,
		}
		for _, event := range page.Items {
			result.Events = append(result.Events, eventEntry(event))
		}
		return nil, result, nil
	}
}

func parseTime(field, raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	parsed, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, fmt.Errorf("%s must be an RFC3339 timestamp: %w", field, err)
	}
	return &parsed, nil
}

// CategoryListResource defines the readable list of directory categories.
func CategoryListResource() *mcp.Resource {
	return &mcp.Resource{
		Name:        "category_list",
		Title:       "Categories",
		Description: "Directory sections providers can be listed under",
		MIMEType:    "application/json",
		URI:         "categories://list",
	}
}

// CategoryListResourceHandler returns the fixed category list.
func CategoryListResourceHandler() mcp.ResourceHandler {
	return func(_ context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		uri := CategoryListResource().URI
		if req != nil && req.Params != nil && req.Params.URI != "" {
			uri = req.Params.URI
		}
		entries := make([]CategoryEntry, 0, len(category.All()))
		for _, c := range category.All() {
			entries = append(entries, CategoryEntry{Key: c.Key, Name: c.Name})
		}
		data, err := json.MarshalIndent(map[string][]CategoryEntry{"categories": entries}, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("marshal category list: %w", err)
		}
		return &mcp.ReadResourceResult{
			Contents: []*mcp.ResourceContents{
				{URI: uri, MIMEType: "application/json", Text: string(data)},
			},
		}, nil
	}
}
