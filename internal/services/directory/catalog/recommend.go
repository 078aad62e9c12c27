package catalog

import (
	"cmp"
	"context"
	"slices"
	"strings"

	"github.com/bonitaforward/bonita-forward/internal/services/directory/category"
	"github.com/bonitaforward/bonita-forward/internal/services/directory/storage"
)

const (
	defaultRecommendLimit = 3
	maxRecommendLimit     = 10
)

// RecommendInput is a funnel questionnaire for one category.
type RecommendInput struct {
	Category string            `json:"category"`
	Answers  map[string]string `json:"answers"`
	Limit    int               `json:"limit"`
}

// Recommendation is a ranked provider and its answer score.
type Recommendation struct {
	Provider storage.Provider
	Score    int
}

// Recommend ranks published providers in the category against the funnel answers.
func (s *Service) Recommend(ctx context.Context, in RecommendInput) ([]Recommendation, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	key, err := category.Require(in.Category)
	if err != nil {
		return nil, err
	}
	candidates, err := s.providers.ListProviders(ctx, storage.ProviderQuery{
		CategoryKey:   key,
		PublishedOnly: true,
	})
	if err != nil {
		return nil, err
	}
	return Rank(candidates.Items, in.Answers, in.Limit), nil
}

// Rank scores providers against answers and returns the best limit of them.
// Featured providers come first, then higher scores, then higher ratings
// (unrated last), then names.
func Rank(providers []storage.Provider, answers map[string]string, limit int) []Recommendation {
	switch {
	case limit <= 0:
		limit = defaultRecommendLimit
	case limit > maxRecommendLimit:
		limit = maxRecommendLimit
	}
	values := answerValues(answers)
	ranked := make([]Recommendation, 0, len(providers))
	for _, provider := range providers {
		ranked = append(ranked, Recommendation{Provider: provider, Score: score(provider.Tags, values)})
	}
	slices.SortStableFunc(ranked, compareRecommendations)
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

func compareRecommendations(a, b Recommendation) int {
	if a.Provider.Featured != b.Provider.Featured {
		if a.Provider.Featured {
			return -1
		}
		return 1
	}
	if c := cmp.Compare(b.Score, a.Score); c != 0 {
		return c
	}
	if c := compareRating(a.Provider.Rating, b.Provider.Rating); c != 0 {
		return c
	}
	if c := cmp.Compare(strings.ToLower(a.Provider.Name), strings.ToLower(b.Provider.Name)); c != 0 {
		return c
	}
	return cmp.Compare(a.Provider.ID, b.Provider.ID)
}

// compareRating orders higher ratings first and unrated providers last.
func compareRating(a, b *float64) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	default:
		return cmp.Compare(*b, *a)
	}
}

func answerValues(answers map[string]string) []string {
	var values []string
	for _, answer := range answers {
		for _, part := range strings.Split(answer, ",") {
			part = strings.ToLower(strings.TrimSpace(part))
			if part != "" {
				values = append(values, part)
			}
		}
	}
	return values
}

func score(tags []string, values []string) int {
	if len(tags) == 0 || len(values) == 0 {
		return 0
	}
	normalized := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		normalized[strings.ToLower(strings.TrimSpace(tag))] = struct{}{}
	}
	total := 0
	for _, value := range values {
		if _, ok := normalized[value]; ok {
			total++
		}
	}
	return total
}
