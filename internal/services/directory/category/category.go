// Package category lists the directory's fixed provider categories.
package category

import (
	"strings"

	apperrors "github.com/bonitaforward/bonita-forward/internal/platform/errors"
)

// Category is one directory section.
type Category struct {
	Key  string
	Name string
}

const (
	RestaurantsCafes     = "restaurants-cafes"
	HomeServices         = "home-services"
	HealthWellness       = "health-wellness"
	RealEstate           = "real-estate"
	ProfessionalServices = "professional-services"
)

var all = []Category{
	{Key: RestaurantsCafes, Name: "Restaurants & Cafés"},
	{Key: HomeServices, Name: "Home Services"},
	{Key: HealthWellness, Name: "Health & Wellness"},
	{Key: RealEstate, Name: "Real Estate"},
	{Key: ProfessionalServices, Name: "Professional Services"},
}

// All returns the categories in display order.
func All() []Category {
	return append([]Category(nil), all...)
}

// Normalize lowercases and trims a category key.
func Normalize(key string) string {
	return strings.ToLower(strings.TrimSpace(key))
}

// Valid reports whether key names a known category.
func Valid(key string) bool {
	key = Normalize(key)
	for _, c := range all {
		if c.Key == key {
			return true
		}
	}
	return false
}

// Require returns the normalized key or a CATEGORY_UNKNOWN error.
func Require(key string) (string, error) {
	normalized := Normalize(key)
	if !Valid(normalized) {
		return "", apperrors.WithMetadata(apperrors.CodeCategoryUnknown, "unknown category", map[string]string{"Category": key})
	}
	return normalized, nil
}
