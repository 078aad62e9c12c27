package category

import (
	"testing"

	apperrors "github.com/bonitaforward/bonita-forward/internal/platform/errors"
)

func TestRequire(t *testing.T) {
	t.Parallel()

	got, err := Require("  Home-Services ")
	if err != nil {
		t.Fatalf("Require() error = %v", err)
	}
	if got != HomeServices {
		t.Fatalf("Require() = %q, want %q", got, HomeServices)
	}

	_, err = Require("pets")
	if apperrors.CodeOf(err) != apperrors.CodeCategoryUnknown {
		t.Fatalf("code = %q, want %q", apperrors.CodeOf(err), apperrors.CodeCategoryUnknown)
	}
	if apperrors.MetadataOf(err)["Category"] != "pets" {
		t.Fatalf("metadata = %v", apperrors.MetadataOf(err))
	}
}

func TestAllReturnsCopy(t *testing.T) {
	t.Parallel()

	categories := All()
	if len(categories) != 5 {
		t.Fatalf("categories = %d, want 5", len(categories))
	}
	categories[0].Key = "mutated"
	if !Valid(RestaurantsCafes) {
		t.Fatal("mutating All() result changed package state")
	}
}
