package seed

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bonitaforward/bonita-forward/internal/services/directory/accounts"
	"github.com/bonitaforward/bonita-forward/internal/services/directory/catalog"
	"github.com/bonitaforward/bonita-forward/internal/services/directory/content"
	"github.com/bonitaforward/bonita-forward/internal/services/directory/storage"
	"github.com/bonitaforward/bonita-forward/internal/services/directory/storage/sqlite"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const sampleManifest = `
admin:
  email: admin@bonitaforward.test
  password: correct-horse
  name: Back Office
providers:
  - name: Bonita Bakery
    category: restaurants-cafes
    tags: [bakery, coffee]
    rating: 4.5
    published: true
    featured: true
  - name: Fixit Plumbing
    category: home-services
    published: true
    booking_enabled: true
    booking_type: appointment
posts:
  - title: Welcome to Bonita Forward
    category: restaurants-cafes
    content: "<p>Hello <b>neighbors</b></p>"
    published: true
events:
  - title: Farmers market
    start_at: 2030-05-02T16:00:00Z
    location: Bonita Plaza
`

func newDeps(t *testing.T) (Deps, *sqlite.Store) {
	t.Helper()
	store, err := sqlite.Open(context.Background(), filepath.Join(t.TempDir(), "seed.db"), zap.NewNop())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	tokens, err := accounts.EphemeralTokens()
	if err != nil {
		t.Fatalf("tokens: %v", err)
	}
	return Deps{
		Accounts:  accounts.NewService(store, accounts.Config{Tokens: tokens, BcryptCost: bcrypt.MinCost}),
		Providers: catalog.NewService(store),
		Content:   content.NewService(store),
	}, store
}

func TestDecodeManifest(t *testing.T) {
	manifest, err := DecodeManifest(strings.NewReader(sampleManifest))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if manifest.Admin == nil || manifest.Admin.Email != "admin@bonitaforward.test" {
		t.Fatalf("admin = %+v", manifest.Admin)
	}
	if len(manifest.Providers) != 2 || manifest.Providers[0].Rating == nil || *manifest.Providers[0].Rating != 4.5 {
		t.Fatalf("providers = %+v", manifest.Providers)
	}
	if !manifest.Providers[1].BookingEnabled || manifest.Providers[1].BookingType != "appointment" {
		t.Fatalf("provider booking = %+v", manifest.Providers[1])
	}
	if len(manifest.Events) != 1 || manifest.Events[0].StartAt.Year() != 2030 {
		t.Fatalf("events = %+v", manifest.Events)
	}
}

func TestDecodeManifestRejectsUnknownKeys(t *testing.T) {
	_, err := DecodeManifest(strings.NewReader("providers:\n  - name: X\n    colour: red\n"))
	if err == nil {
		t.Fatal("expected error for unknown key")
	}
}

func TestDecodeManifestEmpty(t *testing.T) {
	manifest, err := DecodeManifest(strings.NewReader(""))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if manifest.Admin != nil || len(manifest.Providers) != 0 {
		t.Fatalf("manifest = %+v", manifest)
	}
}

func TestValidateManifest(t *testing.T) {
	manifest := Manifest{
		Admin: &ManifestAdmin{},
		Providers: []ManifestProvider{
			{Name: "A", Category: "home-services"},
			{Name: "a", Category: "home-services"},
			{Name: "B", Category: "spaceships"},
			{Name: ""},
		},
		Posts:  []ManifestPost{{}},
		Events: []ManifestEvent{{Title: "No start"}},
	}
	err := ValidateManifest(manifest)
	if err == nil {
		t.Fatal("expected validation error")
	}
	for _, want := range []string{
		"admin.email is required",
		`providers[1].name "a" is duplicated`,
		`providers[2].category "spaceships" is unknown`,
		"providers[3].name is required",
		"posts[0].title is required",
		"events[0].start_at is required",
	} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q missing %q", err.Error(), want)
		}
	}
}

func TestRunIsIdempotent(t *testing.T) {
	deps, store := newDeps(t)
	manifest, err := DecodeManifest(strings.NewReader(sampleManifest))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	var out bytes.Buffer
	runner := NewRunner(deps, true, &out)

	first, err := runner.Run(context.Background(), manifest)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	want := Report{Admin: "admin@bonitaforward.test", ProvidersCreated: 2, PostsCreated: 1, EventsCreated: 1}
	if first != want {
		t.Fatalf("first report = %+v, want %+v", first, want)
	}
	if !strings.Contains(out.String(), `provider "Bonita Bakery" created`) {
		t.Errorf("verbose output missing provider line: %s", out.String())
	}

	second, err := runner.Run(context.Background(), manifest)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	want = Report{Admin: "admin@bonitaforward.test", ProvidersSkipped: 2, PostsSkipped: 1, EventsSkipped: 1}
	if second != want {
		t.Fatalf("second report = %+v, want %+v", second, want)
	}

	user, err := store.GetUserByEmail(context.Background(), "admin@bonitaforward.test")
	if err != nil {
		t.Fatalf("get admin user: %v", err)
	}
	profile, err := store.GetProfile(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("get admin profile: %v", err)
	}
	if profile.Role != storage.RoleAdmin {
		t.Fatalf("admin role = %q", profile.Role)
	}
}

func TestRunRequiresServices(t *testing.T) {
	if _, err := NewRunner(Deps{}, false, nil).Run(context.Background(), Manifest{}); err == nil {
		t.Fatal("expected error without services")
	}
}

func TestBundledFixtureIsValid(t *testing.T) {
	manifest, err := LoadManifest(filepath.Join("fixtures", "directory.yaml"))
	if err != nil {
		t.Fatalf("load fixture: %v", err)
	}
	if err := ValidateManifest(manifest); err != nil {
		t.Fatalf("validate fixture: %v", err)
	}
	if len(manifest.Providers) == 0 || len(manifest.Posts) == 0 || len(manifest.Events) == 0 {
		t.Fatalf("fixture is missing sections: %+v", manifest)
	}
}
