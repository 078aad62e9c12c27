package seed

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/bonitaforward/bonita-forward/internal/services/directory/category"
	"gopkg.in/yaml.v3"
)

// Manifest defines a seed dataset.
type Manifest struct {
	Admin     *ManifestAdmin     `yaml:"admin"`
	Providers []ManifestProvider `yaml:"providers"`
	Posts     []ManifestPost     `yaml:"posts"`
	Events    []ManifestEvent    `yaml:"events"`
}

// ManifestAdmin defines the back-office account created by the seed.
type ManifestAdmin struct {
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
}

// ManifestProvider defines one listing.
type ManifestProvider struct {
	Name                string   `yaml:"name"`
	Category            string   `yaml:"category"`
	Tags                []string `yaml:"tags"`
	Rating              *float64 `yaml:"rating"`
	Phone               string   `yaml:"phone"`
	Email               string   `yaml:"email"`
	Website             string   `yaml:"website"`
	Address             string   `yaml:"address"`
	Description         string   `yaml:"description"`
	Images              []string `yaml:"images"`
	Badges              []string `yaml:"badges"`
	Published           bool     `yaml:"published"`
	Featured            bool     `yaml:"featured"`
	BookingEnabled      bool     `yaml:"booking_enabled"`
	BookingType         string   `yaml:"booking_type"`
	BookingInstructions string   `yaml:"booking_instructions"`
	BookingURL          string   `yaml:"booking_url"`
	CouponCode          string   `yaml:"coupon_code"`
	CouponDiscount      string   `yaml:"coupon_discount"`
	CouponDescription   string   `yaml:"coupon_description"`
}

// ManifestPost defines one blog article.
type ManifestPost struct {
	Title     string   `yaml:"title"`
	Category  string   `yaml:"category"`
	Content   string   `yaml:"content"`
	Images    []string `yaml:"images"`
	Published bool     `yaml:"published"`
}

// ManifestEvent defines one approved calendar event.
type ManifestEvent struct {
	Title       string     `yaml:"title"`
	Description string     `yaml:"description"`
	StartAt     time.Time  `yaml:"start_at"`
	EndAt       *time.Time `yaml:"end_at"`
	Location    string     `yaml:"location"`
	Address     string     `yaml:"address"`
	Category    string     `yaml:"category"`
	URL         string     `yaml:"url"`
}

// LoadManifest reads a manifest file.
func LoadManifest(path string) (Manifest, error) {
	file, err := os.Open(path)
	if err != nil {
		return Manifest{}, fmt.Errorf("open manifest: %w", err)
	}
	defer file.Close()
	return DecodeManifest(file)
}

// DecodeManifest parses YAML and rejects unknown keys.
func DecodeManifest(r io.Reader) (Manifest, error) {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	var manifest Manifest
	if err := decoder.Decode(&manifest); err != nil {
		if errors.Is(err, io.EOF) {
			return Manifest{}, nil
		}
		return Manifest{}, fmt.Errorf("decode manifest: %w", err)
	}
	return manifest, nil
}

// ValidateManifest checks the fields the services would otherwise reject
// partway through a run.
func ValidateManifest(manifest Manifest) error {
	var problems []string
	if admin := manifest.Admin; admin != nil && strings.TrimSpace(admin.Email) == "" {
		problems = append(problems, "admin.email is required")
	}
	providerNames := make(map[string]struct{}, len(manifest.Providers))
	for idx, provider := range manifest.Providers {
		name := strings.TrimSpace(provider.Name)
		if name == "" {
			problems = append(problems, fmt.Sprintf("providers[%d].name is required", idx))
			continue
		}
		if _, dup := providerNames[strings.ToLower(name)]; dup {
			problems = append(problems, fmt.Sprintf("providers[%d].name %q is duplicated", idx, name))
		}
		providerNames[strings.ToLower(name)] = struct{}{}
		if !category.Valid(provider.Category) {
			problems = append(problems, fmt.Sprintf("providers[%d].category %q is unknown", idx, provider.Category))
		}
	}
	for idx, post := range manifest.Posts {
		if strings.TrimSpace(post.Title) == "" {
			problems = append(problems, fmt.Sprintf("posts[%d].title is required", idx))
		}
	}
	for idx, event := range manifest.Events {
		if strings.TrimSpace(event.Title) == "" {
			problems = append(problems, fmt.Sprintf("events[%d].title is required", idx))
		}
		if event.StartAt.IsZero() {
			problems = append(problems, fmt.Sprintf("events[%d].start_at is required", idx))
		}
	}
	if len(problems) > 0 {
		return fmt.Errorf("invalid manifest: %s", strings.Join(problems, "; "))
	}
	return nil
}
