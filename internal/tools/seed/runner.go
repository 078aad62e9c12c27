package seed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/bonitaforward/bonita-forward/internal/services/directory/access"
	"github.com/bonitaforward/bonita-forward/internal/services/directory/accounts"
	"github.com/bonitaforward/bonita-forward/internal/services/directory/catalog"
	"github.com/bonitaforward/bonita-forward/internal/services/directory/content"
	"github.com/bonitaforward/bonita-forward/internal/services/directory/storage"
)

const listPageSize = 100

// Accounts creates the admin account.
type Accounts interface {
	SignUp(ctx context.Context, in accounts.SignUpInput) (accounts.Session, error)
	SetRoleByEmail(ctx context.Context, email string, role storage.Role) (storage.Profile, error)
}

// Providers creates listings.
type Providers interface {
	AdminListProviders(ctx context.Context, in catalog.AdminListInput) (storage.Page[storage.Provider], error)
	CreateProvider(ctx context.Context, in catalog.ProviderInput) (storage.Provider, error)
}

// Content creates blog posts and calendar events.
type Content interface {
	AdminListPosts(ctx context.Context, pageSize int, pageToken string) (storage.Page[storage.BlogPost], error)
	CreatePost(ctx context.Context, in content.PostInput) (storage.BlogPost, error)
	ListEvents(ctx context.Context, r content.EventRange) (storage.Page[storage.Event], error)
	CreateEvent(ctx context.Context, actor access.Actor, in content.EventInput) (storage.Event, error)
}

// Deps are the services a run writes through.
type Deps struct {
	Accounts  Accounts
	Providers Providers
	Content   Content
}

// Report counts what a run created and skipped.
type Report struct {
	Admin            string
	ProvidersCreated int
	ProvidersSkipped int
	PostsCreated     int
	PostsSkipped     int
	EventsCreated    int
	EventsSkipped    int
}

// Runner applies manifests.
type Runner struct {
	deps    Deps
	verbose bool
	out     io.Writer
}

// NewRunner returns a runner that logs progress to out when verbose.
func NewRunner(deps Deps, verbose bool, out io.Writer) *Runner {
	if out == nil {
		out = io.Discard
	}
	return &Runner{deps: deps, verbose: verbose, out: out}
}

// Run validates and applies one manifest.
func (r *Runner) Run(ctx context.Context, manifest Manifest) (Report, error) {
	if r == nil {
		return Report{}, errors.New("runner is required")
	}
	if r.deps.Accounts == nil || r.deps.Providers == nil || r.deps.Content == nil {
		return Report{}, errors.New("seed services are required")
	}
	if err := ValidateManifest(manifest); err != nil {
		return Report{}, err
	}

	var report Report
	actor := access.Actor{Admin: true, Role: storage.RoleAdmin}
	if manifest.Admin != nil {
		profile, err := r.seedAdmin(ctx, *manifest.Admin)
		if err != nil {
			return report, err
		}
		report.Admin = profile.Email
		actor.UserID = profile.ID
		actor.Email = profile.Email
	}
	if err := r.seedProviders(ctx, manifest.Providers, &report); err != nil {
		return report, err
	}
	if err := r.seedPosts(ctx, manifest.Posts, &report); err != nil {
		return report, err
	}
	if err := r.seedEvents(ctx, actor, manifest.Events, &report); err != nil {
		return report, err
	}
	return report, nil
}

func (r *Runner) seedAdmin(ctx context.Context, admin ManifestAdmin) (storage.Profile, error) {
	_, err := r.deps.Accounts.SignUp(ctx, accounts.SignUpInput{
		Email:    admin.Email,
		Password: admin.Password,
		Name:     admin.Name,
	})
	switch {
	case errors.Is(err, accounts.ErrEmailTaken):
		r.logf("admin %s already registered", admin.Email)
	case err != nil:
		return storage.Profile{}, fmt.Errorf("create admin %s: %w", admin.Email, err)
	}
	profile, err := r.deps.Accounts.SetRoleByEmail(ctx, admin.Email, storage.RoleAdmin)
	if err != nil {
		return storage.Profile{}, fmt.Errorf("grant admin %s: %w", admin.Email, err)
	}
	r.logf("admin %s ready", profile.Email)
	return profile, nil
}

func (r *Runner) seedProviders(ctx context.Context, providers []ManifestProvider, report *Report) error {
	for _, provider := range providers {
		name := strings.TrimSpace(provider.Name)
		existing, err := r.deps.Providers.AdminListProviders(ctx, catalog.AdminListInput{
			Filter:   "name = " + strconv.Quote(name),
			PageSize: 1,
		})
		if err != nil {
			return fmt.Errorf("look up provider %q: %w", name, err)
		}
		if len(existing.Items) > 0 {
			report.ProvidersSkipped++
			r.logf("provider %q exists", name)
			continue
		}
		created, err := r.deps.Providers.CreateProvider(ctx, providerInput(provider))
		if err != nil {
			return fmt.Errorf("create provider %q: %w", name, err)
		}
		report.ProvidersCreated++
		r.logf("provider %q created as %s", name, created.ID)
	}
	return nil
}

func (r *Runner) seedPosts(ctx context.Context, posts []ManifestPost, report *Report) error {
	if len(posts) == 0 {
		return nil
	}
	titles, err := r.postTitles(ctx)
	if err != nil {
		return err
	}
	for _, post := range posts {
		title := strings.TrimSpace(post.Title)
		if _, ok := titles[strings.ToLower(title)]; ok {
			report.PostsSkipped++
			r.logf("post %q exists", title)
			continue
		}
		if _, err := r.deps.Content.CreatePost(ctx, content.PostInput{
			Category:  post.Category,
			Title:     title,
			Content:   post.Content,
			Images:    post.Images,
			Published: post.Published,
		}); err != nil {
			return fmt.Errorf("create post %q: %w", title, err)
		}
		titles[strings.ToLower(title)] = struct{}{}
		report.PostsCreated++
		r.logf("post %q created", title)
	}
	return nil
}

func (r *Runner) postTitles(ctx context.Context) (map[string]struct{}, error) {
	titles := map[string]struct{}{}
	token := ""
	for {
		page, err := r.deps.Content.AdminListPosts(ctx, listPageSize, token)
		if err != nil {
			return nil, fmt.Errorf("list posts: %w", err)
		}
		for _, post := range page.Items {
			titles[strings.ToLower(strings.TrimSpace(post.Title))] = struct{}{}
		}
		if page.NextPageToken == "" {
			return titles, nil
		}
		token = page.NextPageToken
	}
}

func (r *Runner) seedEvents(ctx context.Context, actor access.Actor, events []ManifestEvent, report *Report) error {
	for _, event := range events {
		title := strings.TrimSpace(event.Title)
		exists, err := r.eventExists(ctx, title, event.StartAt)
		if err != nil {
			return err
		}
		if exists {
			report.EventsSkipped++
			r.logf("event %q exists", title)
			continue
		}
		if _, err := r.deps.Content.CreateEvent(ctx, actor, content.EventInput{
			Title:       title,
			Description: event.Description,
			StartAt:     event.StartAt,
			EndAt:       event.EndAt,
			Location:    event.Location,
			Address:     event.Address,
			Category:    event.Category,
			URL:         event.URL,
		}); err != nil {
			return fmt.Errorf("create event %q: %w", title, err)
		}
		report.EventsCreated++
		r.logf("event %q created", title)
	}
	return nil
}

func (r *Runner) eventExists(ctx context.Context, title string, start time.Time) (bool, error) {
	from := start.UTC()
	to := from.Add(time.Second)
	page, err := r.deps.Content.ListEvents(ctx, content.EventRange{From: &from, To: &to, PageSize: listPageSize})
	if err != nil {
		return false, fmt.Errorf("look up event %q: %w", title, err)
	}
	for _, existing := range page.Items {
		if strings.EqualFold(strings.TrimSpace(existing.Title), title) {
			return true, nil
		}
	}
	return false, nil
}

func providerInput(p ManifestProvider) catalog.ProviderInput {
	return catalog.ProviderInput{
		Name:                strings.TrimSpace(p.Name),
		Category:            p.Category,
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
	}
}

func (r *Runner) logf(format string, args ...any) {
	if !r.verbose {
		return
	}
	fmt.Fprintf(r.out, format+"\n", args...)
}
