package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/bonitaforward/bonita-forward/internal/platform/filter"
	"github.com/bonitaforward/bonita-forward/internal/platform/pagination"
	"github.com/bonitaforward/bonita-forward/internal/services/directory/storage"
	"github.com/google/go-cmp/cmp"
)

var baseTime = time.Date(2026, time.April, 2, 15, 0, 0, 0, time.UTC)

func openTempStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(context.Background(), filepath.Join(t.TempDir(), "directory.db"), nil)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Fatalf("close store: %v", err)
		}
	})
	return store
}

func ratingPtr(value float64) *float64 {
	return &value
}

func seedProvider(t *testing.T, store *Store, provider storage.Provider) storage.Provider {
	t.Helper()
	if provider.CategoryKey == "" {
		provider.CategoryKey = "home-services"
	}
	if provider.CreatedAt.IsZero() {
		provider.CreatedAt = baseTime
		provider.UpdatedAt = baseTime
	}
	if err := store.CreateProvider(context.Background(), provider); err != nil {
		t.Fatalf("create provider %s: %v", provider.ID, err)
	}
	return provider
}

func providerIDs(providers []storage.Provider) []string {
	ids := make([]string, 0, len(providers))
	for _, provider := range providers {
		ids = append(ids, provider.ID)
	}
	return ids
}

func TestOpenRequiresPath(t *testing.T) {
	t.Parallel()

	if _, err := Open(context.Background(), " ", nil); err == nil {
		t.Fatal("expected empty path error")
	}
}

func TestOpenIsIdempotentAcrossRestarts(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "directory.db")
	for i := 0; i < 2; i++ {
		store, err := Open(context.Background(), path, nil)
		if err != nil {
			t.Fatalf("open %d: %v", i, err)
		}
		if err := store.Ping(context.Background()); err != nil {
			t.Fatalf("ping %d: %v", i, err)
		}
		if err := store.Close(); err != nil {
			t.Fatalf("close %d: %v", i, err)
		}
	}
}

func TestProviderRoundTrip(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	expires := baseTime.Add(48 * time.Hour)
	input := storage.Provider{
		ID:                "p1",
		Name:              "Bonita Plumbing",
		CategoryKey:       "home-services",
		Tags:              []string{"plumbing", "emergency"},
		Rating:            ratingPtr(4.5),
		Phone:             "239-555-0100",
		Images:            []string{"https://cdn.example/p1.jpg"},
		Badges:            []string{"Verified"},
		Published:         true,
		Featured:          true,
		BookingEnabled:    true,
		BookingType:       "appointment",
		CouponCode:        "SAVE10",
		CouponExpiresAt:   &expires,
		OwnerUserID:       "u1",
		CreatedAt:         baseTime,
		UpdatedAt:         baseTime,
		CouponDiscount:    "10%",
		CouponDescription: "First visit",
	}
	seedProvider(t, store, input)

	got, err := store.GetProvider(context.Background(), "p1")
	if err != nil {
		t.Fatalf("get provider: %v", err)
	}
	if diff := cmp.Diff(input, got); diff != "" {
		t.Fatalf("provider mismatch (-want +got):\n%s", diff)
	}

	got.Name = "Bonita Plumbing & Drains"
	got.OwnerUserID = ""
	got.Rating = nil
	got.UpdatedAt = baseTime.Add(time.Hour)
	if err := store.UpdateProvider(context.Background(), got); err != nil {
		t.Fatalf("update provider: %v", err)
	}
	updated, err := store.GetProvider(context.Background(), "p1")
	if err != nil {
		t.Fatalf("get updated provider: %v", err)
	}
	if updated.Name != got.Name || updated.OwnerUserID != "" || updated.Rating != nil {
		t.Fatalf("updated provider = %+v", updated)
	}

	if err := store.CreateProvider(context.Background(), input); !errors.Is(err, storage.ErrAlreadyExists) {
		t.Fatalf("duplicate create error = %v, want %v", err, storage.ErrAlreadyExists)
	}
	if err := store.DeleteProvider(context.Background(), "p1"); err != nil {
		t.Fatalf("delete provider: %v", err)
	}
	if _, err := store.GetProvider(context.Background(), "p1"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("get deleted error = %v, want %v", err, storage.ErrNotFound)
	}
	if err := store.DeleteProvider(context.Background(), "p1"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("delete missing error = %v, want %v", err, storage.ErrNotFound)
	}
}

func TestListProvidersOrderingAndPaging(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	seedProvider(t, store, storage.Provider{ID: "unrated", Name: "Alpha", Published: true})
	seedProvider(t, store, storage.Provider{ID: "low", Name: "Bravo", Rating: ratingPtr(3.1), Published: true})
	seedProvider(t, store, storage.Provider{ID: "high", Name: "Charlie", Rating: ratingPtr(4.9), Published: true})
	seedProvider(t, store, storage.Provider{ID: "featured", Name: "Zulu", Featured: true, Published: true})
	seedProvider(t, store, storage.Provider{ID: "hidden", Name: "Hidden", Rating: ratingPtr(5), Published: false})
	seedProvider(t, store, storage.Provider{ID: "food", Name: "Taco", CategoryKey: "restaurants-cafes", Published: true, Tags: []string{"mexican"}})

	page, err := store.ListProviders(context.Background(), storage.ProviderQuery{
		PublishedOnly: true,
		CategoryKey:   "home-services",
		Page:          pagination.Page{Size: 3},
	})
	if err != nil {
		t.Fatalf("list providers: %v", err)
	}
	if diff := cmp.Diff([]string{"featured", "high", "low"}, providerIDs(page.Items)); diff != "" {
		t.Fatalf("first page mismatch (-want +got):\n%s", diff)
	}
	if page.NextPageToken == "" {
		t.Fatal("expected next page token")
	}
	offset, err := pagination.DecodeToken(page.NextPageToken)
	if err != nil {
		t.Fatalf("decode token: %v", err)
	}
	next, err := store.ListProviders(context.Background(), storage.ProviderQuery{
		PublishedOnly: true,
		CategoryKey:   "home-services",
		Page:          pagination.Page{Size: 3, Offset: offset},
	})
	if err != nil {
		t.Fatalf("list second page: %v", err)
	}
	if diff := cmp.Diff([]string{"unrated"}, providerIDs(next.Items)); diff != "" {
		t.Fatalf("second page mismatch (-want +got):\n%s", diff)
	}
	if next.NextPageToken != "" {
		t.Fatalf("next token = %q, want empty", next.NextPageToken)
	}

	text, err := store.ListProviders(context.Background(), storage.ProviderQuery{PublishedOnly: true, Text: "MEXICAN"})
	if err != nil {
		t.Fatalf("text search: %v", err)
	}
	if diff := cmp.Diff([]string{"food"}, providerIDs(text.Items)); diff != "" {
		t.Fatalf("text search mismatch (-want +got):\n%s", diff)
	}

	where := filter.SQLCondition{Clause: "published = ?", Params: []any{0}}
	hidden, err := store.ListProviders(context.Background(), storage.ProviderQuery{Where: where})
	if err != nil {
		t.Fatalf("filtered list: %v", err)
	}
	if diff := cmp.Diff([]string{"hidden"}, providerIDs(hidden.Items)); diff != "" {
		t.Fatalf("filtered list mismatch (-want +got):\n%s", diff)
	}
}

func TestListProvidersTextMatchesLiterally(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	seedProvider(t, store, storage.Provider{ID: "tacos", Name: "Taco Stand", Published: true, Tags: []string{"mexican", "late night"}})
	seedProvider(t, store, storage.Provider{ID: "sale", Name: "Corner Shop", Description: "Save 100% today", Published: true, Tags: []string{"grocery"}})
	seedProvider(t, store, storage.Provider{ID: "plain", Name: "Plain", Published: true})

	tests := []struct {
		text string
		want []string
	}{
		{text: "exica", want: []string{"tacos"}},
		{text: "LATE NIGHT", want: []string{"tacos"}},
		{text: "100%", want: []string{"sale"}},
		{text: `"`, want: []string{}},
		{text: ",", want: []string{}},
		{text: "%", want: []string{"sale"}},
		{text: "_", want: []string{}},
		{text: `\`, want: []string{}},
	}
	for _, tc := range tests {
		page, err := store.ListProviders(context.Background(), storage.ProviderQuery{PublishedOnly: true, Text: tc.text})
		if err != nil {
			t.Fatalf("text %q: %v", tc.text, err)
		}
		if diff := cmp.Diff(tc.want, providerIDs(page.Items)); diff != "" {
			t.Fatalf("text %q mismatch (-want +got):\n%s", tc.text, diff)
		}
	}
}

func TestFindProvidersByNameIgnoresCaseAndSpace(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	seedProvider(t, store, storage.Provider{ID: "p1", Name: "Sunset Cafe"})
	seedProvider(t, store, storage.Provider{ID: "p2", Name: "Other"})

	found, err := store.FindProvidersByName(context.Background(), "  sunset CAFE ")
	if err != nil {
		t.Fatalf("find providers: %v", err)
	}
	if diff := cmp.Diff([]string{"p1"}, providerIDs(found)); diff != "" {
		t.Fatalf("found mismatch (-want +got):\n%s", diff)
	}
}

func TestApproveApplicationIsAtomic(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx := context.Background()
	app := storage.Application{
		ID:            "a1",
		FullName:      "Ana Ruiz",
		BusinessName:  "Ana's Bakery",
		Email:         "Ana@Example.com",
		Category:      "restaurants-cafes",
		TierRequested: storage.TierFeatured,
		CreatedAt:     baseTime,
	}
	if err := store.CreateApplication(ctx, app); err != nil {
		t.Fatalf("create application: %v", err)
	}

	seedProvider(t, store, storage.Provider{ID: "taken", Name: "Taken"})
	err := store.ApproveApplication(ctx, "a1", storage.Provider{ID: "taken", Name: "Ana's Bakery"}, baseTime)
	if !errors.Is(err, storage.ErrAlreadyExists) {
		t.Fatalf("approve with clashing id error = %v, want %v", err, storage.ErrAlreadyExists)
	}
	still, err := store.GetApplication(ctx, "a1")
	if err != nil {
		t.Fatalf("get application: %v", err)
	}
	if still.Status != storage.StatusPending {
		t.Fatalf("status after failed approve = %q, want pending", still.Status)
	}

	decided := baseTime.Add(time.Hour)
	provider := storage.Provider{ID: "p-new", Name: "Ana's Bakery", CategoryKey: "restaurants-cafes", Published: true, Featured: true}
	if err := store.ApproveApplication(ctx, "a1", provider, decided); err != nil {
		t.Fatalf("approve application: %v", err)
	}
	approved, err := store.GetApplication(ctx, "a1")
	if err != nil {
		t.Fatalf("get approved application: %v", err)
	}
	if approved.Status != storage.StatusApproved || approved.ProviderID != "p-new" {
		t.Fatalf("approved application = %+v", approved)
	}
	if approved.DecidedAt == nil || !approved.DecidedAt.Equal(decided) {
		t.Fatalf("decided_at = %v, want %v", approved.DecidedAt, decided)
	}
	if approved.Email != "ana@example.com" {
		t.Fatalf("email = %q, want lowercased", approved.Email)
	}
	if _, err := store.GetProvider(ctx, "p-new"); err != nil {
		t.Fatalf("get approved provider: %v", err)
	}

	pending, err := store.ListApplications(ctx, storage.ApplicationQuery{Status: storage.StatusPending})
	if err != nil {
		t.Fatalf("list pending: %v", err)
	}
	if len(pending.Items) != 0 {
		t.Fatalf("pending applications = %d, want 0", len(pending.Items))
	}
	if err := store.RejectApplication(ctx, "a1", "late", decided); !errors.Is(err, storage.ErrAlreadyDecided) {
		t.Fatalf("reject decided error = %v, want %v", err, storage.ErrAlreadyDecided)
	}
	if err := store.RejectApplication(ctx, "missing", "", decided); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("reject missing error = %v, want %v", err, storage.ErrNotFound)
	}
}

func TestApproveChangeRequestAppliesAndRollsBack(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx := context.Background()
	seedProvider(t, store, storage.Provider{ID: "p1", Name: "Old Name", OwnerUserID: "owner"})
	for _, id := range []string{"cr1", "cr2"} {
		if err := store.CreateChangeRequest(ctx, storage.ChangeRequest{
			ID:          id,
			ProviderID:  "p1",
			OwnerUserID: "owner",
			Type:        storage.ChangeUpdate,
			Changes:     map[string]any{"name": "New Name"},
			CreatedAt:   baseTime,
		}); err != nil {
			t.Fatalf("create change request %s: %v", id, err)
		}
	}

	boom := errors.New("boom")
	_, err := store.ApproveChangeRequest(ctx, "cr1", baseTime, func(storage.ChangeRequest, storage.Provider) (storage.ProviderChange, error) {
		return storage.ProviderChange{}, boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("approve error = %v, want %v", err, boom)
	}
	request, err := store.GetChangeRequest(ctx, "cr1")
	if err != nil {
		t.Fatalf("get change request: %v", err)
	}
	if request.Status != storage.StatusPending {
		t.Fatalf("status after failed apply = %q, want pending", request.Status)
	}

	approved, err := store.ApproveChangeRequest(ctx, "cr1", baseTime, func(req storage.ChangeRequest, current storage.Provider) (storage.ProviderChange, error) {
		current.Name = req.Changes["name"].(string)
		return storage.ProviderChange{Provider: current}, nil
	})
	if err != nil {
		t.Fatalf("approve change request: %v", err)
	}
	if approved.Status != storage.StatusApproved {
		t.Fatalf("approved status = %q", approved.Status)
	}
	provider, err := store.GetProvider(ctx, "p1")
	if err != nil {
		t.Fatalf("get provider: %v", err)
	}
	if provider.Name != "New Name" {
		t.Fatalf("provider name = %q, want %q", provider.Name, "New Name")
	}

	if _, err := store.ApproveChangeRequest(ctx, "cr2", baseTime, func(storage.ChangeRequest, storage.Provider) (storage.ProviderChange, error) {
		return storage.ProviderChange{Delete: true}, nil
	}); err != nil {
		t.Fatalf("approve delete: %v", err)
	}
	if _, err := store.GetProvider(ctx, "p1"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("get deleted provider error = %v, want %v", err, storage.ErrNotFound)
	}

	if err := store.RejectChangeRequest(ctx, "cr2", "no", baseTime); !errors.Is(err, storage.ErrAlreadyDecided) {
		t.Fatalf("reject decided error = %v, want %v", err, storage.ErrAlreadyDecided)
	}
	own, err := store.ListChangeRequests(ctx, storage.ChangeRequestQuery{OwnerUserID: "owner", Status: storage.StatusApproved})
	if err != nil {
		t.Fatalf("list own change requests: %v", err)
	}
	if len(own.Items) != 2 {
		t.Fatalf("approved own requests = %d, want 2", len(own.Items))
	}
}

func TestDeleteUserRemovesDependentRows(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx := context.Background()
	if err := store.CreateAccount(ctx,
		storage.User{ID: "u1", Email: "Owner@Example.com", PasswordHash: "hash", CreatedAt: baseTime},
		storage.Profile{Name: "Owner", Role: storage.RoleBusiness, CreatedAt: baseTime},
	); err != nil {
		t.Fatalf("create account: %v", err)
	}
	if err := store.CreateAccount(ctx,
		storage.User{ID: "u2", Email: "owner@example.com", PasswordHash: "hash"},
		storage.Profile{},
	); !errors.Is(err, storage.ErrAlreadyExists) {
		t.Fatalf("duplicate email error = %v, want %v", err, storage.ErrAlreadyExists)
	}

	seedProvider(t, store, storage.Provider{ID: "p1", Name: "Owned", OwnerUserID: "u1"})
	if err := store.CreateChangeRequest(ctx, storage.ChangeRequest{ID: "pending", ProviderID: "p1", OwnerUserID: "u1", Type: storage.ChangeFeatureRequest}); err != nil {
		t.Fatalf("create pending request: %v", err)
	}
	if err := store.CreateChangeRequest(ctx, storage.ChangeRequest{ID: "done", ProviderID: "p1", OwnerUserID: "u1", Type: storage.ChangeFeatureRequest, Status: storage.StatusRejected}); err != nil {
		t.Fatalf("create decided request: %v", err)
	}
	if err := store.CreateIntegration(ctx, storage.Integration{ID: "i1", ProviderID: "p1", OwnerUserID: "u1", Kind: storage.IntegrationICal, CalendarRef: "https://cal.example/ics"}); err != nil {
		t.Fatalf("create integration: %v", err)
	}

	if err := store.DeleteUser(ctx, "u1"); err != nil {
		t.Fatalf("delete user: %v", err)
	}
	if _, err := store.GetProfile(ctx, "u1"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("get profile error = %v, want %v", err, storage.ErrNotFound)
	}
	if _, err := store.GetUserByEmail(ctx, "owner@example.com"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("get user error = %v, want %v", err, storage.ErrNotFound)
	}
	provider, err := store.GetProvider(ctx, "p1")
	if err != nil {
		t.Fatalf("get provider: %v", err)
	}
	if provider.OwnerUserID != "" {
		t.Fatalf("owner = %q, want unlinked", provider.OwnerUserID)
	}
	if _, err := store.GetChangeRequest(ctx, "pending"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("pending request error = %v, want %v", err, storage.ErrNotFound)
	}
	if _, err := store.GetChangeRequest(ctx, "done"); err != nil {
		t.Fatalf("decided request should remain: %v", err)
	}
	integrations, err := store.ListIntegrations(ctx, "u1")
	if err != nil {
		t.Fatalf("list integrations: %v", err)
	}
	if len(integrations) != 0 {
		t.Fatalf("integrations = %d, want 0", len(integrations))
	}
	if err := store.DeleteUser(ctx, "u1"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("delete missing user error = %v, want %v", err, storage.ErrNotFound)
	}
}

func TestSetEmailOptOut(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx := context.Background()
	if err := store.CreateAccount(ctx, storage.User{ID: "u1", Email: "a@example.com", PasswordHash: "x"}, storage.Profile{}); err != nil {
		t.Fatalf("create account: %v", err)
	}
	if err := store.SetEmailOptOut(ctx, "A@example.com ", baseTime); err != nil {
		t.Fatalf("set opt out: %v", err)
	}
	profile, err := store.GetProfile(ctx, "u1")
	if err != nil {
		t.Fatalf("get profile: %v", err)
	}
	if !profile.EmailOptOut {
		t.Fatal("expected email opt out")
	}
	if err := store.SetEmailOptOut(ctx, "nobody@example.com", baseTime); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("missing email error = %v, want %v", err, storage.ErrNotFound)
	}
}

func TestListEventsByRangeAndApproval(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx := context.Background()
	events := []storage.Event{
		{ID: "e1", Title: "Market", StartAt: baseTime.Add(24 * time.Hour), Approved: true},
		{ID: "e2", Title: "Concert", StartAt: baseTime.Add(2 * time.Hour), Approved: true},
		{ID: "e3", Title: "Submitted", StartAt: baseTime.Add(3 * time.Hour), Source: storage.SourceSubmitted, CreatedBy: "u1"},
		{ID: "e4", Title: "Later", StartAt: baseTime.Add(72 * time.Hour), Approved: true},
	}
	for _, event := range events {
		if err := store.CreateEvent(ctx, event); err != nil {
			t.Fatalf("create event %s: %v", event.ID, err)
		}
	}

	approved := true
	from := baseTime
	to := baseTime.Add(48 * time.Hour)
	page, err := store.ListEvents(ctx, storage.EventQuery{From: &from, To: &to, Approved: &approved})
	if err != nil {
		t.Fatalf("list events: %v", err)
	}
	var ids []string
	for _, event := range page.Items {
		ids = append(ids, event.ID)
	}
	if diff := cmp.Diff([]string{"e2", "e1"}, ids); diff != "" {
		t.Fatalf("events mismatch (-want +got):\n%s", diff)
	}

	unapproved, err := store.CountEvents(ctx, false)
	if err != nil {
		t.Fatalf("count events: %v", err)
	}
	if unapproved != 1 {
		t.Fatalf("unapproved = %d, want 1", unapproved)
	}
	if err := store.ApproveEvent(ctx, "e3"); err != nil {
		t.Fatalf("approve event: %v", err)
	}
	got, err := store.GetEvent(ctx, "e3")
	if err != nil {
		t.Fatalf("get event: %v", err)
	}
	if !got.Approved || got.Source != storage.SourceSubmitted || got.CreatedBy != "u1" {
		t.Fatalf("event = %+v", got)
	}
	if err := store.DeleteEvent(ctx, "missing"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("delete missing error = %v, want %v", err, storage.ErrNotFound)
	}
}

func TestBookingsAndPostsRoundTrip(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx := context.Background()
	booking := storage.Booking{
		ID:            "b1",
		ProviderID:    "p1",
		CategoryKey:   "health-wellness",
		CustomerName:  "Lee",
		CustomerEmail: "lee@example.com",
		Answers:       map[string]string{"goal": "yoga"},
		CreatedAt:     baseTime,
		UpdatedAt:     baseTime,
	}
	if err := store.CreateBooking(ctx, booking); err != nil {
		t.Fatalf("create booking: %v", err)
	}
	if err := store.UpdateBookingStatus(ctx, "b1", storage.BookingPending, storage.BookingConfirmed, baseTime.Add(time.Minute)); err != nil {
		t.Fatalf("update status: %v", err)
	}
	if err := store.UpdateBookingStatus(ctx, "b1", storage.BookingPending, storage.BookingCancelled, baseTime.Add(2*time.Minute)); !errors.Is(err, storage.ErrStatusChanged) {
		t.Fatalf("stale update err = %v, want ErrStatusChanged", err)
	}
	if err := store.UpdateBookingStatus(ctx, "missing", storage.BookingPending, storage.BookingCancelled, baseTime); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("missing update err = %v, want ErrNotFound", err)
	}
	got, err := store.GetBooking(ctx, "b1")
	if err != nil {
		t.Fatalf("get booking: %v", err)
	}
	if got.Status != storage.BookingConfirmed || got.Answers["goal"] != "yoga" {
		t.Fatalf("booking = %+v", got)
	}
	none, err := store.ListBookings(ctx, storage.BookingQuery{ProviderIDs: []string{}})
	if err != nil {
		t.Fatalf("list bookings for no providers: %v", err)
	}
	if len(none.Items) != 0 {
		t.Fatalf("bookings = %d, want 0", len(none.Items))
	}

	post := storage.BlogPost{ID: "post1", CategoryKey: "real-estate", Title: "Buying", Content: "<p>Hi</p>", Excerpt: "Hi", Published: true, CreatedAt: baseTime, UpdatedAt: baseTime}
	if err := store.CreatePost(ctx, post); err != nil {
		t.Fatalf("create post: %v", err)
	}
	if err := store.CreatePost(ctx, storage.BlogPost{ID: "draft", CategoryKey: "real-estate", Title: "Draft", CreatedAt: baseTime.Add(time.Hour)}); err != nil {
		t.Fatalf("create draft: %v", err)
	}
	published, err := store.ListPosts(ctx, storage.PostQuery{CategoryKey: "real-estate", PublishedOnly: true})
	if err != nil {
		t.Fatalf("list posts: %v", err)
	}
	if len(published.Items) != 1 || published.Items[0].ID != "post1" {
		t.Fatalf("published posts = %+v", published.Items)
	}
}
