package public

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	apperrors "github.com/bonitaforward/bonita-forward/internal/platform/errors"
	"github.com/bonitaforward/bonita-forward/internal/platform/httpx"
	"github.com/bonitaforward/bonita-forward/internal/services/directory/access"
	"github.com/bonitaforward/bonita-forward/internal/services/directory/accounts"
	"github.com/bonitaforward/bonita-forward/internal/services/directory/api/http/module"
	"github.com/bonitaforward/bonita-forward/internal/services/directory/booking"
	"github.com/bonitaforward/bonita-forward/internal/services/directory/catalog"
	"github.com/bonitaforward/bonita-forward/internal/services/directory/content"
	"github.com/bonitaforward/bonita-forward/internal/services/directory/intake"
	"github.com/bonitaforward/bonita-forward/internal/services/directory/storage"
)

type fakeCatalog struct {
	lastList catalog.ListInput
	items    []storage.Provider
}

func (f *fakeCatalog) ListProviders(_ context.Context, in catalog.ListInput) (storage.Page[storage.Provider], error) {
	f.lastList = in
	return storage.Page[storage.Provider]{Items: f.items, NextPageToken: "next"}, nil
}

func (f *fakeCatalog) GetProvider(_ context.Context, _ access.Actor, providerID string) (storage.Provider, error) {
	for _, item := range f.items {
		if item.ID == providerID {
			return item, nil
		}
	}
	return storage.Provider{}, apperrors.New(apperrors.CodeProviderNotFound, "provider not found")
}

func (f *fakeCatalog) Recommend(context.Context, catalog.RecommendInput) ([]catalog.Recommendation, error) {
	return []catalog.Recommendation{{Provider: f.items[0], Score: 3}}, nil
}

type fakeBookings struct {
	created []booking.CreateInput
}

func (f *fakeBookings) CreateBooking(_ context.Context, in booking.CreateInput) (storage.Booking, error) {
	f.created = append(f.created, in)
	return storage.Booking{ID: "b1", CustomerName: in.CustomerName, Status: storage.BookingPending}, nil
}

type fakeIntake struct{}

func (fakeIntake) SubmitApplication(_ context.Context, in intake.ApplicationInput) (storage.Application, error) {
	return storage.Application{ID: "a1", BusinessName: in.BusinessName, Status: storage.StatusPending}, nil
}

func (fakeIntake) SubmitContactLead(context.Context, intake.ContactLeadInput) (storage.ContactLead, error) {
	return storage.ContactLead{ID: "l1"}, nil
}

type fakeAccounts struct{}

func (fakeAccounts) SignUp(_ context.Context, in accounts.SignUpInput) (accounts.Session, error) {
	return accounts.Session{Token: "token", Profile: storage.Profile{ID: "u1", Email: in.Email}}, nil
}

func (fakeAccounts) SignIn(context.Context, string, string) (accounts.Session, error) {
	return accounts.Session{}, accounts.ErrInvalidCredentials
}

func (fakeAccounts) Unsubscribe(context.Context, string) (string, error) {
	return "unsubscribed", nil
}

type fakeContent struct{}

func (fakeContent) ListPosts(context.Context, string, int, string) (storage.Page[storage.BlogPost], error) {
	return storage.Page[storage.BlogPost]{}, nil
}

func (fakeContent) GetPost(context.Context, access.Actor, string) (storage.BlogPost, error) {
	return storage.BlogPost{ID: "p1", Title: "Hello"}, nil
}

func (fakeContent) ListEvents(context.Context, content.EventRange) (storage.Page[storage.Event], error) {
	return storage.Page[storage.Event]{}, nil
}

type countingRecorder struct {
	events []string
}

func (r *countingRecorder) Event(name string) {
	r.events = append(r.events, name)
}

func newTestMux(t *testing.T, deps Deps) *http.ServeMux {
	t.Helper()
	mux := http.NewServeMux()
	if err := New(deps, module.NewBase(nil)).Register(mux); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	return mux
}

func fullDeps() (Deps, *fakeCatalog, *fakeBookings, *countingRecorder) {
	cat := &fakeCatalog{items: []storage.Provider{{ID: "p1", Name: "Bonita Bakery", CategoryKey: "restaurants-cafes", Published: true}}}
	bookings := &fakeBookings{}
	recorder := &countingRecorder{}
	return Deps{
		Catalog:  cat,
		Bookings: bookings,
		Intake:   fakeIntake{},
		Accounts: fakeAccounts{},
		Content:  fakeContent{},
		Recorder: recorder,
	}, cat, bookings, recorder
}

func TestModuleIDReturnsPublic(t *testing.T) {
	t.Parallel()

	if got := New(Deps{}, module.Base{}).ID(); got != "public" {
		t.Fatalf("ID() = %q, want %q", got, "public")
	}
}

func TestRegisterRequiresMux(t *testing.T) {
	t.Parallel()

	if err := New(Deps{}, module.Base{}).Register(nil); err == nil {
		t.Fatal("expected error for nil mux")
	}
}

func TestListProvidersPassesQuery(t *testing.T) {
	t.Parallel()

	deps, cat, _, _ := fullDeps()
	mux := newTestMux(t, deps)
	req := httptest.NewRequest(http.MethodGet, "/api/providers?category=health-wellness&q=yoga&featured=true&page_size=5", nil)
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d: %s", rr.Code, http.StatusOK, rr.Body.String())
	}
	want := catalog.ListInput{Category: "health-wellness", Query: "yoga", FeaturedOnly: true, PageSize: 5}
	if cat.lastList != want {
		t.Fatalf("list input = %+v, want %+v", cat.lastList, want)
	}
	var body struct {
		Items []struct {
			ID string `json:"id"`
		} `json:"items"`
		NextPageToken string `json:"next_page_token"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if len(body.Items) != 1 || body.Items[0].ID != "p1" || body.NextPageToken != "next" {
		t.Fatalf("body = %+v", body)
	}
}

func TestListProvidersRejectsBadPageSize(t *testing.T) {
	t.Parallel()

	deps, _, _, _ := fullDeps()
	mux := newTestMux(t, deps)
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/providers?page_size=abc", nil))
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusBadRequest)
	}
}

func TestGetProviderNotFound(t *testing.T) {
	t.Parallel()

	deps, _, _, _ := fullDeps()
	mux := newTestMux(t, deps)
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/providers/missing", nil))
	if rr.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusNotFound)
	}
	var body httpx.ErrorBody
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Code != string(apperrors.CodeProviderNotFound) {
		t.Fatalf("code = %q, want %q", body.Code, apperrors.CodeProviderNotFound)
	}
}

func TestCreateBookingRecordsEvent(t *testing.T) {
	t.Parallel()

	deps, _, bookings, recorder := fullDeps()
	mux := newTestMux(t, deps)
	payload := `{"provider_id":"p1","customer_name":"Ana","customer_email":"ana@example.com"}`
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/bookings", strings.NewReader(payload)))

	if rr.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d: %s", rr.Code, http.StatusCreated, rr.Body.String())
	}
	if len(bookings.created) != 1 || bookings.created[0].ProviderID != "p1" {
		t.Fatalf("bookings = %+v", bookings.created)
	}
	if len(recorder.events) != 1 || recorder.events[0] != "booking_created" {
		t.Fatalf("events = %v", recorder.events)
	}
}

func TestCreateBookingRejectsUnknownFields(t *testing.T) {
	t.Parallel()

	deps, _, bookings, _ := fullDeps()
	mux := newTestMux(t, deps)
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/bookings", strings.NewReader(`{"status":"confirmed"}`)))
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusBadRequest)
	}
	if len(bookings.created) != 0 {
		t.Fatal("expected no booking to be created")
	}
}

func TestSignInFailureIsUnauthorized(t *testing.T) {
	t.Parallel()

	deps, _, _, _ := fullDeps()
	mux := newTestMux(t, deps)
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/auth/signin", strings.NewReader(`{"email":"a@example.com","password":"wrong-pass"}`)))
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusUnauthorized)
	}
}

func TestFormLimitGuardsFormRoutes(t *testing.T) {
	t.Parallel()

	deps, _, _, _ := fullDeps()
	deps.FormLimit = func(http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
		})
	}
	mux := newTestMux(t, deps)

	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/contact", strings.NewReader(`{}`)))
	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("contact status = %d, want %d", rr.Code, http.StatusTooManyRequests)
	}

	rr = httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/blog", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("blog status = %d, want %d", rr.Code, http.StatusOK)
	}
}

func TestMissingServicesAnswerUnavailable(t *testing.T) {
	t.Parallel()

	m := New(Deps{Catalog: &fakeCatalog{}}, module.NewBase(nil))
	if m.Healthy() {
		t.Fatal("expected module with missing services to be unhealthy")
	}
	mux := newTestMux(t, Deps{Catalog: &fakeCatalog{}})
	for _, path := range []string{"/api/providers", "/api/blog", "/api/events"} {
		rr := httptest.NewRecorder()
		mux.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
		if rr.Code != http.StatusServiceUnavailable {
			t.Fatalf("%s status = %d, want %d", path, rr.Code, http.StatusServiceUnavailable)
		}
	}
}

func TestListEventsRejectsBadTime(t *testing.T) {
	t.Parallel()

	deps, _, _, _ := fullDeps()
	mux := newTestMux(t, deps)
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/events?from=yesterday", nil))
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusBadRequest)
	}
}
