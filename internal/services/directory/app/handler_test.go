package app

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/bonitaforward/bonita-forward/internal/platform/metrics"
	"github.com/bonitaforward/bonita-forward/internal/services/directory/accounts"
	"github.com/bonitaforward/bonita-forward/internal/services/directory/media"
	"go.uber.org/zap"
)

const testSecret = "0123456789abcdef0123456789abcdef"

type fixture struct {
	handler http.Handler
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	store, err := OpenStore(context.Background(), filepath.Join(t.TempDir(), "nested", "directory.db"), zap.NewNop())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	cfg := Config{
		AdminEmails: "admin@example.com",
		BcryptCost:  4,
		Tokens:      accounts.TokenEnv{Secret: testSecret, Issuer: "test", TTL: time.Hour},
	}
	accountCfg, err := cfg.AccountConfig(time.Now)
	if err != nil {
		t.Fatalf("account config: %v", err)
	}
	objects := media.NewMemoryStore(media.MemoryPrefix)
	handler, degraded, err := NewHandler(HandlerDeps{
		Services: NewServices(store, objects, accountCfg),
		Store:    store,
		Metrics:  metrics.New(),
		Media:    objects,
	})
	if err != nil {
		t.Fatalf("new handler: %v", err)
	}
	if len(degraded) != 0 {
		t.Fatalf("degraded = %v, want none", degraded)
	}
	return fixture{handler: handler}
}

func (f fixture) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func (f fixture) signUp(t *testing.T, email, role string) string {
	t.Helper()
	rec := f.do(t, http.MethodPost, "/api/auth/signup", "", map[string]string{
		"email":    email,
		"password": "correct-horse",
		"role":     role,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("signup status = %d, body %s", rec.Code, rec.Body.String())
	}
	var session struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &session); err != nil {
		t.Fatalf("decode session: %v", err)
	}
	if session.Token == "" {
		t.Fatal("expected token")
	}
	return session.Token
}

func TestHealthz(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodGet, "/healthz", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"status":"ok"`) {
		t.Fatalf("body = %s", rec.Body.String())
	}
	if rec.Header().Get("X-Request-ID") == "" {
		t.Fatal("expected request id header")
	}
}

type failingPinger struct{}

func (failingPinger) Ping(context.Context) error { return errors.New("down") }

func TestHealthzReportsUnavailableStore(t *testing.T) {
	rec := httptest.NewRecorder()
	healthHandler(failingPinger{}, nil)(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestSignedInFlow(t *testing.T) {
	f := newFixture(t)
	token := f.signUp(t, "owner@example.com", "business")

	rec := f.do(t, http.MethodGet, "/api/me", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("me status = %d, body %s", rec.Code, rec.Body.String())
	}
	var me struct {
		Email string `json:"email"`
		Role  string `json:"role"`
		Admin bool   `json:"admin"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &me); err != nil {
		t.Fatalf("decode me: %v", err)
	}
	if me.Email != "owner@example.com" || me.Role != "business" || me.Admin {
		t.Fatalf("me = %+v", me)
	}

	if rec := f.do(t, http.MethodGet, "/api/business/dashboard", token, nil); rec.Code != http.StatusOK {
		t.Fatalf("business dashboard status = %d, body %s", rec.Code, rec.Body.String())
	}
	if rec := f.do(t, http.MethodGet, "/api/admin/dashboard", token, nil); rec.Code != http.StatusForbidden {
		t.Fatalf("admin dashboard status = %d, want 403", rec.Code)
	}
}

func TestAnonymousAndInvalidTokens(t *testing.T) {
	f := newFixture(t)
	if rec := f.do(t, http.MethodGet, "/api/me", "", nil); rec.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous me status = %d, want 401", rec.Code)
	}
	if rec := f.do(t, http.MethodGet, "/api/me", "not-a-token", nil); rec.Code != http.StatusUnauthorized {
		t.Fatalf("invalid token me status = %d, want 401", rec.Code)
	}
	if rec := f.do(t, http.MethodGet, "/api/providers", "not-a-token", nil); rec.Code != http.StatusOK {
		t.Fatalf("public list with bad token status = %d, want 200", rec.Code)
	}
}

func TestDeletedAccountTokenIsRejected(t *testing.T) {
	f := newFixture(t)
	adminToken := f.signUp(t, "admin@example.com", "")
	token := f.signUp(t, "gone@example.com", "community")

	rec := f.do(t, http.MethodGet, "/api/me", token, nil)
	var me struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &me); err != nil || me.ID == "" {
		t.Fatalf("decode me: %v, body %s", err, rec.Body.String())
	}
	if rec := f.do(t, http.MethodDelete, "/api/admin/users/"+me.ID, adminToken, nil); rec.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d, body %s", rec.Code, rec.Body.String())
	}

	rec = f.do(t, http.MethodGet, "/api/me", token, nil)
	if rec.Code != http.StatusUnauthorized || !strings.Contains(rec.Body.String(), `"code":"UNAUTHENTICATED"`) {
		t.Fatalf("me after delete = %d, body %s", rec.Code, rec.Body.String())
	}
	event := map[string]string{"title": "Market", "start_time": "2030-01-01T10:00:00Z"}
	if rec := f.do(t, http.MethodPost, "/api/events", token, event); rec.Code != http.StatusUnauthorized {
		t.Fatalf("submit event after delete = %d, want 401", rec.Code)
	}
	if rec := f.do(t, http.MethodGet, "/api/providers", token, nil); rec.Code != http.StatusOK {
		t.Fatalf("public list after delete = %d, want 200", rec.Code)
	}
}

func TestAdminByEmailAllowList(t *testing.T) {
	f := newFixture(t)
	token := f.signUp(t, "admin@example.com", "")

	rec := f.do(t, http.MethodGet, "/api/admin/verify", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("verify status = %d, body %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"admin":true`) {
		t.Fatalf("verify body = %s", rec.Body.String())
	}
	if rec := f.do(t, http.MethodGet, "/api/admin/dashboard", token, nil); rec.Code != http.StatusOK {
		t.Fatalf("admin dashboard status = %d, body %s", rec.Code, rec.Body.String())
	}
}

func TestMetricsExposeRoutePatterns(t *testing.T) {
	f := newFixture(t)
	f.do(t, http.MethodGet, "/api/providers", "", nil)
	f.signUp(t, "member@example.com", "")

	rec := f.do(t, http.MethodGet, "/metrics", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("metrics status = %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{
		`route="GET /api/providers"`,
		`bonita_forward_domain_events_total{event="account_created"} 1`,
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("metrics missing %q", want)
		}
	}
}

func TestAccountConfigRejectsShortSecret(t *testing.T) {
	cfg := Config{BcryptCost: 10, Tokens: accounts.TokenEnv{Secret: "short", TTL: time.Hour}}
	if _, err := cfg.AccountConfig(time.Now); err == nil {
		t.Fatal("expected error for short secret")
	}
}

func TestAccountConfigRejectsBcryptCost(t *testing.T) {
	cfg := Config{BcryptCost: 99, Tokens: accounts.TokenEnv{Secret: testSecret, TTL: time.Hour}}
	if _, err := cfg.AccountConfig(time.Now); err == nil {
		t.Fatal("expected error for bcrypt cost")
	}
}
