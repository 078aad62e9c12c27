package accounts

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	apperrors "github.com/bonitaforward/bonita-forward/internal/platform/errors"
	"github.com/bonitaforward/bonita-forward/internal/platform/requestctx"
)

func testTokenConfig(now time.Time) TokenConfig {
	return TokenConfig{
		Secret: []byte(testSecret),
		Issuer: "bonita-forward-test",
		TTL:    time.Hour,
		Now:    func() time.Time { return now },
	}
}

func TestParseTokenRoundTrip(t *testing.T) {
	t.Parallel()

	cfg := testTokenConfig(fixedNow)
	token, expiresAt, err := IssueToken(requestctx.Principal{UserID: "u1", Email: "u1@example.com"}, cfg)
	if err != nil {
		t.Fatalf("IssueToken() error = %v", err)
	}
	if !expiresAt.Equal(fixedNow.Add(time.Hour)) {
		t.Fatalf("expires at = %v", expiresAt)
	}
	principal, err := ParseToken(token, cfg)
	if err != nil {
		t.Fatalf("ParseToken() error = %v", err)
	}
	if principal != (requestctx.Principal{UserID: "u1", Email: "u1@example.com"}) {
		t.Fatalf("principal = %+v", principal)
	}
}

func TestParseTokenRejects(t *testing.T) {
	t.Parallel()

	cfg := testTokenConfig(fixedNow)
	valid, _, err := IssueToken(requestctx.Principal{UserID: "u1"}, cfg)
	if err != nil {
		t.Fatalf("IssueToken() error = %v", err)
	}

	otherKey := cfg
	otherKey.Secret = []byte("fedcba9876543210fedcba9876543210")
	otherIssuer := cfg
	otherIssuer.Issuer = "someone-else"
	later := testTokenConfig(fixedNow.Add(2 * time.Hour))

	noneToken, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
		Issuer:    cfg.Issuer,
		Subject:   "u1",
		ExpiresAt: jwt.NewNumericDate(fixedNow.Add(time.Hour)),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign none token: %v", err)
	}
	noSubject, _, err := IssueToken(requestctx.Principal{}, cfg)
	if err != nil {
		t.Fatalf("IssueToken(no subject) error = %v", err)
	}

	tests := []struct {
		name  string
		token string
		cfg   TokenConfig
		want  apperrors.Code
	}{
		{name: "empty", token: " ", cfg: cfg, want: apperrors.CodeUnauthenticated},
		{name: "garbage", token: "not.a.jwt", cfg: cfg, want: apperrors.CodeTokenInvalid},
		{name: "wrong key", token: valid, cfg: otherKey, want: apperrors.CodeTokenInvalid},
		{name: "wrong issuer", token: valid, cfg: otherIssuer, want: apperrors.CodeTokenInvalid},
		{name: "expired", token: valid, cfg: later, want: apperrors.CodeTokenExpired},
		{name: "alg none", token: noneToken, cfg: cfg, want: apperrors.CodeTokenInvalid},
		{name: "missing subject", token: noSubject, cfg: cfg, want: apperrors.CodeTokenInvalid},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			_, err := ParseToken(tc.token, tc.cfg)
			if got := apperrors.CodeOf(err); got != tc.want {
				t.Fatalf("code = %q, want %q (err = %v)", got, tc.want, err)
			}
		})
	}
}

func TestNewTokenConfig(t *testing.T) {
	t.Parallel()

	if _, err := NewTokenConfig(TokenEnv{Issuer: "x", TTL: time.Hour}, nil); err == nil {
		t.Fatal("expected missing secret error")
	}
	if _, err := NewTokenConfig(TokenEnv{Secret: "short", Issuer: "x", TTL: time.Hour}, nil); err == nil {
		t.Fatal("expected short secret error")
	}
	cfg, err := NewTokenConfig(TokenEnv{Secret: testSecret, Issuer: " bf ", TTL: time.Hour}, nil)
	if err != nil {
		t.Fatalf("NewTokenConfig() error = %v", err)
	}
	if cfg.Issuer != "bf" || cfg.Now == nil {
		t.Fatalf("cfg = %+v", cfg)
	}
}
