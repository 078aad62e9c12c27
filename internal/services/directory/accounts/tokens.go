package accounts

import (
	"crypto/rand"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	apperrors "github.com/bonitaforward/bonita-forward/internal/platform/errors"
	"github.com/bonitaforward/bonita-forward/internal/platform/requestctx"
)

const minSecretBytes = 32

// TokenEnv holds raw token settings before post-parse validation.
type TokenEnv struct {
	Secret string        `env:"BONITA_FORWARD_JWT_SECRET"`
	Issuer string        `env:"BONITA_FORWARD_JWT_ISSUER" envDefault:"bonita-forward"`
	TTL    time.Duration `env:"BONITA_FORWARD_TOKEN_TTL" envDefault:"24h"`
}

// TokenConfig defines how access tokens are signed and verified.
type TokenConfig struct {
	Secret []byte
	Issuer string
	TTL    time.Duration
	Now    func() time.Time
}

// accessClaims is the internal claims type used for JWT signing and parsing.
type accessClaims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
}

// NewTokenConfig validates raw token settings.
func NewTokenConfig(raw TokenEnv, now func() time.Time) (TokenConfig, error) {
	secret := strings.TrimSpace(raw.Secret)
	if secret == "" {
		return TokenConfig{}, fmt.Errorf("BONITA_FORWARD_JWT_SECRET is required")
	}
	if len(secret) < minSecretBytes {
		return TokenConfig{}, fmt.Errorf("BONITA_FORWARD_JWT_SECRET must be at least %d bytes", minSecretBytes)
	}
	issuer := strings.TrimSpace(raw.Issuer)
	if issuer == "" {
		return TokenConfig{}, fmt.Errorf("BONITA_FORWARD_JWT_ISSUER is required")
	}
	if raw.TTL <= 0 {
		return TokenConfig{}, fmt.Errorf("BONITA_FORWARD_TOKEN_TTL must be positive")
	}
	if now == nil {
		now = time.Now
	}
	return TokenConfig{Secret: []byte(secret), Issuer: issuer, TTL: raw.TTL, Now: now}, nil
}

// EphemeralTokens returns a signer keyed by a random secret, for offline tools
// that create accounts but never hand out the tokens.
func EphemeralTokens() (TokenConfig, error) {
	secret := make([]byte, minSecretBytes)
	if _, err := rand.Read(secret); err != nil {
		return TokenConfig{}, fmt.Errorf("generate token secret: %w", err)
	}
	return TokenConfig{Secret: secret, Issuer: "bonita-forward-offline", TTL: time.Minute, Now: time.Now}, nil
}

func (c TokenConfig) configured() bool {
	return len(c.Secret) > 0 && c.Issuer != "" && c.TTL > 0
}

// IssueToken signs an HS256 access token for principal.
func IssueToken(principal requestctx.Principal, cfg TokenConfig) (string, time.Time, error) {
	if !cfg.configured() {
		return "", time.Time{}, errors.New("token signer is not configured")
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	now := cfg.Now().UTC()
	expiresAt := now.Add(cfg.TTL)
	claims := accessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    cfg.Issuer,
			Subject:   principal.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		Email: principal.Email,
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(cfg.Secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign access token: %w", err)
	}
	return signed, expiresAt, nil
}

// ParseToken verifies an access token and returns its principal.
func ParseToken(token string, cfg TokenConfig) (requestctx.Principal, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return requestctx.Principal{}, apperrors.New(apperrors.CodeUnauthenticated, "access token is required")
	}
	if !cfg.configured() {
		return requestctx.Principal{}, errors.New("token verifier is not configured")
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	var parsed accessClaims
	_, err := jwt.ParseWithClaims(token, &parsed, func(*jwt.Token) (any, error) {
		return cfg.Secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)
	if err != nil {
		return requestctx.Principal{}, mapJWTError(err)
	}

	if parsed.Issuer != cfg.Issuer {
		return requestctx.Principal{}, apperrors.New(apperrors.CodeTokenInvalid, "access token issuer mismatch")
	}
	if strings.TrimSpace(parsed.Subject) == "" {
		return requestctx.Principal{}, apperrors.New(apperrors.CodeTokenInvalid, "access token sub is required")
	}
	if parsed.ExpiresAt == nil {
		return requestctx.Principal{}, apperrors.New(apperrors.CodeTokenInvalid, "access token exp is required")
	}
	if !parsed.ExpiresAt.Time.After(cfg.Now().UTC()) {
		return requestctx.Principal{}, apperrors.New(apperrors.CodeTokenExpired, "access token is expired")
	}
	return requestctx.Principal{UserID: parsed.Subject, Email: parsed.Email}, nil
}

// mapJWTError translates jwt library errors to application errors.
func mapJWTError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return apperrors.Wrap(apperrors.CodeTokenInvalid, "access token signature is invalid", err)
	case errors.Is(err, jwt.ErrTokenUnverifiable):
		return apperrors.Wrap(apperrors.CodeTokenInvalid, "access token alg is invalid", err)
	case errors.Is(err, jwt.ErrTokenMalformed):
		return apperrors.Wrap(apperrors.CodeTokenInvalid, "access token is malformed", err)
	default:
		return apperrors.Wrap(apperrors.CodeTokenInvalid, "access token is invalid", err)
	}
}
