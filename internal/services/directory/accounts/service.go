// Package accounts manages sign-up, sign-in, profiles and admin verification.
package accounts

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	apperrors "github.com/bonitaforward/bonita-forward/internal/platform/errors"
	"github.com/bonitaforward/bonita-forward/internal/platform/id"
	"github.com/bonitaforward/bonita-forward/internal/platform/requestctx"
	"github.com/bonitaforward/bonita-forward/internal/platform/validate"
	"github.com/bonitaforward/bonita-forward/internal/services/directory/storage"
)

const (
	// MinPasswordLength is the shortest accepted password.
	MinPasswordLength = 8
	// bcrypt ignores input past 72 bytes.
	maxPasswordBytes = 72
)

var (
	// ErrInvalidCredentials is returned for any failed sign-in.
	ErrInvalidCredentials = apperrors.New(apperrors.CodeInvalidCredentials, "invalid email or password")
	// ErrEmailTaken is returned when signing up with a registered email.
	ErrEmailTaken = apperrors.New(apperrors.CodeEmailTaken, "email already registered")
	// ErrProfileNotFound is returned when a profile is missing.
	ErrProfileNotFound = apperrors.New(apperrors.CodeProfileNotFound, "profile not found")
	// ErrAccountGone is returned when a valid token names an account that no longer exists.
	ErrAccountGone = apperrors.New(apperrors.CodeUnauthenticated, "account no longer exists")

	errStoreUnavailable = apperrors.New(apperrors.CodeUnavailable, "account store is not configured")
)

// Config wires token signing and the admin allowlist.
type Config struct {
	Tokens      TokenConfig
	AdminEmails []string
	BcryptCost  int
}

// Service manages accounts.
type Service struct {
	store       storage.AccountStore
	tokens      TokenConfig
	adminEmails map[string]struct{}
	bcryptCost  int
	clock       func() time.Time
	newID       func() (string, error)
}

// NewService creates an account service.
func NewService(store storage.AccountStore, cfg Config) *Service {
	admins := make(map[string]struct{}, len(cfg.AdminEmails))
	for _, email := range cfg.AdminEmails {
		email = normalizeEmail(email)
		if email != "" {
			admins[email] = struct{}{}
		}
	}
	cost := cfg.BcryptCost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &Service{
		store:       store,
		tokens:      cfg.Tokens,
		adminEmails: admins,
		bcryptCost:  cost,
		clock:       time.Now,
		newID:       id.NewID,
	}
}

// Session is a signed-in account.
type Session struct {
	Token     string
	ExpiresAt time.Time
	Profile   storage.Profile
}

// SignUpInput creates an account.
type SignUpInput struct {
	Email        string `json:"email" validate:"required,email"`
	Password     string `json:"password"`
	Name         string `json:"name" validate:"max=200"`
	Role         string `json:"role"`
	BusinessName string `json:"business_name" validate:"max=200"`
}

// SignUp registers a business or community account and signs it in.
func (s *Service) SignUp(ctx context.Context, in SignUpInput) (Session, error) {
	if err := s.ready(); err != nil {
		return Session{}, err
	}
	in.Email = normalizeEmail(in.Email)
	if err := validate.Struct(in); err != nil {
		return Session{}, err
	}
	role, err := signUpRole(in.Role)
	if err != nil {
		return Session{}, err
	}
	if err := checkPassword(in.Password); err != nil {
		return Session{}, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.bcryptCost)
	if err != nil {
		return Session{}, apperrors.Wrap(apperrors.CodeUnknown, "hash password", err)
	}
	userID, err := s.newID()
	if err != nil {
		return Session{}, apperrors.Wrap(apperrors.CodeUnknown, "generate user id", err)
	}
	now := s.now()
	user := storage.User{ID: userID, Email: in.Email, PasswordHash: string(hash), CreatedAt: now}
	profile := storage.Profile{
		ID:           userID,
		Email:        in.Email,
		Name:         strings.TrimSpace(in.Name),
		Role:         role,
		BusinessName: strings.TrimSpace(in.BusinessName),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.store.CreateAccount(ctx, user, profile); err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			return Session{}, ErrEmailTaken
		}
		return Session{}, err
	}
	return s.session(profile)
}

// SignIn verifies credentials and issues an access token.
func (s *Service) SignIn(ctx context.Context, email, password string) (Session, error) {
	if err := s.ready(); err != nil {
		return Session{}, err
	}
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return Session{}, ErrInvalidCredentials
	}
	user, err := s.store.GetUserByEmail(ctx, email)
	if errors.Is(err, storage.ErrNotFound) {
		return Session{}, ErrInvalidCredentials
	}
	if err != nil {
		return Session{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return Session{}, ErrInvalidCredentials
	}
	profile, err := s.store.GetProfile(ctx, user.ID)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		profile = storage.Profile{ID: user.ID, Email: user.Email, Role: storage.RoleCommunity}
	case err != nil:
		return Session{}, err
	}
	return s.session(profile)
}

// Authenticate verifies a bearer token and resolves its principal.
func (s *Service) Authenticate(token string) (requestctx.Principal, error) {
	if s == nil {
		return requestctx.Principal{}, errStoreUnavailable
	}
	cfg := s.tokens
	if cfg.Now == nil {
		cfg.Now = s.clock
	}
	return ParseToken(token, cfg)
}

func (s *Service) session(profile storage.Profile) (Session, error) {
	cfg := s.tokens
	if cfg.Now == nil {
		cfg.Now = s.clock
	}
	token, expiresAt, err := IssueToken(requestctx.Principal{UserID: profile.ID, Email: profile.Email}, cfg)
	if err != nil {
		return Session{}, err
	}
	return Session{Token: token, ExpiresAt: expiresAt, Profile: profile}, nil
}

func (s *Service) ready() error {
	if s == nil || s.store == nil {
		return errStoreUnavailable
	}
	return nil
}

func (s *Service) now() time.Time {
	if s.clock == nil {
		return time.Now().UTC()
	}
	return s.clock().UTC()
}

func signUpRole(raw string) (storage.Role, error) {
	role := storage.Role(strings.ToLower(strings.TrimSpace(raw)))
	switch role {
	case "":
		return storage.RoleCommunity, nil
	case storage.RoleBusiness, storage.RoleCommunity:
		return role, nil
	default:
		return "", roleError(raw)
	}
}

// ParseRole validates any account role name.
func ParseRole(raw string) (storage.Role, error) {
	role := storage.Role(strings.ToLower(strings.TrimSpace(raw)))
	switch role {
	case storage.RoleAdmin, storage.RoleBusiness, storage.RoleCommunity:
		return role, nil
	default:
		return "", roleError(raw)
	}
}

func roleError(raw string) error {
	return apperrors.WithMetadata(apperrors.CodeRoleInvalid, "unknown role", map[string]string{"Role": raw})
}

func checkPassword(password string) error {
	if len([]rune(password)) < MinPasswordLength {
		return apperrors.WithMetadata(apperrors.CodePasswordTooShort, "password too short", map[string]string{
			"Min": strconv.Itoa(MinPasswordLength),
		})
	}
	if len(password) > maxPasswordBytes {
		return validate.Invalid(nil, "password")
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
