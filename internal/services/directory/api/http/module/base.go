package module

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/bonitaforward/bonita-forward/internal/platform/httpx"
	"github.com/bonitaforward/bonita-forward/internal/platform/validate"
	"github.com/bonitaforward/bonita-forward/internal/services/directory/access"
	"github.com/bonitaforward/bonita-forward/internal/services/directory/api/http/authn"
	"go.uber.org/zap"
)

// Base carries the shared response helpers embedded by module handlers.
type Base struct {
	Logger *zap.Logger
}

// NewBase returns a handler base logging to logger.
func NewBase(logger *zap.Logger) Base {
	if logger == nil {
		logger = zap.NewNop()
	}
	return Base{Logger: logger}
}

// Actor returns the request context and actor.
func (b Base) Actor(r *http.Request) (context.Context, access.Actor) {
	return httpx.RequestContext(r), authn.ActorFrom(r)
}

// WriteJSON writes payload with status.
func (b Base) WriteJSON(w http.ResponseWriter, status int, payload any) {
	_ = httpx.WriteJSON(w, status, payload)
}

// WriteError renders err as a localized JSON error.
func (b Base) WriteError(w http.ResponseWriter, r *http.Request, err error) {
	httpx.WriteError(w, r, b.Logger, err)
}

// Decode reads a JSON body into dst, writing the error response on failure.
func (b Base) Decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := httpx.DecodeJSON(w, r, dst); err != nil {
		b.WriteError(w, r, err)
		return false
	}
	return true
}

// PathID returns a trimmed path value.
func (b Base) PathID(r *http.Request, name string) string {
	return strings.TrimSpace(r.PathValue(name))
}

// PageParams reads page_size and page_token query parameters.
func (b Base) PageParams(r *http.Request) (int, string, error) {
	query := r.URL.Query()
	size := 0
	if raw := strings.TrimSpace(query.Get("page_size")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			return 0, "", validate.Invalid(err, "page_size")
		}
		size = parsed
	}
	return size, strings.TrimSpace(query.Get("page_token")), nil
}

// QueryTime parses an optional RFC 3339 query parameter.
func (b Base) QueryTime(r *http.Request, key string) (*time.Time, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return nil, nil
	}
	parsed, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, validate.Invalid(err, key)
	}
	return &parsed, nil
}
