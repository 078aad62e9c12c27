// Package authn resolves bearer tokens into request actors.
package authn

import (
	"context"
	"net/http"

	apperrors "github.com/bonitaforward/bonita-forward/internal/platform/errors"
	"github.com/bonitaforward/bonita-forward/internal/platform/httpx"
	"github.com/bonitaforward/bonita-forward/internal/platform/requestctx"
	"github.com/bonitaforward/bonita-forward/internal/services/directory/access"
	"go.uber.org/zap"
)

// Resolver turns tokens into principals and principals into actors.
type Resolver interface {
	Authenticate(token string) (requestctx.Principal, error)
	ResolveActor(ctx context.Context, principal requestctx.Principal) (access.Actor, error)
}

type actorContextKey struct{}

type tokenErrorContextKey struct{}

// WithActor stores actor in ctx.
func WithActor(ctx context.Context, actor access.Actor) context.Context {
	return context.WithValue(ctx, actorContextKey{}, actor)
}

// ActorFromContext returns the request actor, Anonymous when none was resolved.
func ActorFromContext(ctx context.Context) access.Actor {
	if ctx == nil {
		return access.Anonymous
	}
	actor, ok := ctx.Value(actorContextKey{}).(access.Actor)
	if !ok {
		return access.Anonymous
	}
	return actor
}

// ActorFrom returns the actor of r.
func ActorFrom(r *http.Request) access.Actor {
	return ActorFromContext(httpx.RequestContext(r))
}

// Middleware resolves the bearer token, when present, into the request actor.
//
// Requests without a token continue anonymously. A token that fails to parse,
// or names an account that is gone, also continues anonymously; the failure is
// kept so RequireSignedIn can report it instead of a generic sign-in error.
func Middleware(resolver Resolver, logger *zap.Logger) httpx.Middleware {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(next http.Handler) http.Handler {
		if next == nil {
			next = http.NotFoundHandler()
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := httpx.BearerToken(r)
			if token == "" || resolver == nil {
				next.ServeHTTP(w, r)
				return
			}
			principal, err := resolver.Authenticate(token)
			if err != nil {
				ctx := context.WithValue(r.Context(), tokenErrorContextKey{}, err)
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}
			ctx := requestctx.WithPrincipal(r.Context(), principal)
			actor, err := resolver.ResolveActor(ctx, principal)
			if apperrors.KindOf(err) == apperrors.KindUnauthorized {
				ctx := context.WithValue(r.Context(), tokenErrorContextKey{}, err)
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}
			if err != nil {
				httpx.WriteError(w, r, logger, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithActor(ctx, actor)))
		})
	}
}

// RequireSignedIn rejects anonymous requests.
func RequireSignedIn(logger *zap.Logger) httpx.Middleware {
	return guard(logger, access.RequireSignedIn)
}

// RequireAdmin rejects requests whose actor did not pass admin verification.
func RequireAdmin(logger *zap.Logger) httpx.Middleware {
	return guard(logger, access.RequireAdmin)
}

func guard(logger *zap.Logger, check func(access.Actor) error) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		if next == nil {
			next = http.NotFoundHandler()
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor := ActorFrom(r)
			if !actor.SignedIn() {
				if tokenErr, ok := r.Context().Value(tokenErrorContextKey{}).(error); ok {
					httpx.WriteError(w, r, logger, tokenErr)
					return
				}
			}
			if err := check(actor); err != nil {
				httpx.WriteError(w, r, logger, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
