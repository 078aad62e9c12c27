package public

import (
	"net/http"

	"github.com/bonitaforward/bonita-forward/internal/platform/httpx"
)

func registerRoutes(mux *http.ServeMux, h handlers, limit httpx.Middleware) {
	form := func(fn http.HandlerFunc) http.Handler {
		return httpx.Chain(fn, limit)
	}

	mux.HandleFunc("GET /api/providers", h.wrap(h.handleListProviders))
	mux.HandleFunc("GET /api/providers/{providerID}", h.wrap(h.handleGetProvider))
	mux.HandleFunc("POST /api/funnel/recommendations", h.wrap(h.handleRecommend))
	mux.Handle("POST /api/bookings", form(h.wrap(h.handleCreateBooking)))
	mux.Handle("POST /api/applications", form(h.wrap(h.handleSubmitApplication)))
	mux.Handle("POST /api/contact", form(h.wrap(h.handleSubmitContact)))
	mux.Handle("POST /api/unsubscribe", form(h.wrap(h.handleUnsubscribe)))
	mux.HandleFunc("GET /api/blog", h.wrap(h.handleListPosts))
	mux.HandleFunc("GET /api/blog/{postID}", h.wrap(h.handleGetPost))
	mux.HandleFunc("GET /api/events", h.wrap(h.handleListEvents))
	mux.Handle("POST /api/auth/signup", form(h.wrap(h.handleSignUp)))
	mux.Handle("POST /api/auth/signin", form(h.wrap(h.handleSignIn)))
}
