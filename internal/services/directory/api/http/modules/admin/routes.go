package admin

import (
	"net/http"

	"github.com/bonitaforward/bonita-forward/internal/platform/httpx"
)

func registerRoutes(mux *http.ServeMux, h handlers, guard httpx.Middleware) {
	route := func(pattern string, fn http.HandlerFunc) {
		mux.Handle(pattern, httpx.Chain(fn, guard))
	}
	route("GET /api/admin/dashboard", h.handleDashboard)

	route("GET /api/admin/providers", h.handleListProviders)
	route("POST /api/admin/providers", h.handleCreateProvider)
	route("GET /api/admin/providers/{providerID}", h.handleGetProvider)
	route("PUT /api/admin/providers/{providerID}", h.handleUpdateProvider)
	route("DELETE /api/admin/providers/{providerID}", h.handleDeleteProvider)
	route("POST /api/admin/providers/{providerID}/featured", h.handleSetFeatured)
	route("POST /api/admin/providers/{providerID}/published", h.handleSetPublished)

	route("GET /api/admin/applications", h.handleListApplications)
	route("POST /api/admin/applications/{applicationID}/approve", h.handleApproveApplication)
	route("POST /api/admin/applications/{applicationID}/reject", h.handleRejectApplication)

	route("GET /api/admin/change-requests", h.handleListChangeRequests)
	route("POST /api/admin/change-requests/{requestID}/approve", h.handleApproveChangeRequest)
	route("POST /api/admin/change-requests/{requestID}/reject", h.handleRejectChangeRequest)

	route("GET /api/admin/leads", h.handleListLeads)
	route("GET /api/admin/bookings", h.handleListBookings)

	route("GET /api/admin/users", h.handleListUsers)
	route("POST /api/admin/users/{userID}/role", h.handleSetRole)
	route("DELETE /api/admin/users/{userID}", h.handleDeleteUser)
	route("GET /api/admin/users/{userID}/business", h.handleBusinessDetails)

	route("GET /api/admin/blog", h.handleListPosts)
	route("POST /api/admin/blog", h.handleCreatePost)
	route("PUT /api/admin/blog/{postID}", h.handleUpdatePost)
	route("DELETE /api/admin/blog/{postID}", h.handleDeletePost)

	route("GET /api/admin/events", h.handleListPendingEvents)
	route("POST /api/admin/events", h.handleCreateEvent)
	route("POST /api/admin/events/{eventID}/approve", h.handleApproveEvent)
	route("DELETE /api/admin/events/{eventID}", h.handleDeleteEvent)
}
