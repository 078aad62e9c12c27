package admin

import (
	"net/http"
	"strings"

	"github.com/bonitaforward/bonita-forward/internal/platform/httpx"
	"github.com/bonitaforward/bonita-forward/internal/platform/requestctx"
	"github.com/bonitaforward/bonita-forward/internal/services/directory/accounts"
	"github.com/bonitaforward/bonita-forward/internal/services/directory/api/http/module"
	"github.com/bonitaforward/bonita-forward/internal/services/directory/api/http/views"
	"github.com/bonitaforward/bonita-forward/internal/services/directory/booking"
	"github.com/bonitaforward/bonita-forward/internal/services/directory/catalog"
	"github.com/bonitaforward/bonita-forward/internal/services/directory/content"
	"github.com/bonitaforward/bonita-forward/internal/services/directory/intake"
	"github.com/bonitaforward/bonita-forward/internal/services/directory/storage"
)

type handlers struct {
	module.Base
	deps Deps
}

func (h handlers) record(event string) {
	if h.deps.Recorder != nil {
		h.deps.Recorder.Event(event)
	}
}

func (h handlers) handleVerify(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	principal, _ := requestctx.PrincipalFromContext(ctx)
	verification, err := h.deps.Users.VerifyAdmin(ctx, principal)
	if err != nil {
		h.WriteError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, views.AdminVerification{Admin: verification.Admin, Method: verification.Method})
}

func (h handlers) handleDashboard(w http.ResponseWriter, r *http.Request) {
	counts, err := h.deps.Dashboard.AdminDashboard(r.Context())
	if err != nil {
		h.WriteError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, counts)
}

func (h handlers) handleListProviders(w http.ResponseWriter, r *http.Request) {
	size, token, err := h.PageParams(r)
	if err != nil {
		h.WriteError(w, r, err)
		return
	}
	page, err := h.deps.Providers.AdminListProviders(r.Context(), catalog.AdminListInput{
		Filter:    r.URL.Query().Get("filter"),
		PageSize:  size,
		PageToken: token,
	})
	if err != nil {
		h.WriteError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, views.NewPage(page, views.NewProvider))
}

func (h handlers) handleGetProvider(w http.ResponseWriter, r *http.Request) {
	ctx, actor := h.Actor(r)
	provider, err := h.deps.Providers.GetProvider(ctx, actor, h.PathID(r, "providerID"))
	if err != nil {
		h.WriteError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, views.NewProvider(provider))
}

func (h handlers) handleCreateProvider(w http.ResponseWriter, r *http.Request) {
	var in catalog.ProviderInput
	if !h.Decode(w, r, &in) {
		return
	}
	provider, err := h.deps.Providers.CreateProvider(r.Context(), in)
	if err != nil {
		h.WriteError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, views.NewProvider(provider))
}

func (h handlers) handleUpdateProvider(w http.ResponseWriter, r *http.Request) {
	var in catalog.ProviderInput
	if !h.Decode(w, r, &in) {
		return
	}
	provider, err := h.deps.Providers.UpdateProvider(r.Context(), h.PathID(r, "providerID"), in)
	if err != nil {
		h.WriteError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, views.NewProvider(provider))
}

func (h handlers) handleDeleteProvider(w http.ResponseWriter, r *http.Request) {
	if err := h.deps.Providers.DeleteProvider(r.Context(), h.PathID(r, "providerID")); err != nil {
		h.WriteError(w, r, err)
		return
	}
	httpx.WriteNoContent(w)
}

type featuredRequest struct {
	Featured bool `json:"featured"`
}

func (h handlers) handleSetFeatured(w http.ResponseWriter, r *http.Request) {
	var in featuredRequest
	if !h.Decode(w, r, &in) {
		return
	}
	provider, err := h.deps.Providers.SetFeatured(r.Context(), h.PathID(r, "providerID"), in.Featured)
	if err != nil {
		h.WriteError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, views.NewProvider(provider))
}

type publishedRequest struct {
	Published bool `json:"published"`
}

func (h handlers) handleSetPublished(w http.ResponseWriter, r *http.Request) {
	var in publishedRequest
	if !h.Decode(w, r, &in) {
		return
	}
	provider, err := h.deps.Providers.SetPublished(r.Context(), h.PathID(r, "providerID"), in.Published)
	if err != nil {
		h.WriteError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, views.NewProvider(provider))
}

func (h handlers) handleListApplications(w http.ResponseWriter, r *http.Request) {
	size, token, status, ok := h.reviewListParams(w, r)
	if !ok {
		return
	}
	page, err := h.deps.Intake.ListApplications(r.Context(), status, size, token)
	if err != nil {
		h.WriteError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, views.NewPage(page, views.NewApplication))
}

type approveApplicationRequest struct {
	ConfirmDuplicate bool `json:"confirm_duplicate"`
}

type approvalView struct {
	Application views.Application `json:"application"`
	Provider    views.Provider    `json:"provider"`
}

func (h handlers) handleApproveApplication(w http.ResponseWriter, r *http.Request) {
	var in approveApplicationRequest
	if !h.decodeOptional(w, r, &in) {
		return
	}
	approval, err := h.deps.Intake.ApproveApplication(r.Context(), h.PathID(r, "applicationID"), in.ConfirmDuplicate)
	if err != nil {
		h.WriteError(w, r, err)
		return
	}
	h.record("application_approved")
	h.WriteJSON(w, http.StatusOK, approvalView{
		Application: views.NewApplication(approval.Application),
		Provider:    views.NewProvider(approval.Provider),
	})
}

type rejectApplicationRequest struct {
	Note string `json:"note"`
}

func (h handlers) handleRejectApplication(w http.ResponseWriter, r *http.Request) {
	var in rejectApplicationRequest
	if !h.decodeOptional(w, r, &in) {
		return
	}
	application, err := h.deps.Intake.RejectApplication(r.Context(), h.PathID(r, "applicationID"), in.Note)
	if err != nil {
		h.WriteError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, views.NewApplication(application))
}

func (h handlers) handleListChangeRequests(w http.ResponseWriter, r *http.Request) {
	size, token, status, ok := h.reviewListParams(w, r)
	if !ok {
		return
	}
	page, err := h.deps.Intake.ListChangeRequests(r.Context(), status, size, token)
	if err != nil {
		h.WriteError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, views.NewPage(page, views.NewChangeRequest))
}

func (h handlers) handleApproveChangeRequest(w http.ResponseWriter, r *http.Request) {
	request, err := h.deps.Intake.ApproveChangeRequest(r.Context(), h.PathID(r, "requestID"))
	if err != nil {
		h.WriteError(w, r, err)
		return
	}
	h.record("change_request_approved")
	h.WriteJSON(w, http.StatusOK, views.NewChangeRequest(request))
}

type rejectChangeRequest struct {
	Reason string `json:"reason"`
}

func (h handlers) handleRejectChangeRequest(w http.ResponseWriter, r *http.Request) {
	var in rejectChangeRequest
	if !h.decodeOptional(w, r, &in) {
		return
	}
	if err := h.deps.Intake.RejectChangeRequest(r.Context(), h.PathID(r, "requestID"), in.Reason); err != nil {
		h.WriteError(w, r, err)
		return
	}
	httpx.WriteNoContent(w)
}

func (h handlers) handleListLeads(w http.ResponseWriter, r *http.Request) {
	size, token, err := h.PageParams(r)
	if err != nil {
		h.WriteError(w, r, err)
		return
	}
	page, err := h.deps.Intake.ListContactLeads(r.Context(), size, token)
	if err != nil {
		h.WriteError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, views.NewPage(page, views.NewContactLead))
}

func (h handlers) handleListBookings(w http.ResponseWriter, r *http.Request) {
	size, token, err := h.PageParams(r)
	if err != nil {
		h.WriteError(w, r, err)
		return
	}
	var status storage.BookingStatus
	if raw := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("status"))); raw != "" {
		status, err = booking.ParseStatus(raw)
		if err != nil {
			h.WriteError(w, r, err)
			return
		}
	}
	page, err := h.deps.Bookings.AdminListBookings(r.Context(), status, size, token)
	if err != nil {
		h.WriteError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, views.NewPage(page, views.NewBooking))
}

func (h handlers) handleListUsers(w http.ResponseWriter, r *http.Request) {
	size, token, err := h.PageParams(r)
	if err != nil {
		h.WriteError(w, r, err)
		return
	}
	var role storage.Role
	if raw := strings.TrimSpace(r.URL.Query().Get("role")); raw != "" {
		role, err = accounts.ParseRole(raw)
		if err != nil {
			h.WriteError(w, r, err)
			return
		}
	}
	page, err := h.deps.Users.ListUsers(r.Context(), role, size, token)
	if err != nil {
		h.WriteError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, views.NewPage(page, views.NewProfile))
}

type roleRequest struct {
	Role string `json:"role"`
}

func (h handlers) handleSetRole(w http.ResponseWriter, r *http.Request) {
	var in roleRequest
	if !h.Decode(w, r, &in) {
		return
	}
	role, err := accounts.ParseRole(in.Role)
	if err != nil {
		h.WriteError(w, r, err)
		return
	}
	profile, err := h.deps.Users.SetRole(r.Context(), h.PathID(r, "userID"), role)
	if err != nil {
		h.WriteError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, views.NewProfile(profile))
}

func (h handlers) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	ctx, actor := h.Actor(r)
	if err := h.deps.Users.DeleteUser(ctx, actor, h.PathID(r, "userID")); err != nil {
		h.WriteError(w, r, err)
		return
	}
	httpx.WriteNoContent(w)
}

func (h handlers) handleBusinessDetails(w http.ResponseWriter, r *http.Request) {
	details, err := h.deps.Dashboard.GetBusinessDetails(r.Context(), h.PathID(r, "userID"))
	if err != nil {
		h.WriteError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, views.NewBusinessDetails(details))
}

func (h handlers) handleListPosts(w http.ResponseWriter, r *http.Request) {
	size, token, err := h.PageParams(r)
	if err != nil {
		h.WriteError(w, r, err)
		return
	}
	page, err := h.deps.Posts.AdminListPosts(r.Context(), size, token)
	if err != nil {
		h.WriteError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, views.NewPage(page, views.NewPostSummary))
}

func (h handlers) handleCreatePost(w http.ResponseWriter, r *http.Request) {
	var in content.PostInput
	if !h.Decode(w, r, &in) {
		return
	}
	post, err := h.deps.Posts.CreatePost(r.Context(), in)
	if err != nil {
		h.WriteError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, views.NewPost(post))
}

func (h handlers) handleUpdatePost(w http.ResponseWriter, r *http.Request) {
	var in content.PostInput
	if !h.Decode(w, r, &in) {
		return
	}
	post, err := h.deps.Posts.UpdatePost(r.Context(), h.PathID(r, "postID"), in)
	if err != nil {
		h.WriteError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, views.NewPost(post))
}

func (h handlers) handleDeletePost(w http.ResponseWriter, r *http.Request) {
	if err := h.deps.Posts.DeletePost(r.Context(), h.PathID(r, "postID")); err != nil {
		h.WriteError(w, r, err)
		return
	}
	httpx.WriteNoContent(w)
}

func (h handlers) handleListPendingEvents(w http.ResponseWriter, r *http.Request) {
	size, token, err := h.PageParams(r)
	if err != nil {
		h.WriteError(w, r, err)
		return
	}
	page, err := h.deps.Events.ListPendingEvents(r.Context(), size, token)
	if err != nil {
		h.WriteError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, views.NewPage(page, views.NewEvent))
}

func (h handlers) handleCreateEvent(w http.ResponseWriter, r *http.Request) {
	var in content.EventInput
	if !h.Decode(w, r, &in) {
		return
	}
	ctx, actor := h.Actor(r)
	event, err := h.deps.Events.CreateEvent(ctx, actor, in)
	if err != nil {
		h.WriteError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, views.NewEvent(event))
}

func (h handlers) handleApproveEvent(w http.ResponseWriter, r *http.Request) {
	event, err := h.deps.Events.ApproveEvent(r.Context(), h.PathID(r, "eventID"))
	if err != nil {
		h.WriteError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, views.NewEvent(event))
}

func (h handlers) handleDeleteEvent(w http.ResponseWriter, r *http.Request) {
	if err := h.deps.Events.DeleteEvent(r.Context(), h.PathID(r, "eventID")); err != nil {
		h.WriteError(w, r, err)
		return
	}
	httpx.WriteNoContent(w)
}

func (h handlers) reviewListParams(w http.ResponseWriter, r *http.Request) (int, string, storage.DecisionStatus, bool) {
	size, token, err := h.PageParams(r)
	if err != nil {
		h.WriteError(w, r, err)
		return 0, "", "", false
	}
	status, err := intake.ParseDecisionStatus(r.URL.Query().Get("status"))
	if err != nil {
		h.WriteError(w, r, err)
		return 0, "", "", false
	}
	return size, token, status, true
}

// decodeOptional decodes a JSON body when one was sent.
func (h handlers) decodeOptional(w http.ResponseWriter, r *http.Request, dst any) bool {
	if r.ContentLength == 0 {
		return true
	}
	return h.Decode(w, r, dst)
}
