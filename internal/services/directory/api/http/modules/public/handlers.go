package public

import (
	"net/http"
	"strings"

	apperrors "github.com/bonitaforward/bonita-forward/internal/platform/errors"
	"github.com/bonitaforward/bonita-forward/internal/platform/httpx"
	"github.com/bonitaforward/bonita-forward/internal/services/directory/accounts"
	"github.com/bonitaforward/bonita-forward/internal/services/directory/api/http/module"
	"github.com/bonitaforward/bonita-forward/internal/services/directory/api/http/views"
	"github.com/bonitaforward/bonita-forward/internal/services/directory/booking"
	"github.com/bonitaforward/bonita-forward/internal/services/directory/catalog"
	"github.com/bonitaforward/bonita-forward/internal/services/directory/content"
	"github.com/bonitaforward/bonita-forward/internal/services/directory/intake"
)

type handlers struct {
	module.Base
	deps        Deps
	unavailable bool
}

func newHandlers(deps Deps, base module.Base) handlers {
	return handlers{Base: base, deps: deps}
}

func (h handlers) degraded() handlers {
	h.unavailable = true
	return h
}

func (h handlers) wrap(fn http.HandlerFunc) http.HandlerFunc {
	if !h.unavailable {
		return fn
	}
	return func(w http.ResponseWriter, r *http.Request) {
		h.WriteError(w, r, apperrors.New(apperrors.CodeUnavailable, "public services are not configured"))
	}
}

func (h handlers) record(event string) {
	if h.deps.Recorder != nil {
		h.deps.Recorder.Event(event)
	}
}

func (h handlers) handleListProviders(w http.ResponseWriter, r *http.Request) {
	size, token, err := h.PageParams(r)
	if err != nil {
		h.WriteError(w, r, err)
		return
	}
	query := r.URL.Query()
	page, err := h.deps.Catalog.ListProviders(r.Context(), catalog.ListInput{
		Category:     query.Get("category"),
		Query:        query.Get("q"),
		FeaturedOnly: httpx.QueryBool(r, "featured"),
		PageSize:     size,
		PageToken:    token,
	})
	if err != nil {
		h.WriteError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, views.NewPage(page, views.NewProvider))
}

func (h handlers) handleGetProvider(w http.ResponseWriter, r *http.Request) {
	ctx, actor := h.Actor(r)
	provider, err := h.deps.Catalog.GetProvider(ctx, actor, h.PathID(r, "providerID"))
	if err != nil {
		h.WriteError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, views.NewProvider(provider))
}

func (h handlers) handleRecommend(w http.ResponseWriter, r *http.Request) {
	var in catalog.RecommendInput
	if !h.Decode(w, r, &in) {
		return
	}
	recs, err := h.deps.Catalog.Recommend(r.Context(), in)
	if err != nil {
		h.WriteError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, map[string]any{"items": views.List(recs, views.NewRecommendation)})
}

func (h handlers) handleCreateBooking(w http.ResponseWriter, r *http.Request) {
	var in booking.CreateInput
	if !h.Decode(w, r, &in) {
		return
	}
	created, err := h.deps.Bookings.CreateBooking(r.Context(), in)
	if err != nil {
		h.WriteError(w, r, err)
		return
	}
	h.record("booking_created")
	h.WriteJSON(w, http.StatusCreated, views.NewBooking(created))
}

func (h handlers) handleSubmitApplication(w http.ResponseWriter, r *http.Request) {
	var in intake.ApplicationInput
	if !h.Decode(w, r, &in) {
		return
	}
	application, err := h.deps.Intake.SubmitApplication(r.Context(), in)
	if err != nil {
		h.WriteError(w, r, err)
		return
	}
	h.record("application_submitted")
	h.WriteJSON(w, http.StatusCreated, views.NewApplication(application))
}

func (h handlers) handleSubmitContact(w http.ResponseWriter, r *http.Request) {
	var in intake.ContactLeadInput
	if !h.Decode(w, r, &in) {
		return
	}
	lead, err := h.deps.Intake.SubmitContactLead(r.Context(), in)
	if err != nil {
		h.WriteError(w, r, err)
		return
	}
	h.record("contact_lead_created")
	h.WriteJSON(w, http.StatusCreated, views.NewContactLead(lead))
}

type unsubscribeRequest struct {
	Email string `json:"email"`
}

func (h handlers) handleUnsubscribe(w http.ResponseWriter, r *http.Request) {
	var in unsubscribeRequest
	if !h.Decode(w, r, &in) {
		return
	}
	status, err := h.deps.Accounts.Unsubscribe(r.Context(), in.Email)
	if err != nil {
		h.WriteError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, map[string]string{"status": status})
}

func (h handlers) handleListPosts(w http.ResponseWriter, r *http.Request) {
	size, token, err := h.PageParams(r)
	if err != nil {
		h.WriteError(w, r, err)
		return
	}
	page, err := h.deps.Content.ListPosts(r.Context(), r.URL.Query().Get("category"), size, token)
	if err != nil {
		h.WriteError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, views.NewPage(page, views.NewPostSummary))
}

func (h handlers) handleGetPost(w http.ResponseWriter, r *http.Request) {
	ctx, actor := h.Actor(r)
	post, err := h.deps.Content.GetPost(ctx, actor, h.PathID(r, "postID"))
	if err != nil {
		h.WriteError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, views.NewPost(post))
}

func (h handlers) handleListEvents(w http.ResponseWriter, r *http.Request) {
	size, token, err := h.PageParams(r)
	if err != nil {
		h.WriteError(w, r, err)
		return
	}
	from, err := h.QueryTime(r, "from")
	if err != nil {
		h.WriteError(w, r, err)
		return
	}
	to, err := h.QueryTime(r, "to")
	if err != nil {
		h.WriteError(w, r, err)
		return
	}
	page, err := h.deps.Content.ListEvents(r.Context(), content.EventRange{From: from, To: to, PageSize: size, PageToken: token})
	if err != nil {
		h.WriteError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, views.NewPage(page, views.NewEvent))
}

func (h handlers) handleSignUp(w http.ResponseWriter, r *http.Request) {
	var in accounts.SignUpInput
	if !h.Decode(w, r, &in) {
		return
	}
	session, err := h.deps.Accounts.SignUp(r.Context(), in)
	if err != nil {
		h.WriteError(w, r, err)
		return
	}
	h.record("account_created")
	h.WriteJSON(w, http.StatusCreated, views.NewSession(session))
}

type signInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h handlers) handleSignIn(w http.ResponseWriter, r *http.Request) {
	var in signInRequest
	if !h.Decode(w, r, &in) {
		return
	}
	session, err := h.deps.Accounts.SignIn(r.Context(), strings.TrimSpace(in.Email), in.Password)
	if err != nil {
		h.WriteError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, views.NewSession(session))
}
