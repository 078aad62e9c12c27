package business

import (
	"bytes"
	stderrors "errors"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/bonitaforward/bonita-forward/internal/platform/httpx"
	"github.com/bonitaforward/bonita-forward/internal/platform/validate"
	"github.com/bonitaforward/bonita-forward/internal/services/directory/access"
	"github.com/bonitaforward/bonita-forward/internal/services/directory/api/http/module"
	"github.com/bonitaforward/bonita-forward/internal/services/directory/api/http/views"
	"github.com/bonitaforward/bonita-forward/internal/services/directory/booking"
	"github.com/bonitaforward/bonita-forward/internal/services/directory/content"
	"github.com/bonitaforward/bonita-forward/internal/services/directory/intake"
	"github.com/bonitaforward/bonita-forward/internal/services/directory/media"
)

// uploadOverhead allows for multipart framing around one image.
const uploadOverhead = 64 << 10

type handlers struct {
	module.Base
	deps Deps
}

func (h handlers) handleDashboard(w http.ResponseWriter, r *http.Request) {
	ctx, actor := h.Actor(r)
	overview, err := h.deps.Dashboard.BusinessDashboard(ctx, actor, httpx.Locale(r))
	if err != nil {
		h.WriteError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, views.NewBusinessDashboard(overview))
}

func (h handlers) handleListChangeRequests(w http.ResponseWriter, r *http.Request) {
	ctx, actor := h.Actor(r)
	requests, err := h.deps.ChangeRequests.ListOwnChangeRequests(ctx, actor)
	if err != nil {
		h.WriteError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, views.Page[views.ChangeRequest]{Items: views.List(requests, views.NewChangeRequest)})
}

func (h handlers) handleSubmitChangeRequest(w http.ResponseWriter, r *http.Request) {
	var in intake.ChangeRequestInput
	if !h.Decode(w, r, &in) {
		return
	}
	ctx, actor := h.Actor(r)
	request, err := h.deps.ChangeRequests.SubmitChangeRequest(ctx, actor, in)
	if err != nil {
		h.WriteError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, views.NewChangeRequest(request))
}

func (h handlers) handleListBookings(w http.ResponseWriter, r *http.Request) {
	size, token, err := h.PageParams(r)
	if err != nil {
		h.WriteError(w, r, err)
		return
	}
	ctx, actor := h.Actor(r)
	page, err := h.deps.Bookings.ListProviderBookings(ctx, actor, h.PathID(r, "providerID"), size, token)
	if err != nil {
		h.WriteError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, views.NewPage(page, views.NewBooking))
}

type statusRequest struct {
	Status string `json:"status"`
}

func (h handlers) handleUpdateBookingStatus(w http.ResponseWriter, r *http.Request) {
	var in statusRequest
	if !h.Decode(w, r, &in) {
		return
	}
	status, err := booking.ParseStatus(strings.ToLower(strings.TrimSpace(in.Status)))
	if err != nil {
		h.WriteError(w, r, err)
		return
	}
	ctx, actor := h.Actor(r)
	updated, err := h.deps.Bookings.UpdateBookingStatus(ctx, actor, h.PathID(r, "bookingID"), status)
	if err != nil {
		h.WriteError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, views.NewBooking(updated))
}

func (h handlers) handleListNotifications(w http.ResponseWriter, r *http.Request) {
	ctx, actor := h.Actor(r)
	if err := access.RequireBusiness(actor); err != nil {
		h.WriteError(w, r, err)
		return
	}
	items, err := h.deps.Notifications.ListNotifications(ctx, actor.UserID, httpx.Locale(r))
	if err != nil {
		h.WriteError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, views.Page[views.Notification]{Items: views.List(items, views.NewNotification)})
}

func (h handlers) handleDismissNotifications(w http.ResponseWriter, r *http.Request) {
	ctx, actor := h.Actor(r)
	if err := access.RequireBusiness(actor); err != nil {
		h.WriteError(w, r, err)
		return
	}
	at, err := h.deps.Notifications.DismissNotifications(ctx, actor.UserID)
	if err != nil {
		h.WriteError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, map[string]any{"dismissed_at": at})
}

func (h handlers) handleListCalendars(w http.ResponseWriter, r *http.Request) {
	ctx, actor := h.Actor(r)
	items, err := h.deps.Calendars.ListIntegrations(ctx, actor)
	if err != nil {
		h.WriteError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, views.Page[views.Integration]{Items: views.List(items, views.NewIntegration)})
}

func (h handlers) handleConnectCalendar(w http.ResponseWriter, r *http.Request) {
	var in content.IntegrationInput
	if !h.Decode(w, r, &in) {
		return
	}
	ctx, actor := h.Actor(r)
	integration, err := h.deps.Calendars.ConnectCalendar(ctx, actor, in)
	if err != nil {
		h.WriteError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, views.NewIntegration(integration))
}

func (h handlers) handleDisconnectCalendar(w http.ResponseWriter, r *http.Request) {
	ctx, actor := h.Actor(r)
	if err := h.deps.Calendars.DisconnectCalendar(ctx, actor, h.PathID(r, "integrationID")); err != nil {
		h.WriteError(w, r, err)
		return
	}
	httpx.WriteNoContent(w)
}

func (h handlers) handleUploadImage(w http.ResponseWriter, r *http.Request) {
	data, err := readImage(w, r)
	if err != nil {
		h.WriteError(w, r, err)
		return
	}
	ctx, actor := h.Actor(r)
	provider, err := h.deps.Images.UploadProviderImage(ctx, actor, h.PathID(r, "providerID"), data)
	if err != nil {
		h.WriteError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, views.NewProvider(provider))
}

type deleteImageRequest struct {
	URL string `json:"url"`
}

func (h handlers) handleDeleteImage(w http.ResponseWriter, r *http.Request) {
	var in deleteImageRequest
	if !h.Decode(w, r, &in) {
		return
	}
	ctx, actor := h.Actor(r)
	provider, err := h.deps.Images.DeleteProviderImage(ctx, actor, h.PathID(r, "providerID"), in.URL)
	if err != nil {
		h.WriteError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, views.NewProvider(provider))
}

// readImage returns the uploaded bytes from a multipart "file" field or a raw body.
func readImage(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	body := http.MaxBytesReader(w, r.Body, media.MaxImageBytes+uploadOverhead)
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	var src io.Reader = body
	if mediaType == "multipart/form-data" {
		r.Body = body
		file, _, err := r.FormFile("file")
		if err != nil {
			return nil, uploadError(err)
		}
		defer file.Close()
		src = file
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, io.LimitReader(src, media.MaxImageBytes+1)); err != nil {
		return nil, uploadError(err)
	}
	return buf.Bytes(), nil
}

func uploadError(err error) error {
	var tooLarge *http.MaxBytesError
	if stderrors.As(err, &tooLarge) {
		return media.ErrTooLarge
	}
	return validate.Invalid(err, "file")
}
