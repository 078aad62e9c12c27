package content

import (
	"context"
	"errors"
	"strings"
	"time"

	apperrors "github.com/bonitaforward/bonita-forward/internal/platform/errors"
	"github.com/bonitaforward/bonita-forward/internal/platform/pagination"
	"github.com/bonitaforward/bonita-forward/internal/platform/validate"
	"github.com/bonitaforward/bonita-forward/internal/services/directory/access"
	"github.com/bonitaforward/bonita-forward/internal/services/directory/storage"
)

// ErrEventNotFound is returned when an event is missing.
var ErrEventNotFound = apperrors.New(apperrors.CodeEventNotFound, "event not found")

// EventInput is a calendar event submission.
type EventInput struct {
	Title       string     `json:"title" validate:"required,max=300"`
	Description string     `json:"description" validate:"max=10000"`
	StartAt     time.Time  `json:"start_at" validate:"required"`
	EndAt       *time.Time `json:"end_at"`
	Location    string     `json:"location" validate:"max=300"`
	Address     string     `json:"address" validate:"max=300"`
	Category    string     `json:"category" validate:"max=60"`
	URL         string     `json:"url" validate:"omitempty,url"`
}

// EventRange bounds a public event listing. A nil From means now.
type EventRange struct {
	From      *time.Time
	To        *time.Time
	PageSize  int
	PageToken string
}

// ListEvents returns approved events ordered by start time.
func (s *Service) ListEvents(ctx context.Context, r EventRange) (storage.Page[storage.Event], error) {
	if err := s.ready(); err != nil {
		return storage.Page[storage.Event]{}, err
	}
	from := s.now()
	if r.From != nil {
		from = r.From.UTC()
	}
	if r.To != nil && !r.To.After(from) {
		return storage.Page[storage.Event]{}, apperrors.New(apperrors.CodeEventInvalidRange, "range end must follow its start")
	}
	page, err := pagination.Parse(r.PageSize, r.PageToken, pagination.Standard)
	if err != nil {
		return storage.Page[storage.Event]{}, err
	}
	approved := true
	return s.store.ListEvents(ctx, storage.EventQuery{From: &from, To: r.To, Approved: &approved, Page: page})
}

// ListPendingEvents returns submitted events awaiting approval.
func (s *Service) ListPendingEvents(ctx context.Context, pageSize int, pageToken string) (storage.Page[storage.Event], error) {
	if err := s.ready(); err != nil {
		return storage.Page[storage.Event]{}, err
	}
	page, err := pagination.Parse(pageSize, pageToken, pagination.Standard)
	if err != nil {
		return storage.Page[storage.Event]{}, err
	}
	approved := false
	return s.store.ListEvents(ctx, storage.EventQuery{Approved: &approved, Page: page})
}

// SubmitEvent stores a signed-in user's event for admin approval.
func (s *Service) SubmitEvent(ctx context.Context, actor access.Actor, in EventInput) (storage.Event, error) {
	if err := access.RequireSignedIn(actor); err != nil {
		return storage.Event{}, err
	}
	return s.createEvent(ctx, in, storage.SourceSubmitted, false, actor.UserID)
}

// CreateEvent stores an approved event on behalf of an admin.
func (s *Service) CreateEvent(ctx context.Context, actor access.Actor, in EventInput) (storage.Event, error) {
	return s.createEvent(ctx, in, storage.SourceAdmin, true, actor.UserID)
}

func (s *Service) createEvent(ctx context.Context, in EventInput, source storage.EventSource, approved bool, createdBy string) (storage.Event, error) {
	if err := s.ready(); err != nil {
		return storage.Event{}, err
	}
	in.Title = strings.TrimSpace(in.Title)
	if err := validate.Struct(in); err != nil {
		return storage.Event{}, err
	}
	if in.EndAt != nil && !in.EndAt.After(in.StartAt) {
		return storage.Event{}, apperrors.New(apperrors.CodeEventInvalidRange, "event end must follow its start")
	}
	eventID, err := s.nextID("event")
	if err != nil {
		return storage.Event{}, err
	}
	event := storage.Event{
		ID:          eventID,
		Title:       in.Title,
		Description: strings.TrimSpace(in.Description),
		StartAt:     in.StartAt.UTC(),
		Location:    strings.TrimSpace(in.Location),
		Address:     strings.TrimSpace(in.Address),
		Category:    strings.TrimSpace(in.Category),
		URL:         strings.TrimSpace(in.URL),
		Source:      source,
		Approved:    approved,
		CreatedBy:   createdBy,
		CreatedAt:   s.now(),
	}
	if in.EndAt != nil {
		end := in.EndAt.UTC()
		event.EndAt = &end
	}
	if err := s.store.CreateEvent(ctx, event); err != nil {
		return storage.Event{}, err
	}
	return event, nil
}

// ApproveEvent publishes a submitted event.
func (s *Service) ApproveEvent(ctx context.Context, eventID string) (storage.Event, error) {
	if err := s.ready(); err != nil {
		return storage.Event{}, err
	}
	eventID = strings.TrimSpace(eventID)
	if err := s.store.ApproveEvent(ctx, eventID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return storage.Event{}, ErrEventNotFound
		}
		return storage.Event{}, err
	}
	event, err := s.store.GetEvent(ctx, eventID)
	if errors.Is(err, storage.ErrNotFound) {
		return storage.Event{}, ErrEventNotFound
	}
	return event, err
}

// DeleteEvent removes an event.
func (s *Service) DeleteEvent(ctx context.Context, eventID string) error {
	if err := s.ready(); err != nil {
		return err
	}
	err := s.store.DeleteEvent(ctx, strings.TrimSpace(eventID))
	if errors.Is(err, storage.ErrNotFound) {
		return ErrEventNotFound
	}
	return err
}

// CountPendingEvents returns how many events await approval.
func (s *Service) CountPendingEvents(ctx context.Context) (int, error) {
	if err := s.ready(); err != nil {
		return 0, err
	}
	return s.store.CountEvents(ctx, false)
}
