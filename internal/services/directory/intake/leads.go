package intake

import (
	"context"
	"strings"

	"github.com/bonitaforward/bonita-forward/internal/platform/validate"
	"github.com/bonitaforward/bonita-forward/internal/services/directory/storage"
)

// ContactLeadInput is the public "get featured" contact form.
type ContactLeadInput struct {
	BusinessName string `json:"business_name" validate:"required,max=200"`
	ContactEmail string `json:"contact_email" validate:"required,email"`
	Details      string `json:"details" validate:"max=4000"`
}

// SubmitContactLead stores a contact form submission.
func (s *Service) SubmitContactLead(ctx context.Context, in ContactLeadInput) (storage.ContactLead, error) {
	if err := s.ready(); err != nil {
		return storage.ContactLead{}, err
	}
	in.BusinessName = strings.TrimSpace(in.BusinessName)
	in.ContactEmail = strings.ToLower(strings.TrimSpace(in.ContactEmail))
	if err := validate.Struct(in); err != nil {
		return storage.ContactLead{}, err
	}
	leadID, err := s.nextID("lead")
	if err != nil {
		return storage.ContactLead{}, err
	}
	lead := storage.ContactLead{
		ID:           leadID,
		BusinessName: in.BusinessName,
		ContactEmail: in.ContactEmail,
		Details:      strings.TrimSpace(in.Details),
		CreatedAt:    s.now(),
	}
	if err := s.store.CreateContactLead(ctx, lead); err != nil {
		return storage.ContactLead{}, err
	}
	return lead, nil
}

// ListContactLeads returns contact leads newest first.
func (s *Service) ListContactLeads(ctx context.Context, pageSize int, pageToken string) (storage.Page[storage.ContactLead], error) {
	if err := s.ready(); err != nil {
		return storage.Page[storage.ContactLead]{}, err
	}
	page, err := parsePage(pageSize, pageToken)
	if err != nil {
		return storage.Page[storage.ContactLead]{}, err
	}
	return s.store.ListContactLeads(ctx, page)
}

// CountContactLeads returns the number of stored leads.
func (s *Service) CountContactLeads(ctx context.Context) (int, error) {
	if err := s.ready(); err != nil {
		return 0, err
	}
	return s.store.CountContactLeads(ctx)
}
