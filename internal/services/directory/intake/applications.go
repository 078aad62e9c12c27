package intake

import (
	"context"
	"errors"
	"strings"

	apperrors "github.com/bonitaforward/bonita-forward/internal/platform/errors"
	"github.com/bonitaforward/bonita-forward/internal/platform/validate"
	"github.com/bonitaforward/bonita-forward/internal/services/directory/category"
	"github.com/bonitaforward/bonita-forward/internal/services/directory/storage"
)

// ApplicationInput is the public "list your business" form.
type ApplicationInput struct {
	FullName      string `json:"full_name" validate:"required,max=200"`
	BusinessName  string `json:"business_name" validate:"required,max=200"`
	Email         string `json:"email" validate:"required,email"`
	Phone         string `json:"phone" validate:"max=40"`
	Category      string `json:"category"`
	Challenge     string `json:"challenge" validate:"max=4000"`
	TierRequested string `json:"tier_requested" validate:"omitempty,oneof=free featured"`
}

// SubmitApplication stores a pending application.
func (s *Service) SubmitApplication(ctx context.Context, in ApplicationInput) (storage.Application, error) {
	if err := s.ready(); err != nil {
		return storage.Application{}, err
	}
	in.FullName = strings.TrimSpace(in.FullName)
	in.BusinessName = strings.TrimSpace(in.BusinessName)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.TierRequested = strings.ToLower(strings.TrimSpace(in.TierRequested))
	if err := validate.Struct(in); err != nil {
		return storage.Application{}, err
	}
	key, err := category.Require(in.Category)
	if err != nil {
		return storage.Application{}, err
	}
	tier := storage.TierFree
	if in.TierRequested == string(storage.TierFeatured) {
		tier = storage.TierFeatured
	}
	applicationID, err := s.nextID("application")
	if err != nil {
		return storage.Application{}, err
	}
	application := storage.Application{
		ID:            applicationID,
		FullName:      in.FullName,
		BusinessName:  in.BusinessName,
		Email:         in.Email,
		Phone:         strings.TrimSpace(in.Phone),
		Category:      key,
		Challenge:     strings.TrimSpace(in.Challenge),
		TierRequested: tier,
		Status:        storage.StatusPending,
		CreatedAt:     s.now(),
	}
	if err := s.store.CreateApplication(ctx, application); err != nil {
		return storage.Application{}, err
	}
	return application, nil
}

// ListApplications returns applications, optionally by status, newest first.
func (s *Service) ListApplications(ctx context.Context, status storage.DecisionStatus, pageSize int, pageToken string) (storage.Page[storage.Application], error) {
	if err := s.ready(); err != nil {
		return storage.Page[storage.Application]{}, err
	}
	page, err := parsePage(pageSize, pageToken)
	if err != nil {
		return storage.Page[storage.Application]{}, err
	}
	return s.store.ListApplications(ctx, storage.ApplicationQuery{Status: status, Page: page})
}

// ApplicationsByEmail returns every application submitted with email.
func (s *Service) ApplicationsByEmail(ctx context.Context, email string) ([]storage.Application, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, nil
	}
	page, err := s.store.ListApplications(ctx, storage.ApplicationQuery{Email: email})
	if err != nil {
		return nil, err
	}
	return page.Items, nil
}

// Approval is the outcome of approving an application.
type Approval struct {
	Application storage.Application
	Provider    storage.Provider
}

// ApproveApplication creates a published provider from the application. When a
// listing with the same name exists the caller must confirm the duplicate.
func (s *Service) ApproveApplication(ctx context.Context, applicationID string, confirmDuplicate bool) (Approval, error) {
	if err := s.ready(); err != nil {
		return Approval{}, err
	}
	application, err := s.application(ctx, applicationID)
	if err != nil {
		return Approval{}, err
	}
	if application.Status != storage.StatusPending {
		return Approval{}, decidedError(apperrors.CodeApplicationDecided, application.Status)
	}
	if !confirmDuplicate {
		duplicates, err := s.store.FindProvidersByName(ctx, application.BusinessName)
		if err != nil {
			return Approval{}, err
		}
		if len(duplicates) > 0 {
			ids := make([]string, 0, len(duplicates))
			for _, duplicate := range duplicates {
				ids = append(ids, duplicate.ID)
			}
			return Approval{}, apperrors.WithMetadata(apperrors.CodeApplicationDuplicate, "provider name already listed", map[string]string{
				"Name":        application.BusinessName,
				"ProviderIDs": strings.Join(ids, ","),
			})
		}
	}

	providerID, err := s.nextID("provider")
	if err != nil {
		return Approval{}, err
	}
	now := s.now()
	provider := storage.Provider{
		ID:          providerID,
		Name:        application.BusinessName,
		CategoryKey: application.Category,
		Phone:       application.Phone,
		Email:       application.Email,
		Published:   true,
		Featured:    application.TierRequested == storage.TierFeatured,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	user, err := s.store.GetUserByEmail(ctx, application.Email)
	switch {
	case err == nil:
		provider.OwnerUserID = user.ID
	case !errors.Is(err, storage.ErrNotFound):
		return Approval{}, err
	}

	if err := s.store.ApproveApplication(ctx, application.ID, provider, now); err != nil {
		switch {
		case errors.Is(err, storage.ErrNotFound):
			return Approval{}, ErrApplicationNotFound
		case errors.Is(err, storage.ErrAlreadyDecided):
			return Approval{}, decidedError(apperrors.CodeApplicationDecided, storage.StatusApproved)
		}
		return Approval{}, err
	}
	application.Status = storage.StatusApproved
	application.ProviderID = provider.ID
	application.DecidedAt = &now
	return Approval{Application: application, Provider: provider}, nil
}

// RejectApplication marks a pending application rejected with a note.
func (s *Service) RejectApplication(ctx context.Context, applicationID string, note string) (storage.Application, error) {
	if err := s.ready(); err != nil {
		return storage.Application{}, err
	}
	application, err := s.application(ctx, applicationID)
	if err != nil {
		return storage.Application{}, err
	}
	if application.Status != storage.StatusPending {
		return storage.Application{}, decidedError(apperrors.CodeApplicationDecided, application.Status)
	}
	now := s.now()
	note = strings.TrimSpace(note)
	if err := s.store.RejectApplication(ctx, application.ID, note, now); err != nil {
		if errors.Is(err, storage.ErrAlreadyDecided) {
			return storage.Application{}, decidedError(apperrors.CodeApplicationDecided, storage.StatusRejected)
		}
		return storage.Application{}, err
	}
	application.Status = storage.StatusRejected
	application.DecisionNote = note
	application.DecidedAt = &now
	return application, nil
}

// CountPendingApplications returns how many applications await review.
func (s *Service) CountPendingApplications(ctx context.Context) (int, error) {
	if err := s.ready(); err != nil {
		return 0, err
	}
	return s.store.CountApplications(ctx, storage.StatusPending)
}

func (s *Service) application(ctx context.Context, applicationID string) (storage.Application, error) {
	applicationID = strings.TrimSpace(applicationID)
	if applicationID == "" {
		return storage.Application{}, ErrApplicationNotFound
	}
	application, err := s.store.GetApplication(ctx, applicationID)
	if errors.Is(err, storage.ErrNotFound) {
		return storage.Application{}, ErrApplicationNotFound
	}
	return application, err
}
