package intake

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	apperrors "github.com/bonitaforward/bonita-forward/internal/platform/errors"
	"github.com/bonitaforward/bonita-forward/internal/services/directory/access"
	"github.com/bonitaforward/bonita-forward/internal/services/directory/category"
	"github.com/bonitaforward/bonita-forward/internal/services/directory/storage"
	"github.com/bonitaforward/bonita-forward/internal/services/directory/storage/sqlite"
	"go.uber.org/zap"
)

var fixedNow = time.Date(2026, 5, 20, 8, 0, 0, 0, time.UTC)

func newTestService(t *testing.T) (*Service, *sqlite.Store) {
	t.Helper()
	store, err := sqlite.Open(context.Background(), filepath.Join(t.TempDir(), "directory.db"), zap.NewNop())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	svc := NewService(store)
	svc.clock = func() time.Time { return fixedNow }
	seq := 0
	svc.newID = func() (string, error) {
		seq++
		return fmt.Sprintf("id-%02d", seq), nil
	}
	return svc, store
}

func seedProvider(t *testing.T, store *sqlite.Store, provider storage.Provider) storage.Provider {
	t.Helper()
	if provider.CategoryKey == "" {
		provider.CategoryKey = category.HomeServices
	}
	provider.CreatedAt = fixedNow
	provider.UpdatedAt = fixedNow
	if err := store.CreateProvider(context.Background(), provider); err != nil {
		t.Fatalf("create provider %s: %v", provider.ID, err)
	}
	return provider
}

func validApplication() ApplicationInput {
	return ApplicationInput{
		FullName:      "Rosa Díaz",
		BusinessName:  "Rosa's Plumbing",
		Email:         "Rosa@Example.com",
		Category:      category.HomeServices,
		TierRequested: "featured",
	}
}

func TestSubmitApplicationValidates(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	tests := []struct {
		name   string
		mutate func(*ApplicationInput)
		want   apperrors.Code
	}{
		{name: "missing business", mutate: func(in *ApplicationInput) { in.BusinessName = " " }, want: apperrors.CodeInvalidInput},
		{name: "bad email", mutate: func(in *ApplicationInput) { in.Email = "rosa" }, want: apperrors.CodeInvalidInput},
		{name: "bad tier", mutate: func(in *ApplicationInput) { in.TierRequested = "platinum" }, want: apperrors.CodeInvalidInput},
		{name: "bad category", mutate: func(in *ApplicationInput) { in.Category = "pets" }, want: apperrors.CodeCategoryUnknown},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			in := validApplication()
			tc.mutate(&in)
			_, err := svc.SubmitApplication(context.Background(), in)
			if got := apperrors.CodeOf(err); got != tc.want {
				t.Fatalf("code = %q, want %q (err = %v)", got, tc.want, err)
			}
		})
	}
}

func TestApproveApplicationCreatesProvider(t *testing.T) {
	t.Parallel()

	svc, store := newTestService(t)
	ctx := context.Background()
	if err := store.CreateAccount(ctx,
		storage.User{ID: "owner-1", Email: "rosa@example.com", PasswordHash: "x", CreatedAt: fixedNow},
		storage.Profile{ID: "owner-1", Email: "rosa@example.com", Role: storage.RoleBusiness, CreatedAt: fixedNow, UpdatedAt: fixedNow},
	); err != nil {
		t.Fatalf("create account: %v", err)
	}

	application, err := svc.SubmitApplication(ctx, validApplication())
	if err != nil {
		t.Fatalf("SubmitApplication() error = %v", err)
	}
	if application.Email != "rosa@example.com" || application.TierRequested != storage.TierFeatured {
		t.Fatalf("application = %+v", application)
	}

	approval, err := svc.ApproveApplication(ctx, application.ID, false)
	if err != nil {
		t.Fatalf("ApproveApplication() error = %v", err)
	}
	provider, err := store.GetProvider(ctx, approval.Provider.ID)
	if err != nil {
		t.Fatalf("GetProvider() error = %v", err)
	}
	if !provider.Published || !provider.Featured || provider.Name != "Rosa's Plumbing" || provider.OwnerUserID != "owner-1" {
		t.Fatalf("provider = %+v", provider)
	}

	pending, err := svc.ListApplications(ctx, storage.StatusPending, 0, "")
	if err != nil {
		t.Fatalf("ListApplications() error = %v", err)
	}
	if len(pending.Items) != 0 {
		t.Fatalf("pending = %+v, want none", pending.Items)
	}
	stored, err := store.GetApplication(ctx, application.ID)
	if err != nil {
		t.Fatalf("GetApplication() error = %v", err)
	}
	if stored.Status != storage.StatusApproved || stored.ProviderID != provider.ID {
		t.Fatalf("stored application = %+v", stored)
	}

	if _, err := svc.ApproveApplication(ctx, application.ID, true); apperrors.CodeOf(err) != apperrors.CodeApplicationDecided {
		t.Fatalf("second approval code = %q", apperrors.CodeOf(err))
	}
	if _, err := svc.RejectApplication(ctx, application.ID, "late"); apperrors.CodeOf(err) != apperrors.CodeApplicationDecided {
		t.Fatalf("reject after approval code = %q", apperrors.CodeOf(err))
	}
}

func TestApproveApplicationRequiresDuplicateConfirmation(t *testing.T) {
	t.Parallel()

	svc, store := newTestService(t)
	ctx := context.Background()
	seedProvider(t, store, storage.Provider{ID: "existing", Name: "  rosa's PLUMBING"})

	application, err := svc.SubmitApplication(ctx, validApplication())
	if err != nil {
		t.Fatalf("SubmitApplication() error = %v", err)
	}
	_, err = svc.ApproveApplication(ctx, application.ID, false)
	if apperrors.CodeOf(err) != apperrors.CodeApplicationDuplicate {
		t.Fatalf("code = %q, want %q", apperrors.CodeOf(err), apperrors.CodeApplicationDuplicate)
	}
	if meta := apperrors.MetadataOf(err); meta["ProviderIDs"] != "existing" {
		t.Fatalf("metadata = %v", meta)
	}
	stored, _ := store.GetApplication(ctx, application.ID)
	if stored.Status != storage.StatusPending {
		t.Fatalf("status = %q, want pending", stored.Status)
	}

	approval, err := svc.ApproveApplication(ctx, application.ID, true)
	if err != nil {
		t.Fatalf("confirmed ApproveApplication() error = %v", err)
	}
	if approval.Provider.OwnerUserID != "" {
		t.Fatalf("owner = %q, want none without an account", approval.Provider.OwnerUserID)
	}
}

func TestRejectApplication(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	ctx := context.Background()
	application, err := svc.SubmitApplication(ctx, validApplication())
	if err != nil {
		t.Fatalf("SubmitApplication() error = %v", err)
	}
	rejected, err := svc.RejectApplication(ctx, application.ID, " incomplete ")
	if err != nil {
		t.Fatalf("RejectApplication() error = %v", err)
	}
	if rejected.Status != storage.StatusRejected || rejected.DecisionNote != "incomplete" {
		t.Fatalf("rejected = %+v", rejected)
	}
	if _, err := svc.RejectApplication(ctx, "missing", ""); apperrors.CodeOf(err) != apperrors.CodeApplicationNotFound {
		t.Fatalf("missing code = %q", apperrors.CodeOf(err))
	}
	count, err := svc.CountPendingApplications(ctx)
	if err != nil || count != 0 {
		t.Fatalf("CountPendingApplications() = %d, %v", count, err)
	}
}

func TestSubmitChangeRequestAuthorization(t *testing.T) {
	t.Parallel()

	svc, store := newTestService(t)
	seedProvider(t, store, storage.Provider{ID: "owned", Name: "Owned", OwnerUserID: "owner"})
	seedProvider(t, store, storage.Provider{ID: "unowned", Name: "Unowned"})
	owner := access.Actor{UserID: "owner", Role: storage.RoleBusiness}
	other := access.Actor{UserID: "other", Role: storage.RoleBusiness}
	community := access.Actor{UserID: "c", Role: storage.RoleCommunity}

	tests := []struct {
		name  string
		actor access.Actor
		input ChangeRequestInput
		want  apperrors.Code
	}{
		{name: "community user", actor: community, input: ChangeRequestInput{ProviderID: "owned", Type: "delete"}, want: apperrors.CodeBusinessRequired},
		{name: "anonymous", actor: access.Anonymous, input: ChangeRequestInput{ProviderID: "owned", Type: "delete"}, want: apperrors.CodeUnauthenticated},
		{name: "bad type", actor: owner, input: ChangeRequestInput{ProviderID: "owned", Type: "rename"}, want: apperrors.CodeChangeRequestType},
		{name: "unknown provider", actor: owner, input: ChangeRequestInput{ProviderID: "ghost", Type: "delete"}, want: apperrors.CodeProviderNotFound},
		{name: "not owner", actor: other, input: ChangeRequestInput{ProviderID: "owned", Type: "feature_request"}, want: apperrors.CodeNotOwner},
		{name: "claim owned", actor: other, input: ChangeRequestInput{ProviderID: "owned", Type: "claim"}, want: apperrors.CodeProviderAlreadyOwned},
		{name: "protected field", actor: owner, input: ChangeRequestInput{ProviderID: "owned", Type: "update", Changes: map[string]any{"published": false}}, want: apperrors.CodeChangeRequestField},
		{name: "empty update", actor: owner, input: ChangeRequestInput{ProviderID: "owned", Type: "update"}, want: apperrors.CodeInvalidInput},
		{name: "claim unowned", actor: other, input: ChangeRequestInput{ProviderID: "unowned", Type: "claim"}},
		{name: "owner update", actor: owner, input: ChangeRequestInput{ProviderID: "owned", Type: "update", Changes: map[string]any{"phone": "555-0100"}}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.SubmitChangeRequest(context.Background(), tc.actor, tc.input)
			if tc.want == "" {
				if err != nil {
					t.Fatalf("SubmitChangeRequest() error = %v", err)
				}
				return
			}
			if got := apperrors.CodeOf(err); got != tc.want {
				t.Fatalf("code = %q, want %q (err = %v)", got, tc.want, err)
			}
		})
	}
}

func TestApproveChangeRequestApplies(t *testing.T) {
	t.Parallel()

	svc, store := newTestService(t)
	ctx := context.Background()
	seedProvider(t, store, storage.Provider{ID: "p1", Name: "Bakery", OwnerUserID: "owner"})
	seedProvider(t, store, storage.Provider{ID: "p2", Name: "Unclaimed"})
	owner := access.Actor{UserID: "owner", Role: storage.RoleBusiness}
	claimer := access.Actor{UserID: "claimer", Role: storage.RoleBusiness}

	update, err := svc.SubmitChangeRequest(ctx, owner, ChangeRequestInput{ProviderID: "p1", Type: "update", Changes: map[string]any{"description": "Fresh bread daily"}})
	if err != nil {
		t.Fatalf("submit update: %v", err)
	}
	feature, err := svc.SubmitChangeRequest(ctx, owner, ChangeRequestInput{ProviderID: "p1", Type: "feature_request"})
	if err != nil {
		t.Fatalf("submit feature: %v", err)
	}
	claim, err := svc.SubmitChangeRequest(ctx, claimer, ChangeRequestInput{ProviderID: "p2", Type: "claim", Reason: "I own it"})
	if err != nil {
		t.Fatalf("submit claim: %v", err)
	}

	for _, requestID := range []string{update.ID, feature.ID, claim.ID} {
		approved, err := svc.ApproveChangeRequest(ctx, requestID)
		if err != nil {
			t.Fatalf("ApproveChangeRequest(%s) error = %v", requestID, err)
		}
		if approved.Status != storage.StatusApproved || approved.DecidedAt == nil {
			t.Fatalf("approved = %+v", approved)
		}
	}

	p1, _ := store.GetProvider(ctx, "p1")
	if p1.Description != "Fresh bread daily" || !p1.Featured {
		t.Fatalf("p1 = %+v", p1)
	}
	p2, _ := store.GetProvider(ctx, "p2")
	if p2.OwnerUserID != "claimer" {
		t.Fatalf("p2 owner = %q, want claimer", p2.OwnerUserID)
	}

	if _, err := svc.ApproveChangeRequest(ctx, update.ID); apperrors.CodeOf(err) != apperrors.CodeChangeRequestDecided {
		t.Fatalf("second approval code = %q", apperrors.CodeOf(err))
	}
	if _, err := svc.ApproveChangeRequest(ctx, "missing"); apperrors.CodeOf(err) != apperrors.CodeChangeRequestNotFound {
		t.Fatalf("missing code = %q", apperrors.CodeOf(err))
	}

	own, err := svc.ListOwnChangeRequests(ctx, owner)
	if err != nil || len(own) != 2 {
		t.Fatalf("ListOwnChangeRequests() = %d items, %v", len(own), err)
	}
}

func TestApproveDeleteAndCompetingClaims(t *testing.T) {
	t.Parallel()

	svc, store := newTestService(t)
	ctx := context.Background()
	seedProvider(t, store, storage.Provider{ID: "p1", Name: "Closing", OwnerUserID: "owner"})
	seedProvider(t, store, storage.Provider{ID: "p2", Name: "Contested"})
	owner := access.Actor{UserID: "owner", Role: storage.RoleBusiness}

	deletion, err := svc.SubmitChangeRequest(ctx, owner, ChangeRequestInput{ProviderID: "p1", Type: "delete"})
	if err != nil {
		t.Fatalf("submit delete: %v", err)
	}
	if _, err := svc.ApproveChangeRequest(ctx, deletion.ID); err != nil {
		t.Fatalf("approve delete: %v", err)
	}
	if _, err := store.GetProvider(ctx, "p1"); err == nil {
		t.Fatal("provider p1 still exists")
	}

	first, err := svc.SubmitChangeRequest(ctx, access.Actor{UserID: "a", Role: storage.RoleBusiness}, ChangeRequestInput{ProviderID: "p2", Type: "claim"})
	if err != nil {
		t.Fatalf("first claim: %v", err)
	}
	second, err := svc.SubmitChangeRequest(ctx, access.Actor{UserID: "b", Role: storage.RoleBusiness}, ChangeRequestInput{ProviderID: "p2", Type: "claim"})
	if err != nil {
		t.Fatalf("second claim: %v", err)
	}
	if _, err := svc.ApproveChangeRequest(ctx, first.ID); err != nil {
		t.Fatalf("approve first claim: %v", err)
	}
	if _, err := svc.ApproveChangeRequest(ctx, second.ID); apperrors.CodeOf(err) != apperrors.CodeProviderAlreadyOwned {
		t.Fatalf("second claim code = %q", apperrors.CodeOf(err))
	}
	request, _ := store.GetChangeRequest(ctx, second.ID)
	if request.Status != storage.StatusPending {
		t.Fatalf("failed approval changed status to %q", request.Status)
	}

	if err := svc.RejectChangeRequest(ctx, second.ID, "already claimed"); err != nil {
		t.Fatalf("RejectChangeRequest() error = %v", err)
	}
	if err := svc.RejectChangeRequest(ctx, second.ID, "again"); apperrors.CodeOf(err) != apperrors.CodeChangeRequestDecided {
		t.Fatalf("reject twice code = %q", apperrors.CodeOf(err))
	}
}

func TestContactLeads(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	ctx := context.Background()
	if _, err := svc.SubmitContactLead(ctx, ContactLeadInput{BusinessName: "Shop", ContactEmail: "bad"}); apperrors.CodeOf(err) != apperrors.CodeInvalidInput {
		t.Fatalf("code = %q", apperrors.CodeOf(err))
	}
	lead, err := svc.SubmitContactLead(ctx, ContactLeadInput{BusinessName: " Shop ", ContactEmail: "Owner@Shop.Example", Details: "feature us"})
	if err != nil {
		t.Fatalf("SubmitContactLead() error = %v", err)
	}
	if lead.BusinessName != "Shop" || lead.ContactEmail != "owner@shop.example" {
		t.Fatalf("lead = %+v", lead)
	}
	page, err := svc.ListContactLeads(ctx, 10, "")
	if err != nil || len(page.Items) != 1 {
		t.Fatalf("ListContactLeads() = %+v, %v", page, err)
	}
	count, err := svc.CountContactLeads(ctx)
	if err != nil || count != 1 {
		t.Fatalf("CountContactLeads() = %d, %v", count, err)
	}
}

func TestParseDecisionStatus(t *testing.T) {
	t.Parallel()

	for _, raw := range []string{"", "pending", " Approved ", "rejected"} {
		if _, err := ParseDecisionStatus(raw); err != nil {
			t.Fatalf("ParseDecisionStatus(%q) error = %v", raw, err)
		}
	}
	if _, err := ParseDecisionStatus("archived"); !strings.Contains(err.Error(), "unknown") {
		t.Fatalf("error = %v", err)
	}
}
