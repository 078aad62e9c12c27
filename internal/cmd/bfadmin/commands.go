package bfadmin

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/bonitaforward/bonita-forward/internal/platform/storage/sqlitemigrate"
	"github.com/bonitaforward/bonita-forward/internal/services/directory/access"
	"github.com/bonitaforward/bonita-forward/internal/services/directory/accounts"
	"github.com/bonitaforward/bonita-forward/internal/services/directory/intake"
	"github.com/bonitaforward/bonita-forward/internal/services/directory/storage"
	"github.com/bonitaforward/bonita-forward/internal/services/directory/storage/sqlite/migrations"
	"github.com/spf13/cobra"
)

const defaultListSize = 50

func newGrantAdminCommand(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "grant-admin [email]",
		Short: "Give an account the admin role",
		Args:  cobra.ExactArgs(1),
		RunE: s.run(func(ctx context.Context, cmd *cobra.Command, args []string) error {
			profile, err := s.accounts.SetRoleByEmail(ctx, args[0], storage.RoleAdmin)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s is now %s\n", profile.Email, profile.Role)
			return nil
		}),
	}
}

func newRevokeAdminCommand(s *session) *cobra.Command {
	var role string
	cmd := &cobra.Command{
		Use:   "revoke-admin [email]",
		Short: "Remove the admin role from an account",
		Long:  "Remove the admin role from an account. Addresses on the BONITA_FORWARD_ADMIN_EMAILS allowlist keep admin access regardless.",
		Args:  cobra.ExactArgs(1),
		RunE: s.run(func(ctx context.Context, cmd *cobra.Command, args []string) error {
			next, err := accounts.ParseRole(role)
			if err != nil {
				return err
			}
			if next == storage.RoleAdmin {
				return fmt.Errorf("--role must be business or community")
			}
			profile, err := s.accounts.SetRoleByEmail(ctx, args[0], next)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s is now %s\n", profile.Email, profile.Role)
			return nil
		}),
	}
	cmd.Flags().StringVar(&role, "role", string(storage.RoleCommunity), "Role to assign instead of admin")
	return cmd
}

func newUsersCommand(s *session) *cobra.Command {
	var (
		role      string
		pageSize  int
		pageToken string
	)
	list := &cobra.Command{
		Use:   "list",
		Short: "List accounts",
		Args:  cobra.NoArgs,
		RunE: s.run(func(ctx context.Context, cmd *cobra.Command, args []string) error {
			var filter storage.Role
			if strings.TrimSpace(role) != "" {
				parsed, err := accounts.ParseRole(role)
				if err != nil {
					return err
				}
				filter = parsed
			}
			page, err := s.accounts.ListUsers(ctx, filter, pageSize, pageToken)
			if err != nil {
				return err
			}
			w := newTable(cmd.OutOrStdout())
			fmt.Fprintln(w, "ID\tEMAIL\tNAME\tROLE\tCREATED")
			for _, profile := range page.Items {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", profile.ID, profile.Email, profile.Name, profile.Role, formatTime(profile.CreatedAt))
			}
			return flushTable(cmd.OutOrStdout(), w, page.NextPageToken)
		}),
	}
	list.Flags().StringVar(&role, "role", "", "Only list accounts with this role")
	list.Flags().IntVar(&pageSize, "page-size", defaultListSize, "Rows per page")
	list.Flags().StringVar(&pageToken, "page-token", "", "Token from a previous page")

	users := &cobra.Command{
		Use:   "users",
		Short: "Inspect accounts",
	}
	users.AddCommand(list)
	return users
}

func newDeleteUserCommand(s *session) *cobra.Command {
	var confirmed bool
	cmd := &cobra.Command{
		Use:   "delete-user [user-id]",
		Short: "Delete an account and detach the listings it owned",
		Args:  cobra.ExactArgs(1),
		RunE: s.run(func(ctx context.Context, cmd *cobra.Command, args []string) error {
			if !confirmed {
				return fmt.Errorf("refusing to delete %s without --yes", args[0])
			}
			if err := s.accounts.DeleteUser(ctx, access.Anonymous, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
			return nil
		}),
	}
	cmd.Flags().BoolVar(&confirmed, "yes", false, "Confirm the deletion")
	return cmd
}

func newApplicationsCommand(s *session) *cobra.Command {
	var (
		status    string
		pageSize  int
		pageToken string
	)
	list := &cobra.Command{
		Use:   "list",
		Short: "List business applications",
		Args:  cobra.NoArgs,
		RunE: s.run(func(ctx context.Context, cmd *cobra.Command, args []string) error {
			decision, err := parseStatus(status)
			if err != nil {
				return err
			}
			page, err := s.intake.ListApplications(ctx, decision, pageSize, pageToken)
			if err != nil {
				return err
			}
			w := newTable(cmd.OutOrStdout())
			fmt.Fprintln(w, "ID\tBUSINESS\tCATEGORY\tEMAIL\tTIER\tSTATUS\tSUBMITTED")
			for _, application := range page.Items {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
					application.ID,
					application.BusinessName,
					application.Category,
					application.Email,
					application.TierRequested,
					application.Status,
					formatTime(application.CreatedAt),
				)
			}
			return flushTable(cmd.OutOrStdout(), w, page.NextPageToken)
		}),
	}
	list.Flags().StringVar(&status, "status", string(storage.StatusPending), "pending, approved, rejected or all")
	list.Flags().IntVar(&pageSize, "page-size", defaultListSize, "Rows per page")
	list.Flags().StringVar(&pageToken, "page-token", "", "Token from a previous page")

	var confirmDuplicate bool
	approve := &cobra.Command{
		Use:   "approve [application-id]",
		Short: "Approve an application and publish its listing",
		Args:  cobra.ExactArgs(1),
		RunE: s.run(func(ctx context.Context, cmd *cobra.Command, args []string) error {
			approval, err := s.intake.ApproveApplication(ctx, args[0], confirmDuplicate)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "approved %s: provider %s (%s)\n", approval.Application.ID, approval.Provider.ID, approval.Provider.Name)
			return nil
		}),
	}
	approve.Flags().BoolVar(&confirmDuplicate, "confirm-duplicate", false, "Publish even when a listing with the same name exists")

	var note string
	reject := &cobra.Command{
		Use:   "reject [application-id]",
		Short: "Reject an application",
		Args:  cobra.ExactArgs(1),
		RunE: s.run(func(ctx context.Context, cmd *cobra.Command, args []string) error {
			application, err := s.intake.RejectApplication(ctx, args[0], note)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "rejected %s\n", application.ID)
			return nil
		}),
	}
	reject.Flags().StringVar(&note, "note", "", "Decision note stored with the application")

	applications := &cobra.Command{
		Use:     "applications",
		Aliases: []string{"apps"},
		Short:   "Review business applications",
	}
	applications.AddCommand(list, approve, reject)
	return applications
}

func newChangeRequestsCommand(s *session) *cobra.Command {
	var (
		status    string
		pageSize  int
		pageToken string
	)
	list := &cobra.Command{
		Use:   "list",
		Short: "List listing change requests",
		Args:  cobra.NoArgs,
		RunE: s.run(func(ctx context.Context, cmd *cobra.Command, args []string) error {
			decision, err := parseStatus(status)
			if err != nil {
				return err
			}
			page, err := s.intake.ListChangeRequests(ctx, decision, pageSize, pageToken)
			if err != nil {
				return err
			}
			w := newTable(cmd.OutOrStdout())
			fmt.Fprintln(w, "ID\tPROVIDER\tOWNER\tTYPE\tSTATUS\tSUBMITTED")
			for _, request := range page.Items {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
					request.ID,
					request.ProviderID,
					request.OwnerUserID,
					request.Type,
					request.Status,
					formatTime(request.CreatedAt),
				)
			}
			return flushTable(cmd.OutOrStdout(), w, page.NextPageToken)
		}),
	}
	list.Flags().StringVar(&status, "status", string(storage.StatusPending), "pending, approved, rejected or all")
	list.Flags().IntVar(&pageSize, "page-size", defaultListSize, "Rows per page")
	list.Flags().StringVar(&pageToken, "page-token", "", "Token from a previous page")

	changes := &cobra.Command{
		Use:   "change-requests",
		Short: "Inspect listing change requests",
	}
	changes.AddCommand(list)
	return changes
}

func newMigrationsCommand(s *session) *cobra.Command {
	status := &cobra.Command{
		Use:   "status",
		Short: "Show applied and pending schema migrations",
		Args:  cobra.NoArgs,
		RunE: s.run(func(ctx context.Context, cmd *cobra.Command, args []string) error {
			applied, err := sqlitemigrate.Applied(ctx, s.store.DB())
			if err != nil {
				return err
			}
			pending, err := sqlitemigrate.Pending(ctx, s.store.DB(), migrations.FS, "")
			if err != nil {
				return err
			}
			w := newTable(cmd.OutOrStdout())
			fmt.Fprintln(w, "MIGRATION\tSTATE")
			for _, name := range applied {
				fmt.Fprintf(w, "%s\tapplied\n", name)
			}
			for _, name := range pending {
				fmt.Fprintf(w, "%s\tpending\n", name)
			}
			return w.Flush()
		}),
	}
	migrationsCmd := &cobra.Command{
		Use:   "migrations",
		Short: "Inspect the database schema",
	}
	migrationsCmd.AddCommand(status)
	return migrationsCmd
}

func parseStatus(raw string) (storage.DecisionStatus, error) {
	if strings.EqualFold(strings.TrimSpace(raw), "all") {
		return "", nil
	}
	return intake.ParseDecisionStatus(raw)
}

func newTable(out io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
}

func flushTable(out io.Writer, w *tabwriter.Writer, nextPageToken string) error {
	if err := w.Flush(); err != nil {
		return err
	}
	if nextPageToken != "" {
		fmt.Fprintf(out, "next page: --page-token %s\n", nextPageToken)
	}
	return nil
}

func formatTime(value time.Time) string {
	if value.IsZero() {
		return "-"
	}
	return value.UTC().Format(time.RFC3339)
}
