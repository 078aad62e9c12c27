package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bonitaforward/bonita-forward/internal/services/directory/storage"
)

const applicationColumns = `id, full_name, business_name, email, phone, category, challenge,
       tier_requested, status, decision_note, provider_id, created_at, decided_at`

// CreateApplication inserts one business application.
func (s *Store) CreateApplication(ctx context.Context, application storage.Application) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	application.ID = strings.TrimSpace(application.ID)
	if application.ID == "" {
		return fmt.Errorf("application id is required")
	}
	if application.Status == "" {
		application.Status = storage.StatusPending
	}
	if application.TierRequested == "" {
		application.TierRequested = storage.TierFree
	}
	if application.CreatedAt.IsZero() {
		application.CreatedAt = time.Now().UTC()
	}
	_, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO business_applications (
		   id, full_name, business_name, email, phone, category, challenge,
		   tier_requested, status, decision_note, provider_id, created_at, decided_at
		 ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		application.ID,
		application.FullName,
		application.BusinessName,
		strings.ToLower(strings.TrimSpace(application.Email)),
		application.Phone,
		application.Category,
		application.Challenge,
		string(application.TierRequested),
		string(application.Status),
		application.DecisionNote,
		nullableString(application.ProviderID),
		toMillis(application.CreatedAt),
		nullableMillis(application.DecidedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrAlreadyExists
		}
		return fmt.Errorf("create application: %w", err)
	}
	return nil
}

// GetApplication returns one application by id.
func (s *Store) GetApplication(ctx context.Context, id string) (storage.Application, error) {
	if err := s.ready(ctx); err != nil {
		return storage.Application{}, err
	}
	return getApplication(ctx, s.sqlDB, id)
}

func getApplication(ctx context.Context, db queryRower, id string) (storage.Application, error) {
	row := db.QueryRowContext(ctx, `SELECT `+applicationColumns+` FROM business_applications WHERE id = ?`, strings.TrimSpace(id))
	application, err := scanApplication(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.Application{}, storage.ErrNotFound
		}
		return storage.Application{}, fmt.Errorf("get application: %w", err)
	}
	return application, nil
}

// ListApplications returns applications newest first.
func (s *Store) ListApplications(ctx context.Context, query storage.ApplicationQuery) (storage.Page[storage.Application], error) {
	if err := s.ready(ctx); err != nil {
		return storage.Page[storage.Application]{}, err
	}
	var where whereBuilder
	if query.Status != "" {
		where.add("status = ?", string(query.Status))
	}
	if email := strings.ToLower(strings.TrimSpace(query.Email)); email != "" {
		where.add("email = ?", email)
	}
	limit, limitArgs := pageClause(query.Page)
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT `+applicationColumns+` FROM business_applications`+where.sql()+` ORDER BY created_at DESC, id DESC`+limit,
		append(where.args, limitArgs...)...,
	)
	if err != nil {
		return storage.Page[storage.Application]{}, fmt.Errorf("list applications: %w", err)
	}
	defer rows.Close()

	var applications []storage.Application
	for rows.Next() {
		application, err := scanApplication(rows)
		if err != nil {
			return storage.Page[storage.Application]{}, fmt.Errorf("list applications: %w", err)
		}
		applications = append(applications, application)
	}
	if err := rows.Err(); err != nil {
		return storage.Page[storage.Application]{}, fmt.Errorf("list applications: %w", err)
	}
	return trimPage(applications, query.Page), nil
}

// ApproveApplication inserts provider and marks the application approved in one transaction.
func (s *Store) ApproveApplication(ctx context.Context, id string, provider storage.Provider, decidedAt time.Time) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	return s.inTx(ctx, func(tx *sql.Tx) error {
		application, err := getApplication(ctx, tx, id)
		if err != nil {
			return err
		}
		if application.Status != storage.StatusPending {
			return storage.ErrAlreadyDecided
		}
		if err := insertProvider(ctx, tx, provider); err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx,
			`UPDATE business_applications SET status = ?, provider_id = ?, decided_at = ? WHERE id = ?`,
			string(storage.StatusApproved), provider.ID, toMillis(decidedAt), application.ID,
		)
		if err != nil {
			return fmt.Errorf("approve application: %w", err)
		}
		return nil
	})
}

// RejectApplication marks a pending application rejected.
func (s *Store) RejectApplication(ctx context.Context, id string, note string, decidedAt time.Time) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	return s.inTx(ctx, func(tx *sql.Tx) error {
		application, err := getApplication(ctx, tx, id)
		if err != nil {
			return err
		}
		if application.Status != storage.StatusPending {
			return storage.ErrAlreadyDecided
		}
		_, err = tx.ExecContext(ctx,
			`UPDATE business_applications SET status = ?, decision_note = ?, decided_at = ? WHERE id = ?`,
			string(storage.StatusRejected), strings.TrimSpace(note), toMillis(decidedAt), application.ID,
		)
		if err != nil {
			return fmt.Errorf("reject application: %w", err)
		}
		return nil
	})
}

// CountApplications counts applications in status; an empty status counts all.
func (s *Store) CountApplications(ctx context.Context, status storage.DecisionStatus) (int, error) {
	if err := s.ready(ctx); err != nil {
		return 0, err
	}
	query := `SELECT COUNT(*) FROM business_applications`
	var args []any
	if status != "" {
		query += ` WHERE status = ?`
		args = append(args, string(status))
	}
	n, err := count(ctx, s.sqlDB, query, args...)
	if err != nil {
		return 0, fmt.Errorf("count applications: %w", err)
	}
	return n, nil
}

func scanApplication(row rowScanner) (storage.Application, error) {
	var (
		application storage.Application
		tier        string
		status      string
		providerID  sql.NullString
		createdAt   int64
		decidedAt   sql.NullInt64
	)
	if err := row.Scan(
		&application.ID,
		&application.FullName,
		&application.BusinessName,
		&application.Email,
		&application.Phone,
		&application.Category,
		&application.Challenge,
		&tier,
		&status,
		&application.DecisionNote,
		&providerID,
		&createdAt,
		&decidedAt,
	); err != nil {
		return storage.Application{}, err
	}
	application.TierRequested = storage.Tier(tier)
	application.Status = storage.DecisionStatus(status)
	application.ProviderID = providerID.String
	application.CreatedAt = fromMillis(createdAt)
	application.DecidedAt = timePtr(decidedAt)
	return application, nil
}
