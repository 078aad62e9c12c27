package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bonitaforward/bonita-forward/internal/services/directory/storage"
)

const changeRequestColumns = `id, provider_id, owner_user_id, type, changes, reason, status,
       decision_reason, created_at, decided_at`

// CreateChangeRequest inserts one change request.
func (s *Store) CreateChangeRequest(ctx context.Context, request storage.ChangeRequest) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	request.ID = strings.TrimSpace(request.ID)
	if request.ID == "" {
		return fmt.Errorf("change request id is required")
	}
	if request.Status == "" {
		request.Status = storage.StatusPending
	}
	if request.CreatedAt.IsZero() {
		request.CreatedAt = time.Now().UTC()
	}
	changes, err := encodeJSON(request.Changes, "{}")
	if err != nil {
		return err
	}
	_, err = s.sqlDB.ExecContext(ctx,
		`INSERT INTO provider_change_requests (
		   id, provider_id, owner_user_id, type, changes, reason, status,
		   decision_reason, created_at, decided_at
		 ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		request.ID,
		request.ProviderID,
		request.OwnerUserID,
		string(request.Type),
		changes,
		request.Reason,
		string(request.Status),
		request.DecisionReason,
		toMillis(request.CreatedAt),
		nullableMillis(request.DecidedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrAlreadyExists
		}
		return fmt.Errorf("create change request: %w", err)
	}
	return nil
}

// GetChangeRequest returns one change request by id.
func (s *Store) GetChangeRequest(ctx context.Context, id string) (storage.ChangeRequest, error) {
	if err := s.ready(ctx); err != nil {
		return storage.ChangeRequest{}, err
	}
	return getChangeRequest(ctx, s.sqlDB, id)
}

func getChangeRequest(ctx context.Context, db queryRower, id string) (storage.ChangeRequest, error) {
	row := db.QueryRowContext(ctx, `SELECT `+changeRequestColumns+` FROM provider_change_requests WHERE id = ?`, strings.TrimSpace(id))
	request, err := scanChangeRequest(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.ChangeRequest{}, storage.ErrNotFound
		}
		return storage.ChangeRequest{}, fmt.Errorf("get change request: %w", err)
	}
	return request, nil
}

// ListChangeRequests returns change requests newest first.
func (s *Store) ListChangeRequests(ctx context.Context, query storage.ChangeRequestQuery) (storage.Page[storage.ChangeRequest], error) {
	if err := s.ready(ctx); err != nil {
		return storage.Page[storage.ChangeRequest]{}, err
	}
	var where whereBuilder
	if query.Status != "" {
		where.add("status = ?", string(query.Status))
	}
	if owner := strings.TrimSpace(query.OwnerUserID); owner != "" {
		where.add("owner_user_id = ?", owner)
	}
	limit, limitArgs := pageClause(query.Page)
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT `+changeRequestColumns+` FROM provider_change_requests`+where.sql()+` ORDER BY created_at DESC, id DESC`+limit,
		append(where.args, limitArgs...)...,
	)
	if err != nil {
		return storage.Page[storage.ChangeRequest]{}, fmt.Errorf("list change requests: %w", err)
	}
	defer rows.Close()

	var requests []storage.ChangeRequest
	for rows.Next() {
		request, err := scanChangeRequest(rows)
		if err != nil {
			return storage.Page[storage.ChangeRequest]{}, fmt.Errorf("list change requests: %w", err)
		}
		requests = append(requests, request)
	}
	if err := rows.Err(); err != nil {
		return storage.Page[storage.ChangeRequest]{}, fmt.Errorf("list change requests: %w", err)
	}
	return trimPage(requests, query.Page), nil
}

// ApproveChangeRequest applies the computed provider change and marks the request
// approved in one transaction.
func (s *Store) ApproveChangeRequest(ctx context.Context, id string, decidedAt time.Time, apply storage.ChangeApplier) (storage.ChangeRequest, error) {
	if err := s.ready(ctx); err != nil {
		return storage.ChangeRequest{}, err
	}
	if apply == nil {
		return storage.ChangeRequest{}, fmt.Errorf("change applier is required")
	}
	var approved storage.ChangeRequest
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		request, err := getChangeRequest(ctx, tx, id)
		if err != nil {
			return err
		}
		if request.Status != storage.StatusPending {
			return storage.ErrAlreadyDecided
		}
		current, err := getProvider(ctx, tx, request.ProviderID)
		if err != nil {
			return err
		}
		change, err := apply(request, current)
		if err != nil {
			return err
		}
		if change.Delete {
			if err := deleteProvider(ctx, tx, current.ID); err != nil {
				return err
			}
		} else {
			change.Provider.ID = current.ID
			if err := updateProvider(ctx, tx, change.Provider); err != nil {
				return err
			}
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE provider_change_requests SET status = ?, decided_at = ? WHERE id = ?`,
			string(storage.StatusApproved), toMillis(decidedAt), request.ID,
		); err != nil {
			return fmt.Errorf("approve change request: %w", err)
		}
		request.Status = storage.StatusApproved
		decided := decidedAt.UTC()
		request.DecidedAt = &decided
		approved = request
		return nil
	})
	if err != nil {
		return storage.ChangeRequest{}, err
	}
	return approved, nil
}

// RejectChangeRequest marks a pending change request rejected.
func (s *Store) RejectChangeRequest(ctx context.Context, id string, reason string, decidedAt time.Time) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	return s.inTx(ctx, func(tx *sql.Tx) error {
		request, err := getChangeRequest(ctx, tx, id)
		if err != nil {
			return err
		}
		if request.Status != storage.StatusPending {
			return storage.ErrAlreadyDecided
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE provider_change_requests SET status = ?, decision_reason = ?, decided_at = ? WHERE id = ?`,
			string(storage.StatusRejected), strings.TrimSpace(reason), toMillis(decidedAt), request.ID,
		); err != nil {
			return fmt.Errorf("reject change request: %w", err)
		}
		return nil
	})
}

// CountChangeRequests counts change requests in status; an empty status counts all.
func (s *Store) CountChangeRequests(ctx context.Context, status storage.DecisionStatus) (int, error) {
	if err := s.ready(ctx); err != nil {
		return 0, err
	}
	query := `SELECT COUNT(*) FROM provider_change_requests`
	var args []any
	if status != "" {
		query += ` WHERE status = ?`
		args = append(args, string(status))
	}
	n, err := count(ctx, s.sqlDB, query, args...)
	if err != nil {
		return 0, fmt.Errorf("count change requests: %w", err)
	}
	return n, nil
}

func scanChangeRequest(row rowScanner) (storage.ChangeRequest, error) {
	var (
		request    storage.ChangeRequest
		changeType string
		changes    string
		status     string
		createdAt  int64
		decidedAt  sql.NullInt64
	)
	if err := row.Scan(
		&request.ID,
		&request.ProviderID,
		&request.OwnerUserID,
		&changeType,
		&changes,
		&request.Reason,
		&status,
		&request.DecisionReason,
		&createdAt,
		&decidedAt,
	); err != nil {
		return storage.ChangeRequest{}, err
	}
	if strings.TrimSpace(changes) != "" && changes != "{}" {
		if err := json.Unmarshal([]byte(changes), &request.Changes); err != nil {
			return storage.ChangeRequest{}, fmt.Errorf("decode change request changes: %w", err)
		}
	}
	request.Type = storage.ChangeType(changeType)
	request.Status = storage.DecisionStatus(status)
	request.CreatedAt = fromMillis(createdAt)
	request.DecidedAt = timePtr(decidedAt)
	return request, nil
}
