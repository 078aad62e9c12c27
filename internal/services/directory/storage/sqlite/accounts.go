package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bonitaforward/bonita-forward/internal/platform/pagination"
	"github.com/bonitaforward/bonita-forward/internal/services/directory/storage"
)

const profileColumns = `id, email, name, role, business_name, email_opt_out,
       notifications_dismissed_at, created_at, updated_at`

// CreateAccount inserts the user credentials and profile in one transaction.
func (s *Store) CreateAccount(ctx context.Context, user storage.User, profile storage.Profile) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	user.ID = strings.TrimSpace(user.ID)
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	if user.ID == "" || user.Email == "" {
		return fmt.Errorf("user id and email are required")
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	profile.ID = user.ID
	profile.Email = user.Email
	if profile.Role == "" {
		profile.Role = storage.RoleCommunity
	}
	profile.CreatedAt, profile.UpdatedAt = stampPair(profile.CreatedAt, profile.UpdatedAt)

	return s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO users (id, email, password_hash, created_at) VALUES (?, ?, ?, ?)`,
			user.ID, user.Email, user.PasswordHash, toMillis(user.CreatedAt),
		); err != nil {
			if isUniqueViolation(err) {
				return storage.ErrAlreadyExists
			}
			return fmt.Errorf("create user: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO profiles (`+profileColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			profile.ID,
			profile.Email,
			profile.Name,
			string(profile.Role),
			profile.BusinessName,
			boolToInt(profile.EmailOptOut),
			nullableMillis(profile.NotificationsDismissedAt),
			toMillis(profile.CreatedAt),
			toMillis(profile.UpdatedAt),
		); err != nil {
			if isUniqueViolation(err) {
				return storage.ErrAlreadyExists
			}
			return fmt.Errorf("create profile: %w", err)
		}
		return nil
	})
}

// GetUserByEmail returns the credentials for email.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (storage.User, error) {
	if err := s.ready(ctx); err != nil {
		return storage.User{}, err
	}
	var user storage.User
	var createdAt int64
	err := s.sqlDB.QueryRowContext(ctx,
		`SELECT id, email, password_hash, created_at FROM users WHERE email = ?`,
		strings.ToLower(strings.TrimSpace(email)),
	).Scan(&user.ID, &user.Email, &user.PasswordHash, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.User{}, storage.ErrNotFound
		}
		return storage.User{}, fmt.Errorf("get user: %w", err)
	}
	user.CreatedAt = fromMillis(createdAt)
	return user, nil
}

// GetProfile returns one profile by user id.
func (s *Store) GetProfile(ctx context.Context, id string) (storage.Profile, error) {
	if err := s.ready(ctx); err != nil {
		return storage.Profile{}, err
	}
	row := s.sqlDB.QueryRowContext(ctx, `SELECT `+profileColumns+` FROM profiles WHERE id = ?`, strings.TrimSpace(id))
	profile, err := scanProfile(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.Profile{}, storage.ErrNotFound
		}
		return storage.Profile{}, fmt.Errorf("get profile: %w", err)
	}
	return profile, nil
}

// UpdateProfile replaces the mutable profile columns.
func (s *Store) UpdateProfile(ctx context.Context, profile storage.Profile) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	if profile.UpdatedAt.IsZero() {
		profile.UpdatedAt = time.Now().UTC()
	}
	result, err := s.sqlDB.ExecContext(ctx,
		`UPDATE profiles SET
		   name = ?, role = ?, business_name = ?, email_opt_out = ?,
		   notifications_dismissed_at = ?, updated_at = ?
		 WHERE id = ?`,
		profile.Name,
		string(profile.Role),
		profile.BusinessName,
		boolToInt(profile.EmailOptOut),
		nullableMillis(profile.NotificationsDismissedAt),
		toMillis(profile.UpdatedAt),
		strings.TrimSpace(profile.ID),
	)
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	return requireAffected(result)
}

// SetEmailOptOut opts every profile registered with email out of mail.
func (s *Store) SetEmailOptOut(ctx context.Context, email string, updatedAt time.Time) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	result, err := s.sqlDB.ExecContext(ctx,
		`UPDATE profiles SET email_opt_out = 1, updated_at = ? WHERE email = ?`,
		toMillis(updatedAt), strings.ToLower(strings.TrimSpace(email)),
	)
	if err != nil {
		return fmt.Errorf("set email opt out: %w", err)
	}
	return requireAffected(result)
}

// ListProfiles returns profiles newest first, optionally narrowed by role.
func (s *Store) ListProfiles(ctx context.Context, role storage.Role, page pagination.Page) (storage.Page[storage.Profile], error) {
	if err := s.ready(ctx); err != nil {
		return storage.Page[storage.Profile]{}, err
	}
	var where whereBuilder
	if role != "" {
		where.add("role = ?", string(role))
	}
	limit, limitArgs := pageClause(page)
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT `+profileColumns+` FROM profiles`+where.sql()+` ORDER BY created_at DESC, id DESC`+limit,
		append(where.args, limitArgs...)...,
	)
	if err != nil {
		return storage.Page[storage.Profile]{}, fmt.Errorf("list profiles: %w", err)
	}
	defer rows.Close()

	var profiles []storage.Profile
	for rows.Next() {
		profile, err := scanProfile(rows)
		if err != nil {
			return storage.Page[storage.Profile]{}, fmt.Errorf("list profiles: %w", err)
		}
		profiles = append(profiles, profile)
	}
	if err := rows.Err(); err != nil {
		return storage.Page[storage.Profile]{}, fmt.Errorf("list profiles: %w", err)
	}
	return trimPage(profiles, page), nil
}

// DeleteUser removes one account and its dependent rows in one transaction.
func (s *Store) DeleteUser(ctx context.Context, id string) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return fmt.Errorf("user id is required")
	}
	return s.inTx(ctx, func(tx *sql.Tx) error {
		var exists int
		err := tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM (SELECT id FROM users WHERE id = ? UNION SELECT id FROM profiles WHERE id = ?)`,
			id, id,
		).Scan(&exists)
		if err != nil {
			return fmt.Errorf("lookup user: %w", err)
		}
		if exists == 0 {
			return storage.ErrNotFound
		}
		statements := []struct {
			label string
			query string
			args  []any
		}{
			{"delete pending change requests", `DELETE FROM provider_change_requests WHERE owner_user_id = ? AND status = ?`, []any{id, string(storage.StatusPending)}},
			{"delete calendar integrations", `DELETE FROM calendar_integrations WHERE owner_user_id = ?`, []any{id}},
			{"unlink providers", `UPDATE providers SET owner_user_id = NULL WHERE owner_user_id = ?`, []any{id}},
			{"delete profile", `DELETE FROM profiles WHERE id = ?`, []any{id}},
			{"delete user", `DELETE FROM users WHERE id = ?`, []any{id}},
		}
		for _, statement := range statements {
			if _, err := tx.ExecContext(ctx, statement.query, statement.args...); err != nil {
				return fmt.Errorf("%s: %w", statement.label, err)
			}
		}
		return nil
	})
}

// CountProfiles returns the number of profiles.
func (s *Store) CountProfiles(ctx context.Context) (int, error) {
	if err := s.ready(ctx); err != nil {
		return 0, err
	}
	n, err := count(ctx, s.sqlDB, `SELECT COUNT(*) FROM profiles`)
	if err != nil {
		return 0, fmt.Errorf("count profiles: %w", err)
	}
	return n, nil
}

func scanProfile(row rowScanner) (storage.Profile, error) {
	var (
		profile     storage.Profile
		role        string
		optOut      int
		dismissedAt sql.NullInt64
		createdAt   int64
		updatedAt   int64
	)
	if err := row.Scan(
		&profile.ID,
		&profile.Email,
		&profile.Name,
		&role,
		&profile.BusinessName,
		&optOut,
		&dismissedAt,
		&createdAt,
		&updatedAt,
	); err != nil {
		return storage.Profile{}, err
	}
	profile.Role = storage.Role(role)
	profile.EmailOptOut = optOut != 0
	profile.NotificationsDismissedAt = timePtr(dismissedAt)
	profile.CreatedAt = fromMillis(createdAt)
	profile.UpdatedAt = fromMillis(updatedAt)
	return profile, nil
}
