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

const bookingColumns = `id, provider_id, category_key, customer_name, customer_email, customer_phone,
       answers, booking_date, notes, status, created_at, updated_at`

// CreateBooking inserts one booking.
func (s *Store) CreateBooking(ctx context.Context, booking storage.Booking) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	booking.ID = strings.TrimSpace(booking.ID)
	if booking.ID == "" {
		return fmt.Errorf("booking id is required")
	}
	if booking.Status == "" {
		booking.Status = storage.BookingPending
	}
	booking.CreatedAt, booking.UpdatedAt = stampPair(booking.CreatedAt, booking.UpdatedAt)
	answers, err := encodeJSON(booking.Answers, "{}")
	if err != nil {
		return err
	}
	_, err = s.sqlDB.ExecContext(ctx,
		`INSERT INTO bookings (
		   id, provider_id, category_key, customer_name, customer_email, customer_phone,
		   answers, booking_date, notes, status, created_at, updated_at
		 ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		booking.ID,
		nullableString(booking.ProviderID),
		booking.CategoryKey,
		booking.CustomerName,
		booking.CustomerEmail,
		booking.CustomerPhone,
		answers,
		nullableMillis(booking.BookingDate),
		booking.Notes,
		string(booking.Status),
		toMillis(booking.CreatedAt),
		toMillis(booking.UpdatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrAlreadyExists
		}
		return fmt.Errorf("create booking: %w", err)
	}
	return nil
}

// GetBooking returns one booking by id.
func (s *Store) GetBooking(ctx context.Context, id string) (storage.Booking, error) {
	if err := s.ready(ctx); err != nil {
		return storage.Booking{}, err
	}
	row := s.sqlDB.QueryRowContext(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = ?`, strings.TrimSpace(id))
	booking, err := scanBooking(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.Booking{}, storage.ErrNotFound
		}
		return storage.Booking{}, fmt.Errorf("get booking: %w", err)
	}
	return booking, nil
}

// UpdateBookingStatus moves one booking from status from to status to.
func (s *Store) UpdateBookingStatus(ctx context.Context, id string, from, to storage.BookingStatus, updatedAt time.Time) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	id = strings.TrimSpace(id)
	return s.inTx(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx,
			`UPDATE bookings SET status = ?, updated_at = ? WHERE id = ? AND status = ?`,
			string(to), toMillis(updatedAt), id, string(from),
		)
		if err != nil {
			return fmt.Errorf("update booking status: %w", err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if affected > 0 {
			return nil
		}
		var current string
		err = tx.QueryRowContext(ctx, `SELECT status FROM bookings WHERE id = ?`, id).Scan(&current)
		if errors.Is(err, sql.ErrNoRows) {
			return storage.ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("get booking status: %w", err)
		}
		return storage.ErrStatusChanged
	})
}

// ListBookings returns bookings newest first.
func (s *Store) ListBookings(ctx context.Context, query storage.BookingQuery) (storage.Page[storage.Booking], error) {
	if err := s.ready(ctx); err != nil {
		return storage.Page[storage.Booking]{}, err
	}
	var where whereBuilder
	if query.ProviderIDs != nil {
		if len(query.ProviderIDs) == 0 {
			return storage.Page[storage.Booking]{}, nil
		}
		clause, args := inClause("provider_id", query.ProviderIDs)
		where.add(clause, args...)
	}
	if query.Status != "" {
		where.add("status = ?", string(query.Status))
	}
	limit, limitArgs := pageClause(query.Page)
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT `+bookingColumns+` FROM bookings`+where.sql()+` ORDER BY created_at DESC, id DESC`+limit,
		append(where.args, limitArgs...)...,
	)
	if err != nil {
		return storage.Page[storage.Booking]{}, fmt.Errorf("list bookings: %w", err)
	}
	defer rows.Close()

	var bookings []storage.Booking
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return storage.Page[storage.Booking]{}, fmt.Errorf("list bookings: %w", err)
		}
		bookings = append(bookings, booking)
	}
	if err := rows.Err(); err != nil {
		return storage.Page[storage.Booking]{}, fmt.Errorf("list bookings: %w", err)
	}
	return trimPage(bookings, query.Page), nil
}

// CountBookings returns the number of bookings.
func (s *Store) CountBookings(ctx context.Context) (int, error) {
	if err := s.ready(ctx); err != nil {
		return 0, err
	}
	n, err := count(ctx, s.sqlDB, `SELECT COUNT(*) FROM bookings`)
	if err != nil {
		return 0, fmt.Errorf("count bookings: %w", err)
	}
	return n, nil
}

func scanBooking(row rowScanner) (storage.Booking, error) {
	var (
		booking     storage.Booking
		providerID  sql.NullString
		answers     string
		bookingDate sql.NullInt64
		status      string
		createdAt   int64
		updatedAt   int64
	)
	if err := row.Scan(
		&booking.ID,
		&providerID,
		&booking.CategoryKey,
		&booking.CustomerName,
		&booking.CustomerEmail,
		&booking.CustomerPhone,
		&answers,
		&bookingDate,
		&booking.Notes,
		&status,
		&createdAt,
		&updatedAt,
	); err != nil {
		return storage.Booking{}, err
	}
	if strings.TrimSpace(answers) != "" && answers != "{}" {
		if err := json.Unmarshal([]byte(answers), &booking.Answers); err != nil {
			return storage.Booking{}, fmt.Errorf("decode booking answers: %w", err)
		}
	}
	booking.ProviderID = providerID.String
	booking.BookingDate = timePtr(bookingDate)
	booking.Status = storage.BookingStatus(status)
	booking.CreatedAt = fromMillis(createdAt)
	booking.UpdatedAt = fromMillis(updatedAt)
	return booking, nil
}
