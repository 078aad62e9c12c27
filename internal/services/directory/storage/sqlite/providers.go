package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/bonitaforward/bonita-forward/internal/platform/filter"
	"github.com/bonitaforward/bonita-forward/internal/services/directory/storage"
)

const providerColumns = `id, name, category_key, tags, rating, phone, email, website, address,
       description, images, badges, published, is_member, booking_enabled, booking_type,
       booking_instructions, booking_url, coupon_code, coupon_discount, coupon_description,
       coupon_expires_at, owner_user_id, created_at, updated_at`

// providerOrder puts featured listings first, then rating (unrated last), then name.
const providerOrder = ` ORDER BY is_member DESC, rating IS NULL, rating DESC, name COLLATE NOCASE ASC, id ASC`

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

type rowScanner interface {
	Scan(dest ...any) error
}

// CreateProvider inserts one provider.
func (s *Store) CreateProvider(ctx context.Context, provider storage.Provider) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	return insertProvider(ctx, s.sqlDB, provider)
}

func insertProvider(ctx context.Context, db execer, provider storage.Provider) error {
	provider.ID = strings.TrimSpace(provider.ID)
	provider.Name = strings.TrimSpace(provider.Name)
	if provider.ID == "" {
		return fmt.Errorf("provider id is required")
	}
	if provider.Name == "" {
		return fmt.Errorf("provider name is required")
	}
	provider.CreatedAt, provider.UpdatedAt = stampPair(provider.CreatedAt, provider.UpdatedAt)
	args, err := providerArgs(provider)
	if err != nil {
		return err
	}
	_, err = db.ExecContext(ctx,
		`INSERT INTO providers (
		   id, name, category_key, tags, rating, phone, email, website, address,
		   description, images, badges, published, is_member, booking_enabled, booking_type,
		   booking_instructions, booking_url, coupon_code, coupon_discount, coupon_description,
		   coupon_expires_at, owner_user_id, updated_at, created_at
		 ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		append([]any{provider.ID}, append(args, toMillis(provider.CreatedAt))...)...,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrAlreadyExists
		}
		return fmt.Errorf("create provider: %w", err)
	}
	return nil
}

// providerArgs returns the mutable columns from name through updated_at.
func providerArgs(provider storage.Provider) ([]any, error) {
	tags, err := encodeJSON(provider.Tags, "[]")
	if err != nil {
		return nil, err
	}
	images, err := encodeJSON(provider.Images, "[]")
	if err != nil {
		return nil, err
	}
	badges, err := encodeJSON(provider.Badges, "[]")
	if err != nil {
		return nil, err
	}
	var rating sql.NullFloat64
	if provider.Rating != nil {
		rating = sql.NullFloat64{Float64: *provider.Rating, Valid: true}
	}
	return []any{
		provider.Name,
		provider.CategoryKey,
		tags,
		rating,
		provider.Phone,
		provider.Email,
		provider.Website,
		provider.Address,
		provider.Description,
		images,
		badges,
		boolToInt(provider.Published),
		boolToInt(provider.Featured),
		boolToInt(provider.BookingEnabled),
		provider.BookingType,
		provider.BookingInstructions,
		provider.BookingURL,
		provider.CouponCode,
		provider.CouponDiscount,
		provider.CouponDescription,
		nullableMillis(provider.CouponExpiresAt),
		nullableString(provider.OwnerUserID),
		toMillis(provider.UpdatedAt),
	}, nil
}

// GetProvider returns one provider by id.
func (s *Store) GetProvider(ctx context.Context, id string) (storage.Provider, error) {
	if err := s.ready(ctx); err != nil {
		return storage.Provider{}, err
	}
	return getProvider(ctx, s.sqlDB, id)
}

type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func getProvider(ctx context.Context, db queryRower, id string) (storage.Provider, error) {
	row := db.QueryRowContext(ctx, `SELECT `+providerColumns+` FROM providers WHERE id = ?`, strings.TrimSpace(id))
	provider, err := scanProvider(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.Provider{}, storage.ErrNotFound
		}
		return storage.Provider{}, fmt.Errorf("get provider: %w", err)
	}
	return provider, nil
}

// UpdateProvider replaces every mutable column of one provider.
func (s *Store) UpdateProvider(ctx context.Context, provider storage.Provider) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	return updateProvider(ctx, s.sqlDB, provider)
}

func updateProvider(ctx context.Context, db execer, provider storage.Provider) error {
	provider.Name = strings.TrimSpace(provider.Name)
	if provider.Name == "" {
		return fmt.Errorf("provider name is required")
	}
	_, provider.UpdatedAt = stampPair(provider.CreatedAt, provider.UpdatedAt)
	args, err := providerArgs(provider)
	if err != nil {
		return err
	}
	result, err := db.ExecContext(ctx,
		`UPDATE providers SET
		   name = ?, category_key = ?, tags = ?, rating = ?, phone = ?, email = ?, website = ?,
		   address = ?, description = ?, images = ?, badges = ?, published = ?, is_member = ?,
		   booking_enabled = ?, booking_type = ?, booking_instructions = ?, booking_url = ?,
		   coupon_code = ?, coupon_discount = ?, coupon_description = ?, coupon_expires_at = ?,
		   owner_user_id = ?, updated_at = ?
		 WHERE id = ?`,
		append(args, strings.TrimSpace(provider.ID))...,
	)
	if err != nil {
		return fmt.Errorf("update provider: %w", err)
	}
	return requireAffected(result)
}

// DeleteProvider removes one provider.
func (s *Store) DeleteProvider(ctx context.Context, id string) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	return deleteProvider(ctx, s.sqlDB, id)
}

func deleteProvider(ctx context.Context, db execer, id string) error {
	result, err := db.ExecContext(ctx, `DELETE FROM providers WHERE id = ?`, strings.TrimSpace(id))
	if err != nil {
		return fmt.Errorf("delete provider: %w", err)
	}
	return requireAffected(result)
}

// ListProviders returns one page of providers in directory order.
func (s *Store) ListProviders(ctx context.Context, query storage.ProviderQuery) (storage.Page[storage.Provider], error) {
	if err := s.ready(ctx); err != nil {
		return storage.Page[storage.Provider]{}, err
	}
	var where whereBuilder
	if query.PublishedOnly {
		where.add("published = 1")
	}
	if query.FeaturedOnly {
		where.add("is_member = 1")
	}
	if category := strings.TrimSpace(query.CategoryKey); category != "" {
		where.add("category_key = ?", category)
	}
	if owner := strings.TrimSpace(query.OwnerUserID); owner != "" {
		where.add("owner_user_id = ?", owner)
	}
	if len(query.IDs) > 0 {
		clause, args := inClause("id", query.IDs)
		where.add(clause, args...)
	}
	if text := strings.ToLower(strings.TrimSpace(query.Text)); text != "" {
		pattern := "%" + filter.EscapeLike(text) + "%"
		where.add(`(LOWER(name) LIKE ? ESCAPE '\' OR LOWER(description) LIKE ? ESCAPE '\'
			OR EXISTS (SELECT 1 FROM json_each(providers.tags) WHERE LOWER(json_each.value) LIKE ? ESCAPE '\'))`,
			pattern, pattern, pattern)
	}
	if !query.Where.Empty() {
		where.add(query.Where.Clause, query.Where.Params...)
	}
	limit, limitArgs := pageClause(query.Page)
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT `+providerColumns+` FROM providers`+where.sql()+providerOrder+limit,
		append(where.args, limitArgs...)...,
	)
	if err != nil {
		return storage.Page[storage.Provider]{}, fmt.Errorf("list providers: %w", err)
	}
	defer rows.Close()

	providers, err := scanProviders(rows)
	if err != nil {
		return storage.Page[storage.Provider]{}, fmt.Errorf("list providers: %w", err)
	}
	return trimPage(providers, query.Page), nil
}

// FindProvidersByName returns providers whose trimmed name matches case-insensitively.
func (s *Store) FindProvidersByName(ctx context.Context, name string) ([]storage.Provider, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT `+providerColumns+` FROM providers WHERE LOWER(TRIM(name)) = ?`+providerOrder,
		strings.ToLower(strings.TrimSpace(name)),
	)
	if err != nil {
		return nil, fmt.Errorf("find providers by name: %w", err)
	}
	defer rows.Close()
	providers, err := scanProviders(rows)
	if err != nil {
		return nil, fmt.Errorf("find providers by name: %w", err)
	}
	return providers, nil
}

func scanProviders(rows *sql.Rows) ([]storage.Provider, error) {
	var providers []storage.Provider
	for rows.Next() {
		provider, err := scanProvider(rows)
		if err != nil {
			return nil, err
		}
		providers = append(providers, provider)
	}
	return providers, rows.Err()
}

func scanProvider(row rowScanner) (storage.Provider, error) {
	var (
		provider        storage.Provider
		tags            string
		images          string
		badges          string
		rating          sql.NullFloat64
		published       int
		featured        int
		bookingEnabled  int
		couponExpiresAt sql.NullInt64
		owner           sql.NullString
		createdAt       int64
		updatedAt       int64
	)
	if err := row.Scan(
		&provider.ID,
		&provider.Name,
		&provider.CategoryKey,
		&tags,
		&rating,
		&provider.Phone,
		&provider.Email,
		&provider.Website,
		&provider.Address,
		&provider.Description,
		&images,
		&badges,
		&published,
		&featured,
		&bookingEnabled,
		&provider.BookingType,
		&provider.BookingInstructions,
		&provider.BookingURL,
		&provider.CouponCode,
		&provider.CouponDiscount,
		&provider.CouponDescription,
		&couponExpiresAt,
		&owner,
		&createdAt,
		&updatedAt,
	); err != nil {
		return storage.Provider{}, err
	}
	var err error
	if provider.Tags, err = decodeStrings(tags); err != nil {
		return storage.Provider{}, err
	}
	if provider.Images, err = decodeStrings(images); err != nil {
		return storage.Provider{}, err
	}
	if provider.Badges, err = decodeStrings(badges); err != nil {
		return storage.Provider{}, err
	}
	if rating.Valid {
		value := rating.Float64
		provider.Rating = &value
	}
	provider.Published = published != 0
	provider.Featured = featured != 0
	provider.BookingEnabled = bookingEnabled != 0
	provider.CouponExpiresAt = timePtr(couponExpiresAt)
	provider.OwnerUserID = owner.String
	provider.CreatedAt = fromMillis(createdAt)
	provider.UpdatedAt = fromMillis(updatedAt)
	return provider, nil
}
