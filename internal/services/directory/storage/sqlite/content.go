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

const postColumns = `id, category_key, title, content, excerpt, images, published, created_at, updated_at`

const eventColumns = `id, title, description, start_at, end_at, location, address, category, url,
       source, approved, created_by, created_at`

// CreatePost inserts one blog post.
func (s *Store) CreatePost(ctx context.Context, post storage.BlogPost) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	post.ID = strings.TrimSpace(post.ID)
	if post.ID == "" {
		return fmt.Errorf("post id is required")
	}
	post.CreatedAt, post.UpdatedAt = stampPair(post.CreatedAt, post.UpdatedAt)
	images, err := encodeJSON(post.Images, "[]")
	if err != nil {
		return err
	}
	_, err = s.sqlDB.ExecContext(ctx,
		`INSERT INTO blog_posts (`+postColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		post.ID,
		post.CategoryKey,
		post.Title,
		post.Content,
		post.Excerpt,
		images,
		boolToInt(post.Published),
		toMillis(post.CreatedAt),
		toMillis(post.UpdatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrAlreadyExists
		}
		return fmt.Errorf("create post: %w", err)
	}
	return nil
}

// GetPost returns one blog post by id.
func (s *Store) GetPost(ctx context.Context, id string) (storage.BlogPost, error) {
	if err := s.ready(ctx); err != nil {
		return storage.BlogPost{}, err
	}
	row := s.sqlDB.QueryRowContext(ctx, `SELECT `+postColumns+` FROM blog_posts WHERE id = ?`, strings.TrimSpace(id))
	post, err := scanPost(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.BlogPost{}, storage.ErrNotFound
		}
		return storage.BlogPost{}, fmt.Errorf("get post: %w", err)
	}
	return post, nil
}

// UpdatePost replaces the mutable columns of one blog post.
func (s *Store) UpdatePost(ctx context.Context, post storage.BlogPost) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	_, post.UpdatedAt = stampPair(post.CreatedAt, post.UpdatedAt)
	images, err := encodeJSON(post.Images, "[]")
	if err != nil {
		return err
	}
	result, err := s.sqlDB.ExecContext(ctx,
		`UPDATE blog_posts SET
		   category_key = ?, title = ?, content = ?, excerpt = ?, images = ?, published = ?, updated_at = ?
		 WHERE id = ?`,
		post.CategoryKey,
		post.Title,
		post.Content,
		post.Excerpt,
		images,
		boolToInt(post.Published),
		toMillis(post.UpdatedAt),
		strings.TrimSpace(post.ID),
	)
	if err != nil {
		return fmt.Errorf("update post: %w", err)
	}
	return requireAffected(result)
}

// DeletePost removes one blog post.
func (s *Store) DeletePost(ctx context.Context, id string) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	result, err := s.sqlDB.ExecContext(ctx, `DELETE FROM blog_posts WHERE id = ?`, strings.TrimSpace(id))
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	return requireAffected(result)
}

// ListPosts returns blog posts newest first.
func (s *Store) ListPosts(ctx context.Context, query storage.PostQuery) (storage.Page[storage.BlogPost], error) {
	if err := s.ready(ctx); err != nil {
		return storage.Page[storage.BlogPost]{}, err
	}
	var where whereBuilder
	if category := strings.TrimSpace(query.CategoryKey); category != "" {
		where.add("category_key = ?", category)
	}
	if query.PublishedOnly {
		where.add("published = 1")
	}
	limit, limitArgs := pageClause(query.Page)
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT `+postColumns+` FROM blog_posts`+where.sql()+` ORDER BY created_at DESC, id DESC`+limit,
		append(where.args, limitArgs...)...,
	)
	if err != nil {
		return storage.Page[storage.BlogPost]{}, fmt.Errorf("list posts: %w", err)
	}
	defer rows.Close()

	var posts []storage.BlogPost
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return storage.Page[storage.BlogPost]{}, fmt.Errorf("list posts: %w", err)
		}
		posts = append(posts, post)
	}
	if err := rows.Err(); err != nil {
		return storage.Page[storage.BlogPost]{}, fmt.Errorf("list posts: %w", err)
	}
	return trimPage(posts, query.Page), nil
}

func scanPost(row rowScanner) (storage.BlogPost, error) {
	var (
		post      storage.BlogPost
		images    string
		published int
		createdAt int64
		updatedAt int64
	)
	if err := row.Scan(
		&post.ID,
		&post.CategoryKey,
		&post.Title,
		&post.Content,
		&post.Excerpt,
		&images,
		&published,
		&createdAt,
		&updatedAt,
	); err != nil {
		return storage.BlogPost{}, err
	}
	var err error
	if post.Images, err = decodeStrings(images); err != nil {
		return storage.BlogPost{}, err
	}
	post.Published = published != 0
	post.CreatedAt = fromMillis(createdAt)
	post.UpdatedAt = fromMillis(updatedAt)
	return post, nil
}

// CreateEvent inserts one calendar event.
func (s *Store) CreateEvent(ctx context.Context, event storage.Event) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	event.ID = strings.TrimSpace(event.ID)
	if event.ID == "" {
		return fmt.Errorf("event id is required")
	}
	if event.StartAt.IsZero() {
		return fmt.Errorf("event start is required")
	}
	if event.Source == "" {
		event.Source = storage.SourceAdmin
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}
	_, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO calendar_events (`+eventColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		event.ID,
		event.Title,
		event.Description,
		toMillis(event.StartAt),
		nullableMillis(event.EndAt),
		event.Location,
		event.Address,
		event.Category,
		event.URL,
		string(event.Source),
		boolToInt(event.Approved),
		nullableString(event.CreatedBy),
		toMillis(event.CreatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrAlreadyExists
		}
		return fmt.Errorf("create event: %w", err)
	}
	return nil
}

// GetEvent returns one calendar event by id.
func (s *Store) GetEvent(ctx context.Context, id string) (storage.Event, error) {
	if err := s.ready(ctx); err != nil {
		return storage.Event{}, err
	}
	row := s.sqlDB.QueryRowContext(ctx, `SELECT `+eventColumns+` FROM calendar_events WHERE id = ?`, strings.TrimSpace(id))
	event, err := scanEvent(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.Event{}, storage.ErrNotFound
		}
		return storage.Event{}, fmt.Errorf("get event: %w", err)
	}
	return event, nil
}

// ApproveEvent marks one calendar event approved.
func (s *Store) ApproveEvent(ctx context.Context, id string) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	result, err := s.sqlDB.ExecContext(ctx, `UPDATE calendar_events SET approved = 1 WHERE id = ?`, strings.TrimSpace(id))
	if err != nil {
		return fmt.Errorf("approve event: %w", err)
	}
	return requireAffected(result)
}

// DeleteEvent removes one calendar event.
func (s *Store) DeleteEvent(ctx context.Context, id string) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	result, err := s.sqlDB.ExecContext(ctx, `DELETE FROM calendar_events WHERE id = ?`, strings.TrimSpace(id))
	if err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	return requireAffected(result)
}

// ListEvents returns calendar events ordered by start.
func (s *Store) ListEvents(ctx context.Context, query storage.EventQuery) (storage.Page[storage.Event], error) {
	if err := s.ready(ctx); err != nil {
		return storage.Page[storage.Event]{}, err
	}
	var where whereBuilder
	if query.From != nil {
		where.add("start_at >= ?", toMillis(*query.From))
	}
	if query.To != nil {
		where.add("start_at < ?", toMillis(*query.To))
	}
	if query.Approved != nil {
		where.add("approved = ?", boolToInt(*query.Approved))
	}
	limit, limitArgs := pageClause(query.Page)
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT `+eventColumns+` FROM calendar_events`+where.sql()+` ORDER BY start_at ASC, id ASC`+limit,
		append(where.args, limitArgs...)...,
	)
	if err != nil {
		return storage.Page[storage.Event]{}, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var events []storage.Event
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return storage.Page[storage.Event]{}, fmt.Errorf("list events: %w", err)
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return storage.Page[storage.Event]{}, fmt.Errorf("list events: %w", err)
	}
	return trimPage(events, query.Page), nil
}

// CountEvents counts events by approval state.
func (s *Store) CountEvents(ctx context.Context, approved bool) (int, error) {
	if err := s.ready(ctx); err != nil {
		return 0, err
	}
	n, err := count(ctx, s.sqlDB, `SELECT COUNT(*) FROM calendar_events WHERE approved = ?`, boolToInt(approved))
	if err != nil {
		return 0, fmt.Errorf("count events: %w", err)
	}
	return n, nil
}

func scanEvent(row rowScanner) (storage.Event, error) {
	var (
		event     storage.Event
		startAt   int64
		endAt     sql.NullInt64
		source    string
		approved  int
		createdBy sql.NullString
		createdAt int64
	)
	if err := row.Scan(
		&event.ID,
		&event.Title,
		&event.Description,
		&startAt,
		&endAt,
		&event.Location,
		&event.Address,
		&event.Category,
		&event.URL,
		&source,
		&approved,
		&createdBy,
		&createdAt,
	); err != nil {
		return storage.Event{}, err
	}
	event.StartAt = fromMillis(startAt)
	event.EndAt = timePtr(endAt)
	event.Source = storage.EventSource(source)
	event.Approved = approved != 0
	event.CreatedBy = createdBy.String
	event.CreatedAt = fromMillis(createdAt)
	return event, nil
}

// CreateIntegration inserts one calendar integration; one per provider and kind.
func (s *Store) CreateIntegration(ctx context.Context, integration storage.Integration) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	integration.ID = strings.TrimSpace(integration.ID)
	if integration.ID == "" {
		return fmt.Errorf("integration id is required")
	}
	if integration.ConnectedAt.IsZero() {
		integration.ConnectedAt = time.Now().UTC()
	}
	_, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO calendar_integrations (id, provider_id, owner_user_id, kind, calendar_ref, connected_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		integration.ID,
		integration.ProviderID,
		integration.OwnerUserID,
		string(integration.Kind),
		integration.CalendarRef,
		toMillis(integration.ConnectedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrAlreadyExists
		}
		return fmt.Errorf("create integration: %w", err)
	}
	return nil
}

// ListIntegrations returns integrations owned by ownerUserID, oldest first.
func (s *Store) ListIntegrations(ctx context.Context, ownerUserID string) ([]storage.Integration, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT id, provider_id, owner_user_id, kind, calendar_ref, connected_at
		   FROM calendar_integrations
		  WHERE owner_user_id = ?
		  ORDER BY connected_at ASC, id ASC`,
		strings.TrimSpace(ownerUserID),
	)
	if err != nil {
		return nil, fmt.Errorf("list integrations: %w", err)
	}
	defer rows.Close()

	var integrations []storage.Integration
	for rows.Next() {
		var integration storage.Integration
		var kind string
		var connectedAt int64
		if err := rows.Scan(
			&integration.ID,
			&integration.ProviderID,
			&integration.OwnerUserID,
			&kind,
			&integration.CalendarRef,
			&connectedAt,
		); err != nil {
			return nil, fmt.Errorf("list integrations: %w", err)
		}
		integration.Kind = storage.IntegrationKind(kind)
		integration.ConnectedAt = fromMillis(connectedAt)
		integrations = append(integrations, integration)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list integrations: %w", err)
	}
	return integrations, nil
}

// DeleteIntegration removes one integration, scoped to its owner when given.
func (s *Store) DeleteIntegration(ctx context.Context, id string, ownerUserID string) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	query := `DELETE FROM calendar_integrations WHERE id = ?`
	args := []any{strings.TrimSpace(id)}
	if owner := strings.TrimSpace(ownerUserID); owner != "" {
		query += ` AND owner_user_id = ?`
		args = append(args, owner)
	}
	result, err := s.sqlDB.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("delete integration: %w", err)
	}
	return requireAffected(result)
}
