package sqlite

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bonitaforward/bonita-forward/internal/platform/pagination"
	"github.com/bonitaforward/bonita-forward/internal/services/directory/storage"
)

// CreateContactLead inserts one contact lead.
func (s *Store) CreateContactLead(ctx context.Context, lead storage.ContactLead) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	lead.ID = strings.TrimSpace(lead.ID)
	if lead.ID == "" {
		return fmt.Errorf("contact lead id is required")
	}
	if lead.CreatedAt.IsZero() {
		lead.CreatedAt = time.Now().UTC()
	}
	_, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO contact_leads (id, business_name, contact_email, details, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		lead.ID, lead.BusinessName, lead.ContactEmail, lead.Details, toMillis(lead.CreatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrAlreadyExists
		}
		return fmt.Errorf("create contact lead: %w", err)
	}
	return nil
}

// ListContactLeads returns contact leads newest first.
func (s *Store) ListContactLeads(ctx context.Context, page pagination.Page) (storage.Page[storage.ContactLead], error) {
	if err := s.ready(ctx); err != nil {
		return storage.Page[storage.ContactLead]{}, err
	}
	limit, limitArgs := pageClause(page)
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT id, business_name, contact_email, details, created_at
		   FROM contact_leads
		  ORDER BY created_at DESC, id DESC`+limit,
		limitArgs...,
	)
	if err != nil {
		return storage.Page[storage.ContactLead]{}, fmt.Errorf("list contact leads: %w", err)
	}
	defer rows.Close()

	var leads []storage.ContactLead
	for rows.Next() {
		var lead storage.ContactLead
		var createdAt int64
		if err := rows.Scan(&lead.ID, &lead.BusinessName, &lead.ContactEmail, &lead.Details, &createdAt); err != nil {
			return storage.Page[storage.ContactLead]{}, fmt.Errorf("list contact leads: %w", err)
		}
		lead.CreatedAt = fromMillis(createdAt)
		leads = append(leads, lead)
	}
	if err := rows.Err(); err != nil {
		return storage.Page[storage.ContactLead]{}, fmt.Errorf("list contact leads: %w", err)
	}
	return trimPage(leads, page), nil
}

// CountContactLeads returns the number of contact leads.
func (s *Store) CountContactLeads(ctx context.Context) (int, error) {
	if err := s.ready(ctx); err != nil {
		return 0, err
	}
	n, err := count(ctx, s.sqlDB, `SELECT COUNT(*) FROM contact_leads`)
	if err != nil {
		return 0, fmt.Errorf("count contact leads: %w", err)
	}
	return n, nil
}
