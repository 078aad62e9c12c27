package catalog

import (
	"fmt"
	"sort"
	"strings"
	"time"

	apperrors "github.com/bonitaforward/bonita-forward/internal/platform/errors"
	"github.com/bonitaforward/bonita-forward/internal/platform/validate"
	"github.com/bonitaforward/bonita-forward/internal/services/directory/storage"
)

type fieldSetter func(p *storage.Provider, value any) error

// editableFields are the listing fields an owner may change through a change request.
var editableFields = map[string]fieldSetter{
	"name":                 setString(func(p *storage.Provider, v string) { p.Name = v }),
	"phone":                setString(func(p *storage.Provider, v string) { p.Phone = v }),
	"email":                setString(func(p *storage.Provider, v string) { p.Email = strings.ToLower(v) }),
	"website":              setString(func(p *storage.Provider, v string) { p.Website = v }),
	"address":              setString(func(p *storage.Provider, v string) { p.Address = v }),
	"description":          setString(func(p *storage.Provider, v string) { p.Description = v }),
	"booking_type":         setString(func(p *storage.Provider, v string) { p.BookingType = v }),
	"booking_instructions": setString(func(p *storage.Provider, v string) { p.BookingInstructions = v }),
	"booking_url":          setString(func(p *storage.Provider, v string) { p.BookingURL = v }),
	"coupon_code":          setString(func(p *storage.Provider, v string) { p.CouponCode = v }),
	"coupon_discount":      setString(func(p *storage.Provider, v string) { p.CouponDiscount = v }),
	"coupon_description":   setString(func(p *storage.Provider, v string) { p.CouponDescription = v }),
	"tags":                 setStrings(func(p *storage.Provider, v []string) { p.Tags = v }),
	"booking_enabled": func(p *storage.Provider, value any) error {
		enabled, ok := value.(bool)
		if !ok {
			return fmt.Errorf("expected boolean, got %T", value)
		}
		p.BookingEnabled = enabled
		return nil
	},
	"coupon_expires_at": func(p *storage.Provider, value any) error {
		if value == nil {
			p.CouponExpiresAt = nil
			return nil
		}
		raw, ok := value.(string)
		if !ok {
			return fmt.Errorf("expected RFC 3339 string, got %T", value)
		}
		if strings.TrimSpace(raw) == "" {
			p.CouponExpiresAt = nil
			return nil
		}
		parsed, err := time.Parse(time.RFC3339, strings.TrimSpace(raw))
		if err != nil {
			return err
		}
		parsed = parsed.UTC()
		p.CouponExpiresAt = &parsed
		return nil
	},
}

// EditableFields lists the fields accepted in update change requests.
func EditableFields() []string {
	fields := make([]string, 0, len(editableFields))
	for field := range editableFields {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	return fields
}

// ApplyChanges returns provider with changes applied. Unknown fields fail with
// CHANGE_REQUEST_FIELD_NOT_EDITABLE; the result must still be a valid listing.
func ApplyChanges(provider storage.Provider, changes map[string]any) (storage.Provider, error) {
	if len(changes) == 0 {
		return storage.Provider{}, validate.Invalid(nil, "changes")
	}
	keys := make([]string, 0, len(changes))
	for key := range changes {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	updated := provider
	updated.Tags = append([]string(nil), provider.Tags...)
	for _, key := range keys {
		setter, ok := editableFields[key]
		if !ok {
			return storage.Provider{}, apperrors.WithMetadata(apperrors.CodeChangeRequestField, "field is not editable", map[string]string{"Field": key})
		}
		if err := setter(&updated, changes[key]); err != nil {
			return storage.Provider{}, validate.Invalid(err, key)
		}
	}
	checked, err := providerFromInput(InputFromProvider(updated))
	if err != nil {
		return storage.Provider{}, err
	}
	checked.ID = provider.ID
	checked.CreatedAt = provider.CreatedAt
	checked.UpdatedAt = provider.UpdatedAt
	return checked, nil
}

func setString(assign func(*storage.Provider, string)) fieldSetter {
	return func(p *storage.Provider, value any) error {
		if value == nil {
			assign(p, "")
			return nil
		}
		text, ok := value.(string)
		if !ok {
			return fmt.Errorf("expected string, got %T", value)
		}
		assign(p, strings.TrimSpace(text))
		return nil
	}
}

func setStrings(assign func(*storage.Provider, []string)) fieldSetter {
	return func(p *storage.Provider, value any) error {
		switch typed := value.(type) {
		case nil:
			assign(p, nil)
		case []string:
			assign(p, cleanList(typed))
		case []any:
			values := make([]string, 0, len(typed))
			for _, item := range typed {
				text, ok := item.(string)
				if !ok {
					return fmt.Errorf("expected list of strings, got %T", item)
				}
				values = append(values, text)
			}
			assign(p, cleanList(values))
		default:
			return fmt.Errorf("expected list of strings, got %T", value)
		}
		return nil
	}
}
