// Package validate checks request inputs declared with validator struct tags.
package validate

import (
	"errors"
	"net/url"
	"reflect"
	"sort"
	"strings"
	"sync"

	apperrors "github.com/bonitaforward/bonita-forward/internal/platform/errors"
	"github.com/go-playground/validator/v10"
)

var (
	once     sync.Once
	instance *validator.Validate
)

// Validator returns the shared validator, reporting JSON field names.
func Validator() *validator.Validate {
	once.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(field reflect.StructField) string {
			name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			if name == "" {
				return field.Name
			}
			return name
		})
		if err := v.RegisterValidation("image_ref", imageRef); err != nil {
			panic(err)
		}
		instance = v
	})
	return instance
}

// imageRef accepts absolute http(s) URLs and root-relative paths served by
// this process.
func imageRef(fl validator.FieldLevel) bool {
	value := strings.TrimSpace(fl.Field().String())
	if strings.HasPrefix(value, "/") {
		return !strings.HasPrefix(value, "//") && !strings.ContainsAny(value, " \t\n\\")
	}
	parsed, err := url.Parse(value)
	if err != nil || parsed.Host == "" {
		return false
	}
	return parsed.Scheme == "http" || parsed.Scheme == "https"
}

// Struct validates input and returns an INVALID_INPUT error naming the failing fields.
func Struct(input any) error {
	err := Validator().Struct(input)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return apperrors.Wrap(apperrors.CodeInvalidInput, "validate input", err)
	}
	return invalidFields(fieldErrs, err)
}

// Var validates a single value against tag.
func Var(field string, value any, tag string) error {
	err := Validator().Var(value, tag)
	if err == nil {
		return nil
	}
	return Invalid(err, field)
}

// Invalid builds an INVALID_INPUT error for the named fields.
func Invalid(cause error, fields ...string) error {
	sorted := append([]string(nil), fields...)
	sort.Strings(sorted)
	joined := strings.Join(sorted, ", ")
	return &apperrors.Error{
		Code:     apperrors.CodeInvalidInput,
		Message:  "invalid fields: " + joined,
		Metadata: map[string]string{"Fields": joined},
		Cause:    cause,
	}
}

func invalidFields(fieldErrs validator.ValidationErrors, cause error) error {
	seen := make(map[string]struct{}, len(fieldErrs))
	fields := make([]string, 0, len(fieldErrs))
	for _, fieldErr := range fieldErrs {
		name := fieldErr.Field()
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		fields = append(fields, name)
	}
	return Invalid(cause, fields...)
}
