package httpx

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	apperrors "github.com/bonitaforward/bonita-forward/internal/platform/errors"
	errori18n "github.com/bonitaforward/bonita-forward/internal/platform/errors/i18n"
	"github.com/bonitaforward/bonita-forward/internal/platform/i18n/catalog"
	"github.com/bonitaforward/bonita-forward/internal/platform/logging"
	"go.uber.org/zap"
)

// DefaultMaxBodyBytes bounds JSON request bodies.
const DefaultMaxBodyBytes int64 = 1 << 20

// ErrorBody is the JSON shape of every error response.
type ErrorBody struct {
	Error   string            `json:"error"`
	Code    string            `json:"code"`
	Details map[string]string `json:"details,omitempty"`
}

// WriteJSON writes a JSON response with the provided status code.
func WriteJSON(w http.ResponseWriter, status int, payload any) error {
	if w == nil {
		return fmt.Errorf("response writer is required")
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if payload == nil {
		return nil
	}
	return json.NewEncoder(w).Encode(payload)
}

// WriteNoContent writes a 204 response.
func WriteNoContent(w http.ResponseWriter) {
	if w == nil {
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Locale resolves the response locale from Accept-Language.
func Locale(r *http.Request) string {
	if r == nil {
		return catalog.BaseLocale
	}
	return catalog.Default().Match(r.Header.Get("Accept-Language"))
}

// WriteError renders err as a localized JSON error.
//
// Errors without an application code are logged and rendered generically.
func WriteError(w http.ResponseWriter, r *http.Request, logger *zap.Logger, err error) {
	if w == nil {
		return
	}
	if err == nil {
		w.WriteHeader(http.StatusOK)
		return
	}
	status := apperrors.HTTPStatus(err)
	code := apperrors.CodeOf(err)
	if status >= http.StatusInternalServerError {
		logging.ForRequest(RequestContext(r), logger).Error("request failed",
			zap.String("code", string(code)),
			zap.Error(err),
		)
	}
	messages := errori18n.GetCatalog(Locale(r))
	metadata := apperrors.MetadataOf(err)
	if code == apperrors.CodeUnknown {
		metadata = nil
	}
	_ = WriteJSON(w, status, ErrorBody{
		Error:   messages.Format(string(code), metadata),
		Code:    string(code),
		Details: metadata,
	})
}

// DecodeJSON decodes a size-limited JSON body into dst, rejecting unknown fields.
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	if r == nil || r.Body == nil {
		return apperrors.New(apperrors.CodeInvalidJSON, "request body is required")
	}
	body := http.MaxBytesReader(w, r.Body, DefaultMaxBodyBytes)
	decoder := json.NewDecoder(body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			return apperrors.Wrap(apperrors.CodeRequestTooBig, "request body too large", err)
		}
		if stderrors.Is(err, io.EOF) {
			return apperrors.Wrap(apperrors.CodeInvalidJSON, "request body is empty", err)
		}
		return apperrors.Wrap(apperrors.CodeInvalidJSON, "decode request body", err)
	}
	if decoder.More() {
		return apperrors.New(apperrors.CodeInvalidJSON, "request body has trailing data")
	}
	return nil
}

// QueryBool parses a boolean query parameter; absent values report false.
func QueryBool(r *http.Request, key string) bool {
	if r == nil {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(r.URL.Query().Get(key))) {
	case "1", "true", "yes":
		return true
	default:
		return false
	}
}
