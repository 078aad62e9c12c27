// Package pagination normalizes page sizes and encodes opaque page tokens.
package pagination

import (
	"encoding/base64"
	"strconv"
	"strings"

	apperrors "github.com/bonitaforward/bonita-forward/internal/platform/errors"
)

const tokenPrefix = "o:"

// PageSizeConfig configures page size normalization.
type PageSizeConfig struct {
	Default int
	Max     int
}

// Standard is the page size policy for directory listings.
var Standard = PageSizeConfig{Default: 20, Max: 100}

// Page is a normalized page request.
type Page struct {
	Size   int
	Offset int
}

// ClampPageSize applies defaults and limits for page sizes.
func ClampPageSize(value int, cfg PageSizeConfig) int {
	pageSize := value
	if pageSize <= 0 {
		pageSize = cfg.Default
	}
	if cfg.Max > 0 && pageSize > cfg.Max {
		pageSize = cfg.Max
	}
	if pageSize <= 0 {
		pageSize = 1
	}
	return pageSize
}

// EncodeToken returns the opaque token for the page starting at offset.
func EncodeToken(offset int) string {
	if offset <= 0 {
		return ""
	}
	return base64.RawURLEncoding.EncodeToString([]byte(tokenPrefix + strconv.Itoa(offset)))
}

// DecodeToken returns the offset stored in token. Empty tokens start at zero.
func DecodeToken(token string) (int, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return 0, nil
	}
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return 0, apperrors.Wrap(apperrors.CodePageToken, "decode page token", err)
	}
	value, ok := strings.CutPrefix(string(raw), tokenPrefix)
	if !ok {
		return 0, apperrors.New(apperrors.CodePageToken, "page token prefix mismatch")
	}
	offset, err := strconv.Atoi(value)
	if err != nil || offset < 0 {
		return 0, apperrors.New(apperrors.CodePageToken, "page token offset invalid")
	}
	return offset, nil
}

// Parse normalizes a raw page size and token into a Page.
func Parse(pageSize int, pageToken string, cfg PageSizeConfig) (Page, error) {
	offset, err := DecodeToken(pageToken)
	if err != nil {
		return Page{}, err
	}
	return Page{Size: ClampPageSize(pageSize, cfg), Offset: offset}, nil
}

// NextToken returns the token for the page after p when more rows exist.
func (p Page) NextToken(hasMore bool) string {
	if !hasMore {
		return ""
	}
	return EncodeToken(p.Offset + p.Size)
}
