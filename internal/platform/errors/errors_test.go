package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"
)

func TestErrorIsMatchesByCode(t *testing.T) {
	t.Parallel()

	err := fmt.Errorf("approve: %w", New(CodeApplicationDecided, "application app-1 already approved"))
	if !stderrors.Is(err, New(CodeApplicationDecided, "")) {
		t.Fatal("expected errors.Is to match by code")
	}
	if stderrors.Is(err, New(CodeApplicationNotFound, "")) {
		t.Fatal("expected errors.Is to reject other codes")
	}
}

func TestWrapUnwrapsCause(t *testing.T) {
	t.Parallel()

	cause := stderrors.New("disk full")
	err := Wrap(CodeUnavailable, "store write failed", cause)
	if !stderrors.Is(err, cause) {
		t.Fatal("expected wrapped cause")
	}
}

func TestHTTPStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "nil", err: nil, want: http.StatusOK},
		{name: "invalid input", err: New(CodeCategoryUnknown, "bad"), want: http.StatusBadRequest},
		{name: "unauthenticated", err: New(CodeTokenExpired, "expired"), want: http.StatusUnauthorized},
		{name: "forbidden", err: New(CodeAdminRequired, "admin"), want: http.StatusForbidden},
		{name: "not found", err: New(CodeProviderNotFound, "missing"), want: http.StatusNotFound},
		{name: "conflict", err: New(CodeApplicationDuplicate, "dup"), want: http.StatusConflict},
		{name: "rate limited", err: New(CodeRateLimited, "slow down"), want: http.StatusTooManyRequests},
		{name: "unavailable", err: New(CodeUnavailable, "down"), want: http.StatusServiceUnavailable},
		{name: "wrapped", err: fmt.Errorf("outer: %w", New(CodeNotOwner, "nope")), want: http.StatusForbidden},
		{name: "foreign", err: stderrors.New("boom"), want: http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HTTPStatus(tt.err); got != tt.want {
				t.Fatalf("HTTPStatus = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestMetadataOfCopies(t *testing.T) {
	t.Parallel()

	err := WithMetadata(CodeApplicationDuplicate, "dup", map[string]string{"ProviderIDs": "p1"})
	meta := MetadataOf(err)
	meta["ProviderIDs"] = "changed"
	if err.Metadata["ProviderIDs"] != "p1" {
		t.Fatal("expected MetadataOf to return a copy")
	}
	if MetadataOf(stderrors.New("x")) != nil {
		t.Fatal("expected nil metadata for foreign errors")
	}
}

func TestCodeOfForeignError(t *testing.T) {
	t.Parallel()

	if got := CodeOf(stderrors.New("x")); got != CodeUnknown {
		t.Fatalf("CodeOf = %q, want %q", got, CodeUnknown)
	}
	if got := KindOf(nil); got != KindInternal {
		t.Fatalf("KindOf(nil) = %q, want %q", got, KindInternal)
	}
}
