package logging

import (
	"context"
	"testing"

	"github.com/bonitaforward/bonita-forward/internal/platform/requestctx"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewRejectsUnknownLevel(t *testing.T) {
	t.Parallel()

	if _, err := New("directory", Config{Level: "loud", Format: "json"}); err == nil {
		t.Fatal("expected level parse error")
	}
}

func TestNewBuildsConsoleAndJSONLoggers(t *testing.T) {
	t.Parallel()

	for _, format := range []string{"json", "console", ""} {
		logger, err := New("directory", Config{Level: "debug", Format: format})
		if err != nil {
			t.Fatalf("New(%q): %v", format, err)
		}
		if !logger.Core().Enabled(zapcore.DebugLevel) {
			t.Fatalf("format %q: expected debug level enabled", format)
		}
	}
}

func TestNewOrNopFallsBack(t *testing.T) {
	t.Parallel()

	if logger := NewOrNop("directory", Config{Level: "nope"}); logger == nil {
		t.Fatal("expected non-nil logger")
	}
}

func TestForRequestAddsRequestFields(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.InfoLevel)
	ctx := requestctx.WithRequestID(context.Background(), "req-1")
	ctx = requestctx.WithPrincipal(ctx, requestctx.Principal{UserID: "user-1", Email: "owner@example.com"})

	ForRequest(ctx, zap.New(core)).Info("hello")

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("entries = %d, want 1", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["request_id"] != "req-1" {
		t.Fatalf("request_id = %v, want req-1", fields["request_id"])
	}
	if fields["user_id"] != "user-1" {
		t.Fatalf("user_id = %v, want user-1", fields["user_id"])
	}
}

func TestForRequestNilLogger(t *testing.T) {
	t.Parallel()

	if ForRequest(context.Background(), nil) == nil {
		t.Fatal("expected nop logger")
	}
}
