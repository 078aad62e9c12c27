package directory

import (
	"flag"
	"testing"
)

func TestParseConfigDefaults(t *testing.T) {
	fs := flag.NewFlagSet("directory", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, nil)
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.Addr != ":8080" {
		t.Fatalf("expected default addr :8080, got %q", cfg.Addr)
	}
	if cfg.Log.Level != "info" {
		t.Fatalf("expected default log level info, got %q", cfg.Log.Level)
	}
}

func TestParseConfigOverrides(t *testing.T) {
	t.Setenv("BONITA_FORWARD_ADMIN_EMAILS", "a@example.com, b@example.com")
	fs := flag.NewFlagSet("directory", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, []string{"-addr", "127.0.0.1:9999", "-db", "/tmp/dir.db"})
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.Addr != "127.0.0.1:9999" {
		t.Fatalf("expected addr override, got %q", cfg.Addr)
	}
	if cfg.DBPath != "/tmp/dir.db" {
		t.Fatalf("expected db override, got %q", cfg.DBPath)
	}
	if cfg.AdminEmails != "a@example.com, b@example.com" {
		t.Fatalf("expected admin emails from env, got %q", cfg.AdminEmails)
	}
}
