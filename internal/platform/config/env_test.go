package config

import (
	"strings"
	"testing"
)

type envTestConfig struct {
	Port   int      `env:"BONITA_FORWARD_TEST_PORT" envDefault:"123"`
	Admins []string `env:"BONITA_FORWARD_TEST_ADMINS" envSeparator:","`
}

func TestParseEnvDefaults(t *testing.T) {
	var cfg envTestConfig

	if err := ParseEnv(&cfg); err != nil {
		t.Fatalf("parse env: %v", err)
	}
	if cfg.Port != 123 {
		t.Fatalf("expected default port 123, got %d", cfg.Port)
	}
}

func TestParseEnvSlice(t *testing.T) {
	var cfg envTestConfig
	t.Setenv("BONITA_FORWARD_TEST_ADMINS", "a@example.com,b@example.com")

	if err := ParseEnv(&cfg); err != nil {
		t.Fatalf("parse env: %v", err)
	}
	if len(cfg.Admins) != 2 || cfg.Admins[1] != "b@example.com" {
		t.Fatalf("admins = %v", cfg.Admins)
	}
}

func TestParseEnvError(t *testing.T) {
	var cfg envTestConfig
	t.Setenv("BONITA_FORWARD_TEST_PORT", "not-an-int")

	err := ParseEnv(&cfg)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "parse env:") {
		t.Fatalf("expected parse env prefix, got %v", err)
	}
}

func TestSplitList(t *testing.T) {
	t.Parallel()

	got := SplitList(" a@x.com, ,b@x.com ,")
	if len(got) != 2 || got[0] != "a@x.com" || got[1] != "b@x.com" {
		t.Fatalf("SplitList = %v", got)
	}
	if got := SplitList(""); len(got) != 0 {
		t.Fatalf("SplitList(\"\") = %v, want empty", got)
	}
}
