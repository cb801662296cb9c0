package chronicled

import (
	"flag"
	"testing"
)

func TestParseConfigDefaults(t *testing.T) {
	fs := flag.NewFlagSet("chronicled", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, nil)
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.DBPath != "chronicle.db" {
		t.Fatalf("expected default db path, got %q", cfg.DBPath)
	}
	if cfg.Locale != "zh" {
		t.Fatalf("expected default locale zh, got %q", cfg.Locale)
	}
	if cfg.GenAIModel != "" {
		t.Fatalf("expected generation disabled by default, got %q", cfg.GenAIModel)
	}
}

func TestParseConfigFlagOverrides(t *testing.T) {
	fs := flag.NewFlagSet("chronicled", flag.ContinueOnError)
	args := []string{"-db", "state/cache.db", "-locale", "en", "-authority-url", "http://host.example"}
	cfg, err := ParseConfig(fs, args)
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.DBPath != "state/cache.db" {
		t.Fatalf("expected flag db path, got %q", cfg.DBPath)
	}
	if cfg.Locale != "en" {
		t.Fatalf("expected flag locale, got %q", cfg.Locale)
	}
	if cfg.AuthorityURL != "http://host.example" {
		t.Fatalf("expected flag authority url, got %q", cfg.AuthorityURL)
	}
}

func TestParseConfigEnv(t *testing.T) {
	t.Setenv("CHRONICLE_DB_PATH", "env.db")
	t.Setenv("CHRONICLE_LOCALE", "en")

	fs := flag.NewFlagSet("chronicled", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, nil)
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.DBPath != "env.db" {
		t.Fatalf("expected env db path, got %q", cfg.DBPath)
	}
	if cfg.Locale != "en" {
		t.Fatalf("expected env locale, got %q", cfg.Locale)
	}
}
