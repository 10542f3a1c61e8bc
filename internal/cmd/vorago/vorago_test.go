package vorago

import (
	"context"
	"flag"
	"strings"
	"testing"
)

func TestParseConfigDefaults(t *testing.T) {
	fs := flag.NewFlagSet("vorago", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, nil)
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.Port != 8092 {
		t.Fatalf("expected default port 8092, got %d", cfg.Port)
	}
	if cfg.DBPath != "data/vorago.db" {
		t.Fatalf("expected default db path, got %q", cfg.DBPath)
	}
	if cfg.ListenAddr() != ":8092" {
		t.Fatalf("expected :8092, got %q", cfg.ListenAddr())
	}
}

func TestParseConfigOverrides(t *testing.T) {
	t.Setenv("VORAGO_DB_PATH", "/tmp/env.db")
	fs := flag.NewFlagSet("vorago", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, []string{"-port", "9001", "-addr", "127.0.0.1:9999", "-log-ai-turns"})
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.Port != 9001 {
		t.Fatalf("expected port 9001, got %d", cfg.Port)
	}
	if cfg.ListenAddr() != "127.0.0.1:9999" {
		t.Fatalf("expected addr override, got %q", cfg.ListenAddr())
	}
	if cfg.DBPath != "/tmp/env.db" {
		t.Fatalf("expected env db path, got %q", cfg.DBPath)
	}
	if !cfg.LogAITurns {
		t.Fatal("expected log-ai-turns")
	}
}

func TestParseConfigRejectsUnknownFlag(t *testing.T) {
	fs := flag.NewFlagSet("vorago", flag.ContinueOnError)
	fs.SetOutput(new(strings.Builder))
	if _, err := ParseConfig(fs, []string{"-nope"}); err == nil {
		t.Fatal("expected flag error")
	}
}

func TestRunRequiresSeatKey(t *testing.T) {
	t.Setenv("VORAGO_SEAT_KEY", "")
	err := Run(context.Background(), Config{Addr: "127.0.0.1:0", DBPath: ":memory:"})
	if err == nil || !strings.Contains(err.Error(), "VORAGO_SEAT_KEY") {
		t.Fatalf("expected missing seat key error, got %v", err)
	}
}
