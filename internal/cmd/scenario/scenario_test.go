package scenario

import (
	"context"
	"flag"
	"os"
	"path/filepath"
	"testing"
)

func TestParseConfigDefaults(t *testing.T) {
	fs := flag.NewFlagSet("scenario", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, nil)
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if !cfg.Assert {
		t.Fatal("expected assertions on by default")
	}
	if cfg.File != "" || cfg.Seed != 0 || cfg.Verbose {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}

func TestParseConfigPositionalFile(t *testing.T) {
	fs := flag.NewFlagSet("scenario", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, []string{"-seed", "7", "-assert=false", "opening.lua"})
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.File != "opening.lua" || cfg.Seed != 7 || cfg.Assert {
		t.Fatalf("unexpected config: %+v", cfg)
	}
}

func TestRunRequiresFile(t *testing.T) {
	if err := Run(context.Background(), Config{}); err == nil {
		t.Fatal("expected missing file error")
	}
}

func TestRunExecutesScenario(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pass.lua")
	source := `local s = Scenario.new("first turn")
s:game({seed = 3})
s:place(1, {ring = 0, cell = 8})
s:ability(1, "place_wall", {ring = 2, cell = 5})
s:expect({round = 1, active = 2})
return s
`
	if err := os.WriteFile(path, []byte(source), 0o600); err != nil {
		t.Fatalf("write scenario: %v", err)
	}
	if err := Run(context.Background(), Config{File: path, Assert: true}); err != nil {
		t.Fatalf("run scenario: %v", err)
	}
}
