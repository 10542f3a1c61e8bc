package scenario

import (
	"bytes"
	"context"
	"log"
	"strings"
	"testing"
)

func runSource(t *testing.T, cfg Config, source string) error {
	t.Helper()
	scenario, err := LoadScenario(source)
	if err != nil {
		t.Fatalf("load scenario: %v", err)
	}
	if cfg.Logger == nil {
		cfg.Logger = log.New(&bytes.Buffer{}, "", 0)
	}
	return NewRunner(cfg).RunScenario(context.Background(), scenario)
}

func TestRunFile_Opening(t *testing.T) {
	var out bytes.Buffer
	cfg := Config{Verbose: true, Logger: log.New(&out, "", 0)}
	if err := RunFile(context.Background(), cfg, "testdata/opening.lua"); err != nil {
		t.Fatalf("run opening: %v", err)
	}
	if !strings.Contains(out.String(), "scenario done: opening") {
		t.Fatalf("log = %q", out.String())
	}
}

func TestRunScenario_DefaultGame(t *testing.T) {
	err := runSource(t, Config{}, `
local scene = Scenario.new("default")
scene:expect({round = 1, active = 1, won = false, winner = 0})
scene:expect_stone(4, {owner = 2, status = "tray"})
scene:expect_ring(0, {size = 32, offset = 0})
return scene
`)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
}

func TestRunScenario_UnexpectedRejectionFails(t *testing.T) {
	err := runSource(t, Config{}, `
local scene = Scenario.new("fail")
scene:place(1, {ring = 0, cell = 4})
return scene
`)
	if err == nil || !strings.Contains(err.Error(), "ENTRY_CELL_REQUIRED") {
		t.Fatalf("error = %v, want ENTRY_CELL_REQUIRED", err)
	}
	if !strings.Contains(err.Error(), "step 2 (command)") {
		t.Fatalf("error = %v, want step number", err)
	}
}

func TestRunScenario_WrongRejectionCodeFails(t *testing.T) {
	err := runSource(t, Config{}, `
local scene = Scenario.new("fail")
scene:pass(2):rejected("PASS_NOT_ALLOWED")
return scene
`)
	if err == nil || !strings.Contains(err.Error(), "rejected with NOT_YOUR_TURN, want PASS_NOT_ALLOWED") {
		t.Fatalf("error = %v", err)
	}
}

func TestRunScenario_ExpectedRejectionThatIsAccepted(t *testing.T) {
	err := runSource(t, Config{}, `
local scene = Scenario.new("fail")
scene:select_unplaced(1):rejected("NOT_YOUR_TURN")
return scene
`)
	if err == nil || !strings.Contains(err.Error(), "accepted, want rejection NOT_YOUR_TURN") {
		t.Fatalf("error = %v", err)
	}
}

func TestRunScenario_LogOnlyKeepsGoing(t *testing.T) {
	var out bytes.Buffer
	err := runSource(t, Config{Assertions: AssertionLogOnly, Logger: log.New(&out, "", 0)}, `
local scene = Scenario.new("log only")
scene:expect({round = 9})
scene:expect_cooldown(1, "place_wall", 3)
return scene
`)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if got := strings.Count(out.String(), "expectation failed"); got != 2 {
		t.Fatalf("logged failures = %d, log = %q", got, out.String())
	}
}

func TestRunScenario_UnknownExpectationField(t *testing.T) {
	err := runSource(t, Config{Assertions: AssertionLogOnly}, `
local scene = Scenario.new("typo")
scene:expect({rnd = 1})
return scene
`)
	if err == nil || !strings.Contains(err.Error(), `unknown field "rnd"`) {
		t.Fatalf("error = %v", err)
	}
}

func TestRunScenario_MalformedArgs(t *testing.T) {
	err := runSource(t, Config{}, `
local scene = Scenario.new("bad args")
scene:select_unplaced(1)
scene:move(1, {ring = 9, cell = 0})
return scene
`)
	if err == nil || !strings.Contains(err.Error(), "move_stone") {
		t.Fatalf("error = %v", err)
	}
}

func TestRunScenario_AIAnswersAfterHumanTurn(t *testing.T) {
	err := runSource(t, Config{Seed: 11}, `
local scene = Scenario.new("ai")
scene:game({ai = true, difficulty = "easy"})
scene:place(1, {ring = 0, cell = 8})
scene:ability(1, "lock_ring", {ring = 4})
scene:expect({round = 2, active = 1})
scene:expect_cooldown(1, "lock_ring", 3)
return scene
`)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
}

func TestRunScenario_ManualTurnEnd(t *testing.T) {
	err := runSource(t, Config{}, `
local scene = Scenario.new("manual")
scene:game({manual_turn_end = true})
scene:end_turn(1):rejected("TURN_INCOMPLETE")
scene:place(1, {ring = 0, cell = 16})
scene:rotate(1, {ring = 3, direction = "ccw"})
scene:expect({active = 1, has_moved = true, has_used_coin = true})
scene:end_turn(1)
scene:expect({active = 2})
scene:expect_ring(3, {offset = 7})
return scene
`)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
}

func TestRunScenario_ContextCanceled(t *testing.T) {
	scenario, err := LoadScenario(`local s = Scenario.new("c") s:expect({round = 1}) return s`)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := NewRunner(Config{}).RunScenario(ctx, scenario); err == nil {
		t.Fatal("expected context error")
	}
}

func TestRunScenario_Nil(t *testing.T) {
	if err := NewRunner(Config{}).RunScenario(context.Background(), nil); err == nil {
		t.Fatal("expected error for nil scenario")
	}
}
