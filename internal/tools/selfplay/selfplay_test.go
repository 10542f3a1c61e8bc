package selfplay

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"reflect"
	"strings"
	"testing"

	"github.com/louisbranch/vorago/internal/services/vorago/domain/game"
)

func easyConfig(games int) Config {
	return Config{Games: games, Seed: 5, Player1: game.Easy, Player2: game.Easy, MaxRounds: 60}
}

func collect(t *testing.T, cfg Config) (Summary, []Result) {
	t.Helper()
	var results []Result
	summary, err := Play(context.Background(), cfg, func(r Result) error {
		results = append(results, r)
		return nil
	})
	if err != nil {
		t.Fatalf("play: %v", err)
	}
	return summary, results
}

func TestPlay_CountsEveryGame(t *testing.T) {
	summary, results := collect(t, easyConfig(3))
	if summary.Games != 3 || len(results) != 3 {
		t.Fatalf("games = %d, results = %d", summary.Games, len(results))
	}
	if got := summary.Wins[game.Player1] + summary.Wins[game.Player2] + summary.Stalled; got != 3 {
		t.Fatalf("wins + stalled = %d, want 3", got)
	}
	for i, r := range results {
		if r.Seed != 5+uint64(i) || r.Game != i+1 {
			t.Fatalf("result %d = %+v", i, r)
		}
		if r.Turns == 0 {
			t.Fatalf("result %d played no turns", i)
		}
		if !r.Stalled && !r.Winner.Valid() {
			t.Fatalf("result %d finished without a winner", i)
		}
	}
}

func TestPlay_IsDeterministicPerSeed(t *testing.T) {
	_, first := collect(t, easyConfig(2))
	_, second := collect(t, easyConfig(2))
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("same seeds played differently:\n%+v\n%+v", first, second)
	}
}

func TestPlay_Validation(t *testing.T) {
	if _, err := Play(context.Background(), Config{}, nil); err == nil {
		t.Fatal("expected error for zero games")
	}
	cfg := easyConfig(1)
	cfg.Player2 = "impossible"
	if _, err := Play(context.Background(), cfg, nil); err == nil || !strings.Contains(err.Error(), "impossible") {
		t.Fatalf("error = %v", err)
	}
}

func TestPlay_StopsOnCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Play(ctx, easyConfig(1), nil); err == nil {
		t.Fatal("expected context error")
	}
}

func TestRun_Summary(t *testing.T) {
	var out bytes.Buffer
	if err := Run(context.Background(), easyConfig(2), &out); err != nil {
		t.Fatalf("run: %v", err)
	}
	text := out.String()
	for _, want := range []string{"games: 2", "player 1 (easy) wins:", "average rounds:"} {
		if !strings.Contains(text, want) {
			t.Fatalf("output missing %q: %q", want, text)
		}
	}
}

func TestRun_JSONLines(t *testing.T) {
	cfg := easyConfig(2)
	cfg.JSON = true
	var out bytes.Buffer
	if err := Run(context.Background(), cfg, &out); err != nil {
		t.Fatalf("run: %v", err)
	}
	scanner := bufio.NewScanner(&out)
	lines := 0
	for scanner.Scan() {
		var r Result
		if err := json.Unmarshal(scanner.Bytes(), &r); err != nil {
			t.Fatalf("decode line %q: %v", scanner.Text(), err)
		}
		lines++
	}
	if lines != 2 {
		t.Fatalf("lines = %d, want 2", lines)
	}
}

func TestRun_NilOutput(t *testing.T) {
	if err := Run(context.Background(), easyConfig(1), nil); err == nil {
		t.Fatal("expected error for nil output")
	}
}
