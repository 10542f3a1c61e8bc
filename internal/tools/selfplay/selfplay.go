// Package selfplay pits two AI strategies against each other and reports
// win rates, useful for tuning difficulty tiers.
package selfplay

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/louisbranch/vorago/internal/platform/random"
	"github.com/louisbranch/vorago/internal/services/vorago/domain/ai"
	"github.com/louisbranch/vorago/internal/services/vorago/domain/coin"
	"github.com/louisbranch/vorago/internal/services/vorago/domain/game"
)

// DefaultMaxRounds stops games that never converge.
const DefaultMaxRounds = 300

// Config controls a self-play batch.
type Config struct {
	Games int
	// Seed of the first game; game i uses Seed+i. Zero picks a random seed.
	Seed      uint64
	Player1   game.Difficulty
	Player2   game.Difficulty
	MaxRounds int
	// JSON writes one result object per line instead of a summary table.
	JSON bool
}

// Result is the outcome of one game.
type Result struct {
	Game      int             `json:"game"`
	Seed      uint64          `json:"seed"`
	Winner    game.Player     `json:"winner"`
	Rounds    int             `json:"rounds"`
	Turns     int             `json:"turns"`
	Passes    int             `json:"passes"`
	Abilities map[coin.ID]int `json:"abilities"`
	Stalled   bool            `json:"stalled"`
}

// Summary aggregates a batch.
type Summary struct {
	Games   int
	Wins    map[game.Player]int
	Stalled int
	Rounds  int
}

// AverageRounds is the mean game length.
func (s Summary) AverageRounds() float64 {
	if s.Games == 0 {
		return 0
	}
	return float64(s.Rounds) / float64(s.Games)
}

func (cfg Config) normalized() (Config, error) {
	if cfg.Games <= 0 {
		return Config{}, errors.New("games must be greater than zero")
	}
	if cfg.MaxRounds <= 0 {
		cfg.MaxRounds = DefaultMaxRounds
	}
	for _, d := range []*game.Difficulty{&cfg.Player1, &cfg.Player2} {
		if *d == "" {
			*d = game.Medium
		}
		parsed, ok := game.ParseDifficulty(string(*d))
		if !ok {
			return Config{}, fmt.Errorf("unknown difficulty %q", *d)
		}
		*d = parsed
	}
	seed, err := random.SeedOrNew(cfg.Seed)
	if err != nil {
		return Config{}, err
	}
	cfg.Seed = seed
	return cfg, nil
}

// Play runs the batch and calls report after each game.
func Play(ctx context.Context, cfg Config, report func(Result) error) (Summary, error) {
	cfg, err := cfg.normalized()
	if err != nil {
		return Summary{}, err
	}
	strategies := map[game.Player]ai.Strategy{}
	for p, d := range map[game.Player]game.Difficulty{game.Player1: cfg.Player1, game.Player2: cfg.Player2} {
		s, err := ai.ForDifficulty(d)
		if err != nil {
			return Summary{}, err
		}
		strategies[p] = s
	}

	summary := Summary{Wins: map[game.Player]int{}}
	for i := 0; i < cfg.Games; i++ {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		result, err := playGame(i+1, cfg.Seed+uint64(i), cfg.MaxRounds, strategies)
		if err != nil {
			return summary, fmt.Errorf("game %d (seed %d): %w", i+1, cfg.Seed+uint64(i), err)
		}
		summary.Games++
		summary.Rounds += result.Rounds
		if result.Stalled {
			summary.Stalled++
		} else {
			summary.Wins[result.Winner]++
		}
		if report != nil {
			if err := report(result); err != nil {
				return summary, err
			}
		}
	}
	return summary, nil
}

func playGame(index int, seed uint64, maxRounds int, strategies map[game.Player]ai.Strategy) (Result, error) {
	g, err := game.New(game.Options{})
	if err != nil {
		return Result{}, err
	}
	rng := random.NewRand(seed)
	result := Result{Game: index, Seed: seed, Abilities: map[coin.ID]int{}}

	for !g.Won() {
		if g.Round() > maxRounds {
			result.Stalled = true
			break
		}
		p := g.Active()
		turn, err := ai.ExecuteTurn(g, p, strategies[p], rng)
		if err != nil {
			return result, err
		}
		result.Turns++
		if turn.Passed {
			result.Passes++
		}
		if turn.Ability != nil {
			result.Abilities[turn.Ability.Coin]++
		}
	}
	result.Winner = g.Winner()
	result.Rounds = g.Round()
	return result, nil
}

// Run plays the batch and writes results to out.
func Run(ctx context.Context, cfg Config, out io.Writer) error {
	if out == nil {
		return errors.New("output is required")
	}
	var report func(Result) error
	if cfg.JSON {
		enc := json.NewEncoder(out)
		report = func(r Result) error { return enc.Encode(r) }
	}
	summary, err := Play(ctx, cfg, report)
	if err != nil {
		return err
	}
	if cfg.JSON {
		return nil
	}
	return writeSummary(out, cfg, summary)
}

func writeSummary(out io.Writer, cfg Config, s Summary) error {
	lines := []string{
		fmt.Sprintf("games: %d", s.Games),
		fmt.Sprintf("player 1 (%s) wins: %d", orMedium(cfg.Player1), s.Wins[game.Player1]),
		fmt.Sprintf("player 2 (%s) wins: %d", orMedium(cfg.Player2), s.Wins[game.Player2]),
		fmt.Sprintf("stalled: %d", s.Stalled),
		fmt.Sprintf("average rounds: %.1f", s.AverageRounds()),
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(out, line); err != nil {
			return err
		}
	}
	return nil
}

func orMedium(d game.Difficulty) game.Difficulty {
	if d == "" {
		return game.Medium
	}
	return d
}
