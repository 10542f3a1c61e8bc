// Package selfplay parses self-play command flags and runs AI-vs-AI batches.
package selfplay

import (
	"context"
	"flag"
	"io"
	"os"

	entrypoint "github.com/louisbranch/vorago/internal/platform/cmd"
	"github.com/louisbranch/vorago/internal/services/vorago/domain/game"
	"github.com/louisbranch/vorago/internal/tools/selfplay"
)

// Config holds self-play command configuration.
type Config struct {
	Games     int    `env:"SELFPLAY_GAMES"      envDefault:"10"`
	Seed      uint64 `env:"AI_SEED"`
	Player1   string `env:"SELFPLAY_PLAYER1"    envDefault:"medium"`
	Player2   string `env:"SELFPLAY_PLAYER2"    envDefault:"medium"`
	MaxRounds int    `env:"SELFPLAY_MAX_ROUNDS" envDefault:"300"`
	JSON      bool   `env:"SELFPLAY_JSON"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.IntVar(&cfg.Games, "games", cfg.Games, "Number of games to play")
	fs.Uint64Var(&cfg.Seed, "seed", cfg.Seed, "Seed of the first game (0 picks one)")
	fs.StringVar(&cfg.Player1, "p1", cfg.Player1, "Player 1 difficulty: easy, medium or hard")
	fs.StringVar(&cfg.Player2, "p2", cfg.Player2, "Player 2 difficulty: easy, medium or hard")
	fs.IntVar(&cfg.MaxRounds, "max-rounds", cfg.MaxRounds, "Rounds after which a game counts as stalled")
	fs.BoolVar(&cfg.JSON, "json", cfg.JSON, "Write one JSON result per game")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run plays the configured batch and reports to stdout.
func Run(ctx context.Context, cfg Config) error {
	return run(ctx, cfg, os.Stdout)
}

func run(ctx context.Context, cfg Config, out io.Writer) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceSelfPlay, func(ctx context.Context) error {
		return selfplay.Run(ctx, selfplay.Config{
			Games:     cfg.Games,
			Seed:      cfg.Seed,
			Player1:   game.Difficulty(cfg.Player1),
			Player2:   game.Difficulty(cfg.Player2),
			MaxRounds: cfg.MaxRounds,
			JSON:      cfg.JSON,
		}, out)
	})
}
