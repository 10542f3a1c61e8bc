// Package scenario parses scenario command flags and runs Lua scenario files.
package scenario

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"strings"

	entrypoint "github.com/louisbranch/vorago/internal/platform/cmd"
	"github.com/louisbranch/vorago/internal/tools/scenario"
)

// Config holds scenario command configuration.
type Config struct {
	File    string `env:"SCENARIO_FILE"`
	Seed    uint64 `env:"AI_SEED"`
	Assert  bool   `env:"SCENARIO_ASSERT" envDefault:"true"`
	Verbose bool   `env:"SCENARIO_VERBOSE"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.File, "file", cfg.File, "Path to a Lua scenario file")
	fs.Uint64Var(&cfg.Seed, "seed", cfg.Seed, "AI seed for games that do not set one")
	fs.BoolVar(&cfg.Assert, "assert", cfg.Assert, "Fail on the first unmet expectation (false logs them instead)")
	fs.BoolVar(&cfg.Verbose, "verbose", cfg.Verbose, "Log every step")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	if cfg.File == "" && fs.NArg() > 0 {
		cfg.File = fs.Arg(0)
	}
	return cfg, nil
}

// Run executes the configured scenario file.
func Run(ctx context.Context, cfg Config) error {
	path := strings.TrimSpace(cfg.File)
	if path == "" {
		return errors.New("scenario file is required")
	}
	mode := scenario.AssertionStrict
	if !cfg.Assert {
		mode = scenario.AssertionLogOnly
	}
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceScenario, func(ctx context.Context) error {
		return scenario.RunFile(ctx, scenario.Config{
			Seed:       cfg.Seed,
			Assertions: mode,
			Verbose:    cfg.Verbose,
			Logger:     log.New(os.Stderr, log.Prefix(), log.Flags()),
		}, path)
	})
}
