// Package vorago parses game server flags and starts the gRPC runtime.
package vorago

import (
	"context"
	"flag"
	"fmt"
	"time"

	entrypoint "github.com/louisbranch/vorago/internal/platform/cmd"
	server "github.com/louisbranch/vorago/internal/services/vorago/app"
	"github.com/louisbranch/vorago/internal/services/vorago/seat"
)

// Config holds game server command configuration.
type Config struct {
	Port       int    `env:"PORT"         envDefault:"8092"`
	Addr       string `env:"ADDR"`
	DBPath     string `env:"DB_PATH"      envDefault:"data/vorago.db"`
	LogAITurns bool   `env:"LOG_AI_TURNS"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.IntVar(&cfg.Port, "port", cfg.Port, "The game server port")
	fs.StringVar(&cfg.Addr, "addr", cfg.Addr, "The game server listen address (overrides -port)")
	fs.StringVar(&cfg.DBPath, "db-path", cfg.DBPath, "SQLite database path")
	fs.BoolVar(&cfg.LogAITurns, "log-ai-turns", cfg.LogAITurns, "Log a summary of every AI turn")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ListenAddr resolves the address the server binds to.
func (c Config) ListenAddr() string {
	if c.Addr != "" {
		return c.Addr
	}
	return fmt.Sprintf(":%d", c.Port)
}

// Run starts the Vorago game service.
func Run(ctx context.Context, cfg Config) error {
	seats, err := seat.LoadConfigFromEnv(time.Now)
	if err != nil {
		return err
	}
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceVorago, func(ctx context.Context) error {
		return server.Run(ctx, server.Config{
			Addr:       cfg.ListenAddr(),
			DBPath:     cfg.DBPath,
			Seats:      seats,
			LogAITurns: cfg.LogAITurns,
		})
	})
}
