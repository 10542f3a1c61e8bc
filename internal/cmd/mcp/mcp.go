// Package mcp parses MCP command flags and selects stdio or HTTP transport.
package mcp

import (
	"context"
	"flag"

	entrypoint "github.com/louisbranch/vorago/internal/platform/cmd"
	mcpservice "github.com/louisbranch/vorago/internal/services/mcp/service"
)

// Config holds MCP command configuration.
type Config struct {
	GRPCAddr  string `env:"GRPC_ADDR"      envDefault:"localhost:8092"`
	HTTPAddr  string `env:"MCP_HTTP_ADDR"  envDefault:"localhost:8093"`
	Transport string `env:"MCP_TRANSPORT"  envDefault:"stdio"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.GRPCAddr, "addr", cfg.GRPCAddr, "Vorago gRPC server address")
	fs.StringVar(&cfg.HTTPAddr, "http-addr", cfg.HTTPAddr, "HTTP server address (for HTTP transport)")
	fs.StringVar(&cfg.Transport, "transport", cfg.Transport, "Transport type: stdio or http")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the MCP protocol adapter.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceMCP, func(ctx context.Context) error {
		return mcpservice.Run(ctx, mcpservice.Config{
			GRPCAddr:  cfg.GRPCAddr,
			HTTPAddr:  cfg.HTTPAddr,
			Transport: mcpservice.Transport(cfg.Transport),
		})
	})
}
