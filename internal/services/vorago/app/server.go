// Package server wires the Vorago gRPC server: listener, storage, seat
// grants and health reporting.
package server

import (
	"context"
	"fmt"
	"log"
	"net"
	"os"
	"path/filepath"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	grpc_health_v1 "google.golang.org/grpc/health/grpc_health_v1"

	platformgrpc "github.com/louisbranch/vorago/internal/platform/grpc"
	voragogrpc "github.com/louisbranch/vorago/internal/services/vorago/api/grpc/vorago"
	"github.com/louisbranch/vorago/internal/services/vorago/seat"
	"github.com/louisbranch/vorago/internal/services/vorago/storage/sqlite"
)

// DefaultDBPath is used when Config.DBPath is empty.
var DefaultDBPath = filepath.Join("data", "vorago.db")

// Config holds server dependencies resolved by the command layer.
type Config struct {
	// Addr is the listen address, for example ":8092".
	Addr   string
	DBPath string
	Seats  seat.Config
	// LogAITurns logs a summary of every AI turn.
	LogAITurns bool
}

// Server hosts the Vorago game service.
type Server struct {
	listener   net.Listener
	grpcServer *grpc.Server
	health     *health.Server
	store      *sqlite.Store
}

// New creates a configured server listening on cfg.Addr.
func New(ctx context.Context, cfg Config) (*Server, error) {
	seats, err := seat.NewAuthority(cfg.Seats)
	if err != nil {
		return nil, fmt.Errorf("seat grants: %w", err)
	}
	listener, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", cfg.Addr, err)
	}
	store, err := openStore(ctx, cfg.DBPath)
	if err != nil {
		_ = listener.Close()
		return nil, err
	}

	grpcServer, healthServer := platformgrpc.NewServer(
		[]string{voragogrpc.ServiceName},
		grpc.ChainUnaryInterceptor(voragogrpc.UnaryServerInterceptor()),
	)
	service := voragogrpc.NewService(store, seats)
	if cfg.LogAITurns {
		service.WithAILogger(log.New(log.Writer(), log.Prefix()+"[AI] ", log.Flags()))
	}
	voragogrpc.RegisterVoragoServiceServer(grpcServer, service)
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus(voragogrpc.ServiceName, grpc_health_v1.HealthCheckResponse_SERVING)

	return &Server{
		listener:   listener,
		grpcServer: grpcServer,
		health:     healthServer,
		store:      store,
	}, nil
}

// Addr returns the listener address.
func (s *Server) Addr() string {
	if s == nil || s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Run creates and serves a server until the context ends.
func Run(ctx context.Context, cfg Config) error {
	server, err := New(ctx, cfg)
	if err != nil {
		return err
	}
	return server.Serve(ctx)
}

// Serve blocks until the server stops or the context ends.
func (s *Server) Serve(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	defer s.closeStore()

	log.Printf("vorago server listening at %v", s.listener.Addr())
	if err := platformgrpc.Serve(ctx, s.grpcServer, s.health, s.listener); err != nil {
		return fmt.Errorf("serve gRPC: %w", err)
	}
	return nil
}

func (s *Server) closeStore() {
	if s.store == nil {
		return
	}
	if err := s.store.Close(); err != nil {
		log.Printf("close store: %v", err)
	}
}

func openStore(ctx context.Context, path string) (*sqlite.Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		path = DefaultDBPath
	}
	if path != ":memory:" {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create storage dir: %w", err)
			}
		}
	}
	store, err := sqlite.Open(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite store: %w", err)
	}
	return store, nil
}
