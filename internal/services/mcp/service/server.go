package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"google.golang.org/grpc"
	grpc_health_v1 "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/louisbranch/vorago/internal/platform/discovery"
	platformgrpc "github.com/louisbranch/vorago/internal/platform/grpc"
	"github.com/louisbranch/vorago/internal/platform/timeouts"
	"github.com/louisbranch/vorago/internal/services/mcp/domain"
	voragogrpc "github.com/louisbranch/vorago/internal/services/vorago/api/grpc/vorago"
)

const (
	serverName = "vorago-mcp"
	// serverVersion identifies the MCP server version.
	serverVersion = "0.1.0"
	// healthInterval is how often the HTTP transport re-checks the game service.
	healthInterval = 30 * time.Second
)

// Transport selects how MCP clients reach the server.
type Transport string

const (
	TransportStdio Transport = "stdio"
	TransportHTTP  Transport = "http"
)

// Config configures the MCP server.
type Config struct {
	// GRPCAddr is the Vorago gRPC address.
	GRPCAddr string
	// HTTPAddr is the listen address for TransportHTTP.
	HTTPAddr  string
	Transport Transport
}

// Server pairs an MCP server with its gRPC connection.
type Server struct {
	mcpServer *mcp.Server
	conn      *grpc.ClientConn
}

// New dials the Vorago service and returns a server ready for stdio.
func New(ctx context.Context, grpcAddr string) (*Server, error) {
	conn, err := dialVorago(ctx, discovery.OrDefaultGRPCAddr(grpcAddr, discovery.ServiceVorago))
	if err != nil {
		return nil, err
	}
	return newServer(conn), nil
}

// newServer registers every tool against conn.
func newServer(conn *grpc.ClientConn) *Server {
	server := mcp.NewServer(&mcp.Implementation{Name: serverName, Version: serverVersion}, nil)
	registerTools(server, voragogrpc.NewClient(conn))
	return &Server{mcpServer: server, conn: conn}
}

func registerTools(server *mcp.Server, client domain.GameCaller) {
	mcp.AddTool(server, domain.CreateGameTool(), domain.CreateGameHandler(client))
	mcp.AddTool(server, domain.GetGameTool(), domain.GetGameHandler(client))
	mcp.AddTool(server, domain.ExecuteTool(), domain.ExecuteHandler(client))
	mcp.AddTool(server, domain.ListGamesTool(), domain.ListGamesHandler(client))
	mcp.AddTool(server, domain.CommandsTool(), domain.CommandsHandler())
}

// Run is the service entrypoint for MCP and blocks until context cancellation.
func Run(ctx context.Context, cfg Config) error {
	if cfg.Transport == "" {
		cfg.Transport = TransportStdio
	}

	switch cfg.Transport {
	case TransportStdio:
		return runWithTransport(ctx, cfg.GRPCAddr, &mcp.StdioTransport{})
	case TransportHTTP:
		return runWithHTTPTransport(ctx, cfg)
	default:
		return fmt.Errorf("transport %q is not supported", cfg.Transport)
	}
}

// runWithTransport creates a server and serves it over the provided transport.
func runWithTransport(ctx context.Context, grpcAddr string, transport mcp.Transport) error {
	server, err := New(ctx, grpcAddr)
	if err != nil {
		return err
	}
	return server.serveWithTransport(ctx, transport)
}

// runWithHTTPTransport serves the same tools over streamable HTTP.
func runWithHTTPTransport(ctx context.Context, cfg Config) error {
	server, err := New(ctx, cfg.GRPCAddr)
	if err != nil {
		return err
	}
	defer server.Close()

	healthCtx, healthCancel := context.WithCancel(ctx)
	defer healthCancel()
	go server.monitorHealth(healthCtx, healthInterval)

	addr := discovery.OrDefaultHTTPAddr(cfg.HTTPAddr, discovery.ServiceMCP)
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           server.HTTPHandler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	serveErr := make(chan error, 1)
	go func() {
		log.Printf("mcp listening at %s", addr)
		serveErr <- httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeouts.Shutdown)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http: %w", err)
		}
		return nil
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve http: %w", err)
	}
}

// HTTPHandler returns a streamable HTTP handler that serves this server to
// every session.
func (s *Server) HTTPHandler() http.Handler {
	return mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return s.mcpServer
	}, nil)
}

// monitorHealth periodically checks the gRPC connection. Failures are logged;
// individual tool calls surface their own errors.
func (s *Server) monitorHealth(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if s.conn == nil {
				log.Printf("gRPC connection is nil, health check skipped")
				continue
			}
			healthClient := grpc_health_v1.NewHealthClient(s.conn)
			callCtx, cancel := context.WithTimeout(ctx, timeouts.GRPCRequest)
			response, err := healthClient.Check(callCtx, &grpc_health_v1.HealthCheckRequest{Service: voragogrpc.ServiceName})
			cancel()

			if err != nil {
				log.Printf("gRPC health check failed: %v", err)
			} else if response.GetStatus() != grpc_health_v1.HealthCheckResponse_SERVING {
				log.Printf("gRPC health check status: %s", response.GetStatus().String())
			}
		}
	}
}

// Serve starts the MCP server on stdio and blocks until it stops or the context ends.
func (s *Server) Serve(ctx context.Context) error {
	return s.serveWithTransport(ctx, &mcp.StdioTransport{})
}

// Close releases the gRPC connection held by the server.
func (s *Server) Close() error {
	if s == nil || s.conn == nil {
		return nil
	}
	if err := s.conn.Close(); err != nil {
		return err
	}
	s.conn = nil
	return nil
}

// serveWithTransport runs the MCP server and closes the gRPC connection on
// every exit path.
func (s *Server) serveWithTransport(ctx context.Context, transport mcp.Transport) error {
	if s == nil || s.mcpServer == nil {
		return fmt.Errorf("MCP server is not configured")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	err := s.mcpServer.Run(ctx, transport)
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		err = nil
	}
	closeErr := s.Close()
	if closeErr != nil {
		if err == nil {
			return fmt.Errorf("close gRPC connection: %w", closeErr)
		}
		return fmt.Errorf("serve MCP: %v; close gRPC connection: %w", err, closeErr)
	}
	if err != nil {
		return fmt.Errorf("serve MCP: %w", err)
	}
	return nil
}

func dialVorago(ctx context.Context, addr string) (*grpc.ClientConn, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	logf := func(format string, args ...any) {
		log.Printf("vorago %s", fmt.Sprintf(format, args...))
	}
	conn, err := platformgrpc.DialWithHealth(ctx, strings.TrimSpace(addr), platformgrpc.DialConfig{
		Timeout: timeouts.GRPCDial,
		Service: voragogrpc.ServiceName,
		Logf:    logf,
	}, platformgrpc.DefaultClientDialOptions()...)
	if err != nil {
		var dialErr *platformgrpc.DialError
		if errors.As(err, &dialErr) {
			if dialErr.Stage == platformgrpc.DialStageConnect {
				return nil, fmt.Errorf("connect to vorago server at %s: %w", addr, dialErr.Err)
			}
			return nil, fmt.Errorf("wait for vorago server at %s: %w", addr, dialErr.Err)
		}
		return nil, err
	}
	return conn, nil
}
