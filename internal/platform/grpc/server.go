package grpc

import (
	"context"
	"errors"
	"log"
	"net"

	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	gogrpc "google.golang.org/grpc"
	"google.golang.org/grpc/health"
	grpc_health_v1 "google.golang.org/grpc/health/grpc_health_v1"
)

// NewServer builds a gRPC server with otelgrpc tracing and a registered
// health service. Services start NOT_SERVING until the caller flips them.
func NewServer(services []string, opts ...gogrpc.ServerOption) (*gogrpc.Server, *health.Server) {
	opts = append([]gogrpc.ServerOption{gogrpc.StatsHandler(otelgrpc.NewServerHandler())}, opts...)
	server := gogrpc.NewServer(opts...)
	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(server, healthServer)
	for _, name := range services {
		healthServer.SetServingStatus(name, grpc_health_v1.HealthCheckResponse_NOT_SERVING)
	}
	return server, healthServer
}

// Serve runs server on lis until ctx ends, then stops gracefully after
// marking every service NOT_SERVING.
func Serve(ctx context.Context, server *gogrpc.Server, healthServer *health.Server, lis net.Listener) error {
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.Serve(lis)
	}()

	select {
	case <-ctx.Done():
		if healthServer != nil {
			healthServer.Shutdown()
		}
		log.Printf("stopping gRPC server on %s", lis.Addr())
		server.GracefulStop()
		err := <-serveErr
		if err != nil && !errors.Is(err, gogrpc.ErrServerStopped) {
			return err
		}
		return nil
	case err := <-serveErr:
		return err
	}
}
