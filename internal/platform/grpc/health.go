package grpc

import (
	"context"
	"fmt"
	"time"

	gogrpc "google.golang.org/grpc"
	grpc_health_v1 "google.golang.org/grpc/health/grpc_health_v1"
)

const (
	healthCheckTimeout = time.Second
	healthMinBackoff   = 100 * time.Millisecond
	healthMaxBackoff   = time.Second
)

// WaitForHealth polls the health service until it reports SERVING or ctx
// ends, doubling the pause between checks up to one second.
func WaitForHealth(ctx context.Context, conn *gogrpc.ClientConn, service string, logf func(string, ...any)) error {
	if conn == nil {
		return fmt.Errorf("gRPC connection is not configured")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if logf == nil {
		logf = func(string, ...any) {}
	}

	client := grpc_health_v1.NewHealthClient(conn)
	backoff := healthMinBackoff
	timer := time.NewTimer(0)
	defer timer.Stop()
	<-timer.C

	for {
		callCtx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
		resp, err := client.Check(callCtx, &grpc_health_v1.HealthCheckRequest{Service: service})
		cancel()
		switch {
		case err != nil:
			logf("waiting for %s health: %v", conn.Target(), err)
		case resp.GetStatus() == grpc_health_v1.HealthCheckResponse_SERVING:
			logf("%s health is SERVING", conn.Target())
			return nil
		default:
			logf("waiting for %s health: status %s", conn.Target(), resp.GetStatus())
		}

		timer.Reset(backoff)
		select {
		case <-ctx.Done():
			return fmt.Errorf("wait for gRPC health: %w", ctx.Err())
		case <-timer.C:
		}
		backoff = min(backoff*2, healthMaxBackoff)
	}
}
