// Package grpc hosts the gRPC health surface shared by rowedex binaries.
package grpc

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	gogrpc "google.golang.org/grpc"
	"google.golang.org/grpc/health"
	grpc_health_v1 "google.golang.org/grpc/health/grpc_health_v1"
)

// HealthServer is a gRPC server that only answers grpc.health.v1 checks.
type HealthServer struct {
	server  *gogrpc.Server
	health  *health.Server
	service string
}

// NewHealthServer builds a traced gRPC server reporting NOT_SERVING for
// service until SetServing is called.
func NewHealthServer(service string) *HealthServer {
	server := gogrpc.NewServer(gogrpc.StatsHandler(otelgrpc.NewServerHandler()))
	hs := health.NewServer()
	grpc_health_v1.RegisterHealthServer(server, hs)
	hs.SetServingStatus(service, grpc_health_v1.HealthCheckResponse_NOT_SERVING)
	hs.SetServingStatus("", grpc_health_v1.HealthCheckResponse_NOT_SERVING)
	return &HealthServer{server: server, health: hs, service: service}
}

// SetServing flips the overall and per-service status.
func (s *HealthServer) SetServing(serving bool) {
	status := grpc_health_v1.HealthCheckResponse_NOT_SERVING
	if serving {
		status = grpc_health_v1.HealthCheckResponse_SERVING
	}
	s.health.SetServingStatus(s.service, status)
	s.health.SetServingStatus("", status)
}

// Serve accepts connections on lis until ctx ends, then drains gracefully.
// A server forced to stop after shutdownTimeout is not an error.
func (s *HealthServer) Serve(ctx context.Context, lis net.Listener, shutdownTimeout time.Duration) error {
	if lis == nil {
		return errors.New("listener is required")
	}
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- s.server.Serve(lis)
	}()

	select {
	case err := <-serveErr:
		if err != nil && !errors.Is(err, gogrpc.ErrServerStopped) {
			return fmt.Errorf("serve health: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.health.Shutdown()
	stopped := make(chan struct{})
	go func() {
		s.server.GracefulStop()
		close(stopped)
	}()
	select {
	case <-stopped:
	case <-time.After(shutdownTimeout):
		s.server.Stop()
	}
	return nil
}
