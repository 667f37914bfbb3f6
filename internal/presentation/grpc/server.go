package grpc

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
	"google.golang.org/grpc/status"

	"github.com/nikhilpunky/manaja2/pkg/auth"
)

// RPCRecorder observes completed RPCs.
type RPCRecorder interface {
	RecordRPC(method, code string, d time.Duration)
}

// ServerOptions configures the gRPC server.
type ServerOptions struct {
	JWT         *auth.JWTService
	Credentials credentials.TransportCredentials
	Reflection  bool
	Metrics     RPCRecorder
}

// Server wraps a gRPC server with the lending handler registered.
type Server struct {
	gs     *grpc.Server
	health *health.Server
	logger *slog.Logger
}

// NewServer creates and configures the gRPC server.
func NewServer(handler LendingServiceServer, opts ServerOptions, logger *slog.Logger) *Server {
	authInterceptor := auth.UnaryServerInterceptor(opts.JWT, auth.Rules{
		"/" + healthpb.Health_ServiceDesc.ServiceName + "/": {Public: true},
		"/" + ServiceName + "/":                             {Roles: []string{auth.RoleBorrower}},
	})

	interceptors := []grpc.UnaryServerInterceptor{}
	if opts.Metrics != nil {
		interceptors = append(interceptors, metricsInterceptor(opts.Metrics))
	}
	interceptors = append(interceptors, authInterceptor)

	serverOpts := []grpc.ServerOption{grpc.ChainUnaryInterceptor(interceptors...)}
	if opts.Credentials != nil {
		serverOpts = append(serverOpts, grpc.Creds(opts.Credentials))
		logger.Info("gRPC TLS enabled")
	} else {
		logger.Info("gRPC TLS not configured, running without TLS")
	}

	gs := grpc.NewServer(serverOpts...)

	healthSrv := health.NewServer()
	healthpb.RegisterHealthServer(gs, healthSrv)
	healthSrv.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)

	if opts.Reflection {
		reflection.Register(gs)
	}

	RegisterLendingServiceServer(gs, handler)

	return &Server{
		gs:     gs,
		health: healthSrv,
		logger: logger,
	}
}

// Serve starts the gRPC server on the specified address.
func (s *Server) Serve(addr string) error {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	return s.ServeListener(lis)
}

// ServeListener serves on an existing listener.
func (s *Server) ServeListener(lis net.Listener) error {
	s.logger.Info("gRPC server listening", "addr", lis.Addr().String())
	return s.gs.Serve(lis)
}

// GracefulStop marks the service as not serving and stops the server
// gracefully.
func (s *Server) GracefulStop() {
	s.logger.Info("gRPC server shutting down")
	s.health.Shutdown()
	s.gs.GracefulStop()
}

func metricsInterceptor(rec RPCRecorder) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		rec.RecordRPC(info.FullMethod, status.Code(err).String(), time.Since(start))
		return resp, err
	}
}
