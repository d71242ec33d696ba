package server

import (
	"fmt"
	"log/slog"
	"net"

	"google.golang.org/grpc"

	"github.com/oggyb/muzz-dating/internal/config"
	pb "github.com/oggyb/muzz-dating/internal/proto/dating"
)

// NewGRPCServer builds a gRPC server with logging, recovery and bearer-auth
// interceptors, the health service, reflection, and all provided services.
func NewGRPCServer(log *slog.Logger, authn Authenticator, registrars ...Registrar) *grpc.Server {
	grpcServer := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			loggingUnary(log),
			recoveryUnary(log),
			authUnary(authn, pb.PublicMethods),
		),
		grpc.ChainStreamInterceptor(
			loggingStream(log),
			recoveryStream(log),
			authStream(authn, pb.PublicMethods),
		),
	)

	// register all services, then health and reflection for grpcurl
	registrars = append(registrars, healthRegistrar, reflectionRegistrar)
	for _, r := range registrars {
		r.Register(grpcServer)
	}

	return grpcServer
}

// StartGRPCServer listens on the configured address and serves until the
// server is stopped.
func StartGRPCServer(cfg *config.Config, grpcServer *grpc.Server) error {
	addr := fmt.Sprintf("%s:%s", cfg.GRPC.Host, cfg.GRPC.Port)
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	return grpcServer.Serve(lis)
}
