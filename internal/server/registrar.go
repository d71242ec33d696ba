package server

import (
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// Registrar attaches one dating API service to a gRPC server.
type Registrar interface {
	Register(s *grpc.Server)
}

// RegistrarFunc adapts a plain function to Registrar.
type RegistrarFunc func(s *grpc.Server)

func (f RegistrarFunc) Register(s *grpc.Server) { f(s) }

// healthRegistrar reports SERVING for the whole server.
var healthRegistrar = RegistrarFunc(func(s *grpc.Server) {
	hs := health.NewServer()
	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(s, hs)
})

// reflectionRegistrar lists the dating services for grpcurl. Method
// descriptors are not available since the services are hand-declared.
var reflectionRegistrar = RegistrarFunc(func(s *grpc.Server) { reflection.Register(s) })
