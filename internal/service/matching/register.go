package matching

import (
	"google.golang.org/grpc"

	pb "github.com/oggyb/muzz-dating/internal/proto/dating"
)

// Registrar ties the Matches service into the gRPC server
type Registrar struct {
	registry *Registry
}

func NewRegistrar(registry *Registry) *Registrar {
	return &Registrar{registry: registry}
}

// Register attaches the Matches handler to the gRPC server
func (r *Registrar) Register(s *grpc.Server) {
	pb.RegisterMatchesServer(s, NewHandler(r.registry))
}
