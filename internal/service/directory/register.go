package directory

import (
	"google.golang.org/grpc"

	pb "github.com/oggyb/muzz-dating/internal/proto/dating"
)

// Registrar ties the Directory service into the gRPC server
type Registrar struct {
	svc *Service
}

// NewRegistrar creates a new Registrar for the Directory service
func NewRegistrar(svc *Service) *Registrar {
	return &Registrar{svc: svc}
}

// Register attaches the Directory handler to the gRPC server
func (r *Registrar) Register(s *grpc.Server) {
	pb.RegisterDirectoryServer(s, NewHandler(r.svc))
}
