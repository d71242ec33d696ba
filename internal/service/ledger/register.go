package ledger

import (
	"google.golang.org/grpc"

	pb "github.com/oggyb/muzz-dating/internal/proto/dating"
)

// Registrar ties the Swipes service into the gRPC server
type Registrar struct {
	svc *Service
}

func NewRegistrar(svc *Service) *Registrar {
	return &Registrar{svc: svc}
}

// Register attaches the Swipes handler to the gRPC server
func (r *Registrar) Register(s *grpc.Server) {
	pb.RegisterSwipesServer(s, NewHandler(r.svc))
}
