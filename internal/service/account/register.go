package account

import (
	"google.golang.org/grpc"

	pb "github.com/oggyb/muzz-dating/internal/proto/dating"
)

// Registrar ties the Accounts service into the gRPC server
type Registrar struct {
	svc *Service
}

func NewRegistrar(svc *Service) *Registrar {
	return &Registrar{svc: svc}
}

// Register attaches the Accounts handler to the gRPC server
func (r *Registrar) Register(s *grpc.Server) {
	pb.RegisterAccountsServer(s, NewHandler(r.svc))
}
