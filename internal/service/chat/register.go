package chat

import (
	"google.golang.org/grpc"

	"github.com/oggyb/muzz-dating/internal/app"
	pb "github.com/oggyb/muzz-dating/internal/proto/dating"
)

// Registrar ties the Chats service into the gRPC server
type Registrar struct {
	log *MessageLog
}

func NewRegistrar(appCtx *app.AppContext) *Registrar {
	return &Registrar{log: NewMessageLog(appCtx)}
}

// Register attaches the Chats handler to the gRPC server
func (r *Registrar) Register(s *grpc.Server) {
	pb.RegisterChatsServer(s, NewHandler(r.log))
}
