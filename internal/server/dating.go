package server

import (
	"google.golang.org/grpc"

	"github.com/oggyb/muzz-dating/internal/app"
	"github.com/oggyb/muzz-dating/internal/repository"
	"github.com/oggyb/muzz-dating/internal/service/account"
	"github.com/oggyb/muzz-dating/internal/service/chat"
	"github.com/oggyb/muzz-dating/internal/service/directory"
	"github.com/oggyb/muzz-dating/internal/service/ledger"
	"github.com/oggyb/muzz-dating/internal/service/matching"
)

// NewDatingServer wires every service of the dating API over appCtx.
//
// The ledger and the detector share one LikeRepository: the detector reads
// the reciprocal verdict through it right after the ledger's write.
func NewDatingServer(appCtx *app.AppContext) (*grpc.Server, error) {
	dir := directory.NewService(appCtx)
	accounts, err := account.NewService(appCtx, dir)
	if err != nil {
		return nil, err
	}

	likes := repository.NewLikeRepository(appCtx.DB)
	registry := matching.NewRegistry(appCtx)
	detector := matching.NewDetector(appCtx, likes, registry)

	registrars := []Registrar{
		account.NewRegistrar(accounts),
		directory.NewRegistrar(dir),
		ledger.NewRegistrar(ledger.NewService(appCtx, likes, detector)),
		matching.NewRegistrar(registry),
		chat.NewRegistrar(appCtx),
	}
	return NewGRPCServer(appCtx.Logger, accounts, registrars...), nil
}
