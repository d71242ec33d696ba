package matching

import (
	"context"

	"google.golang.org/grpc"

	"github.com/oggyb/muzz-dating/internal/auth"
	svcErr "github.com/oggyb/muzz-dating/internal/errors"
	"github.com/oggyb/muzz-dating/internal/feed"
	"github.com/oggyb/muzz-dating/internal/model"
	pb "github.com/oggyb/muzz-dating/internal/proto/dating"
)

// Handler implements the Matches gRPC API for the authenticated caller.
type Handler struct {
	registry *Registry
}

func NewHandler(registry *Registry) *Handler {
	return &Handler{registry: registry}
}

func (h *Handler) ListMatches(ctx context.Context, _ *pb.ListMatchesRequest) (*pb.MatchList, error) {
	caller, ok := auth.UserIDFromContext(ctx)
	if !ok {
		return nil, svcErr.Map(svcErr.Unauthenticated("no authenticated caller"))
	}
	matches, discarded, err := h.registry.ListForUser(ctx, caller)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	return toMatchList(feed.Snapshot[model.Match]{Items: matches, Discarded: discarded}), nil
}

// WatchMatches streams the caller's full match list on every change.
// The stream ends with the feed's error if a query fails.
func (h *Handler) WatchMatches(_ *pb.WatchMatchesRequest, stream grpc.ServerStreamingServer[pb.MatchList]) error {
	ctx := stream.Context()
	caller, ok := auth.UserIDFromContext(ctx)
	if !ok {
		return svcErr.Map(svcErr.Unauthenticated("no authenticated caller"))
	}

	start := func(ctx context.Context, fn feed.Handler[model.Match], opts ...feed.Option) (*feed.Subscription, error) {
		return h.registry.LiveFeedForUser(ctx, caller, fn, opts...)
	}
	err := feed.Pump(ctx, start, func(snap feed.Snapshot[model.Match]) error {
		return stream.Send(toMatchList(snap))
	})
	return svcErr.Map(err)
}

func toMatchList(snap feed.Snapshot[model.Match]) *pb.MatchList {
	return &pb.MatchList{
		Matches:   pb.Convert(snap.Items, pb.FromMatch),
		Discarded: pb.FromParseErrors(snap.Discarded),
	}
}
