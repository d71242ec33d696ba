package ledger

import (
	"context"

	"github.com/oggyb/muzz-dating/internal/auth"
	svcErr "github.com/oggyb/muzz-dating/internal/errors"
	pb "github.com/oggyb/muzz-dating/internal/proto/dating"
)

// Handler implements the Swipes gRPC API. The caller is always the swiper.
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RecordVerdict(ctx context.Context, req *pb.RecordVerdictRequest) (*pb.RecordVerdictResponse, error) {
	caller, ok := auth.UserIDFromContext(ctx)
	if !ok {
		return nil, svcErr.Map(svcErr.Unauthenticated("no authenticated caller"))
	}
	res, err := h.svc.RecordVerdict(ctx, caller, req.TargetUserId, req.Liked)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	resp := &pb.RecordVerdictResponse{Matched: res.Matched}
	if res.Match != nil {
		resp.Match = pb.FromMatch(*res.Match)
	}
	return resp, nil
}

// GetVerdict reads the caller's verdict on the target.
func (h *Handler) GetVerdict(ctx context.Context, req *pb.GetVerdictRequest) (*pb.GetVerdictResponse, error) {
	caller, ok := auth.UserIDFromContext(ctx)
	if !ok {
		return nil, svcErr.Map(svcErr.Unauthenticated("no authenticated caller"))
	}
	if req.TargetUserId == "" {
		return nil, svcErr.InvalidArgument("target_user_id must not be empty")
	}
	v, err := h.svc.GetVerdict(ctx, caller, req.TargetUserId)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	return &pb.GetVerdictResponse{Verdict: v.String()}, nil
}

func (h *Handler) CountLikesReceived(ctx context.Context, _ *pb.CountLikesReceivedRequest) (*pb.CountLikesReceivedResponse, error) {
	caller, ok := auth.UserIDFromContext(ctx)
	if !ok {
		return nil, svcErr.Map(svcErr.Unauthenticated("no authenticated caller"))
	}
	n, err := h.svc.CountLikesReceived(ctx, caller)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	return &pb.CountLikesReceivedResponse{Count: n}, nil
}
