package directory

import (
	"context"

	"github.com/oggyb/muzz-dating/internal/auth"
	svcErr "github.com/oggyb/muzz-dating/internal/errors"
	pb "github.com/oggyb/muzz-dating/internal/proto/dating"
)

// Handler implements the Directory gRPC API for the authenticated caller.
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// GetUser returns any user's profile; an empty user_id means the caller.
func (h *Handler) GetUser(ctx context.Context, req *pb.GetUserRequest) (*pb.User, error) {
	id := req.UserId
	if id == "" {
		caller, err := callerID(ctx)
		if err != nil {
			return nil, err
		}
		id = caller
	}
	user, err := h.svc.Get(ctx, id)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	return pb.FromUser(user), nil
}

// UpdateProfile edits the caller's own profile.
func (h *Handler) UpdateProfile(ctx context.Context, req *pb.UpdateProfileRequest) (*pb.User, error) {
	caller, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	user, err := h.svc.UpdateProfile(ctx, caller, req.DisplayName, req.ProfileImage)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	return pb.FromUser(user), nil
}

func (h *Handler) ListCandidates(ctx context.Context, _ *pb.ListCandidatesRequest) (*pb.ListCandidatesResponse, error) {
	caller, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	users, discarded, err := h.svc.ListCandidates(ctx, caller)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	return &pb.ListCandidatesResponse{
		Users:     pb.Convert(users, pb.FromUser),
		Discarded: pb.FromParseErrors(discarded),
	}, nil
}

func callerID(ctx context.Context) (string, error) {
	id, ok := auth.UserIDFromContext(ctx)
	if !ok {
		return "", svcErr.Map(svcErr.Unauthenticated("no authenticated caller"))
	}
	return id, nil
}
