package account

import (
	"context"

	"github.com/oggyb/muzz-dating/internal/auth"
	svcErr "github.com/oggyb/muzz-dating/internal/errors"
	pb "github.com/oggyb/muzz-dating/internal/proto/dating"
)

// Handler implements the Accounts gRPC API.
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) SignUp(ctx context.Context, req *pb.SignUpRequest) (*pb.AuthResponse, error) {
	g, err := h.svc.CreateAccount(ctx, req.Email, req.Password)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	return toAuthResponse(g), nil
}

func (h *Handler) SignIn(ctx context.Context, req *pb.SignInRequest) (*pb.AuthResponse, error) {
	g, err := h.svc.SignIn(ctx, req.Email, req.Password)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	return toAuthResponse(g), nil
}

// SignOut revokes the token the call was authenticated with.
func (h *Handler) SignOut(ctx context.Context, _ *pb.SignOutRequest) (*pb.SignOutResponse, error) {
	token, ok := auth.TokenFromContext(ctx)
	if !ok {
		return nil, svcErr.Map(svcErr.Unauthenticated("no access token"))
	}
	if err := h.svc.SignOut(ctx, token); err != nil {
		return nil, svcErr.Map(err)
	}
	return &pb.SignOutResponse{}, nil
}

func toAuthResponse(g Grant) *pb.AuthResponse {
	return &pb.AuthResponse{
		UserId:      g.Identity.UserID,
		Email:       g.Identity.Email,
		AccessToken: g.Token,
		ExpiresAt:   pb.NewTimestamp(g.ExpiresAt),
	}
}
