// Package client is the app-side session over the dating gRPC API.
//
// Every remote call runs off the caller's goroutine and returns an
// async.Future. Completions observed through Future.Then(session.Dispatcher()),
// feed deliveries and identity changes all arrive on the session's single
// dispatcher loop, in order.
package client

import (
	"context"
	"log/slog"
	"sync"

	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"

	"github.com/oggyb/muzz-dating/internal/async"
	svcErr "github.com/oggyb/muzz-dating/internal/errors"
	"github.com/oggyb/muzz-dating/internal/logger"
	"github.com/oggyb/muzz-dating/internal/model"
	pb "github.com/oggyb/muzz-dating/internal/proto/dating"
)

// Option configures a Session.
type Option func(*Session)

func WithLogger(log *slog.Logger) Option {
	return func(s *Session) { s.log = log }
}

// Session is one signed-in (or signed-out) app instance.
type Session struct {
	log  *slog.Logger
	disp *async.Dispatcher

	accounts  *pb.AccountsClient
	directory *pb.DirectoryClient
	swipes    *pb.SwipesClient
	matches   *pb.MatchesClient
	chats     *pb.ChatsClient

	mu        sync.Mutex
	identity  model.Identity
	token     string
	listeners map[int]func(model.Identity)
	nextID    int

	matchFeed *MatchFeed
}

// NewSession creates a session over cc. Close releases it.
func NewSession(cc grpc.ClientConnInterface, opts ...Option) *Session {
	s := &Session{
		log:       logger.L(),
		disp:      async.NewDispatcher(),
		accounts:  pb.NewAccountsClient(cc),
		directory: pb.NewDirectoryClient(cc),
		swipes:    pb.NewSwipesClient(cc),
		matches:   pb.NewMatchesClient(cc),
		chats:     pb.NewChatsClient(cc),
		listeners: make(map[int]func(model.Identity)),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.matchFeed = newMatchFeed(s)
	return s
}

// Dispatcher is the loop every callback of this session runs on.
func (s *Session) Dispatcher() *async.Dispatcher { return s.disp }

// MatchFeed is this session's match-feed manager.
func (s *Session) MatchFeed() *MatchFeed { return s.matchFeed }

// Close stops the match feed and the dispatcher. Must not be called from a
// dispatcher callback.
func (s *Session) Close() {
	s.matchFeed.StopListening()
	s.disp.Close()
}

// --- identity ---

func (s *Session) Identity() model.Identity {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.identity
}

// Token returns the current access token, empty when signed out.
func (s *Session) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// OnIdentityChanged registers fn for identity changes. fn first receives the
// current identity, then every change; the signed-out identity is the zero
// value. The returned func unregisters fn.
func (s *Session) OnIdentityChanged(fn func(model.Identity)) (cancel func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	current := s.identity
	s.mu.Unlock()

	_ = s.disp.Post(func() {
		if s.listening(id) {
			fn(current)
		}
	})
	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

func (s *Session) listening(id int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.listeners[id]
	return ok
}

func (s *Session) setIdentity(identity model.Identity, token string) {
	s.mu.Lock()
	s.identity, s.token = identity, token
	fns := make(map[int]func(model.Identity), len(s.listeners))
	for id, fn := range s.listeners {
		fns[id] = fn
	}
	s.mu.Unlock()

	_ = s.disp.Post(func() {
		for id, fn := range fns {
			if s.listening(id) {
				fn(identity)
			}
		}
	})
}

// Resume restores a previously issued token without a round trip.
func (s *Session) Resume(identity model.Identity, token string) {
	s.setIdentity(identity, token)
}

// authed attaches the bearer token to an outgoing call.
func (s *Session) authed(ctx context.Context) context.Context {
	if tok := s.Token(); tok != "" {
		return metadata.AppendToOutgoingContext(ctx, "authorization", "Bearer "+tok)
	}
	return ctx
}

// call runs fn asynchronously with an authenticated context and converts
// gRPC statuses back into the error taxonomy.
func call[T any](s *Session, ctx context.Context, fn func(ctx context.Context) (T, error)) *async.Future[T] {
	ctx = s.authed(ctx)
	return async.Go(ctx, func(ctx context.Context) (T, error) {
		v, err := fn(ctx)
		return v, svcErr.FromStatus(err)
	})
}

// --- accounts ---

func (s *Session) SignUp(ctx context.Context, email, password string) *async.Future[model.Identity] {
	return call(s, ctx, func(ctx context.Context) (model.Identity, error) {
		resp, err := s.accounts.SignUp(ctx, &pb.SignUpRequest{Email: email, Password: password})
		if err != nil {
			return model.Identity{}, err
		}
		return s.signedIn(resp), nil
	})
}

func (s *Session) SignIn(ctx context.Context, email, password string) *async.Future[model.Identity] {
	return call(s, ctx, func(ctx context.Context) (model.Identity, error) {
		resp, err := s.accounts.SignIn(ctx, &pb.SignInRequest{Email: email, Password: password})
		if err != nil {
			return model.Identity{}, err
		}
		return s.signedIn(resp), nil
	})
}

func (s *Session) signedIn(resp *pb.AuthResponse) model.Identity {
	identity := model.Identity{UserID: resp.UserId, Email: resp.Email}
	if prev := s.Identity(); prev.UserID != identity.UserID {
		s.matchFeed.StopListening()
	}
	s.setIdentity(identity, resp.AccessToken)
	s.log.Debug("signed in", "user", identity.UserID)
	return identity
}

// SignOut revokes the token server-side and clears the identity. The local
// identity is cleared even when the server call fails.
func (s *Session) SignOut(ctx context.Context) *async.Future[struct{}] {
	return call(s, ctx, func(ctx context.Context) (struct{}, error) {
		_, err := s.accounts.SignOut(ctx, &pb.SignOutRequest{})
		s.matchFeed.StopListening()
		s.setIdentity(model.Identity{}, "")
		return struct{}{}, err
	})
}

// --- directory ---

// GetUser fetches a profile; an empty id means the signed-in user.
func (s *Session) GetUser(ctx context.Context, userID string) *async.Future[model.User] {
	return call(s, ctx, func(ctx context.Context) (model.User, error) {
		u, err := s.directory.GetUser(ctx, &pb.GetUserRequest{UserId: userID})
		if err != nil {
			return model.User{}, err
		}
		return u.Model(), nil
	})
}

// UpdateProfile changes the display name (when non-nil), then the image (when non-empty).
func (s *Session) UpdateProfile(ctx context.Context, displayName *string, image []byte) *async.Future[model.User] {
	return call(s, ctx, func(ctx context.Context) (model.User, error) {
		u, err := s.directory.UpdateProfile(ctx, &pb.UpdateProfileRequest{DisplayName: displayName, ProfileImage: image})
		if err != nil {
			return model.User{}, err
		}
		return u.Model(), nil
	})
}

// Candidates lists every other user, reporting undecodable records.
func (s *Session) Candidates(ctx context.Context) *async.Future[[]model.User] {
	return call(s, ctx, func(ctx context.Context) ([]model.User, error) {
		resp, err := s.directory.ListCandidates(ctx, &pb.ListCandidatesRequest{})
		if err != nil {
			return nil, err
		}
		s.logDiscarded(resp.Discarded)
		return pb.Convert(resp.Users, (*pb.User).Model), nil
	})
}

// --- swipes ---

func (s *Session) Like(ctx context.Context, targetID string) *async.Future[model.MatchResult] {
	return s.recordVerdict(ctx, targetID, true)
}

func (s *Session) Pass(ctx context.Context, targetID string) *async.Future[model.MatchResult] {
	return s.recordVerdict(ctx, targetID, false)
}

func (s *Session) recordVerdict(ctx context.Context, targetID string, liked bool) *async.Future[model.MatchResult] {
	return call(s, ctx, func(ctx context.Context) (model.MatchResult, error) {
		resp, err := s.swipes.RecordVerdict(ctx, &pb.RecordVerdictRequest{TargetUserId: targetID, Liked: liked})
		if err != nil {
			return model.NoMatch, err
		}
		res := model.MatchResult{Matched: resp.Matched}
		if resp.Match != nil {
			m := resp.Match.Model()
			res.Match = &m
		}
		return res, nil
	})
}

// Verdict reads the signed-in user's verdict on target.
func (s *Session) Verdict(ctx context.Context, targetID string) *async.Future[model.Verdict] {
	return call(s, ctx, func(ctx context.Context) (model.Verdict, error) {
		resp, err := s.swipes.GetVerdict(ctx, &pb.GetVerdictRequest{TargetUserId: targetID})
		if err != nil {
			return model.VerdictAbsent, err
		}
		switch resp.Verdict {
		case model.VerdictLiked.String():
			return model.VerdictLiked, nil
		case model.VerdictPassed.String():
			return model.VerdictPassed, nil
		default:
			return model.VerdictAbsent, nil
		}
	})
}

func (s *Session) LikesReceived(ctx context.Context) *async.Future[uint64] {
	return call(s, ctx, func(ctx context.Context) (uint64, error) {
		resp, err := s.swipes.CountLikesReceived(ctx, &pb.CountLikesReceivedRequest{})
		if err != nil {
			return 0, err
		}
		return resp.Count, nil
	})
}

// --- matches and chats ---

func (s *Session) Matches(ctx context.Context) *async.Future[[]model.Match] {
	return call(s, ctx, func(ctx context.Context) ([]model.Match, error) {
		resp, err := s.matches.ListMatches(ctx, &pb.ListMatchesRequest{})
		if err != nil {
			return nil, err
		}
		s.logDiscarded(resp.Discarded)
		return pb.Convert(resp.Matches, (*pb.Match).Model), nil
	})
}

// Send appends text to the thread with peer.
func (s *Session) Send(ctx context.Context, peerID, text string) *async.Future[model.Message] {
	return call(s, ctx, func(ctx context.Context) (model.Message, error) {
		m, err := s.chats.SendMessage(ctx, &pb.SendMessageRequest{ReceiverUserId: peerID, Text: text})
		if err != nil {
			return model.Message{}, err
		}
		return m.Model(), nil
	})
}

func (s *Session) Messages(ctx context.Context, peerID string) *async.Future[[]model.Message] {
	return call(s, ctx, func(ctx context.Context) ([]model.Message, error) {
		resp, err := s.chats.ListMessages(ctx, &pb.ListMessagesRequest{PeerUserId: peerID})
		if err != nil {
			return nil, err
		}
		s.logDiscarded(resp.Discarded)
		return pb.Convert(resp.Messages, (*pb.Message).Model), nil
	})
}

func (s *Session) Threads(ctx context.Context) *async.Future[[]model.ThreadSummary] {
	return call(s, ctx, func(ctx context.Context) ([]model.ThreadSummary, error) {
		resp, err := s.chats.ListThreads(ctx, &pb.ListThreadsRequest{})
		if err != nil {
			return nil, err
		}
		s.logDiscarded(resp.Discarded)
		return pb.Convert(resp.Threads, (*pb.ThreadSummary).Model), nil
	})
}

func (s *Session) logDiscarded(discarded []*pb.Discarded) {
	for _, d := range discarded {
		s.log.Warn("discarded record", "kind", d.Kind, "id", d.Id, "reason", d.Reason)
	}
}
