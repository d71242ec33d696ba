package client

import (
	"context"
	"sync"

	"google.golang.org/grpc"

	svcErr "github.com/oggyb/muzz-dating/internal/errors"
	"github.com/oggyb/muzz-dating/internal/feed"
	"github.com/oggyb/muzz-dating/internal/model"
	pb "github.com/oggyb/muzz-dating/internal/proto/dating"
)

// MatchFeed manages the one match subscription of a session. Starting a new
// subscription always cancels the previous one first.
type MatchFeed struct {
	session *Session

	mu     sync.Mutex
	watch  *Watch
	userID string
}

func newMatchFeed(s *Session) *MatchFeed {
	return &MatchFeed{session: s}
}

// StartListening streams userID's matches, newest first, to h. userID must be
// the signed-in user. Any earlier subscription is cancelled first.
func (m *MatchFeed) StartListening(ctx context.Context, userID string, h func([]model.Match), onErr func(error)) error {
	m.StopListening()

	if current := m.session.Identity(); !current.SignedIn() || current.UserID != userID {
		return svcErr.Unauthenticated("match feed requires the signed-in user")
	}

	w, err := watchStream(m.session, ctx,
		func(ctx context.Context) (grpc.ServerStreamingClient[pb.MatchList], error) {
			return m.session.matches.WatchMatches(ctx, &pb.WatchMatchesRequest{})
		},
		matchSnapshot,
		func(s feed.Snapshot[model.Match]) { h(s.Items) },
		onErr)
	if err != nil {
		return err
	}

	m.mu.Lock()
	prev := m.watch
	m.watch, m.userID = w, userID
	m.mu.Unlock()
	if prev != nil {
		prev.Cancel()
	}
	return nil
}

// StopListening cancels the current subscription, if any.
func (m *MatchFeed) StopListening() {
	m.mu.Lock()
	w := m.watch
	m.watch, m.userID = nil, ""
	m.mu.Unlock()
	if w != nil {
		w.Cancel()
	}
}

// Listening reports the user whose matches are being streamed.
func (m *MatchFeed) Listening() (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.userID, m.watch != nil
}
