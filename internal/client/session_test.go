package client_test

import (
	"context"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/test/bufconn"

	"github.com/oggyb/muzz-dating/internal/app/apptest"
	"github.com/oggyb/muzz-dating/internal/client"
	"github.com/oggyb/muzz-dating/internal/feed"
	svcErr "github.com/oggyb/muzz-dating/internal/errors"
	"github.com/oggyb/muzz-dating/internal/logger"
	"github.com/oggyb/muzz-dating/internal/model"
	"github.com/oggyb/muzz-dating/internal/server"
)

type (
	feedSnap    = feed.Snapshot[model.Message]
	summarySnap = feed.Snapshot[model.ThreadSummary]
)

// startServer runs the full dating API on an in-memory listener and returns
// a connection factory.
func startServer(t *testing.T) (*apptest.Env, func() *grpc.ClientConn) {
	t.Helper()
	env := apptest.New(t)
	env.AppCtx.Now = apptest.StepClock(time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC), time.Second)

	srv, err := server.NewDatingServer(env.AppCtx)
	require.NoError(t, err)

	lis := bufconn.Listen(1 << 20)
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	dial := func() *grpc.ClientConn {
		conn, err := grpc.NewClient("passthrough:///bufnet",
			grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
				return lis.DialContext(ctx)
			}),
			grpc.WithTransportCredentials(insecure.NewCredentials()),
		)
		require.NoError(t, err)
		t.Cleanup(func() { conn.Close() })
		return conn
	}
	return env, dial
}

func newSession(t *testing.T, dial func() *grpc.ClientConn) *client.Session {
	t.Helper()
	s := client.NewSession(dial(), client.WithLogger(logger.Discard()))
	t.Cleanup(s.Close)
	return s
}

func await[T any](t *testing.T, f interface {
	Await(context.Context) (T, error)
}) T {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	v, err := f.Await(ctx)
	require.NoError(t, err)
	return v
}

func signUp(t *testing.T, s *client.Session, email string) model.Identity {
	t.Helper()
	return await[model.Identity](t, s.SignUp(context.Background(), email, "secret1"))
}

// collector gathers deliveries that arrive on the session dispatcher.
type collector[T any] struct {
	mu   sync.Mutex
	got  []T
	wake chan struct{}
}

func newCollector[T any]() *collector[T] {
	return &collector[T]{wake: make(chan struct{}, 256)}
}

func (c *collector[T]) add(v T) {
	c.mu.Lock()
	c.got = append(c.got, v)
	c.mu.Unlock()
	c.wake <- struct{}{}
}

func (c *collector[T]) until(t *testing.T, ok func(T) bool) T {
	t.Helper()
	deadline := time.After(5 * time.Second)
	for {
		c.mu.Lock()
		for _, v := range c.got {
			if ok(v) {
				c.mu.Unlock()
				return v
			}
		}
		c.mu.Unlock()
		select {
		case <-c.wake:
		case <-deadline:
			t.Fatal("timed out waiting for delivery")
		}
	}
}

func TestSession_IdentityChanges(t *testing.T) {
	_, dial := startServer(t)
	s := newSession(t, dial)

	ids := newCollector[model.Identity]()
	stop := s.OnIdentityChanged(ids.add)
	defer stop()

	ids.until(t, func(i model.Identity) bool { return !i.SignedIn() })

	me := signUp(t, s, "alice@example.com")
	ids.until(t, func(i model.Identity) bool { return i.UserID == me.UserID })

	// the directory record was created on sign-up
	u := await[model.User](t, s.GetUser(context.Background(), ""))
	assert.Equal(t, me.UserID, u.ID)
	assert.Equal(t, "alice@example.com", u.DisplayName)

	await[struct{}](t, s.SignOut(context.Background()))
	assert.False(t, s.Identity().SignedIn())

	// the revoked token no longer works
	_, err := s.GetUser(context.Background(), me.UserID).Await(context.Background())
	assert.ErrorIs(t, err, svcErr.ErrUnauthenticated)
}

func TestSession_MutualLikeAndMatchFeed(t *testing.T) {
	_, dial := startServer(t)
	alice := newSession(t, dial)
	bob := newSession(t, dial)
	a := signUp(t, alice, "alice@example.com")
	b := signUp(t, bob, "bob@example.com")

	matchList := newCollector[[]model.Match]()
	require.NoError(t, alice.MatchFeed().StartListening(context.Background(), a.UserID, matchList.add, nil))
	matchList.until(t, func(m []model.Match) bool { return len(m) == 0 })

	// first like: no match, and bob's ledger has nothing on alice
	res := await[model.MatchResult](t, alice.Like(context.Background(), b.UserID))
	assert.False(t, res.Matched)
	assert.Equal(t, model.VerdictAbsent, await[model.Verdict](t, bob.Verdict(context.Background(), a.UserID)))

	res = await[model.MatchResult](t, bob.Like(context.Background(), a.UserID))
	require.True(t, res.Matched)
	assert.Equal(t, model.SortedPair(a.UserID, b.UserID), res.Match.Participants)

	got := matchList.until(t, func(m []model.Match) bool { return len(m) == 1 })
	assert.Equal(t, b.UserID, got[0].Other(a.UserID))

	assert.Equal(t, uint64(1), await[uint64](t, alice.LikesReceived(context.Background())))
}

func TestSession_OverwriteVerdict(t *testing.T) {
	_, dial := startServer(t)
	alice := newSession(t, dial)
	bob := newSession(t, dial)
	signUp(t, alice, "alice@example.com")
	b := signUp(t, bob, "bob@example.com")

	await[model.MatchResult](t, alice.Like(context.Background(), b.UserID))
	await[model.MatchResult](t, alice.Pass(context.Background(), b.UserID))
	assert.Equal(t, model.VerdictPassed, await[model.Verdict](t, alice.Verdict(context.Background(), b.UserID)))
}

func TestSession_MatchFeedRestartCancelsPrevious(t *testing.T) {
	_, dial := startServer(t)
	alice := newSession(t, dial)
	a := signUp(t, alice, "alice@example.com")

	first := newCollector[[]model.Match]()
	require.NoError(t, alice.MatchFeed().StartListening(context.Background(), a.UserID, first.add, nil))
	second := newCollector[[]model.Match]()
	require.NoError(t, alice.MatchFeed().StartListening(context.Background(), a.UserID, second.add, nil))
	second.until(t, func([]model.Match) bool { return true })

	user, ok := alice.MatchFeed().Listening()
	assert.True(t, ok)
	assert.Equal(t, a.UserID, user)

	alice.MatchFeed().StopListening()
	_, ok = alice.MatchFeed().Listening()
	assert.False(t, ok)

	err := alice.MatchFeed().StartListening(context.Background(), "someone-else", first.add, nil)
	assert.ErrorIs(t, err, svcErr.ErrUnauthenticated)
}

func TestSession_ChatThreadAndSummaries(t *testing.T) {
	_, dial := startServer(t)
	alice := newSession(t, dial)
	bob := newSession(t, dial)
	a := signUp(t, alice, "alice@example.com")
	b := signUp(t, bob, "bob@example.com")
	ctx := context.Background()

	thread := newCollector[[]model.Message]()
	w, err := bob.WatchThread(ctx, a.UserID, func(s feedSnap) { thread.add(s.Items) }, nil)
	require.NoError(t, err)
	defer w.Cancel()

	summaries := newCollector[[]model.ThreadSummary]()
	ws, err := alice.WatchThreads(ctx, func(s summarySnap) { summaries.add(s.Items) }, nil)
	require.NoError(t, err)
	defer ws.Cancel()

	await[model.Message](t, alice.Send(ctx, b.UserID, "hello"))
	await[model.Message](t, bob.Send(ctx, a.UserID, "world"))

	_, err = alice.Send(ctx, b.UserID, "   ").Await(ctx)
	assert.ErrorIs(t, err, svcErr.ErrValidation)
	_, err = alice.Send(ctx, a.UserID, "me").Await(ctx)
	assert.ErrorIs(t, err, svcErr.ErrValidation)

	msgs := thread.until(t, func(m []model.Message) bool { return len(m) == 2 })
	assert.Equal(t, "hello", msgs[0].Text)
	assert.Equal(t, "world", msgs[1].Text)

	list := summaries.until(t, func(s []model.ThreadSummary) bool {
		return len(s) == 1 && s[0].LastMessage == "world"
	})
	assert.Equal(t, model.JoinThreadID(a.UserID, b.UserID), list[0].ThreadID)

	stored := await[[]model.Message](t, alice.Messages(ctx, b.UserID))
	assert.Len(t, stored, 2)
	threads := await[[]model.ThreadSummary](t, bob.Threads(ctx))
	require.Len(t, threads, 1)
	assert.Equal(t, "world", threads[0].LastMessage)
}

func TestSession_CallsRequireSignIn(t *testing.T) {
	_, dial := startServer(t)
	s := newSession(t, dial)

	_, err := s.Matches(context.Background()).Await(context.Background())
	assert.ErrorIs(t, err, svcErr.ErrUnauthenticated)
}

func TestSession_ProfileEditAndCandidates(t *testing.T) {
	_, dial := startServer(t)
	alice := newSession(t, dial)
	bob := newSession(t, dial)
	signUp(t, alice, "alice@example.com")
	b := signUp(t, bob, "bob@example.com")
	ctx := context.Background()

	name := "Bobby"
	u := await[model.User](t, bob.UpdateProfile(ctx, &name, []byte("png")))
	assert.Equal(t, "Bobby", u.DisplayName)
	assert.True(t, u.HasImage())

	users := await[[]model.User](t, alice.Candidates(ctx))
	require.Len(t, users, 1)
	assert.Equal(t, b.UserID, users[0].ID)
	assert.Equal(t, "Bobby", users[0].DisplayName)

	empty := " "
	_, err := bob.UpdateProfile(ctx, &empty, nil).Await(ctx)
	assert.ErrorIs(t, err, svcErr.ErrValidation)
}
