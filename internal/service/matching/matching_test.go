package matching_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oggyb/muzz-dating/internal/app/apptest"
	"github.com/oggyb/muzz-dating/internal/config"
	"github.com/oggyb/muzz-dating/internal/db"
	"github.com/oggyb/muzz-dating/internal/feed"
	"github.com/oggyb/muzz-dating/internal/model"
	"github.com/oggyb/muzz-dating/internal/repository"
	"github.com/oggyb/muzz-dating/internal/service/matching"
)

type feedSnap = feed.Snapshot[model.Match]

type fixture struct {
	env      *apptest.Env
	likes    *repository.LikeRepository
	registry *matching.Registry
	detector *matching.Detector
}

func setup(t *testing.T, strict bool) *fixture {
	t.Helper()
	env := apptest.New(t, func(c *config.Config) { c.Match.Strict = strict })
	likes := repository.NewLikeRepository(env.AppCtx.DB)
	registry := matching.NewRegistry(env.AppCtx)
	return &fixture{
		env:      env,
		likes:    likes,
		registry: registry,
		detector: matching.NewDetector(env.AppCtx, likes, registry),
	}
}

func TestDetect_OneSidedLikeIsNoMatch(t *testing.T) {
	ctx := context.Background()
	f := setup(t, false)

	require.NoError(t, f.likes.Upsert(ctx, "alice", "bob", true))
	res, err := f.detector.Detect(ctx, "alice", "bob")
	require.NoError(t, err)
	assert.False(t, res.Matched)
	assert.Nil(t, res.Match)

	// a pass is not a like
	require.NoError(t, f.likes.Upsert(ctx, "bob", "alice", false))
	res, err = f.detector.Detect(ctx, "alice", "bob")
	require.NoError(t, err)
	assert.False(t, res.Matched)
}

func TestDetect_MutualLikeCreatesSortedMatch(t *testing.T) {
	ctx := context.Background()
	f := setup(t, false)
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	f.env.AppCtx.Now = func() time.Time { return at }

	require.NoError(t, f.likes.Upsert(ctx, "zed", "amy", true))
	require.NoError(t, f.likes.Upsert(ctx, "amy", "zed", true))

	res, err := f.detector.Detect(ctx, "zed", "amy")
	require.NoError(t, err)
	require.True(t, res.Matched)
	assert.Equal(t, [2]string{"amy", "zed"}, res.Match.Participants)
	assert.True(t, res.Match.MatchedAt.Equal(at))
	assert.NotEmpty(t, res.Match.ID)

	matches, discarded, err := f.registry.ListForUser(ctx, "amy")
	require.NoError(t, err)
	assert.Empty(t, discarded)
	require.Len(t, matches, 1)
	assert.Equal(t, res.Match.ID, matches[0].ID)
}

// concurrentDetect runs both directions at once after both likes are stored,
// the interleaving in which each side observes the other's like.
func concurrentDetect(t *testing.T, f *fixture) {
	ctx := context.Background()
	require.NoError(t, f.likes.Upsert(ctx, "a", "b", true))
	require.NoError(t, f.likes.Upsert(ctx, "b", "a", true))

	var wg sync.WaitGroup
	for _, p := range [][2]string{{"a", "b"}, {"b", "a"}} {
		wg.Add(1)
		go func(swiper, target string) {
			defer wg.Done()
			_, err := f.detector.Detect(ctx, swiper, target)
			assert.NoError(t, err)
		}(p[0], p[1])
	}
	wg.Wait()
}

func TestDetect_ConcurrentMutualLikesDuplicate(t *testing.T) {
	f := setup(t, false)
	concurrentDetect(t, f)

	n, err := repository.NewMatchRepository(f.env.AppCtx.DB).CountForPair(context.Background(), [2]string{"a", "b"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestDetect_StrictModeCreatesOneMatch(t *testing.T) {
	f := setup(t, true)
	concurrentDetect(t, f)

	n, err := repository.NewMatchRepository(f.env.AppCtx.DB).CountForPair(context.Background(), [2]string{"a", "b"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestRegistry_CreateAllowsDuplicatesNewestFirst(t *testing.T) {
	ctx := context.Background()
	f := setup(t, false)
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	first, err := f.registry.Create(ctx, [2]string{"b", "a"}, base)
	require.NoError(t, err)
	second, err := f.registry.Create(ctx, [2]string{"a", "b"}, base.Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, [2]string{"a", "b"}, first.Participants)

	matches, _, err := f.registry.ListForUser(ctx, "b")
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, second.ID, matches[0].ID)
	assert.Equal(t, first.ID, matches[1].ID)
}

func TestRegistry_LiveFeedRedeliversAndReportsBadRows(t *testing.T) {
	ctx := context.Background()
	f := setup(t, false)

	rec := apptest.NewRecorder[model.Match]()
	sub, err := f.registry.LiveFeedForUser(ctx, "a", rec.Handle)
	require.NoError(t, err)
	defer sub.Cancel()

	assert.Empty(t, rec.Next(t).Items)

	_, err = f.registry.Create(ctx, [2]string{"a", "b"}, time.Now().UTC())
	require.NoError(t, err)
	snap := rec.Until(t, func(s feedSnap) bool { return len(s.Items) == 1 })
	assert.Equal(t, "b", snap.Items[0].Other("a"))

	// a malformed row written by someone else shows up as discarded
	require.NoError(t, f.env.AppCtx.DB.Create(&db.Match{ID: "bad", ParticipantA: "a", ParticipantB: "a", MatchedAt: time.Now()}).Error)
	_, err = f.registry.Create(ctx, [2]string{"a", "c"}, time.Now().UTC())
	require.NoError(t, err)
	snap = rec.Until(t, func(s feedSnap) bool { return len(s.Items) == 2 })
	require.Len(t, snap.Discarded, 1)
	assert.Equal(t, "bad", snap.Discarded[0].ID)

	sub.Cancel()
	sub.Wait()
	assert.Equal(t, 0, f.env.Hub.Subscribers("matches:a"))
}
