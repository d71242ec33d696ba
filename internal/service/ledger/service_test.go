package ledger_test

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/oggyb/muzz-dating/internal/app/apptest"
	svcErr "github.com/oggyb/muzz-dating/internal/errors"
	"github.com/oggyb/muzz-dating/internal/model"
	"github.com/oggyb/muzz-dating/internal/repository"
	"github.com/oggyb/muzz-dating/internal/service/ledger"
	"github.com/oggyb/muzz-dating/internal/service/matching"
)

// setupService wires the ledger to a real detector and registry.
func setupService(t *testing.T) (*ledger.Service, *apptest.Env) {
	t.Helper()
	env := apptest.New(t)
	likes := repository.NewLikeRepository(env.AppCtx.DB)
	detector := matching.NewDetector(env.AppCtx, likes, matching.NewRegistry(env.AppCtx))
	return ledger.NewService(env.AppCtx, likes, detector), env
}

// countingDetector records calls instead of detecting.
type countingDetector struct{ calls int }

func (d *countingDetector) Detect(context.Context, string, string) (model.MatchResult, error) {
	d.calls++
	return model.NoMatch, nil
}

func TestRecordVerdict_FirstLikeIsNoMatch(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupService(t)

	res, err := svc.RecordVerdict(ctx, "a", "b", true)
	require.NoError(t, err)
	assert.False(t, res.Matched)

	v, err := svc.GetVerdict(ctx, "b", "a")
	require.NoError(t, err)
	assert.Equal(t, model.VerdictAbsent, v)
}

func TestRecordVerdict_MutualLikeMatches(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupService(t)

	_, err := svc.RecordVerdict(ctx, "bob", "alice", true)
	require.NoError(t, err)

	res, err := svc.RecordVerdict(ctx, "alice", "bob", true)
	require.NoError(t, err)
	require.True(t, res.Matched)
	require.NotNil(t, res.Match)
	assert.Equal(t, model.SortedPair("alice", "bob"), res.Match.Participants)
}

func TestRecordVerdict_OverwriteReadsFalse(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupService(t)

	_, err := svc.RecordVerdict(ctx, "a", "b", true)
	require.NoError(t, err)
	_, err = svc.RecordVerdict(ctx, "a", "b", false)
	require.NoError(t, err)

	v, err := svc.GetVerdict(ctx, "a", "b")
	require.NoError(t, err)
	assert.Equal(t, model.VerdictPassed, v)

	ledgerA, err := svc.Ledger(ctx, "a")
	require.NoError(t, err)
	liked, ok := ledgerA["b"]
	require.True(t, ok)
	assert.False(t, liked)

	// b liking back now finds a pass, not a like
	res, err := svc.RecordVerdict(ctx, "b", "a", true)
	require.NoError(t, err)
	assert.False(t, res.Matched)
}

func TestRecordVerdict_PassSkipsDetector(t *testing.T) {
	env := apptest.New(t)
	det := &countingDetector{}
	svc := ledger.NewService(env.AppCtx, repository.NewLikeRepository(env.AppCtx.DB), det)

	_, err := svc.RecordVerdict(context.Background(), "a", "b", false)
	require.NoError(t, err)
	assert.Equal(t, 0, det.calls)

	_, err = svc.RecordVerdict(context.Background(), "a", "b", true)
	require.NoError(t, err)
	assert.Equal(t, 1, det.calls)
}

func TestRecordVerdict_RejectsSelfAndEmpty(t *testing.T) {
	svc, _ := setupService(t)
	_, err := svc.RecordVerdict(context.Background(), "a", "a", true)
	assert.True(t, svcErr.IsValidation(err))
	_, err = svc.RecordVerdict(context.Background(), "a", "", true)
	assert.True(t, svcErr.IsValidation(err))
}

// TestCountLikesReceivedCache verifies the cached counter is dropped on writes.
func TestCountLikesReceivedCache(t *testing.T) {
	ctx := context.Background()
	svc, env := setupService(t)

	_, err := svc.RecordVerdict(ctx, "a", "x", true)
	require.NoError(t, err)
	_, err = svc.RecordVerdict(ctx, "b", "x", true)
	require.NoError(t, err)

	// First call → DB
	n, err := svc.CountLikesReceived(ctx, "x")
	require.NoError(t, err)
	assert.Equal(t, uint64(2), n)
	assert.True(t, env.Redis.Exists("likes:count:x"))

	// Second call → cache
	n, err = svc.CountLikesReceived(ctx, "x")
	require.NoError(t, err)
	assert.Equal(t, uint64(2), n)

	// a pass drops the counter; the next read recounts
	_, err = svc.RecordVerdict(ctx, "b", "x", false)
	require.NoError(t, err)
	assert.False(t, env.Redis.Exists("likes:count:x"))

	n, err = svc.CountLikesReceived(ctx, "x")
	require.NoError(t, err)
	assert.Equal(t, uint64(1), n)
}

// TestCountLikesReceivedIgnoresCountRacingAVerdict records a like while the
// DB count is running; the pre-like count must not be cached.
func TestCountLikesReceivedIgnoresCountRacingAVerdict(t *testing.T) {
	ctx := context.Background()
	svc, env := setupService(t)

	_, err := svc.RecordVerdict(ctx, "a", "x", true)
	require.NoError(t, err)

	var liked atomic.Bool
	require.NoError(t, env.AppCtx.DB.Callback().Query().After("gorm:query").Register("test:like_during_count",
		func(tx *gorm.DB) {
			if tx.Statement.Table != "likes" || !liked.CompareAndSwap(false, true) {
				return
			}
			_, err := svc.RecordVerdict(tx.Statement.Context, "b", "x", true)
			require.NoError(t, err)
		}))

	n, err := svc.CountLikesReceived(ctx, "x")
	require.NoError(t, err)
	assert.Equal(t, uint64(1), n)
	assert.True(t, liked.Load())
	assert.False(t, env.Redis.Exists("likes:count:x"))

	n, err = svc.CountLikesReceived(ctx, "x")
	require.NoError(t, err)
	assert.Equal(t, uint64(2), n)
}
