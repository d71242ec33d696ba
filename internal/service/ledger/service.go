package ledger

import (
	"context"
	"errors"
	"strings"

	"github.com/oggyb/muzz-dating/internal/app"
	"github.com/oggyb/muzz-dating/internal/cache"
	svcErr "github.com/oggyb/muzz-dating/internal/errors"
	"github.com/oggyb/muzz-dating/internal/model"
	"github.com/oggyb/muzz-dating/internal/repository"
)

// MatchDetector is run synchronously after every like.
type MatchDetector interface {
	Detect(ctx context.Context, swiperID, targetID string) (model.MatchResult, error)
}

// Service is the Like Ledger: every user's verdicts on other users.
type Service struct {
	appCtx   *app.AppContext
	likes    *repository.LikeRepository
	detector MatchDetector
}

// NewService creates the ledger. The repository is shared so the detector can
// read verdicts through the same store.
func NewService(appCtx *app.AppContext, likes *repository.LikeRepository, detector MatchDetector) *Service {
	return &Service{appCtx: appCtx, likes: likes, detector: detector}
}

// RecordVerdict stores swiper's verdict on target and reports whether it
// completed a mutual like.
//
// Behavior:
//   - Upserts target → liked in swiper's ledger; the last write wins.
//   - Drops the cached likes-received counter of target.
//   - liked = false → no match, the detector is not consulted.
//   - liked = true → runs the Match Detector and returns its result.
//
// A detector failure is returned as-is; the verdict write is kept.
func (s *Service) RecordVerdict(ctx context.Context, swiperID, targetID string, liked bool) (model.MatchResult, error) {
	s.appCtx.Logger.Debug("RecordVerdict called", "swiper", swiperID, "target", targetID, "liked", liked)

	if strings.TrimSpace(swiperID) == "" || strings.TrimSpace(targetID) == "" {
		return model.NoMatch, svcErr.Validation("target_user_id", "user ids must not be empty")
	}
	if swiperID == targetID {
		return model.NoMatch, svcErr.Validation("target_user_id", "cannot swipe on yourself")
	}

	if err := s.likes.Upsert(ctx, swiperID, targetID, liked); err != nil {
		s.appCtx.Logger.Error("Upsert like failed", "swiper", swiperID, "target", targetID, "err", err)
		return model.NoMatch, svcErr.Remote("record verdict", err)
	}

	if err := s.appCtx.RedisCache.Invalidate(ctx, s.appCtx.RedisCache.KeyForLikeCount(targetID)); err != nil {
		s.appCtx.Logger.Warn("like counter invalidation failed", "target", targetID, "err", err)
	}

	if !liked {
		return model.NoMatch, nil
	}
	return s.detector.Detect(ctx, swiperID, targetID)
}

// GetVerdict returns owner's verdict on target; Absent when never swiped.
func (s *Service) GetVerdict(ctx context.Context, ownerID, targetID string) (model.Verdict, error) {
	v, err := s.likes.Verdict(ctx, ownerID, targetID)
	if err != nil {
		s.appCtx.Logger.Error("Verdict lookup failed", "owner", ownerID, "target", targetID, "err", err)
		return model.VerdictAbsent, svcErr.Remote("get verdict", err)
	}
	return v, nil
}

// Ledger returns owner's full ledger as target → liked.
func (s *Service) Ledger(ctx context.Context, ownerID string) (map[string]bool, error) {
	ledger, err := s.likes.Ledger(ctx, ownerID)
	if err != nil {
		return nil, svcErr.Remote("read ledger", err)
	}
	return ledger, nil
}

// CountLikesReceived returns how many users currently like userID.
// Cache-first strategy:
//  1. Attempts to read from Redis (likes:count:userID).
//  2. On a miss, counts in the DB and caches the result with a 1h TTL,
//     unless a verdict invalidated the counter while the count was running.
func (s *Service) CountLikesReceived(ctx context.Context, userID string) (uint64, error) {
	s.appCtx.Logger.Debug("CountLikesReceived called", "user", userID)

	n, err := s.appCtx.RedisCache.GetLikeCount(ctx, userID)
	if err == nil && n >= 0 {
		return uint64(n), nil
	}
	if err != nil && !errors.Is(err, cache.ErrMiss) {
		s.appCtx.Logger.Warn("like counter read failed", "user", userID, "err", err)
	}

	version, verErr := s.appCtx.RedisCache.Version(ctx, s.appCtx.RedisCache.KeyForLikeCount(userID))

	count, err := s.likes.CountLikesReceived(ctx, userID)
	if err != nil {
		s.appCtx.Logger.Error("CountLikesReceived failed", "user", userID, "err", err)
		return 0, svcErr.Remote("count likes", err)
	}
	if verErr == nil {
		_, _ = s.appCtx.RedisCache.FillLikeCount(ctx, userID, version, count)
	}
	return uint64(count), nil
}
