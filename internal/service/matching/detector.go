package matching

import (
	"context"
	"sync"

	"github.com/oggyb/muzz-dating/internal/app"
	svcErr "github.com/oggyb/muzz-dating/internal/errors"
	"github.com/oggyb/muzz-dating/internal/model"
)

// VerdictReader reads one entry of a user's ledger.
type VerdictReader interface {
	Verdict(ctx context.Context, ownerID, targetID string) (model.Verdict, error)
}

// Detector decides whether a like just recorded completes a mutual like.
//
// The ledger write that precedes Detect and the match insert it may perform
// are independent statements. Two users liking each other at the same moment
// can therefore both observe the other's like and create two matches. With
// Config.Match.Strict the detector serializes per pair and skips the insert
// when the pair already has a match; this only holds within one process.
type Detector struct {
	appCtx   *app.AppContext
	verdicts VerdictReader
	registry *Registry
	strict   bool
	locks    *pairLocks
}

func NewDetector(appCtx *app.AppContext, verdicts VerdictReader, registry *Registry) *Detector {
	return &Detector{
		appCtx:   appCtx,
		verdicts: verdicts,
		registry: registry,
		strict:   appCtx.Config.Match.Strict,
		locks:    newPairLocks(),
	}
}

// Detect runs after swiper liked target.
//
// Behavior:
//   - Reads target's verdict on swiper.
//   - Absent or passed → no match.
//   - Liked → creates a Match with sorted participants and matchedAt = now.
func (d *Detector) Detect(ctx context.Context, swiperID, targetID string) (model.MatchResult, error) {
	pair := model.SortedPair(swiperID, targetID)
	if d.strict {
		unlock := d.locks.lock(pair)
		defer unlock()
	}

	v, err := d.verdicts.Verdict(ctx, targetID, swiperID)
	if err != nil {
		d.appCtx.Logger.Error("reciprocal verdict lookup failed", "swiper", swiperID, "target", targetID, "err", err)
		return model.NoMatch, svcErr.Remote("read verdict", err)
	}
	if v != model.VerdictLiked {
		return model.NoMatch, nil
	}

	if d.strict {
		exists, err := d.registry.Exists(ctx, pair)
		if err != nil {
			return model.NoMatch, err
		}
		if exists {
			d.appCtx.Logger.Debug("match already exists", "participants", pair)
			return model.NoMatch, nil
		}
	}

	m, err := d.registry.Create(ctx, pair, d.appCtx.Now())
	if err != nil {
		return model.NoMatch, err
	}
	d.appCtx.Logger.Info("match created", "match", m.ID, "participants", m.Participants)
	return model.MatchResult{Matched: true, Match: &m}, nil
}

// pairLocks hands out one mutex per pair and forgets it once unused.
type pairLocks struct {
	mu    sync.Mutex
	locks map[[2]string]*pairLock
}

type pairLock struct {
	sync.Mutex
	refs int
}

func newPairLocks() *pairLocks {
	return &pairLocks{locks: make(map[[2]string]*pairLock)}
}

func (p *pairLocks) lock(pair [2]string) func() {
	p.mu.Lock()
	l, ok := p.locks[pair]
	if !ok {
		l = &pairLock{}
		p.locks[pair] = l
	}
	l.refs++
	p.mu.Unlock()

	l.Lock()
	return func() {
		l.Unlock()
		p.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(p.locks, pair)
		}
		p.mu.Unlock()
	}
}
