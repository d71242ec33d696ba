package matching

import (
	"context"
	"time"

	"github.com/oggyb/muzz-dating/internal/app"
	"github.com/oggyb/muzz-dating/internal/db"
	svcErr "github.com/oggyb/muzz-dating/internal/errors"
	"github.com/oggyb/muzz-dating/internal/feed"
	"github.com/oggyb/muzz-dating/internal/model"
	"github.com/oggyb/muzz-dating/internal/repository"
)

// Registry is the durable set of matches and their live feeds.
type Registry struct {
	appCtx  *app.AppContext
	matches *repository.MatchRepository
}

func NewRegistry(appCtx *app.AppContext) *Registry {
	return &Registry{
		appCtx:  appCtx,
		matches: repository.NewMatchRepository(appCtx.DB),
	}
}

// Create stores a new match with a generated id. There is no uniqueness check
// on the pair. Both participants' match feeds are signalled.
func (r *Registry) Create(ctx context.Context, participants [2]string, matchedAt time.Time) (model.Match, error) {
	r.appCtx.Logger.Debug("CreateMatch called", "participants", participants)

	pair := model.SortedPair(participants[0], participants[1])
	row, err := r.matches.Create(ctx, pair, matchedAt)
	if err != nil {
		r.appCtx.Logger.Error("Create match failed", "participants", pair, "err", err)
		return model.Match{}, svcErr.Remote("create match", err)
	}
	feed.PublishAll(ctx, r.appCtx.Notifier, r.appCtx.Logger,
		feed.MatchesTopic(pair[0]), feed.MatchesTopic(pair[1]))

	return model.ParseMatch(row)
}

// ListForUser returns the user's matches, newest first, plus any rows that
// could not be parsed.
func (r *Registry) ListForUser(ctx context.Context, userID string) ([]model.Match, []*model.ParseError, error) {
	snap, err := r.query(userID)(ctx)
	if err != nil {
		return nil, nil, err
	}
	return snap.Items, snap.Discarded, nil
}

// Exists reports whether the pair already has a match.
func (r *Registry) Exists(ctx context.Context, participants [2]string) (bool, error) {
	n, err := r.matches.CountForPair(ctx, model.SortedPair(participants[0], participants[1]))
	if err != nil {
		return false, svcErr.Remote("check match", err)
	}
	return n > 0, nil
}

// LiveFeedForUser delivers the user's full match list now and after every
// change, until the subscription is cancelled or a query fails.
func (r *Registry) LiveFeedForUser(ctx context.Context, userID string, h feed.Handler[model.Match], opts ...feed.Option) (*feed.Subscription, error) {
	opts = append([]feed.Option{feed.WithLogger(r.appCtx.Logger)}, opts...)
	return feed.Watch(ctx, r.appCtx.Notifier, feed.MatchesTopic(userID), r.query(userID), h, opts...)
}

func (r *Registry) query(userID string) feed.Query[model.Match] {
	q := feed.FromRows(func(ctx context.Context) ([]db.Match, error) {
		return r.matches.ListForUser(ctx, userID)
	}, model.ParseMatch)
	return func(ctx context.Context) (feed.Snapshot[model.Match], error) {
		snap, err := q(ctx)
		if err != nil {
			r.appCtx.Logger.Error("ListForUser failed", "user", userID, "err", err)
			return snap, svcErr.Remote("list matches", err)
		}
		return snap, nil
	}
}
