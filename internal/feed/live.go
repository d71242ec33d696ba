package feed

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/oggyb/muzz-dating/internal/model"
)

// ErrNotifierClosed stops a feed whose change stream went away.
var ErrNotifierClosed = errors.New("feed: change stream closed")

// Snapshot is one full delivery of a live query.
type Snapshot[T any] struct {
	Items     []T
	Discarded []*model.ParseError
}

// Query produces the current result set of a live feed.
type Query[T any] func(ctx context.Context) (Snapshot[T], error)

// Handler receives every delivery, in order, from a single goroutine.
type Handler[T any] func(Snapshot[T])

type options struct {
	onError func(error)
	log     *slog.Logger
}

type Option func(*options)

// WithErrorHandler is called at most once, with the error that stopped the feed.
func WithErrorHandler(fn func(error)) Option {
	return func(o *options) { o.onError = fn }
}

func WithLogger(log *slog.Logger) Option {
	return func(o *options) { o.log = log }
}

// Subscription is a running live feed.
type Subscription struct {
	cancel context.CancelFunc
	done   chan struct{}

	// deliverMu covers the stopped check and the handler call as one step.
	deliverMu sync.Mutex
	stopped   atomic.Bool
	inHandler atomic.Bool

	mu  sync.Mutex
	err error
}

// Cancel stops further deliveries and releases the notifier subscription.
// No handler call starts after Cancel returns. Safe to call more than once
// and from inside the handler.
func (s *Subscription) Cancel() {
	s.stopped.Store(true)
	s.cancel()
	if s.inHandler.Load() {
		return
	}
	// wait out a delivery that passed its check but has not called h yet
	s.deliverMu.Lock()
	s.deliverMu.Unlock()
}

// Done is closed once the feed loop has exited.
func (s *Subscription) Done() <-chan struct{} { return s.done }

// Wait blocks until the feed loop has exited.
func (s *Subscription) Wait() { <-s.done }

// Err returns the error that stopped the feed, if any.
func (s *Subscription) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Watch starts a live feed: it subscribes to topic, delivers the initial
// result of q, and re-delivers the full result after every change signal.
// The first query error is reported once and the feed stops; reconnecting
// is the caller's job.
func Watch[T any](ctx context.Context, n Notifier, topic string, q Query[T], h Handler[T], opts ...Option) (*Subscription, error) {
	o := options{log: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}

	ctx, cancel := context.WithCancel(ctx)
	changes, release, err := n.Subscribe(ctx, topic)
	if err != nil {
		cancel()
		return nil, err
	}

	sub := &Subscription{cancel: cancel, done: make(chan struct{})}
	log := o.log.With("topic", topic)

	go func() {
		defer close(sub.done)
		defer release()
		defer cancel()

		if !refresh(ctx, sub, q, h, o, log) {
			return
		}
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-changes:
				if !ok {
					sub.fail(ErrNotifierClosed, o, log)
					return
				}
				if !refresh(ctx, sub, q, h, o, log) {
					return
				}
			}
		}
	}()

	return sub, nil
}

// refresh runs q once and delivers the result. It returns false when the
// feed must stop.
func refresh[T any](ctx context.Context, s *Subscription, q Query[T], h Handler[T], o options, log *slog.Logger) bool {
	snap, err := q(ctx)
	if ctx.Err() != nil {
		return false
	}
	if err != nil {
		s.fail(err, o, log)
		return false
	}
	for _, d := range snap.Discarded {
		log.Warn("discarded record", "kind", d.Kind, "id", d.ID, "reason", d.Reason)
	}
	return deliver(s, h, snap)
}

func deliver[T any](s *Subscription, h Handler[T], snap Snapshot[T]) bool {
	s.deliverMu.Lock()
	defer s.deliverMu.Unlock()
	if s.stopped.Load() {
		return false
	}
	s.inHandler.Store(true)
	defer s.inHandler.Store(false)
	h(snap)
	return true
}

func (s *Subscription) fail(err error, o options, log *slog.Logger) {
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()

	log.Error("live feed stopped", "err", err)
	if o.onError != nil {
		o.onError(err)
	}
}

// FromRows builds a Query that lists stored rows and parses them into
// entities, keeping rejected rows in Snapshot.Discarded.
func FromRows[R any, T any](list func(ctx context.Context) ([]R, error), parse func(R) (T, error)) Query[T] {
	return func(ctx context.Context) (Snapshot[T], error) {
		rows, err := list(ctx)
		if err != nil {
			return Snapshot[T]{}, err
		}
		items, discarded := model.ParseAll(rows, parse)
		return Snapshot[T]{Items: items, Discarded: discarded}, nil
	}
}

// Starter opens a live feed delivering to h.
type Starter[T any] func(ctx context.Context, h Handler[T], opts ...Option) (*Subscription, error)

// Pump runs a feed until ctx ends and passes every snapshot to send.
// It returns the error that stopped the feed, the first send error, or nil
// when ctx ended first.
func Pump[T any](ctx context.Context, start Starter[T], send func(Snapshot[T]) error) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var sendErr error
	sub, err := start(ctx, func(s Snapshot[T]) {
		if sendErr != nil {
			return
		}
		if err := send(s); err != nil {
			sendErr = err
			cancel()
		}
	})
	if err != nil {
		return err
	}
	sub.Wait()
	if sendErr != nil {
		return sendErr
	}
	return sub.Err()
}
