package feed_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oggyb/muzz-dating/internal/feed"
	"github.com/oggyb/muzz-dating/internal/logger"
	"github.com/oggyb/muzz-dating/internal/model"
)

// recorder collects deliveries from a feed handler.
type recorder[T any] struct {
	mu    sync.Mutex
	snaps []feed.Snapshot[T]
	ch    chan struct{}
}

func newRecorder[T any]() *recorder[T] {
	return &recorder[T]{ch: make(chan struct{}, 64)}
}

func (r *recorder[T]) handle(s feed.Snapshot[T]) {
	r.mu.Lock()
	r.snaps = append(r.snaps, s)
	r.mu.Unlock()
	r.ch <- struct{}{}
}

func (r *recorder[T]) next(t *testing.T) feed.Snapshot[T] {
	t.Helper()
	select {
	case <-r.ch:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for delivery")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snaps[len(r.snaps)-1]
}

func (r *recorder[T]) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.snaps)
}

// store is a tiny mutable result set guarded by a mutex.
type store struct {
	mu    sync.Mutex
	items []string
}

func (s *store) add(v string) {
	s.mu.Lock()
	s.items = append(s.items, v)
	s.mu.Unlock()
}

func (s *store) query(context.Context) (feed.Snapshot[string], error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return feed.Snapshot[string]{Items: append([]string(nil), s.items...)}, nil
}

func notifiers(t *testing.T) map[string]feed.Notifier {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(func() { mr.Close() })
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return map[string]feed.Notifier{
		"hub":   feed.NewHub(),
		"redis": feed.NewRedisNotifier(client),
	}
}

func TestWatch_RedeliversFullSetOnChange(t *testing.T) {
	for name, n := range notifiers(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s := &store{}
			rec := newRecorder[string]()

			sub, err := feed.Watch(ctx, n, "thread:a_b", s.query, rec.handle, feed.WithLogger(logger.Discard()))
			require.NoError(t, err)
			defer sub.Cancel()

			assert.Empty(t, rec.next(t).Items)

			s.add("m1")
			require.NoError(t, n.Publish(ctx, "thread:a_b"))
			assert.Equal(t, []string{"m1"}, rec.next(t).Items)

			s.add("m2")
			require.NoError(t, n.Publish(ctx, "thread:a_b"))
			assert.Equal(t, []string{"m1", "m2"}, rec.next(t).Items)
		})
	}
}

func TestWatch_CancelStopsDelivery(t *testing.T) {
	for name, n := range notifiers(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s := &store{}
			rec := newRecorder[string]()

			sub, err := feed.Watch(ctx, n, "matches:a", s.query, rec.handle, feed.WithLogger(logger.Discard()))
			require.NoError(t, err)
			rec.next(t)

			sub.Cancel()
			sub.Wait()
			s.add("late")
			require.NoError(t, n.Publish(ctx, "matches:a"))
			time.Sleep(50 * time.Millisecond)
			assert.Equal(t, 1, rec.count())

			// re-subscribing after cancel is legal
			again, err := feed.Watch(ctx, n, "matches:a", s.query, rec.handle, feed.WithLogger(logger.Discard()))
			require.NoError(t, err)
			defer again.Cancel()
			assert.Equal(t, []string{"late"}, rec.next(t).Items)
		})
	}
}

func TestWatch_ReportsErrorOnceAndStops(t *testing.T) {
	ctx := context.Background()
	hub := feed.NewHub()
	boom := errors.New("permission denied")

	var calls, errs atomic.Int32
	q := func(context.Context) (feed.Snapshot[string], error) {
		if calls.Add(1) > 1 {
			return feed.Snapshot[string]{}, boom
		}
		return feed.Snapshot[string]{}, nil
	}
	rec := newRecorder[string]()

	sub, err := feed.Watch(ctx, hub, "chats:a", q, rec.handle,
		feed.WithLogger(logger.Discard()),
		feed.WithErrorHandler(func(error) { errs.Add(1) }),
	)
	require.NoError(t, err)
	rec.next(t)

	require.NoError(t, hub.Publish(ctx, "chats:a"))
	select {
	case <-sub.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("feed did not stop after error")
	}

	assert.ErrorIs(t, sub.Err(), boom)
	assert.Equal(t, int32(1), errs.Load())
	assert.Equal(t, 0, hub.Subscribers("chats:a"))

	// further changes are ignored
	require.NoError(t, hub.Publish(ctx, "chats:a"))
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, int32(1), errs.Load())
}

func TestWatch_RedisOutageStopsFeedOnce(t *testing.T) {
	ctx := context.Background()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { client.Close() })

	s := &store{}
	rec := newRecorder[string]()
	var errs atomic.Int32
	sub, err := feed.Watch(ctx, feed.NewRedisNotifier(client), "matches:a", s.query, rec.handle,
		feed.WithLogger(logger.Discard()),
		feed.WithErrorHandler(func(error) { errs.Add(1) }),
	)
	require.NoError(t, err)
	defer sub.Cancel()
	rec.next(t)

	mr.Close()
	select {
	case <-sub.Done():
	case <-time.After(3 * time.Second):
		t.Fatal("feed kept running after redis went away")
	}

	assert.ErrorIs(t, sub.Err(), feed.ErrNotifierClosed)
	assert.Equal(t, int32(1), errs.Load())
	assert.Equal(t, 1, rec.count())
}

func TestWatch_CancelDuringQueryDropsResult(t *testing.T) {
	ctx := context.Background()
	hub := feed.NewHub()

	var calls atomic.Int32
	entered := make(chan struct{})
	release := make(chan struct{})
	q := func(context.Context) (feed.Snapshot[string], error) {
		if calls.Add(1) == 2 {
			close(entered)
			<-release
		}
		return feed.Snapshot[string]{Items: []string{"x"}}, nil
	}
	rec := newRecorder[string]()

	sub, err := feed.Watch(ctx, hub, "thread:a_b", q, rec.handle, feed.WithLogger(logger.Discard()))
	require.NoError(t, err)
	rec.next(t)

	require.NoError(t, hub.Publish(ctx, "thread:a_b"))
	<-entered
	sub.Cancel()
	close(release)
	sub.Wait()

	assert.Equal(t, 1, rec.count())
}

func TestWatch_CancelFromHandler(t *testing.T) {
	ctx := context.Background()
	hub := feed.NewHub()
	s := &store{}

	var sub *feed.Subscription
	ready := make(chan struct{})
	var calls atomic.Int32
	h := func(feed.Snapshot[string]) {
		calls.Add(1)
		<-ready
		sub.Cancel()
	}

	sub, err := feed.Watch(ctx, hub, "chats:a", s.query, h, feed.WithLogger(logger.Discard()))
	require.NoError(t, err)
	close(ready)

	select {
	case <-sub.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("cancel from inside the handler did not stop the feed")
	}
	assert.Equal(t, int32(1), calls.Load())
}

func TestFromRows_KeepsDiscarded(t *testing.T) {
	list := func(context.Context) ([]string, error) { return []string{"ok", "", "fine"}, nil }
	parse := func(s string) (string, error) {
		if s == "" {
			return "", &model.ParseError{Kind: "test", Reason: "empty"}
		}
		return s, nil
	}

	snap, err := feed.FromRows(list, parse)(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"ok", "fine"}, snap.Items)
	require.Len(t, snap.Discarded, 1)
	assert.Equal(t, "empty", snap.Discarded[0].Reason)
}

func TestHub_ReleaseUnregisters(t *testing.T) {
	hub := feed.NewHub()
	_, release, err := hub.Subscribe(context.Background(), "t")
	require.NoError(t, err)
	assert.Equal(t, 1, hub.Subscribers("t"))
	release()
	release()
	assert.Equal(t, 0, hub.Subscribers("t"))
}
