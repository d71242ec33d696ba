// Package apptest builds an isolated AppContext for service tests:
// in-memory SQLite, miniredis and an in-process feed hub.
package apptest

import (
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"

	"github.com/oggyb/muzz-dating/internal/app"
	"github.com/oggyb/muzz-dating/internal/cache"
	"github.com/oggyb/muzz-dating/internal/config"
	"github.com/oggyb/muzz-dating/internal/db"
	"github.com/oggyb/muzz-dating/internal/feed"
	"github.com/oggyb/muzz-dating/internal/logger"
)

// Env is one test's wiring.
type Env struct {
	AppCtx *app.AppContext
	Redis  *miniredis.Miniredis
	Hub    *feed.Hub
}

// New wires a fresh AppContext. Each test gets its own DB and Redis.
func New(t *testing.T, mutate ...func(*config.Config)) *Env {
	t.Helper()

	database, err := db.OpenMemory(t.Name())
	require.NoError(t, err)
	sqlDB, err := database.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	cfg := config.New()
	cfg.Redis.Addr = mr.Addr()
	cfg.Feed.Notifier = "memory"
	cfg.Auth.JWTSecret = "test-secret-0123456789abcdef"
	cfg.Auth.BcryptCost = 4
	for _, m := range mutate {
		m(cfg)
	}

	redisCache := cache.NewRedisCache(cfg)
	t.Cleanup(func() { redisCache.Close() })

	hub := feed.NewHub()
	appCtx := app.New(cfg, database, redisCache, hub, logger.Discard())
	return &Env{AppCtx: appCtx, Redis: mr, Hub: hub}
}

// StepClock returns a clock that starts at start and advances by step on
// every call, so writes made in sequence get strictly increasing timestamps.
func StepClock(start time.Time, step time.Duration) func() time.Time {
	var mu sync.Mutex
	next := start
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		now := next
		next = next.Add(step)
		return now
	}
}

// Recorder collects feed deliveries so tests can wait for them.
type Recorder[T any] struct {
	mu    sync.Mutex
	snaps []feed.Snapshot[T]
	ch    chan struct{}
}

func NewRecorder[T any]() *Recorder[T] {
	return &Recorder[T]{ch: make(chan struct{}, 256)}
}

// Handle is a feed.Handler.
func (r *Recorder[T]) Handle(s feed.Snapshot[T]) {
	r.mu.Lock()
	r.snaps = append(r.snaps, s)
	r.mu.Unlock()
	r.ch <- struct{}{}
}

// Next waits for the next delivery and returns it.
func (r *Recorder[T]) Next(t *testing.T) feed.Snapshot[T] {
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

// Until waits for a delivery satisfying ok. Coalesced signals may skip
// intermediate states, so tests wait for the state they expect.
func (r *Recorder[T]) Until(t *testing.T, ok func(feed.Snapshot[T]) bool) feed.Snapshot[T] {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		r.mu.Lock()
		for _, s := range r.snaps {
			if ok(s) {
				r.mu.Unlock()
				return s
			}
		}
		r.mu.Unlock()
		select {
		case <-r.ch:
		case <-deadline:
			t.Fatal("timed out waiting for expected delivery")
		}
	}
}
