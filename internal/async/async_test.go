package async_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oggyb/muzz-dating/internal/async"
)

func TestDispatcher_RunsInPostOrderOnOneGoroutine(t *testing.T) {
	d := async.NewDispatcher()
	defer d.Close()

	var (
		mu    sync.Mutex
		order []int
		busy  bool
		clash bool
	)
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		i := i
		require.NoError(t, d.Post(func() {
			defer wg.Done()
			mu.Lock()
			if busy {
				clash = true
			}
			busy = true
			order = append(order, i)
			mu.Unlock()

			mu.Lock()
			busy = false
			mu.Unlock()
		}))
	}
	wg.Wait()

	assert.False(t, clash)
	require.Len(t, order, 100)
	for i, v := range order {
		assert.Equal(t, i, v)
	}
}

func TestDispatcher_PostAfterClose(t *testing.T) {
	d := async.NewDispatcher()
	ran := false
	require.NoError(t, d.Post(func() { ran = true }))
	d.Close()
	assert.True(t, ran)
	assert.ErrorIs(t, d.Post(func() {}), async.ErrDispatcherClosed)
	d.Close()
}

func TestDispatcher_Sync(t *testing.T) {
	d := async.NewDispatcher()
	defer d.Close()

	v := 0
	require.NoError(t, d.Sync(context.Background(), func() { v = 42 }))
	assert.Equal(t, 42, v)
}

func TestFuture_AwaitAndThen(t *testing.T) {
	d := async.NewDispatcher()
	defer d.Close()

	release := make(chan struct{})
	f := async.Go(context.Background(), func(context.Context) (string, error) {
		<-release
		return "match", nil
	})

	got := make(chan string, 2)
	f.Then(d, func(v string, err error) {
		assert.NoError(t, err)
		got <- v
	})
	close(release)

	v, err := f.Await(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "match", v)

	// Then after completion still delivers
	f.Then(d, func(v string, err error) { got <- v + "!" })

	assert.ElementsMatch(t, []string{"match", "match!"}, []string{<-got, <-got})
}

func TestFuture_AwaitHonoursContext(t *testing.T) {
	f := async.Go(context.Background(), func(ctx context.Context) (int, error) {
		time.Sleep(time.Second)
		return 1, nil
	})
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := f.Await(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestResolved(t *testing.T) {
	boom := errors.New("boom")
	_, err := async.Resolved(0, boom).Await(context.Background())
	assert.ErrorIs(t, err, boom)
}
