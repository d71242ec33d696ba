package client

import (
	"context"
	"errors"
	"io"
	"sync"
	"sync/atomic"

	"google.golang.org/grpc"

	svcErr "github.com/oggyb/muzz-dating/internal/errors"
	"github.com/oggyb/muzz-dating/internal/feed"
	"github.com/oggyb/muzz-dating/internal/model"
	pb "github.com/oggyb/muzz-dating/internal/proto/dating"
)

// Watch is a running server-streamed live feed.
type Watch struct {
	cancel   context.CancelFunc
	stopped  atomic.Bool
	done     chan struct{}
	errOnce  sync.Once
	errValue atomic.Value
}

// Cancel stops delivery. No handler call starts after Cancel returns when
// Cancel runs on the session dispatcher. Safe to call more than once.
func (w *Watch) Cancel() {
	w.stopped.Store(true)
	w.cancel()
}

// Done is closed once the stream has ended.
func (w *Watch) Done() <-chan struct{} { return w.done }

// Err returns the error that ended the feed, if any.
func (w *Watch) Err() error {
	if v, ok := w.errValue.Load().(error); ok {
		return v
	}
	return nil
}

// watchStream opens a server stream and delivers every snapshot to h on the
// session dispatcher. The first stream error goes to onErr, once, and the
// feed stops.
func watchStream[W any, T any](
	s *Session,
	ctx context.Context,
	open func(ctx context.Context) (grpc.ServerStreamingClient[W], error),
	convert func(*W) feed.Snapshot[T],
	h feed.Handler[T],
	onErr func(error),
) (*Watch, error) {
	ctx, cancel := context.WithCancel(s.authed(ctx))
	stream, err := open(ctx)
	if err != nil {
		cancel()
		return nil, svcErr.FromStatus(err)
	}

	w := &Watch{cancel: cancel, done: make(chan struct{})}
	go func() {
		defer close(w.done)
		defer cancel()
		for {
			msg, err := stream.Recv()
			if err != nil {
				if w.stopped.Load() || errors.Is(err, io.EOF) {
					return
				}
				w.fail(s, svcErr.FromStatus(err), onErr)
				return
			}
			snap := convert(msg)
			for _, d := range snap.Discarded {
				s.log.Warn("discarded record", "kind", d.Kind, "id", d.ID, "reason", d.Reason)
			}
			_ = s.disp.Post(func() {
				if !w.stopped.Load() {
					h(snap)
				}
			})
		}
	}()
	return w, nil
}

func (w *Watch) fail(s *Session, err error, onErr func(error)) {
	w.errOnce.Do(func() {
		w.errValue.Store(err)
		s.log.Error("live feed stopped", "err", err)
		if onErr == nil {
			return
		}
		_ = s.disp.Post(func() {
			if !w.stopped.Load() {
				onErr(err)
			}
		})
	})
}

// WatchThread streams the thread with peer, oldest message first.
func (s *Session) WatchThread(ctx context.Context, peerID string, h feed.Handler[model.Message], onErr func(error)) (*Watch, error) {
	return watchStream(s, ctx,
		func(ctx context.Context) (grpc.ServerStreamingClient[pb.MessageList], error) {
			return s.chats.WatchThread(ctx, &pb.WatchThreadRequest{PeerUserId: peerID})
		},
		func(l *pb.MessageList) feed.Snapshot[model.Message] {
			return feed.Snapshot[model.Message]{
				Items:     pb.Convert(l.Messages, (*pb.Message).Model),
				Discarded: pb.Convert(l.Discarded, (*pb.Discarded).Model),
			}
		},
		h, onErr)
}

// WatchThreads streams the signed-in user's thread summaries, most recent first.
func (s *Session) WatchThreads(ctx context.Context, h feed.Handler[model.ThreadSummary], onErr func(error)) (*Watch, error) {
	return watchStream(s, ctx,
		func(ctx context.Context) (grpc.ServerStreamingClient[pb.ThreadList], error) {
			return s.chats.WatchThreads(ctx, &pb.WatchThreadsRequest{})
		},
		func(l *pb.ThreadList) feed.Snapshot[model.ThreadSummary] {
			return feed.Snapshot[model.ThreadSummary]{
				Items:     pb.Convert(l.Threads, (*pb.ThreadSummary).Model),
				Discarded: pb.Convert(l.Discarded, (*pb.Discarded).Model),
			}
		},
		h, onErr)
}

func matchSnapshot(l *pb.MatchList) feed.Snapshot[model.Match] {
	return feed.Snapshot[model.Match]{
		Items:     pb.Convert(l.Matches, (*pb.Match).Model),
		Discarded: pb.Convert(l.Discarded, (*pb.Discarded).Model),
	}
}
