package chat

import (
	"context"

	"google.golang.org/grpc"

	"github.com/oggyb/muzz-dating/internal/auth"
	svcErr "github.com/oggyb/muzz-dating/internal/errors"
	"github.com/oggyb/muzz-dating/internal/feed"
	"github.com/oggyb/muzz-dating/internal/model"
	pb "github.com/oggyb/muzz-dating/internal/proto/dating"
)

// Handler implements the Chats gRPC API. The caller is always the sender.
type Handler struct {
	log *MessageLog
}

func NewHandler(log *MessageLog) *Handler {
	return &Handler{log: log}
}

func (h *Handler) SendMessage(ctx context.Context, req *pb.SendMessageRequest) (*pb.Message, error) {
	caller, threadID, err := resolve(ctx, req.ReceiverUserId)
	if err != nil {
		return nil, err
	}
	msg, err := h.log.Append(ctx, threadID, caller, req.ReceiverUserId, req.Text)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	return pb.FromMessage(msg), nil
}

func (h *Handler) ListMessages(ctx context.Context, req *pb.ListMessagesRequest) (*pb.MessageList, error) {
	_, threadID, err := resolve(ctx, req.PeerUserId)
	if err != nil {
		return nil, err
	}
	msgs, discarded, err := h.log.ListMessages(ctx, threadID)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	return toMessageList(threadID, feed.Snapshot[model.Message]{Items: msgs, Discarded: discarded}), nil
}

func (h *Handler) ListThreads(ctx context.Context, _ *pb.ListThreadsRequest) (*pb.ThreadList, error) {
	caller, ok := auth.UserIDFromContext(ctx)
	if !ok {
		return nil, svcErr.Map(svcErr.Unauthenticated("no authenticated caller"))
	}
	threads, discarded, err := h.log.Summaries(ctx, caller)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	return toThreadList(feed.Snapshot[model.ThreadSummary]{Items: threads, Discarded: discarded}), nil
}

// WatchThread streams the full message list of the caller's thread with the peer.
func (h *Handler) WatchThread(req *pb.WatchThreadRequest, stream grpc.ServerStreamingServer[pb.MessageList]) error {
	ctx := stream.Context()
	_, threadID, err := resolve(ctx, req.PeerUserId)
	if err != nil {
		return err
	}
	start := func(ctx context.Context, fn feed.Handler[model.Message], opts ...feed.Option) (*feed.Subscription, error) {
		return h.log.LiveFeedForThread(ctx, threadID, fn, opts...)
	}
	return svcErr.Map(feed.Pump(ctx, start, func(snap feed.Snapshot[model.Message]) error {
		return stream.Send(toMessageList(threadID, snap))
	}))
}

// WatchThreads streams the caller's thread summaries.
func (h *Handler) WatchThreads(_ *pb.WatchThreadsRequest, stream grpc.ServerStreamingServer[pb.ThreadList]) error {
	ctx := stream.Context()
	caller, ok := auth.UserIDFromContext(ctx)
	if !ok {
		return svcErr.Map(svcErr.Unauthenticated("no authenticated caller"))
	}
	start := func(ctx context.Context, fn feed.Handler[model.ThreadSummary], opts ...feed.Option) (*feed.Subscription, error) {
		return h.log.LiveThreadSummaries(ctx, caller, fn, opts...)
	}
	return svcErr.Map(feed.Pump(ctx, start, func(snap feed.Snapshot[model.ThreadSummary]) error {
		return stream.Send(toThreadList(snap))
	}))
}

// resolve returns the caller and the id of their thread with peer.
func resolve(ctx context.Context, peer string) (string, string, error) {
	caller, ok := auth.UserIDFromContext(ctx)
	if !ok {
		return "", "", svcErr.Map(svcErr.Unauthenticated("no authenticated caller"))
	}
	threadID, err := ThreadID(caller, peer)
	if err != nil {
		return "", "", svcErr.Map(err)
	}
	return caller, threadID, nil
}

func toMessageList(threadID string, snap feed.Snapshot[model.Message]) *pb.MessageList {
	return &pb.MessageList{
		ThreadId:  threadID,
		Messages:  pb.Convert(snap.Items, pb.FromMessage),
		Discarded: pb.FromParseErrors(snap.Discarded),
	}
}

func toThreadList(snap feed.Snapshot[model.ThreadSummary]) *pb.ThreadList {
	return &pb.ThreadList{
		Threads:   pb.Convert(snap.Items, pb.FromThreadSummary),
		Discarded: pb.FromParseErrors(snap.Discarded),
	}
}
