package chat

import (
	"context"
	"strings"

	"github.com/oggyb/muzz-dating/internal/app"
	"github.com/oggyb/muzz-dating/internal/db"
	svcErr "github.com/oggyb/muzz-dating/internal/errors"
	"github.com/oggyb/muzz-dating/internal/feed"
	"github.com/oggyb/muzz-dating/internal/model"
	"github.com/oggyb/muzz-dating/internal/repository"
)

// MessageLog stores thread messages and keeps one summary per thread.
type MessageLog struct {
	appCtx *app.AppContext
	chats  *repository.ChatRepository
}

func NewMessageLog(appCtx *app.AppContext) *MessageLog {
	return &MessageLog{
		appCtx: appCtx,
		chats:  repository.NewChatRepository(appCtx.DB),
	}
}

// Append adds a message to threadID and refreshes the thread summary.
//
// Behavior:
//   - text is trimmed; blank text is a ValidationError and nothing is written.
//   - threadID must be the thread of sender and receiver.
//   - The message gets a generated id and timestamp = now.
//   - The summary is merged afterwards as a separate write: participants
//     [sender, receiver], lastMessage, lastMessageTimestamp. If that write
//     fails the message stays and the error is returned.
func (l *MessageLog) Append(ctx context.Context, threadID, senderID, receiverID, text string) (model.Message, error) {
	l.appCtx.Logger.Debug("AppendMessage called", "thread", threadID, "sender", senderID)

	text = strings.TrimSpace(text)
	if text == "" {
		return model.Message{}, svcErr.Validation("text", "message text must not be empty")
	}
	want, err := ThreadID(senderID, receiverID)
	if err != nil {
		return model.Message{}, err
	}
	if threadID != want {
		return model.Message{}, svcErr.Validation("thread_id", "thread does not belong to sender and receiver")
	}

	row, err := l.chats.AppendMessage(ctx, db.Message{
		ThreadID:   threadID,
		SenderID:   senderID,
		ReceiverID: receiverID,
		Text:       text,
		Timestamp:  l.appCtx.Now(),
	})
	if err != nil {
		l.appCtx.Logger.Error("AppendMessage failed", "thread", threadID, "err", err)
		return model.Message{}, svcErr.Remote("append message", err)
	}
	feed.PublishAll(ctx, l.appCtx.Notifier, l.appCtx.Logger, feed.ThreadTopic(threadID))

	if err := l.chats.MergeSummary(ctx, db.Chat{
		ID:                   threadID,
		ParticipantA:         senderID,
		ParticipantB:         receiverID,
		LastMessage:          row.Text,
		LastMessageTimestamp: row.Timestamp,
	}); err != nil {
		l.appCtx.Logger.Error("MergeSummary failed", "thread", threadID, "err", err)
		return model.Message{}, svcErr.Remote("update thread summary", err)
	}
	feed.PublishAll(ctx, l.appCtx.Notifier, l.appCtx.Logger,
		feed.ChatsTopic(senderID), feed.ChatsTopic(receiverID))

	return model.ParseMessage(row)
}

// ListMessages returns the thread's messages in ascending timestamp order.
func (l *MessageLog) ListMessages(ctx context.Context, threadID string) ([]model.Message, []*model.ParseError, error) {
	snap, err := l.messagesQuery(threadID)(ctx)
	if err != nil {
		return nil, nil, err
	}
	return snap.Items, snap.Discarded, nil
}

// Summaries returns the summaries of threads containing userID, most recent first.
func (l *MessageLog) Summaries(ctx context.Context, userID string) ([]model.ThreadSummary, []*model.ParseError, error) {
	snap, err := l.summariesQuery(userID)(ctx)
	if err != nil {
		return nil, nil, err
	}
	return snap.Items, snap.Discarded, nil
}

// LiveFeedForThread delivers the full ascending message list of threadID now
// and after every new message.
func (l *MessageLog) LiveFeedForThread(ctx context.Context, threadID string, h feed.Handler[model.Message], opts ...feed.Option) (*feed.Subscription, error) {
	opts = append([]feed.Option{feed.WithLogger(l.appCtx.Logger)}, opts...)
	return feed.Watch(ctx, l.appCtx.Notifier, feed.ThreadTopic(threadID), l.messagesQuery(threadID), h, opts...)
}

// LiveThreadSummaries delivers userID's thread summaries, most recent first,
// now and after every message sent or received by the user.
func (l *MessageLog) LiveThreadSummaries(ctx context.Context, userID string, h feed.Handler[model.ThreadSummary], opts ...feed.Option) (*feed.Subscription, error) {
	opts = append([]feed.Option{feed.WithLogger(l.appCtx.Logger)}, opts...)
	return feed.Watch(ctx, l.appCtx.Notifier, feed.ChatsTopic(userID), l.summariesQuery(userID), h, opts...)
}

func (l *MessageLog) messagesQuery(threadID string) feed.Query[model.Message] {
	return remote(l, "list messages", feed.FromRows(func(ctx context.Context) ([]db.Message, error) {
		return l.chats.ListMessages(ctx, threadID)
	}, model.ParseMessage))
}

func (l *MessageLog) summariesQuery(userID string) feed.Query[model.ThreadSummary] {
	return remote(l, "list threads", feed.FromRows(func(ctx context.Context) ([]db.Chat, error) {
		return l.chats.ListSummaries(ctx, userID)
	}, model.ParseThreadSummary))
}

// remote classifies store failures of q as RemoteOperationErrors.
func remote[T any](l *MessageLog, op string, q feed.Query[T]) feed.Query[T] {
	return func(ctx context.Context) (feed.Snapshot[T], error) {
		snap, err := q(ctx)
		if err != nil {
			l.appCtx.Logger.Error("query failed", "op", op, "err", err)
			return snap, svcErr.Remote(op, err)
		}
		return snap, nil
	}
}
