// Package feed turns store writes into live query results.
//
// Writers publish a change on a topic after each successful write; each live
// feed subscribes to its topic and re-runs its query on every change,
// delivering the full current result set to its handler.
package feed

import (
	"context"
	"log/slog"
)

// Notifier carries "something under this topic changed" signals.
// Signals are coalesced: a slow subscriber sees at least one signal after
// the last publish, not one signal per publish.
type Notifier interface {
	Publish(ctx context.Context, topic string) error
	// Subscribe returns a channel of change signals and a release func.
	// The subscription is active when Subscribe returns.
	Subscribe(ctx context.Context, topic string) (<-chan struct{}, func(), error)
}

// Topic names for the three live queries.
func MatchesTopic(userID string) string { return "matches:" + userID }
func ThreadTopic(threadID string) string { return "thread:" + threadID }
func ChatsTopic(userID string) string    { return "chats:" + userID }

// PublishAll signals every topic. A failed publish is logged, not returned:
// the write it follows already succeeded.
func PublishAll(ctx context.Context, n Notifier, log *slog.Logger, topics ...string) {
	for _, topic := range topics {
		if err := n.Publish(ctx, topic); err != nil {
			log.Error("feed publish failed", "topic", topic, "err", err)
		}
	}
}
