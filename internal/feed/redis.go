package feed

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"

	"github.com/redis/go-redis/v9"
)

const redisChannelPrefix = "feed:"

// RedisNotifier fans change signals out across server instances via
// Redis pub/sub.
type RedisNotifier struct {
	client *redis.Client
}

func NewRedisNotifier(client *redis.Client) *RedisNotifier {
	return &RedisNotifier{client: client}
}

func (n *RedisNotifier) Publish(ctx context.Context, topic string) error {
	return n.client.Publish(ctx, redisChannelPrefix+topic, "changed").Err()
}

// Subscribe does not survive a lost connection: publishes made while Redis
// was away are gone, so the signal channel is closed and the feed stops with
// ErrNotifierClosed.
func (n *RedisNotifier) Subscribe(ctx context.Context, topic string) (<-chan struct{}, func(), error) {
	ps := n.client.Subscribe(ctx, redisChannelPrefix+topic)
	// wait for the subscription confirmation so no publish is missed
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, nil, fmt.Errorf("subscribe %s: %w", topic, err)
	}

	out := make(chan struct{}, 1)
	stop := make(chan struct{})
	var once sync.Once
	cleanup := func() {
		once.Do(func() {
			close(stop)
			_ = ps.Close()
		})
	}

	go func() {
		for {
			msg, err := ps.Receive(ctx)
			if err != nil {
				select {
				case <-stop:
					return
				default:
				}
				if ctx.Err() != nil {
					cleanup()
					return
				}
				var netErr net.Error
				if errors.As(err, &netErr) && netErr.Timeout() {
					continue
				}
				cleanup()
				close(out)
				return
			}
			if _, ok := msg.(*redis.Message); !ok {
				continue
			}
			select {
			case out <- struct{}{}:
			default:
			}
		}
	}()

	return out, cleanup, nil
}
