package feed

import (
	"context"
	"sync"
)

// Hub is the in-process Notifier used for single-node runs and tests.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[string]map[int64]*hubSubscriber
	nextID      int64
}

type hubSubscriber struct {
	id     int64
	stream chan struct{}
}

func NewHub() *Hub {
	return &Hub{
		subscribers: make(map[string]map[int64]*hubSubscriber),
	}
}

func (h *Hub) Subscribe(ctx context.Context, topic string) (<-chan struct{}, func(), error) {
	subscriber := &hubSubscriber{
		stream: make(chan struct{}, 1),
	}
	h.register(topic, subscriber)

	var once sync.Once
	cleanup := func() {
		once.Do(func() { h.unregister(topic, subscriber.id) })
	}
	go func() {
		<-ctx.Done()
		cleanup()
	}()
	return subscriber.stream, cleanup, nil
}

func (h *Hub) Publish(_ context.Context, topic string) error {
	h.mu.RLock()
	subscribers := h.subscribers[topic]
	copies := make([]*hubSubscriber, 0, len(subscribers))
	for _, subscriber := range subscribers {
		copies = append(copies, subscriber)
	}
	h.mu.RUnlock()

	for _, subscriber := range copies {
		select {
		case subscriber.stream <- struct{}{}:
		default:
			// a signal is already pending
		}
	}
	return nil
}

// Subscribers reports how many active subscriptions a topic has.
func (h *Hub) Subscribers(topic string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers[topic])
}

func (h *Hub) register(topic string, subscriber *hubSubscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.nextID++
	subscriber.id = h.nextID
	if _, ok := h.subscribers[topic]; !ok {
		h.subscribers[topic] = make(map[int64]*hubSubscriber)
	}
	h.subscribers[topic][subscriber.id] = subscriber
}

func (h *Hub) unregister(topic string, id int64) {
	h.mu.Lock()
	subscribers := h.subscribers[topic]
	if subscribers != nil {
		delete(subscribers, id)
		if len(subscribers) == 0 {
			delete(h.subscribers, topic)
		}
	}
	h.mu.Unlock()
}
