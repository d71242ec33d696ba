// Package async provides the future and dispatch-queue primitives the client
// session uses to run remote calls off the caller's goroutine and deliver
// every completion on one owning event loop.
package async

import (
	"context"
	"errors"
	"sync"
)

// ErrDispatcherClosed is returned by Post after Close.
var ErrDispatcherClosed = errors.New("async: dispatcher closed")

// Dispatcher is a single-threaded event loop. Functions posted to it run one
// at a time, in post order, on the loop goroutine.
type Dispatcher struct {
	mu     sync.Mutex
	queue  []func()
	wake   chan struct{}
	closed bool
	done   chan struct{}
}

// NewDispatcher starts the loop. Close releases it.
func NewDispatcher() *Dispatcher {
	d := &Dispatcher{
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}
	go d.loop()
	return d
}

// Post enqueues fn. It never blocks on fn.
func (d *Dispatcher) Post(fn func()) error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return ErrDispatcherClosed
	}
	d.queue = append(d.queue, fn)
	d.mu.Unlock()

	select {
	case d.wake <- struct{}{}:
	default:
	}
	return nil
}

// Sync posts fn and waits for it to run.
func (d *Dispatcher) Sync(ctx context.Context, fn func()) error {
	ran := make(chan struct{})
	if err := d.Post(func() { fn(); close(ran) }); err != nil {
		return err
	}
	select {
	case <-ran:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close drains already-posted work and stops the loop.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		<-d.done
		return
	}
	d.closed = true
	d.mu.Unlock()

	select {
	case d.wake <- struct{}{}:
	default:
	}
	<-d.done
}

func (d *Dispatcher) loop() {
	defer close(d.done)
	for range d.wake {
		for {
			d.mu.Lock()
			if len(d.queue) == 0 {
				closed := d.closed
				d.mu.Unlock()
				if closed {
					return
				}
				break
			}
			fn := d.queue[0]
			d.queue[0] = nil
			d.queue = d.queue[1:]
			d.mu.Unlock()

			fn()
		}
	}
}
