package session

import (
	"context"
	"log/slog"
	"sync"
)

// outbox queues fire-and-forget writes for a single background writer.
// Writes to the same key coalesce: only the latest queued value is written.
// Keys are written in the order they were first queued.
type outbox struct {
	gw       Gateway
	logger   *slog.Logger
	onResult func(key string, err error)

	mu      sync.Mutex
	pending map[string]string
	order   []string
	queued  uint64
	done    uint64
	waiters []flushWaiter

	wake     chan struct{}
	stop     chan struct{}
	stopped  chan struct{}
	stopOnce sync.Once
}

type flushWaiter struct {
	target uint64
	ch     chan struct{}
}

func newOutbox(gw Gateway, logger *slog.Logger, onResult func(key string, err error)) *outbox {
	return &outbox{
		gw:       gw,
		logger:   logger,
		onResult: onResult,
		pending:  make(map[string]string),
		wake:     make(chan struct{}, 1),
		stop:     make(chan struct{}),
		stopped:  make(chan struct{}),
	}
}

// start launches the writer goroutine.
func (o *outbox) start() {
	go o.run()
}

func (o *outbox) enqueue(key, value string) {
	o.mu.Lock()
	if _, ok := o.pending[key]; !ok {
		o.order = append(o.order, key)
	}
	o.pending[key] = value
	o.queued++
	o.mu.Unlock()

	select {
	case o.wake <- struct{}{}:
	default:
	}
}

func (o *outbox) run() {
	defer close(o.stopped)
	for {
		select {
		case <-o.wake:
			o.drain()
		case <-o.stop:
			o.drain()
			return
		}
	}
}

func (o *outbox) drain() {
	for {
		o.mu.Lock()
		if len(o.order) == 0 {
			o.mu.Unlock()
			return
		}
		keys := o.order
		values := o.pending
		upTo := o.queued
		o.order = nil
		o.pending = make(map[string]string)
		o.mu.Unlock()

		for _, key := range keys {
			// Writes outlive the request that queued them.
			err := o.gw.Set(context.Background(), key, values[key])
			if err != nil {
				o.logger.Error("persist write failed", "key", key, "error", err)
			} else {
				o.logger.Debug("persisted", "key", key, "bytes", len(values[key]))
			}
			if o.onResult != nil {
				o.onResult(key, err)
			}
		}

		o.mu.Lock()
		o.done = upTo
		o.releaseLocked()
		o.mu.Unlock()
	}
}

func (o *outbox) releaseLocked() {
	remaining := o.waiters[:0]
	for _, w := range o.waiters {
		if w.target <= o.done {
			close(w.ch)
			continue
		}
		remaining = append(remaining, w)
	}
	o.waiters = remaining
}

// flush blocks until every write queued before the call has been attempted.
func (o *outbox) flush(ctx context.Context) error {
	o.mu.Lock()
	if o.done >= o.queued {
		o.mu.Unlock()
		return nil
	}
	w := flushWaiter{target: o.queued, ch: make(chan struct{})}
	o.waiters = append(o.waiters, w)
	o.mu.Unlock()

	select {
	case <-w.ch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// close drains what is queued and stops the writer.
func (o *outbox) close(ctx context.Context) error {
	o.stopOnce.Do(func() { close(o.stop) })
	select {
	case <-o.stopped:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
