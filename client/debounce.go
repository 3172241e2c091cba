package client

import (
	"context"
	"sync"
	"time"
)

const DefaultSearchDelay = 300 * time.Millisecond

// Debouncer runs fn for the most recent input once the input has been quiet
// for the delay. Results of superseded runs are dropped, so onResult only ever
// sees the answer to the latest query.
type Debouncer[T any] struct {
	delay    time.Duration
	fn       func(ctx context.Context, query string) (T, error)
	onResult func(query string, result T, err error)

	mu     sync.Mutex
	timer  *time.Timer
	seq    uint64
	cancel context.CancelFunc
	closed bool
}

func NewDebouncer[T any](delay time.Duration, fn func(context.Context, string) (T, error), onResult func(string, T, error)) *Debouncer[T] {
	if delay <= 0 {
		delay = DefaultSearchDelay
	}
	return &Debouncer[T]{delay: delay, fn: fn, onResult: onResult}
}

// Trigger restarts the quiet period for query and cancels any run in flight.
func (d *Debouncer[T]) Trigger(query string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}
	d.seq++
	seq := d.seq
	d.stopLocked()
	d.timer = time.AfterFunc(d.delay, func() { d.run(seq, query) })
}

func (d *Debouncer[T]) run(seq uint64, query string) {
	d.mu.Lock()
	if seq != d.seq || d.closed {
		d.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	d.cancel = cancel
	d.mu.Unlock()

	result, err := d.fn(ctx, query)
	cancel()

	d.mu.Lock()
	current := seq == d.seq && !d.closed
	d.mu.Unlock()
	if current {
		d.onResult(query, result, err)
	}
}

// stopLocked must be called with mu held.
func (d *Debouncer[T]) stopLocked() {
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
}

// Stop cancels pending and in-flight work. Later triggers are ignored.
func (d *Debouncer[T]) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	d.stopLocked()
}
