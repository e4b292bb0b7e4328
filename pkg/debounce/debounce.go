// Package debounce delays committing a rapidly changing value until it has
// been stable for a fixed interval.
package debounce

import (
	"sync"
	"time"
)

// DefaultDelay is the quiet period used for search input.
const DefaultDelay = 220 * time.Millisecond

// Debouncer commits the last pushed value once no new value has arrived for
// its delay. Every Push restarts the wait. fn runs on a timer goroutine, or
// on the caller's goroutine for Flush, and never concurrently with itself
// for a single pending value.
type Debouncer[T any] struct {
	delay time.Duration
	fn    func(T)

	mu      sync.Mutex
	timer   *time.Timer
	pending T
	has     bool
	gen     uint64
	stopped bool
}

// New returns a debouncer that calls fn with the committed value.
// A non-positive delay uses DefaultDelay.
func New[T any](delay time.Duration, fn func(T)) *Debouncer[T] {
	if delay <= 0 {
		delay = DefaultDelay
	}
	return &Debouncer[T]{delay: delay, fn: fn}
}

// Delay returns the quiet period.
func (d *Debouncer[T]) Delay() time.Duration { return d.delay }

// Push records v as the pending value and restarts the wait.
// Pushes after Stop are ignored.
func (d *Debouncer[T]) Push(v T) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}
	d.pending = v
	d.has = true
	d.gen++
	if d.timer != nil {
		d.timer.Stop()
	}
	g := d.gen
	d.timer = time.AfterFunc(d.delay, func() { d.fire(g) })
}

func (d *Debouncer[T]) fire(g uint64) {
	d.mu.Lock()
	// a later Push or a Flush superseded this timer
	if g != d.gen || !d.has || d.stopped {
		d.mu.Unlock()
		return
	}
	v := d.take()
	d.mu.Unlock()
	d.fn(v)
}

// take clears the pending value. Callers hold mu.
func (d *Debouncer[T]) take() T {
	v := d.pending
	var zero T
	d.pending = zero
	d.has = false
	return v
}

// Pending returns the value waiting to be committed, if any.
func (d *Debouncer[T]) Pending() (T, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending, d.has
}

// Flush commits the pending value immediately. It reports whether there was one.
func (d *Debouncer[T]) Flush() bool {
	d.mu.Lock()
	if !d.has || d.stopped {
		d.mu.Unlock()
		return false
	}
	d.gen++
	if d.timer != nil {
		d.timer.Stop()
	}
	v := d.take()
	d.mu.Unlock()
	d.fn(v)
	return true
}

// Cancel drops any pending value. The debouncer stays usable.
func (d *Debouncer[T]) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.gen++
	d.take()
	if d.timer != nil {
		d.timer.Stop()
	}
}

// Stop drops any pending value and disables the debouncer.
func (d *Debouncer[T]) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopped = true
	d.gen++
	d.take()
	if d.timer != nil {
		d.timer.Stop()
	}
}
