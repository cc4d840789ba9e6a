// Package debounce provides cancellable delayed calls.
package debounce

import (
	"sync"
	"time"
)

// Schedule runs fn once after delay on its own goroutine. The returned cancel
// reports whether it stopped the call before it started.
func Schedule(delay time.Duration, fn func()) (cancel func() bool) {
	var (
		mu       sync.Mutex
		canceled bool
		started  bool
	)
	t := time.AfterFunc(delay, func() {
		mu.Lock()
		if canceled {
			mu.Unlock()
			return
		}
		started = true
		mu.Unlock()
		fn()
	})
	return func() bool {
		mu.Lock()
		defer mu.Unlock()
		if started || canceled {
			return false
		}
		canceled = true
		t.Stop()
		return true
	}
}

// Debouncer is a trailing-edge debounce: each Trigger cancels the pending
// call and schedules a new one.
type Debouncer struct {
	delay time.Duration

	mu      sync.Mutex
	cancel  func() bool
	pending bool
	gen     uint64
}

func New(delay time.Duration) *Debouncer {
	return &Debouncer{delay: delay}
}

func (d *Debouncer) Trigger(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.cancel != nil {
		d.cancel()
	}
	d.gen++
	gen := d.gen
	d.pending = true
	d.cancel = Schedule(d.delay, func() {
		d.mu.Lock()
		if gen != d.gen {
			d.mu.Unlock()
			return
		}
		d.pending = false
		d.cancel = nil
		d.mu.Unlock()
		fn()
	})
}

// Cancel drops the pending call, if any, and reports whether one was dropped.
func (d *Debouncer) Cancel() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.gen++
	was := d.pending
	d.pending = false
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	return was
}

func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending
}
