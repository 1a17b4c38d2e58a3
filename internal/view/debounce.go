package view

import (
	"sync"
	"time"

	"github.com/juju/clock"
)

// Debouncer runs only the last function handed to Trigger, once delay has
// passed without another Trigger.
type Debouncer struct {
	clock clock.Clock
	delay time.Duration

	mu      sync.Mutex
	timer   clock.Timer
	pending func()
	seq     uint64
}

func NewDebouncer(clk clock.Clock, delay time.Duration) *Debouncer {
	if clk == nil {
		clk = clock.WallClock
	}
	return &Debouncer{clock: clk, delay: delay}
}

// Trigger schedules f, cancelling whatever was pending.
func (d *Debouncer) Trigger(f func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopLocked()
	d.seq++
	seq := d.seq
	d.pending = f

	d.timer = d.clock.AfterFunc(d.delay, func() {
		d.mu.Lock()
		if seq != d.seq {
			// Superseded or stopped while the timer was firing.
			d.mu.Unlock()
			return
		}
		run := d.pending
		d.timer, d.pending = nil, nil
		d.mu.Unlock()

		run()
	})
}

// Flush runs the pending function now, if any.
func (d *Debouncer) Flush() {
	d.mu.Lock()
	run := d.pending
	d.stopLocked()
	d.mu.Unlock()

	if run != nil {
		run()
	}
}

// Stop drops the pending function. It reports whether one was pending.
func (d *Debouncer) Stop() bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	pending := d.pending != nil
	d.stopLocked()
	return pending
}

// Pending reports whether a function is waiting to run.
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending != nil
}

func (d *Debouncer) stopLocked() {
	if d.timer != nil {
		d.timer.Stop()
	}
	d.seq++
	d.timer, d.pending = nil, nil
}
