// Package scheduler runs deferred work. Its Debouncer collapses bursts of
// triggers into a single run after a quiet period.
package scheduler

import (
	"context"
	"sync"
	"time"
)

// Task is the unit of work a Debouncer runs.
type Task func(ctx context.Context) error

// Debouncer runs a Task once the triggers stop arriving for Delay.
// Runs never overlap; a run that starts after another has finished always
// sees newer state than the one before it.
type Debouncer struct {
	delay   time.Duration
	task    Task
	onError func(error)

	mu      sync.Mutex
	timer   *time.Timer
	gen     uint64
	pending bool
	stopped bool
	wg      sync.WaitGroup

	runMu sync.Mutex
}

// Option configures a Debouncer.
type Option func(*Debouncer)

// WithErrorHandler sets a callback for errors returned by timer-driven runs.
func WithErrorHandler(fn func(error)) Option {
	return func(d *Debouncer) {
		d.onError = fn
	}
}

// NewDebouncer returns a Debouncer for task. A non-positive delay runs the
// task on the next timer tick.
func NewDebouncer(delay time.Duration, task Task, opts ...Option) *Debouncer {
	if delay < 0 {
		delay = 0
	}
	d := &Debouncer{delay: delay, task: task}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Trigger schedules a run after the quiet period, cancelling any run that is
// still waiting. It is a no-op after Stop.
func (d *Debouncer) Trigger() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}
	d.cancelTimerLocked()
	d.pending = true
	d.gen++
	gen := d.gen
	d.wg.Add(1)
	d.timer = time.AfterFunc(d.delay, func() {
		defer d.wg.Done()
		d.fire(gen)
	})
}

// Pending reports whether a run is scheduled but has not started.
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending
}

// Flush runs a pending task immediately and returns its error. With nothing
// pending it waits for any in-flight run and returns nil.
func (d *Debouncer) Flush(ctx context.Context) error {
	d.mu.Lock()
	if !d.pending {
		d.mu.Unlock()
		d.runMu.Lock()
		d.runMu.Unlock() //nolint:staticcheck // wait for an in-flight run
		return nil
	}
	d.cancelTimerLocked()
	d.pending = false
	d.gen++
	d.mu.Unlock()

	return d.run(ctx)
}

// Stop runs any pending task, waits for timer goroutines to exit, and
// rejects further triggers.
func (d *Debouncer) Stop(ctx context.Context) error {
	d.mu.Lock()
	d.stopped = true
	d.cancelTimerLocked()
	pending := d.pending
	d.pending = false
	d.gen++
	d.mu.Unlock()

	var err error
	if pending {
		err = d.run(ctx)
	}
	d.wg.Wait()
	return err
}

func (d *Debouncer) fire(gen uint64) {
	d.mu.Lock()
	if gen != d.gen || !d.pending {
		d.mu.Unlock()
		return
	}
	d.pending = false
	d.mu.Unlock()

	if err := d.run(context.Background()); err != nil && d.onError != nil {
		d.onError(err)
	}
}

func (d *Debouncer) run(ctx context.Context) error {
	d.runMu.Lock()
	defer d.runMu.Unlock()
	return d.task(ctx)
}

// cancelTimerLocked stops the current timer. When the timer had not fired its
// goroutine will never run, so the wait group is released here instead.
func (d *Debouncer) cancelTimerLocked() {
	if d.timer != nil && d.timer.Stop() {
		d.wg.Done()
	}
	d.timer = nil
}
