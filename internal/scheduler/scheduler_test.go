package scheduler

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type counter struct {
	mu    sync.Mutex
	runs  int
	value []int
}

func (c *counter) task(source *atomic.Int64) Task {
	return func(context.Context) error {
		c.mu.Lock()
		defer c.mu.Unlock()
		c.runs++
		c.value = append(c.value, int(source.Load()))
		return nil
	}
}

func (c *counter) snapshot() (int, []int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.runs, append([]int(nil), c.value...)
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func TestDebouncerCollapsesBursts(t *testing.T) {
	var state atomic.Int64
	c := &counter{}
	d := NewDebouncer(30*time.Millisecond, c.task(&state))
	defer func() { _ = d.Stop(context.Background()) }()

	for i := 1; i <= 10; i++ {
		state.Store(int64(i))
		d.Trigger()
	}

	waitFor(t, func() bool { runs, _ := c.snapshot(); return runs == 1 })
	time.Sleep(60 * time.Millisecond)

	runs, values := c.snapshot()
	if runs != 1 {
		t.Fatalf("expected 1 run, got %d", runs)
	}
	if values[0] != 10 {
		t.Errorf("expected run to observe latest state 10, got %d", values[0])
	}
	if d.Pending() {
		t.Error("expected nothing pending after run")
	}
}

func TestDebouncerFlushRunsImmediately(t *testing.T) {
	var state atomic.Int64
	c := &counter{}
	d := NewDebouncer(time.Hour, c.task(&state))
	defer func() { _ = d.Stop(context.Background()) }()

	state.Store(7)
	d.Trigger()
	if !d.Pending() {
		t.Fatal("expected pending run after trigger")
	}

	if err := d.Flush(context.Background()); err != nil {
		t.Fatalf("Flush failed: %v", err)
	}
	runs, values := c.snapshot()
	if runs != 1 || values[0] != 7 {
		t.Fatalf("expected one run observing 7, got runs=%d values=%v", runs, values)
	}

	// Nothing pending: flush is a no-op.
	if err := d.Flush(context.Background()); err != nil {
		t.Fatalf("second Flush failed: %v", err)
	}
	if runs, _ := c.snapshot(); runs != 1 {
		t.Errorf("expected no extra run, got %d", runs)
	}
}

func TestDebouncerFlushReturnsTaskError(t *testing.T) {
	boom := errors.New("disk full")
	d := NewDebouncer(time.Hour, func(context.Context) error { return boom })

	d.Trigger()
	if err := d.Flush(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("expected task error, got %v", err)
	}
	if err := d.Stop(context.Background()); err != nil {
		t.Fatalf("Stop with nothing pending returned %v", err)
	}
}

func TestDebouncerReportsTimerErrors(t *testing.T) {
	boom := errors.New("network down")
	errCh := make(chan error, 1)
	d := NewDebouncer(10*time.Millisecond,
		func(context.Context) error { return boom },
		WithErrorHandler(func(err error) { errCh <- err }),
	)
	defer func() { _ = d.Stop(context.Background()) }()

	d.Trigger()
	select {
	case err := <-errCh:
		if !errors.Is(err, boom) {
			t.Fatalf("unexpected error %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("error handler was not called")
	}
}

func TestDebouncerStopFlushesAndRejectsTriggers(t *testing.T) {
	var state atomic.Int64
	c := &counter{}
	d := NewDebouncer(time.Hour, c.task(&state))

	d.Trigger()
	if err := d.Stop(context.Background()); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}
	if runs, _ := c.snapshot(); runs != 1 {
		t.Fatalf("expected Stop to flush pending run, got %d runs", runs)
	}

	d.Trigger()
	if d.Pending() {
		t.Error("expected trigger after Stop to be ignored")
	}
}

func TestDebouncerRunsDoNotOverlap(t *testing.T) {
	var active, maxActive atomic.Int64
	task := func(context.Context) error {
		n := active.Add(1)
		for {
			m := maxActive.Load()
			if n <= m || maxActive.CompareAndSwap(m, n) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		active.Add(-1)
		return nil
	}
	d := NewDebouncer(time.Millisecond, task)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 5; j++ {
				d.Trigger()
				_ = d.Flush(context.Background())
			}
		}()
	}
	wg.Wait()
	if err := d.Stop(context.Background()); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}

	if got := maxActive.Load(); got != 1 {
		t.Fatalf("expected runs to be serialized, saw %d concurrent", got)
	}
}
