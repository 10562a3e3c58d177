package worker

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

// jobFunc adapts a function to Job[int]
type jobFunc func(ctx context.Context) int

func (f jobFunc) Execute(ctx context.Context) int { return f(ctx) }

func constant(n int) jobFunc {
	return func(context.Context) int { return n }
}

func sleepy(d time.Duration, n int) jobFunc {
	return func(ctx context.Context) int {
		select {
		case <-time.After(d):
			return n
		case <-ctx.Done():
			return -1
		}
	}
}

func TestNewPool(t *testing.T) {
	for in, want := range map[int]int{5: 5, 0: 1, -3: 1} {
		if p := NewPool[int](context.Background(), in); p.workers != want {
			t.Errorf("NewPool(%d) has %d workers, want %d", in, p.workers, want)
		}
	}
}

func TestPool_RunsEveryJob(t *testing.T) {
	pool := NewPool[int](context.Background(), 3)
	pool.Start()

	var ran atomic.Int32
	for i := 0; i < 25; i++ {
		pool.Submit(jobFunc(func(context.Context) int {
			ran.Add(1)
			return 1
		}))
	}

	results := pool.Wait()
	if len(results) != 25 || ran.Load() != 25 {
		t.Errorf("got %d results from %d runs, want 25", len(results), ran.Load())
	}
}

func TestPool_ResultsInSubmissionOrder(t *testing.T) {
	pool := NewPool[int](context.Background(), 4)
	pool.Start()

	// Earlier jobs sleep longer and finish last
	for i := 0; i < 8; i++ {
		pool.Submit(sleepy(time.Duration(8-i)*5*time.Millisecond, i))
	}

	for i, got := range pool.Wait() {
		if got != i {
			t.Fatalf("slot %d holds %d", i, got)
		}
	}
}

func TestPool_MoreJobsThanBuffer(t *testing.T) {
	pool := NewPool[int](context.Background(), 1)
	pool.Start()

	for i := 0; i < 100; i++ {
		pool.Submit(constant(i))
	}

	results := pool.Wait()
	if len(results) != 100 || results[99] != 99 {
		t.Fatalf("unexpected results: len=%d", len(results))
	}
}

func TestPool_BoundedConcurrency(t *testing.T) {
	const workers = 4
	pool := NewPool[int](context.Background(), workers)
	pool.Start()

	var active, peak atomic.Int32
	for i := 0; i < 40; i++ {
		pool.Submit(jobFunc(func(context.Context) int {
			n := active.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
			active.Add(-1)
			return 0
		}))
	}
	pool.Wait()

	if peak.Load() > workers {
		t.Errorf("peak concurrency %d exceeds %d workers", peak.Load(), workers)
	}
}

func TestPool_ParentCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	pool := NewPool[int](ctx, 1)
	pool.Start()

	started := make(chan struct{})
	pool.Submit(jobFunc(func(ctx context.Context) int {
		close(started)
		<-ctx.Done()
		return -1
	}))
	<-started
	cancel()

	finished := make(chan struct{})
	go func() {
		pool.Submit(constant(7))
		pool.Wait()
		close(finished)
	}()

	select {
	case <-finished:
	case <-time.After(time.Second):
		t.Fatal("pool did not stop after parent cancellation")
	}
}

func TestPool_SubmitAfterShutdown(t *testing.T) {
	pool := NewPool[int](context.Background(), 2)
	pool.Start()
	pool.Shutdown()

	returned := make(chan struct{})
	go func() {
		pool.Submit(constant(1))
		close(returned)
	}()

	select {
	case <-returned:
	case <-time.After(time.Second):
		t.Fatal("Submit after Shutdown blocked")
	}
}

func TestPool_ShutdownStopsRunningJobs(t *testing.T) {
	pool := NewPool[int](context.Background(), 2)
	pool.Start()

	started := make(chan struct{})
	pool.Submit(jobFunc(func(ctx context.Context) int {
		close(started)
		select {
		case <-ctx.Done():
		case <-time.After(5 * time.Second):
		}
		return 0
	}))
	<-started

	stopped := make(chan struct{})
	go func() {
		pool.Shutdown()
		close(stopped)
	}()

	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("Shutdown did not cancel the running job")
	}
}
