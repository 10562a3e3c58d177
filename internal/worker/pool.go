package worker

import (
	"context"
	"sync"
)

// Job is a unit of work producing an R
type Job[R any] interface {
	Execute(ctx context.Context) R
}

type queued[R any] struct {
	seq int
	job Job[R]
}

type done[R any] struct {
	seq    int
	result R
}

// Pool runs jobs on a fixed number of workers. Results come back in
// submission order.
type Pool[R any] struct {
	workers    int
	jobQueue   chan queued[R]
	results    chan done[R]
	wg         sync.WaitGroup
	ctx        context.Context
	cancelFunc context.CancelFunc
	closeOnce  sync.Once
	submitted  int
	collected  map[int]R
	collectWG  sync.WaitGroup
}

// NewPool creates a pool whose jobs run under ctx
func NewPool[R any](ctx context.Context, workers int) *Pool[R] {
	if workers <= 0 {
		workers = 1
	}

	ctx, cancel := context.WithCancel(ctx)

	return &Pool[R]{
		workers:    workers,
		jobQueue:   make(chan queued[R], workers*2),
		results:    make(chan done[R], workers*2),
		ctx:        ctx,
		cancelFunc: cancel,
		collected:  make(map[int]R),
	}
}

// Start launches the workers and the result collector
func (p *Pool[R]) Start() {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}

	p.collectWG.Add(1)
	go func() {
		defer p.collectWG.Done()
		for d := range p.results {
			p.collected[d.seq] = d.result
		}
	}()
}

func (p *Pool[R]) worker() {
	defer p.wg.Done()

	for {
		select {
		case <-p.ctx.Done():
			return
		case q, ok := <-p.jobQueue:
			if !ok {
				return
			}
			result := q.job.Execute(p.ctx)
			select {
			case p.results <- done[R]{seq: q.seq, result: result}:
			case <-p.ctx.Done():
				return
			}
		}
	}
}

// Submit queues a job. It is a no-op once the pool is shut down.
// Submit must not be called concurrently with itself or Wait.
func (p *Pool[R]) Submit(job Job[R]) {
	select {
	case <-p.ctx.Done():
		return
	case p.jobQueue <- queued[R]{seq: p.submitted, job: job}:
		p.submitted++
	}
}

// Wait closes the queue and returns every result in submission order.
// Jobs dropped by Shutdown leave a zero R in their slot.
func (p *Pool[R]) Wait() []R {
	close(p.jobQueue)
	p.wg.Wait()
	p.closeResults()
	p.collectWG.Wait()
	p.cancelFunc()

	results := make([]R, p.submitted)
	for seq, r := range p.collected {
		results[seq] = r
	}
	return results
}

// Shutdown cancels running jobs and stops the workers
func (p *Pool[R]) Shutdown() {
	p.cancelFunc()
	p.wg.Wait()
	p.closeResults()
}

func (p *Pool[R]) closeResults() {
	p.closeOnce.Do(func() {
		close(p.results)
	})
}
