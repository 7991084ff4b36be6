package dispatch

import (
	"context"
	"sync"
)

// job is the unit of work dispatched to a worker.
type job[T any] struct {
	payload T
}

// workerPool is a fixed-size goroutine pool with a bounded input queue. It
// caps the number of concurrent outbound region calls across all fan-outs.
type workerPool[T any] struct {
	queue   chan job[T]
	process func(ctx context.Context, t T)
	wg      sync.WaitGroup
	mu      sync.Mutex
	closed  bool
}

// newWorkerPool creates and starts a pool with n goroutines and queue capacity cap.
func newWorkerPool[T any](ctx context.Context, n, cap int, fn func(context.Context, T)) *workerPool[T] {
	p := &workerPool[T]{
		queue:   make(chan job[T], cap),
		process: fn,
	}
	for i := 0; i < n; i++ {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			p.run(ctx)
		}()
	}
	return p
}

func (p *workerPool[T]) run(ctx context.Context) {
	for {
		select {
		case j, ok := <-p.queue:
			if !ok {
				return
			}
			p.process(ctx, j.payload)
		case <-ctx.Done():
			// Service what is already queued before exiting; every accepted
			// job must be processed or its submitter waits forever. The
			// cancelled context makes each call fail fast.
			for {
				select {
				case j, ok := <-p.queue:
					if !ok {
						return
					}
					p.process(ctx, j.payload)
				default:
					return
				}
			}
		}
	}
}

// Submit enqueues a job without blocking (returns false if full or drained).
func (p *workerPool[T]) Submit(t T) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return false
	}
	select {
	case p.queue <- job[T]{payload: t}:
		return true
	default:
		return false
	}
}

// Drain closes the queue and waits for all workers to finish. Safe to call
// more than once; later Submits report a full queue.
func (p *workerPool[T]) Drain() {
	p.mu.Lock()
	if !p.closed {
		p.closed = true
		close(p.queue)
	}
	p.mu.Unlock()
	p.wg.Wait()
}

// QueueLen returns how many jobs are currently queued.
func (p *workerPool[T]) QueueLen() int {
	return len(p.queue)
}

// QueueCap returns the total queue capacity.
func (p *workerPool[T]) QueueCap() int {
	return cap(p.queue)
}
