package worker

import (
	"context"
	"sync"
	"sync/atomic"
)

// Task is a unit of work producing one result
type Task[R any] func(ctx context.Context) R

type slot[T any] struct {
	index int
	value T
}

// Pool runs tasks on a fixed number of goroutines and returns results in
// submission order
type Pool[R any] struct {
	workers   int
	tasks     chan slot[Task[R]]
	results   chan slot[R]
	submitted atomic.Int64
	collected map[int]R
	drained   chan struct{}
	wg        sync.WaitGroup
	ctx       context.Context
	cancel    context.CancelFunc
	closeOnce sync.Once
}

// NewPool creates a pool bound to parent; cancelling parent stops the workers
func NewPool[R any](parent context.Context, workers int) *Pool[R] {
	if workers <= 0 {
		workers = 1
	}

	ctx, cancel := context.WithCancel(parent)

	return &Pool[R]{
		workers:   workers,
		tasks:     make(chan slot[Task[R]], workers*2),
		results:   make(chan slot[R], workers*2),
		collected: make(map[int]R),
		drained:   make(chan struct{}),
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Start launches the workers and the collector. Results are drained while
// tasks are still being submitted, so Submit never waits on an unread result.
func (p *Pool[R]) Start() {
	go p.collect()

	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.run()
	}
}

func (p *Pool[R]) collect() {
	defer close(p.drained)

	for r := range p.results {
		p.collected[r.index] = r.value
	}
}

func (p *Pool[R]) run() {
	defer p.wg.Done()

	for {
		select {
		case <-p.ctx.Done():
			return
		case t, ok := <-p.tasks:
			if !ok {
				return
			}
			out := slot[R]{index: t.index, value: t.value(p.ctx)}
			select {
			case p.results <- out:
			case <-p.ctx.Done():
				return
			}
		}
	}
}

// Submit queues a task. It returns false once the pool has shut down.
func (p *Pool[R]) Submit(task Task[R]) bool {
	if p.ctx.Err() != nil {
		return false
	}

	idx := int(p.submitted.Add(1) - 1)
	select {
	case <-p.ctx.Done():
		return false
	case p.tasks <- slot[Task[R]]{index: idx, value: task}:
		return true
	}
}

// Wait closes the queue, waits for every task and returns results in
// submission order. Slots of tasks that never ran hold the zero value.
func (p *Pool[R]) Wait() []R {
	close(p.tasks)
	p.wg.Wait()
	p.closeResults()
	<-p.drained

	out := make([]R, p.submitted.Load())
	for i, v := range p.collected {
		out[i] = v
	}

	p.cancel()
	return out
}

// Shutdown stops the workers without waiting for queued tasks
func (p *Pool[R]) Shutdown() {
	p.cancel()
	p.wg.Wait()
	p.closeResults()
}

func (p *Pool[R]) closeResults() {
	p.closeOnce.Do(func() {
		close(p.results)
	})
}
