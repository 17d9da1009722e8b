package importer

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
)

// DefaultWorkers is the number of jobs that may run at once.
const DefaultWorkers = 5

// PoolStats is a point-in-time view of the pool.
type PoolStats struct {
	Size    int `json:"size"`
	Active  int `json:"active"`
	Waiting int `json:"waiting"`
}

// Pool runs tasks with at most Size executing concurrently. Go never blocks
// the caller; excess tasks wait for a free slot in their own goroutine.
type Pool struct {
	sem     *semaphore.Weighted
	size    int
	wg      sync.WaitGroup
	mu      sync.Mutex
	closed  bool
	active  atomic.Int64
	waiting atomic.Int64
	log     *slog.Logger
}

// NewPool creates a pool of the given size. Sizes below 1 use DefaultWorkers.
func NewPool(size int, log *slog.Logger) *Pool {
	if size < 1 {
		size = DefaultWorkers
	}
	if log == nil {
		log = slog.Default()
	}
	return &Pool{
		sem:  semaphore.NewWeighted(int64(size)),
		size: size,
		log:  log,
	}
}

// Go schedules task. Tasks run on a background context: they are not
// cancelled when the submitting request ends. A panicking task is logged
// and its slot released.
func (p *Pool) Go(name string, task func(ctx context.Context)) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return ErrPoolClosed
	}

	p.wg.Add(1)
	p.waiting.Add(1)
	go func() {
		defer p.wg.Done()

		ctx := context.Background()
		// Acquire cannot fail with a background context
		_ = p.sem.Acquire(ctx, 1)
		p.waiting.Add(-1)
		p.active.Add(1)
		defer func() {
			p.active.Add(-1)
			p.sem.Release(1)
		}()
		defer func() {
			if r := recover(); r != nil {
				p.log.Error("task panicked", "task", name, "panic", fmt.Sprint(r), "stack", string(debug.Stack()))
			}
		}()

		task(ctx)
	}()
	return nil
}

// Close stops accepting tasks. Already scheduled tasks still run.
func (p *Pool) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
}

// Wait blocks until every scheduled task has finished or ctx is done.
func (p *Pool) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stats returns the current pool occupancy.
func (p *Pool) Stats() PoolStats {
	return PoolStats{
		Size:    p.size,
		Active:  int(p.active.Load()),
		Waiting: int(p.waiting.Load()),
	}
}
