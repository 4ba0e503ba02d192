package parallel

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

// Result records the outcome of one job.
type Result struct {
	// ID identifies the job, typically the input path.
	ID string
	// Output is whatever the job produced, typically the output path.
	Output   string
	Error    error
	Duration time.Duration
}

// WorkerPool manages concurrent job execution with bounded concurrency.
type WorkerPool struct {
	maxWorkers int
	semaphore  chan struct{}
	wg         sync.WaitGroup
	mu         sync.Mutex
	results    []Result
	errors     []error
	failFast   bool
	ctx        context.Context
	cancel     context.CancelFunc
}

// NewWorkerPool creates a new worker pool with bounded concurrency.
// If maxWorkers is 0, unlimited workers are allowed (bounded by submitted jobs).
// If failFast is true, the pool context is cancelled on the first error.
func NewWorkerPool(ctx context.Context, maxWorkers int, failFast bool) *WorkerPool {
	if maxWorkers < 0 {
		maxWorkers = 0
	}
	ctx, cancel := context.WithCancel(ctx)
	return &WorkerPool{
		maxWorkers: maxWorkers,
		semaphore:  make(chan struct{}, maxWorkers),
		failFast:   failFast,
		ctx:        ctx,
		cancel:     cancel,
	}
}

// Submit starts fn in its own goroutine once a worker slot is free. Jobs
// submitted after the pool was cancelled are skipped.
func (p *WorkerPool) Submit(id string, fn func(ctx context.Context) (string, error)) {
	select {
	case <-p.ctx.Done():
		return
	default:
	}

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()

		// Acquire semaphore slot
		if p.maxWorkers > 0 {
			select {
			case p.semaphore <- struct{}{}:
				defer func() { <-p.semaphore }()
			case <-p.ctx.Done():
				return
			}
		}

		// Check if we should still run (fail-fast or cancelled)
		select {
		case <-p.ctx.Done():
			return
		default:
		}

		start := time.Now()
		output, err := fn(p.ctx)
		result := Result{
			ID:       id,
			Output:   output,
			Error:    err,
			Duration: time.Since(start),
		}

		p.mu.Lock()
		defer p.mu.Unlock()

		p.results = append(p.results, result)
		if err != nil {
			p.errors = append(p.errors, fmt.Errorf("%s: %w", id, err))
			if p.failFast {
				p.cancel()
			}
		}
	}()
}

// Wait waits for all submitted jobs and returns their results sorted by ID.
// With fail-fast, jobs that never started have no result.
func (p *WorkerPool) Wait() ([]Result, []error) {
	p.wg.Wait()
	p.mu.Lock()
	defer p.mu.Unlock()

	p.cancel()

	results := make([]Result, len(p.results))
	copy(results, p.results)
	sort.Slice(results, func(i, j int) bool { return results[i].ID < results[j].ID })

	errs := make([]error, len(p.errors))
	copy(errs, p.errors)
	return results, errs
}
