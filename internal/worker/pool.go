package worker

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Job is a unit of background work.
type Job = func(ctx context.Context) error

type task struct {
	name string
	run  Job
}

// Pool runs jobs on a fixed number of goroutines fed by a bounded queue.
type Pool struct {
	workers int
	timeout time.Duration
	logger  *zap.Logger

	mu      sync.RWMutex
	queue   chan task
	closed  bool
	wg      sync.WaitGroup
	started bool
}

// NewPool builds a pool. timeout bounds each job; zero means no bound.
func NewPool(workers, queueSize int, timeout time.Duration, logger *zap.Logger) *Pool {
	if workers <= 0 {
		workers = 1
	}
	if queueSize <= 0 {
		queueSize = 64
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pool{
		workers: workers,
		timeout: timeout,
		logger:  logger,
		queue:   make(chan task, queueSize),
	}
}

// Start launches the workers. Jobs inherit values from ctx but not its cancellation.
func (p *Pool) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.started {
		return
	}
	p.started = true

	base := context.WithoutCancel(ctx)
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			for t := range p.queue {
				p.run(base, t)
			}
		}()
	}
}

func (p *Pool) run(base context.Context, t task) {
	ctx := base
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(base, p.timeout)
		defer cancel()
	}
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("job panicked", zap.String("job", t.name), zap.Any("panic", r))
		}
	}()
	if err := t.run(ctx); err != nil {
		p.logger.Warn("job failed", zap.String("job", t.name), zap.Error(err))
	}
}

// Submit enqueues a job. It returns false when the queue is full or the pool stopped.
func (p *Pool) Submit(name string, job Job) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return false
	}
	select {
	case p.queue <- task{name: name, run: job}:
		return true
	default:
		p.logger.Warn("job queue full; dropping job", zap.String("job", name))
		return false
	}
}

// Stop closes the queue and waits for queued jobs to finish.
func (p *Pool) Stop() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.queue)
	p.mu.Unlock()
	p.wg.Wait()
}
