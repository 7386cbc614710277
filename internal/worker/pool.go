// Package worker provides a bounded job queue drained by a fixed set of
// goroutines. A pool with one worker serializes its jobs.
package worker

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// Job is a unit of work. ctx is cancelled when the pool stops.
type Job func(ctx context.Context)

// Pool manages background workers for queued jobs.
type Pool struct {
	jobs    chan Job
	wg      sync.WaitGroup
	mu      sync.RWMutex
	stopped bool
	ctx     context.Context
	cancel  context.CancelFunc
	log     *zap.Logger
}

// NewPool creates a pool with the given queue size.
func NewPool(queueSize int, log *zap.Logger) *Pool {
	if queueSize < 1 {
		queueSize = 1
	}
	if log == nil {
		log = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Pool{
		jobs:   make(chan Job, queueSize),
		ctx:    ctx,
		cancel: cancel,
		log:    log,
	}
}

// Start launches the worker goroutines.
func (p *Pool) Start(workers int) {
	if workers < 1 {
		workers = 1
	}
	for i := 0; i < workers; i++ {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			for job := range p.jobs {
				p.run(job)
			}
		}()
	}
}

// Stop closes the queue, lets workers drain it, then cancels the job context.
func (p *Pool) Stop() {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return
	}
	p.stopped = true
	close(p.jobs)
	p.mu.Unlock()

	p.wg.Wait()
	p.cancel()
}

// Submit queues a job without blocking. It reports false when the job was
// dropped because the queue is full or the pool stopped.
func (p *Pool) Submit(job Job) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.stopped {
		return false
	}
	select {
	case p.jobs <- job:
		return true
	default:
		p.log.Warn("worker queue full, dropping job")
		return false
	}
}

func (p *Pool) run(job Job) {
	defer func() {
		if r := recover(); r != nil {
			p.log.Error("worker job panicked", zap.Any("panic", r))
		}
	}()
	job(p.ctx)
}
