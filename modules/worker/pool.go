// Package worker runs leaderboard recompute jobs on a bounded worker pool.
package worker

import (
	"context"
	"fmt"
	"log"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/example/lockin/domain/job"
)

// PoolConfig holds worker pool configuration.
type PoolConfig struct {
	NumWorkers     int
	QueueSize      int
	MaxRetries     int
	BaseRetryDelay time.Duration
	MaxRetryDelay  time.Duration
	ProcessTimeout time.Duration
}

// DefaultPoolConfig returns the default pool configuration.
func DefaultPoolConfig() PoolConfig {
	return PoolConfig{
		NumWorkers:     4,
		QueueSize:      256,
		MaxRetries:     5,
		BaseRetryDelay: 500 * time.Millisecond,
		MaxRetryDelay:  30 * time.Second,
		ProcessTimeout: 30 * time.Second,
	}
}

// Stats counts job outcomes since the pool was created.
type Stats struct {
	Submitted int64 `json:"submitted"`
	Rejected  int64 `json:"rejected"`
	Succeeded int64 `json:"succeeded"`
	Retried   int64 `json:"retried"`
	Dropped   int64 `json:"dropped"`
}

// Pool consumes jobs from a Queue with a fixed number of workers.
type Pool struct {
	config    PoolConfig
	queue     Queue
	processor *Processor
	wg        sync.WaitGroup
	cancel    context.CancelFunc
	mu        sync.Mutex
	running   bool

	submitted atomic.Int64
	rejected  atomic.Int64
	succeeded atomic.Int64
	retried   atomic.Int64
	dropped   atomic.Int64
}

// NewPool creates a new worker pool.
func NewPool(cfg PoolConfig, queue Queue, processor *Processor) *Pool {
	if cfg.NumWorkers <= 0 {
		cfg.NumWorkers = 1
	}
	if cfg.ProcessTimeout <= 0 {
		cfg.ProcessTimeout = DefaultPoolConfig().ProcessTimeout
	}
	return &Pool{config: cfg, queue: queue, processor: processor}
}

// Submit enqueues a job. It never blocks on a full in-memory queue; the
// job is rejected instead.
func (p *Pool) Submit(ctx context.Context, j *job.Job) error {
	if err := j.Validate(); err != nil {
		p.rejected.Add(1)
		return err
	}
	if err := p.queue.Enqueue(ctx, j); err != nil {
		p.rejected.Add(1)
		return fmt.Errorf("failed to enqueue job %s: %w", j.ID, err)
	}
	p.submitted.Add(1)
	return nil
}

// Start starts the workers.
func (p *Pool) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.running {
		return fmt.Errorf("pool is already running")
	}

	workerCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	deliveries, err := p.queue.Deliveries(workerCtx)
	if err != nil {
		cancel()
		return fmt.Errorf("failed to subscribe to jobs: %w", err)
	}
	p.cancel = cancel
	p.running = true

	for i := 0; i < p.config.NumWorkers; i++ {
		workerID := fmt.Sprintf("worker-%d", i+1)
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			p.run(workerCtx, workerID, deliveries)
		}()
	}

	log.Printf("[worker] Pool started with %d workers", p.config.NumWorkers)
	return nil
}

// Stop cancels the workers and waits for in-flight jobs.
func (p *Pool) Stop(ctx context.Context) error {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return nil
	}
	p.running = false
	p.cancel()
	p.mu.Unlock()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		log.Println("[worker] All workers stopped gracefully")
		return nil
	case <-ctx.Done():
		log.Println("[worker] Timeout waiting for workers to stop")
		return ctx.Err()
	}
}

// IsRunning returns true if the pool is running.
func (p *Pool) IsRunning() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

// Stats returns the job counters.
func (p *Pool) Stats() Stats {
	return Stats{
		Submitted: p.submitted.Load(),
		Rejected:  p.rejected.Load(),
		Succeeded: p.succeeded.Load(),
		Retried:   p.retried.Load(),
		Dropped:   p.dropped.Load(),
	}
}

func (p *Pool) run(ctx context.Context, workerID string, deliveries <-chan Delivery) {
	for {
		select {
		case <-ctx.Done():
			return
		case d, ok := <-deliveries:
			if !ok {
				return
			}
			p.process(ctx, workerID, d)
		}
	}
}

func (p *Pool) process(ctx context.Context, workerID string, d Delivery) {
	j := d.Job()

	processCtx, cancel := context.WithTimeout(ctx, p.config.ProcessTimeout)
	start := time.Now()
	err := p.processor.Process(processCtx, j)
	cancel()

	if err == nil {
		if err := d.Ack(); err != nil {
			log.Printf("[%s] Error acknowledging job %s: %v", workerID, j.ID, err)
		}
		p.succeeded.Add(1)
		log.Printf("[%s] Job %s (%s %s) done in %v", workerID, j.ID, j.Kind, j.Target(), time.Since(start))
		return
	}

	if !Retryable(err) || j.Attempt > p.config.MaxRetries {
		if dropErr := d.Drop(); dropErr != nil {
			log.Printf("[%s] Error dropping job %s: %v", workerID, j.ID, dropErr)
		}
		p.dropped.Add(1)
		log.Printf("[%s] Warning: job %s (%s %s) dropped after %d attempts: %v", workerID, j.ID, j.Kind, j.Target(), j.Attempt, err)
		return
	}

	delay := p.retryDelay(j.Attempt)
	if retryErr := d.Retry(delay); retryErr != nil {
		log.Printf("[%s] Error scheduling retry of job %s: %v", workerID, j.ID, retryErr)
	}
	p.retried.Add(1)
	log.Printf("[%s] Job %s failed (attempt %d/%d), retrying in %v: %v", workerID, j.ID, j.Attempt, p.config.MaxRetries+1, delay, err)
}

// retryDelay is BaseRetryDelay * 2^(attempt-1), capped at MaxRetryDelay.
func (p *Pool) retryDelay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	delay := float64(p.config.BaseRetryDelay) * math.Pow(2, float64(attempt-1))
	if p.config.MaxRetryDelay > 0 && delay > float64(p.config.MaxRetryDelay) {
		return p.config.MaxRetryDelay
	}
	return time.Duration(delay)
}
