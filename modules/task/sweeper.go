package task

import (
	"context"
	"log"
	"sync"
	"time"
)

// Sweeper periodically hides finished tasks from dashboards.
type Sweeper struct {
	service  *Service
	interval time.Duration
	stopChan chan struct{}
	doneChan chan struct{}
	stopOnce sync.Once
}

// NewSweeper creates a sweeper that runs every interval.
func NewSweeper(service *Service, interval time.Duration) *Sweeper {
	return &Sweeper{service: service, interval: interval}
}

// Start launches the sweep loop.
func (s *Sweeper) Start() {
	s.stopChan = make(chan struct{})
	s.doneChan = make(chan struct{})
	go s.run()
}

func (s *Sweeper) run() {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	defer close(s.doneChan)

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.sweepOnce()
		}
	}
}

func (s *Sweeper) sweepOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), s.interval)
	defer cancel()

	go func() {
		select {
		case <-s.stopChan:
			cancel()
		case <-ctx.Done():
		}
	}()

	n, err := s.service.SweepHidden(ctx)
	if err != nil {
		log.Printf("[task] Warning: sweep failed: %v", err)
		return
	}
	if n > 0 {
		log.Printf("[task] Sweep hid %d finished tasks", n)
	}
}

// Stop ends the loop, waiting for an in-flight sweep up to ctx's deadline.
func (s *Sweeper) Stop(ctx context.Context) error {
	if s.stopChan == nil {
		return nil
	}
	s.stopOnce.Do(func() {
		close(s.stopChan)
	})

	select {
	case <-s.doneChan:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
