package jobs

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Task is a unit of periodic work. Returned errors are logged, never fatal.
type Task func(context.Context) error

// Scheduler runs a single task on a fixed interval until stopped. It replaces
// framework-managed scheduling with an explicit goroutine and cancellation
// channel so shutdown order is controlled by the caller.
type Scheduler struct {
	name     string
	interval time.Duration
	task     Task
	logger   *zap.Logger

	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	mu      sync.Mutex
	started bool
}

// NewScheduler builds a scheduler for the provided task.
func NewScheduler(name string, interval time.Duration, task Task, logger *zap.Logger) *Scheduler {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{name: name, interval: interval, task: task, logger: logger}
}

// Start launches the ticker loop. Safe to call once.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return
	}
	s.ctx, s.cancel = context.WithCancel(ctx)
	s.wg.Add(1)
	go s.run()
	s.started = true
	s.logger.Sugar().Infow("scheduler started", "job", s.name, "interval", s.interval)
}

// Stop cancels the loop and waits for an in-flight run to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return
	}
	s.cancel()
	s.mu.Unlock()
	s.wg.Wait()
	s.logger.Sugar().Infow("scheduler stopped", "job", s.name)
}

func (s *Scheduler) run() {
	defer s.wg.Done()
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			if err := s.task(s.ctx); err != nil {
				s.logger.Sugar().Errorw("scheduled run failed", "job", s.name, "error", err)
			}
		}
	}
}

// RunOnce executes the task immediately outside the ticker cadence.
func (s *Scheduler) RunOnce(ctx context.Context) error {
	return s.task(ctx)
}
