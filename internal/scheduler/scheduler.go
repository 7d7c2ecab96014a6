package scheduler

import (
	"context"
	"sync"
	"time"

	"notes/backend/pkg/logger"
)

// Task is one unit of periodic work. It must return once ctx is done.
type Task func(ctx context.Context) error

type Scheduler struct {
	name       string
	task       Task
	interval   time.Duration
	stopCh     chan struct{}
	stopOnce   sync.Once
	wg         sync.WaitGroup
	cancelFunc context.CancelFunc // cancels the current run
	mu         sync.Mutex         // protects cancelFunc
}

func New(name string, task Task, interval time.Duration) *Scheduler {
	return &Scheduler{
		name:     name,
		task:     task,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

func (s *Scheduler) Start() {
	s.wg.Add(1)
	go s.run()
	logger.Info("scheduler started", "module", "scheduler", "task", s.name, "interval", s.interval)
}

// Stop cancels a run in progress and waits for the loop to exit. Safe to
// call more than once.
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() {
		s.mu.Lock()
		if s.cancelFunc != nil {
			s.cancelFunc()
		}
		s.mu.Unlock()

		close(s.stopCh)
		s.wg.Wait()
		logger.Info("scheduler stopped", "module", "scheduler", "task", s.name)
	})
}

func (s *Scheduler) run() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.tick()
		case <-s.stopCh:
			return
		}
	}
}

func (s *Scheduler) tick() {
	ctx, cancel := context.WithTimeout(context.Background(), s.interval)

	s.mu.Lock()
	s.cancelFunc = cancel
	s.mu.Unlock()

	defer func() {
		cancel()
		s.mu.Lock()
		s.cancelFunc = nil
		s.mu.Unlock()
	}()

	if err := s.task(ctx); err != nil {
		if ctx.Err() != nil {
			logger.Info("scheduled task cancelled", "module", "scheduler", "task", s.name)
			return
		}
		logger.Error("scheduled task failed", "module", "scheduler", "task", s.name, "error", err)
		return
	}
	logger.Debug("scheduled task completed", "module", "scheduler", "task", s.name)
}
