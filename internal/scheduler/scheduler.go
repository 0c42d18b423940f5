// Package scheduler abstracts recurring maintenance jobs behind an interface
// so tests can trigger runs deterministically instead of waiting on
// wall-clock timers.
package scheduler

import (
	"context"
	"sync"
	"time"

	"adaptive-decision-core/internal/logging"
)

// Job is one maintenance task. The context is cancelled when the schedule
// stops.
type Job func(ctx context.Context)

// Scheduler runs named jobs on a recurring period. Every returns a stop
// function that cancels the schedule.
type Scheduler interface {
	Every(name string, period time.Duration, job Job) (stop func())
}

// TickerScheduler runs jobs on real time.Ticker cadence, one goroutine per
// schedule.
type TickerScheduler struct {
	logger *logging.Logger
	wg     sync.WaitGroup
}

// NewTickerScheduler creates a wall-clock scheduler.
func NewTickerScheduler(logger *logging.Logger) *TickerScheduler {
	return &TickerScheduler{logger: logger.WithComponent("scheduler")}
}

// Every runs job each period until the returned stop function is called.
func (s *TickerScheduler) Every(name string, period time.Duration, job Job) func() {
	ctx, cancel := context.WithCancel(context.Background())
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(period)
		defer ticker.Stop()
		s.logger.Info("schedule started", "job", name, "period", period.String())
		for {
			select {
			case <-ticker.C:
				job(ctx)
			case <-ctx.Done():
				s.logger.Info("schedule stopped", "job", name)
				return
			}
		}
	}()
	return cancel
}

// Wait blocks until every stopped schedule's goroutine has exited.
func (s *TickerScheduler) Wait() {
	s.wg.Wait()
}

// ManualScheduler records jobs and only runs them when the test calls
// Trigger, giving deterministic control over maintenance timing.
type ManualScheduler struct {
	mu   sync.Mutex
	jobs map[string]Job
}

// NewManualScheduler creates a test scheduler.
func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{jobs: make(map[string]Job)}
}

// Every registers the job without starting any timer.
func (s *ManualScheduler) Every(name string, _ time.Duration, job Job) func() {
	s.mu.Lock()
	s.jobs[name] = job
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		delete(s.jobs, name)
		s.mu.Unlock()
	}
}

// Trigger runs the named job synchronously. Unknown names are no-ops.
func (s *ManualScheduler) Trigger(ctx context.Context, name string) {
	s.mu.Lock()
	job := s.jobs[name]
	s.mu.Unlock()
	if job != nil {
		job(ctx)
	}
}
