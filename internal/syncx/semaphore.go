package syncx

import (
	"context"
	"sync"
)

// Semaphore is a counting semaphore with FIFO fairness: permits are granted
// to waiters in arrival order, so a burst of callers cannot starve an
// earlier one.
type Semaphore struct {
	mu      sync.Mutex
	permits int
	waiters []chan struct{}
}

// NewSemaphore creates a semaphore with n permits. n must be >= 1.
func NewSemaphore(n int) *Semaphore {
	if n < 1 {
		n = 1
	}
	return &Semaphore{permits: n}
}

// Acquire blocks until a permit is available or ctx is done.
func (s *Semaphore) Acquire(ctx context.Context) error {
	s.mu.Lock()
	if s.permits > 0 && len(s.waiters) == 0 {
		s.permits--
		s.mu.Unlock()
		return nil
	}

	ch := make(chan struct{})
	s.waiters = append(s.waiters, ch)
	s.mu.Unlock()

	select {
	case <-ch:
		return nil
	case <-ctx.Done():
		s.mu.Lock()
		select {
		case <-ch:
			// A permit was handed to us after cancellation; give it back.
			s.releaseLocked()
			s.mu.Unlock()
			return ctx.Err()
		default:
		}
		for i, w := range s.waiters {
			if w == ch {
				s.waiters = append(s.waiters[:i], s.waiters[i+1:]...)
				break
			}
		}
		s.mu.Unlock()
		return ctx.Err()
	}
}

// Release returns a permit, handing it to the oldest waiter if any.
func (s *Semaphore) Release() {
	s.mu.Lock()
	s.releaseLocked()
	s.mu.Unlock()
}

func (s *Semaphore) releaseLocked() {
	if len(s.waiters) > 0 {
		ch := s.waiters[0]
		s.waiters = s.waiters[1:]
		// Permit transfers directly to the waiter.
		close(ch)
		return
	}
	s.permits++
}

// RunWithPermit acquires a permit, runs fn, and releases on every exit path.
func (s *Semaphore) RunWithPermit(ctx context.Context, fn func() error) error {
	if err := s.Acquire(ctx); err != nil {
		return err
	}
	defer s.Release()
	return fn()
}

// Available reports the number of free permits.
func (s *Semaphore) Available() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.permits
}

// WaitingCount reports how many callers are queued for a permit.
func (s *Semaphore) WaitingCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.waiters)
}
