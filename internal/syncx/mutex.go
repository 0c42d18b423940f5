// Package syncx provides fair (FIFO) concurrency primitives used by the
// decision core: a mutual-exclusion lock, a counting semaphore, and a
// writer-priority read/write lock. Unlike the stdlib sync types these expose
// waiter diagnostics and context-aware acquisition, and they guarantee
// first-come-first-served ordering for waiters.
package syncx

import (
	"context"
	"sync"
)

// Mutex is a mutual-exclusion lock with FIFO fairness. Waiters are granted
// the lock in arrival order; a waiter whose context is cancelled leaves the
// queue without acquiring.
type Mutex struct {
	mu      sync.Mutex
	locked  bool
	waiters []chan struct{}
}

// NewMutex creates a new FIFO mutex.
func NewMutex() *Mutex {
	return &Mutex{}
}

// Acquire blocks until the lock is held by the caller or ctx is done.
func (m *Mutex) Acquire(ctx context.Context) error {
	m.mu.Lock()
	if !m.locked && len(m.waiters) == 0 {
		m.locked = true
		m.mu.Unlock()
		return nil
	}

	ch := make(chan struct{})
	m.waiters = append(m.waiters, ch)
	m.mu.Unlock()

	select {
	case <-ch:
		// Ownership was handed over by the releasing holder.
		return nil
	case <-ctx.Done():
		m.mu.Lock()
		select {
		case <-ch:
			// The grant raced with cancellation; we own the lock now and
			// must pass it on before reporting the cancellation.
			m.releaseLocked()
			m.mu.Unlock()
			return ctx.Err()
		default:
		}
		m.removeWaiter(ch)
		m.mu.Unlock()
		return ctx.Err()
	}
}

// Release releases the lock, handing it to the oldest waiter if any.
func (m *Mutex) Release() {
	m.mu.Lock()
	m.releaseLocked()
	m.mu.Unlock()
}

// releaseLocked hands the lock to the next waiter or marks it free.
// Caller must hold m.mu.
func (m *Mutex) releaseLocked() {
	if len(m.waiters) > 0 {
		ch := m.waiters[0]
		m.waiters = m.waiters[1:]
		// locked stays true: ownership transfers directly to the waiter.
		close(ch)
		return
	}
	m.locked = false
}

// removeWaiter drops a cancelled waiter from the queue. Caller must hold m.mu.
func (m *Mutex) removeWaiter(ch chan struct{}) {
	for i, w := range m.waiters {
		if w == ch {
			m.waiters = append(m.waiters[:i], m.waiters[i+1:]...)
			return
		}
	}
}

// RunExclusive acquires the lock, runs fn, and releases on every exit path.
// The fn error is returned unchanged; a failed acquire returns the context
// error without running fn.
func (m *Mutex) RunExclusive(ctx context.Context, fn func() error) error {
	if err := m.Acquire(ctx); err != nil {
		return err
	}
	defer m.Release()
	return fn()
}

// IsLocked reports whether the lock is currently held.
func (m *Mutex) IsLocked() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.locked
}

// WaitingCount reports how many callers are queued for the lock.
func (m *Mutex) WaitingCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.waiters)
}
