package syncx

import (
	"context"
	"sync"
)

const (
	waitRead = iota
	waitWrite
)

// rwWaiter is a queued acquisition request. The channel is closed when the
// lock is granted.
type rwWaiter struct {
	kind int
	ch   chan struct{}
}

// RWLock is a read/write lock with a single FIFO waiter queue. Any number of
// readers may hold the lock together; a writer holds it alone. Once a writer
// is queued, readers arriving after it park behind it (bounded writer
// latency), while readers admitted before the writer arrived drain first.
// Consecutive queued readers are granted as a batch.
type RWLock struct {
	mu      sync.Mutex
	readers int
	writer  bool
	queue   []*rwWaiter
}

// NewRWLock creates a new read/write lock.
func NewRWLock() *RWLock {
	return &RWLock{}
}

// AcquireRead blocks until shared (read) access is granted or ctx is done.
func (l *RWLock) AcquireRead(ctx context.Context) error {
	l.mu.Lock()
	if !l.writer && len(l.queue) == 0 {
		l.readers++
		l.mu.Unlock()
		return nil
	}
	w := &rwWaiter{kind: waitRead, ch: make(chan struct{})}
	l.queue = append(l.queue, w)
	l.mu.Unlock()
	return l.wait(ctx, w)
}

// AcquireWrite blocks until exclusive (write) access is granted or ctx is done.
func (l *RWLock) AcquireWrite(ctx context.Context) error {
	l.mu.Lock()
	if !l.writer && l.readers == 0 && len(l.queue) == 0 {
		l.writer = true
		l.mu.Unlock()
		return nil
	}
	w := &rwWaiter{kind: waitWrite, ch: make(chan struct{})}
	l.queue = append(l.queue, w)
	l.mu.Unlock()
	return l.wait(ctx, w)
}

func (l *RWLock) wait(ctx context.Context, w *rwWaiter) error {
	select {
	case <-w.ch:
		return nil
	case <-ctx.Done():
		l.mu.Lock()
		select {
		case <-w.ch:
			// Granted concurrently with cancellation: undo the grant.
			if w.kind == waitWrite {
				l.releaseWriteLocked()
			} else {
				l.releaseReadLocked()
			}
			l.mu.Unlock()
			return ctx.Err()
		default:
		}
		for i, q := range l.queue {
			if q == w {
				l.queue = append(l.queue[:i], l.queue[i+1:]...)
				break
			}
		}
		// Removing a queued writer may unblock readers behind it.
		l.grantLocked()
		l.mu.Unlock()
		return ctx.Err()
	}
}

// ReleaseRead releases shared access.
func (l *RWLock) ReleaseRead() {
	l.mu.Lock()
	l.releaseReadLocked()
	l.mu.Unlock()
}

// ReleaseWrite releases exclusive access.
func (l *RWLock) ReleaseWrite() {
	l.mu.Lock()
	l.releaseWriteLocked()
	l.mu.Unlock()
}

func (l *RWLock) releaseReadLocked() {
	l.readers--
	l.grantLocked()
}

func (l *RWLock) releaseWriteLocked() {
	l.writer = false
	l.grantLocked()
}

// grantLocked admits as many queue-head waiters as the current state allows:
// a writer only when the lock is idle, or every consecutive reader at the
// head of the queue. Caller must hold l.mu.
func (l *RWLock) grantLocked() {
	if l.writer {
		return
	}
	if len(l.queue) == 0 {
		return
	}
	if l.queue[0].kind == waitWrite {
		if l.readers == 0 {
			w := l.queue[0]
			l.queue = l.queue[1:]
			l.writer = true
			close(w.ch)
		}
		return
	}
	// Admit the run of readers at the head of the queue.
	for len(l.queue) > 0 && l.queue[0].kind == waitRead {
		w := l.queue[0]
		l.queue = l.queue[1:]
		l.readers++
		close(w.ch)
	}
}

// RunRead acquires shared access, runs fn, and releases on every exit path.
func (l *RWLock) RunRead(ctx context.Context, fn func() error) error {
	if err := l.AcquireRead(ctx); err != nil {
		return err
	}
	defer l.ReleaseRead()
	return fn()
}

// RunWrite acquires exclusive access, runs fn, and releases on every exit path.
func (l *RWLock) RunWrite(ctx context.Context, fn func() error) error {
	if err := l.AcquireWrite(ctx); err != nil {
		return err
	}
	defer l.ReleaseWrite()
	return fn()
}

// ActiveReaders reports the number of readers currently holding the lock.
func (l *RWLock) ActiveReaders() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.readers
}

// IsWriteLocked reports whether a writer currently holds the lock.
func (l *RWLock) IsWriteLocked() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.writer
}

// WaitingWriters reports how many writers are queued.
func (l *RWLock) WaitingWriters() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for _, w := range l.queue {
		if w.kind == waitWrite {
			n++
		}
	}
	return n
}

// WaitingReaders reports how many readers are queued behind a writer.
func (l *RWLock) WaitingReaders() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for _, w := range l.queue {
		if w.kind == waitRead {
			n++
		}
	}
	return n
}
