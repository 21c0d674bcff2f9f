package notify

import (
	"sync"
	"time"
)

// MemorySource is an in-process invalidation source, useful for tests and
// for wiring application events (e.g. "user changed project") into the
// staleness broadcast.
type MemorySource struct {
	mu     sync.Mutex
	ch     chan Invalidation
	closed bool
}

// NewMemorySource creates a source with a small delivery buffer.
func NewMemorySource() *MemorySource {
	return &MemorySource{
		ch: make(chan Invalidation, 16),
	}
}

// Invalidate emits an invalidation. Returns ErrClosed after Close.
// Delivery is non-blocking; if the consumer is behind, the oldest
// undelivered invalidation is dropped (they are idempotent signals).
func (s *MemorySource) Invalidate(reason string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}

	inv := Invalidation{Reason: reason, At: time.Now()}
	select {
	case s.ch <- inv:
	default:
		select {
		case <-s.ch:
		default:
		}
		s.ch <- inv
	}
	return nil
}

// Invalidations returns the delivery channel.
func (s *MemorySource) Invalidations() <-chan Invalidation {
	return s.ch
}

// Close shuts down the source.
func (s *MemorySource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	close(s.ch)
	return nil
}
