package store

import "sync"

// Store hosts the review snapshot behind a single serialized dispatch
// point. All mutation flows through Dispatch, one reduction at a time;
// readers always observe a complete, consistent snapshot version.
type Store struct {
	mu       sync.RWMutex
	snap     Snapshot
	watchers []*watcher
}

type watcher struct {
	ch     chan Snapshot
	closed bool
}

// New creates a Store with an empty initial snapshot. The snapshot lives
// for the lifetime of the client session; it is never deleted or reset.
func New() *Store {
	return &Store{}
}

// Dispatch reduces one event into the snapshot and returns the resulting
// version. Dispatch calls are serialized; concurrent callers queue on the
// store lock rather than interleaving reductions.
func (s *Store) Dispatch(event Event) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snap = Reduce(s.snap, event)
	for _, w := range s.watchers {
		w.notify(s.snap)
	}
	return s.snap
}

// Snapshot returns the current snapshot version. The returned value is
// safe to hold indefinitely; later dispatches never change it.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}

// Watch subscribes to snapshot versions. Each dispatch delivers the new
// snapshot to the returned channel; a consumer that falls behind skips
// intermediate versions rather than blocking dispatch. The cancel
// function releases the subscription and closes the channel.
func (s *Store) Watch() (<-chan Snapshot, func()) {
	w := &watcher{ch: make(chan Snapshot, 1)}

	s.mu.Lock()
	s.watchers = append(s.watchers, w)
	s.mu.Unlock()

	cancel := func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if w.closed {
			return
		}
		w.closed = true
		for i, cur := range s.watchers {
			if cur == w {
				s.watchers = append(s.watchers[:i], s.watchers[i+1:]...)
				break
			}
		}
		close(w.ch)
	}
	return w.ch, cancel
}

// notify delivers a snapshot without blocking dispatch. If the watcher
// still holds an undelivered version it is replaced by the new one.
// Callers hold the store lock, so notify never races with cancel.
func (w *watcher) notify(snap Snapshot) {
	if w.closed {
		return
	}
	select {
	case w.ch <- snap:
	default:
		select {
		case <-w.ch:
		default:
		}
		w.ch <- snap
	}
}
