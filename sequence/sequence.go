package sequence

import "sync/atomic"

// FetchID is an opaque ordering token for in-flight cluster fetches.
// IDs are unique and strictly increasing within a process; the only
// properties callers may rely on are uniqueness and total order.
type FetchID uint64

// Sequencer issues fetch ids and decides whether an arriving response
// should still be applied. The zero value is ready to use.
type Sequencer struct {
	counter atomic.Uint64
}

// NewSequencer creates a new Sequencer.
func NewSequencer() *Sequencer {
	return &Sequencer{}
}

// NextID returns the next fetch id. Safe for concurrent use.
func (s *Sequencer) NextID() FetchID {
	return FetchID(s.counter.Add(1))
}

// Accept reports whether a response carrying candidate should overwrite
// state last written by lastAccepted. Ties are accepted: ids are unique,
// so equality only occurs when re-evaluating the id already applied.
// A false result is not an error; the response is simply superseded.
func Accept(candidate, lastAccepted FetchID) bool {
	return candidate >= lastAccepted
}
