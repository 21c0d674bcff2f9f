package notify

import (
	"sync"
	"time"
)

// TickerSource emits an invalidation on a fixed interval: the degenerate
// poll, for deployments without a push channel.
type TickerSource struct {
	ticker *time.Ticker
	ch     chan Invalidation
	done   chan struct{}
	once   sync.Once
}

// NewTickerSource creates a source firing every interval.
func NewTickerSource(interval time.Duration) *TickerSource {
	s := &TickerSource{
		ticker: time.NewTicker(interval),
		ch:     make(chan Invalidation, 1),
		done:   make(chan struct{}),
	}
	go s.run()
	return s
}

func (s *TickerSource) run() {
	// The delivery channel is closed here, not in Close, so a tick send
	// can never race with the close.
	for {
		select {
		case <-s.done:
			close(s.ch)
			return
		case t := <-s.ticker.C:
			inv := Invalidation{Reason: "poll", At: t}
			select {
			case s.ch <- inv:
			default:
			}
		}
	}
}

// Invalidations returns the delivery channel.
func (s *TickerSource) Invalidations() <-chan Invalidation {
	return s.ch
}

// Close stops the ticker.
func (s *TickerSource) Close() error {
	s.once.Do(func() {
		s.ticker.Stop()
		close(s.done)
	})
	return nil
}
