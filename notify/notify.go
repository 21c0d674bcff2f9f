package notify

import (
	"context"
	"errors"
	"time"
)

// Common errors.
var (
	ErrClosed = errors.New("notification source closed")
)

// Invalidation signals that review data held locally may be outdated.
// It carries no payload beyond a reason: the reaction is always the same
// staleness broadcast, and fresh data arrives through normal fetches.
type Invalidation struct {
	// Reason describes what triggered the invalidation, for logging.
	Reason string `json:"reason"`

	// At is when the invalidation was observed.
	At time.Time `json:"at"`
}

// Source delivers invalidations from some producer: a push channel, a
// poll timer, or a test harness.
type Source interface {
	// Invalidations returns the delivery channel. The channel is closed
	// when the source shuts down.
	Invalidations() <-chan Invalidation

	// Close shuts down the source and releases resources.
	Close() error
}

// Pump forwards invalidations from a source to a handler (typically the
// coordinator's MarkStale trigger) until the context is canceled or the
// source closes. It returns the context error on cancellation, nil when
// the source closed.
func Pump(ctx context.Context, source Source, handle func(Invalidation)) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case inv, ok := <-source.Invalidations():
			if !ok {
				return nil
			}
			handle(inv)
		}
	}
}
