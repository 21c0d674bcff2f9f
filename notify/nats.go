package notify

import (
	"fmt"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
)

// NATSSource delivers invalidations published on a NATS subject. The
// payload is ignored beyond logging: any message on the subject means
// local review data may be outdated.
type NATSSource struct {
	conn    *nats.Conn
	sub     *nats.Subscription
	ownConn bool

	ch       chan Invalidation
	mu       sync.Mutex
	closed   bool
}

// NATSConfig holds NATS source configuration.
type NATSConfig struct {
	// URL is the NATS server URL (e.g., "nats://localhost:4222").
	// Ignored when Conn is set.
	URL string

	// Conn is an existing connection to reuse. The source will not close
	// a connection it did not open.
	Conn *nats.Conn

	// Subject to subscribe to (e.g., "review.invalidate").
	Subject string

	// Name is the client name for identification.
	Name string
}

// NewNATSSource subscribes to the configured subject.
func NewNATSSource(cfg NATSConfig) (*NATSSource, error) {
	if cfg.Subject == "" {
		return nil, fmt.Errorf("nats source: subject required")
	}

	conn := cfg.Conn
	ownConn := false
	if conn == nil {
		url := cfg.URL
		if url == "" {
			url = nats.DefaultURL
		}
		var err error
		conn, err = nats.Connect(url, nats.Name(cfg.Name))
		if err != nil {
			return nil, fmt.Errorf("nats connect: %w", err)
		}
		ownConn = true
	}

	s := &NATSSource{
		conn:    conn,
		ownConn: ownConn,
		ch:      make(chan Invalidation, 16),
	}

	sub, err := conn.Subscribe(cfg.Subject, s.deliver)
	if err != nil {
		if ownConn {
			conn.Close()
		}
		return nil, fmt.Errorf("nats subscribe: %w", err)
	}
	s.sub = sub
	return s, nil
}

// deliver forwards a NATS message as an invalidation without blocking the
// NATS callback goroutine.
func (s *NATSSource) deliver(msg *nats.Msg) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}

	inv := Invalidation{Reason: string(msg.Data), At: time.Now()}
	select {
	case s.ch <- inv:
	default:
		select {
		case <-s.ch:
		default:
		}
		s.ch <- inv
	}
}

// Invalidations returns the delivery channel.
func (s *NATSSource) Invalidations() <-chan Invalidation {
	return s.ch
}

// Close unsubscribes and, if the source opened the connection, closes it.
func (s *NATSSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true

	err := s.sub.Unsubscribe()
	if s.ownConn {
		s.conn.Close()
	}
	close(s.ch)
	return err
}
