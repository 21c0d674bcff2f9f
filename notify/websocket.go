package notify

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// WebsocketSource delivers invalidations pushed over a websocket. Frames
// are JSON-encoded Invalidation messages; frames that do not decode are
// still treated as invalidations (the signal is the frame itself).
type WebsocketSource struct {
	conn *websocket.Conn

	ch     chan Invalidation
	mu     sync.Mutex
	closed bool
}

// WebsocketConfig holds websocket source configuration.
type WebsocketConfig struct {
	// URL is the websocket endpoint (ws:// or wss://).
	URL string

	// HandshakeTimeout bounds the dial. Default 10s.
	HandshakeTimeout time.Duration

	// MaxMessageSize limits incoming frame size. Default 64KB.
	MaxMessageSize int64
}

// NewWebsocketSource dials the endpoint and starts reading invalidations.
func NewWebsocketSource(cfg WebsocketConfig) (*WebsocketSource, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("websocket source: url required")
	}
	if cfg.HandshakeTimeout <= 0 {
		cfg.HandshakeTimeout = 10 * time.Second
	}
	if cfg.MaxMessageSize <= 0 {
		cfg.MaxMessageSize = 64 * 1024
	}

	dialer := websocket.Dialer{HandshakeTimeout: cfg.HandshakeTimeout}
	conn, _, err := dialer.Dial(cfg.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("websocket dial: %w", err)
	}
	conn.SetReadLimit(cfg.MaxMessageSize)

	s := &WebsocketSource{
		conn: conn,
		ch:   make(chan Invalidation, 16),
	}
	go s.readLoop()
	return s, nil
}

// readLoop forwards frames until the connection drops or Close is called.
func (s *WebsocketSource) readLoop() {
	defer s.shutdown()

	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			return
		}

		inv := Invalidation{At: time.Now()}
		if decodeErr := json.Unmarshal(data, &inv); decodeErr != nil {
			inv = Invalidation{Reason: string(data), At: time.Now()}
		}
		if inv.At.IsZero() {
			inv.At = time.Now()
		}

		s.mu.Lock()
		if s.closed {
			s.mu.Unlock()
			return
		}
		select {
		case s.ch <- inv:
		default:
			select {
			case <-s.ch:
			default:
			}
			s.ch <- inv
		}
		s.mu.Unlock()
	}
}

// Invalidations returns the delivery channel.
func (s *WebsocketSource) Invalidations() <-chan Invalidation {
	return s.ch
}

// Close closes the connection and the delivery channel.
func (s *WebsocketSource) Close() error {
	err := s.conn.Close()
	s.shutdown()
	return err
}

func (s *WebsocketSource) shutdown() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.conn.Close()
	close(s.ch)
}
