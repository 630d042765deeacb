package ws

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Event is one inbound frame: a named event with a raw payload decoded per
// event name before it reaches business logic.
type Event struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

type outFrame struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// frameWriter is the subset of *websocket.Conn a session writes through.
type frameWriter interface {
	WriteJSON(v any) error
	Close() error
}

// Session is the per-connection record: identity plus connection handle.
// Created once at handshake after authentication succeeds; every event
// handler receives it explicitly.
type Session struct {
	ID          string
	UserID      int
	IP          string
	ConnectedAt time.Time

	conn frameWriter
	mu   sync.Mutex
}

// NewSession wraps an authenticated connection.
func NewSession(userID int, conn frameWriter) *Session {
	return &Session{
		ID:          uuid.NewString(),
		UserID:      userID,
		ConnectedAt: time.Now(),
		conn:        conn,
	}
}

// Send writes one event frame. Safe for concurrent use; gorilla connections
// allow only a single concurrent writer.
func (s *Session) Send(event string, payload any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn.WriteJSON(outFrame{Event: event, Data: payload})
}

// Close closes the underlying connection.
func (s *Session) Close() error {
	return s.conn.Close()
}
