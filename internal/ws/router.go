package ws

import (
	"log"
	"sync"

	"social-chat-service/internal/observability"
)

// Router maintains process-local room membership. Cross-process delivery
// is the Backplane's job; the router never assumes global visibility.
type Router struct {
	mu    sync.RWMutex
	rooms map[Room]map[*Session]bool
}

// NewRouter creates an empty router.
func NewRouter() *Router {
	return &Router{rooms: make(map[Room]map[*Session]bool)}
}

// Join adds the session to the room. Joining twice has no further effect.
func (r *Router) Join(s *Session, room Room) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rooms[room]; !ok {
		r.rooms[room] = make(map[*Session]bool)
	}
	r.rooms[room][s] = true
}

// Leave removes the session from the room.
func (r *Router) Leave(s *Session, room Room) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.dropLocked(s, room)
}

// LeaveAll removes the session from every room; used on disconnect.
func (r *Router) LeaveAll(s *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for room := range r.rooms {
		r.dropLocked(s, room)
	}
}

func (r *Router) dropLocked(s *Session, room Room) {
	if sessions, ok := r.rooms[room]; ok {
		delete(sessions, s)
		if len(sessions) == 0 {
			delete(r.rooms, room)
		}
	}
}

// InRoom reports whether the session is currently in the room.
func (r *Router) InRoom(s *Session, room Room) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.rooms[room][s]
}

// Deliver writes the event to every local session in the room. Sessions
// whose connection fails are closed and dropped from all rooms.
func (r *Router) Deliver(room Room, event string, payload any) {
	r.mu.RLock()
	sessions := make([]*Session, 0, len(r.rooms[room]))
	for s := range r.rooms[room] {
		sessions = append(sessions, s)
	}
	r.mu.RUnlock()

	for _, s := range sessions {
		if err := s.Send(event, payload); err != nil {
			log.Printf("ws write failed room=%s conn=%s: %v", room, s.ID, err)
			s.Close()
			r.LeaveAll(s)
			observability.IncWSEvent("room", "write_error")
		}
	}
}
