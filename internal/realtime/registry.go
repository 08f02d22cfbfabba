package realtime

import (
	"sync"

	"github.com/google/uuid"
)

// room holds the current members of one room name. Its mutex is held for the
// whole of a delivery pass, which is what gives publishes to the same room
// their per-room ordering.
type room struct {
	mu      sync.Mutex
	members map[uuid.UUID]*Session
}

// Registry tracks connected sessions and room membership. Rooms exist only
// while they have members: joining a missing room creates it, and the last
// leave discards it. The outer RWMutex guards the maps; each room carries its
// own lock so fan-out to one room never blocks another.
//
// Lock order is registry then room, and the registry lock is always released
// before a room lock is taken during delivery.
type Registry struct {
	mu       sync.RWMutex
	rooms    map[string]*room
	sessions map[uuid.UUID]*Session
	joined   map[uuid.UUID]map[string]struct{}
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		rooms:    make(map[string]*room),
		sessions: make(map[uuid.UUID]*Session),
		joined:   make(map[uuid.UUID]map[string]struct{}),
	}
}

// Add registers a connected session.
func (r *Registry) Add(s *Session) {
	r.AddIfUnderCap(s, 0)
}

// AddIfUnderCap registers a connected session unless its user already has
// maxPerUser registered sessions (0 means unlimited). The count check and the
// registration happen under one lock, so two simultaneous connects cannot
// both slip under the cap.
func (r *Registry) AddIfUnderCap(s *Session, maxPerUser int) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if maxPerUser > 0 {
		count := 0
		for _, existing := range r.sessions {
			if existing.UserID == s.UserID {
				count++
			}
		}
		if count >= maxPerUser {
			return false
		}
	}

	r.sessions[s.ID] = s
	r.joined[s.ID] = make(map[string]struct{})
	return true
}

// Remove unregisters a session and leaves every room it joined, discarding
// rooms it leaves empty. Returns false if the session was not registered.
func (r *Registry) Remove(s *Session) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[s.ID]; !ok {
		return false
	}
	for name := range r.joined[s.ID] {
		r.leaveLocked(s, name)
	}
	delete(r.joined, s.ID)
	delete(r.sessions, s.ID)
	return true
}

// Join adds the session to the named room, creating the room lazily. Returns
// false if the session is not registered.
func (r *Registry) Join(s *Session, name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	rooms, ok := r.joined[s.ID]
	if !ok {
		return false
	}

	rm, ok := r.rooms[name]
	if !ok {
		rm = &room{members: make(map[uuid.UUID]*Session)}
		r.rooms[name] = rm
	}

	rm.mu.Lock()
	rm.members[s.ID] = s
	rm.mu.Unlock()

	rooms[name] = struct{}{}
	return true
}

// Leave removes the session from the named room. The room is discarded when
// its last member leaves.
func (r *Registry) Leave(s *Session, name string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rooms, ok := r.joined[s.ID]
	if !ok {
		return
	}
	if _, ok := rooms[name]; !ok {
		return
	}
	delete(rooms, name)
	r.leaveLocked(s, name)
}

// leaveLocked removes s from the room's member map and garbage-collects the
// room if empty. Caller holds r.mu.
func (r *Registry) leaveLocked(s *Session, name string) {
	rm, ok := r.rooms[name]
	if !ok {
		return
	}

	rm.mu.Lock()
	delete(rm.members, s.ID)
	empty := len(rm.members) == 0
	rm.mu.Unlock()

	if empty {
		delete(r.rooms, name)
	}
}

// Broadcast delivers data to every current member of the named room. The room
// lock is held for the whole pass so concurrent publishes to the same room
// cannot interleave. Sessions whose buffers are full are skipped and returned
// for the caller to evict; eviction must not happen under the room lock.
func (r *Registry) Broadcast(name string, data []byte) (delivered int, slow []*Session) {
	r.mu.RLock()
	rm, ok := r.rooms[name]
	r.mu.RUnlock()
	if !ok {
		return 0, nil
	}

	rm.mu.Lock()
	defer rm.mu.Unlock()
	for _, s := range rm.members {
		if s.trySend(data) {
			delivered++
		} else {
			slow = append(slow, s)
		}
	}
	return delivered, slow
}

// Sessions returns a snapshot of all registered sessions.
func (r *Registry) Sessions() []*Session {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sessions := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		sessions = append(sessions, s)
	}
	return sessions
}

// SessionCount returns the number of registered sessions.
func (r *Registry) SessionCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// RoomCount returns the number of rooms with at least one member.
func (r *Registry) RoomCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms)
}

// RoomSize returns the member count of the named room, zero if absent.
func (r *Registry) RoomSize(name string) int {
	r.mu.RLock()
	rm, ok := r.rooms[name]
	r.mu.RUnlock()
	if !ok {
		return 0
	}
	rm.mu.Lock()
	defer rm.mu.Unlock()
	return len(rm.members)
}
