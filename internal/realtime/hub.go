package realtime

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"

	"github.com/kidusaman/StudyGroup-Backend/internal/domain"
	"github.com/kidusaman/StudyGroup-Backend/internal/metrics"
)

// Hub owns the session registry and implements domain.Publisher. Delivery is
// best-effort and at-most-once: events published while nobody is in the room
// are dropped, and a full client buffer costs that client its connection, not
// the publisher its latency.
type Hub struct {
	registry           *Registry
	clock              clockwork.Clock
	sendBuffer         int
	maxSessionsPerUser int
}

var _ domain.Publisher = (*Hub)(nil)

// NewHub creates a hub. sendBuffer is the per-session outbound queue length;
// maxSessionsPerUser caps concurrent connections per user (0 means unlimited).
func NewHub(clock clockwork.Clock, sendBuffer, maxSessionsPerUser int) *Hub {
	return &Hub{
		registry:           NewRegistry(),
		clock:              clock,
		sendBuffer:         sendBuffer,
		maxSessionsPerUser: maxSessionsPerUser,
	}
}

// Connect registers a new session for conn and joins the user's personal
// room, so notifications reach every open tab without an explicit join.
func (h *Hub) Connect(conn *websocket.Conn, userID int64) (*Session, error) {
	s := newSession(conn, userID, h.clock, h.sendBuffer)
	if !h.registry.AddIfUnderCap(s, h.maxSessionsPerUser) {
		s.stop()
		return nil, fmt.Errorf("max sessions per user (%d) reached", h.maxSessionsPerUser)
	}
	h.registry.Join(s, domain.UserRoom(userID))

	metrics.HubActiveSessions.Set(float64(h.registry.SessionCount()))
	metrics.HubActiveRooms.Set(float64(h.registry.RoomCount()))

	slog.Debug("Session connected", "session_id", s.ID.String(), "user_id", userID)
	return s, nil
}

// Join adds the session to a room, creating it lazily.
func (h *Hub) Join(s *Session, roomName string) {
	if h.registry.Join(s, roomName) {
		metrics.HubActiveRooms.Set(float64(h.registry.RoomCount()))
		slog.Debug("Session joined room", "session_id", s.ID.String(), "room", roomName)
	}
}

// Leave removes the session from a room, discarding the room if empty.
func (h *Hub) Leave(s *Session, roomName string) {
	h.registry.Leave(s, roomName)
	metrics.HubActiveRooms.Set(float64(h.registry.RoomCount()))
}

// Publish serializes the event once and delivers it to every current member
// of the room. Events to the same room arrive in publish order for every
// member; members whose buffers are full are evicted.
func (h *Hub) Publish(roomName string, event domain.Event) {
	data, err := json.Marshal(event)
	if err != nil {
		slog.Error("Failed to marshal event", "event", event.Name, "error", err)
		return
	}

	metrics.HubPublishesTotal.WithLabelValues(event.Name).Inc()

	delivered, slow := h.registry.Broadcast(roomName, data)
	metrics.HubDeliveriesTotal.Add(float64(delivered))

	for _, s := range slow {
		slog.Warn("Disconnecting slow client", "session_id", s.ID.String(), "user_id", s.UserID, "room", roomName)
		metrics.HubSlowClientsEvicted.Inc()
		h.Disconnect(s)
	}
}

// Disconnect removes the session from all rooms and closes its connection.
// Safe to call more than once.
func (h *Hub) Disconnect(s *Session) {
	if !h.registry.Remove(s) {
		return
	}
	s.stop()

	metrics.HubActiveSessions.Set(float64(h.registry.SessionCount()))
	metrics.HubActiveRooms.Set(float64(h.registry.RoomCount()))
	slog.Debug("Session disconnected", "session_id", s.ID.String(), "user_id", s.UserID)
}

// Shutdown closes every session with a close frame.
func (h *Hub) Shutdown() {
	sessions := h.registry.Sessions()
	slog.Info("Hub shutting down", "sessions", len(sessions))

	for _, s := range sessions {
		h.registry.Remove(s)
		s.stopGraceful("Server shutting down")
	}

	metrics.HubActiveSessions.Set(0)
	metrics.HubActiveRooms.Set(float64(h.registry.RoomCount()))
}

// SessionCount returns the number of connected sessions.
func (h *Hub) SessionCount() int {
	return h.registry.SessionCount()
}

// RoomSize returns the member count of the named room.
func (h *Hub) RoomSize(roomName string) int {
	return h.registry.RoomSize(roomName)
}
