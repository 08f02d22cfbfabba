package realtime

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"
)

const (
	writeDeadline = 5 * time.Second
	pingInterval  = 30 * time.Second
	pongDeadline  = 60 * time.Second
)

// Session is one WebSocket connection owned by an authenticated user. All
// outbound traffic flows through a buffered send channel drained by a single
// writer goroutine, so delivery never blocks a publisher and a stalled client
// only fills its own buffer.
type Session struct {
	ID     uuid.UUID
	UserID int64

	conn     *websocket.Conn
	clock    clockwork.Clock
	sendCh   chan []byte
	doneCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

func newSession(conn *websocket.Conn, userID int64, clock clockwork.Clock, sendBuffer int) *Session {
	s := &Session{
		ID:     uuid.New(),
		UserID: userID,
		conn:   conn,
		clock:  clock,
		sendCh: make(chan []byte, sendBuffer),
		doneCh: make(chan struct{}),
	}
	s.configurePongHandler()
	s.wg.Add(1)
	go s.writeLoop()
	return s
}

func (s *Session) writeLoop() {
	ticker := s.clock.NewTicker(pingInterval)
	defer ticker.Stop()
	defer s.wg.Done()

	for {
		select {
		case msg, ok := <-s.sendCh:
			if !ok {
				return
			}
			s.updateWriteDeadline()
			if err := s.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.Chan():
			s.updateWriteDeadline()
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-s.doneCh:
			return
		}
	}
}

// trySend queues data without blocking. A false return means the client's
// buffer is full and the session should be treated as slow.
func (s *Session) trySend(data []byte) bool {
	select {
	case s.sendCh <- data:
		return true
	default:
		return false
	}
}

// stop terminates the writer goroutine and closes the connection.
func (s *Session) stop() {
	s.stopOnce.Do(func() {
		close(s.doneCh)
		_ = s.conn.Close()
	})
	s.wg.Wait()
}

// stopGraceful sends a close frame with reason before closing.
func (s *Session) stopGraceful(reason string) {
	s.stopOnce.Do(func() {
		close(s.doneCh)

		// Wait for the writer to exit so the close frame is not a
		// concurrent write.
		s.wg.Wait()

		closeMsg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, reason)
		s.updateWriteDeadline()
		_ = s.conn.WriteMessage(websocket.CloseMessage, closeMsg)
		_ = s.conn.Close()
	})
}

func (s *Session) configurePongHandler() {
	s.updateReadDeadline()
	s.conn.SetPongHandler(func(string) error {
		s.updateReadDeadline()
		return nil
	})
}

func (s *Session) updateWriteDeadline() {
	_ = s.conn.SetWriteDeadline(s.clock.Now().Add(writeDeadline))
}

func (s *Session) updateReadDeadline() {
	_ = s.conn.SetReadDeadline(s.clock.Now().Add(pongDeadline))
}
