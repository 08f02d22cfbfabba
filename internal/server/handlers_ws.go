package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"

	"github.com/kidusaman/StudyGroup-Backend/internal/domain"
	"github.com/kidusaman/StudyGroup-Backend/internal/realtime"
)

// Token bucket per connection for inbound frames.
const (
	inboundFrameRate  = rate.Limit(10)
	inboundFrameBurst = 20
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// clientFrame is one inbound protocol message.
type clientFrame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

type joinGroupData struct {
	GroupID int64 `json:"groupId"`
}

type privateMessageData struct {
	RecipientID int64  `json:"recipientId"`
	Message     string `json:"message"`
}

type groupMessageData struct {
	GroupID int64  `json:"groupId"`
	Message string `json:"message"`
	LocalID string `json:"localId"`
}

func (s *Server) handleWebSocket(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return fmt.Errorf("failed to upgrade WebSocket: %w", err)
	}

	session, err := s.hub.Connect(conn, userID)
	if err != nil {
		slog.Warn("Rejecting WebSocket connection", "user_id", userID, "error", err)
		_ = conn.Close()
		return nil
	}

	limiter := rate.NewLimiter(inboundFrameRate, inboundFrameBurst)

	// Read pump, blocks until the connection closes.
	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			break
		}
		if !limiter.Allow() {
			slog.Debug("Dropping frame, rate limit exceeded", "user_id", userID)
			continue
		}
		s.handleClientFrame(c.Request().Context(), session, raw)
	}

	s.hub.Disconnect(session)
	return nil //nolint:nilerr // ReadMessage err is block-scoped; outer err is nil
}

func (s *Server) handleClientFrame(ctx context.Context, session *realtime.Session, raw []byte) {
	var frame clientFrame
	if err := json.Unmarshal(raw, &frame); err != nil {
		slog.Debug("Ignoring malformed frame", "user_id", session.UserID, "error", err)
		return
	}

	switch frame.Event {
	case "joinPrivateChat":
		// Session already sits in its user room; nothing to do.

	case "joinGroup":
		var data joinGroupData
		if err := json.Unmarshal(frame.Data, &data); err != nil || data.GroupID <= 0 {
			return
		}
		s.hub.Join(session, domain.GroupRoom(data.GroupID))

	case "leaveGroup":
		var data joinGroupData
		if err := json.Unmarshal(frame.Data, &data); err != nil || data.GroupID <= 0 {
			return
		}
		s.hub.Leave(session, domain.GroupRoom(data.GroupID))

	case "sendPrivateMessage":
		var data privateMessageData
		if err := json.Unmarshal(frame.Data, &data); err != nil {
			return
		}
		s.deliverPrivateMessage(ctx, session, data)

	case "sendGroupMessage":
		var data groupMessageData
		if err := json.Unmarshal(frame.Data, &data); err != nil {
			return
		}
		s.deliverGroupMessage(ctx, session, data)

	default:
		slog.Debug("Ignoring unknown event", "event", frame.Event, "user_id", session.UserID)
	}
}

func (s *Server) deliverPrivateMessage(ctx context.Context, session *realtime.Session, data privateMessageData) {
	if data.RecipientID <= 0 || strings.TrimSpace(data.Message) == "" {
		return
	}

	message, err := s.chats.CreatePrivateMessage(ctx, session.UserID, data.RecipientID, data.Message)
	if err != nil {
		slog.Error("Failed to persist private message", "sender_id", session.UserID, "recipient_id", data.RecipientID, "error", err)
		return
	}

	event := domain.Event{Name: domain.EventReceivePrivateMessage, Payload: message}
	s.publisher.Publish(domain.UserRoom(data.RecipientID), event)
	s.publisher.Publish(domain.UserRoom(session.UserID), event)
}

func (s *Server) deliverGroupMessage(ctx context.Context, session *realtime.Session, data groupMessageData) {
	if data.GroupID <= 0 || strings.TrimSpace(data.Message) == "" {
		return
	}

	message, err := s.chats.CreateGroupMessage(ctx, data.GroupID, session.UserID, data.Message)
	if err != nil {
		slog.Error("Failed to persist group message", "group_id", data.GroupID, "user_id", session.UserID, "error", err)
		return
	}
	message.LocalID = data.LocalID

	s.publisher.Publish(domain.GroupRoom(data.GroupID), domain.Event{
		Name:    domain.EventReceiveGroupMessage,
		Payload: message,
	})
}
