package server

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/kidusaman/StudyGroup-Backend/internal/domain"
	apperrors "github.com/kidusaman/StudyGroup-Backend/internal/errors"
)

type sendMessageRequest struct {
	Message string `json:"message"`
	LocalID string `json:"localId"`
}

type sendPrivateMessageRequest struct {
	ReceiverID int64  `json:"receiver_id"`
	Message    string `json:"message"`
}

func (s *Server) handleListConversations(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	partners, err := s.chats.ListConversationPartners(c.Request().Context(), userID)
	if err != nil {
		return mapDomainError(err)
	}
	return c.JSON(http.StatusOK, map[string]any{"partners": partners})
}

func (s *Server) handleListPrivateMessages(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	otherID, err := pathID(c, "userId")
	if err != nil {
		return err
	}

	messages, err := s.chats.ListPrivateMessages(c.Request().Context(), userID, otherID)
	if err != nil {
		return mapDomainError(err)
	}
	return c.JSON(http.StatusOK, messages)
}

func (s *Server) handleSendPrivateMessage(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	var req sendPrivateMessageRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.ValidationError("invalid request body")
	}
	if req.ReceiverID <= 0 {
		return apperrors.ValidationError("receiver_id is required")
	}
	if strings.TrimSpace(req.Message) == "" {
		return apperrors.ValidationError("message must not be empty")
	}

	message, err := s.chats.CreatePrivateMessage(c.Request().Context(), userID, req.ReceiverID, req.Message)
	if err != nil {
		return mapDomainError(err)
	}

	// Real-time delivery to the recipient's tabs and the sender's other tabs.
	event := domain.Event{Name: domain.EventReceivePrivateMessage, Payload: message}
	s.publisher.Publish(domain.UserRoom(req.ReceiverID), event)
	s.publisher.Publish(domain.UserRoom(userID), event)

	return c.JSON(http.StatusCreated, message)
}

func (s *Server) handleMarkMessageRead(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	messageID, err := pathID(c, "messageId")
	if err != nil {
		return err
	}

	message, err := s.chats.MarkPrivateMessageRead(c.Request().Context(), messageID, userID)
	if err != nil {
		return mapDomainError(err)
	}
	return c.JSON(http.StatusOK, message)
}

func (s *Server) handleListGroupMessages(c echo.Context) error {
	if _, err := currentUserID(c); err != nil {
		return err
	}
	groupID, err := pathID(c, "groupId")
	if err != nil {
		return err
	}

	messages, err := s.chats.ListGroupMessages(c.Request().Context(), groupID)
	if err != nil {
		return mapDomainError(err)
	}
	return c.JSON(http.StatusOK, messages)
}

func (s *Server) handleSendGroupMessage(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	groupID, err := pathID(c, "groupId")
	if err != nil {
		return err
	}

	var req sendMessageRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.ValidationError("invalid request body")
	}
	if strings.TrimSpace(req.Message) == "" {
		return apperrors.ValidationError("message must not be empty")
	}

	message, err := s.chats.CreateGroupMessage(c.Request().Context(), groupID, userID, req.Message)
	if err != nil {
		return mapDomainError(err)
	}
	message.LocalID = req.LocalID

	s.publisher.Publish(domain.GroupRoom(groupID), domain.Event{
		Name:    domain.EventReceiveGroupMessage,
		Payload: message,
	})

	return c.JSON(http.StatusCreated, message)
}
