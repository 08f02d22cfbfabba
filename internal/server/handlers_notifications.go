package server

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

func (s *Server) handleListNotifications(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	notifications, err := s.notifications.ListByUser(c.Request().Context(), userID)
	if err != nil {
		return mapDomainError(err)
	}
	return c.JSON(http.StatusOK, notifications)
}

func (s *Server) handleUnreadCount(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	count, err := s.notifications.CountUnread(c.Request().Context(), userID)
	if err != nil {
		return mapDomainError(err)
	}
	return c.JSON(http.StatusOK, map[string]int{"unread_count": count})
}

func (s *Server) handleMarkNotificationRead(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	notificationID, err := pathID(c, "notificationId")
	if err != nil {
		return err
	}

	notification, err := s.notifications.MarkRead(c.Request().Context(), notificationID, userID)
	if err != nil {
		return mapDomainError(err)
	}
	return c.JSON(http.StatusOK, notification)
}
