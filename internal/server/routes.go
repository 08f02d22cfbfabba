package server

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (s *Server) registerRoutes() {
	// Observability endpoints (no auth required)
	s.echo.GET("/health/live", s.handleLiveness)
	s.echo.GET("/health/ready", s.handleReadiness)
	s.echo.GET("/version", s.handleVersion)
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	api := s.echo.Group("/api", s.requireAuth)

	// Votes and acceptance
	api.GET("/answers/:answerId", s.handleGetAnswer)
	api.POST("/answers/:answerId/upvote", s.handleUpvote)
	api.POST("/answers/:answerId/downvote", s.handleDownvote)
	api.POST("/answers/:answerId/accept", s.handleAccept)
	api.POST("/answers/:answerId/unaccept", s.handleUnaccept)

	// Notifications
	api.GET("/notifications", s.handleListNotifications)
	api.GET("/notifications/count", s.handleUnreadCount)
	api.POST("/notifications/:notificationId/read", s.handleMarkNotificationRead)

	// Private messages
	api.POST("/private-messages", s.handleSendPrivateMessage)
	api.GET("/private-messages/conversations", s.handleListConversations)
	api.GET("/private-messages/:userId", s.handleListPrivateMessages)
	api.POST("/private-messages/:messageId/read", s.handleMarkMessageRead)

	// Group chat
	api.GET("/group-chat/:groupId", s.handleListGroupMessages)
	api.POST("/group-chat/:groupId", s.handleSendGroupMessage)

	// WebSocket (token via query parameter)
	s.echo.GET("/ws", s.handleWebSocket, s.requireAuth)
}
