package server

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/crewsync/crewsync/internal/middleware"
)

// RegisterRoutes sets up all the application routes.
func (s *Server) RegisterRoutes() {
	auth := middleware.Auth(s.userStore)

	s.E.GET("/health", func(c echo.Context) error {
		return c.String(http.StatusOK, "OK")
	})

	// The socket authenticates itself with an authenticate event after the
	// upgrade, so the route carries no bearer-token middleware.
	s.E.GET("/ws", s.gateway.Handler())

	api := s.E.Group("/api", auth)

	api.GET("/messages", s.messageHandler.GetHistory)
	api.POST("/messages", s.messageHandler.Send)
	api.POST("/messages/read", s.messageHandler.MarkConversationRead)
	api.GET("/messages/unread-count", s.messageHandler.GetUnreadCount)
	api.GET("/conversations", s.messageHandler.GetConversations)

	api.GET("/notifications", s.notificationHandler.List)
	api.POST("/notifications", s.notificationHandler.Create)
	api.POST("/notifications/:id/read", s.notificationHandler.MarkRead)
	api.GET("/notifications/unread-count", s.notificationHandler.GetUnreadCount)
}
