package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/crewsync/crewsync/internal/domain"
	"github.com/crewsync/crewsync/internal/middleware"
	"github.com/crewsync/crewsync/internal/notify"
)

const defaultNotificationLimit = 50

// NotificationHandler serves the persisted notification records.
type NotificationHandler struct {
	notifyService *notify.Service
}

// NewNotificationHandler creates a new notification handler.
func NewNotificationHandler(notifyService *notify.Service) *NotificationHandler {
	return &NotificationHandler{notifyService: notifyService}
}

// List returns the caller's notifications, newest first.
func (h *NotificationHandler) List(c echo.Context) error {
	limit := intQueryParam(c, "limit", defaultNotificationLimit)

	records, err := h.notifyService.ListForUser(c.Request().Context(), middleware.UserID(c), limit)
	if err != nil {
		slog.Error("failed to list notifications", "error", err)
		return c.JSON(http.StatusInternalServerError, ErrorResponse{
			Code:    "INTERNAL",
			Message: "failed to load notifications",
		})
	}

	return c.JSON(http.StatusOK, records)
}

// Create persists a notification and fans it out to its targets.
func (h *NotificationHandler) Create(c echo.Context) error {
	var req CreateNotificationRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Code: "BAD_REQUEST", Message: "invalid request body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	}

	record, err := h.notifyService.Create(c.Request().Context(), &domain.Notification{
		Title:       req.Title,
		Body:        req.Message,
		Type:        domain.NotificationType(req.Type),
		Metadata:    req.Metadata,
		SenderID:    middleware.UserID(c),
		TargetUsers: req.TargetUsers,
	})
	if err != nil {
		if errors.Is(err, domain.ErrValidation) {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Code: "VALIDATION", Message: err.Error()})
		}
		slog.Error("failed to create notification", "error", err)
		return c.JSON(http.StatusInternalServerError, ErrorResponse{
			Code:    "INTERNAL",
			Message: "failed to create notification",
		})
	}

	return c.JSON(http.StatusCreated, record)
}

// MarkRead records that the caller has read one notification. Marking an
// already-read notification is a no-op, not an error.
func (h *NotificationHandler) MarkRead(c echo.Context) error {
	record, err := h.notifyService.MarkRead(c.Request().Context(), c.Param("id"), middleware.UserID(c))
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			return c.JSON(http.StatusNotFound, ErrorResponse{Code: "NOT_FOUND", Message: "notification not found"})
		case errors.Is(err, domain.ErrNotTargeted):
			return c.JSON(http.StatusForbidden, ErrorResponse{Code: "FORBIDDEN", Message: "notification is not addressed to you"})
		default:
			slog.Error("failed to mark notification read", "error", err)
			return c.JSON(http.StatusInternalServerError, ErrorResponse{
				Code:    "INTERNAL",
				Message: "failed to mark notification read",
			})
		}
	}

	return c.JSON(http.StatusOK, record)
}

// GetUnreadCount returns how many of the caller's notifications are unread.
func (h *NotificationHandler) GetUnreadCount(c echo.Context) error {
	count, err := h.notifyService.UnreadCount(c.Request().Context(), middleware.UserID(c))
	if err != nil {
		slog.Error("failed to count unread notifications", "error", err)
		return c.JSON(http.StatusInternalServerError, ErrorResponse{
			Code:    "INTERNAL",
			Message: "failed to count unread notifications",
		})
	}

	return c.JSON(http.StatusOK, UnreadCountResponse{Count: count})
}
