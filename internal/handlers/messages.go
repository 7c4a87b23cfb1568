package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/crewsync/crewsync/internal/chat"
	"github.com/crewsync/crewsync/internal/domain"
	"github.com/crewsync/crewsync/internal/middleware"
)

const defaultHistoryLimit = 50

// MessageHandler serves the REST surface of the message log: history,
// conversation summaries, sends that do not originate on a socket, and
// bulk read marking.
type MessageHandler struct {
	chatService *chat.Service
	messages    domain.MessageRepository
}

// NewMessageHandler creates a new message handler.
func NewMessageHandler(chatService *chat.Service, messages domain.MessageRepository) *MessageHandler {
	return &MessageHandler{
		chatService: chatService,
		messages:    messages,
	}
}

// GetHistory returns one conversation's messages, oldest first. Exactly one
// of recipientId or groupId selects the conversation.
func (h *MessageHandler) GetHistory(c echo.Context) error {
	q := domain.HistoryQuery{
		UserID:      middleware.UserID(c),
		RecipientID: c.QueryParam("recipientId"),
		GroupID:     c.QueryParam("groupId"),
		Limit:       intQueryParam(c, "limit", defaultHistoryLimit),
		Skip:        intQueryParam(c, "skip", 0),
	}

	if (q.RecipientID == "") == (q.GroupID == "") {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    "BAD_REQUEST",
			Message: "exactly one of recipientId or groupId is required",
		})
	}

	messages, err := h.messages.History(c.Request().Context(), q)
	if err != nil {
		slog.Error("failed to load history", "error", err)
		return c.JSON(http.StatusInternalServerError, ErrorResponse{
			Code:    "INTERNAL",
			Message: "failed to load messages",
		})
	}

	return c.JSON(http.StatusOK, messages)
}

// GetConversations returns the caller's direct conversations, most recent
// first, each with its unread count.
func (h *MessageHandler) GetConversations(c echo.Context) error {
	conversations, err := h.messages.Conversations(c.Request().Context(), middleware.UserID(c))
	if err != nil {
		slog.Error("failed to load conversations", "error", err)
		return c.JSON(http.StatusInternalServerError, ErrorResponse{
			Code:    "INTERNAL",
			Message: "failed to load conversations",
		})
	}

	return c.JSON(http.StatusOK, conversations)
}

// Send runs the delivery pipeline for a message posted over REST. Online
// recipients still receive it on their sockets; the sender gets the stored
// message back in the response instead of a messageSent event.
func (h *MessageHandler) Send(c echo.Context) error {
	var req SendMessageRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Code: "BAD_REQUEST", Message: "invalid request body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	}

	msg, err := h.chatService.SendMessage(c.Request().Context(), "", chat.SendMessagePayload{
		SenderID:   middleware.UserID(c),
		ReceiverID: req.ReceiverID,
		GroupID:    req.GroupID,
		Content:    req.Content,
		FileURL:    req.FileURL,
		FileName:   req.FileName,
		FileType:   req.FileType,
	})
	if err != nil {
		return sendError(c, err)
	}

	return c.JSON(http.StatusCreated, msg)
}

// MarkConversationRead marks every unread message the caller received in
// one conversation as read.
func (h *MessageHandler) MarkConversationRead(c echo.Context) error {
	var req MarkReadRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Code: "BAD_REQUEST", Message: "invalid request body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	}

	updated, err := h.chatService.MarkConversationRead(c.Request().Context(), middleware.UserID(c), req.ChatID, req.IsGroup)
	if err != nil {
		slog.Error("failed to mark conversation read", "error", err)
		return c.JSON(http.StatusInternalServerError, ErrorResponse{
			Code:    "INTERNAL",
			Message: "failed to mark messages read",
		})
	}

	return c.JSON(http.StatusOK, MarkReadResponse{Updated: updated})
}

// GetUnreadCount returns the caller's unread direct message count.
func (h *MessageHandler) GetUnreadCount(c echo.Context) error {
	count, err := h.messages.UnreadCount(c.Request().Context(), middleware.UserID(c))
	if err != nil {
		slog.Error("failed to count unread messages", "error", err)
		return c.JSON(http.StatusInternalServerError, ErrorResponse{
			Code:    "INTERNAL",
			Message: "failed to count unread messages",
		})
	}

	return c.JSON(http.StatusOK, UnreadCountResponse{Count: count})
}

func sendError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return c.JSON(http.StatusBadRequest, ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	case errors.Is(err, domain.ErrGroupNotFound), errors.Is(err, domain.ErrNotFound):
		return c.JSON(http.StatusNotFound, ErrorResponse{Code: "NOT_FOUND", Message: err.Error()})
	case errors.Is(err, domain.ErrNotGroupMember):
		return c.JSON(http.StatusForbidden, ErrorResponse{Code: "FORBIDDEN", Message: err.Error()})
	default:
		slog.Error("failed to send message", "error", err)
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Code: "INTERNAL", Message: "failed to send message"})
	}
}

func intQueryParam(c echo.Context, name string, fallback int) int {
	raw := c.QueryParam(name)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}
