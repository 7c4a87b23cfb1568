package chat

import (
	"encoding/json"
	"log/slog"
	"time"

	"github.com/crewsync/crewsync/internal/domain"
)

// Client-to-server event names.
const (
	EventAuthenticate = "authenticate"
	EventJoinRoom     = "joinRoom"
	EventLeaveRoom    = "leaveRoom"
	EventSendMessage  = "sendMessage"
	EventTyping       = "typing"
	EventMessageRead  = "messageRead"
)

// Server-to-client event names.
const (
	EventReceiveMessage      = "receiveMessage"
	EventMessageSent         = "messageSent"
	EventUserTyping          = "userTyping"
	EventMessageStatusUpdate = "messageStatusUpdate"
	EventUserOnline          = "userOnline"
	EventUserOffline         = "userOffline"
	EventNotification        = "notification"
	EventError               = "error"
)

// Envelope is the wire shape of every client event: a tag plus a raw
// payload. The payload is decoded into the variant matching the event name
// and validated before it reaches pipeline logic.
type Envelope struct {
	Event string          `json:"event" validate:"required"`
	Data  json.RawMessage `json:"data"`
}

// AuthenticatePayload binds a connection to a user.
type AuthenticatePayload struct {
	UserID string `json:"userId" validate:"required"`
}

// RoomPayload joins or leaves a conversation room.
type RoomPayload struct {
	RoomID string `json:"roomId" validate:"required"`
}

// SendMessagePayload carries a new chat message. Exactly one of ReceiverID
// and GroupID must be set; the cross-field rule is enforced by
// domain.Message.Validate rather than struct tags. The client timestamp is
// advisory display data, never the ordering key.
type SendMessagePayload struct {
	SenderID   string `json:"senderId" validate:"required"`
	ReceiverID string `json:"receiverId,omitempty"`
	GroupID    string `json:"groupId,omitempty"`
	Content    string `json:"content,omitempty"`
	FileURL    string `json:"fileUrl,omitempty" validate:"omitempty,url"`
	FileName   string `json:"fileName,omitempty"`
	FileType   string `json:"fileType,omitempty"`
	Timestamp  string `json:"timestamp,omitempty"`
}

// TypingPayload relays a typing indicator. Never persisted.
type TypingPayload struct {
	SenderID   string `json:"senderId" validate:"required"`
	ReceiverID string `json:"receiverId,omitempty"`
	GroupID    string `json:"groupId,omitempty"`
	IsTyping   bool   `json:"isTyping"`
}

// MessageReadPayload advances a single message to read.
type MessageReadPayload struct {
	MessageID string `json:"messageId" validate:"required"`
	ReaderID  string `json:"readerId" validate:"required"`
}

// MessageEvent is the server-resolved message shape emitted to delivery
// targets, carrying the persisted id, status and the sender's display name.
type MessageEvent struct {
	ID         string               `json:"id"`
	SenderID   string               `json:"senderId"`
	SenderName string               `json:"senderName"`
	ReceiverID string               `json:"receiverId,omitempty"`
	GroupID    string               `json:"groupId,omitempty"`
	Content    string               `json:"content,omitempty"`
	Status     domain.MessageStatus `json:"status"`
	Timestamp  time.Time            `json:"timestamp"`
	FileURL    string               `json:"fileUrl,omitempty"`
	FileName   string               `json:"fileName,omitempty"`
	FileType   string               `json:"fileType,omitempty"`
}

func newMessageEvent(msg *domain.Message, senderName string) MessageEvent {
	return MessageEvent{
		ID:         msg.ID,
		SenderID:   msg.SenderID,
		SenderName: senderName,
		ReceiverID: msg.ReceiverID,
		GroupID:    msg.GroupID,
		Content:    msg.Content,
		Status:     msg.Status,
		Timestamp:  msg.Timestamp,
		FileURL:    msg.FileURL,
		FileName:   msg.FileName,
		FileType:   msg.FileType,
	}
}

// TypingEvent is the relayed typing indicator.
type TypingEvent struct {
	SenderID string `json:"senderId"`
	IsTyping bool   `json:"isTyping"`
}

// StatusUpdateEvent notifies a sender that their message changed status.
type StatusUpdateEvent struct {
	MessageID string               `json:"messageId"`
	Status    domain.MessageStatus `json:"status"`
}

// PresenceEvent announces a user coming online or going offline.
type PresenceEvent struct {
	UserID string `json:"userId"`
}

// ErrorEvent is the generic failure event sent to the originating
// connection. Internal detail never crosses the wire.
type ErrorEvent struct {
	Message string `json:"message"`
}

// Encode wraps a payload in the outbound envelope shape. Marshalling our own
// event structs cannot fail in practice; a failure is logged and yields nil,
// which subscribers treat as no delivery.
func Encode(event string, data any) []byte {
	raw, err := json.Marshal(struct {
		Event string `json:"event"`
		Data  any    `json:"data"`
	}{Event: event, Data: data})
	if err != nil {
		slog.Error("Failed to encode outbound event", "event", event, "error", err)
		return nil
	}
	return raw
}
