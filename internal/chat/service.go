package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/crewsync/crewsync/internal/domain"
	"github.com/crewsync/crewsync/internal/pubsub"
	"github.com/crewsync/crewsync/internal/session"
)

// Service is the message delivery pipeline. Every send runs
// persist → broadcast → async fan-out; typing and presence bypass
// persistence entirely.
type Service struct {
	registry  *session.Registry
	messages  domain.MessageRepository
	users     domain.UserDirectory
	router    *Router
	publisher pubsub.Publisher
	validate  *validator.Validate
}

// NewService wires the pipeline. The registry is injected rather than
// global; the service is the only writer of presence events.
func NewService(
	registry *session.Registry,
	messages domain.MessageRepository,
	users domain.UserDirectory,
	router *Router,
	publisher pubsub.Publisher,
) *Service {
	return &Service{
		registry:  registry,
		messages:  messages,
		users:     users,
		router:    router,
		publisher: publisher,
		validate:  validator.New(),
	}
}

// Authenticate binds a connection to a user, joins the personal room and,
// on the user's first live connection, broadcasts userOnline to everyone
// else.
func (s *Service) Authenticate(connID string, p AuthenticatePayload) error {
	if err := s.validate.Struct(p); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	first, ok := s.registry.Authenticate(connID, p.UserID)
	if !ok {
		return fmt.Errorf("%w: unknown connection", domain.ErrValidation)
	}
	slog.Info("Connection authenticated", "connID", connID, "userID", p.UserID)

	if first {
		s.registry.BroadcastAll(Encode(EventUserOnline, PresenceEvent{UserID: p.UserID}), connID)
	}
	return nil
}

// Disconnect removes a connection and, once the user's last connection is
// gone, broadcasts userOffline.
func (s *Service) Disconnect(connID string) {
	userID, wentOffline := s.registry.Remove(connID)
	if userID != "" {
		slog.Info("Connection closed", "connID", connID, "userID", userID, "wentOffline", wentOffline)
	}
	if wentOffline {
		s.registry.BroadcastAll(Encode(EventUserOffline, PresenceEvent{UserID: userID}))
	}
}

// JoinRoom subscribes a connection to a conversation room.
func (s *Service) JoinRoom(connID string, p RoomPayload) error {
	if err := s.validate.Struct(p); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	s.registry.JoinRoom(connID, p.RoomID)
	return nil
}

// LeaveRoom unsubscribes a connection from a conversation room.
func (s *Service) LeaveRoom(connID string, p RoomPayload) error {
	if err := s.validate.Struct(p); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	s.registry.LeaveRoom(connID, p.RoomID)
	return nil
}

// SendMessage runs the full delivery pipeline for one message:
//
//  1. validate: a violation rejects the send with no side effects;
//  2. persist with status=sent and a server-assigned timestamp (the client
//     timestamp is display-only and never the ordering key);
//  3. resolve delivery targets through the room router;
//  4. broadcast: group messages go to the group room including the
//     sender's own connections; direct messages go to the receiver's
//     personal room plus a messageSent confirmation to the originating
//     connection only;
//  5. publish the persisted event for asynchronous push fan-out.
//
// A persistence failure aborts the operation before any broadcast. Fan-out
// runs after the send has completed and can never fail it. originConnID may
// be empty for sends that do not originate on a socket (REST path).
func (s *Service) SendMessage(ctx context.Context, originConnID string, p SendMessagePayload) (*domain.Message, error) {
	if err := s.validate.Struct(p); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	msg := &domain.Message{
		SenderID:   p.SenderID,
		ReceiverID: p.ReceiverID,
		GroupID:    p.GroupID,
		Content:    p.Content,
		FileURL:    p.FileURL,
		FileName:   p.FileName,
		FileType:   p.FileType,
		Status:     domain.StatusSent,
		Timestamp:  time.Now().UTC(),
	}
	if err := msg.Validate(); err != nil {
		return nil, err
	}

	delivery, err := s.router.Resolve(ctx, msg)
	if err != nil {
		return nil, err
	}

	stored, err := s.messages.Create(ctx, msg)
	if err != nil {
		return nil, fmt.Errorf("persisting message: %w", err)
	}

	senderName := s.displayName(ctx, stored.SenderID)
	event := newMessageEvent(stored, senderName)
	payload := Encode(EventReceiveMessage, event)

	if delivery.EchoToOrigin {
		// Direct message: emit to the receiver's personal room, confirm to
		// the originating connection only. The receiver's room is never
		// echoed back to the sender.
		s.registry.SendToUser(stored.ReceiverID, payload)
		if originConnID != "" {
			s.registry.SendToConn(originConnID, Encode(EventMessageSent, event))
		}
	} else {
		for _, room := range delivery.Rooms {
			s.registry.BroadcastRoom(room, payload)
		}
	}

	s.publishPersisted(ctx, stored, senderName, delivery)
	return stored, nil
}

// publishPersisted hands the completed send to the async fan-out. The
// message is already durable and broadcast, so a bus failure is logged and
// swallowed.
func (s *Service) publishPersisted(ctx context.Context, msg *domain.Message, senderName string, delivery *Delivery) {
	raw, err := json.Marshal(PersistedEvent{
		Message:    *msg,
		SenderName: senderName,
		GroupName:  delivery.GroupName,
		Targets:    delivery.Targets,
	})
	if err != nil {
		slog.Error("Failed to marshal persisted event", "messageID", msg.ID, "error", err)
		return
	}

	err = s.publisher.Publish(ctx, pubsub.Message{
		Topic:   TopicMessagePersisted,
		UserID:  msg.SenderID,
		Payload: raw,
	})
	if err != nil {
		slog.Error("Failed to publish persisted event", "messageID", msg.ID, "error", err)
	}
}

// Typing relays a typing indicator. No state is retained; delivery is
// at-most-once and best-effort. Group indicators go to the room minus the
// sender's own connection, direct indicators to the recipient's personal
// room.
func (s *Service) Typing(originConnID string, p TypingPayload) error {
	if err := s.validate.Struct(p); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	if p.ReceiverID == "" && p.GroupID == "" {
		return fmt.Errorf("%w: either receiverId or groupId is required", domain.ErrValidation)
	}

	payload := Encode(EventUserTyping, TypingEvent{SenderID: p.SenderID, IsTyping: p.IsTyping})
	if p.GroupID != "" {
		s.registry.BroadcastRoom(p.GroupID, payload, originConnID)
		return nil
	}
	s.registry.SendToUser(p.ReceiverID, payload)
	return nil
}

// MarkRead advances a single message from sent to read on behalf of the
// reader. On an actual transition a messageStatusUpdate event goes to the
// sender's personal room; repeating the call, or reading a message not
// addressed to you, is a no-op and emits nothing. The transition is atomic
// in the store, so concurrent reads from two devices emit at most one
// event.
func (s *Service) MarkRead(ctx context.Context, p MessageReadPayload) error {
	if err := s.validate.Struct(p); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	msg, changed, err := s.messages.MarkRead(ctx, p.MessageID, p.ReaderID)
	if err != nil {
		return fmt.Errorf("updating message status: %w", err)
	}
	if changed {
		s.registry.SendToUser(msg.SenderID, Encode(EventMessageStatusUpdate, StatusUpdateEvent{
			MessageID: msg.ID,
			Status:    domain.StatusRead,
		}))
	}
	return nil
}

// MarkConversationRead bulk-marks every unread message the user received in
// one conversation. Unlike MarkRead it emits no per-message status events;
// the caller refetches history.
func (s *Service) MarkConversationRead(ctx context.Context, userID, chatID string, isGroup bool) (int, error) {
	if userID == "" || chatID == "" {
		return 0, fmt.Errorf("%w: user and chat ids are required", domain.ErrValidation)
	}
	return s.messages.MarkConversationRead(ctx, userID, chatID, isGroup)
}

func (s *Service) displayName(ctx context.Context, userID string) string {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil || user == nil {
		slog.Warn("Could not resolve sender name", "userID", userID, "error", err)
		return userID
	}
	return user.DisplayName()
}
