package notify

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/crewsync/crewsync/internal/chat"
	"github.com/crewsync/crewsync/internal/domain"
	"github.com/crewsync/crewsync/internal/pubsub"
	"github.com/crewsync/crewsync/internal/session"
)

// Service manages persisted notification records: asynchronous events such
// as "new objective assigned", addressed to a target-user list with a
// per-user read set. Online targets get an immediate socket event; offline
// targets are reached through the push fan-out, which consumes the bus
// event this service publishes after persisting.
type Service struct {
	records   domain.NotificationRepository
	registry  *session.Registry
	publisher pubsub.Publisher
}

// NewService wires the notification service.
func NewService(records domain.NotificationRepository, registry *session.Registry, publisher pubsub.Publisher) *Service {
	return &Service{records: records, registry: registry, publisher: publisher}
}

// Create validates and persists a notification, emits it to every online
// target's personal room, and publishes it for offline push fan-out. A
// validation failure persists nothing; bus/socket delivery is best-effort
// once the record is durable.
func (s *Service) Create(ctx context.Context, n *domain.Notification) (*domain.Notification, error) {
	if n.Timestamp.IsZero() {
		n.Timestamp = time.Now().UTC()
	}
	if err := n.Validate(); err != nil {
		return nil, err
	}

	stored, err := s.records.Create(ctx, n)
	if err != nil {
		return nil, err
	}

	payload := chat.Encode(chat.EventNotification, stored)
	for _, userID := range stored.TargetUsers {
		s.registry.SendToUser(userID, payload)
	}

	s.publishCreated(ctx, stored)
	return stored, nil
}

func (s *Service) publishCreated(ctx context.Context, n *domain.Notification) {
	raw, err := json.Marshal(n)
	if err != nil {
		slog.Error("Failed to marshal notification record", "notificationID", n.ID, "error", err)
		return
	}
	err = s.publisher.Publish(ctx, pubsub.Message{
		Topic:   chat.TopicNotificationCreated,
		UserID:  n.SenderID,
		Payload: raw,
	})
	if err != nil {
		slog.Error("Failed to publish notification record", "notificationID", n.ID, "error", err)
	}
}

// MarkRead records that a user read a notification. Idempotent; a user
// outside the target list is rejected.
func (s *Service) MarkRead(ctx context.Context, id, userID string) (*domain.Notification, error) {
	record, _, err := s.records.MarkReadBy(ctx, id, userID)
	return record, err
}

// ListForUser returns the newest notifications addressed to the user.
func (s *Service) ListForUser(ctx context.Context, userID string, limit int) ([]domain.Notification, error) {
	return s.records.ListForUser(ctx, userID, limit)
}

// UnreadCount counts the user's unread notifications.
func (s *Service) UnreadCount(ctx context.Context, userID string) (int, error) {
	return s.records.UnreadCountForUser(ctx, userID)
}
