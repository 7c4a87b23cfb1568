package push

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/crewsync/crewsync/internal/chat"
	"github.com/crewsync/crewsync/internal/domain"
	"github.com/crewsync/crewsync/internal/pubsub"
)

// Presence answers whether a user currently holds a live connection.
// Satisfied by the session registry.
type Presence interface {
	IsOnline(userID string) bool
}

// Fanout bridges the delivery pipeline to the push provider. It consumes
// bus events published after persist+broadcast and pushes to every resolved
// target without a live connection. A provider failure is logged and
// swallowed; it must never surface to the chat client and it cannot fail a
// send that already completed.
type Fanout struct {
	presence Presence
	users    domain.UserDirectory
	sender   Sender
}

// NewFanout creates the fan-out adapter.
func NewFanout(presence Presence, users domain.UserDirectory, sender Sender) *Fanout {
	return &Fanout{presence: presence, users: users, sender: sender}
}

// Start subscribes the fan-out to the bus. Subscriptions live until ctx is
// canceled.
func (f *Fanout) Start(ctx context.Context, sub pubsub.Subscriber) error {
	if err := sub.Subscribe(ctx, chat.TopicMessagePersisted, f.handleMessagePersisted); err != nil {
		return err
	}
	return sub.Subscribe(ctx, chat.TopicNotificationCreated, f.handleNotificationCreated)
}

func (f *Fanout) handleMessagePersisted(ctx context.Context, msg pubsub.Message) error {
	var event chat.PersistedEvent
	if err := json.Unmarshal(msg.Payload, &event); err != nil {
		slog.Error("Failed to unmarshal persisted event", "error", err)
		return nil
	}

	tokens := f.offlineTokens(ctx, event.Targets)
	if len(tokens) == 0 {
		return nil
	}

	title := "New message from " + event.SenderName
	if event.Message.IsGroup() {
		title = "New message in " + event.GroupName
	}

	body := event.Message.Content
	if body == "" {
		body = event.Message.FileName
	}

	chatID := event.Message.SenderID
	isGroup := "false"
	if event.Message.IsGroup() {
		chatID = event.Message.GroupID
		isGroup = "true"
	}

	f.push(ctx, tokens, title, TruncateBody(body), map[string]string{
		"type":    "chat",
		"chatId":  chatID,
		"isGroup": isGroup,
	})
	return nil
}

func (f *Fanout) handleNotificationCreated(ctx context.Context, msg pubsub.Message) error {
	var record domain.Notification
	if err := json.Unmarshal(msg.Payload, &record); err != nil {
		slog.Error("Failed to unmarshal notification record", "error", err)
		return nil
	}

	tokens := f.offlineTokens(ctx, record.TargetUsers)
	if len(tokens) == 0 {
		return nil
	}

	f.push(ctx, tokens, record.Title, TruncateBody(record.Body), map[string]string{
		"type":           "notification",
		"notificationId": record.ID,
	})
	return nil
}

// offlineTokens resolves the push tokens of every target user with zero
// live connections. Users without a registered token are skipped.
func (f *Fanout) offlineTokens(ctx context.Context, targets []string) []string {
	var offline []string
	for _, userID := range targets {
		if !f.presence.IsOnline(userID) {
			offline = append(offline, userID)
		}
	}
	if len(offline) == 0 {
		return nil
	}

	users, err := f.users.GetByIDs(ctx, offline)
	if err != nil {
		slog.Error("Failed to resolve push targets", "error", err)
		return nil
	}

	var tokens []string
	for _, u := range users {
		if u.FCMToken != "" {
			tokens = append(tokens, u.FCMToken)
		}
	}
	return tokens
}

func (f *Fanout) push(ctx context.Context, tokens []string, title, body string, data map[string]string) {
	result, err := f.sender.SendMulticast(ctx, tokens, title, body, data)
	if err != nil {
		slog.Error("Push delivery failed", "error", err, "tokens", len(tokens))
		return
	}
	slog.Info("Push notifications sent",
		"success", result.SuccessCount,
		"failure", result.FailureCount)
}
