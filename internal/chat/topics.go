package chat

import "github.com/crewsync/crewsync/internal/domain"

// Bus topics connecting the delivery pipeline to asynchronous consumers.
// Persist and broadcast complete synchronously; everything published here is
// strictly after-the-fact and must never fail a send.
const (
	// TopicMessagePersisted carries a PersistedEvent for every successfully
	// persisted and broadcast chat message. The push fan-out consumes it.
	TopicMessagePersisted = "chat.message.persisted"

	// TopicNotificationCreated carries a domain.Notification for every
	// persisted notification record.
	TopicNotificationCreated = "notify.record.created"
)

// PersistedEvent is the bus payload published after a message completes the
// persist+broadcast phase. Targets carry the resolved recipient set so the
// fan-out does not re-run room resolution.
type PersistedEvent struct {
	Message    domain.Message `json:"message"`
	SenderName string         `json:"senderName"`
	GroupName  string         `json:"groupName,omitempty"`
	Targets    []string       `json:"targets"`
}
