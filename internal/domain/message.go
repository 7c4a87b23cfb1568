package domain

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// MessageStatus tracks the delivery state of a message. The model is
// deliberately two-state: a message is "sent" until the recipient acts on
// it, at which point it becomes "read". A separate "delivered" state is not
// tracked.
type MessageStatus string

const (
	StatusSent MessageStatus = "sent"
	StatusRead MessageStatus = "read"
)

// Message is a single chat message in the persistent log. It is immutable
// after creation except for Status.
//
// Exactly one of ReceiverID (direct message) or GroupID (group message) is
// set. A message carries text content, a file attachment, or both.
type Message struct {
	ID         string        `json:"id,omitempty"`
	SenderID   string        `json:"senderId"`
	ReceiverID string        `json:"receiverId,omitempty"`
	GroupID    string        `json:"groupId,omitempty"`
	Content    string        `json:"content,omitempty"`
	FileURL    string        `json:"fileUrl,omitempty"`
	FileName   string        `json:"fileName,omitempty"`
	FileType   string        `json:"fileType,omitempty"`
	Status     MessageStatus `json:"status"`
	Timestamp  time.Time     `json:"timestamp"`
}

// IsGroup reports whether this is a group message.
func (m *Message) IsGroup() bool {
	return m.GroupID != ""
}

// Validate checks the addressing and content invariants. Content is trimmed
// in place so that whitespace-only messages are rejected.
func (m *Message) Validate() error {
	if m.SenderID == "" {
		return fmt.Errorf("%w: senderId is required", ErrValidation)
	}
	if m.ReceiverID == "" && m.GroupID == "" {
		return fmt.Errorf("%w: either receiverId or groupId is required", ErrValidation)
	}
	if m.ReceiverID != "" && m.GroupID != "" {
		return fmt.Errorf("%w: receiverId and groupId are mutually exclusive", ErrValidation)
	}
	m.Content = strings.TrimSpace(m.Content)
	if m.Content == "" && m.FileURL == "" {
		return fmt.Errorf("%w: message content or attachment is required", ErrValidation)
	}
	return nil
}

// Conversation is a derived summary of a direct chat, aggregated from the
// message log by counterpart. It is never stored.
type Conversation struct {
	RecipientID     string    `json:"recipientId"`
	LastMessage     string    `json:"lastMessage"`
	LastMessageTime time.Time `json:"lastMessageTime"`
	UnreadCount     int       `json:"unreadCount"`
}

// HistoryQuery selects a page of a single conversation's history.
// Exactly one of RecipientID or GroupID is set.
type HistoryQuery struct {
	UserID      string
	RecipientID string
	GroupID     string
	Limit       int
	Skip        int
}

// MessageRepository is the contract for the persistent message log.
type MessageRepository interface {
	// Create appends a message with a server-assigned id and timestamp and
	// status "sent". The stored message is returned.
	Create(ctx context.Context, msg *Message) (*Message, error)

	// MarkRead advances one message to read on behalf of readerID, as a
	// single atomic conditional update so concurrent readers observe at
	// most one transition. The sender can never read their own message;
	// for a direct message only the addressed receiver can. A repeat or
	// unauthorized call is a no-op, reported through the bool.
	MarkRead(ctx context.Context, id, readerID string) (*Message, bool, error)

	// History returns a page of a conversation in chronological order.
	History(ctx context.Context, q HistoryQuery) ([]Message, error)

	// Conversations aggregates the user's direct chats by counterpart.
	Conversations(ctx context.Context, userID string) ([]Conversation, error)

	// MarkConversationRead marks every unread message the user received in
	// the given conversation as read. Returns the number of transitions.
	MarkConversationRead(ctx context.Context, userID, chatID string, isGroup bool) (int, error)

	// PurgeGroup removes all messages of a group. This is the only bulk
	// deletion path in the system.
	PurgeGroup(ctx context.Context, groupID string) error

	// UnreadCount counts unread direct messages addressed to the user.
	UnreadCount(ctx context.Context, userID string) (int, error)
}
