package domain

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// NotificationType classifies persisted notifications.
type NotificationType string

const (
	NotificationGeneral          NotificationType = "general"
	NotificationAddressChange    NotificationType = "address_change"
	NotificationDepartmentUpdate NotificationType = "department_update"
	NotificationSystem           NotificationType = "system"
)

const (
	maxNotificationTitleLen = 200
	maxNotificationBodyLen  = 1000
)

// Notification is a persisted asynchronous event (e.g. "new objective
// assigned") addressed to one or more users. It is independent of the chat
// message log. ReadBy is always a subset of TargetUsers.
type Notification struct {
	ID          string            `json:"id,omitempty"`
	Title       string            `json:"title"`
	Body        string            `json:"message"`
	Type        NotificationType  `json:"type"`
	Metadata    map[string]string `json:"metadata,omitempty"`
	SenderID    string            `json:"senderId"`
	TargetUsers []string          `json:"targetUsers"`
	ReadBy      []string          `json:"readBy,omitempty"`
	Timestamp   time.Time         `json:"timestamp"`
}

// Validate enforces the creation invariants: non-empty trimmed title and
// body within bounds, a sender, and at least one target user.
func (n *Notification) Validate() error {
	n.Title = strings.TrimSpace(n.Title)
	n.Body = strings.TrimSpace(n.Body)
	if n.Title == "" {
		return fmt.Errorf("%w: title is required", ErrValidation)
	}
	if len(n.Title) > maxNotificationTitleLen {
		return fmt.Errorf("%w: title cannot exceed %d characters", ErrValidation, maxNotificationTitleLen)
	}
	if n.Body == "" {
		return fmt.Errorf("%w: message is required", ErrValidation)
	}
	if len(n.Body) > maxNotificationBodyLen {
		return fmt.Errorf("%w: message cannot exceed %d characters", ErrValidation, maxNotificationBodyLen)
	}
	if n.SenderID == "" {
		return fmt.Errorf("%w: senderId is required", ErrValidation)
	}
	if len(n.TargetUsers) == 0 {
		return fmt.Errorf("%w: at least one target user is required", ErrValidation)
	}
	if n.Type == "" {
		n.Type = NotificationGeneral
	}
	return nil
}

// IsTarget reports whether the user is addressed by this notification.
func (n *Notification) IsTarget(userID string) bool {
	for _, t := range n.TargetUsers {
		if t == userID {
			return true
		}
	}
	return false
}

// IsReadBy reports whether the user has already read this notification.
func (n *Notification) IsReadBy(userID string) bool {
	for _, r := range n.ReadBy {
		if r == userID {
			return true
		}
	}
	return false
}

// MarkReadBy records that the user read the notification. It returns true
// on an actual transition; repeating it is a no-op. Users outside
// TargetUsers are rejected, so ReadBy never grows beyond the target list.
func (n *Notification) MarkReadBy(userID string) (bool, error) {
	if !n.IsTarget(userID) {
		return false, ErrNotTargeted
	}
	if n.IsReadBy(userID) {
		return false, nil
	}
	n.ReadBy = append(n.ReadBy, userID)
	return true, nil
}

// NotificationRepository is the contract for persisted notification records.
type NotificationRepository interface {
	Create(ctx context.Context, n *Notification) (*Notification, error)
	GetByID(ctx context.Context, id string) (*Notification, error)
	// MarkReadBy persists a read transition. It returns the stored record
	// and whether a transition happened.
	MarkReadBy(ctx context.Context, id, userID string) (*Notification, bool, error)
	ListForUser(ctx context.Context, userID string, limit int) ([]Notification, error)
	UnreadCountForUser(ctx context.Context, userID string) (int, error)
}
