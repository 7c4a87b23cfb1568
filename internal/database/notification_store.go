package database

import (
	"context"
	"fmt"
	"strings"

	"github.com/surrealdb/surrealdb.go"

	"github.com/crewsync/crewsync/internal/domain"
)

// NotificationStore persists notification records, independent of the chat
// message log.
type NotificationStore struct {
	db *surrealdb.DB
}

// NewNotificationStore creates a notification store over the given connection.
func NewNotificationStore(db *surrealdb.DB) *NotificationStore {
	return &NotificationStore{db: db}
}

var _ domain.NotificationRepository = (*NotificationStore)(nil)

// Create persists a validated notification record.
func (s *NotificationStore) Create(ctx context.Context, n *domain.Notification) (*domain.Notification, error) {
	query := `
		CREATE notification CONTENT {
			title: $title,
			message: $message,
			type: $type,
			metadata: $metadata,
			senderId: $senderId,
			targetUsers: $targetUsers,
			readBy: [],
			timestamp: $timestamp
		} RETURN AFTER
	`
	params := map[string]any{
		"title":       n.Title,
		"message":     n.Body,
		"type":        string(n.Type),
		"metadata":    n.Metadata,
		"senderId":    n.SenderID,
		"targetUsers": n.TargetUsers,
		"timestamp":   n.Timestamp,
	}

	created, err := QueryOne[domain.Notification](ctx, s.db, query, params)
	if err != nil {
		return nil, fmt.Errorf("failed to create notification: %w", err)
	}
	if created == nil {
		return nil, fmt.Errorf("notification was not created")
	}
	return created, nil
}

// GetByID retrieves a notification record.
func (s *NotificationStore) GetByID(ctx context.Context, id string) (*domain.Notification, error) {
	record, err := QueryOne[domain.Notification](ctx, s.db, "SELECT * FROM type::thing($id)", map[string]any{
		"id": notificationRecordID(id),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch notification: %w", err)
	}
	if record == nil {
		return nil, domain.ErrNotFound
	}
	return record, nil
}

// MarkReadBy records a read transition, keeping readBy inside targetUsers. The
// readBy check-and-append is performed on the fetched record; the update
// targets a single record by id, so concurrent marks by different users
// commute.
func (s *NotificationStore) MarkReadBy(ctx context.Context, id, userID string) (*domain.Notification, bool, error) {
	record, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, false, err
	}

	changed, err := record.MarkReadBy(userID)
	if err != nil {
		return nil, false, err
	}
	if !changed {
		return record, false, nil
	}

	updated, err := QueryOne[domain.Notification](ctx, s.db,
		"UPDATE type::thing($id) SET readBy += $userId RETURN AFTER",
		map[string]any{"id": notificationRecordID(id), "userId": userID})
	if err != nil {
		return nil, false, fmt.Errorf("failed to mark notification read: %w", err)
	}
	if updated == nil {
		return nil, false, domain.ErrNotFound
	}
	return updated, true, nil
}

// ListForUser returns the newest notifications addressed to the user.
func (s *NotificationStore) ListForUser(ctx context.Context, userID string, limit int) ([]domain.Notification, error) {
	if limit <= 0 {
		limit = 50
	}
	records, err := Query[domain.Notification](ctx, s.db,
		"SELECT * FROM notification WHERE $userId IN targetUsers ORDER BY timestamp DESC LIMIT $limit",
		map[string]any{"userId": userID, "limit": limit})
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	return records, nil
}

// UnreadCountForUser counts notifications addressed to the user they have
// not read yet.
func (s *NotificationStore) UnreadCountForUser(ctx context.Context, userID string) (int, error) {
	type countRow struct {
		Count int `json:"count"`
	}
	row, err := QueryOne[countRow](ctx, s.db,
		"SELECT count() AS count FROM notification WHERE $userId IN targetUsers AND $userId NOT IN readBy GROUP ALL",
		map[string]any{"userId": userID})
	if err != nil {
		return 0, fmt.Errorf("failed to count unread notifications: %w", err)
	}
	if row == nil {
		return 0, nil
	}
	return row.Count, nil
}

// notificationRecordID normalizes a notification id to a full record id.
func notificationRecordID(id string) string {
	if strings.HasPrefix(id, "notification:") {
		return id
	}
	return "notification:" + id
}
