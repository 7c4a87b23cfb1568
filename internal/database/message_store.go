package database

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/surrealdb/surrealdb.go"

	"github.com/crewsync/crewsync/internal/domain"
)

// MessageStore is the persistent append-only message log. Messages are
// create-only; the single mutable field is status, and status updates
// target one message by id, so no cross-message locking is needed.
type MessageStore struct {
	db *surrealdb.DB
}

// NewMessageStore creates a message store over the given connection.
func NewMessageStore(db *surrealdb.DB) *MessageStore {
	return &MessageStore{db: db}
}

var _ domain.MessageRepository = (*MessageStore)(nil)

// Create appends a message to the log.
func (s *MessageStore) Create(ctx context.Context, msg *domain.Message) (*domain.Message, error) {
	query := `
		CREATE message CONTENT {
			senderId: $senderId,
			receiverId: $receiverId,
			groupId: $groupId,
			content: $content,
			fileUrl: $fileUrl,
			fileName: $fileName,
			fileType: $fileType,
			status: $status,
			timestamp: $timestamp
		} RETURN AFTER
	`
	params := map[string]any{
		"senderId":   msg.SenderID,
		"receiverId": msg.ReceiverID,
		"groupId":    msg.GroupID,
		"content":    msg.Content,
		"fileUrl":    msg.FileURL,
		"fileName":   msg.FileName,
		"fileType":   msg.FileType,
		"status":     string(msg.Status),
		"timestamp":  msg.Timestamp,
	}

	created, err := QueryOne[domain.Message](ctx, s.db, query, params)
	if err != nil {
		return nil, fmt.Errorf("failed to create message: %w", err)
	}
	if created == nil {
		return nil, fmt.Errorf("message was not created")
	}
	return created, nil
}

// MarkRead advances a message to read as one conditional update, so two
// concurrent readers (the recipient's two devices, say) cannot both observe
// a transition. RETURN BEFORE exposes the prior state; a row coming back
// means this call made the change. The WHERE clause also gates who may
// read: never the sender, and for a direct message only the receiver.
func (s *MessageStore) MarkRead(ctx context.Context, id, readerID string) (*domain.Message, bool, error) {
	before, err := QueryOne[domain.Message](ctx, s.db, `
		UPDATE type::thing($id) SET status = $read
		WHERE status != $read AND senderId != $reader
			AND (receiverId = $reader OR groupId != "")
		RETURN BEFORE
	`, map[string]any{
		"id":     messageRecordID(id),
		"reader": readerID,
		"read":   string(domain.StatusRead),
	})
	if err != nil {
		return nil, false, fmt.Errorf("failed to mark message read: %w", err)
	}
	if before != nil {
		after := *before
		after.Status = domain.StatusRead
		return &after, true, nil
	}

	// Nothing transitioned: already read, reader not permitted, or missing.
	current, err := QueryOne[domain.Message](ctx, s.db, "SELECT * FROM type::thing($id)", map[string]any{
		"id": messageRecordID(id),
	})
	if err != nil {
		return nil, false, fmt.Errorf("failed to fetch message: %w", err)
	}
	if current == nil {
		return nil, false, domain.ErrNotFound
	}
	return current, false, nil
}

// History returns one conversation page in chronological order. The query
// fetches newest-first for efficient paging and reverses for display, the
// way the REST clients expect it.
func (s *MessageStore) History(ctx context.Context, q domain.HistoryQuery) ([]domain.Message, error) {
	if q.Limit <= 0 {
		q.Limit = 50
	}

	var (
		query  string
		params map[string]any
	)
	switch {
	case q.GroupID != "":
		query = `
			SELECT * FROM message WHERE groupId = $groupId
			ORDER BY timestamp DESC LIMIT $limit START $skip
		`
		params = map[string]any{"groupId": q.GroupID, "limit": q.Limit, "skip": q.Skip}
	case q.RecipientID != "":
		query = `
			SELECT * FROM message WHERE groupId = ""
				AND ((senderId = $userId AND receiverId = $recipientId)
				  OR (senderId = $recipientId AND receiverId = $userId))
			ORDER BY timestamp DESC LIMIT $limit START $skip
		`
		params = map[string]any{"userId": q.UserID, "recipientId": q.RecipientID, "limit": q.Limit, "skip": q.Skip}
	default:
		return nil, fmt.Errorf("%w: either recipientId or groupId is required", domain.ErrValidation)
	}

	messages, err := Query[domain.Message](ctx, s.db, query, params)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch history: %w", err)
	}

	// Reverse to oldest-first.
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}

// Conversations aggregates the user's direct messages by counterpart. The
// fold runs in Go over a newest-first fetch; grouping by computed
// counterpart inside SurrealQL is not worth the opacity at this volume.
func (s *MessageStore) Conversations(ctx context.Context, userID string) ([]domain.Conversation, error) {
	query := `
		SELECT * FROM message WHERE groupId = ""
			AND (senderId = $userId OR receiverId = $userId)
		ORDER BY timestamp DESC
	`
	messages, err := Query[domain.Message](ctx, s.db, query, map[string]any{"userId": userID})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch conversations: %w", err)
	}
	return foldConversations(messages, userID), nil
}

// foldConversations reduces a newest-first direct-message list to one
// summary per counterpart: last message, its time, and the unread count of
// messages addressed to the user.
func foldConversations(newestFirst []domain.Message, userID string) []domain.Conversation {
	index := make(map[string]int)
	var out []domain.Conversation

	for _, m := range newestFirst {
		counterpart := m.ReceiverID
		if m.ReceiverID == userID {
			counterpart = m.SenderID
		}

		i, seen := index[counterpart]
		if !seen {
			index[counterpart] = len(out)
			i = len(out)
			out = append(out, domain.Conversation{
				RecipientID:     counterpart,
				LastMessage:     m.Content,
				LastMessageTime: m.Timestamp,
			})
		}
		if m.ReceiverID == userID && m.Status != domain.StatusRead {
			out[i].UnreadCount++
		}
	}

	sort.SliceStable(out, func(a, b int) bool {
		return out[a].LastMessageTime.After(out[b].LastMessageTime)
	})
	return out
}

// MarkConversationRead bulk-marks unread messages the user received in a
// conversation. Returns the number of actual transitions.
func (s *MessageStore) MarkConversationRead(ctx context.Context, userID, chatID string, isGroup bool) (int, error) {
	var (
		query  string
		params map[string]any
	)
	if isGroup {
		query = `
			UPDATE message SET status = $read
			WHERE groupId = $chatId AND senderId != $userId AND status != $read
			RETURN AFTER
		`
	} else {
		query = `
			UPDATE message SET status = $read
			WHERE senderId = $chatId AND receiverId = $userId AND status != $read
			RETURN AFTER
		`
	}
	params = map[string]any{"chatId": chatID, "userId": userID, "read": string(domain.StatusRead)}

	updated, err := Query[domain.Message](ctx, s.db, query, params)
	if err != nil {
		return 0, fmt.Errorf("failed to mark conversation read: %w", err)
	}
	return len(updated), nil
}

// PurgeGroup removes all messages of a group. The only bulk deletion path.
func (s *MessageStore) PurgeGroup(ctx context.Context, groupID string) error {
	if groupID == "" {
		return fmt.Errorf("%w: groupId is required", domain.ErrValidation)
	}
	err := Execute(ctx, s.db, "DELETE message WHERE groupId = $groupId", map[string]any{"groupId": groupID})
	if err != nil {
		return fmt.Errorf("failed to purge group messages: %w", err)
	}
	return nil
}

// UnreadCount counts unread direct messages addressed to the user.
func (s *MessageStore) UnreadCount(ctx context.Context, userID string) (int, error) {
	type countRow struct {
		Count int `json:"count"`
	}
	row, err := QueryOne[countRow](ctx, s.db,
		"SELECT count() AS count FROM message WHERE receiverId = $userId AND status != $read GROUP ALL",
		map[string]any{"userId": userID, "read": string(domain.StatusRead)})
	if err != nil {
		return 0, fmt.Errorf("failed to count unread messages: %w", err)
	}
	if row == nil {
		return 0, nil
	}
	return row.Count, nil
}

// messageRecordID normalizes a message id to a full record id.
func messageRecordID(id string) string {
	if strings.HasPrefix(id, "message:") {
		return id
	}
	return "message:" + id
}
