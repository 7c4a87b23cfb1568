package database

import (
	"context"
	"fmt"
	"strings"

	"github.com/surrealdb/surrealdb.go"

	"github.com/crewsync/crewsync/internal/domain"
)

// GroupStore reads chat-group membership. The core only needs to know who
// belongs to a room; membership management lives with the group entity's
// owner.
type GroupStore struct {
	db *surrealdb.DB
}

// NewGroupStore creates a group store over the given connection.
func NewGroupStore(db *surrealdb.DB) *GroupStore {
	return &GroupStore{db: db}
}

var _ domain.GroupDirectory = (*GroupStore)(nil)

// GetByID retrieves a group with its member list.
func (s *GroupStore) GetByID(ctx context.Context, id string) (*domain.Group, error) {
	group, err := QueryOne[domain.Group](ctx, s.db, "SELECT * FROM type::thing($id)", map[string]any{
		"id": groupRecordID(id),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch group: %w", err)
	}
	if group == nil {
		return nil, domain.ErrGroupNotFound
	}
	return group, nil
}

// groupRecordID normalizes a group id to a full record id.
func groupRecordID(id string) string {
	if strings.HasPrefix(id, "group:") {
		return id
	}
	return "group:" + id
}
