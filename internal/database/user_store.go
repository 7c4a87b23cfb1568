package database

import (
	"context"
	"fmt"
	"strings"

	"github.com/surrealdb/surrealdb.go"

	"github.com/crewsync/crewsync/internal/domain"
)

// UserStore is the read-only user lookup the messaging core consumes. User
// CRUD is owned by the wider platform; this store only resolves display
// names, push tokens and API tokens.
type UserStore struct {
	db *surrealdb.DB
}

// NewUserStore creates a user store over the given connection.
func NewUserStore(db *surrealdb.DB) *UserStore {
	return &UserStore{db: db}
}

var (
	_ domain.UserDirectory  = (*UserStore)(nil)
	_ domain.TokenValidator = (*UserStore)(nil)
)

// GetByID retrieves a user by id.
func (s *UserStore) GetByID(ctx context.Context, id string) (*domain.User, error) {
	user, err := QueryOne[domain.User](ctx, s.db, "SELECT * FROM type::thing($id)", map[string]any{
		"id": userRecordID(id),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user: %w", err)
	}
	if user == nil {
		return nil, domain.ErrNotFound
	}
	return user, nil
}

// GetByIDs retrieves the users that exist; unknown ids are skipped.
func (s *UserStore) GetByIDs(ctx context.Context, ids []string) ([]domain.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	records := make([]string, 0, len(ids))
	for _, id := range ids {
		records = append(records, userRecordID(id))
	}
	users, err := Query[domain.User](ctx, s.db, "SELECT * FROM user WHERE id IN $ids", map[string]any{"ids": records})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch users: %w", err)
	}
	return users, nil
}

// ValidateToken resolves an opaque API token to a user id.
func (s *UserStore) ValidateToken(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", domain.ErrNotFound
	}
	user, err := QueryOne[domain.User](ctx, s.db, "SELECT * FROM user WHERE apiToken = $token", map[string]any{
		"token": token,
	})
	if err != nil {
		return "", fmt.Errorf("failed to validate token: %w", err)
	}
	if user == nil {
		return "", domain.ErrNotFound
	}
	return user.ID, nil
}

// userRecordID normalizes a user id to a full record id.
func userRecordID(id string) string {
	if strings.HasPrefix(id, "user:") {
		return id
	}
	return "user:" + id
}
