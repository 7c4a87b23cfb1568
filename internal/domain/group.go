package domain

import "context"

// Group is the collaborator-owned chat group shape. The core only reads the
// member list to resolve delivery targets and permission gates; membership
// management is external.
type Group struct {
	ID      string   `json:"id,omitempty"`
	Name    string   `json:"name"`
	Members []string `json:"members"`
}

// Contains reports whether the user is a member of the group.
func (g *Group) Contains(userID string) bool {
	for _, m := range g.Members {
		if m == userID {
			return true
		}
	}
	return false
}

// GroupDirectory is the read-only group lookup interface.
type GroupDirectory interface {
	GetByID(ctx context.Context, id string) (*Group, error)
}
