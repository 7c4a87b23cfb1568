package domain

import "context"

// User is the collaborator-owned user shape the messaging core needs:
// display name resolution and the device token for push fan-out. User CRUD
// itself lives outside this service.
type User struct {
	ID        string `json:"id,omitempty"`
	Firstname string `json:"firstname"`
	Lastname  string `json:"lastname"`
	Email     string `json:"email"`
	FCMToken  string `json:"fcmToken,omitempty"`
}

// DisplayName returns "Firstname Lastname", falling back to the email when
// the name fields are unset.
func (u *User) DisplayName() string {
	if u.Firstname == "" && u.Lastname == "" {
		return u.Email
	}
	if u.Lastname == "" {
		return u.Firstname
	}
	return u.Firstname + " " + u.Lastname
}

// UserDirectory is the read-only lookup interface consumed by the delivery
// pipeline and the push fan-out.
type UserDirectory interface {
	GetByID(ctx context.Context, id string) (*User, error)
	// GetByIDs returns the users that exist; unknown ids are skipped, not
	// errors.
	GetByIDs(ctx context.Context, ids []string) ([]User, error)
}

// TokenValidator resolves an opaque API token to a user id. Token issuance
// is an external concern; the core only needs validation.
type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) (string, error)
}
