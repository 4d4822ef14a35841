package dsdk

import (
	"strings"
	"time"
)

// Role values for the user_roles table.
const (
	RoleAdmin       = "admin"
	RoleParticipant = "participant"
)

// defaultDisplayName is the placeholder when neither the role row, the user
// metadata, nor the email yields a name.
const defaultDisplayName = "用戶"

// User is the identity-provider record, reduced to the fields this client
// reads. UserMetadata is kept loose because the provider stores arbitrary
// JSON there.
type User struct {
	ID                 string         `json:"id"`
	Email              string         `json:"email"`
	EmailConfirmedAt   *time.Time     `json:"email_confirmed_at,omitempty"`
	ConfirmationSentAt *time.Time     `json:"confirmation_sent_at,omitempty"`
	UserMetadata       map[string]any `json:"user_metadata,omitempty"`
}

// MetaDisplayName returns user_metadata.display_name, falling back to
// user_metadata.name.
func (u *User) MetaDisplayName() string {
	if u == nil || u.UserMetadata == nil {
		return ""
	}
	if v, ok := u.UserMetadata["display_name"].(string); ok && v != "" {
		return v
	}
	if v, ok := u.UserMetadata["name"].(string); ok && v != "" {
		return v
	}
	return ""
}

// localPart returns the part of an email address before the '@'.
func localPart(email string) string {
	if i := strings.IndexByte(email, '@'); i > 0 {
		return email[:i]
	}
	return email
}

// Role is one row of the user_roles table. Exactly one row exists per user;
// it is created lazily on first authentication and never deleted here.
type Role struct {
	UserID      string `json:"user_id"`
	Email       string `json:"email,omitempty"`
	Role        string `json:"role"`
	DisplayName string `json:"display_name,omitempty"`
}

// Player is one row of the players table. Balls is mutated only by the
// drawing logic outside this client.
type Player struct {
	ID              int64  `json:"id"`
	UserID          string `json:"user_id"`
	Name            string `json:"name"`
	DisplayName     string `json:"display_name,omitempty"`
	Balls           int    `json:"balls"`
	IsParticipating bool   `json:"is_participating"`
}
