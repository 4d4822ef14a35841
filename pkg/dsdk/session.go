package dsdk

import (
	"encoding/json"
	"strings"
	"time"
)

// SessionKey is the single well-known store key holding the serialized
// session record.
const SessionKey = "drawball.session"

// sessionFallbackTTL is used when the access token's expiry cannot be
// decoded: 7 days, matching the provider's refresh-token window.
const sessionFallbackTTL = 7 * 24 * time.Hour

// Session is the locally persisted token bundle representing a logged-in
// user. It mirrors the provider's token response shape.
type Session struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	TokenType    string `json:"token_type,omitempty"`
	ExpiresIn    int64  `json:"expires_in,omitempty"`
	ExpiresAt    int64  `json:"expires_at,omitempty"`
	User         *User  `json:"user,omitempty"`
}

// storedSession accepts both the flat session shape and the legacy nested
// {"session": {...}} shape some earlier builds persisted.
type storedSession struct {
	Session
	Nested *Session `json:"session,omitempty"`
}

// NewSession synthesizes a session record from a fresh token pair. ExpiresAt
// comes from the token's embedded exp claim; when the token cannot be
// decoded (or carries no exp) it defaults to now + 7 days.
func NewSession(accessToken, refreshToken string, user *User) *Session {
	expiresAt := time.Now().Add(sessionFallbackTTL).Unix()
	if exp, err := TokenExpiry(accessToken); err == nil && exp > 0 {
		expiresAt = exp
	}
	return &Session{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "bearer",
		ExpiresIn:    expiresAt - time.Now().Unix(),
		ExpiresAt:    expiresAt,
		User:         user,
	}
}

// DecodeSession parses a persisted session record. The second return is true
// when the record used the nested shape and should be re-persisted flat.
func DecodeSession(raw []byte) (*Session, bool, error) {
	var stored storedSession
	if err := json.Unmarshal(raw, &stored); err != nil {
		return nil, false, err
	}
	if stored.Nested != nil && stored.Nested.AccessToken != "" {
		return stored.Nested, true, nil
	}
	return &stored.Session, false, nil
}

// Encode serializes the session for persistence.
func (s *Session) Encode() ([]byte, error) {
	return json.Marshal(s)
}

// Valid reports whether the session's token is present, structurally a
// three-part JWT, and unexpired at now. The embedded exp claim is
// authoritative over the persisted expires_at field.
func (s *Session) Valid(now time.Time) bool {
	if s == nil || s.AccessToken == "" {
		return false
	}
	if strings.Count(s.AccessToken, ".") != 2 {
		return false
	}
	exp, err := TokenExpiry(s.AccessToken)
	if err != nil || exp == 0 {
		return false
	}
	return exp > now.Unix()
}
