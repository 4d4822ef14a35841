package dsdk

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/supabase-community/gotrue-go"
	"github.com/supabase-community/gotrue-go/types"
	"github.com/supabase-community/postgrest-go"

	"github.com/yuchia/drawball/pkg/dlog"
	"github.com/yuchia/drawball/pkg/dsdk/derr"
)

// LibraryBackend implements the backend surface through the vendor client
// libraries (gotrue-go for auth, postgrest-go for the REST API). It is the
// fallback strategy behind DirectBackend, and the only path for sign-up and
// remote sign-out.
type LibraryBackend struct {
	cfg  *Config
	log  *dlog.Logger
	auth gotrue.Client
}

// NewLibraryBackend builds the library strategy. The gotrue client is pointed
// at the deployment's auth URL directly; its project-reference argument only
// matters for hosted-URL construction, which the override replaces.
func NewLibraryBackend(cfg *Config, log *dlog.Logger) *LibraryBackend {
	auth := gotrue.New("drawball", cfg.SupabaseKey).WithCustomGoTrueURL(cfg.AuthURL())
	return &LibraryBackend{cfg: cfg, log: log, auth: auth}
}

func (l *LibraryBackend) Name() string { return "library" }

// rest builds a per-call PostgREST client. A fresh client per call keeps
// token handling out of shared state.
func (l *LibraryBackend) rest(token string) *postgrest.Client {
	headers := map[string]string{"apikey": l.cfg.SupabaseKey}
	if token == "" {
		token = l.cfg.SupabaseKey
	}
	headers["Authorization"] = "Bearer " + token
	return postgrest.NewClient(l.cfg.RestURL(), "", headers)
}

func userFromGotrue(u types.User) *User {
	return &User{
		ID:                 u.ID.String(),
		Email:              u.Email,
		EmailConfirmedAt:   u.EmailConfirmedAt,
		ConfirmationSentAt: u.ConfirmationSentAt,
		UserMetadata:       u.UserMetadata,
	}
}

// sessionFromGotrue rebuilds the session record from a library token
// response. Expiry is re-derived from the token itself so both strategies
// produce identical records regardless of library version.
func sessionFromGotrue(s types.Session) *Session {
	sess := NewSession(s.AccessToken, s.RefreshToken, userFromGotrue(s.User))
	if s.TokenType != "" {
		sess.TokenType = s.TokenType
	}
	return sess
}

// FetchUser resolves the current user by bearer token.
func (l *LibraryBackend) FetchUser(token string) (*User, error) {
	if token == "" {
		return nil, derr.Newf(derr.CodeUnauthorized, "no token")
	}
	resp, err := l.auth.WithToken(token).GetUser()
	if err != nil {
		return nil, err
	}
	return userFromGotrue(resp.User), nil
}

// Login performs a password sign-in through the library.
func (l *LibraryBackend) Login(email, password string) (*Session, error) {
	resp, err := l.auth.SignInWithEmailPassword(email, password)
	if err != nil {
		return nil, err
	}
	return sessionFromGotrue(resp.Session), nil
}

// Signup creates a new account. This is the one operation always routed
// through the library, so it lives on the concrete type rather than the
// AuthBackend interface.
func (l *LibraryBackend) Signup(email, password string, data map[string]any) (*User, error) {
	resp, err := l.auth.Signup(types.SignupRequest{
		Email:    email,
		Password: password,
		Data:     data,
	})
	if err != nil {
		return nil, err
	}
	return userFromGotrue(resp.User), nil
}

// SignOut revokes the session server-side. Best-effort only: the manager
// clears local state first and ignores this call's outcome.
func (l *LibraryBackend) SignOut(token string) error {
	if token == "" {
		return nil
	}
	return l.auth.WithToken(token).Logout()
}

// Refresh exchanges a refresh token for a new session.
func (l *LibraryBackend) Refresh(refreshToken string) (*Session, error) {
	resp, err := l.auth.RefreshToken(refreshToken)
	if err != nil {
		return nil, err
	}
	return sessionFromGotrue(resp.Session), nil
}

// Recover requests a password-recovery email. The library call carries no
// redirect override; the deployment's site URL applies.
func (l *LibraryBackend) Recover(email, _ string) error {
	return l.auth.Recover(types.RecoverRequest{Email: email})
}

// UpdatePassword sets a new password for the token's user.
func (l *LibraryBackend) UpdatePassword(token, newPassword string) error {
	if token == "" {
		return derr.Newf(derr.CodeUnauthorized, "no token")
	}
	_, err := l.auth.WithToken(token).UpdateUser(types.UpdateUserRequest{Password: &newPassword})
	return err
}

// UpdateUserData merges data into the user's metadata.
func (l *LibraryBackend) UpdateUserData(token string, data map[string]any) (*User, error) {
	if token == "" {
		return nil, derr.Newf(derr.CodeUnauthorized, "no token")
	}
	resp, err := l.auth.WithToken(token).UpdateUser(types.UpdateUserRequest{Data: data})
	if err != nil {
		return nil, err
	}
	return userFromGotrue(resp.User), nil
}

// GetRole fetches the role row for a user id. Deployments predating the
// display_name migration reject the column; those are retried without it.
func (l *LibraryBackend) GetRole(token, userID string) (*Role, error) {
	rows, err := l.selectRoles(token, userID, "user_id,email,role,display_name")
	if err != nil && strings.Contains(err.Error(), "display_name") {
		l.log.Warn("role query retried without display_name column", "user_id", userID)
		rows, err = l.selectRoles(token, userID, "user_id,email,role")
	}
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, derr.Newf(derr.CodeNotFound, "no role row for user %s", userID)
	}
	return &rows[0], nil
}

func (l *LibraryBackend) selectRoles(token, userID, columns string) ([]Role, error) {
	data, _, err := l.rest(token).
		From("user_roles").
		Select(columns, "", false).
		Eq("user_id", userID).
		Execute()
	if err != nil {
		return nil, err
	}
	var rows []Role
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// CreateRole inserts a role row. Duplicate-key violations surface as
// derr.CodeConflict so the manager's retry policy can treat them as benign.
func (l *LibraryBackend) CreateRole(token string, row map[string]any) error {
	_, _, err := l.rest(token).
		From("user_roles").
		Insert(row, false, "", "minimal", "").
		Execute()
	if err != nil && isDuplicateKey(err) {
		return derr.New(derr.CodeConflict, err)
	}
	return err
}

// UpdateRole patches the role row for a user id.
func (l *LibraryBackend) UpdateRole(token, userID string, patch map[string]any) error {
	_, _, err := l.rest(token).
		From("user_roles").
		Update(patch, "minimal", "").
		Eq("user_id", userID).
		Execute()
	return err
}

// UpsertRoleByEmail inserts or overwrites a role row keyed by email.
func (l *LibraryBackend) UpsertRoleByEmail(token string, row map[string]any) error {
	_, _, err := l.rest(token).
		From("user_roles").
		Insert(row, true, "email", "minimal", "").
		Execute()
	return err
}

// GetPlayerByUserID fetches the player row owned by a user.
func (l *LibraryBackend) GetPlayerByUserID(token, userID string) (*Player, error) {
	data, _, err := l.rest(token).
		From("players").
		Select("*", "", false).
		Eq("user_id", userID).
		Execute()
	if err != nil {
		return nil, err
	}
	var rows []Player
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, derr.Newf(derr.CodeNotFound, "no player row for user %s", userID)
	}
	return &rows[0], nil
}

// CreatePlayer inserts a player row and returns the created row.
func (l *LibraryBackend) CreatePlayer(token string, row map[string]any) (*Player, error) {
	data, _, err := l.rest(token).
		From("players").
		Insert(row, false, "", "representation", "").
		Execute()
	if err != nil {
		return nil, err
	}
	return firstPlayer(data)
}

// UpdatePlayer patches a player row by id and returns the updated row.
func (l *LibraryBackend) UpdatePlayer(token string, playerID int64, patch map[string]any) (*Player, error) {
	data, _, err := l.rest(token).
		From("players").
		Update(patch, "representation", "").
		Eq("id", fmt.Sprintf("%d", playerID)).
		Execute()
	if err != nil {
		return nil, err
	}
	return firstPlayer(data)
}

func firstPlayer(data []byte) (*Player, error) {
	var rows []Player
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, derr.Newf(derr.CodeNotFound, "no player row returned")
	}
	return &rows[0], nil
}

// isDuplicateKey matches PostgREST's unique-violation error in either its
// SQLSTATE or prose form.
func isDuplicateKey(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "23505") || strings.Contains(msg, "duplicate key")
}

var _ Backend = (*LibraryBackend)(nil)
