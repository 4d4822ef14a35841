package dsdk

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"

	"github.com/yuchia/drawball/pkg/dlog"
	"github.com/yuchia/drawball/pkg/dsdk/derr"
)

// DirectBackend issues raw HTTP calls to the BaaS auth and REST endpoints,
// attaching the apikey and bearer token itself. It exists because the vendor
// library's automatic session handling proved unreliable in this deployment;
// critical paths go through here first and only fall back to the library.
type DirectBackend struct {
	cfg   *Config
	log   *dlog.Logger
	httpc *http.Client
}

// NewDirectBackend builds the raw HTTP strategy. The http.Client carries no
// timeout of its own; every call site is bounded by Deadline.
func NewDirectBackend(cfg *Config, log *dlog.Logger) *DirectBackend {
	return &DirectBackend{cfg: cfg, log: log, httpc: &http.Client{}}
}

func (d *DirectBackend) Name() string { return "direct" }

// do performs one JSON request. An empty token authenticates with the anon
// key, which is what the provider expects for unauthenticated auth calls.
// Non-2xx responses become coded errors carrying status and body text.
func (d *DirectBackend) do(method, rawURL, token string, headers map[string]string, body any, out any) error {
	var rd io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rd = bytes.NewReader(buf)
	}

	req, err := http.NewRequest(method, rawURL, rd)
	if err != nil {
		return err
	}
	bearer := token
	if bearer == "" {
		bearer = d.cfg.SupabaseKey
	}
	req.Header.Set("apikey", d.cfg.SupabaseKey)
	req.Header.Set("Authorization", "Bearer "+bearer)
	req.Header.Set("X-Request-ID", uuid.NewString())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := d.httpc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return derr.FromStatus(resp.StatusCode, strings.TrimSpace(string(data)))
	}
	if out != nil && len(data) > 0 {
		return json.Unmarshal(data, out)
	}
	return nil
}

// FetchUser resolves the current user by bearer token.
func (d *DirectBackend) FetchUser(token string) (*User, error) {
	if token == "" {
		return nil, derr.Newf(derr.CodeUnauthorized, "no token")
	}
	var u User
	if err := d.do(http.MethodGet, d.cfg.AuthURL()+"/user", token, nil, nil, &u); err != nil {
		return nil, err
	}
	if u.ID == "" {
		return nil, derr.Newf(derr.CodeUnknown, "user response missing id")
	}
	return &u, nil
}

// Login performs a password-grant token request.
func (d *DirectBackend) Login(email, password string) (*Session, error) {
	var sess Session
	err := d.do(http.MethodPost, d.cfg.AuthURL()+"/token?grant_type=password", "", nil,
		map[string]string{"email": email, "password": password}, &sess)
	if err != nil {
		return nil, err
	}
	if sess.AccessToken == "" {
		return nil, derr.Newf(derr.CodeUnknown, "token response missing access_token")
	}
	return &sess, nil
}

// Refresh exchanges a refresh token for a new session.
func (d *DirectBackend) Refresh(refreshToken string) (*Session, error) {
	var sess Session
	err := d.do(http.MethodPost, d.cfg.AuthURL()+"/token?grant_type=refresh_token", "", nil,
		map[string]string{"refresh_token": refreshToken}, &sess)
	if err != nil {
		return nil, err
	}
	if sess.AccessToken == "" {
		return nil, derr.Newf(derr.CodeUnknown, "refresh response missing access_token")
	}
	return &sess, nil
}

// Recover requests a password-recovery email.
func (d *DirectBackend) Recover(email, redirectTo string) error {
	body := map[string]string{"email": email}
	if redirectTo != "" {
		body["redirect_to"] = redirectTo
	}
	return d.do(http.MethodPost, d.cfg.AuthURL()+"/recover", "", nil, body, nil)
}

// UpdatePassword sets a new password for the token's user.
func (d *DirectBackend) UpdatePassword(token, newPassword string) error {
	if token == "" {
		return derr.Newf(derr.CodeUnauthorized, "no token")
	}
	return d.do(http.MethodPut, d.cfg.AuthURL()+"/user", token, nil,
		map[string]string{"password": newPassword}, nil)
}

// UpdateUserData merges data into the user's metadata and returns the
// updated user.
func (d *DirectBackend) UpdateUserData(token string, data map[string]any) (*User, error) {
	if token == "" {
		return nil, derr.Newf(derr.CodeUnauthorized, "no token")
	}
	var u User
	err := d.do(http.MethodPut, d.cfg.AuthURL()+"/user", token, nil,
		map[string]any{"data": data}, &u)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// GetRole fetches the role row for a user id.
func (d *DirectBackend) GetRole(token, userID string) (*Role, error) {
	q := url.Values{}
	q.Set("user_id", "eq."+userID)
	q.Set("select", "user_id,email,role,display_name")
	var rows []Role
	err := d.do(http.MethodGet, d.cfg.RestURL()+"/user_roles?"+q.Encode(), token, nil, nil, &rows)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, derr.Newf(derr.CodeNotFound, "no role row for user %s", userID)
	}
	return &rows[0], nil
}

// CreateRole inserts a role row. Conflicts surface as derr.CodeConflict; the
// manager decides whether that counts as success.
func (d *DirectBackend) CreateRole(token string, row map[string]any) error {
	return d.do(http.MethodPost, d.cfg.RestURL()+"/user_roles", token,
		map[string]string{"Prefer": "return=minimal"}, row, nil)
}

// UpdateRole patches the role row for a user id.
func (d *DirectBackend) UpdateRole(token, userID string, patch map[string]any) error {
	q := url.Values{}
	q.Set("user_id", "eq."+userID)
	return d.do(http.MethodPatch, d.cfg.RestURL()+"/user_roles?"+q.Encode(), token,
		map[string]string{"Prefer": "return=minimal"}, patch, nil)
}

// UpsertRoleByEmail inserts or overwrites a role row keyed by email. Used by
// the admin role-assignment command.
func (d *DirectBackend) UpsertRoleByEmail(token string, row map[string]any) error {
	return d.do(http.MethodPost, d.cfg.RestURL()+"/user_roles?on_conflict=email", token,
		map[string]string{"Prefer": "resolution=merge-duplicates,return=minimal"}, row, nil)
}

// GetPlayerByUserID fetches the player row owned by a user.
func (d *DirectBackend) GetPlayerByUserID(token, userID string) (*Player, error) {
	q := url.Values{}
	q.Set("user_id", "eq."+userID)
	q.Set("select", "*")
	var rows []Player
	err := d.do(http.MethodGet, d.cfg.RestURL()+"/players?"+q.Encode(), token, nil, nil, &rows)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, derr.Newf(derr.CodeNotFound, "no player row for user %s", userID)
	}
	return &rows[0], nil
}

// CreatePlayer inserts a player row and returns the created row.
func (d *DirectBackend) CreatePlayer(token string, row map[string]any) (*Player, error) {
	var rows []Player
	err := d.do(http.MethodPost, d.cfg.RestURL()+"/players", token,
		map[string]string{"Prefer": "return=representation"}, row, &rows)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, derr.Newf(derr.CodeUnknown, "insert returned no row")
	}
	return &rows[0], nil
}

// UpdatePlayer patches a player row by id and returns the updated row.
func (d *DirectBackend) UpdatePlayer(token string, playerID int64, patch map[string]any) (*Player, error) {
	q := url.Values{}
	q.Set("id", fmt.Sprintf("eq.%d", playerID))
	var rows []Player
	err := d.do(http.MethodPatch, d.cfg.RestURL()+"/players?"+q.Encode(), token,
		map[string]string{"Prefer": "return=representation"}, patch, &rows)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, derr.Newf(derr.CodeNotFound, "no player with id %d", playerID)
	}
	return &rows[0], nil
}

var _ Backend = (*DirectBackend)(nil)
