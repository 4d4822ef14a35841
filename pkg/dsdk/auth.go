package dsdk

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/yuchia/drawball/pkg/dlog"
	"github.com/yuchia/drawball/pkg/dsdk/derr"
	"github.com/yuchia/drawball/pkg/kv"
)

// State is a read-only snapshot of the manager's auth state. Subscribers
// receive one on every change.
type State struct {
	User        *User
	Role        string
	DisplayName string
	Loading     bool
}

// Authenticated reports whether a user is present.
func (s State) Authenticated() bool { return s.User != nil }

// libraryAPI is the extra surface only the client library provides: account
// creation and remote sign-out are never attempted over direct HTTP.
type libraryAPI interface {
	Backend
	Signup(email, password string, data map[string]any) (*User, error)
	SignOut(token string) error
}

// Manager owns process-wide authentication state: the current user, role,
// display info and the persisted session record. All mutation goes through
// its methods; consumers read snapshots or subscribe. It coordinates the two
// backend strategies, direct HTTP first with the client library as fallback.
type Manager struct {
	cfg     *Config
	log     *dlog.Logger
	store   kv.Store
	direct  Backend
	library libraryAPI
	chain   []Backend

	// retryBackoff is the linear-backoff base for the library role-row
	// retry path; refreshFloor clamps the auto-refresh delay. Tests
	// shrink both.
	retryBackoff time.Duration
	refreshFloor time.Duration

	checking atomic.Bool

	mu              sync.RWMutex
	user            *User
	role            string
	roleDisplayName string
	accessToken     string
	refreshToken    string
	loading         bool

	subMu   sync.Mutex
	subs    map[int]func(State)
	nextSub int
}

// NewManager wires a manager over the given store. Both backend strategies
// are constructed from the same config.
func NewManager(cfg *Config, store kv.Store, log *dlog.Logger) *Manager {
	if log == nil {
		log = dlog.NewDefault()
	}
	direct := NewDirectBackend(cfg, log)
	library := NewLibraryBackend(cfg, log)
	return &Manager{
		cfg:          cfg,
		log:          log,
		store:        store,
		direct:       direct,
		library:      library,
		chain:        []Backend{direct, library},
		retryBackoff: time.Second,
		refreshFloor: 5 * time.Second,
		subs:         map[int]func(State){},
	}
}

// NewDefaultStore returns the keyring-backed store when the OS keyring comes
// up within the timeout, and an in-memory store otherwise. A memory fallback
// means the session will not survive the process, which beats failing hard
// on headless machines.
func NewDefaultStore(ctx context.Context, log *dlog.Logger, timeout time.Duration) kv.Store {
	ks := kv.NewKeyringStore("drawball")
	if kv.WaitForReady(ctx, ks, timeout) {
		return ks
	}
	ks.Close()
	log.Warn("OS keyring unavailable, session will not persist")
	return kv.NewMemoryStore()
}

// --- snapshots and derived values ---

// Snapshot returns the current state.
func (m *Manager) Snapshot() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return State{
		User:        m.user,
		Role:        m.role,
		DisplayName: m.displayNameLocked(),
		Loading:     m.loading,
	}
}

// CurrentUser returns the authenticated user, or nil.
func (m *Manager) CurrentUser() *User {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.user
}

// Role returns the user's role, empty when unknown.
func (m *Manager) Role() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.role
}

// IsAuthenticated reports whether a user is present.
func (m *Manager) IsAuthenticated() bool { return m.CurrentUser() != nil }

// IsAdmin reports whether the current role is admin.
func (m *Manager) IsAdmin() bool { return m.Role() == RoleAdmin }

// IsParticipant reports whether the current role is participant.
func (m *Manager) IsParticipant() bool { return m.Role() == RoleParticipant }

// DisplayName resolves the display name: role-row value, then identity
// metadata, then the email local part, then a fixed placeholder.
func (m *Manager) DisplayName() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.displayNameLocked()
}

func (m *Manager) displayNameLocked() string {
	if m.roleDisplayName != "" {
		return m.roleDisplayName
	}
	if dn := m.user.MetaDisplayName(); dn != "" {
		return dn
	}
	if m.user != nil && m.user.Email != "" {
		return localPart(m.user.Email)
	}
	return defaultDisplayName
}

// SessionExpiry returns the current token's embedded expiry in unix seconds.
// The second return is false when there is no decodable token.
func (m *Manager) SessionExpiry() (int64, bool) {
	token := m.token()
	if token == "" {
		return 0, false
	}
	exp, err := TokenExpiry(token)
	if err != nil || exp == 0 {
		return 0, false
	}
	return exp, true
}

// Subscribe registers a listener invoked with a snapshot after every state
// change. The returned function cancels the subscription.
func (m *Manager) Subscribe(fn func(State)) func() {
	m.subMu.Lock()
	id := m.nextSub
	m.nextSub++
	m.subs[id] = fn
	m.subMu.Unlock()
	return func() {
		m.subMu.Lock()
		delete(m.subs, id)
		m.subMu.Unlock()
	}
}

func (m *Manager) notify() {
	snap := m.Snapshot()
	m.subMu.Lock()
	fns := make([]func(State), 0, len(m.subs))
	for _, fn := range m.subs {
		fns = append(fns, fn)
	}
	m.subMu.Unlock()
	for _, fn := range fns {
		fn(snap)
	}
}

// --- state mutation helpers ---

func (m *Manager) token() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.accessToken
}

func (m *Manager) refreshTok() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.refreshToken
}

func (m *Manager) setLoading(v bool) {
	m.mu.Lock()
	m.loading = v
	m.mu.Unlock()
	m.notify()
}

func (m *Manager) setSession(user *User, sess *Session) {
	m.mu.Lock()
	m.user = user
	if sess != nil {
		m.accessToken = sess.AccessToken
		m.refreshToken = sess.RefreshToken
	}
	m.mu.Unlock()
	m.notify()
}

func (m *Manager) setRole(role, displayName string) {
	m.mu.Lock()
	m.role = role
	m.roleDisplayName = displayName
	m.mu.Unlock()
	m.notify()
}

func (m *Manager) clearAuth() {
	m.mu.Lock()
	m.user = nil
	m.role = ""
	m.roleDisplayName = ""
	m.accessToken = ""
	m.refreshToken = ""
	m.mu.Unlock()
	m.notify()
}

// --- session check ---

// CheckAuth re-establishes auth state from the persisted session record. The
// fallback chain is ordered: stored record first, then a direct user fetch by
// the stored token. The library is deliberately not consulted here; its
// automatic session probing is the reason this client manages sessions
// manually. Role sync afterwards is best-effort. A concurrent call while one
// is in flight is a no-op.
func (m *Manager) CheckAuth(ctx context.Context) {
	if !m.checking.CompareAndSwap(false, true) {
		return
	}
	m.setLoading(true)
	defer func() {
		if r := recover(); r != nil {
			m.log.Error("auth check panicked", "panic", r)
		}
		m.setLoading(false)
		m.checking.Store(false)
	}()

	var (
		user  *User
		sess  *Session
		token string
	)

	raw, err := m.store.Get(ctx, SessionKey)
	switch {
	case err == nil:
		var nested bool
		var decErr error
		sess, nested, decErr = DecodeSession(raw)
		if decErr != nil {
			m.log.Warn("stored session unreadable", "err", decErr)
			sess = nil
			break
		}
		if nested {
			// Normalize the legacy nested shape back into the store.
			if enc, encErr := sess.Encode(); encErr == nil {
				m.store.Set(ctx, SessionKey, enc)
			}
		}
		token = sess.AccessToken
		if token == "" {
			break
		}
		if sess.Valid(time.Now()) {
			user = sess.User
			break
		}
		expired, expErr := IsTokenExpired(token, 0)
		switch {
		case expErr != nil:
			// Unparseable token: accept the embedded user optimistically
			// and let the next API call sort it out.
			m.log.Warn("stored token unparseable, trusting embedded user", "err", expErr)
			user = sess.User
		case expired:
			m.log.Info("stored session expired, purging")
			m.store.Delete(ctx, SessionKey)
			sess = nil
			token = ""
		default:
			// Parseable but carrying no exp claim; treated as live.
			user = sess.User
		}
	case errors.Is(err, kv.ErrNotFound):
		// fresh anonymous state
	default:
		m.log.Warn("session store read failed", "err", err)
	}

	if user == nil && token != "" {
		out := Deadline(mutationTimeout, func() (*User, error) {
			return m.direct.FetchUser(token)
		})
		if out.Ok() {
			user = out.Value
		} else {
			m.log.Warn("user fetch failed", "backend", m.direct.Name(), "err", out.Err)
		}
	}

	if user == nil {
		m.clearAuth()
		return
	}

	m.setSession(user, sess)

	if res := m.ensureRoleRow(user); !res.Success {
		m.log.Warn("role row sync failed", "err", res.Error)
	}
	m.fetchRole(user.ID)
}

// --- login / register / logout ---

// Login performs a password-grant sign-in, direct HTTP first and the client
// library as fallback. Unverified email addresses are rejected outside dev
// mode. On success the session is synthesized from the token and persisted.
func (m *Manager) Login(email, password string) LoginResult {
	m.setLoading(true)
	defer m.setLoading(false)

	var sess *Session
	out := Deadline(mutationTimeout, func() (*Session, error) {
		return m.direct.Login(email, password)
	})
	if out.Ok() {
		sess = out.Value
	} else {
		m.log.Warn("login failed", "backend", m.direct.Name(), "err", out.Err)
		fallback := Deadline(mutationTimeout, func() (*Session, error) {
			return m.library.Login(email, password)
		})
		if !fallback.Ok() {
			m.log.Error("login failed", "backend", m.library.Name(), "err", fallback.Err)
			return LoginResult{Result: Fail(loginErrorMessage(fallback.Err))}
		}
		sess = fallback.Value
	}

	user := sess.User
	if user == nil || user.ID == "" {
		return LoginResult{Result: Fail("登入失敗：未取得用戶資料")}
	}

	if user.EmailConfirmedAt == nil {
		if !m.cfg.DevMode {
			// Force sign-out so the unverified session cannot linger.
			m.signOutRemote(sess.AccessToken)
			return LoginResult{Result: Fail("請先完成信箱驗證再登入")}
		}
		m.log.Warn("email not confirmed, allowed in dev mode", "email", user.Email)
	}

	persisted := NewSession(sess.AccessToken, sess.RefreshToken, user)
	if enc, err := persisted.Encode(); err == nil {
		if !m.store.Set(context.Background(), SessionKey, enc) {
			m.log.Warn("session persist failed, login will not survive restart")
		}
	}

	m.setSession(user, persisted)
	m.fetchRole(user.ID)
	if res := m.ensureRoleRow(user); !res.Success {
		m.log.Warn("role row sync failed", "err", res.Error)
	}

	return LoginResult{Result: OK("登入成功"), User: user}
}

func loginErrorMessage(err error) string {
	switch {
	case derr.IsCode(err, derr.CodeTimeout):
		return "連線逾時，請稍後再試"
	case derr.IsCode(err, derr.CodeUnauthorized):
		return "帳號或密碼錯誤"
	default:
		return "登入失敗，請稍後再試"
	}
}

// Register creates an account through the client library; this is the one
// operation never routed over direct HTTP. Role-row creation afterwards is
// best-effort and does not affect the reported outcome.
func (m *Manager) Register(email, password, displayName string) RegisterResult {
	if displayName == "" {
		displayName = localPart(email)
	}
	out := Deadline(mutationTimeout, func() (*User, error) {
		return m.library.Signup(email, password, map[string]any{"display_name": displayName})
	})
	if !out.Ok() {
		m.log.Error("sign-up failed", "err", out.Err)
		return RegisterResult{Result: Fail("註冊失敗，請稍後再試")}
	}
	user := out.Value

	if res := m.ensureRoleRow(user); !res.Success {
		m.log.Warn("role row creation after sign-up failed", "err", res.Error)
	}

	pending := user.ConfirmationSentAt != nil && user.EmailConfirmedAt == nil
	msg := "註冊成功"
	if pending {
		msg = "註冊成功，請至信箱收信完成驗證"
	}
	return RegisterResult{Result: OK(msg), PendingConfirmation: pending}
}

// Logout clears in-memory state and the persisted record first, then fires
// the remote sign-out with a short race. Local state is authoritative: the
// remote outcome never changes the reported result.
func (m *Manager) Logout() Result {
	token := m.token()

	m.clearAuth()
	if !m.store.Delete(context.Background(), SessionKey) {
		m.log.Warn("session record removal unverified")
	}

	m.signOutRemote(token)
	return OK("已登出")
}

func (m *Manager) signOutRemote(token string) {
	out := deadlineErr(remoteLogoutTimeout, func() error {
		return m.library.SignOut(token)
	})
	if !out.Ok() {
		m.log.Warn("remote sign-out failed", "err", out.Err)
	}
}

// --- password operations ---

// ResetPassword requests a recovery email, direct HTTP first.
func (m *Manager) ResetPassword(email string) Result {
	_, err := tryEach(m.log, "password recovery", passwordTimeout, m.chain, func(b Backend) (struct{}, error) {
		return struct{}{}, b.Recover(email, m.cfg.RedirectURL)
	})
	if err != nil {
		return Fail("重設密碼失敗，請稍後再試")
	}
	return OK("重設密碼連結已發送至您的信箱")
}

// UpdatePassword sets a new password for the current session, direct HTTP
// first.
func (m *Manager) UpdatePassword(newPassword string) Result {
	token := m.token()
	if token == "" {
		return Fail("請先登入")
	}
	_, err := tryEach(m.log, "password update", passwordTimeout, m.chain, func(b Backend) (struct{}, error) {
		return struct{}{}, b.UpdatePassword(token, newPassword)
	})
	if err != nil {
		return Fail("密碼更新失敗，請稍後再試")
	}
	return OK("密碼更新成功")
}

// --- role row synchronization ---

// ensureRoleRow guarantees a role row exists for the user, trying the
// direct-HTTP variant first and the library variant as fallback. The two
// variants intentionally keep different conflict policies.
func (m *Manager) ensureRoleRow(user *User) Result {
	if res := m.ensureRoleRowDirect(user); res.Success {
		return res
	}
	return m.ensureRoleRowLibrary(user)
}

func (m *Manager) roleRowFor(user *User) map[string]any {
	dn := user.MetaDisplayName()
	if dn == "" {
		dn = localPart(user.Email)
	}
	return map[string]any{
		"user_id":      user.ID,
		"email":        user.Email,
		"role":         RoleParticipant,
		"display_name": dn,
	}
}

// ensureRoleRowDirect checks for the row and inserts when absent. A 409 on
// insert means the row already exists and counts as success; any other
// insert failure is hard, without retry.
func (m *Manager) ensureRoleRowDirect(user *User) Result {
	token := m.token()

	check := Deadline(roleQueryTimeout, func() (*Role, error) {
		return m.direct.GetRole(token, user.ID)
	})
	if check.Ok() {
		return OK("")
	}
	if !derr.IsCode(check.Err, derr.CodeNotFound) {
		m.log.Warn("role check failed", "backend", m.direct.Name(), "err", check.Err)
		return Fail("角色資料查詢失敗")
	}

	ins := deadlineErr(mutationTimeout, func() error {
		return m.direct.CreateRole(token, m.roleRowFor(user))
	})
	if ins.Ok() || derr.IsCode(ins.Err, derr.CodeConflict) {
		return OK("")
	}
	m.log.Warn("role insert failed", "backend", m.direct.Name(), "err", ins.Err)
	return Fail("角色資料建立失敗")
}

// ensureRoleRowLibrary is the library variant: on a duplicate-key insert it
// re-checks existence up to 3 times with linear backoff before giving up.
func (m *Manager) ensureRoleRowLibrary(user *User) Result {
	token := m.token()

	exists := func() (bool, error) {
		_, err := m.library.GetRole(token, user.ID)
		if err == nil {
			return true, nil
		}
		if derr.IsCode(err, derr.CodeNotFound) {
			return false, nil
		}
		return false, err
	}

	check := Deadline(roleQueryTimeout, exists)
	if check.Ok() && check.Value {
		return OK("")
	}
	if !check.Ok() {
		m.log.Warn("role check failed", "backend", m.library.Name(), "err", check.Err)
		return Fail("角色資料查詢失敗")
	}

	ins := deadlineErr(mutationTimeout, func() error {
		return m.library.CreateRole(token, m.roleRowFor(user))
	})
	if ins.Ok() {
		return OK("")
	}
	if derr.IsCode(ins.Err, derr.CodeConflict) {
		// Lost an insert race; confirm the winner's row is visible.
		for attempt := 1; attempt <= 3; attempt++ {
			time.Sleep(time.Duration(attempt) * m.retryBackoff)
			recheck := Deadline(roleQueryTimeout, exists)
			if recheck.Ok() && recheck.Value {
				return OK("")
			}
		}
		m.log.Warn("role row still missing after duplicate-key insert", "user_id", user.ID)
		return Fail("角色資料同步失敗")
	}
	m.log.Warn("role insert failed", "backend", m.library.Name(), "err", ins.Err)
	return Fail("角色資料建立失敗")
}

// fetchRole loads the user's role and display info, direct HTTP first. A
// missing row is not an error. The stored display name wins; user metadata
// only fills a blank.
func (m *Manager) fetchRole(userID string) {
	token := m.token()
	role, err := tryEach(m.log, "role fetch", roleQueryTimeout, m.chain, func(b Backend) (*Role, error) {
		return b.GetRole(token, userID)
	})
	if err != nil {
		if !derr.IsCode(err, derr.CodeNotFound) {
			m.log.Warn("role fetch failed", "user_id", userID, "err", err)
		}
		m.setRole("", "")
		return
	}
	dn := role.DisplayName
	if dn == "" {
		dn = m.CurrentUser().MetaDisplayName()
	}
	m.setRole(role.Role, dn)
}

// AssignRole upserts a role row by email. Admin only.
func (m *Manager) AssignRole(email, role string) Result {
	if !m.IsAdmin() {
		return Fail("權限不足")
	}
	if role != RoleAdmin && role != RoleParticipant {
		return Fail("無效的角色")
	}
	token := m.token()
	_, err := tryEach(m.log, "role assignment", mutationTimeout, m.chain, func(b Backend) (struct{}, error) {
		return struct{}{}, b.UpsertRoleByEmail(token, map[string]any{"email": email, "role": role})
	})
	if err != nil {
		return Fail("設置用戶角色失敗")
	}
	return OK("角色設定成功")
}

// --- display name updates ---

// UpdateDisplayName fans the new name out to the role table, the player
// table and the identity-provider metadata through the client library. Each
// target is independently best-effort; the call succeeds when any target
// succeeded.
func (m *Manager) UpdateDisplayName(name string) Result {
	user := m.CurrentUser()
	if user == nil {
		return Fail("請先登入")
	}
	token := m.token()

	targets := []struct {
		name string
		fn   func() error
	}{
		{"user_roles", func() error {
			return m.library.UpdateRole(token, user.ID, map[string]any{"display_name": name})
		}},
		{"players", func() error {
			p, err := m.library.GetPlayerByUserID(token, user.ID)
			if err != nil {
				return err
			}
			_, err = m.library.UpdatePlayer(token, p.ID, map[string]any{"name": name, "display_name": name})
			return err
		}},
		{"auth-metadata", func() error {
			_, err := m.library.UpdateUserData(token, map[string]any{"display_name": name})
			return err
		}},
	}

	succeeded := 0
	for _, t := range targets {
		out := deadlineErr(mutationTimeout, t.fn)
		if out.Ok() {
			succeeded++
		} else {
			m.log.Warn("display name target failed", "target", t.name, "err", out.Err)
		}
	}
	if succeeded == 0 {
		return Fail("名稱更新失敗")
	}
	return OK("名稱更新成功")
}

// UpdateAuthDisplayName updates only the identity-provider metadata through
// the client library.
func (m *Manager) UpdateAuthDisplayName(name string) Result {
	token := m.token()
	if token == "" {
		return Fail("請先登入")
	}
	out := deadlineErr(mutationTimeout, func() error {
		_, err := m.library.UpdateUserData(token, map[string]any{"display_name": name})
		return err
	})
	if !out.Ok() {
		m.log.Warn("auth metadata update failed", "err", out.Err)
		return Fail("名稱更新失敗")
	}
	return OK("名稱更新成功")
}

// SetLocalDisplayName updates the in-memory user metadata and the persisted
// session's embedded user without any network call. It cannot fail.
func (m *Manager) SetLocalDisplayName(name string) Result {
	m.mu.Lock()
	if m.user != nil {
		meta := make(map[string]any, len(m.user.UserMetadata)+1)
		for k, v := range m.user.UserMetadata {
			meta[k] = v
		}
		meta["display_name"] = name
		updated := *m.user
		updated.UserMetadata = meta
		m.user = &updated
	}
	user := m.user
	access := m.accessToken
	m.mu.Unlock()
	m.notify()

	if user != nil && access != "" {
		ctx := context.Background()
		if raw, err := m.store.Get(ctx, SessionKey); err == nil {
			if sess, _, decErr := DecodeSession(raw); decErr == nil {
				sess.User = user
				if enc, encErr := sess.Encode(); encErr == nil {
					m.store.Set(ctx, SessionKey, enc)
				}
			}
		} else if !errors.Is(err, kv.ErrNotFound) {
			m.log.Warn("session store read failed", "err", err)
		}
	}
	return OK("名稱更新成功")
}

// UpdateDisplayNameDirect updates the identity-provider metadata and the
// role table over direct HTTP, synchronizes local state, then re-fetches the
// role best-effort. Succeeds when any remote target succeeded.
func (m *Manager) UpdateDisplayNameDirect(name string) Result {
	user := m.CurrentUser()
	if user == nil {
		return Fail("請先登入")
	}
	token := m.token()

	succeeded := 0
	meta := deadlineErr(mutationTimeout, func() error {
		_, err := m.direct.UpdateUserData(token, map[string]any{"display_name": name})
		return err
	})
	if meta.Ok() {
		succeeded++
	} else {
		m.log.Warn("display name target failed", "target", "auth-metadata", "err", meta.Err)
	}

	roleUpd := deadlineErr(mutationTimeout, func() error {
		return m.direct.UpdateRole(token, user.ID, map[string]any{"display_name": name})
	})
	if roleUpd.Ok() {
		succeeded++
	} else {
		m.log.Warn("display name target failed", "target", "user_roles", "err", roleUpd.Err)
	}

	if succeeded == 0 {
		return Fail("名稱更新失敗")
	}

	m.SetLocalDisplayName(name)
	m.fetchRole(user.ID)
	return OK("名稱更新成功")
}

// --- token refresh ---

// StartAutoRefresh launches the background loop standing in for the identity
// provider's auth-change notifications: it refreshes the token shortly
// before expiry, rewrites the persisted record, and syncs the in-memory user
// only when ids match. Session creation and teardown stay with the manual
// flows above.
func (m *Manager) StartAutoRefresh(ctx context.Context) {
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-time.After(m.nextRefreshDelay()):
			}
			m.refreshSession(ctx)
		}
	}()
}

// nextRefreshDelay targets 60s before token expiry, clamped to the floor.
func (m *Manager) nextRefreshDelay() time.Duration {
	token := m.token()
	if token == "" {
		return time.Minute
	}
	exp, err := TokenExpiry(token)
	if err != nil || exp == 0 {
		return time.Minute
	}
	d := time.Until(time.Unix(exp-60, 0))
	if d < m.refreshFloor {
		return m.refreshFloor
	}
	return d
}

func (m *Manager) refreshSession(ctx context.Context) {
	refresh := m.refreshTok()
	if refresh == "" {
		return
	}
	sess, err := tryEach(m.log, "token refresh", mutationTimeout, m.chain, func(b Backend) (*Session, error) {
		return b.Refresh(refresh)
	})
	if err != nil {
		m.log.Warn("token refresh failed", "err", err)
		return
	}

	persisted := NewSession(sess.AccessToken, sess.RefreshToken, sess.User)
	if enc, encErr := persisted.Encode(); encErr == nil {
		if !m.store.Set(ctx, SessionKey, enc) {
			m.log.Warn("refreshed session persist failed")
		}
	}

	m.mu.Lock()
	m.accessToken = persisted.AccessToken
	m.refreshToken = persisted.RefreshToken
	if m.user != nil && persisted.User != nil && m.user.ID == persisted.User.ID {
		m.user = persisted.User
	}
	m.mu.Unlock()
	m.notify()
	m.log.Debug("session refreshed", "expires_at", persisted.ExpiresAt)
}

// deadlineErr is Deadline for error-only operations.
func deadlineErr(d time.Duration, fn func() error) Outcome[struct{}] {
	return Deadline(d, func() (struct{}, error) {
		return struct{}{}, fn()
	})
}
