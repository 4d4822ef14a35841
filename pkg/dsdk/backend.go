package dsdk

import (
	"time"

	"github.com/yuchia/drawball/pkg/dlog"
)

// AuthBackend is one interchangeable strategy for identity-provider
// operations. Two implementations exist: DirectBackend speaks raw HTTP to the
// provider, LibraryBackend goes through the vendor client library. The
// manager tries them in that order; sign-up and remote sign-out are
// library-only by design and live on LibraryBackend directly.
type AuthBackend interface {
	// FetchUser resolves the user owning the bearer token.
	FetchUser(token string) (*User, error)
	// Login performs a password-grant sign-in and returns the raw session.
	Login(email, password string) (*Session, error)
	// Recover requests a password-recovery email.
	Recover(email, redirectTo string) error
	// UpdatePassword sets a new password for the token's user.
	UpdatePassword(token, newPassword string) error
	// UpdateUserData merges data into the user's metadata.
	UpdateUserData(token string, data map[string]any) (*User, error)
	// Refresh exchanges a refresh token for a fresh session.
	Refresh(refreshToken string) (*Session, error)
}

// DataBackend is one interchangeable strategy for the row-level REST API.
// Mutation payloads are maps so callers control exactly which columns a
// PATCH or INSERT touches.
type DataBackend interface {
	// GetRole returns the role row for a user, derr.CodeNotFound when absent.
	GetRole(token, userID string) (*Role, error)
	CreateRole(token string, row map[string]any) error
	UpdateRole(token, userID string, patch map[string]any) error
	// UpsertRoleByEmail inserts or overwrites a role row keyed by email.
	UpsertRoleByEmail(token string, row map[string]any) error

	// GetPlayerByUserID returns the player row, derr.CodeNotFound when absent.
	GetPlayerByUserID(token, userID string) (*Player, error)
	CreatePlayer(token string, row map[string]any) (*Player, error)
	UpdatePlayer(token string, playerID int64, patch map[string]any) (*Player, error)
}

// Backend is the full capability surface shared by both strategies.
type Backend interface {
	AuthBackend
	DataBackend
	Name() string
}

// tryEach attempts op against each backend in order with the given per-call
// budget, short-circuiting on the first success. Failed attempts are logged
// and the last error is returned when every strategy fails.
func tryEach[T any](log *dlog.Logger, what string, d time.Duration, backends []Backend, op func(Backend) (T, error)) (T, error) {
	var (
		zero    T
		lastErr error
	)
	for _, b := range backends {
		backend := b
		out := Deadline(d, func() (T, error) { return op(backend) })
		if out.Ok() {
			return out.Value, nil
		}
		lastErr = out.Err
		log.Warn(what+" failed", "backend", backend.Name(), "err", out.Err)
	}
	return zero, lastErr
}
