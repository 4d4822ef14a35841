package dsdk

import (
	"sync"

	"github.com/yuchia/drawball/pkg/dlog"
	"github.com/yuchia/drawball/pkg/dsdk/derr"
)

// Tracker manages the current user's membership record in the ball-drawing
// activity. It reads auth state from the Manager to gate its own calls and
// shares the Manager's backend chain.
type Tracker struct {
	auth *Manager
	log  *dlog.Logger

	mu      sync.RWMutex
	player  *Player
	loading bool
}

// NewTracker builds a tracker bound to the given auth manager.
func NewTracker(auth *Manager) *Tracker {
	return &Tracker{auth: auth, log: auth.log}
}

// Player returns the current user's player row, or nil when none is known.
func (t *Tracker) Player() *Player {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.player
}

// IsParticipating reports whether the current user's player row is active.
func (t *Tracker) IsParticipating() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.player != nil && t.player.IsParticipating
}

func (t *Tracker) set(p *Player) {
	t.mu.Lock()
	t.player = p
	t.mu.Unlock()
}

func (t *Tracker) setLoading(v bool) {
	t.mu.Lock()
	t.loading = v
	t.mu.Unlock()
}

// Loading reports whether a tracker operation is in flight.
func (t *Tracker) Loading() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.loading
}

// CheckStatus looks up the player row for the current user. No user clears
// local state silently; a missing row just means "no player yet"; any other
// failure clears state and is logged.
func (t *Tracker) CheckStatus() {
	user := t.auth.CurrentUser()
	if user == nil {
		t.set(nil)
		return
	}
	t.setLoading(true)
	defer t.setLoading(false)

	token := t.auth.token()
	p, err := tryEach(t.log, "player lookup", roleQueryTimeout, t.auth.chain, func(b Backend) (*Player, error) {
		return b.GetPlayerByUserID(token, user.ID)
	})
	if err != nil {
		if !derr.IsCode(err, derr.CodeNotFound) {
			t.log.Warn("participation status check failed", "user_id", user.ID, "err", err)
		}
		t.set(nil)
		return
	}
	t.set(p)
}

// Join enters the drawing activity. First join creates the player row;
// a paused player rejoins. A player already participating cannot leave
// through this call - only an admin can pause someone.
func (t *Tracker) Join() Result {
	user := t.auth.CurrentUser()
	if user == nil {
		return Fail("請先登入")
	}
	t.setLoading(true)
	defer t.setLoading(false)

	token := t.auth.token()
	player := t.Player()

	if player == nil {
		name := t.auth.DisplayName()
		row := map[string]any{
			"user_id":          user.ID,
			"name":             name,
			"display_name":     name,
			"balls":            0,
			"is_participating": true,
		}
		created, err := tryEach(t.log, "player create", mutationTimeout, t.auth.chain, func(b Backend) (*Player, error) {
			return b.CreatePlayer(token, row)
		})
		if err != nil {
			return Fail("操作失敗，請稍後再試")
		}
		t.set(created)
		return OK("成功加入抽球活動！")
	}

	if player.IsParticipating {
		return Fail("已經在參與中")
	}

	updated, err := tryEach(t.log, "player rejoin", mutationTimeout, t.auth.chain, func(b Backend) (*Player, error) {
		return b.UpdatePlayer(token, player.ID, map[string]any{"is_participating": true})
	})
	if err != nil {
		return Fail("操作失敗，請稍後再試")
	}
	t.set(updated)
	return OK("重新加入抽球活動！")
}

// UpdateName renames the player. The players-table update is required; the
// role-table display name is best-effort afterwards.
func (t *Tracker) UpdateName(newName string) Result {
	player := t.Player()
	if player == nil {
		return Fail("找不到玩家資料")
	}
	token := t.auth.token()

	updated, err := tryEach(t.log, "player rename", mutationTimeout, t.auth.chain, func(b Backend) (*Player, error) {
		return b.UpdatePlayer(token, player.ID, map[string]any{"name": newName, "display_name": newName})
	})
	if err != nil {
		if derr.IsCode(err, derr.CodeConflict) || isDuplicateKey(err) {
			return Fail("此名稱已被使用")
		}
		return Fail("更新失敗，請稍後再試")
	}
	t.set(updated)

	if user := t.auth.CurrentUser(); user != nil {
		_, rerr := tryEach(t.log, "role display name update", mutationTimeout, t.auth.chain, func(b Backend) (struct{}, error) {
			return struct{}{}, b.UpdateRole(token, user.ID, map[string]any{"display_name": newName})
		})
		if rerr != nil {
			t.log.Warn("role display name update failed", "user_id", user.ID, "err", rerr)
		}
	}

	return OK("名稱更新成功")
}

// SetPlayerParticipation sets any player's participation flag. Admin only.
func (t *Tracker) SetPlayerParticipation(playerID int64, participating bool) Result {
	if !t.auth.IsAdmin() {
		return Fail("權限不足")
	}
	token := t.auth.token()

	updated, err := tryEach(t.log, "participation override", mutationTimeout, t.auth.chain, func(b Backend) (*Player, error) {
		return b.UpdatePlayer(token, playerID, map[string]any{"is_participating": participating})
	})
	if err != nil {
		return Fail("操作失敗")
	}
	if p := t.Player(); p != nil && p.ID == playerID {
		t.set(updated)
	}
	return OK("")
}

// CanParticipate reports whether the current user may join the activity.
func (t *Tracker) CanParticipate() bool {
	if t.auth.CurrentUser() == nil {
		return false
	}
	role := t.auth.Role()
	return role == RoleParticipant || role == RoleAdmin
}

// ParticipationText is the UI hint for the current eligibility and
// membership state.
func (t *Tracker) ParticipationText() string {
	if !t.CanParticipate() {
		return "需要參加者或管理員權限"
	}
	player := t.Player()
	if player == nil {
		return "加入抽球"
	}
	if player.IsParticipating {
		return "參與中"
	}
	return "重新參與"
}
