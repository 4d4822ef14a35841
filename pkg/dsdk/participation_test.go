package dsdk

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yuchia/drawball/pkg/dsdk/derr"
)

func newTestTracker(direct *fakeBackend, library *fakeLibrary) (*Tracker, *Manager) {
	m, _ := newTestManager(direct, library, false)
	return NewTracker(m), m
}

func loginForTracker(m *Manager, role string) *User {
	user := confirmedUser("user-1", "alice@example.com")
	m.setSession(user, &Session{AccessToken: "tok"})
	m.setRole(role, "")
	return user
}

func TestCheckStatusWithoutUserClearsState(t *testing.T) {
	direct := &fakeBackend{name: "direct"}
	library := &fakeLibrary{fakeBackend: fakeBackend{name: "library"}}
	tr, _ := newTestTracker(direct, library)

	tr.CheckStatus()
	assert.Nil(t, tr.Player())
	assert.Empty(t, direct.calls, "no lookup without a user")
}

func TestCheckStatusNoPlayerYet(t *testing.T) {
	direct := &fakeBackend{name: "direct"}
	direct.getPlayerFn = func(token, userID string) (*Player, error) {
		return nil, derr.Newf(derr.CodeNotFound, "no player row")
	}
	library := &fakeLibrary{fakeBackend: fakeBackend{name: "library"}}
	library.getPlayerFn = direct.getPlayerFn

	tr, m := newTestTracker(direct, library)
	loginForTracker(m, RoleParticipant)

	tr.CheckStatus()
	assert.Nil(t, tr.Player())
	assert.False(t, tr.IsParticipating())
}

func TestCheckStatusLoadsPlayer(t *testing.T) {
	direct := &fakeBackend{name: "direct"}
	direct.getPlayerFn = func(token, userID string) (*Player, error) {
		return &Player{ID: 9, UserID: userID, Name: "小明", Balls: 3, IsParticipating: true}, nil
	}
	library := &fakeLibrary{fakeBackend: fakeBackend{name: "library"}}

	tr, m := newTestTracker(direct, library)
	loginForTracker(m, RoleParticipant)

	tr.CheckStatus()
	require.NotNil(t, tr.Player())
	assert.True(t, tr.IsParticipating())
	assert.Equal(t, 3, tr.Player().Balls)
}

func TestJoinCreatesPlayerRow(t *testing.T) {
	var inserted map[string]any
	direct := &fakeBackend{name: "direct"}
	direct.createPlayerFn = func(token string, row map[string]any) (*Player, error) {
		inserted = row
		return &Player{ID: 9, UserID: "user-1", Name: row["name"].(string), IsParticipating: true}, nil
	}
	library := &fakeLibrary{fakeBackend: fakeBackend{name: "library"}}

	tr, m := newTestTracker(direct, library)
	loginForTracker(m, RoleParticipant)
	m.setRole(RoleParticipant, "小明")

	res := tr.Join()
	require.True(t, res.Success, "join failed: %s", res.Error)
	assert.Equal(t, "成功加入抽球活動！", res.Message)
	assert.True(t, tr.IsParticipating())

	require.NotNil(t, inserted)
	assert.Equal(t, "user-1", inserted["user_id"])
	assert.Equal(t, "小明", inserted["name"], "player name seeds from the resolved display name")
	assert.Equal(t, 0, inserted["balls"])
	assert.Equal(t, true, inserted["is_participating"])
}

func TestJoinRequiresLogin(t *testing.T) {
	direct := &fakeBackend{name: "direct"}
	library := &fakeLibrary{fakeBackend: fakeBackend{name: "library"}}
	tr, _ := newTestTracker(direct, library)

	res := tr.Join()
	require.False(t, res.Success)
	assert.Equal(t, "請先登入", res.Error)
}

func TestJoinWhileParticipatingFailsWithoutMutation(t *testing.T) {
	direct := &fakeBackend{name: "direct"}
	library := &fakeLibrary{fakeBackend: fakeBackend{name: "library"}}

	tr, m := newTestTracker(direct, library)
	loginForTracker(m, RoleParticipant)
	tr.set(&Player{ID: 9, UserID: "user-1", IsParticipating: true})

	res := tr.Join()
	require.False(t, res.Success, "an active player cannot re-join")
	assert.Equal(t, "已經在參與中", res.Error)
	assert.Zero(t, direct.callCount("updatePlayer"), "no mutation may be issued")
	assert.Zero(t, direct.callCount("createPlayer"))
	assert.True(t, tr.IsParticipating(), "state unchanged")
}

func TestJoinRejoinsPausedPlayer(t *testing.T) {
	direct := &fakeBackend{name: "direct"}
	direct.updatePlayerFn = func(token string, playerID int64, patch map[string]any) (*Player, error) {
		assert.Equal(t, int64(9), playerID)
		assert.Equal(t, map[string]any{"is_participating": true}, patch)
		return &Player{ID: 9, UserID: "user-1", IsParticipating: true}, nil
	}
	library := &fakeLibrary{fakeBackend: fakeBackend{name: "library"}}

	tr, m := newTestTracker(direct, library)
	loginForTracker(m, RoleParticipant)
	tr.set(&Player{ID: 9, UserID: "user-1", IsParticipating: false})

	res := tr.Join()
	require.True(t, res.Success, "rejoin failed: %s", res.Error)
	assert.Equal(t, "重新加入抽球活動！", res.Message)
	assert.True(t, tr.IsParticipating())
}

func TestUpdateNameDuplicate(t *testing.T) {
	conflict := derr.Newf(derr.CodeConflict, "duplicate key value violates unique constraint")
	direct := &fakeBackend{name: "direct"}
	direct.updatePlayerFn = func(string, int64, map[string]any) (*Player, error) { return nil, conflict }
	library := &fakeLibrary{fakeBackend: fakeBackend{name: "library"}}
	library.updatePlayerFn = direct.updatePlayerFn

	tr, m := newTestTracker(direct, library)
	loginForTracker(m, RoleParticipant)
	tr.set(&Player{ID: 9, UserID: "user-1", Name: "舊名", IsParticipating: true})

	res := tr.UpdateName("小明")
	require.False(t, res.Success)
	assert.Equal(t, "此名稱已被使用", res.Error)
	assert.Equal(t, "舊名", tr.Player().Name, "failed rename keeps the old row")
}

func TestUpdateNameRoleSyncIsBestEffort(t *testing.T) {
	direct := &fakeBackend{name: "direct"}
	direct.updatePlayerFn = func(token string, playerID int64, patch map[string]any) (*Player, error) {
		return &Player{ID: 9, UserID: "user-1", Name: patch["name"].(string), IsParticipating: true}, nil
	}
	direct.updateRoleFn = func(string, string, map[string]any) error {
		return derr.Newf(derr.CodeUnavailable, "down")
	}
	library := &fakeLibrary{fakeBackend: fakeBackend{name: "library"}}
	library.updateRoleFn = direct.updateRoleFn

	tr, m := newTestTracker(direct, library)
	loginForTracker(m, RoleParticipant)
	tr.set(&Player{ID: 9, UserID: "user-1", Name: "舊名", IsParticipating: true})

	res := tr.UpdateName("新名")
	require.True(t, res.Success, "role-table sync failure must not fail the rename: %s", res.Error)
	assert.Equal(t, "名稱更新成功", res.Message)
	assert.Equal(t, "新名", tr.Player().Name)
}

func TestUpdateNameWithoutPlayer(t *testing.T) {
	direct := &fakeBackend{name: "direct"}
	library := &fakeLibrary{fakeBackend: fakeBackend{name: "library"}}
	tr, m := newTestTracker(direct, library)
	loginForTracker(m, RoleParticipant)

	res := tr.UpdateName("新名")
	require.False(t, res.Success)
	assert.Equal(t, "找不到玩家資料", res.Error)
}

func TestSetPlayerParticipationRequiresAdmin(t *testing.T) {
	direct := &fakeBackend{name: "direct"}
	library := &fakeLibrary{fakeBackend: fakeBackend{name: "library"}}

	tr, m := newTestTracker(direct, library)
	loginForTracker(m, RoleParticipant)

	res := tr.SetPlayerParticipation(9, false)
	require.False(t, res.Success)
	assert.Equal(t, "權限不足", res.Error)
	assert.Empty(t, direct.calls)
}

func TestSetPlayerParticipationAsAdmin(t *testing.T) {
	direct := &fakeBackend{name: "direct"}
	direct.updatePlayerFn = func(token string, playerID int64, patch map[string]any) (*Player, error) {
		return &Player{ID: playerID, UserID: "user-7", IsParticipating: patch["is_participating"].(bool)}, nil
	}
	library := &fakeLibrary{fakeBackend: fakeBackend{name: "library"}}

	tr, m := newTestTracker(direct, library)
	loginForTracker(m, RoleAdmin)

	res := tr.SetPlayerParticipation(42, false)
	require.True(t, res.Success, "admin override failed: %s", res.Error)
	assert.Nil(t, tr.Player(), "someone else's row does not become ours")

	// Pausing our own row updates local state.
	tr.set(&Player{ID: 42, UserID: "user-1", IsParticipating: true})
	res = tr.SetPlayerParticipation(42, false)
	require.True(t, res.Success)
	assert.False(t, tr.IsParticipating())
}

func TestCanParticipate(t *testing.T) {
	direct := &fakeBackend{name: "direct"}
	library := &fakeLibrary{fakeBackend: fakeBackend{name: "library"}}
	tr, m := newTestTracker(direct, library)

	assert.False(t, tr.CanParticipate(), "anonymous users cannot join")

	loginForTracker(m, "")
	assert.False(t, tr.CanParticipate(), "a user with no role cannot join")

	m.setRole(RoleParticipant, "")
	assert.True(t, tr.CanParticipate())

	m.setRole(RoleAdmin, "")
	assert.True(t, tr.CanParticipate())
}

func TestParticipationText(t *testing.T) {
	direct := &fakeBackend{name: "direct"}
	library := &fakeLibrary{fakeBackend: fakeBackend{name: "library"}}
	tr, m := newTestTracker(direct, library)

	assert.Equal(t, "需要參加者或管理員權限", tr.ParticipationText())

	loginForTracker(m, RoleParticipant)
	assert.Equal(t, "加入抽球", tr.ParticipationText())

	tr.set(&Player{ID: 9, IsParticipating: true})
	assert.Equal(t, "參與中", tr.ParticipationText())

	tr.set(&Player{ID: 9, IsParticipating: false})
	assert.Equal(t, "重新參與", tr.ParticipationText())
}
