package game

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wfunc/survival-game/internal/errors"
	"github.com/wfunc/survival-game/internal/game/combat"
	"github.com/wfunc/survival-game/internal/game/entity"
	"go.uber.org/zap"
)

func newTestManager(t *testing.T) (*SessionManager, *MemorySlotStore) {
	t.Helper()
	rt, store := testRuntime(t)
	rt.Input = nil
	return NewSessionManager(&SessionConfig{
		Logger:   zap.NewNop(),
		Runtime:  rt,
		Recovery: NewRecoveryManager(zap.NewNop(), store, "autosave"),
	}), store
}

func waitForTurn(t *testing.T, sm *SessionManager, turn int) Summary {
	t.Helper()
	var latest Summary
	require.Eventually(t, func() bool {
		var err error
		latest, err = sm.Latest()
		return err == nil && latest.Turn >= turn && latest.Phase == PhaseStart
	}, 2*time.Second, 5*time.Millisecond)
	return latest
}

func TestSessionManagerPlaysSubmittedActions(t *testing.T) {
	ctx := context.Background()
	sm, store := newTestManager(t)

	_, err := sm.Latest()
	assert.True(t, errors.Is(err, errors.ErrNotFound))

	sum, err := sm.Start(ctx, NewGameOptions{}, true)
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Turn)

	_, err = sm.Start(ctx, NewGameOptions{}, true)
	assert.True(t, errors.Is(err, errors.ErrAlreadyExists))

	require.NoError(t, sm.Submit(ctx, "rest"))
	waitForTurn(t, sm, 2)

	assert.True(t, errors.Is(sm.Submit(ctx, "dance"), errors.ErrUnknownAction))

	require.NoError(t, sm.Submit(ctx, "quit"))
	require.Eventually(t, func() bool {
		latest, err := sm.Latest()
		return err == nil && latest.Outcome == OutcomePlayerQuit
	}, 2*time.Second, 5*time.Millisecond)
	require.Eventually(t, func() bool {
		return errors.Is(sm.Submit(ctx, "rest"), errors.ErrGameOver)
	}, 2*time.Second, 5*time.Millisecond)
	assert.NoError(t, sm.Err())

	exists, err := store.Exists(ctx, "autosave")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestSessionManagerStopSavesRunningGame(t *testing.T) {
	ctx := context.Background()
	sm, store := newTestManager(t)

	_, err := sm.Start(ctx, NewGameOptions{}, false)
	require.NoError(t, err)
	require.NoError(t, sm.Submit(ctx, "rest"))
	waitForTurn(t, sm, 2)

	stopCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	require.NoError(t, sm.Stop(stopCtx))

	snap := loadSlot(t, store, "autosave")
	assert.Equal(t, 2, snap.Header().Turn)

	// 再次开始时继续存档
	sum, err := sm.Start(ctx, NewGameOptions{}, true)
	require.NoError(t, err)
	assert.Equal(t, 2, sum.Turn)
	require.NoError(t, sm.Stop(stopCtx))
}

func TestHostedSessionKeepsDetachedSummary(t *testing.T) {
	knife := &entity.Item{Name: "Knife", Kind: entity.KindWeapon, Weapon: &entity.Weapon{Durability: 60, MaxDurability: 60, WearPerUse: 3}}
	bandage := &entity.Item{Name: "Bandage", Kind: entity.KindMedicine, Medicine: &entity.Medicine{Uses: 1, MaxUses: 1}}
	summary := Summary{
		Turn: 4,
		Action: &ActionResult{
			Action:  "attack wolf",
			OK:      true,
			Combat:  &combat.Report{Creature: "Wolf", CreatureKilled: true, Loot: []*entity.Item{knife}},
			Ability: &entity.AbilityResult{Ability: entity.AbilityForage, Item: bandage},
		},
	}

	h := &hostedSession{}
	h.Present(summary)

	// 回合循环继续修改背包中的物品
	knife.Wear()
	bandage.ConsumeUse()
	summary.Action.Combat.Loot[0] = nil

	latest := h.snapshot()
	require.NotNil(t, latest.Action)
	require.Len(t, latest.Action.Combat.Loot, 1)
	assert.Equal(t, 60.0, latest.Action.Combat.Loot[0].Weapon.Durability)
	assert.Equal(t, 1, latest.Action.Ability.Item.Medicine.Uses)
	assert.Equal(t, "Wolf", latest.Action.Combat.Creature)
}
