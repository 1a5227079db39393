package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wfunc/survival-game/internal/errors"
	"github.com/wfunc/survival-game/internal/game/entity"
)

func mustAction(t *testing.T, text string) Action {
	t.Helper()
	a, err := ParseAction(text)
	require.NoError(t, err)
	return a
}

func giveWood(t *testing.T, s *Session, n int) {
	t.Helper()
	wood, ok := s.rt.Catalog.NewItem("wood", nil)
	require.True(t, ok)
	wood.Material.Quantity = n
	require.NoError(t, s.State().Player.Carry(wood))
}

func TestExploreCollectsAndSpendsEnergy(t *testing.T) {
	s, _ := newTestSession(t)
	p := s.State().Player
	before := p.Inventory.Len()

	result := s.performAction(mustAction(t, "explore"))
	require.True(t, result.OK, result.Reason)
	assert.Equal(t, 15, result.EnergySpent)
	assert.Equal(t, 65.0, p.Stats.Energy)
	require.Len(t, result.Collected, 1)

	visit := s.State().Ambients.Visits["camp"]
	total := visit.Resources["wood"].Remaining + visit.Resources["berries"].Remaining
	assert.Equal(t, 6, total)
	assert.GreaterOrEqual(t, p.Inventory.Len(), before)
}

func TestExploreWithInsufficientEnergyIsRejected(t *testing.T) {
	s, _ := newTestSession(t)
	p := s.State().Player
	p.SetEnergy(10)

	result := s.performAction(mustAction(t, "explore"))
	assert.False(t, result.OK)
	assert.Equal(t, errors.ErrInsufficientEnergy, result.Code)
	assert.Equal(t, 10.0, p.Stats.Energy)
	assert.Equal(t, 5, s.State().Ambients.Visits["camp"].Resources["wood"].Remaining)
}

func TestExploreReturnsUncarriedResource(t *testing.T) {
	s, _ := newTestSession(t)
	p := s.State().Player
	p.MaxCarryWeight = p.Inventory.Weight()

	result := s.performAction(mustAction(t, "explore"))
	require.True(t, result.OK)
	assert.Empty(t, result.Collected)
	assert.NotEmpty(t, result.Messages)

	visit := s.State().Ambients.Visits["camp"]
	assert.Equal(t, 5, visit.Resources["wood"].Remaining)
	assert.Equal(t, 2, visit.Resources["berries"].Remaining)
}

func TestRestRestoresEnergyAndSanity(t *testing.T) {
	s, _ := newTestSession(t)
	p := s.State().Player
	p.SetEnergy(20)
	p.SetSanity(50)

	result := s.performAction(mustAction(t, "rest"))
	require.True(t, result.OK)
	assert.Equal(t, 50.0, p.Stats.Energy)
	assert.Equal(t, 55.0, p.Stats.Sanity)
}

func TestUseFoodAndMedicine(t *testing.T) {
	s, _ := newTestSession(t)
	p := s.State().Player
	p.SetHealth(50)

	result := s.performAction(mustAction(t, "use berries"))
	require.True(t, result.OK, result.Reason)
	assert.Equal(t, 10.0, p.Stats.Hunger)
	assert.Equal(t, 17.0, p.Stats.Thirst)
	assert.Nil(t, p.Inventory.Find("berries"))

	result = s.performAction(mustAction(t, "use bandage"))
	require.True(t, result.OK, result.Reason)
	assert.Equal(t, 70.0, p.Stats.Health)
	assert.Nil(t, p.Inventory.Find("bandage"), "single-use medicine is pruned")

	result = s.performAction(mustAction(t, "use bandage"))
	assert.False(t, result.OK)
	assert.Equal(t, errors.ErrItemNotFound, result.Code)
}

func TestUseToolYieldsAndWears(t *testing.T) {
	s, _ := newTestSession(t)
	p := s.State().Player
	axe, ok := s.rt.Catalog.NewItem("axe", nil)
	require.True(t, ok)
	require.NoError(t, p.Carry(axe))

	result := s.performAction(mustAction(t, "use axe"))
	require.True(t, result.OK, result.Reason)
	assert.Equal(t, []string{"Wood"}, result.Collected)
	assert.Equal(t, 10.0, axe.Tool.Durability)
	assert.Equal(t, 1, p.Inventory.CountMaterial(entity.MaterialWood))

	result = s.performAction(mustAction(t, "use axe"))
	require.True(t, result.OK)
	assert.Nil(t, p.Inventory.Find("axe"), "broken tool is pruned")
	assert.Equal(t, 2, p.Inventory.CountMaterial(entity.MaterialWood))

	giveWood(t, s, 1)
	result = s.performAction(mustAction(t, "use wood"))
	assert.False(t, result.OK)
	assert.Equal(t, errors.ErrActionRejected, result.Code)
}

func TestEquipAndDropWeapon(t *testing.T) {
	s, _ := newTestSession(t)
	p := s.State().Player
	knife, ok := s.rt.Catalog.NewItem("knife", nil)
	require.True(t, ok)
	require.NoError(t, p.Carry(knife))

	result := s.performAction(mustAction(t, "equip bandage"))
	assert.Equal(t, errors.ErrActionRejected, result.Code)

	result = s.performAction(mustAction(t, "equip knife"))
	require.True(t, result.OK)
	assert.Equal(t, knife.ID, p.EquippedWeapon)

	result = s.performAction(mustAction(t, "drop knife"))
	require.True(t, result.OK)
	assert.Empty(t, p.EquippedWeapon)
	assert.Nil(t, p.Inventory.Find("knife"))
}

func TestTravel(t *testing.T) {
	s, _ := newTestSession(t)
	p := s.State().Player

	result := s.performAction(mustAction(t, "travel moon"))
	assert.Equal(t, errors.ErrUnknownAmbient, result.Code)

	result = s.performAction(mustAction(t, "travel island"))
	assert.Equal(t, errors.ErrActionRejected, result.Code)

	result = s.performAction(mustAction(t, "travel ridge"))
	require.True(t, result.OK, result.Reason)
	assert.Equal(t, 40, result.EnergySpent)
	assert.Equal(t, "ridge", p.CurrentAmbient)
	assert.Equal(t, "ridge", s.State().Ambients.Current)
	assert.Equal(t, 1, s.State().Ambients.Visits["ridge"].VisitCount)
}

func TestTrade(t *testing.T) {
	s, _ := newTestSession(t)
	p := s.State().Player

	result := s.performAction(mustAction(t, "trade traders bandage"))
	assert.Equal(t, errors.ErrTradeRefused, result.Code, "no wood to pay with")

	giveWood(t, s, 6)
	result = s.performAction(mustAction(t, "trade traders bandage"))
	require.True(t, result.OK, result.Reason)
	assert.Equal(t, 1, p.Inventory.CountMaterial(entity.MaterialWood))
	assert.Equal(t, 2, s.State().Reputation["traders"])
	assert.Equal(t, 5, result.EnergySpent)

	result = s.performAction(mustAction(t, "trade bandits knife"))
	assert.Equal(t, errors.ErrTradeRefused, result.Code)

	result = s.performAction(mustAction(t, "trade ghosts knife"))
	assert.Equal(t, errors.ErrUnknownFaction, result.Code)

	result = s.performAction(mustAction(t, "trade traders axe"))
	assert.Equal(t, errors.ErrTradeRefused, result.Code)
}

func TestTradeRefusedWhenDisliked(t *testing.T) {
	s, _ := newTestSession(t)
	giveWood(t, s, 10)
	require.NoError(t, s.factions.AdjustReputation("traders", -20))

	result := s.performAction(mustAction(t, "trade traders bandage"))
	assert.Equal(t, errors.ErrTradeRefused, result.Code)
	assert.Equal(t, 10, s.State().Player.Inventory.CountMaterial(entity.MaterialWood))
}

func TestAbility(t *testing.T) {
	s, _ := newTestSession(t)
	p := s.State().Player

	result := s.performAction(mustAction(t, "ability"))
	require.True(t, result.OK, result.Reason)
	assert.Equal(t, 100.0, p.Stats.Sanity)
	assert.Equal(t, 15, result.EnergySpent)

	result = s.performAction(mustAction(t, "ability"))
	assert.Equal(t, errors.ErrNothingToDo, result.Code)
	assert.Equal(t, 65.0, p.Stats.Energy)
}

func TestInventoryListsItems(t *testing.T) {
	s, _ := newTestSession(t)
	result := s.performAction(mustAction(t, "inventory"))
	require.True(t, result.OK)
	assert.Equal(t, []string{"Berries", "Bandage (1/1)"}, result.Messages)
	assert.Equal(t, 2, result.EnergySpent)
}
