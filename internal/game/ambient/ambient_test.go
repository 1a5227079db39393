package ambient

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wfunc/survival-game/internal/errors"
	"github.com/wfunc/survival-game/internal/game/entity"
	"go.uber.org/zap"
)

type fakeContent struct {
	next int
}

func (f *fakeContent) NewItem(template string) (*entity.Item, bool) {
	switch template {
	case "berries":
		f.next++
		return &entity.Item{
			ID: fmt.Sprintf("item-%d", f.next), Template: template, Name: "Berries",
			Kind: entity.KindFood, Weight: 0.2,
			Food: &entity.Food{Nutrition: 10, SpoilTurns: 2},
		}, true
	case "wood":
		f.next++
		return &entity.Item{
			ID: fmt.Sprintf("item-%d", f.next), Template: template, Name: "Wood",
			Kind: entity.KindMaterial, Weight: 1,
			Material: &entity.Material{Kind: entity.MaterialWood, Quantity: 1},
		}, true
	}
	return nil, false
}

func (f *fakeContent) NewCreature(kind string) (*entity.Creature, bool) {
	if kind != "wolf" {
		return nil, false
	}
	f.next++
	return entity.NewCreature(fmt.Sprintf("c-%d", f.next), &entity.CreatureKind{
		Kind: "wolf", Name: "Wolf", Hostility: entity.Hostile, MaxHealth: 60, AttackDamage: 12,
	}), true
}

func testDefs() map[string]*Definition {
	return map[string]*Definition{
		"forest": {
			Name:    "forest",
			Weather: "clear",
			Resources: []ResourceStock{
				{Item: "wood", Stock: 3, RegenRate: 1},
				{Item: "berries", Stock: 2, SpoilTurns: 2},
			},
			Creatures:       []string{"wolf"},
			EncounterChance: 0.5,
			MaxCreatures:    2,
			Neighbors:       []string{"lake"},
		},
		"lake": {
			Name:      "lake",
			Weather:   "fog",
			Resources: []ResourceStock{{Item: "wood", Stock: 1}},
			Neighbors: []string{"forest"},
		},
	}
}

func newTestManager(seed int64) (*Manager, *Snapshot) {
	snap := &Snapshot{}
	m := NewManager(testDefs(), &fakeContent{}, snap, zap.NewNop())
	m.Bind(rand.New(rand.NewSource(seed)))
	return m, snap
}

func TestEnterFirstVisit(t *testing.T) {
	m, snap := newTestManager(1)

	visit, err := m.Enter("forest")
	require.NoError(t, err)
	assert.Equal(t, "forest", snap.Current)
	assert.Equal(t, 1, visit.VisitCount)
	assert.Equal(t, "clear", visit.Weather)
	assert.Equal(t, 3, visit.Resources["wood"].Remaining)
	assert.Equal(t, 2, visit.Resources["berries"].Remaining)
	assert.Len(t, visit.Spawned, 2)

	tm, ok := m.TileMap("forest")
	require.True(t, ok)
	for _, c := range visit.Spawned {
		assert.True(t, tm.At(c.X, c.Y).Passable())
	}

	// 再次进入不重新生成
	seed := visit.MapSeed
	_, err = m.Enter("lake")
	require.NoError(t, err)
	again, err := m.Enter("forest")
	require.NoError(t, err)
	assert.Equal(t, seed, again.MapSeed)
	assert.Equal(t, 2, again.VisitCount)

	_, err = m.Enter("volcano")
	assert.True(t, errors.Is(err, errors.ErrUnknownAmbient))
}

func TestTileMapDeterministic(t *testing.T) {
	a := GenerateTileMap(42, 0, 0)
	b := GenerateTileMap(42, 0, 0)
	assert.Equal(t, a.Tiles, b.Tiles)
	assert.Equal(t, defaultMapWidth, a.Width)
	assert.Equal(t, TerrainRock, a.At(-1, 0))

	m1, _ := newTestManager(7)
	m2, _ := newTestManager(7)
	v1, err := m1.Enter("forest")
	require.NoError(t, err)
	v2, err := m2.Enter("forest")
	require.NoError(t, err)
	assert.Equal(t, v1.MapSeed, v2.MapSeed)
	assert.Equal(t, v1.Spawned, v2.Spawned)
}

func TestCollectResource(t *testing.T) {
	m, _ := newTestManager(3)
	_, err := m.Enter("forest")
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		it, ok := m.CollectResource("wood")
		require.True(t, ok)
		assert.Equal(t, "wood", it.Template)
	}
	_, ok := m.CollectResource("wood")
	assert.False(t, ok, "资源耗尽")
	assert.Equal(t, 0, m.Remaining("wood"))

	_, ok = m.CollectResource("gold")
	assert.False(t, ok)

	it, ok := m.CollectResource("")
	require.True(t, ok)
	assert.Equal(t, "berries", it.Template)
}

func TestMaintenanceRegenNeverExceedsStock(t *testing.T) {
	m, snap := newTestManager(5)
	_, err := m.Enter("forest")
	require.NoError(t, err)

	_, ok := m.CollectResource("wood")
	require.True(t, ok)

	for i := 0; i < 10; i++ {
		m.RunMaintenance(nil)
		assert.LessOrEqual(t, snap.Visits["forest"].Resources["wood"].Remaining, 3)
	}
	assert.Equal(t, 3, snap.Visits["forest"].Resources["wood"].Remaining)
}

func TestMaintenanceSpoilsPools(t *testing.T) {
	m, snap := newTestManager(5)
	_, err := m.Enter("forest")
	require.NoError(t, err)

	r1 := m.RunMaintenance(nil)
	assert.Zero(t, r1.Rotted["berries"])
	r2 := m.RunMaintenance(nil)
	assert.Equal(t, 1, r2.Rotted["berries"])
	assert.Equal(t, 1, snap.Visits["forest"].Resources["berries"].Remaining)
}

func TestMaintenanceAgesInventoryFood(t *testing.T) {
	m, _ := newTestManager(5)
	_, err := m.Enter("forest")
	require.NoError(t, err)

	inv := entity.NewInventory()
	food, ok := m.content.NewItem("berries")
	require.True(t, ok)
	require.NoError(t, inv.Add(food, 10))

	assert.Empty(t, m.RunMaintenance(inv).SpoiledFood)
	assert.Equal(t, []string{"Berries"}, m.RunMaintenance(inv).SpoiledFood)
	assert.True(t, food.Food.Spoiled)
}

func TestVisitCountDecaysAway(t *testing.T) {
	m, snap := newTestManager(9)
	for i := 0; i < 3; i++ {
		_, err := m.Enter("lake")
		require.NoError(t, err)
	}
	_, err := m.Enter("forest")
	require.NoError(t, err)
	require.Equal(t, 3, snap.Visits["lake"].VisitCount)

	for i := 0; i < VisitDecayTurns; i++ {
		m.RunMaintenance(nil)
	}
	assert.Equal(t, 2, snap.Visits["lake"].VisitCount)
	assert.Equal(t, 0, snap.Visits["lake"].TurnsSinceVisit)
	assert.Equal(t, 0, snap.Visits["forest"].TurnsSinceVisit)
}

func TestEncounterChanceScalesWithVisits(t *testing.T) {
	m, _ := newTestManager(11)
	_, err := m.Enter("forest")
	require.NoError(t, err)
	assert.InDelta(t, 0.5, m.EncounterChance(), 1e-9)

	for i := 0; i < 10; i++ {
		_, err = m.Enter("forest")
		require.NoError(t, err)
	}
	assert.InDelta(t, 0.75, m.EncounterChance(), 1e-9)
	assert.NotNil(t, m.Encounter(10))
}

func TestWorldEffects(t *testing.T) {
	m, snap := newTestManager(13)
	_, err := m.Enter("forest")
	require.NoError(t, err)

	m.SetWeather("storm")
	assert.Equal(t, "storm", snap.Visits["forest"].Weather)

	assert.Equal(t, 0, m.AdjustResource("wood", 5), "不超过初始存量")
	assert.Equal(t, -3, m.AdjustResource("wood", -10))
	assert.Equal(t, 0, m.AdjustResource("gold", 1))

	c := snap.Visits["forest"].Spawned[0]
	m.Despawn(c.ID)
	assert.Len(t, snap.Visits["forest"].Spawned, 1)
}

func TestRestoreKeepsState(t *testing.T) {
	m, snap := newTestManager(17)
	_, err := m.Enter("forest")
	require.NoError(t, err)
	_, ok := m.CollectResource("wood")
	require.True(t, ok)

	restored := NewManager(testDefs(), &fakeContent{}, snap, zap.NewNop())
	restored.Bind(rand.New(rand.NewSource(1)))
	def, visit := restored.Current()
	require.NotNil(t, def)
	assert.Equal(t, "forest", def.Name)
	assert.Equal(t, 2, visit.Resources["wood"].Remaining)

	tm1, _ := m.TileMap("forest")
	tm2, _ := restored.TileMap("forest")
	assert.Equal(t, tm1.Tiles, tm2.Tiles)
}
