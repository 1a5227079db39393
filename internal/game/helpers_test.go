package game

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/wfunc/survival-game/internal/config"
	"github.com/wfunc/survival-game/internal/game/catalog"
)

// quietCatalog 没有生物与随机事件的营地，结果只取决于行动与衰减
const quietCatalog = `
archetypes:
  survivor:
    name: Survivor
    base: {health: 100, hunger: 20, thirst: 20, energy: 80, sanity: 85}
    max_health: 100
    attack_damage: 7
    attack_variance: 2
    speed: 7
    max_carry_weight: 30
    ability: {kind: steady, cost: 15, power: 20}
    traits: [resilient]
    starting_items: [berries, bandage]
items:
  berries:
    name: Berries
    kind: food
    weight: 0.2
    value: 2
    food: {nutrition: 10, hydration: 3, spoil_turns: 6}
  wood:
    name: Wood
    kind: material
    weight: 1
    value: 1
    material: {kind: wood, quantity: 1}
  bandage:
    name: Bandage
    kind: medicine
    weight: 0.1
    value: 5
    medicine: {effect: heal, potency: 20, uses: 1, max_uses: 1}
  axe:
    name: Axe
    kind: tool
    weight: 3
    value: 12
    tool: {kind: axe, durability: 20, max_durability: 20, wear_per_use: 10, yield: wood}
  knife:
    name: Knife
    kind: weapon
    weight: 0.5
    value: 6
    weapon: {damage: 5, attack_speed: 1.2, durability: 60, max_durability: 60, wear_per_use: 3}
events:
  rockslide:
    description: The slope gives way.
    probability: 1
    activatable: true
    impacts:
      - {attribute: LIFE, magnitude: -500}
  drizzle:
    description: A cold drizzle.
    probability: 1
    activatable: true
    duration: 2
    one_shot: true
    follow_up: chill
    impacts:
      - {attribute: WEATHER, target: rain}
      - {attribute: SANITY, magnitude: -1}
  chill:
    description: The cold sets in.
    probability: 1
    activatable: false
    impacts:
      - {attribute: ENERGY, magnitude: -2}
factions:
  traders:
    name: Traders
    disposition: FRIENDLY
    trades: [bandage, knife]
    desires: [wood]
    ambients: [camp]
  bandits:
    name: Bandits
    disposition: HOSTILE
    trades: [knife]
    desires: [wood]
    ambients: [ridge]
ambients:
  camp:
    title: Camp
    description: A quiet clearing.
    exploration_difficulty: 1
    weather: clear
    encounter_chance: 0
    resources:
      - {item: wood, stock: 5}
      - {item: berries, stock: 2}
    neighbors: [ridge]
  ridge:
    title: Ridge
    description: Loose rock everywhere.
    exploration_difficulty: 2
    weather: wind
    encounter_chance: 0
    resources:
      - {item: wood, stock: 1}
    events:
      - {event: rockslide, weight: 1}
    neighbors: [camp]
  island:
    title: Island
    description: Unreachable from the camp.
    weather: clear
`

func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	c, err := catalog.Parse([]byte(quietCatalog))
	require.NoError(t, err)
	return c
}

func testGameConfig() *config.GameConfig {
	return &config.GameConfig{
		Seed:               42,
		AutosaveSlot:       "autosave",
		StartAmbient:       "camp",
		Archetype:          "survivor",
		PlayerName:         "Tester",
		Decay:              config.DecayConfig{Hunger: 4, Thirst: 6, Energy: 3, Sanity: 2},
		StarvationDamage:   5,
		SanityFailureTurns: 3,
		MaxCombatRounds:    10,
		Rest:               config.RestConfig{Energy: 30, Sanity: 5},
		ActionCosts:        config.DefaultActionCosts(),
	}
}

// testRuntime 内存存储与脚本输入
func testRuntime(t *testing.T, script ...string) (Runtime, *MemorySlotStore) {
	t.Helper()
	input, err := NewScriptedInput(script...)
	require.NoError(t, err)
	store := NewMemorySlotStore()
	return Runtime{
		Catalog: testCatalog(t),
		Config:  testGameConfig(),
		Store:   store,
		Input:   input,
	}, store
}

func newTestSession(t *testing.T, script ...string) (*Session, *MemorySlotStore) {
	t.Helper()
	rt, store := testRuntime(t, script...)
	s, err := NewGame(rt, NewGameOptions{})
	require.NoError(t, err)
	return s, store
}

func loadSlot(t *testing.T, store SlotStore, slot string) *Snapshot {
	t.Helper()
	data, err := store.ReadNamedSlot(context.Background(), slot)
	require.NoError(t, err)
	snap, err := Decode(data)
	require.NoError(t, err)
	return snap
}
