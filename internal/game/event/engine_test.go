package event

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wfunc/survival-game/internal/game/entity"
	"go.uber.org/zap"
)

type fakeWorld struct {
	weather    string
	resources  map[string]int
	reputation map[string]int
}

func newFakeWorld() *fakeWorld {
	return &fakeWorld{resources: map[string]int{}, reputation: map[string]int{}}
}

func (w *fakeWorld) SetWeather(weather string) { w.weather = weather }

func (w *fakeWorld) AdjustResource(template string, delta int) int {
	w.resources[template] += delta
	return delta
}

func (w *fakeWorld) AdjustReputation(faction string, delta int) error {
	if faction == "" {
		return fmt.Errorf("unknown faction")
	}
	w.reputation[faction] += delta
	return nil
}

func testCharacter() *entity.Character {
	return entity.NewCharacter("测试", &entity.Archetype{
		Kind: entity.ArchetypeSurvivor, MaxHealth: 100,
		Base: entity.Stats{Health: 80, Hunger: 10, Thirst: 10, Energy: 80, Sanity: 80},
	})
}

func testEvents() map[string]*Event {
	return map[string]*Event{
		"storm": {Name: "storm", Probability: 1, Activatable: true, Duration: 2,
			Impacts: []Impact{{Attribute: AttrWeather, Target: "rain"}, {Attribute: AttrSanity, Magnitude: -5}}},
		"berries": {Name: "berries", Probability: 1, Activatable: true, OneShot: true,
			Impacts: []Impact{{Attribute: AttrHunger, Magnitude: -30}}},
		"shrine": {Name: "shrine", Probability: 1, Activatable: false,
			Impacts: []Impact{{Attribute: AttrSanity, Magnitude: 50}}},
		"tracks": {Name: "tracks", Probability: 1, Activatable: true, FollowUp: "ambush",
			Impacts: []Impact{{Attribute: AttrReputation, Target: "rangers", Magnitude: 5}}},
		"ambush": {Name: "ambush", Probability: 0, Activatable: false,
			Impacts: []Impact{{Attribute: AttrLife, Magnitude: -200}}},
		"nightmare": {Name: "nightmare", Probability: 1, Activatable: true, MaxSanity: 30,
			Impacts: []Impact{{Attribute: AttrSanity, Magnitude: -10}}},
	}
}

func TestRollSkipsInactiveAndDisabled(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	engine := NewEngine(testEvents(), nil, zap.NewNop())
	ch := testCharacter()

	table := []Weight{{Event: "shrine", Weight: 100}, {Event: "berries", Weight: 1}}
	for i := 0; i < 50; i++ {
		ev := engine.Roll(rng, table, ch)
		require.NotNil(t, ev)
		assert.Equal(t, "berries", ev.Name)
	}

	engine.Disable("berries")
	assert.Nil(t, engine.Roll(rng, table, ch))
}

func TestRollProbabilityGate(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	events := map[string]*Event{
		"rare": {Name: "rare", Probability: 0.2, Activatable: true},
	}
	engine := NewEngine(events, nil, zap.NewNop())
	table := []Weight{{Event: "rare", Weight: 1}}

	fired := 0
	const trials = 5000
	for i := 0; i < trials; i++ {
		if engine.Roll(rng, table, testCharacter()) != nil {
			fired++
		}
	}
	rate := float64(fired) / trials
	assert.InDelta(t, 0.2, rate, 0.03)
}

func TestRollWeightedSelection(t *testing.T) {
	rng := rand.New(rand.NewSource(8))
	events := map[string]*Event{
		"a": {Name: "a", Probability: 1, Activatable: true},
		"b": {Name: "b", Probability: 1, Activatable: true},
	}
	engine := NewEngine(events, nil, zap.NewNop())
	table := []Weight{{Event: "a", Weight: 3}, {Event: "b", Weight: 1}}

	counts := map[string]int{}
	for i := 0; i < 4000; i++ {
		counts[engine.Roll(rng, table, nil).Name]++
	}
	assert.InDelta(t, 0.75, float64(counts["a"])/4000, 0.04)
}

func TestRollRespectsSanityCondition(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	engine := NewEngine(testEvents(), nil, zap.NewNop())
	ch := testCharacter()
	table := []Weight{{Event: "nightmare", Weight: 1}}

	assert.Nil(t, engine.Roll(rng, table, ch))
	ch.SetSanity(20)
	assert.NotNil(t, engine.Roll(rng, table, ch))
}

func TestApplyClampsAndTouchesWorld(t *testing.T) {
	engine := NewEngine(testEvents(), nil, zap.NewNop())
	ch := testCharacter()
	world := newFakeWorld()

	ev, _ := engine.Get("berries")
	applied := engine.Apply(ev, ch, world)
	assert.Equal(t, 0.0, ch.Stats.Hunger)
	assert.Equal(t, -10.0, applied.Changes[entity.AttrHunger])
	assert.True(t, engine.Ledger().IsDisabled("berries"))

	storm, _ := engine.Get("storm")
	applied = engine.Apply(storm, ch, world)
	assert.Equal(t, "rain", world.weather)
	assert.Equal(t, "rain", applied.Weather)
	assert.Equal(t, 75.0, ch.Stats.Sanity)
	require.Len(t, engine.Ledger().Active, 1)
	assert.Equal(t, 2, engine.Ledger().Active[0].TurnsRemaining)
}

func TestTickRunsDurationThenExpires(t *testing.T) {
	engine := NewEngine(testEvents(), nil, zap.NewNop())
	ch := testCharacter()
	world := newFakeWorld()

	storm, _ := engine.Get("storm")
	engine.Apply(storm, ch, world)

	assert.Len(t, engine.Tick(ch, world), 1)
	assert.Len(t, engine.Tick(ch, world), 1)
	assert.Empty(t, engine.Tick(ch, world))
	assert.Empty(t, engine.Ledger().Active)
	assert.Equal(t, 65.0, ch.Stats.Sanity)
}

func TestFollowUpFiresUnconditionally(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	engine := NewEngine(testEvents(), nil, zap.NewNop())
	ch := testCharacter()
	world := newFakeWorld()

	tracks, _ := engine.Get("tracks")
	engine.Apply(tracks, ch, world)
	assert.Equal(t, 5, world.reputation["rangers"])
	assert.Equal(t, []string{"ambush"}, engine.Ledger().Pending)

	// ambush 本身不可抽取且概率为0，但作为后续事件必然触发
	ev := engine.Roll(rng, nil, ch)
	require.NotNil(t, ev)
	assert.Equal(t, "ambush", ev.Name)
	assert.Empty(t, engine.Ledger().Pending)

	engine.Apply(ev, ch, world)
	assert.Equal(t, 0.0, ch.Stats.Health)
}

func TestDisableIdempotent(t *testing.T) {
	l := NewLedger()
	l.Disable("b")
	l.Disable("a")
	l.Disable("b")
	assert.Equal(t, []string{"a", "b"}, l.Disabled)
	assert.True(t, l.IsDisabled("a"))
	assert.False(t, l.IsDisabled("c"))
}

func TestLedgerNormalizeSortsDisabled(t *testing.T) {
	l := &Ledger{Disabled: []string{"c", "a", "c", "b"}}
	assert.False(t, l.IsDisabled("a"))

	l.Normalize()
	assert.Equal(t, []string{"a", "b", "c"}, l.Disabled)
	assert.True(t, l.IsDisabled("a"))
	assert.NotNil(t, l.Active)
	assert.NotNil(t, l.Pending)
}
