package event

import (
	"math/rand"

	"github.com/wfunc/survival-game/internal/game/entity"
	"go.uber.org/zap"
)

// Engine 事件引擎
type Engine struct {
	events map[string]*Event
	ledger *Ledger
	logger *zap.Logger
}

// NewEngine 创建事件引擎
func NewEngine(events map[string]*Event, ledger *Ledger, logger *zap.Logger) *Engine {
	if ledger == nil {
		ledger = NewLedger()
	}
	return &Engine{events: events, ledger: ledger, logger: logger}
}

// Ledger 返回账本
func (e *Engine) Ledger() *Ledger {
	return e.ledger
}

// Get 按名称获取事件
func (e *Engine) Get(name string) (*Event, bool) {
	ev, ok := e.events[name]
	return ev, ok
}

// Disable 禁用事件
func (e *Engine) Disable(name string) {
	e.ledger.Disable(name)
}

// Roll 抽取事件
// 待触发事件优先且无需判定；否则先按区域权重选出候选，再以事件自身概率判定是否发生
func (e *Engine) Roll(rng *rand.Rand, table []Weight, ch *entity.Character) *Event {
	for {
		name, ok := e.ledger.popPending()
		if !ok {
			break
		}
		if ev, found := e.events[name]; found && !e.ledger.IsDisabled(name) {
			return ev
		}
	}

	candidates := make([]*Event, 0, len(table))
	weights := make([]float64, 0, len(table))
	total := 0.0
	for _, w := range table {
		ev, ok := e.events[w.Event]
		if !ok || w.Weight <= 0 || e.ledger.IsDisabled(w.Event) || !ev.Eligible(ch) {
			continue
		}
		candidates = append(candidates, ev)
		weights = append(weights, w.Weight)
		total += w.Weight
	}
	if len(candidates) == 0 {
		return nil
	}

	pick := rng.Float64() * total
	chosen := candidates[len(candidates)-1]
	for i, w := range weights {
		if pick < w {
			chosen = candidates[i]
			break
		}
		pick -= w
	}

	if rng.Float64() >= entity.ClampUnit(chosen.Probability) {
		return nil
	}
	return chosen
}

// Apply 应用事件效果，并登记持续、后续与一次性事件
func (e *Engine) Apply(ev *Event, ch *entity.Character, world World) *Applied {
	applied := applyImpacts(ev, ch, world, e.logger)

	if ev.Duration > 0 {
		e.ledger.activate(ev.Name, ev.Duration)
	}
	if ev.FollowUp != "" {
		e.ledger.Enqueue(ev.FollowUp)
	}
	if ev.OneShot {
		e.ledger.Disable(ev.Name)
	}

	e.logger.Debug("事件触发",
		zap.String("event", ev.Name),
		zap.Any("changes", applied.Changes))
	return applied
}

// Tick 维护阶段重新应用持续事件，返回本回合生效的事件
func (e *Engine) Tick(ch *entity.Character, world World) []*Applied {
	var results []*Applied
	remaining := e.ledger.Active[:0]
	for _, active := range e.ledger.Active {
		ev, ok := e.events[active.Name]
		if !ok {
			continue
		}
		results = append(results, applyImpacts(ev, ch, world, e.logger))
		active.TurnsRemaining--
		if active.TurnsRemaining > 0 {
			remaining = append(remaining, active)
		}
	}
	e.ledger.Active = remaining
	return results
}

// applyImpacts 依次应用每项影响，角色属性按范围截断
func applyImpacts(ev *Event, ch *entity.Character, world World, logger *zap.Logger) *Applied {
	applied := &Applied{Event: ev.Name, Changes: make(map[entity.Attribute]float64)}
	for _, impact := range ev.Impacts {
		if impact.Attribute.CharacterScoped() {
			attr := entity.Attribute(impact.Attribute)
			applied.Changes[attr] += ch.Adjust(attr, impact.Magnitude)
			continue
		}
		if world == nil {
			continue
		}
		switch impact.Attribute {
		case AttrWeather:
			world.SetWeather(impact.Target)
			applied.Weather = impact.Target
		case AttrResources:
			world.AdjustResource(impact.Target, int(impact.Magnitude))
		case AttrReputation:
			if err := world.AdjustReputation(impact.Target, int(impact.Magnitude)); err != nil {
				logger.Warn("事件声望影响无效",
					zap.String("event", ev.Name),
					zap.String("faction", impact.Target),
					zap.Error(err))
			}
		}
	}
	return applied
}
