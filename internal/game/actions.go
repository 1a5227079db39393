package game

import (
	"fmt"
	"math"
	"sort"

	"github.com/wfunc/survival-game/internal/errors"
	"github.com/wfunc/survival-game/internal/game/combat"
	"github.com/wfunc/survival-game/internal/game/entity"
	"github.com/wfunc/survival-game/internal/game/faction"
	"go.uber.org/zap"
)

// 行动数值
const (
	ambushChance   = 0.25
	ambushDamage   = 10.0
	sicknessDamage = 10.0
	sicknessSanity = 5.0
	fireKitSanity  = 15.0
)

// performAction 执行行动
// 体力在效果结算前扣除；拒绝的行动不扣体力并以结果返回
func (s *Session) performAction(a Action) *ActionResult {
	var (
		result *ActionResult
		err    error
	)
	switch a.Kind {
	case ActionExplore:
		result, err = s.explore(a)
	case ActionRest:
		result, err = s.rest(a)
	case ActionInventory:
		result, err = s.inventory(a)
	case ActionQuit:
		result = &ActionResult{Action: a.String(), OK: true}
	case ActionAbility:
		result, err = s.ability(a)
	case ActionUse:
		result, err = s.use(a)
	case ActionDrop:
		result, err = s.drop(a)
	case ActionEquip:
		result, err = s.equip(a)
	case ActionTravel:
		result, err = s.travel(a)
	case ActionTrade:
		result, err = s.trade(a)
	default:
		err = errors.New(errors.ErrUnknownAction, string(a.Kind))
	}
	if err != nil {
		s.logger.Debug("行动被拒绝", zap.String("action", a.String()), zap.Error(err))
		return reject(a, err)
	}
	return result
}

// spend 扣除体力并记录到结果
func (s *Session) spend(result *ActionResult, cost int) error {
	if err := s.state.Player.SpendEnergy(cost); err != nil {
		return err
	}
	result.EnergySpent += cost
	return nil
}

func (s *Session) accepted(a Action) *ActionResult {
	return &ActionResult{Action: a.String(), OK: true}
}

// explore 探索：采集一份资源，可能遭遇生物或敌对阵营
func (s *Session) explore(a Action) (*ActionResult, error) {
	p := s.state.Player
	def, _ := s.ambients.Current()
	cost := s.rt.Config.ActionCost(a.CostKey())
	if def != nil {
		cost = int(math.Ceil(float64(cost) * def.Difficulty()))
	}

	result := s.accepted(a)
	if err := s.spend(result, cost); err != nil {
		return nil, err
	}

	if item, ok := s.ambients.CollectResource(""); ok {
		s.collect(result, item)
		if p.Traits.Has(entity.TraitResourceful) && s.rng.Float64() < entity.ResourcefulExtraChance {
			if extra, ok := s.ambients.CollectResource(item.Template); ok {
				s.collect(result, extra)
			}
		}
	} else {
		result.Messages = append(result.Messages, "这里已经没有可采集的资源")
	}

	multiplier := 1.0
	if p.Traits.Has(entity.TraitTracker) {
		multiplier = entity.TrackerEncounterBonus
	}
	if c := s.ambients.Encounter(multiplier); c != nil {
		report := combat.Fight(s.rng, s.rt.Config.MaxCombatRounds, p, c, s.items)
		result.Combat = report
		for _, it := range report.Loot {
			if err := p.Carry(it); err != nil {
				result.Messages = append(result.Messages, "背包放不下 "+it.Name)
				continue
			}
			result.Collected = append(result.Collected, it.Name)
		}
		if report.CreatureKilled || report.CreatureFled {
			s.ambients.Despawn(c.ID)
		}
	}

	if p.Alive() {
		s.ambush(result)
	}
	return result, nil
}

// collect 放入背包，放不下时退回区域
func (s *Session) collect(result *ActionResult, item *entity.Item) {
	if err := s.state.Player.Carry(item); err != nil {
		s.ambients.AdjustResource(item.Template, 1)
		result.Messages = append(result.Messages, "背包放不下 "+item.Name)
		return
	}
	result.Collected = append(result.Collected, item.Name)
}

// ambush 当前区域有见面即攻击的阵营时可能遭到伏击
func (s *Session) ambush(result *ActionResult) {
	for _, f := range s.factions.PresentIn(s.state.Ambients.Current) {
		if !s.factions.HostileOnSight(f.ID) {
			continue
		}
		if s.rng.Float64() >= ambushChance {
			continue
		}
		dealt := s.state.Player.ReceiveDamage(ambushDamage)
		result.Messages = append(result.Messages, fmt.Sprintf("遭到 %s 伏击，损失 %.0f 生命", f.Name, dealt))
		return
	}
}

// rest 休息恢复体力与理智
func (s *Session) rest(a Action) (*ActionResult, error) {
	result := s.accepted(a)
	if err := s.spend(result, s.rt.Config.ActionCost(a.CostKey())); err != nil {
		return nil, err
	}
	p := s.state.Player
	p.Adjust(entity.AttrEnergy, s.rt.Config.Rest.Energy)
	p.Adjust(entity.AttrSanity, s.rt.Config.Rest.Sanity)
	return result, nil
}

// inventory 查看背包
func (s *Session) inventory(a Action) (*ActionResult, error) {
	result := s.accepted(a)
	if err := s.spend(result, s.rt.Config.ActionCost(a.CostKey())); err != nil {
		return nil, err
	}
	for _, it := range s.state.Player.Inventory.List() {
		result.Messages = append(result.Messages, describeItem(it))
	}
	return result, nil
}

// ability 职业特技
func (s *Session) ability(a Action) (*ActionResult, error) {
	ab, err := entity.ApplySpecialAbility(s.state.Player, s.items)
	if err != nil {
		return nil, err
	}
	result := s.accepted(a)
	result.Ability = ab
	result.EnergySpent = ab.EnergySpent
	if ab.Item != nil {
		result.Collected = append(result.Collected, ab.Item.Name)
	}
	return result, nil
}

// use 使用物品
func (s *Session) use(a Action) (*ActionResult, error) {
	p := s.state.Player
	it := p.Inventory.Find(a.Arg(0))
	if it == nil {
		return nil, errors.New(errors.ErrItemNotFound, a.Arg(0))
	}
	if it.Kind == entity.KindMaterial {
		return nil, errors.Newf(errors.ErrActionRejected, "%s 不能直接使用", it.Name)
	}

	var yield *entity.Item
	if it.Kind == entity.KindTool && it.Tool.Yield != "" {
		var ok bool
		yield, ok = s.items.NewItem(it.Tool.Yield)
		if !ok {
			return nil, errors.Newf(errors.ErrItemNotFound, "模板 %s", it.Tool.Yield)
		}
		if !p.CanCarry(yield) {
			return nil, errors.New(errors.ErrCannotCarry, yield.Name)
		}
	}

	result := s.accepted(a)
	if err := s.spend(result, s.rt.Config.ActionCost(a.CostKey())); err != nil {
		return nil, err
	}

	switch it.Kind {
	case entity.KindFood:
		s.eat(result, it)
	case entity.KindMedicine:
		s.medicate(result, it)
	case entity.KindTool:
		if yield != nil {
			if err := p.Carry(yield); err != nil {
				return nil, err
			}
			result.Collected = append(result.Collected, yield.Name)
		} else if it.Tool.Kind == entity.ToolFireKit {
			p.Adjust(entity.AttrSanity, fireKitSanity)
		}
		it.Wear()
	case entity.KindWeapon:
		p.EquippedWeapon = it.ID
		result.Messages = append(result.Messages, "装备了 "+it.Name)
	}
	return result, nil
}

// eat 食用，生食或腐坏食物可能致病
func (s *Session) eat(result *ActionResult, it *entity.Item) {
	p := s.state.Player
	p.Adjust(entity.AttrHunger, -it.Food.Nutrition)
	if it.Food.Hydration > 0 {
		p.Adjust(entity.AttrThirst, -it.Food.Hydration)
	}
	if chance := it.Sickness(); chance > 0 && s.rng.Float64() < chance {
		p.ReceiveDamage(sicknessDamage)
		p.Adjust(entity.AttrSanity, -sicknessSanity)
		result.Messages = append(result.Messages, "吃坏了肚子")
	}
	p.Inventory.Remove(it.ID)
}

// medicate 服药
func (s *Session) medicate(result *ActionResult, it *entity.Item) {
	p := s.state.Player
	potency := it.Medicine.Potency
	if p.Traits.Has(entity.TraitMedic) {
		potency *= entity.MedicPotencyMultiplier
	}
	var restored float64
	switch it.Medicine.Effect {
	case entity.EffectHeal:
		restored = p.Adjust(entity.AttrLife, potency)
	case entity.EffectCalm:
		restored = p.Adjust(entity.AttrSanity, potency)
	case entity.EffectStimulant:
		restored = p.Adjust(entity.AttrEnergy, potency)
	}
	it.ConsumeUse()
	result.Messages = append(result.Messages, fmt.Sprintf("%s 恢复 %.0f", it.Name, restored))
}

// drop 丢弃物品
func (s *Session) drop(a Action) (*ActionResult, error) {
	p := s.state.Player
	it := p.Inventory.Find(a.Arg(0))
	if it == nil {
		return nil, errors.New(errors.ErrItemNotFound, a.Arg(0))
	}
	result := s.accepted(a)
	if err := s.spend(result, s.rt.Config.ActionCost(a.CostKey())); err != nil {
		return nil, err
	}
	p.Inventory.Remove(it.ID)
	if p.EquippedWeapon == it.ID {
		p.EquippedWeapon = ""
	}
	return result, nil
}

// equip 装备武器
func (s *Session) equip(a Action) (*ActionResult, error) {
	p := s.state.Player
	it := p.Inventory.Find(a.Arg(0))
	if it == nil {
		return nil, errors.New(errors.ErrItemNotFound, a.Arg(0))
	}
	if it.Kind != entity.KindWeapon {
		return nil, errors.Newf(errors.ErrActionRejected, "%s 不是武器", it.Name)
	}
	result := s.accepted(a)
	if err := s.spend(result, s.rt.Config.ActionCost(a.CostKey())); err != nil {
		return nil, err
	}
	if _, err := p.Equip(it.ID); err != nil {
		return nil, err
	}
	return result, nil
}

// travel 前往相邻区域，消耗按目标区域难度放大
func (s *Session) travel(a Action) (*ActionResult, error) {
	target := a.Arg(0)
	def, ok := s.ambients.Definition(target)
	if !ok {
		return nil, errors.New(errors.ErrUnknownAmbient, target)
	}
	current, _ := s.ambients.Current()
	if current != nil && !current.Adjacent(target) {
		return nil, errors.Newf(errors.ErrActionRejected, "%s 与 %s 不相邻", current.Name, target)
	}

	result := s.accepted(a)
	cost := int(math.Ceil(float64(s.rt.Config.ActionCost(a.CostKey())) * def.Difficulty()))
	if err := s.spend(result, cost); err != nil {
		return nil, err
	}
	if _, err := s.ambients.Enter(target); err != nil {
		return nil, err
	}
	s.state.Player.CurrentAmbient = target
	result.Messages = append(result.Messages, "来到了 "+def.Title)
	return result, nil
}

// trade 用材料向阵营购买物品
func (s *Session) trade(a Action) (*ActionResult, error) {
	p := s.state.Player
	id, template := a.Arg(0), a.Arg(1)
	f, err := s.factions.Faction(id)
	if err != nil {
		return nil, err
	}
	if !f.PresentIn(s.state.Ambients.Current) {
		return nil, errors.Newf(errors.ErrTradeRefused, "%s 不在这里", f.Name)
	}
	if !f.Sells(template) {
		return nil, errors.Newf(errors.ErrTradeRefused, "%s 不出售 %s", f.Name, template)
	}
	terms, err := s.factions.TradeTerms(id)
	if err != nil {
		return nil, err
	}
	if !terms.Allowed {
		return nil, errors.Newf(errors.ErrTradeRefused, "%s 拒绝交易 (%s)", f.Name, terms.Level)
	}

	item, ok := s.items.NewItem(template)
	if !ok {
		return nil, errors.Newf(errors.ErrItemNotFound, "模板 %s", template)
	}
	price := terms.Price(item.Value)
	payment, ok := s.payment(f, price)
	if !ok {
		return nil, errors.Newf(errors.ErrTradeRefused, "需要 %d 份材料", price)
	}
	if !p.CanCarry(item) {
		return nil, errors.New(errors.ErrCannotCarry, item.Name)
	}

	result := s.accepted(a)
	if err := s.spend(result, s.rt.Config.ActionCost(a.CostKey())); err != nil {
		return nil, err
	}
	for _, kind := range sortedMaterialKeys(payment) {
		p.Inventory.TakeMaterial(kind, payment[kind])
	}
	if err := p.Carry(item); err != nil {
		return nil, err
	}
	if err := s.factions.AdjustReputation(id, faction.TradeReward); err != nil {
		return nil, err
	}
	result.Collected = append(result.Collected, item.Name)
	result.Messages = append(result.Messages, fmt.Sprintf("支付 %d 份材料", price))
	return result, nil
}

// payment 按阵营偏好顺序凑齐材料
func (s *Session) payment(f *entity.Faction, price int) (map[entity.MaterialKind]int, bool) {
	inv := s.state.Player.Inventory
	out := make(map[entity.MaterialKind]int)
	remaining := price
	for _, kind := range f.Desires {
		if remaining == 0 {
			break
		}
		have := inv.CountMaterial(kind) - out[kind]
		if have <= 0 {
			continue
		}
		take := have
		if take > remaining {
			take = remaining
		}
		out[kind] += take
		remaining -= take
	}
	return out, remaining == 0
}

func describeItem(it *entity.Item) string {
	switch {
	case it.Material != nil:
		return fmt.Sprintf("%s x%d", it.Name, it.Material.Quantity)
	case it.Medicine != nil:
		return fmt.Sprintf("%s (%d/%d)", it.Name, it.Medicine.Uses, it.Medicine.MaxUses)
	case it.Tool != nil:
		return fmt.Sprintf("%s [%.0f]", it.Name, it.Tool.Durability)
	case it.Weapon != nil:
		return fmt.Sprintf("%s [%.0f]", it.Name, it.Weapon.Durability)
	case it.Food != nil && it.Food.Spoiled:
		return it.Name + " (变质)"
	}
	return it.Name
}

func sortedMaterialKeys(in map[entity.MaterialKind]int) []entity.MaterialKind {
	keys := make([]entity.MaterialKind, 0, len(in))
	for k := range in {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

func sortedKeys[V any](in map[string]V) []string {
	keys := make([]string, 0, len(in))
	for k := range in {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
