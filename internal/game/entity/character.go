package entity

import (
	"github.com/wfunc/survival-game/internal/errors"
)

// Character 玩家角色
// 攻击、速度、负重由职业决定，创建后不再修改
type Character struct {
	Name           string        `json:"name"`
	Archetype      ArchetypeKind `json:"archetype"`
	Stats          Stats         `json:"stats"`
	MaxHealth      float64       `json:"max_health"`
	AttackDamage   float64       `json:"attack_damage"`
	AttackVariance float64       `json:"attack_variance"`
	Speed          int           `json:"speed"`
	MaxCarryWeight float64       `json:"max_carry_weight"`
	Ability        AbilitySpec   `json:"ability"`
	Traits         TraitSet      `json:"traits"`
	Inventory      *Inventory    `json:"inventory"`
	EquippedWeapon string        `json:"equipped_weapon,omitempty"`
	CurrentAmbient string        `json:"current_ambient"`
}

// NewCharacter 按职业模板创建角色
func NewCharacter(name string, a *Archetype) *Character {
	maxHealth := a.MaxHealth
	if maxHealth <= 0 {
		maxHealth = StatMax
	}
	c := &Character{
		Name:           name,
		Archetype:      a.Kind,
		MaxHealth:      ClampStat(maxHealth),
		AttackDamage:   a.AttackDamage,
		AttackVariance: a.AttackVariance,
		Speed:          a.Speed,
		MaxCarryWeight: a.MaxCarryWeight,
		Ability:        a.Ability,
		Traits:         NewTraitSet(a.Traits...),
		Inventory:      NewInventory(),
	}
	c.SetHealth(a.Base.Health)
	c.SetHunger(a.Base.Hunger)
	c.SetThirst(a.Base.Thirst)
	c.SetEnergy(a.Base.Energy)
	c.SetSanity(a.Base.Sanity)
	return c
}

// SetHealth 设置生命值，上限为职业最大生命
func (c *Character) SetHealth(v float64) {
	c.Stats.Health = clampOr(v, c.Stats.Health, StatMin, c.healthCap())
}

// SetHunger 设置饥饿值
func (c *Character) SetHunger(v float64) {
	c.Stats.Hunger = clampOr(v, c.Stats.Hunger, StatMin, StatMax)
}

// SetThirst 设置口渴值
func (c *Character) SetThirst(v float64) {
	c.Stats.Thirst = clampOr(v, c.Stats.Thirst, StatMin, StatMax)
}

// SetEnergy 设置体力
func (c *Character) SetEnergy(v float64) {
	c.Stats.Energy = clampOr(v, c.Stats.Energy, StatMin, StatMax)
}

// SetSanity 设置理智
func (c *Character) SetSanity(v float64) {
	c.Stats.Sanity = clampOr(v, c.Stats.Sanity, StatMin, StatMax)
}

func (c *Character) healthCap() float64 {
	if c.MaxHealth <= 0 {
		return StatMax
	}
	return c.MaxHealth
}

// Adjust 按属性增减，返回实际变化量
func (c *Character) Adjust(attr Attribute, delta float64) float64 {
	var before, after float64
	switch attr {
	case AttrLife:
		before = c.Stats.Health
		c.SetHealth(before + delta)
		after = c.Stats.Health
	case AttrHunger:
		before = c.Stats.Hunger
		c.SetHunger(before + delta)
		after = c.Stats.Hunger
	case AttrThirst:
		before = c.Stats.Thirst
		c.SetThirst(before + delta)
		after = c.Stats.Thirst
	case AttrEnergy:
		before = c.Stats.Energy
		c.SetEnergy(before + delta)
		after = c.Stats.Energy
	case AttrSanity:
		before = c.Stats.Sanity
		c.SetSanity(before + delta)
		after = c.Stats.Sanity
	}
	return after - before
}

// ReceiveDamage 受到伤害，返回实际扣除的生命
func (c *Character) ReceiveDamage(amount float64) float64 {
	if amount <= 0 {
		return 0
	}
	return -c.Adjust(AttrLife, -amount)
}

// Alive 是否存活
func (c *Character) Alive() bool {
	return c.Stats.Health > 0
}

// SpendEnergy 扣除体力，不足时不扣并返回错误
func (c *Character) SpendEnergy(cost int) error {
	if cost <= 0 {
		return nil
	}
	if c.Stats.Energy < float64(cost) {
		return errors.Newf(errors.ErrInsufficientEnergy, "需要 %d, 当前 %.0f", cost, c.Stats.Energy)
	}
	c.SetEnergy(c.Stats.Energy - float64(cost))
	return nil
}

// Carry 放入背包，超重时返回 ErrCannotCarry
func (c *Character) Carry(item *Item) error {
	return c.Inventory.Add(item, c.MaxCarryWeight)
}

// CanCarry 是否还能放下该物品
func (c *Character) CanCarry(item *Item) bool {
	return c.Inventory.Fits(item, c.MaxCarryWeight)
}

// Weapon 当前装备的武器，已损坏或不在背包时返回 nil
func (c *Character) Weapon() *Item {
	if c.EquippedWeapon == "" {
		return nil
	}
	it := c.Inventory.Get(c.EquippedWeapon)
	if it == nil || it.Kind != KindWeapon {
		c.EquippedWeapon = ""
		return nil
	}
	return it
}

// Equip 装备武器
func (c *Character) Equip(ref string) (*Item, error) {
	it := c.Inventory.Find(ref)
	if it == nil {
		return nil, errors.New(errors.ErrItemNotFound, ref)
	}
	if it.Kind != KindWeapon {
		return nil, errors.Newf(errors.ErrActionRejected, "%s 不是武器", it.Name)
	}
	c.EquippedWeapon = it.ID
	return it, nil
}

// AttackBonus 特质带来的攻击加成
func (c *Character) AttackBonus() float64 {
	if c.Traits.Has(TraitStrong) {
		return StrongAttackBonus
	}
	return 0
}
