package entity

import (
	"fmt"
	"strings"

	"github.com/wfunc/survival-game/internal/errors"
)

// ArchetypeKind 职业
type ArchetypeKind string

const (
	ArchetypeDoctor     ArchetypeKind = "doctor"
	ArchetypeHunter     ArchetypeKind = "hunter"
	ArchetypeLumberjack ArchetypeKind = "lumberjack"
	ArchetypeSurvivor   ArchetypeKind = "survivor"
)

// ParseArchetype 解析职业名
func ParseArchetype(s string) (ArchetypeKind, error) {
	k := ArchetypeKind(strings.ToLower(strings.TrimSpace(s)))
	switch k {
	case ArchetypeDoctor, ArchetypeHunter, ArchetypeLumberjack, ArchetypeSurvivor:
		return k, nil
	}
	return "", fmt.Errorf("未知职业: %s", s)
}

// Ability 职业特技
type Ability string

const (
	AbilityHeal   Ability = "heal"   // 医生：恢复生命
	AbilityForage Ability = "forage" // 猎人：获得生肉
	AbilityChop   Ability = "chop"   // 伐木工：获得木材
	AbilitySteady Ability = "steady" // 幸存者：恢复理智
)

// AbilitySpec 特技参数
type AbilitySpec struct {
	Kind  Ability `json:"kind" yaml:"kind"`
	Cost  int     `json:"cost" yaml:"cost"`
	Power float64 `json:"power,omitempty" yaml:"power"`
	Item  string  `json:"item,omitempty" yaml:"item"`
}

// Archetype 职业模板
type Archetype struct {
	Kind           ArchetypeKind `yaml:"kind"`
	Name           string        `yaml:"name"`
	Description    string        `yaml:"description"`
	Base           Stats         `yaml:"base"`
	MaxHealth      float64       `yaml:"max_health"`
	AttackDamage   float64       `yaml:"attack_damage"`
	AttackVariance float64       `yaml:"attack_variance"`
	Speed          int           `yaml:"speed"`
	MaxCarryWeight float64       `yaml:"max_carry_weight"`
	Ability        AbilitySpec   `yaml:"ability"`
	Traits         []Trait       `yaml:"traits"`
	StartingItems  []string      `yaml:"starting_items"`
}

// ItemFactory 按模板生成物品实例
type ItemFactory interface {
	NewItem(template string) (*Item, bool)
}

// AbilityResult 特技结果
type AbilityResult struct {
	Ability     Ability `json:"ability"`
	EnergySpent int     `json:"energy_spent"`
	Restored    float64 `json:"restored,omitempty"`
	Item        *Item   `json:"item,omitempty"`
}

// ApplySpecialAbility 执行角色特技
// 无事可做时不扣体力；体力在效果结算前扣除
func ApplySpecialAbility(c *Character, items ItemFactory) (*AbilityResult, error) {
	spec := c.Ability
	result := &AbilityResult{Ability: spec.Kind}

	switch spec.Kind {
	case AbilityHeal:
		if c.Stats.Health >= c.healthCap() {
			return nil, errors.New(errors.ErrNothingToDo, "生命已满")
		}
		if err := c.SpendEnergy(spec.Cost); err != nil {
			return nil, err
		}
		result.Restored = c.Adjust(AttrLife, spec.Power)

	case AbilitySteady:
		if c.Stats.Sanity >= StatMax {
			return nil, errors.New(errors.ErrNothingToDo, "理智已满")
		}
		if err := c.SpendEnergy(spec.Cost); err != nil {
			return nil, err
		}
		result.Restored = c.Adjust(AttrSanity, spec.Power)

	case AbilityForage, AbilityChop:
		item, ok := items.NewItem(spec.Item)
		if !ok {
			return nil, errors.Newf(errors.ErrItemNotFound, "模板 %s", spec.Item)
		}
		if !c.CanCarry(item) {
			return nil, errors.New(errors.ErrCannotCarry, item.Name)
		}
		if err := c.SpendEnergy(spec.Cost); err != nil {
			return nil, err
		}
		if err := c.Carry(item); err != nil {
			return nil, err
		}
		result.Item = item

	default:
		return nil, errors.Newf(errors.ErrActionRejected, "未知特技 %s", spec.Kind)
	}

	result.EnergySpent = spec.Cost
	return result, nil
}
