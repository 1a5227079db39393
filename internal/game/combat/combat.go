// Package combat 伤害结算、敌意转换与掉落
package combat

import (
	"math/rand"

	"github.com/wfunc/survival-game/internal/game/entity"
)

// Attack 一次攻击的参数
// 方差为均匀分布的半宽，例如狼 ±2.5、熊 ±5
type Attack struct {
	Base     float64
	Bonus    float64
	Variance float64
}

// Defender 可受伤的目标
type Defender interface {
	ReceiveDamage(amount float64) float64
	Alive() bool
}

// Roll 计算本次伤害，不小于0
func (a Attack) Roll(rng *rand.Rand) float64 {
	variance := 0.0
	if a.Variance > 0 {
		variance = (rng.Float64()*2 - 1) * a.Variance
	}
	dmg := a.Base + a.Bonus + variance
	if dmg < 0 {
		return 0
	}
	return dmg
}

// ResolveAttack 结算一次攻击
// 目标是生物时，每次扣血后都会检查敌意转换
func ResolveAttack(rng *rand.Rand, atk Attack, defender Defender) (dealt float64, survived bool) {
	dealt = defender.ReceiveDamage(atk.Roll(rng))
	if c, ok := defender.(*entity.Creature); ok {
		UpdateHostility(c, dealt)
	}
	return dealt, defender.Alive()
}

// UpdateHostility 受伤后的敌意转换
// 温顺生物不受影响；闪避型生物受到任意伤害即逃跑；
// 中立生物生命比例首次低于阈值时被激怒，伤害倍率只施加一次
func UpdateHostility(c *entity.Creature, dealt float64) bool {
	if dealt <= 0 || c.Hostility == entity.Passive {
		return false
	}
	if c.Evasive {
		if c.Hostility == entity.Fleeing {
			return false
		}
		c.Hostility = entity.Fleeing
		return true
	}
	if c.Hostility == entity.Neutral && !c.Enraged && c.Alive() && c.HealthFraction() < c.EnrageThreshold {
		c.Hostility = entity.Hostile
		c.Enraged = true
		return true
	}
	return false
}

// CreatureAttack 生物的攻击参数
func CreatureAttack(c *entity.Creature) Attack {
	return Attack{Base: c.Damage(), Variance: c.Variance}
}

// PlayerAttack 玩家的攻击参数，包含武器与特质加成
func PlayerAttack(p *entity.Character) Attack {
	atk := Attack{Base: p.AttackDamage, Bonus: p.AttackBonus(), Variance: p.AttackVariance}
	if w := p.Weapon(); w != nil {
		atk.Base += w.Weapon.Damage
	}
	return atk
}

// DropLoot 生成掉落，仅在生物死亡时生效且只生成一次
func DropLoot(rng *rand.Rand, c *entity.Creature, items entity.ItemFactory) []*entity.Item {
	if c.Health > 0 || c.LootDropped {
		return nil
	}
	c.LootDropped = true

	var drops []*entity.Item
	for _, entry := range c.Loot {
		if rng.Float64() >= entity.ClampUnit(entry.Chance) {
			continue
		}
		it, ok := items.NewItem(entry.Item)
		if !ok {
			continue
		}
		if entry.Quantity > 1 && it.Material != nil {
			it.Material.Quantity = entry.Quantity
		}
		drops = append(drops, it)
	}
	return drops
}
