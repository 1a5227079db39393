package entity

import "sort"

// Trait 被动特质
type Trait string

const (
	TraitMedic       Trait = "medic"       // 药品效果提升
	TraitHardy       Trait = "hardy"       // 饥饿口渴增长减缓
	TraitResilient   Trait = "resilient"   // 理智下降减缓
	TraitStrong      Trait = "strong"      // 攻击加成
	TraitTracker     Trait = "tracker"     // 更容易遇到生物
	TraitResourceful Trait = "resourceful" // 采集时可能多得一份
)

// 特质数值
const (
	MedicPotencyMultiplier   = 1.5
	HardyDecayMultiplier     = 0.75
	ResilientDecayMultiplier = 0.5
	StrongAttackBonus        = 2.0
	TrackerEncounterBonus    = 1.25
	ResourcefulExtraChance   = 0.25
)

// TraitSet 特质集合，去重且有序
type TraitSet []Trait

// NewTraitSet 创建特质集合
func NewTraitSet(traits ...Trait) TraitSet {
	seen := make(map[Trait]bool, len(traits))
	set := make(TraitSet, 0, len(traits))
	for _, t := range traits {
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		set = append(set, t)
	}
	sort.Slice(set, func(i, j int) bool { return set[i] < set[j] })
	return set
}

// Has 是否拥有特质
func (s TraitSet) Has(t Trait) bool {
	for _, v := range s {
		if v == t {
			return true
		}
	}
	return false
}
