package entity

import "math"

const (
	// StatMin 属性下限
	StatMin = 0.0
	// StatMax 属性上限
	StatMax = 100.0
)

// Attribute 角色属性
type Attribute string

const (
	AttrLife   Attribute = "LIFE"
	AttrHunger Attribute = "HUNGER"
	AttrThirst Attribute = "THIRST"
	AttrEnergy Attribute = "ENERGY"
	AttrSanity Attribute = "SANITY"
)

// Clamp 将值限制在 [lo, hi]，NaN 返回 lo
func Clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) || v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ClampStat 将值限制在 [0,100]
func ClampStat(v float64) float64 {
	return Clamp(v, StatMin, StatMax)
}

// ClampUnit 将概率类数值限制在 [0,1]
func ClampUnit(v float64) float64 {
	return Clamp(v, 0, 1)
}

// clampOr NaN 时保留原值，否则限制在 [lo, hi]
func clampOr(v, prev, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return Clamp(prev, lo, hi)
	}
	return Clamp(v, lo, hi)
}

// Stats 角色五项属性
// 饥饿和口渴随时间上升（0 表示饱足），体力和理智随时间下降
type Stats struct {
	Health float64 `json:"health" yaml:"health"`
	Hunger float64 `json:"hunger" yaml:"hunger"`
	Thirst float64 `json:"thirst" yaml:"thirst"`
	Energy float64 `json:"energy" yaml:"energy"`
	Sanity float64 `json:"sanity" yaml:"sanity"`
}
