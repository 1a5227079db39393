// Package event 随机事件的抽取与效果应用
package event

import (
	"github.com/wfunc/survival-game/internal/game/entity"
)

// Attribute 事件影响的属性
// 前五项作用于角色，其余作用于所在区域
type Attribute string

const (
	AttrLife       Attribute = Attribute(entity.AttrLife)
	AttrHunger     Attribute = Attribute(entity.AttrHunger)
	AttrThirst     Attribute = Attribute(entity.AttrThirst)
	AttrEnergy     Attribute = Attribute(entity.AttrEnergy)
	AttrSanity     Attribute = Attribute(entity.AttrSanity)
	AttrWeather    Attribute = "WEATHER"
	AttrResources  Attribute = "RESOURCES"
	AttrReputation Attribute = "REPUTATION"
)

// CharacterScoped 是否作用于角色
func (a Attribute) CharacterScoped() bool {
	switch a {
	case AttrLife, AttrHunger, AttrThirst, AttrEnergy, AttrSanity:
		return true
	}
	return false
}

// Impact 一项属性影响
// Target 对天气是新天气名，对资源是物品模板，对声望是阵营ID
type Impact struct {
	Attribute Attribute `json:"attribute" yaml:"attribute"`
	Magnitude float64   `json:"magnitude" yaml:"magnitude"`
	Target    string    `json:"target,omitempty" yaml:"target"`
}

// Event 事件模板，本身无状态
type Event struct {
	Name        string   `json:"name" yaml:"-"`
	Description string   `json:"description" yaml:"description"`
	Probability float64  `json:"probability" yaml:"probability"`
	Impacts     []Impact `json:"impacts" yaml:"impacts"`
	Activatable bool     `json:"activatable" yaml:"activatable"`
	Duration    int      `json:"duration,omitempty" yaml:"duration"`
	FollowUp    string   `json:"follow_up,omitempty" yaml:"follow_up"`
	OneShot     bool     `json:"one_shot,omitempty" yaml:"one_shot"`
	MaxSanity   float64  `json:"max_sanity,omitempty" yaml:"max_sanity"` // 大于0时仅在理智不高于该值时可触发
}

// Eligible 角色当前状态是否满足触发条件
func (e *Event) Eligible(ch *entity.Character) bool {
	if !e.Activatable {
		return false
	}
	if e.MaxSanity > 0 && ch != nil && ch.Stats.Sanity > e.MaxSanity {
		return false
	}
	return true
}

// Weight 区域事件表中的一项
type Weight struct {
	Event  string  `json:"event" yaml:"event"`
	Weight float64 `json:"weight" yaml:"weight"`
}

// World 事件对区域与阵营的作用面
type World interface {
	SetWeather(weather string)
	AdjustResource(template string, delta int) int
	AdjustReputation(faction string, delta int) error
}

// Applied 一次事件应用的结果
type Applied struct {
	Event   string                       `json:"event"`
	Changes map[entity.Attribute]float64 `json:"changes,omitempty"`
	Weather string                       `json:"weather,omitempty"`
}
