// Package ambient 区域资源池、地图与维护
package ambient

import (
	"github.com/wfunc/survival-game/internal/game/event"
)

// ResourceStock 区域资源的初始存量与再生参数
type ResourceStock struct {
	Item       string  `yaml:"item"`
	Stock      int     `yaml:"stock"`
	RegenRate  float64 `yaml:"regen_rate"`  // 每回合再生一份的概率
	SpoilTurns int     `yaml:"spoil_turns"` // 大于0时每隔该回合数腐烂一份
}

// Definition 区域模板
type Definition struct {
	Name                  string          `yaml:"-"`
	Title                 string          `yaml:"title"`
	Description           string          `yaml:"description"`
	ExplorationDifficulty float64         `yaml:"exploration_difficulty"` // 探索体力倍率
	Weather               string          `yaml:"weather"`
	Resources             []ResourceStock `yaml:"resources"`
	Creatures             []string        `yaml:"creatures"`
	EncounterChance       float64         `yaml:"encounter_chance"`
	MaxCreatures          int             `yaml:"max_creatures"`
	Events                []event.Weight  `yaml:"events"`
	Neighbors             []string        `yaml:"neighbors"`
	Width                 int             `yaml:"width"`
	Height                int             `yaml:"height"`
}

// Stock 查找资源定义
func (d *Definition) Stock(item string) (ResourceStock, bool) {
	for _, r := range d.Resources {
		if r.Item == item {
			return r, true
		}
	}
	return ResourceStock{}, false
}

// Adjacent 是否与目标区域相邻
func (d *Definition) Adjacent(name string) bool {
	for _, n := range d.Neighbors {
		if n == name {
			return true
		}
	}
	return false
}

// Difficulty 探索难度，未配置时为1
func (d *Definition) Difficulty() float64 {
	if d.ExplorationDifficulty <= 0 {
		return 1
	}
	return d.ExplorationDifficulty
}
