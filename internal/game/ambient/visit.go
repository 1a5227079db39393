package ambient

import (
	"github.com/wfunc/survival-game/internal/game/entity"
)

// Pool 单项资源的剩余量
type Pool struct {
	Remaining  int `json:"remaining"`
	SpoilTicks int `json:"spoil_ticks"`
}

// VisitData 区域访问数据，随存档持久化
type VisitData struct {
	MapSeed         int64              `json:"map_seed"`
	VisitCount      int                `json:"visit_count"`
	TurnsSinceVisit int                `json:"turns_since_visit"`
	Weather         string             `json:"weather"`
	Resources       map[string]*Pool   `json:"resources"`
	Spawned         []*entity.Creature `json:"spawned"`
}

// Snapshot 区域管理器的持久化形式
type Snapshot struct {
	Current string                `json:"current"`
	Visits  map[string]*VisitData `json:"visits"`
}

// Living 存活的生物
func (v *VisitData) Living() []*entity.Creature {
	var alive []*entity.Creature
	for _, c := range v.Spawned {
		if c.Alive() {
			alive = append(alive, c)
		}
	}
	return alive
}

// removeCreature 移除生物（死亡或逃走）
func (v *VisitData) removeCreature(id string) {
	kept := v.Spawned[:0]
	for _, c := range v.Spawned {
		if c.ID != id {
			kept = append(kept, c)
		}
	}
	v.Spawned = kept
}
