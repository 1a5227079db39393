package game

import (
	"time"

	"github.com/wfunc/survival-game/internal/errors"
	"github.com/wfunc/survival-game/internal/game/ambient"
	"github.com/wfunc/survival-game/internal/game/entity"
	"github.com/wfunc/survival-game/internal/game/event"
)

// GameState 存档聚合
// 回合循环期间由会话独占，其他组件只持有其中字段的引用
type GameState struct {
	Seed             int64             `json:"seed"`
	TurnCounter      int               `json:"turn_counter"`
	Player           *entity.Character `json:"player"`
	Ambients         *ambient.Snapshot `json:"ambients"`
	Reputation       map[string]int    `json:"reputation"`
	Events           *event.Ledger     `json:"events"`
	SanityZeroStreak int               `json:"sanity_zero_streak"`
	StartedAt        time.Time         `json:"started_at"`
}

// NewGameOptions 新游戏参数，零值字段使用配置默认值
type NewGameOptions struct {
	PlayerName string
	Archetype  string
	Seed       int64
	Ambient    string
}

// newGameState 创建初始存档，回合计数从1开始
func newGameState(seed int64, player *entity.Character, factions []string) *GameState {
	reputation := make(map[string]int, len(factions))
	for _, id := range factions {
		reputation[id] = 0
	}
	return &GameState{
		Seed:        seed,
		TurnCounter: 1,
		Player:      player,
		Ambients:    &ambient.Snapshot{Visits: make(map[string]*ambient.VisitData)},
		Reputation:  reputation,
		Events:      event.NewLedger(),
		StartedAt:   time.Now().UTC().Truncate(time.Second),
	}
}

// normalize 补齐解码后可能缺失的容器，无法补齐的空引用按存档损坏处理
func (s *GameState) normalize() error {
	if s.Reputation == nil {
		s.Reputation = make(map[string]int)
	}
	if s.Events == nil {
		s.Events = event.NewLedger()
	}
	s.Events.Normalize()

	if s.Ambients.Visits == nil {
		s.Ambients.Visits = make(map[string]*ambient.VisitData)
	}
	for name, visit := range s.Ambients.Visits {
		if visit == nil {
			return errors.Newf(errors.ErrSaveCorrupt, "区域 %s 的访问记录为空", name)
		}
		if visit.Resources == nil {
			return errors.Newf(errors.ErrSaveCorrupt, "区域 %s 缺少资源表", name)
		}
		for item, pool := range visit.Resources {
			if pool == nil {
				return errors.Newf(errors.ErrSaveCorrupt, "区域 %s 的资源 %s 为空", name, item)
			}
		}
		for i, c := range visit.Spawned {
			if c == nil {
				return errors.Newf(errors.ErrSaveCorrupt, "区域 %s 的第 %d 个生物为空", name, i)
			}
		}
	}

	if s.Player.Inventory == nil {
		s.Player.Inventory = entity.NewInventory()
	}
	if s.Player.Inventory.Items == nil {
		s.Player.Inventory.Items = []*entity.Item{}
	}
	for i, it := range s.Player.Inventory.Items {
		if it == nil {
			return errors.Newf(errors.ErrSaveCorrupt, "背包第 %d 个物品为空", i)
		}
		if !it.PayloadMatches() {
			return errors.Newf(errors.ErrSaveCorrupt, "物品 %s 的种类 %s 缺少对应参数", it.Name, it.Kind)
		}
	}

	s.StartedAt = s.StartedAt.UTC()
	return nil
}
