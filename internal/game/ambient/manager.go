package ambient

import (
	"math/rand"
	"sort"

	"github.com/wfunc/survival-game/internal/errors"
	"github.com/wfunc/survival-game/internal/game/entity"
	"go.uber.org/zap"
)

const (
	// VisitDecayTurns 离开多少回合后访问次数衰减一次
	VisitDecayTurns = 10
	// respawnChance 维护阶段补充生物的概率
	respawnChance = 0.2
	// visitScaleStep 每多访问一次遭遇率提升的比例
	visitScaleStep = 0.1
	maxVisitScaleSteps = 5
)

// Content 物品与生物工厂
type Content interface {
	entity.ItemFactory
	NewCreature(kind string) (*entity.Creature, bool)
}

// MaintenanceReport 维护阶段的变化
type MaintenanceReport struct {
	SpoiledFood []string       `json:"spoiled_food,omitempty"`
	Rotted      map[string]int `json:"rotted,omitempty"`
	Regenerated map[string]int `json:"regenerated,omitempty"`
	Spawned     []string       `json:"spawned,omitempty"`
}

// Manager 区域管理器
// 直接读写存档中的 Snapshot，地图按种子缓存
type Manager struct {
	defs    map[string]*Definition
	content Content
	state   *Snapshot
	maps    map[string]*TileMap
	rng     *rand.Rand
	logger  *zap.Logger
}

// NewManager 创建区域管理器
func NewManager(defs map[string]*Definition, content Content, state *Snapshot, logger *zap.Logger) *Manager {
	if state.Visits == nil {
		state.Visits = make(map[string]*VisitData)
	}
	return &Manager{
		defs:    defs,
		content: content,
		state:   state,
		maps:    make(map[string]*TileMap),
		logger:  logger,
	}
}

// Bind 绑定随机源
func (m *Manager) Bind(rng *rand.Rand) {
	m.rng = rng
}

// Bound 是否已绑定随机源
func (m *Manager) Bound() bool {
	return m.rng != nil
}

// Definition 获取区域模板
func (m *Manager) Definition(name string) (*Definition, bool) {
	d, ok := m.defs[name]
	return d, ok
}

// Current 当前区域
func (m *Manager) Current() (*Definition, *VisitData) {
	return m.defs[m.state.Current], m.state.Visits[m.state.Current]
}

// CurrentName 当前区域名
func (m *Manager) CurrentName() string {
	return m.state.Current
}

// Enter 进入区域，首次访问时生成种子、资源池与生物
func (m *Manager) Enter(name string) (*VisitData, error) {
	def, ok := m.defs[name]
	if !ok {
		return nil, errors.New(errors.ErrUnknownAmbient, name)
	}

	visit, seen := m.state.Visits[name]
	if !seen {
		visit = &VisitData{
			MapSeed:   m.rng.Int63(),
			Weather:   def.Weather,
			Resources: make(map[string]*Pool, len(def.Resources)),
			Spawned:   []*entity.Creature{},
		}
		for _, r := range def.Resources {
			visit.Resources[r.Item] = &Pool{Remaining: r.Stock}
		}
		m.state.Visits[name] = visit
		for i := 0; i < def.MaxCreatures; i++ {
			m.spawn(name, def, visit)
		}
		m.logger.Debug("首次进入区域",
			zap.String("ambient", name),
			zap.Int64("map_seed", visit.MapSeed),
			zap.Int("creatures", len(visit.Spawned)))
	}

	visit.VisitCount++
	visit.TurnsSinceVisit = 0
	m.state.Current = name
	return visit, nil
}

// TileMap 获取区域地图，首次请求时按种子生成
func (m *Manager) TileMap(name string) (*TileMap, bool) {
	if tm, ok := m.maps[name]; ok {
		return tm, true
	}
	def, ok := m.defs[name]
	visit, seen := m.state.Visits[name]
	if !ok || !seen {
		return nil, false
	}
	tm := GenerateTileMap(visit.MapSeed, def.Width, def.Height)
	m.maps[name] = tm
	return tm, true
}

// CollectResource 采集一份资源，kind 为空时随机选择
// 资源耗尽是正常结果，返回 false
func (m *Manager) CollectResource(kind string) (*entity.Item, bool) {
	_, visit := m.Current()
	if visit == nil {
		return nil, false
	}

	if kind == "" {
		var available []string
		for _, name := range sortedKeys(visit.Resources) {
			if visit.Resources[name].Remaining > 0 {
				available = append(available, name)
			}
		}
		if len(available) == 0 {
			return nil, false
		}
		kind = available[m.rng.Intn(len(available))]
	}

	pool, ok := visit.Resources[kind]
	if !ok || pool.Remaining <= 0 {
		return nil, false
	}
	item, ok := m.content.NewItem(kind)
	if !ok {
		return nil, false
	}
	pool.Remaining--
	if pool.Remaining == 0 {
		pool.SpoilTicks = 0
	}
	return item, true
}

// Remaining 当前区域某资源剩余量
func (m *Manager) Remaining(kind string) int {
	_, visit := m.Current()
	if visit == nil {
		return 0
	}
	if pool, ok := visit.Resources[kind]; ok {
		return pool.Remaining
	}
	return 0
}

// EncounterChance 当前区域遭遇概率，随访问次数提高
func (m *Manager) EncounterChance() float64 {
	def, visit := m.Current()
	if def == nil || visit == nil {
		return 0
	}
	steps := visit.VisitCount - 1
	if steps > maxVisitScaleSteps {
		steps = maxVisitScaleSteps
	}
	if steps < 0 {
		steps = 0
	}
	return entity.ClampUnit(def.EncounterChance * (1 + visitScaleStep*float64(steps)))
}

// Encounter 判定是否遇到生物，multiplier 来自角色特质
func (m *Manager) Encounter(multiplier float64) *entity.Creature {
	_, visit := m.Current()
	if visit == nil {
		return nil
	}
	living := visit.Living()
	if len(living) == 0 {
		return nil
	}
	if m.rng.Float64() >= entity.ClampUnit(m.EncounterChance()*multiplier) {
		return nil
	}
	return living[m.rng.Intn(len(living))]
}

// Despawn 从当前区域移除生物
func (m *Manager) Despawn(id string) {
	if _, visit := m.Current(); visit != nil {
		visit.removeCreature(id)
	}
}

// SetWeather 修改当前区域天气
func (m *Manager) SetWeather(weather string) {
	if _, visit := m.Current(); visit != nil && weather != "" {
		visit.Weather = weather
	}
}

// AdjustResource 增减当前区域资源，结果限制在 [0, 初始存量]，返回实际变化
func (m *Manager) AdjustResource(template string, delta int) int {
	def, visit := m.Current()
	if def == nil || visit == nil {
		return 0
	}
	stock, ok := def.Stock(template)
	if !ok {
		return 0
	}
	pool := visit.Resources[template]
	if pool == nil {
		pool = &Pool{}
		visit.Resources[template] = pool
	}
	before := pool.Remaining
	pool.Remaining += delta
	if pool.Remaining < 0 {
		pool.Remaining = 0
	}
	if pool.Remaining > stock.Stock {
		pool.Remaining = stock.Stock
	}
	return pool.Remaining - before
}

// RunMaintenance 维护阶段
// 背包食物老化；各已访问区域的易腐资源腐烂、资源按概率再生（不超过初始存量）；
// 未停留区域的访问次数随时间衰减；当前区域可能补充生物
func (m *Manager) RunMaintenance(inv *entity.Inventory) *MaintenanceReport {
	report := &MaintenanceReport{
		Rotted:      make(map[string]int),
		Regenerated: make(map[string]int),
	}

	if inv != nil {
		for _, food := range inv.Foods() {
			if food.AgeFood() {
				report.SpoiledFood = append(report.SpoiledFood, food.Name)
			}
		}
	}

	for _, name := range sortedKeys(m.state.Visits) {
		def, ok := m.defs[name]
		if !ok {
			continue
		}
		visit := m.state.Visits[name]

		for _, stock := range def.Resources {
			pool := visit.Resources[stock.Item]
			if pool == nil {
				pool = &Pool{}
				visit.Resources[stock.Item] = pool
			}
			if stock.SpoilTurns > 0 && pool.Remaining > 0 {
				pool.SpoilTicks++
				if pool.SpoilTicks >= stock.SpoilTurns {
					pool.Remaining--
					pool.SpoilTicks = 0
					report.Rotted[stock.Item]++
				}
			}
			if pool.Remaining < stock.Stock && m.rng.Float64() < stock.RegenRate {
				pool.Remaining++
				report.Regenerated[stock.Item]++
			}
		}

		if name == m.state.Current {
			if len(visit.Living()) < def.MaxCreatures && m.rng.Float64() < respawnChance {
				if c := m.spawn(name, def, visit); c != nil {
					report.Spawned = append(report.Spawned, c.Name)
				}
			}
			continue
		}

		visit.TurnsSinceVisit++
		if visit.TurnsSinceVisit >= VisitDecayTurns && visit.VisitCount > 1 {
			visit.VisitCount--
			visit.TurnsSinceVisit = 0
		}
	}

	return report
}

// spawn 在地图上放置一个生物
func (m *Manager) spawn(name string, def *Definition, visit *VisitData) *entity.Creature {
	if len(def.Creatures) == 0 {
		return nil
	}
	kind := def.Creatures[m.rng.Intn(len(def.Creatures))]
	c, ok := m.content.NewCreature(kind)
	if !ok {
		m.logger.Warn("未知生物种类", zap.String("ambient", name), zap.String("kind", kind))
		return nil
	}
	if tm, ok := m.TileMap(name); ok {
		c.X, c.Y = tm.RandomPassable(m.rng)
	}
	visit.Spawned = append(visit.Spawned, c)
	return c
}

func sortedKeys[V any](in map[string]V) []string {
	keys := make([]string, 0, len(in))
	for k := range in {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
