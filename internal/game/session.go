package game

import (
	"context"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/wfunc/survival-game/internal/config"
	"github.com/wfunc/survival-game/internal/errors"
	"github.com/wfunc/survival-game/internal/game/ambient"
	"github.com/wfunc/survival-game/internal/game/catalog"
	"github.com/wfunc/survival-game/internal/game/event"
	"github.com/wfunc/survival-game/internal/game/faction"
	"go.uber.org/zap"
)

// Runtime 不进入存档的运行时依赖，新游戏与读档时都要提供
type Runtime struct {
	Catalog   *catalog.Catalog
	Config    *config.GameConfig
	Store     SlotStore
	Input     Input
	Presenter Presenter
	Journal   Journal
	Logger    *zap.Logger
}

// withDefaults 校验必填项并补齐可选项
func (rt Runtime) withDefaults() (Runtime, error) {
	switch {
	case rt.Catalog == nil:
		return rt, errors.New(errors.ErrUnboundState, "缺少内容目录")
	case rt.Config == nil:
		return rt, errors.New(errors.ErrUnboundState, "缺少游戏配置")
	case rt.Store == nil:
		return rt, errors.New(errors.ErrUnboundState, "缺少存档存储")
	case rt.Input == nil:
		return rt, errors.New(errors.ErrUnboundState, "缺少行动输入")
	}
	if rt.Presenter == nil {
		rt.Presenter = nopPresenter{}
	}
	if rt.Journal == nil {
		rt.Journal = NopJournal{}
	}
	if rt.Logger == nil {
		rt.Logger = zap.NewNop()
	}
	return rt, nil
}

// Session 一局游戏
// 回合循环在单个 goroutine 中运行，随机数只来自会话自己的 rng
type Session struct {
	ID string

	state    *GameState
	rt       Runtime
	rng      *rand.Rand
	items    *catalog.Factory
	machine  *StateMachine
	ambients *ambient.Manager
	factions *faction.Tracker
	events   *event.Engine
	world    *sessionWorld
	logger   *zap.Logger

	maintenances int
	outcome      Outcome
}

// NewGame 开始新游戏
func NewGame(rt Runtime, opts NewGameOptions) (*Session, error) {
	rt, err := rt.withDefaults()
	if err != nil {
		return nil, err
	}

	cfg := rt.Config
	if opts.PlayerName == "" {
		opts.PlayerName = cfg.PlayerName
	}
	if opts.Archetype == "" {
		opts.Archetype = cfg.Archetype
	}
	if opts.Ambient == "" {
		opts.Ambient = cfg.StartAmbient
	}
	if opts.Seed == 0 {
		opts.Seed = cfg.Seed
	}
	if opts.Seed == 0 {
		opts.Seed = time.Now().UnixNano()
	}

	rng := rand.New(rand.NewSource(opts.Seed))
	player, err := rt.Catalog.NewCharacter(opts.PlayerName, opts.Archetype, rng)
	if err != nil {
		return nil, err
	}
	state := newGameState(opts.Seed, player, sortedKeys(rt.Catalog.Factions))

	s := newSession(state, rt, rng)
	if _, err := s.ambients.Enter(opts.Ambient); err != nil {
		return nil, err
	}
	player.CurrentAmbient = opts.Ambient

	s.logger.Info("新游戏",
		zap.String("session_id", s.ID),
		zap.Int64("seed", opts.Seed),
		zap.String("player", player.Name),
		zap.String("archetype", string(player.Archetype)),
		zap.String("ambient", opts.Ambient))
	return s, nil
}

// Bind 把运行时依赖重新挂到读出的存档上
// 随机数源由存档种子与回合计数重建，同一存档每次读取的后续结果一致
func (snap *Snapshot) Bind(rt Runtime) (*Session, error) {
	rt, err := rt.withDefaults()
	if err != nil {
		return nil, err
	}
	state := snap.state
	if _, ok := rt.Catalog.Ambients[state.Ambients.Current]; !ok {
		return nil, errors.Newf(errors.ErrSaveCorrupt, "目录中没有区域 %s", state.Ambients.Current)
	}
	for id := range rt.Catalog.Factions {
		if _, ok := state.Reputation[id]; !ok {
			state.Reputation[id] = 0
		}
	}
	state.Player.CurrentAmbient = state.Ambients.Current

	s := newSession(state, rt, rand.New(rand.NewSource(bindSeed(state.Seed, state.TurnCounter))))
	s.logger.Info("读档",
		zap.String("session_id", s.ID),
		zap.Int("turn", state.TurnCounter),
		zap.String("player", state.Player.Name))
	return s, nil
}

// bindSeed 读档时的随机种子
func bindSeed(seed int64, turn int) int64 {
	return seed + int64(turn)*1_000_003
}

// newSession 组装会话
func newSession(state *GameState, rt Runtime, rng *rand.Rand) *Session {
	id := uuid.New().String()
	log := rt.Logger.With(zap.String("session_id", id))

	s := &Session{
		ID:      id,
		state:   state,
		rt:      rt,
		rng:     rng,
		items:   rt.Catalog.Factory(rng),
		machine: NewStateMachine(id, log),
		logger:  log,
	}
	s.ambients = ambient.NewManager(rt.Catalog.Definitions(), s.items, state.Ambients, log.Named("ambient"))
	s.ambients.Bind(rng)
	s.factions = faction.NewTracker(rt.Catalog.Factions, state.Reputation, log.Named("faction"))
	s.events = event.NewEngine(rt.Catalog.Events, state.Events, log.Named("event"))
	s.world = &sessionWorld{ambients: s.ambients, factions: s.factions}
	return s
}

// State 游戏状态
func (s *Session) State() *GameState {
	return s.state
}

// Phase 当前阶段
func (s *Session) Phase() Phase {
	return s.machine.Phase()
}

// Outcome 结局，未结束时为空
func (s *Session) Outcome() Outcome {
	return s.outcome
}

// Maintenances 本会话完成的非终局维护阶段次数
func (s *Session) Maintenances() int {
	return s.maintenances
}

// Save 保存到指定槽
func (s *Session) Save(ctx context.Context, slot string) error {
	data, err := Encode(s.state, time.Now())
	if err != nil {
		return err
	}
	return s.rt.Store.WriteNamedSlot(ctx, slot, data)
}

// Summary 当前状态摘要
func (s *Session) Summary() Summary {
	p := s.state.Player
	sum := Summary{
		SessionID:   s.ID,
		Turn:        s.state.TurnCounter,
		Phase:       s.machine.Phase(),
		Player:      p.Name,
		Archetype:   p.Archetype,
		Stats:       p.Stats,
		MaxHealth:   p.MaxHealth,
		CarryWeight: p.Inventory.Weight(),
		MaxCarry:    p.MaxCarryWeight,
		Ambient:     s.state.Ambients.Current,
		Outcome:     s.outcome,
	}
	if def, visit := s.ambients.Current(); def != nil {
		sum.AmbientTitle = def.Title
		sum.Description = def.Description
		if visit != nil {
			sum.Weather = visit.Weather
		}
	}
	for _, it := range p.Inventory.List() {
		sum.Inventory = append(sum.Inventory, it.Name)
	}
	return sum
}

// sessionWorld 事件对区域与阵营的作用面
type sessionWorld struct {
	ambients *ambient.Manager
	factions *faction.Tracker
}

func (w *sessionWorld) SetWeather(weather string) {
	w.ambients.SetWeather(weather)
}

func (w *sessionWorld) AdjustResource(template string, delta int) int {
	return w.ambients.AdjustResource(template, delta)
}

func (w *sessionWorld) AdjustReputation(id string, delta int) error {
	return w.factions.AdjustReputation(id, delta)
}
