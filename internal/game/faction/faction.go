// Package faction 阵营声望与交易条件
package faction

import (
	"math"
	"sort"

	"github.com/wfunc/survival-game/internal/errors"
	"github.com/wfunc/survival-game/internal/game/entity"
	"go.uber.org/zap"
)

// Level 声望等级
type Level string

const (
	LevelHated    Level = "HATED"
	LevelDisliked Level = "DISLIKED"
	LevelNeutral  Level = "NEUTRAL"
	LevelAccepted Level = "ACCEPTED"
	LevelTrusted  Level = "TRUSTED"
	LevelAllied   Level = "ALLIED"
)

// levelRange 声望区间 [Min, Max]
type levelRange struct {
	Level Level
	Min   int
	Max   int
}

// ranges 升序排列、首尾相接，两端延伸到整数极值
var ranges = []levelRange{
	{LevelHated, math.MinInt, -51},
	{LevelDisliked, -50, -11},
	{LevelNeutral, -10, 10},
	{LevelAccepted, 11, 50},
	{LevelTrusted, 51, 99},
	{LevelAllied, 100, math.MaxInt},
}

// levelPrice 各等级的价格倍率，0 表示拒绝交易
var levelPrice = map[Level]float64{
	LevelHated:    0,
	LevelDisliked: 0,
	LevelNeutral:  1.25,
	LevelAccepted: 1.0,
	LevelTrusted:  0.85,
	LevelAllied:   0.7,
}

// dispositionPrice 声望为0时按阵营默认态度定价
var dispositionPrice = map[entity.Disposition]float64{
	entity.DispositionHostile:  0,
	entity.DispositionGuarded:  1.5,
	entity.DispositionNeutral:  1.25,
	entity.DispositionFriendly: 1.0,
}

// TradeReward 成功交易后增加的声望
const TradeReward = 2

// LevelForScore 声望分数对应的等级
func LevelForScore(score int) Level {
	i := sort.Search(len(ranges), func(i int) bool { return ranges[i].Max >= score })
	return ranges[i].Level
}

// Levels 全部等级，由低到高
func Levels() []Level {
	out := make([]Level, len(ranges))
	for i, r := range ranges {
		out[i] = r.Level
	}
	return out
}

// Refuses 该等级是否拒绝交易
func (l Level) Refuses() bool {
	return l == LevelHated || l == LevelDisliked
}

// Terms 交易条件
type Terms struct {
	Faction         string  `json:"faction"`
	Level           Level   `json:"level"`
	Allowed         bool    `json:"allowed"`
	PriceMultiplier float64 `json:"price_multiplier"`
}

// Price 按倍率计算物品价格（材料单位），至少为1
func (t Terms) Price(value int) int {
	p := int(math.Ceil(float64(value) * t.PriceMultiplier))
	if p < 1 {
		p = 1
	}
	return p
}

// Tracker 声望追踪器
// 分数表属于存档，Tracker 只持有引用
type Tracker struct {
	factions map[string]*entity.Faction
	scores   map[string]int
	logger   *zap.Logger
}

// NewTracker 创建声望追踪器
func NewTracker(factions map[string]*entity.Faction, scores map[string]int, logger *zap.Logger) *Tracker {
	if scores == nil {
		scores = make(map[string]int)
	}
	return &Tracker{factions: factions, scores: scores, logger: logger}
}

// Faction 获取阵营
func (t *Tracker) Faction(id string) (*entity.Faction, error) {
	f, ok := t.factions[id]
	if !ok {
		return nil, errors.New(errors.ErrUnknownFaction, id)
	}
	return f, nil
}

// IDs 全部阵营ID，已排序
func (t *Tracker) IDs() []string {
	ids := make([]string, 0, len(t.factions))
	for id := range t.factions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// AdjustReputation 调整声望，没有业务上下限，只在 int 溢出时饱和
func (t *Tracker) AdjustReputation(id string, delta int) error {
	if _, err := t.Faction(id); err != nil {
		return err
	}
	before := t.scores[id]
	t.scores[id] = saturatingAdd(before, delta)
	if LevelForScore(before) != LevelForScore(t.scores[id]) {
		t.logger.Info("声望等级变化",
			zap.String("faction", id),
			zap.Int("score", t.scores[id]),
			zap.String("from", string(LevelForScore(before))),
			zap.String("to", string(LevelForScore(t.scores[id]))))
	}
	return nil
}

func saturatingAdd(a, b int) int {
	switch {
	case b > 0 && a > math.MaxInt-b:
		return math.MaxInt
	case b < 0 && a < math.MinInt-b:
		return math.MinInt
	}
	return a + b
}

// Score 当前声望
func (t *Tracker) Score(id string) int {
	return t.scores[id]
}

// Scores 声望表
func (t *Tracker) Scores() map[string]int {
	return t.scores
}

// LevelFor 阵营当前声望等级
func (t *Tracker) LevelFor(id string) (Level, error) {
	if _, err := t.Faction(id); err != nil {
		return "", err
	}
	return LevelForScore(t.scores[id]), nil
}

// TradeTerms 计算交易条件
// 声望为0时使用阵营默认态度，否则使用声望等级；DISLIKED 及以下拒绝交易
func (t *Tracker) TradeTerms(id string) (Terms, error) {
	f, err := t.Faction(id)
	if err != nil {
		return Terms{}, err
	}
	score := t.scores[id]
	terms := Terms{Faction: id, Level: LevelForScore(score)}

	if score == 0 {
		terms.PriceMultiplier = dispositionPrice[f.Disposition]
		if terms.PriceMultiplier == 0 && f.Disposition != entity.DispositionHostile {
			terms.PriceMultiplier = levelPrice[LevelNeutral]
		}
	} else {
		terms.PriceMultiplier = levelPrice[terms.Level]
	}
	terms.Allowed = terms.PriceMultiplier > 0
	return terms, nil
}

// HostileOnSight 阵营成员是否见面即攻击
func (t *Tracker) HostileOnSight(id string) bool {
	f, ok := t.factions[id]
	if !ok {
		return false
	}
	score := t.scores[id]
	if score == 0 {
		return f.Disposition == entity.DispositionHostile
	}
	return LevelForScore(score) == LevelHated
}

// PresentIn 出没于某区域的阵营，已排序
func (t *Tracker) PresentIn(ambient string) []*entity.Faction {
	var out []*entity.Faction
	for _, id := range t.IDs() {
		if f := t.factions[id]; f.PresentIn(ambient) {
			out = append(out, f)
		}
	}
	return out
}
