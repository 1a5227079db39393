package game

import (
	"strings"

	"github.com/wfunc/survival-game/internal/errors"
	"github.com/wfunc/survival-game/internal/game/ambient"
	"github.com/wfunc/survival-game/internal/game/combat"
	"github.com/wfunc/survival-game/internal/game/entity"
	"github.com/wfunc/survival-game/internal/game/event"
)

// Phase 回合阶段
type Phase string

const (
	PhaseStart       Phase = "START"        // 回合开始，只展示状态
	PhaseAction      Phase = "ACTION"       // 等待玩家行动
	PhaseRandomEvent Phase = "RANDOM_EVENT" // 随机事件
	PhaseMaintenance Phase = "MAINTENANCE"  // 衰减与维护
	PhaseTerminal    Phase = "TERMINAL"     // 游戏结束
)

// Outcome 游戏结局
type Outcome string

const (
	OutcomeNone           Outcome = ""
	OutcomePlayerDefeated Outcome = "PLAYER_DEFEATED"
	OutcomeSurvivalFail   Outcome = "SURVIVAL_FAILURE"
	OutcomePlayerQuit     Outcome = "PLAYER_QUIT"
	OutcomeObjectiveMet   Outcome = "OBJECTIVE_MET"
)

// ActionKind 行动种类
type ActionKind string

const (
	ActionExplore   ActionKind = "explore"
	ActionRest      ActionKind = "rest"
	ActionInventory ActionKind = "inventory"
	ActionQuit      ActionKind = "quit"
	ActionAbility   ActionKind = "ability"
	ActionUse       ActionKind = "use"
	ActionDrop      ActionKind = "drop"
	ActionEquip     ActionKind = "equip"
	ActionTravel    ActionKind = "travel"
	ActionTrade     ActionKind = "trade"
)

// actionArgs 每种行动需要的参数个数
var actionArgs = map[ActionKind]int{
	ActionExplore:   0,
	ActionRest:      0,
	ActionInventory: 0,
	ActionQuit:      0,
	ActionAbility:   0,
	ActionUse:       1,
	ActionDrop:      1,
	ActionEquip:     1,
	ActionTravel:    1,
	ActionTrade:     2,
}

// Action 玩家行动
type Action struct {
	Kind ActionKind `json:"kind"`
	Args []string   `json:"args,omitempty"`
}

// Arg 第 i 个参数，不存在时为空
func (a Action) Arg(i int) string {
	if i < len(a.Args) {
		return a.Args[i]
	}
	return ""
}

// String 文本形式
func (a Action) String() string {
	if len(a.Args) == 0 {
		return string(a.Kind)
	}
	return string(a.Kind) + " " + strings.Join(a.Args, " ")
}

// CostKey 体力消耗配置键，物品类行动共用 inventory 的消耗
func (a Action) CostKey() string {
	switch a.Kind {
	case ActionUse, ActionDrop, ActionEquip:
		return string(ActionInventory)
	}
	return string(a.Kind)
}

// ParseAction 解析行动文本，例如 "trade river_traders bandage"
func ParseAction(s string) (Action, error) {
	fields := strings.Fields(strings.ToLower(strings.TrimSpace(s)))
	if len(fields) == 0 {
		return Action{}, errors.New(errors.ErrUnknownAction, "空行动")
	}
	kind := ActionKind(fields[0])
	want, ok := actionArgs[kind]
	if !ok {
		return Action{}, errors.New(errors.ErrUnknownAction, fields[0])
	}
	args := fields[1:]
	if len(args) < want {
		return Action{}, errors.Newf(errors.ErrUnknownAction, "%s 需要 %d 个参数", kind, want)
	}
	a := Action{Kind: kind}
	if want > 0 {
		// 最后一个参数可以包含空格，例如物品名 "raw meat"
		a.Args = append([]string{}, args[:want-1]...)
		a.Args = append(a.Args, strings.Join(args[want-1:], " "))
	}
	return a, nil
}

// ActionResult 行动结果
// 被拒绝的行动是正常结果，不会中断回合
type ActionResult struct {
	Action      string                `json:"action"`
	OK          bool                  `json:"ok"`
	Code        errors.ErrorCode      `json:"code,omitempty"`
	Reason      string                `json:"reason,omitempty"`
	EnergySpent int                   `json:"energy_spent"`
	Collected   []string              `json:"collected,omitempty"`
	Combat      *combat.Report        `json:"combat,omitempty"`
	Ability     *entity.AbilityResult `json:"ability,omitempty"`
	Messages    []string              `json:"messages,omitempty"`
}

// reject 以错误码拒绝行动
func reject(action Action, err error) *ActionResult {
	r := &ActionResult{Action: action.String(), Code: errors.GetCode(err), Reason: err.Error()}
	if appErr, ok := errors.As(err); ok {
		r.Reason = appErr.Message
		if appErr.Details != "" {
			r.Reason += ": " + appErr.Details
		}
	}
	return r
}

// Summary 阶段摘要，提供给展示层
type Summary struct {
	SessionID    string                     `json:"session_id"`
	Turn         int                        `json:"turn"`
	Phase        Phase                      `json:"phase"`
	Player       string                     `json:"player"`
	Archetype    entity.ArchetypeKind       `json:"archetype"`
	Stats        entity.Stats               `json:"stats"`
	MaxHealth    float64                    `json:"max_health"`
	CarryWeight  float64                    `json:"carry_weight"`
	MaxCarry     float64                    `json:"max_carry"`
	Ambient      string                     `json:"ambient"`
	AmbientTitle string                     `json:"ambient_title,omitempty"`
	Description  string                     `json:"description,omitempty"`
	Weather      string                     `json:"weather,omitempty"`
	Inventory    []string                   `json:"inventory,omitempty"`
	Action       *ActionResult              `json:"action,omitempty"`
	Events       []*event.Applied           `json:"events,omitempty"`
	Maintenance  *ambient.MaintenanceReport `json:"maintenance,omitempty"`
	Outcome      Outcome                    `json:"outcome,omitempty"`
}

// Detach 复制摘要中引用的背包物品，返回值可在回合循环之外读取
func (s Summary) Detach() Summary {
	if s.Action == nil {
		return s
	}
	action := *s.Action
	if action.Combat != nil {
		report := *action.Combat
		report.Loot = make([]*entity.Item, len(action.Combat.Loot))
		for i, it := range action.Combat.Loot {
			report.Loot[i] = it.Clone()
		}
		action.Combat = &report
	}
	if action.Ability != nil && action.Ability.Item != nil {
		ability := *action.Ability
		ability.Item = action.Ability.Item.Clone()
		action.Ability = &ability
	}
	s.Action = &action
	return s
}
