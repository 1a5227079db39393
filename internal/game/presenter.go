package game

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/wfunc/survival-game/internal/logger"
	"go.uber.org/zap"
)

// Presenter 展示层，只读接收阶段摘要
type Presenter interface {
	Present(s Summary)
}

// PresenterFunc 函数适配器
type PresenterFunc func(s Summary)

// Present 调用函数
func (f PresenterFunc) Present(s Summary) {
	f(s)
}

// nopPresenter 丢弃摘要
type nopPresenter struct{}

func (nopPresenter) Present(Summary) {}

// MultiPresenter 依次转发给多个展示层
type MultiPresenter []Presenter

// Present 转发摘要
func (m MultiPresenter) Present(s Summary) {
	for _, p := range m {
		if p != nil {
			p.Present(s)
		}
	}
}

// LogPresenter 把阶段摘要写入日志
type LogPresenter struct{}

// Present 记录阶段
func (LogPresenter) Present(s Summary) {
	fields := []zap.Field{
		zap.String("ambient", s.Ambient),
		zap.Float64("health", s.Stats.Health),
		zap.Float64("hunger", s.Stats.Hunger),
		zap.Float64("thirst", s.Stats.Thirst),
		zap.Float64("energy", s.Stats.Energy),
		zap.Float64("sanity", s.Stats.Sanity),
	}
	if s.Action != nil {
		fields = append(fields, zap.String("action", s.Action.Action), zap.Bool("accepted", s.Action.OK))
	}
	logger.LogTurn(s.SessionID, s.Turn, string(s.Phase), fields...)

	if s.Outcome != OutcomeNone {
		logger.LogGameEvent("game_over", s.SessionID, map[string]interface{}{
			"turn":    s.Turn,
			"outcome": string(s.Outcome),
		})
	}
}

// TextPresenter 终端文本展示
type TextPresenter struct {
	mu sync.Mutex
	w  io.Writer
}

// NewTextPresenter 创建文本展示
func NewTextPresenter(w io.Writer) *TextPresenter {
	return &TextPresenter{w: w}
}

// Present 输出与阶段相关的文本
func (p *TextPresenter) Present(s Summary) {
	p.mu.Lock()
	defer p.mu.Unlock()

	var b strings.Builder
	switch s.Phase {
	case PhaseStart:
		fmt.Fprintf(&b, "\n=== Turn %d | %s (%s) ===\n", s.Turn, s.AmbientTitle, s.Weather)
		if s.Description != "" {
			fmt.Fprintf(&b, "%s\n", s.Description)
		}
		fmt.Fprintf(&b, "%s the %s  HP %.0f/%.0f  Hunger %.0f  Thirst %.0f  Energy %.0f  Sanity %.0f  Load %.1f/%.1f\n",
			s.Player, s.Archetype, s.Stats.Health, s.MaxHealth, s.Stats.Hunger, s.Stats.Thirst,
			s.Stats.Energy, s.Stats.Sanity, s.CarryWeight, s.MaxCarry)
		fmt.Fprintf(&b, "Actions: explore, rest, inventory, ability, use <item>, drop <item>, equip <item>, travel <place>, trade <faction> <item>, quit\n")

	case PhaseAction:
		if s.Action == nil {
			break
		}
		if !s.Action.OK {
			fmt.Fprintf(&b, "! %s\n", s.Action.Reason)
			break
		}
		for _, msg := range s.Action.Messages {
			fmt.Fprintf(&b, "- %s\n", msg)
		}
		if len(s.Action.Collected) > 0 {
			fmt.Fprintf(&b, "- Collected: %s\n", strings.Join(s.Action.Collected, ", "))
		}
		if c := s.Action.Combat; c != nil {
			switch {
			case c.PlayerDefeated:
				fmt.Fprintf(&b, "- The %s overwhelms you.\n", c.Creature)
			case c.CreatureKilled:
				fmt.Fprintf(&b, "- You killed the %s after %d rounds.\n", c.Creature, len(c.Rounds))
			case c.CreatureFled:
				fmt.Fprintf(&b, "- The %s escaped.\n", c.Creature)
			default:
				fmt.Fprintf(&b, "- You broke off the fight with the %s.\n", c.Creature)
			}
		}

	case PhaseRandomEvent:
		for _, ev := range s.Events {
			fmt.Fprintf(&b, "* Event: %s\n", ev.Event)
		}

	case PhaseMaintenance:
		if m := s.Maintenance; m != nil && len(m.SpoiledFood) > 0 {
			fmt.Fprintf(&b, "~ Spoiled: %s\n", strings.Join(m.SpoiledFood, ", "))
		}

	case PhaseTerminal:
		fmt.Fprintf(&b, "\n*** %s after %d turns ***\n", s.Outcome, s.Turn)
	}

	if b.Len() > 0 {
		_, _ = io.WriteString(p.w, b.String())
	}
}
