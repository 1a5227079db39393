package game

import (
	"context"
	"time"

	"github.com/wfunc/survival-game/internal/errors"
	"github.com/wfunc/survival-game/internal/game/ambient"
	"github.com/wfunc/survival-game/internal/game/entity"
	"github.com/wfunc/survival-game/internal/game/event"
	"github.com/wfunc/survival-game/internal/logger"
	"go.uber.org/zap"
)

// TurnReport 一个回合的完整结果
type TurnReport struct {
	Turn        int                        `json:"turn"`
	Action      *ActionResult              `json:"action,omitempty"`
	Events      []*event.Applied           `json:"events,omitempty"`
	Maintenance *ambient.MaintenanceReport `json:"maintenance,omitempty"`
	Outcome     Outcome                    `json:"outcome,omitempty"`
}

// Run 循环执行回合直到游戏结束
// 只有非法阶段转换与存储 I/O 错误会中止循环
func (s *Session) Run(ctx context.Context) (Outcome, error) {
	for s.outcome == OutcomeNone {
		if _, err := s.PlayTurn(ctx); err != nil {
			return s.outcome, err
		}
	}
	return s.outcome, nil
}

// PlayTurn 执行一个回合
// START 展示状态；ACTION 消耗一个行动；RANDOM_EVENT 抽取一次事件；
// MAINTENANCE 衰减属性、维护区域并判定结局，成功完成后回合计数加一
func (s *Session) PlayTurn(ctx context.Context) (*TurnReport, error) {
	report := &TurnReport{Turn: s.state.TurnCounter}

	// 上一次等待输入时被取消的回合直接从 ACTION 继续
	if s.machine.Phase() != PhaseAction {
		s.present(Summary{})
		if err := s.machine.Trigger(ctx, EventBeginAction); err != nil {
			return nil, err
		}
	}

	action, err := s.nextAction(ctx)
	if err != nil {
		return nil, err
	}
	result := s.performAction(action)
	report.Action = result
	s.present(Summary{Action: result})

	if !s.state.Player.Alive() {
		return report, s.finish(ctx, report, OutcomePlayerDefeated)
	}

	if action.Kind == ActionQuit {
		if err := s.machine.Trigger(ctx, EventQuit); err != nil {
			return nil, err
		}
		s.maintain(report)
		outcome := OutcomePlayerQuit
		if !s.state.Player.Alive() {
			outcome = OutcomePlayerDefeated
		}
		return report, s.finish(ctx, report, outcome)
	}

	if err := s.machine.Trigger(ctx, EventResolveAction); err != nil {
		return nil, err
	}
	if applied := s.randomEvent(); applied != nil {
		report.Events = append(report.Events, applied)
		s.present(Summary{Events: []*event.Applied{applied}})
	}
	if !s.state.Player.Alive() {
		return report, s.finish(ctx, report, OutcomePlayerDefeated)
	}

	if err := s.machine.Trigger(ctx, EventMaintain); err != nil {
		return nil, err
	}
	s.maintain(report)
	if outcome := s.evaluate(); outcome != OutcomeNone {
		return report, s.finish(ctx, report, outcome)
	}

	s.state.TurnCounter++
	s.maintenances++
	if err := s.autosave(ctx); err != nil {
		return nil, err
	}
	s.record(ctx, report)

	if err := s.machine.Trigger(ctx, EventNextTurn); err != nil {
		return nil, err
	}
	return report, nil
}

// nextAction 取行动，无法识别的行动提示后重新等待
func (s *Session) nextAction(ctx context.Context) (Action, error) {
	for {
		action, err := s.rt.Input.Next(ctx)
		if err == nil {
			return action, nil
		}
		if !errors.Is(err, errors.ErrUnknownAction) {
			return Action{}, err
		}
		s.present(Summary{Action: reject(Action{}, err)})
	}
}

// randomEvent 抽取并应用一次事件
func (s *Session) randomEvent() *event.Applied {
	def, _ := s.ambients.Current()
	var table []event.Weight
	if def != nil {
		table = def.Events
	}
	ev := s.events.Roll(s.rng, table, s.state.Player)
	if ev == nil {
		return nil
	}
	return s.events.Apply(ev, s.state.Player, s.world)
}

// maintain 维护阶段：属性衰减、持续事件、区域维护
func (s *Session) maintain(report *TurnReport) {
	cfg := s.rt.Config
	p := s.state.Player

	hungerRate, thirstRate, sanityRate := cfg.Decay.Hunger, cfg.Decay.Thirst, cfg.Decay.Sanity
	if p.Traits.Has(entity.TraitHardy) {
		hungerRate *= entity.HardyDecayMultiplier
		thirstRate *= entity.HardyDecayMultiplier
	}
	if p.Traits.Has(entity.TraitResilient) {
		sanityRate *= entity.ResilientDecayMultiplier
	}
	p.Adjust(entity.AttrHunger, hungerRate)
	p.Adjust(entity.AttrThirst, thirstRate)
	p.Adjust(entity.AttrEnergy, -cfg.Decay.Energy)
	p.Adjust(entity.AttrSanity, -sanityRate)

	if p.Stats.Hunger >= entity.StatMax {
		p.ReceiveDamage(cfg.StarvationDamage)
	}
	if p.Stats.Thirst >= entity.StatMax {
		p.ReceiveDamage(cfg.StarvationDamage)
	}

	ticked := s.events.Tick(p, s.world)
	report.Events = append(report.Events, ticked...)
	report.Maintenance = s.ambients.RunMaintenance(p.Inventory)

	if p.Stats.Sanity <= entity.StatMin {
		s.state.SanityZeroStreak++
	} else {
		s.state.SanityZeroStreak = 0
	}

	s.present(Summary{Events: ticked, Maintenance: report.Maintenance})
}

// evaluate 判定结局
func (s *Session) evaluate() Outcome {
	cfg := s.rt.Config
	switch {
	case !s.state.Player.Alive():
		return OutcomePlayerDefeated
	case s.state.SanityZeroStreak >= cfg.SanityFailureTurns:
		return OutcomeSurvivalFail
	case cfg.ObjectiveTurns > 0 && s.state.TurnCounter >= cfg.ObjectiveTurns:
		return OutcomeObjectiveMet
	}
	return OutcomeNone
}

// finish 进入终止阶段
// 主动退出保留自动存档，其他结局删除自动存档
func (s *Session) finish(ctx context.Context, report *TurnReport, outcome Outcome) error {
	if err := s.machine.Trigger(ctx, EventEnd); err != nil {
		return err
	}
	s.outcome = outcome
	report.Outcome = outcome

	slot := s.rt.Config.AutosaveSlot
	if outcome == OutcomePlayerQuit {
		if err := s.autosave(ctx); err != nil {
			return err
		}
	} else if err := s.rt.Store.Delete(ctx, slot); err != nil {
		logger.LogPersistence("delete", slot, 0, err)
		if errors.IsFatal(err) {
			return err
		}
	}
	s.record(ctx, report)

	s.logger.Info("游戏结束",
		zap.String("outcome", string(outcome)),
		zap.Int("turn", s.state.TurnCounter),
		zap.Int("maintenances", s.maintenances))
	s.present(Summary{})
	return nil
}

// autosave 自动存档
func (s *Session) autosave(ctx context.Context) error {
	slot := s.rt.Config.AutosaveSlot
	start := time.Now()
	err := s.Save(ctx, slot)
	logger.LogPersistence("autosave", slot, time.Since(start), err)
	return err
}

// record 写回合日志
func (s *Session) record(ctx context.Context, report *TurnReport) {
	entry := &JournalEntry{
		SessionID: s.ID,
		Turn:      report.Turn,
		Ambient:   s.state.Ambients.Current,
		Stats:     s.state.Player.Stats,
		Outcome:   report.Outcome,
	}
	if r := report.Action; r != nil {
		entry.Action = r.Action
		entry.Accepted = r.OK
		entry.Reason = r.Reason
	}
	for _, ev := range report.Events {
		entry.Events = append(entry.Events, ev.Event)
	}
	if err := s.rt.Journal.Record(ctx, entry); err != nil {
		s.logger.Warn("回合日志写入失败", zap.Error(err))
	}
}

// present 补齐状态字段后交给展示层
func (s *Session) present(extra Summary) {
	sum := s.Summary()
	sum.Action = extra.Action
	sum.Events = extra.Events
	sum.Maintenance = extra.Maintenance
	s.rt.Presenter.Present(sum)
}
