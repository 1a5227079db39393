package game

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/wfunc/survival-game/internal/errors"
	"go.uber.org/zap"
)

// 阶段转换事件
const (
	EventBeginAction   = "begin_action"   // START -> ACTION
	EventResolveAction = "resolve_action" // ACTION -> RANDOM_EVENT
	EventQuit          = "quit"           // ACTION -> MAINTENANCE，跳过随机事件
	EventMaintain      = "maintain"       // RANDOM_EVENT -> MAINTENANCE
	EventNextTurn      = "next_turn"      // MAINTENANCE -> START
	EventEnd           = "end"            // 任意非终止阶段 -> TERMINAL
)

// PhaseTransition 阶段转换定义
type PhaseTransition struct {
	From  Phase
	Event string
	To    Phase
}

// StateMachine 回合阶段状态机
// 终止阶段没有任何出口，从终止阶段触发事件返回 ErrIllegalStateTransition
type StateMachine struct {
	mu          sync.RWMutex
	current     Phase
	sessionID   string
	transitions map[string]PhaseTransition
	logger      *zap.Logger
	lastUpdate  time.Time

	onPhaseChange func(from, to Phase)
}

// NewStateMachine 创建状态机，初始阶段为 START
func NewStateMachine(sessionID string, logger *zap.Logger) *StateMachine {
	sm := &StateMachine{
		current:     PhaseStart,
		sessionID:   sessionID,
		transitions: make(map[string]PhaseTransition),
		logger:      logger,
		lastUpdate:  time.Now(),
	}
	sm.initTransitions()
	return sm
}

// initTransitions 初始化阶段转换规则
func (sm *StateMachine) initTransitions() {
	sm.addTransition(PhaseTransition{From: PhaseStart, Event: EventBeginAction, To: PhaseAction})
	sm.addTransition(PhaseTransition{From: PhaseAction, Event: EventResolveAction, To: PhaseRandomEvent})
	sm.addTransition(PhaseTransition{From: PhaseAction, Event: EventQuit, To: PhaseMaintenance})
	sm.addTransition(PhaseTransition{From: PhaseRandomEvent, Event: EventMaintain, To: PhaseMaintenance})
	sm.addTransition(PhaseTransition{From: PhaseMaintenance, Event: EventNextTurn, To: PhaseStart})

	for _, phase := range []Phase{PhaseStart, PhaseAction, PhaseRandomEvent, PhaseMaintenance} {
		sm.addTransition(PhaseTransition{From: phase, Event: EventEnd, To: PhaseTerminal})
	}
}

// addTransition 添加阶段转换
func (sm *StateMachine) addTransition(t PhaseTransition) {
	sm.transitions[sm.transitionKey(t.From, t.Event)] = t
}

// transitionKey 生成转换键
func (sm *StateMachine) transitionKey(phase Phase, event string) string {
	return fmt.Sprintf("%s:%s", phase, event)
}

// Trigger 触发事件
func (sm *StateMachine) Trigger(ctx context.Context, event string) error {
	sm.mu.Lock()
	t, ok := sm.transitions[sm.transitionKey(sm.current, event)]
	if !ok {
		from := sm.current
		sm.mu.Unlock()
		return errors.Newf(errors.ErrIllegalStateTransition, "阶段=%s, 事件=%s", from, event)
	}
	from := sm.current
	sm.current = t.To
	sm.lastUpdate = time.Now()
	callback := sm.onPhaseChange
	sm.mu.Unlock()

	sm.logger.Debug("阶段转换",
		zap.String("session_id", sm.sessionID),
		zap.String("from", string(from)),
		zap.String("to", string(t.To)),
		zap.String("event", event))

	if callback != nil {
		callback(from, t.To)
	}
	return nil
}

// Phase 当前阶段
func (sm *StateMachine) Phase() Phase {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.current
}

// Terminal 是否已结束
func (sm *StateMachine) Terminal() bool {
	return sm.Phase() == PhaseTerminal
}

// OnPhaseChange 设置阶段变更回调
func (sm *StateMachine) OnPhaseChange(fn func(from, to Phase)) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.onPhaseChange = fn
}

// CanTransition 检查是否可以转换
func (sm *StateMachine) CanTransition(event string) bool {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	_, ok := sm.transitions[sm.transitionKey(sm.current, event)]
	return ok
}

// ValidEvents 当前阶段下的有效事件，已排序
func (sm *StateMachine) ValidEvents() []string {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	var events []string
	prefix := string(sm.current) + ":"
	for key := range sm.transitions {
		if strings.HasPrefix(key, prefix) {
			events = append(events, strings.TrimPrefix(key, prefix))
		}
	}
	sort.Strings(events)
	return events
}

// LastUpdate 最后一次转换时间
func (sm *StateMachine) LastUpdate() time.Time {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.lastUpdate
}
