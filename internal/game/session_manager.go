package game

import (
	"context"
	"sync"
	"time"

	"github.com/wfunc/survival-game/internal/errors"
	"go.uber.org/zap"
)

// SessionManager 托管一局在后台运行的游戏，供 HTTP 接口推送行动
// 回合循环只在托管的 goroutine 中运行，外部只通过行动通道与摘要快照交互
type SessionManager struct {
	mu       sync.RWMutex
	logger   *zap.Logger
	runtime  Runtime
	recovery *RecoveryManager
	observer Presenter
	buffer   int

	active *hostedSession
}

// hostedSession 托管中的会话
type hostedSession struct {
	session   *Session
	input     *ChannelInput
	cancel    context.CancelFunc
	done      chan struct{}
	resumed   bool
	startedAt time.Time

	mu     sync.RWMutex
	latest Summary
	err    error
}

// SessionConfig 会话管理器配置
// Runtime 的 Input 与 Presenter 由管理器接管
type SessionConfig struct {
	Logger      *zap.Logger
	Runtime     Runtime
	Recovery    *RecoveryManager
	Observer    Presenter
	InputBuffer int
}

// NewSessionManager 创建会话管理器
func NewSessionManager(cfg *SessionConfig) *SessionManager {
	buffer := cfg.InputBuffer
	if buffer <= 0 {
		buffer = 8
	}
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &SessionManager{
		logger:   log,
		runtime:  cfg.Runtime,
		recovery: cfg.Recovery,
		observer: cfg.Observer,
		buffer:   buffer,
	}
}

// Start 开始托管一局游戏
// resume 为真时先尝试继续自动存档
func (sm *SessionManager) Start(ctx context.Context, opts NewGameOptions, resume bool) (Summary, error) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.active != nil && !sm.active.finished() {
		return Summary{}, errors.New(errors.ErrAlreadyExists, "已有进行中的游戏")
	}

	hosted := &hostedSession{
		input:     NewChannelInput(sm.buffer),
		done:      make(chan struct{}),
		startedAt: time.Now(),
	}
	rt := sm.runtime
	rt.Input = hosted.input
	rt.Presenter = hosted
	if sm.observer != nil {
		rt.Presenter = MultiPresenter{hosted, sm.observer}
	}

	var (
		session *Session
		err     error
	)
	if resume && sm.recovery != nil {
		session, hosted.resumed, err = sm.recovery.ResumeOrNew(ctx, rt, opts)
	} else {
		session, err = NewGame(rt, opts)
	}
	if err != nil {
		return Summary{}, err
	}
	hosted.session = session
	hosted.latest = session.Summary()

	// 回合循环不受请求上下文影响
	runCtx, cancel := context.WithCancel(context.Background())
	hosted.cancel = cancel
	go sm.run(runCtx, hosted)

	sm.active = hosted
	sm.logger.Info("托管游戏开始",
		zap.String("session_id", session.ID),
		zap.Bool("resumed", hosted.resumed))
	return hosted.snapshot(), nil
}

// run 托管的回合循环
func (sm *SessionManager) run(ctx context.Context, hosted *hostedSession) {
	defer close(hosted.done)
	outcome, err := hosted.session.Run(ctx)
	if err != nil && errors.Is(err, errors.ErrCanceled) {
		err = nil
	}
	hosted.mu.Lock()
	hosted.err = err
	hosted.mu.Unlock()

	if err != nil {
		sm.logger.Error("托管游戏异常结束",
			zap.String("session_id", hosted.session.ID),
			zap.Error(err))
		return
	}
	sm.logger.Info("托管游戏结束",
		zap.String("session_id", hosted.session.ID),
		zap.String("outcome", string(outcome)))
}

// Submit 推送一条行动文本
func (sm *SessionManager) Submit(ctx context.Context, text string) error {
	hosted, err := sm.current()
	if err != nil {
		return err
	}
	if hosted.finished() {
		return errors.New(errors.ErrGameOver)
	}
	action, err := ParseAction(text)
	if err != nil {
		return err
	}
	return hosted.input.Submit(ctx, action)
}

// Latest 最近一次阶段摘要
func (sm *SessionManager) Latest() (Summary, error) {
	hosted, err := sm.current()
	if err != nil {
		return Summary{}, err
	}
	return hosted.snapshot(), nil
}

// Err 托管循环的终止错误
func (sm *SessionManager) Err() error {
	hosted, err := sm.current()
	if err != nil {
		return nil
	}
	hosted.mu.RLock()
	defer hosted.mu.RUnlock()
	return hosted.err
}

// Stop 停止托管的游戏
// 未结束的游戏停止后写入自动存档，可以稍后继续
func (sm *SessionManager) Stop(ctx context.Context) error {
	sm.mu.Lock()
	hosted := sm.active
	sm.active = nil
	sm.mu.Unlock()

	if hosted == nil {
		return nil
	}
	hosted.cancel()
	select {
	case <-hosted.done:
	case <-ctx.Done():
		return errors.Wrap(ctx.Err(), errors.ErrTimeout, "等待回合循环退出超时")
	}

	session := hosted.session
	if session.Outcome() != OutcomeNone {
		return nil
	}
	if err := session.autosave(ctx); err != nil {
		return err
	}
	sm.logger.Info("托管游戏已暂停并存档",
		zap.String("session_id", session.ID),
		zap.Int("turn", session.State().TurnCounter))
	return nil
}

func (sm *SessionManager) current() (*hostedSession, error) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	if sm.active == nil {
		return nil, errors.New(errors.ErrNotFound, "没有进行中的游戏")
	}
	return sm.active, nil
}

// Present 记录最近的摘要，物品复制后再保存
func (h *hostedSession) Present(s Summary) {
	s = s.Detach()
	h.mu.Lock()
	h.latest = s
	h.mu.Unlock()
}

func (h *hostedSession) snapshot() Summary {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.latest
}

func (h *hostedSession) finished() bool {
	select {
	case <-h.done:
		return true
	default:
		return false
	}
}
