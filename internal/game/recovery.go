package game

import (
	"context"
	"time"

	"github.com/wfunc/survival-game/internal/errors"
	"github.com/wfunc/survival-game/internal/logger"
	"go.uber.org/zap"
)

// corruptSuffix 损坏存档隔离后的槽名后缀
const corruptSuffix = ".corrupt"

// RecoveryManager 继续上一局游戏
// 存档缺失、损坏或版本不符时退化为“没有存档”，只有存储 I/O 错误向上返回
type RecoveryManager struct {
	logger *zap.Logger
	store  SlotStore
	slot   string
}

// NewRecoveryManager 创建恢复管理器
func NewRecoveryManager(logger *zap.Logger, store SlotStore, slot string) *RecoveryManager {
	return &RecoveryManager{
		logger: logger,
		store:  store,
		slot:   slot,
	}
}

// Resume 读取自动存档并绑定运行时
// 没有可用存档时返回 nil, nil
func (rm *RecoveryManager) Resume(ctx context.Context, rt Runtime) (*Session, error) {
	start := time.Now()
	data, err := rm.store.ReadNamedSlot(ctx, rm.slot)
	logger.LogPersistence("load", rm.slot, time.Since(start), err)
	if err != nil {
		return nil, rm.recover(ctx, err)
	}

	snap, err := Decode(data)
	if err != nil {
		return nil, rm.recover(ctx, err)
	}
	session, err := snap.Bind(rt)
	if err != nil {
		// 存档与当前内容目录不匹配时 Bind 返回 ErrSaveCorrupt
		return nil, rm.recover(ctx, err)
	}

	rm.logger.Info("继续上一局",
		zap.String("slot", rm.slot),
		zap.Int("turn", snap.Header().Turn),
		zap.String("player", snap.Header().Player))
	return session, nil
}

// ResumeOrNew 有存档时继续，否则开始新游戏
// 第二个返回值表示是否来自存档
func (rm *RecoveryManager) ResumeOrNew(ctx context.Context, rt Runtime, opts NewGameOptions) (*Session, bool, error) {
	session, err := rm.Resume(ctx, rt)
	if err != nil {
		return nil, false, err
	}
	if session != nil {
		return session, true, nil
	}
	session, err = NewGame(rt, opts)
	if err != nil {
		return nil, false, err
	}
	return session, false, nil
}

// recover 按错误码选择恢复策略
func (rm *RecoveryManager) recover(ctx context.Context, cause error) error {
	strategies := map[errors.ErrorCode]func(context.Context, error) error{
		errors.ErrSlotNotFound:   rm.recoverMissing,
		errors.ErrSaveCorrupt:    rm.recoverCorrupt,
		errors.ErrSchemaMismatch: rm.recoverMismatch,
	}
	if strategy, ok := strategies[errors.GetCode(cause)]; ok {
		return strategy(ctx, cause)
	}
	return cause
}

// recoverMissing 没有存档
func (rm *RecoveryManager) recoverMissing(ctx context.Context, cause error) error {
	rm.logger.Debug("没有自动存档", zap.String("slot", rm.slot))
	return nil
}

// recoverCorrupt 隔离损坏的存档，避免下次启动再次读取
func (rm *RecoveryManager) recoverCorrupt(ctx context.Context, cause error) error {
	rm.logger.Warn("自动存档已损坏，开始新游戏",
		zap.String("slot", rm.slot),
		zap.Error(cause))

	if data, err := rm.store.ReadNamedSlot(ctx, rm.slot); err == nil {
		if err := rm.store.WriteNamedSlot(ctx, rm.slot+corruptSuffix, data); err != nil {
			rm.logger.Warn("隔离损坏存档失败", zap.Error(err))
		}
	}
	if err := rm.store.Delete(ctx, rm.slot); err != nil {
		logger.LogPersistence("delete", rm.slot, 0, err)
		if errors.IsFatal(err) {
			return err
		}
	}
	return nil
}

// recoverMismatch 版本不符的存档保留原样
func (rm *RecoveryManager) recoverMismatch(ctx context.Context, cause error) error {
	rm.logger.Warn("自动存档版本不符，开始新游戏",
		zap.String("slot", rm.slot),
		zap.Error(cause))
	return nil
}
