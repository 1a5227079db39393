package database

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/wfunc/survival-game/internal/logger"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	lockSuffix       = ".migration.lock"
	lockRetry        = time.Second
	lockWaitAttempts = 30
	lockStaleAfter   = 5 * time.Minute
)

// migrationLock 基于独占创建文件的跨进程迁移锁
type migrationLock struct {
	path string
	file *os.File
}

// acquireMigrationLock 为 SQLite 文件获取迁移锁，超过 lockStaleAfter 的锁视为残留
func acquireMigrationLock(dbPath string) (*migrationLock, error) {
	path := dbPath + lockSuffix

	for attempt := 1; attempt <= lockWaitAttempts; attempt++ {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_RDWR, 0644)
		if err == nil {
			fmt.Fprintf(f, "%d\n", os.Getpid())
			logger.Debug("迁移锁已获取", zap.String("lock", path))
			return &migrationLock{path: path, file: f}, nil
		}
		if !errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("创建迁移锁失败: %w", err)
		}

		if removeIfStale(path, lockStaleAfter) {
			continue
		}
		logger.Debug("等待迁移锁", zap.String("lock", path), zap.Int("attempt", attempt))
		time.Sleep(lockRetry)
	}

	return nil, fmt.Errorf("迁移锁被占用: %s", path)
}

// release 释放迁移锁
func (l *migrationLock) release() {
	if l == nil {
		return
	}
	l.file.Close()
	if err := os.Remove(l.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.Warn("删除迁移锁失败", zap.String("lock", l.path), zap.Error(err))
		return
	}
	logger.Debug("迁移锁已释放", zap.String("lock", l.path))
}

// removeIfStale 锁文件修改时间早于 maxAge 时删除
func removeIfStale(path string, maxAge time.Duration) bool {
	info, err := os.Stat(path)
	if err != nil || time.Since(info.ModTime()) <= maxAge {
		return false
	}
	logger.Warn("清理残留迁移锁", zap.String("lock", path), zap.Duration("age", time.Since(info.ModTime())))
	return os.Remove(path) == nil
}

// cleanupStaleLocks 清理数据库文件所在目录下的残留迁移锁
func cleanupStaleLocks(dbPath string) {
	matches, _ := filepath.Glob(filepath.Join(filepath.Dir(dbPath), "*"+lockSuffix))
	for _, path := range matches {
		removeIfStale(path, 2*lockStaleAfter)
	}
}

// sqlitePath 获取SQLite数据库文件路径，内存库或其他驱动返回空
func sqlitePath(db *gorm.DB) string {
	if db == nil || db.Dialector.Name() != "sqlite" {
		return ""
	}

	sqlDB, err := db.DB()
	if err != nil {
		return ""
	}

	// PRAGMA database_list 的 file 列对内存库为空
	var seq int
	var name, file string
	if err := sqlDB.QueryRow("PRAGMA database_list").Scan(&seq, &name, &file); err != nil {
		return ""
	}
	return file
}
