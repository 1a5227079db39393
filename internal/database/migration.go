package database

import (
	"fmt"
	"time"

	"github.com/wfunc/survival-game/internal/logger"
	"github.com/wfunc/survival-game/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// 建表后补充的索引
var extraIndexes = []struct {
	name string
	sql  string
}{
	{"idx_turn_records_session_turn", "CREATE INDEX IF NOT EXISTS idx_turn_records_session_turn ON turn_records(session_id, turn)"},
}

// AutoMigrate 迁移全局数据库
func AutoMigrate() error {
	if DB == nil {
		return fmt.Errorf("数据库未初始化")
	}
	return Migrate(DB)
}

// Migrate 迁移存档表和回合日志表，SQLite 文件库在迁移期间持有文件锁
func Migrate(db *gorm.DB) error {
	if dbPath := sqlitePath(db); dbPath != "" {
		cleanupStaleLocks(dbPath)
		lock, err := acquireMigrationLock(dbPath)
		if err != nil {
			return fmt.Errorf("获取迁移锁失败: %w", err)
		}
		defer lock.release()
	}

	start := time.Now()
	all := models.All()
	if err := db.AutoMigrate(all...); err != nil {
		logger.Error("数据库迁移失败", zap.Int("models", len(all)), zap.Error(err))
		return fmt.Errorf("迁移表结构失败: %w", err)
	}

	for _, idx := range extraIndexes {
		if err := db.Exec(idx.sql).Error; err != nil {
			logger.Warn("创建索引失败", zap.String("index", idx.name), zap.Error(err))
		}
	}

	logger.Info("数据库迁移完成", zap.Int("models", len(all)), zap.Duration("duration", time.Since(start)))
	return nil
}
