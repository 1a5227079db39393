package repository

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/wfunc/survival-game/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// TestDB 创建测试数据库
// 每个测试使用独立的共享内存库，连接数限制为1保证同一个库
func TestDB(t *testing.T) *gorm.DB {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(models.All()...))

	t.Cleanup(func() { CleanupTestDB(db) })
	return db
}

// CleanupTestDB 清理测试数据库
func CleanupTestDB(db *gorm.DB) {
	sqlDB, _ := db.DB()
	if sqlDB != nil {
		sqlDB.Close()
	}
}

// CreateTestSaveSlot 创建测试存档
func CreateTestSaveSlot(name string, turn int) *models.SaveSlot {
	return &models.SaveSlot{
		Name:          name,
		SchemaVersion: 1,
		TurnCounter:   turn,
		PlayerName:    "测试玩家",
		Archetype:     "doctor",
		Ambient:       "forest",
		Payload:       []byte(fmt.Sprintf(`{"turn":%d}`, turn)),
		SavedAt:       time.Now().UTC(),
	}
}

// CreateTestTurnRecord 创建测试回合日志
func CreateTestTurnRecord(sessionID string, turn int, action string) *models.TurnRecord {
	return &models.TurnRecord{
		SessionID: sessionID,
		Turn:      turn,
		Action:    action,
		Accepted:  true,
		Ambient:   "forest",
		Health:    100,
		Energy:    80,
		Sanity:    90,
	}
}
