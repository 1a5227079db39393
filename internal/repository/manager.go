package repository

import (
	"context"
	"sync"

	"gorm.io/gorm"
)

// Manager 仓储管理器，提供所有仓储的统一访问接口
type Manager struct {
	db *gorm.DB

	// 仓储实例（使用懒加载）
	saveSlotOnce sync.Once
	saveSlot     SaveSlotRepository

	turnRecordOnce sync.Once
	turnRecord     TurnRecordRepository
}

// NewManager 创建仓储管理器
func NewManager(db *gorm.DB) *Manager {
	return &Manager{db: db}
}

// GetDB 获取数据库实例
func (m *Manager) GetDB() *gorm.DB {
	return m.db
}

// SaveSlot 获取存档槽仓储
func (m *Manager) SaveSlot() SaveSlotRepository {
	m.saveSlotOnce.Do(func() {
		m.saveSlot = NewSaveSlotRepository(m.db)
	})
	return m.saveSlot
}

// TurnRecord 获取回合日志仓储
func (m *Manager) TurnRecord() TurnRecordRepository {
	m.turnRecordOnce.Do(func() {
		m.turnRecord = NewTurnRecordRepository(m.db)
	})
	return m.turnRecord
}

// WithTransaction 在事务中执行函数，回调拿到的管理器绑定事务连接
func (m *Manager) WithTransaction(ctx context.Context, fn func(tx *Manager) error) error {
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewManager(tx))
	})
}
