package models

import (
	"time"
)

// SaveSlot 存档槽
// Payload 保存编码后的完整游戏状态，其余字段仅用于列表展示
type SaveSlot struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	Name          string    `gorm:"uniqueIndex;size:64;not null" json:"name"`
	SchemaVersion int       `gorm:"not null;default:1" json:"schema_version"`
	TurnCounter   int       `gorm:"not null;default:0" json:"turn_counter"`
	PlayerName    string    `gorm:"size:64" json:"player_name"`
	Archetype     string    `gorm:"size:20" json:"archetype"`
	Ambient       string    `gorm:"size:32" json:"ambient"`
	Payload       []byte    `gorm:"not null" json:"-"`
	SavedAt       time.Time `gorm:"index" json:"saved_at"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// TableName 指定表名
func (SaveSlot) TableName() string {
	return "save_slots"
}

// Size 存档字节数
func (s *SaveSlot) Size() int {
	return len(s.Payload)
}
