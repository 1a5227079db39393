package models

// TurnRecord 回合日志
type TurnRecord struct {
	BaseModel
	SessionID string  `gorm:"index;size:64;not null" json:"session_id"`
	Turn      int     `gorm:"index;not null" json:"turn"`
	Action    string  `gorm:"size:64" json:"action"`
	Accepted  bool    `json:"accepted"`
	Reason    string  `gorm:"size:255" json:"reason,omitempty"`
	Event     string  `gorm:"size:64" json:"event,omitempty"`
	Ambient   string  `gorm:"size:32" json:"ambient"`
	Health    float64 `json:"health"`
	Hunger    float64 `json:"hunger"`
	Thirst    float64 `json:"thirst"`
	Energy    float64 `json:"energy"`
	Sanity    float64 `json:"sanity"`
	Outcome   string  `gorm:"size:32" json:"outcome,omitempty"`
}

// TableName 指定表名
func (TurnRecord) TableName() string {
	return "turn_records"
}

// IsFinal 是否为终局回合
func (r *TurnRecord) IsFinal() bool {
	return r.Outcome != ""
}
